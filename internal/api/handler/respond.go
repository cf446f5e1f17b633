package handler

import (
	"errors"
	"net/http"

	"codearena/internal/common"
)

// respondServiceError maps pipeline errors to their user-facing messages.
func respondServiceError(w http.ResponseWriter, err error) {
	status := common.HTTPStatusFromError(err)
	switch {
	case errors.Is(err, common.ErrAccountRestricted):
		common.RespondWithError(w, status, "Your account has been flagged or deactivated. Please contact support.")
	case errors.Is(err, common.ErrUnsupportedLanguage):
		common.RespondWithError(w, status, "Unsupported language")
	case errors.Is(err, common.ErrJudgeUnavailable):
		common.RespondWithError(w, status, "Judging temporarily unavailable, please retry later")
	case errors.Is(err, common.ErrExamplesMissing):
		common.RespondWithError(w, status, "Problem examples not found")
	case errors.Is(err, common.ErrInvalidExampleFormat):
		common.RespondWithError(w, status, "Invalid example format")
	case errors.Is(err, common.ErrNotFound):
		common.RespondWithError(w, status, "Not found")
	case status == http.StatusInternalServerError:
		common.RespondWithError(w, status, "Internal server error")
	default:
		common.RespondWithError(w, status, err.Error())
	}
}

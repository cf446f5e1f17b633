package handler

import (
	"encoding/json"
	"net/http"

	"codearena/internal/api/middleware"
	"codearena/internal/app/service"
	"codearena/internal/common"

	"github.com/go-chi/chi/v5"
)

// RunHandler exposes trial runs: ungraded, unpersisted executions against
// caller-supplied input.
type RunHandler struct {
	submissionService *service.SubmissionService
}

func NewRunHandler(ss *service.SubmissionService) *RunHandler {
	return &RunHandler{submissionService: ss}
}

func (h *RunHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.run)
}

func (h *RunHandler) run(w http.ResponseWriter, r *http.Request) {
	var req service.TrialRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.submissionService.TrialRun(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict")
	ErrInternalServer = errors.New("internal server error")

	// Submission pipeline taxonomy.
	ErrAccountRestricted    = errors.New("account is flagged or deactivated")
	ErrExamplesMissing      = errors.New("problem examples not found")
	ErrInvalidExampleFormat = errors.New("invalid example format")
	ErrUnsupportedLanguage  = errors.New("unsupported language")
	ErrJudgeUnavailable     = errors.New("judging service unavailable")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrAccountRestricted):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrExamplesMissing),
		errors.Is(err, ErrInvalidExampleFormat),
		errors.Is(err, ErrUnsupportedLanguage):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrJudgeUnavailable):
		return http.StatusServiceUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique violation
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

package handler

import (
	"encoding/json"
	"net/http"

	"codearena/internal/api/middleware"
	"codearena/internal/app/service"
	"codearena/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.create)
	r.Get("/{submissionID}", h.getByID)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.AdminOnly)
		admin.Get("/", h.list)
		admin.Post("/{submissionID}/rejudge", h.rejudge)
		admin.Delete("/{submissionID}", h.delete)
	})
}

func (h *SubmissionHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	submission, err := h.submissionService.Submit(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, submission)
}

func (h *SubmissionHandler) getByID(w http.ResponseWriter, r *http.Request) {
	submission, err := h.submissionService.GetByID(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submission)
}

func (h *SubmissionHandler) list(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.submissionService.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}

func (h *SubmissionHandler) rejudge(w http.ResponseWriter, r *http.Request) {
	submission, err := h.submissionService.Rejudge(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Rejudged successfully",
		"submission": submission,
	})
}

func (h *SubmissionHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.submissionService.Delete(r.Context(), chi.URLParam(r, "submissionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Submission deleted successfully"})
}

package handler

import (
	"encoding/json"
	"net/http"

	"codearena/internal/api/middleware"
	"codearena/internal/app/service"
	"codearena/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService       *service.UserService
	submissionService *service.SubmissionService
}

func NewUserHandler(us *service.UserService, ss *service.SubmissionService) *UserHandler {
	return &UserHandler{userService: us, submissionService: ss}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/{userID}/submissions", h.listSubmissions)
}

// RegisterAdminRoutes mounts the moderation surface.
func (h *UserHandler) RegisterAdminRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)
	r.Get("/", h.list)
	r.Get("/{userID}", h.getByID)
	r.Patch("/{userID}", h.moderate)
}

func (h *UserHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.submissionService.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submissions)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) getByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) moderate(w http.ResponseWriter, r *http.Request) {
	var req service.ModerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.userService.Moderate(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

package handler

import (
	"net/http"

	"codearena/internal/api/middleware"
	"codearena/internal/common"
	"codearena/internal/realtime"

	"go.uber.org/zap"
)

// WSHandler upgrades authenticated clients to websocket connections. The
// token identifies the logical user; the hub registers the connection under
// that identity so moderation broadcasts reach every open tab and device.
type WSHandler struct {
	hub    *realtime.Hub
	logger *zap.Logger
}

func NewWSHandler(hub *realtime.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := h.hub.Serve(w, r, userID); err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("user_id", userID), zap.Error(err))
	}
}

package api

import (
	"net/http"
	"time"

	"codearena/internal/api/handler"
	"codearena/internal/api/middleware"
	"codearena/internal/app/service"
	"codearena/internal/common/security"
	"codearena/internal/realtime"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

func NewRouter(
	submissionService *service.SubmissionService,
	problemService *service.ProblemService,
	userService *service.UserService,
	adminService *service.AdminService,
	hub *realtime.Hub,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Websocket connections authenticate via query-string token (browsers
	// cannot set headers on the upgrade request) and must not run under the
	// request timeout.
	wsHandler := handler.NewWSHandler(hub, logger)
	r.Group(func(ws chi.Router) {
		ws.Use(jwtauth.Verify(security.TokenAuth, jwtauth.TokenFromQuery, jwtauth.TokenFromHeader))
		ws.Use(middleware.Authenticator)
		ws.Get("/ws", wsHandler.Connect)
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(chiMiddleware.Timeout(90 * time.Second))
		v1.Use(jwtauth.Verifier(security.TokenAuth))

		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)

		runHandler := handler.NewRunHandler(submissionService)
		v1.Route("/run", runHandler.RegisterRoutes)

		problemHandler := handler.NewProblemHandler(problemService)
		v1.Route("/problems", problemHandler.RegisterRoutes)

		userHandler := handler.NewUserHandler(userService, submissionService)
		v1.Route("/users", userHandler.RegisterRoutes)

		adminHandler := handler.NewAdminHandler(adminService)
		v1.Route("/admin", func(admin chi.Router) {
			admin.Route("/users", userHandler.RegisterAdminRoutes)
			admin.Route("/stats", adminHandler.RegisterRoutes)
		})
	})

	return r
}

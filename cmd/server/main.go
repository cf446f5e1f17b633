package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codearena/internal/api"
	"codearena/internal/app/service"
	"codearena/internal/common/security"
	"codearena/internal/domain/repository"
	"codearena/internal/judge"
	"codearena/internal/platform/cache"
	"codearena/internal/platform/config"
	"codearena/internal/platform/database"
	"codearena/internal/platform/logger"
	"codearena/internal/realtime"

	"go.uber.org/zap"
)

func main() {
	config.Load()
	security.InitJWT()

	log, err := logger.New(os.Getenv("APP_ENV") != "production")
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	database.Connect()
	defer database.Close()
	log.Info("database connected")

	cache.ConnectRedis()
	defer cache.CloseRedis()
	log.Info("redis connected")

	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)

	exampleCache := cache.NewExampleCache(cache.RDB, config.AppConfig.ExampleCacheTTL, log)
	judgeClient := judge.NewClient(
		config.AppConfig.JudgeAPIURL,
		config.AppConfig.JudgeAPIKey,
		config.AppConfig.JudgeAPIHost,
		config.AppConfig.JudgeTimeout,
	)

	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry, log)
	hub := realtime.NewHub(registry, log)

	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, userRepo, judgeClient, exampleCache, log)
	problemService := service.NewProblemService(problemRepo, exampleCache)
	userService := service.NewUserService(userRepo, dispatcher, log)
	adminService := service.NewAdminService(userRepo, problemRepo, submissionRepo)

	router := api.NewRouter(submissionService, problemService, userService, adminService, hub, log)

	server := &http.Server{
		Addr:        ":" + config.AppConfig.APIPort,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("server starting", zap.String("port", config.AppConfig.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-stop
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

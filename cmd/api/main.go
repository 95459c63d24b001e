package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/backloghub/engine/internal/api"
	"github.com/backloghub/engine/internal/api/handlers"
	"github.com/backloghub/engine/internal/audit"
	"github.com/backloghub/engine/internal/github"
	"github.com/backloghub/engine/internal/repository"
	"github.com/backloghub/engine/internal/services"
	"github.com/backloghub/engine/internal/upload"
	"github.com/backloghub/engine/pkg/config"
	"github.com/backloghub/engine/pkg/database"
	"github.com/backloghub/engine/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting BacklogHub Engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	backlogRepo := repository.NewBacklogRepository(db)

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		log.Warn("JWT_SECRET not set, using default (INSECURE for production)")
		jwtSecret = []byte("change-me-in-production-please")
	}

	gh := github.NewClient(cfg.GitHubToken, cfg.GitHubOwner, cfg.GitHubBaseBranch, cfg.GitHubTimeout)
	uploads := upload.NewService(cfg.UploadDir, cfg.MaxUploadMB, cfg.RemoteFileMaxBytes)

	syncer := services.NewSyncWorkflow(gh, projectRepo, cfg.GitHubBaseBranch)
	diff := services.NewDiffResolver(gh, cfg.RemoteFileMaxBytes)
	files := services.NewFileSource(diff, uploads, cfg.GitHubBaseBranch)
	sink := audit.NewSink(db)

	projectSvc := services.NewProjectService(
		projectRepo, voteRepo, backlogRepo, userRepo,
		uploads, syncer, files, sink,
	)

	router := api.NewRouter(api.Dependencies{
		HMACSecret:      jwtSecret,
		AuthHandler:     handlers.NewAuthHandler(userRepo, jwtSecret),
		ProjectsHandler: handlers.NewProjectsHandler(projectSvc, cfg.MaxRequestBodyMB<<20),
		VotesHandler:    handlers.NewVotesHandler(projectSvc),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}

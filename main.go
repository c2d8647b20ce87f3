package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planner-bff/controller"
	"planner-bff/dal"
	"planner-bff/infrastructure"
	"planner-bff/middleware"
	"planner-bff/models"
	"planner-bff/repository"
	"planner-bff/services"
	"planner-bff/utils"
	"planner-bff/utils/logger"
	"planner-bff/worker"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

var config *models.Config

func Init() {
	var err error
	config, err = utils.GetConfig()
	if err != nil {
		log.Fatal(err)
	}
}

// @title Course Planner BFF
// @version 1.0
// @description Backend-for-frontend of the course planner. It owns the per-session
// @description institute/campus context, guards navigation and forwards data requests
// @description to the institutional backend.
// @description
// @description Sessions are carried in an HttpOnly cookie set by POST /auth/login.
// @description Navigation context travels in the opaque `ctx` query parameter.
// @BasePath /api/v1
func main() {
	Init()
	appLogger := logger.NewLogger(config.LogLevel, config.LogFormat)
	appLogger.WithFields(map[string]interface{}{
		"env":     config.AppEnv,
		"version": config.AppVersion,
		"backend": config.BackendBaseURL,
		"storage": config.StorageDriver,
	}).Info("Configuration loaded")

	ctx := context.Background()

	storage, err := newStorage(ctx, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize client storage: %v", err)
	}

	backendFactory := func(onUnauthorized func(ctx context.Context)) (dal.BackendClientInterface, error) {
		client, err := dal.NewBackendClient(config, appLogger, onUnauthorized)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	manager := services.NewSessionManager(config, backendFactory, storage, appLogger)

	if config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	logging := middleware.NewLoggingMiddleware(appLogger)
	r.Use(logging.Recovery(), logging.StructuredLogger(), middleware.NewCORSMiddleware(config).CORS())

	controller.NewController(config, appLogger, manager).RegisterRoutes(r, config.BasePath)

	sweeper, err := worker.NewSessionSweeper(config, manager, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to create session sweeper: %v", err)
	}
	if err := sweeper.Start(); err != nil {
		appLogger.Fatalf("Failed to start session sweeper: %v", err)
	}

	srv := &http.Server{
		Addr:              config.AppHost + ":" + config.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Infof("Starting server on %s:%s", config.AppHost, config.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("Server forced to shutdown: %v", err)
	}
	appLogger.Info("Server exited")
}

// newStorage builds the client storage for the configured driver
func newStorage(ctx context.Context, appLogger logger.Logger) (repository.StorageRepositoryInterface, error) {
	if config.StorageDriver != utils.StorageDynamoDB {
		return repository.NewMemoryStorageRepository(config.StorageCacheSize, config.SessionTTL, appLogger), nil
	}

	db, err := dal.NewDynamoDBClient(config, appLogger)
	if err != nil {
		return nil, err
	}
	if err := infrastructure.NewTableBootstrapper(db, config, appLogger).EnsureTables(ctx); err != nil {
		return nil, err
	}
	return repository.NewDynamoStorageRepository(db, config, appLogger), nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/audifyai/callaudit-backend/internal/app"
	"github.com/audifyai/callaudit-backend/internal/domain"
	"github.com/audifyai/callaudit-backend/internal/http/handlers"
	"github.com/audifyai/callaudit-backend/internal/observability"
	"github.com/audifyai/callaudit-backend/internal/platform/gemini"
	"github.com/audifyai/callaudit-backend/internal/platform/logger"
	"github.com/audifyai/callaudit-backend/internal/realtime/bus"
	"github.com/audifyai/callaudit-backend/internal/server"
	"github.com/audifyai/callaudit-backend/internal/services"
	"github.com/audifyai/callaudit-backend/internal/sse"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading configuration from main...")
	cfg := app.LoadConfig(log)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "callaudit-backend",
		Environment: cfg.Mode,
		Version:     "1.0.0",
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(ctx); err != nil {
				log.Warn("OTel shutdown failed", "error", err)
			}
		}()
	}

	// Audit parameter catalog
	catalog := domain.DefaultParameters()
	if cfg.ParametersFile != "" {
		loaded, err := domain.LoadParameters(cfg.ParametersFile)
		if err != nil {
			log.Warn("Failed to load parameters file; using defaults", "path", cfg.ParametersFile, "error", err)
		} else {
			catalog = loaded
		}
	}

	// SSE
	log.Info("Setting up SSE hub from main...")
	hub := sse.NewHub(log)

	// Realtime bus (optional; single-instance deployments run without it)
	var eventBus bus.Bus
	if cfg.RedisAddr != "" {
		eventBus, err = bus.NewRedisBus(cfg.RedisAddr, cfg.RedisChannel, log)
		if err != nil {
			log.Warn("Redis bus init failed; events stay in-process", "error", err)
			eventBus = nil
		} else {
			defer eventBus.Close()
			if err := eventBus.StartForwarder(context.Background(), func(m sse.Message) {
				hub.Broadcast(m)
			}); err != nil {
				log.Warn("Redis forwarder failed to start", "error", err)
			}
		}
	}

	// AI client
	aiClient, err := gemini.NewClient(gemini.Config{
		APIKey:     cfg.GoogleAPIKey,
		Model:      cfg.GeminiModel,
		BaseURL:    cfg.GeminiBaseURL,
		MaxRetries: cfg.GeminiMaxRetries,
		Timeout:    cfg.GeminiTimeout,
	}, log)
	if err != nil {
		log.Fatal("Gemini client init failed", "error", err)
	}

	// Services
	log.Info("Setting up services from main...")
	fileService, err := services.NewFileService(services.FileServiceConfig{
		UploadDir:      cfg.UploadDir,
		MaxFileSize:    cfg.MaxFileSize,
		MaxFiles:       cfg.MaxFilesPerRequest,
		AllowedFormats: cfg.AllowedAudioFormats,
	}, log)
	if err != nil {
		log.Fatal("File service init failed", "error", err)
	}
	auditService := services.NewAuditService(aiClient, cfg.MaxParamConcurrency, log)
	notifier := services.NewAuditNotifier(hub, eventBus, log)

	// Handlers
	log.Info("Setting up handlers from main...")
	healthHandler := handlers.NewHealthHandler(cfg)
	parametersHandler := handlers.NewParametersHandler(catalog)
	uploadHandler := handlers.NewUploadHandler(log, fileService)
	auditHandler := handlers.NewAuditHandler(log, fileService, auditService, notifier)
	eventsHandler := handlers.NewEventsHandler(log, hub)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		Log:               log,
		CORSOrigins:       cfg.CORSOrigins,
		HealthHandler:     healthHandler,
		ParametersHandler: parametersHandler,
		UploadHandler:     uploadHandler,
		AuditHandler:      auditHandler,
		EventsHandler:     eventsHandler,
	})

	fmt.Printf("Server listening on :%s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}

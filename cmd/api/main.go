package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/fer/internal/api"
	"github.com/your-org/fer/internal/api/handlers"
	"github.com/your-org/fer/internal/api/ws"
	"github.com/your-org/fer/internal/artifact"
	"github.com/your-org/fer/internal/config"
	"github.com/your-org/fer/internal/emotion"
	"github.com/your-org/fer/internal/observability"
	"github.com/your-org/fer/internal/queue"
	"github.com/your-org/fer/internal/service"
	"github.com/your-org/fer/internal/storage"
	"github.com/your-org/fer/internal/vision"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting FER API service", "port", cfg.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	responses, err := emotion.FromConfig(cfg.Responses.Messages, cfg.Responses.Fallback)
	if err != nil {
		slog.Error("load response table", "error", err)
		os.Exit(1)
	}

	// Fetch the model and its label contract if they are not on disk yet
	metaPath := cfg.Model.MetadataPath
	if metaPath == "" {
		metaPath = vision.MetadataPathFor(cfg.Model.Path)
	}
	fetcher := artifact.NewFetcher()
	if err := fetcher.Ensure(ctx, cfg.Model.Path, cfg.Model.URL); err != nil {
		slog.Error("ensure model", "error", err)
		os.Exit(1)
	}
	if err := fetcher.Ensure(ctx, metaPath, cfg.Model.MetadataURL); err != nil {
		slog.Error("ensure model metadata", "error", err)
		os.Exit(1)
	}

	// Never serve without a model
	classifier, err := vision.NewClassifier(vision.ClassifierConfig{
		ModelPath:    cfg.Model.Path,
		MetadataPath: metaPath,
		LibraryPath:  cfg.Model.ORTLibrary,
	})
	if err != nil {
		var loadErr *vision.ModelLoadError
		if errors.As(err, &loadErr) {
			slog.Error("load classifier", "path", loadErr.Path, "error", loadErr.Err)
		} else {
			slog.Error("load classifier", "error", err)
		}
		os.Exit(1)
	}
	defer ort.DestroyEnvironment()
	defer classifier.Close()
	slog.Info("classifier ready", "model", cfg.Model.Path, "version", classifier.Metadata.Version)

	analyzer := vision.NewAnalyzer(classifier, responses).WithMaxPixels(cfg.Server.MaxImagePixels)

	// Migrate and connect to Postgres
	if err := storage.Migrate(cfg.Database.DSN(), cfg.Database.Name); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := minioStore.EnsureBucket(ctx); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Events go through NATS when configured, straight to the hub otherwise
	var publisher service.EventPublisher = hub
	var natsPing handlers.Pinger
	if cfg.NATS.URL != "" {
		producer, err := queue.NewProducer(cfg.NATS.URL)
		if err != nil {
			slog.Error("connect to nats", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		if err := producer.EnsureStream(ctx); err != nil {
			slog.Warn("ensure nats stream", "error", err)
		}

		consumer, err := queue.NewConsumer(cfg.NATS.URL)
		if err != nil {
			slog.Error("create submission consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()

		if err := consumer.ConsumeSubmissions(ctx, "api-submissions", hub.PublishSubmission); err != nil {
			slog.Warn("start submission consumer", "error", err)
		}

		publisher = producer
		natsPing = producer
	} else {
		slog.Info("nats disabled, broadcasting submissions directly")
	}

	svc := service.NewSubmissionService(analyzer, minioStore, db, publisher)

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		APIKey:         cfg.Server.APIKey,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Service:        svc,
		DB:             db,
		MinIO:          minioStore,
		Producer:       natsPing,
		Hub:            hub,
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	cancel()

	slog.Info("API server stopped")
}

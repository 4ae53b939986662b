package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/callreview-team/call-review/pkg/validator"

	"github.com/callreview-team/call-review/internal/adapter/handler"
	"github.com/callreview-team/call-review/internal/adapter/repository"
	"github.com/callreview-team/call-review/internal/domain/entities"
	"github.com/callreview-team/call-review/internal/infrastructure/cache"
	"github.com/callreview-team/call-review/internal/infrastructure/database"
	"github.com/callreview-team/call-review/internal/infrastructure/storage"
	"github.com/callreview-team/call-review/internal/usecase/review"
	"github.com/callreview-team/call-review/internal/usecase/transcript"
	"github.com/callreview-team/call-review/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	metricSet := entities.NewMetricSet(cfg.Review.MetricKeys, cfg.Review.MetricMax, cfg.Review.IdealResponseKey)

	// Load the transcript snapshot. A missing source is the one
	// user-visible failure: the API stays up and reports it.
	source, err := transcript.LoadFile(cfg.Review.TranscriptPath)
	if err != nil {
		logger.Error("transcript source unavailable, serving empty state",
			zap.String("path", cfg.Review.TranscriptPath),
			zap.Error(err),
		)
		source = nil
	} else {
		logger.Info("transcript loaded",
			zap.String("path", cfg.Review.TranscriptPath),
			zap.Int("calls", source.Len()),
		)
	}

	// Connect to the shared rating store. Remote is an enhancement:
	// on failure the session runs local-only.
	var remote review.RemoteStore
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		logger.Warn("shared rating store unavailable, running local-only", zap.Error(err))
	} else {
		defer database.CloseDB(db)
		if cfg.Database.AutoMigrate {
			if cfg.Server.Environment == "production" {
				log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
			}
			if err := database.Migrate(db); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
		remote = repository.NewRatingRepository(db, metricSet)
	}

	// Snapshot cache
	snapshotCache, err := cache.Open(cfg, metricSet, logger)
	if err != nil {
		log.Fatalf("Failed to open snapshot cache: %v", err)
	}

	// Rating store: edits are accepted immediately; cache and remote
	// state merge in asynchronously under the local-edit-wins rule.
	store := review.NewStore(metricSet, cfg.Review.ReviewerID, snapshotCache, remote, logger)
	go store.Initialize(context.Background())

	// Export artifact storage (optional)
	var uploader handler.Uploader
	if cfg.Storage.Enabled {
		minioClient, err := storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			logger.Warn("export storage unavailable, uploads disabled", zap.Error(err))
		} else {
			uploader = minioClient
		}
	}

	// Handlers and routes
	reviewHandler := handler.NewReviewHandler(source, store, logger)
	exportHandler := handler.NewExportHandler(source, store, uploader, logger)
	router := handler.NewRouter(cfg, reviewHandler, exportHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("reviewer_id", cfg.Review.ReviewerID),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Let in-flight cache saves and upserts settle before exit.
	store.Flush()

	logger.Info("server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Server.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

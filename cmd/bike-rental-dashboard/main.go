package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/bike-rental-dashboard/internal/api/http"
	"github.com/i474232898/bike-rental-dashboard/internal/common"
	"github.com/i474232898/bike-rental-dashboard/internal/config"
	"github.com/i474232898/bike-rental-dashboard/internal/dataset"
	"github.com/i474232898/bike-rental-dashboard/internal/metrics"
	"github.com/i474232898/bike-rental-dashboard/internal/rental"
	"github.com/i474232898/bike-rental-dashboard/internal/scheduler"
	"github.com/i474232898/bike-rental-dashboard/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for remote datasets.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	memStore := store.NewMemoryStore(cfg.StoreMaxHistory)
	loader := dataset.NewCSVLoader(dataset.NewSource(cfg.DataSource, httpClient))
	recorder := metrics.NewPrometheusRecorder()

	// Core service owning the current dataset and its derived views.
	service := rental.NewService(memStore, loader,
		rental.WithRecorder(recorder),
		rental.WithTopHours(cfg.TopHours),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loadCtx, cancelLoad := context.WithTimeout(ctx, 2*time.Minute)
	if _, err := service.Load(loadCtx); err != nil {
		cancelLoad()
		log.Fatalf("failed to load dataset: %v", err)
	}
	cancelLoad()

	// Scheduler that periodically reloads the dataset and writes exports.
	sched := scheduler.New(service, cfg.ReloadInterval, cfg.ExportInterval, cfg.ExportDir)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	if cfg.WatchDataset && !common.IsRemote(cfg.DataSource) {
		watcher, err := dataset.NewWatcher(cfg.DataSource, dataset.DefaultDebounce)
		if err != nil {
			log.Printf("ERROR: dataset watcher disabled: %v", err)
		} else {
			go func() {
				err := watcher.Run(ctx, func() {
					if _, err := service.Load(ctx); err != nil {
						log.Printf("ERROR: reload after change to %s: %v", cfg.DataSource, err)
					}
				})
				if err != nil {
					log.Printf("ERROR: dataset watcher stopped: %v", err)
				}
			}()
		}
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "bike-rental-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "bike-rental-dashboard",
		})
	})

	httpapi.RegisterRoutes(app, service)
	httpapi.RegisterMetrics(app, recorder.Handler())

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

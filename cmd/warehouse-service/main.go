package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/consumers"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/events"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/handler"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/repository"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/service"
	"github.com/pharmadist/pharmadist-backend/pkg/config"
	"github.com/pharmadist/pharmadist-backend/pkg/database"
	"github.com/pharmadist/pharmadist-backend/pkg/httputil"
	"github.com/pharmadist/pharmadist-backend/pkg/logger"
	"github.com/pharmadist/pharmadist-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("warehouse-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("warehouse-service", cfg.Server.Environment)
	log.Info().Msg("starting Warehouse Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewWarehouseEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repositories
	areaRepo := repository.NewAreaRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	checkOrderRepo := repository.NewCheckOrderRepository(db)
	inspectionRepo := repository.NewInspectionRepository(db)
	checkItemRepo := repository.NewCheckItemRepository(db)
	userCacheRepo := repository.NewUserCacheRepository(db)

	// Initialize services
	stockService := service.NewStockService(areaRepo, locationRepo, batchRepo, packageRepo, publisher, log)
	auditService := service.NewAuditService(db, checkOrderRepo, inspectionRepo, checkItemRepo, packageRepo, publisher, log)
	labelService := service.NewLabelService(packageRepo)

	// Initialize handlers
	locationHandler := handler.NewLocationHandler(stockService, log)
	packageHandler := handler.NewPackageHandler(stockService, labelService, log)
	checkOrderHandler := handler.NewCheckOrderHandler(auditService, log)
	inspectionHandler := handler.NewInspectionHandler(auditService, log)

	// Start user event consumer
	userConsumer, err := consumers.NewUserEventConsumer(rmq, userCacheRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := userConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start user event consumer")
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(httputil.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-User-ID", "X-User-Name", "X-User-Email", "X-User-Role"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httputil.ActorMiddleware) // Extract user identity from gateway headers

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "warehouse-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1/warehouse", func(r chi.Router) {
		// Areas and locations
		r.Route("/areas", func(r chi.Router) {
			r.Get("/", locationHandler.ListAreas)
			r.Post("/", locationHandler.CreateArea)
			r.Get("/{id}", locationHandler.GetArea)
		})
		r.Route("/locations", func(r chi.Router) {
			r.Get("/", locationHandler.ListLocations)
			r.Post("/", locationHandler.CreateLocation)
			r.Get("/lookup", locationHandler.Lookup)
			r.Get("/{id}", locationHandler.GetLocation)
		})

		// Batches and packages
		r.Route("/batches", func(r chi.Router) {
			r.Get("/", packageHandler.ListBatches)
			r.Post("/", packageHandler.CreateBatch)
			r.Get("/{id}", packageHandler.GetBatch)
		})
		r.Route("/packages", func(r chi.Router) {
			r.Get("/", packageHandler.ListPackages)
			r.Post("/", packageHandler.CreatePackage)
			r.Get("/{id}", packageHandler.GetPackage)
			r.Post("/{id}/putaway", packageHandler.PutAway)
			r.Get("/{id}/label", packageHandler.Label)
		})

		// Check orders and inspections
		r.Route("/check-orders", func(r chi.Router) {
			r.Get("/", checkOrderHandler.List)
			r.Post("/", checkOrderHandler.Create)
			r.Get("/{id}", checkOrderHandler.Get)
			r.Put("/{id}/status", checkOrderHandler.UpdateStatus)
			r.Get("/{id}/inspections", checkOrderHandler.ListInspections)
			r.Post("/{id}/inspections/clear", checkOrderHandler.ClearInspections)
		})
		r.Route("/inspections", func(r chi.Router) {
			r.Get("/{id}", inspectionHandler.Get)
			r.Post("/{id}/claim", inspectionHandler.Claim)
			r.Post("/{id}/finish", inspectionHandler.Finish)
			r.Get("/{id}/items", inspectionHandler.ListItems)
			r.Put("/{id}/items", inspectionHandler.RecordItem)
			r.Delete("/{id}/items/{itemID}", inspectionHandler.DeleteItem)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

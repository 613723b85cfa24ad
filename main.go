package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"

	"barangay-events/internal/config"
	"barangay-events/internal/database"
	"barangay-events/internal/database/migrations"
	event_db "barangay-events/internal/events/db"
	"barangay-events/internal/events/event_api"
	"barangay-events/internal/events/service"
	"barangay-events/internal/kafka"
	"barangay-events/internal/logger"
	"barangay-events/internal/metrics"
	"barangay-events/internal/notify"
	"barangay-events/internal/redis"
	"barangay-events/internal/sse"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Dir, cfg.Log.Service)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("APP", "Starting What's On in our Barangay")
	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bunDB, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect: %v", err))
	}
	defer bunDB.Close()

	if err := prepareSchema(ctx, cfg.Database, bunDB, log); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to prepare schema: %v", err))
	}
	log.Info("DATABASE", "✅ Events schema ready")

	emitter := sse.NewEventChangeEmitter()
	fanout := notify.NewFanout().
		Add("sse", emitter).
		Add("metrics", metrics.ChangeCounter{}).
		OnError(func(name string, err error) {
			log.Warn("NOTIFY", fmt.Sprintf("Failed to deliver event change to %s: %v", name, err))
		})

	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, []string{cfg.Kafka.Topic}, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer producer.Close()
		fanout.AddAsync("kafka", producer)
		log.Info("KAFKA", fmt.Sprintf("Publishing event changes to %s", cfg.Kafka.Topic))
	}

	if cfg.Redis.Enabled {
		redisClient, err := redis.Connect(ctx, cfg.Redis.Addr, log)
		if err != nil {
			log.Warn("REDIS", "Continuing without Redis change publishing")
		} else {
			defer redisClient.Close()
			fanout.AddAsync("redis", redis.NewPublisher(redisClient, cfg.Redis.Channel))
			log.Info("REDIS", fmt.Sprintf("Publishing event changes on channel %s", cfg.Redis.Channel))
		}
	}

	// Runs before the broker clients above are closed.
	defer fanout.Wait()

	metrics.Init()
	metrics.RegisterStreamClients(emitter.ClientCount)

	eventService := service.NewEventService(&event_db.DB{Bun: bunDB}, fanout, log)
	eventHandler := event_api.NewHandler(eventService, emitter, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(metrics.HTTPMiddleware)
	r.Use(logger.RequestLogger(log))

	r.Get("/health", event_api.Health)
	r.Handle("/metrics", metrics.Handler())
	eventHandler.RegisterRoutes(r)
	log.Info("ROUTER", "Event routes registered under /api/v1/events")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Barangay events service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Shutdown complete")
	}
}

// prepareSchema runs the versioned migrations on Postgres and creates the
// table directly everywhere else.
func prepareSchema(ctx context.Context, cfg config.DatabaseConfig, bunDB *bun.DB, log *logger.Logger) error {
	if !database.IsPostgres(cfg) || !cfg.AutoMigrate {
		return database.EnsureSchema(ctx, bunDB)
	}

	runner, err := migrations.NewRunner(cfg.URL, log)
	if err != nil {
		return err
	}
	defer runner.Close()
	return runner.Up()
}

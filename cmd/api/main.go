package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/oceanops/maritime-agent/internal/application"
	appanalysis "github.com/oceanops/maritime-agent/internal/application/analysis"
	"github.com/oceanops/maritime-agent/internal/config"
	domainanalysis "github.com/oceanops/maritime-agent/internal/domain/analysis"
	"github.com/oceanops/maritime-agent/internal/domain/vessel"
	aiclient "github.com/oceanops/maritime-agent/internal/infra/ai/openai"
	mysqldb "github.com/oceanops/maritime-agent/internal/infra/db/mysql"
	postgresdb "github.com/oceanops/maritime-agent/internal/infra/db/postgres"
	"github.com/oceanops/maritime-agent/internal/infra/httpserver"
	"github.com/oceanops/maritime-agent/internal/infra/storage"
	"github.com/oceanops/maritime-agent/internal/middleware"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	db, events, telemetry, analyses, err := connectStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store connect error: %v", err)
	}
	defer db.Close()

	generator := aiclient.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLMTimeout())

	svc := &appanalysis.Service{
		Events:    events,
		Telemetry: telemetry,
		Analyses:  analyses,
		Generator: generator,
		Clock:     application.SystemClock{},
	}

	if cfg.ArchiveEnabled() {
		archive, err := storage.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		svc.Archive = archive
	}

	rateLimit := middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)

	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Mount("/", httpserver.NewRouter(svc, cfg.LLM.Model, rateLimit))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout() + 15*time.Second, // analyze responses wait on the model
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s (model %s)", addr, cfg.LLM.Model)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func connectStore(ctx context.Context, cfg *config.Config) (*sql.DB, vessel.EventRepository, vessel.TelemetryRepository, domainanalysis.Repository, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqldb.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return db, mysqldb.NewEventRepository(db), mysqldb.NewTelemetryRepository(db), mysqldb.NewAnalysisRepository(db), nil
	case "postgres":
		db, err := postgresdb.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return db, postgresdb.NewEventRepository(db), postgresdb.NewTelemetryRepository(db), postgresdb.NewAnalysisRepository(db), nil
	}
	return nil, nil, nil, nil, fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
}

// Package main runs the HBnB REST API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	app "github.com/hbnb-project/hbnb/internal/app"
	"github.com/hbnb-project/hbnb/internal/app/httpapi"
	"github.com/hbnb-project/hbnb/internal/app/metrics"
	"github.com/hbnb-project/hbnb/internal/app/storage/postgres"
	"github.com/hbnb-project/hbnb/internal/config"
	"github.com/hbnb-project/hbnb/internal/logging"
	"github.com/hbnb-project/hbnb/internal/middleware"
	"github.com/hbnb-project/hbnb/internal/platform/migrations"
)

func main() {
	configPath := flag.String("config", "config/hbnb.yaml", "Path to configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	dbURL := flag.String("database-url", "", "Postgres URL (overrides config; empty selects the in-memory store)")
	flag.Parse()

	cfg := config.LoadOrDefault(*configPath)

	// Environment variable overrides
	if v := os.Getenv("HBNB_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("HBNB_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("HBNB_JWT_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("HBNB_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HBNB_AUDIT_FILE"); v != "" {
		cfg.Audit.File = v
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbURL != "" {
		cfg.Database.URL = *dbURL
	}

	log := logging.New("hbnb", cfg.Log.Level, cfg.Log.Format)

	var stores app.Stores
	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.WithError(err).Error("open database")
			os.Exit(1)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := migrations.Apply(ctx, db); err != nil {
			cancel()
			log.WithError(err).Error("apply migrations")
			os.Exit(1)
		}
		cancel()

		store := postgres.New(db)
		stores = app.Stores{Users: store, Places: store, Amenities: store, Reviews: store}
		log.Info("using postgres storage")
	} else {
		log.Warn("no database configured; using in-memory storage")
	}

	application := app.New(stores, log)
	tokens := middleware.NewTokenManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	handler, err := httpapi.NewHandler(application, tokens, log, httpapi.Options{
		AuditLimit: cfg.Audit.Limit,
		AuditFile:  cfg.Audit.File,
	})
	if err != nil {
		log.WithError(err).Error("build handler")
		os.Exit(1)
	}

	// Middleware chain, outermost first: CORS, tracing, metrics,
	// authentication, rate limiting. Auth runs before the limiter so
	// authenticated callers are limited per user rather than per address.
	chain := handler
	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, log)
		limiter.StartCleanup(time.Minute)
		chain = limiter.Handler(chain)
	}
	chain = middleware.NewAuthMiddleware(tokens, log).Handler(chain)
	chain = metrics.InstrumentHandler(chain)
	chain = middleware.NewTracingMiddleware(log).Handler(chain)
	chain = middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins).Handler(chain)

	root := http.NewServeMux()
	root.Handle("/metrics", metrics.Handler())
	root.Handle("/", chain)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("server error")
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}

	log.Info("server stopped")
}

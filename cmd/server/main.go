package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KAMDEMJERRY/cadastre-backend/internal/config"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/db"
	"github.com/KAMDEMJERRY/cadastre-backend/internal/server"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run role/user bootstrap and exit")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	conn, err := db.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		log.Info("migrations completed")
		return
	}

	if cfg.App.Migrations {
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		log.Info("migrations completed")
	}

	// Roles must exist before any role-dependent operation runs.
	if err := db.EnsureRoles(conn); err != nil {
		log.Fatalf("role bootstrap failed: %v", err)
	}
	if cfg.App.SeedUsers || *seedOnlyFlag {
		if err := db.SeedDefaultUsers(conn); err != nil {
			log.Fatalf("user seed failed: %v", err)
		}
		log.Info("default users seeded")
	}
	if *seedOnlyFlag {
		return
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.New(conn, log),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
	log.Info("server stopped gracefully")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"gallery/internal/assets"
	"gallery/internal/config"
	"gallery/internal/db"
	"gallery/internal/handler"
	"gallery/internal/history"
	"gallery/internal/imagelock"
	"gallery/internal/janitor"
	"gallery/internal/repository"
	"gallery/internal/storage"
	"gallery/internal/worker"
)

func main() {
	cfg, err := config.Resolve()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		log.Fatalf("create database dir: %v", err)
	}

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	repo := repository.New(database, storage.New(cfg.DataDir))
	hist := history.New(database)
	mgr := assets.New(repo, hist, assets.Config{
		ThumbWidth:     cfg.ThumbnailWidth,
		ThumbHeight:    cfg.ThumbnailHeight,
		Quality:        cfg.ImageQuality,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	locks := imagelock.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repairs := worker.NewWorker(mgr, locks)
	repairs.Start(ctx)

	jan := janitor.New(janitor.Config{
		Catalog:  repo,
		Renderer: mgr,
		Locks:    locks,
		DataDir:  cfg.DataDir,
		Interval: cfg.JanitorInterval,
	})
	jan.Start(ctx)

	h := handler.New(handler.Deps{
		DB:      database,
		Repo:    repo,
		Assets:  mgr,
		History: hist,
		Locks:   locks,
		Repairs: repairs,
		Config:  cfg,
	})
	defer h.Close()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Starting gallery on %s (data %s)", cfg.ServerAddr, cfg.DataDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	jan.Stop()
	repairs.Stop()
	log.Println("Server stopped")
}

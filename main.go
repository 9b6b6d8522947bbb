package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedsyncd/config"
	"feedsyncd/feed"
	"feedsyncd/httputil"
	"feedsyncd/logging"
	"feedsyncd/models"
	"feedsyncd/scheduler"
	"feedsyncd/server"
	"feedsyncd/storage"
	"feedsyncd/syncer"
	"feedsyncd/workers"
)

var (
	syncNow = flag.Bool("sync", false, "Run one sync and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting feedsyncd...")

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid schedule timezone %q: %v", cfg.ScheduleTZ, err)
	}

	ctx := context.Background()

	pgStore, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()
	log.Println("Connected to Postgres")

	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	for _, def := range cfg.Feeds {
		if err := pgStore.SeedFeed(ctx, def.ToModel()); err != nil {
			log.Fatalf("Failed to seed feed %s: %v", def.Slug, err)
		}
	}
	log.Printf("Loaded %d feed definitions", len(cfg.Feeds))

	clients := httputil.NewClients(cfg.FeedTimeout)
	fetcher := feed.NewHTTPClient(clients.Feed)

	orchestrator := syncer.NewOrchestrator(pgStore, fetcher, cfg.DefaultFeedURL)

	if *syncNow {
		log.Println("Running sync...")
		result, err := orchestrator.Run(ctx, models.TriggerManual, "cli", nil)
		if err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
		log.Printf("Sync complete in %s: %s", result.Duration, result.Stats.ToJSON())
		return
	}

	// Daemon mode
	sqliteStore, err := storage.NewSQLiteStore(cfg.OpsDBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteStore.Close()
	log.Printf("SQLite ops database: %s", cfg.OpsDBPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(pgStore, orchestrator, cfg.TickInterval, loc)
	sched.SetOpsStore(sqliteStore)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	var uploader workers.Uploader
	if cfg.S3.Enabled() {
		s3Uploader, err := storage.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Failed to configure S3: %v", err)
		}
		uploader = s3Uploader
		log.Printf("Photo mirroring to bucket %s", cfg.S3.Bucket)
	} else {
		uploader = &workers.NoOpUploader{}
		log.Println("S3 not configured, photo mirroring disabled")
	}

	photoWorker := workers.NewPhotoWorker(pgStore, uploader, clients.Media)
	go photoWorker.Run(ctx, 20, 2*time.Minute)
	log.Println("Photo worker started")

	handler := server.NewHandler(pgStore, orchestrator, cfg.SyncWaitWindow)
	srv := server.New(cfg.HTTPAddr, handler)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("HTTP server: %v", err)
		}
	}()

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	sched.Stop()
	log.Println("Goodbye!")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/api"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/config"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/debate"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/gemini"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/middleware"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/storage"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/store"
	"github.com/HAIZ4D/finguard-AILegalGuardianForFinancialAgreement/internal/tts"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Open the analysis store
	db, err := store.Open(cfg.FinGuard.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Connect the audio object store
	objects, err := storage.NewMinIO(storage.Config{
		Endpoint:  cfg.FinGuard.Storage.Endpoint,
		AccessKey: cfg.FinGuard.Storage.AccessKey,
		SecretKey: cfg.FinGuard.Storage.SecretKey,
		UseSSL:    cfg.FinGuard.Storage.UseSSL,
		Bucket:    cfg.FinGuard.Storage.Bucket,
	})
	if err != nil {
		log.Fatalf("Failed to connect object storage: %v", err)
	}

	bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 15*time.Second)
	if err := objects.EnsureBucket(bucketCtx); err != nil {
		log.Printf("Warning: could not ensure audio bucket: %v", err)
	}
	cancelBucket()

	// Wire the analysis and audio services
	analyzer := gemini.NewClient(cfg.FinGuard.Gemini.Endpoint, cfg.FinGuard.Gemini.APIKey, cfg.FinGuard.Gemini.Model)
	synth := tts.NewClient(cfg.FinGuard.TTS.Endpoint, cfg.FinGuard.TTS.APIKey)
	pipeline := debate.NewPipeline(synth, objects, db)

	// Set up router
	router := api.New(analyzer, db, pipeline).Router()
	middleware.Register(router)

	// Start server
	timeout, err := time.ParseDuration(cfg.FinGuard.Server.Timeout)
	if err != nil {
		log.Fatalf("Invalid server timeout: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.FinGuard.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting FinGuard on %s", cfg.FinGuard.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

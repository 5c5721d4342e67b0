package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"workwise/internal/analysis"
	"workwise/internal/config"
	"workwise/internal/gateway/ollama"
	"workwise/internal/handler"
	"workwise/internal/intake"
	"workwise/internal/repository/postgres"
	"workwise/internal/router"
	"workwise/internal/service"
	s3storage "workwise/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	analysisRepo := postgres.NewAnalysisRepo(db)
	gostRepo := postgres.NewGOSTRepo(db)

	// Initialize storage and the intake toolchain
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	toolchain := intake.NewToolchain(&cfg.Intake)

	// Initialize the model gateway and analyzer
	gateway := ollama.NewClient(&cfg.Ollama)
	analyzer := analysis.NewAnalyzer(gateway, analysis.Options{
		MinTextLen:  cfg.Ollama.MinTextLen,
		Temperature: cfg.Ollama.Temperature,
		MaxTokens:   cfg.Ollama.MaxTokens,
	})

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	docSvc := service.NewDocumentService(docRepo, s3Client, toolchain, service.DocumentServiceConfig{
		Bucket:        cfg.S3.Bucket,
		MaxFileSizeMB: cfg.Upload.MaxFileSizeMB,
		WorkDir:       cfg.Intake.WorkDir,
		MinTextLen:    cfg.Ollama.MinTextLen,
	})
	analysisSvc := service.NewAnalysisService(analysisRepo, docRepo, s3Client, toolchain, analyzer, service.AnalysisServiceConfig{
		Bucket:     cfg.S3.Bucket,
		WorkDir:    cfg.Intake.WorkDir,
		MinTextLen: cfg.Ollama.MinTextLen,
	})

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	docH := handler.NewDocumentHandler(docSvc, cfg.S3.PresignExpiry)
	analysisH := handler.NewAnalysisHandler(analysisSvc)
	gostH := handler.NewGOSTHandler(gostRepo)
	healthH := handler.NewHealthHandler(db, gateway)

	// Setup router
	r := router.Setup(authSvc, authH, docH, analysisH, gostH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the queue worker; it stops when ctx is canceled.
	worker := service.NewAnalysisQueueWorker(analysisRepo, analysisSvc, service.AnalysisQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
		RunTimeout:   time.Duration(cfg.Queue.RunTimeoutSecs) * time.Second,
	})
	go worker.Start(ctx)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}

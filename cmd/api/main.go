package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cookify-app/backend/config"
	"github.com/cookify-app/backend/internal/api"
	"github.com/cookify-app/backend/internal/database"
	"github.com/cookify-app/backend/internal/middleware"
	"github.com/cookify-app/backend/internal/server"
	"github.com/cookify-app/backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, relying on environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Illustration re-hosting is optional. Without S3 the generated image
	// URL from the provider is stored directly.
	s3Config, err := config.NewS3Config(context.Background())
	if err != nil {
		log.Printf("S3 unavailable, storing provider image URLs directly: %v", err)
		s3Config = nil
	} else if err := s3Config.SetupBucketPolicy(context.Background()); err != nil {
		log.Printf("Could not apply bucket policy: %v", err)
	}

	lookup, err := service.NewLookupService()
	if err != nil {
		log.Fatalf("Failed to create post lookup service: %v", err)
	}
	media, err := service.NewMediaService()
	if err != nil {
		log.Fatalf("Failed to create media service: %v", err)
	}
	transcriber, err := service.NewTranscriptionService()
	if err != nil {
		log.Fatalf("Failed to create transcription service: %v", err)
	}
	ocr, err := service.NewOCRService()
	if err != nil {
		log.Fatalf("Failed to create OCR service: %v", err)
	}
	llm, err := service.NewLLMService()
	if err != nil {
		log.Fatalf("Failed to create LLM service: %v", err)
	}
	illustrator, err := service.NewImageService(s3Config)
	if err != nil {
		log.Fatalf("Failed to create image service: %v", err)
	}

	gate, err := middleware.NewGate(cfg.SitePassword, cfg.AuthSecret)
	if err != nil {
		log.Fatalf("Failed to create auth gate: %v", err)
	}

	deps := api.Deps{
		Recipes:     service.NewRecipeService(db),
		Resolver:    service.NewResolverService(lookup, media, transcriber, ocr, redisClient),
		Synthesis:   service.NewSynthesisService(llm, illustrator),
		Transcriber: transcriber,
		OCR:         ocr,
		Gate:        gate,
		ImportLimit: middleware.NewImportRateLimiter(redisClient).Middleware(),
	}

	srv := server.New(db, deps)

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
		log.Printf("Starting server on %s", addr)
		errChan <- srv.Start(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

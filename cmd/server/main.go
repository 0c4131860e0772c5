package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cardpulse/cardpulse/internal/api"
	"github.com/cardpulse/cardpulse/internal/database"
	"github.com/cardpulse/cardpulse/internal/services"
)

func main() {
	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./cardpulse.db"
	}

	// Initialize database
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize market data client
	apiKey := os.Getenv("POKEMON_TCG_API_KEY")
	if apiKey == "" {
		log.Println("Warning: POKEMON_TCG_API_KEY not set, card lookups will be unavailable")
	}
	marketService := services.NewPokemonTCGService(apiKey)

	// Initialize currency converter
	currencyService := services.NewCurrencyService(os.Getenv("EXCHANGE_RATE_API_URL"), services.DefaultRetryPolicy)

	// Initialize sample data generator
	sampleService := services.NewSampleDataService()

	// Initialize OCR pipeline and classifier
	ocrService := services.NewOCRService("")
	if !ocrService.IsAvailable() {
		log.Println("Warning: tesseract not found, card image analysis will fail")
	}

	keywordThreshold := 0
	if thresholdStr := os.Getenv("CARD_KEYWORD_THRESHOLD"); thresholdStr != "" {
		if threshold, err := strconv.Atoi(thresholdStr); err == nil {
			keywordThreshold = threshold
		}
	}
	classifier := services.NewCardTextClassifier(keywordThreshold)

	// Initialize image storage for uploads
	imageStorage := services.NewImageStorageService(os.Getenv("UPLOAD_DIR"))

	// Initialize snapshot service for daily value tracking
	snapshotService := services.NewSnapshotService()

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start snapshot service in background
	go snapshotService.Start(ctx)

	// Setup router
	router := api.SetupRouter(marketService, currencyService, sampleService, ocrService, classifier, imageStorage, snapshotService)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the snapshot worker
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

package api

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardpulse/cardpulse/internal/api/handlers"
	"github.com/cardpulse/cardpulse/internal/metrics"
	"github.com/cardpulse/cardpulse/internal/services"
)

func SetupRouter(marketService *services.PokemonTCGService, currencyService *services.CurrencyService, sampleService *services.SampleDataService, ocrService *services.OCRService, classifier *services.CardTextClassifier, imageStorage *services.ImageStorageService, snapshotService *services.SnapshotService) *gin.Engine {
	router := gin.Default()
	router.Use(metricsMiddleware())

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Username"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	// Initialize handlers
	cardHandler := handlers.NewCardHandler(marketService, sampleService, ocrService, classifier, imageStorage)
	currencyHandler := handlers.NewCurrencyHandler(currencyService)
	watchlistHandler := handlers.NewWatchlistHandler()
	collectionHandler := handlers.NewCollectionHandler(snapshotService)

	// Serve stored uploads
	if imageStorage != nil {
		router.Static("/images/uploads", imageStorage.GetStorageDir())
	}

	// API routes
	api := router.Group("/api")
	{
		// Card routes
		cards := api.Group("/cards")
		{
			cards.GET("/lookup", cardHandler.LookupCard)
			cards.POST("/analyze", cardHandler.AnalyzeCard)
			cards.GET("/ocr-status", cardHandler.OCRStatus)
		}

		// Market routes
		market := api.Group("/market")
		{
			market.GET("/trends", cardHandler.MarketTrends)
			market.GET("/sample", cardHandler.SampleListings)
			market.GET("/price-history", cardHandler.PriceHistory)
		}

		// Currency routes
		currency := api.Group("/currency")
		{
			currency.GET("/options", currencyHandler.Options)
			currency.GET("/convert", currencyHandler.Convert)
			currency.GET("/format", currencyHandler.Format)
		}

		// Watchlist routes
		watchlist := api.Group("/watchlist")
		{
			watchlist.GET("", watchlistHandler.GetWatchlist)
			watchlist.POST("", watchlistHandler.AddToWatchlist)
			watchlist.DELETE("/:id", watchlistHandler.RemoveFromWatchlist)
		}

		// Shared collection routes
		collections := api.Group("/collections")
		{
			collections.GET("", collectionHandler.ListCollections)
			collections.PUT("", collectionHandler.UpdateCollection)
			collections.POST("/:username/rating", collectionHandler.RateCollection)
			collections.GET("/value-history", collectionHandler.ValueHistory)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// metricsMiddleware records request counts and latency per route.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, httpStatusLabel(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func httpStatusLabel(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

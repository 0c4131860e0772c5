package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardpulse/cardpulse/internal/metrics"
	"github.com/cardpulse/cardpulse/internal/services"
)

type CardHandler struct {
	marketService  *services.PokemonTCGService
	sampleService  *services.SampleDataService
	ocrService     *services.OCRService
	classifier     *services.CardTextClassifier
	imageStorage   *services.ImageStorageService
}

func NewCardHandler(market *services.PokemonTCGService, sample *services.SampleDataService, ocr *services.OCRService, classifier *services.CardTextClassifier, storage *services.ImageStorageService) *CardHandler {
	return &CardHandler{
		marketService: market,
		sampleService: sample,
		ocrService:    ocr,
		classifier:    classifier,
		imageStorage:  storage,
	}
}

// LookupCard returns live market quotes for all variants of a named card.
func (h *CardHandler) LookupCard(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'name' is required"})
		return
	}

	quotes, err := h.marketService.LookupCard(c.Request.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingAPIKey):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": quotes, "count": len(quotes)})
}

// MarketTrends returns aggregate price statistics over recent cards.
func (h *CardHandler) MarketTrends(c *gin.Context) {
	trends, err := h.marketService.MarketTrends(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingAPIKey):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNoData):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, trends)
}

// SampleListings returns synthetic market listings.
func (h *CardHandler) SampleListings(c *gin.Context) {
	count, _ := strconv.Atoi(c.DefaultQuery("count", "50"))
	if count > 500 {
		count = 500
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": h.sampleService.Listings(count),
		"metrics":  h.sampleService.MarketMetrics(),
	})
}

// PriceHistory returns a synthetic price series for charting.
func (h *CardHandler) PriceHistory(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days > 365 {
		days = 365
	}
	c.JSON(http.StatusOK, gin.H{"history": h.sampleService.PriceHistory(days)})
}

// AnalyzeCard accepts a multipart image upload, runs OCR over it, and
// returns the classifier's reading plus similar sample listings.
func (h *CardHandler) AnalyzeCard(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "form file 'image' is required"})
		return
	}

	if !services.IsAllowedExtension(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only jpg, jpeg, and png uploads are accepted"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}

	// Keep a copy of the original upload for later review.
	savedFilename, err := h.imageStorage.SaveImage(imageData, filepath.Ext(fileHeader.Filename))
	if err != nil {
		log.Printf("Warning: failed to store uploaded image: %v", err)
	}

	result, err := h.ocrService.ExtractText(imageData)
	if err != nil {
		metrics.OCRRequestsTotal.WithLabelValues("failed").Inc()
		if errors.Is(err, services.ErrDecodeImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	isPokemon := h.classifier.IsPokemonCard(result.Lines)
	if !isPokemon {
		metrics.OCRRequestsTotal.WithLabelValues("not_card").Inc()
	} else {
		metrics.OCRRequestsTotal.WithLabelValues("success").Inc()
	}

	info := h.classifier.ExtractInfo(result.Lines)

	c.JSON(http.StatusOK, gin.H{
		"is_pokemon_card": isPokemon,
		"card_info":       info,
		"raw_text":        result.Lines,
		"stored_image":    savedFilename,
		"similar_cards":   h.sampleService.Listings(5),
	})
}

// OCRStatus reports whether server-side OCR is available.
func (h *CardHandler) OCRStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"available": h.ocrService.IsAvailable()})
}

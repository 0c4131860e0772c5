package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cardpulse/cardpulse/internal/database"
	"github.com/cardpulse/cardpulse/internal/metrics"
	"github.com/cardpulse/cardpulse/internal/models"
	"github.com/cardpulse/cardpulse/internal/services"
)

// featuredCardLimit is how many cards of a collection the shared view shows.
const featuredCardLimit = 3

type CollectionHandler struct {
	snapshotService *services.SnapshotService
}

func NewCollectionHandler(snapshot *services.SnapshotService) *CollectionHandler {
	return &CollectionHandler{snapshotService: snapshot}
}

// UpdateCollection publishes the acting user's collection to the shared view.
func (h *CollectionHandler) UpdateCollection(c *gin.Context) {
	username := requestUsername(c)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Username header is required"})
		return
	}

	var req models.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cardsJSON, err := json.Marshal(req.Cards)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cards payload"})
		return
	}

	collection := models.UserCollection{
		Username:   username,
		CardsJSON:  string(cardsJSON),
		CardCount:  len(req.Cards),
		TotalValue: req.TotalValue,
		UpdatedAt:  time.Now(),
	}

	db := database.GetDB()
	if err := db.Save(&collection).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updateCollectionMetrics(db)
	c.JSON(http.StatusOK, collection)
}

// ListCollections returns every published collection except the acting
// user's own, with average ratings and a few featured cards.
func (h *CollectionHandler) ListCollections(c *gin.Context) {
	username := requestUsername(c)

	db := database.GetDB()
	var collections []models.UserCollection
	if err := db.Order("updated_at DESC").Find(&collections).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summaries := make([]models.CollectionSummary, 0, len(collections))
	for _, col := range collections {
		if col.Username == username {
			continue
		}

		summary := models.CollectionSummary{
			Username:   col.Username,
			CardCount:  col.CardCount,
			TotalValue: col.TotalValue,
			UpdatedAt:  col.UpdatedAt,
		}
		summary.AverageRating, summary.RatingCount = averageRating(db, col.Username)

		var cards []models.CardQuote
		if err := json.Unmarshal([]byte(col.CardsJSON), &cards); err == nil {
			if len(cards) > featuredCardLimit {
				cards = cards[:featuredCardLimit]
			}
			summary.FeaturedCards = cards
		}

		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, gin.H{"collections": summaries, "count": len(summaries)})
}

// RateCollection records the acting user's 1-5 rating of another user's
// collection. Re-rating overwrites the previous rating.
func (h *CollectionHandler) RateCollection(c *gin.Context) {
	rater := requestUsername(c)
	if rater == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Username header is required"})
		return
	}

	owner := c.Param("username")
	if owner == rater {
		c.JSON(http.StatusBadRequest, gin.H{"error": "you cannot rate your own collection"})
		return
	}

	var req models.RateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var ownerCollection models.UserCollection
	if err := db.First(&ownerCollection, "username = ?", owner).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		return
	}

	rating := models.CollectionRating{Owner: owner, Rater: rater}
	err := db.Where("owner = ? AND rater = ?", owner, rater).
		Assign(models.CollectionRating{Rating: req.Rating}).
		FirstOrCreate(&rating).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	average, count := averageRating(db, owner)
	c.JSON(http.StatusOK, gin.H{
		"owner":          owner,
		"rating":         req.Rating,
		"average_rating": average,
		"rating_count":   count,
	})
}

// ValueHistory returns daily combined-value snapshots for charting.
func (h *CollectionHandler) ValueHistory(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	snapshots, err := h.snapshotService.ValueHistory(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots, "count": len(snapshots)})
}

// averageRating computes the mean rating for a collection owner.
func averageRating(db *gorm.DB, owner string) (float64, int) {
	var ratings []models.CollectionRating
	if err := db.Where("owner = ?", owner).Find(&ratings).Error; err != nil {
		log.Printf("Warning: failed to load ratings for %s: %v", owner, err)
		return 0, 0
	}
	if len(ratings) == 0 {
		return 0, 0
	}

	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings)), len(ratings)
}

func updateCollectionMetrics(db *gorm.DB) {
	var collections []models.UserCollection
	if err := db.Find(&collections).Error; err != nil {
		return
	}
	total := 0.0
	for _, col := range collections {
		total += col.TotalValue
	}
	metrics.SharedCollectionsTotal.Set(float64(len(collections)))
	metrics.SharedCollectionsValueUSD.Set(total)
}

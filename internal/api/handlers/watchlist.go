package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cardpulse/cardpulse/internal/database"
	"github.com/cardpulse/cardpulse/internal/metrics"
	"github.com/cardpulse/cardpulse/internal/models"
)

type WatchlistHandler struct{}

func NewWatchlistHandler() *WatchlistHandler {
	return &WatchlistHandler{}
}

// requestUsername resolves the acting user from the X-Username header.
func requestUsername(c *gin.Context) string {
	return c.GetHeader("X-Username")
}

// GetWatchlist returns the user's watchlist, oldest first.
func (h *WatchlistHandler) GetWatchlist(c *gin.Context) {
	username := requestUsername(c)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Username header is required"})
		return
	}

	db := database.GetDB()
	var items []models.WatchlistItem
	if err := db.Where("username = ?", username).Order("added_at ASC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// AddToWatchlist adds a card to the user's watchlist. A card is unique per
// user by its (name, set, number) tuple; re-adding the same card conflicts.
func (h *WatchlistHandler) AddToWatchlist(c *gin.Context) {
	username := requestUsername(c)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Username header is required"})
		return
	}

	var req models.AddWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var existing models.WatchlistItem
	err := db.Where("username = ? AND name = ? AND set_name = ? AND number = ?",
		username, req.Name, req.SetName, req.Number).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "card is already on the watchlist", "item": existing})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	item := models.WatchlistItem{
		Username:  username,
		Name:      req.Name,
		SetName:   req.SetName,
		Number:    req.Number,
		Condition: req.Condition,
		Price:     req.Price,
		Trend:     req.Trend,
		ImageURL:  req.ImageURL,
		AddedAt:   time.Now(),
	}
	if err := db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updateWatchlistMetrics(db)
	c.JSON(http.StatusCreated, item)
}

// RemoveFromWatchlist deletes one of the user's watchlist entries by id.
func (h *WatchlistHandler) RemoveFromWatchlist(c *gin.Context) {
	username := requestUsername(c)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Username header is required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid watchlist item id"})
		return
	}

	db := database.GetDB()
	result := db.Where("id = ? AND username = ?", id, username).Delete(&models.WatchlistItem{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "watchlist item not found"})
		return
	}

	updateWatchlistMetrics(db)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func updateWatchlistMetrics(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.WatchlistItem{}).Count(&count).Error; err == nil {
		metrics.WatchlistItemsTotal.Set(float64(count))
	}
}

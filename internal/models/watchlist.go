package models

import (
	"time"
)

// WatchlistItem is a card a user is tracking. A card is identified by its
// (name, set, number) tuple, so the same card can appear on different
// users' lists but only once per user.
type WatchlistItem struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username   string    `json:"username" gorm:"not null;index;uniqueIndex:idx_watch_user_card"`
	Name       string    `json:"name" gorm:"not null;uniqueIndex:idx_watch_user_card"`
	SetName    string    `json:"set_name" gorm:"uniqueIndex:idx_watch_user_card"`
	Number     string    `json:"number" gorm:"uniqueIndex:idx_watch_user_card"`
	Condition  string    `json:"condition"`
	Price      float64   `json:"price"`
	Trend      Trend     `json:"trend"`
	ImageURL   string    `json:"image_url,omitempty"`
	AddedAt    time.Time `json:"added_at"`
}

// AddWatchlistRequest is the payload for adding a card to a watchlist.
type AddWatchlistRequest struct {
	Name      string  `json:"name" binding:"required"`
	SetName   string  `json:"set_name"`
	Number    string  `json:"number"`
	Condition string  `json:"condition"`
	Price     float64 `json:"price"`
	Trend     Trend   `json:"trend"`
	ImageURL  string  `json:"image_url"`
}

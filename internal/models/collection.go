package models

import (
	"time"
)

// UserCollection is one user's shared collection summary. Cards are stored
// as the JSON payload the user last published; the server only interprets
// the total value and card count.
type UserCollection struct {
	Username   string    `json:"username" gorm:"primaryKey"`
	CardsJSON  string    `json:"-" gorm:"column:cards_json"`
	CardCount  int       `json:"card_count"`
	TotalValue float64   `json:"total_value"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CollectionRating is one user's 1-5 rating of another user's collection.
// One row per (owner, rater) pair; re-rating overwrites.
type CollectionRating struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Owner     string    `json:"owner" gorm:"not null;index;uniqueIndex:idx_rating_owner_rater"`
	Rater     string    `json:"rater" gorm:"not null;uniqueIndex:idx_rating_owner_rater"`
	Rating    int       `json:"rating" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CollectionSummary is the listing view of a shared collection, with the
// owner's average rating folded in.
type CollectionSummary struct {
	Username      string      `json:"username"`
	CardCount     int         `json:"card_count"`
	TotalValue    float64     `json:"total_value"`
	AverageRating float64     `json:"average_rating"`
	RatingCount   int         `json:"rating_count"`
	UpdatedAt     time.Time   `json:"updated_at"`
	FeaturedCards []CardQuote `json:"featured_cards,omitempty"`
}

// UpdateCollectionRequest publishes a user's collection to the shared view.
type UpdateCollectionRequest struct {
	Cards      []CardQuote `json:"cards"`
	TotalValue float64     `json:"total_value"`
}

// RateCollectionRequest rates another user's collection.
type RateCollectionRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

// CollectionValueSnapshot records the combined value of all shared
// collections at the end of a day.
type CollectionValueSnapshot struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SnapshotDate time.Time `json:"snapshot_date" gorm:"not null;index"`
	Users        int       `json:"users"`
	TotalCards   int       `json:"total_cards"`
	TotalValue   float64   `json:"total_value"`
	CreatedAt    time.Time `json:"created_at"`
}

package models

import (
	"time"
)

// Trend describes the short-term price direction of a card.
type Trend string

const (
	TrendRising  Trend = "Rising"
	TrendFalling Trend = "Falling"
	TrendStable  Trend = "Stable"
)

// Availability is a coarse supply tier derived from a card's rarity string.
type Availability string

const (
	AvailabilityCommon   Availability = "Common"
	AvailabilityUncommon Availability = "Uncommon"
	AvailabilityRare     Availability = "Rare"
	AvailabilityVeryRare Availability = "Very Rare"
)

// CardQuote is a single card's market snapshot. Quotes are transient:
// they live in the quote cache for a few minutes and are never persisted.
type CardQuote struct {
	Name         string       `json:"name"`
	SetName      string       `json:"set_name"`
	Number       string       `json:"number"`
	Rarity       string       `json:"rarity"`
	Supertype    string       `json:"supertype"`
	Subtypes     []string     `json:"subtypes,omitempty"`
	Artist       string       `json:"artist,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	CurrentPrice float64      `json:"current_price"`
	Trend        Trend        `json:"trend"`
	Availability Availability `json:"availability"`
	LastUpdate   time.Time    `json:"last_update"`
}

// MarketTrends aggregates prices over a batch of recently released cards.
type MarketTrends struct {
	TotalCards   int       `json:"total_cards"`
	AveragePrice float64   `json:"average_price"`
	HighestPrice float64   `json:"highest_price"`
	LowestPrice  float64   `json:"lowest_price"`
	LastUpdate   time.Time `json:"last_update"`
}

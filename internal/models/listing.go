package models

import (
	"time"
)

// SampleListing is a synthetic market listing used to pad dashboard views
// where no live data exists for a card.
type SampleListing struct {
	Name              string    `json:"name"`
	Condition         string    `json:"condition"`
	SetName           string    `json:"set_name"`
	Price             float64   `json:"price"`
	LastSold          time.Time `json:"last_sold"`
	MarketTrend       string    `json:"market_trend"`
	PopularityScore   int       `json:"popularity_score"`
	AvailableQuantity int       `json:"available_quantity"`
}

// PricePoint is one day of a synthetic price history series.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// MarketMetrics are synthetic aggregate figures for the market overview.
type MarketMetrics struct {
	TotalListings int     `json:"total_listings"`
	AvgPrice      float64 `json:"avg_price"`
	DailyVolume   int     `json:"daily_volume"`
	PriceTrend    float64 `json:"price_trend"`
}

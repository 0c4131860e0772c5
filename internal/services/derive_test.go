package services

import (
	"testing"

	"github.com/cardpulse/cardpulse/internal/models"
)

func TestCalculateTrend(t *testing.T) {
	tests := []struct {
		name     string
		avgSell  float64
		avg7     float64
		expected models.Trend
	}{
		{"rising", 12.50, 10.00, models.TrendRising},
		{"falling", 8.00, 10.00, models.TrendFalling},
		{"stable", 10.00, 10.00, models.TrendStable},
		{"both zero", 0, 0, models.TrendStable},
		{"no history", 5.00, 0, models.TrendRising},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateTrend(tt.avgSell, tt.avg7)
			if result != tt.expected {
				t.Errorf("CalculateTrend(%v, %v) = %s, want %s", tt.avgSell, tt.avg7, result, tt.expected)
			}
		})
	}
}

func TestAvailabilityFromRarity(t *testing.T) {
	tests := []struct {
		input    string
		expected models.Availability
	}{
		{"Rare Ultra", models.AvailabilityVeryRare},
		{"Ultra Rare", models.AvailabilityVeryRare},
		{"Rare", models.AvailabilityRare},
		{"Rare Holo", models.AvailabilityRare},
		{"rare holo GX", models.AvailabilityRare},
		{"Uncommon", models.AvailabilityUncommon},
		{"Common", models.AvailabilityCommon},
		{"Promo", models.AvailabilityCommon},
		{"", models.AvailabilityCommon},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := AvailabilityFromRarity(tt.input)
			if result != tt.expected {
				t.Errorf("AvailabilityFromRarity(%q) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}

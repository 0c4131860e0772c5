package services

import (
	"strings"

	"github.com/cardpulse/cardpulse/internal/models"
)

// CalculateTrend compares the current average sell price against the
// 7-day average from the same market snapshot. This is a same-snapshot
// heuristic, not a time-series computation: the upstream API only exposes
// both figures side by side.
func CalculateTrend(averageSellPrice, avg7 float64) models.Trend {
	switch {
	case averageSellPrice > avg7:
		return models.TrendRising
	case averageSellPrice < avg7:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}

// AvailabilityFromRarity maps a free-form rarity string to a supply tier
// by substring content.
func AvailabilityFromRarity(rarity string) models.Availability {
	r := strings.ToLower(rarity)
	switch {
	case strings.Contains(r, "ultra") && strings.Contains(r, "rare"):
		return models.AvailabilityVeryRare
	case strings.Contains(r, "rare"):
		return models.AvailabilityRare
	case strings.Contains(r, "uncommon"):
		return models.AvailabilityUncommon
	default:
		return models.AvailabilityCommon
	}
}

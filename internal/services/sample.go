package services

import (
	"math"
	"math/rand"
	"time"

	"github.com/cardpulse/cardpulse/internal/models"
)

var sampleCardNames = []string{
	"Blue-Eyes White Dragon", "Black Lotus", "Charizard", "Pikachu",
	"Dark Magician", "Mox Pearl", "Time Walk", "Blastoise",
	"Red-Eyes Black Dragon", "Ancestral Recall", "Mewtwo", "Venusaur",
}

var sampleConditions = []string{"Mint", "Near Mint", "Excellent", "Good", "Poor"}

var sampleSets = []string{"Base Set", "Alpha", "Beta", "Unlimited", "1st Edition"}

var sampleTrendArrows = []string{"↑", "↓", "→"}

// SampleDataService generates synthetic market listings for views where no
// live data exists for a card.
type SampleDataService struct {
	rng *rand.Rand
}

// NewSampleDataService creates a generator seeded from the clock.
func NewSampleDataService() *SampleDataService {
	return &SampleDataService{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Listings returns count random card listings.
func (s *SampleDataService) Listings(count int) []models.SampleListing {
	if count <= 0 {
		count = 50
	}

	listings := make([]models.SampleListing, count)
	now := time.Now()
	for i := range listings {
		basePrice := 100 + s.rng.Float64()*9900
		currentPrice := basePrice * (1 + (s.rng.Float64()*0.4 - 0.2))

		listings[i] = models.SampleListing{
			Name:              sampleCardNames[s.rng.Intn(len(sampleCardNames))],
			Condition:         sampleConditions[s.rng.Intn(len(sampleConditions))],
			SetName:           sampleSets[s.rng.Intn(len(sampleSets))],
			Price:             math.Round(currentPrice*100) / 100,
			LastSold:          now.AddDate(0, 0, -(1 + s.rng.Intn(29))),
			MarketTrend:       sampleTrendArrows[s.rng.Intn(len(sampleTrendArrows))],
			PopularityScore:   1 + s.rng.Intn(99),
			AvailableQuantity: 1 + s.rng.Intn(49),
		}
	}
	return listings
}

// PriceHistory returns a random-walk price series ending today. Each step
// moves up to ±5% and the price never drops below 10.
func (s *SampleDataService) PriceHistory(days int) []models.PricePoint {
	if days <= 0 {
		days = 30
	}

	points := make([]models.PricePoint, days)
	price := 100.0
	start := time.Now().AddDate(0, 0, -(days - 1))
	for i := range points {
		points[i] = models.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Price: math.Round(price*100) / 100,
		}
		change := s.rng.Float64()*10 - 5
		price = math.Max(price*(1+change/100), 10)
	}
	return points
}

// MarketMetrics returns random aggregate figures for the market overview.
func (s *SampleDataService) MarketMetrics() models.MarketMetrics {
	return models.MarketMetrics{
		TotalListings: 1000 + s.rng.Intn(4000),
		AvgPrice:      math.Round((500+s.rng.Float64()*1500)*100) / 100,
		DailyVolume:   100 + s.rng.Intn(900),
		PriceTrend:    math.Round((s.rng.Float64()*20-10)*100) / 100,
	}
}

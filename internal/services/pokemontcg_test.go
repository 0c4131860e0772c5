package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cardpulse/cardpulse/internal/models"
)

func newTestMarketService(t *testing.T, handler http.HandlerFunc) (*PokemonTCGService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewPokemonTCGService("test-key")
	svc.baseURL = server.URL
	return svc, server
}

func TestLookupCardMissingAPIKey(t *testing.T) {
	svc := NewPokemonTCGService("")

	_, err := svc.LookupCard(context.Background(), "charizard")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestLookupCardNotFound(t *testing.T) {
	svc, _ := newTestMarketService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": []}`))
	})

	_, err := svc.LookupCard(context.Background(), "charizard")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLookupCardFiltersNonMatching(t *testing.T) {
	// Upstream partial matching can return unrelated cards; all of them
	// must be filtered out, which counts as not found.
	svc, _ := newTestMarketService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"name": "Mewtwo", "set": {"name": "Base"}}]}`))
	})

	_, err := svc.LookupCard(context.Background(), "charizard")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for filtered-out results, got %v", err)
	}
}

func TestLookupCardUpstreamError(t *testing.T) {
	svc, _ := newTestMarketService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := svc.LookupCard(context.Background(), "charizard")
	if err == nil {
		t.Fatal("Expected error for non-200 upstream status")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("Upstream error should not be reported as not found")
	}
}

func TestLookupCardDerivedFields(t *testing.T) {
	svc, _ := newTestMarketService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("Expected X-Api-Key test-key, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{
				"name": "Charizard V",
				"number": "19",
				"rarity": "Rare Ultra",
				"supertype": "Pokémon",
				"artist": "Ryuta Fuse",
				"set": {"name": "Darkness Ablaze", "total": 189},
				"images": {"small": "http://img/small.png", "large": "http://img/large.png"},
				"cardmarket": {"prices": {"averageSellPrice": 12.5, "avg7": 10.0}}
			},
			{
				"name": "Charizard",
				"number": "4",
				"rarity": "Rare Holo",
				"supertype": "Pokémon",
				"set": {"name": "Base", "total": 102},
				"images": {"small": "http://img/base-small.png"},
				"cardmarket": {"prices": {"averageSellPrice": 200.0, "avg7": 250.0}}
			}
		]}`))
	})

	quotes, err := svc.LookupCard(context.Background(), "Charizard")
	if err != nil {
		t.Fatalf("LookupCard returned error: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("Expected 2 quotes, got %d", len(quotes))
	}

	first := quotes[0]
	if first.Trend != models.TrendRising {
		t.Errorf("Expected Rising trend, got %s", first.Trend)
	}
	if first.Availability != models.AvailabilityVeryRare {
		t.Errorf("Expected Very Rare availability, got %s", first.Availability)
	}
	if first.CurrentPrice != 12.5 {
		t.Errorf("Expected price 12.5, got %v", first.CurrentPrice)
	}
	if first.ImageURL != "http://img/large.png" {
		t.Errorf("Expected large image, got %s", first.ImageURL)
	}

	second := quotes[1]
	if second.Trend != models.TrendFalling {
		t.Errorf("Expected Falling trend, got %s", second.Trend)
	}
	if second.Availability != models.AvailabilityRare {
		t.Errorf("Expected Rare availability, got %s", second.Availability)
	}
	if second.ImageURL != "http://img/base-small.png" {
		t.Errorf("Expected small image fallback, got %s", second.ImageURL)
	}
}

func TestLookupCardCached(t *testing.T) {
	var calls atomic.Int32
	svc, _ := newTestMarketService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"name": "Pikachu", "set": {"name": "Base"}}]}`))
	})

	for i := 0; i < 3; i++ {
		// Query normalization means these all share one cache entry.
		if _, err := svc.LookupCard(context.Background(), "  Pikachu "); err != nil {
			t.Fatalf("LookupCard returned error: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 upstream call for 3 lookups, got %d", got)
	}
}

func TestMarketTrends(t *testing.T) {
	svc, _ := newTestMarketService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"name": "A", "cardmarket": {"prices": {"averageSellPrice": 10}}},
			{"name": "B", "cardmarket": {"prices": {"averageSellPrice": 20}}},
			{"name": "C", "cardmarket": {"prices": {"averageSellPrice": 30}}}
		]}`))
	})

	trends, err := svc.MarketTrends(context.Background())
	if err != nil {
		t.Fatalf("MarketTrends returned error: %v", err)
	}

	if trends.TotalCards != 3 {
		t.Errorf("Expected 3 total cards, got %d", trends.TotalCards)
	}
	if trends.AveragePrice != 20 {
		t.Errorf("Expected average 20, got %v", trends.AveragePrice)
	}
	if trends.HighestPrice != 30 {
		t.Errorf("Expected highest 30, got %v", trends.HighestPrice)
	}
	if trends.LowestPrice != 10 {
		t.Errorf("Expected lowest 10, got %v", trends.LowestPrice)
	}
}

func TestMarketTrendsNoData(t *testing.T) {
	// Cards without cardmarket prices cannot contribute to the aggregate.
	svc, _ := newTestMarketService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"name": "A"}, {"name": "B"}]}`))
	})

	_, err := svc.MarketTrends(context.Background())
	if !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

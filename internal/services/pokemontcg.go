package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cardpulse/cardpulse/internal/cache"
	"github.com/cardpulse/cardpulse/internal/metrics"
	"github.com/cardpulse/cardpulse/internal/models"
)

const (
	pokemonTCGBaseURL        = "https://api.pokemontcg.io/v2"
	pokemonTCGDefaultTimeout = 30 * time.Second

	// TTLs match how quickly each view goes stale: per-card quotes are
	// refreshed every few minutes, the market-wide aggregate hourly.
	quoteCacheTTL  = 5 * time.Minute
	trendsCacheTTL = time.Hour

	quoteCacheSize  = 512
	trendsPageSize  = 100
	lookupPageSize  = 20
)

// PokemonTCGService fetches card market data from the Pokemon TCG API and
// derives trend and availability fields for each card.
type PokemonTCGService struct {
	client  *http.Client
	apiKey  string
	baseURL string
	limiter *rate.Limiter

	quoteCache  *cache.TTL[[]models.CardQuote]
	trendsCache *cache.TTL[*models.MarketTrends]
}

type pokemonSearchResponse struct {
	Data []pokemonCard `json:"data"`
}

type pokemonCard struct {
	Name       string          `json:"name"`
	Number     string          `json:"number"`
	Rarity     string          `json:"rarity"`
	Supertype  string          `json:"supertype"`
	Subtypes   []string        `json:"subtypes"`
	Artist     string          `json:"artist"`
	Set        pokemonSet      `json:"set"`
	Images     pokemonImages   `json:"images"`
	CardMarket *pokemonCardMkt `json:"cardmarket"`
}

type pokemonSet struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

type pokemonImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

type pokemonCardMkt struct {
	Prices pokemonCardMktPrices `json:"prices"`
}

type pokemonCardMktPrices struct {
	AverageSellPrice float64 `json:"averageSellPrice"`
	Avg7             float64 `json:"avg7"`
}

// NewPokemonTCGService creates a new Pokemon TCG API client. The API key
// may be empty; lookups then fail with ErrMissingAPIKey instead of burning
// unauthenticated requests against the stricter anonymous quota.
func NewPokemonTCGService(apiKey string) *PokemonTCGService {
	return &PokemonTCGService{
		client: &http.Client{
			Timeout: pokemonTCGDefaultTimeout,
		},
		apiKey: apiKey,
		baseURL: pokemonTCGBaseURL,
		// The API allows 1000 requests/day with a key; 2 req/s with a
		// small burst keeps interactive bursts snappy without hammering.
		limiter:     rate.NewLimiter(rate.Limit(2), 5),
		quoteCache:  cache.NewTTL[[]models.CardQuote]("quotes", quoteCacheSize, quoteCacheTTL),
		trendsCache: cache.NewTTL[*models.MarketTrends]("trends", 1, trendsCacheTTL),
	}
}

// LookupCard fetches all variants of a named card, filters to those whose
// name contains the query (case-insensitive), and maps each to a quote
// with derived fields. Results are memoized per query for 5 minutes.
func (s *PokemonTCGService) LookupCard(ctx context.Context, name string) ([]models.CardQuote, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil, ErrNotFound
	}

	return s.quoteCache.GetOrFetch(ctx, query, func(ctx context.Context) ([]models.CardQuote, error) {
		params := url.Values{}
		params.Set("q", fmt.Sprintf("name:*%s*", query))
		params.Set("orderBy", "-cardmarket.prices.averageSellPrice")
		params.Set("pageSize", fmt.Sprintf("%d", lookupPageSize))

		var searchResp pokemonSearchResponse
		if err := s.get(ctx, "/cards", params, &searchResp); err != nil {
			return nil, err
		}

		if len(searchResp.Data) == 0 {
			return nil, ErrNotFound
		}

		now := time.Now()
		quotes := make([]models.CardQuote, 0, len(searchResp.Data))
		for _, pc := range searchResp.Data {
			if !strings.Contains(strings.ToLower(pc.Name), query) {
				continue
			}
			quotes = append(quotes, convertToQuote(pc, now))
		}

		if len(quotes) == 0 {
			return nil, ErrNotFound
		}
		return quotes, nil
	})
}

// MarketTrends fetches a fixed page of recent cards and folds their prices
// into min/max/average statistics. Memoized for an hour.
func (s *PokemonTCGService) MarketTrends(ctx context.Context) (*models.MarketTrends, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	return s.trendsCache.GetOrFetch(ctx, "trends", func(ctx context.Context) (*models.MarketTrends, error) {
		params := url.Values{}
		params.Set("pageSize", fmt.Sprintf("%d", trendsPageSize))
		params.Set("orderBy", "set.releaseDate")

		var searchResp pokemonSearchResponse
		if err := s.get(ctx, "/cards", params, &searchResp); err != nil {
			return nil, err
		}

		var prices []float64
		for _, pc := range searchResp.Data {
			if pc.CardMarket == nil {
				continue
			}
			prices = append(prices, pc.CardMarket.Prices.AverageSellPrice)
		}

		if len(prices) == 0 {
			return nil, ErrNoData
		}

		trends := &models.MarketTrends{
			TotalCards:   len(searchResp.Data),
			HighestPrice: prices[0],
			LowestPrice:  prices[0],
			LastUpdate:   time.Now(),
		}
		var sum float64
		for _, p := range prices {
			sum += p
			if p > trends.HighestPrice {
				trends.HighestPrice = p
			}
			if p < trends.LowestPrice {
				trends.LowestPrice = p
			}
		}
		trends.AveragePrice = sum / float64(len(prices))

		return trends, nil
	})
}

func (s *PokemonTCGService) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", s.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", s.apiKey)

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues("pokemontcg").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("pokemontcg", "error").Inc()
		return fmt.Errorf("failed to fetch market data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues("pokemontcg", "error").Inc()
		return fmt.Errorf("pokemon tcg API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("pokemontcg", "error").Inc()
		return fmt.Errorf("failed to decode pokemon tcg response: %w", err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues("pokemontcg", "success").Inc()
	return nil
}

func convertToQuote(pc pokemonCard, now time.Time) models.CardQuote {
	quote := models.CardQuote{
		Name:         pc.Name,
		SetName:      pc.Set.Name,
		Number:       pc.Number,
		Rarity:       pc.Rarity,
		Supertype:    pc.Supertype,
		Subtypes:     pc.Subtypes,
		Artist:       pc.Artist,
		ImageURL:     pc.Images.Large,
		Availability: AvailabilityFromRarity(pc.Rarity),
		Trend:        models.TrendStable,
		LastUpdate:   now,
	}
	if quote.ImageURL == "" {
		quote.ImageURL = pc.Images.Small
	}
	if pc.CardMarket != nil {
		quote.CurrentPrice = pc.CardMarket.Prices.AverageSellPrice
		quote.Trend = CalculateTrend(pc.CardMarket.Prices.AverageSellPrice, pc.CardMarket.Prices.Avg7)
	}
	return quote
}

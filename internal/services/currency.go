package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cardpulse/cardpulse/internal/cache"
	"github.com/cardpulse/cardpulse/internal/metrics"
	"github.com/cardpulse/cardpulse/internal/models"
)

const (
	exchangeRateBaseURL        = "https://api.exchangerate.host"
	exchangeRateDefaultTimeout = 10 * time.Second

	ratesCacheTTL  = time.Hour
	ratesCacheSize = 32
)

// RetryPolicy controls how rate fetches are retried on failure.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy retries a failed rate fetch twice more with a fixed
// one second pause.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Backoff: time.Second}

// CurrencyService fetches exchange rates and converts and formats amounts
// between currencies. Rate tables are cached for an hour per base currency.
type CurrencyService struct {
	client  *http.Client
	baseURL string
	retry   RetryPolicy

	ratesCache *cache.TTL[*models.ExchangeRateTable]
}

type exchangeRateResponse struct {
	Rates map[string]float64 `json:"rates"`
	Date  string             `json:"date"`
}

// NewCurrencyService creates a currency service against the given rate API
// base URL ("" uses exchangerate.host).
func NewCurrencyService(baseURL string, retry RetryPolicy) *CurrencyService {
	if baseURL == "" {
		baseURL = exchangeRateBaseURL
	}
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy
	}
	return &CurrencyService{
		client: &http.Client{
			Timeout: exchangeRateDefaultTimeout,
		},
		baseURL:    baseURL,
		retry:      retry,
		ratesCache: cache.NewTTL[*models.ExchangeRateTable]("rates", ratesCacheSize, ratesCacheTTL),
	}
}

// Rates fetches the rate table for a base currency, retrying per the
// configured policy. The wait between attempts is cancellable via ctx.
func (s *CurrencyService) Rates(ctx context.Context, base string) (*models.ExchangeRateTable, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = "USD"
	}

	return s.ratesCache.GetOrFetch(ctx, base, func(ctx context.Context) (*models.ExchangeRateTable, error) {
		var lastErr error
		for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
			if attempt > 1 {
				metrics.CurrencyRetriesTotal.Inc()
				select {
				case <-time.After(s.retry.Backoff):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}

			table, err := s.fetchRates(ctx, base)
			if err == nil {
				return table, nil
			}
			lastErr = err
		}
		return nil, fmt.Errorf("failed to fetch exchange rates after %d attempts: %w", s.retry.MaxAttempts, lastErr)
	})
}

func (s *CurrencyService) fetchRates(ctx context.Context, base string) (*models.ExchangeRateTable, error) {
	reqURL := fmt.Sprintf("%s/latest?base=%s", s.baseURL, base)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues("exchangerate").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("exchangerate", "error").Inc()
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues("exchangerate", "error").Inc()
		return nil, fmt.Errorf("exchange rate API returned status %d", resp.StatusCode)
	}

	var rateResp exchangeRateResponse
	if err := json.NewDecoder(resp.Body).Decode(&rateResp); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("exchangerate", "error").Inc()
		return nil, fmt.Errorf("failed to decode exchange rate response: %w", err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues("exchangerate", "success").Inc()
	return &models.ExchangeRateTable{
		BaseCurrency: base,
		Rates:        rateResp.Rates,
		Date:         rateResp.Date,
	}, nil
}

// Convert converts an amount between two currency codes. Same-currency
// conversions short-circuit without touching the rate API.
func (s *CurrencyService) Convert(ctx context.Context, amount float64, from, to string) (*models.Conversion, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to {
		return &models.Conversion{
			Amount: amount,
			Rate:   1.0,
			Date:   time.Now().Format("2006-01-02"),
		}, nil
	}

	table, err := s.Rates(ctx, from)
	if err != nil {
		return nil, err
	}

	rate, ok := table.Rates[to]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}

	return &models.Conversion{
		Amount: amount * rate,
		Rate:   rate,
		Date:   table.Date,
	}, nil
}

var currencySymbols = map[string]string{
	"USD": "$", "EUR": "€", "GBP": "£", "JPY": "¥",
	"AUD": "A$", "CAD": "C$", "CHF": "Fr.",
	"CNY": "¥", "HKD": "HK$", "NZD": "NZ$",
}

// zeroDecimalCurrencies are conventionally shown without cents.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
}

// FormatAmount renders an amount with the currency's symbol and decimal
// convention. Unlisted currencies get a "CODE " prefix.
func FormatAmount(amount float64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency + " "
	}

	if zeroDecimalCurrencies[currency] {
		return symbol + groupThousands(fmt.Sprintf("%d", int64(amount)))
	}

	formatted := fmt.Sprintf("%.2f", amount)
	dot := strings.IndexByte(formatted, '.')
	return symbol + groupThousands(formatted[:dot]) + formatted[dot:]
}

// groupThousands inserts commas into a plain integer string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// CurrencyOption pairs a currency code with its display name.
type CurrencyOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CurrencyOptions returns the supported display currencies.
func CurrencyOptions() []CurrencyOption {
	return []CurrencyOption{
		{"USD", "US Dollar"},
		{"EUR", "Euro"},
		{"GBP", "British Pound"},
		{"JPY", "Japanese Yen"},
		{"AUD", "Australian Dollar"},
		{"CAD", "Canadian Dollar"},
		{"CHF", "Swiss Franc"},
		{"CNY", "Chinese Yuan"},
		{"HKD", "Hong Kong Dollar"},
		{"NZD", "New Zealand Dollar"},
		{"SEK", "Swedish Krona"},
		{"KRW", "South Korean Won"},
		{"SGD", "Singapore Dollar"},
		{"NOK", "Norwegian Krone"},
		{"MXN", "Mexican Peso"},
		{"INR", "Indian Rupee"},
		{"RUB", "Russian Ruble"},
		{"ZAR", "South African Rand"},
		{"BRL", "Brazilian Real"},
		{"AED", "UAE Dirham"},
	}
}

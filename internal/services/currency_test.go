package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestConvertSameCurrency(t *testing.T) {
	// Same-currency conversion must not touch the rate API.
	svc := NewCurrencyService("http://invalid.localhost", DefaultRetryPolicy)

	result, err := svc.Convert(context.Background(), 42.50, "USD", "USD")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if result.Amount != 42.50 {
		t.Errorf("Expected amount 42.50, got %v", result.Amount)
	}
	if result.Rate != 1.0 {
		t.Errorf("Expected rate 1.0, got %v", result.Rate)
	}
}

func TestConvertWithRateTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("base") != "USD" {
			t.Errorf("Expected base=USD, got %s", r.URL.Query().Get("base"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rates": {"EUR": 0.9, "GBP": 0.8}, "date": "2026-08-30"}`))
	}))
	defer server.Close()

	svc := NewCurrencyService(server.URL, RetryPolicy{MaxAttempts: 1, Backoff: time.Millisecond})

	result, err := svc.Convert(context.Background(), 100, "USD", "EUR")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if result.Amount != 90.0 {
		t.Errorf("Expected amount 90.0, got %v", result.Amount)
	}
	if result.Rate != 0.9 {
		t.Errorf("Expected rate 0.9, got %v", result.Rate)
	}
	if result.Date != "2026-08-30" {
		t.Errorf("Expected date 2026-08-30, got %s", result.Date)
	}
}

func TestConvertUnknownCurrency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rates": {"EUR": 0.9}, "date": "2026-08-30"}`))
	}))
	defer server.Close()

	svc := NewCurrencyService(server.URL, RetryPolicy{MaxAttempts: 1, Backoff: time.Millisecond})

	_, err := svc.Convert(context.Background(), 100, "USD", "XYZ")
	if !errors.Is(err, ErrUnknownCurrency) {
		t.Errorf("Expected ErrUnknownCurrency, got %v", err)
	}
}

func TestRatesRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rates": {"EUR": 0.9}, "date": "2026-08-30"}`))
	}))
	defer server.Close()

	svc := NewCurrencyService(server.URL, RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond})

	table, err := svc.Rates(context.Background(), "USD")
	if err != nil {
		t.Fatalf("Rates returned error after retries: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
	if table.Rates["EUR"] != 0.9 {
		t.Errorf("Expected EUR rate 0.9, got %v", table.Rates["EUR"])
	}
}

func TestRatesExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewCurrencyService(server.URL, RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond})

	_, err := svc.Rates(context.Background(), "USD")
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestRatesCached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rates": {"EUR": 0.9}, "date": "2026-08-30"}`))
	}))
	defer server.Close()

	svc := NewCurrencyService(server.URL, RetryPolicy{MaxAttempts: 1, Backoff: time.Millisecond})

	for i := 0; i < 3; i++ {
		if _, err := svc.Rates(context.Background(), "USD"); err != nil {
			t.Fatalf("Rates returned error: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 upstream call for 3 lookups, got %d", got)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		expected string
	}{
		{"USD two decimals", 1234.5, "USD", "$1,234.50"},
		{"JPY zero decimals", 1234.5, "JPY", "¥1,234"},
		{"KRW zero decimals", 50000.75, "KRW", "KRW 50,000"},
		{"EUR symbol", 99.99, "EUR", "€99.99"},
		{"GBP symbol", 0.5, "GBP", "£0.50"},
		{"unlisted code prefix", 12.3, "SEK", "SEK 12.30"},
		{"large amount grouping", 1234567.89, "USD", "$1,234,567.89"},
		{"lowercase code", 10, "usd", "$10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatAmount(tt.amount, tt.currency)
			if result != tt.expected {
				t.Errorf("FormatAmount(%v, %q) = %q, want %q", tt.amount, tt.currency, result, tt.expected)
			}
		})
	}
}

func TestCurrencyOptions(t *testing.T) {
	options := CurrencyOptions()
	if len(options) != 20 {
		t.Errorf("Expected 20 currency options, got %d", len(options))
	}
	if options[0].Code != "USD" || options[0].Name != "US Dollar" {
		t.Errorf("Expected USD first, got %+v", options[0])
	}
}

package services

import (
	"errors"
)

var (
	// ErrMissingAPIKey is returned when no Pokemon TCG API key is configured.
	ErrMissingAPIKey = errors.New("no Pokemon TCG API key configured")

	// ErrNotFound is returned when a card lookup matches nothing upstream.
	ErrNotFound = errors.New("no data found for this card")

	// ErrNoData is returned when a trends batch contains no priced cards.
	ErrNoData = errors.New("no priced cards in market data")

	// ErrUnknownCurrency is returned when the target currency is absent
	// from the fetched rate table.
	ErrUnknownCurrency = errors.New("currency not found in exchange rates")

	// ErrDecodeImage is returned when an uploaded image cannot be parsed.
	ErrDecodeImage = errors.New("failed to decode image")
)

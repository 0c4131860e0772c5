package models

// ExchangeRateTable holds the multiplier from a base currency to every
// other currency the rate provider knows about.
type ExchangeRateTable struct {
	BaseCurrency string             `json:"base_currency"`
	Rates        map[string]float64 `json:"rates"`
	Date         string             `json:"date"`
}

// Conversion is the result of converting an amount between two currencies.
type Conversion struct {
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate"`
	Date   string  `json:"date"`
}

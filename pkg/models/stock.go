// Package models defines the core data structures used throughout stockdash.
package models

import (
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// NormalizeSymbol trims whitespace and upper-cases a ticker symbol.
// "  aapl " → "AAPL". An empty result means no symbol was given.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// PriceBar represents one weekly candlestick of price history.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Increasing reports whether the bar closed at or above its open.
func (b PriceBar) Increasing() bool {
	return b.Close >= b.Open
}

// PriceRow is a PriceBar enriched with derived columns.
type PriceRow struct {
	PriceBar
	MA50      null.Float `json:"ma50"`       // absent for the first window-1 rows
	MarketCap null.Float `json:"market_cap"` // absent when shares outstanding is unknown
}

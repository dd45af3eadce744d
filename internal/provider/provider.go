// Package provider defines the market data abstraction the dashboard reads
// from, plus a process-wide memoizing decorator around it.
package provider

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/seenimoa/stockdash/pkg/models"
)

// Provider is the interface that all data providers must implement.
// Every method is keyed by a normalized symbol and is read-only.
type Provider interface {
	// Name returns the provider identifier, e.g. "yfinance".
	Name() string

	// Info returns the company profile and fundamentals.
	Info(ctx context.Context, symbol string) (*models.CompanyInfo, error)

	// Statements returns income statement rows for the given period,
	// ordered by period end ascending.
	Statements(ctx context.Context, symbol string, period models.Period) ([]models.StatementRow, error)

	// PriceHistory returns one year of weekly bars ordered by date ascending.
	PriceHistory(ctx context.Context, symbol string) ([]models.PriceBar, error)
}

// Dataset names one independently fetched and cached series.
type Dataset string

const (
	DatasetInfo       Dataset = "info"
	DatasetHistory    Dataset = "history"
	DatasetStatements Dataset = "statements"
)

// ErrSymbolNotFound is returned when the provider has no data for a symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidSymbol is returned for symbols with characters no exchange
// ticker uses.
var ErrInvalidSymbol = errors.New("invalid symbol")

// symbolPattern covers Yahoo tickers such as BRK-B, 0700.HK, ^GSPC and
// EURUSD=X, in normalized (upper-case) form.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9.^=-]{1,20}$`)

// ValidateSymbol rejects empty or malformed symbols before any network
// call is made.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return &ErrMissingParam{Param: "symbol"}
	}
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("%w %q", ErrInvalidSymbol, symbol)
	}
	return nil
}

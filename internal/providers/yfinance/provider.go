// Package yfinance implements the Yahoo Finance data provider.
// It wraps Yahoo Finance's public v8 chart and v10 quoteSummary APIs
// behind provider.Provider.
//
// Yahoo Finance is a free, no-API-key provider; requests are rate
// limited on our side to stay polite.
package yfinance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/stockdash/internal/infra"
	"github.com/seenimoa/stockdash/internal/provider"
)

const (
	providerName = "yfinance"

	// DefaultBaseURL is the Yahoo Finance query host.
	DefaultBaseURL = "https://query1.finance.yahoo.com"
)

// Options configures a Provider. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 = unlimited
	UserAgent string
	Range     string // chart range, default "1y"
	Interval  string // chart interval, default "1wk"
	Logger    *slog.Logger
}

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	baseURL  string
	rng      string
	interval string
	http     *infra.Getter
	log      *slog.Logger
}

var _ provider.Provider = (*Provider)(nil)

// New creates a Yahoo Finance provider.
func New(opts Options) *Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Range == "" {
		opts.Range = "1y"
	}
	if opts.Interval == "" {
		opts.Interval = "1wk"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Provider{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		rng:      opts.Range,
		interval: opts.Interval,
		http:     infra.NewGetter(opts.Timeout, opts.RateLimit, opts.UserAgent),
		log:      opts.Logger.With("provider", providerName),
	}
}

// Name returns "yfinance".
func (p *Provider) Name() string { return providerName }

// --- Shared helpers ---

func (p *Provider) chartURL(symbol string) string {
	return fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		p.baseURL, url.PathEscape(symbol), url.QueryEscape(p.rng), url.QueryEscape(p.interval))
}

func (p *Provider) quoteSummaryURL(symbol string, modules ...string) string {
	return fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		p.baseURL, url.PathEscape(symbol), url.QueryEscape(strings.Join(modules, ",")))
}

// fetchJSON GETs url into dest, mapping Yahoo's 404 to ErrSymbolNotFound.
func (p *Provider) fetchJSON(ctx context.Context, rawURL string, dest any) error {
	err := p.http.GetJSON(ctx, rawURL, dest)
	var httpErr *infra.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return provider.ErrSymbolNotFound
	}
	return err
}

// apiError converts an error object embedded in a Yahoo response.
func apiError(e *yfError) error {
	if e == nil {
		return nil
	}
	if strings.EqualFold(e.Code, "Not Found") {
		return provider.ErrSymbolNotFound
	}
	return fmt.Errorf("yfinance API error: %s: %s", e.Code, e.Description)
}

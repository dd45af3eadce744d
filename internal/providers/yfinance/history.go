package yfinance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
)

// PriceHistory fetches the trailing range of bars at the configured
// interval (one year of weekly bars by default).
func (p *Provider) PriceHistory(ctx context.Context, symbol string) ([]models.PriceBar, error) {
	if err := provider.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	var resp yfChartResponse
	if err := p.fetchJSON(ctx, p.chartURL(symbol), &resp); err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	if err := apiError(resp.Chart.Error); err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, provider.ErrSymbolNotFound)
	}

	bars := parseBars(resp.Chart.Result[0])
	p.log.Debug("history fetched", "symbol", symbol, "bars", len(bars))
	return bars, nil
}

// parseBars converts YF chart data to PriceBars. Rows with no close are
// dropped; Yahoo emits them for weeks still in progress or halted.
func parseBars(result yfChartResult) []models.PriceBar {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	q := result.Indicators.Quote[0]

	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		b := models.PriceBar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *q.Close[i],
		}
		b.Open = valueAt(q.Open, i, b.Close)
		b.High = valueAt(q.High, i, b.Close)
		b.Low = valueAt(q.Low, i, b.Close)
		if i < len(q.Volume) && q.Volume[i] != nil {
			b.Volume = *q.Volume[i]
		}
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}

func valueAt(vals []*float64, i int, fallback float64) float64 {
	if i < len(vals) && vals[i] != nil {
		return *vals[i]
	}
	return fallback
}

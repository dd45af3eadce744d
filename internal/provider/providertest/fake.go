// Package providertest provides an in-memory provider.Provider for tests.
package providertest

import (
	"context"
	"sync"
	"time"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
)

// Fake serves canned data and counts calls per dataset.
// A non-nil error field makes the matching method fail.
type Fake struct {
	InfoData   map[string]*models.CompanyInfo
	History    map[string][]models.PriceBar
	Quarterly  map[string][]models.StatementRow
	Annual     map[string][]models.StatementRow
	InfoErr    error
	HistoryErr error
	StmtErr    error

	mu    sync.Mutex
	calls map[provider.Dataset]int
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		InfoData:  map[string]*models.CompanyInfo{},
		History:   map[string][]models.PriceBar{},
		Quarterly: map[string][]models.StatementRow{},
		Annual:    map[string][]models.StatementRow{},
		calls:     map[provider.Dataset]int{},
	}
}

// Name returns "fake".
func (f *Fake) Name() string { return "fake" }

// Calls returns how many times a dataset was requested.
func (f *Fake) Calls(ds provider.Dataset) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ds]
}

func (f *Fake) count(ds provider.Dataset) {
	f.mu.Lock()
	f.calls[ds]++
	f.mu.Unlock()
}

// Info returns the canned info for symbol.
func (f *Fake) Info(_ context.Context, symbol string) (*models.CompanyInfo, error) {
	f.count(provider.DatasetInfo)
	if f.InfoErr != nil {
		return nil, f.InfoErr
	}
	info, ok := f.InfoData[symbol]
	if !ok {
		return nil, provider.ErrSymbolNotFound
	}
	return info, nil
}

// Statements returns the canned statements for symbol and period.
func (f *Fake) Statements(_ context.Context, symbol string, period models.Period) ([]models.StatementRow, error) {
	f.count(provider.DatasetStatements)
	if f.StmtErr != nil {
		return nil, f.StmtErr
	}
	if period == models.PeriodAnnual {
		return f.Annual[symbol], nil
	}
	return f.Quarterly[symbol], nil
}

// PriceHistory returns the canned bars for symbol.
func (f *Fake) PriceHistory(_ context.Context, symbol string) ([]models.PriceBar, error) {
	f.count(provider.DatasetHistory)
	if f.HistoryErr != nil {
		return nil, f.HistoryErr
	}
	bars, ok := f.History[symbol]
	if !ok {
		return nil, provider.ErrSymbolNotFound
	}
	return bars, nil
}

// WeeklyBars generates n weekly bars with close = 100+i, alternating
// up and down candles.
func WeeklyBars(n int) []models.PriceBar {
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, n)
	for i := range bars {
		c := 100 + float64(i)
		o := c - 1
		if i%2 == 1 {
			o = c + 1
		}
		bars[i] = models.PriceBar{
			Date:   start.AddDate(0, 0, 7*i),
			Open:   o,
			High:   c + 2,
			Low:    c - 2,
			Close:  c,
			Volume: int64(1_000_000 + i*1000),
		}
	}
	return bars
}

// SampleInfo returns a fully populated CompanyInfo for symbol.
func SampleInfo(symbol string) *models.CompanyInfo {
	return &models.CompanyInfo{
		Symbol:            symbol,
		Name:              null.StringFrom("Apple Inc."),
		Summary:           null.StringFrom("Apple Inc. designs, manufactures, and markets smartphones, personal computers, tablets, wearables, and accessories worldwide. The company offers iPhone, a line of smartphones; Mac, a line of personal computers; iPad, a line of multi-purpose tablets."),
		Website:           null.StringFrom("https://www.apple.com"),
		Currency:          null.StringFrom("USD"),
		MarketCap:         null.FloatFrom(2_950_000_000_000),
		TrailingEPS:       null.FloatFrom(6.43),
		TrailingPE:        null.FloatFrom(29.5),
		FiftyTwoWeekHigh:  null.FloatFrom(199.62),
		FiftyTwoWeekLow:   null.FloatFrom(164.08),
		DividendYield:     null.FloatFrom(0.0045),
		ProfitMargin:      null.FloatFrom(0.2531),
		ReturnOnEquity:    null.FloatFrom(1.4725),
		DebtToEquity:      null.FloatFrom(1.8123),
		FreeCashFlow:      null.FloatFrom(84_726_500_352),
		SharesOutstanding: null.FloatFrom(15_000_000_000),
	}
}

// SampleStatements returns four rows labeled like Yahoo period ends.
func SampleStatements(period models.Period) []models.StatementRow {
	ends := []string{"2023-09-30", "2023-12-31", "2024-03-31", "2024-06-30"}
	if period == models.PeriodAnnual {
		ends = []string{"2021-09-25", "2022-09-24", "2023-09-30", "2024-09-28"}
	}
	rows := make([]models.StatementRow, len(ends))
	for i, e := range ends {
		t, _ := time.Parse("2006-01-02", e)
		rows[i] = models.StatementRow{
			Label:        e,
			PeriodEnd:    t,
			TotalRevenue: null.FloatFrom(90e9 + float64(i)*1e9),
			NetIncome:    null.FloatFrom(20e9 + float64(i)*5e8),
		}
	}
	return rows
}

// Seeded returns a Fake populated with sample data for symbol.
func Seeded(symbol string) *Fake {
	f := New()
	f.InfoData[symbol] = SampleInfo(symbol)
	f.History[symbol] = WeeklyBars(52)
	f.Quarterly[symbol] = SampleStatements(models.PeriodQuarterly)
	f.Annual[symbol] = SampleStatements(models.PeriodAnnual)
	return f
}

package yfinance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
)

// Statements fetches income statements at the given granularity.
func (p *Provider) Statements(ctx context.Context, symbol string, period models.Period) ([]models.StatementRow, error) {
	if err := provider.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	module := "incomeStatementHistory"
	if period == models.PeriodQuarterly {
		module = "incomeStatementHistoryQuarterly"
	}

	var resp yfStatementsResponse
	if err := p.fetchJSON(ctx, p.quoteSummaryURL(symbol, module), &resp); err != nil {
		return nil, fmt.Errorf("yfinance %s %s: %w", module, symbol, err)
	}
	if err := apiError(resp.QuoteSummary.Error); err != nil {
		return nil, fmt.Errorf("yfinance %s %s: %w", module, symbol, err)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yfinance %s %s: %w", module, symbol, provider.ErrSymbolNotFound)
	}

	r := resp.QuoteSummary.Result[0]
	container := r.IncomeStatementHistory
	if period == models.PeriodQuarterly {
		container = r.IncomeStatementHistoryQuarterly
	}

	rows := parseStatements(container)
	p.log.Debug("statements fetched", "symbol", symbol, "period", period, "rows", len(rows))
	return rows, nil
}

// parseStatements keeps the period end, revenue and net income of each
// statement, oldest first.
func parseStatements(container *yfStatementContainer) []models.StatementRow {
	if container == nil || len(container.Statements) == 0 {
		return nil
	}
	rows := make([]models.StatementRow, 0, len(container.Statements))
	for _, stmt := range container.Statements {
		label, end := extractDate(stmt)
		if label == "" {
			continue
		}
		rows = append(rows, models.StatementRow{
			Label:        label,
			PeriodEnd:    end,
			TotalRevenue: valRaw(stmt, "totalRevenue"),
			NetIncome:    valRaw(stmt, "netIncome"),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].PeriodEnd.Before(rows[j].PeriodEnd) })
	return rows
}

// extractDate returns the statement end date as a YYYY-MM-DD label.
func extractDate(stmt map[string]yfFinVal) (string, time.Time) {
	v, ok := stmt["endDate"]
	if !ok {
		return "", time.Time{}
	}
	if v.Raw != nil && *v.Raw > 0 {
		t := time.Unix(int64(*v.Raw), 0).UTC()
		return t.Format("2006-01-02"), t
	}
	if t, err := time.Parse("2006-01-02", v.Fmt); err == nil {
		return v.Fmt, t
	}
	return "", time.Time{}
}

// valRaw extracts the raw numeric value for a key, invalid when absent.
func valRaw(stmt map[string]yfFinVal, key string) null.Float {
	if v, ok := stmt[key]; ok && v.Raw != nil {
		return null.FloatFrom(*v.Raw)
	}
	return null.Float{}
}

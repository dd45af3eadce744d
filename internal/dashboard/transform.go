package dashboard

import (
	"math"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/internal/analysis/technical"
	"github.com/seenimoa/stockdash/pkg/models"
)

// PriceRows adds the moving average and, when shares is valid, the
// derived market cap (close × shares) to each bar.
func PriceRows(bars []models.PriceBar, window int, shares null.Float) []models.PriceRow {
	ma := technical.SMA(technical.Closes(bars), window)
	rows := make([]models.PriceRow, len(bars))
	for i, b := range bars {
		rows[i] = models.PriceRow{PriceBar: b}
		if !math.IsNaN(ma[i]) {
			rows[i].MA50 = null.FloatFrom(ma[i])
		}
		if shares.Valid && shares.Float64 > 0 {
			rows[i].MarketCap = null.FloatFrom(b.Close * shares.Float64)
		}
	}
	return rows
}

// HasMarketCap reports whether the market-cap trend can be drawn.
func HasMarketCap(info *models.CompanyInfo) bool {
	return info != nil && info.SharesOutstanding.Valid && info.SharesOutstanding.Float64 > 0
}

// AnnualLabel shortens a fiscal-year end date to its year:
// "2023-06-30" → "2023". Labels shorter than four characters are kept.
func AnnualLabel(label string) string {
	r := []rune(label)
	if len(r) < 4 {
		return label
	}
	return string(r[:4])
}

// FinancialRows relabels statement rows for display. Annual rows are
// keyed by year; quarterly rows keep the period end date.
func FinancialRows(rows []models.StatementRow, period models.Period) []models.StatementRow {
	out := make([]models.StatementRow, len(rows))
	copy(out, rows)
	if period == models.PeriodAnnual {
		for i := range out {
			out[i].Label = AnnualLabel(out[i].Label)
		}
	}
	return out
}

package dashboard

import (
	"testing"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/internal/provider/providertest"
	"github.com/seenimoa/stockdash/pkg/models"
)

func TestPriceRowsMovingAverage(t *testing.T) {
	bars := providertest.WeeklyBars(52)
	rows := PriceRows(bars, 50, null.Float{})
	if len(rows) != 52 {
		t.Fatalf("rows: got %d, want 52", len(rows))
	}
	for i := 0; i < 49; i++ {
		if rows[i].MA50.Valid {
			t.Fatalf("row %d: MA should be undefined before the window fills", i)
		}
	}
	// closes are 100..151, so the first full window averages 100..149.
	if !rows[49].MA50.Valid || rows[49].MA50.Float64 != 124.5 {
		t.Errorf("row 49 MA: got %v, want 124.5", rows[49].MA50)
	}
	if rows[51].MA50.Float64 != 126.5 {
		t.Errorf("row 51 MA: got %v, want 126.5", rows[51].MA50.Float64)
	}
	if rows[0].MarketCap.Valid {
		t.Error("market cap should be absent without shares")
	}
}

func TestPriceRowsShortHistory(t *testing.T) {
	rows := PriceRows(providertest.WeeklyBars(10), 50, null.Float{})
	for i, r := range rows {
		if r.MA50.Valid {
			t.Errorf("row %d: MA defined with fewer bars than the window", i)
		}
	}
}

func TestPriceRowsMarketCap(t *testing.T) {
	rows := PriceRows(providertest.WeeklyBars(3), 50, null.FloatFrom(1000))
	for i, r := range rows {
		want := r.Close * 1000
		if !r.MarketCap.Valid || r.MarketCap.Float64 != want {
			t.Errorf("row %d market cap: got %v, want %v", i, r.MarketCap, want)
		}
	}
}

func TestHasMarketCap(t *testing.T) {
	if HasMarketCap(nil) {
		t.Error("nil info")
	}
	info := &models.CompanyInfo{}
	if HasMarketCap(info) {
		t.Error("absent shares")
	}
	info.SharesOutstanding = null.FloatFrom(0)
	if HasMarketCap(info) {
		t.Error("zero shares")
	}
	info.SharesOutstanding = null.FloatFrom(15e9)
	if !HasMarketCap(info) {
		t.Error("valid shares")
	}
}

func TestFinancialRows(t *testing.T) {
	annual := FinancialRows(providertest.SampleStatements(models.PeriodAnnual), models.PeriodAnnual)
	want := []string{"2021", "2022", "2023", "2024"}
	for i, r := range annual {
		if r.Label != want[i] {
			t.Errorf("annual row %d: got %q, want %q", i, r.Label, want[i])
		}
	}

	src := providertest.SampleStatements(models.PeriodQuarterly)
	quarterly := FinancialRows(src, models.PeriodQuarterly)
	if quarterly[0].Label != "2023-09-30" {
		t.Errorf("quarterly label: got %q", quarterly[0].Label)
	}

	FinancialRows(src, models.PeriodAnnual)
	if src[0].Label != "2023-09-30" {
		t.Error("FinancialRows modified its input")
	}
}

func TestAnnualLabel(t *testing.T) {
	if got := AnnualLabel("2023-06-30"); got != "2023" {
		t.Errorf("got %q", got)
	}
	if got := AnnualLabel("FY"); got != "FY" {
		t.Errorf("short label: got %q", got)
	}
}

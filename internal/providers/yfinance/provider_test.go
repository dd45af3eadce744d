package yfinance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
)

const infoJSON = `{"quoteSummary":{"result":[{
	"price":{"longName":"Apple Inc.","shortName":"Apple","currency":"USD","marketCap":{"raw":2950000000000,"fmt":"2.95T"}},
	"assetProfile":{"longBusinessSummary":"Apple designs phones.","website":"https://www.apple.com"},
	"summaryDetail":{"trailingPE":{"raw":29.5,"fmt":"29.50"},"fiftyTwoWeekHigh":{"raw":199.62},"fiftyTwoWeekLow":{"raw":164.08},"dividendYield":{}},
	"defaultKeyStatistics":{"trailingEps":{"raw":6.43},"sharesOutstanding":{"raw":15000000000}},
	"financialData":{"profitMargins":{"raw":0.2531},"returnOnEquity":{"raw":1.4725},"freeCashflow":{"raw":84726500352}}
}],"error":null}}`

const chartJSON = `{"chart":{"result":[{
	"meta":{"symbol":"AAPL","currency":"USD"},
	"timestamp":[1704412800,1705017600,1705622400],
	"indicators":{"quote":[{
		"open":[185.0,186.0,190.0],
		"high":[187.0,189.0,192.0],
		"low":[183.0,185.0,188.0],
		"close":[186.0,null,191.0],
		"volume":[1000,2000,null]
	}]}
}],"error":null}}`

const quarterlyJSON = `{"quoteSummary":{"result":[{"incomeStatementHistoryQuarterly":{"incomeStatementHistory":[
	{"endDate":{"raw":1719705600,"fmt":"2024-06-30"},"totalRevenue":{"raw":85777000000},"netIncome":{"raw":21448000000}},
	{"endDate":{"raw":1711843200,"fmt":"2024-03-31"},"totalRevenue":{"raw":90753000000},"netIncome":{}}
]}}],"error":null}}`

const annualJSON = `{"quoteSummary":{"result":[{"incomeStatementHistory":{"incomeStatementHistory":[
	{"endDate":{"fmt":"2023-09-30"},"totalRevenue":{"raw":383285000000},"netIncome":{"raw":96995000000}}
]}}],"error":null}}`

// mockYahoo serves canned responses keyed by path and module.
func mockYahoo(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "/v8/finance/chart/AAPL"):
			if r.URL.Query().Get("range") != "1y" || r.URL.Query().Get("interval") != "1wk" {
				t.Errorf("chart query: got %s", r.URL.RawQuery)
			}
			w.Write([]byte(chartJSON))
		case strings.Contains(r.URL.Path, "/v10/finance/quoteSummary/AAPL"):
			modules := r.URL.Query().Get("modules")
			switch modules {
			case "incomeStatementHistoryQuarterly":
				w.Write([]byte(quarterlyJSON))
			case "incomeStatementHistory":
				w.Write([]byte(annualJSON))
			default:
				w.Write([]byte(infoJSON))
			}
		case strings.Contains(r.URL.Path, "/v10/finance/quoteSummary/ZZZZ"):
			w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for symbol: ZZZZ"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestProvider(srv *httptest.Server) *Provider {
	return New(Options{BaseURL: srv.URL})
}

func TestProviderName(t *testing.T) {
	if got := New(Options{}).Name(); got != "yfinance" {
		t.Errorf("Name: got %q, want yfinance", got)
	}
}

func TestInfo(t *testing.T) {
	srv := mockYahoo(t)
	defer srv.Close()

	info, err := newTestProvider(srv).Info(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}

	if info.Name.String != "Apple Inc." {
		t.Errorf("Name: got %q, want %q", info.Name.String, "Apple Inc.")
	}
	if info.Summary.String != "Apple designs phones." {
		t.Errorf("Summary: got %q", info.Summary.String)
	}
	if info.Website.String != "https://www.apple.com" {
		t.Errorf("Website: got %q", info.Website.String)
	}
	if !info.MarketCap.Valid || info.MarketCap.Float64 != 2950000000000 {
		t.Errorf("MarketCap: got %+v", info.MarketCap)
	}
	if info.TrailingPE.Float64 != 29.5 {
		t.Errorf("TrailingPE: got %v", info.TrailingPE.Float64)
	}
	if info.ProfitMargin.Float64 != 0.2531 {
		t.Errorf("ProfitMargin: got %v", info.ProfitMargin.Float64)
	}
	if info.SharesOutstanding.Float64 != 15000000000 {
		t.Errorf("SharesOutstanding: got %v", info.SharesOutstanding.Float64)
	}
	if info.DividendYield.Valid {
		t.Error("DividendYield should be absent for an empty {raw,fmt} object")
	}
	if info.DebtToEquity.Valid {
		t.Error("DebtToEquity should be absent when the key is missing")
	}
	if info.LogoURL.Valid {
		t.Error("LogoURL is not reported by Yahoo and should stay absent")
	}
}

func TestInfoNotFound(t *testing.T) {
	srv := mockYahoo(t)
	defer srv.Close()

	_, err := newTestProvider(srv).Info(context.Background(), "ZZZZ")
	if !errors.Is(err, provider.ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
}

func TestHTTP404IsNotFound(t *testing.T) {
	srv := mockYahoo(t)
	defer srv.Close()

	_, err := newTestProvider(srv).PriceHistory(context.Background(), "NOPE")
	if !errors.Is(err, provider.ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
}

func TestEmptySymbol(t *testing.T) {
	p := New(Options{BaseURL: "http://127.0.0.1:0"})
	var missing *provider.ErrMissingParam
	if _, err := p.Info(context.Background(), ""); !errors.As(err, &missing) {
		t.Errorf("Info(\"\"): got %v", err)
	}
	if _, err := p.PriceHistory(context.Background(), ""); !errors.As(err, &missing) {
		t.Errorf("PriceHistory(\"\"): got %v", err)
	}
	if _, err := p.Statements(context.Background(), "", models.PeriodAnnual); !errors.As(err, &missing) {
		t.Errorf("Statements(\"\"): got %v", err)
	}
}

func TestPriceHistory(t *testing.T) {
	srv := mockYahoo(t)
	defer srv.Close()

	bars, err := newTestProvider(srv).PriceHistory(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("PriceHistory: %v", err)
	}
	// The null close row is dropped.
	if len(bars) != 2 {
		t.Fatalf("bars: got %d, want 2", len(bars))
	}
	if bars[0].Close != 186.0 || bars[0].Volume != 1000 {
		t.Errorf("bar 0: got %+v", bars[0])
	}
	if bars[1].Close != 191.0 || bars[1].Volume != 0 {
		t.Errorf("bar 1: got %+v", bars[1])
	}
	if !bars[0].Date.Before(bars[1].Date) {
		t.Error("bars should be ordered by date ascending")
	}
}

func TestStatementsQuarterly(t *testing.T) {
	srv := mockYahoo(t)
	defer srv.Close()

	rows, err := newTestProvider(srv).Statements(context.Background(), "AAPL", models.PeriodQuarterly)
	if err != nil {
		t.Fatalf("Statements: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}
	if rows[0].Label != "2024-03-31" || rows[1].Label != "2024-06-30" {
		t.Errorf("labels: got %q, %q; want ascending", rows[0].Label, rows[1].Label)
	}
	if rows[0].NetIncome.Valid {
		t.Error("empty netIncome should be absent")
	}
	if rows[1].TotalRevenue.Float64 != 85777000000 {
		t.Errorf("revenue: got %v", rows[1].TotalRevenue.Float64)
	}
}

func TestStatementsAnnual(t *testing.T) {
	srv := mockYahoo(t)
	defer srv.Close()

	rows, err := newTestProvider(srv).Statements(context.Background(), "AAPL", models.PeriodAnnual)
	if err != nil {
		t.Fatalf("Statements: %v", err)
	}
	if len(rows) != 1 || rows[0].Label != "2023-09-30" {
		t.Fatalf("rows: got %+v", rows)
	}
	if rows[0].NetIncome.Float64 != 96995000000 {
		t.Errorf("net income: got %v", rows[0].NetIncome.Float64)
	}
}

func TestFirstMatchFallsThrough(t *testing.T) {
	doc := map[string]any{
		"price": map[string]any{"shortName": "Apple"},
	}
	v, ok := firstMatch(doc, []string{"$.price.longName", "$.price.shortName"})
	if !ok || v.(string) != "Apple" {
		t.Errorf("firstMatch: got %v, %v", v, ok)
	}
	if _, ok := firstMatch(doc, []string{"$.missing.path"}); ok {
		t.Error("expected no match")
	}
}

package dashboard

import (
	"strconv"
	"time"

	"github.com/seenimoa/stockdash/pkg/models"
)

// Page copy.
const (
	Title        = "Stock Market Insights Dashboard"
	SymbolPrompt = "Enter a stock symbol"
	PeriodLabel  = "Period"

	HeaderCompany    = "🏢 Company Information"
	HeaderSummary    = "📖 Business Summary"
	HeaderMetrics    = "📊 Key Metrics"
	HeaderInsights   = "📌 Additional Insights"
	HeaderPrice      = "📈 Stock Price Movement"
	HeaderVolume     = "📊 Trading Volume"
	HeaderMarketCap  = "🏦 Market Capitalization Trend"
	HeaderFinancials = "💰 Revenue & Net Income Trends"
	HeaderHeadlines  = "📰 Latest Headlines"

	MarketCapUnavailable = "Market Cap data not available for this stock."
)

// MALabel names the moving average line for a window of n bars.
func MALabel(n int) string { return strconv.Itoa(n) + "-day MA" }

// Insight captions, shown under present values only.
const (
	CaptionROE = "ROE shows how effectively the company generates profit from shareholders’ equity."
	CaptionDE  = "D/E compares total debt to shareholders’ equity, showing financial leverage."
	CaptionFCF = "Free Cash Flow represents cash available after expenses, useful for expansion or debt repayment."
)

// Page is the complete view model of one render, in display order.
type Page struct {
	Title      string            `json:"title"`
	Symbol     string            `json:"symbol"`
	Period     models.Period     `json:"period"`
	Periods    []models.Period   `json:"periods"`
	Empty      bool              `json:"empty"` // no symbol entered
	MALabel    string            `json:"ma_label"`
	Company    CompanySection    `json:"company"`
	Price      ChartSection      `json:"price"`
	Volume     ChartSection      `json:"volume"`
	MarketCap  ChartSection      `json:"market_cap"`
	Financials FinancialSection  `json:"financials"`
	Headlines  *HeadlinesSection `json:"headlines,omitempty"`
	History    []models.PriceRow `json:"history"`
	RenderedAt time.Time         `json:"rendered_at"`
}

// Section carries the header and the section-local error banner.
type Section struct {
	Header string `json:"header"`
	Error  string `json:"error,omitempty"`
}

// CompanySection is the info panel: logo, name, summary and metrics.
type CompanySection struct {
	Section
	Name          string     `json:"name"`
	LogoURL       string     `json:"logo_url,omitempty"`
	Summary       string     `json:"summary"`
	SummaryButton string     `json:"summary_button,omitempty"` // empty when the summary fits
	ShowFull      bool       `json:"show_full"`
	Columns       [][]Metric `json:"columns"`
	Insights      []Metric   `json:"insights"`
}

// ChartSection describes one History-backed chart. When Fallback is set
// the chart is replaced by that text.
type ChartSection struct {
	Section
	Fallback string `json:"fallback,omitempty"`
}

// FinancialSection holds the revenue and net income series for the
// selected period.
type FinancialSection struct {
	Section
	Period models.Period         `json:"period"`
	Rows   []models.StatementRow `json:"rows"`
}

// HeadlinesSection lists recent news for the symbol.
type HeadlinesSection struct {
	Section
	Articles []models.NewsArticle `json:"articles"`
}

// MovingAverageLabel returns the legend of the moving average line.
func (p *Page) MovingAverageLabel() string {
	if p.MALabel == "" {
		return MALabel(DefaultMAWindow)
	}
	return p.MALabel
}

// Failed reports whether any section carries an error banner.
func (p *Page) Failed() bool {
	if p.Company.Error != "" || p.Price.Error != "" || p.Volume.Error != "" ||
		p.MarketCap.Error != "" || p.Financials.Error != "" {
		return true
	}
	return p.Headlines != nil && p.Headlines.Error != ""
}

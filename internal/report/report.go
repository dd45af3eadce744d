package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/yuin/goldmark"

	"github.com/seenimoa/stockdash/internal/dashboard"
	"github.com/seenimoa/stockdash/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Page Generator: orchestrates chart + template rendering
// ════════════════════════════════════════════════════════════════════

// PageConfig controls page generation.
type PageConfig struct {
	ChartCfg  ChartConfig // chart rendering config
	LiveURL   string      // WebSocket path; empty disables live updates
	StaticURL string      // prefix of the embedded assets (default: "/static")
}

// DefaultPageConfig returns sensible defaults.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		ChartCfg:  DefaultChartConfig(),
		LiveURL:   "/ws",
		StaticURL: "/static",
	}
}

// PageData is the template input: the page model plus everything
// pre-rendered to HTML.
type PageData struct {
	*dashboard.Page
	SymbolPrompt string
	PeriodLabel  string
	LiveURL      string
	StaticURL    string

	Columns  [][]template.HTML
	Insights []InsightRow

	PriceSVG     template.HTML
	VolumeSVG    template.HTML
	MarketCapSVG template.HTML
	RevenueSVG   template.HTML
	NetIncomeSVG template.HTML

	HeaderSummary  string
	HeaderMetrics  string
	HeaderInsights string
}

// InsightRow is one additional-insight line with its caption.
type InsightRow struct {
	Line    template.HTML
	Caption string
}

var (
	tmplOnce sync.Once
	tmpl     *template.Template
	tmplErr  error
)

func pageTemplate() (*template.Template, error) {
	tmplOnce.Do(func() {
		tmpl, tmplErr = template.New("page").Parse(PageTemplate)
	})
	return tmpl, tmplErr
}

// GenerateHTML renders the complete HTML document for a page.
func GenerateHTML(page *dashboard.Page, cfg PageConfig) (string, error) {
	return execute("page", page, cfg)
}

// GenerateFragment renders only the dashboard body, as pushed to live
// clients after each input change.
func GenerateFragment(page *dashboard.Page, cfg PageConfig) (string, error) {
	return execute("dashboard", page, cfg)
}

func execute(name string, page *dashboard.Page, cfg PageConfig) (string, error) {
	if page == nil {
		return "", fmt.Errorf("page is nil")
	}
	t, err := pageTemplate()
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}
	data, err := BuildPageData(page, cfg)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// ════════════════════════════════════════════════════════════════════
// Internal: build template data
// ════════════════════════════════════════════════════════════════════

// BuildPageData renders the charts and metric lines of page.
func BuildPageData(page *dashboard.Page, cfg PageConfig) (PageData, error) {
	if cfg.StaticURL == "" {
		cfg.StaticURL = "/static"
	}
	d := PageData{
		Page:           page,
		SymbolPrompt:   dashboard.SymbolPrompt,
		PeriodLabel:    dashboard.PeriodLabel,
		LiveURL:        cfg.LiveURL,
		StaticURL:      cfg.StaticURL,
		HeaderSummary:  dashboard.HeaderSummary,
		HeaderMetrics:  dashboard.HeaderMetrics,
		HeaderInsights: dashboard.HeaderInsights,
	}
	if page.Empty {
		return d, nil
	}

	for _, col := range page.Company.Columns {
		lines := make([]template.HTML, 0, len(col))
		for _, m := range col {
			h, err := markdownHTML(m.Markdown())
			if err != nil {
				return d, err
			}
			lines = append(lines, h)
		}
		d.Columns = append(d.Columns, lines)
	}
	for _, m := range page.Company.Insights {
		h, err := markdownHTML(m.Markdown())
		if err != nil {
			return d, err
		}
		d.Insights = append(d.Insights, InsightRow{Line: h, Caption: m.Caption})
	}

	chart := func(title string) ChartConfig {
		c := cfg.ChartCfg
		c.Title = title
		return c
	}
	if page.Price.Error == "" {
		d.PriceSVG = template.HTML(PriceChart(page.History, page.MovingAverageLabel(), chart(page.Symbol+" Weekly Price")))
		d.VolumeSVG = template.HTML(VolumeChart(page.History, chart("Volume")))
	}
	if page.MarketCap.Error == "" && page.MarketCap.Fallback == "" {
		d.MarketCapSVG = template.HTML(MarketCapChart(page.History, chart("Market Cap")))
	}
	if page.Financials.Error == "" {
		revenue, income := financialBars(page.Financials.Rows)
		d.RevenueSVG = template.HTML(BarChart(revenue, ColorRevenue, chart("Total Revenue")))
		d.NetIncomeSVG = template.HTML(BarChart(income, ColorNetIncome, chart("Net Income")))
	}
	return d, nil
}

// financialBars splits statement rows into the revenue and net income
// series, one bar per period label.
func financialBars(rows []models.StatementRow) (revenue, income []BarItem) {
	for _, r := range rows {
		revenue = append(revenue, BarItem{Label: r.Label, Value: r.TotalRevenue.Float64, Valid: r.TotalRevenue.Valid})
		income = append(income, BarItem{Label: r.Label, Value: r.NetIncome.Float64, Valid: r.NetIncome.Valid})
	}
	return revenue, income
}

// markdownHTML converts one metric line to HTML. Raw HTML in the input
// is not passed through.
func markdownHTML(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return template.HTML(strings.TrimSpace(buf.String())), nil
}

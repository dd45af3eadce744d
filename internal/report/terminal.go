package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/seenimoa/stockdash/internal/dashboard"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Terminal renderer
// ════════════════════════════════════════════════════════════════════

// TerminalOptions controls the CLI view of a page.
type TerminalOptions struct {
	Color bool // ANSI styling for markdown and tables
	Width int  // word wrap width (default: 100)
	Weeks int  // most recent price rows shown (default: 12)
}

// WriteTerminal renders page for a terminal: the company section as
// styled markdown followed by price and financial tables.
func WriteTerminal(w io.Writer, page *dashboard.Page, opts TerminalOptions) error {
	if page == nil {
		return fmt.Errorf("page is nil")
	}
	if opts.Width <= 0 {
		opts.Width = 100
	}
	if opts.Weeks <= 0 {
		opts.Weeks = 12
	}

	style := "notty"
	if opts.Color {
		style = "dark"
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(opts.Width),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}

	out, err := md.Render(CompanyMarkdown(page))
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	fmt.Fprint(w, out)
	if page.Empty {
		return nil
	}

	writeHeader(w, page.Price.Header, opts.Color)
	if page.Price.Error != "" {
		fmt.Fprintln(w, "  "+page.Price.Error)
	} else {
		writePriceTable(w, page, opts)
	}
	if page.MarketCap.Fallback != "" {
		fmt.Fprintln(w, "  "+page.MarketCap.Fallback)
	}

	writeHeader(w, page.Financials.Header+" ("+string(page.Financials.Period)+")", opts.Color)
	if page.Financials.Error != "" {
		fmt.Fprintln(w, "  "+page.Financials.Error)
	} else {
		writeFinancialTable(w, page.Financials.Rows, opts)
	}

	if h := page.Headlines; h != nil {
		writeHeader(w, h.Header, opts.Color)
		if h.Error != "" {
			fmt.Fprintln(w, "  "+h.Error)
		}
		for _, a := range h.Articles {
			fmt.Fprintf(w, "  • %s\n    %s\n", a.Title, a.URL)
		}
	}
	return nil
}

// CompanyMarkdown renders the title and company section as markdown,
// using the same metric lines as the web page.
func CompanyMarkdown(page *dashboard.Page) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", page.Title)
	if page.Empty {
		fmt.Fprintf(&sb, "%s to get started.\n", dashboard.SymbolPrompt)
		return sb.String()
	}

	c := page.Company
	fmt.Fprintf(&sb, "## %s\n\n", c.Header)
	if c.Error != "" {
		fmt.Fprintf(&sb, "> %s\n\n", c.Error)
	}
	fmt.Fprintf(&sb, "### %s (%s)\n\n", c.Name, page.Symbol)
	fmt.Fprintf(&sb, "### %s\n\n%s\n\n", dashboard.HeaderSummary, c.Summary)

	fmt.Fprintf(&sb, "### %s\n\n", dashboard.HeaderMetrics)
	for _, col := range c.Columns {
		for _, m := range col {
			fmt.Fprintf(&sb, "- %s\n", m.Markdown())
		}
	}
	fmt.Fprintf(&sb, "\n### %s\n\n", dashboard.HeaderInsights)
	for _, m := range c.Insights {
		fmt.Fprintf(&sb, "- %s\n", m.Markdown())
		if m.Caption != "" {
			fmt.Fprintf(&sb, "  *%s*\n", m.Caption)
		}
	}
	return sb.String()
}

func writeHeader(w io.Writer, title string, color bool) {
	fmt.Fprintln(w)
	if color {
		title = text.Bold.Sprint(title)
	}
	fmt.Fprintln(w, title)
}

func newTable(w io.Writer, color bool) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	return tw
}

func rightAligned(from, to int) []table.ColumnConfig {
	cfgs := make([]table.ColumnConfig, 0, to-from+1)
	for n := from; n <= to; n++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	return cfgs
}

func writePriceTable(w io.Writer, page *dashboard.Page, opts TerminalOptions) {
	rows := page.History
	if len(rows) > opts.Weeks {
		rows = rows[len(rows)-opts.Weeks:]
	}

	tw := newTable(w, opts.Color)
	tw.AppendHeader(table.Row{"WEEK", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME", strings.ToUpper(page.MovingAverageLabel()), "MARKET CAP"})
	tw.SetColumnConfigs(rightAligned(2, 8))
	for _, r := range rows {
		closeStr := fmt.Sprintf("%.2f", r.Close)
		if opts.Color {
			c := text.FgGreen
			if !r.Increasing() {
				c = text.FgRed
			}
			closeStr = text.Colors{c}.Sprintf("%s", closeStr)
		}
		tw.AppendRow(table.Row{
			r.Date.Format("2006-01-02"),
			fmt.Sprintf("%.2f", r.Open),
			fmt.Sprintf("%.2f", r.High),
			fmt.Sprintf("%.2f", r.Low),
			closeStr,
			utils.FormatVolume(r.Volume),
			optional(r.MA50.Valid, func() string { return fmt.Sprintf("%.2f", r.MA50.Float64) }),
			optional(r.MarketCap.Valid, func() string { return utils.FormatCompact(r.MarketCap.Float64) }),
		})
	}
	tw.Render()
}

func writeFinancialTable(w io.Writer, rows []models.StatementRow, opts TerminalOptions) {
	tw := newTable(w, opts.Color)
	tw.AppendHeader(table.Row{"PERIOD", "TOTAL REVENUE", "NET INCOME"})
	tw.SetColumnConfigs(rightAligned(2, 3))
	for _, r := range rows {
		tw.AppendRow(table.Row{
			r.Label,
			optional(r.TotalRevenue.Valid, func() string { return utils.FormatCompact(r.TotalRevenue.Float64) }),
			optional(r.NetIncome.Valid, func() string { return utils.FormatCompact(r.NetIncome.Float64) }),
		})
	}
	tw.Render()
}

func optional(ok bool, f func() string) string {
	if !ok {
		return dashboard.NA
	}
	return f()
}

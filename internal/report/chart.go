// Package report renders the dashboard page model: SVG charts, the HTML
// page and its live fragment, and a terminal view for the CLI.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// Series colors.
const (
	ColorUp        = "#26a69a"
	ColorDown      = "#ef5350"
	ColorMA        = "#1f77b4"
	ColorVolume    = "#95a5a6"
	ColorMarketCap = "#16a085"
	ColorRevenue   = "#9b59b6"
	ColorNetIncome = "#1abc9c"
)

// NoData is the placeholder text of an empty chart.
const NoData = "No data available"

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 30)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  30,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// withDefaults fills a zero config and keeps an explicit title.
func (c ChartConfig) withDefaults(title string) ChartConfig {
	if c.Width == 0 {
		t := c.Title
		c = DefaultChartConfig()
		c.Title = t
	}
	if c.Title == "" {
		c.Title = title
	}
	return c
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// yScale maps values in [lo, hi] onto the plot area, padded by 5%.
type yScale struct {
	lo, hi   float64
	top, bot float64
}

func newYScale(lo, hi float64, top, height int) yScale {
	r := hi - lo
	if r < 1e-9 {
		r = math.Max(math.Abs(hi), 1)
	}
	return yScale{lo: lo - r*0.05, hi: hi + r*0.05, top: float64(top), bot: float64(top + height)}
}

func (s yScale) y(v float64) float64 {
	return s.bot - (v-s.lo)/(s.hi-s.lo)*(s.bot-s.top)
}

// ════════════════════════════════════════════════════════════════════
// Price Chart
// ════════════════════════════════════════════════════════════════════

// PriceChart generates an SVG candlestick chart of the weekly bars with
// the moving average overlaid. Rows without an MA are skipped by the line.
func PriceChart(rows []models.PriceRow, maLabel string, cfg ChartConfig) string {
	cfg = cfg.withDefaults("Stock Price")
	if len(rows) == 0 {
		return emptySVG(cfg, NoData)
	}

	px, py, pw, ph := cfg.plotArea()

	minPrice, maxPrice := rows[0].Low, rows[0].High
	for _, r := range rows {
		minPrice = math.Min(minPrice, r.Low)
		maxPrice = math.Max(maxPrice, r.High)
		if r.MA50.Valid {
			minPrice = math.Min(minPrice, r.MA50.Float64)
			maxPrice = math.Max(maxPrice, r.MA50.Float64)
		}
	}
	scale := newYScale(minPrice, maxPrice, py, ph)

	n := len(rows)
	slot := float64(pw) / float64(n)
	bodyWidth := math.Min(slot, 12) * 0.7
	center := func(i int) float64 { return float64(px) + float64(i)*slot + slot/2 }

	var sb strings.Builder
	writeFrame(&sb, cfg)
	writeYGrid(&sb, cfg, scale, 6, func(v float64) string { return fmt.Sprintf("%.2f", v) })

	for i, r := range rows {
		cx := center(i)
		color := ColorUp
		if !r.Increasing() {
			color = ColorDown
		}
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`,
			cx, scale.y(r.High), cx, scale.y(r.Low), color)

		top, bot := scale.y(r.Open), scale.y(r.Close)
		if top > bot {
			top, bot = bot, top
		}
		fmt.Fprintf(&sb, `<rect class="candle" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
			cx-bodyWidth/2, top, bodyWidth, math.Max(bot-top, 1), color)
	}

	var path []string
	for i, r := range rows {
		if !r.MA50.Valid {
			continue
		}
		cmd := "L"
		if len(path) == 0 {
			cmd = "M"
		}
		path = append(path, fmt.Sprintf("%s%.1f,%.1f", cmd, center(i), scale.y(r.MA50.Float64)))
	}
	if len(path) > 1 {
		fmt.Fprintf(&sb, `<path class="ma" d="%s" fill="none" stroke="%s" stroke-width="1.5"/>`,
			strings.Join(path, " "), ColorMA)
		writeLegend(&sb, cfg, 0, maLabel, ColorMA)
	}

	writeDateAxis(&sb, cfg, n, center, func(i int) string { return rows[i].Date.Format("02 Jan 06") })
	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Volume Chart
// ════════════════════════════════════════════════════════════════════

// VolumeChart generates an SVG bar chart of weekly volume by date.
func VolumeChart(rows []models.PriceRow, cfg ChartConfig) string {
	cfg = cfg.withDefaults("Volume")
	if len(rows) == 0 {
		return emptySVG(cfg, NoData)
	}

	px, py, pw, ph := cfg.plotArea()
	var maxVol int64
	for _, r := range rows {
		if r.Volume > maxVol {
			maxVol = r.Volume
		}
	}
	scale := yScale{lo: 0, hi: float64(maxVol) * 1.05, top: float64(py), bot: float64(py + ph)}
	if maxVol == 0 {
		scale.hi = 1
	}

	n := len(rows)
	slot := float64(pw) / float64(n)
	barWidth := slot * 0.8
	center := func(i int) float64 { return float64(px) + float64(i)*slot + slot/2 }

	var sb strings.Builder
	writeFrame(&sb, cfg)
	writeYGrid(&sb, cfg, scale, 5, utils.FormatCompact)
	for i, r := range rows {
		y := scale.y(float64(r.Volume))
		fmt.Fprintf(&sb, `<rect class="bar" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
			center(i)-barWidth/2, y, barWidth, scale.bot-y, ColorVolume)
	}
	writeDateAxis(&sb, cfg, n, center, func(i int) string { return rows[i].Date.Format("02 Jan 06") })
	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Market Cap Chart
// ════════════════════════════════════════════════════════════════════

// MarketCapChart generates an SVG line chart of the derived market cap.
func MarketCapChart(rows []models.PriceRow, cfg ChartConfig) string {
	cfg = cfg.withDefaults("Market Cap")
	values := make([]float64, len(rows))
	labels := make([]string, len(rows))
	present := false
	for i, r := range rows {
		values[i] = math.NaN()
		if r.MarketCap.Valid {
			values[i] = r.MarketCap.Float64
			present = true
		}
		labels[i] = r.Date.Format("02 Jan 06")
	}
	if !present {
		return emptySVG(cfg, NoData)
	}
	return LineChart([]LineChartSeries{{Name: "Market Cap", Values: values, Color: ColorMarketCap}}, labels, cfg)
}

// ════════════════════════════════════════════════════════════════════
// Line Chart
// ════════════════════════════════════════════════════════════════════

// LineChartSeries represents a named data series for line charts.
// NaN values leave a gap.
type LineChartSeries struct {
	Name   string
	Values []float64
	Color  string // hex color (optional, auto-assigned if empty)
}

// LineChart generates an SVG line chart with one or more series.
// Labels are optional X-axis labels corresponding to data points.
func LineChart(series []LineChartSeries, labels []string, cfg ChartConfig) string {
	cfg = cfg.withDefaults("Line Chart")
	if len(series) == 0 {
		return emptySVG(cfg, NoData)
	}

	px, py, pw, ph := cfg.plotArea()

	minVal, maxVal := math.MaxFloat64, -math.MaxFloat64
	maxLen := 0
	for _, s := range series {
		maxLen = max(maxLen, len(s.Values))
		for _, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if maxLen == 0 || minVal > maxVal {
		return emptySVG(cfg, NoData)
	}
	scale := newYScale(minVal, maxVal, py, ph)

	step := float64(pw)
	if maxLen > 1 {
		step = float64(pw) / float64(maxLen-1)
	}
	xAt := func(i int) float64 { return float64(px) + float64(i)*step }

	var sb strings.Builder
	writeFrame(&sb, cfg)
	writeYGrid(&sb, cfg, scale, 5, utils.FormatCompact)

	defaultColors := []string{"#2196f3", "#ff9800", "#4caf50", "#e91e63", "#9c27b0", "#00bcd4"}
	for si, s := range series {
		color := s.Color
		if color == "" {
			color = defaultColors[si%len(defaultColors)]
		}

		var path []string
		for i, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			cmd := "L"
			if len(path) == 0 {
				cmd = "M"
			}
			path = append(path, fmt.Sprintf("%s%.1f,%.1f", cmd, xAt(i), scale.y(v)))
		}
		if len(path) > 0 {
			fmt.Fprintf(&sb, `<path class="line" d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.Join(path, " "), color)
		}
		writeLegend(&sb, cfg, si, s.Name, color)
	}

	if len(labels) > 0 {
		writeDateAxis(&sb, cfg, min(len(labels), maxLen), xAt, func(i int) string { return labels[i] })
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Bar Chart (Vertical)
// ════════════════════════════════════════════════════════════════════

// BarItem represents a single bar in a bar chart. Absent values get no
// bar but keep their slot and label.
type BarItem struct {
	Label string
	Value float64
	Valid bool
}

// BarChart generates an SVG vertical bar chart keyed by label, with a
// zero baseline when values are mixed sign.
func BarChart(items []BarItem, color string, cfg ChartConfig) string {
	cfg = cfg.withDefaults("Bar Chart")
	lo, hi := 0.0, 0.0
	valid := 0
	for _, it := range items {
		if !it.Valid {
			continue
		}
		valid++
		lo = math.Min(lo, it.Value)
		hi = math.Max(hi, it.Value)
	}
	if valid == 0 {
		return emptySVG(cfg, NoData)
	}

	px, py, pw, ph := cfg.plotArea()
	scale := newYScale(lo, hi, py, ph)
	if lo == 0 {
		scale.lo = 0
	}

	slot := float64(pw) / float64(len(items))
	barWidth := math.Min(slot*0.6, 80)
	zero := scale.y(0)

	var sb strings.Builder
	writeFrame(&sb, cfg)
	writeYGrid(&sb, cfg, scale, 5, utils.FormatCompact)
	if lo < 0 {
		fmt.Fprintf(&sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#999" stroke-width="1"/>`,
			px, zero, px+pw, zero)
	}

	for i, it := range items {
		cx := float64(px) + float64(i)*slot + slot/2
		if it.Valid {
			y := scale.y(it.Value)
			top, h := y, zero-y
			if h < 0 {
				top, h = zero, -h
			}
			fmt.Fprintf(&sb, `<rect class="bar" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"><title>%s: %s</title></rect>`,
				cx-barWidth/2, top, barWidth, h, color, escapeXML(it.Label), utils.FormatCompact(it.Value))
		}
		fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			cx, py+ph+18, cfg.FontSize, cfg.TextColor, escapeXML(it.Label))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

// writeFrame writes the header, background and title.
func writeFrame(sb *strings.Builder, cfg ChartConfig) {
	sb.WriteString(svgHeader(cfg))
	fmt.Fprintf(sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor)
	fmt.Fprintf(sb, `<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title))
}

func writeYGrid(sb *strings.Builder, cfg ChartConfig, s yScale, lines int, label func(float64) string) {
	px, _, pw, _ := cfg.plotArea()
	for i := 0; i <= lines; i++ {
		v := s.lo + (s.hi-s.lo)*float64(i)/float64(lines)
		y := s.y(v)
		fmt.Fprintf(sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor)
		fmt.Fprintf(sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, label(v))
	}
}

func writeLegend(sb *strings.Builder, cfg ChartConfig, idx int, name, color string) {
	px, py, _, _ := cfg.plotArea()
	ly := py + 10 + idx*16
	fmt.Fprintf(sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
		px+10, ly, px+30, ly, color)
	fmt.Fprintf(sb, `<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
		px+35, ly+4, cfg.TextColor, escapeXML(name))
}

// writeDateAxis labels about six evenly spaced points of n.
func writeDateAxis(sb *strings.Builder, cfg ChartConfig, n int, x func(int) float64, label func(int) string) {
	_, py, _, ph := cfg.plotArea()
	interval := max(n/6, 1)
	for i := 0; i < n; i += interval {
		cx := x(i)
		fmt.Fprintf(sb, `<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			cx, py+ph+18, cfg.FontSize-1, cfg.TextColor, escapeXML(label(i)))
	}
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

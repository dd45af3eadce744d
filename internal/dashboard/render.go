package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/guregu/null/v6"
	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stockdash/internal/infra"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
)

// LogoFinder discovers a logo URL from a company website.
type LogoFinder interface {
	Logo(ctx context.Context, website string) (string, error)
}

// NewsSource returns recent headlines for a symbol.
type NewsSource interface {
	Headlines(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error)
}

// DefaultMAWindow is the moving average window, in bars, when none is
// configured.
const DefaultMAWindow = 50

// Options tunes a Renderer. Zero values fall back to defaults.
type Options struct {
	SummaryLimit int // default 200
	MAWindow     int // default DefaultMAWindow
	NewsLimit    int // default 5
	Logos        LogoFinder
	News         NewsSource
	Logger       *slog.Logger
}

// Renderer builds Pages from a provider.
type Renderer struct {
	provider provider.Provider
	opts     Options
	log      *slog.Logger
}

// NewRenderer creates a Renderer reading from p, which should normally
// be a *provider.Memoized.
func NewRenderer(p provider.Provider, opts Options) *Renderer {
	if opts.SummaryLimit <= 0 {
		opts.SummaryLimit = 200
	}
	if opts.MAWindow <= 0 {
		opts.MAWindow = DefaultMAWindow
	}
	if opts.NewsLimit <= 0 {
		opts.NewsLimit = 5
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Renderer{provider: p, opts: opts, log: opts.Logger}
}

// ProviderName names the upstream data provider.
func (r *Renderer) ProviderName() string { return r.provider.Name() }

// fetched holds the raw datasets of one render. Every field is written
// by exactly one goroutine.
type fetched struct {
	info                  *models.CompanyInfo
	infoErr               error
	bars                  []models.PriceBar
	barsErr               error
	quarterly, annual     []models.StatementRow
	quarterErr, annualErr error
	news                  []models.NewsArticle
	newsErr               error
}

// Render fetches, transforms and lays out the page for st. It never
// fails as a whole: each fetch or build error is reported in the banner
// of the section that depends on it.
func (r *Renderer) Render(ctx context.Context, st *SessionState) *Page {
	start := time.Now()
	page := &Page{
		Title:      Title,
		Symbol:     st.Symbol,
		Period:     st.Period,
		Periods:    models.Periods,
		MALabel:    MALabel(r.opts.MAWindow),
		Company:    CompanySection{Section: Section{Header: HeaderCompany}},
		Price:      ChartSection{Section: Section{Header: HeaderPrice}},
		Volume:     ChartSection{Section: Section{Header: HeaderVolume}},
		MarketCap:  ChartSection{Section: Section{Header: HeaderMarketCap}},
		Financials: FinancialSection{Section: Section{Header: HeaderFinancials}, Period: st.Period},
		RenderedAt: start.UTC(),
	}
	if page.Period == "" {
		page.Period = models.PeriodQuarterly
		page.Financials.Period = page.Period
	}
	if st.Symbol == "" {
		page.Empty = true
		return page
	}

	d := r.fetch(ctx, st.Symbol)
	d.info = r.discoverLogo(ctx, d.info)

	r.build(page, "company", &page.Company.Section, func() { r.buildCompany(page, st, d) })
	r.build(page, "history", &page.Price.Section, func() { r.buildHistory(page, d) })
	r.build(page, "financials", &page.Financials.Section, func() { r.buildFinancials(page, d) })
	if r.opts.News != nil {
		page.Headlines = &HeadlinesSection{Section: Section{Header: HeaderHeadlines}}
		r.build(page, "headlines", &page.Headlines.Section, func() { r.buildHeadlines(page, d) })
	}

	r.log.Info("dashboard rendered",
		"symbol", st.Symbol,
		"period", page.Period,
		"failed", page.Failed(),
		"duration", time.Since(start))
	return page
}

// fetch loads all datasets concurrently. A failing fetch records its
// error and never cancels the others.
func (r *Renderer) fetch(ctx context.Context, symbol string) *fetched {
	d := &fetched{}
	var g errgroup.Group
	g.Go(func() error {
		d.info, d.infoErr = r.provider.Info(ctx, symbol)
		return nil
	})
	g.Go(func() error {
		d.bars, d.barsErr = r.provider.PriceHistory(ctx, symbol)
		return nil
	})
	g.Go(func() error {
		d.quarterly, d.quarterErr = r.provider.Statements(ctx, symbol, models.PeriodQuarterly)
		return nil
	})
	g.Go(func() error {
		d.annual, d.annualErr = r.provider.Statements(ctx, symbol, models.PeriodAnnual)
		return nil
	})
	if r.opts.News != nil {
		g.Go(func() error {
			d.news, d.newsErr = r.opts.News.Headlines(ctx, symbol, r.opts.NewsLimit)
			return nil
		})
	}
	_ = g.Wait()
	return d
}

// discoverLogo returns info with LogoURL taken from the company website
// when the provider did not report one. info is memoized and shared, so
// a found logo goes on a copy. Failure leaves the logo absent.
func (r *Renderer) discoverLogo(ctx context.Context, info *models.CompanyInfo) *models.CompanyInfo {
	if r.opts.Logos == nil || info == nil || info.LogoURL.Valid || !info.Website.Valid {
		return info
	}
	logo, err := r.opts.Logos.Logo(ctx, info.Website.String)
	if err != nil || logo == "" {
		r.log.Debug("logo discovery failed", "symbol", info.Symbol, "error", err)
		return info
	}
	withLogo := *info
	withLogo.LogoURL = null.StringFrom(logo)
	return &withLogo
}

// build runs one section builder, converting a panic into that
// section's error banner.
func (r *Renderer) build(page *Page, name string, sec *Section, fn func()) {
	var pc panics.Catcher
	pc.Try(fn)
	if rec := pc.Recovered(); rec != nil {
		r.log.Error("section build panicked", "section", name, "symbol", page.Symbol, "error", rec.AsError())
		sec.Error = fmt.Sprintf("Could not render %s for %s.", name, page.Symbol)
	}
}

func (r *Renderer) buildCompany(page *Page, st *SessionState, d *fetched) {
	c := &page.Company
	info := d.info
	if d.infoErr != nil {
		c.Error = banner("company information", page.Symbol, d.infoErr)
		info = &models.CompanyInfo{Symbol: page.Symbol}
	}

	c.Name = NA
	if info.Name.Valid && info.Name.String != "" {
		c.Name = info.Name.String
	}
	c.LogoURL = info.LogoURL.ValueOrZero()

	summary := NoSummary
	if info.Summary.Valid && info.Summary.String != "" {
		summary = info.Summary.String
	}
	c.ShowFull = st.ShowFullSummary
	c.Summary = TruncateSummary(summary, r.opts.SummaryLimit, st.ShowFullSummary)
	if len([]rune(summary)) > r.opts.SummaryLimit {
		c.SummaryButton = st.SummaryButton()
	}

	cur := info.CurrencyCode()
	c.Columns = [][]Metric{
		{
			currencyMetric("Market Cap", info.MarketCap, cur),
			metric("EPS", info.TrailingEPS, Number),
			metric("Net Profit Margin", info.ProfitMargin, Percent),
		},
		{
			metric("P/E Ratio", info.TrailingPE, Number),
			rangeMetric("52-Week High/Low", info.FiftyTwoWeekHigh, info.FiftyTwoWeekLow),
			metric("Dividend Yield", info.DividendYield, Percent),
		},
	}

	roe := metric("Return on Equity (ROE)", info.ReturnOnEquity, Percent)
	de := metric("Debt-to-Equity Ratio", info.DebtToEquity, Ratio)
	fcf := currencyMetric("Free Cash Flow", info.FreeCashFlow, cur)
	if roe.Present {
		roe.Caption = CaptionROE
	}
	if de.Present {
		de.Caption = CaptionDE
	}
	if fcf.Present {
		fcf.Caption = CaptionFCF
	}
	c.Insights = []Metric{roe, de, fcf}
}

func (r *Renderer) buildHistory(page *Page, d *fetched) {
	if d.barsErr != nil {
		msg := banner("price history", page.Symbol, d.barsErr)
		page.Price.Error = msg
		page.Volume.Error = msg
		page.MarketCap.Error = msg
		return
	}

	var shares null.Float
	if HasMarketCap(d.info) {
		shares = d.info.SharesOutstanding
	} else {
		page.MarketCap.Fallback = MarketCapUnavailable
	}
	page.History = PriceRows(d.bars, r.opts.MAWindow, shares)
}

func (r *Renderer) buildFinancials(page *Page, d *fetched) {
	rows, err := d.quarterly, d.quarterErr
	if page.Period == models.PeriodAnnual {
		rows, err = d.annual, d.annualErr
	}
	if err != nil {
		page.Financials.Error = banner(string(page.Period)+" financials", page.Symbol, err)
		return
	}
	page.Financials.Rows = FinancialRows(rows, page.Period)
}

func (r *Renderer) buildHeadlines(page *Page, d *fetched) {
	if d.newsErr != nil {
		page.Headlines.Error = banner("headlines", page.Symbol, d.newsErr)
		return
	}
	page.Headlines.Articles = d.news
}

// banner formats a section-local error message.
func banner(what, symbol string, err error) string {
	return fmt.Sprintf("Could not load %s for %s: %s", what, symbol, reason(err))
}

// reason reduces an error to something a reader of the page can act on.
func reason(err error) string {
	var httpErr *infra.HTTPError
	var missing *provider.ErrMissingParam
	switch {
	case errors.Is(err, provider.ErrSymbolNotFound):
		return "symbol not found"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.As(err, &httpErr):
		return "data provider returned " + httpErr.Status
	case errors.As(err, &missing):
		return "no symbol given"
	default:
		return err.Error()
	}
}

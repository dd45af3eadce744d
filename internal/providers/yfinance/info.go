package yfinance

import (
	"context"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/guregu/null/v6"

	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
)

// infoModules are the quoteSummary modules the info paths read from.
var infoModules = []string{
	"price", "summaryProfile", "assetProfile", "summaryDetail",
	"defaultKeyStatistics", "financialData",
}

// field binds a CompanyInfo member to candidate JSONPath expressions
// over one quoteSummary result. The first path yielding a value wins.
type field struct {
	name  string
	paths []string
	str   func(*models.CompanyInfo) *null.String
	num   func(*models.CompanyInfo) *null.Float
}

var infoFields = []field{
	{name: "name", paths: []string{"$.price.longName", "$.price.shortName"},
		str: func(c *models.CompanyInfo) *null.String { return &c.Name }},
	{name: "summary", paths: []string{"$.assetProfile.longBusinessSummary", "$.summaryProfile.longBusinessSummary"},
		str: func(c *models.CompanyInfo) *null.String { return &c.Summary }},
	{name: "website", paths: []string{"$.assetProfile.website", "$.summaryProfile.website"},
		str: func(c *models.CompanyInfo) *null.String { return &c.Website }},
	{name: "currency", paths: []string{"$.price.currency", "$.summaryDetail.currency", "$.financialData.financialCurrency"},
		str: func(c *models.CompanyInfo) *null.String { return &c.Currency }},
	{name: "market_cap", paths: []string{"$.price.marketCap.raw", "$.summaryDetail.marketCap.raw"},
		num: func(c *models.CompanyInfo) *null.Float { return &c.MarketCap }},
	{name: "trailing_eps", paths: []string{"$.defaultKeyStatistics.trailingEps.raw"},
		num: func(c *models.CompanyInfo) *null.Float { return &c.TrailingEPS }},
	{name: "trailing_pe", paths: []string{"$.summaryDetail.trailingPE.raw"},
		num: func(c *models.CompanyInfo) *null.Float { return &c.TrailingPE }},
	{name: "fifty_two_week_high", paths: []string{"$.summaryDetail.fiftyTwoWeekHigh.raw"},
		num: func(c *models.CompanyInfo) *null.Float { return &c.FiftyTwoWeekHigh }},
	{name: "fifty_two_week_low", paths: []string{"$.summaryDetail.fiftyTwoWeekLow.raw"},
		num: func(c *models.CompanyInfo) *null.Float { return &c.FiftyTwoWeekLow }},
	{name: "dividend_yield", paths: []string{"$.summaryDetail.dividendYield.raw"},
		num: func(c *models.CompanyInfo) *null.Float { return &c.DividendYield }},
	{name: "profit_margin", paths: []string{"$.financialData.profitMargins.raw", "$.defaultKeyStatistics.profitMargins.raw"},
		num: func(c *models.CompanyInfo) *null.Float { return &c.ProfitMargin }},
	{name: "return_on_equity", paths: []string{"$.financialData.returnOnEquity.raw"},
		num: func(c *models.CompanyInfo) *null.Float { return &c.ReturnOnEquity }},
	{name: "debt_to_equity", paths: []string{"$.financialData.debtToEquity.raw"},
		num: func(c *models.CompanyInfo) *null.Float { return &c.DebtToEquity }},
	{name: "free_cash_flow", paths: []string{"$.financialData.freeCashflow.raw"},
		num: func(c *models.CompanyInfo) *null.Float { return &c.FreeCashFlow }},
	{name: "shares_outstanding", paths: []string{"$.defaultKeyStatistics.sharesOutstanding.raw", "$.price.sharesOutstanding.raw"},
		num: func(c *models.CompanyInfo) *null.Float { return &c.SharesOutstanding }},
}

// Info fetches the company profile and fundamentals.
func (p *Provider) Info(ctx context.Context, symbol string) (*models.CompanyInfo, error) {
	if err := provider.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	var resp yfQuoteSummaryRaw
	if err := p.fetchJSON(ctx, p.quoteSummaryURL(symbol, infoModules...), &resp); err != nil {
		return nil, fmt.Errorf("yfinance info %s: %w", symbol, err)
	}
	if err := apiError(resp.QuoteSummary.Error); err != nil {
		return nil, fmt.Errorf("yfinance info %s: %w", symbol, err)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yfinance info %s: %w", symbol, provider.ErrSymbolNotFound)
	}

	info := extractInfo(symbol, resp.QuoteSummary.Result[0])
	p.log.Debug("info fetched", "symbol", symbol, "name", info.Name.String)
	return info, nil
}

// extractInfo applies infoFields to one quoteSummary result document.
func extractInfo(symbol string, doc map[string]any) *models.CompanyInfo {
	info := &models.CompanyInfo{Symbol: symbol}
	for _, f := range infoFields {
		v, ok := firstMatch(doc, f.paths)
		if !ok {
			continue
		}
		switch {
		case f.str != nil:
			if s, ok := v.(string); ok && s != "" {
				*f.str(info) = null.StringFrom(s)
			}
		case f.num != nil:
			if n, ok := v.(float64); ok {
				*f.num(info) = null.FloatFrom(n)
			}
		}
	}
	return info
}

// firstMatch evaluates paths in order and returns the first non-nil value.
func firstMatch(doc map[string]any, paths []string) (any, bool) {
	for _, path := range paths {
		v, err := jsonpath.Get(path, doc)
		if err != nil {
			continue
		}
		// jsonpath may wrap a single answer in a list; keep the first.
		if list, ok := v.([]any); ok {
			if len(list) == 0 {
				continue
			}
			v = list[0]
		}
		if v != nil {
			return v, true
		}
	}
	return nil, false
}

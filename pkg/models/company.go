package models

import "github.com/guregu/null/v6"

// CompanyInfo holds the profile and fundamentals reported for a symbol.
// No field is guaranteed: every value the provider omits stays invalid.
type CompanyInfo struct {
	Symbol   string      `json:"symbol"`
	Name     null.String `json:"name"`
	LogoURL  null.String `json:"logo_url"`
	Summary  null.String `json:"summary"`
	Website  null.String `json:"website"`
	Currency null.String `json:"currency"`

	MarketCap         null.Float `json:"market_cap"`
	TrailingEPS       null.Float `json:"trailing_eps"`
	TrailingPE        null.Float `json:"trailing_pe"`
	FiftyTwoWeekHigh  null.Float `json:"fifty_two_week_high"`
	FiftyTwoWeekLow   null.Float `json:"fifty_two_week_low"`
	DividendYield     null.Float `json:"dividend_yield"` // fraction, 0.0045 = 0.45%
	ProfitMargin      null.Float `json:"profit_margin"`  // fraction
	ReturnOnEquity    null.Float `json:"return_on_equity"`
	DebtToEquity      null.Float `json:"debt_to_equity"`
	FreeCashFlow      null.Float `json:"free_cash_flow"`
	SharesOutstanding null.Float `json:"shares_outstanding"`
}

// CurrencyCode returns the reporting currency, defaulting to USD.
func (c *CompanyInfo) CurrencyCode() string {
	if c == nil || !c.Currency.Valid || c.Currency.String == "" {
		return "USD"
	}
	return c.Currency.String
}

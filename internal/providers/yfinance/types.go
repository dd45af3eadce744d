package yfinance

// --- Yahoo Finance API response types ---

// yfChartResponse wraps the v8 chart API response.
type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol       string `json:"symbol"`
	Currency     string `json:"currency"`
	ExchangeName string `json:"exchangeName"`
	Timezone     string `json:"exchangeTimezoneName"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// yfQuoteSummaryRaw keeps result modules undecoded so info fields can be
// addressed by JSONPath.
type yfQuoteSummaryRaw struct {
	QuoteSummary struct {
		Result []map[string]any `json:"result"`
		Error  *yfError         `json:"error"`
	} `json:"quoteSummary"`
}

// yfStatementsResponse wraps a v10 quoteSummary response for the income
// statement modules.
type yfStatementsResponse struct {
	QuoteSummary struct {
		Result []yfStatementsResult `json:"result"`
		Error  *yfError             `json:"error"`
	} `json:"quoteSummary"`
}

type yfStatementsResult struct {
	IncomeStatementHistory          *yfStatementContainer `json:"incomeStatementHistory"`
	IncomeStatementHistoryQuarterly *yfStatementContainer `json:"incomeStatementHistoryQuarterly"`
}

// Both annual and quarterly containers use the same inner key.
type yfStatementContainer struct {
	Statements []map[string]yfFinVal `json:"incomeStatementHistory,omitempty"`
}

// yfFinVal is Yahoo's {raw, fmt} number pair. Raw is nil when Yahoo
// sends an empty object for a missing value.
type yfFinVal struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

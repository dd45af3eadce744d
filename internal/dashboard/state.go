// Package dashboard turns one symbol's market data into the page model
// of the stock insights dashboard.
//
// Render is called on every input change with the caller's session
// state. The only process-wide state is the provider's memo cache.
package dashboard

import (
	"github.com/seenimoa/stockdash/pkg/models"
)

// Button labels for the summary toggle.
const (
	LabelReadMore = "Read more"
	LabelShowLess = "Show less"
)

// NoSummary is shown when the provider has no business summary.
const NoSummary = "No summary available."

// SessionState is the per-session input to Render.
type SessionState struct {
	Symbol          string        `json:"symbol"`
	Period          models.Period `json:"period"`
	ShowFullSummary bool          `json:"show_full_summary"`
}

// NewSessionState returns the state a new session starts with.
func NewSessionState(symbol string, period models.Period) *SessionState {
	if period == "" {
		period = models.PeriodQuarterly
	}
	return &SessionState{Symbol: models.NormalizeSymbol(symbol), Period: period}
}

// SetSymbol updates the symbol and reports whether it changed. A blank
// symbol is kept and renders the empty page.
func (s *SessionState) SetSymbol(symbol string) bool {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == s.Symbol {
		return false
	}
	s.Symbol = symbol
	return true
}

// SetPeriod updates the period from user input.
func (s *SessionState) SetPeriod(period string) error {
	p, err := models.ParsePeriod(period)
	if err != nil {
		return err
	}
	s.Period = p
	return nil
}

// ToggleSummary flips between the short and full business summary.
func (s *SessionState) ToggleSummary() {
	s.ShowFullSummary = !s.ShowFullSummary
}

// SummaryButton returns the label of the toggle button.
func (s *SessionState) SummaryButton() string {
	if s.ShowFullSummary {
		return LabelShowLess
	}
	return LabelReadMore
}

// TruncateSummary returns the first limit characters followed by "…"
// when text is longer than limit and full is false; otherwise text.
// Counting is by rune so multi-byte characters are never split.
func TruncateSummary(text string, limit int, full bool) string {
	if full || limit <= 0 {
		return text
	}
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "…"
}

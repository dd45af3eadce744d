package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// Period selects the granularity of financial statements.
type Period string

const (
	PeriodQuarterly Period = "Quarterly"
	PeriodAnnual    Period = "Annual"
)

// Periods lists the selectable periods in display order.
var Periods = []Period{PeriodQuarterly, PeriodAnnual}

// ParsePeriod accepts "Quarterly"/"Annual" in any case.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quarterly", "quarter", "q":
		return PeriodQuarterly, nil
	case "annual", "yearly", "year", "a":
		return PeriodAnnual, nil
	}
	return "", fmt.Errorf("unknown period %q (want Quarterly or Annual)", s)
}

// StatementRow is one period of an income statement, reduced to the
// line items the dashboard charts.
type StatementRow struct {
	Label        string     `json:"label"`
	PeriodEnd    time.Time  `json:"period_end"`
	TotalRevenue null.Float `json:"total_revenue"`
	NetIncome    null.Float `json:"net_income"`
}

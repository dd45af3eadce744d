package dashboard

import (
	"strconv"
	"unicode/utf8"

	"github.com/Rhymond/go-money"
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// NA is displayed for every absent value.
const NA = "N/A"

var hundred = decimal.NewFromInt(100)

// Percent renders a fraction as a percentage with two decimals:
// 0.2531 → "25.31%".
func Percent(v null.Float) string {
	if !v.Valid {
		return NA
	}
	return decimal.NewFromFloat(v.Float64).Mul(hundred).StringFixed(2) + "%"
}

// subunitCodes maps the minor-unit codes Yahoo reports for some
// exchanges (pence, cents, agorot) to their major currency.
var subunitCodes = map[string]string{
	"GBp": money.GBP,
	"GBX": money.GBP,
	"ZAc": money.ZAR,
	"ILA": money.ILS,
}

// Currency renders an amount with a leading currency symbol and
// thousands separators. Cents are shown only when the amount has them.
// Minor-unit codes are converted to the major currency. Unknown currency
// codes fall back to USD.
func Currency(v null.Float, code string) string {
	if !v.Valid {
		return NA
	}
	d := decimal.NewFromFloat(v.Float64)
	if major, ok := subunitCodes[code]; ok {
		code = major
		d = d.Div(hundred)
	}
	cur := money.GetCurrency(code)
	if cur == nil {
		cur = money.GetCurrency(money.USD)
	}

	tmpl := "$1"
	if utf8.RuneCountInString(cur.Grapheme) > 1 {
		tmpl = "$ 1"
	}
	if d.Equal(d.Truncate(0)) {
		return money.NewFormatter(0, cur.Decimal, cur.Thousand, cur.Grapheme, tmpl).Format(d.IntPart())
	}
	f := money.NewFormatter(cur.Fraction, cur.Decimal, cur.Thousand, cur.Grapheme, tmpl)
	return f.Format(d.Shift(int32(cur.Fraction)).Round(0).IntPart())
}

// Ratio renders a plain ratio with two decimals: 1.8123 → "1.81".
func Ratio(v null.Float) string {
	if !v.Valid {
		return NA
	}
	return decimal.NewFromFloat(v.Float64).StringFixed(2)
}

// Number renders the provider value in its shortest form: 6.43 → "6.43".
func Number(v null.Float) string {
	if !v.Valid {
		return NA
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

// Metric is one labeled line of the key metrics or insights panels.
type Metric struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Present bool   `json:"present"`
	Caption string `json:"caption,omitempty"`
}

// Markdown renders the metric line the way the page shows it: a bold
// label for present values and a plain "Label: N/A" otherwise.
func (m Metric) Markdown() string {
	if !m.Present {
		return m.Label + ": " + NA
	}
	return "**" + m.Label + ":** " + m.Value
}

func metric(label string, v null.Float, format func(null.Float) string) Metric {
	return Metric{Label: label, Value: format(v), Present: v.Valid}
}

func currencyMetric(label string, v null.Float, code string) Metric {
	return Metric{Label: label, Value: Currency(v, code), Present: v.Valid}
}

// rangeMetric renders "high / low", with N/A for whichever side is absent.
func rangeMetric(label string, high, low null.Float) Metric {
	return Metric{
		Label:   label,
		Value:   Number(high) + " / " + Number(low),
		Present: high.Valid || low.Valid,
	}
}

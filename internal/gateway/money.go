package gateway

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders an amount in rupees with Indian digit grouping, e.g.
// "₹2,500.5". Paise are rounded to two places and printed exactly; the rupee
// part must fit in an int64.
func FormatINR(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	out := sign + "₹" + inrPrinter.Sprint(number.Decimal(whole.IntPart()))
	if paise := d.Sub(whole); !paise.IsZero() {
		out += strings.TrimPrefix(paise.String(), "0")
	}
	return out
}

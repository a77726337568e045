package view

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale matches the storefront's Argentine peso formatting.
const DefaultLocale = "es-AR"

// Formatter renders money amounts for a single locale.
type Formatter struct {
	p *message.Printer
}

// NewFormatter returns a Formatter for the BCP 47 locale. Unknown locales
// fall back to the closest parent.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &Formatter{p: message.NewPrinter(tag)}
}

// Money formats v as "$" followed by the localized number with at most two
// fraction digits. Whole amounts are formatted exactly; fractional amounts go
// through float64, exact up to 2^53 cents.
func (f *Formatter) Money(v decimal.Decimal) string {
	v = v.Round(2)
	if v.Equal(v.Truncate(0)) {
		if i := v.BigInt(); i.IsInt64() {
			return f.p.Sprintf("$%v", number.Decimal(i.Int64()))
		}
	}
	return f.p.Sprintf("$%v", number.Decimal(v.InexactFloat64(), number.MaxFractionDigits(2)))
}

package export

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money formats an amount the way the listing site shows it, e.g. "17.345,50 TL".
func Money(v float64) string {
	return message.NewPrinter(language.Turkish).Sprintf("%.2f TL", v)
}

// Decimal formats v with the given number of decimals and Turkish separators.
func Decimal(v float64, decimals int) string {
	return message.NewPrinter(language.Turkish).Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

package ml

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatPrice renders a price in dollars with thousands grouping, e.g.
// "$1,234,567.89".
func FormatPrice(price float64) string {
	p := message.NewPrinter(language.English)
	if math.Signbit(price) && price != 0 {
		return p.Sprintf("-$%.2f", -price)
	}
	return p.Sprintf("$%.2f", price)
}

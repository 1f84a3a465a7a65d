package catalog

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatPrice renders n with thousands separators: 1234567 -> "1,234,567".
func FormatPrice(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatShort abbreviates large counts: 1234 -> "1.2K", 2315678 -> "2.3M".
// Values under 1000 are printed as-is.
func FormatShort(n int) string {
	switch {
	case n >= 1_000_000:
		return trimZero(float64(n)/1_000_000) + "M"
	case n >= 1_000:
		return trimZero(float64(n)/1_000) + "K"
	default:
		return strconv.Itoa(n)
	}
}

func trimZero(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0")
}

// Stars renders a five-star rating bar rounded to the nearest half star.
func Stars(rating float64) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	halves := int(rating*2 + 0.5)
	full := halves / 2
	half := halves % 2
	return strings.Repeat("★", full) + strings.Repeat("⯪", half) + strings.Repeat("☆", 5-full-half)
}

package browse

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/shelf/internal/catalog"
)

// CursorMarker is the prefix shown on the selected product row.
const CursorMarker = "▸ "

var (
	accent = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	muted  = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	selectedStyle = lipgloss.NewStyle().Bold(true)
	mutedText     = lipgloss.NewStyle().Foreground(muted)
	errorText     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
	saleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
	originalStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(muted)
	starStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "3", Dark: "11"})
	discountBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.AdaptiveColor{Light: "1", Dark: "9"}).
			Padding(0, 1)
)

// PriceLine renders the sale price, the struck-through original price and
// a discount badge when the product is marked down.
func PriceLine(p catalog.Product) string {
	line := saleStyle.Render("$" + catalog.FormatPrice(p.SalePrice))
	if p.OriginalPrice > p.SalePrice {
		line += " " + originalStyle.Render("$"+catalog.FormatPrice(p.OriginalPrice))
		line += " " + discountBadge.Render("-"+strconv.Itoa(Discount(p))+"%")
	}
	return line
}

// RatingLine renders stars, the numeric rating and the abbreviated review count.
func RatingLine(p catalog.Product) string {
	return starStyle.Render(catalog.Stars(p.Rating)) + " " +
		strconv.FormatFloat(p.Rating, 'f', 1, 64) + " " +
		mutedText.Render("("+catalog.FormatShort(p.ReviewCount)+" reviews)")
}

// Discount returns the markdown as a whole percentage of the original price.
func Discount(p catalog.Product) int {
	if p.OriginalPrice <= 0 || p.SalePrice >= p.OriginalPrice {
		return 0
	}
	return (p.OriginalPrice - p.SalePrice) * 100 / p.OriginalPrice
}

// truncate cuts s to width cells so viewport lines never wrap.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"hotel_value/internal/domain"
)

const (
	nameMax   = 37
	ruleWidth = 80
	na        = "N/A"
)

var tableCols = []struct {
	title string
	width int
}{
	{"Rank", 5},
	{"Hotel Name", 40},
	{"Review", 8},
	{"Price", 15},
	{"Value Ratio", 12},
}

// WriteTable prints the ranked hotels as a fixed-width console table.
// Widths are measured in terminal cells so Turkish and CJK names stay aligned.
func WriteTable(w io.Writer, hotels []domain.NormalizedHotel) error {
	rule := strings.Repeat("-", ruleWidth)
	var b strings.Builder
	b.WriteString("\nTop Hotels by Value Ratio:\n")
	b.WriteString(rule + "\n")
	header := make([]string, len(tableCols))
	for i, c := range tableCols {
		header[i] = c.title
	}
	writeRow(&b, header)
	b.WriteString(rule + "\n")

	for i, h := range hotels {
		writeRow(&b, []string{
			strconv.Itoa(i + 1),
			shortName(h.Name),
			orNA(h.ReviewScore),
			priceText(h),
			ratioText(h.ValueRatio),
		})
	}
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		b.WriteString(runewidth.FillRight(c, tableCols[i].width))
	}
	b.WriteString("\n")
}

func shortName(name *string) string {
	if name == nil {
		return na
	}
	if runewidth.StringWidth(*name) > nameMax {
		return runewidth.Truncate(*name, nameMax, "") + "..."
	}
	return *name
}

func orNA(s *string) string {
	if s == nil {
		return na
	}
	return *s
}

func priceText(h domain.NormalizedHotel) string {
	if p := h.DisplayPrice(); p != "" {
		return p
	}
	return na
}

func ratioText(r *float64) string {
	if r == nil {
		return na
	}
	return fmt.Sprintf("%.4f", *r)
}

// Summary is the closing line of an analysis run.
func Summary(ranked, eligible, excluded, duplicates int) string {
	return fmt.Sprintf("ranked %d of %d (%d excluded: no computable value ratio, %d duplicates dropped)",
		ranked, eligible+excluded, excluded, duplicates)
}

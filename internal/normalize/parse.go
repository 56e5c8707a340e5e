// Package normalize turns the text fields of a scraped hotel into numbers.
//
// Every parser returns nil instead of an error: a field that cannot be read
// is simply absent, and the record stays in the batch.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	priceRun    = regexp.MustCompile(`[\d.,]+`)
	distanceNum = regexp.MustCompile(`\d+\.?\d*`)
	parenInt    = regexp.MustCompile(`\((\d+)`)
)

// decimal is plain decimal notation; strconv alone would also take hex floats and "inf".
var decimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParsePrice reads a Turkish-formatted amount: "." groups thousands and "," marks decimals.
// Only the first run of digits and separators is used, so "17.345,50 TL (2 gece)" gives 17345.5
// and "TL. 450,00" gives nil because its first run is the lone ".".
func ParsePrice(text *string) *float64 {
	if text == nil {
		return nil
	}
	run := priceRun.FindString(*text)
	if run == "" {
		return nil
	}
	run = strings.ReplaceAll(run, ".", "")
	run = strings.ReplaceAll(run, ",", ".")
	return parseFinite(run)
}

// ParseDistance reads the first decimal number in the text and ignores the unit.
func ParseDistance(text *string) *float64 {
	if text == nil {
		return nil
	}
	m := distanceNum.FindString(*text)
	if m == "" {
		return nil
	}
	return parseFinite(m)
}

// ParseNumeric is a plain float conversion of the trimmed text.
func ParseNumeric(text *string) *float64 {
	if text == nil {
		return nil
	}
	return parseFinite(strings.TrimSpace(*text))
}

// ParseReviewCount takes the integer after "(" when the text has one, e.g. "(128 yorum)".
func ParseReviewCount(text *string) *float64 {
	if text == nil {
		return nil
	}
	if m := parenInt.FindStringSubmatch(*text); m != nil {
		return parseFinite(m[1])
	}
	return ParseNumeric(text)
}

func parseFinite(s string) *float64 {
	if !decimal.MatchString(s) {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

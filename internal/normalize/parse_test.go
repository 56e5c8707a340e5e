package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_value/internal/normalize"
)

func s(v string) *string { return &v }

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   *string
		want *float64
	}{
		{s("17.345,50 TL"), f(17345.5)},
		{s("17.345 TL"), f(17345)},
		{s("450,00 TL"), f(450)},
		{s("1.234.567,89 TL"), f(1234567.89)},
		{s("TL 899"), f(899)},
		{s("3.450,00 TL / 2 gece"), f(3450)}, // only the first group counts
		{s("Fiyat: 1.200,5 TL"), f(1200.5)},
		{s("1,2,3"), nil}, // two decimal commas
		{s(","), nil},
		{s("TL. 450,00"), nil}, // the first run is the lone "."
		{s("Fiyat: .,"), nil},
		{s("no digits here"), nil},
		{s(""), nil},
		{nil, nil},
	}
	for _, c := range cases {
		got := normalize.ParsePrice(c.in)
		assertFloatPtr(t, c.want, got, "ParsePrice(%v)", show(c.in))
	}
}

func TestParsePrice_LocalePattern(t *testing.T) {
	// "a.bcd,ef TL" reads as a*1000 + bcd + ef/100
	for _, c := range []struct {
		text string
		a    int
		bcd  int
		ef   int
	}{
		{"1.000,01 TL", 1, 0, 1},
		{"9.999,99 TL", 9, 999, 99},
		{"17.345,50 TL", 17, 345, 50},
		{"42.007,10 TL", 42, 7, 10},
	} {
		got := normalize.ParsePrice(s(c.text))
		require.NotNil(t, got, c.text)
		want := float64(c.a*1000+c.bcd) + float64(c.ef)/100
		assert.InDelta(t, want, *got, 1e-9, c.text)
	}
}

func TestParseDistance(t *testing.T) {
	cases := []struct {
		in   *string
		want *float64
	}{
		{s("2.3 km from center"), f(2.3)},
		{s("Merkeze 850 m"), f(850)},
		{s("1.5 km - 3.2 km"), f(1.5)},
		{s("12. km"), f(12)},
		{s("far"), nil},
		{s(""), nil},
		{nil, nil},
	}
	for _, c := range cases {
		got := normalize.ParseDistance(c.in)
		assertFloatPtr(t, c.want, got, "ParseDistance(%v)", show(c.in))
	}
}

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		in   *string
		want *float64
	}{
		{s("8.5"), f(8.5)},
		{s(" 9 "), f(9)},
		{s("-1"), f(-1)},
		{s("8,5"), nil},
		{s("NaN"), nil},
		{s("Inf"), nil},
		{s("0x1p3"), nil},
		{s("0X10"), nil},
		{s("1e2"), f(100)},
		{s(".5"), f(0.5)},
		{s("1e400"), nil},
		{s("çok iyi"), nil},
		{s(""), nil},
		{nil, nil},
	}
	for _, c := range cases {
		got := normalize.ParseNumeric(c.in)
		assertFloatPtr(t, c.want, got, "ParseNumeric(%v)", show(c.in))
	}
}

func TestParseReviewCount(t *testing.T) {
	cases := []struct {
		in   *string
		want *float64
	}{
		{s("(128 reviews)"), f(128)},
		{s("Harika (2048 yorum) (3)"), f(2048)},
		{s("128"), f(128)},
		{s("128 reviews"), nil},
		{s("()"), nil},
		{s(""), nil},
		{nil, nil},
	}
	for _, c := range cases {
		got := normalize.ParseReviewCount(c.in)
		assertFloatPtr(t, c.want, got, "ParseReviewCount(%v)", show(c.in))
	}
}

func f(v float64) *float64 { return &v }

func show(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return "\"" + *p + "\""
}

func assertFloatPtr(t *testing.T, want, got *float64, msg string, args ...any) {
	t.Helper()
	if want == nil {
		assert.Nilf(t, got, msg, args...)
		return
	}
	if assert.NotNilf(t, got, msg, args...) {
		assert.InDeltaf(t, *want, *got, 1e-9, msg, args...)
	}
}

package analytics

import (
	"math"
	"sort"
)

// HistogramBins is the number of equal-width bins used for every histogram.
const HistogramBins = 10

type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// BoxStats is a five-number summary. Quartiles use linear interpolation between order statistics.
type BoxStats struct {
	Stars  *int    `json:"stars"` // nil groups hotels without a star rating
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

func mean(vs []float64) *float64 {
	if len(vs) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	m := sum / float64(len(vs))
	return &m
}

func meanOrZero(vs []float64) float64 {
	if m := mean(vs); m != nil {
		return *m
	}
	return 0
}

// histogram splits [min, max] into HistogramBins bins; the last bin is closed on the right.
// All-equal input gives a single bin.
func histogram(vs []float64) []Bin {
	if len(vs) == 0 {
		return []Bin{}
	}
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi, Count: len(vs)}}
	}

	width := (hi - lo) / HistogramBins
	bins := make([]Bin, HistogramBins)
	for i := range bins {
		bins[i].Lo = lo + float64(i)*width
		bins[i].Hi = lo + float64(i+1)*width
	}
	bins[HistogramBins-1].Hi = hi
	for _, v := range vs {
		i := int((v - lo) / width)
		if i >= HistogramBins {
			i = HistogramBins - 1
		}
		bins[i].Count++
	}
	return bins
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	i := int(math.Floor(pos))
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(i)
	return sorted[i] + (sorted[i+1]-sorted[i])*frac
}

func box(stars *int, vs []float64) BoxStats {
	s := append([]float64(nil), vs...)
	sort.Float64s(s)
	return BoxStats{
		Stars:  stars,
		N:      len(s),
		Min:    s[0],
		Q1:     quantile(s, 0.25),
		Median: quantile(s, 0.5),
		Q3:     quantile(s, 0.75),
		Max:    s[len(s)-1],
	}
}

package dataset

import (
	"math"
	"sort"
)

// Describe is the eight-number summary attached to numeric columns in
// cleaning reports and distribution queries.
type Describe struct {
	Count float64 `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"25%"`
	P50   float64 `json:"50%"`
	P75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStd returns the sample standard deviation (n-1 denominator), or 0
// when fewer than two values are given.
func SampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean, m2 float64
	for i, v := range values {
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)
	}
	return math.Sqrt(m2 / float64(len(values)-1))
}

// Quantile returns the q-quantile of an ascending slice using linear
// interpolation between the two closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi > len(sorted)-1 {
		hi = len(sorted) - 1
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Median returns the 0.5 quantile of values, which need not be sorted.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Quantile(sorted, 0.5)
}

// MinMax returns the smallest and largest of values, or (0, 0) for an
// empty slice.
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// DescribeValues computes the eight-number summary of values, which need
// not be sorted. An empty slice yields the zero summary.
func DescribeValues(values []float64) Describe {
	if len(values) == 0 {
		return Describe{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Describe{
		Count: float64(len(sorted)),
		Mean:  Mean(sorted),
		Std:   SampleStd(sorted),
		Min:   sorted[0],
		P25:   Quantile(sorted, 0.25),
		P50:   Quantile(sorted, 0.5),
		P75:   Quantile(sorted, 0.75),
		Max:   sorted[len(sorted)-1],
	}
}

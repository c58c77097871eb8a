package processor

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// clip bounds x to the closed interval [lo, hi].
func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// percentile returns the p-th quantile (p in [0,1]) of values using linear
// interpolation between the two closest ranks. Thresholds derived from it
// are batch-relative and recomputed on every run.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// mean returns the arithmetic mean, 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// sampleStd returns the sample (n-1) standard deviation, 0 when fewer than
// two values exist so degenerate inputs never surface as NaN.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// sampleVariance returns the sample (n-1) variance with the same degenerate
// handling as sampleStd.
func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.Variance(values, nil)
}

// populationStd returns the biased (n) standard deviation used by the
// feature standardization step.
func populationStd(values []float64, mu float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mu
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// minMax returns the extremes of values; both are 0 for an empty slice.
func minMax(values []float64) (float64, float64) {
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

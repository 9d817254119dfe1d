// Package stats holds the pure numeric primitives shared by the analytics
// modules. No I/O, no state; every function is safe for concurrent use.
package stats

import (
	"math"
	"sort"
)

// StdDev returns the population standard deviation. Empty input yields 0.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Mean returns the arithmetic mean, 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value; for even-length input the average of the
// two middle elements. Empty input yields 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// MovingAverage averages the last window values. When fewer values exist than
// the window it averages everything available.
func MovingAverage(window int, values []float64) float64 {
	if len(values) == 0 || window <= 0 {
		return 0
	}
	if window > len(values) {
		window = len(values)
	}
	return Mean(values[len(values)-window:])
}

// ExpSmooth applies the recurrence s = alpha*v + (1-alpha)*s, seeded with the
// first element and walking the slice in the order supplied. Callers own the
// direction: pass the series oldest-first so recent observations dominate.
func ExpSmooth(alpha float64, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	smoothed := values[0]
	for _, v := range values[1:] {
		smoothed = alpha*v + (1-alpha)*smoothed
	}
	return smoothed
}

// LinearFit runs ordinary least squares over index positions 0..n-1 against
// the values. r2 is defined as 0 when the series has no variance. Fewer than
// two points yields all zeros.
func LinearFit(values []float64) (slope, intercept, r2 float64) {
	n := len(values)
	if n < 2 {
		return 0, 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0, 0
	}
	slope = (fn*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / fn

	meanY := sumY / fn
	var ssRes, ssTot float64
	for i, y := range values {
		fit := slope*float64(i) + intercept
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - meanY) * (y - meanY)
	}
	if ssTot == 0 {
		return slope, intercept, 0
	}
	return slope, intercept, 1 - ssRes/ssTot
}

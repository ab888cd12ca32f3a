package calculation

import "math"

// percentileInt returns the rank-based percentile of sorted values:
// index floor(p*n), clamped to the last element. Empty input yields 0.
func percentileInt(sorted []int, p float64) int {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Floor(float64(n) * p))
	if idx > n-1 {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func meanInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

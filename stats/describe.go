package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// describe summarizes one retained score list. All fields are only
// meaningful when the list is non-empty.
type describe struct {
	mean   float64
	median float64
	min    float64
	max    float64
	std    float64
	total  float64
}

// describeList computes the distribution summary for a list of values.
// The std is the sample standard deviation, except that a single sample
// yields 0 rather than being undefined.
func describeList(xs []float64) describe {
	d := describe{}
	if len(xs) == 0 {
		return d
	}

	d.mean = stat.Mean(xs, nil)
	d.median = median(xs)
	d.min, d.max = xs[0], xs[0]
	for _, x := range xs {
		if x < d.min {
			d.min = x
		}
		if x > d.max {
			d.max = x
		}
		d.total += x
	}
	if len(xs) > 1 {
		d.std = stat.StdDev(xs, nil)
	}
	return d
}

// median matches the midpoint-average convention: for an even count the
// result is the mean of the two middle values.
func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func fptr(v float64) *float64 {
	return &v
}

func iptr(v int) *int {
	return &v
}

func i64ptr(v int64) *int64 {
	return &v
}

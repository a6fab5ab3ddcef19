package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the histogram resolution used for CDF plots.
const DefaultBins = 100

var ErrNoValues = errors.New("no values for distribution")

// Distribution is a cumulative histogram. Edges[i] is the upper edge of bin
// i and Cumulative[i] the fraction of values at or below it.
type Distribution struct {
	Edges      []float64
	Cumulative []float64
	N          int
}

// CDF bins values into equal-width bins over [min, max] and returns the
// normalised running sum. The last bin is closed. When every value is the
// same the range is widened by 0.5 on each side.
func CDF(values []float64, bins int) (*Distribution, error) {
	if len(values) == 0 {
		return nil, ErrNoValues
	}
	if bins <= 0 {
		return nil, fmt.Errorf("bins must be positive, got %d", bins)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("distribution input contains %v", v)
		}
	}

	x := make([]float64, len(values))
	copy(x, values)
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	// stat.Histogram treats the last divider as exclusive
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, x, nil)
	cum := floats.CumSum(make([]float64, bins), counts)
	floats.Scale(1/float64(len(x)), cum)

	return &Distribution{Edges: edges[1:], Cumulative: cum, N: len(x)}, nil
}

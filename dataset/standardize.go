package dataset

import (
	"fmt"
	"math"

	"github.com/dot5enko/rethinking-bridge/frame"
	"gonum.org/v1/gonum/stat"
)

// Standardize adds column dst holding (x - mean) / sd of column src. Nulls
// are left out of the moments and stay null.
func Standardize(f *frame.Frame, src, dst string) (*frame.Frame, error) {

	values, err := f.Float64s(src)
	if err != nil {
		return nil, err
	}

	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}

	if len(present) < 2 {
		return nil, fmt.Errorf("column '%s' needs at least two values to standardize, has %d", src, len(present))
	}

	mean, sd := stat.MeanStdDev(present, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil, fmt.Errorf("column '%s' has zero variance", src)
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / sd
	}

	return f.WithFloat64(dst, out)
}

package posterior

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/dot5enko/rethinking-bridge/frame"
)

// Grid holds the predictor values at which predictions are made. Point g is
// the g-th value of every predictor column.
type Grid struct {
	predictors []string
	columns    [][]float64
	size       int
}

// NewGrid is a grid over a single predictor.
func NewGrid(predictor string, values []float64) (*Grid, error) {
	return GridFromColumns([]string{predictor}, [][]float64{values})
}

// IsReservedName reports whether name collides with a parameter or a
// predictive table column. Table column names are compared case-insensitively.
func IsReservedName(name string) bool {
	lower := strings.ToLower(name)
	switch lower {
	case strings.ToLower(InterceptParameter), strings.ToLower(SigmaParameter), MeanColumn, SampleColumn:
		return true
	}
	return strings.HasPrefix(lower, slopePrefix)
}

func GridFromColumns(predictors []string, columns [][]float64) (*Grid, error) {

	if len(predictors) != len(columns) {
		return nil, &ShapeError{Reason: fmt.Sprintf("%d predictor names for %d grid columns", len(predictors), len(columns))}
	}

	g := &Grid{
		predictors: slices.Clone(predictors),
		columns:    make([][]float64, len(columns)),
	}

	seen := map[string]bool{}
	for k, name := range predictors {

		if IsReservedName(name) {
			return nil, &ShapeError{Parameter: name, Reason: "reserved name used as a predictor"}
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, &ShapeError{Parameter: name, Reason: "duplicate grid predictor"}
		}
		seen[key] = true

		if k == 0 {
			g.size = len(columns[k])
		} else if len(columns[k]) != g.size {
			return nil, &ShapeError{Parameter: name, Reason: fmt.Sprintf("grid column has %d values, expected %d", len(columns[k]), g.size)}
		}

		g.columns[k] = slices.Clone(columns[k])
	}

	return g, nil
}

// NewPointGrid is a grid of points with no predictor values, as used by
// intercept-only models.
func NewPointGrid(points int) *Grid {
	return &Grid{size: max(points, 0)}
}

// GridFromFrame uses the named numeric columns of f as grid columns, one grid
// point per row.
func GridFromFrame(f *frame.Frame, predictors ...string) (*Grid, error) {

	if len(predictors) == 0 {
		return NewPointGrid(f.NRows()), nil
	}

	columns := make([][]float64, len(predictors))
	for k, name := range predictors {
		values, err := f.Float64s(name)
		if err != nil {
			return nil, &ShapeError{Parameter: name, Reason: err.Error()}
		}
		columns[k] = values
	}

	return GridFromColumns(predictors, columns)
}

const maxArangeSize = 1 << 24

// Arange returns start, start+step, ... up to but excluding stop.
func Arange(start, stop, step float64) []float64 {

	if step == 0 || math.IsNaN(start) || math.IsNaN(stop) || math.IsNaN(step) {
		return nil
	}

	count := math.Ceil((stop - start) / step)
	if !(count > 0) || count > maxArangeSize {
		return nil
	}

	out := make([]float64, int(count))
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Len is the number of grid points.
func (g *Grid) Len() int {
	return g.size
}

func (g *Grid) Predictors() []string {
	return slices.Clone(g.predictors)
}

// Column returns the values of a predictor. The slice is shared and must not be modified.
func (g *Grid) Column(predictor string) ([]float64, bool) {
	idx := slices.Index(g.predictors, predictor)
	if idx < 0 {
		return nil, false
	}
	return g.columns[idx], true
}

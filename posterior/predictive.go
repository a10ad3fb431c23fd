package posterior

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"slices"
	"time"

	"github.com/dot5enko/rethinking-bridge/frame"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	MeanColumn   = "mean"
	SampleColumn = "sample"
	slopePrefix  = "slope_"
)

// SlopeColumn is the table column holding the draws of a predictor's slope.
func SlopeColumn(predictor string) string {
	return slopePrefix + predictor
}

// PredictiveTable is the cross product of grid points and draws, row g*D+d
// pairing grid point g with draw d.
type PredictiveTable struct {
	Predictors []string

	// Grid[k] and Slopes[k] belong to Predictors[k].
	Grid      [][]float64
	Slopes    [][]float64
	Intercept []float64
	Sigma     []float64

	Mean   []float64
	Sample []float64
}

func newPredictiveTable(predictors []string, rows int) *PredictiveTable {
	t := &PredictiveTable{
		Predictors: slices.Clone(predictors),
		Grid:       make([][]float64, len(predictors)),
		Slopes:     make([][]float64, len(predictors)),
		Intercept:  make([]float64, rows),
		Sigma:      make([]float64, rows),
		Mean:       make([]float64, rows),
		Sample:     make([]float64, rows),
	}
	for k := range predictors {
		t.Grid[k] = make([]float64, rows)
		t.Slopes[k] = make([]float64, rows)
	}
	return t
}

func (t *PredictiveTable) Len() int {
	return len(t.Mean)
}

// Frame returns the table with grid columns named after their predictor,
// slope columns as slope_<predictor>, then Intercept, sigma, mean and sample.
func (t *PredictiveTable) Frame() (*frame.Frame, error) {

	names := make([]string, 0, 2*len(t.Predictors)+4)
	columns := make([][]float64, 0, cap(names))

	for k, predictor := range t.Predictors {
		names = append(names, predictor)
		columns = append(columns, t.Grid[k])
	}
	for k, predictor := range t.Predictors {
		names = append(names, SlopeColumn(predictor))
		columns = append(columns, t.Slopes[k])
	}

	names = append(names, InterceptParameter, SigmaParameter, MeanColumn, SampleColumn)
	columns = append(columns, t.Intercept, t.Sigma, t.Mean, t.Sample)

	return frame.FromFloat64Columns("predictive", names, columns)
}

type linearDraws struct {
	intercept []float64
	sigma     []float64
	slopes    [][]float64
}

// requireLinearDraws checks that samples hold exactly an intercept, a noise
// scale and one slope per grid predictor.
func requireLinearDraws(grid *Grid, samples *SampleSet) (linearDraws, error) {

	required := append([]string{InterceptParameter, SigmaParameter}, grid.predictors...)

	for _, name := range required {
		if !samples.Has(name) {
			return linearDraws{}, &ShapeError{Parameter: name, Reason: "missing required parameter"}
		}
	}

	for _, name := range samples.names {
		if !slices.Contains(required, name) {
			return linearDraws{}, &ShapeError{Parameter: name, Reason: "unexpected parameter, model has no such term"}
		}
	}

	draws := linearDraws{
		intercept: samples.draws[InterceptParameter],
		sigma:     samples.draws[SigmaParameter],
		slopes:    make([][]float64, len(grid.predictors)),
	}
	for k, predictor := range grid.predictors {
		draws.slopes[k] = samples.draws[predictor]
	}

	return draws, nil
}

// fillPoint writes the rows of grid point g. Non-finite inputs flow through
// the arithmetic unchanged.
func fillPoint(t *PredictiveTable, grid *Grid, draws linearDraws, g int, src rand.Source) {

	d := len(draws.intercept)
	base := g * d

	for i := 0; i < d; i++ {
		row := base + i

		mean := draws.intercept[i]
		for k := range grid.columns {
			x := grid.columns[k][g]
			b := draws.slopes[k][i]

			t.Grid[k][row] = x
			t.Slopes[k][row] = b

			mean += b * x
		}

		sigma := draws.sigma[i]

		t.Intercept[row] = draws.intercept[i]
		t.Sigma[row] = sigma
		t.Mean[row] = mean
		t.Sample[row] = distuv.Normal{Mu: mean, Sigma: sigma, Src: src}.Rand()
	}
}

// PredictWith builds the predictive table serially, drawing every sampled
// response from src in row order.
func PredictWith(grid *Grid, samples *SampleSet, src rand.Source) (*PredictiveTable, error) {

	draws, err := requireLinearDraws(grid, samples)
	if err != nil {
		return nil, err
	}

	t := newPredictiveTable(grid.predictors, grid.Len()*samples.Len())

	for g := 0; g < grid.Len(); g++ {
		fillPoint(t, grid, draws, g, src)
	}

	return t, nil
}

// Sampler builds predictive tables in parallel over grid points. Grid point g
// draws from PCG(Seed, g), so the table depends on Seed only and not on Workers.
type Sampler struct {
	Seed    uint64
	Workers int
}

func (s Sampler) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (s Sampler) Table(ctx context.Context, grid *Grid, samples *SampleSet) (*PredictiveTable, error) {

	draws, err := requireLinearDraws(grid, samples)
	if err != nil {
		return nil, err
	}

	before := time.Now()
	t := newPredictiveTable(grid.predictors, grid.Len()*samples.Len())

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers())

	for g := 0; g < grid.Len(); g++ {
		eg.Go(func() error {
			if ctxErr := egCtx.Err(); ctxErr != nil {
				return ctxErr
			}

			// rows of distinct grid points never overlap
			fillPoint(t, grid, draws, g, rand.NewPCG(s.Seed, uint64(g)))
			return nil
		})
	}

	if waitErr := eg.Wait(); waitErr != nil {
		return nil, fmt.Errorf("unable to build predictive table: %w", waitErr)
	}

	slog.Debug("predictive table built", "rows", t.Len(), "grid_points", grid.Len(), "draws", samples.Len(), "took_ms", time.Since(before).Milliseconds())

	return t, nil
}

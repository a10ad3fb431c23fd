package model

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/dot5enko/rethinking-bridge/frame"
	"github.com/dot5enko/rethinking-bridge/posterior"
)

type Family string

const Gaussian Family = "gaussian"

var ErrInvalidModel = errors.New("invalid model")

// Model is a gaussian linear regression with a prior on every parameter.
type Model struct {
	Formula Formula
	Priors  map[string]Prior
	Family  Family
}

// New checks that every parameter of formula has a valid prior and that no
// prior names a parameter the formula lacks. An empty family means gaussian.
func New(formula Formula, priors map[string]Prior, family Family) (*Model, error) {

	if family == "" {
		family = Gaussian
	}
	if family != Gaussian {
		return nil, fmt.Errorf("%w: family '%s' is not supported", ErrInvalidModel, family)
	}

	m := &Model{
		Formula: formula,
		Priors:  make(map[string]Prior, len(priors)),
		Family:  family,
	}

	params := m.Parameters()
	problems := []error{}

	for _, param := range params {
		prior, ok := priors[param]
		if !ok || prior == nil {
			problems = append(problems, fmt.Errorf("%w: parameter '%s' has no prior", ErrInvalidModel, param))
			continue
		}
		if err := prior.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("parameter '%s': %w", param, err))
			continue
		}
		m.Priors[param] = prior
	}

	for name := range priors {
		if !slices.Contains(params, name) {
			problems = append(problems, fmt.Errorf("%w: prior for '%s' matches no parameter of '%s'", ErrInvalidModel, name, formula.String()))
		}
	}

	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	return m, nil
}

// Parameters lists Intercept, one slope per predictor, then sigma.
func (m *Model) Parameters() []string {
	params := make([]string, 0, len(m.Formula.Predictors)+2)
	params = append(params, posterior.InterceptParameter)
	params = append(params, m.Formula.Predictors...)
	return append(params, posterior.SigmaParameter)
}

// PriorSamples draws n values from the prior of every parameter.
func (m *Model) PriorSamples(n int, src rand.Source) (*posterior.SampleSet, error) {

	draws := make(map[string][]float64, len(m.Priors))
	for _, param := range m.Parameters() {
		draws[param] = m.Priors[param].Sample(n, src)
	}

	return posterior.NewSampleSet(draws)
}

// PriorPredictive draws n parameter vectors from the priors and, for every row
// of data, one response per vector. Rows are ordered like the posterior
// predictive table, data row major.
func (m *Model) PriorPredictive(data *frame.Frame, n int, src rand.Source) (*posterior.PredictiveTable, error) {

	samples, err := m.PriorSamples(n, src)
	if err != nil {
		return nil, err
	}

	grid, err := posterior.GridFromFrame(data, m.Formula.Predictors...)
	if err != nil {
		return nil, err
	}

	table, err := posterior.PredictWith(grid, samples, src)
	if err != nil {
		return nil, err
	}

	slog.Debug("sampled prior predictive", "formula", m.Formula.String(), "draws", n, "rows", table.Len())

	return table, nil
}

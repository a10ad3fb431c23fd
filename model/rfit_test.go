package model

import (
	"context"
	"errors"
	"testing"

	"github.com/dot5enko/rethinking-bridge/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEvaluator struct {
	bound    map[string]*frame.Frame
	snippets []string
	draws    *frame.Frame
	err      error
}

func (e *recordingEvaluator) Put(ctx context.Context, variable string, f *frame.Frame) error {
	if e.bound == nil {
		e.bound = map[string]*frame.Frame{}
	}
	e.bound[variable] = f
	return nil
}

func (e *recordingEvaluator) Eval(ctx context.Context, snippet string, variable string) (*frame.Frame, error) {
	e.snippets = append(e.snippets, snippet)
	if e.err != nil {
		return nil, e.err
	}
	return e.draws, nil
}

func TestQuapSnippet(t *testing.T) {
	m := heightModel(t)

	snippet, err := QuapSnippet(m, "d2", "post", FitOptions{Draws: 1000, Chains: 4, Seed: 4})
	require.NoError(t, err)

	expected := `dhalfnorm_bridge <- function(x, sigma, log = FALSE) {
  d <- ifelse(x < 0, 0, 2 * dnorm(x, 0, sigma))
  if (log) log(d) else d
}
set.seed(4)
.bridge_fit <- rethinking::quap(
  alist(
    height ~ dnorm(bridge_mu, bridge_sigma),
    bridge_mu <- bridge_a + bridge_b_weight * weight,
    bridge_a ~ dnorm(156, 100),
    bridge_b_weight ~ dnorm(0, 10),
    bridge_sigma ~ dcauchy(0, 1)
  ),
  data = as.data.frame(d2),
  start = list(bridge_a = mean(d2$height), bridge_b_weight = 0, bridge_sigma = sd(d2$height))
)
post <- as.data.frame(rethinking::extract.samples(.bridge_fit, n = 4000))
`
	assert.Equal(t, expected, snippet)
}

func TestQuapSnippetPriorDensities(t *testing.T) {
	m, err := New(MustParseFormula("D ~ 1 + A"), map[string]Prior{
		"Intercept": Normal{Mu: 0, Sigma: 0.2},
		"A":         Normal{Mu: 0, Sigma: 0.5},
		"sigma":     Exponential{Lam: 1},
	}, Gaussian)
	require.NoError(t, err)

	snippet, err := QuapSnippet(m, "d", "post", DefaultFitOptions())
	require.NoError(t, err)
	assert.Contains(t, snippet, "bridge_sigma ~ dexp(1)")
	assert.Contains(t, snippet, "bridge_a ~ dnorm(0, 0.2)")

	m.Priors["sigma"] = HalfNormal{Sigma: 5}
	snippet, err = QuapSnippet(m, "d", "post", DefaultFitOptions())
	require.NoError(t, err)
	assert.Contains(t, snippet, "bridge_sigma ~ dhalfnorm_bridge(5)")
}

func TestRFitterFit(t *testing.T) {
	m := heightModel(t)

	draws, err := frame.FromFloat64Columns("draws", []string{"bridge_a", "bridge_b_weight", "bridge_sigma"}, [][]float64{
		{113.9, 114.1},
		{0.90, 0.91},
		{5.07, 5.10},
	})
	require.NoError(t, err)

	env := &recordingEvaluator{draws: draws}
	data, err := frame.FromFloat64Columns("d2", []string{"height", "weight"}, [][]float64{{151.765}, {47.8}})
	require.NoError(t, err)

	samples, err := RFitter{Env: env}.Fit(context.Background(), m, data, DefaultFitOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Intercept", "sigma", "weight"}, samples.Names())
	weight, _ := samples.Draws("weight")
	assert.Equal(t, []float64{0.90, 0.91}, weight)

	assert.Same(t, data, env.bound[fitDataVariable])
	require.Len(t, env.snippets, 1)
	assert.Contains(t, env.snippets[0], "as.data.frame(.bridge_fit_data)")
}

func TestRFitterFitErrors(t *testing.T) {
	m := heightModel(t)

	noWeight, err := frame.FromFloat64Columns("d2", []string{"height"}, [][]float64{{151.765}})
	require.NoError(t, err)

	_, err = RFitter{Env: &recordingEvaluator{}}.Fit(context.Background(), m, noWeight, DefaultFitOptions())
	assert.ErrorIs(t, err, ErrInvalidModel)

	data, err := frame.FromFloat64Columns("d2", []string{"height", "weight"}, [][]float64{{151.765}, {47.8}})
	require.NoError(t, err)

	boom := errors.New("there is no package called 'rethinking'")
	_, err = RFitter{Env: &recordingEvaluator{err: boom}}.Fit(context.Background(), m, data, DefaultFitOptions())
	assert.ErrorIs(t, err, boom)
}

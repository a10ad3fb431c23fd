package model

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestParsePrior(t *testing.T) {
	cases := []struct {
		src  string
		want Prior
	}{
		{"normal(178, 20)", Normal{Mu: 178, Sigma: 20}},
		{"Normal(mu=156, sigma=100)", Normal{Mu: 156, Sigma: 100}},
		{"normal(sigma=0.5, mu=0)", Normal{Mu: 0, Sigma: 0.5}},
		{"HalfNormal(sigma=5)", HalfNormal{Sigma: 5}},
		{"cauchy(0, 1)", Cauchy{Alpha: 0, Beta: 1}},
		{" Exponential(lam=1) ", Exponential{Lam: 1}},
	}

	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			p, err := ParsePrior(c.src)
			require.NoError(t, err)
			assert.Equal(t, c.want, p)
		})
	}
}

func TestParsePriorRejects(t *testing.T) {
	for _, src := range []string{
		"normal",
		"normal(1)",
		"normal(1, 2, 3)",
		"beta(1, 1)",
		"normal(0, -1)",
		"normal(mu=0, mu=1)",
		"normal(mu=0, tau=1)",
		"exponential(0)",
		"halfnormal(abc)",
		"normal(NaN, 1)",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := ParsePrior(src)
			assert.ErrorIs(t, err, ErrInvalidPrior)
		})
	}
}

func TestPriorSampleMoments(t *testing.T) {
	n := 20000
	src := rand.NewPCG(4, 4)

	normal := Normal{Mu: 178, Sigma: 20}.Sample(n, src)
	mean, sd := stat.MeanStdDev(normal, nil)
	assert.InDelta(t, 178, mean, 1)
	assert.InDelta(t, 20, sd, 1)

	half := HalfNormal{Sigma: 5}.Sample(n, src)
	for _, v := range half {
		require.GreaterOrEqual(t, v, 0.0)
	}
	// E|X| = sigma * sqrt(2/pi)
	assert.InDelta(t, 5*math.Sqrt(2/math.Pi), stat.Mean(half, nil), 0.1)

	exp := Exponential{Lam: 2}.Sample(n, src)
	assert.InDelta(t, 0.5, stat.Mean(exp, nil), 0.02)

	cauchy := Cauchy{Alpha: 3, Beta: 1}.Sample(n, src)
	slices.Sort(cauchy)
	assert.InDelta(t, 3, stat.Quantile(0.5, stat.Empirical, cauchy, nil), 0.1)
}

func TestPriorSampleDeterministic(t *testing.T) {
	p := Normal{Mu: 0, Sigma: 1}
	assert.Equal(t, p.Sample(10, rand.NewPCG(1, 2)), p.Sample(10, rand.NewPCG(1, 2)))
	assert.Empty(t, p.Sample(0, rand.NewPCG(1, 2)))
}

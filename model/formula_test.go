package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormula(t *testing.T) {
	cases := []struct {
		src  string
		want Formula
	}{
		{"height ~ 1", Formula{Response: "height", Intercept: true}},
		{"height ~ 1 + weight", Formula{Response: "height", Intercept: true, Predictors: []string{"weight"}}},
		{"height~weight", Formula{Response: "height", Intercept: true, Predictors: []string{"weight"}}},
		{"D ~ 1 + A + M", Formula{Response: "D", Intercept: true, Predictors: []string{"A", "M"}}},
		{"Divorce ~ 1 + MedianAgeMarriage", Formula{Response: "Divorce", Intercept: true, Predictors: []string{"MedianAgeMarriage"}}},
	}

	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			f, err := ParseFormula(c.src)
			require.NoError(t, err)
			assert.Equal(t, c.want, f)
		})
	}
}

func TestParseFormulaRejects(t *testing.T) {
	for _, src := range []string{
		"height",
		"height ~",
		"~ weight",
		"height ~ 0 + weight",
		"height ~ weight - 1",
		"height ~ 1 + bs(weight, df=3)",
		"height ~ 1 + + weight",
		"height ~ weight + weight",
		"height ~ height",
		"height ~ a ~ b",
		"height ~ 2weight",
		"height ~ 1 + sigma",
		"height ~ Intercept",
		"height ~ weight + mean",
		"height ~ slope_weight",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := ParseFormula(src)
			assert.ErrorIs(t, err, ErrUnsupportedFormula)
		})
	}
}

func TestFormulaString(t *testing.T) {
	assert.Equal(t, "height ~ 1 + weight", MustParseFormula("height~weight").String())
	assert.Equal(t, "height ~ 1", MustParseFormula("height ~ 1").String())
}

func TestReservedPredictorNeverReachesModel(t *testing.T) {
	_, err := ParseFormula("height ~ 1 + sigma")
	require.ErrorIs(t, err, ErrUnsupportedFormula)
	assert.Contains(t, err.Error(), "reserved")
}

package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

var ErrInvalidPrior = errors.New("invalid prior")

// Prior is one of Normal, HalfNormal, Cauchy or Exponential.
type Prior interface {
	Family() string
	Validate() error
	Sample(n int, src rand.Source) []float64

	// quapDensity is the density call used in a rethinking::quap model line.
	quapDensity() string

	String() string
}

type Normal struct {
	Mu    float64
	Sigma float64
}

type HalfNormal struct {
	Sigma float64
}

type Cauchy struct {
	Alpha float64
	Beta  float64
}

type Exponential struct {
	Lam float64
}

func requireFinite(family, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s %s must be finite, got %v", ErrInvalidPrior, family, name, v)
	}
	return nil
}

func requirePositive(family, name string, v float64) error {
	if err := requireFinite(family, name, v); err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("%w: %s %s must be positive, got %v", ErrInvalidPrior, family, name, v)
	}
	return nil
}

func draw(n int, rnd func() float64) []float64 {
	out := make([]float64, max(n, 0))
	for i := range out {
		out[i] = rnd()
	}
	return out
}

func rNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (p Normal) Family() string { return "normal" }

func (p Normal) Validate() error {
	return errors.Join(requireFinite(p.Family(), "mu", p.Mu), requirePositive(p.Family(), "sigma", p.Sigma))
}

func (p Normal) Sample(n int, src rand.Source) []float64 {
	return draw(n, distuv.Normal{Mu: p.Mu, Sigma: p.Sigma, Src: src}.Rand)
}

func (p Normal) quapDensity() string {
	return fmt.Sprintf("dnorm(%s, %s)", rNumber(p.Mu), rNumber(p.Sigma))
}

func (p Normal) String() string {
	return fmt.Sprintf("Normal(mu=%s, sigma=%s)", rNumber(p.Mu), rNumber(p.Sigma))
}

func (p HalfNormal) Family() string { return "halfnormal" }

func (p HalfNormal) Validate() error {
	return requirePositive(p.Family(), "sigma", p.Sigma)
}

func (p HalfNormal) Sample(n int, src rand.Source) []float64 {
	normal := distuv.Normal{Mu: 0, Sigma: p.Sigma, Src: src}
	return draw(n, func() float64 { return math.Abs(normal.Rand()) })
}

func (p HalfNormal) quapDensity() string {
	return fmt.Sprintf("%s(%s)", halfNormalDensity, rNumber(p.Sigma))
}

func (p HalfNormal) String() string {
	return fmt.Sprintf("HalfNormal(sigma=%s)", rNumber(p.Sigma))
}

func (p Cauchy) Family() string { return "cauchy" }

func (p Cauchy) Validate() error {
	return errors.Join(requireFinite(p.Family(), "alpha", p.Alpha), requirePositive(p.Family(), "beta", p.Beta))
}

func (p Cauchy) Sample(n int, src rand.Source) []float64 {
	// Student's t with one degree of freedom
	return draw(n, distuv.StudentsT{Mu: p.Alpha, Sigma: p.Beta, Nu: 1, Src: src}.Rand)
}

func (p Cauchy) quapDensity() string {
	return fmt.Sprintf("dcauchy(%s, %s)", rNumber(p.Alpha), rNumber(p.Beta))
}

func (p Cauchy) String() string {
	return fmt.Sprintf("Cauchy(alpha=%s, beta=%s)", rNumber(p.Alpha), rNumber(p.Beta))
}

func (p Exponential) Family() string { return "exponential" }

func (p Exponential) Validate() error {
	return requirePositive(p.Family(), "lam", p.Lam)
}

func (p Exponential) Sample(n int, src rand.Source) []float64 {
	return draw(n, distuv.Exponential{Rate: p.Lam, Src: src}.Rand)
}

func (p Exponential) quapDensity() string {
	return fmt.Sprintf("dexp(%s)", rNumber(p.Lam))
}

func (p Exponential) String() string {
	return fmt.Sprintf("Exponential(lam=%s)", rNumber(p.Lam))
}

type priorFamily struct {
	params []string
	build  func(args []float64) Prior
}

var priorFamilies = map[string]priorFamily{
	"normal": {
		params: []string{"mu", "sigma"},
		build:  func(args []float64) Prior { return Normal{Mu: args[0], Sigma: args[1]} },
	},
	"halfnormal": {
		params: []string{"sigma"},
		build:  func(args []float64) Prior { return HalfNormal{Sigma: args[0]} },
	},
	"cauchy": {
		params: []string{"alpha", "beta"},
		build:  func(args []float64) Prior { return Cauchy{Alpha: args[0], Beta: args[1]} },
	},
	"exponential": {
		params: []string{"lam"},
		build:  func(args []float64) Prior { return Exponential{Lam: args[0]} },
	},
}

// ParsePrior reads "normal(178, 20)" or "Normal(mu=178, sigma=20)". Family
// names are case-insensitive, keyword arguments may come in any order.
func ParsePrior(src string) (Prior, error) {

	text := strings.TrimSpace(src)

	open := strings.IndexByte(text, '(')
	if open < 0 || !strings.HasSuffix(text, ")") {
		return nil, fmt.Errorf("%w: expected family(args...), got '%s'", ErrInvalidPrior, src)
	}

	name := strings.ToLower(strings.TrimSpace(text[:open]))
	family, ok := priorFamilies[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown family '%s'", ErrInvalidPrior, name)
	}

	rawArgs := strings.Split(text[open+1:len(text)-1], ",")
	if len(rawArgs) != len(family.params) {
		return nil, fmt.Errorf("%w: %s takes %d arguments (%s), got %d", ErrInvalidPrior, name, len(family.params), strings.Join(family.params, ", "), len(rawArgs))
	}

	args := make([]float64, len(family.params))
	assigned := make([]bool, len(family.params))

	for pos, raw := range rawArgs {

		target := pos
		value := strings.TrimSpace(raw)

		if key, v, isKeyword := strings.Cut(value, "="); isKeyword {
			key = strings.ToLower(strings.TrimSpace(key))

			target = -1
			for idx, param := range family.params {
				if param == key {
					target = idx
				}
			}
			if target < 0 {
				return nil, fmt.Errorf("%w: %s has no parameter '%s'", ErrInvalidPrior, name, key)
			}
			value = strings.TrimSpace(v)
		}

		if assigned[target] {
			return nil, fmt.Errorf("%w: parameter '%s' given twice", ErrInvalidPrior, family.params[target])
		}

		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter '%s': %s", ErrInvalidPrior, family.params[target], err.Error())
		}

		args[target] = parsed
		assigned[target] = true
	}

	prior := family.build(args)
	if err := prior.Validate(); err != nil {
		return nil, err
	}

	return prior, nil
}

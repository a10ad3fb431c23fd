package model

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/dot5enko/rethinking-bridge/posterior"
)

var (
	ErrUnsupportedFormula = errors.New("unsupported formula")

	termName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._]*$`)
)

// Formula is a parsed linear model formula such as "height ~ 1 + weight".
type Formula struct {
	Response   string
	Intercept  bool
	Predictors []string
}

// ParseFormula accepts a response, "~", and "+"-separated predictor names. The
// intercept is always present, "1" may spell it out. Suppressing it with "0"
// or "-1" and transformed terms like bs(weight, df=3) are rejected.
func ParseFormula(src string) (Formula, error) {

	lhs, rhs, found := strings.Cut(src, "~")
	if !found {
		return Formula{}, fmt.Errorf("%w: missing '~' in '%s'", ErrUnsupportedFormula, src)
	}
	if strings.Contains(rhs, "~") {
		return Formula{}, fmt.Errorf("%w: more than one '~' in '%s'", ErrUnsupportedFormula, src)
	}

	f := Formula{
		Response:  strings.TrimSpace(lhs),
		Intercept: true,
	}

	if !termName.MatchString(f.Response) {
		return Formula{}, fmt.Errorf("%w: invalid response '%s'", ErrUnsupportedFormula, f.Response)
	}

	if strings.Contains(rhs, "(") {
		return Formula{}, fmt.Errorf("%w: transformed terms are not supported in '%s'", ErrUnsupportedFormula, strings.TrimSpace(rhs))
	}
	if strings.Contains(rhs, "-") {
		return Formula{}, fmt.Errorf("%w: removing terms is not supported in '%s'", ErrUnsupportedFormula, strings.TrimSpace(rhs))
	}

	terms := strings.Split(rhs, "+")
	for _, raw := range terms {
		term := strings.TrimSpace(raw)

		switch {
		case term == "":
			return Formula{}, fmt.Errorf("%w: empty term in '%s'", ErrUnsupportedFormula, src)
		case term == "1":
			continue
		case term == "0":
			return Formula{}, fmt.Errorf("%w: models without an intercept are not supported", ErrUnsupportedFormula)
		case !termName.MatchString(term):
			return Formula{}, fmt.Errorf("%w: invalid term '%s'", ErrUnsupportedFormula, term)
		case posterior.IsReservedName(term):
			return Formula{}, fmt.Errorf("%w: '%s' is a reserved name", ErrUnsupportedFormula, term)
		case term == f.Response:
			return Formula{}, fmt.Errorf("%w: response '%s' used as a predictor", ErrUnsupportedFormula, term)
		case slices.Contains(f.Predictors, term):
			return Formula{}, fmt.Errorf("%w: duplicate term '%s'", ErrUnsupportedFormula, term)
		}

		f.Predictors = append(f.Predictors, term)
	}

	return f, nil
}

func MustParseFormula(src string) Formula {
	f, err := ParseFormula(src)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Formula) String() string {
	return f.Response + " ~ " + strings.Join(append([]string{"1"}, f.Predictors...), " + ")
}

package posterior

import (
	"fmt"
	"slices"

	"github.com/dot5enko/rethinking-bridge/frame"
)

const (
	InterceptParameter = "Intercept"
	SigmaParameter     = "sigma"
)

// ShapeError is returned for sample sets with unequal sequence lengths or
// missing/unexpected parameter keys.
type ShapeError struct {
	Parameter string
	Reason    string
}

func (e *ShapeError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("malformed samples: %s", e.Reason)
	}
	return fmt.Sprintf("malformed samples for parameter '%s': %s", e.Parameter, e.Reason)
}

// SampleSet maps parameter names to equally long sequences of posterior draws.
type SampleSet struct {
	names []string
	draws map[string][]float64
	n     int
}

func NewSampleSet(draws map[string][]float64) (*SampleSet, error) {

	names := make([]string, 0, len(draws))
	for name := range draws {
		names = append(names, name)
	}
	slices.Sort(names)

	set := &SampleSet{
		names: names,
		draws: make(map[string][]float64, len(draws)),
	}

	for i, name := range names {
		values := draws[name]

		if i == 0 {
			set.n = len(values)
		} else if len(values) != set.n {
			return nil, &ShapeError{
				Parameter: name,
				Reason:    fmt.Sprintf("has %d draws, '%s' has %d", len(values), names[0], set.n),
			}
		}

		set.draws[name] = slices.Clone(values)
	}

	return set, nil
}

// FromFrame builds a sample set out of the named numeric columns of f, or out of
// every numeric column when no names are given.
func FromFrame(f *frame.Frame, names ...string) (*SampleSet, error) {

	if len(names) == 0 {
		for _, col := range f.Schema.Columns {
			if col.Type.IsNumeric() {
				names = append(names, col.Name)
			}
		}
	}

	draws := make(map[string][]float64, len(names))
	for _, name := range names {

		if f.Schema.Index(name) < 0 {
			return nil, &ShapeError{Parameter: name, Reason: "column not present in draws table"}
		}

		values, err := f.Float64s(name)
		if err != nil {
			return nil, &ShapeError{Parameter: name, Reason: err.Error()}
		}
		draws[name] = values
	}

	return NewSampleSet(draws)
}

// Len is the number of draws per parameter.
func (s *SampleSet) Len() int {
	return s.n
}

func (s *SampleSet) Names() []string {
	return slices.Clone(s.names)
}

func (s *SampleSet) Has(name string) bool {
	_, ok := s.draws[name]
	return ok
}

// Draws returns the draws of a parameter. The slice is shared and must not be modified.
func (s *SampleSet) Draws(name string) ([]float64, bool) {
	values, ok := s.draws[name]
	return values, ok
}

// Rename returns a copy with parameters renamed by mapping. Names absent from
// mapping are kept.
func (s *SampleSet) Rename(mapping map[string]string) (*SampleSet, error) {

	out := make(map[string][]float64, len(s.draws))
	for _, name := range s.names {

		target := name
		if renamed, ok := mapping[name]; ok {
			target = renamed
		}

		if _, exists := out[target]; exists {
			return nil, &ShapeError{Parameter: target, Reason: "rename produces a duplicate parameter"}
		}
		out[target] = s.draws[name]
	}

	return NewSampleSet(out)
}

// Frame returns the draws as a table, one column per parameter in name order.
func (s *SampleSet) Frame(name string) (*frame.Frame, error) {

	columns := make([][]float64, len(s.names))
	for i, param := range s.names {
		columns[i] = s.draws[param]
	}

	return frame.FromFloat64Columns(name, s.names, columns)
}

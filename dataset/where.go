package dataset

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dot5enko/rethinking-bridge/bits"
	"github.com/dot5enko/rethinking-bridge/frame"
	"github.com/dot5enko/rethinking-bridge/ops"
	"github.com/dot5enko/rethinking-bridge/schema"
)

var ErrInvalidWhere = errors.New("invalid where expression")

var (
	orSplit    = regexp.MustCompile(`\s*(?:\|\||\||\bor\b)\s*`)
	andSplit   = regexp.MustCompile(`\s*(?:&&|&|\band\b)\s*`)
	comparison = regexp.MustCompile(`^\s*([A-Za-z_.][A-Za-z0-9_. ]*?)\s*(>=|<=|==|!=|>|<)\s*(.+?)\s*$`)
)

type condition struct {
	column string
	op     string

	number float64
	text   string
	isText bool
}

// Where is a row predicate like "age >= 18 & male == 1". "&" binds tighter
// than "|"; string values are quoted.
type Where struct {
	source string
	anyOf  [][]condition
}

func ParseWhere(expr string) (Where, error) {

	w := Where{source: expr}

	if strings.TrimSpace(expr) == "" {
		return Where{}, fmt.Errorf("%w: empty expression", ErrInvalidWhere)
	}

	for _, group := range orSplit.Split(expr, -1) {

		conds := []condition{}

		for _, clause := range andSplit.Split(group, -1) {
			cond, err := parseCondition(clause)
			if err != nil {
				return Where{}, err
			}
			conds = append(conds, cond)
		}

		w.anyOf = append(w.anyOf, conds)
	}

	return w, nil
}

func parseCondition(clause string) (condition, error) {

	m := comparison.FindStringSubmatch(clause)
	if m == nil {
		return condition{}, fmt.Errorf("%w: cannot parse '%s'", ErrInvalidWhere, strings.TrimSpace(clause))
	}

	cond := condition{column: m[1], op: m[2]}
	value := m[3]

	if unquoted, ok := unquote(value); ok {
		if cond.op != "==" && cond.op != "!=" {
			return condition{}, fmt.Errorf("%w: operator %s is not defined for strings", ErrInvalidWhere, cond.op)
		}
		cond.text = unquoted
		cond.isText = true
		return cond, nil
	}

	number, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return condition{}, fmt.Errorf("%w: '%s' is neither a number nor a quoted string", ErrInvalidWhere, value)
	}
	cond.number = number

	return cond, nil
}

func unquote(value string) (string, bool) {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' || first == '\'') && first == last {
			return value[1 : len(value)-1], true
		}
	}
	return "", false
}

func (w Where) String() string {
	return w.source
}

func (c condition) selectRows(f *frame.Frame) (bits.Bitfield, error) {

	idx := f.Schema.Index(c.column)
	if idx < 0 {
		return bits.Bitfield{}, fmt.Errorf("%w: unknown column '%s'", ErrInvalidWhere, c.column)
	}
	col := f.Schema.Columns[idx]

	rows := f.NRows()
	mask := bits.NewBitfield(rows)
	out := make([]int, rows)

	if c.isText {
		if col.Type != schema.StringFieldType && col.Type != schema.CategoricalFieldType {
			return bits.Bitfield{}, fmt.Errorf("%w: column '%s' of type %s compared with a string", ErrInvalidWhere, c.column, col.Type.String())
		}

		values, err := f.Strings(c.column)
		if err != nil {
			return bits.Bitfield{}, err
		}

		filled := 0
		for row, v := range values {
			if (v == c.text) == (c.op == "==") {
				out[filled] = row
				filled++
			}
		}

		mask.FromSorted(out[:filled])
		return mask, nil
	}

	values, err := f.Float64s(c.column)
	if err != nil {
		return bits.Bitfield{}, fmt.Errorf("%w: %s", ErrInvalidWhere, err.Error())
	}

	var filled int
	switch c.op {
	case "==":
		filled = ops.CompareValuesAreEqual(values, c.number, out)
	case "!=":
		filled = ops.CompareValuesAreNotEqual(values, c.number, out)
	case ">":
		filled = ops.CompareValuesAreBigger(values, c.number, out)
	case ">=":
		filled = ops.CompareValuesAreBiggerOrEqual(values, c.number, out)
	case "<":
		filled = ops.CompareValuesAreSmaller(values, c.number, out)
	case "<=":
		filled = ops.CompareValuesAreSmallerOrEqual(values, c.number, out)
	}

	mask.FromSorted(out[:filled])
	return mask, nil
}

// Mask evaluates the predicate over every row of f. Null numeric cells never match.
func (w Where) Mask(f *frame.Frame) (bits.Bitfield, error) {

	result := bits.NewBitfield(f.NRows())

	for _, group := range w.anyOf {

		groupMask := bits.NewFullBitfield(f.NRows())

		for _, cond := range group {
			condMask, err := cond.selectRows(f)
			if err != nil {
				return bits.Bitfield{}, err
			}
			groupMask = bits.MergeAND(groupMask, condMask)
		}

		result = bits.MergeOR(result, groupMask)
	}

	return result, nil
}

// Apply returns the rows of f matching w.
func (w Where) Apply(f *frame.Frame) (*frame.Frame, error) {

	mask, err := w.Mask(f)
	if err != nil {
		return nil, err
	}

	return f.Filter(mask.Get)
}

// Filter is ParseWhere followed by Apply.
func Filter(f *frame.Frame, expr string) (*frame.Frame, error) {
	w, err := ParseWhere(expr)
	if err != nil {
		return nil, err
	}
	return w.Apply(f)
}

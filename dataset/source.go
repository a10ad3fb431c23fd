package dataset

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

const rethinkingDataURL = "https://raw.githubusercontent.com/dustinstansbury/statistical-rethinking-2023/main/data/"

// Source describes a delimited text file reachable over HTTP.
type Source struct {
	Name string
	URL  string
	Sep  rune

	// Columns pins the type of the named columns, the rest are inferred.
	Columns map[string]arrow.DataType
}

var (
	Howell = Source{
		Name: "howell",
		URL:  rethinkingDataURL + "Howell1.csv",
		Sep:  ';',
		Columns: map[string]arrow.DataType{
			"height": arrow.PrimitiveTypes.Float64,
			"weight": arrow.PrimitiveTypes.Float64,
			"age":    arrow.PrimitiveTypes.Float64,
			"male":   arrow.PrimitiveTypes.Int64,
		},
	}

	Waffle = Source{
		Name: "waffle",
		URL:  rethinkingDataURL + "WaffleDivorce.csv",
		Sep:  ';',
		Columns: map[string]arrow.DataType{
			"Location":          arrow.BinaryTypes.String,
			"Loc":               arrow.BinaryTypes.String,
			"Population":        arrow.PrimitiveTypes.Float64,
			"MedianAgeMarriage": arrow.PrimitiveTypes.Float64,
			"Marriage":          arrow.PrimitiveTypes.Float64,
			"Marriage SE":       arrow.PrimitiveTypes.Float64,
			"Divorce":           arrow.PrimitiveTypes.Float64,
			"Divorce SE":        arrow.PrimitiveTypes.Float64,
			"WaffleHouses":      arrow.PrimitiveTypes.Int64,
			"South":             arrow.PrimitiveTypes.Int64,
			"Slaves1860":        arrow.PrimitiveTypes.Int64,
			"Population1860":    arrow.PrimitiveTypes.Int64,
			"PropSlaves1860":    arrow.PrimitiveTypes.Float64,
		},
	}

	named = map[string]Source{
		Howell.Name: Howell,
		Waffle.Name: Waffle,
	}
)

// Named resolves a registered dataset by case-insensitive name.
func Named(name string) (Source, bool) {
	src, ok := named[strings.ToLower(name)]
	return src, ok
}

// Resolve returns the registered dataset called ref, or treats ref as a URL.
func Resolve(ref string, sep rune) Source {
	if src, ok := Named(ref); ok {
		return src
	}
	return Source{Name: ref, URL: ref, Sep: sep}
}

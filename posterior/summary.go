package posterior

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// HDIProb is the mass of the highest density interval reported by Summarize.
const HDIProb = 0.94

type ParameterSummary struct {
	Name    string
	Mean    float64
	SD      float64
	HDILow  float64
	HDIHigh float64
	Median  float64
}

// Summarize reports the mean, standard deviation, 94% highest density
// interval and median of every parameter, in name order.
func Summarize(samples *SampleSet) []ParameterSummary {

	out := make([]ParameterSummary, 0, len(samples.names))

	for _, name := range samples.names {
		values := samples.draws[name]

		if len(values) == 0 {
			nan := math.NaN()
			out = append(out, ParameterSummary{Name: name, Mean: nan, SD: nan, HDILow: nan, HDIHigh: nan, Median: nan})
			continue
		}

		sorted := slices.Clone(values)
		slices.Sort(sorted)

		mean, sd := stat.MeanStdDev(values, nil)
		low, high := hdi(sorted, HDIProb)

		out = append(out, ParameterSummary{
			Name:    name,
			Mean:    mean,
			SD:      sd,
			HDILow:  low,
			HDIHigh: high,
			Median:  median(sorted),
		})
	}

	return out
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// hdi is the narrowest interval containing prob of the sorted draws.
func hdi(sorted []float64, prob float64) (float64, float64) {

	n := len(sorted)
	width := int(math.Floor(prob * float64(n)))
	intervals := n - width

	if width == 0 || intervals <= 0 {
		return sorted[0], sorted[n-1]
	}

	best := 0
	bestWidth := math.Inf(1)

	for i := 0; i < intervals; i++ {
		w := sorted[i+width] - sorted[i]
		if w < bestWidth {
			bestWidth = w
			best = i
		}
	}

	return sorted[best], sorted[best+width]
}

// FormatSummary renders rows the way the CLI prints them.
func FormatSummary(rows []ParameterSummary) string {

	b := strings.Builder{}
	fmt.Fprintf(&b, "%-16s %10s %10s %10s %10s %10s\n", "", "mean", "sd", "hdi_3%", "hdi_97%", "median")

	for _, row := range rows {
		fmt.Fprintf(&b, "%-16s %10.3f %10.3f %10.3f %10.3f %10.3f\n", row.Name, row.Mean, row.SD, row.HDILow, row.HDIHigh, row.Median)
	}

	return b.String()
}

package ops

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestRangeTailFloat(t *testing.T) {
	input := []float64{18, 90, 20}
	out := make([]int, len(input))

	resultSize := CompareValuesAreInRange(input, 18, 65, out)

	if resultSize != 2 {
		t.Errorf("Expected %d but got %d", 2, resultSize)
	} else if out[1] != 2 {
		t.Errorf("result compare Expected %v but got %v", 2, out[1])
	}
}

func TestRangeBlockAndTailFloat(t *testing.T) {
	input := []float64{0, 0, 0, 1, 0, 0, 0, 7000, 1500}
	out := make([]int, len(input))

	resultSize := CompareValuesAreInRange(input, 1024.0, 8192, out)

	if resultSize != 2 {
		t.Errorf("Expected %d but got %d. filtered : %v", 2, resultSize, out[:resultSize])
	} else if out[0] != 7 || out[1] != 8 {
		t.Errorf("result compare Expected [7 8] but got %v", out[:resultSize])
	}
}

func TestRangeInverted(t *testing.T) {
	out := make([]int, 3)
	if n := CompareValuesAreInRange([]float64{1, 2, 3}, 3, 1, out); n != 0 {
		t.Errorf("Expected empty selection but got %d", n)
	}
}

func TestComparisonsSkipNaN(t *testing.T) {
	nan := math.NaN()
	input := []float64{nan, 17, 18, nan, 30, 18, nan, 5, 18, nan}
	out := make([]int, len(input))

	cases := []struct {
		name string
		run  func() int
		want []int
	}{
		{"eq", func() int { return CompareValuesAreEqual(input, 18, out) }, []int{2, 5, 8}},
		{"ne", func() int { return CompareValuesAreNotEqual(input, 18, out) }, []int{1, 4, 7}},
		{"gt", func() int { return CompareValuesAreBigger(input, 18, out) }, []int{4}},
		{"ge", func() int { return CompareValuesAreBiggerOrEqual(input, 18, out) }, []int{2, 4, 5, 8}},
		{"lt", func() int { return CompareValuesAreSmaller(input, 18, out) }, []int{1, 7}},
		{"le", func() int { return CompareValuesAreSmallerOrEqual(input, 18, out) }, []int{1, 2, 5, 7, 8}},
		{"range", func() int { return CompareValuesAreInRange(input, 17, 30, out) }, []int{1, 2, 5, 8}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n := c.run()
			if !slices.Equal(out[:n], c.want) {
				t.Errorf("Expected %v but got %v", c.want, out[:n])
			}
		})
	}
}

func TestComparisonsMatchScalarLoop(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 1))

	size := 1001
	input := make([]int64, size)
	for i := range input {
		input[i] = rnd.Int64N(100)
	}

	out := make([]int, size)
	n := CompareValuesAreBiggerOrEqual(input, 50, out)

	expected := []int{}
	for i, v := range input {
		if v >= 50 {
			expected = append(expected, i)
		}
	}

	if !slices.Equal(out[:n], expected) {
		t.Errorf("unrolled selection differs from scalar loop: got %d values, expected %d", n, len(expected))
	}
}

func BenchmarkRangeFloats(b *testing.B) {

	size := 40000

	var fromBounds float64 = 4096
	var toBounds float64 = 8192

	totalCount := 0

	input := make([]float64, size)

	for i := 0; i < size; i++ {
		val := float64(rand.Int64N(50000))
		input[i] = val

		if val >= fromBounds && val < toBounds {
			totalCount++
		}
	}

	out := make([]int, size)

	for b.Loop() {
		totalBenchCount := CompareValuesAreInRange(input, fromBounds, toBounds, out)
		if totalCount != totalBenchCount {
			b.Fatalf("Benchmark failed: expected %d but got %d", totalCount, totalBenchCount)
		}
	}
}

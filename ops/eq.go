package ops

// CompareValuesAreEqual writes the indices of values equal to cmp into out and
// returns how many were written. out must be at least as long as arr.
func CompareValuesAreEqual[T NumericTypes](arr []T, cmp T, out []int) int {
	n := len(arr)
	filled := 0
	i := 0

	for ; i+7 < n; i += 8 {

		a0 := arr[i+0]
		a1 := arr[i+1]
		a2 := arr[i+2]
		a3 := arr[i+3]
		a4 := arr[i+4]
		a5 := arr[i+5]
		a6 := arr[i+6]
		a7 := arr[i+7]

		im0 := b2i(a0 == cmp)
		im1 := b2i(a1 == cmp)
		im2 := b2i(a2 == cmp)
		im3 := b2i(a3 == cmp)
		im4 := b2i(a4 == cmp)
		im5 := b2i(a5 == cmp)
		im6 := b2i(a6 == cmp)
		im7 := b2i(a7 == cmp)

		out[filled] = i + 0
		filled += im0
		out[filled] = i + 1
		filled += im1
		out[filled] = i + 2
		filled += im2
		out[filled] = i + 3
		filled += im3
		out[filled] = i + 4
		filled += im4
		out[filled] = i + 5
		filled += im5
		out[filled] = i + 6
		filled += im6
		out[filled] = i + 7
		filled += im7
	}

	// Tail element
	for ; i < n; i++ {
		if arr[i] == cmp {
			out[filled] = i
			filled++
		}
	}
	return filled
}

// CompareValuesAreNotEqual selects values different from cmp. NaN is never selected.
func CompareValuesAreNotEqual[T NumericTypes](arr []T, cmp T, out []int) int {
	filled := 0
	for i, a := range arr {
		// a == a is false only for NaN
		if a != cmp && a == a {
			out[filled] = i
			filled++
		}
	}
	return filled
}

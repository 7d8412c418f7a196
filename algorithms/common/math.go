package common

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic numeric helpers shared by the tuner algorithms, backed by gonum.

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// ArgMax returns the index and value of the largest element. Ties resolve to
// the lowest index. An empty slice returns (-1, 0).
func ArgMax(data []float64) (int, float64) {
	if len(data) == 0 {
		return -1, 0
	}
	idx := floats.MaxIdx(data)
	return idx, data[idx]
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// IsPowerOfTwo checks if n is a power of 2
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// PreviousPowerOfTwo finds the largest power of 2 <= n. Returns 0 for n < 1.
func PreviousPowerOfTwo(n int) int {
	if n < 1 {
		return 0
	}

	power := 1
	for power<<1 <= n {
		power <<= 1
	}
	return power
}

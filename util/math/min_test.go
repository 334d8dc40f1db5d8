package math_test

import (
	"math"
	"testing"

	utilMath "github.com/meraknet/merakd/util/math"
)

const (
	MaxInt = int(^uint(0) >> 1)
	MinInt = -MaxInt - 1
)

func TestMinInt(t *testing.T) {
	tests := []struct {
		inputs   [2]int
		expected int
	}{
		{[2]int{MaxInt, 0}, 0},
		{[2]int{1, 2}, 1},
		{[2]int{MaxInt, MaxInt}, MaxInt},
		{[2]int{MaxInt, MaxInt - 1}, MaxInt - 1},
		{[2]int{MaxInt, MinInt}, MinInt},
		{[2]int{MinInt, 0}, MinInt},
		{[2]int{MinInt, MinInt}, MinInt},
		{[2]int{0, MinInt + 1}, MinInt + 1},
		{[2]int{0, MinInt}, MinInt},
	}

	for i, test := range tests {
		result := utilMath.MinInt(test.inputs[0], test.inputs[1])
		if result != test.expected {
			t.Fatalf("%d: Expected %d, instead found: %d", i, test.expected, result)
		}
		reverseResult := utilMath.MinInt(test.inputs[1], test.inputs[0])
		if result != reverseResult {
			t.Fatalf("%d: Expected result and reverseResult to be the same, instead: %d!=%d",
				i, result, reverseResult)
		}
	}
}

func TestSaturatingAddUint64(t *testing.T) {
	tests := []struct {
		inputs   [2]uint64
		expected uint64
	}{
		{[2]uint64{0, 0}, 0},
		{[2]uint64{1, 2}, 3},
		{[2]uint64{math.MaxUint64, 0}, math.MaxUint64},
		{[2]uint64{math.MaxUint64, 1}, math.MaxUint64},
		{[2]uint64{math.MaxUint64 - 1, 1}, math.MaxUint64},
		{[2]uint64{math.MaxUint64 - 1, 5}, math.MaxUint64},
		{[2]uint64{math.MaxUint64, math.MaxUint64}, math.MaxUint64},
	}

	for i, test := range tests {
		result := utilMath.SaturatingAddUint64(test.inputs[0], test.inputs[1])
		if result != test.expected {
			t.Fatalf("%d: Expected %d, instead found: %d", i, test.expected, result)
		}
		reverseResult := utilMath.SaturatingAddUint64(test.inputs[1], test.inputs[0])
		if result != reverseResult {
			t.Fatalf("%d: Expected result and reverseResult to be the same, instead: %d!=%d",
				i, result, reverseResult)
		}
	}
}

func TestSaturatingSubUint64(t *testing.T) {
	tests := []struct {
		inputs   [2]uint64
		expected uint64
	}{
		{[2]uint64{0, 0}, 0},
		{[2]uint64{3, 2}, 1},
		{[2]uint64{2, 3}, 0},
		{[2]uint64{0, math.MaxUint64}, 0},
		{[2]uint64{math.MaxUint64, math.MaxUint64}, 0},
		{[2]uint64{math.MaxUint64, 1}, math.MaxUint64 - 1},
	}

	for i, test := range tests {
		result := utilMath.SaturatingSubUint64(test.inputs[0], test.inputs[1])
		if result != test.expected {
			t.Fatalf("%d: Expected %d, instead found: %d", i, test.expected, result)
		}
	}
}

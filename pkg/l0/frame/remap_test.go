package frame

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemap(t *testing.T) {
	testCases := []struct {
		raw    byte
		expect int8
	}{
		{0, -100},
		{1, -99},
		{50, -50},
		{100, 0},
		{150, 50},
		{199, 99},
		{200, 100},
		{201, 100},
		{255, 100},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d", tc.raw), func(t *testing.T) {
			require.Equal(t, tc.expect, Remap(tc.raw))
		})
	}
}

func TestRemapRange(t *testing.T) {
	prev := Remap(0)
	for raw := 1; raw <= 255; raw++ {
		v := Remap(byte(raw))
		require.True(t, v >= AxisValueMin && v <= AxisValueMax)
		require.True(t, v >= prev, "monotonic at %d", raw)
		prev = v
	}
}

func TestAxisByte(t *testing.T) {
	testCases := []struct {
		value  float64
		expect byte
	}{
		{-1, 0},
		{0, 100},
		{1, 200},
		{0.5, 150},
		{-0.5, 50},
		{-2, 0},
		{3, 200},
		{math.NaN(), 0},
		{-0.99, 0},
		{-0.9, 10},
		{0.01, 101},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%v", tc.value), func(t *testing.T) {
			require.Equal(t, tc.expect, AxisByte(tc.value))
		})
	}
	for raw := 0; raw <= AxisRawMax; raw += 25 {
		require.Equal(t, int8(raw-100), Remap(AxisByte(float64(raw-100)/100)))
	}
}

package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPOW(t *testing.T) {
	for p := -10; p <= 10; p++ {
		assert.InDelta(t, math.Pow(1.3, float64(p)), POW(1.3, p), 1.e-12)
	}
	assert.Equal(t, []float64{2, 2, 2}, ConstArray(3, 2))
	assert.Equal(t, []int{-1, -1}, ConstIntArray(2, DoesNotExist))
}

func TestIsNan(t *testing.T) {
	assert.False(t, IsNan([][]float64{{1, 2}, {3}}))
	assert.True(t, IsNan([][]float64{{1}, {math.NaN()}}))
	assert.True(t, IsNan(float32(math.NaN())))
	assert.Panics(t, func() { IsNanPanic([]float64{0, math.NaN()}) })
	assert.NotPanics(t, func() { IsNanPanic(1.) })
}

package utils

import (
	"math"
	"sort"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

func POW(x float64, pp int) (y float64) {
	var (
		p       = pp
		flipped bool
	)
	if pp > 8 || pp < -8 {
		goto MATHPOW
	}

	if p < 0 {
		p = -pp
		flipped = true
	}
	switch p {
	case 0:
		y = 1
	case 1:
		y = x
	case 2:
		y = x * x
	case 3:
		y = x * x * x
	case 4:
		y = x * x
		y = y * y
	case 5:
		y = x * x
		y = y * y * x
	case 6:
		y = x * x
		y = y * y * y
	case 7:
		y = x * x
		y = y * y * y * x
	case 8:
		y = x * x
		y = y * y * y * y
	}
	if flipped {
		y = 1. / y
	}
	return

MATHPOW:
	y = math.Pow(x, float64(pp))
	return
}

// IntProduct returns the product of the entries of v, one for an empty slice.
func IntProduct(v []int) (p int) {
	p = 1
	for _, val := range v {
		p *= val
	}
	return
}

// SortUnique sorts v in place and removes duplicates.
func SortUnique(v []int) []int {
	if len(v) < 2 {
		return v
	}
	sort.Ints(v)
	n := 1
	for i := 1; i < len(v); i++ {
		if v[i] != v[n-1] {
			v[n] = v[i]
			n++
		}
	}
	return v[:n]
}

func ConstIntArray(N int, val int) (v []int) {
	v = make([]int, N)
	for i := range v {
		v[i] = val
	}
	return
}

package quadrature

import (
	"fmt"

	"gonum.org/v1/gonum/integrate/quad"
)

// GaussLegendre returns the n point Gauss-Legendre rule mapped onto [min, max].
// An inverted interval yields negative weights, an empty interval zero weights.
func GaussLegendre(n int, min, max float64) (x, w []float64) {
	if n < 1 {
		panic(fmt.Errorf("number of Gauss-Legendre points must be positive, have %d", n))
	}
	x = make([]float64, n)
	w = make([]float64, n)
	if min == max {
		for i := range x {
			x[i] = min
		}
		return
	}
	quad.Legendre{}.FixedLocations(x, w, min, max)
	return
}

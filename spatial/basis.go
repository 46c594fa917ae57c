package spatial

import (
	"github.com/notargets/ibex/meshless"
	"github.com/notargets/ibex/solid"
)

// BasisFunction is a trial function with the domain faces its support touches.
type BasisFunction struct {
	index            int
	function         meshless.Function
	boundarySurfaces []*solid.CartesianPlane
}

func NewBasisFunction(index int, function meshless.Function, boundarySurfaces []*solid.CartesianPlane) *BasisFunction {
	return &BasisFunction{
		index:            index,
		function:         function,
		boundarySurfaces: boundarySurfaces,
	}
}

func (b *BasisFunction) Index() int                                { return b.index }
func (b *BasisFunction) Function() meshless.Function               { return b.function }
func (b *BasisFunction) Position() []float64                       { return b.function.Position() }
func (b *BasisFunction) Radius() float64                           { return b.function.Radius() }
func (b *BasisFunction) BoundarySurfaces() []*solid.CartesianPlane { return b.boundarySurfaces }
func (b *BasisFunction) NumberOfBoundarySurfaces() int             { return len(b.boundarySurfaces) }

// intersectingPlanes returns the planes within radius of x.
func intersectingPlanes(planes []*solid.CartesianPlane, x []float64, radius float64) (touching []*solid.CartesianPlane) {
	for _, p := range planes {
		if p.Intersects(x, radius) {
			touching = append(touching, p)
		}
	}
	return
}

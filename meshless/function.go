package meshless

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Function is a meshless weight or basis function centered at a point.
type Function interface {
	Index() int
	Dimension() int
	Position() []float64
	Radius() float64
	Shape() float64
	Value(x []float64) float64
	Gradient(x []float64) []float64
	// DependsOnNeighbors is true when values must be rescaled against the
	// other functions active at a point, see Normalizer.
	DependsOnNeighbors() bool
}

// Normalizer rescales the raw values and gradients of a set of functions at
// one point using the positions of the function centers.
type Normalizer interface {
	Normalize(x []float64, positions [][]float64, values []float64, grads [][]float64) ([]float64, [][]float64)
}

// RBFFunction is a radial kernel truncated at its support radius.
type RBFFunction struct {
	index    int
	position []float64
	shape    float64
	radius   float64
	Kernel   RBF
}

func NewRBFFunction(index int, position []float64, radius, shape float64, kernel RBF) (f *RBFFunction) {
	if radius <= 0 || shape <= 0 {
		panic(fmt.Errorf("function %d: radius and shape must be positive, have %v and %v", index, radius, shape))
	}
	if len(position) < 1 || len(position) > 3 {
		panic(fmt.Errorf("function %d: dimension must be 1, 2 or 3, have %d", index, len(position)))
	}
	if w, ok := kernel.(Wendland); ok && w.Order != 0 && w.Order != 2 && w.Order != 4 {
		panic(fmt.Errorf("function %d: wendland order must be 0, 2 or 4, have %d", index, w.Order))
	}
	f = &RBFFunction{
		index:    index,
		position: position,
		shape:    shape,
		radius:   radius,
		Kernel:   kernel,
	}
	return
}

// NewRBFFunctions builds one function per position with matching radii and
// shape parameters.
func NewRBFFunctions(positions [][]float64, radii, shapes []float64, kernel RBF) (fs []Function) {
	if len(radii) != len(positions) || len(shapes) != len(positions) {
		panic(fmt.Errorf("mismatched function data: %d positions, %d radii, %d shapes",
			len(positions), len(radii), len(shapes)))
	}
	fs = make([]Function, len(positions))
	for i := range positions {
		fs[i] = NewRBFFunction(i, positions[i], radii[i], shapes[i], kernel)
	}
	return
}

func (f *RBFFunction) Index() int               { return f.index }
func (f *RBFFunction) Dimension() int           { return len(f.position) }
func (f *RBFFunction) Position() []float64      { return f.position }
func (f *RBFFunction) Radius() float64          { return f.radius }
func (f *RBFFunction) Shape() float64           { return f.shape }
func (f *RBFFunction) DependsOnNeighbors() bool { return false }

func (f *RBFFunction) distance(x []float64) float64 {
	return floats.Distance(x, f.position, 2)
}

func (f *RBFFunction) inside(dist float64) bool { return dist <= f.radius }

func (f *RBFFunction) Value(x []float64) float64 {
	dist := f.distance(x)
	if !f.inside(dist) {
		return 0
	}
	return f.Kernel.Value(f.shape * dist)
}

func (f *RBFFunction) Gradient(x []float64) (grad []float64) {
	var (
		dist = f.distance(x)
		eps2 = f.shape * f.shape
	)
	grad = make([]float64, len(f.position))
	if !f.inside(dist) || dist == 0 {
		return
	}
	fac := eps2 * f.Kernel.DValueOverR(f.shape*dist)
	for d, p := range f.position {
		grad[d] = fac * (x[d] - p)
	}
	return
}

// DValue is the derivative along dimension dim.
func (f *RBFFunction) DValue(x []float64, dim int) float64 {
	return f.Gradient(x)[dim]
}

// DDValue is the second derivative along dimension dim.
func (f *RBFFunction) DDValue(x []float64, dim int) float64 {
	var (
		dist = f.distance(x)
		r    = f.shape * dist
		eps2 = f.shape * f.shape
	)
	if !f.inside(dist) {
		return 0
	}
	if dist == 0 {
		return eps2 * f.Kernel.DDValue(0)
	}
	diff := x[dim] - f.position[dim]
	dOverR := f.Kernel.DValueOverR(r)
	return eps2*dOverR + eps2*eps2*diff*diff*(f.Kernel.DDValue(r)-dOverR)/(r*r)
}

func (f *RBFFunction) Laplacian(x []float64) (lap float64) {
	for d := range f.position {
		lap += f.DDValue(x, d)
	}
	return
}

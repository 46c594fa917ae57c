package quadrature

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Rule is a set of ordinates and weights in a fixed dimension. Ordinates are
// stored flat, Ordinates[q*Dimension+d].
type Rule struct {
	Dimension int
	Ordinates []float64
	Weights   []float64
}

func (r Rule) Len() int { return len(r.Weights) }

// Point returns a view of the q'th ordinate.
func (r Rule) Point(q int) []float64 {
	return r.Ordinates[q*r.Dimension : (q+1)*r.Dimension]
}

// Sum integrates f with the rule.
func (r Rule) Sum(f func(x []float64) float64) (sum float64) {
	for q, w := range r.Weights {
		sum += w * f(r.Point(q))
	}
	return
}

// Measure is the sum of the weights: length, area or volume of the region.
func (r Rule) Measure() float64 { return floats.Sum(r.Weights) }

func (r *Rule) add(x []float64, w float64) {
	r.Ordinates = append(r.Ordinates, x...)
	r.Weights = append(r.Weights, w)
}

// Box returns the tensor product Gauss-Legendre rule with n points per
// dimension on the box [lower, upper]. The last dimension varies fastest.
func Box(n int, lower, upper []float64) (r Rule) {
	var (
		D = len(lower)
	)
	if D != len(upper) || D < 1 {
		panic(fmt.Errorf("box limits have mismatched dimension: %d and %d", len(lower), len(upper)))
	}
	xs := make([][]float64, D)
	ws := make([][]float64, D)
	for d := 0; d < D; d++ {
		xs[d], ws[d] = GaussLegendre(n, lower[d], upper[d])
	}
	return tensor(xs, ws)
}

// Face returns the tensor product rule on the face of the box normal to
// dimension dim, with that coordinate fixed at position. For a 1D box this
// is the single point {position} with weight one.
func Face(n int, lower, upper []float64, dim int, position float64) (r Rule) {
	var (
		D = len(lower)
	)
	if D != len(upper) || dim < 0 || dim >= D {
		panic(fmt.Errorf("invalid face dimension %d for box of dimension %d", dim, D))
	}
	xs := make([][]float64, D)
	ws := make([][]float64, D)
	for d := 0; d < D; d++ {
		if d == dim {
			xs[d], ws[d] = []float64{position}, []float64{1}
			continue
		}
		xs[d], ws[d] = GaussLegendre(n, lower[d], upper[d])
	}
	return tensor(xs, ws)
}

func tensor(xs, ws [][]float64) (r Rule) {
	var (
		D     = len(xs)
		total = 1
	)
	for d := 0; d < D; d++ {
		total *= len(xs[d])
	}
	r = Rule{
		Dimension: D,
		Ordinates: make([]float64, 0, total*D),
		Weights:   make([]float64, 0, total),
	}
	idx := make([]int, D)
	x := make([]float64, D)
	for k := 0; k < total; k++ {
		w := 1.
		for d := 0; d < D; d++ {
			x[d] = xs[d][idx[d]]
			w *= ws[d][idx[d]]
		}
		r.add(x, w)
		// increment with the last dimension fastest
		for d := D - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < len(xs[d]) {
				break
			}
			idx[d] = 0
		}
	}
	return
}

// Disk returns a polar rule over the full disk of the given center and
// radius, nr points in radius and nt in angle.
func Disk(nr, nt int, center []float64, radius float64) (r Rule) {
	if len(center) != 2 {
		panic(fmt.Errorf("disk rule requires a 2D center, have dimension %d", len(center)))
	}
	rr, wr := GaussLegendre(nr, 0, radius)
	tt, wt := GaussLegendre(nt, 0, 2*math.Pi)
	r = Rule{Dimension: 2}
	for i := range rr {
		for j := range tt {
			r.add([]float64{
				center[0] + rr[i]*math.Cos(tt[j]),
				center[1] + rr[i]*math.Sin(tt[j]),
			}, wr[i]*wt[j]*rr[i])
		}
	}
	return
}

// Circle is a 2D disk used to bound a chord rule.
type Circle struct {
	Center [2]float64
	Radius float64
}

// Chords returns a rule over the intersection of the circles with the box
// [lower, upper], integrating in x over the common range and in y over the
// common chord at each x. The region must be convex, which holds for any
// intersection of disks and boxes. An empty intersection returns a rule with
// no ordinates.
func Chords(n int, circles []Circle, lower, upper []float64) (r Rule) {
	var (
		xa, xb = lower[0], upper[0]
	)
	if len(lower) != 2 || len(upper) != 2 {
		panic(fmt.Errorf("chord rule requires 2D limits, have %d and %d", len(lower), len(upper)))
	}
	r = Rule{Dimension: 2}
	for _, c := range circles {
		xa = math.Max(xa, c.Center[0]-c.Radius)
		xb = math.Min(xb, c.Center[0]+c.Radius)
	}
	if xa >= xb {
		return
	}
	breaks := chordBreaks(circles, lower, upper, xa, xb)
	for k := 0; k+1 < len(breaks); k++ {
		xx, wx := GaussLegendre(n, breaks[k], breaks[k+1])
		for i, x := range xx {
			ya, yb := lower[1], upper[1]
			for _, c := range circles {
				dx := x - c.Center[0]
				h2 := c.Radius*c.Radius - dx*dx
				if h2 <= 0 {
					ya, yb = 0, 0
					break
				}
				h := math.Sqrt(h2)
				ya = math.Max(ya, c.Center[1]-h)
				yb = math.Min(yb, c.Center[1]+h)
			}
			if ya >= yb {
				continue
			}
			yy, wy := GaussLegendre(n, ya, yb)
			for j, y := range yy {
				r.add([]float64{x, y}, wx[i]*wy[j])
			}
		}
	}
	return
}

// chordBreaks returns the sorted x positions in [xa, xb] where the active
// lower or upper chord bound can switch between circles and box edges, so
// that each sub-interval is integrated with a smooth bound.
func chordBreaks(circles []Circle, lower, upper []float64, xa, xb float64) (breaks []float64) {
	var (
		tol = 1.e-14 * math.Max(1, xb-xa)
	)
	breaks = []float64{xa, xb}
	addBreak := func(x float64) {
		if x > xa+tol && x < xb-tol {
			breaks = append(breaks, x)
		}
	}
	for i, c := range circles {
		addBreak(c.Center[0])
		for _, y := range []float64{lower[1], upper[1]} {
			dy := y - c.Center[1]
			if h2 := c.Radius*c.Radius - dy*dy; h2 > 0 {
				addBreak(c.Center[0] - math.Sqrt(h2))
				addBreak(c.Center[0] + math.Sqrt(h2))
			}
		}
		for _, o := range circles[i+1:] {
			for _, x := range circleIntersections(c, o) {
				addBreak(x)
			}
		}
	}
	sort.Float64s(breaks)
	n := 1
	for i := 1; i < len(breaks); i++ {
		if breaks[i]-breaks[n-1] > tol {
			breaks[n] = breaks[i]
			n++
		}
	}
	breaks = breaks[:n]
	return
}

// circleIntersections returns the x coordinates of the intersection points of
// two circles.
func circleIntersections(a, b Circle) (xs []float64) {
	var (
		dx, dy = b.Center[0] - a.Center[0], b.Center[1] - a.Center[1]
		dist   = math.Hypot(dx, dy)
	)
	if dist == 0 || dist >= a.Radius+b.Radius || dist <= math.Abs(a.Radius-b.Radius) {
		return
	}
	along := (a.Radius*a.Radius - b.Radius*b.Radius + dist*dist) / (2 * dist)
	h := math.Sqrt(a.Radius*a.Radius - along*along)
	mx := a.Center[0] + along*dx/dist
	xs = []float64{mx - h*dy/dist, mx + h*dy/dist}
	return
}

// Segment returns a 1D rule along the line x[dim] = position inside the
// circles and the box, for surface integrals on a 2D boundary.
func Segment(n int, circles []Circle, lower, upper []float64, dim int, position float64) (r Rule) {
	var (
		other  = 1 - dim
		ta, tb = lower[other], upper[other]
	)
	r = Rule{Dimension: 2}
	for _, c := range circles {
		dx := position - c.Center[dim]
		h2 := c.Radius*c.Radius - dx*dx
		if h2 <= 0 {
			return
		}
		h := math.Sqrt(h2)
		ta = math.Max(ta, c.Center[other]-h)
		tb = math.Min(tb, c.Center[other]+h)
	}
	if ta >= tb {
		return
	}
	tt, wt := GaussLegendre(n, ta, tb)
	for i := range tt {
		x := make([]float64, 2)
		x[dim] = position
		x[other] = tt[i]
		r.add(x, wt[i])
	}
	return
}

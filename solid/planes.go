package solid

import (
	"fmt"
)

// BoundarySource is the incoming boundary condition on a domain face: a
// fixed source and a reflection coefficient per group.
type BoundarySource struct {
	Index int
	Data  []float64
	Alpha []float64
}

// CartesianPlane is one axis aligned face of the domain box.
type CartesianPlane struct {
	Index            int
	Dimension        int
	SurfaceDimension int
	Position         float64
	Normal           float64 // -1 or +1
	Source           *BoundarySource
}

// LocalIndex is the slab index of the plane, 2*d for a negative normal and
// 2*d+1 for a positive normal.
func (p *CartesianPlane) LocalIndex() int {
	if p.Normal < 0 {
		return 2 * p.SurfaceDimension
	}
	return 2*p.SurfaceDimension + 1
}

// Distance is the unsigned distance from x to the plane.
func (p *CartesianPlane) Distance(x []float64) float64 {
	d := x[p.SurfaceDimension] - p.Position
	if d < 0 {
		return -d
	}
	return d
}

// Intersects is true when the ball of the given radius about x touches the plane.
func (p *CartesianPlane) Intersects(x []float64, radius float64) bool {
	return p.Distance(x) <= radius
}

// BoundaryPlanes returns the 2*D faces of the box limits in slab order
// (0,-), (0,+), (1,-), ... Sources may be empty, a single source shared by
// every face, or one source per face.
func BoundaryPlanes(limits [][2]float64, sources []*BoundarySource) (planes []*CartesianPlane) {
	var (
		D = len(limits)
	)
	if D < 1 || D > 3 {
		panic(fmt.Errorf("boundary planes require dimension 1, 2 or 3, have %d", D))
	}
	if len(sources) != 0 && len(sources) != 1 && len(sources) != 2*D {
		panic(fmt.Errorf("need 0, 1 or %d boundary sources, have %d", 2*D, len(sources)))
	}
	planes = make([]*CartesianPlane, 2*D)
	for d := 0; d < D; d++ {
		if limits[d][1] <= limits[d][0] {
			panic(fmt.Errorf("limits for dimension %d are not increasing: %v", d, limits[d]))
		}
		for s := 0; s < 2; s++ {
			index := 2*d + s
			p := &CartesianPlane{
				Index:            index,
				Dimension:        D,
				SurfaceDimension: d,
				Position:         limits[d][s],
				Normal:           float64(2*s - 1),
			}
			switch len(sources) {
			case 1:
				p.Source = sources[0]
			case 2 * D:
				p.Source = sources[index]
			}
			planes[index] = p
		}
	}
	return
}

package operator

import (
	"fmt"

	"github.com/notargets/ibex/discretization"
	"github.com/notargets/ibex/material"
)

// FullFission applies fission cross sections weighted by both the weight and
// basis functions. The input is the isotropic flux coefficient of each basis
// function, [g+G*(m+M*b)]; the output is the fission source moment of each
// weight function, [d+nDM*(g+G*(m+M*i))], nonzero only for m = 0.
type FullFission struct {
	base
}

func NewFullFission(points Points, angular *discretization.Angular, energy *discretization.Energy,
	options Options) (f *FullFission) {
	f = &FullFission{newBase(points, angular, energy, options)}
	for i := 0; i < f.N; i++ {
		dep := f.points.Material(i).SigmaF.Dependencies
		if dep.Angular != material.AngularNone || dep.Energy != material.GroupToGroup ||
			dep.Spatial != material.BasisWeight {
			panic(fmt.Errorf("point %d: full fission needs group to group, basis weighted sigma_f, have %s", i, dep))
		}
	}
	return
}

func (f *FullFission) RowSize() int    { return f.N * f.nDM * f.G * f.M }
func (f *FullFission) ColumnSize() int { return f.N * f.G * f.M }

func (f *FullFission) Apply(x []float64) (y []float64) {
	if f.options.Mode == Coherent {
		panic("coherent scattering not yet implemented in full fission")
	}
	checkSize("full fission", x, f.ColumnSize())
	var (
		G, M, nDM = f.G, f.M, f.nDM
	)
	y = make([]float64, f.RowSize())
	f.forEachPoint(func(i int) {
		var (
			data  = f.points.Material(i).SigmaF.Data()
			bases = f.points.BasisIndices(i)
			m     = 0
		)
		for gt := 0; gt < G; gt++ {
			for d := 0; d < nDM; d++ {
				var sum float64
				for j, b := range bases {
					for gf := 0; gf < G; gf++ {
						sum += data[d+nDM*(gf+G*(gt+G*j))] * x[gf+G*(m+M*b)]
					}
				}
				y[d+nDM*(gt+G*(m+M*i))] = sum
			}
		}
	})
	return
}

package operator

import (
	"fmt"

	"github.com/notargets/ibex/discretization"
	"github.com/notargets/ibex/material"
)

// Scattering applies the point scattering cross sections to a moment vector
// indexed [d+nDM*(g+G*(m+M*i))].
type Scattering struct {
	base
}

func NewScattering(points Points, angular *discretization.Angular, energy *discretization.Energy,
	options Options) (s *Scattering) {
	s = &Scattering{newBase(points, angular, energy, options)}
	for i := 0; i < s.N; i++ {
		dep := s.points.Material(i).SigmaS.Dependencies
		if dep.Angular != material.ScatteringMoments && dep.Angular != material.Moments {
			panic(fmt.Errorf("point %d: scattering needs moment dependent sigma_s, have %s", i, dep))
		}
		if dep.Energy != material.GroupToGroup {
			panic(fmt.Errorf("point %d: scattering needs group to group sigma_s, have %s", i, dep))
		}
		if dep.Spatial == material.BasisWeight {
			panic(fmt.Errorf("point %d: scattering needs point or basis sigma_s, have %s", i, dep))
		}
	}
	return
}

func (s *Scattering) RowSize() int    { return s.N * s.localMoments() * s.G * s.M }
func (s *Scattering) ColumnSize() int { return s.RowSize() }

func (s *Scattering) Apply(x []float64) (y []float64) {
	checkSize("scattering", x, s.ColumnSize())
	y = make([]float64, len(x))
	switch s.options.Mode {
	case Coherent:
		s.forEachPoint(func(i int) { s.applyCoherent(i, x, y) })
	default:
		s.forEachPoint(func(i int) { s.applyFull(i, x, y) })
	}
	return
}

// angularIndex is the angular index of sigma_s used for moment m.
func (s *Scattering) angularIndex(dep material.Dependencies, m int) int {
	if dep.Angular == material.ScatteringMoments {
		return s.angular.ScatteringIndices()[m]
	}
	return m
}

func (s *Scattering) applyFull(i int, x, y []float64) {
	var (
		G, M, nDM = s.G, s.M, s.nDM
		nl        = s.localMoments()
		sigmaS    = s.points.Material(i).SigmaS
		data      = sigmaS.Data()
	)
	for m := 0; m < M; m++ {
		l := s.angularIndex(sigmaS.Dependencies, m)
		for gt := 0; gt < G; gt++ {
			for d := 0; d < nl; d++ {
				var sum float64
				for gf := 0; gf < G; gf++ {
					sum += data[d+nDM*(gf+G*(gt+G*l))] * x[d+nl*(gf+G*(m+M*i))]
				}
				y[d+nl*(gt+G*(m+M*i))] = sum
			}
		}
	}
}

func (s *Scattering) applyCoherent(i int, x, y []float64) {
	var (
		G, M, nDM = s.G, s.M, s.nDM
		nl        = s.localMoments()
		sigmaS    = s.points.Material(i).SigmaS
		data      = sigmaS.Data()
	)
	for m := 0; m < M; m++ {
		l := s.angularIndex(sigmaS.Dependencies, m)
		for g := 0; g < G; g++ {
			for d := 0; d < nl; d++ {
				k := d + nl*(g+G*(m+M*i))
				y[k] = data[d+nDM*(g+G*(g+G*l))] * x[k]
			}
		}
	}
}

package spatial

import (
	"fmt"
	"math"

	"github.com/notargets/ibex/material"
	"github.com/notargets/ibex/quadrature"
)

// integrateDirect computes the integrals and material of the weight function
// over its own support, without a background mesh.
func (w *WeightFunction) integrateDirect() {
	if w.dimension == 3 {
		panic(fmt.Errorf("weight function %d: direct integration is not yet implemented in 3D", w.index))
	}
	switch w.options.Weighting {
	case WeightingPoint, WeightingFlat:
	default:
		panic(fmt.Errorf("weight function %d: %s weighting is not yet implemented for direct integration",
			w.index, w.options.Weighting))
	}
	if w.function.DependsOnNeighbors() {
		panic(fmt.Errorf("weight function %d: neighbor normalized functions require background mesh integration", w.index))
	}
	for _, b := range w.bases {
		if b.Function().DependsOnNeighbors() {
			panic(fmt.Errorf("basis function %d: neighbor normalized functions require background mesh integration", b.Index()))
		}
	}
	if w.geometry == nil || w.angular == nil || w.energy == nil {
		panic(fmt.Errorf("weight function %d: direct integration needs geometry, angular and energy discretizations", w.index))
	}
	in := w.calculateIntegrals()
	w.SetIntegrals(in, w.calculateMaterial(in))
}

func (w *WeightFunction) circle() quadrature.Circle {
	p := w.function.Position()
	return quadrature.Circle{Center: [2]float64{p[0], p[1]}, Radius: w.function.Radius()}
}

func basisCircle(b *BasisFunction) quadrature.Circle {
	p := b.Position()
	return quadrature.Circle{Center: [2]float64{p[0], p[1]}, Radius: b.Radius()}
}

// interval returns the 1D rule over [x1, x2], empty when the interval is.
func (w *WeightFunction) interval(x1, x2 float64) quadrature.Rule {
	if x1 >= x2 {
		return quadrature.Rule{Dimension: 1}
	}
	return quadrature.Box(w.options.IntegrationOrdinates, []float64{x1}, []float64{x2})
}

func (w *WeightFunction) fullQuadrature() quadrature.Rule {
	var (
		n = w.options.IntegrationOrdinates
		x = w.function.Position()
		r = w.function.Radius()
	)
	switch w.dimension {
	case 1:
		return w.interval(math.Max(x[0]-r, w.minLimits[0]), math.Min(x[0]+r, w.maxLimits[0]))
	default:
		if len(w.boundarySurfaces) == 0 {
			return quadrature.Disk(n, n, x, r)
		}
		return quadrature.Chords(n, []quadrature.Circle{w.circle()}, w.minLimits, w.maxLimits)
	}
}

func (w *WeightFunction) basisQuadrature(b *BasisFunction) quadrature.Rule {
	var (
		n  = w.options.IntegrationOrdinates
		xw = w.function.Position()
		rw = w.function.Radius()
	)
	switch w.dimension {
	case 1:
		xb, rb := b.Position(), b.Radius()
		x1 := math.Max(math.Max(xw[0]-rw, xb[0]-rb), w.minLimits[0])
		x2 := math.Min(math.Min(xw[0]+rw, xb[0]+rb), w.maxLimits[0])
		return w.interval(x1, x2)
	default:
		return quadrature.Chords(n, []quadrature.Circle{w.circle(), basisCircle(b)}, w.minLimits, w.maxLimits)
	}
}

func (w *WeightFunction) fullSurfaceQuadrature(s int) quadrature.Rule {
	var (
		surface = w.boundarySurfaces[s]
		n       = w.options.IntegrationOrdinates
	)
	switch w.dimension {
	case 1:
		return quadrature.Face(n, []float64{surface.Position}, []float64{surface.Position}, 0, surface.Position)
	default:
		return quadrature.Segment(n, []quadrature.Circle{w.circle()}, w.minLimits, w.maxLimits,
			surface.SurfaceDimension, surface.Position)
	}
}

func (w *WeightFunction) basisSurfaceQuadrature(b *BasisFunction, s int) quadrature.Rule {
	var (
		surface = w.boundarySurfaces[s]
		n       = w.options.IntegrationOrdinates
	)
	switch w.dimension {
	case 1:
		return quadrature.Face(n, []float64{surface.Position}, []float64{surface.Position}, 0, surface.Position)
	default:
		if b.NumberOfBoundarySurfaces() == 0 || surface.Distance(b.Position()) > b.Radius() {
			return quadrature.Rule{Dimension: 2}
		}
		return quadrature.Segment(n, []quadrature.Circle{w.circle(), basisCircle(b)}, w.minLimits, w.maxLimits,
			surface.SurfaceDimension, surface.Position)
	}
}

func (w *WeightFunction) calculateIntegrals() (in Integrals) {
	var (
		D  = w.dimension
		ns = len(w.boundarySurfaces)
		nb = len(w.bases)
		wf = w.function
	)
	in = NewIntegrals(D, ns, nb)
	for i, b := range w.bases {
		bf := b.Function()
		for s := 0; s < ns; s++ {
			rule := w.basisSurfaceQuadrature(b, s)
			for q := 0; q < rule.Len(); q++ {
				x := rule.Point(q)
				in.IsBW[s+ns*i] += rule.Weights[q] * bf.Value(x) * wf.Value(x)
			}
		}
		rule := w.basisQuadrature(b)
		for q := 0; q < rule.Len(); q++ {
			var (
				x  = rule.Point(q)
				qw = rule.Weights[q]
				bv = bf.Value(x)
				wv = wf.Value(x)
				db = bf.Gradient(x)
				dw = wf.Gradient(x)
			)
			in.IvBW[i] += qw * bv * wv
			for d1 := 0; d1 < D; d1++ {
				k1 := d1 + D*i
				in.IvBDW[k1] += qw * bv * dw[d1]
				in.IvDBW[k1] += qw * db[d1] * wv
				for d2 := 0; d2 < D; d2++ {
					in.IvDBDW[d1+D*(d2+D*i)] += qw * db[d1] * dw[d2]
				}
			}
		}
	}
	for s := 0; s < ns; s++ {
		rule := w.fullSurfaceQuadrature(s)
		in.IsW[s] = rule.Sum(wf.Value)
	}
	rule := w.fullQuadrature()
	for q := 0; q < rule.Len(); q++ {
		x := rule.Point(q)
		in.IvW[0] += rule.Weights[q] * wf.Value(x)
		dw := wf.Gradient(x)
		for d := 0; d < D; d++ {
			in.IvDW[d] += rule.Weights[q] * dw[d]
		}
	}
	return
}

// calculateMaterial weights the geometry material with the weight function.
// Point weighting scales the material at the center by the integral of each
// dimensional moment; flat weighting integrates it over the support.
func (w *WeightFunction) calculateMaterial(in Integrals) *material.Material {
	var (
		nDM      = w.options.NumberOfDimensionalMoments(w.dimension)
		strategy = flatWeighting{weightingShape{
			nDM:               nDM,
			G:                 w.energy.NumberOfGroups,
			L:                 w.angular.NumberOfScatteringMoments,
			M:                 w.angular.NumberOfMoments(),
			scatteringIndices: w.angular.ScatteringIndices(),
		}}
		nb   = len(w.bases)
		sums = strategy.newSums(nb)
	)
	pointData := func(x []float64) pointMaterial {
		return newPointMaterial(w.geometry.Material(x), strategy.G, strategy.L, strategy.M)
	}
	switch w.options.Weighting {
	case WeightingPoint:
		pm := pointData(w.function.Position())
		for d := 0; d < nDM; d++ {
			iv := in.IvW[0]
			if d > 0 {
				iv = in.IvDW[d-1]
			}
			strategy.addCrossSections(sums, d, iv, &pm)
			addMoment(sums.source, nDM, d, 0, iv, pm.source)
		}
	case WeightingFlat:
		rule := w.fullQuadrature()
		lookup := func(int) *materialSums { return sums }
		s := sample{weights: make([]functionSample, 1)}
		for q := 0; q < rule.Len(); q++ {
			x := rule.Point(q)
			s.qw = rule.Weights[q]
			s.mat = pointData(x)
			s.weights[0] = functionSample{point: w.index, value: w.function.Value(x), grad: w.function.Gradient(x)}
			strategy.accumulate(&s, lookup)
		}
	}
	if w.options.Normalized {
		strategy.normalize(sums, sums.norm)
	}
	return newWeightedMaterial(w.index, strategy, sums, nb)
}

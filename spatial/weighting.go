package spatial

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/ibex/discretization"
	"github.com/notargets/ibex/material"
)

// pointMaterial holds the material at a quadrature point in the standard
// layouts: sigmaT[g], sigmaS[gf+G*(gt+G*l)], fission[gf+G*gt], source[g+G*m].
type pointMaterial struct {
	sigmaT  []float64
	sigmaS  []float64
	fission []float64
	source  []float64
}

func newPointMaterial(mat *material.Material, G, L, M int) (pm pointMaterial) {
	pm = pointMaterial{
		sigmaT:  mat.SigmaT.Data(),
		sigmaS:  mat.SigmaS.Data(),
		fission: mat.FissionMatrix(),
		source:  mat.InternalSource.Data(),
	}
	if len(pm.sigmaT) != G || len(pm.sigmaS) != G*G*L || len(pm.fission) != G*G || len(pm.source) != G*M {
		panic(fmt.Errorf("material %d does not match %d groups, %d scattering moments and %d moments",
			mat.Index, G, L, M))
	}
	return
}

// functionSample is the value and gradient of one function at a quadrature point.
type functionSample struct {
	point int
	value float64
	grad  []float64
}

// moment is the value for dimensional moment zero and the gradient
// component d-1 otherwise.
func (f *functionSample) moment(d int) float64 {
	if d == 0 {
		return f.value
	}
	return f.grad[d-1]
}

// sample is everything known at one quadrature point of a cell. basisLocal
// maps (weight in cell, basis in cell) to the weight's local basis index.
type sample struct {
	qw         float64
	mat        pointMaterial
	weights    []functionSample
	bases      []functionSample
	basisLocal [][]int
}

// materialSums accumulates the weighted cross sections of one point.
type materialSums struct {
	sigmaT []float64
	sigmaS []float64
	sigmaF []float64
	source []float64
	norm   []float64
}

func (m *materialSums) add(o *materialSums) {
	floats.Add(m.sigmaT, o.sigmaT)
	floats.Add(m.sigmaS, o.sigmaS)
	floats.Add(m.sigmaF, o.sigmaF)
	floats.Add(m.source, o.source)
	floats.Add(m.norm, o.norm)
}

type sumsLookup func(point int) *materialSums

type crossSectionDependencies struct {
	sigmaT, sigmaS, sigmaF, source material.Dependencies
}

// weightingStrategy is one material weighting scheme.
type weightingStrategy interface {
	newSums(numberOfBases int) *materialSums
	accumulate(s *sample, sums sumsLookup)
	normalize(m *materialSums, norm []float64)
	dependencies() crossSectionDependencies
	shape(numberOfBases int) material.Shape
}

// weightingShape holds the index extents common to every scheme.
type weightingShape struct {
	nDM, G, L, M      int
	scatteringIndices []int
}

func (ws weightingShape) shape(numberOfBases int) material.Shape {
	return material.Shape{
		Groups:             ws.G,
		Moments:            ws.M,
		ScatteringMoments:  ws.L,
		DimensionalMoments: ws.nDM,
		BasisFunctions:     numberOfBases,
	}
}

func (ws weightingShape) dimensional() material.Dimensional {
	if ws.nDM > 1 {
		return material.SUPG
	}
	return material.DimensionalNone
}

func (ws weightingShape) sourceDependencies() material.Dependencies {
	return material.Dependencies{Angular: material.Moments, Energy: material.Group, Dimensional: ws.dimensional()}
}

// newWeightingStrategy panics on the calling goroutine for invalid schemes
// and for flux coefficients not sized [g+G*(m+M*j)] over numberOfBases.
func newWeightingStrategy(weighting Weighting, nDM int, angular *discretization.Angular,
	energy *discretization.Energy, numberOfBases int, fluxCoefficients []float64) weightingStrategy {
	var (
		ws = weightingShape{
			nDM:               nDM,
			G:                 energy.NumberOfGroups,
			L:                 angular.NumberOfScatteringMoments,
			M:                 angular.NumberOfMoments(),
			scatteringIndices: angular.ScatteringIndices(),
		}
	)
	switch weighting {
	case WeightingFlat:
		return flatWeighting{ws}
	case WeightingFlux:
		if size := ws.G * ws.M * numberOfBases; len(fluxCoefficients) != size {
			panic(fmt.Errorf("flux weighting needs %d coefficients for %d groups, %d moments and %d basis functions, have %d",
				size, ws.G, ws.M, numberOfBases, len(fluxCoefficients)))
		}
		return fluxWeighting{weightingShape: ws, coefficients: fluxCoefficients}
	case WeightingFull:
		return fullWeighting{ws}
	case WeightingBasis:
		return basisWeighting{flatWeighting{ws}}
	default:
		panic(fmt.Errorf("%s weighting is not valid with background mesh integration", weighting))
	}
}

// addMoment adds wq*src[k] to dst[d+nDM*(k+offset)] for every k.
func addMoment(dst []float64, nDM, d, offset int, wq float64, src []float64) {
	if nDM == 1 {
		floats.AddScaled(dst[offset:offset+len(src)], wq, src)
		return
	}
	for k, v := range src {
		dst[d+nDM*(k+offset)] += wq * v
	}
}

// divideMoments divides dst[d+nDM*k] by norm[d], skipping zero norms.
func divideMoments(dst []float64, nDM int, norm []float64) {
	for i := range dst {
		if den := norm[i%nDM]; den != 0 {
			dst[i] /= den
		}
	}
}

// flatWeighting averages cross sections against the weight function.
type flatWeighting struct {
	weightingShape
}

func (ws flatWeighting) newSums(int) *materialSums {
	var (
		nDM, G, L, M = ws.nDM, ws.G, ws.L, ws.M
	)
	return &materialSums{
		sigmaT: make([]float64, nDM*G),
		sigmaS: make([]float64, nDM*G*G*L),
		sigmaF: make([]float64, nDM*G*G),
		source: make([]float64, nDM*G*M),
		norm:   make([]float64, nDM),
	}
}

func (ws flatWeighting) accumulate(s *sample, sums sumsLookup) {
	for i := range s.weights {
		w := &s.weights[i]
		m := sums(w.point)
		for d := 0; d < ws.nDM; d++ {
			wq := s.qw * w.moment(d)
			ws.addCrossSections(m, d, wq, &s.mat)
			addMoment(m.source, ws.nDM, d, 0, wq, s.mat.source)
		}
	}
}

func (ws flatWeighting) addCrossSections(m *materialSums, d int, wq float64, pm *pointMaterial) {
	m.norm[d] += wq
	addMoment(m.sigmaT, ws.nDM, d, 0, wq, pm.sigmaT)
	addMoment(m.sigmaS, ws.nDM, d, 0, wq, pm.sigmaS)
	addMoment(m.sigmaF, ws.nDM, d, 0, wq, pm.fission)
}

func (ws flatWeighting) normalize(m *materialSums, norm []float64) {
	divideMoments(m.sigmaT, ws.nDM, norm)
	divideMoments(m.sigmaS, ws.nDM, norm)
	divideMoments(m.sigmaF, ws.nDM, norm)
}

func (ws flatWeighting) dependencies() crossSectionDependencies {
	dim := ws.dimensional()
	return crossSectionDependencies{
		sigmaT: material.Dependencies{Energy: material.Group, Dimensional: dim},
		sigmaS: material.Dependencies{Angular: material.ScatteringMoments, Energy: material.GroupToGroup, Dimensional: dim},
		sigmaF: material.Dependencies{Energy: material.GroupToGroup, Dimensional: dim},
		source: ws.sourceDependencies(),
	}
}

// basisWeighting collocates cross sections on the basis functions. The
// internal source is still weighted by the weight functions.
type basisWeighting struct {
	flatWeighting
}

func (ws basisWeighting) accumulate(s *sample, sums sumsLookup) {
	for j := range s.bases {
		b := &s.bases[j]
		m := sums(b.point)
		for d := 0; d < ws.nDM; d++ {
			ws.addCrossSections(m, d, s.qw*b.moment(d), &s.mat)
		}
	}
	for i := range s.weights {
		w := &s.weights[i]
		m := sums(w.point)
		for d := 0; d < ws.nDM; d++ {
			addMoment(m.source, ws.nDM, d, 0, s.qw*w.moment(d), s.mat.source)
		}
	}
}

func (ws basisWeighting) dependencies() crossSectionDependencies {
	deps := ws.flatWeighting.dependencies()
	deps.sigmaT.Spatial = material.Basis
	deps.sigmaS.Spatial = material.Basis
	deps.sigmaF.Spatial = material.Basis
	return deps
}

// fluxWeighting weights cross sections with the weight function times the
// flux expanded in the basis functions, per group and angular moment.
type fluxWeighting struct {
	weightingShape
	coefficients []float64
}

func (ws fluxWeighting) newSums(int) *materialSums {
	var (
		nDM, G, M = ws.nDM, ws.G, ws.M
	)
	return &materialSums{
		sigmaT: make([]float64, nDM*G*M),
		sigmaS: make([]float64, nDM*G*G*M),
		sigmaF: make([]float64, nDM*G*G),
		source: make([]float64, nDM*G*M),
		norm:   make([]float64, nDM*G*M),
	}
}

// flux returns the expanded flux [g+G*m] at the sample.
func (ws fluxWeighting) flux(s *sample) (phi []float64) {
	var (
		GM = ws.G * ws.M
	)
	phi = make([]float64, GM)
	for j := range s.bases {
		b := &s.bases[j]
		if b.value == 0 {
			continue
		}
		coeff := ws.coefficients[GM*b.point : GM*(b.point+1)]
		for k := range phi {
			phi[k] += b.value * coeff[k]
		}
	}
	return
}

func (ws fluxWeighting) accumulate(s *sample, sums sumsLookup) {
	var (
		nDM, G, M = ws.nDM, ws.G, ws.M
		phi       = ws.flux(s)
		pm        = &s.mat
	)
	for i := range s.weights {
		w := &s.weights[i]
		m := sums(w.point)
		for d := 0; d < nDM; d++ {
			wq := s.qw * w.moment(d)
			if wq == 0 {
				continue
			}
			for mm := 0; mm < M; mm++ {
				l := ws.scatteringIndices[mm]
				for gt := 0; gt < G; gt++ {
					k := gt + G*mm
					m.sigmaT[d+nDM*k] += wq * pm.sigmaT[gt] * phi[k]
					m.norm[d+nDM*k] += wq * phi[k]
					for gf := 0; gf < G; gf++ {
						m.sigmaS[d+nDM*(gf+G*(gt+G*mm))] += wq * pm.sigmaS[gf+G*(gt+G*l)] * phi[gf+G*mm]
					}
				}
			}
			for gt := 0; gt < G; gt++ {
				for gf := 0; gf < G; gf++ {
					m.sigmaF[d+nDM*(gf+G*gt)] += wq * pm.fission[gf+G*gt] * phi[gf]
				}
			}
			addMoment(m.source, nDM, d, 0, wq, pm.source)
		}
	}
}

func (ws fluxWeighting) normalize(m *materialSums, norm []float64) {
	var (
		nDM, G, M = ws.nDM, ws.G, ws.M
	)
	div := func(v *float64, den float64) {
		if den != 0 {
			*v /= den
		}
	}
	for d := 0; d < nDM; d++ {
		for mm := 0; mm < M; mm++ {
			for gt := 0; gt < G; gt++ {
				div(&m.sigmaT[d+nDM*(gt+G*mm)], norm[d+nDM*(gt+G*mm)])
				for gf := 0; gf < G; gf++ {
					div(&m.sigmaS[d+nDM*(gf+G*(gt+G*mm))], norm[d+nDM*(gf+G*mm)])
				}
			}
		}
		for gt := 0; gt < G; gt++ {
			for gf := 0; gf < G; gf++ {
				div(&m.sigmaF[d+nDM*(gf+G*gt)], norm[d+nDM*gf])
			}
		}
	}
}

func (ws fluxWeighting) dependencies() crossSectionDependencies {
	dim := ws.dimensional()
	return crossSectionDependencies{
		sigmaT: material.Dependencies{Angular: material.Moments, Energy: material.Group, Dimensional: dim},
		sigmaS: material.Dependencies{Angular: material.Moments, Energy: material.GroupToGroup, Dimensional: dim},
		sigmaF: material.Dependencies{Energy: material.GroupToGroup, Dimensional: dim},
		source: ws.sourceDependencies(),
	}
}

// fullWeighting keeps one set of cross sections per local basis function,
// weighted by the product of weight and basis. It is not normalized.
type fullWeighting struct {
	weightingShape
}

func (ws fullWeighting) newSums(nb int) *materialSums {
	var (
		nDM, G, L, M = ws.nDM, ws.G, ws.L, ws.M
	)
	return &materialSums{
		sigmaT: make([]float64, nDM*G*nb),
		sigmaS: make([]float64, nDM*G*G*L*nb),
		sigmaF: make([]float64, nDM*G*G*nb),
		source: make([]float64, nDM*G*M),
	}
}

func (ws fullWeighting) accumulate(s *sample, sums sumsLookup) {
	var (
		nDM, G, L = ws.nDM, ws.G, ws.L
		pm        = &s.mat
	)
	for i := range s.weights {
		w := &s.weights[i]
		m := sums(w.point)
		for d := 0; d < nDM; d++ {
			wq := s.qw * w.moment(d)
			addMoment(m.source, nDM, d, 0, wq, pm.source)
			if wq == 0 {
				continue
			}
			for jc := range s.bases {
				j := s.basisLocal[i][jc]
				if j < 0 || s.bases[jc].value == 0 {
					continue
				}
				wb := wq * s.bases[jc].value
				addMoment(m.sigmaT, nDM, d, G*j, wb, pm.sigmaT)
				addMoment(m.sigmaS, nDM, d, G*G*L*j, wb, pm.sigmaS)
				addMoment(m.sigmaF, nDM, d, G*G*j, wb, pm.fission)
			}
		}
	}
}

func (ws fullWeighting) normalize(*materialSums, []float64) {}

func (ws fullWeighting) dependencies() crossSectionDependencies {
	dim := ws.dimensional()
	return crossSectionDependencies{
		sigmaT: material.Dependencies{Energy: material.Group, Dimensional: dim, Spatial: material.BasisWeight},
		sigmaS: material.Dependencies{Angular: material.ScatteringMoments, Energy: material.GroupToGroup,
			Dimensional: dim, Spatial: material.BasisWeight},
		sigmaF: material.Dependencies{Energy: material.GroupToGroup, Dimensional: dim, Spatial: material.BasisWeight},
		source: ws.sourceDependencies(),
	}
}

// newWeightedMaterial freezes accumulated sums into a material for one point.
func newWeightedMaterial(point int, strategy weightingStrategy, m *materialSums, numberOfBases int) *material.Material {
	var (
		shape = strategy.shape(numberOfBases)
		deps  = strategy.dependencies()
		none  = material.Dependencies{}
	)
	return material.NewMaterial(point, shape,
		material.NewCrossSection(deps.sigmaT, shape, m.sigmaT),
		material.NewCrossSection(deps.sigmaS, shape, m.sigmaS),
		material.NewCrossSection(none, shape, []float64{1}),
		material.NewCrossSection(deps.sigmaF, shape, m.sigmaF),
		material.NewCrossSection(none, shape, []float64{1}),
		material.NewCrossSection(deps.source, shape, m.source))
}

package spatial

import (
	"fmt"

	"github.com/notargets/ibex/discretization"
	"github.com/notargets/ibex/material"
	"github.com/notargets/ibex/meshless"
	"github.com/notargets/ibex/quadrature"
	"github.com/notargets/ibex/solid"
	"github.com/notargets/ibex/utils"
)

type integrationState uint8

const (
	unintegrated integrationState = iota
	volumePass
	surfacePass
	finalized
)

var stateNames = map[integrationState]string{
	unintegrated: "unintegrated",
	volumePass:   "volume pass",
	surfacePass:  "surface pass",
	finalized:    "finalized",
}

func (s integrationState) String() string { return stateNames[s] }

// Engine integrates every weight function against its basis functions and
// the material on a background mesh.
type Engine struct {
	options   Options
	dimension int
	mesh      *Mesh
	weights   []*WeightFunction
	bases     []*BasisFunction
	geometry  solid.Geometry
	angular   *discretization.Angular
	energy    *discretization.Energy
	state     integrationState
	integrals []Integrals
	sums      []*materialSums
	locks     *utils.LockSet
}

// NewEngine builds the background mesh and resolves which functions overlap
// each cell and boundary surface.
func NewEngine(options Options, weights []*WeightFunction, bases []*BasisFunction, geometry solid.Geometry,
	angular *discretization.Angular, energy *discretization.Energy) (e *Engine) {
	if len(weights) == 0 || len(weights) != len(bases) {
		panic(fmt.Errorf("integration needs one weight and one basis function per point, have %d and %d",
			len(weights), len(bases)))
	}
	if options.IntegrationOrdinates < 1 {
		panic(fmt.Errorf("integration ordinates must be positive, have %d", options.IntegrationOrdinates))
	}
	e = &Engine{
		options:   options,
		dimension: weights[0].Dimension(),
		weights:   weights,
		bases:     bases,
		geometry:  geometry,
		angular:   angular,
		energy:    energy,
		locks:     utils.NewLockSet(len(weights)),
	}
	e.mesh = NewMesh(e.dimension, options.Limits, options.DimensionalCells)
	if len(e.mesh.Cells) < len(weights) {
		logger().Warn("background mesh has fewer cells than points",
			"cells", len(e.mesh.Cells), "points", len(weights))
	}
	wf := make([]meshless.Function, len(weights))
	for i, w := range weights {
		wf[i] = w.Function()
	}
	bf := make([]meshless.Function, len(bases))
	for i, b := range bases {
		bf[i] = b.Function()
	}
	e.mesh.Resolve(wf, bf, options.IdenticalBasisFunctions)
	return
}

func (e *Engine) Mesh() *Mesh { return e.mesh }

// Integrate runs the volume and surface passes, normalizes the material
// sums if requested and hands the results to the weight functions.
func (e *Engine) Integrate(weighting Weighting, dimensionalMoments int, normalized bool) {
	if e.state != unintegrated {
		panic(fmt.Errorf("integration requested in state %s", e.state))
	}
	if weighting == WeightingPoint {
		panic("point weighting is not valid with background mesh integration")
	}
	if dimensionalMoments != 1 && dimensionalMoments != e.dimension+1 {
		panic(fmt.Errorf("dimensional moments must be 1 or %d, have %d", e.dimension+1, dimensionalMoments))
	}
	var (
		N        = len(e.weights)
		strategy = newWeightingStrategy(weighting, dimensionalMoments, e.angular, e.energy, len(e.bases), e.options.FluxCoefficients)
	)
	e.integrals = make([]Integrals, N)
	e.sums = make([]*materialSums, N)
	for k, w := range e.weights {
		e.integrals[k] = NewIntegrals(e.dimension, w.NumberOfBoundarySurfaces(), w.NumberOfBasisFunctions())
		e.sums[k] = strategy.newSums(w.NumberOfBasisFunctions())
	}

	e.state = volumePass
	e.parallel(len(e.mesh.Cells), func(k int) {
		e.integrateCell(&e.mesh.Cells[k], strategy)
	})
	if normalized {
		e.parallel(N, func(k int) {
			strategy.normalize(e.sums[k], e.sums[k].norm)
		})
	}

	e.state = surfacePass
	e.parallel(len(e.mesh.Surfaces), e.integrateSurface)

	e.state = finalized
	for k, w := range e.weights {
		w.SetIntegrals(e.integrals[k], newWeightedMaterial(k, strategy, e.sums[k], w.NumberOfBasisFunctions()))
	}
}

// parallel calls f for every k in [0, maxIndex), split into contiguous
// partitions run concurrently.
func (e *Engine) parallel(maxIndex int, f func(k int)) {
	if maxIndex == 0 {
		return
	}
	pm := utils.NewPartitionMap(utils.ParallelDegree(e.options.ParallelDegree, maxIndex), maxIndex)
	pm.Run(func(_, kMin, kMax int) {
		for k := kMin; k < kMax; k++ {
			f(k)
		}
	})
}

// basisLocal maps each (weight, basis) pair of a cell to the weight's local
// basis index.
func (e *Engine) basisLocal(weightIndices, basisIndices []int) (local [][]int) {
	local = make([][]int, len(weightIndices))
	for i, wi := range weightIndices {
		local[i] = make([]int, len(basisIndices))
		for j, bi := range basisIndices {
			local[i][j] = e.weights[wi].LocalBasisIndex(bi)
		}
	}
	return
}

func (e *Engine) weightFunction(i int) meshless.Function { return e.weights[i].Function() }
func (e *Engine) basisFunction(i int) meshless.Function  { return e.bases[i].Function() }

// evaluate fills out with the values and gradients of the indexed functions
// at x, normalized against each other when the functions require it.
func evaluate(x []float64, indices []int, function func(int) meshless.Function, out []functionSample) {
	var (
		normalizer meshless.NeighborFunction
		positions  [][]float64
		values     []float64
		grads      [][]float64
		members    []int
	)
	for i, idx := range indices {
		f := function(idx)
		out[i] = functionSample{point: idx, value: f.Value(x), grad: f.Gradient(x)}
		if f.DependsOnNeighbors() {
			if normalizer == nil {
				normalizer = f.(meshless.NeighborFunction)
			}
			positions = append(positions, f.Position())
			values = append(values, out[i].value)
			grads = append(grads, out[i].grad)
			members = append(members, i)
		}
	}
	if normalizer == nil {
		return
	}
	nv, ng := normalizer.Normalize(x, positions, values, grads)
	for k, i := range members {
		out[i].value = nv[k]
		out[i].grad = ng[k]
	}
}

func (e *Engine) integrateCell(c *Cell, strategy weightingStrategy) {
	var (
		D       = e.dimension
		nw      = len(c.WeightIndices)
		nb      = len(c.BasisIndices)
		lower   = make([]float64, D)
		upper   = make([]float64, D)
		local   = make([]Integrals, nw)
		sums    = make(map[int]*materialSums)
		matData = make(map[*material.Material]pointMaterial)
	)
	if nw == 0 {
		return
	}
	for d := 0; d < D; d++ {
		lower[d], upper[d] = c.Limits[d][0], c.Limits[d][1]
	}
	for i, wi := range c.WeightIndices {
		local[i] = NewIntegrals(D, 0, e.weights[wi].NumberOfBasisFunctions())
	}
	lookup := func(point int) *materialSums {
		m, ok := sums[point]
		if !ok {
			m = strategy.newSums(e.weights[point].NumberOfBasisFunctions())
			sums[point] = m
		}
		return m
	}
	s := sample{
		weights:    make([]functionSample, nw),
		basisLocal: e.basisLocal(c.WeightIndices, c.BasisIndices),
	}
	if e.options.IdenticalBasisFunctions {
		s.bases = s.weights
	} else {
		s.bases = make([]functionSample, nb)
	}
	rule := quadrature.Box(e.options.IntegrationOrdinates, lower, upper)
	for q := 0; q < rule.Len(); q++ {
		x := rule.Point(q)
		s.qw = rule.Weights[q]
		evaluate(x, c.WeightIndices, e.weightFunction, s.weights)
		if !e.options.IdenticalBasisFunctions {
			evaluate(x, c.BasisIndices, e.basisFunction, s.bases)
		}
		mat := e.geometry.Material(x)
		pm, ok := matData[mat]
		if !ok {
			pm = newPointMaterial(mat, e.energy.NumberOfGroups, e.angular.NumberOfScatteringMoments, e.angular.NumberOfMoments())
			matData[mat] = pm
		}
		s.mat = pm
		for i := range s.weights {
			e.addVolumeIntegrals(&local[i], s.qw, &s.weights[i], s.bases, s.basisLocal[i])
		}
		strategy.accumulate(&s, lookup)
	}
	for i, wi := range c.WeightIndices {
		e.locks.With(wi, func() { e.integrals[wi].Add(local[i]) })
	}
	for point, m := range sums {
		e.locks.With(point, func() { e.sums[point].add(m) })
	}
}

func (e *Engine) addVolumeIntegrals(in *Integrals, qw float64, w *functionSample, bases []functionSample, basisLocal []int) {
	var (
		D = e.dimension
	)
	if w.value == 0 && isZero(w.grad) {
		return
	}
	in.IvW[0] += qw * w.value
	for d := 0; d < D; d++ {
		in.IvDW[d] += qw * w.grad[d]
	}
	for jc, j := range basisLocal {
		if j < 0 {
			continue
		}
		b := &bases[jc]
		in.IvBW[j] += qw * b.value * w.value
		for d1 := 0; d1 < D; d1++ {
			k1 := d1 + D*j
			in.IvBDW[k1] += qw * b.value * w.grad[d1]
			in.IvDBW[k1] += qw * b.grad[d1] * w.value
			for d2 := 0; d2 < D; d2++ {
				in.IvDBDW[d1+D*(d2+D*j)] += qw * b.grad[d1] * w.grad[d2]
			}
		}
	}
}

func isZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func (e *Engine) integrateSurface(si int) {
	var (
		surf          = &e.mesh.Surfaces[si]
		nw            = len(surf.WeightIndices)
		nb            = len(surf.BasisIndices)
		localSurfaces = make([]int, nw)
		isW           = make([]float64, nw)
		isBW          = make([][]float64, nw)
		weights       = make([]functionSample, nw)
		bases         []functionSample
	)
	if nw == 0 {
		return
	}
	for i, wi := range surf.WeightIndices {
		localSurfaces[i] = e.weights[wi].LocalSurfaceIndex(surf.Dimension, surf.Normal)
		isBW[i] = make([]float64, e.weights[wi].NumberOfBasisFunctions())
	}
	if e.options.IdenticalBasisFunctions {
		bases = weights
	} else {
		bases = make([]functionSample, nb)
	}
	basisLocal := e.basisLocal(surf.WeightIndices, surf.BasisIndices)
	lower, upper := e.mesh.SurfaceLimits(si)
	rule := quadrature.Face(e.options.IntegrationOrdinates, lower, upper, surf.Dimension, surf.Position)
	for q := 0; q < rule.Len(); q++ {
		x := rule.Point(q)
		qw := rule.Weights[q]
		evaluate(x, surf.WeightIndices, e.weightFunction, weights)
		if !e.options.IdenticalBasisFunctions {
			evaluate(x, surf.BasisIndices, e.basisFunction, bases)
		}
		for i := range weights {
			if localSurfaces[i] == utils.DoesNotExist || weights[i].value == 0 {
				continue
			}
			isW[i] += qw * weights[i].value
			for jc, j := range basisLocal[i] {
				if j < 0 {
					continue
				}
				isBW[i][j] += qw * bases[jc].value * weights[i].value
			}
		}
	}
	for i, wi := range surf.WeightIndices {
		s := localSurfaces[i]
		if s == utils.DoesNotExist {
			continue
		}
		ns := e.weights[wi].NumberOfBoundarySurfaces()
		e.locks.With(wi, func() {
			in := &e.integrals[wi]
			in.IsW[s] += isW[i]
			for j, v := range isBW[i] {
				in.IsBW[s+ns*j] += v
			}
		})
	}
}

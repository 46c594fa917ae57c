package spatial

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/ibex/discretization"
	"github.com/notargets/ibex/material"
	"github.com/notargets/ibex/meshless"
	"github.com/notargets/ibex/solid"
	"github.com/notargets/ibex/utils"
)

// WeakDiscretization is the meshless weighted residual discretization: one
// weight and one basis function per point, integrated against each other and
// against the material.
type WeakDiscretization struct {
	options   Options
	dimension int
	geometry  solid.Geometry
	planes    []*solid.CartesianPlane
	angular   *discretization.Angular
	energy    *discretization.Energy
	bases     []*BasisFunction
	weights   []*WeightFunction
	engine    *Engine
}

// NewWeakDiscretization builds the basis and weight functions, connects each
// weight to the basis functions whose support overlaps its own and
// integrates, on a background mesh or per weight function as configured.
// With identical basis functions basisFunctions is ignored.
func NewWeakDiscretization(options Options, weightFunctions, basisFunctions []meshless.Function,
	planes []*solid.CartesianPlane, geometry solid.Geometry,
	angular *discretization.Angular, energy *discretization.Energy) (wd *WeakDiscretization) {
	var (
		N = len(weightFunctions)
	)
	if N == 0 {
		panic("weak discretization needs at least one point")
	}
	if options.IdenticalBasisFunctions {
		basisFunctions = weightFunctions
	}
	if len(basisFunctions) != N {
		panic(fmt.Errorf("have %d weight functions and %d basis functions", N, len(basisFunctions)))
	}
	wd = &WeakDiscretization{
		options:   options,
		dimension: weightFunctions[0].Dimension(),
		geometry:  geometry,
		planes:    planes,
		angular:   angular,
		energy:    energy,
	}
	for i := 0; i < N; i++ {
		if weightFunctions[i].Index() != i || basisFunctions[i].Index() != i {
			panic(fmt.Errorf("function at position %d has weight index %d and basis index %d",
				i, weightFunctions[i].Index(), basisFunctions[i].Index()))
		}
		if weightFunctions[i].Dimension() != wd.dimension || basisFunctions[i].Dimension() != wd.dimension {
			panic(fmt.Errorf("function %d does not have dimension %d", i, wd.dimension))
		}
	}
	if len(planes) != 2*wd.dimension {
		panic(fmt.Errorf("need %d boundary planes, have %d", 2*wd.dimension, len(planes)))
	}
	if len(wd.options.Limits) == 0 {
		wd.options.Limits = make([][2]float64, wd.dimension)
		for _, p := range planes {
			wd.options.Limits[p.SurfaceDimension][p.LocalIndex()%2] = p.Position
		}
	}

	wd.bases = make([]*BasisFunction, N)
	for i, f := range basisFunctions {
		wd.bases[i] = NewBasisFunction(i, f, intersectingPlanes(planes, f.Position(), f.Radius()))
	}
	connectivity := wd.weightBasisConnectivity(weightFunctions)
	wd.weights = make([]*WeightFunction, N)
	for i, f := range weightFunctions {
		wbases := make([]*BasisFunction, len(connectivity[i]))
		for j, b := range connectivity[i] {
			wbases[j] = wd.bases[b]
		}
		wd.weights[i] = NewWeightFunction(i, wd.options, f, wbases,
			intersectingPlanes(planes, f.Position(), f.Radius()), geometry, angular, energy)
	}
	if wd.options.PerformIntegration && wd.options.ExternalIntegralCalculation {
		wd.engine = NewEngine(wd.options, wd.weights, wd.bases, geometry, angular, energy)
		logger().Info("integrating on background mesh",
			"mesh", wd.engine.Mesh().Stats(), "points", N, "weighting", wd.options.Weighting.String())
		wd.engine.Integrate(wd.options.Weighting, wd.NumberOfDimensionalMoments(), wd.options.Normalized)
	}
	return
}

// weightBasisConnectivity returns, per weight function, the sorted indices
// of the basis functions with |x_w - x_b| < r_w + r_b.
func (wd *WeakDiscretization) weightBasisConnectivity(weightFunctions []meshless.Function) (connectivity [][]int) {
	var (
		positions = make([][]float64, len(wd.bases))
		maxRadius float64
	)
	for i, b := range wd.bases {
		positions[i] = b.Position()
		maxRadius = max(maxRadius, b.Radius())
	}
	tree := newPointTree(positions)
	connectivity = make([][]int, len(weightFunctions))
	for i, f := range weightFunctions {
		for _, j := range tree.Within(f.Radius()+maxRadius, f.Position()) {
			if floats.Distance(f.Position(), positions[j], 2) < f.Radius()+wd.bases[j].Radius() {
				connectivity[i] = append(connectivity[i], j)
			}
		}
		sort.Ints(connectivity[i])
	}
	return
}

func (wd *WeakDiscretization) Dimension() int                   { return wd.dimension }
func (wd *WeakDiscretization) NumberOfPoints() int              { return len(wd.weights) }
func (wd *WeakDiscretization) Options() Options                 { return wd.options }
func (wd *WeakDiscretization) Weight(i int) *WeightFunction     { return wd.weights[i] }
func (wd *WeakDiscretization) Basis(i int) *BasisFunction       { return wd.bases[i] }
func (wd *WeakDiscretization) Weights() []*WeightFunction       { return wd.weights }
func (wd *WeakDiscretization) Bases() []*BasisFunction          { return wd.bases }
func (wd *WeakDiscretization) Angular() *discretization.Angular { return wd.angular }
func (wd *WeakDiscretization) Energy() *discretization.Energy   { return wd.energy }
func (wd *WeakDiscretization) Material(i int) *material.Material {
	return wd.weights[i].Material()
}

// Mesh returns the background mesh, nil when integrating per weight function.
func (wd *WeakDiscretization) Mesh() *Mesh {
	if wd.engine == nil {
		return nil
	}
	return wd.engine.Mesh()
}

func (wd *WeakDiscretization) NumberOfDimensionalMoments() int {
	return wd.options.NumberOfDimensionalMoments(wd.dimension)
}

// NumberOfBasisFunctions returns the number of basis functions of each weight.
func (wd *WeakDiscretization) NumberOfBasisFunctions() (counts []int) {
	counts = make([]int, len(wd.weights))
	for i, w := range wd.weights {
		counts[i] = w.NumberOfBasisFunctions()
	}
	return
}

// AssembleIntegrals returns the sparse weight by basis matrices of iv_b_w
// and of the trace of iv_db_dw.
func (wd *WeakDiscretization) AssembleIntegrals() (mass, stiffness utils.CSR) {
	var (
		N = len(wd.weights)
		D = wd.dimension
		M = utils.NewDOK(N, N)
		K = utils.NewDOK(N, N)
	)
	for i, w := range wd.weights {
		in := w.Integrals()
		for j, b := range w.BasisIndices() {
			M.Set(i, b, in.IvBW[j])
			var trace float64
			for d := 0; d < D; d++ {
				trace += in.IvDBDW[d+D*(d+D*j)]
			}
			K.Set(i, b, trace)
		}
	}
	M.SetReadOnly("mass")
	K.SetReadOnly("stiffness")
	return M.ToCSR(), K.ToCSR()
}

// BasisIndices returns the global indices of the basis functions of weight i.
func (wd *WeakDiscretization) BasisIndices(i int) []int {
	return wd.weights[i].BasisIndices()
}

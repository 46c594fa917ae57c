package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ibex/discretization"
	"github.com/notargets/ibex/material"
	"github.com/notargets/ibex/meshless"
	"github.com/notargets/ibex/quadrature"
	"github.com/notargets/ibex/solid"
	"github.com/notargets/ibex/utils"
)

// problem is a single group, isotropic test case on a box.
type problem struct {
	options   Options
	functions []meshless.Function
	planes    []*solid.CartesianPlane
	geometry  solid.Geometry
	angular   *discretization.Angular
	energy    *discretization.Energy
}

func testMaterial() *material.Material {
	return material.NewStandardMaterial(0, 1, 1, 1,
		[]float64{2}, []float64{0.5}, []float64{2.5}, []float64{0.1}, []float64{1}, []float64{3})
}

// newLineProblem places four Gaussian functions of radius one at -1.5, -0.5,
// 0.5 and 1.5 on [-2, 2]. Every support edge falls on a background cell face.
func newLineProblem(weighting Weighting, external bool) (p problem) {
	var (
		positions = [][]float64{{-1.5}, {-0.5}, {0.5}, {1.5}}
		limits    = [][2]float64{{-2, 2}}
	)
	p = problem{
		options: Options{
			Weighting:                   weighting,
			IntegrationOrdinates:        16,
			IdenticalBasisFunctions:     true,
			ExternalIntegralCalculation: external,
			PerformIntegration:          true,
			DimensionalCells:            []int{8},
		},
		functions: meshless.NewRBFFunctions(positions, utils.ConstArray(4, 1), utils.ConstArray(4, 1), meshless.Gaussian{}),
		planes: solid.BoundaryPlanes(limits, []*solid.BoundarySource{
			{Data: []float64{4}, Alpha: []float64{0}},
		}),
		geometry: solid.NewHomogeneous(1, testMaterial()),
		angular:  discretization.NewAngular(1, 1),
		energy:   discretization.NewEnergy(1),
	}
	return
}

// newSquareProblem places a 3x3 lattice of Wendland functions on [0, 2]^2.
func newSquareProblem(external bool) (p problem) {
	var (
		positions [][]float64
		radius    = 0.6
		limits    = [][2]float64{{0, 2}, {0, 2}}
	)
	for _, x := range []float64{0.5, 1, 1.5} {
		for _, y := range []float64{0.5, 1, 1.5} {
			positions = append(positions, []float64{x, y})
		}
	}
	N := len(positions)
	p = problem{
		options: Options{
			Weighting:                   WeightingFlat,
			IntegrationOrdinates:        16,
			IdenticalBasisFunctions:     true,
			ExternalIntegralCalculation: external,
			PerformIntegration:          true,
			DimensionalCells:            []int{20, 20},
		},
		functions: meshless.NewRBFFunctions(positions, utils.ConstArray(N, radius),
			utils.ConstArray(N, 1/radius), meshless.Wendland{Order: 4}),
		planes:   solid.BoundaryPlanes(limits, nil),
		geometry: solid.NewHomogeneous(2, testMaterial()),
		angular:  discretization.NewAngular(2, 1),
		energy:   discretization.NewEnergy(1),
	}
	if external {
		p.options.IntegrationOrdinates = 8
	}
	return
}

// newCubeProblem places a Wendland function of radius 0.8 on every corner
// of the unit cube, so each support reaches exactly three faces.
func newCubeProblem() (p problem) {
	var (
		positions [][]float64
		radius    = 0.8
	)
	for _, x := range []float64{0, 1} {
		for _, y := range []float64{0, 1} {
			for _, z := range []float64{0, 1} {
				positions = append(positions, []float64{x, y, z})
			}
		}
	}
	N := len(positions)
	p = problem{
		options: Options{
			Weighting:                   WeightingFlat,
			IntegrationOrdinates:        8,
			Normalized:                  true,
			IdenticalBasisFunctions:     true,
			ExternalIntegralCalculation: true,
			PerformIntegration:          true,
			DimensionalCells:            []int{6, 6, 6},
		},
		functions: meshless.NewRBFFunctions(positions, utils.ConstArray(N, radius),
			utils.ConstArray(N, 1/radius), meshless.Wendland{Order: 4}),
		planes:   solid.BoundaryPlanes([][2]float64{{0, 1}, {0, 1}, {0, 1}}, nil),
		geometry: solid.NewHomogeneous(3, testMaterial()),
		angular:  discretization.NewAngular(3, 1),
		energy:   discretization.NewEnergy(1),
	}
	return
}

// bruteForce integrates f over [lower, upper] split into n^D sub-boxes, with
// dimension dim fixed at position when dim >= 0.
func bruteForce(f func([]float64) float64, lower, upper []float64, n, dim int, position float64) (sum float64) {
	var (
		D     = len(lower)
		index = make([]int, D)
	)
	for k := 0; k < utils.IntProduct(utils.ConstIntArray(D, n)); k++ {
		rem := k
		for d := D - 1; d >= 0; d-- {
			index[d] = rem % n
			rem /= n
		}
		lo, hi := make([]float64, D), make([]float64, D)
		for d := 0; d < D; d++ {
			h := (upper[d] - lower[d]) / float64(n)
			lo[d] = lower[d] + float64(index[d])*h
			hi[d] = lo[d] + h
		}
		if dim < 0 {
			sum += quadrature.Box(4, lo, hi).Sum(f)
		} else if index[dim] == 0 {
			sum += quadrature.Face(4, lo, hi, dim, position).Sum(f)
		}
	}
	return
}

func (p problem) discretize() *WeakDiscretization {
	return NewWeakDiscretization(p.options, p.functions, nil, p.planes, p.geometry, p.angular, p.energy)
}

func compareIntegrals(t *testing.T, a, b Integrals, tol float64) {
	nearSlice(t, a.IsW, b.IsW, tol, "is_w")
	nearSlice(t, a.IsBW, b.IsBW, tol, "is_b_w")
	nearSlice(t, a.IvW, b.IvW, tol, "iv_w")
	nearSlice(t, a.IvDW, b.IvDW, tol, "iv_dw")
	nearSlice(t, a.IvBW, b.IvBW, tol, "iv_b_w")
	nearSlice(t, a.IvBDW, b.IvBDW, tol, "iv_b_dw")
	nearSlice(t, a.IvDBW, b.IvDBW, tol, "iv_db_w")
	nearSlice(t, a.IvDBDW, b.IvDBDW, tol, "iv_db_dw")
}

func TestMeshAndDirectAgree(t *testing.T) {
	{ // 1D Gaussian with aligned cells
		mesh := newLineProblem(WeightingFlat, true).discretize()
		direct := newLineProblem(WeightingFlat, false).discretize()
		require.NotNil(t, mesh.Mesh())
		assert.Nil(t, direct.Mesh())
		for i := 0; i < mesh.NumberOfPoints(); i++ {
			wm, wd := mesh.Weight(i), direct.Weight(i)
			assert.Equal(t, wd.BasisIndices(), wm.BasisIndices())
			compareIntegrals(t, wd.Integrals(), wm.Integrals(), 1.e-10)
			mm, md := wm.Material(), wd.Material()
			nearSlice(t, md.SigmaT.Data(), mm.SigmaT.Data(), 1.e-10, "sigma_t")
			nearSlice(t, md.SigmaS.Data(), mm.SigmaS.Data(), 1.e-10, "sigma_s")
			nearSlice(t, md.SigmaF.Data(), mm.SigmaF.Data(), 1.e-10, "sigma_f")
			nearSlice(t, md.InternalSource.Data(), mm.InternalSource.Data(), 1.e-10, "q")
		}
	}
	{ // 2D Wendland lattice touching every domain face
		mesh := newSquareProblem(true).discretize()
		direct := newSquareProblem(false).discretize()
		for i := 0; i < mesh.NumberOfPoints(); i++ {
			wm, wd := mesh.Weight(i), direct.Weight(i)
			require.Equal(t, wd.BasisIndices(), wm.BasisIndices())
			require.Equal(t, wd.NumberOfBoundarySurfaces(), wm.NumberOfBoundarySurfaces())
			compareIntegrals(t, wd.Integrals(), wm.Integrals(), 1.e-5)
		}
		// the center function reaches no face
		assert.Equal(t, 0, mesh.Weight(4).NumberOfBoundarySurfaces())
		assert.Equal(t, 2, mesh.Weight(0).NumberOfBoundarySurfaces())
		assert.Equal(t, 9, mesh.Weight(4).NumberOfBasisFunctions())
	}
}

func TestCubeIntegrals(t *testing.T) {
	var (
		wd           = newCubeProblem().discretize()
		lower, upper = []float64{0, 0, 0}, []float64{1, 1, 1}
		corner       = wd.Weight(0)
	)
	require.Equal(t, 8, wd.NumberOfPoints())
	require.NotNil(t, wd.Mesh())
	assert.Equal(t, 216, len(wd.Mesh().Cells))
	{ // Volume integral against a fine brute force rule
		ivw := bruteForce(corner.Function().Value, lower, upper, 16, -1, 0)
		assert.True(t, near(ivw, corner.Integrals().IvW[0], 1.e-5), "iv_w %v %v", ivw, corner.Integrals().IvW[0])
		for _, w := range wd.Weights() {
			assert.True(t, near(corner.Integrals().IvW[0], w.Integrals().IvW[0], 1.e-12))
			assert.True(t, near(2, w.Material().SigmaT.Data()[0], 1.e-12))
		}
	}
	{ // Each corner reaches its three faces with equal surface integrals
		var (
			isw = make([]float64, 3)
		)
		require.Equal(t, 3, corner.NumberOfBoundarySurfaces())
		for d := 0; d < 3; d++ {
			s := corner.LocalSurfaceIndex(d, -1)
			require.NotEqual(t, utils.DoesNotExist, s)
			isw[d] = corner.Integrals().IsW[s]
			assert.Equal(t, utils.DoesNotExist, corner.LocalSurfaceIndex(d, 1))
		}
		expected := bruteForce(corner.Function().Value, lower, upper, 16, 0, 0)
		for d := 0; d < 3; d++ {
			assert.True(t, near(expected, isw[d], 1.e-5), "is_w[%d] %v %v", d, expected, isw[d])
			assert.True(t, near(isw[0], isw[d], 1.e-12), "is_w[%d]", d)
		}
		far := wd.Weight(7)
		for d := 0; d < 3; d++ {
			s := far.LocalSurfaceIndex(d, 1)
			require.NotEqual(t, utils.DoesNotExist, s)
			assert.True(t, near(isw[0], far.Integrals().IsW[s], 1.e-12))
		}
	}
	{ // Opposite corners are sqrt(3) apart, beyond the summed radii of 1.6
		for i, w := range wd.Weights() {
			assert.Equal(t, 7, w.NumberOfBasisFunctions())
			assert.Equal(t, utils.DoesNotExist, w.LocalBasisIndex(7-i))
		}
	}
}

func TestLineIntegrals(t *testing.T) {
	wd := newLineProblem(WeightingFlat, true).discretize()
	assert.Equal(t, 4, wd.NumberOfPoints())
	assert.Equal(t, 1, wd.Dimension())
	assert.Equal(t, 1, wd.NumberOfDimensionalMoments())
	assert.Equal(t, [][2]float64{{-2, 2}}, wd.Options().Limits)
	assert.Equal(t, []int{2, 3, 3, 2}, wd.NumberOfBasisFunctions())
	{ // Volume integral of a truncated Gaussian clipped by the domain
		expected := 0.5 * math.Sqrt(math.Pi) * (math.Erf(1) + math.Erf(0.5))
		assert.True(t, near(expected, wd.Weight(0).Integrals().IvW[0], 1.e-12))
		assert.True(t, near(math.Sqrt(math.Pi)*math.Erf(1), wd.Weight(1).Integrals().IvW[0], 1.e-12))
	}
	{ // Surface integral in 1D is the value on the boundary
		w := wd.Weight(0)
		require.Equal(t, 1, w.NumberOfBoundarySurfaces())
		assert.True(t, near(w.Function().Value([]float64{-2}), w.Integrals().IsW[0], 1.e-14))
		assert.True(t, near(math.Exp(-0.25), w.Integrals().IsW[0], 1.e-14))
		assert.Equal(t, 0, w.LocalSurfaceIndex(0, -1))
		assert.Equal(t, utils.DoesNotExist, w.LocalSurfaceIndex(0, 1))
		// basis at -0.5 does not reach the boundary
		j := w.LocalBasisIndex(1)
		require.Equal(t, 1, j)
		assert.Equal(t, 0., w.Integrals().IsBW[0+1*j])
		assert.True(t, near(math.Exp(-0.5), w.Integrals().IsBW[0+1*w.LocalBasisIndex(0)], 1.e-14))
		assert.Equal(t, utils.DoesNotExist, w.LocalBasisIndex(3))
	}
	{ // Boundary sources are scaled by the surface integral
		w := wd.Weight(3)
		require.Equal(t, 1, len(w.BoundarySources()))
		bs := w.BoundarySources()[0]
		assert.Equal(t, 0+1*3, bs.Index)
		assert.True(t, near(4*w.Integrals().IsW[0], bs.Data[0], 1.e-14))
		assert.Equal(t, []float64{0}, bs.Alpha)
		assert.Empty(t, wd.Weight(1).BoundarySources())
	}
	{ // Values at the weight center
		w := wd.Weight(1)
		v := w.Values()
		assert.Equal(t, []int{0, 1, 2}, w.BasisIndices())
		assert.True(t, near(math.Exp(-1), v.Vb[0], 1.e-14))
		assert.Equal(t, 1., v.Vb[1])
		assert.True(t, near(2*math.Exp(-1), v.Vdb[2], 1.e-14))
	}
}

func TestWeightings(t *testing.T) {
	{ // Flat
		wd := newLineProblem(WeightingFlat, true).discretize()
		for _, w := range wd.Weights() {
			iv := w.Integrals().IvW[0]
			m := w.Material()
			assert.True(t, near(2*iv, m.SigmaT.Data()[0], 1.e-12))
			assert.True(t, near(0.5*iv, m.SigmaS.Data()[0], 1.e-12))
			assert.True(t, near(0.25*iv, m.SigmaF.Data()[0], 1.e-12))
			assert.True(t, near(3*iv, m.InternalSource.Data()[0], 1.e-12))
			assert.Equal(t, []float64{1}, m.Nu.Data())
			assert.Equal(t, []float64{1}, m.Chi.Data())
			assert.Equal(t, material.Dependencies{}, m.Nu.Dependencies)
			assert.Equal(t, material.GroupToGroup, m.SigmaF.Dependencies.Energy)
		}
	}
	{ // Flat, normalized
		p := newLineProblem(WeightingFlat, true)
		p.options.Normalized = true
		wd := p.discretize()
		for i, w := range wd.Weights() {
			m := wd.Material(i)
			assert.True(t, near(2, m.SigmaT.Data()[0], 1.e-12))
			assert.True(t, near(0.5, m.SigmaS.Data()[0], 1.e-12))
			// the internal source is never normalized
			assert.True(t, near(3*w.Integrals().IvW[0], m.InternalSource.Data()[0], 1.e-12))
		}
	}
	{ // Basis weighting collocates on the basis functions
		wd := newLineProblem(WeightingBasis, true).discretize()
		for _, w := range wd.Weights() {
			m := w.Material()
			assert.Equal(t, material.Basis, m.SigmaT.Dependencies.Spatial)
			assert.Equal(t, 1, m.SigmaT.Len())
			assert.True(t, near(2*w.Integrals().IvW[0], m.SigmaT.Data()[0], 1.e-12))
			assert.Equal(t, material.Point, m.InternalSource.Dependencies.Spatial)
		}
	}
	{ // Full weighting keeps one value per local basis function
		wd := newLineProblem(WeightingFull, true).discretize()
		for _, w := range wd.Weights() {
			m := w.Material()
			nb := w.NumberOfBasisFunctions()
			assert.Equal(t, material.BasisWeight, m.SigmaT.Dependencies.Spatial)
			require.Equal(t, nb, m.SigmaT.Len())
			assert.Equal(t, nb, m.SigmaS.Len())
			assert.Equal(t, nb, m.SigmaF.Len())
			assert.Equal(t, 1, m.InternalSource.Len())
			for j := 0; j < nb; j++ {
				assert.True(t, near(2*w.Integrals().IvBW[j], m.SigmaT.Data()[j], 1.e-12))
				assert.True(t, near(0.25*w.Integrals().IvBW[j], m.SigmaF.Data()[j], 1.e-12))
			}
		}
	}
	{ // Flux weighting with a uniform expansion recovers the point values
		p := newLineProblem(WeightingFlux, true)
		p.options.Normalized = true
		p.options.FluxCoefficients = utils.ConstArray(4, 1)
		wd := p.discretize()
		for _, w := range wd.Weights() {
			m := w.Material()
			assert.Equal(t, material.Moments, m.SigmaT.Dependencies.Angular)
			assert.True(t, near(2, m.SigmaT.Data()[0], 1.e-12))
			assert.True(t, near(0.5, m.SigmaS.Data()[0], 1.e-12))
			assert.True(t, near(0.25, m.SigmaF.Data()[0], 1.e-12))
			assert.True(t, near(3*w.Integrals().IvW[0], m.InternalSource.Data()[0], 1.e-12))
		}
	}
	{ // Flux coefficients must cover every basis function
		for _, fc := range [][]float64{{1}, utils.ConstArray(3, 1), utils.ConstArray(8, 1)} {
			p := newLineProblem(WeightingFlux, true)
			p.options.FluxCoefficients = fc
			assert.Panics(t, func() { p.discretize() })
		}
	}
	{ // Point weighting scales the center material
		wd := newLineProblem(WeightingPoint, false).discretize()
		for _, w := range wd.Weights() {
			m := w.Material()
			assert.True(t, near(2*w.Integrals().IvW[0], m.SigmaT.Data()[0], 1.e-12))
			assert.True(t, near(3*w.Integrals().IvW[0], m.InternalSource.Data()[0], 1.e-12))
		}
		p := newLineProblem(WeightingPoint, false)
		p.options.Normalized = true
		wd = p.discretize()
		for _, w := range wd.Weights() {
			assert.True(t, near(2, w.Material().SigmaT.Data()[0], 1.e-12))
		}
	}
}

func TestSUPG(t *testing.T) {
	{ // Dimensional moments follow the weight gradient
		p := newLineProblem(WeightingFlat, true)
		p.options.IncludeSUPG = true
		p.options.TauScaling = TauConstant
		p.options.TauConst = 0.4
		wd := p.discretize()
		assert.Equal(t, 2, wd.NumberOfDimensionalMoments())
		for _, w := range wd.Weights() {
			assert.Equal(t, 0.4, w.Tau())
			m := w.Material()
			require.Equal(t, 2, m.SigmaT.Len())
			assert.Equal(t, material.SUPG, m.SigmaT.Dependencies.Dimensional)
			assert.True(t, near(2*w.Integrals().IvW[0], m.SigmaT.Data()[0], 1.e-12))
			assert.True(t, near(2*w.Integrals().IvDW[0], m.SigmaT.Data()[1], 1.e-12))
			assert.Equal(t, 2, m.InternalSource.Len())
		}
		// the direct path agrees
		p.options.ExternalIntegralCalculation = false
		direct := p.discretize()
		for i, w := range direct.Weights() {
			nearSlice(t, w.Material().SigmaT.Data(), wd.Material(i).SigmaT.Data(), 1.e-10, "sigma_t")
		}
	}
	{ // Linear scaling by the distance to the nearest face
		p := newLineProblem(WeightingFlat, true)
		p.options.IncludeSUPG = true
		p.options.TauScaling = TauLinear
		p.options.TauConst = 0.4
		p.options.PerformIntegration = false
		wd := p.discretize()
		assert.True(t, near(0.2, wd.Weight(0).Tau(), 1.e-14))
		assert.True(t, near(0.4, wd.Weight(1).Tau(), 1.e-14))
		assert.True(t, near(0.2, wd.Weight(3).Tau(), 1.e-14))
	}
	{ // Absolute scaling removes stabilization next to a face
		p := newLineProblem(WeightingFlat, true)
		p.options.IncludeSUPG = true
		p.options.TauScaling = TauAbsolute
		p.options.TauConst = 0.4
		p.options.PerformIntegration = false
		wd := p.discretize()
		assert.Equal(t, 0., wd.Weight(0).Tau())
		assert.Equal(t, 0.4, wd.Weight(2).Tau())
	}
}

func TestAssembleIntegrals(t *testing.T) {
	wd := newLineProblem(WeightingFlat, true).discretize()
	mass, stiffness := wd.AssembleIntegrals()
	r, c := mass.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 4, c)
	assert.Equal(t, 10, mass.NNZ())
	assert.Equal(t, 10, stiffness.NNZ())
	for i := 0; i < 4; i++ {
		w := wd.Weight(i)
		for j, b := range w.BasisIndices() {
			assert.Equal(t, w.Integrals().IvBW[j], mass.At(i, b))
			assert.Equal(t, w.Integrals().IvDBDW[j], stiffness.At(i, b))
		}
		for j := 0; j < 4; j++ {
			assert.True(t, near(mass.At(i, j), mass.At(j, i), 1.e-12))
			assert.True(t, near(stiffness.At(i, j), stiffness.At(j, i), 1.e-12))
		}
	}
	assert.Equal(t, 0., mass.At(0, 2))
	// rows of the mass matrix integrate the weight against the summed basis
	sums := mass.RowSums()
	nearSlice(t, sums, mass.MulVec(utils.ConstArray(4, 1)), 1.e-14, "row sums")
}

func TestDiscretizationContracts(t *testing.T) {
	{ // Point weighting is not available on a background mesh
		assert.Panics(t, func() { newLineProblem(WeightingPoint, true).discretize() })
	}
	{ // Flux and full weighting are not available without one
		assert.Panics(t, func() { newLineProblem(WeightingFlux, false).discretize() })
		assert.Panics(t, func() { newLineProblem(WeightingFull, false).discretize() })
	}
	{ // Flux weighting needs coefficients
		assert.Panics(t, func() { newLineProblem(WeightingFlux, true).discretize() })
	}
	{ // Integrals are unavailable until integration and set only once
		p := newLineProblem(WeightingFlat, true)
		p.options.PerformIntegration = false
		wd := p.discretize()
		assert.Nil(t, wd.Mesh())
		assert.False(t, wd.Weight(0).Integrated())
		assert.Panics(t, func() { wd.Weight(0).Integrals() })
		assert.Panics(t, func() { wd.Weight(0).Material() })
		e := NewEngine(wd.Options(), wd.Weights(), wd.Bases(), p.geometry, p.angular, p.energy)
		assert.Panics(t, func() { e.Integrate(WeightingFlat, 3, false) })
		e.Integrate(WeightingFlat, 1, false)
		assert.True(t, wd.Weight(0).Integrated())
		assert.Panics(t, func() { e.Integrate(WeightingFlat, 1, false) })
		assert.Panics(t, func() { wd.Weight(0).SetIntegrals(wd.Weight(0).Integrals(), wd.Material(0)) })
	}
	{ // Direct integration is not available in 3D
		var (
			limits = [][2]float64{{0, 1}, {0, 1}, {0, 1}}
			fs     = meshless.NewRBFFunctions([][]float64{{0.5, 0.5, 0.5}}, []float64{0.3}, []float64{1}, meshless.Gaussian{})
			opts   = Options{Weighting: WeightingFlat, IntegrationOrdinates: 4, IdenticalBasisFunctions: true, PerformIntegration: true}
		)
		assert.Panics(t, func() {
			NewWeakDiscretization(opts, fs, nil, solid.BoundaryPlanes(limits, nil),
				solid.NewHomogeneous(3, testMaterial()), discretization.NewAngular(3, 1), discretization.NewEnergy(1))
		})
	}
	{ // Mismatched function sets
		p := newLineProblem(WeightingFlat, true)
		p.options.IdenticalBasisFunctions = false
		assert.Panics(t, func() {
			NewWeakDiscretization(p.options, p.functions, p.functions[:2], p.planes, p.geometry, p.angular, p.energy)
		})
		assert.Panics(t, func() {
			NewWeakDiscretization(p.options, nil, nil, p.planes, p.geometry, p.angular, p.energy)
		})
		assert.Panics(t, func() {
			NewWeakDiscretization(p.options, p.functions, p.functions, p.planes[:1], p.geometry, p.angular, p.energy)
		})
	}
}

func TestDistinctBasisFunctions(t *testing.T) {
	// wider basis functions than weight functions
	p := newLineProblem(WeightingFlat, true)
	p.options.IdenticalBasisFunctions = false
	bases := meshless.NewRBFFunctions([][]float64{{-1.5}, {-0.5}, {0.5}, {1.5}},
		utils.ConstArray(4, 1.5), utils.ConstArray(4, 1), meshless.Gaussian{})
	mesh := NewWeakDiscretization(p.options, p.functions, bases, p.planes, p.geometry, p.angular, p.energy)
	assert.Equal(t, []int{0, 1, 2}, mesh.Weight(0).BasisIndices())
	assert.Equal(t, []int{0, 1, 2, 3}, mesh.Weight(1).BasisIndices())
	assert.Equal(t, 1, mesh.Basis(0).NumberOfBoundarySurfaces())
	p.options.ExternalIntegralCalculation = false
	direct := NewWeakDiscretization(p.options, p.functions, bases, p.planes, p.geometry, p.angular, p.energy)
	for i := 0; i < 4; i++ {
		nearSlice(t, direct.Weight(i).Integrals().IvW, mesh.Weight(i).Integrals().IvW, 1.e-10, "iv_w")
		nearSlice(t, direct.Weight(i).Integrals().IsW, mesh.Weight(i).Integrals().IsW, 1.e-10, "is_w")
		nearSlice(t, direct.Weight(i).Integrals().IvBW, mesh.Weight(i).Integrals().IvBW, 1.e-10, "iv_b_w")
	}
}

func TestNormalizedFunctions(t *testing.T) {
	{ // Shepard functions on the mesh form a partition of unity
		p := newLineProblem(WeightingFlat, true)
		p.functions = meshless.NewNormalizedFunctions(p.functions, meshless.Shepard{})
		wd := p.discretize()
		var total float64
		for _, w := range wd.Weights() {
			total += w.Integrals().IvW[0]
		}
		assert.True(t, near(4, total, 1.e-10))
	}
	{ // They cannot be integrated one weight at a time
		p := newLineProblem(WeightingFlat, false)
		p.functions = meshless.NewNormalizedFunctions(p.functions, meshless.Shepard{})
		assert.Panics(t, func() { p.discretize() })
	}
}

package spatial

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/ibex/discretization"
	"github.com/notargets/ibex/material"
	"github.com/notargets/ibex/meshless"
	"github.com/notargets/ibex/solid"
	"github.com/notargets/ibex/utils"
)

// Integrals of one weight function against itself and its basis functions.
// Indices are s for the weight's own boundary surfaces, i for its local basis
// functions and d for dimensions:
//
//	IsW[s], IsBW[s+ns*i], IvW[0], IvDW[d], IvBW[i],
//	IvBDW[d+D*i], IvDBW[d+D*i], IvDBDW[db+D*(dw+D*i)]
type Integrals struct {
	IsW    []float64
	IsBW   []float64
	IvW    []float64
	IvDW   []float64
	IvBW   []float64
	IvBDW  []float64
	IvDBW  []float64
	IvDBDW []float64
}

func NewIntegrals(dimension, numberOfSurfaces, numberOfBases int) Integrals {
	return Integrals{
		IsW:    make([]float64, numberOfSurfaces),
		IsBW:   make([]float64, numberOfSurfaces*numberOfBases),
		IvW:    make([]float64, 1),
		IvDW:   make([]float64, dimension),
		IvBW:   make([]float64, numberOfBases),
		IvBDW:  make([]float64, dimension*numberOfBases),
		IvDBW:  make([]float64, dimension*numberOfBases),
		IvDBDW: make([]float64, dimension*dimension*numberOfBases),
	}
}

// Add merges o into in. Surface integrals are merged only when o carries
// them; cell-local volume integrals have none.
func (in *Integrals) Add(o Integrals) {
	if len(o.IsW) != 0 {
		floats.Add(in.IsW, o.IsW)
		floats.Add(in.IsBW, o.IsBW)
	}
	floats.Add(in.IvW, o.IvW)
	floats.Add(in.IvDW, o.IvDW)
	floats.Add(in.IvBW, o.IvBW)
	floats.Add(in.IvBDW, o.IvBDW)
	floats.Add(in.IvDBW, o.IvDBW)
	floats.Add(in.IvDBDW, o.IvDBDW)
}

// Values of the basis functions at the weight center, Vb[i] and Vdb[d+D*i].
type Values struct {
	Vb  []float64
	Vdb []float64
}

// WeightFunction is a test function with the basis functions it overlaps.
// It receives its integrals and material exactly once.
type WeightFunction struct {
	index            int
	dimension        int
	options          Options
	function         meshless.Function
	bases            []*BasisFunction
	basisGlobal      map[int]int
	boundarySurfaces []*solid.CartesianPlane
	localSurfaces    []int
	minLimits        []float64
	maxLimits        []float64
	tauConst, tau    float64
	geometry         solid.Geometry
	angular          *discretization.Angular
	energy           *discretization.Energy
	values           Values
	integrals        Integrals
	material         *material.Material
	boundarySources  []*solid.BoundarySource
	integrated       bool
}

// NewWeightFunction sets up boundary limits, basis lookups and SUPG
// parameters. Unless integration happens on a background mesh the integrals
// and material are computed here.
func NewWeightFunction(index int, options Options, function meshless.Function, bases []*BasisFunction,
	boundarySurfaces []*solid.CartesianPlane, geometry solid.Geometry,
	angular *discretization.Angular, energy *discretization.Energy) (w *WeightFunction) {
	var (
		D   = function.Dimension()
		lim = 0.5 * math.MaxFloat64
	)
	w = &WeightFunction{
		index:            index,
		dimension:        D,
		options:          options,
		function:         function,
		bases:            bases,
		basisGlobal:      make(map[int]int, len(bases)),
		boundarySurfaces: boundarySurfaces,
		localSurfaces:    utils.ConstIntArray(2*D, utils.DoesNotExist),
		minLimits:        utils.ConstArray(D, -lim),
		maxLimits:        utils.ConstArray(D, lim),
		tauConst:         options.TauConst,
		geometry:         geometry,
		angular:          angular,
		energy:           energy,
	}
	if geometry != nil && geometry.Dimension() != D {
		panic(fmt.Errorf("weight function %d has dimension %d, geometry has dimension %d", index, D, geometry.Dimension()))
	}
	for s, surface := range boundarySurfaces {
		dim := surface.SurfaceDimension
		if surface.Normal < 0 {
			w.minLimits[dim] = math.Max(w.minLimits[dim], surface.Position)
			w.localSurfaces[2*dim] = s
		} else {
			w.maxLimits[dim] = math.Min(w.maxLimits[dim], surface.Position)
			w.localSurfaces[1+2*dim] = s
		}
	}
	for i, b := range bases {
		w.basisGlobal[b.Index()] = i
	}
	if options.IncludeSUPG {
		w.setTau()
	}
	w.calculateValues()
	if options.PerformIntegration && !options.ExternalIntegralCalculation {
		w.integrateDirect()
	}
	return
}

func (w *WeightFunction) setTau() {
	if len(w.boundarySurfaces) > 0 {
		var (
			closest  *solid.CartesianPlane
			minDist  = math.MaxFloat64
			position = w.function.Position()
			ratio    = 1.
		)
		for _, surface := range w.boundarySurfaces {
			if dist := surface.Distance(position); dist < minDist {
				closest, minDist = surface, dist
			}
		}
		switch w.options.TauScaling {
		case TauAbsolute:
			ratio = 0
		case TauLinear:
			ratio = minDist / w.function.Radius()
		case TauFunctional:
			bPosition := append([]float64(nil), position...)
			bPosition[closest.SurfaceDimension] = closest.Position
			ratio = w.function.Value(bPosition) / w.function.Value(position)
		}
		ratio = math.Max(0, math.Min(1, ratio))
		w.tauConst *= ratio
	}
	if w.options.TauScaling == TauConstant {
		w.tau = w.tauConst
	} else {
		w.tau = w.tauConst / w.function.Shape()
	}
}

func (w *WeightFunction) calculateValues() {
	var (
		D        = w.dimension
		nb       = len(w.bases)
		position = w.function.Position()
	)
	w.values = Values{
		Vb:  make([]float64, nb),
		Vdb: make([]float64, nb*D),
	}
	for i, b := range w.bases {
		w.values.Vb[i] = b.Function().Value(position)
		grad := b.Function().Gradient(position)
		for d := 0; d < D; d++ {
			w.values.Vdb[d+D*i] = grad[d]
		}
	}
}

func (w *WeightFunction) Index() int                  { return w.index }
func (w *WeightFunction) Dimension() int              { return w.dimension }
func (w *WeightFunction) Function() meshless.Function { return w.function }
func (w *WeightFunction) Position() []float64         { return w.function.Position() }
func (w *WeightFunction) Radius() float64             { return w.function.Radius() }
func (w *WeightFunction) NumberOfBasisFunctions() int { return len(w.bases) }
func (w *WeightFunction) Basis(i int) *BasisFunction  { return w.bases[i] }
func (w *WeightFunction) Tau() float64                { return w.tau }
func (w *WeightFunction) Values() Values              { return w.values }
func (w *WeightFunction) Integrated() bool            { return w.integrated }
func (w *WeightFunction) NumberOfBoundarySurfaces() int {
	return len(w.boundarySurfaces)
}
func (w *WeightFunction) BoundarySurfaces() []*solid.CartesianPlane { return w.boundarySurfaces }
func (w *WeightFunction) BoundarySources() []*solid.BoundarySource  { return w.boundarySources }

// BasisIndices returns the global indices of the local basis functions.
func (w *WeightFunction) BasisIndices() (indices []int) {
	indices = make([]int, len(w.bases))
	for i, b := range w.bases {
		indices[i] = b.Index()
	}
	return
}

func (w *WeightFunction) Integrals() Integrals {
	w.checkIntegrated()
	return w.integrals
}

func (w *WeightFunction) Material() *material.Material {
	w.checkIntegrated()
	return w.material
}

func (w *WeightFunction) checkIntegrated() {
	if !w.integrated {
		panic(fmt.Errorf("weight function %d has not been integrated", w.index))
	}
}

// LocalBasisIndex maps a global basis index to its position in this weight
// function's basis list, or DoesNotExist.
func (w *WeightFunction) LocalBasisIndex(global int) int {
	if i, ok := w.basisGlobal[global]; ok {
		return i
	}
	return utils.DoesNotExist
}

// LocalSurfaceIndex returns the index of the weight's own boundary surface
// with the given normal dimension and sign, or DoesNotExist.
func (w *WeightFunction) LocalSurfaceIndex(surfaceDimension int, normal float64) int {
	if normal < 0 {
		return w.localSurfaces[2*surfaceDimension]
	}
	return w.localSurfaces[1+2*surfaceDimension]
}

// SetIntegrals stores the integrals and material, derives the boundary
// sources and marks the function integrated.
func (w *WeightFunction) SetIntegrals(integrals Integrals, mat *material.Material) {
	if w.integrated {
		panic(fmt.Errorf("weight function %d integrated twice", w.index))
	}
	w.integrals = integrals
	w.material = mat
	w.calculateBoundarySources()
	w.checkInvariants()
	w.integrated = true
}

func (w *WeightFunction) calculateBoundarySources() {
	var (
		ns = len(w.boundarySurfaces)
	)
	w.boundarySources = make([]*solid.BoundarySource, ns)
	for s, surface := range w.boundarySurfaces {
		bs := &solid.BoundarySource{Index: s + ns*w.index}
		if src := surface.Source; src != nil {
			bs.Data = make([]float64, len(src.Data))
			for i, v := range src.Data {
				bs.Data[i] = v * w.integrals.IsW[s]
			}
			bs.Alpha = src.Alpha
		}
		w.boundarySources[s] = bs
	}
}

func (w *WeightFunction) checkInvariants() {
	var (
		D        = w.dimension
		ns       = len(w.boundarySurfaces)
		nb       = len(w.bases)
		position = w.function.Position()
		in       = w.integrals
	)
	for _, surface := range w.boundarySurfaces {
		if surface.Distance(position) > w.function.Radius() {
			panic(fmt.Errorf("weight function %d does not reach boundary surface %d", w.index, surface.Index))
		}
	}
	if w.material == nil {
		panic(fmt.Errorf("weight function %d has no material", w.index))
	}
	check := func(name string, v []float64, size int) {
		if len(v) != size {
			panic(fmt.Errorf("weight function %d: %s has size %d, expected %d", w.index, name, len(v), size))
		}
	}
	check("is_w", in.IsW, ns)
	check("is_b_w", in.IsBW, ns*nb)
	check("iv_w", in.IvW, 1)
	check("iv_dw", in.IvDW, D)
	check("iv_b_w", in.IvBW, nb)
	check("iv_b_dw", in.IvBDW, nb*D)
	check("iv_db_w", in.IvDBW, nb*D)
	check("iv_db_dw", in.IvDBDW, nb*D*D)
	check("v_b", w.values.Vb, nb)
	check("v_db", w.values.Vdb, nb*D)
	utils.IsNanPanic([][]float64{in.IsW, in.IsBW, in.IvW, in.IvDW, in.IvBW, in.IvBDW, in.IvDBW, in.IvDBDW})
	if len(w.boundarySources) != ns {
		panic(fmt.Errorf("weight function %d has %d boundary sources for %d surfaces", w.index, len(w.boundarySources), ns))
	}
}

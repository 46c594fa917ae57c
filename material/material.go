package material

import (
	"fmt"
)

// CrossSection is a flat coefficient array tagged with its dependencies.
type CrossSection struct {
	Dependencies Dependencies
	data         []float64
}

func NewCrossSection(dep Dependencies, shape Shape, data []float64) CrossSection {
	if size := dep.Size(shape); size != len(data) {
		panic(fmt.Errorf("cross section with %v requires %d coefficients, have %d", dep, size, len(data)))
	}
	return CrossSection{Dependencies: dep, data: data}
}

// Data returns the stored coefficients without copying.
func (cs CrossSection) Data() []float64 { return cs.data }

func (cs CrossSection) Len() int { return len(cs.data) }

// Material is the set of cross sections at one point.
type Material struct {
	Index          int
	Shape          Shape
	SigmaT         CrossSection
	SigmaS         CrossSection
	Nu             CrossSection
	SigmaF         CrossSection
	Chi            CrossSection
	InternalSource CrossSection
}

func NewMaterial(index int, shape Shape, sigmaT, sigmaS, nu, sigmaF, chi, internalSource CrossSection) *Material {
	return &Material{
		Index:          index,
		Shape:          shape,
		SigmaT:         sigmaT,
		SigmaS:         sigmaS,
		Nu:             nu,
		SigmaF:         sigmaF,
		Chi:            chi,
		InternalSource: internalSource,
	}
}

// NewStandardMaterial builds a point material from group-wise data:
// sigmaT[g], sigmaS[gf+G*(gt+G*l)], nu[g], sigmaF[g], chi[g] and the
// internal source q[g+G*m].
func NewStandardMaterial(index, groups, scatteringMoments, moments int, sigmaT, sigmaS, nu, sigmaF, chi, q []float64) *Material {
	var (
		shape = Shape{
			Groups:             groups,
			Moments:            moments,
			ScatteringMoments:  scatteringMoments,
			DimensionalMoments: 1,
			BasisFunctions:     1,
		}
		groupDep = Dependencies{Energy: Group}
	)
	return NewMaterial(index, shape,
		NewCrossSection(groupDep, shape, sigmaT),
		NewCrossSection(Dependencies{Angular: ScatteringMoments, Energy: GroupToGroup}, shape, sigmaS),
		NewCrossSection(groupDep, shape, nu),
		NewCrossSection(groupDep, shape, sigmaF),
		NewCrossSection(groupDep, shape, chi),
		NewCrossSection(Dependencies{Angular: Moments, Energy: Group}, shape, q))
}

// FissionMatrix returns chi*nu*sigma_f as a group to group array indexed
// [gf+G*gt]. A sigma_f that is already group to group is returned as is.
func (m *Material) FissionMatrix() (fission []float64) {
	var (
		G = m.Shape.Groups
	)
	if m.SigmaF.Dependencies.Energy == GroupToGroup {
		return m.SigmaF.Data()
	}
	var (
		nu     = m.Nu.Data()
		sigmaF = m.SigmaF.Data()
		chi    = m.Chi.Data()
	)
	if len(nu) != G || len(sigmaF) != G || len(chi) != G {
		panic(fmt.Errorf("fission expansion requires group-wise nu, sigma_f and chi of length %d", G))
	}
	fission = make([]float64, G*G)
	for gt := 0; gt < G; gt++ {
		for gf := 0; gf < G; gf++ {
			fission[gf+G*gt] = chi[gt] * nu[gf] * sigmaF[gf]
		}
	}
	return
}

package material

import (
	"fmt"
	"strings"
)

type Angular uint8

const (
	AngularNone Angular = iota
	Moments
	ScatteringMoments
)

type Energy uint8

const (
	EnergyNone Energy = iota
	Group
	GroupToGroup
)

type Dimensional uint8

const (
	DimensionalNone Dimensional = iota
	SUPG
)

type Spatial uint8

const (
	Point Spatial = iota
	Basis
	BasisWeight
)

var (
	angularNames     = map[Angular]string{AngularNone: "none", Moments: "moments", ScatteringMoments: "scattering_moments"}
	energyNames      = map[Energy]string{EnergyNone: "none", Group: "group", GroupToGroup: "group_to_group"}
	dimensionalNames = map[Dimensional]string{DimensionalNone: "none", SUPG: "supg"}
	spatialNames     = map[Spatial]string{Point: "point", Basis: "basis", BasisWeight: "basis_weight"}
)

func (a Angular) String() string     { return angularNames[a] }
func (e Energy) String() string      { return energyNames[e] }
func (d Dimensional) String() string { return dimensionalNames[d] }
func (s Spatial) String() string     { return spatialNames[s] }

func parse[T comparable](kind, label string, names map[T]string) (t T, err error) {
	label = strings.ToLower(strings.TrimSpace(label))
	for key, name := range names {
		if name == label {
			return key, nil
		}
	}
	err = fmt.Errorf("unknown %s dependency: %q", kind, label)
	return
}

func ParseAngular(label string) (Angular, error) { return parse("angular", label, angularNames) }
func ParseEnergy(label string) (Energy, error)   { return parse("energy", label, energyNames) }
func ParseDimensional(label string) (Dimensional, error) {
	return parse("dimensional", label, dimensionalNames)
}
func ParseSpatial(label string) (Spatial, error) { return parse("spatial", label, spatialNames) }

// Dependencies describes which indices a flat cross section array carries.
// Indices are stored fastest first: dimensional moment, energy (from group
// then to group), angular, spatial basis.
type Dependencies struct {
	Angular     Angular
	Energy      Energy
	Dimensional Dimensional
	Spatial     Spatial
}

// Shape holds the extent of every index a cross section may depend on.
type Shape struct {
	Groups             int
	Moments            int
	ScatteringMoments  int
	DimensionalMoments int
	BasisFunctions     int
}

func (dep Dependencies) String() string {
	return fmt.Sprintf("angular=%s energy=%s dimensional=%s spatial=%s",
		dep.Angular, dep.Energy, dep.Dimensional, dep.Spatial)
}

// Size is the number of coefficients required for the dependencies.
func (dep Dependencies) Size(shape Shape) (size int) {
	size = 1
	switch dep.Angular {
	case Moments:
		size *= shape.Moments
	case ScatteringMoments:
		size *= shape.ScatteringMoments
	}
	switch dep.Energy {
	case Group:
		size *= shape.Groups
	case GroupToGroup:
		size *= shape.Groups * shape.Groups
	}
	if dep.Dimensional == SUPG {
		size *= shape.DimensionalMoments
	}
	if dep.Spatial == BasisWeight {
		size *= shape.BasisFunctions
	}
	return
}

package discretization

import (
	"fmt"
	"math"
)

// Angular holds the spherical harmonic moment bookkeeping for a given
// spatial dimension and number of scattering moments.
type Angular struct {
	Dimension                 int
	NumberOfScatteringMoments int
	scatteringIndices         []int
	harmonicDegrees           []int
	harmonicOrders            []int
}

func NewAngular(dimension, numberOfScatteringMoments int) (ad *Angular) {
	if dimension < 1 || dimension > 3 {
		panic(fmt.Errorf("angular dimension must be 1, 2 or 3, have %d", dimension))
	}
	if numberOfScatteringMoments < 1 {
		panic(fmt.Errorf("number of scattering moments must be positive, have %d", numberOfScatteringMoments))
	}
	ad = &Angular{
		Dimension:                 dimension,
		NumberOfScatteringMoments: numberOfScatteringMoments,
	}
	for l := 0; l < numberOfScatteringMoments; l++ {
		switch dimension {
		case 1:
			ad.addMoment(l, 0)
		case 2:
			for m := 0; m <= l; m++ {
				ad.addMoment(l, m)
			}
		case 3:
			for m := -l; m <= l; m++ {
				ad.addMoment(l, m)
			}
		}
	}
	return
}

func (ad *Angular) addMoment(l, m int) {
	ad.scatteringIndices = append(ad.scatteringIndices, l)
	ad.harmonicDegrees = append(ad.harmonicDegrees, l)
	ad.harmonicOrders = append(ad.harmonicOrders, m)
}

func (ad *Angular) NumberOfMoments() int { return len(ad.harmonicDegrees) }

// ScatteringIndices returns the scattering moment l of each angular moment.
func (ad *Angular) ScatteringIndices() []int { return ad.scatteringIndices }

func (ad *Angular) HarmonicDegrees() []int { return ad.harmonicDegrees }

func (ad *Angular) HarmonicOrders() []int { return ad.harmonicOrders }

// AngularNormalization is the measure of the direction space: 2 in slab
// geometry, 2 pi in 2D and 4 pi in 3D.
func (ad *Angular) AngularNormalization() float64 {
	switch ad.Dimension {
	case 1:
		return 2
	case 2:
		return 2 * math.Pi
	default:
		return 4 * math.Pi
	}
}

// Energy is a multigroup energy discretization.
type Energy struct {
	NumberOfGroups int
}

func NewEnergy(numberOfGroups int) *Energy {
	if numberOfGroups < 1 {
		panic(fmt.Errorf("number of groups must be positive, have %d", numberOfGroups))
	}
	return &Energy{NumberOfGroups: numberOfGroups}
}

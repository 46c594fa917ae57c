package spatial

import (
	"fmt"
	"strings"
)

// Weighting selects how cross sections are averaged against the weight functions.
type Weighting uint8

const (
	WeightingPoint Weighting = iota
	WeightingFlat
	WeightingFlux
	WeightingFull
	WeightingBasis
)

// TauScaling selects how the SUPG stabilization parameter is scaled near
// the domain boundary.
type TauScaling uint8

const (
	TauNone TauScaling = iota
	TauConstant
	TauAbsolute
	TauLinear
	TauFunctional
)

var (
	weightingNames = map[Weighting]string{
		WeightingPoint: "point",
		WeightingFlat:  "flat",
		WeightingFlux:  "flux",
		WeightingFull:  "full",
		WeightingBasis: "basis",
	}
	tauScalingNames = map[TauScaling]string{
		TauNone:       "none",
		TauConstant:   "constant",
		TauAbsolute:   "absolute",
		TauLinear:     "linear",
		TauFunctional: "functional",
	}
)

func (w Weighting) String() string  { return weightingNames[w] }
func (t TauScaling) String() string { return tauScalingNames[t] }

func ParseWeighting(label string) (w Weighting, err error) {
	label = strings.ToLower(strings.TrimSpace(label))
	for key, name := range weightingNames {
		if name == label {
			return key, nil
		}
	}
	err = fmt.Errorf("unknown weighting: %q", label)
	return
}

func ParseTauScaling(label string) (t TauScaling, err error) {
	label = strings.ToLower(strings.TrimSpace(label))
	for key, name := range tauScalingNames {
		if name == label {
			return key, nil
		}
	}
	err = fmt.Errorf("unknown tau scaling: %q", label)
	return
}

// Options configure a weak spatial discretization.
type Options struct {
	Weighting               Weighting
	TauScaling              TauScaling
	IntegrationOrdinates    int // Gauss-Legendre points per dimension
	Normalized              bool
	IncludeSUPG             bool
	IdenticalBasisFunctions bool
	// ExternalIntegralCalculation integrates on a background mesh instead of
	// per weight function.
	ExternalIntegralCalculation bool
	PerformIntegration          bool
	Limits                      [][2]float64
	DimensionalCells            []int
	ParallelDegree              int // zero uses every CPU
	TauConst                    float64
	// FluxCoefficients are indexed [g+G*(m+M*j)] for basis function j and
	// are required by flux weighting.
	FluxCoefficients []float64
}

// NumberOfDimensionalMoments is D+1 with SUPG and 1 otherwise.
func (o *Options) NumberOfDimensionalMoments(dimension int) int {
	if o.IncludeSUPG {
		return dimension + 1
	}
	return 1
}

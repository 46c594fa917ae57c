/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"math"

	"github.com/notargets/ibex/InputParameters"
	"github.com/notargets/ibex/discretization"
	"github.com/notargets/ibex/material"
	"github.com/notargets/ibex/meshless"
	"github.com/notargets/ibex/solid"
	"github.com/notargets/ibex/spatial"
)

// Problem is everything a weak discretization needs, built from the input file.
type Problem struct {
	Options   spatial.Options
	Functions []meshless.Function
	Bases     []meshless.Function // nil with identical basis functions
	Planes    []*solid.CartesianPlane
	Geometry  solid.Geometry
	Angular   *discretization.Angular
	Energy    *discretization.Energy
}

func NewProblem(pp *InputParameters.ProblemParameters, parallel int) (p *Problem, err error) {
	var (
		D = pp.Dimension
		G = pp.Groups
	)
	p = &Problem{
		Angular: discretization.NewAngular(D, pp.ScatteringMoments),
		Energy:  discretization.NewEnergy(G),
	}
	materials := make(map[string]*material.Material)
	for i, name := range pp.MaterialNames() {
		materials[name] = newMaterial(i, pp.Materials[name], G, pp.ScatteringMoments, p.Angular.NumberOfMoments())
	}
	if p.Geometry, err = newGeometry(pp, materials); err != nil {
		return
	}
	if err = checkIntegrationPath(pp); err != nil {
		return
	}
	if p.Functions, err = newFunctions(pp); err != nil {
		return
	}
	if !pp.IdenticalBasisFunctions {
		if p.Bases, err = newFunctions(pp); err != nil {
			return
		}
	}
	if p.Options, err = newOptions(pp, parallel, len(p.Functions), p.Angular.NumberOfMoments()); err != nil {
		return
	}
	sources := make([]*solid.BoundarySource, len(pp.BoundarySources))
	for i, bs := range pp.BoundarySources {
		sources[i] = &solid.BoundarySource{Index: i, Data: bs.Data, Alpha: bs.Alpha}
	}
	p.Planes = solid.BoundaryPlanes(pp.Limits, sources)
	return
}

// checkIntegrationPath rejects combinations the chosen integration path
// cannot integrate.
func checkIntegrationPath(pp *InputParameters.ProblemParameters) error {
	if !pp.DirectIntegration {
		if pp.Weighting == "point" {
			return fmt.Errorf("point weighting requires direct integration")
		}
		return nil
	}
	switch {
	case pp.Dimension == 3:
		return fmt.Errorf("direct integration is not available in 3D")
	case pp.Normalization != "none":
		return fmt.Errorf("%s normalization requires integration on the background mesh", pp.Normalization)
	case pp.Weighting != "point" && pp.Weighting != "flat":
		return fmt.Errorf("%s weighting requires integration on the background mesh", pp.Weighting)
	}
	return nil
}

// newMaterial expands the isotropic group source to every angular moment and
// zero fills missing fission data.
func newMaterial(index int, mp InputParameters.MaterialParameters, G, L, M int) *material.Material {
	q := make([]float64, G*M)
	copy(q, mp.Source)
	orZero := func(v []float64) []float64 {
		if len(v) == 0 {
			return make([]float64, G)
		}
		return v
	}
	return material.NewStandardMaterial(index, G, L, M, mp.SigmaT, mp.SigmaS,
		orZero(mp.Nu), orZero(mp.SigmaF), orZero(mp.Chi), q)
}

func newGeometry(pp *InputParameters.ProblemParameters, materials map[string]*material.Material) (solid.Geometry, error) {
	background := materials[pp.Background]
	if len(pp.Regions) == 0 {
		return solid.NewHomogeneous(pp.Dimension, background), nil
	}
	regions := make([]solid.Region, len(pp.Regions))
	for i, rp := range pp.Regions {
		var (
			r   solid.Region
			err error
		)
		switch rp.Shape {
		case "box":
			r, err = solid.NewBoxRegion(rp.Name, rp.Min, rp.Max, materials[rp.Material])
		case "cylinder":
			r, err = solid.NewCylinderRegion(rp.Name, rp.Center, rp.Radius, rp.Height, materials[rp.Material])
		default:
			err = fmt.Errorf("unknown region shape %q", rp.Shape)
		}
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", rp.Name, err)
		}
		regions[i] = r
	}
	return solid.NewRegionGeometry(pp.Dimension, background, regions...), nil
}

// newFunctions places one function per lattice point, last dimension
// fastest, with the support radius a multiple of the largest spacing.
func newFunctions(pp *InputParameters.ProblemParameters) (fs []meshless.Function, err error) {
	var (
		D       = pp.Dimension
		kernel  meshless.RBF
		spacing = make([]float64, D)
		maxH    float64
		N       = 1
	)
	if kernel, err = meshless.ParseKernel(pp.Kernel); err != nil {
		return
	}
	for d := 0; d < D; d++ {
		n := pp.PointsPerDimension[d]
		spacing[d] = (pp.Limits[d][1] - pp.Limits[d][0]) / float64(n-1)
		maxH = math.Max(maxH, spacing[d])
		N *= n
	}
	radius := pp.RadiusMultiplier * maxH
	shape := pp.ShapeMultiplier / maxH
	if kernel.Compact() {
		shape = 1 / radius
	}
	var (
		positions = make([][]float64, N)
		radii     = make([]float64, N)
		shapes    = make([]float64, N)
	)
	for i := 0; i < N; i++ {
		x := make([]float64, D)
		k := i
		for d := D - 1; d >= 0; d-- {
			n := pp.PointsPerDimension[d]
			x[d] = pp.Limits[d][0] + float64(k%n)*spacing[d]
			k /= n
		}
		positions[i] = x
		radii[i] = radius
		shapes[i] = shape
	}
	fs = meshless.NewRBFFunctions(positions, radii, shapes, kernel)
	switch pp.Normalization {
	case "none":
	case "shepard":
		fs = meshless.NewNormalizedFunctions(fs, meshless.Shepard{})
	case "linear_mls":
		fs = meshless.NewNormalizedFunctions(fs, meshless.LinearMLS{})
	default:
		err = fmt.Errorf("unknown normalization %q", pp.Normalization)
	}
	return
}

func newOptions(pp *InputParameters.ProblemParameters, parallel, N, M int) (o spatial.Options, err error) {
	o = spatial.Options{
		IntegrationOrdinates:        pp.IntegrationOrdinates,
		Normalized:                  pp.Normalized,
		IncludeSUPG:                 pp.SUPG,
		IdenticalBasisFunctions:     pp.IdenticalBasisFunctions,
		ExternalIntegralCalculation: !pp.DirectIntegration,
		PerformIntegration:          true,
		Limits:                      pp.Limits,
		DimensionalCells:            pp.BackgroundCells,
		ParallelDegree:              parallel,
		TauConst:                    pp.TauConst,
	}
	if o.Weighting, err = spatial.ParseWeighting(pp.Weighting); err != nil {
		return
	}
	if o.TauScaling, err = spatial.ParseTauScaling(pp.TauScaling); err != nil {
		return
	}
	if o.Weighting == spatial.WeightingFlux {
		// unit scalar flux in every group, higher moments zero
		G := pp.Groups
		o.FluxCoefficients = make([]float64, N*G*M)
		for j := 0; j < N; j++ {
			for g := 0; g < G; g++ {
				o.FluxCoefficients[g+G*M*j] = 1
			}
		}
	}
	return
}

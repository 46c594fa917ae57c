package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slab = []byte(`
########################################
Title: "Two region slab"
Dimension: 1
Limits: [[0, 4]]
PointsPerDimension: [21]
Kernel: gaussian
Weighting: flux
Groups: 2
Materials:
  fuel:
    SigmaT: [1, 2]
    SigmaS: [0.5, 0.1, 0, 1.5]
    Nu: [2.5, 2.5]
    SigmaF: [0.01, 0.1]
    Chi: [1, 0]
    Source: [0, 0]
  water:
    SigmaT: [1, 3]
    SigmaS: [0.6, 0.3, 0, 2.8]
    Source: [1, 0]
Background: water
Regions:
  - Name: pin
    Shape: box
    Material: fuel
    Min: [1]
    Max: [3]
BoundarySources:
  - Data: [0, 0]
    Alpha: [1, 1]
########################################
`)

func TestParse(t *testing.T) {
	{ // Full input with defaults
		pp := &ProblemParameters{}
		require.NoError(t, pp.Parse(slab))
		assert.Equal(t, "Two region slab", pp.Title)
		assert.Equal(t, [][2]float64{{0, 4}}, pp.Limits)
		assert.Equal(t, []int{21}, pp.BackgroundCells)
		assert.Equal(t, "flux", pp.Weighting)
		assert.Equal(t, 3., pp.RadiusMultiplier)
		assert.Equal(t, 8, pp.IntegrationOrdinates)
		assert.Equal(t, 1, pp.ScatteringMoments)
		assert.Equal(t, []string{"fuel", "water"}, pp.MaterialNames())
		assert.Equal(t, []float64{0.01, 0.1}, pp.Materials["fuel"].SigmaF)
		assert.Empty(t, pp.Materials["water"].Nu)
		require.Equal(t, 1, len(pp.Regions))
		assert.Equal(t, []float64{3}, pp.Regions[0].Max)
		assert.Equal(t, []float64{1, 1}, pp.BoundarySources[0].Alpha)
	}
	{ // A single material is the background
		pp := &ProblemParameters{}
		require.NoError(t, pp.Parse([]byte(`
Dimension: 2
Limits: [[0, 1], [0, 2]]
PointsPerDimension: [5, 9]
Materials:
  void:
    SigmaT: [0]
    SigmaS: [0]
    Source: [1]
`)))
		assert.Equal(t, "void", pp.Background)
		assert.Equal(t, "wendland4", pp.Kernel)
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		edit func(pp *ProblemParameters)
	}{
		{"dimension", func(pp *ProblemParameters) { pp.Dimension = 4 }},
		{"limits", func(pp *ProblemParameters) { pp.Limits = [][2]float64{{4, 0}} }},
		{"points", func(pp *ProblemParameters) { pp.PointsPerDimension = []int{1} }},
		{"background", func(pp *ProblemParameters) { pp.Background = "steel" }},
		{"sigma_s", func(pp *ProblemParameters) {
			m := pp.Materials["water"]
			m.SigmaS = []float64{1}
			pp.Materials["water"] = m
		}},
		{"fission", func(pp *ProblemParameters) {
			m := pp.Materials["water"]
			m.Chi = []float64{1}
			pp.Materials["water"] = m
		}},
		{"region material", func(pp *ProblemParameters) { pp.Regions[0].Material = "steel" }},
		{"region shape", func(pp *ProblemParameters) { pp.Regions[0].Shape = "sphere" }},
		{"cylinder", func(pp *ProblemParameters) { pp.Regions[0].Shape = "cylinder" }},
		{"boundary sources", func(pp *ProblemParameters) {
			pp.BoundarySources = append(pp.BoundarySources, pp.BoundarySources[0], pp.BoundarySources[0])
		}},
		{"boundary data", func(pp *ProblemParameters) { pp.BoundarySources[0].Data = nil }},
	} {
		pp := &ProblemParameters{}
		require.NoError(t, pp.Parse(slab))
		tc.edit(pp)
		assert.Error(t, pp.Validate(), tc.name)
	}
	assert.Error(t, (&ProblemParameters{}).Parse([]byte("Dimension: [")))
}

package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// ProblemParameters are obtained from the YAML input file
type ProblemParameters struct {
	Title                   string                        `json:"Title"`
	Dimension               int                           `json:"Dimension"`
	Limits                  [][2]float64                  `json:"Limits"`
	PointsPerDimension      []int                         `json:"PointsPerDimension"`
	BackgroundCells         []int                         `json:"BackgroundCells"`
	Kernel                  string                        `json:"Kernel"`
	RadiusMultiplier        float64                       `json:"RadiusMultiplier"` // support radius in point spacings
	ShapeMultiplier         float64                       `json:"ShapeMultiplier"`  // shape parameter times point spacing
	Normalization           string                        `json:"Normalization"`    // none, shepard or linear_mls
	Weighting               string                        `json:"Weighting"`
	Normalized              bool                          `json:"Normalized"`
	SUPG                    bool                          `json:"SUPG"`
	TauScaling              string                        `json:"TauScaling"`
	TauConst                float64                       `json:"TauConst"`
	IdenticalBasisFunctions bool                          `json:"IdenticalBasisFunctions"`
	DirectIntegration       bool                          `json:"DirectIntegration"`
	IntegrationOrdinates    int                           `json:"IntegrationOrdinates"`
	Groups                  int                           `json:"Groups"`
	ScatteringMoments       int                           `json:"ScatteringMoments"`
	Materials               map[string]MaterialParameters `json:"Materials"`
	Background              string                        `json:"Background"`
	Regions                 []RegionParameters            `json:"Regions"`
	BoundarySources         []BoundaryParameters          `json:"BoundarySources"`
}

// MaterialParameters are group-wise cross sections. SigmaS is indexed
// [gf+G*(gt+G*l)] and Source holds the isotropic source per group.
type MaterialParameters struct {
	SigmaT []float64 `json:"SigmaT"`
	SigmaS []float64 `json:"SigmaS"`
	Nu     []float64 `json:"Nu"`
	SigmaF []float64 `json:"SigmaF"`
	Chi    []float64 `json:"Chi"`
	Source []float64 `json:"Source"`
}

// RegionParameters describe a box (Min, Max) or a cylinder along z
// (Center, Radius, Height) filled with a named material.
type RegionParameters struct {
	Name     string    `json:"Name"`
	Shape    string    `json:"Shape"`
	Material string    `json:"Material"`
	Min      []float64 `json:"Min"`
	Max      []float64 `json:"Max"`
	Center   []float64 `json:"Center"`
	Radius   float64   `json:"Radius"`
	Height   float64   `json:"Height"`
}

type BoundaryParameters struct {
	Data  []float64 `json:"Data"`
	Alpha []float64 `json:"Alpha"`
}

func (pp *ProblemParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, pp); err != nil {
		return fmt.Errorf("parsing problem parameters: %w", err)
	}
	pp.setDefaults()
	return pp.Validate()
}

func (pp *ProblemParameters) setDefaults() {
	if pp.Kernel == "" {
		pp.Kernel = "wendland4"
	}
	if pp.RadiusMultiplier == 0 {
		pp.RadiusMultiplier = 3.
	}
	if pp.ShapeMultiplier == 0 {
		pp.ShapeMultiplier = 1.
	}
	if pp.Normalization == "" {
		pp.Normalization = "none"
	}
	if pp.Weighting == "" {
		pp.Weighting = "flat"
	}
	if pp.TauScaling == "" {
		pp.TauScaling = "none"
	}
	if pp.IntegrationOrdinates == 0 {
		pp.IntegrationOrdinates = 8
	}
	if pp.Groups == 0 {
		pp.Groups = 1
	}
	if pp.ScatteringMoments == 0 {
		pp.ScatteringMoments = 1
	}
	if pp.Background == "" && len(pp.Materials) == 1 {
		pp.Background = pp.MaterialNames()[0]
	}
	if len(pp.BackgroundCells) == 0 {
		pp.BackgroundCells = append([]int(nil), pp.PointsPerDimension...)
	}
}

// Validate checks sizes and cross references of the parameters.
func (pp *ProblemParameters) Validate() error {
	D := pp.Dimension
	if D < 1 || D > 3 {
		return fmt.Errorf("dimension must be 1, 2 or 3, have %d", D)
	}
	if len(pp.Limits) != D || len(pp.PointsPerDimension) != D || len(pp.BackgroundCells) != D {
		return fmt.Errorf("need %d limits, points per dimension and background cells, have %d, %d and %d",
			D, len(pp.Limits), len(pp.PointsPerDimension), len(pp.BackgroundCells))
	}
	for d := 0; d < D; d++ {
		if pp.Limits[d][1] <= pp.Limits[d][0] {
			return fmt.Errorf("limits for dimension %d are not increasing: %v", d, pp.Limits[d])
		}
		if pp.PointsPerDimension[d] < 2 {
			return fmt.Errorf("need at least two points in dimension %d, have %d", d, pp.PointsPerDimension[d])
		}
		if pp.BackgroundCells[d] < 1 {
			return fmt.Errorf("need at least one background cell in dimension %d", d)
		}
	}
	if _, ok := pp.Materials[pp.Background]; !ok {
		return fmt.Errorf("background material %q is not defined", pp.Background)
	}
	G, L := pp.Groups, pp.ScatteringMoments
	for _, name := range pp.MaterialNames() {
		m := pp.Materials[name]
		if len(m.SigmaT) != G || len(m.SigmaS) != G*G*L || len(m.Source) != G {
			return fmt.Errorf("material %q needs %d sigma_t, %d sigma_s and %d source values", name, G, G*G*L, G)
		}
		for _, v := range [][]float64{m.Nu, m.SigmaF, m.Chi} {
			if len(v) != 0 && len(v) != G {
				return fmt.Errorf("material %q fission data must be empty or have %d values", name, G)
			}
		}
	}
	for _, r := range pp.Regions {
		if _, ok := pp.Materials[r.Material]; !ok {
			return fmt.Errorf("region %q uses undefined material %q", r.Name, r.Material)
		}
		switch r.Shape {
		case "box":
			if len(r.Min) != D || len(r.Max) != D {
				return fmt.Errorf("box region %q needs %d dimensional min and max", r.Name, D)
			}
		case "cylinder":
			if len(r.Center) != D || r.Radius <= 0 {
				return fmt.Errorf("cylinder region %q needs a %d dimensional center and positive radius", r.Name, D)
			}
		default:
			return fmt.Errorf("region %q has unknown shape %q", r.Name, r.Shape)
		}
	}
	if n := len(pp.BoundarySources); n != 0 && n != 1 && n != 2*D {
		return fmt.Errorf("need 0, 1 or %d boundary sources, have %d", 2*D, n)
	}
	for i, bs := range pp.BoundarySources {
		if len(bs.Data) != G || len(bs.Alpha) != G {
			return fmt.Errorf("boundary source %d needs %d data and alpha values", i, G)
		}
	}
	return nil
}

// MaterialNames returns the material names in sorted order.
func (pp *ProblemParameters) MaterialNames() (names []string) {
	for k := range pp.Materials {
		names = append(names, k)
	}
	sort.Strings(names)
	return
}

func (pp *ProblemParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", pp.Title)
	fmt.Printf("[%d]\t\t\t\t= Dimension\n", pp.Dimension)
	fmt.Printf("%v\t\t= Limits\n", pp.Limits)
	fmt.Printf("%v\t\t\t= Points Per Dimension\n", pp.PointsPerDimension)
	fmt.Printf("%v\t\t\t= Background Cells\n", pp.BackgroundCells)
	fmt.Printf("[%s]\t\t\t= Kernel\n", pp.Kernel)
	fmt.Printf("%8.5f\t\t= Radius Multiplier\n", pp.RadiusMultiplier)
	fmt.Printf("[%s]\t\t\t= Weighting\n", pp.Weighting)
	fmt.Printf("[%d]\t\t\t\t= Groups\n", pp.Groups)
	fmt.Printf("[%d]\t\t\t\t= Scattering Moments\n", pp.ScatteringMoments)
	for _, name := range pp.MaterialNames() {
		fmt.Printf("Materials[%s] = %+v\n", name, pp.Materials[name])
	}
	for _, r := range pp.Regions {
		fmt.Printf("Regions[%s] = %s of %s\n", r.Name, r.Shape, r.Material)
	}
}

package solid

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/notargets/ibex/material"
)

// Geometry answers which material occupies a position.
type Geometry interface {
	Dimension() int
	Material(position []float64) *material.Material
}

// Homogeneous is a single material filling all space.
type Homogeneous struct {
	dimension int
	mat       *material.Material
}

func NewHomogeneous(dimension int, mat *material.Material) *Homogeneous {
	return &Homogeneous{dimension: dimension, mat: mat}
}

func (h *Homogeneous) Dimension() int                                 { return h.dimension }
func (h *Homogeneous) Material(position []float64) *material.Material { return h.mat }

// Region is a signed distance solid filled with one material.
type Region struct {
	Name     string
	Surface  sdf.SDF3
	Material *material.Material
}

// Inside is true for points on or within the region surface.
func (r Region) Inside(position []float64) bool {
	return r.Surface.Evaluate(embed(position)) <= 0
}

// collapsed dimensions of lower dimensional problems sit at zero inside
// a slab of this thickness
const collapsedExtent = 2.

// NewBoxRegion returns an axis aligned box region spanning [min, max].
func NewBoxRegion(name string, min, max []float64, mat *material.Material) (r Region, err error) {
	var (
		size, center [3]float64
	)
	if len(min) != len(max) || len(min) < 1 || len(min) > 3 {
		err = fmt.Errorf("region %s: box limits have dimensions %d and %d", name, len(min), len(max))
		return
	}
	for d := 0; d < 3; d++ {
		if d < len(min) {
			size[d] = max[d] - min[d]
			center[d] = 0.5 * (max[d] + min[d])
		} else {
			size[d] = collapsedExtent
		}
	}
	s, err := sdf.Box3D(v3.Vec{X: size[0], Y: size[1], Z: size[2]}, 0)
	if err != nil {
		err = fmt.Errorf("region %s: %w", name, err)
		return
	}
	m := sdf.Translate3d(v3.Vec{X: center[0], Y: center[1], Z: center[2]})
	r = Region{Name: name, Surface: sdf.Transform3D(s, m), Material: mat}
	return
}

// NewCylinderRegion returns a disk of the given radius about center in the
// first two dimensions, extending through any third dimension.
func NewCylinderRegion(name string, center []float64, radius, height float64, mat *material.Material) (r Region, err error) {
	var (
		c [3]float64
	)
	if len(center) < 1 || len(center) > 3 {
		err = fmt.Errorf("region %s: center has dimension %d", name, len(center))
		return
	}
	copy(c[:], center)
	if len(center) < 3 {
		height = collapsedExtent
		c[2] = 0
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		err = fmt.Errorf("region %s: %w", name, err)
		return
	}
	m := sdf.Translate3d(v3.Vec{X: c[0], Y: c[1], Z: c[2]})
	r = Region{Name: name, Surface: sdf.Transform3D(s, m), Material: mat}
	return
}

// RegionGeometry returns the material of the first region containing a
// position, or the background material.
type RegionGeometry struct {
	dimension  int
	Regions    []Region
	Background *material.Material
}

func NewRegionGeometry(dimension int, background *material.Material, regions ...Region) *RegionGeometry {
	return &RegionGeometry{dimension: dimension, Regions: regions, Background: background}
}

func (g *RegionGeometry) Dimension() int { return g.dimension }

func (g *RegionGeometry) Material(position []float64) *material.Material {
	for _, r := range g.Regions {
		if r.Inside(position) {
			return r.Material
		}
	}
	return g.Background
}

func embed(position []float64) (p v3.Vec) {
	var x [3]float64
	copy(x[:], position)
	return v3.Vec{X: x[0], Y: x[1], Z: x[2]}
}

package operator

import (
	"fmt"

	"github.com/notargets/ibex/discretization"
	"github.com/notargets/ibex/material"
	"github.com/notargets/ibex/utils"
)

// VectorOperator maps a vector of ColumnSize entries to one of RowSize entries.
type VectorOperator interface {
	RowSize() int
	ColumnSize() int
	Apply(x []float64) []float64
}

// Points is the view of a finalized spatial discretization the operators
// read from.
type Points interface {
	NumberOfPoints() int
	NumberOfDimensionalMoments() int
	Material(i int) *material.Material
	BasisIndices(i int) []int
}

type Mode uint8

const (
	// Full couples every group to every other group.
	Full Mode = iota
	// Coherent keeps only the within group terms.
	Coherent
)

var modeNames = map[Mode]string{
	Full:     "full",
	Coherent: "coherent",
}

func (m Mode) String() string { return modeNames[m] }

type Options struct {
	Mode Mode
	// IncludeDimensionalMoments carries every dimensional moment of the
	// flux; otherwise only the value moment is present.
	IncludeDimensionalMoments bool
	ParallelDegree            int
}

// base holds the sizes shared by the operators.
type base struct {
	points  Points
	angular *discretization.Angular
	energy  *discretization.Energy
	options Options
	N, G, M int
	nDM     int // dimensional moments of the cross sections
}

func newBase(points Points, angular *discretization.Angular, energy *discretization.Energy, options Options) base {
	if points == nil || angular == nil || energy == nil {
		panic("operator needs spatial, angular and energy discretizations")
	}
	return base{
		points:  points,
		angular: angular,
		energy:  energy,
		options: options,
		N:       points.NumberOfPoints(),
		G:       energy.NumberOfGroups,
		M:       angular.NumberOfMoments(),
		nDM:     points.NumberOfDimensionalMoments(),
	}
}

// localMoments is the number of dimensional moments carried in the vector.
func (b base) localMoments() int {
	if b.options.IncludeDimensionalMoments {
		return b.nDM
	}
	return 1
}

// forEachPoint calls f for every point, split over concurrent partitions.
func (b base) forEachPoint(f func(i int)) {
	pm := utils.NewPartitionMap(utils.ParallelDegree(b.options.ParallelDegree, b.N), b.N)
	pm.Run(func(_, kMin, kMax int) {
		for i := kMin; i < kMax; i++ {
			f(i)
		}
	})
}

func checkSize(name string, x []float64, size int) {
	if len(x) != size {
		panic(fmt.Errorf("%s operator applied to a vector of size %d, expected %d", name, len(x), size))
	}
}

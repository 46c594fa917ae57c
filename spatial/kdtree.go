package spatial

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// treePoint is a point with an index, satisfying kdtree.Comparable.
type treePoint struct {
	index int
	x     []float64
}

func (p treePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(treePoint)
	return p.x[d] - q.x[d]
}

func (p treePoint) Dims() int { return len(p.x) }

// Distance returns the squared Euclidean distance.
func (p treePoint) Distance(c kdtree.Comparable) (sum float64) {
	q := c.(treePoint)
	for d := range p.x {
		diff := p.x[d] - q.x[d]
		sum += diff * diff
	}
	return
}

type treePoints []treePoint

func (p treePoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p treePoints) Len() int                              { return len(p) }
func (p treePoints) Pivot(d kdtree.Dim) int                { return treePlane{treePoints: p, Dim: d}.Pivot() }
func (p treePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

type treePlane struct {
	kdtree.Dim
	treePoints
}

func (p treePlane) Less(i, j int) bool {
	return p.treePoints[i].x[p.Dim] < p.treePoints[j].x[p.Dim]
}
func (p treePlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p treePlane) Slice(start, end int) kdtree.SortSlicer {
	p.treePoints = p.treePoints[start:end]
	return p
}
func (p treePlane) Swap(i, j int) {
	p.treePoints[i], p.treePoints[j] = p.treePoints[j], p.treePoints[i]
}

// pointTree answers radius queries over a fixed set of points.
type pointTree struct {
	tree *kdtree.Tree
	size int
}

func newPointTree(positions [][]float64) (pt *pointTree) {
	pts := make(treePoints, len(positions))
	for i, x := range positions {
		pts[i] = treePoint{index: i, x: x}
	}
	pt = &pointTree{size: len(positions)}
	if len(pts) != 0 {
		pt.tree = kdtree.New(pts, false)
	}
	return
}

// Within returns the indices of every point strictly closer than radius to x.
func (pt *pointTree) Within(radius float64, x []float64) (indices []int) {
	if pt.tree == nil || radius <= 0 {
		return
	}
	var (
		r2   = radius * radius
		keep = kdtree.NewDistKeeper(r2)
	)
	pt.tree.NearestSet(keep, treePoint{index: -1, x: x})
	for _, c := range keep.Heap {
		if c.Comparable == nil || c.Dist >= r2 {
			continue
		}
		indices = append(indices, c.Comparable.(treePoint).index)
	}
	return
}

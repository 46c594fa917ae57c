package spatial

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/notargets/ibex/utils"
)

// Cell is one box of the background mesh with the functions whose support
// may overlap it.
type Cell struct {
	Index         int
	Limits        [][2]float64
	Nodes         []int
	Surfaces      []int
	WeightIndices []int
	BasisIndices  []int
}

// Node is a background mesh grid point.
type Node struct {
	Index    int
	Position []float64
	Cells    []int
	Surfaces []int
}

// Surface is the face of one boundary cell lying on a domain face.
type Surface struct {
	Index         int
	Dimension     int     // dimension normal to the surface
	Normal        float64 // -1 or +1
	Position      float64
	Cell          int
	WeightIndices []int
	BasisIndices  []int
}

// Mesh is a Cartesian grid used only to bound quadrature and to find which
// functions overlap which regions.
type Mesh struct {
	Dimension        int
	Limits           [][2]float64
	DimensionalCells []int
	DimensionalNodes []int
	Intervals        []float64
	MaxInterval      float64
	Nodes            []Node
	Cells            []Cell
	Surfaces         []Surface
	tree             *pointTree
}

func NewMesh(dimension int, limits [][2]float64, dimensionalCells []int) (m *Mesh) {
	if dimension < 1 || dimension > 3 {
		panic(fmt.Errorf("background mesh dimension must be 1, 2 or 3, have %d", dimension))
	}
	if len(limits) != dimension || len(dimensionalCells) != dimension {
		panic(fmt.Errorf("background mesh of dimension %d given %d limits and %d cell counts",
			dimension, len(limits), len(dimensionalCells)))
	}
	m = &Mesh{
		Dimension:        dimension,
		Limits:           limits,
		DimensionalCells: dimensionalCells,
		DimensionalNodes: make([]int, dimension),
		Intervals:        make([]float64, dimension),
	}
	for d := 0; d < dimension; d++ {
		if dimensionalCells[d] < 1 {
			panic(fmt.Errorf("background mesh needs at least one cell in dimension %d, have %d", d, dimensionalCells[d]))
		}
		if limits[d][1] <= limits[d][0] {
			panic(fmt.Errorf("background mesh limits in dimension %d are not increasing: %v", d, limits[d]))
		}
		m.DimensionalNodes[d] = dimensionalCells[d] + 1
		m.Intervals[d] = (limits[d][1] - limits[d][0]) / float64(dimensionalCells[d])
		m.MaxInterval = math.Max(m.MaxInterval, m.Intervals[d])
	}
	m.initializeNodes()
	m.initializeCells()
	m.initializeSurfaces()
	positions := make([][]float64, len(m.Nodes))
	for i := range m.Nodes {
		positions[i] = m.Nodes[i].Position
	}
	m.tree = newPointTree(positions)
	return
}

// flatIndex returns sum_d index[d] * prod_{d'>d} size[d'].
func flatIndex(index, size []int) (idx int) {
	for d := range index {
		idx = idx*size[d] + index[d]
	}
	return
}

// gridIndex inverts flatIndex.
func gridIndex(idx int, size []int) (index []int) {
	index = make([]int, len(size))
	for d := len(size) - 1; d >= 0; d-- {
		index[d] = idx % size[d]
		idx /= size[d]
	}
	return
}

func (m *Mesh) initializeNodes() {
	var (
		N = utils.IntProduct(m.DimensionalNodes)
	)
	m.Nodes = make([]Node, N)
	for i := 0; i < N; i++ {
		index := gridIndex(i, m.DimensionalNodes)
		x := make([]float64, m.Dimension)
		for d := 0; d < m.Dimension; d++ {
			x[d] = m.Limits[d][0] + float64(index[d])*m.Intervals[d]
		}
		m.Nodes[i] = Node{Index: i, Position: x}
	}
}

func (m *Mesh) initializeCells() {
	var (
		K       = utils.IntProduct(m.DimensionalCells)
		corners = 1 << m.Dimension
	)
	m.Cells = make([]Cell, K)
	for k := 0; k < K; k++ {
		index := gridIndex(k, m.DimensionalCells)
		c := Cell{
			Index:  k,
			Limits: make([][2]float64, m.Dimension),
			Nodes:  make([]int, 0, corners),
		}
		for d := 0; d < m.Dimension; d++ {
			c.Limits[d][0] = m.Limits[d][0] + float64(index[d])*m.Intervals[d]
			c.Limits[d][1] = m.Limits[d][0] + float64(index[d]+1)*m.Intervals[d]
		}
		// The last cell face sits exactly on the domain limit
		for d := 0; d < m.Dimension; d++ {
			if index[d] == m.DimensionalCells[d]-1 {
				c.Limits[d][1] = m.Limits[d][1]
			}
		}
		nodeIndex := make([]int, m.Dimension)
		for corner := 0; corner < corners; corner++ {
			for d := 0; d < m.Dimension; d++ {
				nodeIndex[d] = index[d] + (corner>>d)&1
			}
			n := flatIndex(nodeIndex, m.DimensionalNodes)
			c.Nodes = append(c.Nodes, n)
			m.Nodes[n].Cells = append(m.Nodes[n].Cells, k)
		}
		m.Cells[k] = c
	}
}

func (m *Mesh) initializeSurfaces() {
	for d := 0; d < m.Dimension; d++ {
		// cells of the slab are those of the grid with dimension d collapsed
		slabSize := make([]int, m.Dimension)
		copy(slabSize, m.DimensionalCells)
		slabSize[d] = 1
		slabCount := utils.IntProduct(slabSize)
		for side := 0; side < 2; side++ {
			for k := 0; k < slabCount; k++ {
				index := gridIndex(k, slabSize)
				if side == 1 {
					index[d] = m.DimensionalCells[d] - 1
				}
				cell := flatIndex(index, m.DimensionalCells)
				s := Surface{
					Index:     len(m.Surfaces),
					Dimension: d,
					Normal:    float64(2*side - 1),
					Position:  m.Limits[d][side],
					Cell:      cell,
				}
				m.Cells[cell].Surfaces = append(m.Cells[cell].Surfaces, s.Index)
				for _, n := range m.Cells[cell].Nodes {
					if m.onFace(n, d, side) {
						m.Nodes[n].Surfaces = append(m.Nodes[n].Surfaces, s.Index)
					}
				}
				m.Surfaces = append(m.Surfaces, s)
			}
		}
	}
}

// onFace is true when node n has the grid coordinate of the given domain face.
func (m *Mesh) onFace(n, d, side int) bool {
	index := gridIndex(n, m.DimensionalNodes)
	if side == 0 {
		return index[d] == 0
	}
	return index[d] == m.DimensionalCells[d]
}

// ContainingCell returns the cell holding x, clamping positions outside the
// domain to the nearest boundary cell.
func (m *Mesh) ContainingCell(x []float64) int {
	index := make([]int, m.Dimension)
	for d := 0; d < m.Dimension; d++ {
		i := int(math.Floor((x[d] - m.Limits[d][0]) / m.Intervals[d]))
		index[d] = max(0, min(i, m.DimensionalCells[d]-1))
	}
	return flatIndex(index, m.DimensionalCells)
}

// SurfaceLimits returns the box of the cell face lying on surface s.
func (m *Mesh) SurfaceLimits(s int) (lower, upper []float64) {
	var (
		surf = m.Surfaces[s]
		c    = m.Cells[surf.Cell]
	)
	lower = make([]float64, m.Dimension)
	upper = make([]float64, m.Dimension)
	for d := 0; d < m.Dimension; d++ {
		lower[d], upper[d] = c.Limits[d][0], c.Limits[d][1]
	}
	lower[surf.Dimension], upper[surf.Dimension] = surf.Position, surf.Position
	return
}

// Stats summarizes the mesh for structured logging.
type Stats struct {
	Dimension   int
	Nodes       int
	Cells       int
	Surfaces    int
	MaxInterval float64
}

func (m *Mesh) Stats() Stats {
	return Stats{
		Dimension:   m.Dimension,
		Nodes:       len(m.Nodes),
		Cells:       len(m.Cells),
		Surfaces:    len(m.Surfaces),
		MaxInterval: m.MaxInterval,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("dimension", s.Dimension),
		slog.Int("nodes", s.Nodes),
		slog.Int("cells", s.Cells),
		slog.Int("surfaces", s.Surfaces),
		slog.Float64("max_interval", s.MaxInterval),
	)
}

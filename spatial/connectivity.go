package spatial

import (
	"math"

	"github.com/notargets/ibex/meshless"
	"github.com/notargets/ibex/utils"
)

// InclusiveRadius enlarges a support radius so that a node based search
// cannot miss a cell or surface that the support overlaps.
func (m *Mesh) InclusiveRadius(radius float64) float64 {
	var (
		h2 = m.MaxInterval * m.MaxInterval
	)
	switch m.Dimension {
	case 1:
		return radius
	case 2:
		return math.Sqrt(radius*radius + h2/4)
	default:
		return math.Sqrt(radius*radius + h2/2)
	}
}

// connect returns the cells and surfaces reached by a function: those
// adjacent to every node within the inclusive radius, plus the cell holding
// the center and that cell's boundary surfaces.
func (m *Mesh) connect(f meshless.Function) (cells, surfaces []int) {
	var (
		center = f.Position()
		home   = m.ContainingCell(center)
	)
	cells = append(cells, home)
	surfaces = append(surfaces, m.Cells[home].Surfaces...)
	for _, n := range m.tree.Within(m.InclusiveRadius(f.Radius()), center) {
		cells = append(cells, m.Nodes[n].Cells...)
		surfaces = append(surfaces, m.Nodes[n].Surfaces...)
	}
	return utils.SortUnique(cells), utils.SortUnique(surfaces)
}

// Resolve fills the weight and basis index lists of every cell and surface.
// With identical basis functions the basis lists alias the weight lists.
func (m *Mesh) Resolve(weights, bases []meshless.Function, identical bool) {
	for _, f := range weights {
		cells, surfaces := m.connect(f)
		for _, c := range cells {
			m.Cells[c].WeightIndices = append(m.Cells[c].WeightIndices, f.Index())
		}
		for _, s := range surfaces {
			m.Surfaces[s].WeightIndices = append(m.Surfaces[s].WeightIndices, f.Index())
		}
	}
	if !identical {
		for _, f := range bases {
			cells, surfaces := m.connect(f)
			for _, c := range cells {
				m.Cells[c].BasisIndices = append(m.Cells[c].BasisIndices, f.Index())
			}
			for _, s := range surfaces {
				m.Surfaces[s].BasisIndices = append(m.Surfaces[s].BasisIndices, f.Index())
			}
		}
	}
	for c := range m.Cells {
		cell := &m.Cells[c]
		cell.WeightIndices = utils.SortUnique(cell.WeightIndices)
		if identical {
			cell.BasisIndices = cell.WeightIndices
		} else {
			cell.BasisIndices = utils.SortUnique(cell.BasisIndices)
		}
	}
	for s := range m.Surfaces {
		surf := &m.Surfaces[s]
		surf.WeightIndices = utils.SortUnique(surf.WeightIndices)
		if identical {
			surf.BasisIndices = surf.WeightIndices
		} else {
			surf.BasisIndices = utils.SortUnique(surf.BasisIndices)
		}
	}
}

package meshless

import (
	"gonum.org/v1/gonum/mat"
)

// NormalizedFunction is an RBFFunction whose values are rescaled against its
// neighbors with a Normalizer.
type NormalizedFunction struct {
	*RBFFunction
	Normalizer Normalizer
}

func (f *NormalizedFunction) DependsOnNeighbors() bool { return true }

func (f *NormalizedFunction) Normalize(x []float64, positions [][]float64, values []float64, grads [][]float64) ([]float64, [][]float64) {
	return f.Normalizer.Normalize(x, positions, values, grads)
}

// NeighborFunction is a Function that can rescale itself and its neighbors.
type NeighborFunction interface {
	Function
	Normalizer
}

// NewNormalizedFunctions wraps every function with the same normalizer.
func NewNormalizedFunctions(fs []Function, norm Normalizer) (nfs []Function) {
	nfs = make([]Function, len(fs))
	for i, f := range fs {
		nfs[i] = &NormalizedFunction{RBFFunction: f.(*RBFFunction), Normalizer: norm}
	}
	return
}

// Shepard normalizes to a partition of unity.
type Shepard struct{}

func (Shepard) Normalize(x []float64, positions [][]float64, values []float64, grads [][]float64) (nv []float64, ng [][]float64) {
	var (
		D     = len(x)
		sum   float64
		dsum  = make([]float64, D)
		count = len(values)
	)
	nv = make([]float64, count)
	ng = make([][]float64, count)
	for i := range values {
		ng[i] = make([]float64, D)
		sum += values[i]
		for d := 0; d < D; d++ {
			dsum[d] += grads[i][d]
		}
	}
	if sum == 0 {
		return
	}
	for i := range values {
		nv[i] = values[i] / sum
		for d := 0; d < D; d++ {
			ng[i][d] = (grads[i][d]*sum - values[i]*dsum[d]) / (sum * sum)
		}
	}
	return
}

// LinearMLS is a moving least squares normalization that reproduces linear
// functions exactly. Points where the moment matrix cannot be solved fall
// back to Shepard normalization.
type LinearMLS struct{}

func (LinearMLS) Normalize(x []float64, positions [][]float64, values []float64, grads [][]float64) (nv []float64, ng [][]float64) {
	var (
		D     = len(x)
		n     = D + 1
		count = len(values)
		M     = mat.NewDense(n, n, nil)
		dM    = make([]*mat.Dense, D)
		p     = make([][]float64, count)
	)
	if count < n {
		return Shepard{}.Normalize(x, positions, values, grads)
	}
	for d := 0; d < D; d++ {
		dM[d] = mat.NewDense(n, n, nil)
	}
	for j := 0; j < count; j++ {
		p[j] = make([]float64, n)
		p[j][0] = 1
		for d := 0; d < D; d++ {
			p[j][d+1] = positions[j][d] - x[d]
		}
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				M.Set(r, c, M.At(r, c)+values[j]*p[j][r]*p[j][c])
				for d := 0; d < D; d++ {
					// derivative of p[j] along d is -e(d+1)
					val := grads[j][d] * p[j][r] * p[j][c]
					if r == d+1 {
						val -= values[j] * p[j][c]
					}
					if c == d+1 {
						val -= values[j] * p[j][r]
					}
					dM[d].Set(r, c, dM[d].At(r, c)+val)
				}
			}
		}
	}
	e0 := mat.NewVecDense(n, nil)
	e0.SetVec(0, 1)
	var a mat.VecDense
	if err := a.SolveVec(M, e0); err != nil {
		return Shepard{}.Normalize(x, positions, values, grads)
	}
	da := make([]*mat.VecDense, D)
	for d := 0; d < D; d++ {
		var rhs mat.VecDense
		rhs.MulVec(dM[d], &a)
		da[d] = mat.NewVecDense(n, nil)
		if err := da[d].SolveVec(M, &rhs); err != nil {
			return Shepard{}.Normalize(x, positions, values, grads)
		}
		da[d].ScaleVec(-1, da[d])
	}
	nv = make([]float64, count)
	ng = make([][]float64, count)
	for j := 0; j < count; j++ {
		pv := mat.NewVecDense(n, p[j])
		pa := mat.Dot(pv, &a)
		nv[j] = values[j] * pa
		ng[j] = make([]float64, D)
		for d := 0; d < D; d++ {
			ng[j][d] = grads[j][d]*pa - values[j]*a.AtVec(d+1) + values[j]*mat.Dot(pv, da[d])
		}
	}
	return
}

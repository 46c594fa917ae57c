package operator

import (
	"fmt"
)

// Product applies op2 and then op1.
type Product struct {
	op1, op2 VectorOperator
}

func NewProduct(op1, op2 VectorOperator) *Product {
	if op1.ColumnSize() != op2.RowSize() {
		panic(fmt.Errorf("operator product of incompatible sizes: %d columns after %d rows",
			op1.ColumnSize(), op2.RowSize()))
	}
	return &Product{op1: op1, op2: op2}
}

func (p *Product) RowSize() int    { return p.op1.RowSize() }
func (p *Product) ColumnSize() int { return p.op2.ColumnSize() }

func (p *Product) Apply(x []float64) []float64 {
	return p.op1.Apply(p.op2.Apply(x))
}

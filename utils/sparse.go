package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// CSR is a full-storage (both triangles) export of a SymmSparse, used for diagnostics and cross checks
type CSR struct {
	M    *sparse.CSR
	name string
}

// ToDOK expands the stored lower triangle into both triangles
func (m *SymmSparse) ToDOK() (R *sparse.DOK) {
	R = sparse.NewDOK(m.N, m.N)
	for i := 0; i < m.N; i++ {
		if m.Di[i] != 0 {
			R.Set(i, i, m.Di[i])
		}
		for k := m.Ig[i]; k < m.Ig[i+1]; k++ {
			if m.Gg[k] == 0 {
				continue
			}
			R.Set(i, m.Jg[k], m.Gg[k])
			R.Set(m.Jg[k], i, m.Gg[k])
		}
	}
	return
}

func (m *SymmSparse) ToCSR() CSR {
	return CSR{
		M:    m.ToDOK().ToCSR(),
		name: "unnamed - hint: pass a variable name to SetName()",
	}
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }
func (m CSR) NNZ() int            { return m.M.NNZ() }

func (m *CSR) SetName(name string) { m.name = name }

// MulVec computes y = A x
func (m CSR) MulVec(x, y []float64) {
	clear(y)
	m.M.MulVecTo(y, false, x)
}

// Print writes the nonzero entries row by row
func (m CSR) Print(msg ...string) {
	var (
		nr, nc = m.Dims()
	)
	if len(msg) != 0 {
		fmt.Printf("%s\n", msg[0])
	}
	fmt.Printf("%s: %d x %d, %d stored values\n", m.name, nr, nc, m.NNZ())
	m.M.DoNonZero(func(i, j int, v float64) {
		fmt.Printf("(%d,%d) = %12.5e\n", i, j, v)
	})
}

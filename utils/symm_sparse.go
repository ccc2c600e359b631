package utils

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

/*
SymmSparse is a symmetric sparse matrix stored as a diagonal plus the strict lower triangle in CSR form:

	Di[i]                   diagonal entry (i,i)
	Gg[Ig[i]:Ig[i+1]]       entries (i,j), j < i, of row i
	Jg[Ig[i]:Ig[i+1]]       their columns, ascending

Entry (j,i) above the diagonal is read from (i,j). The pattern (Ig, Jg) is fixed once built,
only Di and Gg are rewritten.
*/
type SymmSparse struct {
	N      int
	Di, Gg []float64
	Ig, Jg []int
}

func NewSymmSparse(ig, jg []int) (m *SymmSparse) {
	n := len(ig) - 1
	m = &SymmSparse{
		N:  n,
		Di: make([]float64, n),
		Gg: make([]float64, ig[n]),
		Ig: ig,
		Jg: jg,
	}
	return
}

// NewSymmSparseFromElements builds the portrait of the element list and allocates storage for it
func NewSymmSparseFromElements(n int, elements [][]int) (m *SymmSparse, err error) {
	var ig, jg []int
	if ig, jg, err = BuildPortrait(n, elements); err != nil {
		return
	}
	m = NewSymmSparse(ig, jg)
	return
}

// Dims, At and T satisfy the mat.Matrix interface.
func (m *SymmSparse) Dims() (r, c int) { return m.N, m.N }
func (m *SymmSparse) T() mat.Matrix    { return m }
func (m *SymmSparse) SymmetricDim() int { return m.N }

func (m *SymmSparse) At(i, j int) float64 {
	if i == j {
		return m.Di[i]
	}
	if i < j {
		i, j = j, i
	}
	if ind, ok := m.Index(i, j); ok {
		return m.Gg[ind]
	}
	return 0
}

func (m *SymmSparse) NNZ() int { return len(m.Gg) }

// Index returns the position of entry (i,j), j < i, in Gg
func (m *SymmSparse) Index(i, j int) (ind int, ok bool) {
	row := m.Jg[m.Ig[i]:m.Ig[i+1]]
	k := sort.SearchInts(row, j)
	if k < len(row) && row[k] == j {
		return m.Ig[i] + k, true
	}
	return -1, false
}

// Add accumulates val into (i,j), either triangle may be addressed
func (m *SymmSparse) Add(i, j int, val float64) (err error) {
	if i == j {
		m.Di[i] += val
		return
	}
	if i < j {
		i, j = j, i
	}
	ind, ok := m.Index(i, j)
	if !ok {
		err = fmt.Errorf("entry (%d,%d) is not in the matrix portrait: %w", i, j, ErrInvalidElement)
		return
	}
	m.Gg[ind] += val
	return
}

// ClearValues zeroes the stored values and keeps the pattern
func (m *SymmSparse) ClearValues() {
	clear(m.Di)
	clear(m.Gg)
}

// Clone shares the pattern and copies the values
func (m *SymmSparse) Clone() (R *SymmSparse) {
	R = &SymmSparse{
		N:  m.N,
		Di: make([]float64, m.N),
		Gg: make([]float64, len(m.Gg)),
		Ig: m.Ig,
		Jg: m.Jg,
	}
	copy(R.Di, m.Di)
	copy(R.Gg, m.Gg)
	return
}

/*
MulVec accumulates A x into y with one pass over the lower triangle, each stored entry contributes twice:

	y[jg[k]] += gg[k] * x[i],  y[i] += gg[k] * x[jg[k]]
*/
func (m *SymmSparse) MulVec(x, y []float64) {
	if len(x) != m.N || len(y) != m.N {
		panic(fmt.Errorf("dimension mismatch, matrix order %d, have %d and %d", m.N, len(x), len(y)))
	}
	for i := 0; i < m.N; i++ {
		yi := m.Di[i] * x[i]
		for k := m.Ig[i]; k < m.Ig[i+1]; k++ {
			j := m.Jg[k]
			y[j] += m.Gg[k] * x[i]
			yi += m.Gg[k] * x[j]
		}
		y[i] = yi + y[i]
	}
}

// MulVecTo clears y before the product
func (m *SymmSparse) MulVecTo(x, y []float64) {
	clear(y)
	m.MulVec(x, y)
}

// Residual2 returns ||A x - b||^2 / ||b||^2, work must hold N values
func (m *SymmSparse) Residual2(x, b, work []float64) float64 {
	m.MulVecTo(x, work)
	floats.Sub(work, b)
	bb := floats.Dot(b, b)
	if bb == 0 {
		return floats.Dot(work, work)
	}
	return floats.Dot(work, work) / bb
}

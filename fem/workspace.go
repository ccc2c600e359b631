package fem

import (
	"fmt"

	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/utils"
	"gonum.org/v1/gonum/mat"
)

/*
Workspace is the per-problem scratch space of element assembly. It is allocated once and cleared for
every element. Local rows follow the element's local numbering: storage order for triangles, geometric
position for rectangles. Global and Coords map local rows to mesh vertices.
*/
type Workspace struct {
	N      int
	Local  *mat.Dense
	Load   []float64
	Global []int
	Coords []geometry2D.Point
}

func NewWorkspace(n int) *Workspace {
	return &Workspace{
		N:      n,
		Local:  mat.NewDense(n, n, nil),
		Load:   make([]float64, n),
		Global: make([]int, n),
		Coords: make([]geometry2D.Point, n),
	}
}

func (ws *Workspace) Clear() {
	ws.Local.Zero()
	clear(ws.Load)
	for i := range ws.Global {
		ws.Global[i] = -1
	}
}

func (ws *Workspace) AddLocal(i, j int, val float64) {
	ws.Local.Set(i, j, ws.Local.At(i, j)+val)
}

/*
Scatter adds the local block into the global system. Diagonal terms go to Di, the off diagonal term
of local rows (i,j) lands at the lower triangle entry of its global rows.
*/
func (ws *Workspace) Scatter(A *utils.SymmSparse, b []float64) (err error) {
	for i := 0; i < ws.N; i++ {
		gi := ws.Global[i]
		if gi < 0 {
			return fmt.Errorf("local row %d has no global vertex: %w", i, utils.ErrInvalidElement)
		}
		b[gi] += ws.Load[i]
		A.Di[gi] += ws.Local.At(i, i)
		for j := 0; j < i; j++ {
			if err = A.Add(gi, ws.Global[j], ws.Local.At(i, j)); err != nil {
				return
			}
		}
	}
	return
}

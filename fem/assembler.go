package fem

import (
	"fmt"

	"github.com/notargets/gofem2d/utils"
)

// Assembler fills the workspace with the local block and load of one element
type Assembler interface {
	NumLocal() int
	Assemble(ws *Workspace, k int, t float64) error
}

/*
AssembleSystem clears A and b, then assembles and scatters every element at time t.
First kind conditions are not applied here.
*/
func AssembleSystem(asm Assembler, bcs *BoundarySet, ws *Workspace, A *utils.SymmSparse, b []float64,
	nElements int, t float64) (err error) {
	if ws.N != asm.NumLocal() {
		return fmt.Errorf("workspace holds %d local rows, elements have %d", ws.N, asm.NumLocal())
	}
	A.ClearValues()
	clear(b)
	if bcs != nil {
		bcs.Reset()
	}
	for k := 0; k < nElements; k++ {
		ws.Clear()
		if err = asm.Assemble(ws, k, t); err != nil {
			return fmt.Errorf("element %d: %w", k, err)
		}
		if err = ws.Scatter(A, b); err != nil {
			return fmt.Errorf("element %d: %w", k, err)
		}
	}
	return
}

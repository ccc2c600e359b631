package fem

import (
	"fmt"

	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/types"
	"github.com/notargets/gofem2d/utils"
)

/*
BoundaryCondition prescribes the value (First kind), the flux (Second kind) or a flux proportional to
the value (Third kind, coefficient Beta) along a polyline of mesh vertices.
*/
type BoundaryCondition struct {
	Name     string
	Kind     types.BCKind
	Value    types.TimeFunc
	Vertices types.Polyline
	Beta     float64
	edges    map[types.EdgeKey]struct{}
}

func NewBoundaryCondition(kind types.BCKind, value types.TimeFunc, vertices []int,
	beta float64) (bc *BoundaryCondition, err error) {
	bc = &BoundaryCondition{
		Kind:     kind,
		Value:    value,
		Vertices: append(types.Polyline(nil), vertices...),
		Beta:     beta,
	}
	if err = bc.validate(); err != nil {
		return nil, err
	}
	bc.edges = make(map[types.EdgeKey]struct{}, len(vertices))
	for _, ek := range bc.Vertices.Edges() {
		bc.edges[ek] = struct{}{}
	}
	return
}

func (bc *BoundaryCondition) validate() error {
	if bc.Value == nil {
		return fmt.Errorf("%s kind condition has no value function: %w",
			bc.Kind, utils.ErrMalformedBoundaryCondition)
	}
	for _, v := range bc.Vertices {
		if v < 0 {
			return fmt.Errorf("negative vertex index %d: %w", v, utils.ErrMalformedBoundaryCondition)
		}
	}
	switch bc.Kind {
	case types.BC_First:
		if len(bc.Vertices) < 1 {
			return fmt.Errorf("first kind condition needs at least one vertex: %w",
				utils.ErrMalformedBoundaryCondition)
		}
	case types.BC_Second, types.BC_Third:
		if len(bc.Vertices) < 2 {
			return fmt.Errorf("%s kind condition needs a polyline of at least two vertices, have %d: %w",
				bc.Kind, len(bc.Vertices), utils.ErrMalformedBoundaryCondition)
		}
		if bc.Kind == types.BC_Third && bc.Beta <= 0 {
			return fmt.Errorf("third kind condition needs beta > 0, have %g: %w",
				bc.Beta, utils.ErrMalformedBoundaryCondition)
		}
	default:
		return fmt.Errorf("unknown condition kind %d: %w", bc.Kind, utils.ErrMalformedBoundaryCondition)
	}
	return nil
}

// CheckEdge reports whether (v1,v2) is a consecutive pair of the polyline, in either order
func (bc *BoundaryCondition) CheckEdge(v1, v2 int) bool {
	if v1 < 0 || v2 < 0 {
		return false
	}
	_, ok := bc.edges[types.NewEdgeKey([2]int{v1, v2})]
	return ok
}

func (bc *BoundaryCondition) String() string {
	name := bc.Name
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf("%s[%s, %d vertices]", name, bc.Kind, len(bc.Vertices))
}

/*
BoundarySet folds Second and Third kind terms into element blocks, and eliminates First kind
vertices from the assembled system. It counts edge matches per condition so conditions whose
polyline bounds no element edge can be reported.
*/
type BoundarySet struct {
	Conds   []*BoundaryCondition
	matches []int
}

func NewBoundarySet(conds []*BoundaryCondition) *BoundarySet {
	return &BoundarySet{
		Conds:   conds,
		matches: make([]int, len(conds)),
	}
}

// Reset clears the match counters at the start of an assembly pass
func (bs *BoundarySet) Reset() {
	clear(bs.matches)
}

/*
FoldEdge adds the natural condition terms of the edge between local rows i and j. With L the edge length:

	Second:  b_i += L/6 (2 f_i + f_j),   b_j += L/6 (f_i + 2 f_j)
	Third:   A += beta L/6 [2 1; 1 2],   b as Second with h = beta L/6
*/
func (bs *BoundarySet) FoldEdge(ws *Workspace, i, j int, t float64) {
	var (
		gi, gj = ws.Global[i], ws.Global[j]
		pi, pj = ws.Coords[i], ws.Coords[j]
	)
	for n, bc := range bs.Conds {
		if bc.Kind == types.BC_First || !bc.CheckEdge(gi, gj) {
			continue
		}
		bs.matches[n]++
		var (
			h      = geometry2D.Distance(pi, pj) / 6
			fi, fj = bc.Value(pi, t), bc.Value(pj, t)
		)
		if bc.Kind == types.BC_Third {
			h *= bc.Beta
			ws.AddLocal(i, i, 2*h)
			ws.AddLocal(i, j, h)
			ws.AddLocal(j, i, h)
			ws.AddLocal(j, j, 2*h)
		}
		ws.Load[i] += h * (2*fi + fj)
		ws.Load[j] += h * (fi + 2*fj)
	}
}

// Unmatched lists the natural conditions that touched no element edge in the last assembly pass
func (bs *BoundarySet) Unmatched() (unmatched []*BoundaryCondition) {
	for n, bc := range bs.Conds {
		if bc.Kind != types.BC_First && bs.matches[n] == 0 {
			unmatched = append(unmatched, bc)
		}
	}
	return
}

/*
FirstKindValues collects the pinned value of every First kind vertex at time t. A vertex listed by
several conditions takes the value of the last one.
*/
func (bs *BoundarySet) FirstKindValues(vertices []geometry2D.Point, t float64) (order []int,
	values map[int]float64, err error) {
	values = make(map[int]float64)
	for _, bc := range bs.Conds {
		if bc.Kind != types.BC_First {
			continue
		}
		for _, v := range bc.Vertices {
			if v >= len(vertices) {
				err = fmt.Errorf("condition %s references vertex %d of %d: %w",
					bc, v, len(vertices), utils.ErrMalformedBoundaryCondition)
				return
			}
			if _, ok := values[v]; !ok {
				order = append(order, v)
			}
			values[v] = bc.Value(vertices[v], t)
		}
	}
	return
}

/*
ApplyFirstKind pins x[i] = g(v_i) by symmetric elimination of row and column i:

	di[i] = 1,  b[i] = g(v_i)
	for (i,j) in row i:           b[j] -= A(i,j) b[i], A(i,j) = 0
	for rows s > i with (s,i):    b[s] -= A(s,i) b[i], A(s,i) = 0

The remaining system stays symmetric.
*/
func (bs *BoundarySet) ApplyFirstKind(A *utils.SymmSparse, b []float64, vertices []geometry2D.Point,
	t float64) (err error) {
	var (
		order  []int
		values map[int]float64
	)
	if order, values, err = bs.FirstKindValues(vertices, t); err != nil {
		return
	}
	for _, i := range order {
		A.Di[i] = 1
		b[i] = values[i]
		for k := A.Ig[i]; k < A.Ig[i+1]; k++ {
			b[A.Jg[k]] -= A.Gg[k] * b[i]
			A.Gg[k] = 0
		}
		for s := i + 1; s < A.N; s++ {
			if k, ok := A.Index(s, i); ok {
				b[s] -= A.Gg[k] * b[i]
				A.Gg[k] = 0
			}
		}
	}
	return
}

package fem

import (
	"fmt"
	"math"

	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/utils"
)

/*
TriangleGeometry holds the transform of a linear triangle. Grad[i] is the constant gradient of
shape function i, the last two columns of D^-1:

	grad N0 = ((y1-y2), (x2-x1)) / detD
	grad N1 = ((y2-y0), (x0-x2)) / detD
	grad N2 = ((y0-y1), (x1-x0)) / detD
*/
type TriangleGeometry struct {
	DetD float64
	Grad [3][2]float64
}

func NewTriangleGeometry(p [3]geometry2D.Point) (tg TriangleGeometry, err error) {
	tg.DetD = geometry2D.Det(p[0], p[1], p[2])
	if math.Abs(tg.DetD) < utils.NODETOL || !utils.IsFinite(tg.DetD) {
		err = fmt.Errorf("triangle determinant %g: %w", tg.DetD, utils.ErrInvalidGeometry)
		return
	}
	for i := 0; i < 3; i++ {
		j, k := (i+1)%3, (i+2)%3
		tg.Grad[i][0] = (p[j].X[1] - p[k].X[1]) / tg.DetD
		tg.Grad[i][1] = (p[k].X[0] - p[j].X[0]) / tg.DetD
	}
	return
}

// Mass returns the closed form integral of Ni*Nj, |detD|/12 on the diagonal and |detD|/24 off it
func (tg TriangleGeometry) Mass(i, j int) float64 {
	if i == j {
		return math.Abs(tg.DetD) / 12
	}
	return math.Abs(tg.DetD) / 24
}

// Stiffness returns the integral of grad Ni . grad Nj
func (tg TriangleGeometry) Stiffness(i, j int) float64 {
	return math.Abs(tg.DetD) / 2 * (tg.Grad[i][0]*tg.Grad[j][0] + tg.Grad[i][1]*tg.Grad[j][1])
}

// HistoryFunc adds time layer terms to the local load given the unscaled mass block
type HistoryFunc func(ws *Workspace, mass *[3][3]float64)

/*
TriangleAssembler builds the local block lambda*G + MassScale*gamma*M and the 2-1-1 load

	b_i = |detD|/24 (2 f_i + f_j + f_k)

of linear triangles, then folds natural boundary terms of the three edges.
*/
type TriangleAssembler struct {
	Mesh      *mesh.Mesh
	BCs       *BoundarySet
	MassScale float64
	History   HistoryFunc
}

func NewTriangleAssembler(m *mesh.Mesh, bcs *BoundarySet) *TriangleAssembler {
	return &TriangleAssembler{
		Mesh:      m,
		BCs:       bcs,
		MassScale: 1,
	}
}

func (ta *TriangleAssembler) NumLocal() int { return 3 }

func (ta *TriangleAssembler) Assemble(ws *Workspace, k int, t float64) (err error) {
	var (
		el   = ta.Mesh.Elements[k]
		mat  = ta.Mesh.Material(k)
		p    [3]geometry2D.Point
		f    [3]float64
		mass [3][3]float64
		tg   TriangleGeometry
	)
	for i, v := range el.Verts {
		p[i] = ta.Mesh.Vertices[v]
		ws.Global[i] = v
		ws.Coords[i] = p[i]
		f[i] = mat.SourceAt(p[i], t)
	}
	if tg, err = NewTriangleGeometry(p); err != nil {
		return
	}
	area24 := math.Abs(tg.DetD) / 24
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			mass[i][j] = mat.Gamma * tg.Mass(i, j)
			ws.Local.Set(i, j, mat.Lambda*tg.Stiffness(i, j)+ta.MassScale*mass[i][j])
		}
		ws.Load[i] = area24 * (2*f[i] + f[(i+1)%3] + f[(i+2)%3])
	}
	if ta.History != nil {
		ta.History(ws, &mass)
	}
	if ta.BCs != nil {
		ta.BCs.FoldEdge(ws, 0, 1, t)
		ta.BCs.FoldEdge(ws, 1, 2, t)
		ta.BCs.FoldEdge(ws, 2, 0, t)
	}
	return
}

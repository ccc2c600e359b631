package fem

import (
	"fmt"
	"math"

	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/utils"
)

// Local positions of the bilinear rectangle corners
const (
	BottomLeft = iota
	BottomRight
	TopLeft
	TopRight
)

// Sides of the rectangle as pairs of local positions
var rectangleSides = [4][2]int{
	{BottomLeft, BottomRight},
	{BottomLeft, TopLeft},
	{BottomRight, TopRight},
	{TopLeft, TopRight},
}

/*
RectangleCorners maps the stored (sorted index) corners of element k to geometric positions,
global[pos] is the vertex at that position.
*/
func RectangleCorners(m *mesh.Mesh, k int) (global [4]int, err error) {
	var (
		bb   = m.Bounds(k)
		tol  = utils.NODETOL * math.Max(bb.Width(), bb.Height())
		seen [4]bool
	)
	for _, v := range m.Elements[k].Verts {
		pos, ok := bb.Corner(m.Vertices[v], tol)
		if !ok || seen[pos] {
			err = fmt.Errorf("vertex %d is not a distinct corner of rectangle %d: %w", v, k, utils.ErrInvalidGeometry)
			return
		}
		seen[pos] = true
		global[pos] = v
	}
	return
}

/*
BilinearWeights returns the shape function values of the four positions at (x, y) inside
the rectangle [xmin,xmax] x [ymin,ymax]:

	N0 = (xmax-x)(ymax-y)/(hx hy)    N1 = (x-xmin)(ymax-y)/(hx hy)
	N2 = (xmax-x)(y-ymin)/(hx hy)    N3 = (x-xmin)(y-ymin)/(hx hy)
*/
func BilinearWeights(xmin, xmax, ymin, ymax, x, y float64) (w [4]float64) {
	hxhy := (xmax - xmin) * (ymax - ymin)
	w[BottomLeft] = (xmax - x) * (ymax - y) / hxhy
	w[BottomRight] = (x - xmin) * (ymax - y) / hxhy
	w[TopLeft] = (xmax - x) * (y - ymin) / hxhy
	w[TopRight] = (x - xmin) * (y - ymin) / hxhy
	return
}

/*
RectangleAssembler builds the bilinear block with a = hy/hx, c = hx/hy and coefficient 1/(6 mu):

	          | 2a+2c   -2a+c    a-2c    -a-c  |
	1/(6mu) * | -2a+c   2a+2c   -a-c     a-2c  |
	          | a-2c    -a-c    2a+2c   -2a+c  |
	          | -a-c    a-2c    -2a+c   2a+2c  |

and the load J hx hy / 4 per corner, J taken from the material source at the element centre.
*/
type RectangleAssembler struct {
	Mesh *mesh.Mesh
	BCs  *BoundarySet
	// Mu returns the absolute permeability of element k
	Mu func(k int) float64
}

func NewRectangleAssembler(m *mesh.Mesh, bcs *BoundarySet) (ra *RectangleAssembler) {
	ra = &RectangleAssembler{
		Mesh: m,
		BCs:  bcs,
	}
	ra.Mu = ra.linearMu
	return
}

func (ra *RectangleAssembler) linearMu(k int) float64 {
	mur := ra.Mesh.Material(k).Mu
	if mur == 0 {
		mur = 1
	}
	return utils.Mu0 * mur
}

func (ra *RectangleAssembler) NumLocal() int { return 4 }

func (ra *RectangleAssembler) Assemble(ws *Workspace, k int, t float64) (err error) {
	var (
		global [4]int
		bb     = ra.Mesh.Bounds(k)
		hx, hy = bb.Width(), bb.Height()
		mu     = ra.Mu(k)
	)
	if global, err = RectangleCorners(ra.Mesh, k); err != nil {
		return
	}
	if mu <= 0 || !utils.IsFinite(mu) {
		return fmt.Errorf("permeability %g of rectangle %d: %w", mu, k, utils.ErrInvalidGeometry)
	}
	for pos, v := range global {
		ws.Global[pos] = v
		ws.Coords[pos] = ra.Mesh.Vertices[v]
	}
	var (
		coeff  = 1 / (6 * mu)
		a, c   = hy / hx, hx / hy
		diag   = coeff * (2*a + 2*c)
		alongX = coeff * (-2*a + c) // corners sharing y
		alongY = coeff * (a - 2*c)  // corners sharing x
		cross  = coeff * (-a - c)
		load   = ra.Mesh.Material(k).SourceAt(bb.Centroid(), t) * hx * hy / 4
	)
	for i := 0; i < 4; i++ {
		ws.Local.Set(i, i, diag)
		ws.Load[i] = load
	}
	for _, pair := range [][2]int{{BottomLeft, BottomRight}, {TopLeft, TopRight}} {
		ws.Local.Set(pair[0], pair[1], alongX)
		ws.Local.Set(pair[1], pair[0], alongX)
	}
	for _, pair := range [][2]int{{BottomLeft, TopLeft}, {BottomRight, TopRight}} {
		ws.Local.Set(pair[0], pair[1], alongY)
		ws.Local.Set(pair[1], pair[0], alongY)
	}
	for _, pair := range [][2]int{{BottomLeft, TopRight}, {BottomRight, TopLeft}} {
		ws.Local.Set(pair[0], pair[1], cross)
		ws.Local.Set(pair[1], pair[0], cross)
	}
	if ra.BCs != nil {
		for _, side := range rectangleSides {
			ra.BCs.FoldEdge(ws, side[0], side[1], t)
		}
	}
	return
}

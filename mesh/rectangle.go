package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/types"
	"github.com/notargets/gofem2d/utils"
)

// Area assigns a material to the grid cells whose centres it contains
type Area struct {
	XMin, XMax float64
	YMin, YMax float64
	Material   int
}

func (a Area) Contains(p geometry2D.Point) bool {
	return p.X[0] >= a.XMin && p.X[0] <= a.XMax && p.X[1] >= a.YMin && p.X[1] <= a.YMax
}

// Grid remembers the tensor product lines a rectangle mesh was built from
type Grid struct {
	XLines, YLines []float64
}

func (g Grid) Index(i, j int) int { return j*len(g.XLines) + i }

/*
Side returns the boundary polyline of one grid side, "bottom", "right", "top" or "left",
walked in the direction of increasing coordinate.
*/
func (g Grid) Side(name string) (pl types.Polyline, err error) {
	var (
		nx, ny = len(g.XLines), len(g.YLines)
	)
	switch name {
	case "bottom":
		for i := 0; i < nx; i++ {
			pl = append(pl, g.Index(i, 0))
		}
	case "top":
		for i := 0; i < nx; i++ {
			pl = append(pl, g.Index(i, ny-1))
		}
	case "left":
		for j := 0; j < ny; j++ {
			pl = append(pl, g.Index(0, j))
		}
	case "right":
		for j := 0; j < ny; j++ {
			pl = append(pl, g.Index(nx-1, j))
		}
	default:
		err = fmt.Errorf("unknown grid side [%s], expected bottom, right, top or left", name)
	}
	return
}

/*
NewRectangleMesh builds a structured mesh of bilinear rectangles on the tensor product of xLines and yLines.
Vertices are numbered row by row, x fastest, so every element's corners are already in
bottom-left, bottom-right, top-left, top-right order. A cell takes the material of the last area
containing its centre.
*/
func NewRectangleMesh(xLines, yLines []float64, areas []Area,
	materials map[int]*Material) (m *Mesh, grid Grid, err error) {
	var (
		vertices []geometry2D.Point
		cells    []Element
	)
	if grid, vertices, cells, err = gridCells(xLines, yLines, areas); err != nil {
		return
	}
	m, err = NewMesh(Rectangles, vertices, cells, materials)
	return
}

// NewTriangleGridMesh splits every cell of the grid into two triangles along its rising diagonal
func NewTriangleGridMesh(xLines, yLines []float64, areas []Area,
	materials map[int]*Material) (m *Mesh, grid Grid, err error) {
	var (
		vertices []geometry2D.Point
		cells    []Element
	)
	if grid, vertices, cells, err = gridCells(xLines, yLines, areas); err != nil {
		return
	}
	elements := make([]Element, 0, 2*len(cells))
	for _, c := range cells {
		bl, br, tl, tr := c.Verts[0], c.Verts[1], c.Verts[2], c.Verts[3]
		elements = append(elements,
			Element{Verts: []int{bl, br, tr}, Material: c.Material},
			Element{Verts: []int{bl, tr, tl}, Material: c.Material})
	}
	m, err = NewMesh(Triangles, vertices, elements, materials)
	return
}

func gridCells(xLines, yLines []float64, areas []Area) (grid Grid, vertices []geometry2D.Point,
	cells []Element, err error) {
	xs, ys := sortedLines(xLines), sortedLines(yLines)
	if len(xs) < 2 || len(ys) < 2 {
		err = fmt.Errorf("need at least two distinct grid lines in each direction, have %d and %d: %w",
			len(xs), len(ys), utils.ErrInvalidGeometry)
		return
	}
	grid = Grid{XLines: xs, YLines: ys}
	nx, ny := len(xs), len(ys)
	vertices = make([]geometry2D.Point, 0, nx*ny)
	cells = make([]Element, 0, (nx-1)*(ny-1))
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			vertices = append(vertices, geometry2D.NewPoint(xs[i], ys[j]))
		}
	}
	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx-1; i++ {
			centre := geometry2D.NewPoint(0.5*(xs[i]+xs[i+1]), 0.5*(ys[j]+ys[j+1]))
			var (
				mat   int
				found bool
			)
			for a := len(areas) - 1; a >= 0; a-- {
				if areas[a].Contains(centre) {
					mat, found = areas[a].Material, true
					break
				}
			}
			if !found {
				err = fmt.Errorf("cell centred at (%g,%g) is not covered by any area: %w",
					centre.X[0], centre.X[1], utils.ErrInvalidElement)
				return
			}
			cells = append(cells, Element{
				Verts: []int{
					grid.Index(i, j), grid.Index(i+1, j),
					grid.Index(i, j+1), grid.Index(i+1, j+1),
				},
				Material: mat,
			})
		}
	}
	return
}

func sortedLines(lines []float64) (out []float64) {
	out = append(out, lines...)
	sort.Float64s(out)
	var n int
	for i, x := range out {
		if i > 0 && x-out[n-1] < utils.NODETOL {
			continue
		}
		out[n] = x
		n++
	}
	return out[:n]
}

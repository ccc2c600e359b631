package mesh

import (
	"fmt"
	"math"

	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/types"
	"github.com/notargets/gofem2d/utils"
)

type Kind uint8

const (
	Triangles Kind = iota
	Rectangles
)

func (k Kind) String() string {
	if k == Rectangles {
		return "Rectangles"
	}
	return "Triangles"
}

// NumVerts is the vertex count of one element of this kind
func (k Kind) NumVerts() int {
	if k == Rectangles {
		return 4
	}
	return 3
}

type Element struct {
	Verts    []int
	Material int
}

/*
Material holds the coefficients looked up by material id during assembly.

	Lambda  diffusion / conductivity
	Gamma   reaction term (elliptic), sigma (parabolic)
	Mu      relative permeability (magnetic), Curve overrides it when present
	Source  source density, current density for the magnetic problem
*/
type Material struct {
	Lambda float64
	Gamma  float64
	Mu     float64
	Source types.TimeFunc
	Curve  *ReluctivityCurve
}

func (mat *Material) SourceAt(p geometry2D.Point, t float64) float64 {
	if mat.Source == nil {
		return 0
	}
	return mat.Source(p, t)
}

func (mat *Material) IsNonLinear() bool { return mat.Curve != nil }

// Mesh is immutable once built by NewMesh
type Mesh struct {
	Kind      Kind
	Vertices  []geometry2D.Point
	Elements  []Element
	Materials map[int]*Material
	bounds    []*geometry2D.BoundingBox
}

func NewMesh(kind Kind, vertices []geometry2D.Point, elements []Element,
	materials map[int]*Material) (m *Mesh, err error) {
	m = &Mesh{
		Kind:      kind,
		Vertices:  vertices,
		Elements:  elements,
		Materials: materials,
		bounds:    make([]*geometry2D.BoundingBox, len(elements)),
	}
	if err = m.validate(); err != nil {
		return nil, err
	}
	return
}

func (m *Mesh) validate() (err error) {
	var (
		nv = m.Kind.NumVerts()
	)
	for k, el := range m.Elements {
		if len(el.Verts) != nv {
			return fmt.Errorf("element %d has %d vertices, %s need %d: %w",
				k, len(el.Verts), m.Kind, nv, utils.ErrInvalidElement)
		}
		for _, v := range el.Verts {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("element %d references vertex %d of %d: %w",
					k, v, len(m.Vertices), utils.ErrInvalidElement)
			}
		}
		if mat, ok := m.Materials[el.Material]; !ok || mat == nil {
			return fmt.Errorf("element %d references undefined material %d: %w",
				k, el.Material, utils.ErrInvalidElement)
		}
		coords := m.Coords(k)
		m.bounds[k] = geometry2D.NewBoundingBox(coords)
		switch m.Kind {
		case Triangles:
			if math.Abs(geometry2D.Det(coords[0], coords[1], coords[2])) < utils.NODETOL {
				return fmt.Errorf("element %d is degenerate: %w", k, utils.ErrInvalidGeometry)
			}
		case Rectangles:
			var (
				bb   = m.bounds[k]
				seen [4]bool
			)
			if bb.Width() < utils.NODETOL || bb.Height() < utils.NODETOL {
				return fmt.Errorf("element %d has zero extent: %w", k, utils.ErrInvalidGeometry)
			}
			for _, p := range coords {
				pos, ok := bb.Corner(p, utils.NODETOL*math.Max(bb.Width(), bb.Height()))
				if !ok || seen[pos] {
					return fmt.Errorf("element %d is not an axis aligned rectangle: %w",
						k, utils.ErrInvalidGeometry)
				}
				seen[pos] = true
			}
		}
	}
	return
}

func (m *Mesh) NumVertices() int { return len(m.Vertices) }
func (m *Mesh) NumElements() int { return len(m.Elements) }

// Connectivity lists the vertex indices of every element, the input of the portrait builder
func (m *Mesh) Connectivity() (EToV [][]int) {
	EToV = make([][]int, len(m.Elements))
	for k, el := range m.Elements {
		EToV[k] = el.Verts
	}
	return
}

func (m *Mesh) Coords(k int) (coords []geometry2D.Point) {
	el := m.Elements[k]
	coords = make([]geometry2D.Point, len(el.Verts))
	for i, v := range el.Verts {
		coords[i] = m.Vertices[v]
	}
	return
}

func (m *Mesh) Bounds(k int) *geometry2D.BoundingBox { return m.bounds[k] }

func (m *Mesh) Material(k int) *Material { return m.Materials[m.Elements[k].Material] }

// HasNonLinear reports whether any element uses a reluctivity curve
func (m *Mesh) HasNonLinear() bool {
	for _, el := range m.Elements {
		if m.Materials[el.Material].IsNonLinear() {
			return true
		}
	}
	return false
}

// LocateTriangle finds the triangle containing p and its barycentric weights
func (m *Mesh) LocateTriangle(p geometry2D.Point) (k int, w [3]float64, ok bool) {
	for k = range m.Elements {
		if !m.bounds[k].PointInside(p, utils.POINTTOL) {
			continue
		}
		v := m.Elements[k].Verts
		if w, ok = geometry2D.Barycentric(p, m.Vertices[v[0]], m.Vertices[v[1]], m.Vertices[v[2]],
			utils.POINTTOL); ok {
			return
		}
	}
	return -1, w, false
}

// LocateRectangle finds the rectangle whose bounds contain p within tol
func (m *Mesh) LocateRectangle(p geometry2D.Point, tol float64) (k int, ok bool) {
	for k = range m.Elements {
		if m.bounds[k].PointInside(p, tol) {
			return k, true
		}
	}
	return -1, false
}

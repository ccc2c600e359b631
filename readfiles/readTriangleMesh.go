package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/types"
	"github.com/notargets/gofem2d/utils"
)

/*
TriangleMesh is the content of a line oriented triangle mesh file:

	v x y              vertex, numbered in order of appearance from 0
	e a b c [mat]      triangle with optional material id
	b i j k ... i      closed boundary polyline, first vertex repeated at the end
*/
type TriangleMesh struct {
	Vertices []geometry2D.Point
	Elements []mesh.Element
	Border   types.Polyline
	elemKeys map[[3]int]struct{}
}

func NewTriangleMesh() *TriangleMesh {
	return &TriangleMesh{elemKeys: make(map[[3]int]struct{})}
}

// AddPoint appends a vertex, points within tol of an existing vertex are rejected
func (tm *TriangleMesh) AddPoint(p geometry2D.Point, tol float64) error {
	for i, q := range tm.Vertices {
		if math.Abs(p.X[0]-q.X[0]) < tol && math.Abs(p.X[1]-q.X[1]) < tol {
			return fmt.Errorf("point (%g,%g) duplicates vertex %d: %w", p.X[0], p.X[1], i, utils.ErrInvalidGeometry)
		}
	}
	tm.Vertices = append(tm.Vertices, p)
	return nil
}

// AddElement appends a triangle, repeated vertices and repeated triangles are rejected
func (tm *TriangleMesh) AddElement(verts [3]int, material int) error {
	key := verts
	sort.Ints(key[:])
	if key[0] == key[1] || key[1] == key[2] {
		return fmt.Errorf("element %v is a degenerate triangle: %w", verts, utils.ErrInvalidElement)
	}
	if key[0] < 0 || key[2] >= len(tm.Vertices) {
		return fmt.Errorf("element %v references a vertex outside [0,%d): %w", verts, len(tm.Vertices),
			utils.ErrInvalidElement)
	}
	if _, ok := tm.elemKeys[key]; ok {
		return fmt.Errorf("element %v already exists: %w", verts, utils.ErrInvalidElement)
	}
	tm.elemKeys[key] = struct{}{}
	tm.Elements = append(tm.Elements, mesh.Element{Verts: verts[:], Material: material})
	return nil
}

/*
SetBorder validates and stores the boundary polyline. It must be closed and every edge must be a
boundary edge of the triangles read so far, used by exactly one element.
*/
func (tm *TriangleMesh) SetBorder(border types.Polyline) error {
	if len(border) < 4 || !border.Closed() {
		return fmt.Errorf("border %v must be a closed polyline of at least three vertices: %w",
			[]int(border), utils.ErrMalformedBoundaryCondition)
	}
	edgeCount := make(map[types.EdgeKey]int)
	for _, el := range tm.Elements {
		for i := 0; i < 3; i++ {
			edgeCount[types.NewEdgeKey([2]int{el.Verts[i], el.Verts[(i+1)%3]})]++
		}
	}
	for _, ek := range border.Edges() {
		if edgeCount[ek] != 1 {
			v := ek.GetVertices(false)
			return fmt.Errorf("border edge [%d,%d] is not a boundary edge of the mesh: %w",
				v[0], v[1], utils.ErrMalformedBoundaryCondition)
		}
	}
	tm.Border = append(types.Polyline(nil), border...)
	return nil
}

// Orientation is +1 when the border runs counterclockwise, -1 otherwise
func (tm *TriangleMesh) Orientation() float64 {
	var area2 float64
	for i := 1; i < len(tm.Border); i++ {
		a, b := tm.Vertices[tm.Border[i-1]], tm.Vertices[tm.Border[i]]
		area2 += a.X[0]*b.X[1] - b.X[0]*a.X[1]
	}
	if area2 < 0 {
		return -1
	}
	return 1
}

func (tm *TriangleMesh) Mesh(materials map[int]*mesh.Material) (*mesh.Mesh, error) {
	return mesh.NewMesh(mesh.Triangles, tm.Vertices, tm.Elements, materials)
}

func ReadTriangleMesh(r io.Reader) (tm *TriangleMesh, err error) {
	var (
		scanner = bufio.NewScanner(r)
		lineNum int
	)
	tm = NewTriangleMesh()
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: file format is wrong [%s]", lineNum, scanner.Text())
		}
		switch fields[0] {
		case "v":
			if err = tm.readVertex(fields); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
		case "e":
			if err = tm.readElement(fields); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
		case "b":
			var border []int
			if border, err = parseInts(fields[1:]); err != nil {
				return nil, fmt.Errorf("line %d: can't parse border: %w", lineNum, err)
			}
			if err = tm.SetBorder(border); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
		default:
			return nil, fmt.Errorf("line %d: unknown record type [%s]", lineNum, fields[0])
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	if len(tm.Border) == 0 {
		return nil, fmt.Errorf("mesh has no border line: %w", utils.ErrMalformedBoundaryCondition)
	}
	return
}

func ReadTriangleMeshFile(filename string) (tm *TriangleMesh, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	return ReadTriangleMesh(file)
}

func (tm *TriangleMesh) readVertex(fields []string) (err error) {
	if len(fields) != 3 {
		return fmt.Errorf("vertex format is wrong %v", fields)
	}
	var x, y float64
	if x, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return
	}
	if y, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return
	}
	return tm.AddPoint(geometry2D.NewPoint(x, y), utils.DUPTOL)
}

func (tm *TriangleMesh) readElement(fields []string) (err error) {
	if len(fields) != 4 && len(fields) != 5 {
		return fmt.Errorf("element format is wrong %v", fields)
	}
	var vals []int
	if vals, err = parseInts(fields[1:]); err != nil {
		return
	}
	var material int
	if len(vals) == 4 {
		material = vals[3]
	}
	return tm.AddElement([3]int{vals[0], vals[1], vals[2]}, material)
}

func parseInts(fields []string) (vals []int, err error) {
	vals = make([]int, len(fields))
	for i, f := range fields {
		if vals[i], err = strconv.Atoi(f); err != nil {
			return nil, err
		}
	}
	return
}

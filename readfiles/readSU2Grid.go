package readfiles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/types"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle                     = 5
	ELType_Quadrilateral                = 9
	ELType_Tetrahedral                  = 10
	ELType_Hexahedral                   = 12
	ELType_Prism                        = 13
	ELType_Pyramid                      = 14
)

var errEarlyEOF = errors.New("early end of file")

// SU2Mesh is the 2D content of an SU2 file, marker edges are chained into boundary polylines
type SU2Mesh struct {
	Kind     mesh.Kind
	Vertices []geometry2D.Point
	Elements []mesh.Element
	Markers  map[types.BCTAG][]types.Polyline
}

// Mesh builds the mesh with every element assigned material 0
func (su *SU2Mesh) Mesh(materials map[int]*mesh.Material) (*mesh.Mesh, error) {
	return mesh.NewMesh(su.Kind, su.Vertices, su.Elements, materials)
}

func readBCs(reader *bufio.Reader) (markers map[types.BCTAG][]types.Polyline, err error) {
	var (
		nType, v1, v2 int
		NBCs          int
		line          string
	)
	if NBCs, err = readNumber(reader); err != nil {
		return
	}
	BCEdges := make(map[types.BCTAG][]types.EdgeInt, NBCs)
	order := make([]types.BCTAG, 0, NBCs)
	for n := 0; n < NBCs; n++ {
		var (
			label  string
			nEdges int
		)
		if label, err = readLabel(reader); err != nil {
			return
		}
		key := types.NewBCTAG(label)
		if nEdges, err = readNumber(reader); err != nil {
			return
		}
		if _, ok := BCEdges[key]; !ok {
			order = append(order, key)
		}
		// Repeated tags append to a common chain
		for i := 0; i < nEdges; i++ {
			if line, err = getLine(reader); err != nil {
				return
			}
			if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
				return nil, fmt.Errorf("marker %s edge %d [%s]: %w", key, i, line, err)
			}
			if SU2ElementType(nType) != ELType_LINE {
				return nil, fmt.Errorf("marker %s: BCs should only contain line elements in 2D, have type %d",
					key, nType)
			}
			BCEdges[key] = append(BCEdges[key], types.NewEdgeInt([2]int{v1, v2}))
		}
	}
	markers = make(map[types.BCTAG][]types.Polyline, len(order))
	for _, key := range order {
		if pl, chainErr := types.PolylineFromEdges(BCEdges[key]); chainErr == nil {
			markers[key] = []types.Polyline{pl}
			continue
		}
		keys := make([]types.EdgeKey, len(BCEdges[key]))
		for i, e := range BCEdges[key] {
			keys[i] = e.GetKey()
		}
		markers[key] = types.ChainEdges(keys)
	}
	return
}

func readVertices(reader *bufio.Reader) (verts []geometry2D.Point, err error) {
	var (
		n, Nv int
		x, y  float64
		line  string
	)
	if Nv, err = readNumber(reader); err != nil {
		return
	}
	verts = make([]geometry2D.Point, Nv)
	for i := 0; i < Nv; i++ {
		if line, err = getLine(reader); err != nil {
			return
		}
		if n, err = fmt.Sscanf(line, "%f %f", &x, &y); err != nil || n != 2 {
			return nil, fmt.Errorf("unable to read coordinates of point %d from [%s]", i, line)
		}
		verts[i] = geometry2D.NewPoint(x, y)
	}
	return
}

func readElements(reader *bufio.Reader) (kind mesh.Kind, elements []mesh.Element, err error) {
	var (
		K     int
		nType int
		line  string
	)
	if K, err = readNumber(reader); err != nil {
		return
	}
	elements = make([]mesh.Element, K)
	for k := 0; k < K; k++ {
		if line, err = getLine(reader); err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return kind, nil, fmt.Errorf("empty element line %d", k)
		}
		if _, err = fmt.Sscanf(fields[0], "%d", &nType); err != nil {
			return
		}
		var elKind mesh.Kind
		switch SU2ElementType(nType) {
		case ELType_Triangle:
			elKind = mesh.Triangles
		case ELType_Quadrilateral:
			elKind = mesh.Rectangles
		default:
			return kind, nil, fmt.Errorf("element %d has unsupported type %d", k, nType)
		}
		if k == 0 {
			kind = elKind
		} else if elKind != kind {
			return kind, nil, fmt.Errorf("element %d is a %s element in a %s mesh", k, elKind, kind)
		}
		nv := kind.NumVerts()
		if len(fields) < nv+1 {
			return kind, nil, fmt.Errorf("unable to read vertices of element %d from [%s]", k, line)
		}
		verts := make([]int, nv)
		for i := range verts {
			if _, err = fmt.Sscanf(fields[i+1], "%d", &verts[i]); err != nil {
				return kind, nil, fmt.Errorf("element %d vertex %d: %w", k, i, err)
			}
		}
		elements[k] = mesh.Element{Verts: verts}
	}
	return
}

func getToken(reader *bufio.Reader) (token string, err error) {
	var line string
	if line, err = getLineNoComments(reader); err != nil {
		return
	}
	ind := strings.Index(line, "=")
	if ind < 0 {
		return "", fmt.Errorf("badly formed input line [%s], should have an =", line)
	}
	token = line[ind+1:]
	return
}

func readLabel(reader *bufio.Reader) (label string, err error) {
	var token string
	if token, err = getToken(reader); err != nil {
		return
	}
	if _, err = fmt.Sscanf(token, "%s", &label); err != nil {
		return "", fmt.Errorf("unable to read label from token: [%s]", token)
	}
	label = strings.Trim(label, " ")
	return
}

func readNumber(reader *bufio.Reader) (num int, err error) {
	var token string
	if token, err = getToken(reader); err != nil {
		return
	}
	if _, err = fmt.Sscanf(token, "%d", &num); err != nil {
		return 0, fmt.Errorf("unable to read number from token: [%s]", token)
	}
	if num < 0 {
		return 0, fmt.Errorf("negative count in token: [%s]", token)
	}
	return
}

func getLineNoComments(reader *bufio.Reader) (line string, err error) {
	for {
		if line, err = getLine(reader); err != nil {
			return
		}
		line = strings.Trim(line, " ")
		if !strings.HasPrefix(line, "%") {
			return
		}
	}
}

func getLine(reader *bufio.Reader) (line string, err error) {
	line, err = reader.ReadString('\n')
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	if err != nil {
		if err == io.EOF {
			err = errEarlyEOF
		}
		return
	}
	line = strings.TrimRight(line, "\r\n")
	return
}

func skipLines(n int, reader *bufio.Reader) (err error) {
	for i := 0; i < n; i++ {
		if _, err = getLine(reader); err != nil {
			return
		}
	}
	return
}

func ReadSU2(r io.Reader, verbose bool) (su *SU2Mesh, err error) {
	var (
		reader = bufio.NewReader(r)
		dim    int
	)
	if dim, err = readNumber(reader); err != nil {
		return
	}
	if dim != 2 {
		return nil, fmt.Errorf("SU2 file has %d dimensional data, only 2 is supported", dim)
	}
	su = &SU2Mesh{}
	if su.Kind, su.Elements, err = readElements(reader); err != nil {
		return nil, err
	}
	if su.Vertices, err = readVertices(reader); err != nil {
		return nil, err
	}
	if su.Markers, err = readBCs(reader); err != nil {
		return nil, err
	}
	if verbose {
		fmt.Printf("Read SU2 %s mesh, %d vertices, %d elements, %d markers\n",
			su.Kind, len(su.Vertices), len(su.Elements), len(su.Markers))
	}
	return
}

func ReadSU2File(filename string, verbose bool) (su *SU2Mesh, err error) {
	var file *os.File
	if verbose {
		fmt.Printf("Reading SU2 file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	return ReadSU2(file, verbose)
}

package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/gofem2d/geometry2D"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/types"
)

type MaterialGroup struct {
	ElementCount  int
	MaterialValue float64
	Title         string
}

/*
GambitMesh is a 2D triangle mesh read from a Gambit neutral file. Elements take the number of the
element group that lists them as material id.
*/
type GambitMesh struct {
	Vertices []geometry2D.Point
	Elements []mesh.Element
	Groups   map[int]*MaterialGroup
	BCs      map[types.BCTAG][]types.Polyline
}

func (gm *GambitMesh) Mesh(materials map[int]*mesh.Material) (*mesh.Mesh, error) {
	return mesh.NewMesh(mesh.Triangles, gm.Vertices, gm.Elements, materials)
}

func ReadGambit2dFile(filename string, verbose bool) (gm *GambitMesh, err error) {
	var file *os.File
	if verbose {
		fmt.Printf("Reading Gambit Neutral file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	return ReadGambit2d(file, verbose)
}

func ReadGambit2d(r io.Reader, verbose bool) (gm *GambitMesh, err error) {
	var (
		reader                  = bufio.NewReader(r)
		Nv, K, Nmats, Nbcs, Nsd int
	)
	// Skip first six lines
	if err = skipLines(6, reader); err != nil {
		return
	}
	if Nv, K, Nmats, Nbcs, Nsd, err = ReadHeader(reader); err != nil {
		return
	}
	if verbose {
		fmt.Printf("Nv = %d, K = %d\n", Nv, K)
		fmt.Printf("Nmats = %d, Nbcs = %d\n%d space dimensions\n", Nmats, Nbcs, Nsd)
	}
	if Nsd != 2 {
		return nil, fmt.Errorf("space dimensions %d, only 2 is supported", Nsd)
	}
	gm = &GambitMesh{
		Groups: make(map[int]*MaterialGroup, Nmats),
	}
	if err = skipLines(2, reader); err != nil {
		return nil, err
	}
	if gm.Vertices, err = Read2DVertices(Nv, reader); err != nil {
		return nil, err
	}
	if err = skipLines(2, reader); err != nil {
		return nil, err
	}
	if gm.Elements, err = ReadTris(K, reader); err != nil {
		return nil, err
	}
	if err = skipLines(2, reader); err != nil {
		return nil, err
	}
	if verbose {
		bb := geometry2D.NewBoundingBox(gm.Vertices)
		fmt.Printf("Bounding Box:\nXMin/XMax = %5.3f, %5.3f\nYMin/YMax = %5.3f, %5.3f\n",
			bb.XMin[0], bb.XMax[0], bb.XMin[1], bb.XMax[1])
	}
	for i := 0; i < Nmats; i++ {
		var (
			gn  int
			grp *MaterialGroup
		)
		if gn, grp, err = ReadMaterialHeader(reader); err != nil {
			return nil, err
		}
		gm.Groups[gn] = grp
		if err = ReadMaterialGroup(reader, gn, grp.ElementCount, gm.Elements); err != nil {
			return nil, err
		}
		if err = skipLines(2, reader); err != nil {
			return nil, err
		}
	}
	if gm.BCs, err = ReadBCS(Nbcs, reader, gm.Elements); err != nil {
		return nil, err
	}
	return
}

func ReadBCS(Nbcs int, reader *bufio.Reader, elements []mesh.Element) (BCs map[types.BCTAG][]types.Polyline, err error) {
	var (
		line    string
		BCEdges = make(map[types.BCTAG][]types.EdgeKey, Nbcs)
		order   []types.BCTAG
	)
	for i := 0; i < Nbcs; i++ {
		if i != 0 {
			if err = skipLines(1, reader); err != nil {
				return
			}
		}
		if line, err = getLine(reader); err != nil {
			return
		}
		// name, then an id (or a float parameter for "cyl"), then the face count
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("badly formed boundary header [%s]", line)
		}
		var numfaces int
		if numfaces, err = strconv.Atoi(fields[2]); err != nil {
			return nil, fmt.Errorf("boundary header [%s]: %w", line, err)
		}
		key := types.NewBCTAG(strings.ToLower(fields[0]))
		if _, ok := BCEdges[key]; !ok {
			order = append(order, key)
		}
		for f := 0; f < numfaces; f++ {
			var kp1, typ, faceNumberp1 int
			if line, err = getLine(reader); err != nil {
				return
			}
			if n, _ := fmt.Sscanf(line, "%d %d %d", &kp1, &typ, &faceNumberp1); n < 3 {
				return nil, fmt.Errorf("read fewer than required dimensions, read %d, need 3, line: %s", n, line)
			}
			if kp1 < 1 || kp1 > len(elements) || faceNumberp1 < 1 || faceNumberp1 > 3 {
				return nil, fmt.Errorf("boundary face [%s] is outside the mesh", line)
			}
			verts := elements[kp1-1].Verts
			BCEdges[key] = append(BCEdges[key],
				types.NewEdgeKey([2]int{verts[faceNumberp1-1], verts[faceNumberp1%3]}))
		}
		if err = skipLines(1, reader); err != nil {
			return
		}
	}
	BCs = make(map[types.BCTAG][]types.Polyline, len(order))
	for _, key := range order {
		BCs[key] = types.ChainEdges(BCEdges[key])
	}
	return
}

func ReadMaterialGroup(reader *bufio.Reader, gn, elementCount int, elements []mesh.Element) (err error) {
	var (
		line  string
		count int
	)
	for count < elementCount {
		if line, err = getLine(reader); err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return fmt.Errorf("empty line in element group %d", gn)
		}
		for _, f := range fields {
			var k int
			if k, err = strconv.Atoi(f); err != nil {
				return fmt.Errorf("element group %d: %w", gn, err)
			}
			if k < 1 || k > len(elements) {
				return fmt.Errorf("element group %d lists element %d of %d", gn, k, len(elements))
			}
			elements[k-1].Material = gn
			count++
		}
	}
	return
}

func ReadMaterialHeader(reader *bufio.Reader) (gn int, grp *MaterialGroup, err error) {
	/*
	   GROUP:           1 ELEMENTS:        977 MATERIAL:      1.000 NFLAGS:          1
	                     epsilon: 1.000
	          0
	*/
	var line string
	if line, err = getLine(reader); err != nil {
		return
	}
	fields := strings.Fields(line)
	if len(fields) < 6 || fields[0] != "GROUP:" || fields[2] != "ELEMENTS:" || fields[4] != "MATERIAL:" {
		err = fmt.Errorf("badly formed element group header [%s]", line)
		return
	}
	grp = &MaterialGroup{}
	if gn, err = strconv.Atoi(fields[1]); err != nil {
		return
	}
	if grp.ElementCount, err = strconv.Atoi(fields[3]); err != nil {
		return
	}
	if grp.MaterialValue, err = strconv.ParseFloat(fields[5], 64); err != nil {
		return
	}
	if grp.Title, err = getLine(reader); err != nil {
		return
	}
	grp.Title = strings.TrimSpace(grp.Title)
	nflags := 1
	if len(fields) >= 8 && fields[6] == "NFLAGS:" {
		if nflags, err = strconv.Atoi(fields[7]); err != nil {
			return
		}
	}
	err = skipLines(nflags, reader)
	return
}

func ReadHeader(reader *bufio.Reader) (Nv, K, Nmats, Nbcs, Nsd int, err error) {
	/*
		Nv      // num nodes in mesh
		K       // num elements
		Nmats   // num material groups
		Nbcs    // num boundary groups
		Nsd;    // num space dimensions
	*/
	var (
		line string
		n    int
		dum  int
	)
	if line, err = getLine(reader); err != nil {
		return
	}
	if n, _ = fmt.Sscanf(line, "%d %d %d %d %d %d", &Nv, &K, &Nmats, &Nbcs, &Nsd, &dum); n < 6 {
		err = fmt.Errorf("read fewer than 6 dimensions, read %d, line: %s", n, line)
		return
	}
	if Nv < 0 || K < 0 || Nmats < 0 || Nbcs < 0 {
		err = fmt.Errorf("negative counts in dimensions line: %s", line)
	}
	return
}

func Read2DVertices(Nv int, reader *bufio.Reader) (verts []geometry2D.Point, err error) {
	var (
		line   string
		n, ind int
		x, y   float64
	)
	verts = make([]geometry2D.Point, Nv)
	for i := 0; i < Nv; i++ {
		if line, err = getLine(reader); err != nil {
			return
		}
		if n, _ = fmt.Sscanf(line, "%d %f %f", &ind, &x, &y); n < 3 {
			return nil, fmt.Errorf("read fewer than required dimensions, read %d, need 3, line: %s", n, line)
		}
		if ind < 1 || ind > Nv {
			return nil, fmt.Errorf("vertex index %d outside [1,%d]", ind, Nv)
		}
		verts[ind-1] = geometry2D.NewPoint(x, y)
	}
	return
}

func ReadTris(K int, reader *bufio.Reader) (elements []mesh.Element, err error) {
	//-------------------------------------
	// Triangles:
	//-------------------------------------
	// ENDOFSECTION
	//    ELEMENTS/CELLS 1.3.0
	//      1  3  3        1       2       3
	//      2  3  3        3       2       4
	var (
		line                string
		n, ind, typ, nfaces int
		n1, n2, n3          int
	)
	elements = make([]mesh.Element, K)
	for i := 0; i < K; i++ {
		if line, err = getLine(reader); err != nil {
			return
		}
		if n, _ = fmt.Sscanf(line, "%d %d %d %d %d %d", &ind, &typ, &nfaces, &n1, &n2, &n3); n < 6 {
			return nil, fmt.Errorf("read fewer than required dimensions, read %d, need 6, line: %s", n, line)
		}
		if nfaces != 3 {
			return nil, fmt.Errorf("element %d has %d nodes, only triangles are supported", ind, nfaces)
		}
		if ind < 1 || ind > K {
			return nil, fmt.Errorf("element index %d outside [1,%d]", ind, K)
		}
		elements[ind-1] = mesh.Element{Verts: []int{n1 - 1, n2 - 1, n3 - 1}}
	}
	return
}

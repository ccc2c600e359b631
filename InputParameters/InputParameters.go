package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/gofem2d/fem"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/model_problems/Magnetic2D"
	"github.com/notargets/gofem2d/readfiles"
	"github.com/notargets/gofem2d/solvers"
	"github.com/notargets/gofem2d/types"
	"github.com/notargets/gofem2d/utils"
)

/*
MeshInput selects where the mesh comes from:

	rectangle      tensor product of XLines and YLines, bilinear rectangles
	trianglegrid   same grid, each cell split into two triangles
	triangle       "v/e/b" triangle file, marker "border" is its boundary line
	su2            SU2 file, markers by MARKER_TAG
	gambit         Gambit neutral file, markers by boundary group name
*/
type MeshInput struct {
	Type   string      `yaml:"Type"`
	File   string      `yaml:"File"`
	XLines []float64   `yaml:"XLines"`
	YLines []float64   `yaml:"YLines"`
	Areas  []mesh.Area `yaml:"Areas"`
}

type MaterialInput struct {
	Lambda    float64           `yaml:"Lambda"`
	Gamma     float64           `yaml:"Gamma"`
	Mu        float64           `yaml:"Mu"`
	Source    *types.LinearFunc `yaml:"Source"`
	CurveFile string            `yaml:"CurveFile"` // Telma permeability table
	CurveB    []float64         `yaml:"CurveB"`
	CurveMu   []float64         `yaml:"CurveMu"`
}

// BCInput applies one condition to every polyline of a marker, or to an explicit vertex list
type BCInput struct {
	Kind     string           `yaml:"Kind"` // when empty the kind comes from the marker name, e.g. "Dirichlet-inlet"
	Marker   string           `yaml:"Marker"`
	Vertices []int            `yaml:"Vertices"`
	Value    types.LinearFunc `yaml:"Value"`
	Beta     float64          `yaml:"Beta"`
}

type SolverInput struct {
	Type     string  `yaml:"Type"`
	Epsilon  float64 `yaml:"Epsilon"`
	MaxSteps int     `yaml:"MaxSteps"`
}

type NonLinearInput struct {
	MaxIter    int     `yaml:"MaxIter"`
	SolverEps  float64 `yaml:"SolverEps"`
	IterEps    float64 `yaml:"IterEps"`
	Relaxation float64 `yaml:"Relaxation"`
}

// Parameters obtained from the YAML input file
type InputParameters2D struct {
	Title     string                `yaml:"Title"`
	Mesh      MeshInput             `yaml:"Mesh"`
	Materials map[int]MaterialInput `yaml:"Materials"`
	BCs       []BCInput             `yaml:"BCs"`
	Solver    SolverInput           `yaml:"Solver"`
	Times     []float64             `yaml:"Times"`   // parabolic time layers
	Initial   types.LinearFunc      `yaml:"Initial"` // parabolic layers 0 and 1
	NonLinear NonLinearInput        `yaml:"NonLinear"`
	Probes    [][2]float64          `yaml:"Probes"` // points where the solution is reported
}

func (ip *InputParameters2D) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters2D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Mesh Type\n", ip.Mesh.Type)
	if len(ip.Mesh.File) != 0 {
		fmt.Printf("[%s]\t= Mesh File\n", ip.Mesh.File)
	}
	if len(ip.Solver.Type) != 0 {
		fmt.Printf("[%s]\t\t\t= Solver\n", ip.Solver.Type)
	}
	if len(ip.Times) != 0 {
		fmt.Printf("%d layers in [%8.5f,%8.5f]\t= Times\n", len(ip.Times), ip.Times[0], ip.Times[len(ip.Times)-1])
	}
	keys := make([]int, 0, len(ip.Materials))
	for k := range ip.Materials {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, key := range keys {
		mat := ip.Materials[key]
		fmt.Printf("Materials[%d] = Lambda %g, Gamma %g, Mu %g", key, mat.Lambda, mat.Gamma, mat.Mu)
		if mat.Source != nil {
			fmt.Printf(", Source %s", mat.Source)
		}
		if len(mat.CurveFile) != 0 || len(mat.CurveB) != 0 {
			fmt.Printf(", nonlinear")
		}
		fmt.Println()
	}
	for i, bc := range ip.BCs {
		fmt.Printf("BCs[%d] = %s on [%s], value %s\n", i, bc.Kind, bc.Marker, bc.Value)
	}
}

func (ip *InputParameters2D) BuildMaterials() (materials map[int]*mesh.Material, err error) {
	if len(ip.Materials) == 0 {
		return nil, fmt.Errorf("input defines no materials: %w", utils.ErrInvalidElement)
	}
	materials = make(map[int]*mesh.Material, len(ip.Materials))
	for id, in := range ip.Materials {
		mat := &mesh.Material{Lambda: in.Lambda, Gamma: in.Gamma, Mu: in.Mu}
		if in.Source != nil {
			mat.Source = in.Source.Func()
		}
		switch {
		case len(in.CurveFile) != 0:
			if mat.Curve, err = readfiles.ReadTelmaCurveFile(in.CurveFile); err != nil {
				return nil, fmt.Errorf("material %d: %w", id, err)
			}
		case len(in.CurveB) != 0:
			if mat.Curve, err = mesh.NewReluctivityCurve(in.CurveB, in.CurveMu); err != nil {
				return nil, fmt.Errorf("material %d: %w", id, err)
			}
		}
		materials[id] = mat
	}
	return
}

// BuildMesh returns the mesh and its named boundary polylines
func (ip *InputParameters2D) BuildMesh(verbose bool) (m *mesh.Mesh, markers map[string][]types.Polyline, err error) {
	var (
		materials map[int]*mesh.Material
		grid      mesh.Grid
	)
	if materials, err = ip.BuildMaterials(); err != nil {
		return
	}
	markers = make(map[string][]types.Polyline)
	switch strings.ToLower(ip.Mesh.Type) {
	case "rectangle", "trianglegrid":
		areas := ip.Mesh.Areas
		if len(areas) == 0 && len(ip.Mesh.XLines) != 0 && len(ip.Mesh.YLines) != 0 {
			areas = []mesh.Area{{
				XMin: ip.Mesh.XLines[0], XMax: ip.Mesh.XLines[len(ip.Mesh.XLines)-1],
				YMin: ip.Mesh.YLines[0], YMax: ip.Mesh.YLines[len(ip.Mesh.YLines)-1],
			}}
		}
		if strings.EqualFold(ip.Mesh.Type, "rectangle") {
			m, grid, err = mesh.NewRectangleMesh(ip.Mesh.XLines, ip.Mesh.YLines, areas, materials)
		} else {
			m, grid, err = mesh.NewTriangleGridMesh(ip.Mesh.XLines, ip.Mesh.YLines, areas, materials)
		}
		if err != nil {
			return nil, nil, err
		}
		for _, side := range []string{"bottom", "right", "top", "left"} {
			var pl types.Polyline
			if pl, err = grid.Side(side); err != nil {
				return nil, nil, err
			}
			markers[side] = []types.Polyline{pl}
		}
	case "triangle":
		var tm *readfiles.TriangleMesh
		if tm, err = readfiles.ReadTriangleMeshFile(ip.Mesh.File); err != nil {
			return nil, nil, err
		}
		if m, err = tm.Mesh(materials); err != nil {
			return nil, nil, err
		}
		markers["border"] = []types.Polyline{tm.Border}
	case "su2":
		var su *readfiles.SU2Mesh
		if su, err = readfiles.ReadSU2File(ip.Mesh.File, verbose); err != nil {
			return nil, nil, err
		}
		if m, err = su.Mesh(materials); err != nil {
			return nil, nil, err
		}
		for tag, pls := range su.Markers {
			markers[string(tag)] = pls
		}
	case "gambit":
		var gm *readfiles.GambitMesh
		if gm, err = readfiles.ReadGambit2dFile(ip.Mesh.File, verbose); err != nil {
			return nil, nil, err
		}
		if m, err = gm.Mesh(materials); err != nil {
			return nil, nil, err
		}
		for tag, pls := range gm.BCs {
			markers[string(tag)] = pls
		}
	default:
		return nil, nil, fmt.Errorf("unknown mesh type [%s], use rectangle, trianglegrid, triangle, su2 or gambit",
			ip.Mesh.Type)
	}
	return
}

// BuildConditions resolves every BCs entry against the markers returned by BuildMesh
func (ip *InputParameters2D) BuildConditions(markers map[string][]types.Polyline) (conds []*fem.BoundaryCondition,
	err error) {
	for i, in := range ip.BCs {
		var kind types.BCKind
		if len(in.Kind) != 0 {
			if kind, err = types.ParseBCKind(in.Kind); err != nil {
				return nil, fmt.Errorf("BCs[%d]: %w", i, err)
			}
		} else if kind = types.NewBCTAG(in.Marker).GetKind(); kind == types.BC_None {
			return nil, fmt.Errorf("BCs[%d]: no kind given and marker [%s] does not name one: %w",
				i, in.Marker, utils.ErrMalformedBoundaryCondition)
		}
		lines := [][]int{in.Vertices}
		if len(in.Vertices) == 0 {
			pls, ok := markers[in.Marker]
			if !ok {
				return nil, fmt.Errorf("BCs[%d]: mesh has no marker [%s]: %w",
					i, in.Marker, utils.ErrMalformedBoundaryCondition)
			}
			lines = lines[:0]
			for _, pl := range pls {
				lines = append(lines, pl)
			}
		}
		for _, verts := range lines {
			var bc *fem.BoundaryCondition
			if bc, err = fem.NewBoundaryCondition(kind, in.Value.Func(), verts, in.Beta); err != nil {
				return nil, fmt.Errorf("BCs[%d]: %w", i, err)
			}
			bc.Name = in.Marker
			conds = append(conds, bc)
		}
	}
	return
}

// SolverKind is the input's solver, or def when the input names none
func (ip *InputParameters2D) SolverKind(def solvers.Kind) (solvers.Kind, error) {
	if len(ip.Solver.Type) == 0 {
		return def, nil
	}
	return solvers.ParseKind(ip.Solver.Type)
}

// SolverSettings overrides def with the values the input sets
func (ip *InputParameters2D) SolverSettings(def solvers.Settings) (s solvers.Settings) {
	s = def
	s.SetEpsilon(ip.Solver.Epsilon)
	if ip.Solver.MaxSteps > 0 {
		s.MaxSteps = ip.Solver.MaxSteps
	}
	return
}

func (ip *InputParameters2D) NonLinearParams() (params Magnetic2D.NonLinearParams) {
	params = Magnetic2D.DefaultNonLinearParams()
	nl := ip.NonLinear
	if nl.MaxIter > 0 {
		params.MaxIter = nl.MaxIter
	}
	if nl.SolverEps > 0 {
		params.SolverEps = nl.SolverEps
	}
	if nl.IterEps > 0 {
		params.IterEps = nl.IterEps
	}
	if nl.Relaxation > 0 {
		params.Relaxation = nl.Relaxation
	}
	return
}

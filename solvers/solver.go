package solvers

import (
	"fmt"
	"strings"

	"github.com/notargets/gofem2d/utils"
)

// Settings bound an iterative solve: stop once ||r||^2/||r0||^2 < Epsilon^2 or after MaxSteps
type Settings struct {
	Epsilon      float64 `yaml:"Epsilon"`
	MaxSteps     int     `yaml:"MaxSteps"`
	TrackHistory bool    `yaml:"TrackHistory"`
}

func DefaultPCGSettings() Settings { return Settings{Epsilon: 1.e-14, MaxSteps: 10000} }
func DefaultLOSSettings() Settings { return Settings{Epsilon: 1.e-12, MaxSteps: 10000} }

// SetEpsilon changes the tolerance of later solves, non positive values are ignored
func (s *Settings) SetEpsilon(eps float64) {
	if eps > 0 {
		s.Epsilon = eps
	}
}

func (s Settings) Tolerance() float64 { return s.Epsilon }

func (s Settings) withDefaults(def Settings) Settings {
	if s.Epsilon <= 0 {
		s.Epsilon = def.Epsilon
	}
	if s.MaxSteps <= 0 {
		s.MaxSteps = def.MaxSteps
	}
	return s
}

type Result struct {
	Iterations int
	Residual   float64   // relative residual squared at exit
	History    []float64 // relative residual squared per step, when tracked
}

/*
LinearSolver solves A x = b in place: x holds the initial guess on entry and the solution on exit.
Factorization buffers are owned by the solver and reused while the matrix order is unchanged.
*/
type LinearSolver interface {
	Name() string
	SetEpsilon(eps float64)
	Tolerance() float64
	Solve(A *utils.SymmSparse, b, x []float64) (Result, error)
}

type Kind uint8

const (
	KindPCG Kind = iota
	KindLOS
)

var KindNameMap = map[string]Kind{
	"pcg": KindPCG,
	"cg":  KindPCG,
	"los": KindLOS,
}

func ParseKind(name string) (k Kind, err error) {
	var ok bool
	if k, ok = KindNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown solver [%s], use pcg or los", name)
	}
	return
}

func New(k Kind, s Settings) LinearSolver {
	switch k {
	case KindLOS:
		return NewLOS(s)
	default:
		return NewPCG(s)
	}
}

// NewByName is New with the kind given by name
func NewByName(name string, s Settings) (ls LinearSolver, err error) {
	var k Kind
	if k, err = ParseKind(name); err != nil {
		return
	}
	ls = New(k, s)
	return
}

func grow(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}

func checkDims(A *utils.SymmSparse, b, x []float64) error {
	if len(b) != A.N || len(x) != A.N {
		return fmt.Errorf("matrix order %d, right hand side %d, solution %d", A.N, len(b), len(x))
	}
	return nil
}

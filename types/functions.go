package types

import (
	"fmt"

	"github.com/notargets/gofem2d/geometry2D"
)

// ScalarFunc is a source or boundary value over coordinates
type ScalarFunc func(p geometry2D.Point) float64

// TimeFunc is a source or boundary value over coordinates and time
type TimeFunc func(p geometry2D.Point, t float64) float64

// Steady lifts a ScalarFunc to a TimeFunc that ignores t
func Steady(f ScalarFunc) TimeFunc {
	if f == nil {
		return nil
	}
	return func(p geometry2D.Point, _ float64) float64 { return f(p) }
}

func Constant(c float64) TimeFunc {
	return func(geometry2D.Point, float64) float64 { return c }
}

/*
LinearFunc is the serializable form of a callable used by input files:

	f(x, y, t) = C0 + Cx*x + Cy*y + Ct*t
*/
type LinearFunc struct {
	C0 float64 `yaml:"C0"`
	Cx float64 `yaml:"Cx"`
	Cy float64 `yaml:"Cy"`
	Ct float64 `yaml:"Ct"`
}

func (lf LinearFunc) Eval(p geometry2D.Point, t float64) float64 {
	return lf.C0 + lf.Cx*p.X[0] + lf.Cy*p.X[1] + lf.Ct*t
}

func (lf LinearFunc) Func() TimeFunc { return lf.Eval }

func (lf LinearFunc) String() string {
	return fmt.Sprintf("%g + %g*x + %g*y + %g*t", lf.C0, lf.Cx, lf.Cy, lf.Ct)
}

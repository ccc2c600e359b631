package mesh

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

/*
ReluctivityCurve is a tabulated relative permeability mu(B) with linear interpolation between points.
Nu gives the relative reluctivity used in assembly:

	B < Bmin         1/mu(Bmin)
	B > Bmax         B/Bmax * (1/mu(Bmax) - 1) + 1
	otherwise        1/mu(B)
*/
type ReluctivityCurve struct {
	B, Mu []float64
	fit   interp.PiecewiseLinear
}

func NewReluctivityCurve(B, mu []float64) (c *ReluctivityCurve, err error) {
	if len(B) != len(mu) {
		err = fmt.Errorf("curve has %d field values and %d permeabilities", len(B), len(mu))
		return
	}
	if len(B) < 2 {
		err = fmt.Errorf("curve needs at least two points, have %d", len(B))
		return
	}
	c = &ReluctivityCurve{
		B:  append([]float64(nil), B...),
		Mu: append([]float64(nil), mu...),
	}
	sort.Sort(byField{c})
	for i, m := range c.Mu {
		if m <= 0 {
			return nil, fmt.Errorf("curve point %d has non positive permeability %g", i, m)
		}
		if i > 0 && c.B[i] <= c.B[i-1] {
			return nil, fmt.Errorf("curve repeats field value %g", c.B[i])
		}
	}
	if err = c.fit.Fit(c.B, c.Mu); err != nil {
		return nil, fmt.Errorf("unable to fit curve: %w", err)
	}
	return
}

func (c *ReluctivityCurve) Bounds() (bmin, bmax float64) {
	return c.B[0], c.B[len(c.B)-1]
}

// MuAt interpolates the table, clamped to its end points
func (c *ReluctivityCurve) MuAt(b float64) float64 {
	bmin, bmax := c.Bounds()
	switch {
	case b <= bmin:
		return c.Mu[0]
	case b >= bmax:
		return c.Mu[len(c.Mu)-1]
	}
	return c.fit.Predict(b)
}

func (c *ReluctivityCurve) Nu(b float64) float64 {
	bmin, bmax := c.Bounds()
	switch {
	case b < bmin:
		return 1 / c.MuAt(bmin)
	case b > bmax:
		return b/bmax*(1/c.MuAt(bmax)-1) + 1
	}
	return 1 / c.MuAt(b)
}

type byField struct{ c *ReluctivityCurve }

func (s byField) Len() int           { return len(s.c.B) }
func (s byField) Less(i, j int) bool { return s.c.B[i] < s.c.B[j] }
func (s byField) Swap(i, j int) {
	s.c.B[i], s.c.B[j] = s.c.B[j], s.c.B[i]
	s.c.Mu[i], s.c.Mu[j] = s.c.Mu[j], s.c.Mu[i]
}

package geometry2D

import (
	"math"
)

type Point struct {
	X [2]float64
}

func NewPoint(x, y float64) Point {
	return Point{X: [2]float64{x, y}}
}

func (pt Point) Equal(rhs Point) bool {
	return pt.X[0] == rhs.X[0] && pt.X[1] == rhs.X[1]
}

// Near compares both coordinates against an absolute tolerance
func (pt Point) Near(rhs Point, tol float64) bool {
	return math.Abs(pt.X[0]-rhs.X[0]) < tol && math.Abs(pt.X[1]-rhs.X[1]) < tol
}

func Distance(a, b Point) float64 {
	return math.Hypot(b.X[0]-a.X[0], b.X[1]-a.X[1])
}

/*
Det returns the doubled signed area of the triangle (a, b, c):

	detD = (xb-xa)(yc-ya) - (xc-xa)(yb-ya)

Positive for counter-clockwise ordering.
*/
func Det(a, b, c Point) float64 {
	return (b.X[0]-a.X[0])*(c.X[1]-a.X[1]) - (c.X[0]-a.X[0])*(b.X[1]-a.X[1])
}

// Barycentric returns the area weights of p with respect to triangle (a, b, c) and
// whether p lies inside the triangle within tol. The weights sum to one when inside.
func Barycentric(p, a, b, c Point, tol float64) (w [3]float64, inside bool) {
	var (
		detD = math.Abs(Det(a, b, c))
		s0   = math.Abs(Det(p, b, c))
		s1   = math.Abs(Det(a, p, c))
		s2   = math.Abs(Det(a, b, p))
	)
	if detD == 0 {
		return
	}
	if math.Abs(detD-s0-s1-s2) >= tol {
		return
	}
	w = [3]float64{s0 / detD, s1 / detD, s2 / detD}
	inside = true
	return
}

type BoundingBox struct {
	XMin [2]float64
	XMax [2]float64
}

func NewBoundingBox(Geometry []Point) (Box *BoundingBox) {
	if len(Geometry) == 0 {
		return nil
	}
	Box = new(BoundingBox)
	Box.XMin = Geometry[0].X
	Box.XMax = Geometry[0].X
	for _, point := range Geometry {
		for i := 0; i < 2; i++ {
			if point.X[i] < Box.XMin[i] {
				Box.XMin[i] = point.X[i]
			}
			if point.X[i] > Box.XMax[i] {
				Box.XMax[i] = point.X[i]
			}
		}
	}
	return Box
}

func (bb *BoundingBox) Width() float64  { return bb.XMax[0] - bb.XMin[0] }
func (bb *BoundingBox) Height() float64 { return bb.XMax[1] - bb.XMin[1] }

func (bb *BoundingBox) Centroid() Point {
	return Point{X: [2]float64{
		0.5 * (bb.XMax[0] + bb.XMin[0]),
		0.5 * (bb.XMax[1] + bb.XMin[1]),
	}}
}

// PointInside tests containment with the box inflated by tol on every side
func (bb *BoundingBox) PointInside(point Point, tol float64) (within bool) {
	for ii := 0; ii < 2; ii++ {
		if point.X[ii] > bb.XMax[ii]+tol || point.X[ii] < bb.XMin[ii]-tol {
			return false
		}
	}
	return true
}

// Corner returns the position of p among the box corners: bottom-left=0, bottom-right=1,
// top-left=2, top-right=3. ok is false when p is not a corner within tol.
func (bb *BoundingBox) Corner(p Point, tol float64) (pos int, ok bool) {
	var onX, onY bool
	switch {
	case math.Abs(p.X[0]-bb.XMin[0]) < tol:
		onX = true
	case math.Abs(p.X[0]-bb.XMax[0]) < tol:
		pos += 1
		onX = true
	}
	switch {
	case math.Abs(p.X[1]-bb.XMin[1]) < tol:
		onY = true
	case math.Abs(p.X[1]-bb.XMax[1]) < tol:
		pos += 2
		onY = true
	}
	ok = onX && onY
	return
}

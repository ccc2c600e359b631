package geometry2D

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeometry(t *testing.T) {
	a, b, c := NewPoint(0, 0), NewPoint(1, 0), NewPoint(0, 1)
	{ // Orientation of the determinant
		assert.Equal(t, 1., Det(a, b, c))
		assert.Equal(t, -1., Det(a, c, b))
	}
	{ // Barycentric weights inside, on an edge and outside
		w, inside := Barycentric(NewPoint(0.25, 0.25), a, b, c, 1.e-10)
		assert.True(t, inside)
		assert.InDeltaSlice(t, []float64{0.5, 0.25, 0.25}, w[:], 1.e-14)

		w, inside = Barycentric(NewPoint(0.5, 0.5), a, b, c, 1.e-10)
		assert.True(t, inside)
		assert.InDelta(t, 0., w[0], 1.e-14)

		_, inside = Barycentric(NewPoint(0.6, 0.6), a, b, c, 1.e-10)
		assert.False(t, inside)

		_, inside = Barycentric(NewPoint(0.5, 0.5), a, b, NewPoint(1, 0), 1.e-10)
		assert.False(t, inside)
	}
	{ // Bounding box corner positions
		bb := NewBoundingBox([]Point{NewPoint(1, 2), NewPoint(3, 2), NewPoint(1, 5), NewPoint(3, 5)})
		assert.Equal(t, 2., bb.Width())
		assert.Equal(t, 3., bb.Height())
		for i, p := range []Point{NewPoint(1, 2), NewPoint(3, 2), NewPoint(1, 5), NewPoint(3, 5)} {
			pos, ok := bb.Corner(p, 1.e-12)
			assert.True(t, ok)
			assert.Equal(t, i, pos)
		}
		_, ok := bb.Corner(NewPoint(2, 2), 1.e-12)
		assert.False(t, ok)
		assert.True(t, bb.PointInside(NewPoint(3, 5), 0))
		assert.False(t, bb.PointInside(NewPoint(3.1, 5), 1.e-9))
		assert.Equal(t, NewPoint(2, 3.5), bb.Centroid())
	}
	{
		assert.Equal(t, 5., Distance(NewPoint(0, 0), NewPoint(3, 4)))
		assert.True(t, NewPoint(1, 1).Near(NewPoint(1+1.e-9, 1), 1.e-7))
	}
}

package utils

import "math"

const (
	NODETOL = 1.e-12
	// POINTTOL is the barycentric membership tolerance for point location
	POINTTOL = 1.e-10
	// DUPTOL separates distinct mesh vertices
	DUPTOL = 1.e-7
)

// Mu0 is the vacuum permeability
const Mu0 = 4 * math.Pi * 1.e-7

// Clamp limits val to [lo, hi]
func Clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}

package solvers

import (
	"github.com/notargets/gofem2d/utils"
	"gonum.org/v1/gonum/floats"
)

/*
LOS is the locally optimal scheme preconditioned from both sides by an incomplete LU factorization
A ~ L U on the portrait of A. L carries the diagonal, U has a unit diagonal. With S = L and Q = U:

	r0 = S^-1 (b - A x0),  z0 = Q^-1 r0,  p0 = S^-1 A z0
	a  = (p, r) / (p, p)
	x += a z,  r -= a p
	q  = S^-1 A Q^-1 r,  b = -(p, q) / (p, p)
	z  = Q^-1 r + b z,  p = q + b p

Convergence is measured on the preconditioned residual, ||r||^2 / ||r0||^2.
*/
type LOS struct {
	Settings
	diLU, ggl, ggu        []float64
	r, z, p, q, tmp, work []float64
}

func NewLOS(s Settings) *LOS {
	return &LOS{Settings: s.withDefaults(DefaultLOSSettings())}
}

func (s *LOS) Name() string { return "los" }

func (s *LOS) factor(A *utils.SymmSparse) (err error) {
	s.diLU = grow(s.diLU, A.N)
	s.ggl = grow(s.ggl, len(A.Gg))
	s.ggu = grow(s.ggu, len(A.Gg))
	for i := 0; i < A.N; i++ {
		var sumD float64
		for k := A.Ig[i]; k < A.Ig[i+1]; k++ {
			var (
				j      = A.Jg[k]
				sl, su float64
				ki     = A.Ig[i]
				kj     = A.Ig[j]
			)
			// merge row i (columns below j) with row j
			for ki < k && kj < A.Ig[j+1] {
				switch {
				case A.Jg[ki] == A.Jg[kj]:
					sl += s.ggl[ki] * s.ggu[kj]
					su += s.ggl[kj] * s.ggu[ki]
					ki++
					kj++
				case A.Jg[ki] < A.Jg[kj]:
					ki++
				default:
					kj++
				}
			}
			s.ggl[k] = A.Gg[k] - sl
			s.ggu[k] = (A.Gg[k] - su) / s.diLU[j]
			sumD += s.ggl[k] * s.ggu[k]
		}
		pivot := A.Di[i] - sumD
		if pivot == 0 || !utils.IsFinite(pivot) {
			return &utils.SingularSystemError{Solver: s.Name(), Row: i, Pivot: pivot}
		}
		s.diLU[i] = pivot
	}
	return
}

// straight applies S^-1 = L^-1 in place
func (s *LOS) straight(A *utils.SymmSparse, v []float64) {
	for i := 0; i < A.N; i++ {
		sum := v[i]
		for k := A.Ig[i]; k < A.Ig[i+1]; k++ {
			sum -= s.ggl[k] * v[A.Jg[k]]
		}
		v[i] = sum / s.diLU[i]
	}
}

// backward applies Q^-1 = U^-1 in place, U stored by columns in ggu
func (s *LOS) backward(A *utils.SymmSparse, v []float64) {
	for i := A.N - 1; i >= 0; i-- {
		for k := A.Ig[i]; k < A.Ig[i+1]; k++ {
			v[A.Jg[k]] -= s.ggu[k] * v[i]
		}
	}
}

func (s *LOS) Solve(A *utils.SymmSparse, b, x []float64) (res Result, err error) {
	if err = checkDims(A, b, x); err != nil {
		return
	}
	n := A.N
	if floats.Dot(b, b) == 0 {
		clear(x)
		return
	}
	if err = s.factor(A); err != nil {
		return
	}
	s.r, s.z, s.p = grow(s.r, n), grow(s.z, n), grow(s.p, n)
	s.q, s.tmp, s.work = grow(s.q, n), grow(s.tmp, n), grow(s.work, n)
	var (
		r, z, p, q, tmp = s.r, s.z, s.p, s.q, s.tmp
		eps2            = s.Epsilon * s.Epsilon
	)
	A.MulVecTo(x, r)
	floats.SubTo(r, b, r)
	s.straight(A, r)
	copy(z, r)
	s.backward(A, z)
	A.MulVecTo(z, p)
	s.straight(A, p)

	rr0 := floats.Dot(r, r)
	if rr0 == 0 {
		return
	}
	res.Residual = 1
	if s.TrackHistory {
		res.History = append(res.History, res.Residual)
	}
	for res.Iterations < s.MaxSteps && res.Residual >= eps2 {
		pp := floats.Dot(p, p)
		if pp == 0 || !utils.IsFinite(pp) {
			return res, &utils.SingularSystemError{Solver: s.Name(), Row: -1, Pivot: pp}
		}
		ak := floats.Dot(p, r) / pp
		floats.AddScaled(x, ak, z)
		floats.AddScaled(r, -ak, p)
		copy(tmp, r)
		s.backward(A, tmp)
		A.MulVecTo(tmp, q)
		s.straight(A, q)
		bk := -floats.Dot(p, q) / pp
		// z = tmp + bk z, p = q + bk p
		floats.Scale(bk, z)
		floats.Add(z, tmp)
		floats.Scale(bk, p)
		floats.Add(p, q)
		res.Iterations++
		res.Residual = floats.Dot(r, r) / rr0
		if s.TrackHistory {
			res.History = append(res.History, res.Residual)
		}
	}
	if res.Residual >= eps2 {
		err = &utils.NonConvergenceError{Solver: s.Name(), Iterations: res.Iterations, Residual: res.Residual}
	}
	return
}

// TrueResidual reports ||b - A x||^2 / ||b||^2 for the last solution
func (s *LOS) TrueResidual(A *utils.SymmSparse, b, x []float64) float64 {
	s.work = grow(s.work, A.N)
	return A.Residual2(x, b, s.work)
}

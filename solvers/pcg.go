package solvers

import (
	"math"

	"github.com/notargets/gofem2d/utils"
	"gonum.org/v1/gonum/floats"
)

/*
PCG is the conjugate gradient method preconditioned by an incomplete Cholesky factorization
L L^T ~ A on the portrait of A (no fill in). A must be symmetric positive definite.
*/
type PCG struct {
	Settings
	diL, ggL        []float64
	r, z, q, Az, wk []float64
}

func NewPCG(s Settings) *PCG {
	return &PCG{Settings: s.withDefaults(DefaultPCGSettings())}
}

func (s *PCG) Name() string { return "pcg" }

/*
factor computes, row by row,

	L_ij = (A_ij - sum_k L_ik L_jk) / L_jj     j < i, k < j over columns of both rows
	L_ii = sqrt(A_ii - sum_j L_ij^2)
*/
func (s *PCG) factor(A *utils.SymmSparse) (err error) {
	s.diL = grow(s.diL, A.N)
	s.ggL = grow(s.ggL, len(A.Gg))
	for i := 0; i < A.N; i++ {
		var sumD float64
		for k := A.Ig[i]; k < A.Ig[i+1]; k++ {
			var (
				j   = A.Jg[k]
				sum float64
				ki  = A.Ig[i]
				kj  = A.Ig[j]
			)
			for ki < k && kj < A.Ig[j+1] {
				switch {
				case A.Jg[ki] == A.Jg[kj]:
					sum += s.ggL[ki] * s.ggL[kj]
					ki++
					kj++
				case A.Jg[ki] < A.Jg[kj]:
					ki++
				default:
					kj++
				}
			}
			s.ggL[k] = (A.Gg[k] - sum) / s.diL[j]
			sumD += s.ggL[k] * s.ggL[k]
		}
		pivot := A.Di[i] - sumD
		if pivot <= 0 || !utils.IsFinite(pivot) {
			return &utils.SingularSystemError{Solver: s.Name(), Row: i, Pivot: pivot}
		}
		s.diL[i] = math.Sqrt(pivot)
	}
	return
}

// solveLLT computes out = (L L^T)^-1 in, using wk
func (s *PCG) solveLLT(A *utils.SymmSparse, in, out []float64) {
	y := s.wk
	for i := 0; i < A.N; i++ {
		sum := in[i]
		for k := A.Ig[i]; k < A.Ig[i+1]; k++ {
			sum -= s.ggL[k] * y[A.Jg[k]]
		}
		y[i] = sum / s.diL[i]
	}
	for i := A.N - 1; i >= 0; i-- {
		out[i] = y[i] / s.diL[i]
		for k := A.Ig[i]; k < A.Ig[i+1]; k++ {
			y[A.Jg[k]] -= s.ggL[k] * out[i]
		}
	}
}

func (s *PCG) Solve(A *utils.SymmSparse, b, x []float64) (res Result, err error) {
	if err = checkDims(A, b, x); err != nil {
		return
	}
	n := A.N
	bb := floats.Dot(b, b)
	if bb == 0 {
		clear(x)
		return
	}
	if err = s.factor(A); err != nil {
		return
	}
	s.r, s.z, s.q = grow(s.r, n), grow(s.z, n), grow(s.q, n)
	s.Az, s.wk = grow(s.Az, n), grow(s.wk, n)
	var (
		r, z, q, Az = s.r, s.z, s.q, s.Az
		eps2        = s.Epsilon * s.Epsilon
	)
	// r = b - A x, z = q = M^-1 r
	A.MulVecTo(x, r)
	floats.SubTo(r, b, r)
	s.solveLLT(A, r, q)
	copy(z, q)
	qr := floats.Dot(q, r)
	res.Residual = floats.Dot(r, r) / bb
	if s.TrackHistory {
		res.History = append(res.History, res.Residual)
	}
	for res.Iterations < s.MaxSteps && res.Residual >= eps2 {
		A.MulVecTo(z, Az)
		den := floats.Dot(Az, z)
		if den == 0 || !utils.IsFinite(den) {
			return res, &utils.SingularSystemError{Solver: s.Name(), Row: -1, Pivot: den}
		}
		ak := qr / den
		floats.AddScaled(x, ak, z)
		floats.AddScaled(r, -ak, Az)
		s.solveLLT(A, r, q)
		qrNew := floats.Dot(q, r)
		bk := qrNew / qr
		qr = qrNew
		// z = q + bk z
		floats.Scale(bk, z)
		floats.Add(z, q)
		res.Iterations++
		res.Residual = floats.Dot(r, r) / bb
		if s.TrackHistory {
			res.History = append(res.History, res.Residual)
		}
	}
	if res.Residual >= eps2 {
		err = &utils.NonConvergenceError{Solver: s.Name(), Iterations: res.Iterations, Residual: res.Residual}
	}
	return
}

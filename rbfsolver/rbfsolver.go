// Package rbfsolver builds and applies the dense RBF interpolation operator:
// kernel matrix assembly, optional polynomial augmentation, conditioning
// checks, Cholesky-or-QR factorization, and consistent/conservative
// evaluation. The factored matrices themselves are built directly on
// gonum.org/v1/gonum/mat; utils.Matrix is used only as the thin receiver
// its ConditionNumber/ConditionNumberQR/Eigenvalues/SingularValues
// diagnostics hang off of.
package rbfsolver

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/rbfmap"
	"github.com/notargets/rbfmap/basisfunction"
	"github.com/notargets/rbfmap/mesh"
	"github.com/notargets/rbfmap/utils"
)

// conditionNumberFailureThreshold bounds how ill-conditioned the kernel (or
// augmented) matrix may be before factoring it further is treated as a
// numerical failure rather than silently proceeding with a solve that would
// amplify input noise by that factor.
const conditionNumberFailureThreshold = 1e12

// illConditioned reports whether cond exceeds the failure threshold, and if
// so builds a NumericalFailure naming name, cond, and m's singular value
// range for diagnostics.
func illConditioned(name string, cond float64, m utils.Matrix) error {
	if cond <= conditionNumberFailureThreshold {
		return nil
	}
	min, max := m.SingularValues()
	return &rbfmap.NumericalFailure{
		Mapping: "rbfsolver",
		Detail: fmt.Sprintf("%s matrix is ill-conditioned (condition number %.3e exceeds %.0e; singular values range [%.3e, %.3e])",
			name, cond, conditionNumberFailureThreshold, min, max),
	}
}

// checkConditioning bounds the plain (non-augmented) kernel matrix's
// condition number via full SVD, the more numerically robust of the two
// estimates and appropriate for the matrix the Cholesky/QR reduced path
// actually factors.
func checkConditioning(name string, m *mat.Dense) error {
	wrapped := utils.Matrix{M: m}
	return illConditioned(name, wrapped.ConditionNumber(), wrapped)
}

// checkConditioningQR bounds the augmented system matrix's condition number
// via the QR-based estimate, the cheaper alternative for square matrices
// (the augmented system is always square) that pairs naturally with the QR
// factorization factorAugmented performs on the same matrix.
func checkConditioningQR(name string, m *mat.Dense) error {
	wrapped := utils.Matrix{M: m}
	return illConditioned(name, wrapped.ConditionNumberQR(), wrapped)
}

// checkPositiveDefinite verifies that a kernel matrix built from a strictly
// positive definite basis is actually SPD to numerical precision, catching
// near-duplicate input points that leave the matrix theoretically but not
// numerically positive definite before Cholesky is attempted on it.
func checkPositiveDefinite(name string, sym *mat.SymDense) error {
	values := (utils.Matrix{M: mat.DenseCopyOf(sym)}).Eigenvalues()
	if len(values) > 0 && values[0] <= 0 {
		return &rbfmap.NumericalFailure{
			Mapping: "rbfsolver",
			Detail:  fmt.Sprintf("%s matrix has a non-positive eigenvalue (%.3e), likely from duplicate or near-duplicate input points", name, values[0]),
		}
	}
	return nil
}

// PolynomialMode selects how the polynomial block augments the kernel
// system.
type PolynomialMode int

const (
	PolynomialOff PolynomialMode = iota
	PolynomialConstantSeparated
	PolynomialLinearIntegrated
	PolynomialLinearSeparated
)

// Config parameterizes a single dense-solver operator.
type Config struct {
	Basis      basisfunction.BasisFunction
	Dead       mesh.DeadAxis
	Dimension  int // 2 or 3
	Polynomial PolynomialMode
}

func (c Config) activeAxes() int {
	n := 0
	for d := 0; d < c.Dimension; d++ {
		if !c.Dead[d] {
			n++
		}
	}
	return n
}

// polynomialColumns returns the number of polynomial columns for c's mode:
// 0 (off), 1 (constant), or 1+activeAxes (linear, either variant).
func (c Config) polynomialColumns() int {
	switch c.Polynomial {
	case PolynomialOff:
		return 0
	case PolynomialConstantSeparated:
		return 1
	case PolynomialLinearIntegrated, PolynomialLinearSeparated:
		return 1 + c.activeAxes()
	default:
		return 0
	}
}

func (c Config) separated() bool {
	return c.Polynomial == PolynomialConstantSeparated || c.Polynomial == PolynomialLinearSeparated
}

func (c Config) augmented() bool {
	return c.Polynomial == PolynomialLinearIntegrated
}

// polynomialRow fills one row of the polynomial block Q for a coordinate:
// {1, x, y[, z]} with dead axes dropped.
func (c Config) polynomialRow(coord [3]float64) []float64 {
	q := c.polynomialColumns()
	row := make([]float64, q)
	if q == 0 {
		return row
	}
	row[0] = 1
	if c.Polynomial == PolynomialConstantSeparated {
		return row
	}
	i := 1
	for d := 0; d < c.Dimension; d++ {
		if c.Dead[d] {
			continue
		}
		row[i] = coord[d]
		i++
	}
	return row
}

func kernelMatrix(basis basisfunction.BasisFunction, dead mesh.DeadAxis, x, y [][3]float64) *mat.Dense {
	m, n := len(y), len(x)
	out := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			r := mesh.ActiveDistance(y[i], x[j], dead)
			out.Set(i, j, basis.Evaluate(r))
		}
	}
	return out
}

func polynomialBlock(cfg Config, coords [][3]float64) *mat.Dense {
	q := cfg.polynomialColumns()
	if q == 0 {
		return nil
	}
	out := mat.NewDense(len(coords), q, nil)
	for i, c := range coords {
		out.SetRow(i, cfg.polynomialRow(c))
	}
	return out
}

// Operator is the opaque, cached RBF interpolation operator: callers never
// see the kernel matrix and polynomial block separately.
type Operator struct {
	cfg  Config
	inN  int
	outM int
	q    int

	a    *mat.Dense // outM x inN, kernel(outCoords, inCoords)
	qIn  *mat.Dense // inN x q, nil if q == 0
	qOut *mat.Dense // outM x q, nil if q == 0

	chol *mat.Cholesky // set when the reduced/plain system is SPD
	qr   *mat.QR       // set otherwise (augmented, or non-SPD reduced)
	size int           // dimension of the factored system
}

// New assembles and factors the operator mapping inCoords to outCoords.
func New(cfg Config, inCoords, outCoords [][3]float64) (*Operator, error) {
	if !cfg.Basis.IsStrictlyPositiveDefinite() && cfg.Polynomial == PolynomialOff {
		return nil, &rbfmap.ConfigurationError{
			Mapping: "rbfsolver",
			Detail:  fmt.Sprintf("basis %T is only conditionally positive definite and requires polynomial augmentation", cfg.Basis),
		}
	}
	n := len(inCoords)
	if n == 0 {
		return nil, &rbfmap.PreconditionViolation{Mapping: "rbfsolver", Detail: "input mesh has no vertices"}
	}

	op := &Operator{cfg: cfg, inN: n, outM: len(outCoords), q: cfg.polynomialColumns()}
	op.a = kernelMatrix(cfg.Basis, cfg.Dead, inCoords, outCoords)
	c := kernelMatrix(cfg.Basis, cfg.Dead, inCoords, inCoords)
	if op.q > 0 {
		op.qIn = polynomialBlock(cfg, inCoords)
		op.qOut = polynomialBlock(cfg, outCoords)
	}

	switch {
	case cfg.augmented():
		if err := op.factorAugmented(c); err != nil {
			return nil, err
		}
	default:
		if err := op.factorReduced(c); err != nil {
			return nil, err
		}
	}
	return op, nil
}

func (op *Operator) factorReduced(c *mat.Dense) error {
	op.size = op.inN
	if err := checkConditioning("kernel", c); err != nil {
		return err
	}
	if op.cfg.Basis.IsStrictlyPositiveDefinite() {
		sym := mat.NewSymDense(op.inN, nil)
		for i := 0; i < op.inN; i++ {
			for j := i; j < op.inN; j++ {
				sym.SetSym(i, j, c.At(i, j))
			}
		}
		if err := checkPositiveDefinite("kernel", sym); err != nil {
			return err
		}
		var chol mat.Cholesky
		if chol.Factorize(sym) {
			op.chol = &chol
			return nil
		}
	}
	var qr mat.QR
	qr.Factorize(c)
	op.qr = &qr
	return nil
}

func (op *Operator) factorAugmented(c *mat.Dense) error {
	size := op.inN + op.q
	op.size = size
	aug := mat.NewDense(size, size, nil)
	aug.Slice(0, op.inN, 0, op.inN).(*mat.Dense).Copy(c)
	aug.Slice(0, op.inN, op.inN, size).(*mat.Dense).Copy(op.qIn)
	aug.Slice(op.inN, size, 0, op.inN).(*mat.Dense).Copy(op.qIn.T())
	if err := checkConditioningQR("augmented", aug); err != nil {
		return err
	}
	var qr mat.QR
	qr.Factorize(aug)
	op.qr = &qr
	return nil
}

// solve returns the coefficient vector for right-hand side b (length inN,
// or inN+q for the augmented system caller already padded).
func (op *Operator) solve(rhs *mat.VecDense) (*mat.VecDense, error) {
	dst := mat.NewVecDense(op.size, nil)
	if op.chol != nil {
		if err := op.chol.SolveVecTo(dst, rhs); err != nil {
			return nil, &rbfmap.NumericalFailure{Mapping: "rbfsolver", Detail: "Cholesky solve failed", Err: err}
		}
		if utils.IsNan(dst.RawVector().Data) {
			return nil, &rbfmap.NumericalFailure{Mapping: "rbfsolver", Detail: "Cholesky solve produced NaN coefficients"}
		}
		return dst, nil
	}
	dstD := mat.NewDense(op.size, 1, nil)
	if err := op.qr.SolveTo(dstD, false, rhs); err != nil {
		return nil, &rbfmap.NumericalFailure{Mapping: "rbfsolver", Detail: "QR solve failed", Err: err}
	}
	for i := 0; i < op.size; i++ {
		dst.SetVec(i, dstD.At(i, 0))
	}
	if utils.IsNan(dst.RawVector().Data) {
		return nil, &rbfmap.NumericalFailure{Mapping: "rbfsolver", Detail: "QR solve produced NaN coefficients"}
	}
	return dst, nil
}

func extractColumn(values []float64, dim, d, n int) *mat.VecDense {
	v := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v.SetVec(i, values[i*dim+d])
	}
	return v
}

func leastSquaresFit(q *mat.Dense, b *mat.VecDense) (*mat.VecDense, error) {
	_, cols := q.Dims()
	var qtq mat.Dense
	qtq.Mul(q.T(), q)
	var qtb mat.VecDense
	qtb.MulVec(q.T(), b)
	beta := mat.NewVecDense(cols, nil)
	if err := beta.SolveVec(&qtq, &qtb); err != nil {
		return nil, &rbfmap.NumericalFailure{Mapping: "rbfsolver", Detail: "polynomial least-squares fit failed", Err: err}
	}
	return beta, nil
}

// ApplyConsistent maps values (length inN*dim, interleaved per vertex) from
// the input mesh onto the output mesh, returning a slice of length
// outM*dim.
func (op *Operator) ApplyConsistent(values []float64, dim int) ([]float64, error) {
	if len(values) != op.inN*dim {
		return nil, &rbfmap.PreconditionViolation{Mapping: "rbfsolver", Detail: fmt.Sprintf("expected %d values, got %d", op.inN*dim, len(values))}
	}
	out := make([]float64, op.outM*dim)
	for d := 0; d < dim; d++ {
		b := extractColumn(values, dim, d, op.inN)

		var alpha *mat.VecDense
		var beta *mat.VecDense
		switch {
		case op.cfg.augmented():
			rhs := mat.NewVecDense(op.size, nil)
			for i := 0; i < op.inN; i++ {
				rhs.SetVec(i, b.AtVec(i))
			}
			sol, err := op.solve(rhs)
			if err != nil {
				return nil, err
			}
			alpha = mat.NewVecDense(op.inN, sol.RawVector().Data[:op.inN])
			beta = mat.NewVecDense(op.q, sol.RawVector().Data[op.inN:])
		case op.cfg.separated() && op.q > 0:
			fit, err := leastSquaresFit(op.qIn, b)
			if err != nil {
				return nil, err
			}
			beta = fit
			var qBeta mat.VecDense
			qBeta.MulVec(op.qIn, beta)
			reduced := mat.NewVecDense(op.inN, nil)
			reduced.SubVec(b, &qBeta)
			sol, err := op.solve(reduced)
			if err != nil {
				return nil, err
			}
			alpha = sol
		default:
			sol, err := op.solve(b)
			if err != nil {
				return nil, err
			}
			alpha = sol
		}

		var ay mat.VecDense
		ay.MulVec(op.a, alpha)
		for i := 0; i < op.outM; i++ {
			out[i*dim+d] = ay.AtVec(i)
		}
		if beta != nil && op.qOut != nil {
			var qy mat.VecDense
			qy.MulVec(op.qOut, beta)
			for i := 0; i < op.outM; i++ {
				out[i*dim+d] += qy.AtVec(i)
			}
		}
	}
	return out, nil
}

// ApplyConservative applies the adjoint of the consistent operator: values
// (length outM*dim) live conceptually on the output side; the result has
// length inN*dim. Without a polynomial it is C^-1*A^T*values. In the
// augmented mode it is the alpha block of the augmented system solved
// against [A^T*values; Qout^T*values]. In the separated modes the part of
// C^-1*A^T*values in the range of Qin is replaced by the adjoint of the
// polynomial least-squares fit.
func (op *Operator) ApplyConservative(values []float64, dim int) ([]float64, error) {
	if len(values) != op.outM*dim {
		return nil, &rbfmap.PreconditionViolation{Mapping: "rbfsolver", Detail: fmt.Sprintf("expected %d values, got %d", op.outM*dim, len(values))}
	}
	out := make([]float64, op.inN*dim)
	for d := 0; d < dim; d++ {
		y := extractColumn(values, dim, d, op.outM)
		var aty mat.VecDense
		aty.MulVec(op.a.T(), y)

		var alpha *mat.VecDense
		if op.cfg.augmented() {
			rhs := mat.NewVecDense(op.size, nil)
			for i := 0; i < op.inN; i++ {
				rhs.SetVec(i, aty.AtVec(i))
			}
			// M is symmetric ([[C,Q],[Qᵀ,0]]), so the adjoint of the
			// consistent solve is M[α';β']=[Aᵀy; Qoutᵀy], not [Aᵀy; 0].
			var qty mat.VecDense
			qty.MulVec(op.qOut.T(), y)
			for i := 0; i < op.q; i++ {
				rhs.SetVec(op.inN+i, qty.AtVec(i))
			}
			sol, err := op.solve(rhs)
			if err != nil {
				return nil, err
			}
			alpha = mat.NewVecDense(op.inN, sol.RawVector().Data[:op.inN])
		} else {
			sol, err := op.solve(&aty)
			if err != nil {
				return nil, err
			}
			alpha = sol
			if op.cfg.separated() && op.q > 0 {
				// alpha += Qin*(QinᵀQin)⁻¹*(Qoutᵀy − Qinᵀalpha)
				var rhs, qta, corr, qc mat.VecDense
				rhs.MulVec(op.qOut.T(), y)
				qta.MulVec(op.qIn.T(), alpha)
				rhs.SubVec(&rhs, &qta)
				var gram mat.Dense
				gram.Mul(op.qIn.T(), op.qIn)
				if err := corr.SolveVec(&gram, &rhs); err != nil {
					return nil, &rbfmap.NumericalFailure{Mapping: "rbfsolver", Detail: "polynomial least-squares fit failed", Err: err}
				}
				qc.MulVec(op.qIn, &corr)
				alpha.AddVec(alpha, &qc)
			}
		}
		for i := 0; i < op.inN; i++ {
			out[i*dim+d] = alpha.AtVec(i)
		}
	}
	return out, nil
}

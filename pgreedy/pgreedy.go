// Package pgreedy implements the P-Greedy adaptive center-selection solver:
// an incremental Newton-basis construction that picks a small subset of
// input centers via power-function maximization instead of factoring the
// full dense kernel matrix. It threads mesh.DeadAxis through every distance
// computation via mesh.ActiveDistance, so projected-out axes are honored
// during center selection as well as evaluation.
package pgreedy

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/rbfmap"
	"github.com/notargets/rbfmap/basisfunction"
	"github.com/notargets/rbfmap/mesh"
)

const (
	maxIter = 1000
	tolP    = 1e-10
)

// Config parameterizes a P-Greedy solver. The basis must be strictly
// positive definite (New returns a ConfigurationError otherwise).
// Polynomial augmentation is not supported: Config has no polynomial
// setting, and mapping.ComputeMapping rejects a greedy mapping configured
// with one.
type Config struct {
	Basis basisfunction.BasisFunction
	Dead  mesh.DeadAxis
}

// Solver is the opaque, cached reduced-basis operator.
type Solver struct {
	cfg       Config
	inCoords  [][3]float64
	greedyIDs []int
	cut       *mat.Dense // n x n lower triangular; row k's diagonal is 1/v_i of step k
	kernelEval *mat.Dense // n x outSize
	powerFunction []float64
}

// New runs the greedy center-selection loop and builds the evaluation
// matrix against outCoords.
func New(cfg Config, inCoords, outCoords [][3]float64) (*Solver, error) {
	if !cfg.Basis.IsStrictlyPositiveDefinite() {
		return nil, &rbfmap.ConfigurationError{Mapping: "pgreedy", Detail: "P-Greedy requires a strictly positive definite basis function"}
	}
	inSize := len(inCoords)
	if inSize == 0 {
		return nil, &rbfmap.PreconditionViolation{Mapping: "pgreedy", Detail: "input mesh has no vertices"}
	}

	matWidth := inSize
	if matWidth > maxIter {
		matWidth = maxIter
	}
	phi0 := cfg.Basis.Evaluate(0)
	power := make([]float64, inSize)
	for i := range power {
		power[i] = phi0
	}
	basisMatrix := mat.NewDense(inSize, matWidth, nil)
	cut := mat.NewDense(matWidth, matWidth, nil)
	selected := make([]bool, inSize)
	var greedyIDs []int

	n := 0
	for ; n < maxIter && n < inSize; n++ {
		i, pMax := argmax(power)
		if pMax < tolP {
			break
		}
		greedyIDs = append(greedyIDs, i)

		v := make([]float64, inSize)
		for j := 0; j < inSize; j++ {
			r := mesh.ActiveDistance(inCoords[i], inCoords[j], cfg.Dead)
			v[j] = cfg.Basis.Evaluate(r)
		}

		sqrtP := math.Sqrt(pMax)
		for j := 0; j < inSize; j++ {
			if selected[j] {
				continue
			}
			var dot float64
			for k := 0; k < n; k++ {
				dot += basisMatrix.At(j, k) * basisMatrix.At(i, k)
			}
			v[j] = (v[j] - dot) / sqrtP
			power[j] -= v[j] * v[j]
		}

		selected[i] = true
		for j := 0; j < inSize; j++ {
			basisMatrix.Set(j, n, v[j])
		}

		for k := 0; k < n; k++ {
			var s float64
			for l := k; l < n; l++ {
				s += basisMatrix.At(i, l) * cut.At(l, k)
			}
			cut.Set(n, k, -s)
		}
		cut.Set(n, n, 1)
		vi := v[i]
		for k := 0; k <= n; k++ {
			cut.Set(n, k, cut.At(n, k)/vi)
		}
	}

	s := &Solver{cfg: cfg, inCoords: inCoords, greedyIDs: greedyIDs, powerFunction: power}
	s.cut = mat.NewDense(len(greedyIDs), len(greedyIDs), nil)
	for r := 0; r < len(greedyIDs); r++ {
		for c := 0; c <= r; c++ {
			s.cut.Set(r, c, cut.At(r, c))
		}
	}
	s.kernelEval = buildEvaluationMatrix(cfg.Basis, cfg.Dead, inCoords, outCoords, greedyIDs)
	return s, nil
}

func argmax(v []float64) (int, float64) {
	best, bestVal := 0, v[0]
	for i, x := range v {
		if x > bestVal {
			best, bestVal = i, x
		}
	}
	return best, bestVal
}

// buildEvaluationMatrix builds the |greedyIDs| x |outCoords| matrix
// K_out[k,j] = φ(‖x_{greedyIDs[k]} − y_j‖_active).
func buildEvaluationMatrix(basis basisfunction.BasisFunction, dead mesh.DeadAxis, inCoords, outCoords [][3]float64, greedyIDs []int) *mat.Dense {
	out := mat.NewDense(len(greedyIDs), len(outCoords), nil)
	for k, idx := range greedyIDs {
		for j, y := range outCoords {
			r := mesh.ActiveDistance(inCoords[idx], y, dead)
			out.Set(k, j, basis.Evaluate(r))
		}
	}
	return out
}

// PowerFunction returns the final power-function value at every input
// vertex (0 at selected centers, a non-increasing trajectory otherwise).
func (s *Solver) PowerFunction() []float64 {
	return s.powerFunction
}

// GreedyIDs returns the selected input-vertex indices, in selection order.
func (s *Solver) GreedyIDs() []int {
	return s.greedyIDs
}

// ApplyConsistent evaluates the reduced interpolant for the given input
// values (length inSize*dim, interleaved per vertex), producing
// len(outCoords)*dim output values.
func (s *Solver) ApplyConsistent(values []float64, dim, outSize int) ([]float64, error) {
	n := len(s.greedyIDs)
	if len(values) != len(s.inCoords)*dim {
		return nil, &rbfmap.PreconditionViolation{Mapping: "pgreedy", Detail: "input value count does not match input mesh size"}
	}
	out := make([]float64, outSize*dim)
	for d := 0; d < dim; d++ {
		y := mat.NewVecDense(n, nil)
		for k, idx := range s.greedyIDs {
			y.SetVec(k, values[idx*dim+d])
		}
		var ly mat.VecDense
		ly.MulVec(s.cut, y)
		var coeff mat.VecDense
		coeff.MulVec(s.cut.T(), &ly)
		var prediction mat.VecDense
		prediction.MulVec(s.kernelEval.T(), &coeff)
		for j := 0; j < outSize; j++ {
			out[j*dim+d] = prediction.AtVec(j)
		}
	}
	return out, nil
}

// ApplyConservative is not implemented: the greedy reduced basis has no
// adjoint operator, so this surfaces as a ConfigurationError rather than
// diverging silently. Callers needing a conservative mapping with greedy
// centers must configure the dense rbfsolver instead.
func (s *Solver) ApplyConservative([]float64, int, int) ([]float64, error) {
	return nil, &rbfmap.ConfigurationError{Mapping: "pgreedy", Detail: "conservative constraint is not implemented for P-Greedy; use the dense solver"}
}

// Package mapping implements the mapping driver: constraint selection, the
// compute/map/clear lifecycle, the scaled-consistent post-pass, and the
// two-round vertex tagging protocol (tagging.go). It orchestrates the
// rbfsolver/pgreedy packages but never duplicates their numerical work.
package mapping

import (
	"fmt"

	"github.com/notargets/rbfmap"
	"github.com/notargets/rbfmap/basisfunction"
	"github.com/notargets/rbfmap/config"
	"github.com/notargets/rbfmap/mesh"
	"github.com/notargets/rbfmap/pgreedy"
	"github.com/notargets/rbfmap/rbfsolver"
)

// operator abstracts over rbfsolver.Operator and pgreedy.Solver so Mapping
// can hold either without a type switch at every call site.
type operator interface {
	ApplyConsistent(values []float64, dim int) ([]float64, error)
	ApplyConservative(values []float64, dim int) ([]float64, error)
}

// denseAdapter and greedyAdapter give rbfsolver/pgreedy's slightly different
// signatures (pgreedy needs the output size explicitly) a common shape.
type denseAdapter struct{ op *rbfsolver.Operator }

func (d denseAdapter) ApplyConsistent(values []float64, dim int) ([]float64, error) {
	return d.op.ApplyConsistent(values, dim)
}
func (d denseAdapter) ApplyConservative(values []float64, dim int) ([]float64, error) {
	return d.op.ApplyConservative(values, dim)
}

type greedyAdapter struct {
	solver  *pgreedy.Solver
	outSize int
}

func (g greedyAdapter) ApplyConsistent(values []float64, dim int) ([]float64, error) {
	return g.solver.ApplyConsistent(values, dim, g.outSize)
}
func (g greedyAdapter) ApplyConservative(values []float64, dim int) ([]float64, error) {
	return g.solver.ApplyConservative(values, dim, g.outSize)
}

// Mapping is a single configured mapping instance. It owns its
// factorization/center state exclusively; the bound
// meshes are shared with the coupling adapter and mutated only via the
// tagging calls.
type Mapping struct {
	Name string

	cfg   config.MappingConfig
	basis basisfunction.BasisFunction
	dead  mesh.DeadAxis

	in, out *mesh.Mesh

	computed bool
	op       operator

	// Reducer performs the cross-rank sum in the scaled-consistent
	// post-pass. nil means single-rank (identity).
	Reducer func(local []float64) (global []float64, err error)
}

// NewMapping binds a parsed configuration and basis function. Call
// SetMeshes before ComputeMapping.
func NewMapping(cfg config.MappingConfig, basis basisfunction.BasisFunction) *Mapping {
	name := cfg.Name
	if name == "" {
		name = "mapping"
	}
	return &Mapping{
		Name:  name,
		cfg:   cfg,
		basis: basis,
		dead:  mesh.DeadAxis{cfg.DeadAxisX, cfg.DeadAxisY, cfg.DeadAxisZ},
	}
}

// SetMeshes binds the input and output mesh references.
func (m *Mapping) SetMeshes(in, out *mesh.Mesh) error {
	if in == nil || out == nil {
		return &rbfmap.PreconditionViolation{Mapping: m.Name, Detail: "input and output meshes must both be non-nil"}
	}
	m.in, m.out = in, out
	return nil
}

// HasComputedMapping reports whether ComputeMapping has built an operator.
func (m *Mapping) HasComputedMapping() bool { return m.computed }

// ComputeMapping builds the operator from the currently bound meshes. It
// fails if meshes are unset, and is only safe to call again after Clear.
func (m *Mapping) ComputeMapping() error {
	if m.in == nil || m.out == nil {
		return &rbfmap.PreconditionViolation{Mapping: m.Name, Detail: "SetMeshes must be called before ComputeMapping"}
	}
	if m.computed {
		return &rbfmap.PreconditionViolation{Mapping: m.Name, Detail: "ComputeMapping already called; call Clear first"}
	}

	inCoords := coordsOf(m.in)
	outCoords := coordsOf(m.out)

	if m.cfg.Solver == config.SolverGreedy {
		if m.cfg.Constraint == config.Conservative {
			return &rbfmap.ConfigurationError{Mapping: m.Name, Detail: "P-Greedy does not support the conservative constraint; use the dense solver"}
		}
		if m.cfg.Polynomial != "" && m.cfg.Polynomial != config.PolynomialOff {
			return &rbfmap.ConfigurationError{Mapping: m.Name, Detail: fmt.Sprintf("P-Greedy requires polynomial mode off, got %q", m.cfg.Polynomial)}
		}
		solver, err := pgreedy.New(pgreedy.Config{Basis: m.basis, Dead: m.dead}, inCoords, outCoords)
		if err != nil {
			return err
		}
		m.op = greedyAdapter{solver: solver, outSize: len(outCoords)}
		m.computed = true
		return nil
	}

	poly, err := translatePolynomial(m.cfg.Polynomial)
	if err != nil {
		return err
	}
	rcfg := rbfsolver.Config{Basis: m.basis, Dead: m.dead, Dimension: m.cfg.Dimension, Polynomial: poly}
	centers, targets := inCoords, outCoords
	if m.cfg.Constraint == config.Conservative {
		// ApplyConservative takes values on the operator's evaluation points
		// and returns them on its centers, so the conservative operator is
		// centered on the output mesh and evaluated at the input mesh.
		centers, targets = outCoords, inCoords
	}
	op, err := rbfsolver.New(rcfg, centers, targets)
	if err != nil {
		return err
	}
	m.op = denseAdapter{op: op}
	m.computed = true
	return nil
}

// Map applies the computed operator, reading in and writing out. For
// scaled-consistent mappings it post-applies the conservation rescale.
func (m *Mapping) Map(in, out *mesh.DataField) error {
	if !m.computed {
		return &rbfmap.PreconditionViolation{Mapping: m.Name, Detail: "Map called before ComputeMapping"}
	}
	if in.Dim != out.Dim {
		return &rbfmap.PreconditionViolation{Mapping: m.Name, Detail: fmt.Sprintf("value dimension mismatch: in=%d out=%d", in.Dim, out.Dim)}
	}
	if err := in.CheckSize(len(m.in.Vertices)); err != nil {
		return &rbfmap.PreconditionViolation{Mapping: m.Name, Detail: err.Error()}
	}
	if err := out.CheckSize(len(m.out.Vertices)); err != nil {
		return &rbfmap.PreconditionViolation{Mapping: m.Name, Detail: err.Error()}
	}

	var result []float64
	var err error
	switch m.cfg.Constraint {
	case config.Conservative:
		result, err = m.op.ApplyConservative(in.Values, in.Dim)
	default: // Consistent, ScaledConsistent
		result, err = m.op.ApplyConsistent(in.Values, in.Dim)
	}
	if err != nil {
		m.Clear()
		return err
	}
	copy(out.Values, result)

	if m.cfg.Constraint == config.ScaledConsistent {
		if err := m.scale(in, out); err != nil {
			return err
		}
	}
	return nil
}

// Clear discards the cached operator and resets HasComputedMapping to false.
func (m *Mapping) Clear() {
	m.op = nil
	m.computed = false
}

func coordsOf(msh *mesh.Mesh) [][3]float64 {
	coords := make([][3]float64, len(msh.Vertices))
	for i, v := range msh.Vertices {
		coords[i] = v.Coords
	}
	return coords
}

func translatePolynomial(p config.PolynomialMode) (rbfsolver.PolynomialMode, error) {
	switch p {
	case "", config.PolynomialOff:
		return rbfsolver.PolynomialOff, nil
	case config.PolynomialConstantSeparated:
		return rbfsolver.PolynomialConstantSeparated, nil
	case config.PolynomialLinearIntegrated:
		return rbfsolver.PolynomialLinearIntegrated, nil
	case config.PolynomialLinearSeparated:
		return rbfsolver.PolynomialLinearSeparated, nil
	default:
		return 0, &rbfmap.ConfigurationError{Mapping: "mapping", Detail: fmt.Sprintf("unknown polynomial mode %q", p)}
	}
}

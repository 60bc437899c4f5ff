// Package config parses the YAML configuration of a single mapping
// instance: constraint, spatial dimension, basis-function kind and
// parameters, dead axes, polynomial mode and solver choice. It follows
// the shape of InputParameters.Parse/Print over github.com/ghodss/yaml
// rather than introducing a new configuration idiom.
package config

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/notargets/rbfmap"
)

// Constraint selects the interpolation semantics of a mapping.
type Constraint string

const (
	Consistent       Constraint = "consistent"
	Conservative     Constraint = "conservative"
	ScaledConsistent Constraint = "scaled-consistent"
)

// BasisKind names one of the catalog entries in the basisfunction package.
type BasisKind string

const (
	BasisGaussian              BasisKind = "gaussian"
	BasisThinPlateSpline       BasisKind = "thin-plate-spline"
	BasisMultiquadric          BasisKind = "multiquadric"
	BasisInverseMultiquadric   BasisKind = "inverse-multiquadric"
	BasisVolumeSpline          BasisKind = "volume-spline"
	BasisCompactThinPlateC2    BasisKind = "compact-thin-plate-spline-c2"
	BasisCompactPolynomialC0   BasisKind = "compact-polynomial-c0"
	BasisCompactPolynomialC6   BasisKind = "compact-polynomial-c6"
)

// PolynomialMode names the augmentation mode, matching rbfsolver.PolynomialMode's
// values without creating an import from config onto rbfsolver.
type PolynomialMode string

const (
	PolynomialOff               PolynomialMode = "off"
	PolynomialConstantSeparated PolynomialMode = "constant-separated"
	PolynomialLinearIntegrated  PolynomialMode = "linear-integrated"
	PolynomialLinearSeparated   PolynomialMode = "linear-separated"
)

// SolverKind selects the dense factorization, P-Greedy, or the
// nearest-neighbor mapper.
type SolverKind string

const (
	SolverDense          SolverKind = "dense"
	SolverGreedy         SolverKind = "greedy"
	SolverNearestNeighbor SolverKind = "nearest-neighbor"
)

// MappingConfig is the YAML-backed configuration of one mapping instance.
type MappingConfig struct {
	Name       string         `json:"Name"`
	Constraint Constraint     `json:"Constraint"`
	Dimension  int            `json:"Dimension"`
	Solver     SolverKind     `json:"Solver"`
	Basis      BasisKind      `json:"Basis"`
	ShapeParam float64        `json:"ShapeParam"`
	SupportRadius float64     `json:"SupportRadius"`
	DeadAxisX  bool           `json:"DeadAxisX"`
	DeadAxisY  bool           `json:"DeadAxisY"`
	DeadAxisZ  bool           `json:"DeadAxisZ"`
	Polynomial PolynomialMode `json:"Polynomial"`
}

// Parse unmarshals YAML bytes into mc, mirroring
// InputParameters2D.Parse's ghodss/yaml-over-JSON-tags convention.
func (mc *MappingConfig) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, mc); err != nil {
		return err
	}
	// YAML 1.1 reads a bare `off` as the boolean false, which reaches the
	// string-typed Polynomial field as "false".
	if mc.Polynomial == "false" {
		mc.Polynomial = PolynomialOff
	}
	return nil
}

// Print writes a human-readable summary to stdout, matching
// InputParameters2D.Print's plain fmt.Printf reporting style.
func (mc *MappingConfig) Print() {
	fmt.Printf("\"%s\"\t\t= Name\n", mc.Name)
	fmt.Printf("[%s]\t\t= Constraint\n", mc.Constraint)
	fmt.Printf("[%d]\t\t\t= Dimension\n", mc.Dimension)
	fmt.Printf("[%s]\t\t\t= Solver\n", mc.Solver)
	fmt.Printf("[%s]\t= Basis\n", mc.Basis)
	fmt.Printf("%8.5f\t\t= ShapeParam\n", mc.ShapeParam)
	fmt.Printf("%8.5f\t\t= SupportRadius\n", mc.SupportRadius)
	fmt.Printf("[%v %v %v]\t\t= DeadAxis (x,y,z)\n", mc.DeadAxisX, mc.DeadAxisY, mc.DeadAxisZ)
	fmt.Printf("[%s]\t= Polynomial\n", mc.Polynomial)
}

// Validate rejects invalid field combinations as ConfigurationErrors at the
// config layer, before any mesh or numerical work starts.
func (mc *MappingConfig) Validate() error {
	if mc.Dimension != 2 && mc.Dimension != 3 {
		return &rbfmap.ConfigurationError{Mapping: mc.Name, Detail: fmt.Sprintf("config: Dimension must be 2 or 3, got %d", mc.Dimension)}
	}
	switch mc.Constraint {
	case Consistent, Conservative, ScaledConsistent:
	default:
		return &rbfmap.ConfigurationError{Mapping: mc.Name, Detail: fmt.Sprintf("config: unknown Constraint %q", mc.Constraint)}
	}
	if mc.Solver == SolverGreedy {
		if mc.Polynomial != "" && mc.Polynomial != PolynomialOff {
			return &rbfmap.ConfigurationError{Mapping: mc.Name, Detail: fmt.Sprintf("config: greedy solver requires Polynomial off, got %q", mc.Polynomial)}
		}
		if mc.Constraint == Conservative {
			return &rbfmap.ConfigurationError{Mapping: mc.Name, Detail: "config: greedy solver does not support the conservative constraint"}
		}
	}
	if mc.Solver == SolverNearestNeighbor && mc.Constraint == ScaledConsistent {
		return &rbfmap.ConfigurationError{Mapping: mc.Name, Detail: "config: nearest-neighbor solver does not support the scaled-consistent constraint"}
	}
	return nil
}

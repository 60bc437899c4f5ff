package utils

import "gonum.org/v1/gonum/mat"

// Matrix adapts a *mat.Dense into the receiver the numerical diagnostics in
// matrix_extended2.go hang off of (ConditionNumber, ConditionNumberQR,
// Eigenvalues, SingularValues).
type Matrix struct {
	M *mat.Dense
}

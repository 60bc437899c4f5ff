package config

import (
	"fmt"

	"github.com/notargets/rbfmap/basisfunction"
)

// BuildBasis instantiates the basisfunction.BasisFunction named by mc.Basis
// using mc.ShapeParam / mc.SupportRadius as the kernel's single parameter.
func (mc *MappingConfig) BuildBasis() (basisfunction.BasisFunction, error) {
	switch mc.Basis {
	case BasisGaussian:
		return basisfunction.Gaussian{Shape: mc.ShapeParam}, nil
	case BasisThinPlateSpline:
		return basisfunction.ThinPlateSpline{}, nil
	case BasisMultiquadric:
		return basisfunction.Multiquadric{C: mc.ShapeParam}, nil
	case BasisInverseMultiquadric:
		return basisfunction.InverseMultiquadric{C: mc.ShapeParam}, nil
	case BasisVolumeSpline:
		return basisfunction.VolumeSpline{}, nil
	case BasisCompactThinPlateC2:
		return basisfunction.CompactThinPlateSplineC2{Support: mc.SupportRadius}, nil
	case BasisCompactPolynomialC0:
		return basisfunction.CompactPolynomialC0{Support: mc.SupportRadius}, nil
	case BasisCompactPolynomialC6:
		return basisfunction.CompactPolynomialC6{Support: mc.SupportRadius}, nil
	default:
		return nil, fmt.Errorf("config: unknown Basis %q", mc.Basis)
	}
}

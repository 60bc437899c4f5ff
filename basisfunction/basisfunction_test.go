package basisfunction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKernels(t *testing.T) {
	{ // Gaussian decays and is strictly positive definite
		g := Gaussian{Shape: 1}
		assert.Equal(t, 1.0, g.Evaluate(0))
		assert.True(t, g.Evaluate(1) < g.Evaluate(0.5))
		assert.True(t, g.IsStrictlyPositiveDefinite())
		_, ok := g.SupportRadius()
		assert.False(t, ok)
	}
	{ // NewGaussianFromCutoff reproduces the requested value at the cutoff
		g := NewGaussianFromCutoff(2.0, 1e-3)
		assert.InDelta(t, 1e-3, g.Evaluate(2.0), 1e-9)
	}
	{ // Thin-plate spline is zero at the origin and not positive definite
		tps := ThinPlateSpline{}
		assert.Equal(t, 0.0, tps.Evaluate(0))
		assert.False(t, tps.IsStrictlyPositiveDefinite())
	}
	{ // Multiquadric and inverse multiquadric are reciprocal in shape
		mq := Multiquadric{C: 1}
		imq := InverseMultiquadric{C: 1}
		assert.InDelta(t, 1.0, mq.Evaluate(0), 1e-12)
		assert.InDelta(t, 1.0, imq.Evaluate(0), 1e-12)
		assert.True(t, imq.IsStrictlyPositiveDefinite())
		assert.False(t, mq.IsStrictlyPositiveDefinite())
	}
	{ // Volume spline is the identity
		vs := VolumeSpline{}
		assert.Equal(t, 3.5, vs.Evaluate(3.5))
	}
	{ // Compact kernels vanish at and beyond their support radius
		c2 := CompactThinPlateSplineC2{Support: 2}
		assert.Equal(t, 0.0, c2.Evaluate(2))
		assert.Equal(t, 0.0, c2.Evaluate(3))
		assert.True(t, c2.Evaluate(1) > 0)
		r, ok := c2.SupportRadius()
		assert.True(t, ok)
		assert.Equal(t, 2.0, r)
		assert.Equal(t, 2.0, c2.EffectiveSupport(0))
	}
	{ // Compact polynomial kernels vanish at their support radius
		c0 := CompactPolynomialC0{Support: 1.5}
		assert.Equal(t, 0.0, c0.Evaluate(1.5))
		assert.True(t, c0.Evaluate(0.5) > 0)

		c6 := CompactPolynomialC6{Support: 1.5}
		assert.Equal(t, 0.0, c6.Evaluate(1.5))
		assert.True(t, c6.Evaluate(0.5) > 0)
	}
	{ // EffectiveSupport of a decaying non-compact kernel brackets the threshold crossing
		g := Gaussian{Shape: 1}
		rho := g.EffectiveSupport(1e-6)
		assert.True(t, g.Evaluate(rho) <= 1e-6*1.0001)
	}
	{ // Kernels that grow without bound instead of decaying have no
		// negligible-beyond-rho radius: EffectiveSupport reports +Inf so
		// tagging treats the whole domain as within support rather than
		// silently pruning everything.
		tps := ThinPlateSpline{}
		assert.True(t, math.IsInf(tps.EffectiveSupport(DefaultEffectiveSupportThreshold), 1))

		vs := VolumeSpline{}
		assert.True(t, math.IsInf(vs.EffectiveSupport(DefaultEffectiveSupportThreshold), 1))

		mq := Multiquadric{C: 1}
		assert.True(t, math.IsInf(mq.EffectiveSupport(DefaultEffectiveSupportThreshold), 1))
	}
}

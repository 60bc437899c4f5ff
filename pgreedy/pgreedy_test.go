package pgreedy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/rbfmap/basisfunction"
)

func grid() [][3]float64 {
	var pts [][3]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			pts = append(pts, [3]float64{float64(i), float64(j), 0})
		}
	}
	return pts
}

func TestGreedySelection(t *testing.T) {
	{ // Power function reaches 0 at every selected center
		cfg := Config{Basis: basisfunction.Gaussian{Shape: 1.5}}
		in := grid()
		s, err := New(cfg, in, in)
		require.NoError(t, err)

		pf := s.PowerFunction()
		for _, id := range s.GreedyIDs() {
			assert.InDelta(t, 0.0, pf[id], 1e-8)
		}
		assert.True(t, len(s.GreedyIDs()) > 0)
	}
	{ // Conditionally-PD kernel is rejected up front
		cfg := Config{Basis: basisfunction.ThinPlateSpline{}}
		_, err := New(cfg, grid(), grid())
		require.Error(t, err)
	}
	{ // Conservative is explicitly unsupported
		cfg := Config{Basis: basisfunction.Gaussian{Shape: 1.5}}
		s, err := New(cfg, grid(), grid())
		require.NoError(t, err)
		_, err = s.ApplyConservative(make([]float64, len(grid())), 1, len(grid()))
		require.Error(t, err)
	}
	{ // Consistent evaluation reproduces values at input-coincident output points
		cfg := Config{Basis: basisfunction.InverseMultiquadric{C: 1}}
		in := grid()
		s, err := New(cfg, in, in)
		require.NoError(t, err)

		values := make([]float64, len(in))
		for i := range values {
			values[i] = float64(i)
		}
		result, err := s.ApplyConsistent(values, 1, len(in))
		require.NoError(t, err)
		assert.Equal(t, len(in), len(result))
		for i := range values {
			assert.InDelta(t, values[i], result[i], 1e-6)
		}
	}
}

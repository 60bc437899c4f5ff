package nearestneighbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/rbfmap/config"
	"github.com/notargets/rbfmap/mesh"
)

func scatteredMesh() *mesh.Mesh {
	m := mesh.New("scattered", 2)
	m.AddVertex(0, [3]float64{0, 0, 0}, true)
	m.AddVertex(1, [3]float64{1, 0, 0}, true)
	m.AddVertex(2, [3]float64{5, 5, 0}, true)
	return m
}

func TestConsistentGather(t *testing.T) {
	in := scatteredMesh()
	out := mesh.New("queries", 2)
	out.AddVertex(0, [3]float64{0.1, 0, 0}, true)  // nearest to in[0]
	out.AddVertex(1, [3]float64{4.9, 4.9, 0}, true) // nearest to in[2]

	m, err := New("nn", config.Consistent, mesh.DeadAxis{})
	require.NoError(t, err)
	require.NoError(t, m.SetMeshes(in, out))
	require.NoError(t, m.ComputeMapping())
	assert.True(t, m.HasComputedMapping())

	inField := mesh.NewDataField("t", 1, 3)
	copy(inField.Values, []float64{10, 20, 30})
	outField := mesh.NewDataField("t", 1, 2)
	require.NoError(t, m.Map(inField, outField))
	assert.Equal(t, []float64{10, 30}, outField.Values)
}

func TestConservativeScatterAccumulate(t *testing.T) {
	in := mesh.New("sources", 2)
	in.AddVertex(0, [3]float64{0.1, 0, 0}, true)
	in.AddVertex(1, [3]float64{0.2, 0, 0}, true) // both nearest to out[0]
	out := scatteredMesh()

	m, err := New("nn", config.Conservative, mesh.DeadAxis{})
	require.NoError(t, err)
	require.NoError(t, m.SetMeshes(in, out))
	require.NoError(t, m.ComputeMapping())

	inField := mesh.NewDataField("flux", 1, 2)
	copy(inField.Values, []float64{1, 2})
	outField := mesh.NewDataField("flux", 1, 3) // caller pre-zeroes
	require.NoError(t, m.Map(inField, outField))
	assert.Equal(t, []float64{3, 0, 0}, outField.Values)
}

func TestScaledConsistentRejected(t *testing.T) {
	_, err := New("nn", config.ScaledConsistent, mesh.DeadAxis{})
	require.Error(t, err)
}

func TestTaggingMatchesIndexMembership(t *testing.T) {
	in := scatteredMesh()
	out := mesh.New("queries", 2)
	out.AddVertex(0, [3]float64{0.1, 0, 0}, true) // nearest to in[0] only

	m, err := New("nn", config.Consistent, mesh.DeadAxis{})
	require.NoError(t, err)
	require.NoError(t, m.SetMeshes(in, out))

	require.NoError(t, m.TagMeshFirstRound())
	assert.True(t, in.Vertices[0].Tagged)
	assert.False(t, in.Vertices[1].Tagged)
	assert.False(t, in.Vertices[2].Tagged)

	m.TagMeshSecondRound() // no-op, tagging unchanged
	assert.True(t, in.Vertices[0].Tagged)
	assert.False(t, in.Vertices[1].Tagged)
}

func TestClearResetsComputedState(t *testing.T) {
	m, err := New("nn", config.Consistent, mesh.DeadAxis{})
	require.NoError(t, err)
	require.NoError(t, m.SetMeshes(scatteredMesh(), scatteredMesh()))
	require.NoError(t, m.ComputeMapping())
	m.Clear()
	assert.False(t, m.HasComputedMapping())
	err = m.Map(mesh.NewDataField("f", 1, 3), mesh.NewDataField("f", 1, 3))
	require.Error(t, err)
}

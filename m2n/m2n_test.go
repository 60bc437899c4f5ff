package m2n

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/rbfmap/mesh"
)

func TestGatherScatterRoundTrip(t *testing.T) {
	// 3 ranks, 6 global vertices, 2 per rank, value dimension 1.
	size := 3
	dist := mesh.VertexDistribution{
		0: {0, 1},
		1: {2, 3},
		2: {4, 5},
	}
	transports := NewChannelGroup("exchange", size)
	localValues := [][]float64{
		{10, 20}, // rank 0
		{30, 40}, // rank 1
		{50, 60}, // rank 2
	}

	results := make([][]float64, size)
	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		rank := rank
		wg.Add(1)
		go func() {
			defer wg.Done()
			msh := mesh.New("exchange", 2)
			msh.Distribution = dist
			msh.GlobalCount = 6
			d := &GatherScatterDistributor{
				Name:      "exchange",
				Ctx:       NewRankContext(rank, size),
				Mesh:      msh,
				Transport: transports[rank],
			}
			require.NoError(t, d.Send(localValues[rank], 1))
			out := make([]float64, 2)
			require.NoError(t, d.Receive(out, 1))
			results[rank] = out
		}()
	}
	wg.Wait()

	assert.Equal(t, []float64{10, 20}, results[0])
	assert.Equal(t, []float64{30, 40}, results[1])
	assert.Equal(t, []float64{50, 60}, results[2])
}

func TestGatherScatterAccumulatesOverlap(t *testing.T) {
	// Two ranks both contribute into the same global vertex 0 (e.g. shared
	// interface vertex); the primary's gather must sum, not overwrite.
	size := 2
	dist := mesh.VertexDistribution{
		0: {0},
		1: {0},
	}
	transports := NewChannelGroup("shared", size)
	local := [][]float64{{4}, {6}}
	results := make([][]float64, size)

	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		rank := rank
		wg.Add(1)
		go func() {
			defer wg.Done()
			msh := mesh.New("shared", 2)
			msh.Distribution = dist
			msh.GlobalCount = 1
			d := &GatherScatterDistributor{
				Name:      "shared",
				Ctx:       NewRankContext(rank, size),
				Mesh:      msh,
				Transport: transports[rank],
			}
			require.NoError(t, d.Send(local[rank], 1))
			out := make([]float64, 1)
			require.NoError(t, d.Receive(out, 1))
			results[rank] = out
		}()
	}
	wg.Wait()

	assert.Equal(t, []float64{10}, results[0])
	assert.Equal(t, []float64{10}, results[1])
}

func TestAllreduceSum(t *testing.T) {
	size := 4
	transports := NewChannelGroup("reduce", size)
	local := [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}}
	results := make([][]float64, size)

	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		rank := rank
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := transports[rank].AllreduceSum(local[rank])
			require.NoError(t, err)
			results[rank] = out
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, []float64{10, 10}, r)
	}
}

func TestBuildVertexDistributionCoversRangeExactly(t *testing.T) {
	dist := BuildVertexDistribution(3, 7)
	seen := make(map[int]bool)
	for rank := 0; rank < 3; rank++ {
		for _, g := range dist[rank] {
			assert.False(t, seen[g], "global index %d assigned twice", g)
			seen[g] = true
		}
	}
	assert.Len(t, seen, 7)
	for g := 0; g < 7; g++ {
		assert.True(t, seen[g], "global index %d missing from distribution", g)
	}
}

func TestGatherScatterWithPartitionedDistribution(t *testing.T) {
	size := 3
	numGlobal := 9
	dist := BuildVertexDistribution(size, numGlobal)
	transports := NewChannelGroup("partitioned", size)

	local := make([][]float64, size)
	for rank := 0; rank < size; rank++ {
		vals := make([]float64, len(dist[rank]))
		for i, g := range dist[rank] {
			vals[i] = float64(g) * 10
		}
		local[rank] = vals
	}
	results := make([][]float64, size)

	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		rank := rank
		wg.Add(1)
		go func() {
			defer wg.Done()
			msh := mesh.New("partitioned", 2)
			msh.Distribution = dist
			msh.GlobalCount = numGlobal
			d := &GatherScatterDistributor{
				Name:      "partitioned",
				Ctx:       NewRankContext(rank, size),
				Mesh:      msh,
				Transport: transports[rank],
			}
			require.NoError(t, d.Send(local[rank], 1))
			out := make([]float64, len(dist[rank]))
			require.NoError(t, d.Receive(out, 1))
			results[rank] = out
		}()
	}
	wg.Wait()

	for rank := 0; rank < size; rank++ {
		assert.Equal(t, local[rank], results[rank])
	}
}

func TestScenario3Distributed4RankConsistent(t *testing.T) {
	// Eight input vertices, one column of two per rank, values 1..8; output
	// mesh identical to input on each rank, so the gather-scatter round trip
	// alone (no RBF solve needed, since the operator is the identity when
	// input and output vertices coincide) must reproduce each rank's
	// values exactly.
	size := 4
	dist := BuildVertexDistribution(size, 8)
	transports := NewChannelGroup("scenario3", size)
	local := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	results := make([][]float64, size)

	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		rank := rank
		wg.Add(1)
		go func() {
			defer wg.Done()
			msh := mesh.New("scenario3", 2)
			msh.Distribution = dist
			msh.GlobalCount = 8
			d := &GatherScatterDistributor{
				Name:      "scenario3",
				Ctx:       NewRankContext(rank, size),
				Mesh:      msh,
				Transport: transports[rank],
			}
			require.NoError(t, d.Send(local[rank], 1))
			out := make([]float64, len(dist[rank]))
			require.NoError(t, d.Receive(out, 1))
			results[rank] = out
		}()
	}
	wg.Wait()

	for rank := 0; rank < size; rank++ {
		assert.Equal(t, local[rank], results[rank], "rank %d", rank)
	}
}

func TestReceiveBeforeSendIsPreconditionViolation(t *testing.T) {
	transports := NewChannelGroup("bad", 2)
	msh := mesh.New("bad", 2)
	msh.Distribution = mesh.VertexDistribution{0: {0}, 1: {1}}
	msh.GlobalCount = 2
	d := &GatherScatterDistributor{
		Name:      "bad",
		Ctx:       NewRankContext(0, 2),
		Mesh:      msh,
		Transport: transports[0],
	}
	err := d.Receive(make([]float64, 1), 1)
	require.Error(t, err)
}

package m2n

import (
	"github.com/notargets/rbfmap/mesh"
	"github.com/notargets/rbfmap/utils"
)

// BuildVertexDistribution splits the contiguous global index range
// [0, numGlobalVertices) into size contiguous buckets using
// utils.PartitionMap, and returns the result as a mesh.VertexDistribution.
// Building a distribution from scratch is a coupling-adapter concern the
// mapping core itself never needs, but a single-process test harness or CLI
// simulating multiple ranks needs some way to synthesize one; this is that
// adapter, reusing the contiguous-bucket splitter in utils/parallel_utils.go.
func BuildVertexDistribution(size, numGlobalVertices int) mesh.VertexDistribution {
	pm := utils.NewPartitionMap(size, numGlobalVertices)
	dist := make(mesh.VertexDistribution, size)
	for rank := 0; rank < size; rank++ {
		min, max := pm.GetBucketRange(rank)
		ids := make([]int, 0, max-min)
		for g := min; g < max; g++ {
			ids = append(ids, g)
		}
		dist[rank] = ids
	}
	return dist
}

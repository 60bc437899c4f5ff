// Package nearestneighbor implements a nearest-neighbor mapper: for every
// output (consistent) or input (conservative) vertex, it precomputes the
// index of the closest vertex in the opposite mesh using a spatial index
// over vertex coordinates, and applies that index as a plain gather or
// scatter-accumulate. It uses gonum.org/v1/gonum/spatial/kdtree rather than
// an R-tree, following the kdtree.Comparable/kdtree.Interface idiom.
package nearestneighbor

import (
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/notargets/rbfmap"
	"github.com/notargets/rbfmap/config"
	"github.com/notargets/rbfmap/mesh"
)

type vertexPoint struct {
	localID int
	coords  [3]float64
	dead    mesh.DeadAxis
}

func (p vertexPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(vertexPoint)
	if p.dead[d] {
		return 0
	}
	return p.coords[d] - q.coords[d]
}

func (p vertexPoint) Dims() int { return 3 }

func (p vertexPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(vertexPoint)
	return mesh.ActiveSquaredDistance(p.coords, q.coords, p.dead)
}

type vertexPoints []vertexPoint

func (v vertexPoints) Index(i int) kdtree.Comparable         { return v[i] }
func (v vertexPoints) Len() int                              { return len(v) }
func (v vertexPoints) Slice(start, end int) kdtree.Interface { return v[start:end] }
func (v vertexPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(vertexPlane{vertexPoints: v, Dim: d}, kdtree.MedianOfRandoms(vertexPlane{vertexPoints: v, Dim: d}, 100))
}

type vertexPlane struct {
	vertexPoints
	kdtree.Dim
}

func (p vertexPlane) Less(i, j int) bool {
	return p.vertexPoints[i].coords[p.Dim] < p.vertexPoints[j].coords[p.Dim]
}
func (p vertexPlane) Slice(start, end int) kdtree.SortSlicer {
	return vertexPlane{vertexPoints: p.vertexPoints[start:end], Dim: p.Dim}
}
func (p vertexPlane) Swap(i, j int) {
	p.vertexPoints[i], p.vertexPoints[j] = p.vertexPoints[j], p.vertexPoints[i]
}

// Mapper is the nearest-neighbor mapping driver.
type Mapper struct {
	Name       string
	Constraint config.Constraint
	Dead       mesh.DeadAxis

	in, out *mesh.Mesh

	computed      bool
	tree          *kdtree.Tree
	vertexIndices []int
}

// New creates a nearest-neighbor mapper for the given constraint
// (consistent or conservative; scaled-consistent is not meaningful for a
// pointwise gather and is rejected).
func New(name string, constraint config.Constraint, dead mesh.DeadAxis) (*Mapper, error) {
	if constraint == config.ScaledConsistent {
		return nil, &rbfmap.ConfigurationError{Mapping: name, Detail: "nearest-neighbor mapping does not support scaled-consistent"}
	}
	if name == "" {
		name = "nearestneighbor"
	}
	return &Mapper{Name: name, Constraint: constraint, Dead: dead}, nil
}

// SetMeshes binds the input and output mesh references.
func (m *Mapper) SetMeshes(in, out *mesh.Mesh) error {
	if in == nil || out == nil {
		return &rbfmap.PreconditionViolation{Mapping: m.Name, Detail: "input and output meshes must both be non-nil"}
	}
	m.in, m.out = in, out
	return nil
}

// HasComputedMapping reports whether ComputeMapping has run.
func (m *Mapper) HasComputedMapping() bool { return m.computed }

// ComputeMapping builds the spatial index over the source mesh (input mesh
// for consistent, output mesh for conservative) and precomputes the
// nearest-index list for every vertex of the opposite mesh.
func (m *Mapper) ComputeMapping() error {
	if m.in == nil || m.out == nil {
		return &rbfmap.PreconditionViolation{Mapping: m.Name, Detail: "SetMeshes must be called before ComputeMapping"}
	}

	var source, query *mesh.Mesh
	if m.Constraint == config.Conservative {
		source, query = m.out, m.in
	} else {
		source, query = m.in, m.out
	}

	points := make(vertexPoints, len(source.Vertices))
	for i, v := range source.Vertices {
		points[i] = vertexPoint{localID: v.ID, coords: v.Coords, dead: m.Dead}
	}
	m.tree = kdtree.New(points, true)

	m.vertexIndices = make([]int, len(query.Vertices))
	for i, v := range query.Vertices {
		nearest, _ := m.tree.Nearest(vertexPoint{coords: v.Coords, dead: m.Dead})
		m.vertexIndices[i] = nearest.(vertexPoint).localID
	}
	m.computed = true
	return nil
}

// Map applies the precomputed index list: a gather for consistent
// (output[i] = input[nearestOf(i)]), a scatter-accumulate for conservative
// (output[nearestOf(i)] += input[i]). Conservative callers are responsible
// for zeroing out.Values before calling Map, matching the accumulate
// semantics of the gather-scatter distributor.
func (m *Mapper) Map(in, out *mesh.DataField) error {
	if !m.computed {
		return &rbfmap.PreconditionViolation{Mapping: m.Name, Detail: "Map called before ComputeMapping"}
	}
	if in.Dim != out.Dim {
		return &rbfmap.PreconditionViolation{Mapping: m.Name, Detail: "value dimension mismatch"}
	}
	dim := in.Dim

	if m.Constraint == config.Conservative {
		for i := 0; i < len(m.in.Vertices); i++ {
			dstID := m.vertexIndices[i]
			for d := 0; d < dim; d++ {
				out.Values[dstID*dim+d] += in.Values[i*dim+d]
			}
		}
		return nil
	}
	for i := 0; i < len(m.out.Vertices); i++ {
		srcID := m.vertexIndices[i]
		for d := 0; d < dim; d++ {
			out.Values[i*dim+d] = in.Values[srcID*dim+d]
		}
	}
	return nil
}

// Clear discards the spatial index and precomputed index list.
func (m *Mapper) Clear() {
	m.tree = nil
	m.vertexIndices = nil
	m.computed = false
}

// TagMeshFirstRound tags exactly the vertices whose local ids appear in
// the precomputed index list: input vertices for consistent, output
// vertices for conservative. It computes the mapping first if that has
// not already happened.
func (m *Mapper) TagMeshFirstRound() error {
	if !m.computed {
		if err := m.ComputeMapping(); err != nil {
			return err
		}
	}
	tagged := make(map[int]bool, len(m.vertexIndices))
	for _, id := range m.vertexIndices {
		tagged[id] = true
	}
	target := m.in
	if m.Constraint == config.Conservative {
		target = m.out
	}
	for _, v := range target.Vertices {
		if tagged[v.ID] {
			target.SetTag(v.ID, true)
		}
	}
	return nil
}

// TagMeshSecondRound is a no-op: nearest-neighbor tagging has no
// second-hop extension, the full tagged set is already established by
// TagMeshFirstRound.
func (m *Mapper) TagMeshSecondRound() {}

// Package mesh defines the vertex/edge/triangle geometry the mapping core
// reads. It mirrors a plain triangulated-mesh shape (points, edges,
// triangles) but drops any Delaunay-construction machinery: building a
// mesh from scratch is outside this core's scope, which only ever consumes
// a mesh handed to it by a coupling adapter.
package mesh

import (
	"fmt"
	"math"
)

// Vertex is a single mesh point. ID is a stable local index; GlobalIndex is
// unique and contiguous across the whole logical mesh (spanning ranks).
// Coords always holds three components; 2D meshes leave Coords[2] == 0.
type Vertex struct {
	ID          int
	GlobalIndex int
	Coords      [3]float64
	Owner       bool
	Tagged      bool
}

// Edge references two vertices by local index. Length is cached at
// construction time via Mesh.AddEdge and never recomputed.
type Edge struct {
	V      [2]int
	Length float64
}

// Triangle references three vertices by local index, with a cached area.
type Triangle struct {
	V    [3]int
	Area float64
}

// VertexDistribution maps a rank to the ordered list of global indices that
// rank contributes. It is a Non-goal to construct one here: the mapping
// core only ever consumes a distribution built by the partitioner/coupling
// adapter that owns the mesh.
type VertexDistribution map[int][]int

// BoundingBox is an axis-aligned box over up to three coordinates.
type BoundingBox struct {
	Min, Max [3]float64
}

// Mesh is the mapping core's read-only view of an input or output mesh.
// The mapping mutates only the Tagged bit of each vertex (via SetTag),
// never coordinates: mesh geometry belongs to the coupling adapter that
// hands it in, not the mapping.
type Mesh struct {
	Name         string
	Dimension    int // 2 or 3
	Vertices     []Vertex
	Edges        []Edge
	Triangles    []Triangle
	Distribution VertexDistribution
	GlobalCount  int

	bbox      BoundingBox
	bboxValid bool
}

// New creates an empty mesh of the given spatial dimension.
func New(name string, dimension int) *Mesh {
	if dimension != 2 && dimension != 3 {
		panic(fmt.Sprintf("mesh: dimension must be 2 or 3, got %d", dimension))
	}
	return &Mesh{Name: name, Dimension: dimension}
}

// AddVertex appends a vertex, assigning it the next local ID.
func (m *Mesh) AddVertex(globalIndex int, coords [3]float64, owner bool) int {
	id := len(m.Vertices)
	m.Vertices = append(m.Vertices, Vertex{
		ID:          id,
		GlobalIndex: globalIndex,
		Coords:      coords,
		Owner:       owner,
	})
	m.bboxValid = false
	return id
}

// AddEdge appends an edge between two local vertex indices, caching its
// Euclidean length.
func (m *Mesh) AddEdge(v0, v1 int) Edge {
	e := Edge{V: [2]int{v0, v1}, Length: distance(m.Vertices[v0].Coords, m.Vertices[v1].Coords)}
	m.Edges = append(m.Edges, e)
	return e
}

// AddTriangle appends a triangle among three local vertex indices, caching
// its area as half the magnitude of the cross product of the two edges
// leaving v0 (valid for 2D and 3D triangles alike).
func (m *Mesh) AddTriangle(v0, v1, v2 int) Triangle {
	t := Triangle{V: [3]int{v0, v1, v2}, Area: triangleArea(m.Vertices[v0].Coords, m.Vertices[v1].Coords, m.Vertices[v2].Coords)}
	m.Triangles = append(m.Triangles, t)
	return t
}

// SetTag mutates the Tagged bit of the given local vertex. This is the only
// vertex mutation the mapping core performs.
func (m *Mesh) SetTag(id int, tagged bool) {
	m.Vertices[id].Tagged = tagged
}

// ClearTags resets every local vertex's Tagged bit to false.
func (m *Mesh) ClearTags() {
	for i := range m.Vertices {
		m.Vertices[i].Tagged = false
	}
}

// BoundingBox lazily computes and caches the mesh's axis-aligned bounding
// box over its local vertices. Coordinate mutation is out of the mapping
// core's scope, so no invalidation hook beyond AddVertex is needed.
func (m *Mesh) BoundingBox() BoundingBox {
	if m.bboxValid {
		return m.bbox
	}
	var bb BoundingBox
	if len(m.Vertices) == 0 {
		m.bbox, m.bboxValid = bb, true
		return bb
	}
	bb.Min = m.Vertices[0].Coords
	bb.Max = m.Vertices[0].Coords
	for _, v := range m.Vertices[1:] {
		for d := 0; d < 3; d++ {
			if v.Coords[d] < bb.Min[d] {
				bb.Min[d] = v.Coords[d]
			}
			if v.Coords[d] > bb.Max[d] {
				bb.Max[d] = v.Coords[d]
			}
		}
	}
	m.bbox, m.bboxValid = bb, true
	return bb
}

func distance(a, b [3]float64) float64 {
	var s float64
	for d := 0; d < 3; d++ {
		diff := a[d] - b[d]
		s += diff * diff
	}
	return math.Sqrt(s)
}

func triangleArea(a, b, c [3]float64) float64 {
	// 0.5 * |AB x AC|
	abx, aby, abz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	acx, acy, acz := c[0]-a[0], c[1]-a[1], c[2]-a[2]
	cx := aby*acz - abz*acy
	cy := abz*acx - abx*acz
	cz := abx*acy - aby*acx
	return 0.5 * math.Sqrt(cx*cx+cy*cy+cz*cz)
}

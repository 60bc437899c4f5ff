package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMesh(t *testing.T) {
	{ // Basic construction and bounding box
		m := New("square", 2)
		m.AddVertex(0, [3]float64{0, 0, 0}, true)
		m.AddVertex(1, [3]float64{1, 0, 0}, true)
		m.AddVertex(2, [3]float64{1, 1, 0}, true)
		m.AddVertex(3, [3]float64{0, 1, 0}, true)
		bb := m.BoundingBox()
		assert.Equal(t, [3]float64{0, 0, 0}, bb.Min)
		assert.Equal(t, [3]float64{1, 1, 0}, bb.Max)
	}
	{ // Edge length caching
		m := New("edge", 2)
		m.AddVertex(0, [3]float64{0, 0, 0}, true)
		m.AddVertex(1, [3]float64{3, 4, 0}, true)
		e := m.AddEdge(0, 1)
		assert.InDelta(t, 5.0, e.Length, 1e-12)
	}
	{ // Triangle area caching
		m := New("tri", 2)
		m.AddVertex(0, [3]float64{0, 0, 0}, true)
		m.AddVertex(1, [3]float64{1, 0, 0}, true)
		m.AddVertex(2, [3]float64{0, 1, 0}, true)
		tri := m.AddTriangle(0, 1, 2)
		assert.InDelta(t, 0.5, tri.Area, 1e-12)
	}
	{ // Tagging touches only the Tagged bit
		m := New("tag", 2)
		m.AddVertex(0, [3]float64{0, 0, 0}, true)
		m.SetTag(0, true)
		assert.True(t, m.Vertices[0].Tagged)
		assert.Equal(t, [3]float64{0, 0, 0}, m.Vertices[0].Coords)
		m.ClearTags()
		assert.False(t, m.Vertices[0].Tagged)
	}
	{ // DataField size invariant
		f := NewDataField("temperature", 2, 4)
		assert.NoError(t, f.CheckSize(4))
		assert.Error(t, f.CheckSize(3))
	}
}

func TestActiveDistance(t *testing.T) {
	{ // Full 3D distance
		d := ActiveDistance([3]float64{0, 0, 0}, [3]float64{3, 4, 0}, DeadAxis{})
		assert.InDelta(t, 5.0, d, 1e-12)
	}
	{ // Dead y axis collapses that dimension
		d := ActiveDistance([3]float64{0, 0, 0}, [3]float64{3, 4, 0}, DeadAxis{false, true, false})
		assert.InDelta(t, 3.0, d, 1e-12)
	}
	{ // Distance to box: inside is zero
		box := BoundingBox{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 0}}
		assert.Equal(t, 0.0, DistanceToBox([3]float64{0.5, 0.5, 0}, box, DeadAxis{}))
	}
	{ // Distance to box: outside along one axis
		box := BoundingBox{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 0}}
		d := DistanceToBox([3]float64{2, 0.5, 0}, box, DeadAxis{})
		assert.InDelta(t, 1.0, d, 1e-12)
	}
	{ // Inflate expands active axes only
		box := BoundingBox{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 0}}
		inf := Inflate(box, 2, DeadAxis{false, false, true})
		assert.Equal(t, [3]float64{-2, -2, 0}, inf.Min)
		assert.Equal(t, [3]float64{3, 3, 0}, inf.Max)
	}
}

package mesh

import "fmt"

// DataField is a flat, per-vertex-interleaved data buffer bound to a mesh:
// Values[i*Dim+d] is component d of vertex local index i.
type DataField struct {
	Name   string
	Dim    int
	Values []float64
}

// NewDataField allocates a zeroed field sized for the given vertex count.
func NewDataField(name string, dim, numVertices int) *DataField {
	return &DataField{Name: name, Dim: dim, Values: make([]float64, dim*numVertices)}
}

// CheckSize validates the invariant values.size() = |vertices| * d.
func (f *DataField) CheckSize(numVertices int) error {
	if len(f.Values) != f.Dim*numVertices {
		return fmt.Errorf("mesh: data field %q size %d does not match %d vertices * dim %d", f.Name, len(f.Values), numVertices, f.Dim)
	}
	return nil
}

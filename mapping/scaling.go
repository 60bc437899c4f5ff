package mapping

import "github.com/notargets/rbfmap/mesh"

// scale implements the scaled-consistent post-pass: compute the input and
// output field integrals, reduce-sum them across ranks, and
// rescale the output in place by inputIntegral/outputIntegral per value
// dimension. A zero output integral is a no-op for that dimension.
func (m *Mapping) scale(in, out *mesh.DataField) error {
	localIn := fieldIntegral(m.in, in, true)
	localOut := fieldIntegral(m.out, out, false)

	globalIn, err := m.reduceSum(localIn)
	if err != nil {
		return err
	}
	globalOut, err := m.reduceSum(localOut)
	if err != nil {
		return err
	}

	for d := 0; d < out.Dim; d++ {
		if globalOut[d] == 0 {
			continue
		}
		scale := globalIn[d] / globalOut[d]
		for i := 0; i < len(m.out.Vertices); i++ {
			out.Values[i*out.Dim+d] *= scale
		}
	}
	return nil
}

func (m *Mapping) reduceSum(local []float64) ([]float64, error) {
	if m.Reducer == nil {
		return local, nil
	}
	return m.Reducer(local)
}

// fieldIntegral sums, per value dimension, edge-length-weighted (2D) or
// triangle-area-weighted (3D) averages of field over msh. When ownerOnly
// is set, an edge/triangle only contributes if all its vertices are
// rank-owned (the input-side rule); the output side is always
// unconditional.
func fieldIntegral(msh *mesh.Mesh, field *mesh.DataField, ownerOnly bool) []float64 {
	sums := make([]float64, field.Dim)
	if msh.Dimension == 2 {
		for _, e := range msh.Edges {
			v0, v1 := msh.Vertices[e.V[0]], msh.Vertices[e.V[1]]
			if ownerOnly && !(v0.Owner && v1.Owner) {
				continue
			}
			for d := 0; d < field.Dim; d++ {
				avg := (field.Values[v0.ID*field.Dim+d] + field.Values[v1.ID*field.Dim+d]) / 2
				sums[d] += e.Length * avg
			}
		}
		return sums
	}
	for _, tri := range msh.Triangles {
		v0, v1, v2 := msh.Vertices[tri.V[0]], msh.Vertices[tri.V[1]], msh.Vertices[tri.V[2]]
		if ownerOnly && !(v0.Owner && v1.Owner && v2.Owner) {
			continue
		}
		for d := 0; d < field.Dim; d++ {
			avg := (field.Values[v0.ID*field.Dim+d] + field.Values[v1.ID*field.Dim+d] + field.Values[v2.ID*field.Dim+d]) / 3
			sums[d] += tri.Area * avg
		}
	}
	return sums
}

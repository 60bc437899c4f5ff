package mapping

import (
	"github.com/notargets/rbfmap/basisfunction"
	"github.com/notargets/rbfmap/mesh"
)

// effectiveSupport returns the radius ρ used by the tagging protocol: the
// kernel's own support radius for compact kernels, an explicit
// configuration override (config.MappingConfig.SupportRadius) if given, or
// else the basis's derived effective support.
func (m *Mapping) effectiveSupport() float64 {
	if r, ok := m.basis.SupportRadius(); ok {
		return r
	}
	if m.cfg.SupportRadius > 0 {
		return m.cfg.SupportRadius
	}
	return m.basis.EffectiveSupport(basisfunction.DefaultEffectiveSupportThreshold)
}

// TagMeshFirstRound tags every local input vertex whose closed ball of
// radius ρ intersects the output mesh's bounding box.
func (m *Mapping) TagMeshFirstRound() {
	rho := m.effectiveSupport()
	box := m.out.BoundingBox()
	for _, v := range m.in.Vertices {
		if mesh.DistanceToBox(v.Coords, box, m.dead) <= rho {
			m.in.SetTag(v.ID, true)
		}
	}
}

// TagMeshSecondRound extends tagging to vertices within 2ρ of the output
// bounding box, by testing against a ρ-inflated box. Vertices already
// tagged in round 1 remain tagged.
func (m *Mapping) TagMeshSecondRound() {
	rho := m.effectiveSupport()
	inflated := mesh.Inflate(m.out.BoundingBox(), rho, m.dead)
	for _, v := range m.in.Vertices {
		if v.Tagged {
			continue
		}
		if mesh.DistanceToBox(v.Coords, inflated, m.dead) <= rho {
			m.in.SetTag(v.ID, true)
		}
	}
}

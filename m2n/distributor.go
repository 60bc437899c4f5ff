package m2n

import (
	"fmt"

	"github.com/notargets/rbfmap"
	"github.com/notargets/rbfmap/mesh"
)

// GatherScatterDistributor exchanges per-vertex data between workers and
// the primary rank, gathering into a global buffer ordered by mesh
// vertex GlobalIndex on the way in and scattering it back out on the way
// out. Grounded line-for-line on
// original_source/src/m2n/GatherScatterCommunication.cpp's send/receive.
type GatherScatterDistributor struct {
	Name string
	Ctx  RankContext
	// Mesh carries the vertex distribution (rank -> ordered global
	// indices) and global vertex count this distributor exchanges over,
	// mirroring mesh::Mesh's own getVertexDistribution()/getGlobalNumberOfVertices()
	// accessors that GatherScatterCommunication::send/receive read from
	// directly. Only the primary rank needs a complete Mesh.Distribution;
	// workers only need their own entry.
	Mesh      *mesh.Mesh
	Transport Transport

	// lastGlobal holds the gathered global buffer between a Send and its
	// matching Receive, exactly as the original implicitly threads
	// globalItemsToSend/globalItemsToReceive through the two master-side
	// communication calls.
	lastGlobal []float64
}

// Send gathers itemsToSend (this rank's local values, valueDimension per
// vertex) into the primary's global buffer. On a worker this is a single
// blocking send to rank 0; on the primary it accumulates its own local
// contribution first, then receives and accumulates every worker's
// contribution, exactly mirroring GatherScatterCommunication::send's
// "Master data" / "Slaves data" two-phase accumulate.
func (d *GatherScatterDistributor) Send(itemsToSend []float64, valueDimension int) error {
	if !d.Ctx.IsPrimary {
		if len(itemsToSend) == 0 {
			return nil
		}
		if err := d.Transport.Send(itemsToSend, 0); err != nil {
			return &rbfmap.TransportFailure{Mapping: d.Name, Detail: "send to primary failed", Err: err}
		}
		return nil
	}

	global := make([]float64, d.Mesh.GlobalCount*valueDimension)
	accumulate(global, itemsToSend, d.Mesh.Distribution[d.Ctx.Rank], valueDimension)

	for rank := 1; rank < d.Ctx.Size; rank++ {
		ids := d.Mesh.Distribution[rank]
		size := len(ids) * valueDimension
		if size == 0 {
			continue
		}
		buf := make([]float64, size)
		if err := d.Transport.Receive(buf, rank); err != nil {
			return &rbfmap.TransportFailure{Mapping: d.Name, Detail: fmt.Sprintf("receive from rank %d failed", rank), Err: err}
		}
		accumulate(global, buf, ids, valueDimension)
	}
	d.lastGlobal = global
	return nil
}

// Receive scatters the primary's global buffer (built by the most recent
// Send) back out to itemsToReceive, mirroring
// GatherScatterCommunication::receive's "Master data" / "Slaves data"
// extract-and-send phases.
func (d *GatherScatterDistributor) Receive(itemsToReceive []float64, valueDimension int) error {
	if !d.Ctx.IsPrimary {
		if len(itemsToReceive) == 0 {
			return nil
		}
		if err := d.Transport.Receive(itemsToReceive, 0); err != nil {
			return &rbfmap.TransportFailure{Mapping: d.Name, Detail: "receive from primary failed", Err: err}
		}
		return nil
	}

	global := d.lastGlobal
	if global == nil {
		return &rbfmap.PreconditionViolation{Mapping: d.Name, Detail: "Receive called before any Send produced a global buffer"}
	}
	extract(itemsToReceive, global, d.Mesh.Distribution[d.Ctx.Rank], valueDimension)

	for rank := 1; rank < d.Ctx.Size; rank++ {
		ids := d.Mesh.Distribution[rank]
		size := len(ids) * valueDimension
		if size == 0 {
			continue
		}
		buf := make([]float64, size)
		extract(buf, global, ids, valueDimension)
		if err := d.Transport.Send(buf, rank); err != nil {
			return &rbfmap.TransportFailure{Mapping: d.Name, Detail: fmt.Sprintf("send to rank %d failed", rank), Err: err}
		}
	}
	return nil
}

func accumulate(global, local []float64, ids []int, dim int) {
	for i, gid := range ids {
		for j := 0; j < dim; j++ {
			global[gid*dim+j] += local[i*dim+j]
		}
	}
}

func extract(local, global []float64, ids []int, dim int) {
	for i, gid := range ids {
		for j := 0; j < dim; j++ {
			local[i*dim+j] = global[gid*dim+j]
		}
	}
}

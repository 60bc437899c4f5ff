// Package m2n implements the distributed gather-scatter exchange that
// moves per-vertex values between the primary rank and its workers.
// RankContext is an explicit struct threaded through every call rather
// than a package-level singleton, so there is no global mutable state.
package m2n

import (
	"fmt"
	"sync"

	"github.com/notargets/rbfmap"
)

// RankContext identifies a process's place in the primary/worker group.
// Rank 0 is always the primary.
type RankContext struct {
	Rank      int
	Size      int
	IsPrimary bool
}

// NewRankContext builds a RankContext for the given rank out of size
// ranks. Rank 0 is primary.
func NewRankContext(rank, size int) RankContext {
	return RankContext{Rank: rank, Size: size, IsPrimary: rank == 0}
}

// Transport is the external collaborator the mapping core depends on for
// cross-rank communication. Send/Receive move a fixed-size
// buffer to/from one peer; AllreduceSum performs a collective sum across
// every rank, returning the same result to all callers.
type Transport interface {
	Send(buf []float64, peer int) error
	Receive(buf []float64, peer int) error
	AllreduceSum(local []float64) (global []float64, err error)
}

// allreduceState is the barrier state shared by every rank's
// ChannelTransport in a group: each rank adds its local vector to sums
// and waits until size ranks have contributed, at which point the last
// arrival publishes the completed sum to result and wakes everyone else.
type allreduceState struct {
	round  int
	count  int
	dim    int
	sums   []float64
	result []float64
	err    error
}

// ChannelTransport is an in-process Transport for single-binary testing,
// generalizing the mailbox-style post/deliver/receive pattern in
// utils/parallel_utils.go from typed mailbox messages to raw []float64
// buffers addressed by peer rank.
type ChannelTransport struct {
	name string
	self int
	mu   *sync.Mutex
	cond *sync.Cond
	// inboxes[dst] holds buffers addressed to dst, keyed by sender rank.
	inboxes []map[int][]float64
	ar      *allreduceState
}

// NewChannelGroup builds size ChannelTransport instances sharing one
// in-process mailbox set, one per rank, following NewMailBox[T]'s
// per-thread-slice-of-mailboxes construction.
func NewChannelGroup(name string, size int) []*ChannelTransport {
	mu := &sync.Mutex{}
	cond := sync.NewCond(mu)
	inboxes := make([]map[int][]float64, size)
	for i := range inboxes {
		inboxes[i] = make(map[int][]float64)
	}
	ar := &allreduceState{}
	group := make([]*ChannelTransport, size)
	for rank := 0; rank < size; rank++ {
		group[rank] = &ChannelTransport{
			name:    name,
			self:    rank,
			mu:      mu,
			cond:    cond,
			inboxes: inboxes,
			ar:      ar,
		}
	}
	return group
}

// Send posts buf into peer's inbox, keyed by this transport's rank.
func (c *ChannelTransport) Send(buf []float64, peer int) error {
	if peer < 0 || peer >= len(c.inboxes) {
		return &rbfmap.TransportFailure{Mapping: c.name, Detail: fmt.Sprintf("send: peer %d out of range", peer)}
	}
	cp := make([]float64, len(buf))
	copy(cp, buf)
	c.mu.Lock()
	c.inboxes[peer][c.self] = cp
	c.cond.Broadcast()
	c.mu.Unlock()
	return nil
}

// Receive blocks until peer has posted a buffer into this transport's
// inbox, then copies it into buf.
func (c *ChannelTransport) Receive(buf []float64, peer int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		if msg, ok := c.inboxes[c.self][peer]; ok {
			if len(msg) != len(buf) {
				return &rbfmap.TransportFailure{Mapping: c.name, Detail: fmt.Sprintf("receive: size mismatch got %d want %d", len(msg), len(buf))}
			}
			copy(buf, msg)
			delete(c.inboxes[c.self], peer)
			return nil
		}
		c.cond.Wait()
	}
}

// AllreduceSum implements a barrier-sum collective over the shared
// allreduceState: every rank's local vector is added in, the last
// arrival computes the elementwise sum and wakes the others, and every
// caller — including the last arrival — reads the same published result.
func (c *ChannelTransport) AllreduceSum(local []float64) (global []float64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ar := c.ar
	round := ar.round
	if ar.count == 0 {
		ar.dim = len(local)
		ar.sums = make([]float64, len(local))
		ar.err = nil
	} else if len(local) != ar.dim {
		ar.err = &rbfmap.TransportFailure{Mapping: c.name, Detail: "allreduce: mismatched vector length across ranks"}
	}
	if ar.err == nil {
		for i, v := range local {
			ar.sums[i] += v
		}
	}
	ar.count++

	if ar.count == len(c.inboxes) {
		ar.result = ar.sums
		ar.sums = nil
		ar.count = 0
		ar.round++
		c.cond.Broadcast()
	} else {
		for ar.round == round {
			c.cond.Wait()
		}
	}

	if ar.err != nil {
		e := ar.err
		return nil, e
	}
	out := make([]float64, len(ar.result))
	copy(out, ar.result)
	return out, nil
}

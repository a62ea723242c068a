package cluster

import (
	"sync"

	"github.com/driftbase/driftbase/ring"
)

// Static is a fixed, config-driven membership view. It never changes
// after construction.
type Static struct {
	nodes []ring.NodeID
}

var _ ring.Membership = Static{}

// NewStatic returns a Static membership over the given nodes.
func NewStatic(nodes ...ring.NodeID) Static {
	return Static{nodes: append([]ring.NodeID(nil), nodes...)}
}

func (s Static) Nodes() []ring.NodeID { return s.nodes }

// Dynamic is an in-memory membership view that can change at runtime,
// for callers and tests that simulate nodes joining or leaving.
type Dynamic struct {
	mu    sync.RWMutex
	nodes map[ring.NodeID]struct{}
}

var _ ring.Membership = (*Dynamic)(nil)

// NewDynamic returns an empty Dynamic membership view.
func NewDynamic() *Dynamic {
	return &Dynamic{nodes: map[ring.NodeID]struct{}{}}
}

// Join adds a node to the membership view. It is idempotent.
func (d *Dynamic) Join(node ring.NodeID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nodes[node] = struct{}{}
}

// Leave removes a node from the membership view.
func (d *Dynamic) Leave(node ring.NodeID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.nodes, node)
}

// Nodes implements ring.Membership.
func (d *Dynamic) Nodes() []ring.NodeID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]ring.NodeID, 0, len(d.nodes))
	for n := range d.nodes {
		out = append(out, n)
	}
	return out
}

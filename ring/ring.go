package ring

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/driftbase/driftbase/meta"
)

// NodeID identifies a cluster member eligible to hold replicas.
type NodeID string

// Membership is the oracle this package consults for the current set of
// nodes. Production gossip/failure-detection is out of scope; pkg/cluster
// provides an in-memory implementation for tests and single-process demos.
type Membership interface {
	Nodes() []NodeID
}

// View resolves replica placement over a Membership snapshot. It caches
// nothing across calls to Nodes() beyond the duration of a single Place
// call, so membership changes are picked up on the next placement.
type View struct {
	mu      sync.RWMutex
	members Membership
}

// New returns a View backed by the given Membership oracle.
func New(members Membership) *View {
	return &View{members: members}
}

type ringEntry struct {
	pos uint64
	id  NodeID
}

// Place returns up to n node IDs responsible for hash, walking the ring
// clockwise from hash's position. If fewer than n nodes are registered,
// the full membership is returned. Placement is stable for a fixed
// membership: the same hash always maps to the same ordered replica set.
func (v *View) Place(hash meta.Hash, n int) []NodeID {
	v.mu.RLock()
	defer v.mu.RUnlock()

	nodes := v.members.Nodes()
	if len(nodes) == 0 || n <= 0 {
		return nil
	}

	entries := make([]ringEntry, len(nodes))
	for i, id := range nodes {
		entries[i] = ringEntry{pos: ringPosition(id), id: id}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].pos != entries[j].pos {
			return entries[i].pos < entries[j].pos
		}
		return entries[i].id < entries[j].id
	})

	target := xxhash.Sum64(hash[:])
	start := sort.Search(len(entries), func(i int) bool { return entries[i].pos >= target })

	if n > len(entries) {
		n = len(entries)
	}
	out := make([]NodeID, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entries[(start+i)%len(entries)].id)
	}
	return out
}

func ringPosition(id NodeID) uint64 {
	return xxhash.Sum64String(string(id))
}

// Members returns every node currently known to the membership oracle,
// in no particular order. Callers that must reach every replica for a
// kind regardless of key (e.g. an unkeyed scan fan-out) use this instead
// of Place, which only resolves the replica set for one hash.
func (v *View) Members() []NodeID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.members.Nodes()
}

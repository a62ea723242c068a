package ring

import (
	"testing"

	"github.com/driftbase/driftbase/meta"
	"github.com/stretchr/testify/require"
)

type staticMembership []NodeID

func (s staticMembership) Nodes() []NodeID { return s }

func TestPlaceReturnsRequestedReplicaCount(t *testing.T) {
	v := New(staticMembership{"n1", "n2", "n3", "n4", "n5"})
	h := meta.Digest([]byte("object-a"))

	placed := v.Place(h, 3)
	require.Len(t, placed, 3)

	seen := map[NodeID]bool{}
	for _, id := range placed {
		require.False(t, seen[id], "node returned twice")
		seen[id] = true
	}
}

func TestPlaceCapsAtMembershipSize(t *testing.T) {
	v := New(staticMembership{"n1", "n2"})
	h := meta.Digest([]byte("object-b"))

	placed := v.Place(h, 5)
	require.Len(t, placed, 2)
}

func TestPlaceEmptyMembership(t *testing.T) {
	v := New(staticMembership{})
	h := meta.Digest([]byte("object-c"))

	placed := v.Place(h, 3)
	require.Nil(t, placed)
}

func TestPlaceIsStableForFixedMembership(t *testing.T) {
	v := New(staticMembership{"n1", "n2", "n3", "n4"})
	h := meta.Digest([]byte("same-key"))

	first := v.Place(h, 2)
	second := v.Place(h, 2)
	require.Equal(t, first, second)
}

func TestPlaceDistributesAcrossNodes(t *testing.T) {
	v := New(staticMembership{"n1", "n2", "n3", "n4", "n5", "n6", "n7", "n8"})

	counts := map[NodeID]int{}
	for i := 0; i < 500; i++ {
		h := meta.Digest([]byte{byte(i), byte(i >> 8)})
		for _, id := range v.Place(h, 1) {
			counts[id]++
		}
	}

	// A reasonable non-cryptographic ring hash should not collapse onto a
	// single node for 500 distinct keys across 8 members.
	require.True(t, len(counts) > 1)
}

package cluster

import (
	"sort"
	"testing"

	"github.com/driftbase/driftbase/ring"
)

func sortedNodeIDs(nodes []ring.NodeID) []ring.NodeID {
	out := append([]ring.NodeID(nil), nodes...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestStaticNodesReturnsConfiguredSet(t *testing.T) {
	s := NewStatic("n1", "n2", "n3")
	got := sortedNodeIDs(s.Nodes())
	want := []ring.NodeID{"n1", "n2", "n3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestStaticNodesEmpty(t *testing.T) {
	s := NewStatic()
	if got := s.Nodes(); len(got) != 0 {
		t.Fatalf("expected empty membership, got %v", got)
	}
}

func TestDynamicJoinLeave(t *testing.T) {
	d := NewDynamic()
	d.Join("n1")
	d.Join("n2")

	got := sortedNodeIDs(d.Nodes())
	if len(got) != 2 || got[0] != "n1" || got[1] != "n2" {
		t.Fatalf("unexpected membership after joins: %v", got)
	}

	d.Leave("n1")
	got = d.Nodes()
	if len(got) != 1 || got[0] != "n2" {
		t.Fatalf("unexpected membership after leave: %v", got)
	}
}

func TestDynamicNodesIsIdempotentOnRepeatedJoin(t *testing.T) {
	d := NewDynamic()
	d.Join("n1")
	d.Join("n1")
	d.Join("n1")

	got := d.Nodes()
	if len(got) != 1 {
		t.Fatalf("expected repeated joins to collapse to one entry, got %v", got)
	}
}

func TestDynamicLeaveUnknownNodeIsNoop(t *testing.T) {
	d := NewDynamic()
	d.Join("n1")
	d.Leave("n2")

	got := d.Nodes()
	if len(got) != 1 || got[0] != "n1" {
		t.Fatalf("unexpected membership after leaving unknown node: %v", got)
	}
}

var _ ring.Membership = Static{}
var _ ring.Membership = (*Dynamic)(nil)

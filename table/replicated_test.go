package table

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/driftbase/driftbase/ring"
	"github.com/stretchr/testify/require"
)

type fakeMembership []ring.NodeID

func (f fakeMembership) Nodes() []ring.NodeID { return f }

// fakeRow is a minimal Entity used purely to exercise ReplicatedTable
// without depending on a concrete meta type.
type fakeRow struct {
	PK    string `json:"pk"`
	SK    string `json:"sk"`
	Count int    `json:"count"`
}

func (r *fakeRow) Kind() string         { return "fake" }
func (r *fakeRow) PartitionKey() string { return r.PK }
func (r *fakeRow) SortKey() string      { return r.SK }
func (r *fakeRow) SchemaVersion() uint8 { return 1 }
func (r *fakeRow) Merge(other Entity) Entity {
	o := other.(*fakeRow)
	if o.Count > r.Count {
		return &fakeRow{PK: r.PK, SK: r.SK, Count: o.Count}
	}
	return r
}

func fakeFactory() Entity { return &fakeRow{} }

// fakeRPC is an in-memory RPCClient: each node has its own row store,
// just like independent replicas would.
type fakeRPC struct {
	mu    sync.Mutex
	nodes map[ring.NodeID]map[string]json.RawMessage
	// downNodes never acknowledge inserts or return rows.
	down map[ring.NodeID]bool
}

func newFakeRPC(nodeIDs ...ring.NodeID) *fakeRPC {
	f := &fakeRPC{nodes: map[ring.NodeID]map[string]json.RawMessage{}, down: map[ring.NodeID]bool{}}
	for _, id := range nodeIDs {
		f.nodes[id] = map[string]json.RawMessage{}
	}
	return f
}

func (f *fakeRPC) Insert(ctx context.Context, node ring.NodeID, kind string, row json.RawMessage) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down[node] {
		return false, nil
	}
	var r fakeRow
	if err := json.Unmarshal(row, &r); err != nil {
		return false, err
	}
	key := r.PK + "/" + r.SK
	if existing, ok := f.nodes[node][key]; ok {
		var e fakeRow
		_ = json.Unmarshal(existing, &e)
		merged := (&e).Merge(&r).(*fakeRow)
		b, _ := json.Marshal(merged)
		f.nodes[node][key] = b
	} else {
		f.nodes[node][key] = append(json.RawMessage(nil), row...)
	}
	return true, nil
}

func (f *fakeRPC) Get(ctx context.Context, node ring.NodeID, kind, pk, sk string) (json.RawMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down[node] {
		return nil, false, nil
	}
	row, ok := f.nodes[node][pk+"/"+sk]
	return row, ok, nil
}

func (f *fakeRPC) Scan(ctx context.Context, node ring.NodeID, kind string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down[node] {
		return nil, nil
	}
	var out []json.RawMessage
	for _, row := range f.nodes[node] {
		out = append(out, row)
	}
	return out, nil
}

func TestReplicatedTableInsertThenGetRoundTrips(t *testing.T) {
	members := fakeMembership{"n1", "n2", "n3"}
	rpc := newFakeRPC(members...)
	view := ring.New(members)
	tbl := NewReplicated("fake", fakeFactory, view, rpc, 3, time.Second)

	require.NoError(t, tbl.Insert(context.Background(), &fakeRow{PK: "a", SK: "1", Count: 1}))

	got, found, err := tbl.Get(context.Background(), "a", "1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, got.(*fakeRow).Count)
}

func TestReplicatedTableInsertFailsBelowQuorum(t *testing.T) {
	members := fakeMembership{"n1", "n2", "n3"}
	rpc := newFakeRPC(members...)
	rpc.down["n1"] = true
	rpc.down["n2"] = true
	view := ring.New(members)
	tbl := NewReplicated("fake", fakeFactory, view, rpc, 3, time.Second)

	err := tbl.Insert(context.Background(), &fakeRow{PK: "a", SK: "1", Count: 1})
	require.Error(t, err)
}

func TestReplicatedTableGetMergesAcrossReplicas(t *testing.T) {
	members := fakeMembership{"n1", "n2", "n3"}
	rpc := newFakeRPC(members...)
	view := ring.New(members)
	tbl := NewReplicated("fake", fakeFactory, view, rpc, 3, time.Second)

	// Simulate a stale replica that only saw an earlier, lower count.
	b1, _ := json.Marshal(&fakeRow{PK: "a", SK: "1", Count: 5})
	b2, _ := json.Marshal(&fakeRow{PK: "a", SK: "1", Count: 9})
	rpc.nodes["n1"]["a/1"] = b1
	rpc.nodes["n2"]["a/1"] = b2
	rpc.nodes["n3"]["a/1"] = b1

	got, found, err := tbl.Get(context.Background(), "a", "1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 9, got.(*fakeRow).Count)
}

func TestReplicatedTableGetNotFound(t *testing.T) {
	members := fakeMembership{"n1", "n2", "n3"}
	rpc := newFakeRPC(members...)
	view := ring.New(members)
	tbl := NewReplicated("fake", fakeFactory, view, rpc, 3, time.Second)

	_, found, err := tbl.Get(context.Background(), "missing", "1")
	require.NoError(t, err)
	require.False(t, found)
}

func TestReplicatedTableScanMergesDuplicateKeys(t *testing.T) {
	members := fakeMembership{"n1", "n2"}
	rpc := newFakeRPC(members...)
	view := ring.New(members)
	tbl := NewReplicated("fake", fakeFactory, view, rpc, 2, time.Second)

	b1, _ := json.Marshal(&fakeRow{PK: "a", SK: "1", Count: 1})
	b2, _ := json.Marshal(&fakeRow{PK: "a", SK: "1", Count: 7})
	rpc.nodes["n1"]["a/1"] = b1
	rpc.nodes["n2"]["a/1"] = b2

	rows, err := tbl.Scan(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 7, rows[0].(*fakeRow).Count)
}

func TestReplicatedTableScanAppliesPredicate(t *testing.T) {
	members := fakeMembership{"n1"}
	rpc := newFakeRPC(members...)
	view := ring.New(members)
	tbl := NewReplicated("fake", fakeFactory, view, rpc, 1, time.Second)

	b1, _ := json.Marshal(&fakeRow{PK: "a", SK: "1", Count: 1})
	b2, _ := json.Marshal(&fakeRow{PK: "b", SK: "1", Count: 2})
	rpc.nodes["n1"]["a/1"] = b1
	rpc.nodes["n1"]["b/1"] = b2

	rows, err := tbl.Scan(context.Background(), func(e Entity) bool {
		return e.(*fakeRow).Count > 1
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "b", rows[0].(*fakeRow).PK)
}

package blockrpc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/driftbase/driftbase/meta"
	"github.com/driftbase/driftbase/ring"
	"github.com/stretchr/testify/require"
)

type fakeMembership []ring.NodeID

func (f fakeMembership) Nodes() []ring.NodeID { return f }

type nodeBehavior int

const (
	behaviorOK nodeBehavior = iota
	behaviorDown
	behaviorCorrupt
	behaviorSlow
)

type fakeBlockRPC struct {
	mu        sync.Mutex
	behaviors map[ring.NodeID]nodeBehavior
	stored    map[ring.NodeID]map[meta.Hash][]byte
}

func newFakeBlockRPC(nodes ...ring.NodeID) *fakeBlockRPC {
	f := &fakeBlockRPC{
		behaviors: map[ring.NodeID]nodeBehavior{},
		stored:    map[ring.NodeID]map[meta.Hash][]byte{},
	}
	for _, n := range nodes {
		f.stored[n] = map[meta.Hash][]byte{}
	}
	return f
}

func (f *fakeBlockRPC) PutBlock(ctx context.Context, node ring.NodeID, hash meta.Hash, data []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.behaviors[node] {
	case behaviorDown:
		return false, errors.New("node unreachable")
	default:
		f.stored[node][hash] = append([]byte(nil), data...)
		return true, nil
	}
}

func (f *fakeBlockRPC) GetBlock(ctx context.Context, node ring.NodeID, hash meta.Hash) ([]byte, bool, error) {
	f.mu.Lock()
	behavior := f.behaviors[node]
	data, ok := f.stored[node][hash]
	f.mu.Unlock()

	switch behavior {
	case behaviorDown:
		return nil, false, errors.New("node unreachable")
	case behaviorCorrupt:
		return []byte("corrupted payload"), true, nil
	case behaviorSlow:
		select {
		case <-time.After(time.Hour):
		case <-ctx.Done():
		}
		return nil, false, ctx.Err()
	default:
		return data, ok, nil
	}
}

func TestClientPutThenGetRoundTrips(t *testing.T) {
	nodes := fakeMembership{"n1", "n2", "n3"}
	rpc := newFakeBlockRPC(nodes...)
	c := NewClient(ring.New(nodes), rpc, 3, time.Second)

	data := []byte("payload")
	hash := meta.Digest(data)
	require.NoError(t, c.PutBlock(context.Background(), hash, data))

	got, err := c.GetBlock(context.Background(), hash)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestClientPutFailsBelowQuorum(t *testing.T) {
	nodes := fakeMembership{"n1", "n2", "n3"}
	rpc := newFakeBlockRPC(nodes...)
	rpc.behaviors["n1"] = behaviorDown
	rpc.behaviors["n2"] = behaviorDown
	c := NewClient(ring.New(nodes), rpc, 3, time.Second)

	data := []byte("payload")
	err := c.PutBlock(context.Background(), meta.Digest(data), data)
	require.Error(t, err)
}

func TestClientGetAcceptsFirstValidReplyAndIgnoresCorruption(t *testing.T) {
	nodes := fakeMembership{"n1", "n2", "n3"}
	rpc := newFakeBlockRPC(nodes...)
	data := []byte("payload")
	hash := meta.Digest(data)

	// n1 is corrupted, n2 is down, only n3 holds a valid copy.
	rpc.behaviors["n1"] = behaviorCorrupt
	rpc.behaviors["n2"] = behaviorDown
	rpc.stored["n1"][hash] = []byte("garbage")
	rpc.stored["n3"][hash] = data

	c := NewClient(ring.New(nodes), rpc, 3, time.Second)
	got, err := c.GetBlock(context.Background(), hash)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestClientGetFailsWithNoValidBlock(t *testing.T) {
	nodes := fakeMembership{"n1", "n2"}
	rpc := newFakeBlockRPC(nodes...)
	rpc.behaviors["n1"] = behaviorDown
	rpc.behaviors["n2"] = behaviorDown
	c := NewClient(ring.New(nodes), rpc, 2, 50*time.Millisecond)

	_, err := c.GetBlock(context.Background(), meta.Digest([]byte("absent")))
	require.ErrorIs(t, err, ErrNoValidBlock)
}

func TestClientGetTimesOutAgainstSlowReplicas(t *testing.T) {
	nodes := fakeMembership{"n1"}
	rpc := newFakeBlockRPC(nodes...)
	rpc.behaviors["n1"] = behaviorSlow
	c := NewClient(ring.New(nodes), rpc, 1, 20*time.Millisecond)

	_, err := c.GetBlock(context.Background(), meta.Digest([]byte("x")))
	require.ErrorIs(t, err, ErrNoValidBlock)
}

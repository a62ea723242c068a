package blockrpc

import (
	"context"
	"testing"

	"github.com/driftbase/driftbase/meta"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	data map[meta.Hash][]byte
}

func newMemStore() *memStore { return &memStore{data: map[meta.Hash][]byte{}} }

func (m *memStore) Put(ctx context.Context, hash meta.Hash, data []byte) error {
	m.data[hash] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Get(ctx context.Context, hash meta.Hash) ([]byte, bool, error) {
	d, ok := m.data[hash]
	return d, ok, nil
}

func TestServerPutBlockStoresOnMatchingDigest(t *testing.T) {
	store := newMemStore()
	s := NewServer(store)
	data := []byte("hello world")
	hash := meta.Digest(data)

	ok, err := s.PutBlock(context.Background(), hash, data)
	require.NoError(t, err)
	require.True(t, ok)

	got, found, err := s.GetBlock(context.Background(), hash)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, data, got)
}

func TestServerPutBlockRejectsMismatchedDigest(t *testing.T) {
	store := newMemStore()
	s := NewServer(store)
	data := []byte("hello world")
	wrongHash := meta.Digest([]byte("something else"))

	ok, err := s.PutBlock(context.Background(), wrongHash, data)
	require.Error(t, err)
	require.False(t, ok)

	_, found, err := s.GetBlock(context.Background(), wrongHash)
	require.NoError(t, err)
	require.False(t, found)
}

func TestServerGetBlockMissing(t *testing.T) {
	s := NewServer(newMemStore())
	_, found, err := s.GetBlock(context.Background(), meta.Digest([]byte("x")))
	require.NoError(t, err)
	require.False(t, found)
}

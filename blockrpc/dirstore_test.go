package blockrpc

import (
	"context"
	"testing"

	"github.com/driftbase/driftbase/meta"
	"github.com/stretchr/testify/require"
)

func TestDirBlockStorePutThenGet(t *testing.T) {
	s, err := NewDirBlockStore(t.TempDir())
	require.NoError(t, err)

	data := []byte("block data")
	hash := meta.Digest(data)
	require.NoError(t, s.Put(context.Background(), hash, data))

	got, found, err := s.Get(context.Background(), hash)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, data, got)
}

func TestDirBlockStoreGetMissing(t *testing.T) {
	s, err := NewDirBlockStore(t.TempDir())
	require.NoError(t, err)

	_, found, err := s.Get(context.Background(), meta.Digest([]byte("absent")))
	require.NoError(t, err)
	require.False(t, found)
}

func TestDirBlockStoreShardsByHashPrefix(t *testing.T) {
	s, err := NewDirBlockStore(t.TempDir())
	require.NoError(t, err)

	data := []byte("sharded block")
	hash := meta.Digest(data)
	require.NoError(t, s.Put(context.Background(), hash, data))

	p := s.path(hash)
	require.Contains(t, p, hash.String()[:2])
}

package blockrpc

import (
	"context"
	"fmt"

	"github.com/driftbase/driftbase/meta"
	"github.com/driftbase/driftbase/pkg/log"
	"github.com/rs/zerolog"
)

// Server is the per-node RPC handler block requests are dispatched to
// (via internal/rpcjson's gRPC service registration). It owns the local
// BlockStore and is the only place digest verification happens on the
// write path.
type Server struct {
	store  BlockStore
	logger zerolog.Logger
}

// NewServer returns a Server backed by store.
func NewServer(store BlockStore) *Server {
	return &Server{store: store, logger: log.WithComponent("blockrpc.server")}
}

// PutBlock verifies data digests to hash before storing it. A mismatch
// is rejected, not silently dropped, so the client sees the failed
// acknowledgment and can still reach quorum via other replicas.
func (s *Server) PutBlock(ctx context.Context, hash meta.Hash, data []byte) (bool, error) {
	if got := meta.Digest(data); got != hash {
		s.logger.Warn().Str("want", hash.String()).Str("got", got.String()).Msg("rejecting block with mismatched digest")
		return false, fmt.Errorf("blockrpc: digest mismatch: want %s, got %s", hash, got)
	}
	if err := s.store.Put(ctx, hash, data); err != nil {
		return false, fmt.Errorf("blockrpc: storing block: %w", err)
	}
	return true, nil
}

// GetBlock returns the block stored locally under hash, if any.
func (s *Server) GetBlock(ctx context.Context, hash meta.Hash) ([]byte, bool, error) {
	return s.store.Get(ctx, hash)
}

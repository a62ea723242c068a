package blockrpc

import (
	"context"

	"github.com/driftbase/driftbase/meta"
)

// BlockStore is the local durability interface a node's RPC handler
// writes through and reads from. Production implementations of the
// storage engine itself (compaction, checksumming at rest, etc.) are
// out of scope here; this package only needs put/get by hash.
type BlockStore interface {
	Put(ctx context.Context, hash meta.Hash, data []byte) error
	Get(ctx context.Context, hash meta.Hash) (data []byte, found bool, err error)
}

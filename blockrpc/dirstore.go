package blockrpc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/driftbase/driftbase/meta"
)

// DirBlockStore is a BlockStore backed by a sharded directory layout:
// <base>/<hash[0:2]>/<hash>. Sharding on the first byte of the hash
// keeps any single directory from accumulating millions of entries on
// filesystems where that hurts lookup performance.
type DirBlockStore struct {
	base string
}

var _ BlockStore = (*DirBlockStore)(nil)

// NewDirBlockStore returns a DirBlockStore rooted at base, creating it
// if necessary.
func NewDirBlockStore(base string) (*DirBlockStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("blockrpc: creating block store root %q: %w", base, err)
	}
	return &DirBlockStore{base: base}, nil
}

func (s *DirBlockStore) path(hash meta.Hash) string {
	hex := hash.String()
	return filepath.Join(s.base, hex[:2], hex)
}

func (s *DirBlockStore) Put(ctx context.Context, hash meta.Hash, data []byte) error {
	p := s.path(hash)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("blockrpc: creating shard directory: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("blockrpc: writing block: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("blockrpc: finalizing block write: %w", err)
	}
	return nil
}

func (s *DirBlockStore) Get(ctx context.Context, hash meta.Hash) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("blockrpc: reading block: %w", err)
	}
	return data, true, nil
}

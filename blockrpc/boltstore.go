package blockrpc

import (
	"context"
	"fmt"

	"github.com/driftbase/driftbase/meta"
	bolt "go.etcd.io/bbolt"
)

var blocksBucket = []byte("blocks")

// BoltBlockStore is a BlockStore backed by a single bbolt bucket, keyed
// by the raw hash bytes. It is the reference BlockStore for
// single-process demos and tests; a production deployment may prefer
// DirBlockStore or a purpose-built object store instead.
type BoltBlockStore struct {
	db *bolt.DB
}

var _ BlockStore = (*BoltBlockStore)(nil)

// NewBoltBlockStore opens (creating if necessary) the blocks bucket on
// an already-open bbolt database.
func NewBoltBlockStore(db *bolt.DB) (*BoltBlockStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blocksBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("blockrpc: creating blocks bucket: %w", err)
	}
	return &BoltBlockStore{db: db}, nil
}

func (s *BoltBlockStore) Put(ctx context.Context, hash meta.Hash, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blocksBucket).Put(hash[:], data)
	})
}

func (s *BoltBlockStore) Get(ctx context.Context, hash meta.Hash) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(blocksBucket).Get(hash[:])
		if data == nil {
			return nil
		}
		out = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

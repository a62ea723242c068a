package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/driftbase/driftbase/pkg/log"
	"github.com/driftbase/driftbase/table"
	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"
)

// Factory returns a zero-value Entity of the kind a Store holds, used
// both to discover the current schema version and to decode stored
// rows back into their concrete type. The bucket name is the kind
// passed to Open.
type Factory func() table.Entity

// Migrator lifts a row encoded under an older schema version into the
// entity's current in-memory representation. It is consulted only when
// the stored tag byte does not match factory().SchemaVersion().
type Migrator func(schemaVersion uint8, body []byte) (table.Entity, error)

// Store is a bbolt-backed local replica for a single entity kind.
type Store struct {
	db      *bolt.DB
	kind    string
	bucket  []byte
	factory Factory
	migrate Migrator
	logger  zerolog.Logger
}

var _ table.Table = (*Store)(nil)

// NewEntity returns a zero-value Entity of this Store's kind, used by
// callers (such as the RPC server) that need to decode a raw row
// without reaching into the Store's internals.
func (s *Store) NewEntity() table.Entity {
	return s.factory()
}

// Open returns a Store for kind, creating its bucket if necessary.
// migrate may be nil if the kind has never changed schema.
func Open(db *bolt.DB, kind string, factory Factory, migrate Migrator) (*Store, error) {
	bucket := []byte(kind)
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: creating bucket %q: %w", kind, err)
	}
	return &Store{
		db:      db,
		kind:    kind,
		bucket:  bucket,
		factory: factory,
		migrate: migrate,
		logger:  log.WithComponent("boltstore." + kind),
	}, nil
}

func rowKey(pk, sk string) []byte {
	return []byte(pk + "/" + sk)
}

func (s *Store) encode(e table.Entity) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, e.SchemaVersion())
	out = append(out, body...)
	return out, nil
}

func (s *Store) decode(data []byte) (table.Entity, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("boltstore: row too short to carry a schema tag")
	}
	tag, body := data[0], data[1:]

	current := s.factory()
	if tag == current.SchemaVersion() {
		if err := json.Unmarshal(body, current); err != nil {
			return nil, fmt.Errorf("boltstore: decoding %s row: %w", s.kind, err)
		}
		return current, nil
	}

	if s.migrate == nil {
		return nil, fmt.Errorf("boltstore: %s row has schema tag %d, no migrator registered", s.kind, tag)
	}
	migrated, err := s.migrate(tag, body)
	if err != nil {
		return nil, fmt.Errorf("boltstore: migrating %s row from schema %d: %w", s.kind, tag, err)
	}
	return migrated, nil
}

// Insert CRDT-merges e into any existing row under the same key.
func (s *Store) Insert(ctx context.Context, e table.Entity) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		key := rowKey(e.PartitionKey(), e.SortKey())

		merged := e
		if existing := b.Get(key); existing != nil {
			decoded, err := s.decode(existing)
			if err != nil {
				return err
			}
			merged = decoded.Merge(e)
		}

		encoded, err := s.encode(merged)
		if err != nil {
			return err
		}
		return b.Put(key, encoded)
	})
}

// Get looks up a single row by partition/sort key.
func (s *Store) Get(ctx context.Context, pk, sk string) (table.Entity, bool, error) {
	var result table.Entity
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		data := b.Get(rowKey(pk, sk))
		if data == nil {
			return nil
		}
		decoded, err := s.decode(data)
		if err != nil {
			return err
		}
		result, found = decoded, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, found, nil
}

// Scan returns every row in this kind's bucket satisfying pred, with no
// ordering guarantee.
func (s *Store) Scan(ctx context.Context, pred table.Predicate) ([]table.Entity, error) {
	var out []table.Entity
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		return b.ForEach(func(k, v []byte) error {
			e, err := s.decode(v)
			if err != nil {
				s.logger.Warn().Err(err).Str("key", string(k)).Msg("skipping undecodable row")
				return nil
			}
			if pred == nil || pred(e) {
				out = append(out, e)
			}
			return nil
		})
	})
	return out, err
}

package meta

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"

	"github.com/driftbase/driftbase/crdt"
	"github.com/driftbase/driftbase/table"
)

// keyIDPrefix marks every generated access key ID.
const keyIDPrefix = "GK"

// BucketGrant is the value type of Key.AuthorizedBuckets. It implements
// crdt.Mergeable so LWWMap can recurse into it on a timestamp tie.
// Grants only ever widen under merge: once either replica has observed
// a read or write grant, every replica converges to having it too.
type BucketGrant struct {
	AllowRead  bool `json:"allow_read"`
	AllowWrite bool `json:"allow_write"`
}

// Merge implements crdt.Mergeable[BucketGrant].
func (g BucketGrant) Merge(other BucketGrant) BucketGrant {
	return BucketGrant{
		AllowRead:  g.AllowRead || other.AllowRead,
		AllowWrite: g.AllowWrite || other.AllowWrite,
	}
}

// Key is an S3 access key: partition key "", sort key KeyID.
type Key struct {
	KeyID     string `json:"key_id"`
	SecretKey string `json:"secret_key"`

	Name              crdt.LWWRegister[string]        `json:"name"`
	Deleted           crdt.MonotoneBool               `json:"deleted"`
	AuthorizedBuckets crdt.LWWMap[string, BucketGrant] `json:"authorized_buckets"`
}

var _ table.Entity = (*Key)(nil)

// Kind implements table.Entity.
func (k *Key) Kind() string { return "key" }

// PartitionKey implements table.Entity.
func (k *Key) PartitionKey() string { return "" }

// SortKey implements table.Entity.
func (k *Key) SortKey() string { return k.KeyID }

// SchemaVersion implements table.Entity.
func (k *Key) SchemaVersion() uint8 { return 1 }

// Merge implements table.Entity. KeyID/SecretKey are immutable and
// must already agree between replicas (they are set once at key
// generation and never updated). Deleted is monotone OR; per
// Invariant 4, once Deleted is true on either side the merged result's
// AuthorizedBuckets is forced empty; deletion dominance must hold
// however many more merges happen afterward, so it is re-applied on
// every merge rather than only at the moment Deleted first flips.
func (k *Key) Merge(otherEntity table.Entity) table.Entity {
	other, ok := otherEntity.(*Key)
	if !ok {
		return k
	}

	name := k.Name
	name.Merge(other.Name)

	deleted := k.Deleted
	deleted.Merge(other.Deleted)

	grants := k.AuthorizedBuckets
	grants.Merge(other.AuthorizedBuckets)
	if deleted.Value() {
		grants.Clear()
	}

	return &Key{
		KeyID:             k.KeyID,
		SecretKey:         k.SecretKey,
		Name:              name,
		Deleted:           deleted,
		AuthorizedBuckets: grants,
	}
}

// NewKey generates a fresh access key pair: a ~100-bit random KeyID
// prefixed GK, and a ~256-bit random SecretKey.
func NewKey(name string) (*Key, error) {
	idBytes := make([]byte, 13) // 104 bits of entropy
	if _, err := rand.Read(idBytes); err != nil {
		return nil, fmt.Errorf("meta: generate key id: %w", err)
	}
	secretBytes := make([]byte, 32) // 256 bits
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("meta: generate secret key: %w", err)
	}

	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	k := &Key{
		KeyID:     keyIDPrefix + enc.EncodeToString(idBytes),
		SecretKey: enc.EncodeToString(secretBytes),
	}
	k.Name = crdt.NewLWWRegister(name)
	return k, nil
}

package meta

import (
	"sort"

	"github.com/driftbase/driftbase/crdt"
	"github.com/driftbase/driftbase/table"
	"github.com/google/uuid"
)

// BlockRef is one link in a Version's block chain.
type BlockRef struct {
	Offset int64 `json:"offset"`
	Hash   Hash  `json:"hash"`
}

// Version is the block-chain row: partition key UUID, sort key "".
// Bucket/Key are denormalized so the row can be used to recover an
// Object row if it is ever lost.
type Version struct {
	UUID    uuid.UUID         `json:"version"`
	Bucket  string            `json:"bucket"`
	Key     string            `json:"key"`
	Deleted crdt.MonotoneBool `json:"deleted"`
	Blocks  []BlockRef        `json:"blocks"`
}

var _ table.Entity = (*Version)(nil)

// Kind implements table.Entity.
func (v *Version) Kind() string { return "version" }

// PartitionKey implements table.Entity.
func (v *Version) PartitionKey() string { return v.UUID.String() }

// SortKey implements table.Entity.
func (v *Version) SortKey() string { return "" }

// SchemaVersion implements table.Entity.
func (v *Version) SchemaVersion() uint8 { return 1 }

// Merge implements table.Entity: Blocks merges as a set union over
// (Offset, Hash), re-sorted by Offset (Invariant 2: the chain is
// strictly increasing by offset); Deleted is monotone OR.
func (v *Version) Merge(otherEntity table.Entity) table.Entity {
	other, ok := otherEntity.(*Version)
	if !ok {
		return v
	}

	deleted := v.Deleted
	deleted.Merge(other.Deleted)

	seen := make(map[BlockRef]bool, len(v.Blocks)+len(other.Blocks))
	merged := make([]BlockRef, 0, len(v.Blocks)+len(other.Blocks))
	for _, b := range v.Blocks {
		if !seen[b] {
			seen[b] = true
			merged = append(merged, b)
		}
	}
	for _, b := range other.Blocks {
		if !seen[b] {
			seen[b] = true
			merged = append(merged, b)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Offset < merged[j].Offset })

	return &Version{
		UUID:    v.UUID,
		Bucket:  v.Bucket,
		Key:     v.Key,
		Deleted: deleted,
		Blocks:  merged,
	}
}

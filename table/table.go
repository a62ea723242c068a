package table

import "context"

// Table is the replicated key-value contract every caller programs
// against: insert, point get, and predicate scan over (partition_key,
// sort_key) -> Entity. ReplicatedTable implements it over the cluster;
// table/boltstore.Store implements it for a single local replica.
type Table interface {
	Insert(ctx context.Context, e Entity) error
	Get(ctx context.Context, pk, sk string) (Entity, bool, error)
	Scan(ctx context.Context, pred Predicate) ([]Entity, error)
}

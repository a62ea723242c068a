package table

// Entity is the capability set every replicated row type exports:
// identity (Kind, PartitionKey, SortKey), commutative/idempotent Merge,
// and a schema tag used to drive migration on decode. The replicated
// table is parameterized over this capability set rather than over a
// class hierarchy of concrete row types, so adding a new entity kind
// never touches Table or ReplicatedTable.
type Entity interface {
	// Kind names the entity type, e.g. "object", "version", "key". It
	// doubles as the local storage bucket name (table/boltstore) and
	// the RPC row kind tag (internal/rpcjson table messages).
	Kind() string

	// PartitionKey and SortKey identify the row within its Kind.
	PartitionKey() string
	SortKey() string

	// SchemaVersion is encoded as a leading tag byte ahead of the
	// row's serialized body, so a future schema change can add a new
	// tag and still decode rows written under an older one via a
	// boltstore.Migrator.
	SchemaVersion() uint8

	// Merge folds other (same Kind and key) into the receiver's state
	// and returns the merged result. Merge must be commutative and
	// idempotent: Merge(a, b) == Merge(b, a) and Merge(a, a) == a.
	Merge(other Entity) Entity
}

// Predicate is the capability a filter scan is parameterized over
// (spec's "matches_filter"): it is evaluated against a fully decoded
// Entity, so no entity-specific filtering code lives in Table itself.
type Predicate func(Entity) bool

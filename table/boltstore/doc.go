/*
Package boltstore is the local, single-node row store backing one
replica of a replicated table: one bbolt bucket per entity kind, keyed
by "partition_key/sort_key", values JSON-encoded behind a leading
schema-version tag byte so a later schema change can still decode rows
written under an older one.

Insert is idempotent: it CRDT-merges the incoming entity into any
existing row under the same key rather than overwriting it, matching
the semantics a ReplicatedTable relies on when it fans an insert out to
every replica.
*/
package boltstore

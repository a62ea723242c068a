/*
Package meta defines driftbase's replicated metadata entities: Object,
Version, and Key. Each entity declares a (PartitionKey, SortKey) pair
and a total Merge built from the crdt package's primitives, so that
inserting the same logical row at two replicas, in either order or any
number of times, converges to the same value.

# Entities

Object (partition key Bucket, sort key Key) holds the ordered set of
ObjectVersion written to a given bucket/key pair. Multiple versions can
coexist while concurrent PUTs are in flight; Merge takes the union of
versions by UUID and merges overlapping versions field by field.

Version (partition key UUID, sort key "") is the append-only block
chain for one object version, plus a deletion flag. Blocks merge as a
set union over (Offset, Hash), re-sorted by Offset.

Key (partition key "", sort key KeyID) is an S3 access key: an
immutable identity pair (KeyID, SecretKey) plus CRDT-merged mutable
fields (Name and AuthorizedBuckets last-writer-wins, Deleted monotone OR). Deleting a Key forces its
AuthorizedBuckets to the empty map on every subsequent merge.
*/
package meta

/*
Package blockrpc implements replicated, content-addressed block storage:
PutBlock durably writes a block to its placement set and succeeds once a
majority of replicas acknowledge; GetBlock fans a read out to the same
placement set and accepts the first reply whose payload digests to the
requested hash, discarding the rest.

Content addressing is what makes GetBlock cheaper than a quorum read:
any single correct replica is sufficient, since the client itself
verifies the digest rather than trusting the replica's word for it.

BlockStore is the injected local durability interface; this package
ships two reference implementations (bbolt-backed and a sharded
directory layout) for single-process demos and tests, selected by
configuration rather than hardwired into the RPC handler.
*/
package blockrpc

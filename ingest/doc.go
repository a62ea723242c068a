/*
Package ingest implements the PUT pipeline: chunking a request body,
writing an inline or block-chained object version, and finalizing it
once every block and version-row write has converged.

Pipeline.Put follows the stub-then-finalize shape: a reader arriving
mid-upload must only ever observe complete versions or none at all, so
the Object row is written twice, once with IsComplete false pinning the
version's uuid and block-chain root, and once at the end flipping
IsComplete true. The per-chunk body write pipelines three operations
(the previous chunk's block RPC, its version-row upsert, and the next
chunk's read) joined with plain channels rather than
golang.org/x/sync/errgroup, keeping the join point auditable without
adding a dependency for it.
*/
package ingest

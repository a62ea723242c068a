/*
Package crdt implements the three state-based CRDT shapes that back
driftbase's replicated metadata: a last-writer-wins register, a
monotone (OR) boolean, and a last-writer-wins map. Every type in this
package exposes a single Merge operation that is commutative,
associative, and idempotent, so replicas converge regardless of the
order or number of times updates are exchanged between them.

# Clock

update on LWWRegister and LWWMap advances a logical timestamp with
max(ts+1, wallClockMS()), guaranteeing a strictly monotone advance on a
single node even when the wall clock stalls between two updates. This
can still race backward across a process restart on a node whose clock
reads earlier than its last issued timestamp; a production deployment
should persist the last-issued timestamp or move to a hybrid logical
clock. Driftbase does not do either today (see DESIGN.md).
*/
package crdt

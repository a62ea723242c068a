package table

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/driftbase/driftbase/meta"
	"github.com/driftbase/driftbase/pkg/log"
	"github.com/driftbase/driftbase/pkg/metrics"
	"github.com/driftbase/driftbase/ring"
	"github.com/rs/zerolog"
)

// Factory produces a zero-value Entity of a single kind, used to decode
// rows received over RPC back into their concrete type.
type Factory func() Entity

// ReplicatedTable fans inserts and reads out to the replica set a
// ring.View resolves for a row's partition key, and reconciles the
// result client-side: insert succeeds once a quorum of replicas
// acknowledge, get merges every row a replica returned.
type ReplicatedTable struct {
	kind              string
	factory           Factory
	view              *ring.View
	rpc               RPCClient
	replicationFactor int
	rpcTimeout        time.Duration
	logger            zerolog.Logger
}

// NewReplicated returns a ReplicatedTable for a single entity kind.
func NewReplicated(kind string, factory Factory, view *ring.View, rpc RPCClient, replicationFactor int, rpcTimeout time.Duration) *ReplicatedTable {
	return &ReplicatedTable{
		kind:              kind,
		factory:           factory,
		view:              view,
		rpc:               rpc,
		replicationFactor: replicationFactor,
		rpcTimeout:        rpcTimeout,
		logger:            log.WithComponent("table." + kind),
	}
}

var _ Table = (*ReplicatedTable)(nil)

// quorum is the minimum number of acknowledgments ⌈(R+1)/2⌉ an insert
// needs before it is reported successful.
func quorum(replicationFactor int) int {
	return (replicationFactor + 2) / 2
}

func (t *ReplicatedTable) placements(e Entity) []ring.NodeID {
	return t.view.Place(meta.Digest([]byte(e.PartitionKey())), t.replicationFactor)
}

// Insert routes e to its replica set and requires quorum acknowledgment
// within rpcTimeout. Each replica CRDT-merges e into its existing row,
// so retried or duplicate inserts are safe.
func (t *ReplicatedTable) Insert(ctx context.Context, e Entity) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.TableInsertDuration, t.kind)

	replicas := t.placements(e)
	if len(replicas) == 0 {
		return fmt.Errorf("table: no replicas available for kind %q", t.kind)
	}

	row, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("table: encoding row: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.rpcTimeout)
	defer cancel()

	type ack struct {
		ok  bool
		err error
	}
	results := make(chan ack, len(replicas))
	for _, node := range replicas {
		node := node
		go func() {
			ok, err := t.rpc.Insert(ctx, node, t.kind, row)
			if err != nil {
				t.logger.Warn().Err(err).Str("node", string(node)).Msg("insert RPC failed")
			}
			results <- ack{ok: ok, err: err}
		}()
	}

	acked := 0
	for i := 0; i < len(replicas); i++ {
		r := <-results
		if r.err == nil && r.ok {
			acked++
		}
	}

	need := quorum(t.replicationFactor)
	if acked < need {
		metrics.TableQuorumFailuresTotal.WithLabelValues(t.kind).Inc()
		return fmt.Errorf("table: insert quorum not reached (%d/%d acks, need %d)", acked, len(replicas), need)
	}
	return nil
}

// Get queries every replica in the placement set and merges every row
// returned, so a partial or stale read from any single replica cannot
// regress an observed field.
func (t *ReplicatedTable) Get(ctx context.Context, pk, sk string) (Entity, bool, error) {
	replicas := t.view.Place(meta.Digest([]byte(pk)), t.replicationFactor)
	if len(replicas) == 0 {
		return nil, false, fmt.Errorf("table: no replicas available for kind %q", t.kind)
	}

	ctx, cancel := context.WithTimeout(ctx, t.rpcTimeout)
	defer cancel()

	type reply struct {
		row   json.RawMessage
		found bool
		err   error
	}
	results := make(chan reply, len(replicas))
	for _, node := range replicas {
		node := node
		go func() {
			row, found, err := t.rpc.Get(ctx, node, t.kind, pk, sk)
			if err != nil {
				t.logger.Warn().Err(err).Str("node", string(node)).Msg("get RPC failed")
			}
			results <- reply{row: row, found: found, err: err}
		}()
	}

	var merged Entity
	for i := 0; i < len(replicas); i++ {
		r := <-results
		if r.err != nil || !r.found {
			continue
		}
		e := t.factory()
		if err := json.Unmarshal(r.row, e); err != nil {
			t.logger.Warn().Err(err).Msg("decoding replica row")
			continue
		}
		if merged == nil {
			merged = e
		} else {
			merged = merged.Merge(e)
		}
	}

	if merged == nil {
		return nil, false, nil
	}
	return merged, true, nil
}

// Scan queries every replica in the current membership (there is no
// single placement set for an unkeyed scan) and merges rows sharing a
// partition/sort key before applying pred.
func (t *ReplicatedTable) Scan(ctx context.Context, pred Predicate) ([]Entity, error) {
	replicas := t.view.Members()
	if len(replicas) == 0 {
		return nil, fmt.Errorf("table: no replicas available for kind %q", t.kind)
	}

	ctx, cancel := context.WithTimeout(ctx, t.rpcTimeout)
	defer cancel()

	type reply struct {
		rows []json.RawMessage
		err  error
	}
	results := make(chan reply, len(replicas))
	for _, node := range replicas {
		node := node
		go func() {
			rows, err := t.rpc.Scan(ctx, node, t.kind)
			if err != nil {
				t.logger.Warn().Err(err).Str("node", string(node)).Msg("scan RPC failed")
			}
			results <- reply{rows: rows, err: err}
		}()
	}

	byKey := make(map[string]Entity)
	var order []string
	for i := 0; i < len(replicas); i++ {
		r := <-results
		if r.err != nil {
			continue
		}
		for _, raw := range r.rows {
			e := t.factory()
			if err := json.Unmarshal(raw, e); err != nil {
				t.logger.Warn().Err(err).Msg("decoding replica row")
				continue
			}
			key := e.PartitionKey() + "/" + e.SortKey()
			if existing, ok := byKey[key]; ok {
				byKey[key] = existing.Merge(e)
			} else {
				byKey[key] = e
				order = append(order, key)
			}
		}
	}

	out := make([]Entity, 0, len(order))
	for _, key := range order {
		e := byKey[key]
		if pred == nil || pred(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

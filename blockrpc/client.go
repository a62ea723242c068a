package blockrpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/driftbase/driftbase/meta"
	"github.com/driftbase/driftbase/pkg/log"
	"github.com/driftbase/driftbase/pkg/metrics"
	"github.com/driftbase/driftbase/ring"
	"github.com/rs/zerolog"
)

// ErrNoValidBlock is returned when no replica's reply digests correctly
// to the requested hash before the RPC timeout elapses.
var ErrNoValidBlock = errors.New("blockrpc: no valid block found among replicas")

// RPCClient is the transport Client routes PutBlock/GetBlock over.
// Concrete implementations dial google.golang.org/grpc servers using
// the internal/rpcjson codec; Client depends only on this interface so
// it can be tested against an in-process fake.
type RPCClient interface {
	PutBlock(ctx context.Context, node ring.NodeID, hash meta.Hash, data []byte) (bool, error)
	GetBlock(ctx context.Context, node ring.NodeID, hash meta.Hash) (data []byte, found bool, err error)
}

// Client resolves a block's replica set via a ring.View and fans
// PutBlock/GetBlock out to it.
type Client struct {
	view              *ring.View
	rpc               RPCClient
	replicationFactor int
	rpcTimeout        time.Duration
	logger            zerolog.Logger
}

// NewClient returns a block RPC client.
func NewClient(view *ring.View, rpc RPCClient, replicationFactor int, rpcTimeout time.Duration) *Client {
	return &Client{
		view:              view,
		rpc:               rpc,
		replicationFactor: replicationFactor,
		rpcTimeout:        rpcTimeout,
		logger:            log.WithComponent("blockrpc.client"),
	}
}

func quorum(replicationFactor int) int {
	return (replicationFactor + 2) / 2
}

// PutBlock sends (hash, data) to hash's placement set and succeeds once
// a majority of replicas acknowledge durable storage within rpcTimeout.
func (c *Client) PutBlock(ctx context.Context, hash meta.Hash, data []byte) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.BlockPutDuration)

	replicas := c.view.Place(hash, c.replicationFactor)
	if len(replicas) == 0 {
		return fmt.Errorf("blockrpc: no replicas available for hash %s", hash)
	}

	ctx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	type ack struct {
		ok  bool
		err error
	}
	results := make(chan ack, len(replicas))
	for _, node := range replicas {
		node := node
		go func() {
			ok, err := c.rpc.PutBlock(ctx, node, hash, data)
			if err != nil {
				c.logger.Warn().Err(err).Str("node", string(node)).Str("hash", hash.String()).Msg("PutBlock RPC failed")
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

	need := quorum(c.replicationFactor)
	if acked < need {
		return fmt.Errorf("blockrpc: put quorum not reached for %s (%d/%d acks, need %d)", hash, acked, len(replicas), need)
	}
	return nil
}

// GetBlock fans a read out to hash's placement set and returns the
// first reply whose payload digests correctly, ignoring the rest. If no
// replica returns a valid block before rpcTimeout, it fails with
// ErrNoValidBlock.
func (c *Client) GetBlock(ctx context.Context, hash meta.Hash) ([]byte, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.BlockGetDuration)

	replicas := c.view.Place(hash, c.replicationFactor)
	if len(replicas) == 0 {
		return nil, fmt.Errorf("blockrpc: no replicas available for hash %s", hash)
	}

	ctx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	type reply struct {
		data  []byte
		valid bool
	}
	results := make(chan reply, len(replicas))
	for _, node := range replicas {
		node := node
		go func() {
			data, found, err := c.rpc.GetBlock(ctx, node, hash)
			if err != nil {
				c.logger.Warn().Err(err).Str("node", string(node)).Str("hash", hash.String()).Msg("GetBlock RPC failed")
				results <- reply{}
				return
			}
			if !found {
				results <- reply{}
				return
			}
			if meta.Digest(data) != hash {
				c.logger.Warn().Str("node", string(node)).Str("hash", hash.String()).Msg("replica returned block with mismatched digest")
				metrics.BlockDigestMismatchTotal.Inc()
				results <- reply{}
				return
			}
			results <- reply{data: data, valid: true}
		}()
	}

	for i := 0; i < len(replicas); i++ {
		select {
		case r := <-results:
			if r.valid {
				return r.data, nil
			}
		case <-ctx.Done():
			return nil, ErrNoValidBlock
		}
	}
	return nil, ErrNoValidBlock
}

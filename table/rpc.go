package table

import (
	"context"
	"encoding/json"

	"github.com/driftbase/driftbase/ring"
)

// RPCClient is the transport this package routes Insert/Get/Scan over
// once a replica set has been resolved. The concrete implementation
// dials google.golang.org/grpc servers using the internal/rpcjson codec;
// ReplicatedTable only depends on this narrow interface so it can be
// exercised against an in-process fake in tests.
type RPCClient interface {
	Insert(ctx context.Context, node ring.NodeID, kind string, row json.RawMessage) (bool, error)
	Get(ctx context.Context, node ring.NodeID, kind, pk, sk string) (row json.RawMessage, found bool, err error)
	Scan(ctx context.Context, node ring.NodeID, kind string) (rows []json.RawMessage, err error)
}

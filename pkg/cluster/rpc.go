package cluster

import (
	"context"
	"encoding/json"

	"github.com/driftbase/driftbase/internal/rpcjson"
	"github.com/driftbase/driftbase/meta"
	"github.com/driftbase/driftbase/ring"
)

// RPC implements both table.RPCClient and blockrpc.RPCClient over a
// shared Dialer, so a single connection pool backs every RPC a node
// makes to its peers.
type RPC struct {
	dialer *Dialer
}

// NewRPC returns an RPC adapter over dialer.
func NewRPC(dialer *Dialer) *RPC {
	return &RPC{dialer: dialer}
}

func (r *RPC) blockClient(node ring.NodeID) (rpcjson.BlockRPCClient, error) {
	conn, err := r.dialer.Conn(node)
	if err != nil {
		return nil, err
	}
	return rpcjson.NewBlockRPCClient(conn), nil
}

func (r *RPC) tableClient(node ring.NodeID) (rpcjson.TableRPCClient, error) {
	conn, err := r.dialer.Conn(node)
	if err != nil {
		return nil, err
	}
	return rpcjson.NewTableRPCClient(conn), nil
}

// PutBlock implements blockrpc.RPCClient.
func (r *RPC) PutBlock(ctx context.Context, node ring.NodeID, hash meta.Hash, data []byte) (bool, error) {
	client, err := r.blockClient(node)
	if err != nil {
		return false, err
	}
	resp, err := client.PutBlock(ctx, &rpcjson.PutBlockRequest{Hash: hash, Data: data})
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

// GetBlock implements blockrpc.RPCClient.
func (r *RPC) GetBlock(ctx context.Context, node ring.NodeID, hash meta.Hash) ([]byte, bool, error) {
	client, err := r.blockClient(node)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.GetBlock(ctx, &rpcjson.GetBlockRequest{Hash: hash})
	if err != nil {
		return nil, false, err
	}
	return resp.Data, resp.Found, nil
}

// Insert implements table.RPCClient.
func (r *RPC) Insert(ctx context.Context, node ring.NodeID, kind string, row json.RawMessage) (bool, error) {
	client, err := r.tableClient(node)
	if err != nil {
		return false, err
	}
	resp, err := client.Insert(ctx, &rpcjson.InsertRequest{Kind: kind, Row: row})
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

// Get implements table.RPCClient.
func (r *RPC) Get(ctx context.Context, node ring.NodeID, kind, pk, sk string) (json.RawMessage, bool, error) {
	client, err := r.tableClient(node)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Get(ctx, &rpcjson.GetRequest{Kind: kind, PartitionKey: pk, SortKey: sk})
	if err != nil {
		return nil, false, err
	}
	return resp.Row, resp.Found, nil
}

// Scan implements table.RPCClient.
func (r *RPC) Scan(ctx context.Context, node ring.NodeID, kind string) ([]json.RawMessage, error) {
	client, err := r.tableClient(node)
	if err != nil {
		return nil, err
	}
	resp, err := client.Scan(ctx, &rpcjson.ScanRequest{Kind: kind})
	if err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

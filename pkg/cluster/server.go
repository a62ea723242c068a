package cluster

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/driftbase/driftbase/blockrpc"
	"github.com/driftbase/driftbase/internal/rpcjson"
	"github.com/driftbase/driftbase/table"
)

// BlockServerAdapter exposes a blockrpc.Server as an
// rpcjson.BlockRPCServer, so it can be registered directly against a
// *grpc.Server via rpcjson.RegisterBlockRPCServer.
type BlockServerAdapter struct {
	srv *blockrpc.Server
}

// NewBlockServerAdapter wraps srv for gRPC registration.
func NewBlockServerAdapter(srv *blockrpc.Server) *BlockServerAdapter {
	return &BlockServerAdapter{srv: srv}
}

var _ rpcjson.BlockRPCServer = (*BlockServerAdapter)(nil)

func (a *BlockServerAdapter) PutBlock(ctx context.Context, in *rpcjson.PutBlockRequest) (*rpcjson.PutBlockResponse, error) {
	ok, err := a.srv.PutBlock(ctx, in.Hash, in.Data)
	return &rpcjson.PutBlockResponse{Ok: ok}, err
}

func (a *BlockServerAdapter) GetBlock(ctx context.Context, in *rpcjson.GetBlockRequest) (*rpcjson.GetBlockResponse, error) {
	data, found, err := a.srv.GetBlock(ctx, in.Hash)
	if err != nil {
		return nil, err
	}
	return &rpcjson.GetBlockResponse{Data: data, Found: found}, nil
}

// TableServerAdapter dispatches incoming table RPCs to the local
// table.Table for the requested entity kind, exposing the set as an
// rpcjson.TableRPCServer.
type TableServerAdapter struct {
	byKind map[string]table.Table
}

// NewTableServerAdapter returns a TableServerAdapter routing by entity
// kind to the corresponding local table (table/boltstore.Store).
func NewTableServerAdapter(byKind map[string]table.Table) *TableServerAdapter {
	return &TableServerAdapter{byKind: byKind}
}

var _ rpcjson.TableRPCServer = (*TableServerAdapter)(nil)

func (a *TableServerAdapter) local(kind string) (table.Table, error) {
	t, ok := a.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("cluster: no local table registered for kind %q", kind)
	}
	return t, nil
}

func (a *TableServerAdapter) Insert(ctx context.Context, in *rpcjson.InsertRequest) (*rpcjson.InsertResponse, error) {
	local, err := a.local(in.Kind)
	if err != nil {
		return nil, err
	}
	factory, ok := local.(interface{ NewEntity() table.Entity })
	if !ok {
		return nil, fmt.Errorf("cluster: table for kind %q cannot decode rows", in.Kind)
	}
	e := factory.NewEntity()
	if err := json.Unmarshal(in.Row, e); err != nil {
		return nil, fmt.Errorf("cluster: decoding %s row: %w", in.Kind, err)
	}
	if err := local.Insert(ctx, e); err != nil {
		return &rpcjson.InsertResponse{Ok: false}, err
	}
	return &rpcjson.InsertResponse{Ok: true}, nil
}

func (a *TableServerAdapter) Get(ctx context.Context, in *rpcjson.GetRequest) (*rpcjson.GetResponse, error) {
	local, err := a.local(in.Kind)
	if err != nil {
		return nil, err
	}
	e, found, err := local.Get(ctx, in.PartitionKey, in.SortKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return &rpcjson.GetResponse{Found: false}, nil
	}
	row, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("cluster: encoding %s row: %w", in.Kind, err)
	}
	return &rpcjson.GetResponse{Row: row, Found: true}, nil
}

func (a *TableServerAdapter) Scan(ctx context.Context, in *rpcjson.ScanRequest) (*rpcjson.ScanResponse, error) {
	local, err := a.local(in.Kind)
	if err != nil {
		return nil, err
	}
	entities, err := local.Scan(ctx, nil)
	if err != nil {
		return nil, err
	}
	rows := make([]json.RawMessage, 0, len(entities))
	for _, e := range entities {
		row, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("cluster: encoding %s row: %w", in.Kind, err)
		}
		rows = append(rows, row)
	}
	return &rpcjson.ScanResponse{Rows: rows}, nil
}

package rpcjson

import (
	"encoding/json"

	"github.com/driftbase/driftbase/meta"
)

// Block RPC messages.

type PutBlockRequest struct {
	Hash meta.Hash `json:"hash"`
	Data []byte    `json:"data"`
}

type PutBlockResponse struct {
	Ok bool `json:"ok"`
}

type GetBlockRequest struct {
	Hash meta.Hash `json:"hash"`
}

type GetBlockResponse struct {
	Data  []byte `json:"data"`
	Found bool   `json:"found"`
}

// Table RPC messages.

type InsertRequest struct {
	Kind string          `json:"kind"`
	Row  json.RawMessage `json:"row"`
}

type InsertResponse struct {
	Ok bool `json:"ok"`
}

type GetRequest struct {
	Kind         string `json:"kind"`
	PartitionKey string `json:"partition_key"`
	SortKey      string `json:"sort_key"`
}

type GetResponse struct {
	Row   json.RawMessage `json:"row"`
	Found bool            `json:"found"`
}

type ScanRequest struct {
	Kind string `json:"kind"`
}

type ScanResponse struct {
	Rows []json.RawMessage `json:"rows"`
}

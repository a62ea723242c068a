package rpcjson

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the codec name registered with grpc's encoding package, and
// the value servers/clients in this module pass as the call content
// subtype.
const Name = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpcjson: marshal: %w", err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpcjson: unmarshal: %w", err)
	}
	return nil
}

func (jsonCodec) Name() string { return Name }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

package crdt

import "encoding/json"

// MonotoneBool is a one-bit CRDT whose merge is logical OR: once set to
// true it is absorbing and persists across every subsequent merge. It
// models flags that only ever move forward, such as Version/Key's
// deletion marker.
type MonotoneBool struct {
	v bool
}

// NewMonotoneBool returns a bool CRDT initialized to v.
func NewMonotoneBool(v bool) MonotoneBool { return MonotoneBool{v: v} }

// Set forces the bit to true. There is no corresponding Clear: the
// CRDT is monotone by construction.
func (b *MonotoneBool) Set() { b.v = true }

// Value reports the current value.
func (b MonotoneBool) Value() bool { return b.v }

// Merge ORs other into b.
func (b *MonotoneBool) Merge(other MonotoneBool) {
	b.v = b.v || other.v
}

// MarshalJSON implements json.Marshaler.
func (b MonotoneBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *MonotoneBool) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &b.v)
}

package crdt

import (
	"cmp"
	"encoding/json"
)

// LWWRegister is a last-writer-wins register over an ordered value type.
// Ties on timestamp are broken by taking the larger value, which keeps
// Merge commutative and idempotent without needing a vector clock or
// per-writer tie-breaker.
type LWWRegister[T cmp.Ordered] struct {
	ts int64
	v  T
}

// NewLWWRegister creates a register already set to v at the current time.
func NewLWWRegister[T cmp.Ordered](v T) LWWRegister[T] {
	return LWWRegister[T]{ts: WallClockMS(), v: v}
}

// Update sets a new value, advancing the timestamp past both the
// register's previous timestamp and the current wall clock.
func (r *LWWRegister[T]) Update(v T) {
	r.ts = nextTimestamp(r.ts)
	r.v = v
}

// Value returns the register's current value.
func (r *LWWRegister[T]) Value() T { return r.v }

// Timestamp returns the register's current logical timestamp.
func (r *LWWRegister[T]) Timestamp() int64 { return r.ts }

// Merge folds other into r. Commutative and idempotent: merging the
// same state twice, or merging a and b in either order, converges to
// the same register.
func (r *LWWRegister[T]) Merge(other LWWRegister[T]) {
	switch {
	case other.ts > r.ts:
		r.ts, r.v = other.ts, other.v
	case other.ts == r.ts && other.v > r.v:
		r.v = other.v
	}
}

// registerWire is the on-wire/on-disk shape of an LWWRegister: its
// internal fields are unexported so that callers can only mutate it
// through Update/Merge, so (Un)MarshalJSON are written out by hand
// rather than relying on struct tags.
type registerWire[T cmp.Ordered] struct {
	TS    int64 `json:"ts"`
	Value T     `json:"value"`
}

// MarshalJSON implements json.Marshaler.
func (r LWWRegister[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(registerWire[T]{TS: r.ts, Value: r.v})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *LWWRegister[T]) UnmarshalJSON(b []byte) error {
	var w registerWire[T]
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	r.ts, r.v = w.TS, w.Value
	return nil
}

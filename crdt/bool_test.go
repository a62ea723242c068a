package crdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonotoneBoolMergeIsOr(t *testing.T) {
	cases := []struct{ a, b, want bool }{
		{false, false, false},
		{true, false, true},
		{false, true, true},
		{true, true, true},
	}
	for _, c := range cases {
		a := NewMonotoneBool(c.a)
		a.Merge(NewMonotoneBool(c.b))
		require.Equal(t, c.want, a.Value())
	}
}

func TestMonotoneBoolTrueIsAbsorbing(t *testing.T) {
	b := NewMonotoneBool(true)
	for i := 0; i < 5; i++ {
		b.Merge(NewMonotoneBool(false))
		require.True(t, b.Value())
	}
}

func TestMonotoneBoolMergeCommutativeAndIdempotent(t *testing.T) {
	a := NewMonotoneBool(true)
	b := NewMonotoneBool(false)

	ab := a
	ab.Merge(b)
	ba := b
	ba.Merge(a)
	require.Equal(t, ab.Value(), ba.Value())

	idempotent := a
	idempotent.Merge(a)
	require.Equal(t, a.Value(), idempotent.Value())
}

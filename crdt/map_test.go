package crdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// maxInt is a trivial Mergeable used only to exercise LWWMap's tie
// recursion into the value type.
type maxInt int

func (m maxInt) Merge(other maxInt) maxInt {
	if other > m {
		return other
	}
	return m
}

func TestLWWMapUpdateAndGet(t *testing.T) {
	withFixedClock(t, 1000)
	var m LWWMap[string, maxInt]
	m.Update("a", 1)
	m.Update("b", 2)

	v, ok := m.Get("a")
	require.True(t, ok)
	require.EqualValues(t, 1, v)

	_, ok = m.Get("missing")
	require.False(t, ok)
	require.Equal(t, 2, m.Len())
}

func TestLWWMapMergeHigherTimestampWins(t *testing.T) {
	withFixedClock(t, 1000)
	var a, b LWWMap[string, maxInt]
	a.Update("k", 1)
	withFixedClock(t, 2000)
	b.Update("k", 2)

	a.Merge(b)
	v, ok := a.Get("k")
	require.True(t, ok)
	require.EqualValues(t, 2, v)
}

func TestLWWMapMergeTieRecursesIntoValue(t *testing.T) {
	withFixedClock(t, 42)
	var a, b LWWMap[string, maxInt]
	a.Update("k", 1)
	b.Update("k", 9)

	a.Merge(b)
	v, ok := a.Get("k")
	require.True(t, ok)
	require.EqualValues(t, 9, v, "tie should recurse into the value's own Merge")
}

func TestLWWMapMergeCommutativeAndIdempotent(t *testing.T) {
	withFixedClock(t, 1000)
	var a, b LWWMap[string, maxInt]
	a.Update("x", 1)
	a.Update("y", 2)
	b.Update("y", 5)
	b.Update("z", 3)

	ab := a
	ab.Merge(b)
	ba := b
	ba.Merge(a)

	require.Equal(t, ab.Len(), ba.Len())
	ab.Range(func(k string, v maxInt) {
		other, ok := ba.Get(k)
		require.True(t, ok)
		require.Equal(t, v, other)
	})

	idempotent := ab
	idempotent.Merge(ab)
	require.Equal(t, ab.Len(), idempotent.Len())
}

func TestLWWMapClearRemovesAllEntries(t *testing.T) {
	var m LWWMap[string, maxInt]
	m.Update("a", 1)
	m.Update("b", 2)
	m.Clear()
	require.Equal(t, 0, m.Len())
}

func TestLWWMapInsertPreservesSortOrder(t *testing.T) {
	var m LWWMap[string, maxInt]
	m.Update("c", 1)
	m.Update("a", 1)
	m.Update("b", 1)

	var keys []string
	m.Range(func(k string, _ maxInt) { keys = append(keys, k) })
	require.Equal(t, []string{"a", "b", "c"}, keys)
}

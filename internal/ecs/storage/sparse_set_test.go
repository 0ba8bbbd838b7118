package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SparseSet_CreateAndInitialize(t *testing.T) {
	s := NewSparseSet[int]()

	assert.NotNil(t, s)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains(0))
}

func Test_SparseSet_InsertGetRemove(t *testing.T) {
	s := NewSparseSet[string]()

	_, had := s.Insert(3, "three")
	assert.False(t, had)
	assert.Equal(t, 1, s.Len())

	v, ok := s.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "three", *v)

	prior, had := s.Insert(3, "THREE")
	assert.True(t, had)
	assert.Equal(t, "three", prior)

	v, ok = s.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "THREE", *v)

	removed, ok := s.Remove(3)
	assert.True(t, ok)
	assert.Equal(t, "THREE", removed)
	assert.False(t, s.Contains(3))
	assert.Equal(t, 0, s.Len())
}

func Test_SparseSet_SwapRemovePatchesDisplacedIndex(t *testing.T) {
	s := NewSparseSet[int]()
	s.Insert(1, 10)
	s.Insert(2, 20)
	s.Insert(3, 30)

	_, ok := s.Remove(1)
	assert.True(t, ok)

	v2, ok := s.Get(2)
	assert.True(t, ok)
	assert.Equal(t, 20, *v2)

	v3, ok := s.Get(3)
	assert.True(t, ok)
	assert.Equal(t, 30, *v3)

	assert.Equal(t, 2, s.Len())
}

func Test_SparseSet_RemoveAbsentIsNoop(t *testing.T) {
	s := NewSparseSet[int]()
	_, ok := s.Remove(5)
	assert.False(t, ok)
}

func Test_SparseSet_IterVisitsEveryLiveEntryOnce(t *testing.T) {
	s := NewSparseSet[int]()
	for i := uint16(0); i < 10; i++ {
		s.Insert(i, int(i)*2)
	}
	s.Remove(4)

	seen := map[uint16]int{}
	s.Iter(func(key uint16, value *int) bool {
		seen[key] = *value
		return true
	})

	assert.Len(t, seen, 9)
	for k, v := range seen {
		assert.Equal(t, int(k)*2, v)
	}
}

func Test_SparseSet_ZeroSizedValue(t *testing.T) {
	s := NewSparseSet[struct{}]()
	s.Insert(7, struct{}{})
	assert.True(t, s.Contains(7))
	assert.Equal(t, 1, s.Len())
}

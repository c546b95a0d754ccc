package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointerBitsetSetHasClear(t *testing.T) {
	var b PointerBitset
	assert.False(t, b.Has(3))
	b.Set(3)
	assert.True(t, b.Has(3))
	b.Clear(3)
	assert.False(t, b.Has(3))
}

func TestPointerBitsetCountAndIsEmpty(t *testing.T) {
	var b PointerBitset
	assert.True(t, b.IsEmpty())
	b.Set(0)
	b.Set(5)
	assert.Equal(t, 2, b.Count())
	assert.False(t, b.IsEmpty())
}

func TestPointerBitsetSetOperations(t *testing.T) {
	var a, c PointerBitset
	a.Set(1)
	a.Set(2)
	c.Set(2)
	c.Set(3)

	assert.Equal(t, uint32(1<<2), uint32(a.And(c)))
	assert.Equal(t, uint32(1<<1), uint32(a.AndNot(c)))
	assert.Equal(t, uint32(1<<1|1<<2|1<<3), uint32(a.Or(c)))
}

func TestPointerBitsetFirstMarkedID(t *testing.T) {
	var b PointerBitset
	_, ok := b.FirstMarkedID()
	assert.False(t, ok)

	b.Set(4)
	b.Set(2)
	id, ok := b.FirstMarkedID()
	assert.True(t, ok)
	assert.Equal(t, uint32(2), id)
}

func TestPointerBitsetIDsAscending(t *testing.T) {
	var b PointerBitset
	b.Set(5)
	b.Set(1)
	b.Set(3)
	assert.Equal(t, []uint32{1, 3, 5}, b.IDs())
}

func TestFirstUnusedIDReturnsLowestFree(t *testing.T) {
	var used PointerBitset
	used.Set(0)
	used.Set(1)
	assert.Equal(t, uint32(2), FirstUnusedID(used))
}

func TestFirstUnusedIDAllUsedReturnsLastSlot(t *testing.T) {
	var used PointerBitset
	for i := uint32(0); i < MaxPointers; i++ {
		used.Set(i)
	}
	assert.Equal(t, uint32(MaxPointers-1), FirstUnusedID(used))
}

package column

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaAlloc(t *testing.T) {
	arena := NewArena()
	a := arena.Alloc(16)
	assert.Len(t, a, 16)
	b := arena.Alloc(minArenaChunkSize * 2)
	assert.Len(t, b, minArenaChunkSize*2)

	// spans are stable: earlier allocations keep their bytes
	copy(a, "0123456789abcdef")
	c := arena.Alloc(32)
	_ = c
	assert.Equal(t, []byte("0123456789abcdef"), a)
}

func TestArenaAllocContinue(t *testing.T) {
	arena := NewArena()
	var begin []byte

	p1 := arena.AllocContinue(4, &begin)
	copy(p1, "aaaa")
	p2 := arena.AllocContinue(4, &begin)
	copy(p2, "bbbb")
	assert.Equal(t, []byte("aaaabbbb"), begin)

	// force relocation to a new chunk mid-span
	big := arena.AllocContinue(minArenaChunkSize, &begin)
	copy(big, strings.Repeat("c", minArenaChunkSize))
	assert.Len(t, begin, 8+minArenaChunkSize)
	assert.Equal(t, []byte("aaaabbbb"), begin[:8])
	assert.Equal(t, byte('c'), begin[8])
	assert.Equal(t, byte('c'), begin[len(begin)-1])
}

func TestSerializeValueIntoArenaKeyFormat(t *testing.T) {
	col := makeBlob("x")
	arena := NewArena()
	var begin []byte
	key := col.SerializeValueIntoArena(0, arena, &begin)

	// fixed 8 byte little endian length prefix, then the stored bytes
	require.Len(t, key, 8+2)
	assert.Equal(t, []byte{0x02, 0, 0, 0, 0, 0, 0, 0}, key[:8])
	assert.Equal(t, []byte{'x', 0}, key[8:])
	assert.Equal(t, key, begin)
}

func TestArenaRoundTrip(t *testing.T) {
	col := makeBlob("", "short", strings.Repeat("long", 100), "x")
	arena := NewArena()

	// serialize every row into one contiguous composite key
	var begin []byte
	for i := 0; i < col.Size(); i++ {
		col.SerializeValueIntoArena(i, arena, &begin)
	}

	res := NewBlob()
	pos := begin
	var err error
	for i := 0; i < col.Size(); i++ {
		pos, err = res.DeserializeAndInsertFromArena(pos)
		require.NoError(t, err)
	}
	assert.Len(t, pos, 0)
	assert.True(t, RowsEqual(col, res))
	checkInvariant(t, res)
}

func TestDeserializeFromArenaErrors(t *testing.T) {
	col := NewBlob()
	_, err := col.DeserializeAndInsertFromArena([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrOutOfBounds)

	// prefix promises more bytes than present
	_, err = col.DeserializeAndInsertFromArena(
		[]byte{9, 0, 0, 0, 0, 0, 0, 0, 'a'})
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, 0, col.Size())
}

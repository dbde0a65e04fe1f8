package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertRangeFrom(t *testing.T) {
	src := makeBlob("r0", "r1", "r2", "r3")

	// rows [1,3) into an empty destination, offsets rebased to 0
	dst := NewBlob()
	require.NoError(t, dst.InsertRangeFrom(src, 1, 2))
	assert.Equal(t, 2, dst.Size())
	assert.Equal(t, []byte("r1"), dst.LogicalAt(0))
	assert.Equal(t, []byte("r2"), dst.LogicalAt(1))
	assert.Equal(t, Offset(0), dst.OffsetAt(0))
	assert.Equal(t, []Offset{3, 6}, dst.Offsets)
	checkInvariant(t, dst)

	// append more into a non-empty destination
	require.NoError(t, dst.InsertRangeFrom(src, 0, 4))
	assert.Equal(t, 6, dst.Size())
	assert.Equal(t, []byte("r0"), dst.LogicalAt(2))
	assert.Equal(t, []byte("r3"), dst.LogicalAt(5))
	checkInvariant(t, dst)

	// whole-prefix copy into a fresh column
	full := NewBlob()
	require.NoError(t, full.InsertRangeFrom(src, 0, 4))
	assert.True(t, RowsEqual(src, full))

	// zero length is a no-op
	require.NoError(t, full.InsertRangeFrom(src, 2, 0))
	assert.Equal(t, 4, full.Size())
}

func TestInsertRangeFromOutOfBounds(t *testing.T) {
	src := makeBlob("a", "b")
	dst := makeBlob("keep")
	err := dst.InsertRangeFrom(src, 1, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	// nothing appended
	assert.Equal(t, 1, dst.Size())
	assert.Equal(t, []byte("keep"), dst.LogicalAt(0))
}

func TestInsertIndicesFrom(t *testing.T) {
	src := makeBlob("a", "bb", "ccc")
	dst := NewBlob()
	require.NoError(t, dst.InsertIndicesFrom(src, []int{2, NullIndex, 0, 2}))
	assert.Equal(t, 4, dst.Size())
	assert.Equal(t, []byte("ccc"), dst.LogicalAt(0))
	assert.Len(t, dst.LogicalAt(1), 0)
	assert.Equal(t, []byte("a"), dst.LogicalAt(2))
	assert.Equal(t, []byte("ccc"), dst.LogicalAt(3))
	checkInvariant(t, dst)

	err := dst.InsertIndicesFrom(src, []int{5})
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestInsertIndicesFromOutOfBounds(t *testing.T) {
	src := makeBlob("a", "bb")
	dst := makeBlob("keep")
	before := dst.Clone()

	// the bad index comes last; earlier rows must not stick
	err := dst.InsertIndicesFrom(src, []int{0, 1, 9})
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, 1, dst.Size())
	assert.True(t, RowsEqual(before, dst))

	err = dst.InsertIndicesFrom(src, []int{NullIndex, -2})
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.True(t, RowsEqual(before, dst))
	assert.Equal(t, []byte("keep"), dst.LogicalAt(0))
}

func TestFilter(t *testing.T) {
	col := makeBlob("a", "bb", "ccc", "dddd")

	allTrue := []bool{true, true, true, true}
	res, err := col.Filter(allTrue, 0)
	require.NoError(t, err)
	assert.True(t, RowsEqual(col, res))

	allFalse := []bool{false, false, false, false}
	res, err = col.Filter(allFalse, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Size())
	assert.Equal(t, 0, res.ByteSize())

	some := []bool{false, true, false, true}
	res, err = col.Filter(some, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Size())
	assert.Equal(t, []byte("bb"), res.LogicalAt(0))
	assert.Equal(t, []byte("dddd"), res.LogicalAt(1))
	checkInvariant(t, res)

	// the hint never changes content
	hinted, err := col.Filter(some, 1000)
	require.NoError(t, err)
	assert.True(t, RowsEqual(res, hinted))

	_, err = col.Filter([]bool{true}, 0)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	empty, err := NewBlob().Filter(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Size())
}

func TestIndex(t *testing.T) {
	col := makeBlob("a", "bb", "ccc")

	// identity gather
	res, err := col.Index([]int{0, 1, 2}, 3)
	require.NoError(t, err)
	assert.True(t, RowsEqual(col, res))

	// repeated and non-monotonic indexes
	res, err = col.Index([]int{2, 0, 2, 2}, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Size())
	assert.Equal(t, []byte("ccc"), res.LogicalAt(0))
	assert.Equal(t, []byte("a"), res.LogicalAt(1))
	assert.Equal(t, []byte("ccc"), res.LogicalAt(2))
	assert.Equal(t, []byte("ccc"), res.LogicalAt(3))
	checkInvariant(t, res)

	// limit truncates
	res, err = col.Index([]int{1, 0, 2}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Size())
	assert.Equal(t, []byte("bb"), res.LogicalAt(0))

	res, err = col.Index(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Size())

	_, err = col.Index([]int{0}, 2)
	assert.ErrorIs(t, err, ErrSizeMismatch)
	_, err = col.Index([]int{7}, 1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = col.Index([]int{-2}, 1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestPermute(t *testing.T) {
	col := makeBlob("a", "bb", "ccc")

	res, err := col.Permute([]int{2, 1, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Size())
	assert.Equal(t, []byte("ccc"), res.LogicalAt(0))
	assert.Equal(t, []byte("a"), res.LogicalAt(2))

	// limit beyond size clamps
	res, err = col.Permute([]int{2, 1, 0}, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Size())

	res, err = col.Permute([]int{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Size())

	_, err = col.Permute([]int{1}, 0)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

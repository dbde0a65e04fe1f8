package datatype

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/blobvec/pkg/column"
)

func makeBlob(vals ...string) *column.Blob {
	col := column.NewBlob()
	for _, v := range vals {
		col.InsertData([]byte(v))
	}
	return col
}

func TestBlobTypeSerialize(t *testing.T) {
	col := makeBlob("", "hello", strings.Repeat("z", 300))

	size := BlobType{}.GetUncompressedSerializedBytes(col)
	// rowNum + 3 offsets + charsLen + chars
	assert.Equal(t, int64(4+3*4+8+col.ByteSize()), size)

	buf := make([]byte, size)
	rest := BlobType{}.Serialize(col, buf)
	// the size contract is exact
	assert.Len(t, rest, 0)

	res := column.NewBlob()
	rest, err := BlobType{}.Deserialize(buf, res)
	require.NoError(t, err)
	assert.Len(t, rest, 0)
	assert.True(t, column.RowsEqual(col, res))
}

func TestBlobTypeSerializeEmpty(t *testing.T) {
	col := column.NewBlob()
	size := BlobType{}.GetUncompressedSerializedBytes(col)
	assert.Equal(t, int64(12), size)

	buf := make([]byte, size)
	BlobType{}.Serialize(col, buf)

	res := column.NewBlob()
	_, err := BlobType{}.Deserialize(buf, res)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Size())
}

func TestBlobTypeDeserializeCorrupt(t *testing.T) {
	col := makeBlob("abc")
	buf := make([]byte, BlobType{}.GetUncompressedSerializedBytes(col))
	BlobType{}.Serialize(col, buf)

	res := column.NewBlob()
	for cut := 0; cut < len(buf); cut += 3 {
		_, err := BlobType{}.Deserialize(buf[:cut], res)
		assert.ErrorIs(t, err, ErrCorruptPayload, "cut=%d", cut)
	}

	// broken offset index
	bad := append([]byte{}, buf...)
	bad[4] = 0xff
	bad[5] = 0xff
	bad[6] = 0xff
	bad[7] = 0xff
	_, err := BlobType{}.Deserialize(bad, res)
	assert.ErrorIs(t, err, ErrCorruptPayload)
}

func TestBlobTypeToString(t *testing.T) {
	col := makeBlob(`{"a":1}`, "")
	assert.Equal(t, `{"a":1}`, BlobType{}.ToString(col, 0))
	assert.Equal(t, "", BlobType{}.ToString(col, 1))
}

func buildArray(t *testing.T, rows ...[]string) *ArrayColumn {
	t.Helper()
	arr := NewArrayColumn()
	for _, row := range rows {
		elems := make([][]byte, 0, len(row))
		for _, e := range row {
			elems = append(elems, []byte(e))
		}
		arr.AppendRow(elems)
	}
	return arr
}

func TestArrayColumn(t *testing.T) {
	arr := buildArray(t, []string{"a", "b"}, nil, []string{"c"})
	assert.Equal(t, 3, arr.Size())
	assert.Equal(t, 2, arr.LengthAt(0))
	assert.Equal(t, 0, arr.LengthAt(1))
	assert.Equal(t, 1, arr.LengthAt(2))
	assert.Equal(t, []byte("b"), arr.ElementAt(0, 1))
	assert.Equal(t, []byte("c"), arr.ElementAt(2, 0))
}

func TestArrayTypeRoundTrip(t *testing.T) {
	arr := buildArray(t, []string{"a", "bb"}, nil, []string{"ccc", "d", "ee"})

	size := ArrayType{}.GetUncompressedSerializedBytes(arr)
	buf := make([]byte, size)
	rest := ArrayType{}.Serialize(arr, buf)
	assert.Len(t, rest, 0)

	res := NewArrayColumn()
	rest, err := ArrayType{}.Deserialize(buf, res)
	require.NoError(t, err)
	assert.Len(t, rest, 0)
	assert.Equal(t, arr.Offsets, res.Offsets)
	assert.True(t, column.RowsEqual(arr.Data, res.Data))
}

func TestMapTypeRoundTrip(t *testing.T) {
	col := NewMapColumn()
	require.NoError(t, MapType{}.FromString(`{"a":1,"b":2}`, col))
	col.InsertDefault()
	require.NoError(t, MapType{}.FromString(`{'k':'v'}`, col))

	size := MapType{}.GetUncompressedSerializedBytes(col)
	buf := make([]byte, size)
	rest := MapType{}.Serialize(col, buf)
	// keys then values, recursive, no extra framing
	assert.Len(t, rest, 0)

	res := NewMapColumn()
	rest, err := MapType{}.Deserialize(buf, res)
	require.NoError(t, err)
	assert.Len(t, rest, 0)

	require.Equal(t, 3, res.Size())
	assert.Equal(t, 2, res.PairCountAt(0))
	assert.Equal(t, 0, res.PairCountAt(1))
	assert.Equal(t, 1, res.PairCountAt(2))
	assert.Equal(t, MapType{}.ToString(col, 0), MapType{}.ToString(res, 0))
	assert.Equal(t, MapType{}.ToString(col, 2), MapType{}.ToString(res, 2))
}

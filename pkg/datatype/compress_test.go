package datatype

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompressionType(t *testing.T) {
	for name, want := range map[string]CompressionType{
		"":     CompressionNone,
		"none": CompressionNone,
		"lz4":  CompressionLZ4,
		"zstd": CompressionZSTD,
	} {
		got, err := ParseCompressionType(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCompressionType("gzip")
	assert.Error(t, err)
}

func TestCompressBlockRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("columnar bytes "), 200)
	for _, typ := range []CompressionType{CompressionNone, CompressionLZ4, CompressionZSTD} {
		block, err := CompressBlock(data, typ)
		require.NoError(t, err)
		if typ != CompressionNone {
			assert.Less(t, len(block), len(data))
		}
		res, err := DecompressBlock(block)
		require.NoError(t, err)
		assert.Equal(t, data, res)
	}
}

func TestCompressBlockIncompressible(t *testing.T) {
	data := make([]byte, 1024)
	_, err := rand.Read(data)
	require.NoError(t, err)

	for _, typ := range []CompressionType{CompressionLZ4, CompressionZSTD} {
		block, err := CompressBlock(data, typ)
		require.NoError(t, err)
		// stored raw, compressedSize field zero
		assert.Equal(t, blockHeaderSize+len(data), len(block))
		assert.Equal(t, []byte{0, 0, 0, 0}, block[5:9])

		res, err := DecompressBlock(block)
		require.NoError(t, err)
		assert.Equal(t, data, res)
	}
}

func TestDecompressBlockCorrupt(t *testing.T) {
	block, err := CompressBlock(bytes.Repeat([]byte("abc"), 100), CompressionZSTD)
	require.NoError(t, err)

	_, err = DecompressBlock(block[:blockHeaderSize-1])
	assert.ErrorIs(t, err, ErrCorruptPayload)

	_, err = DecompressBlock(block[:len(block)-1])
	assert.ErrorIs(t, err, ErrCorruptPayload)

	garbled := append([]byte{}, block...)
	for i := blockHeaderSize; i < len(garbled); i++ {
		garbled[i] ^= 0xa5
	}
	_, err = DecompressBlock(garbled)
	assert.ErrorIs(t, err, ErrCorruptPayload)

	unknown := append([]byte{}, block...)
	unknown[0] = 99
	_, err = DecompressBlock(unknown)
	assert.ErrorIs(t, err, ErrCorruptPayload)
}

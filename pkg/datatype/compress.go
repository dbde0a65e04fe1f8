package datatype

import (
	"encoding/binary"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType selects the codec for serialized batch blocks.
type CompressionType uint8

const (
	// CompressionNone stores blocks uncompressed.
	CompressionNone CompressionType = 0
	// CompressionLZ4 favors speed, for hot data paths.
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD favors ratio, for cold data.
	CompressionZSTD CompressionType = 2
)

func ParseCompressionType(name string) (CompressionType, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	}
	return CompressionNone, errors.Newf("unknown compression type %q", name)
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Block header:
// [codec uint8][uncompressedSize uint32][compressedSize uint32][data].
// compressedSize == 0 means the block is stored raw regardless of the
// codec byte, the incompressible fallback.
const blockHeaderSize = 9

// CompressBlock frames and compresses one serialized batch. Blocks
// that do not shrink are stored raw.
func CompressBlock(data []byte, typ CompressionType) ([]byte, error) {
	var compressed []byte
	var err error

	switch typ {
	case CompressionNone:
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		var n int
		n, err = lz4.CompressBlock(data, dst, nil)
		if err == nil && n > 0 && n < len(data) {
			compressed = dst[:n]
		}
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
		if len(compressed) >= len(data) {
			compressed = nil
		}
	default:
		return nil, errors.Newf("unknown compression type %d", typ)
	}
	if err != nil {
		return nil, err
	}

	payload := compressed
	compressedSize := len(compressed)
	if compressed == nil {
		payload = data
		compressedSize = 0
	}

	res := make([]byte, blockHeaderSize+len(payload))
	res[0] = byte(typ)
	binary.LittleEndian.PutUint32(res[1:], uint32(len(data)))
	binary.LittleEndian.PutUint32(res[5:], uint32(compressedSize))
	copy(res[blockHeaderSize:], payload)
	return res, nil
}

// DecompressBlock undoes CompressBlock.
func DecompressBlock(block []byte) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, errors.Wrap(ErrCorruptPayload, "short block header")
	}
	typ := CompressionType(block[0])
	uncompressedSize := int(binary.LittleEndian.Uint32(block[1:]))
	compressedSize := int(binary.LittleEndian.Uint32(block[5:]))
	payload := block[blockHeaderSize:]

	if compressedSize == 0 {
		if len(payload) != uncompressedSize {
			return nil, errors.Wrapf(ErrCorruptPayload,
				"raw block of %d bytes, header says %d", len(payload), uncompressedSize)
		}
		return payload, nil
	}
	if len(payload) != compressedSize {
		return nil, errors.Wrapf(ErrCorruptPayload,
			"compressed block of %d bytes, header says %d", len(payload), compressedSize)
	}

	switch typ {
	case CompressionLZ4:
		dst := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, dst)
		if err != nil {
			return nil, errors.Mark(err, ErrCorruptPayload)
		}
		if n != uncompressedSize {
			return nil, errors.Wrapf(ErrCorruptPayload,
				"lz4 block expands to %d bytes, header says %d", n, uncompressedSize)
		}
		return dst, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		dst, err := dec.DecodeAll(payload, nil)
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, errors.Mark(err, ErrCorruptPayload)
		}
		if len(dst) != uncompressedSize {
			return nil, errors.Wrapf(ErrCorruptPayload,
				"zstd block expands to %d bytes, header says %d", len(dst), uncompressedSize)
		}
		return dst, nil
	}
	return nil, errors.Wrapf(ErrCorruptPayload, "unknown codec %d", typ)
}

// Copyright 2024-2025 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package datatype is the wire format layer over pkg/column: binary
// serialization of blob, array and map columns for inter node data
// movement, the textual map literal grammar, and block compression of
// serialized batches.
package datatype

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/daviszhen/blobvec/pkg/column"
)

const (
	offsetWidth   = 4 // column.Offset on the wire
	offset64Width = 8
	lengthWidth   = 8 // total chars length
)

// ErrCorruptPayload reports a serialized payload that cannot be
// parsed: truncated, or with a broken offset index.
var ErrCorruptPayload = errors.New("corrupt payload")

// BlobType serializes a blob column as
// [rowNum uint32][offsets uint32 x rowNum][charsLen uint64][chars],
// everything little endian.
type BlobType struct{}

// ToString renders row i, which stores textual content (JSON or plain
// strings), as a string.
func (BlobType) ToString(col *column.Blob, i int) string {
	return string(col.LogicalAt(i))
}

// GetUncompressedSerializedBytes returns the exact byte count
// Serialize will produce, so callers can pre-allocate.
func (BlobType) GetUncompressedSerializedBytes(col *column.Blob) int64 {
	return int64(offsetWidth*(col.Size()+1)) + lengthWidth + int64(col.ByteSize())
}

// Serialize writes the column at the front of buf and returns the
// remaining buf. buf must hold at least
// GetUncompressedSerializedBytes bytes.
func (BlobType) Serialize(col *column.Blob, buf []byte) []byte {
	// row num
	binary.LittleEndian.PutUint32(buf, uint32(col.Size()))
	buf = buf[offsetWidth:]
	// offsets
	for _, off := range col.Offsets {
		binary.LittleEndian.PutUint32(buf, off)
		buf = buf[offsetWidth:]
	}
	// total length
	binary.LittleEndian.PutUint64(buf, uint64(col.ByteSize()))
	buf = buf[lengthWidth:]
	// values
	copy(buf, col.Chars)
	return buf[col.ByteSize():]
}

// Deserialize parses one column off the front of buf into col,
// replacing its content, and returns the remaining buf.
func (BlobType) Deserialize(buf []byte, col *column.Blob) ([]byte, error) {
	if len(buf) < offsetWidth {
		return nil, errors.Wrap(ErrCorruptPayload, "missing row count")
	}
	rowNum := int(binary.LittleEndian.Uint32(buf))
	buf = buf[offsetWidth:]

	if len(buf) < rowNum*offsetWidth+lengthWidth {
		return nil, errors.Wrapf(ErrCorruptPayload, "truncated offsets for %d rows", rowNum)
	}
	offsets := make([]column.Offset, rowNum)
	for i := 0; i < rowNum; i++ {
		offsets[i] = binary.LittleEndian.Uint32(buf)
		buf = buf[offsetWidth:]
	}

	valueLen := int(binary.LittleEndian.Uint64(buf))
	buf = buf[lengthWidth:]
	if len(buf) < valueLen {
		return nil, errors.Wrapf(ErrCorruptPayload, "truncated values, want %d bytes have %d", valueLen, len(buf))
	}
	chars := make([]byte, valueLen)
	copy(chars, buf)

	if err := col.AssignRaw(offsets, chars); err != nil {
		return nil, errors.Mark(err, ErrCorruptPayload)
	}
	return buf[valueLen:], nil
}

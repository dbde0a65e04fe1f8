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

package datatype

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/daviszhen/blobvec/pkg/column"
)

// ArrayColumn wraps a blob column as element storage and adds a second
// offset level: Offsets[r] is the cumulative element count after row
// r, so row r owns elements [Offsets[r-1], Offsets[r]) of Data.
type ArrayColumn struct {
	Offsets []uint64
	Data    *column.Blob
}

func NewArrayColumn() *ArrayColumn {
	return &ArrayColumn{
		Data: column.NewBlob(),
	}
}

func (arr *ArrayColumn) Size() int {
	return len(arr.Offsets)
}

func (arr *ArrayColumn) OffsetAt(i int) uint64 {
	if i == 0 {
		return 0
	}
	return arr.Offsets[i-1]
}

// LengthAt returns the element count of row i.
func (arr *ArrayColumn) LengthAt(i int) int {
	return int(arr.Offsets[i] - arr.OffsetAt(i))
}

// ElementAt returns the logical content of element j of row i.
func (arr *ArrayColumn) ElementAt(i, j int) []byte {
	return arr.Data.LogicalAt(int(arr.OffsetAt(i)) + j)
}

// InsertDefault appends an empty array row.
func (arr *ArrayColumn) InsertDefault() {
	arr.PushOffset(0)
}

// PushOffset closes the current row over the last count elements
// already appended to Data.
func (arr *ArrayColumn) PushOffset(count int) {
	var last uint64
	if len(arr.Offsets) > 0 {
		last = arr.Offsets[len(arr.Offsets)-1]
	}
	arr.Offsets = append(arr.Offsets, last+uint64(count))
}

// AppendRow appends one row with the given elements.
func (arr *ArrayColumn) AppendRow(elems [][]byte) {
	for _, e := range elems {
		arr.Data.InsertData(e)
	}
	arr.PushOffset(len(elems))
}

// Protect seals the element storage against further mutation.
func (arr *ArrayColumn) Protect() {
	arr.Data.Protect()
}

// ArrayType serializes an array column as
// [rowNum uint32][offsets uint64 x rowNum][element blob column],
// fully recursive: the nested blob layout supplies its own bounds.
type ArrayType struct{}

func (ArrayType) GetUncompressedSerializedBytes(arr *ArrayColumn) int64 {
	return int64(offsetWidth) + int64(offset64Width*arr.Size()) +
		BlobType{}.GetUncompressedSerializedBytes(arr.Data)
}

func (ArrayType) Serialize(arr *ArrayColumn, buf []byte) []byte {
	binary.LittleEndian.PutUint32(buf, uint32(arr.Size()))
	buf = buf[offsetWidth:]
	for _, off := range arr.Offsets {
		binary.LittleEndian.PutUint64(buf, off)
		buf = buf[offset64Width:]
	}
	return BlobType{}.Serialize(arr.Data, buf)
}

func (ArrayType) Deserialize(buf []byte, arr *ArrayColumn) ([]byte, error) {
	if len(buf) < offsetWidth {
		return nil, errors.Wrap(ErrCorruptPayload, "missing array row count")
	}
	rowNum := int(binary.LittleEndian.Uint32(buf))
	buf = buf[offsetWidth:]

	if len(buf) < rowNum*offset64Width {
		return nil, errors.Wrapf(ErrCorruptPayload, "truncated array offsets for %d rows", rowNum)
	}
	offsets := make([]uint64, rowNum)
	var prev uint64
	for i := 0; i < rowNum; i++ {
		offsets[i] = binary.LittleEndian.Uint64(buf)
		buf = buf[offset64Width:]
		if offsets[i] < prev {
			return nil, errors.Wrapf(ErrCorruptPayload, "array offset decreases at row %d", i)
		}
		prev = offsets[i]
	}

	buf, err := BlobType{}.Deserialize(buf, arr.Data)
	if err != nil {
		return nil, err
	}
	if int(prev) != arr.Data.Size() {
		return nil, errors.Wrapf(ErrCorruptPayload,
			"array covers %d elements, blob has %d rows", prev, arr.Data.Size())
	}
	arr.Offsets = offsets
	return buf, nil
}

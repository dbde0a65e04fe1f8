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

// Package column implements a variable length byte blob column: one
// contiguous byte buffer plus a cumulative offset index, with the batch
// operations an execution engine needs (filter, gather, permute, sort
// order, replication, arena keys).
package column

import (
	"github.com/cockroachdb/errors"

	"github.com/daviszhen/blobvec/pkg/util"
)

// Offset is a cumulative end position inside Chars. Offsets[i] bounds
// row i on the right; Offsets[i-1] (0 for i == 0) bounds it on the
// left.
type Offset = uint32

// Blob stores rows back to back in Chars. Every row carries one
// trailing zero byte that is not part of its logical content, so the
// logical length of row i is SizeAt(i)-1. A fresh default row is
// exactly that single terminator byte.
type Blob struct {
	Chars   []byte
	Offsets []Offset

	protected bool
}

func NewBlob() *Blob {
	return &Blob{}
}

func (col *Blob) Size() int {
	return util.Size(col.Offsets)
}

func (col *Blob) ByteSize() int {
	return len(col.Chars)
}

// OffsetAt returns the byte position where row i starts. i must be in
// [0, Size()).
func (col *Blob) OffsetAt(i int) Offset {
	if i == 0 {
		return 0
	}
	return col.Offsets[i-1]
}

// SizeAt returns the stored size of row i, terminator included.
func (col *Blob) SizeAt(i int) int {
	return int(col.Offsets[i] - col.OffsetAt(i))
}

// DataAt returns the stored bytes of row i, terminator included. The
// slice aliases the column buffer.
func (col *Blob) DataAt(i int) []byte {
	return col.Chars[col.OffsetAt(i):col.Offsets[i]]
}

// LogicalAt returns the logical content of row i, without the
// terminator. The slice aliases the column buffer.
func (col *Blob) LogicalAt(i int) []byte {
	return col.Chars[col.OffsetAt(i) : col.Offsets[i]-1]
}

func (col *Blob) ensureMutable() {
	if col.protected {
		panic("mutation of protected blob column")
	}
}

// Protect seals the column before it is shared with concurrent
// readers. Any later mutation panics instead of corrupting shared
// state.
func (col *Blob) Protect() {
	col.protected = true
}

func (col *Blob) Protected() bool {
	return col.protected
}

// appendRow appends already terminated row bytes.
func (col *Blob) appendRow(raw []byte) {
	col.Chars = append(col.Chars, raw...)
	col.Offsets = append(col.Offsets, Offset(len(col.Chars)))
}

// InsertData appends one row with the given logical content.
func (col *Blob) InsertData(data []byte) {
	col.ensureMutable()
	col.Chars = append(col.Chars, data...)
	col.Chars = append(col.Chars, 0)
	col.Offsets = append(col.Offsets, Offset(len(col.Chars)))
}

// InsertDefault appends one empty row, a single terminator byte.
func (col *Blob) InsertDefault() {
	col.ensureMutable()
	col.Chars = append(col.Chars, 0)
	col.Offsets = append(col.Offsets, Offset(len(col.Chars)))
}

func (col *Blob) InsertManyDefaults(n int) {
	col.ensureMutable()
	for i := 0; i < n; i++ {
		col.Chars = append(col.Chars, 0)
		col.Offsets = append(col.Offsets, Offset(len(col.Chars)))
	}
}

// InsertFrom appends row i of src.
func (col *Blob) InsertFrom(src *Blob, i int) error {
	col.ensureMutable()
	if i < 0 || i >= src.Size() {
		return errors.Wrapf(ErrOutOfBounds, "insert from row %d of %d rows", i, src.Size())
	}
	col.appendRow(src.DataAt(i))
	return nil
}

// PopBack drops the last n rows and their bytes. Used to roll back a
// partially applied multi row append.
func (col *Blob) PopBack(n int) {
	col.ensureMutable()
	util.AssertFunc(n <= col.Size())
	newSize := col.Size() - n
	col.Offsets = col.Offsets[:newSize]
	if newSize == 0 {
		col.Chars = col.Chars[:0]
	} else {
		col.Chars = col.Chars[:col.Offsets[newSize-1]]
	}
}

// Reserve pre-allocates capacity for n more rows. Pure performance
// hint.
func (col *Blob) Reserve(n int) {
	if cap(col.Offsets)-len(col.Offsets) < n {
		offsets := make([]Offset, len(col.Offsets), len(col.Offsets)+n)
		copy(offsets, col.Offsets)
		col.Offsets = offsets
	}
	if cap(col.Chars)-len(col.Chars) < n {
		chars := make([]byte, len(col.Chars), len(col.Chars)+n)
		copy(chars, col.Chars)
		col.Chars = chars
	}
}

// Resize truncates to the first n rows, or appends default rows up to
// n.
func (col *Blob) Resize(n int) {
	col.ensureMutable()
	originSize := col.Size()
	if originSize > n {
		col.Offsets = col.Offsets[:n]
		if n == 0 {
			col.Chars = col.Chars[:0]
		} else {
			col.Chars = col.Chars[:col.Offsets[n-1]]
		}
	} else if originSize < n {
		col.InsertManyDefaults(n - originSize)
	}
}

// CloneResized returns a new column with Resize(n) semantics, leaving
// the receiver untouched.
func (col *Blob) CloneResized(n int) *Blob {
	res := NewBlob()
	if n == 0 {
		return res
	}

	fromSize := col.Size()

	if n <= fromSize {
		res.Offsets = util.CopyTo(col.Offsets[:n])
		res.Chars = util.CopyTo(col.Chars[:col.Offsets[n-1]])
	} else {
		var offset Offset
		if fromSize > 0 {
			res.Offsets = util.CopyTo(col.Offsets)
			res.Chars = util.CopyTo(col.Chars)
			offset = util.Back(col.Offsets)
		} else {
			res.Offsets = make([]Offset, 0, n)
		}

		// extra rows are single terminator bytes
		for i := fromSize; i < n; i++ {
			offset++
			res.Chars = append(res.Chars, 0)
			res.Offsets = append(res.Offsets, offset)
		}
	}

	return res
}

// Clone returns a full deep copy. The copy is mutable even if the
// receiver is protected.
func (col *Blob) Clone() *Blob {
	return col.CloneResized(col.Size())
}

// AssignRaw replaces the column content with a raw buffer and offset
// index, e.g. parsed off the wire. The pair must satisfy the offset
// invariant.
func (col *Blob) AssignRaw(offsets []Offset, chars []byte) error {
	col.ensureMutable()
	if err := ValidateOffsets(offsets, len(chars)); err != nil {
		return err
	}
	col.Offsets = offsets
	col.Chars = chars
	return nil
}

// ValidateOffsets checks the offset invariant for a raw offset index
// against a buffer length: non-decreasing and bounded by charsLen.
func ValidateOffsets(offsets []Offset, charsLen int) error {
	var prev Offset
	for i, off := range offsets {
		if off < prev {
			return errors.Wrapf(ErrSizeMismatch, "offset %d decreases at row %d", off, i)
		}
		prev = off
	}
	if len(offsets) > 0 && int(prev) != charsLen {
		return errors.Wrapf(ErrSizeMismatch, "last offset %d != buffer length %d", prev, charsLen)
	}
	if len(offsets) == 0 && charsLen != 0 {
		return errors.Wrapf(ErrSizeMismatch, "zero rows but buffer length %d", charsLen)
	}
	return nil
}

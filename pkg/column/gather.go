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

package column

import (
	"github.com/cockroachdb/errors"
)

// NullIndex marks a position of InsertIndicesFrom that takes a default
// row instead of a source row.
const NullIndex = -1

// InsertRangeFrom appends rows [start, start+length) of src. The row
// bytes move in one bulk copy, then each appended offset is rebased by
// arithmetic, so the cost is O(bytes copied), not O(rows) small
// copies.
func (col *Blob) InsertRangeFrom(src *Blob, start, length int) error {
	col.ensureMutable()
	if length == 0 {
		return nil
	}

	if start+length > src.Size() {
		return errors.Wrapf(ErrOutOfBounds,
			"insert range [%d,%d) of %d rows", start, start+length, src.Size())
	}

	nestedOffset := src.OffsetAt(start)
	nestedLength := src.Offsets[start+length-1] - nestedOffset

	col.Chars = append(col.Chars, src.Chars[nestedOffset:nestedOffset+nestedLength]...)

	if start == 0 && len(col.Offsets) == 0 {
		col.Offsets = append(col.Offsets, src.Offsets[:length]...)
	} else {
		var prevMaxOffset Offset
		if len(col.Offsets) > 0 {
			prevMaxOffset = col.Offsets[len(col.Offsets)-1]
		}
		for i := 0; i < length; i++ {
			col.Offsets = append(col.Offsets,
				src.Offsets[start+i]-nestedOffset+prevMaxOffset)
		}
	}
	return nil
}

// InsertIndicesFrom appends one row per index: row indices[i] of src,
// or a default row where the index is NullIndex. Used for null
// substituted gathers on the outer side of joins. Indices are checked
// up front; a failed call leaves the receiver unchanged.
func (col *Blob) InsertIndicesFrom(src *Blob, indices []int) error {
	col.ensureMutable()
	for _, idx := range indices {
		if idx == NullIndex {
			continue
		}
		if idx < 0 || idx >= src.Size() {
			return errors.Wrapf(ErrOutOfBounds,
				"insert index %d of %d rows", idx, src.Size())
		}
	}
	for _, idx := range indices {
		if idx == NullIndex {
			col.InsertDefault()
		} else {
			col.appendRow(src.DataAt(idx))
		}
	}
	return nil
}

// Filter returns a new column with the rows whose mask position is
// true, in their original order. sizeHint pre-sizes the result and
// never changes the output.
func (col *Blob) Filter(mask []bool, sizeHint int) (*Blob, error) {
	res := NewBlob()
	if col.Size() == 0 {
		return res, nil
	}
	if len(mask) != col.Size() {
		return nil, errors.Wrapf(ErrSizeMismatch,
			"filter mask of %d entries on %d rows", len(mask), col.Size())
	}

	if sizeHint > 0 {
		res.Offsets = make([]Offset, 0, sizeHint)
		res.Chars = make([]byte, 0, sizeHint*col.ByteSize()/col.Size())
	}

	for i, keep := range mask {
		if keep {
			res.appendRow(col.DataAt(i))
		}
	}
	return res, nil
}

// Index builds a new column with row indexes[i] at position i for i in
// [0, limit). Indexes may repeat and need not be monotonic. The output
// buffer is sized with one pass over the indexes before any copy.
func (col *Blob) Index(indexes []int, limit int) (*Blob, error) {
	res := NewBlob()
	if limit == 0 {
		return res, nil
	}
	if len(indexes) < limit {
		return nil, errors.Wrapf(ErrSizeMismatch,
			"%d indexes, limit %d", len(indexes), limit)
	}

	newCharsSize := 0
	for i := 0; i < limit; i++ {
		if indexes[i] < 0 || indexes[i] >= col.Size() {
			return nil, errors.Wrapf(ErrOutOfBounds,
				"index %d of %d rows", indexes[i], col.Size())
		}
		newCharsSize += col.SizeAt(indexes[i])
	}
	res.Chars = make([]byte, 0, newCharsSize)
	res.Offsets = make([]Offset, 0, limit)

	for i := 0; i < limit; i++ {
		res.appendRow(col.DataAt(indexes[i]))
	}
	return res, nil
}

// Permute builds a new column ordered by perm. limit == 0 or beyond
// the size means the whole column.
func (col *Blob) Permute(perm []int, limit int) (*Blob, error) {
	size := col.Size()

	if limit == 0 {
		limit = size
	} else {
		limit = min(size, limit)
	}

	if len(perm) < limit {
		return nil, errors.Wrapf(ErrSizeMismatch,
			"permutation of %d entries, limit %d", len(perm), limit)
	}

	return col.Index(perm, limit)
}

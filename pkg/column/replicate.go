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

// Replicate expands the column by a cumulative plan: replicateOffsets[i]
// is the running total of output occurrences after row i. Equivalent to
// ReplicateCounts on the per row differences.
func (col *Blob) Replicate(replicateOffsets []Offset) (*Blob, error) {
	colSize := col.Size()
	if colSize != len(replicateOffsets) {
		return nil, errors.Wrapf(ErrSizeMismatch,
			"replicate plan of %d entries on %d rows", len(replicateOffsets), colSize)
	}

	counts := make([]uint32, colSize)
	var prev Offset
	for i, off := range replicateOffsets {
		if off < prev {
			return nil, errors.Wrapf(ErrSizeMismatch,
				"replicate offsets decrease at row %d", i)
		}
		counts[i] = uint32(off - prev)
		prev = off
	}
	return col.replicateCounts(counts, int(prev)), nil
}

// ReplicateCounts expands the column by per row repeat counts: row i
// appears counts[i] times in the output, rows in original order. A
// count of zero drops the row; all ones is the identity copy.
func (col *Blob) ReplicateCounts(counts []uint32) (*Blob, error) {
	colSize := col.Size()
	if colSize != len(counts) {
		return nil, errors.Wrapf(ErrSizeMismatch,
			"replicate counts of %d entries on %d rows", len(counts), colSize)
	}
	targetSize := 0
	for _, c := range counts {
		targetSize += int(c)
	}
	return col.replicateCounts(counts, targetSize), nil
}

func (col *Blob) replicateCounts(counts []uint32, targetSize int) *Blob {
	res := NewBlob()
	colSize := col.Size()
	if colSize == 0 {
		return res
	}

	res.Chars = make([]byte, 0, col.ByteSize()/colSize*targetSize)
	res.Offsets = make([]Offset, 0, targetSize)

	for i := 0; i < colSize; i++ {
		row := col.DataAt(i)
		for j := uint32(0); j < counts[i]; j++ {
			res.appendRow(row)
		}
	}
	return res
}

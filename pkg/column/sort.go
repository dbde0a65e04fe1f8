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
	"bytes"
	"sort"

	"github.com/daviszhen/blobvec/pkg/util"
)

// Collator is an opaque total order over logical row content, e.g. a
// locale aware comparison. Compare follows the bytes.Compare contract.
type Collator interface {
	Compare(lhs, rhs []byte) int
}

func (col *Blob) lessAt(lhs, rhs int) bool {
	return bytes.Compare(col.LogicalAt(lhs), col.LogicalAt(rhs)) < 0
}

// GetPermutation returns row indices ordered by byte lexicographic
// comparison of logical content. limit == 0 or >= Size() sorts fully;
// otherwise only the first limit positions are ordered and the rest
// are arbitrary. The sort is not stable: equal rows may come out in
// any relative order.
func (col *Blob) GetPermutation(reverse bool, limit int) []int {
	var less func(lhs, rhs int) bool
	if reverse {
		less = func(lhs, rhs int) bool { return col.lessAt(rhs, lhs) }
	} else {
		less = col.lessAt
	}
	return col.sortedPermutation(less, limit)
}

// GetPermutationWithCollation is GetPermutation with the Collator in
// place of byte comparison, over the same logical byte ranges.
func (col *Blob) GetPermutationWithCollation(collator Collator, reverse bool, limit int) []int {
	var less func(lhs, rhs int) bool
	if reverse {
		less = func(lhs, rhs int) bool {
			return collator.Compare(col.LogicalAt(rhs), col.LogicalAt(lhs)) < 0
		}
	} else {
		less = func(lhs, rhs int) bool {
			return collator.Compare(col.LogicalAt(lhs), col.LogicalAt(rhs)) < 0
		}
	}
	return col.sortedPermutation(less, limit)
}

func (col *Blob) sortedPermutation(less func(lhs, rhs int) bool, limit int) []int {
	s := col.Size()
	res := make([]int, s)
	for i := 0; i < s; i++ {
		res[i] = i
	}

	if limit >= s {
		limit = 0
	}

	if limit > 0 {
		partialSort(res, limit, less)
	} else {
		sort.Slice(res, func(i, j int) bool {
			return less(res[i], res[j])
		})
	}
	return res
}

// partialSort orders data so that data[0:k] holds the k least elements
// in ascending order under less. Classic heap selection: a max heap
// over the first k entries, then one pass over the rest, then heap
// sort of the prefix.
func partialSort(data []int, k int, less func(lhs, rhs int) bool) {
	if k <= 0 || len(data) == 0 {
		return
	}
	for root := k/2 - 1; root >= 0; root-- {
		siftDown(data, root, k, less)
	}
	for i := k; i < len(data); i++ {
		if less(data[i], data[0]) {
			util.Swap(data, 0, i)
			siftDown(data, 0, k, less)
		}
	}
	for end := k - 1; end > 0; end-- {
		util.Swap(data, 0, end)
		siftDown(data, 0, end, less)
	}
}

func siftDown(data []int, root, end int, less func(lhs, rhs int) bool) {
	for {
		child := 2*root + 1
		if child >= end {
			return
		}
		if child+1 < end && less(data[child], data[child+1]) {
			child++
		}
		if !less(data[root], data[child]) {
			return
		}
		util.Swap(data, root, child)
		root = child
	}
}

// CompareAt compares row n of the receiver with row m of other by
// logical content bytes.
func (col *Blob) CompareAt(n, m int, other *Blob) int {
	return bytes.Compare(col.LogicalAt(n), other.LogicalAt(m))
}

// CompareAtWithCollation is the collated two row comparison used
// outside full sorts, e.g. merge join tie breaks.
func (col *Blob) CompareAtWithCollation(n, m int, other *Blob, collator Collator) int {
	return collator.Compare(col.LogicalAt(n), other.LogicalAt(m))
}

// GetExtremes returns copies of the least and greatest logical values
// under byte comparison, found in one linear scan. An empty column
// yields two empty values.
func (col *Blob) GetExtremes() (minVal, maxVal []byte) {
	minVal = []byte{}
	maxVal = []byte{}

	if util.Empty(col.Offsets) {
		return
	}
	colSize := col.Size()

	minIdx := 0
	maxIdx := 0
	for i := 1; i < colSize; i++ {
		if col.lessAt(i, minIdx) {
			minIdx = i
		} else if col.lessAt(maxIdx, i) {
			maxIdx = i
		}
	}

	minVal = util.CopyTo(col.LogicalAt(minIdx))
	maxVal = util.CopyTo(col.LogicalAt(maxIdx))
	return
}

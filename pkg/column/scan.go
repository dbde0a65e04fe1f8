package column

import (
	"bytes"
	"context"
	"slices"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/daviszhen/blobvec/pkg/util"
)

// ScanShards runs visit over [0, Size()) split into shards, one
// goroutine each. The column must be protected first: concurrent reads
// are only safe once no writer can exist. A panic inside visit comes
// back as an error instead of taking the process down.
func ScanShards(ctx context.Context, col *Blob, shards int, visit func(start, end int) error) error {
	if !col.Protected() {
		return errors.New("shard scan over an unprotected column")
	}
	if shards <= 0 {
		shards = 1
	}

	size := col.Size()
	per := (size + shards - 1) / shards

	g, _ := errgroup.WithContext(ctx)
	for start := 0; start < size; start += per {
		start, end := start, min(start+per, size)
		g.Go(func() (err error) {
			defer func() {
				if v := recover(); v != nil {
					err = util.ConvertPanicError(v)
				}
			}()
			return visit(start, end)
		})
	}
	return g.Wait()
}

// ParallelExtremes is GetExtremes over a protected column with the
// scan fanned out across shards.
func ParallelExtremes(ctx context.Context, col *Blob, shards int) (minVal, maxVal []byte, err error) {
	minVal = []byte{}
	maxVal = []byte{}
	if col.Size() == 0 {
		if !col.Protected() {
			err = errors.New("shard scan over an unprotected column")
		}
		return
	}
	if shards <= 0 {
		shards = 1
	}

	// per shard extreme row indices, First = min, Second = max
	results := make([]*util.Pair[int, int], 0, shards)
	resultAt := make(map[int]*util.Pair[int, int], shards)
	per := (col.Size() + shards - 1) / shards
	for start := 0; start < col.Size(); start += per {
		e := &util.Pair[int, int]{First: start, Second: start}
		results = append(results, e)
		resultAt[start] = e
	}

	err = ScanShards(ctx, col, shards, func(start, end int) error {
		e := resultAt[start]
		for i := start + 1; i < end; i++ {
			if col.lessAt(i, e.First) {
				e.First = i
			} else if col.lessAt(e.Second, i) {
				e.Second = i
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	minIdx := results[0].First
	maxIdx := results[0].Second
	for _, e := range results[1:] {
		if col.lessAt(e.First, minIdx) {
			minIdx = e.First
		}
		if col.lessAt(maxIdx, e.Second) {
			maxIdx = e.Second
		}
	}
	minVal = util.CopyTo(col.LogicalAt(minIdx))
	maxVal = util.CopyTo(col.LogicalAt(maxIdx))
	return
}

// RowsEqual reports whether two columns hold byte identical rows.
func RowsEqual(lhs, rhs *Blob) bool {
	if lhs.Size() != rhs.Size() {
		return false
	}
	return bytes.Equal(lhs.Chars, rhs.Chars) &&
		slices.Equal(lhs.Offsets, rhs.Offsets)
}

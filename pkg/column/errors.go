package column

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrOutOfBounds reports an index or row range beyond the size of
	// the source column.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrSizeMismatch reports a permutation, filter mask or replication
	// plan whose length does not match what the operation requires.
	ErrSizeMismatch = errors.New("size mismatch")
)

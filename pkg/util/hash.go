package util

import (
	"github.com/cespare/xxhash/v2"
)

// HashBytes hashes a byte range into a 64 bit key suitable for
// grouping and distinct counting.
func HashBytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}

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
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/daviszhen/blobvec/pkg/util"
)

// ArenaKeyPrefixSize is the fixed width of the length prefix of an
// arena encoded key: 8 bytes, little endian.
const ArenaKeyPrefixSize = 8

const minArenaChunkSize = 4096

type arenaChunk struct {
	buf []byte
	pos int
}

// Arena is an append only allocator for the duration of one build
// phase, e.g. materializing group by keys. Returned spans stay valid
// until the arena is dropped; nothing is freed or moved once a
// subsequent allocation starts.
type Arena struct {
	head   *arenaChunk
	chunks []*arenaChunk
}

func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) newChunk(size int) {
	if size < minArenaChunkSize {
		size = minArenaChunkSize
	} else {
		size = int(util.NextPowerOfTwo(uint64(size)))
	}
	a.head = &arenaChunk{buf: make([]byte, size)}
	a.chunks = append(a.chunks, a.head)
}

// Alloc returns a zeroed span of size bytes.
func (a *Arena) Alloc(size int) []byte {
	if a.head == nil || a.head.pos+size > len(a.head.buf) {
		a.newChunk(size)
	}
	res := a.head.buf[a.head.pos : a.head.pos+size]
	a.head.pos += size
	return res
}

// AllocContinue grows the span *begin by size contiguous bytes and
// returns the added part. On the first call *begin must be empty; it
// is updated to cover the whole range. A span under construction may
// move to a fresh chunk, so only the caller building it may hold
// references into it. No other allocation may interleave while a span
// is being continued.
func (a *Arena) AllocContinue(size int, begin *[]byte) []byte {
	if len(*begin) == 0 {
		res := a.Alloc(size)
		*begin = res
		return res
	}

	prev := len(*begin)
	if a.head.pos+size <= len(a.head.buf) {
		start := a.head.pos - prev
		util.AssertFunc(start >= 0)
		res := a.head.buf[a.head.pos : a.head.pos+size]
		a.head.pos += size
		*begin = a.head.buf[start : start+prev+size]
		return res
	}

	// relocate the unfinished span to a fresh chunk
	old := *begin
	a.newChunk(prev + size)
	copy(a.head.buf, old)
	a.head.pos = prev + size
	*begin = a.head.buf[:prev+size]
	return a.head.buf[prev : prev+size]
}

// SerializeValueIntoArena writes row i as a self describing key,
// [stored size as 8 byte little endian][stored bytes, terminator
// included], continuing the span at *begin. The returned slice covers
// the bytes written for this row. Once written the key no longer
// depends on the column.
func (col *Blob) SerializeValueIntoArena(i int, arena *Arena, begin *[]byte) []byte {
	stringSize := col.SizeAt(i)

	pos := arena.AllocContinue(ArenaKeyPrefixSize+stringSize, begin)
	binary.LittleEndian.PutUint64(pos[:ArenaKeyPrefixSize], uint64(stringSize))
	copy(pos[ArenaKeyPrefixSize:], col.DataAt(i))
	return pos
}

// DeserializeAndInsertFromArena reads one arena encoded key at the
// start of pos, appends it as a new row and returns the advanced read
// cursor. Round trip with SerializeValueIntoArena is byte identical.
func (col *Blob) DeserializeAndInsertFromArena(pos []byte) ([]byte, error) {
	col.ensureMutable()
	if len(pos) < ArenaKeyPrefixSize {
		return nil, errors.Wrapf(ErrOutOfBounds,
			"arena key prefix needs %d bytes, have %d", ArenaKeyPrefixSize, len(pos))
	}
	stringSize := int(binary.LittleEndian.Uint64(pos[:ArenaKeyPrefixSize]))
	pos = pos[ArenaKeyPrefixSize:]
	if len(pos) < stringSize {
		return nil, errors.Wrapf(ErrOutOfBounds,
			"arena key of %d bytes, have %d", stringSize, len(pos))
	}

	col.appendRow(pos[:stringSize])
	return pos[stringSize:], nil
}

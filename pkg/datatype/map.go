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
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/daviszhen/blobvec/pkg/util"
)

// ErrMalformedLiteral reports user input that is not a valid map
// literal. Always recoverable; the column is left exactly as before
// the failed parse.
var ErrMalformedLiteral = errors.New("malformed map literal")

// MapColumn stores maps as two parallel array columns with identical
// pair counts per row.
type MapColumn struct {
	Keys   *ArrayColumn
	Values *ArrayColumn
}

func NewMapColumn() *MapColumn {
	return &MapColumn{
		Keys:   NewArrayColumn(),
		Values: NewArrayColumn(),
	}
}

func (col *MapColumn) Size() int {
	return col.Keys.Size()
}

// PairCountAt returns the number of key/value pairs of row i.
func (col *MapColumn) PairCountAt(i int) int {
	return col.Keys.LengthAt(i)
}

// InsertDefault appends an empty map row.
func (col *MapColumn) InsertDefault() {
	col.Keys.InsertDefault()
	col.Values.InsertDefault()
}

func (col *MapColumn) Protect() {
	col.Keys.Protect()
	col.Values.Protect()
}

// MapType handles the textual map literal grammar and the recursive
// wire format of MapColumn.
type MapType struct{}

// ToString renders row i as {'k':'v', ...}; FromString accepts the
// output.
func (MapType) ToString(col *MapColumn, i int) string {
	var sb strings.Builder
	sb.WriteByte('{')
	start := int(col.Keys.OffsetAt(i))
	end := int(col.Keys.Offsets[i])
	for j := start; j < end; j++ {
		if j != start {
			sb.WriteString(", ")
		}
		sb.WriteByte('\'')
		sb.Write(col.Keys.Data.LogicalAt(j))
		sb.WriteString("':'")
		sb.Write(col.Values.Data.LogicalAt(j))
		sb.WriteByte('\'')
	}
	sb.WriteByte('}')
	return sb.String()
}

type readBuffer struct {
	data []byte
	pos  int
}

func (rb *readBuffer) eof() bool {
	return rb.pos >= len(rb.data)
}

func (rb *readBuffer) count() int {
	return len(rb.data) - rb.pos
}

func (rb *readBuffer) cur() byte {
	return rb.data[rb.pos]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// nextSlot consumes one key or value token up to the next ':', ',' or
// the closing '}'. Tokens may be single or double quoted with matching
// quote chars; unquoted tokens are trimmed of surrounding whitespace.
func nextSlot(rb *readBuffer) ([]byte, bool) {
	if rb.eof() {
		return nil, false
	}

	// ltrim
	for !rb.eof() && isSpace(rb.cur()) {
		rb.pos++
	}
	if rb.eof() {
		return nil, false
	}

	elemStart := rb.pos
	elemLen := 0

	hasQuote := false
	if rb.cur() == '"' || rb.cur() == '\'' {
		sep := rb.cur()
		strLen := 1
		for strLen < rb.count() && rb.data[rb.pos+strLen] != sep {
			strLen++
		}
		// non-terminated quote
		if strLen >= rb.count() {
			rb.pos = len(rb.data)
			return nil, false
		}
		hasQuote = true
		rb.pos += strLen + 1
		elemLen += strLen + 1
	}

	// consume up to the separator; after a quoted token only
	// whitespace may remain
	for !rb.eof() && rb.cur() != ':' && rb.cur() != ',' &&
		(rb.count() != 1 || rb.cur() != '}') {
		if hasQuote && !isSpace(rb.cur()) {
			return nil, false
		}
		rb.pos++
		elemLen++
	}
	if rb.eof() {
		return nil, false
	}
	// step onto the next token
	rb.pos++

	elem := rb.data[elemStart : elemStart+elemLen]

	// rtrim
	for len(elem) > 0 && isSpace(elem[len(elem)-1]) {
		elem = elem[:len(elem)-1]
	}

	// strip matching quotes
	if len(elem) >= 2 && (elem[0] == '"' || elem[0] == '\'') &&
		elem[0] == elem[len(elem)-1] {
		elem = elem[1 : len(elem)-1]
	}
	return elem, true
}

// FromString parses one map literal and appends it as a new row. The
// literal is '{' '}' delimited, {} is the empty map, otherwise a comma
// separated list of key:value pairs. A malformed literal leaves the
// column untouched.
func (MapType) FromString(text string, col *MapColumn) error {
	// read only scan; inserted slots are copied by InsertData
	rb := &readBuffer{data: util.UnsafeStringToBytes(text)}
	if rb.eof() {
		return errors.Wrap(ErrMalformedLiteral, "empty input")
	}
	if rb.cur() != '{' {
		return errors.Wrapf(ErrMalformedLiteral,
			"map does not start with '{' character, found %q", rb.cur())
	}
	if rb.data[len(rb.data)-1] != '}' {
		return errors.Wrapf(ErrMalformedLiteral,
			"map does not end with '}' character, found %q", rb.data[len(rb.data)-1])
	}

	if rb.count() == 2 {
		// empty map {}, only the offset advances
		col.InsertDefault()
		return nil
	}

	// skip '{'
	rb.pos++

	elementNum := 0
	rollback := func() {
		col.Keys.Data.PopBack(elementNum)
		col.Values.Data.PopBack(elementNum)
	}
	for !rb.eof() {
		rest := rb.data[rb.pos:]
		keyElement, ok := nextSlot(rb)
		if !ok {
			rollback()
			return errors.Wrapf(ErrMalformedLiteral,
				"cannot read map key from text %q", rest)
		}
		rest = rb.data[min(rb.pos, len(rb.data)):]
		valueElement, ok := nextSlot(rb)
		if !ok {
			rollback()
			return errors.Wrapf(ErrMalformedLiteral,
				"cannot read map value from text %q", rest)
		}

		col.Keys.Data.InsertData(keyElement)
		col.Values.Data.InsertData(valueElement)
		elementNum++
	}
	col.Keys.PushOffset(elementNum)
	col.Values.PushOffset(elementNum)
	return nil
}

// GetUncompressedSerializedBytes sums both parts; the pre-allocation
// contract of Serialize holds recursively.
func (MapType) GetUncompressedSerializedBytes(col *MapColumn) int64 {
	return ArrayType{}.GetUncompressedSerializedBytes(col.Keys) +
		ArrayType{}.GetUncompressedSerializedBytes(col.Values)
}

// Serialize writes the key array then the value array, with no extra
// length prefix at this level.
func (MapType) Serialize(col *MapColumn, buf []byte) []byte {
	buf = ArrayType{}.Serialize(col.Keys, buf)
	return ArrayType{}.Serialize(col.Values, buf)
}

func (MapType) Deserialize(buf []byte, col *MapColumn) ([]byte, error) {
	buf, err := ArrayType{}.Deserialize(buf, col.Keys)
	if err != nil {
		return nil, err
	}
	return ArrayType{}.Deserialize(buf, col.Values)
}

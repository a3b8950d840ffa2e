// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package binaryxml

import (
	"bytes"
	eb "encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/google/apkpatch/core/data/binary"
)

type stringPoolRef struct {
	sp  *stringPool
	idx uint32
}

const missingString = 0xffffffff

var invalidStringPoolRef stringPoolRef = stringPoolRef{nil, missingString}

func (r stringPoolRef) isValid() bool {
	return r.idx != missingString && r.sp != nil
}

func (r stringPoolRef) encode(w binary.Writer) {
	w.Uint32(r.stringPoolIndex())
}

func (r stringPoolRef) stringPoolIndex() uint32 {
	if !r.isValid() {
		return missingString
	} else {
		return uint32(r.sp.ptrs[r.idx])
	}
}

func (r stringPoolRef) get() string {
	if r.isValid() && int(r.idx) < len(r.sp.ptrs) {
		return r.sp.strings[r.sp.ptrs[r.idx]]
	}
	return fmt.Sprintf("Resource<0x%x>", r.idx)
}

const (
	sortedFlag = 1 << 0
	utf8Flag   = 1 << 8
)

// stringPoolHeaderSize is the size of the chunk header plus the five uint32s
// of the string pool header.
const stringPoolHeaderSize = chunkHeaderSize + 5*4

// maxUTF8Length is the longest length that fits the two byte form of the
// UTF-8 pool length prefix.
const maxUTF8Length = 0x7fff

// See:
// https://android.googlesource.com/platform/frameworks/base/+/master/tools/aapt2/StringPool.cpp
type stringPool struct {
	rootHolder
	strings []string
	flags   uint32
	ptrs    []int // ptrs maps indices in stringPoolRefs to indices in the raw strings array.
}

func (c *stringPool) decode(header, data []byte) error {
	// dataOffset is the offset of data relative to the start of the chunk.
	dataOffset := uint32(chunkHeaderSize + len(header))

	r := newReader(header)
	stringCount := r.Uint32()
	styleCount := r.Uint32()
	c.flags = r.Uint32()
	stringsStart := r.Uint32()
	r.Uint32() // stylesStart
	if err := r.Error(); err != nil {
		return err
	}
	if styleCount > 0 {
		return malformed("Styled strings are not supported in a binary XML string pool")
	}
	if uint64(stringCount)*4 > uint64(len(data)) {
		return malformed("String pool claims %d strings in %d bytes", stringCount, len(data))
	}

	r = newReader(data)
	indices := make([]uint32, stringCount)
	for i := range indices {
		indices[i] = r.Uint32()
	}

	c.ptrs = make([]int, stringCount)
	c.strings = make([]string, stringCount)
	if stringCount == 0 {
		return r.Error()
	}
	if stringsStart < dataOffset || stringsStart-dataOffset > uint32(len(data)) {
		return malformed("String data offset %d out of range", stringsStart)
	}
	strs := data[stringsStart-dataOffset:]
	for i := range c.strings {
		if indices[i] >= uint32(len(strs)) {
			return malformed("String %d offset %d out of range", i, indices[i])
		}
		var err error
		if c.flags&utf8Flag != 0 {
			c.strings[i], err = utf8DecodeStringPoolEntry(strs[indices[i]:])
		} else {
			c.strings[i], err = utf16DecodeStringPoolEntry(strs[indices[i]:])
		}
		if err != nil {
			return err
		}
		c.ptrs[i] = i
	}
	return r.Error()
}

func (stringPool) xml(*xmlContext) string { return "" }

func utf16DecodeStringPoolEntry(b []byte) (string, error) {
	if len(b) < 2 {
		return "", malformed("Truncated UTF-16 string length")
	}
	length := uint32(eb.LittleEndian.Uint16(b))
	b = b[2:]
	if length&0x8000 != 0 {
		if len(b) < 2 {
			return "", malformed("Truncated UTF-16 string length")
		}
		length = (length&0x7fff)<<16 | uint32(eb.LittleEndian.Uint16(b))
		b = b[2:]
	}
	if uint64(length)*2 > uint64(len(b)) {
		return "", malformed("UTF-16 string of %d units overruns the pool", length)
	}
	str := make([]uint16, length)
	for i := range str {
		str[i] = eb.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(str)), nil
}

func utf8DecodeLength(b []byte) (int, []byte, error) {
	if len(b) < 1 {
		return 0, nil, malformed("Truncated UTF-8 string length")
	}
	length := int(b[0])
	if length&0x80 == 0 {
		return length, b[1:], nil
	}
	if len(b) < 2 {
		return 0, nil, malformed("Truncated UTF-8 string length")
	}
	return (length&0x7f)<<8 | int(b[1]), b[2:], nil
}

func utf8DecodeStringPoolEntry(b []byte) (string, error) {
	// The UTF-16 length comes first and is only needed by the runtime.
	_, b, err := utf8DecodeLength(b)
	if err != nil {
		return "", err
	}
	length, b, err := utf8DecodeLength(b)
	if err != nil {
		return "", err
	}
	if length > len(b) {
		return "", malformed("UTF-8 string of %d bytes overruns the pool", length)
	}
	return string(b[:length]), nil
}

func utf16EncodeStringPoolEntry(str string) []byte {
	var b bytes.Buffer
	w := newWriter(&b)
	runes := utf16.Encode([]rune(str))
	if len(runes) > 0x7fff {
		w.Uint16(uint16(len(runes)>>16) | 0x8000)
	}
	w.Uint16(uint16(len(runes)))
	for _, rune := range runes {
		w.Uint16(rune)
	}
	w.Uint16(0) /* bin_xml.py says so */
	return b.Bytes()
}

func utf8EncodeLength(w binary.Writer, length int) {
	if length > 0x7f {
		w.Uint8(uint8(length>>8) | 0x80)
	}
	w.Uint8(uint8(length))
}

func utf8EncodeStringPoolEntry(str string) []byte {
	var b bytes.Buffer
	w := newWriter(&b)
	utf8EncodeLength(w, len(utf16.Encode([]rune(str))))
	utf8EncodeLength(w, len(str))
	w.Data([]byte(str))
	w.Uint8(0)
	return b.Bytes()
}

// fitsUTF8 returns true if every string can be written with the UTF-8
// length prefixes.
func (c *stringPool) fitsUTF8() bool {
	for _, str := range c.strings {
		if len(str) > maxUTF8Length || len(utf16.Encode([]rune(str))) > maxUTF8Length {
			return false
		}
	}
	return true
}

func (c *stringPool) encode() []byte {
	if c.flags&utf8Flag != 0 && !c.fitsUTF8() {
		c.flags &^= utf8Flag
	}

	return encodeChunk(resStringPoolType, func(w binary.Writer) {
		w.Uint32(uint32(len(c.strings)))
		w.Uint32(0) // styleCount
		w.Uint32(c.flags)
		w.Uint32(uint32(stringPoolHeaderSize + len(c.strings)*4)) // strings start after header and indices
		w.Uint32(0)                                               // stylesStart
	}, func(w binary.Writer) {
		encodedStrings := make([][]byte, len(c.strings))
		for i, str := range c.strings {
			if c.flags&utf8Flag != 0 {
				encodedStrings[i] = utf8EncodeStringPoolEntry(str)
			} else {
				encodedStrings[i] = utf16EncodeStringPoolEntry(str)
			}
		}

		// encode indices
		index := 0
		for _, es := range encodedStrings {
			w.Uint32(uint32(index))
			index += len(es)
		}

		// encode actual strings
		for _, es := range encodedStrings {
			w.Data(es)
		}

		// pad the chunk to a multiple of four bytes
		binary.WriteBytes(w, 0, (4-index%4)%4)
	})
}

// findFromStringPoolIndex returns a pool reference for the string at the given
// index in the encoded pool.
func (p *stringPool) findFromStringPoolIndex(idx uint32) (stringPoolRef, bool) {
	for i, ptr := range p.ptrs {
		if uint32(ptr) == idx {
			return stringPoolRef{p, uint32(i)}, true
		}
	}
	return invalidStringPoolRef, false
}

func (p *stringPool) find(str string) (stringPoolRef, bool) {
	for i, ptr := range p.ptrs {
		if p.strings[ptr] == str {
			return stringPoolRef{p, uint32(i)}, true
		}
	}
	return invalidStringPoolRef, false
}

// ref returns a reference to str, appending it to the pool if it is not
// already present.
func (p *stringPool) ref(str string) stringPoolRef {
	ref, found := p.find(str)
	if found {
		return ref
	}
	return p.insertStringAtIndex(str, len(p.strings))
}

// insertStringAtIndex inserts a string at a given index in the pool and then
// updates the ptrs array, so that existing pool references continue to work.
// This index is the final position of the string in the encoded string pool.
func (p *stringPool) insertStringAtIndex(str string, index int) stringPoolRef {
	p.strings = append(p.strings[0:index], append([]string{str}, p.strings[index:]...)...)
	for i, ptr := range p.ptrs {
		if ptr >= index {
			p.ptrs[i] = ptr + 1
		}
	}
	p.ptrs = append(p.ptrs, index)
	// The pool is no longer guaranteed to be in sorted order.
	p.flags &^= sortedFlag
	return stringPoolRef{p, uint32(len(p.ptrs) - 1)}
}

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
	"context"
	eb "encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/google/apkpatch/core/data/binary"
	"github.com/google/apkpatch/core/data/endian"
	"github.com/google/apkpatch/core/fault"
	"github.com/google/apkpatch/core/log"
)

// AOSP references:
// https://android.googlesource.com/platform/frameworks/base/+/master/tools/aapt2/XmlFlattener.cpp
// https://android.googlesource.com/platform/frameworks/base/+/master/include/androidfw/ResourceTypes.h

const (
	resNullType              = 0x0000
	resStringPoolType        = 0x0001
	resTableType             = 0x0002
	resXMLType               = 0x0003
	resXMLFirstChunkType     = 0x0100
	resXMLStartNamespaceType = 0x0100
	resXMLEndNamespaceType   = 0x0101
	resXMLStartElementType   = 0x0102
	resXMLEndElementType     = 0x0103
	resXMLCDataType          = 0x0104
	resXMLLastChunkType      = 0x017f
	resXMLResourceMapType    = 0x0180
)

const chunkHeaderSize = 8

const (
	beforeContextChange = 0x00
	afterContextChange  = 0x01
)

// ErrMalformed is the cause of every error returned for input that is not a
// well formed binary XML document.
const ErrMalformed = fault.Const("Malformed binary XML")

func malformed(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformed, format, args...)
}

type chunkVisitor func(*xmlContext, chunk, int)

type contextChange interface {
	updateContext(*xmlContext)
}

// Decode decodes a binary Android XML file to a string.
func Decode(ctx context.Context, data []byte) (string, error) {
	xmlTree, err := decodeXmlTree(data)
	if err != nil {
		return "", log.Err(ctx, err, "Decoding binary XML")
	}
	return xmlTree.toXmlString(), nil
}

type rootHolder struct {
	rootNode *xmlTree
}

func (rh *rootHolder) root() *xmlTree {
	return rh.rootNode
}

func (rh *rootHolder) setRoot(x *xmlTree) {
	rh.rootNode = x
}

type chunk interface {
	root() *xmlTree
	setRoot(x *xmlTree)

	decode(header, data []byte) error
	xml(*xmlContext) string
	encode() []byte
}

func newReader(data []byte) binary.Reader {
	return endian.Reader(bytes.NewReader(data), eb.LittleEndian)
}

func newWriter(w io.Writer) binary.Writer {
	return endian.Writer(w, eb.LittleEndian)
}

// decodeXmlTree decodes a whole document. The buffer must hold exactly one
// XML chunk.
func decodeXmlTree(data []byte) (*xmlTree, error) {
	c, size, err := decodeChunk(data, nil)
	if err != nil {
		return nil, err
	}
	tree := c.(*xmlTree)
	if size != len(data) {
		return nil, malformed("%d trailing bytes after the document", len(data)-size)
	}
	return tree, nil
}

// decodeChunk decodes the chunk at the start of data, returning the chunk and
// the number of bytes it occupies. When x is nil the chunk must be a document,
// which then becomes the root of all the chunks it contains.
func decodeChunk(data []byte, x *xmlTree) (chunk, int, error) {
	if len(data) < chunkHeaderSize {
		return nil, 0, malformed("Truncated chunk header (%d bytes)", len(data))
	}
	r := newReader(data)
	ty := r.Uint16()
	headerSize := r.Uint16()
	size := r.Uint32()
	if headerSize < chunkHeaderSize {
		return nil, 0, malformed("Unexpected header size %d", headerSize)
	}
	if uint32(headerSize) > size || uint64(size) > uint64(len(data)) {
		return nil, 0, malformed("Chunk type 0x%x claims %d bytes (header %d) with %d available",
			ty, size, headerSize, len(data))
	}
	header := data[chunkHeaderSize:headerSize]
	body := data[headerSize:size]

	if x == nil && ty != resXMLType {
		return nil, 0, malformed("Expected XML document chunk, found chunk type 0x%x", ty)
	}

	var c chunk
	switch ty {
	case resXMLResourceMapType:
		c = &xmlResourceMap{}
	case resStringPoolType:
		c = &stringPool{}
	case resXMLCDataType:
		c = &xmlCData{}
	case resXMLEndElementType:
		c = &xmlEndElement{}
	case resXMLEndNamespaceType:
		c = &xmlEndNamespace{}
	case resXMLStartElementType:
		c = &xmlStartElement{}
	case resXMLStartNamespaceType:
		c = &xmlStartNamespace{}
	case resXMLType:
		if x != nil {
			return nil, 0, malformed("Nested XML document chunk")
		}
		x = &xmlTree{}
		c = x
	default:
		return nil, 0, malformed("Unknown chunk type 0x%x", ty)
	}
	c.setRoot(x)
	if err := c.decode(header, body); err != nil {
		switch errors.Cause(err) {
		case ErrMalformed:
			return nil, 0, err
		case io.EOF, io.ErrUnexpectedEOF:
			return nil, 0, malformed("Chunk type %T read past end of data", c)
		default:
			return nil, 0, malformed("Decoding chunk type %T: %v", c, err)
		}
	}
	return c, int(size), nil
}

// encodeChunk takes functions that output chunk-specific header and data to a writer, and then uses them to
// compute header and chunk sizes, as well as writing the whole chunk to a byte array, which is then returned.
func encodeChunk(chunkType uint16, headerf func(w binary.Writer), dataf func(w binary.Writer)) []byte {
	var headerBuffer bytes.Buffer
	headerf(newWriter(&headerBuffer))
	headerBytes := headerBuffer.Bytes()

	var dataBuffer bytes.Buffer
	dataf(newWriter(&dataBuffer))
	dataBytes := dataBuffer.Bytes()

	var chunkBuffer bytes.Buffer
	w := newWriter(&chunkBuffer)
	w.Uint16(chunkType)
	w.Uint16(uint16(len(headerBytes) + chunkHeaderSize))
	w.Uint32(uint32(len(headerBytes) + len(dataBytes) + chunkHeaderSize))
	w.Data(headerBytes)
	w.Data(dataBytes)

	return chunkBuffer.Bytes()
}

// nodeHeader is the line number and comment shared by every node chunk.
type nodeHeader struct {
	lineNumber uint32
	comment    stringPoolRef
}

func (n *nodeHeader) decodeHeader(x *xmlTree, header []byte) error {
	r := newReader(header)
	n.lineNumber = r.Uint32()
	n.comment = x.decodeString(r)
	return r.Error()
}

func (n *nodeHeader) encodeHeader(w binary.Writer) {
	w.Uint32(n.lineNumber)
	n.comment.encode(w)
}

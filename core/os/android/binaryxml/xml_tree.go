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
	"fmt"

	"github.com/google/apkpatch/core/data/binary"
)

type xmlTree struct {
	rootHolder
	strings     *stringPool
	resourceMap *xmlResourceMap
	chunks      []chunk
}

func (c xmlTree) xml(ctx *xmlContext) string {
	b := bytes.Buffer{}
	for _, chunk := range c.chunks {
		s := chunk.xml(ctx)
		b.WriteString(s)
		b.WriteRune('\n')
	}
	return b.String()
}

func (c *xmlTree) newContext() *xmlContext {
	return &xmlContext{
		strings:    c.strings,
		namespaces: map[string]string{},
		tab:        "  ",
	}
}

func (c *xmlTree) visit(visitor chunkVisitor) {
	ctx := c.newContext()

	visitor(ctx, c, beforeContextChange)
	for _, chunk := range c.chunks {
		visitor(ctx, chunk, beforeContextChange)
		ctxChange, ok := chunk.(contextChange)
		if ok {
			ctxChange.updateContext(ctx)
			visitor(ctx, chunk, afterContextChange)
		}
	}
}

func (c *xmlTree) decode(header, data []byte) error {
	if len(header) != 0 {
		return malformed("Unexpected XML header size %d", chunkHeaderSize+len(header))
	}

	offset := 0
	next := func() (chunk, error) {
		chunk, size, err := decodeChunk(data[offset:], c)
		offset += size
		return chunk, err
	}

	first, err := next()
	if err != nil {
		return err
	}
	var ok bool
	if c.strings, ok = first.(*stringPool); !ok {
		return malformed("Expected string pool chunk, got %T", first)
	}

	// open holds the start chunks that are yet to be closed.
	open := []chunk{}
	for offset < len(data) {
		chunk, err := next()
		if err != nil {
			return err
		}
		switch chunk := chunk.(type) {
		case *stringPool:
			return malformed("Unexpected second string pool")
		case *xmlResourceMap:
			if c.resourceMap != nil || len(c.chunks) > 0 {
				return malformed("Unexpected resource map")
			}
			c.resourceMap = chunk
			continue
		case *xmlStartNamespace, *xmlStartElement:
			open = append(open, chunk)
		case *xmlEndElement:
			if len(open) == 0 {
				return malformed("End of element </%s> without a start", chunk.name.get())
			}
			if _, ok := open[len(open)-1].(*xmlStartElement); !ok {
				return malformed("End of element </%s> closes a namespace", chunk.name.get())
			}
			open = open[:len(open)-1]
		case *xmlEndNamespace:
			if len(open) == 0 {
				return malformed("End of namespace %s without a start", chunk.namespaceURI.get())
			}
			if _, ok := open[len(open)-1].(*xmlStartNamespace); !ok {
				return malformed("End of namespace %s closes an element", chunk.namespaceURI.get())
			}
			open = open[:len(open)-1]
		}
		c.chunks = append(c.chunks, chunk)
	}
	return nil
}

func (c *xmlTree) encode() []byte {
	return encodeChunk(resXMLType, func(w binary.Writer) {
		// No custom header.
	}, func(w binary.Writer) {
		w.Data(c.strings.encode())
		if c.resourceMap != nil {
			w.Data(c.resourceMap.encode())
		}
		for _, chunk := range c.chunks {
			w.Data(chunk.encode())
		}
	})
}

func (c *xmlTree) toXmlString() string {
	return c.xml(c.newContext())
}

func (c *xmlTree) decodeString(r binary.Reader) stringPoolRef {
	idx := r.Uint32()
	if idx == missingString || r.Error() != nil {
		return invalidStringPoolRef
	}
	if c.strings == nil || int(idx) >= len(c.strings.ptrs) {
		r.SetError(malformed("String reference %d out of range", idx))
		return invalidStringPoolRef
	}
	return stringPoolRef{c.strings, idx}
}

// ensureAttributeMapsToResource finds a name mapping to the given resource id.
// If such a name does not exist, it is added to the string pool after the last
// string associated with a resource id, shifting all the strings after it. The
// resource map is updated to associate this string's position in the pool with
// the given resource id.
func (xml *xmlTree) ensureAttributeNameMapsToResource(resourceId uint32, attrName string) (stringPoolRef, error) {
	if xml.resourceMap == nil {
		xml.resourceMap = &xmlResourceMap{}
		xml.resourceMap.setRoot(xml)
	}
	attrIdx, foundAttr := xml.resourceMap.indexOf(resourceId)
	if foundAttr {
		poolRef, found := xml.strings.findFromStringPoolIndex(attrIdx)
		if !found {
			return invalidStringPoolRef, fmt.Errorf("Resource map entry %d has no string", attrIdx)
		}
		if poolRef.get() != attrName {
			return invalidStringPoolRef, fmt.Errorf("Resource 0x%x is named %q, not %q",
				resourceId, poolRef.get(), attrName)
		}
		return poolRef, nil
	}

	insertIndex := len(xml.resourceMap.ids)
	if insertIndex > len(xml.strings.strings) {
		return invalidStringPoolRef, fmt.Errorf("Resource map is longer than the string pool")
	}
	xml.resourceMap.ids = append(xml.resourceMap.ids, resourceId)
	return xml.strings.insertStringAtIndex(attrName, insertIndex), nil
}

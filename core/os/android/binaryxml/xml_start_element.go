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
	"sort"
	"strings"

	"github.com/google/apkpatch/core/data/binary"
)

// xmlAttrExtSize is the size of the fixed part of the element body that
// precedes the attributes.
const xmlAttrExtSize = 20

type xmlStartElement struct {
	rootHolder
	nodeHeader
	namespace  stringPoolRef
	name       stringPoolRef
	attributes xmlAttributeList
	// 1-based attribute positions, 0 when absent.
	idIndex    uint16
	classIndex uint16
	styleIndex uint16
}

func (c *xmlStartElement) decode(header, data []byte) error {
	if err := c.decodeHeader(c.root(), header); err != nil {
		return err
	}

	r := newReader(data)
	c.namespace = c.root().decodeString(r)
	c.name = c.root().decodeString(r)
	attributeStart := r.Uint16()
	attributeSize := r.Uint16()
	attributeCount := r.Uint16()
	c.idIndex = r.Uint16()
	c.classIndex = r.Uint16()
	c.styleIndex = r.Uint16()
	if err := r.Error(); err != nil {
		return err
	}
	if attributeSize != xmlAttributeSize {
		return malformed("Attribute size was not as expected. Got %d, expected %d",
			attributeSize, xmlAttributeSize)
	}
	if int(attributeStart)+int(attributeCount)*xmlAttributeSize > len(data) {
		return malformed("%d attributes at offset %d overrun the element", attributeCount, attributeStart)
	}
	for _, idx := range []uint16{c.idIndex, c.classIndex, c.styleIndex} {
		if idx > attributeCount {
			return malformed("Special attribute index %d out of range", idx)
		}
	}

	r = newReader(data[attributeStart:])
	c.attributes = make([]xmlAttribute, attributeCount)
	for i := range c.attributes {
		if err := c.attributes[i].decode(r, c.root()); err != nil {
			return err
		}
	}
	return r.Error()
}

func (c *xmlStartElement) updateContext(ctx *xmlContext) {
	ctx.indent++
	ctx.stack.push(c)
}

func (c *xmlStartElement) xml(ctx *xmlContext) string {
	b := bytes.Buffer{}
	b.WriteString(strings.Repeat(ctx.tab, ctx.indent))
	b.WriteRune('<')
	b.WriteString(c.name.get())
	if ns, ok := ctx.stack.head().(*xmlStartNamespace); ok {
		b.WriteRune('\n')
		b.WriteString(strings.Repeat(ctx.tab, ctx.indent+2))
		b.WriteString(`xmlns:`)
		b.WriteString(ns.namespacePrefix.get())
		b.WriteString(`="`)
		b.WriteString(ns.namespaceURI.get())
		b.WriteString(`" `)
	}
	b.WriteString(c.attributes.xml(ctx))
	b.WriteRune('>')
	c.updateContext(ctx)
	return b.String()
}

func (c *xmlStartElement) encode() []byte {
	return encodeChunk(resXMLStartElementType, c.encodeHeader, func(w binary.Writer) {
		c.namespace.encode(w)
		c.name.encode(w)
		w.Uint16(xmlAttrExtSize)            // attributeStart
		w.Uint16(xmlAttributeSize)          // attributeSize
		w.Uint16(uint16(len(c.attributes))) // attributeCount
		w.Uint16(c.idIndex)
		w.Uint16(c.classIndex)
		w.Uint16(c.styleIndex)
		for _, at := range c.attributes {
			at.encode(w)
		}
	})
}

func (c *xmlStartElement) addAttribute(attr *xmlAttribute) {
	c.attributes = append(c.attributes, *attr)
	// Sorting invalidates the special indices, find them again afterwards.
	special := c.specialAttributes()
	sort.Sort(attributesByResourceId{c.attributes, c.root()})
	c.restoreSpecialAttributes(special)
}

// removeAttribute removes the attribute at index i, keeping the special
// indices pointing at the same attributes.
func (c *xmlStartElement) removeAttribute(i int) {
	shift := func(idx uint16) uint16 {
		switch {
		case int(idx) == i+1:
			return 0
		case int(idx) > i+1:
			return idx - 1
		default:
			return idx
		}
	}
	c.idIndex = shift(c.idIndex)
	c.classIndex = shift(c.classIndex)
	c.styleIndex = shift(c.styleIndex)
	c.attributes = append(c.attributes[:i], c.attributes[i+1:]...)
}

func (c *xmlStartElement) specialAttributes() [3]stringPoolRef {
	out := [3]stringPoolRef{invalidStringPoolRef, invalidStringPoolRef, invalidStringPoolRef}
	for i, idx := range []uint16{c.idIndex, c.classIndex, c.styleIndex} {
		if idx > 0 {
			out[i] = c.attributes[idx-1].name
		}
	}
	return out
}

func (c *xmlStartElement) restoreSpecialAttributes(names [3]stringPoolRef) {
	indices := [3]*uint16{&c.idIndex, &c.classIndex, &c.styleIndex}
	for i, name := range names {
		*indices[i] = 0
		if !name.isValid() {
			continue
		}
		for j, at := range c.attributes {
			if at.name == name {
				*indices[i] = uint16(j + 1)
				break
			}
		}
	}
}

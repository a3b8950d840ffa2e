// Copyright (C) 2026 Google Inc.
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
	"fmt"
	"sort"
)

// androidAttributes maps the names of common framework attributes to their
// resource ids. See frameworks/base/core/res/res/values/public.xml.
var androidAttributes = map[string]uint32{
	"label":             0x01010001,
	"icon":              0x01010002,
	"name":              0x01010003,
	"permission":        0x01010006,
	"exported":          0x01010010,
	"debuggable":        0x0101000f,
	"authorities":       0x01010018,
	"value":             0x01010024,
	"minSdkVersion":     0x0101020c,
	"versionCode":       0x0101021b,
	"versionName":       0x0101021c,
	"targetSdkVersion":  0x01010270,
	"extractNativeLibs": 0x010104ea,
}

// Attr is an attribute handed to Builder.StartElement.
type Attr struct {
	Namespace string
	Name      string
	// ResourceID maps the name to a framework attribute. When zero, names in
	// AndroidNamespace are looked up in a table of common attributes.
	ResourceID uint32
	Value      Value
}

// Builder serializes a sequence of namespace and element events into a binary
// XML document. Events must be balanced: every start needs a matching end
// before Bytes is called.
type Builder struct {
	tree *xmlTree
	open []chunk
	line uint32
	err  error
}

// NewBuilder returns a Builder for an empty document.
func NewBuilder() *Builder {
	tree := &xmlTree{strings: &stringPool{}}
	tree.setRoot(tree)
	tree.strings.setRoot(tree)
	tree.resourceMap = &xmlResourceMap{}
	tree.resourceMap.setRoot(tree)
	return &Builder{tree: tree, line: 1}
}

func (b *Builder) add(c chunk) {
	c.setRoot(b.tree)
	b.tree.chunks = append(b.tree.chunks, c)
}

func (b *Builder) optional(s string) stringPoolRef {
	if s == "" {
		return invalidStringPoolRef
	}
	return b.tree.strings.ref(s)
}

func (b *Builder) header() nodeHeader {
	h := nodeHeader{lineNumber: b.line, comment: invalidStringPoolRef}
	b.line++
	return h
}

// StartNamespace declares the namespace uri with the given prefix.
func (b *Builder) StartNamespace(prefix, uri string) *Builder {
	c := &xmlStartNamespace{
		nodeHeader:      b.header(),
		namespacePrefix: b.tree.strings.ref(prefix),
		namespaceURI:    b.tree.strings.ref(uri),
	}
	b.add(c)
	b.open = append(b.open, c)
	return b
}

// EndNamespace closes the most recently started namespace.
func (b *Builder) EndNamespace() *Builder {
	start, ok := b.pop().(*xmlStartNamespace)
	if !ok {
		b.fail("EndNamespace without a matching StartNamespace")
		return b
	}
	b.add(&xmlEndNamespace{
		nodeHeader:      b.header(),
		namespacePrefix: start.namespacePrefix,
		namespaceURI:    start.namespaceURI,
	})
	return b
}

// StartElement opens an element with the given attributes. The attributes
// are stored ordered by resource id, as the runtime expects.
func (b *Builder) StartElement(namespace, name string, attrs ...Attr) *Builder {
	c := &xmlStartElement{
		nodeHeader: b.header(),
		namespace:  b.optional(namespace),
		name:       b.tree.strings.ref(name),
	}
	c.setRoot(b.tree)
	for _, a := range attrs {
		at, err := b.attribute(a)
		if err != nil {
			b.fail("Attribute %s of <%s>: %v", a.Name, name, err)
			return b
		}
		c.attributes = append(c.attributes, at)
	}
	sort.Stable(attributesByResourceId{c.attributes, b.tree})
	b.add(c)
	b.open = append(b.open, c)
	return b
}

func (b *Builder) attribute(a Attr) (xmlAttribute, error) {
	at := xmlAttribute{namespace: b.optional(a.Namespace)}
	id := a.ResourceID
	if id == 0 && a.Namespace == AndroidNamespace {
		id = androidAttributes[a.Name]
	}
	if id != 0 {
		name, err := b.tree.ensureAttributeNameMapsToResource(id, a.Name)
		if err != nil {
			return xmlAttribute{}, err
		}
		at.name = name
	} else {
		at.name = b.tree.strings.ref(a.Name)
	}
	at.setValue(b.tree, a.Value)
	return at, nil
}

// EndElement closes the most recently started element.
func (b *Builder) EndElement() *Builder {
	start, ok := b.pop().(*xmlStartElement)
	if !ok {
		b.fail("EndElement without a matching StartElement")
		return b
	}
	b.add(&xmlEndElement{
		nodeHeader: b.header(),
		namespace:  start.namespace,
		name:       start.name,
	})
	return b
}

// CData adds character data to the current element.
func (b *Builder) CData(text string) *Builder {
	ref := b.tree.strings.ref(text)
	b.add(&xmlCData{
		nodeHeader: b.header(),
		data:       ref,
		typedValue: valStringID(ref),
	})
	return b
}

func (b *Builder) pop() chunk {
	if len(b.open) == 0 {
		return nil
	}
	c := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]
	return c
}

func (b *Builder) fail(format string, args ...interface{}) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

// Bytes returns the encoded document.
func (b *Builder) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.open) > 0 {
		return nil, fmt.Errorf("%d unclosed elements or namespaces", len(b.open))
	}
	return b.tree.encode(), nil
}

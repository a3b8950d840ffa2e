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
	"github.com/google/apkpatch/core/data/binary"
)

// xmlResourceMap maps the leading strings of the pool, by position, to the
// resource ids of the attributes they name.
type xmlResourceMap struct {
	rootHolder
	ids []uint32
}

func (c *xmlResourceMap) decode(header, data []byte) error {
	if len(data)%4 != 0 {
		return malformed("Resource map size %d is not a multiple of 4", len(data))
	}
	r := newReader(data)
	c.ids = make([]uint32, len(data)/4)
	for i := range c.ids {
		c.ids[i] = r.Uint32()
	}
	return r.Error()
}

func (xmlResourceMap) xml(*xmlContext) string { return "" }

func (c *xmlResourceMap) encode() []byte {
	return encodeChunk(resXMLResourceMapType, func(w binary.Writer) {
		// No custom header.
	}, func(w binary.Writer) {
		for _, id := range c.ids {
			w.Uint32(id)
		}
	})
}

// indexOf returns the string pool index mapped to the resource id.
func (c *xmlResourceMap) indexOf(id uint32) (uint32, bool) {
	if c == nil {
		return 0, false
	}
	for i, v := range c.ids {
		if v == id {
			return uint32(i), true
		}
	}
	return 0, false
}

// idOf returns the resource id mapped to the string referenced by s, or 0.
func (c *xmlResourceMap) idOf(s stringPoolRef) uint32 {
	if c == nil {
		return 0
	}
	if idx := s.stringPoolIndex(); idx < uint32(len(c.ids)) {
		return c.ids[idx]
	}
	return 0
}

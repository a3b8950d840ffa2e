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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderUnbalanced(t *testing.T) {
	_, err := NewBuilder().StartElement("", "manifest").Bytes()
	assert.Error(t, err)

	_, err = NewBuilder().EndElement().Bytes()
	assert.Error(t, err)

	_, err = NewBuilder().
		StartNamespace("android", AndroidNamespace).
		StartElement("", "manifest").
		EndNamespace().
		Bytes()
	assert.Error(t, err)
}

func TestBuilderCData(t *testing.T) {
	data, err := NewBuilder().
		StartElement("", "string").
		CData("hello").
		EndElement().
		Bytes()
	require.NoError(t, err)

	tree, err := decodeXmlTree(data)
	require.NoError(t, err)
	require.Len(t, tree.chunks, 3)
	cdata, ok := tree.chunks[1].(*xmlCData)
	require.True(t, ok)
	assert.Equal(t, "hello", cdata.data.get())
}

func TestBuilderResourceIds(t *testing.T) {
	data, err := NewBuilder().
		StartElement("", "manifest",
			Attr{Namespace: AndroidNamespace, Name: "custom", ResourceID: 0x01010999, Value: IntValue(1)},
			androidAttr("label", StringValue("x"))).
		EndElement().
		Bytes()
	require.NoError(t, err)

	tree, err := decodeXmlTree(data)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x01010999, 0x01010001}, tree.resourceMap.ids)
	assert.Equal(t, "custom", tree.strings.strings[0])
	assert.Equal(t, "label", tree.strings.strings[1])
}

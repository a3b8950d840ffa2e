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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDebuggableFlag(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, SetDebuggableFlag(bytes.NewReader(sampleManifest(t)), &out))

	tree, err := decodeXmlTree(out.Bytes())
	require.NoError(t, err)

	debuggable, ok := tree.resourceMap.indexOf(debuggableAttr)
	require.True(t, ok)
	ref, ok := tree.strings.findFromStringPoolIndex(debuggable)
	require.True(t, ok)
	assert.Equal(t, "debuggable", ref.get())

	found := false
	tree.visit(startElementVisitor("manifest/application", func(ctx *xmlContext, xse *xmlStartElement) {
		at, ok := xse.attributes.forName(ref)
		require.True(t, ok)
		assert.Equal(t, BoolValue(true), at.value())
		found = true
	}))
	assert.True(t, found)
	assert.Contains(t, tree.toXmlString(), `android:debuggable="true"`)
	assert.Contains(t, tree.toXmlString(), `android:label="Stardew Valley"`)
}

func TestSetDebuggableFlagTwice(t *testing.T) {
	var once, twice bytes.Buffer
	require.NoError(t, SetDebuggableFlag(bytes.NewReader(sampleManifest(t)), &once))
	require.NoError(t, SetDebuggableFlag(bytes.NewReader(once.Bytes()), &twice))
	assert.Equal(t, once.Bytes(), twice.Bytes())
}

func TestSetDebuggableFlagWithoutApplication(t *testing.T) {
	data, err := NewBuilder().
		StartNamespace("android", AndroidNamespace).
		StartElement("", "manifest", Attr{Name: "package", Value: StringValue(testPackage)}).
		EndElement().
		EndNamespace().
		Bytes()
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Error(t, SetDebuggableFlag(bytes.NewReader(data), &out))
	assert.Zero(t, out.Len())
}

func TestRemoveAttributeKeepsSpecialIndices(t *testing.T) {
	tree, err := decodeXmlTree(sampleManifest(t))
	require.NoError(t, err)
	var provider *xmlStartElement
	for _, c := range tree.chunks {
		if se, ok := c.(*xmlStartElement); ok && se.name.get() == "provider" {
			provider = se
		}
	}
	require.NotNil(t, provider)
	require.Len(t, provider.attributes, 3)

	provider.idIndex, provider.classIndex, provider.styleIndex = 1, 2, 3
	provider.removeAttribute(1)
	assert.Len(t, provider.attributes, 2)
	assert.Equal(t, uint16(1), provider.idIndex)
	assert.Equal(t, uint16(0), provider.classIndex)
	assert.Equal(t, uint16(2), provider.styleIndex)
	assert.Equal(t, "authorities", provider.attributes[provider.styleIndex-1].name.get())

	decoded, err := decodeXmlTree(tree.encode())
	require.NoError(t, err)
	assert.Equal(t, tree.encode(), decoded.encode())
}

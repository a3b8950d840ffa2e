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
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPackage = "com.chucklefish.stardewvalley"

func androidAttr(name string, v Value) Attr {
	return Attr{Namespace: AndroidNamespace, Name: name, Value: v}
}

// sampleManifest returns a small AndroidManifest.xml in binary form.
func sampleManifest(t *testing.T) []byte {
	data, err := NewBuilder().
		StartNamespace("android", AndroidNamespace).
		StartElement("", "manifest",
			androidAttr("versionCode", IntValue(148)),
			androidAttr("versionName", StringValue("1.4.5.148")),
			Attr{Name: "package", Value: StringValue(testPackage)}).
		StartElement("", "uses-permission",
			androidAttr("name", StringValue("android.permission.INTERNET"))).
		EndElement().
		StartElement("", "permission",
			androidAttr("name", StringValue(testPackage+".permission.C2D_MESSAGE"))).
		EndElement().
		StartElement("", "application",
			androidAttr("label", StringValue("Stardew Valley")),
			androidAttr("icon", ReferenceValue(0x7f0d0000))).
		StartElement("", "meta-data",
			androidAttr("name", StringValue("loader.entry")),
			androidAttr("value", StringValue("A"))).
		EndElement().
		StartElement("", "meta-data",
			androidAttr("name", StringValue("loader.other")),
			androidAttr("value", StringValue("C"))).
		EndElement().
		StartElement("", "provider",
			androidAttr("name", StringValue("android.support.v4.content.FileProvider")),
			androidAttr("exported", BoolValue(false)),
			androidAttr("authorities", StringValue(testPackage+".fileprovider"))).
		EndElement().
		EndElement().
		EndElement().
		EndNamespace().
		Bytes()
	require.NoError(t, err)
	return data
}

// record is one visitation event: an element start (Name empty) or one of its
// attributes.
type record struct {
	Path      string
	Namespace string
	Name      string
	Value     Value
}

// collect walks data and returns every element and attribute in order.
func collect(ctx context.Context, t *testing.T, data []byte) []record {
	out := []record{}
	err := Walk(ctx, data, VisitorFunc(func(e Element) AttributeVisitor {
		out = append(out, record{Path: e.Path, Namespace: e.Namespace})
		return AttributeVisitorFunc(func(a Attribute) Edit {
			out = append(out, record{a.Path, a.Namespace, a.Name, a.Value})
			return Keep()
		})
	}))
	require.NoError(t, err)
	return out
}

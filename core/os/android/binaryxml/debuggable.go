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
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
)

const debuggableAttr uint32 = 0x0101000f

func startElementVisitor(path string, f func(*xmlContext, *xmlStartElement)) chunkVisitor {
	return func(ctx *xmlContext, c chunk, when int) {
		xse, ok := c.(*xmlStartElement)
		if ok && when == afterContextChange && ctx.path() == path {
			f(ctx, xse)
		}
	}
}

// setManifestApplicationDebuggableAttributeToTrue sets android:debuggable="true"
// under the <application/> element of the manifest. It fails if it cannot find
// the application element.
func setManifestApplicationDebuggableAttributeToTrue(xml *xmlTree) error {
	found := false
	var err error
	xml.visit(startElementVisitor("manifest/application", func(ctx *xmlContext, xse *xmlStartElement) {
		found = true
		refDebuggable, e := xml.ensureAttributeNameMapsToResource(debuggableAttr, "debuggable")
		if e != nil {
			err = e
			return
		}

		if at, ok := xse.attributes.forName(refDebuggable); ok {
			at.setValue(xml, BoolValue(true))
		} else {
			at := xmlAttribute{
				namespace: ctx.strings.ref(AndroidNamespace),
				name:      refDebuggable,
			}
			at.setValue(xml, BoolValue(true))
			xse.addAttribute(&at)
		}
	}))
	if err != nil {
		return err
	}
	if !found {
		return errors.New("manifest has no application element")
	}
	return nil
}

// SetDebuggableFlag takes a Reader that produces a manifest binary xml,
// modifies it to set android:debuggable="true" under the <application/> element
// and writes it to the provided Writer.
func SetDebuggableFlag(r io.Reader, w io.Writer) error {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}
	tree, err := decodeXmlTree(data)
	if err != nil {
		return err
	}

	if err := setManifestApplicationDebuggableAttributeToTrue(tree); err != nil {
		return errors.Wrap(err, "error modifying manifest")
	}
	_, err = w.Write(tree.encode())
	return err
}

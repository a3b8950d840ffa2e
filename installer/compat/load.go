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

package compat

import (
	"bytes"
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"

	"github.com/google/apkpatch/core/fault"
)

// ManifestName is the file name of a compatibility manifest, both in the
// bundled assets and in each compatibility directory.
const ManifestName = "apk_files_manifest.json"

const ErrManifestLoad = fault.Const("Manifest could not be loaded")

//go:embed schema/apk_files_manifest.schema.json
var schemaFS embed.FS

const schemaName = "apk_files_manifest.schema.json"

var (
	compileOnce    sync.Once
	manifestSchema *jsonschema.Schema
	entriesSchema  *jsonschema.Schema
	compileErr     error
)

// schemas compiles the embedded schema once.
func schemas() (*jsonschema.Schema, *jsonschema.Schema, error) {
	compileOnce.Do(func() {
		data, err := schemaFS.ReadFile("schema/" + schemaName)
		if err != nil {
			compileErr = err
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = errors.Wrap(err, "unmarshaling schema")
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaName, doc); err != nil {
			compileErr = errors.Wrap(err, "adding schema resource")
			return
		}
		if manifestSchema, err = c.Compile(schemaName); err != nil {
			compileErr = errors.Wrap(err, "compiling manifest schema")
			return
		}
		if entriesSchema, err = c.Compile(schemaName + "#/$defs/entries"); err != nil {
			compileErr = errors.Wrap(err, "compiling entries schema")
		}
	})
	return manifestSchema, entriesSchema, compileErr
}

// decode strips JSONC comments and trailing commas from data, validates it
// against schema and unmarshals it into out.
func decode(data []byte, schema *jsonschema.Schema, out interface{}) error {
	stripped := jsonc.ToJSON(data)
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(stripped))
	if err != nil {
		return errors.Wrapf(ErrManifestLoad, "parsing JSON: %v", err)
	}
	if err := schema.Validate(inst); err != nil {
		return errors.Wrapf(ErrManifestLoad, "invalid document: %v", err)
	}
	if err := json.Unmarshal(stripped, out); err != nil {
		return errors.Wrapf(ErrManifestLoad, "decoding: %v", err)
	}
	return nil
}

// Load reads an ApkFilesManifest document from r.
func Load(r io.Reader) (ApkFilesManifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ApkFilesManifest{}, errors.Wrapf(ErrManifestLoad, "reading: %v", err)
	}
	schema, _, err := schemas()
	if err != nil {
		return ApkFilesManifest{}, err
	}
	m := ApkFilesManifest{}
	if err := decode(data, schema, &m); err != nil {
		return ApkFilesManifest{}, err
	}
	for i, e := range m.Entries {
		if err := e.Validate(); err != nil {
			return ApkFilesManifest{}, errors.Wrapf(ErrManifestLoad, "entry %d: %v", i, err)
		}
	}
	return m, nil
}

// LoadFile reads the ApkFilesManifest document at path on fsys.
func LoadFile(fsys afero.Fs, path string) (ApkFilesManifest, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return ApkFilesManifest{}, errors.Wrapf(ErrManifestLoad, "%v", err)
	}
	defer f.Close()
	m, err := Load(f)
	if err != nil {
		return ApkFilesManifest{}, errors.Wrap(err, path)
	}
	return m, nil
}

// LoadAsset reads the ApkFilesManifest document name from the bundled assets.
func LoadAsset(assets fs.FS, name string) (ApkFilesManifest, error) {
	if assets == nil {
		return ApkFilesManifest{}, errors.Wrap(ErrManifestLoad, "no bundled assets")
	}
	f, err := assets.Open(name)
	if err != nil {
		return ApkFilesManifest{}, errors.Wrapf(ErrManifestLoad, "%v", err)
	}
	defer f.Close()
	m, err := Load(f)
	if err != nil {
		return ApkFilesManifest{}, errors.Wrap(err, name)
	}
	return m, nil
}

// LoadEntries reads a document holding a bare JSON array of entries, as used
// by the bundled loader file list.
func LoadEntries(r io.Reader) ([]ManifestEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(ErrManifestLoad, "reading: %v", err)
	}
	_, schema, err := schemas()
	if err != nil {
		return nil, err
	}
	entries := []ManifestEntry{}
	if err := decode(data, schema, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

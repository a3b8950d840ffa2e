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

// Package apk reads, extracts from and rewrites Android application packages.
package apk

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/google/apkpatch/core/fault"
	"github.com/google/apkpatch/core/log"
	"github.com/google/apkpatch/core/os/android/binaryxml"
	"github.com/google/apkpatch/core/os/android/manifest"
)

const (
	// ManifestPath is the archive path of the binary AndroidManifest.xml.
	ManifestPath = "AndroidManifest.xml"

	ErrMemberNotFound = fault.Const("Archive member not found")
	ErrNotAPK         = fault.Const("Not an APK archive")
)

// Read returns the files of the APK held in data.
func Read(ctx context.Context, data []byte) ([]*zip.File, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, log.Err(ctx, ErrNotAPK, err.Error())
	}
	return r.File, nil
}

func find(files []*zip.File, name string) *zip.File {
	for _, f := range files {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readMember(ctx context.Context, files []*zip.File, name string) ([]byte, error) {
	f := find(files, name)
	if f == nil {
		return nil, log.Errf(ctx, ErrMemberNotFound, "Looking for %s", name)
	}
	r, err := f.Open()
	if err != nil {
		return nil, log.Errf(ctx, err, "Opening %s", name)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, log.Errf(ctx, err, "Reading %s", name)
	}
	return data, nil
}

// GetManifestXML returns the AndroidManifest.xml of the APK as text.
func GetManifestXML(ctx context.Context, files []*zip.File) (string, error) {
	data, err := readMember(ctx, files, ManifestPath)
	if err != nil {
		return "", err
	}
	return binaryxml.Decode(ctx, data)
}

// GetManifest returns the parsed AndroidManifest.xml of the APK.
func GetManifest(ctx context.Context, files []*zip.File) (manifest.Manifest, error) {
	xml, err := GetManifestXML(ctx, files)
	if err != nil {
		return manifest.Manifest{}, err
	}
	return manifest.Parse(ctx, xml)
}

// GatherABIs returns the names of the native library directories held in the
// APK, sorted.
func GatherABIs(files []*zip.File) []string {
	found := map[string]bool{}
	for _, f := range files {
		dir, _ := path.Split(f.Name)
		parts := strings.Split(strings.TrimSuffix(dir, "/"), "/")
		if len(parts) == 2 && parts[0] == "lib" && parts[1] != "" {
			found[parts[1]] = true
		}
	}
	out := make([]string, 0, len(found))
	for abi := range found {
		out = append(out, abi)
	}
	sort.Strings(out)
	return out
}

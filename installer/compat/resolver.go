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
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/google/apkpatch/core/log"
)

// Resolver discovers the bundled manifest and the manifests of every
// installed compatibility package.
type Resolver struct {
	// Assets holds the bundled ManifestName.
	Assets fs.FS
	// FS holds CompatDir.
	FS afero.Fs
	// CompatDir holds one subdirectory per compatibility package.
	CompatDir string
}

// FindAll returns every manifest that could be loaded, sorted by descending
// MinBuildCode. The sort is stable: the bundled manifest comes first, then
// the compatibility directories in name order. Documents that cannot be
// loaded are logged and left out, FindAll itself never fails.
func (r Resolver) FindAll(ctx context.Context) []ApkFilesManifest {
	ctx = log.Enter(ctx, "FindAll")
	out := []ApkFilesManifest{}

	if m, err := LoadAsset(r.Assets, ManifestName); err != nil {
		log.E(ctx, "Bundled manifest: %v", err)
	} else {
		out = append(out, m)
	}

	out = append(out, r.scan(ctx)...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinBuildCode > out[j].MinBuildCode
	})
	return out
}

func (r Resolver) scan(ctx context.Context) []ApkFilesManifest {
	if r.FS == nil || r.CompatDir == "" {
		return nil
	}
	// ReadDir returns the entries sorted by name.
	infos, err := afero.ReadDir(r.FS, r.CompatDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.W(ctx, "Reading %s: %v", r.CompatDir, err)
		}
		return nil
	}

	out := []ApkFilesManifest{}
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		dir := filepath.Join(r.CompatDir, info.Name())
		path := filepath.Join(dir, ManifestName)
		if ok, _ := afero.Exists(r.FS, path); !ok {
			log.D(ctx, "No manifest in %s", dir)
			continue
		}
		m, err := LoadFile(r.FS, path)
		if err != nil {
			log.W(ctx, "Skipping %s: %v", dir, err)
			continue
		}
		m.Dir = dir
		out = append(out, m)
	}
	return out
}

// Select returns the first manifest, in the order given, that admits the
// package at buildCode.
func Select(manifests []ApkFilesManifest, packageName string, buildCode int64) (ApkFilesManifest, error) {
	for _, m := range manifests {
		if m.Admits(packageName, buildCode) {
			return m, nil
		}
	}
	return ApkFilesManifest{}, errors.Wrapf(ErrNoCompatibleManifest, "%s build %d", packageName, buildCode)
}

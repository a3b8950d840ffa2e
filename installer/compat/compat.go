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

// Package compat describes the sets of files to provision for a game build
// and discovers the compatibility manifests available to the installer.
package compat

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/google/apkpatch/core/fault"
)

const (
	ErrInvalidEntry         = fault.Const("Invalid manifest entry")
	ErrNoCompatibleManifest = fault.Const("No compatible manifest")
)

// Origin is the wire discriminator of a Source.
type Origin int

const (
	OriginBundledAsset    Origin = 0
	OriginPackageZipEntry Origin = 1
)

func (o Origin) String() string {
	switch o {
	case OriginBundledAsset:
		return "BundledAsset"
	case OriginPackageZipEntry:
		return "PackageZipEntry"
	default:
		return fmt.Sprintf("Origin<%d>", int(o))
	}
}

// Source is where the contents of a provisioned file come from. It is one of
// BundledAsset or PackageZipEntry.
type Source interface {
	Origin() Origin
	// Location is the asset path or archive member path.
	Location() string
}

// BundledAsset is a file shipped with the installer's assets.
type BundledAsset struct {
	Path string
}

func (BundledAsset) Origin() Origin     { return OriginBundledAsset }
func (s BundledAsset) Location() string { return s.Path }

// PackageZipEntry is a member of the installed game package.
type PackageZipEntry struct {
	MemberPath string
}

func (PackageZipEntry) Origin() Origin     { return OriginPackageZipEntry }
func (s PackageZipEntry) Location() string { return s.MemberPath }

// ManifestEntry is one file to materialize under the provisioning base
// directory.
type ManifestEntry struct {
	Source     Source
	TargetPath string
}

type wireEntry struct {
	Origin     *Origin `json:"origin"`
	AssetPath  string  `json:"assetPath"`
	TargetPath string  `json:"targetPath"`
}

// UnmarshalJSON decodes the {origin, assetPath, targetPath} form, rejecting
// unknown origins.
func (e *ManifestEntry) UnmarshalJSON(data []byte) error {
	w := wireEntry{}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Origin == nil {
		return errors.Wrap(ErrInvalidEntry, "missing origin")
	}
	source, err := newSource(*w.Origin, w.AssetPath)
	if err != nil {
		return err
	}
	*e = ManifestEntry{Source: source, TargetPath: w.TargetPath}
	return nil
}

// MarshalJSON encodes the entry in the form read by UnmarshalJSON.
func (e ManifestEntry) MarshalJSON() ([]byte, error) {
	if e.Source == nil {
		return nil, errors.Wrap(ErrInvalidEntry, "missing source")
	}
	origin := e.Source.Origin()
	return json.Marshal(wireEntry{
		Origin:     &origin,
		AssetPath:  e.Source.Location(),
		TargetPath: e.TargetPath,
	})
}

func newSource(o Origin, location string) (Source, error) {
	switch o {
	case OriginBundledAsset:
		return BundledAsset{Path: location}, nil
	case OriginPackageZipEntry:
		return PackageZipEntry{MemberPath: location}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidEntry, "unknown origin %d", int(o))
	}
}

// Validate checks that the entry has a known source and a target path that
// stays inside the base directory.
func (e ManifestEntry) Validate() error {
	switch s := e.Source.(type) {
	case BundledAsset:
		if s.Path == "" {
			return errors.Wrap(ErrInvalidEntry, "empty asset path")
		}
	case PackageZipEntry:
		if s.MemberPath == "" {
			return errors.Wrap(ErrInvalidEntry, "empty member path")
		}
	default:
		return errors.Wrapf(ErrInvalidEntry, "unsupported source %T", e.Source)
	}

	target := strings.ReplaceAll(e.TargetPath, `\`, "/")
	switch {
	case target == "":
		return errors.Wrap(ErrInvalidEntry, "empty target path")
	case path.IsAbs(target) || (len(target) > 1 && target[1] == ':'):
		return errors.Wrapf(ErrInvalidEntry, "absolute target path %q", e.TargetPath)
	}
	for _, segment := range strings.Split(target, "/") {
		if segment == ".." {
			return errors.Wrapf(ErrInvalidEntry, "target path %q leaves the base directory", e.TargetPath)
		}
	}
	return nil
}

// ApkFilesManifest is a set of entries that applies to a range of game
// builds. It is read-only once loaded.
type ApkFilesManifest struct {
	MinBuildCode int64 `json:"minBuildCode"`
	// MaxBuildCode, if set, is the last build the manifest applies to.
	MaxBuildCode *int64 `json:"maxBuildCode,omitempty"`
	// TargetPackageNames, if not empty, restricts the manifest to these
	// packages.
	TargetPackageNames []string        `json:"targetPackageName,omitempty"`
	Entries            []ManifestEntry `json:"manifestEntries"`
	// Dir is the compatibility directory the manifest was found in, empty for
	// the bundled manifest.
	Dir string `json:"-"`
}

// Admits returns true if the manifest applies to the package at buildCode.
func (m ApkFilesManifest) Admits(packageName string, buildCode int64) bool {
	if buildCode < m.MinBuildCode {
		return false
	}
	if m.MaxBuildCode != nil && buildCode > *m.MaxBuildCode {
		return false
	}
	if len(m.TargetPackageNames) == 0 {
		return true
	}
	for _, name := range m.TargetPackageNames {
		if name == packageName {
			return true
		}
	}
	return false
}

// Name returns the name used for the manifest in logs and listings.
func (m ApkFilesManifest) Name() string {
	if m.Dir == "" {
		return "<bundled>"
	}
	return path.Base(strings.ReplaceAll(m.Dir, `\`, "/"))
}

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

// Package provision stages the files described by manifest entries into a
// base directory.
package provision

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/google/apkpatch/core/fault"
	"github.com/google/apkpatch/core/log"
	"github.com/google/apkpatch/installer/compat"
)

const (
	ErrDirectoryCreate = fault.Const("Directory could not be created")
	ErrNoExtractor     = fault.Const("No archive extractor")
	ErrInvalidEntry    = compat.ErrInvalidEntry
	ErrManifestLoad    = compat.ErrManifestLoad
)

// NoMediaName is the marker file that keeps media scanners out of the base
// directory.
const NoMediaName = ".nomedia"

// Extractor copies a member of an archive to a file, creating the parent
// directories of dest.
type Extractor interface {
	ExtractMember(ctx context.Context, archive, member, dest string) error
}

// CopyError is the warning recorded for an entry that could not be
// materialized.
type CopyError struct {
	Entry  compat.ManifestEntry
	Target string
	Err    error
}

func (e CopyError) Error() string {
	return fmt.Sprintf("Copy error: %v %s -> %s: %v",
		e.Entry.Source.Origin(), e.Entry.Source.Location(), e.Target, e.Err)
}

func (e CopyError) Cause() error  { return e.Err }
func (e CopyError) Unwrap() error { return e.Err }

// Result is the outcome of a provisioning call that did not fail.
type Result struct {
	// Written holds the targets that were materialized, in entry order.
	Written []string
	// Skipped holds the targets left alone because they already existed.
	Skipped []string
	// Warnings holds a CopyError for each entry that failed.
	Warnings fault.List
}

// Engine materializes manifest entries. Assets supplies BundledAsset
// contents, FS receives the files and Extractor supplies PackageZipEntry
// contents.
type Engine struct {
	Assets    fs.FS
	FS        afero.Fs
	Extractor Extractor
}

// target returns the path of the entry under baseDir.
func target(baseDir string, e compat.ManifestEntry) string {
	rel := strings.ReplaceAll(e.TargetPath, `\`, "/")
	return filepath.Join(baseDir, filepath.FromSlash(rel))
}

// Provision materializes entries under baseDir, in order. In checkMode
// targets that already exist are left alone. Failing to create a directory is
// fatal; an entry that cannot be copied is recorded in Result.Warnings and
// the remaining entries are still processed.
func (e Engine) Provision(ctx context.Context, entries []compat.ManifestEntry, packagePath, baseDir string, checkMode bool) (*Result, error) {
	ctx = log.V{"base": baseDir, "check": checkMode}.Bind(ctx)

	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			return nil, log.Errf(ctx, err, "Entry %d", i)
		}
	}

	if err := e.FS.MkdirAll(baseDir, os.ModePerm); err != nil {
		return nil, log.Errf(ctx, ErrDirectoryCreate, "%s: %v", baseDir, err)
	}
	e.ensureNoMedia(ctx, baseDir)

	res := &Result{}
	for _, entry := range entries {
		path := target(baseDir, entry)
		if checkMode {
			if exists, _ := afero.Exists(e.FS, path); exists {
				log.D(ctx, "Keeping %s", path)
				res.Skipped = append(res.Skipped, path)
				continue
			}
		}

		var err error
		switch source := entry.Source.(type) {
		case compat.BundledAsset:
			err = e.copyAsset(ctx, source, path)
		case compat.PackageZipEntry:
			err = e.extract(ctx, packagePath, source, path)
		}
		if err != nil {
			if errors.Cause(err) == ErrDirectoryCreate {
				return nil, err
			}
			w := CopyError{Entry: entry, Target: path, Err: err}
			log.W(ctx, "%v", w)
			res.Warnings.Collect(w)
			continue
		}
		res.Written = append(res.Written, path)
	}
	log.I(ctx, "Provisioned %d files, kept %d, %d warnings",
		len(res.Written), len(res.Skipped), len(res.Warnings))
	return res, nil
}

func (e Engine) ensureNoMedia(ctx context.Context, baseDir string) {
	path := filepath.Join(baseDir, NoMediaName)
	if exists, _ := afero.Exists(e.FS, path); exists {
		return
	}
	f, err := e.FS.Create(path)
	if err != nil {
		log.D(ctx, "Creating %s: %v", path, err)
		return
	}
	f.Close()
}

// copyAsset copies a bundled asset to path. Only a failure to create the
// parent directory wraps ErrDirectoryCreate.
func (e Engine) copyAsset(ctx context.Context, source compat.BundledAsset, path string) error {
	if e.Assets == nil {
		return errors.Errorf("no bundled assets for %s", source.Path)
	}
	in, err := e.Assets.Open(source.Path)
	if err != nil {
		return err
	}
	defer in.Close()

	dir := filepath.Dir(path)
	if err := e.FS.MkdirAll(dir, os.ModePerm); err != nil {
		return log.Errf(ctx, ErrDirectoryCreate, "%s: %v", dir, err)
	}

	out, err := e.FS.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (e Engine) extract(ctx context.Context, packagePath string, source compat.PackageZipEntry, path string) error {
	if e.Extractor == nil {
		return ErrNoExtractor
	}
	return e.Extractor.ExtractMember(ctx, packagePath, source.MemberPath, path)
}

// ProvisionBundled provisions the entry list held in the bundled asset
// manifestName. Failing to load the list is fatal.
func (e Engine) ProvisionBundled(ctx context.Context, manifestName, packagePath, baseDir string, checkMode bool) (*Result, error) {
	entries, err := e.loadBundled(manifestName)
	if err != nil {
		return nil, log.Errf(ctx, err, "Loading %s", manifestName)
	}
	return e.Provision(ctx, entries, packagePath, baseDir, checkMode)
}

func (e Engine) loadBundled(name string) ([]compat.ManifestEntry, error) {
	if e.Assets == nil {
		return nil, errors.Wrap(ErrManifestLoad, "no bundled assets")
	}
	f, err := e.Assets.Open(name)
	if err != nil {
		return nil, errors.Wrapf(ErrManifestLoad, "%v", err)
	}
	defer f.Close()
	return compat.LoadEntries(f)
}

// ApplyManifest provisions the entries of a resolved compatibility manifest.
func (e Engine) ApplyManifest(ctx context.Context, m compat.ApkFilesManifest, packagePath, baseDir string, checkMode bool) (*Result, error) {
	ctx = log.V{"manifest": m.Name(), "minBuildCode": m.MinBuildCode}.Bind(ctx)
	return e.Provision(ctx, m.Entries, packagePath, baseDir, checkMode)
}

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

package provision_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/apkpatch/core/log"
	"github.com/google/apkpatch/core/os/android/apk"
	"github.com/google/apkpatch/installer/compat"
	"github.com/google/apkpatch/installer/provision"
)

const (
	baseDir     = "/sdcard/StardewValley"
	packagePath = "/data/app/com.chucklefish.stardewvalley/base.apk"
)

var assets = fstest.MapFS{
	"smapi/StardewModdingAPI.dll":   {Data: []byte("smapi")},
	"smapi/0Harmony.dll":            {Data: []byte("harmony")},
	"smapi/config.json":             {Data: []byte(`{"VerboseLogging": false}`)},
	"smapi_files_manifest.json":     {Data: []byte(`[{"origin": 0, "assetPath": "smapi/config.json", "targetPath": "smapi-internal/config.json"}]`)},
	"broken_files_manifest.json":    {Data: []byte(`[{"origin": 0, `)},
	"compat/148/MonoGame.Framework": {Data: []byte("monogame")},
}

func asset(path, target string) compat.ManifestEntry {
	return compat.ManifestEntry{Source: compat.BundledAsset{Path: path}, TargetPath: target}
}

func member(path, target string) compat.ManifestEntry {
	return compat.ManifestEntry{Source: compat.PackageZipEntry{MemberPath: path}, TargetPath: target}
}

func entries() []compat.ManifestEntry {
	return []compat.ManifestEntry{
		asset("smapi/StardewModdingAPI.dll", "smapi-internal/StardewModdingAPI.dll"),
		asset("smapi/0Harmony.dll", "smapi-internal/0Harmony.dll"),
		member("assemblies/StardewValley.dll", "StardewValley.dll"),
	}
}

// fakeExtractor writes the member path as the file contents.
type fakeExtractor struct {
	fs    afero.Fs
	calls int
	fail  map[string]error
}

func (f *fakeExtractor) ExtractMember(ctx context.Context, archive, member, dest string) error {
	f.calls++
	if err := f.fail[member]; err != nil {
		return err
	}
	if err := f.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return afero.WriteFile(f.fs, dest, []byte(archive+"!"+member), 0644)
}

func newEngine() (provision.Engine, afero.Fs, *fakeExtractor) {
	fs := afero.NewMemMapFs()
	x := &fakeExtractor{fs: fs}
	return provision.Engine{Assets: assets, FS: fs, Extractor: x}, fs, x
}

func read(t *testing.T, fs afero.Fs, rel string) string {
	data, err := afero.ReadFile(fs, filepath.Join(baseDir, rel))
	require.NoError(t, err)
	return string(data)
}

// snapshot returns the contents of every file under baseDir.
func snapshot(t *testing.T, fs afero.Fs) map[string]string {
	out := map[string]string{}
	require.NoError(t, afero.Walk(fs, baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := afero.ReadFile(fs, path)
		out[path] = string(data)
		return err
	}))
	return out
}

func TestProvision(t *testing.T) {
	ctx := log.Testing(t)
	e, fs, _ := newEngine()

	res, err := e.Provision(ctx, entries(), packagePath, baseDir, false)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Skipped)
	assert.Len(t, res.Written, 3)

	assert.Equal(t, "smapi", read(t, fs, "smapi-internal/StardewModdingAPI.dll"))
	assert.Equal(t, "harmony", read(t, fs, "smapi-internal/0Harmony.dll"))
	assert.Equal(t, packagePath+"!assemblies/StardewValley.dll", read(t, fs, "StardewValley.dll"))
	assert.Equal(t, "", read(t, fs, provision.NoMediaName))
}

func TestCheckModeIsIdempotent(t *testing.T) {
	ctx := log.Testing(t)
	e, fs, x := newEngine()

	res, err := e.Provision(ctx, entries(), packagePath, baseDir, true)
	require.NoError(t, err)
	assert.Len(t, res.Written, 3)
	first := snapshot(t, fs)

	res, err = e.Provision(ctx, entries(), packagePath, baseDir, true)
	require.NoError(t, err)
	assert.Empty(t, res.Written)
	assert.Len(t, res.Skipped, 3)
	assert.Equal(t, first, snapshot(t, fs))
	assert.Equal(t, 1, x.calls)
}

func TestCheckModeFillsGaps(t *testing.T) {
	ctx := log.Testing(t)
	e, fs, _ := newEngine()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(baseDir, "smapi-internal/0Harmony.dll"), []byte("user copy"), 0644))

	res, err := e.Provision(ctx, entries(), packagePath, baseDir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(baseDir, "smapi-internal/0Harmony.dll")}, res.Skipped)
	assert.Len(t, res.Written, 2)
	assert.Equal(t, "user copy", read(t, fs, "smapi-internal/0Harmony.dll"))
}

func TestOverwritesWithoutCheckMode(t *testing.T) {
	ctx := log.Testing(t)
	e, fs, _ := newEngine()
	for _, rel := range []string{"smapi-internal/StardewModdingAPI.dll", "smapi-internal/0Harmony.dll", "StardewValley.dll"} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(baseDir, rel), []byte("a much longer stale file"), 0644))
	}

	res, err := e.Provision(ctx, entries(), packagePath, baseDir, false)
	require.NoError(t, err)
	assert.Len(t, res.Written, 3)
	assert.Equal(t, "smapi", read(t, fs, "smapi-internal/StardewModdingAPI.dll"))
	assert.Equal(t, "harmony", read(t, fs, "smapi-internal/0Harmony.dll"))
	assert.Equal(t, packagePath+"!assemblies/StardewValley.dll", read(t, fs, "StardewValley.dll"))
}

func TestPartialFailure(t *testing.T) {
	ctx := log.Testing(t)
	e, fs, _ := newEngine()
	list := []compat.ManifestEntry{
		asset("smapi/StardewModdingAPI.dll", "smapi-internal/StardewModdingAPI.dll"),
		asset("smapi/missing.dll", "smapi-internal/missing.dll"),
		asset("smapi/0Harmony.dll", "smapi-internal/0Harmony.dll"),
	}

	res, err := e.Provision(ctx, list, packagePath, baseDir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(baseDir, "smapi-internal/StardewModdingAPI.dll"),
		filepath.Join(baseDir, "smapi-internal/0Harmony.dll"),
	}, res.Written)
	require.Len(t, res.Warnings, 1)
	copyErr, ok := res.Warnings[0].(provision.CopyError)
	require.True(t, ok)
	assert.Equal(t, list[1], copyErr.Entry)
	assert.True(t, errors.Is(res.Warnings.Err(), os.ErrNotExist))

	assert.Equal(t, "smapi", read(t, fs, "smapi-internal/StardewModdingAPI.dll"))
	assert.Equal(t, "harmony", read(t, fs, "smapi-internal/0Harmony.dll"))
	exists, _ := afero.Exists(fs, filepath.Join(baseDir, "smapi-internal/missing.dll"))
	assert.False(t, exists)
}

func TestExtractorFailureIsAWarning(t *testing.T) {
	ctx := log.Testing(t)
	e, fs, x := newEngine()
	x.fail = map[string]error{"assemblies/StardewValley.dll": apk.ErrMemberNotFound}

	res, err := e.Provision(ctx, entries(), packagePath, baseDir, false)
	require.NoError(t, err)
	assert.Len(t, res.Written, 2)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, apk.ErrMemberNotFound, errors.Cause(res.Warnings[0]))
	assert.Equal(t, "harmony", read(t, fs, "smapi-internal/0Harmony.dll"))

	e.Extractor = nil
	res, err = e.Provision(ctx, entries(), packagePath, baseDir, false)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, provision.ErrNoExtractor, errors.Cause(res.Warnings[0]))
}

func TestInvalidEntriesTouchNothing(t *testing.T) {
	ctx := log.Testing(t)
	e, fs, _ := newEngine()
	list := append(entries(), asset("smapi/0Harmony.dll", "../outside.dll"))

	res, err := e.Provision(ctx, list, packagePath, baseDir, false)
	assert.Nil(t, res)
	assert.Equal(t, provision.ErrInvalidEntry, errors.Cause(err))
	exists, _ := afero.DirExists(fs, baseDir)
	assert.False(t, exists)
}

func TestBaseDirectoryFailureIsFatal(t *testing.T) {
	ctx := log.Testing(t)
	e, _, _ := newEngine()
	e.FS = afero.NewReadOnlyFs(afero.NewMemMapFs())

	res, err := e.Provision(ctx, entries(), packagePath, baseDir, false)
	assert.Nil(t, res)
	assert.Equal(t, provision.ErrDirectoryCreate, errors.Cause(err))
}

// mkdirFailFs refuses to create one directory.
type mkdirFailFs struct {
	afero.Fs
	dir string
}

func (f mkdirFailFs) MkdirAll(path string, perm os.FileMode) error {
	if path == f.dir {
		return &os.PathError{Op: "mkdir", Path: path, Err: syscall.EACCES}
	}
	return f.Fs.MkdirAll(path, perm)
}

func TestParentDirectoryFailureIsFatal(t *testing.T) {
	ctx := log.Testing(t)
	e, fs, _ := newEngine()
	e.FS = mkdirFailFs{Fs: fs, dir: filepath.Join(baseDir, "Mods")}
	list := []compat.ManifestEntry{
		asset("smapi/StardewModdingAPI.dll", "smapi-internal/StardewModdingAPI.dll"),
		asset("smapi/0Harmony.dll", "Mods/0Harmony.dll"),
		asset("smapi/config.json", "smapi-internal/config.json"),
	}

	res, err := e.Provision(ctx, list, packagePath, baseDir, false)
	assert.Nil(t, res)
	assert.Equal(t, provision.ErrDirectoryCreate, errors.Cause(err))
	// Entries before the failure were written, entries after it were not.
	assert.Equal(t, "smapi", read(t, fs, "smapi-internal/StardewModdingAPI.dll"))
	exists, _ := afero.Exists(fs, filepath.Join(baseDir, "smapi-internal/config.json"))
	assert.False(t, exists)
}

func TestMissingAssetDoesNotCreateParent(t *testing.T) {
	ctx := log.Testing(t)
	e, fs, _ := newEngine()
	e.FS = mkdirFailFs{Fs: fs, dir: filepath.Join(baseDir, "Mods")}

	res, err := e.Provision(ctx, []compat.ManifestEntry{asset("smapi/missing.dll", "Mods/missing.dll")}, packagePath, baseDir, false)
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 1)
}

// createFailFs refuses to create files.
type createFailFs struct {
	afero.Fs
}

func (createFailFs) Create(name string) (afero.File, error) {
	return nil, &os.PathError{Op: "open", Path: name, Err: syscall.EROFS}
}

func TestNoMediaFailureIsIgnored(t *testing.T) {
	ctx := log.Testing(t)
	e, fs, _ := newEngine()
	e.FS = createFailFs{fs}

	res, err := e.Provision(ctx, entries(), packagePath, baseDir, false)
	require.NoError(t, err)
	assert.Len(t, res.Written, 3)
	exists, _ := afero.Exists(fs, filepath.Join(baseDir, provision.NoMediaName))
	assert.False(t, exists)
}

func TestProvisionBundled(t *testing.T) {
	ctx := log.Testing(t)
	e, fs, _ := newEngine()

	res, err := e.ProvisionBundled(ctx, "smapi_files_manifest.json", packagePath, baseDir, false)
	require.NoError(t, err)
	assert.Len(t, res.Written, 1)
	assert.Equal(t, `{"VerboseLogging": false}`, read(t, fs, "smapi-internal/config.json"))

	for _, name := range []string{"missing_files_manifest.json", "broken_files_manifest.json"} {
		res, err = e.ProvisionBundled(ctx, name, packagePath, baseDir, false)
		assert.Nil(t, res)
		assert.Equal(t, provision.ErrManifestLoad, errors.Cause(err), name)
	}
}

func TestApplyManifestWithArchive(t *testing.T) {
	ctx := log.Testing(t)
	fs := afero.NewMemMapFs()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("assemblies/StardewValley.dll")
	require.NoError(t, err)
	_, err = fw.Write([]byte("game"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, afero.WriteFile(fs, packagePath, buf.Bytes(), 0644))

	e := provision.Engine{Assets: assets, FS: fs, Extractor: apk.Extractor{FS: fs}}
	m := compat.ApkFilesManifest{
		MinBuildCode: 148,
		Entries: []compat.ManifestEntry{
			member("assemblies/StardewValley.dll", "StardewValley.dll"),
			asset("compat/148/MonoGame.Framework", "MonoGame.Framework.dll"),
			member("assemblies/Missing.dll", "Missing.dll"),
		},
	}
	res, err := e.ApplyManifest(ctx, m, packagePath, baseDir, false)
	require.NoError(t, err)
	assert.Len(t, res.Written, 2)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, apk.ErrMemberNotFound, errors.Cause(res.Warnings[0]))
	assert.Equal(t, "game", read(t, fs, "StardewValley.dll"))
	assert.Equal(t, "monogame", read(t, fs, "MonoGame.Framework.dll"))
}

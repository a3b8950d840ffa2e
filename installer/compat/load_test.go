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

package compat_test

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/apkpatch/installer/compat"
)

const manifestJSONC = `{
	// Builds from 1.4.5 onwards.
	"minBuildCode": 148,
	"maxBuildCode": 160,
	"targetPackageName": ["com.chucklefish.stardewvalley"],
	"manifestEntries": [
		{"origin": 1, "assetPath": "assemblies/StardewValley.dll", "targetPath": "StardewValley.dll"},
		/* patched framework */
		{"origin": 0, "assetPath": "compat/148/MonoGame.Framework.dll", "targetPath": "MonoGame.Framework.dll"},
	],
}`

func TestLoad(t *testing.T) {
	m, err := compat.Load(strings.NewReader(manifestJSONC))
	require.NoError(t, err)
	assert.Equal(t, int64(148), m.MinBuildCode)
	require.NotNil(t, m.MaxBuildCode)
	assert.Equal(t, int64(160), *m.MaxBuildCode)
	assert.Equal(t, []string{"com.chucklefish.stardewvalley"}, m.TargetPackageNames)
	assert.Equal(t, []compat.ManifestEntry{
		{Source: compat.PackageZipEntry{MemberPath: "assemblies/StardewValley.dll"}, TargetPath: "StardewValley.dll"},
		{Source: compat.BundledAsset{Path: "compat/148/MonoGame.Framework.dll"}, TargetPath: "MonoGame.Framework.dll"},
	}, m.Entries)
	assert.Equal(t, "<bundled>", m.Name())
}

func TestLoadRejects(t *testing.T) {
	for _, test := range []struct {
		name string
		doc  string
	}{
		{"not json", `minBuildCode: 1`},
		{"missing build code", `{"manifestEntries": []}`},
		{"missing entries", `{"minBuildCode": 1}`},
		{"string build code", `{"minBuildCode": "1", "manifestEntries": []}`},
		{"fractional build code", `{"minBuildCode": 1.5, "manifestEntries": []}`},
		{"unknown origin", `{"minBuildCode": 1, "manifestEntries": [{"origin": 2, "assetPath": "a", "targetPath": "b"}]}`},
		{"missing target", `{"minBuildCode": 1, "manifestEntries": [{"origin": 0, "assetPath": "a"}]}`},
		{"escaping target", `{"minBuildCode": 1, "manifestEntries": [{"origin": 0, "assetPath": "a", "targetPath": "../b"}]}`},
		{"absolute target", `{"minBuildCode": 1, "manifestEntries": [{"origin": 0, "assetPath": "a", "targetPath": "/b"}]}`},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := compat.Load(strings.NewReader(test.doc))
			assert.Equal(t, compat.ErrManifestLoad, errors.Cause(err))
		})
	}
}

func TestLoadEntries(t *testing.T) {
	entries, err := compat.LoadEntries(strings.NewReader(`[
		{"origin": 0, "assetPath": "smapi/StardewModdingAPI.dll", "targetPath": "smapi-internal/StardewModdingAPI.dll"}, // loader
	]`))
	require.NoError(t, err)
	assert.Equal(t, []compat.ManifestEntry{
		{Source: compat.BundledAsset{Path: "smapi/StardewModdingAPI.dll"}, TargetPath: "smapi-internal/StardewModdingAPI.dll"},
	}, entries)

	_, err = compat.LoadEntries(strings.NewReader(`{"minBuildCode": 1, "manifestEntries": []}`))
	assert.Equal(t, compat.ErrManifestLoad, errors.Cause(err))
}

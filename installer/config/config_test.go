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

package config_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/apkpatch/installer/config"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.Load(afero.NewMemMapFs(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, config.Config{
		BaseDir:   "/sdcard/StardewValley",
		CompatDir: "compat",
		AssetsDir: "assets",
		Package:   "com.chucklefish.stardewvalley",
		LogLevel:  "info",
	}, cfg)
}

func TestPrecedence(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/apkpatch.yaml", []byte(
		"base_dir: /sdcard/Custom\ncompat_dir: /data/compat\nlog_level: debug\n"), 0644))
	t.Setenv("APKPATCH_COMPAT_DIR", "/env/compat")
	t.Setenv("APKPATCH_PACKAGE", "com.chucklefish.stardewvalleysamsung")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(config.FlagName(config.KeyPackage), "", "")
	flags.String(config.FlagName(config.KeyLogLevel), "", "")
	require.NoError(t, flags.Parse([]string{"--log-level=warning"}))

	cfg, err := config.Load(fs, "/etc/apkpatch.yaml", flags)
	require.NoError(t, err)
	assert.Equal(t, "/sdcard/Custom", cfg.BaseDir)
	assert.Equal(t, "/env/compat", cfg.CompatDir)
	assert.Equal(t, "com.chucklefish.stardewvalleysamsung", cfg.Package)
	assert.Equal(t, "warning", cfg.LogLevel)
	assert.Equal(t, "assets", cfg.AssetsDir)
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := config.Load(afero.NewMemMapFs(), "/etc/missing.yaml", nil)
	assert.Error(t, err)
}

func TestFlagName(t *testing.T) {
	assert.Equal(t, "base-dir", config.FlagName(config.KeyBaseDir))
}

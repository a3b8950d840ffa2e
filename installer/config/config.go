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

// Package config loads the installer settings from a config file, the
// environment and command line flags, in increasing order of precedence.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	fileName  = "apkpatch"
	fileType  = "yaml"
	envPrefix = "APKPATCH"
)

// Keys of the settings. Flags use the same names with dashes.
const (
	KeyBaseDir   = "base_dir"
	KeyCompatDir = "compat_dir"
	KeyAssetsDir = "assets_dir"
	KeyPackage   = "package"
	KeyLogLevel  = "log_level"
)

var defaults = map[string]string{
	KeyBaseDir:   "/sdcard/StardewValley",
	KeyCompatDir: "compat",
	KeyAssetsDir: "assets",
	KeyPackage:   "com.chucklefish.stardewvalley",
	KeyLogLevel:  "info",
}

// Config holds the installer settings.
type Config struct {
	// BaseDir receives the provisioned files.
	BaseDir string `mapstructure:"base_dir"`
	// CompatDir holds the installed compatibility packages.
	CompatDir string `mapstructure:"compat_dir"`
	// AssetsDir holds the bundled assets.
	AssetsDir string `mapstructure:"assets_dir"`
	// Package is the name of the game package.
	Package  string `mapstructure:"package"`
	LogLevel string `mapstructure:"log_level"`
}

// FlagName returns the command line flag name for key.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// Load reads the settings. If path is empty, apkpatch.yaml is looked for in
// the working directory and may be absent; otherwise the named file must
// exist. Flags in flags named after a key with FlagName override the file and
// the APKPATCH_ environment, but only when set.
func Load(fs afero.Fs, path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetFs(fs)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName(fileName)
		v.SetConfigType(fileType)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, errors.Wrap(err, "reading config")
			}
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "reading config %s", path)
		}
	}

	if flags != nil {
		for key := range defaults {
			if f := flags.Lookup(FlagName(key)); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	return cfg, nil
}

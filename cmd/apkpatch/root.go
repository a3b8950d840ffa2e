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

package main

import (
	"context"
	"io/fs"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/google/apkpatch/core/log"
	"github.com/google/apkpatch/installer/config"
)

// env is the state shared by the subcommands once the root has loaded the
// configuration.
type env struct {
	fs  afero.Fs
	cfg config.Config
}

// assets returns the bundled assets directory as an fs.FS.
func (e *env) assets() fs.FS {
	return afero.NewIOFS(afero.NewBasePathFs(e.fs, e.cfg.AssetsDir))
}

func newRootCmd(fsys afero.Fs) *cobra.Command {
	e := &env{fs: fsys}
	var configPath string

	cmd := &cobra.Command{
		Use:          "apkpatch",
		Short:        "Patch an APK manifest and provision loader files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(e.fs, configPath, cmd.Flags())
			if err != nil {
				return err
			}
			severity, err := log.ParseSeverity(cfg.LogLevel)
			if err != nil {
				return err
			}
			e.cfg = cfg

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = log.Put(ctx, log.Console(cmd.ErrOrStderr(), severity))
			cmd.SetContext(log.Enter(ctx, cmd.Name()))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default ./apkpatch.yaml)")
	flags.String(config.FlagName(config.KeyBaseDir), "", "directory receiving the provisioned files")
	flags.String(config.FlagName(config.KeyCompatDir), "", "directory holding the compatibility packages")
	flags.String(config.FlagName(config.KeyAssetsDir), "", "directory holding the bundled assets")
	flags.String(config.FlagName(config.KeyPackage), "", "package name of the game")
	flags.String(config.FlagName(config.KeyLogLevel), "", "debug, info, warning, error or fatal")

	cmd.AddCommand(
		manifestsCmd(e),
		provisionCmd(e),
		patchCmd(e),
		dumpCmd(e),
		infoCmd(e),
	)
	return cmd
}

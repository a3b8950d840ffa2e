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
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/google/apkpatch/core/log"
	"github.com/google/apkpatch/core/os/android/apk"
	"github.com/google/apkpatch/installer/compat"
	"github.com/google/apkpatch/installer/provision"
)

func provisionCmd(e *env) *cobra.Command {
	var (
		check   bool
		bundled string
	)

	c := &cobra.Command{
		Use:   "provision <apk>",
		Short: "Stage the loader files and the matching compatibility files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			packagePath := args[0]
			engine := provision.Engine{
				Assets:    e.assets(),
				FS:        e.fs,
				Extractor: apk.Extractor{FS: e.fs},
			}
			out := cmd.OutOrStdout()

			res, err := engine.ProvisionBundled(ctx, bundled, packagePath, e.cfg.BaseDir, check)
			if err != nil {
				return err
			}
			report(out, bundled, res)

			data, err := afero.ReadFile(e.fs, packagePath)
			if err != nil {
				return log.Err(ctx, err, "Reading package")
			}
			info, err := apk.Analyze(ctx, data)
			if err != nil {
				return err
			}
			m, err := compat.Select(e.resolver().FindAll(ctx), info.Package, info.VersionCode)
			if err != nil {
				log.W(ctx, "%v", err)
				return nil
			}
			res, err = engine.ApplyManifest(ctx, m, packagePath, e.cfg.BaseDir, check)
			if err != nil {
				return err
			}
			report(out, m.Name(), res)
			return nil
		},
	}
	c.Flags().BoolVar(&check, "check", false, "only stage files that are missing")
	c.Flags().StringVar(&bundled, "bundled", "smapi_files_manifest.json", "bundled list of loader files")
	return c
}

func report(w io.Writer, name string, res *provision.Result) {
	fmt.Fprintf(w, "%s: %d written, %d kept, %d warnings\n",
		name, len(res.Written), len(res.Skipped), len(res.Warnings))
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "  %v\n", warning)
	}
}

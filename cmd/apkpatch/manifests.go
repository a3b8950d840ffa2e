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

	"github.com/spf13/cobra"

	"github.com/google/apkpatch/installer/compat"
)

func (e *env) resolver() compat.Resolver {
	return compat.Resolver{Assets: e.assets(), FS: e.fs, CompatDir: e.cfg.CompatDir}
}

func manifestsCmd(e *env) *cobra.Command {
	var buildCode int64

	c := &cobra.Command{
		Use:   "manifests",
		Short: "List the compatibility manifests in the order they are tried",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manifests := e.resolver().FindAll(cmd.Context())
			out := cmd.OutOrStdout()
			for _, m := range manifests {
				max := "-"
				if m.MaxBuildCode != nil {
					max = fmt.Sprint(*m.MaxBuildCode)
				}
				fmt.Fprintf(out, "%-24s min=%-8d max=%-8s entries=%d\n", m.Name(), m.MinBuildCode, max, len(m.Entries))
			}
			if !cmd.Flags().Changed("build-code") {
				return nil
			}
			m, err := compat.Select(manifests, e.cfg.Package, buildCode)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "selected: %s\n", m.Name())
			return nil
		},
	}
	c.Flags().Int64Var(&buildCode, "build-code", 0, "select the manifest for this game build")
	return c
}

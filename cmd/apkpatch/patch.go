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
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/google/apkpatch/core/log"
	"github.com/google/apkpatch/core/os/android/apk"
	"github.com/google/apkpatch/core/os/android/binaryxml"
)

// parseReplace parses name:old=new into a rule on the android attribute name.
func parseReplace(s string) (binaryxml.Rule, error) {
	name, change, ok := strings.Cut(s, ":")
	if !ok {
		return nil, errors.Errorf("replacement %q is not name:old=new", s)
	}
	old, new, ok := strings.Cut(change, "=")
	if !ok || name == "" {
		return nil, errors.Errorf("replacement %q is not name:old=new", s)
	}
	return binaryxml.ReplaceString(binaryxml.AndroidNamespace, name, old, new), nil
}

func patchCmd(e *env) *cobra.Command {
	var (
		renameTo   string
		replace    []string
		debuggable bool
	)

	c := &cobra.Command{
		Use:   "patch <in.apk> <out.apk>",
		Short: "Rewrite attributes of the APK manifest",
		Long: "Rewrite attributes of the APK manifest. The signature files are " +
			"dropped, the output must be signed again before installing it.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rules := []binaryxml.Rule{}
			if renameTo != "" {
				rules = append(rules, binaryxml.RenamePackage(e.cfg.Package, renameTo))
			}
			for _, r := range replace {
				rule, err := parseReplace(r)
				if err != nil {
					return err
				}
				rules = append(rules, rule)
			}

			data, err := afero.ReadFile(e.fs, args[0])
			if err != nil {
				return log.Err(ctx, err, "Reading package")
			}
			var out bytes.Buffer
			if err := apk.PatchManifest(ctx, data, &out, binaryxml.Chain(rules...)); err != nil {
				return err
			}
			if debuggable {
				patched := out.Bytes()
				out = bytes.Buffer{}
				if err := apk.MakeDebuggable(ctx, patched, &out); err != nil {
					return err
				}
			}
			if err := afero.WriteFile(e.fs, args[1], out.Bytes(), 0644); err != nil {
				return log.Err(ctx, err, "Writing package")
			}
			log.I(ctx, "Wrote %s", args[1])
			return nil
		},
	}
	c.Flags().StringVar(&renameTo, "rename-package", "", "rename the configured package")
	c.Flags().StringArrayVar(&replace, "replace", nil, "replace an android attribute value, as name:old=new")
	c.Flags().BoolVar(&debuggable, "debuggable", false, "mark the application debuggable")
	return c
}

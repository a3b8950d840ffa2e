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
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/google/apkpatch/core/log"
	"github.com/google/apkpatch/core/os/android/apk"
	"github.com/google/apkpatch/core/os/android/binaryxml"
)

func dumpCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <apk|AndroidManifest.xml>",
		Short: "Print the manifest of an APK or a binary XML file as text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := afero.ReadFile(e.fs, args[0])
			if err != nil {
				return log.Err(ctx, err, "Reading input")
			}

			var xml string
			if strings.HasSuffix(strings.ToLower(args[0]), ".xml") {
				xml, err = binaryxml.Decode(ctx, data)
			} else {
				files, rerr := apk.Read(ctx, data)
				if rerr != nil {
					return rerr
				}
				xml, err = apk.GetManifestXML(ctx, files)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), xml)
			return nil
		},
	}
}

func infoCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "info <apk>",
		Short: "Print a summary of an APK",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := afero.ReadFile(e.fs, args[0])
			if err != nil {
				return log.Err(ctx, err, "Reading package")
			}
			info, err := apk.Analyze(ctx, data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "package:     %s\n", info.Package)
			fmt.Fprintf(out, "label:       %s\n", info.Label)
			fmt.Fprintf(out, "version:     %s (%d)\n", info.VersionName, info.VersionCode)
			fmt.Fprintf(out, "engine:      %s\n", info.Engine)
			fmt.Fprintf(out, "abi:         %s\n", strings.Join(info.ABI, ", "))
			fmt.Fprintf(out, "debuggable:  %t\n", info.Debuggable)
			if info.Activity != "" {
				fmt.Fprintf(out, "launch:      %s\n", info.URI())
			}
			return nil
		},
	}
}

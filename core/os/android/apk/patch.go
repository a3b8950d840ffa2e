// Copyright (C) 2017 Google Inc.
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

package apk

import (
	"bytes"
	"context"
	"io"
	"regexp"

	"github.com/klauspost/compress/zip"

	"github.com/google/apkpatch/core/log"
	"github.com/google/apkpatch/core/os/android/binaryxml"
)

// jarSignatureFilePattern matches the v1 signature files, which no longer
// verify once any member has changed.
var jarSignatureFilePattern = regexp.MustCompile(`^META-INF/([^/]*\.(DSA|RSA|EC|SF)|MANIFEST\.MF)$`)

// PatchManifest copies the APK in src to dst, running the manifest through
// rule. The v1 signature files are dropped and the output must be re-signed
// before installation.
func PatchManifest(ctx context.Context, src []byte, dst io.Writer, rule binaryxml.Rule) error {
	return rewrite(ctx, src, dst, func(data []byte) ([]byte, error) {
		return binaryxml.Patch(ctx, data, rule)
	})
}

// MakeDebuggable copies the APK in src to dst with android:debuggable="true"
// set on the application.
func MakeDebuggable(ctx context.Context, src []byte, dst io.Writer) error {
	return rewrite(ctx, src, dst, func(data []byte) ([]byte, error) {
		var out bytes.Buffer
		if err := binaryxml.SetDebuggableFlag(bytes.NewReader(data), &out); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	})
}

// IsDebuggable returns true if the APK in data is marked debuggable.
func IsDebuggable(ctx context.Context, data []byte) (bool, error) {
	files, err := Read(ctx, data)
	if err != nil {
		return false, err
	}
	m, err := GetManifest(ctx, files)
	if err != nil {
		return false, err
	}
	return m.Application.Debuggable, nil
}

func rewrite(ctx context.Context, src []byte, dst io.Writer, transform func([]byte) ([]byte, error)) error {
	files, err := Read(ctx, src)
	if err != nil {
		return err
	}
	if find(files, ManifestPath) == nil {
		return log.Errf(ctx, ErrMemberNotFound, "Looking for %s", ManifestPath)
	}

	// The output is built in memory so that a failure leaves dst untouched.
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, zf := range files {
		if jarSignatureFilePattern.MatchString(zf.Name) {
			log.I(ctx, "Skipping file %s", zf.Name)
			continue
		}
		if err := copyMember(ctx, w, zf, transform); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return log.Err(ctx, err, "Finishing archive")
	}
	_, err = dst.Write(buf.Bytes())
	return err
}

func copyMember(ctx context.Context, w *zip.Writer, zf *zip.File, transform func([]byte) ([]byte, error)) error {
	fr, err := zf.Open()
	if err != nil {
		return log.Errf(ctx, err, "Opening %s", zf.Name)
	}
	defer fr.Close()

	fw, err := w.CreateHeader(&zip.FileHeader{
		Name:     zf.Name,
		Method:   zf.Method,
		Modified: zf.Modified,
	})
	if err != nil {
		return log.Errf(ctx, err, "Adding %s", zf.Name)
	}

	if zf.Name != ManifestPath {
		if _, err := io.Copy(fw, fr); err != nil {
			return log.Errf(ctx, err, "Copying %s", zf.Name)
		}
		return nil
	}

	log.I(ctx, "Modifying manifest file")
	data, err := io.ReadAll(fr)
	if err != nil {
		return log.Errf(ctx, err, "Reading %s", zf.Name)
	}
	patched, err := transform(data)
	if err != nil {
		return err
	}
	_, err = fw.Write(patched)
	return err
}

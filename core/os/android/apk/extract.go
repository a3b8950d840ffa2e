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

package apk

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/google/apkpatch/core/log"
)

// Extractor copies single members out of APKs held on FS.
type Extractor struct {
	FS afero.Fs
}

// ExtractMember copies the archive member to dest, creating any missing parent
// directories and overwriting dest if it exists.
func (e Extractor) ExtractMember(ctx context.Context, archive, member, dest string) error {
	ctx = log.V{"archive": archive, "member": member}.Bind(ctx)

	f, err := e.FS.Open(archive)
	if err != nil {
		return log.Err(ctx, err, "Opening archive")
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return log.Err(ctx, err, "Reading archive size")
	}
	z, err := zip.NewReader(f, info.Size())
	if err != nil {
		return log.Err(ctx, ErrNotAPK, err.Error())
	}

	zf := find(z.File, member)
	if zf == nil || zf.FileInfo().IsDir() {
		return log.Err(ctx, ErrMemberNotFound, "Extracting member")
	}
	if err := e.FS.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return log.Err(ctx, err, "Creating parent directory")
	}

	src, err := zf.Open()
	if err != nil {
		return log.Err(ctx, err, "Opening member")
	}
	defer src.Close()

	out, err := e.FS.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return log.Err(ctx, err, "Creating destination")
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return log.Err(ctx, err, "Copying member")
	}
	if err := out.Close(); err != nil {
		return log.Err(ctx, err, "Closing destination")
	}
	log.D(ctx, "Extracted to %s", dest)
	return nil
}

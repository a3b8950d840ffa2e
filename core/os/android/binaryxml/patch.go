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

package binaryxml

import (
	"context"

	"github.com/google/apkpatch/core/log"
)

// Transform decodes the binary XML document data, drives v over it and
// returns the re-encoded document. Everything v does not edit is carried
// through unchanged. Nothing is returned if data is not a well formed
// document; the error's cause is then ErrMalformed.
func Transform(ctx context.Context, data []byte, v Visitor) ([]byte, error) {
	tree, err := decodeXmlTree(data)
	if err != nil {
		return nil, log.Err(ctx, err, "Decoding binary XML")
	}
	tree.accept(v)
	out := tree.encode()
	if _, err := decodeXmlTree(out); err != nil {
		return nil, log.Err(ctx, err, "Verifying re-encoded binary XML")
	}
	return out, nil
}

// Patch rewrites the attributes of the binary XML document data with rule.
func Patch(ctx context.Context, data []byte, rule Rule) ([]byte, error) {
	return Transform(ctx, data, Rewrite(nil, rule))
}

// Walk drives v over the binary XML document data without producing output.
// Edits returned by v are discarded.
func Walk(ctx context.Context, data []byte, v Visitor) error {
	tree, err := decodeXmlTree(data)
	if err != nil {
		return log.Err(ctx, err, "Decoding binary XML")
	}
	tree.accept(v)
	return nil
}

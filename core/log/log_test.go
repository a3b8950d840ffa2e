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

package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/apkpatch/core/log"
)

func capture(s log.Severity) (context.Context, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return log.Put(context.Background(), log.JSON(buf, s)), buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	out := []map[string]interface{}{}
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		m := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		out = append(out, m)
	}
	return out
}

func TestSeverityFilter(t *testing.T) {
	ctx, buf := capture(log.Warning)
	log.D(ctx, "debug %d", 1)
	log.I(ctx, "info %d", 2)
	log.W(ctx, "warning %d", 3)
	log.E(ctx, "error %d", 4)

	got := lines(t, buf)
	require.Len(t, got, 2)
	assert.Equal(t, "warning 3", got[0]["message"])
	assert.Equal(t, "warn", got[0]["level"])
	assert.Equal(t, "error 4", got[1]["message"])
}

func TestBindAndEnter(t *testing.T) {
	ctx, buf := capture(log.Debug)
	ctx = log.Enter(ctx, "provision")
	ctx = log.V{"target": "a/b.dll", "entry": 2}.Bind(ctx)
	log.I(ctx, "copied")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "provision", got[0]["scope"])
	assert.Equal(t, "a/b.dll", got[0]["target"])
	assert.EqualValues(t, 2, got[0]["entry"])
}

func TestErr(t *testing.T) {
	ctx := log.Testing(t)
	cause := errors.New("disk full")
	err := log.Errf(ctx, cause, "Writing %s", "x")
	assert.Equal(t, "Writing x\n   Cause: disk full", err.Error())
	assert.True(t, errors.Is(err, cause))

	assert.Equal(t, "no cause", log.Err(ctx, nil, "no cause").Error())
}

func TestParseSeverity(t *testing.T) {
	for _, test := range []struct {
		in   string
		want log.Severity
	}{
		{"debug", log.Debug},
		{"I", log.Info},
		{"warn", log.Warning},
		{"Error", log.Error},
		{"f", log.Fatal},
	} {
		got, err := log.ParseSeverity(test.in)
		assert.NoError(t, err, test.in)
		assert.Equal(t, test.want, got, test.in)
	}
	_, err := log.ParseSeverity("loud")
	assert.Error(t, err)
}

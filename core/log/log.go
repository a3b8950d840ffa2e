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

// Package log provides a logger carried on a context.Context.
//
// Call sites log through the package level helpers:
//
//	log.I(ctx, "Provisioning %d entries", len(entries))
//
// The logger itself is a zerolog.Logger installed with Put; contexts without
// one log to stderr at Info severity.
package log

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
)

// Logger provides a logging interface.
type Logger struct {
	z zerolog.Logger
}

type loggerKeyTy string

const loggerKey loggerKeyTy = "log.loggerKey"

var fallback = Console(os.Stderr, Info)

// Put returns a new context with z installed as the logger.
func Put(ctx context.Context, z zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, z)
}

// From returns the Logger for the context ctx.
func From(ctx context.Context) *Logger {
	if z, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return &Logger{z}
	}
	return &Logger{fallback}
}

// V is a set of key-value pairs attached to every message logged through a
// context they are bound to.
type V map[string]interface{}

// Bind returns a new context with the values in v attached to its logger.
func (v V) Bind(ctx context.Context) context.Context {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	c := From(ctx).z.With()
	for _, k := range keys {
		c = c.Interface(k, v[k])
	}
	return Put(ctx, c.Logger())
}

// Bind returns a new Logger from the context ctx with the additional values in
// v.
func Bind(ctx context.Context, v V) *Logger {
	return From(v.Bind(ctx))
}

// Enter returns a new context with name recorded as the current scope.
func Enter(ctx context.Context, name string) context.Context {
	return Put(ctx, From(ctx).z.With().Str("scope", name).Logger())
}

// D logs a debug message to the logging target.
func D(ctx context.Context, fmt string, args ...interface{}) { From(ctx).D(fmt, args...) }

// I logs a info message to the logging target.
func I(ctx context.Context, fmt string, args ...interface{}) { From(ctx).I(fmt, args...) }

// W logs a warning message to the logging target.
func W(ctx context.Context, fmt string, args ...interface{}) { From(ctx).W(fmt, args...) }

// E logs a error message to the logging target.
func E(ctx context.Context, fmt string, args ...interface{}) { From(ctx).E(fmt, args...) }

// D logs a debug message to the logging target.
func (l *Logger) D(fmt string, args ...interface{}) { l.Logf(Debug, fmt, args...) }

// I logs a info message to the logging target.
func (l *Logger) I(fmt string, args ...interface{}) { l.Logf(Info, fmt, args...) }

// W logs a warning message to the logging target.
func (l *Logger) W(fmt string, args ...interface{}) { l.Logf(Warning, fmt, args...) }

// E logs a error message to the logging target.
func (l *Logger) E(fmt string, args ...interface{}) { l.Logf(Error, fmt, args...) }

// Logf logs a printf-style message at severity s to the logging target.
func (l *Logger) Logf(s Severity, format string, args ...interface{}) {
	l.z.WithLevel(s.level()).Msg(fmt.Sprintf(format, args...))
}

// Zerolog returns the underlying zerolog.Logger.
func (l *Logger) Zerolog() zerolog.Logger { return l.z }

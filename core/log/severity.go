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

package log

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Severity defines the severity of a logging message.
type Severity int

// The values for Severity. Lower values are more verbose.
const (
	Debug Severity = iota
	Info
	Warning
	Error
	Fatal
)

func (s Severity) level() zerolog.Level {
	switch s {
	case Debug:
		return zerolog.DebugLevel
	case Info:
		return zerolog.InfoLevel
	case Warning:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.FatalLevel
	}
}

func (s Severity) String() string {
	switch s {
	case Debug:
		return "Debug"
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Fatal:
		return "Fatal"
	default:
		return fmt.Sprintf("Severity<%d>", int(s))
	}
}

// ParseSeverity returns the Severity named by s, ignoring case. Both the
// long names and the single letter forms (d, i, w, e, f) are accepted.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "d", "debug":
		return Debug, nil
	case "i", "info":
		return Info, nil
	case "w", "warn", "warning":
		return Warning, nil
	case "e", "error":
		return Error, nil
	case "f", "fatal":
		return Fatal, nil
	}
	return Info, fmt.Errorf("Unknown severity %q", s)
}

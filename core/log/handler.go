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
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Console returns a logger that writes human readable lines to w, dropping
// messages below severity s.
func Console(w io.Writer, s Severity) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(s.level()).With().Timestamp().Logger()
}

// JSON returns a logger that writes one JSON object per message to w,
// dropping messages below severity s.
func JSON(w io.Writer, s Severity) zerolog.Logger {
	return zerolog.New(w).Level(s.level()).With().Timestamp().Logger()
}

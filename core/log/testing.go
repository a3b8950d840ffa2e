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

package log

import (
	"context"

	"github.com/rs/zerolog"
)

// Testing returns a default context with a logger that writes to t installed.
func Testing(t zerolog.TestingLog) context.Context {
	return SubTest(context.Background(), t)
}

// SubTest returns the context with the test logger replaced with one that
// writes to t. This is intended to be used for sub-tests. For example:
//
//	func TestExample(t *testing.T) {
//	  ctx := log.Testing(t)
//	  for _, test := range tests {
//	    t.Run(test.name, func(t *testing.T) {
//	      test.run(log.SubTest(ctx, t))
//	    }
//	  }
//	}
func SubTest(ctx context.Context, t zerolog.TestingLog) context.Context {
	if t == nil {
		panic("delegate cannot be nil")
	}
	return Put(ctx, zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel))
}

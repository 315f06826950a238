// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cpuinfo

import (
	"bytes"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/qhwy/hwy"
)

func TestDetect(t *testing.T) {
	f := Detect()
	assert.Equal(t, runtime.GOARCH, f.GOARCH)
	assert.Equal(t, hwy.CurrentLevel(), f.Level)
	if f.Lanes512 {
		assert.True(t, f.Lanes256)
	}
	if runtime.GOARCH == "amd64" {
		assert.NotEmpty(t, f.X86Flags)
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report(&buf))
	assert.Contains(t, buf.String(), "Dispatch level: "+hwy.CurrentLevel().String())
	assert.Contains(t, buf.String(), "Lanes256 kernel:")
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, errors.New("closed")
}

func TestReportStopsOnWriteError(t *testing.T) {
	w := &failingWriter{}
	assert.EqualError(t, Report(w), "closed")
	assert.Equal(t, 1, w.n)
}

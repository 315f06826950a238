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

package kernelmap

import (
	"fmt"
	"strings"
)

// Threading is the concurrency mode a state vector is driven in.
type Threading uint8

const (
	SingleThread Threading = iota
	MultiThread
)

// AllThreading returns every threading mode.
func AllThreading() []Threading { return []Threading{SingleThread, MultiThread} }

func (t Threading) String() string {
	switch t {
	case SingleThread:
		return "SingleThread"
	case MultiThread:
		return "MultiThread"
	default:
		return fmt.Sprintf("Threading(%d)", uint8(t))
	}
}

// ParseThreading parses a threading mode name, ignoring case. "single" and
// "multi" are accepted as short forms.
func ParseThreading(s string) (Threading, error) {
	switch strings.ToLower(s) {
	case "singlethread", "single":
		return SingleThread, nil
	case "multithread", "multi":
		return MultiThread, nil
	}
	return 0, fmt.Errorf("%w: threading %q", ErrInvalidConfig, s)
}

// MemoryModel is the alignment class of an amplitude buffer.
type MemoryModel uint8

const (
	Unaligned MemoryModel = iota
	Aligned256
	Aligned512
)

// AllMemoryModels returns every memory model.
func AllMemoryModels() []MemoryModel { return []MemoryModel{Unaligned, Aligned256, Aligned512} }

func (m MemoryModel) String() string {
	switch m {
	case Unaligned:
		return "Unaligned"
	case Aligned256:
		return "Aligned256"
	case Aligned512:
		return "Aligned512"
	default:
		return fmt.Sprintf("MemoryModel(%d)", uint8(m))
	}
}

// Alignment returns the byte alignment the model guarantees.
func (m MemoryModel) Alignment() int {
	switch m {
	case Aligned256:
		return 32
	case Aligned512:
		return 64
	default:
		return 1
	}
}

// ParseMemoryModel parses a memory model name, ignoring case.
func ParseMemoryModel(s string) (MemoryModel, error) {
	for _, m := range AllMemoryModels() {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: memory model %q", ErrInvalidConfig, s)
}

// MemoryModelFor classifies a buffer whose start is a multiple of
// alignment bytes.
func MemoryModelFor(alignment int) MemoryModel {
	switch {
	case alignment >= 64:
		return Aligned512
	case alignment >= 32:
		return Aligned256
	default:
		return Unaligned
	}
}

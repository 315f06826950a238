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

// Package hwy provides the lane abstraction and CPU dispatch level used by
// the state-vector kernels.
//
// A Vec holds a fixed number of lanes of a float or complex type. The
// number of lanes is a function of the register width in bytes, so a
// kernel written against Vec can be instantiated for 256-bit and 512-bit
// registers without duplicating its body.
//
// The dispatch level is detected once at init from golang.org/x/sys/cpu.
// Setting HWY_NO_SIMD to any non-empty value forces scalar mode.
package hwy

import "os"

// Floats is the set of real component types an amplitude may use.
type Floats interface {
	~float32 | ~float64
}

// Complexes is the set of amplitude types a state vector may hold.
// complex64 pairs with float32 components and complex128 with float64.
type Complexes interface {
	~complex64 | ~complex128
}

// Lanes is the set of element types a Vec can hold.
type Lanes interface {
	Floats | Complexes
}

// DispatchLevel identifies the widest vector extension available.
type DispatchLevel int

const (
	DispatchScalar DispatchLevel = iota
	DispatchSSE2
	DispatchNEON
	DispatchAVX2
	DispatchAVX512
)

func (l DispatchLevel) String() string {
	switch l {
	case DispatchScalar:
		return "scalar"
	case DispatchSSE2:
		return "sse2"
	case DispatchNEON:
		return "neon"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

// NoSimdEnvVar is the environment variable that disables vector dispatch.
const NoSimdEnvVar = "HWY_NO_SIMD"

var (
	currentLevel DispatchLevel
	currentWidth int
	currentName  string
)

// CurrentLevel returns the detected dispatch level.
func CurrentLevel() DispatchLevel { return currentLevel }

// CurrentWidth returns the detected vector register width in bytes.
func CurrentWidth() int { return currentWidth }

// CurrentName returns the detected dispatch level as a lowercase name.
func CurrentName() string { return currentName }

// NoSimdEnv reports whether HWY_NO_SIMD is set.
func NoSimdEnv() bool {
	return os.Getenv(NoSimdEnvVar) != ""
}

// HasAVX2 reports whether 256-bit lanes are available.
func HasAVX2() bool { return currentLevel >= DispatchAVX2 }

// HasAVX512 reports whether 512-bit lanes are available.
func HasAVX512() bool { return currentLevel >= DispatchAVX512 }

func setScalarMode() {
	currentLevel = DispatchScalar
	currentWidth = 16 // Use 16-byte vectors even in scalar mode for consistency
	currentName = "scalar"
}

func setLevel(level DispatchLevel, width int) {
	currentLevel = level
	currentWidth = width
	currentName = level.String()
}

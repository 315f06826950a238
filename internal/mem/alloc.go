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

// Package mem allocates amplitude buffers at a requested byte alignment and
// reinterprets them as float slices.
package mem

import (
	"fmt"
	"unsafe"

	"github.com/ajroetker/qhwy/hwy"
)

// MaxAlignment is the widest alignment any kernel asks for (AVX-512).
const MaxAlignment = 64

// Allocator hands out aligned amplitude buffers.
type Allocator[C hwy.Complexes] interface {
	// Allocate returns count zeroed amplitudes whose first element sits at
	// a multiple of alignment bytes.
	Allocate(alignment, count int) []C
	// Free releases a buffer obtained from Allocate.
	Free(buf []C)
}

// GoAllocator allocates from the Go heap. Free is a no-op; the garbage
// collector reclaims buffers.
type GoAllocator[C hwy.Complexes] struct{}

var _ Allocator[complex128] = GoAllocator[complex128]{}

// Allocate implements Allocator.
func (GoAllocator[C]) Allocate(alignment, count int) []C {
	return AllocAligned[C](count, alignment)
}

// Free implements Allocator.
func (GoAllocator[C]) Free([]C) {}

// AllocAligned allocates count amplitudes starting at a multiple of
// alignment bytes. It over-allocates by alignment bytes and slices from
// the first aligned offset; the returned slice keeps the backing array
// alive. alignment must be a power of two.
func AllocAligned[C hwy.Complexes](count, alignment int) []C {
	if alignment <= 0 || alignment&(alignment-1) != 0 {
		panic(fmt.Sprintf("mem: alignment %d is not a power of two", alignment))
	}
	if count == 0 {
		return nil
	}
	var zero C
	size := int(unsafe.Sizeof(zero))
	buf := make([]byte, count*size+alignment)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := int((uintptr(alignment) - addr&uintptr(alignment-1)) & uintptr(alignment-1))
	ptr := unsafe.Pointer(&buf[offset])   //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*C)(ptr), count) //nolint:gosec // unsafe is required for memory alignment
}

// IsAligned reports whether buf starts at a multiple of alignment bytes.
// An empty buffer is aligned to everything.
func IsAligned[C hwy.Complexes](buf []C, alignment int) bool {
	if len(buf) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&buf[0]))%uintptr(alignment) == 0 //nolint:gosec // address inspection only
}

// Alignment returns the largest power of two up to MaxAlignment that the
// start of buf is a multiple of.
func Alignment[C hwy.Complexes](buf []C) int {
	for a := MaxAlignment; a > 1; a >>= 1 {
		if IsAligned(buf, a) {
			return a
		}
	}
	return 1
}

// Floats64 reinterprets a complex128 buffer as interleaved real and
// imaginary parts. The view aliases buf.
func Floats64(buf []complex128) []float64 {
	if len(buf) == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&buf[0])), 2*len(buf)) //nolint:gosec // complex128 is two float64s
}

// Floats32 reinterprets a complex64 buffer as interleaved real and
// imaginary parts. The view aliases buf.
func Floats32(buf []complex64) []float32 {
	if len(buf) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&buf[0])), 2*len(buf)) //nolint:gosec // complex64 is two float32s
}

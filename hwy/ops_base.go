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

package hwy

import (
	"fmt"
	"unsafe"
)

// This file provides pure Go implementations of the lane operations used by
// the vectorized kernels. Every operation works lane by lane on vectors of
// equal length; the width of a vector is fixed when it is loaded or set.
// Vectors live in fixed-size arrays and are passed by value, so no
// operation allocates.

// MaxVecLanes is the lane capacity of a Vec: eight lanes cover complex64
// in a 512-bit register.
const MaxVecLanes = 8

// Vec is a vector of up to MaxVecLanes lanes.
type Vec[T Lanes] struct {
	data [MaxVecLanes]T
	n    int
}

// Indices is a lane permutation for TableLookupLanes.
type Indices struct {
	idx [MaxVecLanes]int
	n   int
}

// LanesFor returns how many lanes of T fit in a register of widthBytes.
// The result is at least 1.
func LanesFor[T Lanes](widthBytes int) int {
	var zero T
	n := widthBytes / int(unsafe.Sizeof(zero))
	if n < 1 {
		return 1
	}
	return n
}

func checkLanes(n int) {
	if n > MaxVecLanes {
		panic(fmt.Sprintf("hwy: %d lanes exceed vector capacity %d", n, MaxVecLanes))
	}
}

// LoadN creates a vector by loading n lanes from src. Panics if n exceeds
// MaxVecLanes.
func LoadN[T Lanes](src []T, n int) Vec[T] {
	checkLanes(n)
	var v Vec[T]
	v.n = copy(v.data[:n], src)
	return v
}

// Store writes a vector's data to a slice.
func Store[T Lanes](v Vec[T], dst []T) {
	copy(dst, v.data[:v.n])
}

// SetN creates an n-lane vector with all lanes set to value.
func SetN[T Lanes](value T, n int) Vec[T] {
	checkLanes(n)
	v := Vec[T]{n: n}
	for i := 0; i < n; i++ {
		v.data[i] = value
	}
	return v
}

// Add performs element-wise addition.
func Add[T Lanes](a, b Vec[T]) Vec[T] {
	r := Vec[T]{n: min(a.n, b.n)}
	for i := 0; i < r.n; i++ {
		r.data[i] = a.data[i] + b.data[i]
	}
	return r
}

// Sub performs element-wise subtraction.
func Sub[T Lanes](a, b Vec[T]) Vec[T] {
	r := Vec[T]{n: min(a.n, b.n)}
	for i := 0; i < r.n; i++ {
		r.data[i] = a.data[i] - b.data[i]
	}
	return r
}

// Mul performs element-wise multiplication.
func Mul[T Lanes](a, b Vec[T]) Vec[T] {
	r := Vec[T]{n: min(a.n, b.n)}
	for i := 0; i < r.n; i++ {
		r.data[i] = a.data[i] * b.data[i]
	}
	return r
}

// MulAdd computes a*b + c element-wise.
func MulAdd[T Lanes](a, b, c Vec[T]) Vec[T] {
	r := Vec[T]{n: min(a.n, b.n, c.n)}
	for i := 0; i < r.n; i++ {
		r.data[i] = a.data[i]*b.data[i] + c.data[i]
	}
	return r
}

// Neg negates all lanes.
func Neg[T Lanes](v Vec[T]) Vec[T] {
	r := Vec[T]{n: v.n}
	for i := 0; i < r.n; i++ {
		r.data[i] = -v.data[i]
	}
	return r
}

// TableLookupLanes returns a vector whose lane i is lane idx[i] of v.
// Panics if idx is shorter than v or holds an out-of-range lane.
func TableLookupLanes[T Lanes](v Vec[T], idx Indices) Vec[T] {
	if idx.n < v.n {
		panic("hwy: lookup table shorter than vector")
	}
	r := Vec[T]{n: v.n}
	for i := 0; i < r.n; i++ {
		j := idx.idx[i]
		if j >= v.n {
			panic(fmt.Sprintf("hwy: lane %d out of range for %d-lane vector", j, v.n))
		}
		r.data[i] = v.data[j]
	}
	return r
}

// Xor1Indices returns the lane permutation that exchanges every lane i
// with lane i^mask.
func Xor1Indices(numLanes, mask int) Indices {
	checkLanes(numLanes)
	idx := Indices{n: numLanes}
	for i := 0; i < numLanes; i++ {
		idx.idx[i] = i ^ mask
	}
	return idx
}

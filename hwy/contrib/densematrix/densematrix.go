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

// Package densematrix applies an arbitrary 2^k x 2^k matrix to k wires of
// a state vector by gather, multiply and scatter over each group of
// amplitudes the wires address.
//
// Matrices are row-major with wires[0] as the most significant bit of the
// row index. With inverse set the conjugate transpose is applied:
//
//	out[i] = sum_j conj(M[j][i]) * in[j]
//
// Every function panics if the state is not 2^n amplitudes, the wires are
// invalid, or the matrix is not 4^k entries.
package densematrix

import (
	"fmt"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/bitindex"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
)

func prepare[C hwy.Complexes](arr []C, n int, matrix []C, wires []int, arity int, inverse bool) []C {
	bitindex.ValidateState(len(arr), n)
	bitindex.Validate(n, wires, arity)
	dim := 1 << len(wires)
	if len(matrix) != dim*dim {
		panic(fmt.Sprintf("densematrix: matrix has %d entries, want %d", len(matrix), dim*dim))
	}
	if inverse {
		return gates.ConjugateTranspose(matrix, dim)
	}
	return matrix
}

// Groups returns the number of amplitude groups a matrix on numWires
// wires visits.
func Groups(n, numWires int) int { return bitindex.GroupCount(n, numWires) }

// ApplySingleQubitOp applies a 2x2 matrix to one wire.
func ApplySingleQubitOp[C hwy.Complexes](arr []C, n int, matrix []C, wires []int, inverse bool) {
	ApplySingleQubitOpRange(arr, n, matrix, wires, inverse, 0, Groups(n, 1))
}

// ApplySingleQubitOpRange applies a 2x2 matrix to pairs [lo, hi).
func ApplySingleQubitOpRange[C hwy.Complexes](arr []C, n int, matrix []C, wires []int, inverse bool, lo, hi int) {
	m := prepare(arr, n, matrix, wires, 1, inverse)
	masks := bitindex.Parity1(n, wires[0])
	for k := lo; k < hi; k++ {
		i0, i1 := masks.Pair(k)
		v0, v1 := arr[i0], arr[i1]
		arr[i0] = m[0]*v0 + m[1]*v1
		arr[i1] = m[2]*v0 + m[3]*v1
	}
}

// ApplyTwoQubitOp applies a 4x4 matrix to two wires.
func ApplyTwoQubitOp[C hwy.Complexes](arr []C, n int, matrix []C, wires []int, inverse bool) {
	ApplyTwoQubitOpRange(arr, n, matrix, wires, inverse, 0, Groups(n, 2))
}

// ApplyTwoQubitOpRange applies a 4x4 matrix to quadruples [lo, hi).
func ApplyTwoQubitOpRange[C hwy.Complexes](arr []C, n int, matrix []C, wires []int, inverse bool, lo, hi int) {
	m := prepare(arr, n, matrix, wires, 2, inverse)
	masks := bitindex.Parity2(n, wires)
	for k := lo; k < hi; k++ {
		i00, i01, i10, i11 := masks.Quad(k)
		v00, v01, v10, v11 := arr[i00], arr[i01], arr[i10], arr[i11]
		arr[i00] = m[0]*v00 + m[1]*v01 + m[2]*v10 + m[3]*v11
		arr[i01] = m[4]*v00 + m[5]*v01 + m[6]*v10 + m[7]*v11
		arr[i10] = m[8]*v00 + m[9]*v01 + m[10]*v10 + m[11]*v11
		arr[i11] = m[12]*v00 + m[13]*v01 + m[14]*v10 + m[15]*v11
	}
}

// ApplyMultiQubitOp applies a 2^k x 2^k matrix to k wires.
func ApplyMultiQubitOp[C hwy.Complexes](arr []C, n int, matrix []C, wires []int, inverse bool) {
	ApplyMultiQubitOpRange(arr, n, matrix, wires, inverse, 0, Groups(n, len(wires)))
}

// ApplyMultiQubitOpRange applies a 2^k x 2^k matrix to groups [lo, hi).
func ApplyMultiQubitOpRange[C hwy.Complexes](arr []C, n int, matrix []C, wires []int, inverse bool, lo, hi int) {
	m := prepare(arr, n, matrix, wires, 0, inverse)
	dim := 1 << len(wires)
	masks := bitindex.NewMultiMasks(n, wires)
	indices := make([]int, dim)
	local := make([]C, dim)
	for g := lo; g < hi; g++ {
		for inner := range dim {
			indices[inner] = masks.Index(g, inner)
			local[inner] = arr[indices[inner]]
		}
		for i := range dim {
			var sum C
			row := m[i*dim : (i+1)*dim]
			for j, v := range local {
				sum += row[j] * v
			}
			arr[indices[i]] = sum
		}
	}
}

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

// Package pi implements the closed-form gate kernels over precomputed
// index lists.
//
// Each call first materializes the internal indices (one offset per target
// bit pattern) and external indices (one base per group) of its wires, then
// every gate is expressed with three primitives over those lists: a
// per-pattern diagonal factor, a 2x2 rotation between two patterns, and a
// swap of two patterns. Control flow is uniform across arities at the cost
// of O(2^(n-k)) extra memory per call.
package pi

import (
	"fmt"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/bitindex"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
)

// Kernel is the precomputed-index kernel family.
type Kernel[C hwy.Complexes] struct{}

// New returns the PI kernel.
func New[C hwy.Complexes]() Kernel[C] { return Kernel[C]{} }

var _ kernel.Kernel[complex64] = Kernel[complex64]{}

// Descriptor describes the PI kernel. It implements the whole catalog.
func (Kernel[C]) Descriptor() kernel.Descriptor {
	return kernel.Descriptor{
		ID:         kernel.PI,
		Name:       "PI",
		Alignment:  1,
		Gates:      gates.AllGates(),
		Generators: gates.AllGenerators(),
		Matrices:   gates.AllMatrices(),
	}
}

// indices validates the call and returns the index lists of wires.
func indices(length, n int, wires []int, arity int) bitindex.GateIndices {
	bitindex.ValidateState(length, n)
	bitindex.Validate(n, wires, arity)
	return bitindex.NewGateIndices(n, wires)
}

// pairRotation applies the row-major 2x2 matrix u to the amplitudes of
// patterns a and b.
type pairRotation[C hwy.Complexes] struct {
	a, b int
	u    [4]C
}

func diagonal[C hwy.Complexes](arr []C, gi bitindex.GateIndices, factors []C) {
	for _, ext := range gi.External {
		for p, off := range gi.Internal {
			arr[ext+off] *= factors[p]
		}
	}
}

func rotate[C hwy.Complexes](arr []C, gi bitindex.GateIndices, rots ...pairRotation[C]) {
	for _, ext := range gi.External {
		for _, r := range rots {
			ia, ib := ext+gi.Internal[r.a], ext+gi.Internal[r.b]
			va, vb := arr[ia], arr[ib]
			arr[ia] = r.u[0]*va + r.u[1]*vb
			arr[ib] = r.u[2]*va + r.u[3]*vb
		}
	}
}

func swapPatterns[C hwy.Complexes](arr []C, gi bitindex.GateIndices, a, b int) {
	offA, offB := gi.Internal[a], gi.Internal[b]
	for _, ext := range gi.External {
		arr[ext+offA], arr[ext+offB] = arr[ext+offB], arr[ext+offA]
	}
}

// ApplyGate applies op to arr in place.
func (Kernel[C]) ApplyGate(op gates.GateOperation, arr []C, n int, wires []int, inverse bool, params ...float64) {
	if len(params) < op.Params() {
		panic(fmt.Sprintf("pi: %s needs %d parameters, got %d", op, op.Params(), len(params)))
	}
	gi := indices(len(arr), n, wires, op.Wires())
	c := coefficientsFor[C](op, inverse, params)

	switch op {
	case gates.Identity:
	case gates.PauliX:
		swapPatterns(arr, gi, 0, 1)
	case gates.CNOT:
		swapPatterns(arr, gi, 2, 3)
	case gates.SWAP:
		swapPatterns(arr, gi, 1, 2)
	case gates.Toffoli:
		swapPatterns(arr, gi, 6, 7)
	case gates.CSWAP:
		swapPatterns(arr, gi, 5, 6)
	case gates.PauliY:
		rotate(arr, gi, pairRotation[C]{0, 1, pauliYMatrix[C]()})
	case gates.CY:
		rotate(arr, gi, pairRotation[C]{2, 3, pauliYMatrix[C]()})
	case gates.Hadamard:
		h := gates.Scalar[C](invSqrt2)
		rotate(arr, gi, pairRotation[C]{0, 1, [4]C{h, h, h, -h}})
	case gates.PauliZ:
		diagonal(arr, gi, []C{1, -1})
	case gates.S, gates.T, gates.PhaseShift:
		diagonal(arr, gi, []C{1, c.shift})
	case gates.RZ:
		diagonal(arr, gi, []C{c.first, c.second})
	case gates.CZ:
		diagonal(arr, gi, []C{1, 1, 1, -1})
	case gates.ControlledPhaseShift:
		diagonal(arr, gi, []C{1, 1, 1, c.shift})
	case gates.CRZ:
		diagonal(arr, gi, []C{1, 1, c.first, c.second})
	case gates.IsingZZ:
		diagonal(arr, gi, []C{c.first, c.second, c.second, c.first})
	case gates.MultiRZ:
		factors := make([]C, len(gi.Internal))
		for p := range factors {
			factors[p] = c.first
			if parity(p) == 1 {
				factors[p] = c.second
			}
		}
		diagonal(arr, gi, factors)
	case gates.RX:
		rotate(arr, gi, pairRotation[C]{0, 1, c.rx})
	case gates.RY:
		rotate(arr, gi, pairRotation[C]{0, 1, c.ry})
	case gates.Rot:
		rotate(arr, gi, pairRotation[C]{0, 1, c.rot})
	case gates.CRX:
		rotate(arr, gi, pairRotation[C]{2, 3, c.rx})
	case gates.CRY:
		rotate(arr, gi, pairRotation[C]{2, 3, c.ry})
	case gates.CRot:
		rotate(arr, gi, pairRotation[C]{2, 3, c.rot})
	case gates.IsingXX:
		rotate(arr, gi, pairRotation[C]{0, 3, c.rx}, pairRotation[C]{1, 2, c.rx})
	case gates.IsingXY:
		rotate(arr, gi, pairRotation[C]{1, 2, c.rxConj})
	case gates.IsingYY:
		rotate(arr, gi, pairRotation[C]{0, 3, c.rxConj}, pairRotation[C]{1, 2, c.rx})
	case gates.SingleExcitation, gates.SingleExcitationMinus, gates.SingleExcitationPlus:
		if c.phased {
			diagonal(arr, gi, []C{c.shift, 1, 1, c.shift})
		}
		rotate(arr, gi, pairRotation[C]{1, 2, c.ry})
	case gates.DoubleExcitation, gates.DoubleExcitationMinus, gates.DoubleExcitationPlus:
		if c.phased {
			factors := make([]C, len(gi.Internal))
			for p := range factors {
				factors[p] = c.shift
			}
			factors[3], factors[12] = 1, 1
			diagonal(arr, gi, factors)
		}
		rotate(arr, gi, pairRotation[C]{3, 12, c.ry})
	default:
		panic(fmt.Sprintf("pi: gate %s not implemented", op))
	}
}

// ApplyMatrix gathers every group through the internal indices, multiplies
// by the matrix and scatters the result back.
func (Kernel[C]) ApplyMatrix(op gates.MatrixOperation, arr []C, n int, matrix []C, wires []int, inverse bool) {
	gi := indices(len(arr), n, wires, op.Wires())
	dim := len(gi.Internal)
	if len(matrix) != dim*dim {
		panic(fmt.Sprintf("pi: matrix has %d entries, want %d", len(matrix), dim*dim))
	}
	if inverse {
		matrix = gates.ConjugateTranspose(matrix, dim)
	}
	local := make([]C, dim)
	for _, ext := range gi.External {
		for p, off := range gi.Internal {
			local[p] = arr[ext+off]
		}
		for i, off := range gi.Internal {
			var sum C
			for j, v := range local {
				sum += matrix[i*dim+j] * v
			}
			arr[ext+off] = sum
		}
	}
}

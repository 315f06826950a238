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

// Package lm implements the closed-form gate kernels by recomputing the
// bit masks of the targeted wires on every call.
//
// Each gate walks the groups of amplitudes its wires address (see package
// bitindex) and updates a group with a fused formula instead of a matrix
// product. Nothing is precomputed beyond a handful of masks, which keeps
// memory traffic low for large qubit counts.
//
// Every operation also has a Range form that processes a sub-range of
// groups. Groups are disjoint, so ranges can be run concurrently; package
// parallel builds on this.
package lm

import (
	"fmt"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/bitindex"
	"github.com/ajroetker/qhwy/hwy/contrib/densematrix"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
)

// Kernel is the bit-recompute kernel family.
type Kernel[C hwy.Complexes] struct{}

// New returns the LM kernel.
func New[C hwy.Complexes]() Kernel[C] { return Kernel[C]{} }

var _ kernel.Kernel[complex128] = Kernel[complex128]{}

// Descriptor describes the LM kernel. It implements the whole catalog.
func (Kernel[C]) Descriptor() kernel.Descriptor {
	return kernel.Descriptor{
		ID:         kernel.LM,
		Name:       "LM",
		Alignment:  1,
		Gates:      gates.AllGates(),
		Generators: gates.AllGenerators(),
		Matrices:   gates.AllMatrices(),
	}
}

// GateGroups returns how many groups op visits on n qubits.
func GateGroups(op gates.GateOperation, n int, wires []int) int {
	switch op {
	case gates.Identity:
		return 0
	case gates.MultiRZ:
		return 1 << n
	default:
		return bitindex.GroupCount(n, len(wires))
	}
}

// GeneratorGroups returns how many groups the generator op visits.
func GeneratorGroups(op gates.GeneratorOperation, n int, wires []int) int {
	return GateGroups(op.Gate(), n, wires)
}

// MatrixGroups returns how many groups a matrix on wires visits.
func MatrixGroups(n int, wires []int) int {
	return bitindex.GroupCount(n, len(wires))
}

// CheckGate panics unless op can be applied to a state of len amplitudes.
func CheckGate(op gates.GateOperation, length, n int, wires []int, params []float64) {
	bitindex.ValidateState(length, n)
	bitindex.Validate(n, wires, op.Wires())
	if len(params) < op.Params() {
		panic(fmt.Sprintf("lm: %s needs %d parameters, got %d", op, op.Params(), len(params)))
	}
}

// ApplyGate applies op to arr in place.
func (k Kernel[C]) ApplyGate(op gates.GateOperation, arr []C, n int, wires []int, inverse bool, params ...float64) {
	CheckGate(op, len(arr), n, wires, params)
	k.ApplyGateRange(op, arr, n, wires, inverse, params, 0, GateGroups(op, n, wires))
}

// ApplyGateRange applies op to the groups [lo, hi). It does not validate
// its arguments; callers check them once with CheckGate.
func (Kernel[C]) ApplyGateRange(op gates.GateOperation, arr []C, n int, wires []int, inverse bool, params []float64, lo, hi int) {
	switch op {
	case gates.Identity:
	case gates.PauliX:
		pauliX(arr, n, wires, lo, hi)
	case gates.PauliY:
		pauliY(arr, n, wires, lo, hi)
	case gates.PauliZ:
		pauliZ(arr, n, wires, lo, hi)
	case gates.Hadamard:
		hadamard(arr, n, wires, lo, hi)
	case gates.S:
		phase1(arr, n, wires, sPhase[C](inverse), lo, hi)
	case gates.T:
		phase1(arr, n, wires, tPhase[C](inverse), lo, hi)
	case gates.PhaseShift:
		phase1(arr, n, wires, shiftPhase[C](inverse, params[0]), lo, hi)
	case gates.RX:
		rx(arr, n, wires, inverse, params[0], lo, hi)
	case gates.RY:
		ry(arr, n, wires, inverse, params[0], lo, hi)
	case gates.RZ:
		rz(arr, n, wires, inverse, params[0], lo, hi)
	case gates.Rot:
		rot(arr, n, wires, inverse, params, lo, hi)
	case gates.CNOT:
		cnot(arr, n, wires, lo, hi)
	case gates.CY:
		cy(arr, n, wires, lo, hi)
	case gates.CZ:
		cz(arr, n, wires, lo, hi)
	case gates.SWAP:
		swap(arr, n, wires, lo, hi)
	case gates.ControlledPhaseShift:
		controlledPhaseShift(arr, n, wires, inverse, params[0], lo, hi)
	case gates.CRX:
		crx(arr, n, wires, inverse, params[0], lo, hi)
	case gates.CRY:
		cry(arr, n, wires, inverse, params[0], lo, hi)
	case gates.CRZ:
		crz(arr, n, wires, inverse, params[0], lo, hi)
	case gates.CRot:
		crot(arr, n, wires, inverse, params, lo, hi)
	case gates.IsingXX:
		isingXX(arr, n, wires, inverse, params[0], lo, hi)
	case gates.IsingXY:
		isingXY(arr, n, wires, inverse, params[0], lo, hi)
	case gates.IsingYY:
		isingYY(arr, n, wires, inverse, params[0], lo, hi)
	case gates.IsingZZ:
		isingZZ(arr, n, wires, inverse, params[0], lo, hi)
	case gates.SingleExcitation, gates.SingleExcitationMinus, gates.SingleExcitationPlus:
		singleExcitation(op, arr, n, wires, inverse, params[0], lo, hi)
	case gates.Toffoli:
		swapPattern(arr, n, wires, 6, 7, lo, hi)
	case gates.CSWAP:
		swapPattern(arr, n, wires, 5, 6, lo, hi)
	case gates.DoubleExcitation, gates.DoubleExcitationMinus, gates.DoubleExcitationPlus:
		doubleExcitation(op, arr, n, wires, inverse, params[0], lo, hi)
	case gates.MultiRZ:
		multiRZ(arr, n, wires, inverse, params[0], lo, hi)
	default:
		panic(fmt.Sprintf("lm: gate %s not implemented", op))
	}
}

// ApplyGenerator replaces arr with G|arr> and returns the scale factor.
// adjoint is accepted for signature symmetry; every generator in the
// catalog is Hermitian, so it has no effect.
func (k Kernel[C]) ApplyGenerator(op gates.GeneratorOperation, arr []C, n int, wires []int, adjoint bool) float64 {
	bitindex.ValidateState(len(arr), n)
	bitindex.Validate(n, wires, op.Wires())
	return k.ApplyGeneratorRange(op, arr, n, wires, 0, GeneratorGroups(op, n, wires))
}

// ApplyMatrix applies a dense matrix to wires.
func (k Kernel[C]) ApplyMatrix(op gates.MatrixOperation, arr []C, n int, matrix []C, wires []int, inverse bool) {
	bitindex.ValidateState(len(arr), n)
	bitindex.Validate(n, wires, op.Wires())
	k.ApplyMatrixRange(op, arr, n, matrix, wires, inverse, 0, MatrixGroups(n, wires))
}

// ApplyMatrixRange applies a dense matrix to the groups [lo, hi).
func (Kernel[C]) ApplyMatrixRange(op gates.MatrixOperation, arr []C, n int, matrix []C, wires []int, inverse bool, lo, hi int) {
	switch op {
	case gates.SingleQubitOp:
		densematrix.ApplySingleQubitOpRange(arr, n, matrix, wires, inverse, lo, hi)
	case gates.TwoQubitOp:
		densematrix.ApplyTwoQubitOpRange(arr, n, matrix, wires, inverse, lo, hi)
	case gates.MultiQubitOp:
		densematrix.ApplyMultiQubitOpRange(arr, n, matrix, wires, inverse, lo, hi)
	default:
		panic(fmt.Sprintf("lm: matrix operation %s not implemented", op))
	}
}

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

package lm

import (
	"fmt"
	"math/bits"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/bitindex"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
)

// Generator scale factors. A gate U(theta) = exp(i*f*theta*G) has
// derivative i*f*G*U, and f is what the generator returns.
const (
	rotationScale = -0.5
	phaseScale    = 1.0
	isingXYScale  = 0.5
	multiRZScale  = 0.5
)

// ApplyGeneratorRange applies the generator op to the groups [lo, hi) and
// returns its scale factor.
func (Kernel[C]) ApplyGeneratorRange(op gates.GeneratorOperation, arr []C, n int, wires []int, lo, hi int) float64 {
	switch op {
	case gates.GeneratorPhaseShift:
		m := bitindex.Parity1(n, wires[0])
		for k := lo; k < hi; k++ {
			i0, _ := m.Pair(k)
			arr[i0] = 0
		}
		return phaseScale
	case gates.GeneratorRX:
		pauliX(arr, n, wires, lo, hi)
		return rotationScale
	case gates.GeneratorRY:
		pauliY(arr, n, wires, lo, hi)
		return rotationScale
	case gates.GeneratorRZ:
		pauliZ(arr, n, wires, lo, hi)
		return rotationScale
	case gates.GeneratorIsingXX:
		m := bitindex.Parity2(n, wires)
		for k := lo; k < hi; k++ {
			i00, i01, i10, i11 := m.Quad(k)
			arr[i00], arr[i11] = arr[i11], arr[i00]
			arr[i01], arr[i10] = arr[i10], arr[i01]
		}
		return rotationScale
	case gates.GeneratorIsingXY:
		m := bitindex.Parity2(n, wires)
		for k := lo; k < hi; k++ {
			i00, i01, i10, i11 := m.Quad(k)
			arr[i00], arr[i11] = 0, 0
			arr[i01], arr[i10] = arr[i10], arr[i01]
		}
		return isingXYScale
	case gates.GeneratorIsingYY:
		m := bitindex.Parity2(n, wires)
		for k := lo; k < hi; k++ {
			i00, i01, i10, i11 := m.Quad(k)
			arr[i00], arr[i11] = -arr[i11], -arr[i00]
			arr[i01], arr[i10] = arr[i10], arr[i01]
		}
		return rotationScale
	case gates.GeneratorIsingZZ:
		m := bitindex.Parity2(n, wires)
		for k := lo; k < hi; k++ {
			_, i01, i10, _ := m.Quad(k)
			arr[i01] = -arr[i01]
			arr[i10] = -arr[i10]
		}
		return rotationScale
	case gates.GeneratorCRX, gates.GeneratorCRY, gates.GeneratorCRZ:
		controlledGenerator(op, arr, n, wires, lo, hi)
		return rotationScale
	case gates.GeneratorControlledPhaseShift:
		m := bitindex.Parity2(n, wires)
		for k := lo; k < hi; k++ {
			i00, i01, i10, _ := m.Quad(k)
			arr[i00], arr[i01], arr[i10] = 0, 0, 0
		}
		return phaseScale
	case gates.GeneratorSingleExcitation, gates.GeneratorSingleExcitationMinus, gates.GeneratorSingleExcitationPlus:
		singleExcitationGenerator(op, arr, n, wires, lo, hi)
		return rotationScale
	case gates.GeneratorDoubleExcitation, gates.GeneratorDoubleExcitationMinus, gates.GeneratorDoubleExcitationPlus:
		doubleExcitationGenerator(op, arr, n, wires, lo, hi)
		return rotationScale
	case gates.GeneratorMultiRZ:
		parity := bitindex.WiresParity(n, wires)
		signs := [2]C{-1, 1}
		for k := lo; k < hi; k++ {
			arr[k] *= signs[bits.OnesCount(uint(k&parity))&1]
		}
		return multiRZScale
	default:
		panic(fmt.Sprintf("lm: generator %s not implemented", op))
	}
}

// controlledGenerator zeroes the control-off half and applies the Pauli
// of the controlled rotation to the control-on half.
func controlledGenerator[C hwy.Complexes](op gates.GeneratorOperation, arr []C, n int, wires []int, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	posI, negI := C(1i), C(-1i)
	for k := lo; k < hi; k++ {
		i00, i01, i10, i11 := m.Quad(k)
		arr[i00], arr[i01] = 0, 0
		switch op {
		case gates.GeneratorCRX:
			arr[i10], arr[i11] = arr[i11], arr[i10]
		case gates.GeneratorCRY:
			v10, v11 := arr[i10], arr[i11]
			arr[i10] = negI * v11
			arr[i11] = posI * v10
		case gates.GeneratorCRZ:
			arr[i11] = -arr[i11]
		}
	}
}

// outsideFactor is what an excitation generator multiplies the amplitudes
// outside its rotation block by: 0 for the plain gate, 1 for Minus and -1
// for Plus.
func outsideFactor[C hwy.Complexes](op gates.GeneratorOperation) C {
	switch op {
	case gates.GeneratorSingleExcitationMinus, gates.GeneratorDoubleExcitationMinus:
		return 1
	case gates.GeneratorSingleExcitationPlus, gates.GeneratorDoubleExcitationPlus:
		return -1
	default:
		return 0
	}
}

func singleExcitationGenerator[C hwy.Complexes](op gates.GeneratorOperation, arr []C, n int, wires []int, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	posI, negI := C(1i), C(-1i)
	outside := outsideFactor[C](op)
	for k := lo; k < hi; k++ {
		i00, i01, i10, i11 := m.Quad(k)
		v01, v10 := arr[i01], arr[i10]
		arr[i00] *= outside
		arr[i11] *= outside
		arr[i01] = negI * v10
		arr[i10] = posI * v01
	}
}

func doubleExcitationGenerator[C hwy.Complexes](op gates.GeneratorOperation, arr []C, n int, wires []int, lo, hi int) {
	m := bitindex.ParityN(n, wires)
	posI, negI := C(1i), C(-1i)
	outside := outsideFactor[C](op)
	off3, off12 := m.Offsets[3], m.Offsets[12]
	for k := lo; k < hi; k++ {
		base := m.Base(k)
		i3, i12 := base|off3, base|off12
		v3, v12 := arr[i3], arr[i12]
		for _, off := range m.Offsets {
			arr[base|off] *= outside
		}
		arr[i3] = negI * v12
		arr[i12] = posI * v3
	}
}

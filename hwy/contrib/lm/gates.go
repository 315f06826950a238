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
	"math"
	"math/bits"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/bitindex"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
)

func sPhase[C hwy.Complexes](inverse bool) C {
	if inverse {
		return C(-1i)
	}
	return C(1i)
}

func tPhase[C hwy.Complexes](inverse bool) C {
	if inverse {
		return gates.Cis[C](-math.Pi / 4)
	}
	return gates.Cis[C](math.Pi / 4)
}

func shiftPhase[C hwy.Complexes](inverse bool, angle float64) C {
	if inverse {
		return gates.Cis[C](-angle)
	}
	return gates.Cis[C](angle)
}

// halfAngle returns cos(angle/2) and sin(angle/2).
func halfAngle(angle float64) (c, s float64) {
	s, c = math.Sincos(angle / 2)
	return c, s
}

// rzPhases returns e^{-i angle/2} and e^{i angle/2}, swapped for inverse.
func rzPhases[C hwy.Complexes](inverse bool, angle float64) (first, second C) {
	c, s := halfAngle(angle)
	if inverse {
		s = -s
	}
	return C(complex(c, -s)), C(complex(c, s))
}

func pauliX[C hwy.Complexes](arr []C, n int, wires []int, lo, hi int) {
	m := bitindex.Parity1(n, wires[0])
	for k := lo; k < hi; k++ {
		i0, i1 := m.Pair(k)
		arr[i0], arr[i1] = arr[i1], arr[i0]
	}
}

func pauliY[C hwy.Complexes](arr []C, n int, wires []int, lo, hi int) {
	m := bitindex.Parity1(n, wires[0])
	posI, negI := C(1i), C(-1i)
	for k := lo; k < hi; k++ {
		i0, i1 := m.Pair(k)
		v0, v1 := arr[i0], arr[i1]
		arr[i0] = negI * v1
		arr[i1] = posI * v0
	}
}

func pauliZ[C hwy.Complexes](arr []C, n int, wires []int, lo, hi int) {
	m := bitindex.Parity1(n, wires[0])
	for k := lo; k < hi; k++ {
		_, i1 := m.Pair(k)
		arr[i1] = -arr[i1]
	}
}

func hadamard[C hwy.Complexes](arr []C, n int, wires []int, lo, hi int) {
	m := bitindex.Parity1(n, wires[0])
	isqrt2 := gates.Scalar[C](1 / math.Sqrt2)
	for k := lo; k < hi; k++ {
		i0, i1 := m.Pair(k)
		v0, v1 := arr[i0], arr[i1]
		arr[i0] = isqrt2 * (v0 + v1)
		arr[i1] = isqrt2 * (v0 - v1)
	}
}

// phase1 multiplies the |1> amplitude of every pair by shift.
func phase1[C hwy.Complexes](arr []C, n int, wires []int, shift C, lo, hi int) {
	m := bitindex.Parity1(n, wires[0])
	for k := lo; k < hi; k++ {
		_, i1 := m.Pair(k)
		arr[i1] *= shift
	}
}

// rxCoeffs returns cos(angle/2) and i*js where js is -sin(angle/2), or
// +sin(angle/2) for the inverse.
func rxCoeffs[C hwy.Complexes](inverse bool, angle float64) (c, ijs C) {
	cv, s := halfAngle(angle)
	js := -s
	if inverse {
		js = s
	}
	return gates.Scalar[C](cv), C(complex(0, js))
}

// ryCoeffs returns cos(angle/2) and sin(angle/2), negated for the inverse.
func ryCoeffs[C hwy.Complexes](inverse bool, angle float64) (c, s C) {
	cv, sv := halfAngle(angle)
	if inverse {
		sv = -sv
	}
	return gates.Scalar[C](cv), gates.Scalar[C](sv)
}

func rx[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.Parity1(n, wires[0])
	c, ijs := rxCoeffs[C](inverse, angle)
	for k := lo; k < hi; k++ {
		i0, i1 := m.Pair(k)
		v0, v1 := arr[i0], arr[i1]
		arr[i0] = c*v0 + ijs*v1
		arr[i1] = ijs*v0 + c*v1
	}
}

func ry[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.Parity1(n, wires[0])
	c, s := ryCoeffs[C](inverse, angle)
	for k := lo; k < hi; k++ {
		i0, i1 := m.Pair(k)
		v0, v1 := arr[i0], arr[i1]
		arr[i0] = c*v0 - s*v1
		arr[i1] = s*v0 + c*v1
	}
}

func rz[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.Parity1(n, wires[0])
	first, second := rzPhases[C](inverse, angle)
	for k := lo; k < hi; k++ {
		i0, i1 := m.Pair(k)
		arr[i0] *= first
		arr[i1] *= second
	}
}

func rot[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, params []float64, lo, hi int) {
	m := bitindex.Parity1(n, wires[0])
	u := gates.RotMatrix[C](gates.RotParams(inverse, params))
	for k := lo; k < hi; k++ {
		i0, i1 := m.Pair(k)
		v0, v1 := arr[i0], arr[i1]
		arr[i0] = u[0]*v0 + u[1]*v1
		arr[i1] = u[2]*v0 + u[3]*v1
	}
}

func cnot[C hwy.Complexes](arr []C, n int, wires []int, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	for k := lo; k < hi; k++ {
		_, _, i10, i11 := m.Quad(k)
		arr[i10], arr[i11] = arr[i11], arr[i10]
	}
}

func cy[C hwy.Complexes](arr []C, n int, wires []int, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	posI, negI := C(1i), C(-1i)
	for k := lo; k < hi; k++ {
		_, _, i10, i11 := m.Quad(k)
		v10, v11 := arr[i10], arr[i11]
		arr[i10] = negI * v11
		arr[i11] = posI * v10
	}
}

func cz[C hwy.Complexes](arr []C, n int, wires []int, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	for k := lo; k < hi; k++ {
		_, _, _, i11 := m.Quad(k)
		arr[i11] = -arr[i11]
	}
}

func swap[C hwy.Complexes](arr []C, n int, wires []int, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	for k := lo; k < hi; k++ {
		_, i01, i10, _ := m.Quad(k)
		arr[i01], arr[i10] = arr[i10], arr[i01]
	}
}

func controlledPhaseShift[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	shift := shiftPhase[C](inverse, angle)
	for k := lo; k < hi; k++ {
		_, _, _, i11 := m.Quad(k)
		arr[i11] *= shift
	}
}

func crx[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	c, ijs := rxCoeffs[C](inverse, angle)
	for k := lo; k < hi; k++ {
		_, _, i10, i11 := m.Quad(k)
		v10, v11 := arr[i10], arr[i11]
		arr[i10] = c*v10 + ijs*v11
		arr[i11] = ijs*v10 + c*v11
	}
}

func cry[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	c, s := ryCoeffs[C](inverse, angle)
	for k := lo; k < hi; k++ {
		_, _, i10, i11 := m.Quad(k)
		v10, v11 := arr[i10], arr[i11]
		arr[i10] = c*v10 - s*v11
		arr[i11] = s*v10 + c*v11
	}
}

func crz[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	first, second := rzPhases[C](inverse, angle)
	for k := lo; k < hi; k++ {
		_, _, i10, i11 := m.Quad(k)
		arr[i10] *= first
		arr[i11] *= second
	}
}

func crot[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, params []float64, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	u := gates.RotMatrix[C](gates.RotParams(inverse, params))
	for k := lo; k < hi; k++ {
		_, _, i10, i11 := m.Quad(k)
		v10, v11 := arr[i10], arr[i11]
		arr[i10] = u[0]*v10 + u[1]*v11
		arr[i11] = u[2]*v10 + u[3]*v11
	}
}

func isingXX[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	c, ijs := rxCoeffs[C](inverse, angle)
	for k := lo; k < hi; k++ {
		i00, i01, i10, i11 := m.Quad(k)
		v00, v01, v10, v11 := arr[i00], arr[i01], arr[i10], arr[i11]
		arr[i00] = c*v00 + ijs*v11
		arr[i01] = c*v01 + ijs*v10
		arr[i10] = c*v10 + ijs*v01
		arr[i11] = c*v11 + ijs*v00
	}
}

func isingXY[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	// The coupling term is +i sin, the opposite sign of IsingXX.
	c, ijs := rxCoeffs[C](!inverse, angle)
	for k := lo; k < hi; k++ {
		_, i01, i10, _ := m.Quad(k)
		v01, v10 := arr[i01], arr[i10]
		arr[i01] = c*v01 + ijs*v10
		arr[i10] = c*v10 + ijs*v01
	}
}

func isingYY[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	c, ijs := rxCoeffs[C](inverse, angle)
	for k := lo; k < hi; k++ {
		i00, i01, i10, i11 := m.Quad(k)
		v00, v01, v10, v11 := arr[i00], arr[i01], arr[i10], arr[i11]
		arr[i00] = c*v00 - ijs*v11
		arr[i01] = c*v01 + ijs*v10
		arr[i10] = c*v10 + ijs*v01
		arr[i11] = c*v11 - ijs*v00
	}
}

func isingZZ[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	first, second := rzPhases[C](inverse, angle)
	for k := lo; k < hi; k++ {
		i00, i01, i10, i11 := m.Quad(k)
		arr[i00] *= first
		arr[i01] *= second
		arr[i10] *= second
		arr[i11] *= first
	}
}

// excitationPhase returns the phase an excitation gate applies outside its
// rotation block, and whether there is one.
func excitationPhase[C hwy.Complexes](op gates.GateOperation, inverse bool, angle float64) (C, bool) {
	switch op {
	case gates.SingleExcitationMinus, gates.DoubleExcitationMinus:
		first, _ := rzPhases[C](inverse, angle)
		return first, true
	case gates.SingleExcitationPlus, gates.DoubleExcitationPlus:
		_, second := rzPhases[C](inverse, angle)
		return second, true
	default:
		return 1, false
	}
}

func singleExcitation[C hwy.Complexes](op gates.GateOperation, arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.Parity2(n, wires)
	c, s := ryCoeffs[C](inverse, angle)
	shift, phased := excitationPhase[C](op, inverse, angle)
	for k := lo; k < hi; k++ {
		i00, i01, i10, i11 := m.Quad(k)
		v01, v10 := arr[i01], arr[i10]
		arr[i01] = c*v01 - s*v10
		arr[i10] = s*v01 + c*v10
		if phased {
			arr[i00] *= shift
			arr[i11] *= shift
		}
	}
}

// swapPattern exchanges the amplitudes of two target patterns in every
// group, which is how Toffoli and CSWAP act.
func swapPattern[C hwy.Complexes](arr []C, n int, wires []int, a, b int, lo, hi int) {
	m := bitindex.ParityN(n, wires)
	offA, offB := m.Offsets[a], m.Offsets[b]
	for k := lo; k < hi; k++ {
		base := m.Base(k)
		arr[base|offA], arr[base|offB] = arr[base|offB], arr[base|offA]
	}
}

func doubleExcitation[C hwy.Complexes](op gates.GateOperation, arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	m := bitindex.ParityN(n, wires)
	c, s := ryCoeffs[C](inverse, angle)
	shift, phased := excitationPhase[C](op, inverse, angle)
	off3, off12 := m.Offsets[3], m.Offsets[12]
	for k := lo; k < hi; k++ {
		base := m.Base(k)
		i3, i12 := base|off3, base|off12
		v3, v12 := arr[i3], arr[i12]
		if phased {
			for _, off := range m.Offsets {
				arr[base|off] *= shift
			}
		}
		arr[i3] = c*v3 - s*v12
		arr[i12] = s*v3 + c*v12
	}
}

func multiRZ[C hwy.Complexes](arr []C, n int, wires []int, inverse bool, angle float64, lo, hi int) {
	parity := bitindex.WiresParity(n, wires)
	first, second := rzPhases[C](inverse, angle)
	shifts := [2]C{first, second}
	for k := lo; k < hi; k++ {
		arr[k] *= shifts[bits.OnesCount(uint(k&parity))&1]
	}
}

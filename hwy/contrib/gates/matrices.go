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

package gates

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"

	"github.com/ajroetker/qhwy/hwy"
)

// Cis returns e^{i theta} as an amplitude.
func Cis[C hwy.Complexes](theta float64) C {
	s, c := math.Sincos(theta)
	return C(complex(c, s))
}

// Conj returns the complex conjugate of v.
func Conj[C hwy.Complexes](v C) C {
	return C(cmplx.Conj(complex128(v)))
}

// Scalar converts a real coefficient to an amplitude.
func Scalar[C hwy.Complexes](x float64) C {
	return C(complex(x, 0))
}

// RotMatrix returns the row-major 2x2 matrix of Rot(phi, theta, omega)
// = RZ(omega) RY(theta) RZ(phi).
func RotMatrix[C hwy.Complexes](phi, theta, omega float64) [4]C {
	s, c := math.Sincos(theta / 2)
	return [4]C{
		C(cmplx.Exp(complex(0, -(phi+omega)/2)) * complex(c, 0)),
		C(-cmplx.Exp(complex(0, (phi-omega)/2)) * complex(s, 0)),
		C(cmplx.Exp(complex(0, -(phi-omega)/2)) * complex(s, 0)),
		C(cmplx.Exp(complex(0, (phi+omega)/2)) * complex(c, 0)),
	}
}

// RotParams returns the Rot angles to use for the requested direction.
// The inverse of Rot(phi, theta, omega) is Rot(-omega, -theta, -phi).
func RotParams(inverse bool, params []float64) (phi, theta, omega float64) {
	if inverse {
		return -params[2], -params[1], -params[0]
	}
	return params[0], params[1], params[2]
}

// ConjugateTranspose returns the conjugate transpose of a row-major
// dim x dim matrix.
func ConjugateTranspose[C hwy.Complexes](m []C, dim int) []C {
	out := make([]C, len(m))
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			out[j*dim+i] = Conj(m[i*dim+j])
		}
	}
	return out
}

// Matrix2 returns the row-major 2x2 matrix of a one-wire gate without
// allocating. Panics for gates on other wire counts or if params has fewer
// entries than op needs.
func Matrix2[C hwy.Complexes](op GateOperation, inverse bool, params ...float64) [4]C {
	if op.Wires() != 1 {
		panic(fmt.Sprintf("gates: %s is not a one-wire gate", op))
	}
	if len(params) < op.Params() {
		panic(fmt.Sprintf("gates: %s needs %d parameters, got %d", op, op.Params(), len(params)))
	}
	var theta, c, s float64
	if op.Params() > 0 {
		theta = params[0]
		s, c = math.Sincos(theta / 2)
	}
	var u [4]complex128
	switch op {
	case Identity:
		u = [4]complex128{1, 0, 0, 1}
	case PauliX:
		u = [4]complex128{0, 1, 1, 0}
	case PauliY:
		u = [4]complex128{0, -1i, 1i, 0}
	case PauliZ:
		u = [4]complex128{1, 0, 0, -1}
	case Hadamard:
		h := complex(1/math.Sqrt2, 0)
		u = [4]complex128{h, h, h, -h}
	case S:
		u = [4]complex128{1, 0, 0, 1i}
	case T:
		u = [4]complex128{1, 0, 0, cmplx.Exp(complex(0, math.Pi/4))}
	case PhaseShift:
		u = [4]complex128{1, 0, 0, cmplx.Exp(complex(0, theta))}
	case RX:
		u = [4]complex128{complex(c, 0), complex(0, -s), complex(0, -s), complex(c, 0)}
	case RY:
		u = [4]complex128{complex(c, 0), complex(-s, 0), complex(s, 0), complex(c, 0)}
	case RZ:
		u = [4]complex128{cmplx.Exp(complex(0, -theta/2)), 0, 0, cmplx.Exp(complex(0, theta/2))}
	case Rot:
		u = RotMatrix[complex128](params[0], params[1], params[2])
	}
	if inverse {
		u = [4]complex128{cmplx.Conj(u[0]), cmplx.Conj(u[2]), cmplx.Conj(u[1]), cmplx.Conj(u[3])}
	}
	return [4]C{C(u[0]), C(u[1]), C(u[2]), C(u[3])}
}

// Matrix returns the row-major dense matrix of op on numWires wires, with
// wires[0] as the most significant bit of the row index. numWires is only
// consulted for MultiRZ. Panics if params has fewer entries than op needs.
func Matrix[C hwy.Complexes](op GateOperation, numWires int, inverse bool, params ...float64) []C {
	if len(params) < op.Params() {
		panic(fmt.Sprintf("gates: %s needs %d parameters, got %d", op, op.Params(), len(params)))
	}
	if op.Wires() == 1 {
		u := Matrix2[C](op, inverse, params...)
		return u[:]
	}
	wires := op.Wires()
	if wires == 0 {
		wires = numWires
	}
	dim := 1 << wires
	m := make([]C, dim*dim)
	set := func(i, j int, v complex128) { m[i*dim+j] = C(v) }
	identity := func() {
		for i := 0; i < dim; i++ {
			set(i, i, 1)
		}
	}
	var theta, c, s float64
	if op.Params() > 0 {
		theta = params[0]
		s, c = math.Sincos(theta / 2)
	}
	// Embeds a 2x2 block on rows/cols (a, b).
	block := func(a, b int, u [4]complex128) {
		set(a, a, u[0])
		set(a, b, u[1])
		set(b, a, u[2])
		set(b, b, u[3])
	}
	rx := [4]complex128{complex(c, 0), complex(0, -s), complex(0, -s), complex(c, 0)}
	ry := [4]complex128{complex(c, 0), complex(-s, 0), complex(s, 0), complex(c, 0)}
	rz := [4]complex128{cmplx.Exp(complex(0, -theta/2)), 0, 0, cmplx.Exp(complex(0, theta/2))}

	switch op {
	case CRot:
		identity()
		block(2, 3, RotMatrix[complex128](params[0], params[1], params[2]))
	case CNOT:
		identity()
		block(2, 3, [4]complex128{0, 1, 1, 0})
	case CY:
		identity()
		block(2, 3, [4]complex128{0, -1i, 1i, 0})
	case CZ:
		identity()
		set(3, 3, -1)
	case SWAP:
		set(0, 0, 1)
		set(3, 3, 1)
		block(1, 2, [4]complex128{0, 1, 1, 0})
	case IsingXX:
		block(0, 3, rx)
		block(1, 2, rx)
	case IsingXY:
		set(0, 0, 1)
		set(3, 3, 1)
		block(1, 2, [4]complex128{complex(c, 0), complex(0, s), complex(0, s), complex(c, 0)})
	case IsingYY:
		block(0, 3, [4]complex128{complex(c, 0), complex(0, s), complex(0, s), complex(c, 0)})
		block(1, 2, rx)
	case IsingZZ:
		neg, pos := cmplx.Exp(complex(0, -theta/2)), cmplx.Exp(complex(0, theta/2))
		set(0, 0, neg)
		set(1, 1, pos)
		set(2, 2, pos)
		set(3, 3, neg)
	case ControlledPhaseShift:
		identity()
		set(3, 3, cmplx.Exp(complex(0, theta)))
	case CRX:
		identity()
		block(2, 3, rx)
	case CRY:
		identity()
		block(2, 3, ry)
	case CRZ:
		identity()
		block(2, 3, rz)
	case SingleExcitation, SingleExcitationMinus, SingleExcitationPlus:
		set(0, 0, excitationPhase(op, theta))
		set(3, 3, excitationPhase(op, theta))
		block(1, 2, ry)
	case Toffoli:
		identity()
		block(6, 7, [4]complex128{0, 1, 1, 0})
	case CSWAP:
		identity()
		block(5, 6, [4]complex128{0, 1, 1, 0})
	case DoubleExcitation, DoubleExcitationMinus, DoubleExcitationPlus:
		for i := 0; i < dim; i++ {
			set(i, i, excitationPhase(op, theta))
		}
		block(3, 12, ry)
	case MultiRZ:
		for i := 0; i < dim; i++ {
			set(i, i, rz[3*(bits.OnesCount(uint(i))%2)])
		}
	default:
		panic(fmt.Sprintf("gates: no matrix for %s", op))
	}
	if inverse {
		return ConjugateTranspose(m, dim)
	}
	return m
}

// excitationPhase is the phase applied to the amplitudes an excitation
// gate leaves outside its rotation block.
func excitationPhase(op GateOperation, theta float64) complex128 {
	switch op {
	case SingleExcitationMinus, DoubleExcitationMinus:
		return cmplx.Exp(complex(0, -theta/2))
	case SingleExcitationPlus, DoubleExcitationPlus:
		return cmplx.Exp(complex(0, theta/2))
	default:
		return 1
	}
}

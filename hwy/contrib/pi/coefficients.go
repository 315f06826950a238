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

package pi

import (
	"math"
	"math/bits"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
)

const invSqrt2 = 1 / math.Sqrt2

func parity(p int) int { return bits.OnesCount(uint(p)) & 1 }

func pauliYMatrix[C hwy.Complexes]() [4]C {
	return [4]C{0, C(-1i), C(1i), 0}
}

// coefficients holds the per-call constants of a gate, already adjusted
// for direction.
type coefficients[C hwy.Complexes] struct {
	shift  C // phase on the |1> pattern, or outside an excitation block
	first  C // e^{-i theta/2}
	second C // e^{+i theta/2}
	rx     [4]C
	rxConj [4]C
	ry     [4]C
	rot    [4]C
	phased bool
}

func coefficientsFor[C hwy.Complexes](op gates.GateOperation, inverse bool, params []float64) coefficients[C] {
	var k coefficients[C]
	sign := 1.0
	if inverse {
		sign = -1
	}
	switch op {
	case gates.S:
		k.shift = C(complex(0, sign))
		return k
	case gates.T:
		k.shift = gates.Cis[C](sign * math.Pi / 4)
		return k
	case gates.Rot, gates.CRot:
		k.rot = gates.RotMatrix[C](gates.RotParams(inverse, params))
		return k
	}
	if op.Params() == 0 {
		return k
	}

	theta := params[0]
	sv, cv := math.Sincos(theta / 2)
	c := gates.Scalar[C](cv)
	// Every half-angle sine flips sign for the inverse.
	s := sign * sv
	k.first = C(complex(cv, -s))
	k.second = C(complex(cv, s))
	k.rx = [4]C{c, C(complex(0, -s)), C(complex(0, -s)), c}
	k.rxConj = [4]C{c, C(complex(0, s)), C(complex(0, s)), c}
	k.ry = [4]C{c, gates.Scalar[C](-s), gates.Scalar[C](s), c}

	switch op {
	case gates.PhaseShift, gates.ControlledPhaseShift:
		k.shift = gates.Cis[C](sign * theta)
	case gates.SingleExcitationMinus, gates.DoubleExcitationMinus:
		k.shift, k.phased = k.first, true
	case gates.SingleExcitationPlus, gates.DoubleExcitationPlus:
		k.shift, k.phased = k.second, true
	}
	return k
}

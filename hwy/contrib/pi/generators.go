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
	"fmt"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
)

// ApplyGenerator replaces arr with G|arr> and returns the scale factor.
// adjoint has no effect; every generator in the catalog is Hermitian.
func (Kernel[C]) ApplyGenerator(op gates.GeneratorOperation, arr []C, n int, wires []int, adjoint bool) float64 {
	gi := indices(len(arr), n, wires, op.Wires())
	swapX := [4]C{0, 1, 1, 0}
	pauliY := pauliYMatrix[C]()

	switch op {
	case gates.GeneratorPhaseShift:
		diagonal(arr, gi, []C{0, 1})
		return 1
	case gates.GeneratorRX:
		swapPatterns(arr, gi, 0, 1)
		return -0.5
	case gates.GeneratorRY:
		rotate(arr, gi, pairRotation[C]{0, 1, pauliY})
		return -0.5
	case gates.GeneratorRZ:
		diagonal(arr, gi, []C{1, -1})
		return -0.5
	case gates.GeneratorIsingXX:
		rotate(arr, gi, pairRotation[C]{0, 3, swapX}, pairRotation[C]{1, 2, swapX})
		return -0.5
	case gates.GeneratorIsingXY:
		diagonal(arr, gi, []C{0, 1, 1, 0})
		swapPatterns(arr, gi, 1, 2)
		return 0.5
	case gates.GeneratorIsingYY:
		rotate(arr, gi, pairRotation[C]{0, 3, [4]C{0, -1, -1, 0}}, pairRotation[C]{1, 2, swapX})
		return -0.5
	case gates.GeneratorIsingZZ:
		diagonal(arr, gi, []C{1, -1, -1, 1})
		return -0.5
	case gates.GeneratorCRX:
		diagonal(arr, gi, []C{0, 0, 1, 1})
		swapPatterns(arr, gi, 2, 3)
		return -0.5
	case gates.GeneratorCRY:
		diagonal(arr, gi, []C{0, 0, 1, 1})
		rotate(arr, gi, pairRotation[C]{2, 3, pauliY})
		return -0.5
	case gates.GeneratorCRZ:
		diagonal(arr, gi, []C{0, 0, 1, -1})
		return -0.5
	case gates.GeneratorControlledPhaseShift:
		diagonal(arr, gi, []C{0, 0, 0, 1})
		return 1
	case gates.GeneratorSingleExcitation, gates.GeneratorSingleExcitationMinus, gates.GeneratorSingleExcitationPlus:
		out := outside[C](op)
		diagonal(arr, gi, []C{out, 1, 1, out})
		rotate(arr, gi, pairRotation[C]{1, 2, pauliY})
		return -0.5
	case gates.GeneratorDoubleExcitation, gates.GeneratorDoubleExcitationMinus, gates.GeneratorDoubleExcitationPlus:
		factors := make([]C, len(gi.Internal))
		for p := range factors {
			factors[p] = outside[C](op)
		}
		factors[3], factors[12] = 1, 1
		diagonal(arr, gi, factors)
		rotate(arr, gi, pairRotation[C]{3, 12, pauliY})
		return -0.5
	case gates.GeneratorMultiRZ:
		factors := make([]C, len(gi.Internal))
		for p := range factors {
			factors[p] = C(complex(float64(2*parity(p)-1), 0))
		}
		diagonal(arr, gi, factors)
		return 0.5
	default:
		panic(fmt.Sprintf("pi: generator %s not implemented", op))
	}
}

// outside is the factor on amplitudes outside an excitation block: 0 for
// the plain generator, 1 for Minus and -1 for Plus.
func outside[C hwy.Complexes](op gates.GeneratorOperation) C {
	switch op {
	case gates.GeneratorSingleExcitationMinus, gates.GeneratorDoubleExcitationMinus:
		return 1
	case gates.GeneratorSingleExcitationPlus, gates.GeneratorDoubleExcitationPlus:
		return -1
	default:
		return 0
	}
}

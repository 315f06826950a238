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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/internal/kerneltest"
	"github.com/ajroetker/qhwy/internal/testutil"
)

func TestConformance(t *testing.T) {
	t.Run("complex64", func(t *testing.T) { kerneltest.Run(t, New[complex64]()) })
	t.Run("complex128", func(t *testing.T) { kerneltest.Run(t, New[complex128]()) })
}

func TestScenarios(t *testing.T) {
	k := New[complex128]()
	invSqrt2 := complex(1/math.Sqrt2, 0)
	tests := []struct {
		name   string
		op     gates.GateOperation
		n      int
		wires  []int
		params []float64
		want   []complex128
	}{
		{"PauliX", gates.PauliX, 1, []int{0}, nil, []complex128{0, 1}},
		{"Hadamard", gates.Hadamard, 1, []int{0}, nil, []complex128{invSqrt2, invSqrt2}},
		{"RZ(pi)", gates.RZ, 1, []int{0}, []float64{math.Pi}, []complex128{-1i, 0}},
		{"MultiRZ(pi)", gates.MultiRZ, 2, []int{0, 1}, []float64{math.Pi}, []complex128{-1i, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := testutil.Basis[complex128](tt.n, 0)
			k.ApplyGate(tt.op, state, tt.n, tt.wires, false, tt.params...)
			testutil.RequireStatesNear(t, tt.want, state)
		})
	}
}

func TestInvolutions(t *testing.T) {
	k := New[complex64]()
	for _, op := range []gates.GateOperation{
		gates.PauliX, gates.PauliY, gates.PauliZ, gates.Hadamard,
		gates.CNOT, gates.SWAP, gates.CZ, gates.CY, gates.Toffoli, gates.CSWAP,
	} {
		t.Run(op.String(), func(t *testing.T) {
			const n = 4
			wires := []int{3, 1, 0}[:op.Wires()]
			orig := testutil.RandomState[complex64](n, 5)
			state := testutil.Clone(orig)
			k.ApplyGate(op, state, n, wires, false)
			k.ApplyGate(op, state, n, wires, false)
			testutil.RequireStatesNear(t, orig, state)
		})
	}
}

// wiresFor takes the first arity wires, or three for variable arity.
func wiresFor(arity int, wires []int) []int {
	if arity == 0 {
		arity = 3
	}
	return wires[:arity]
}

func TestRangeSplitMatchesWhole(t *testing.T) {
	k := New[complex128]()
	const n = 7
	for _, op := range []gates.GateOperation{gates.RX, gates.IsingYY, gates.DoubleExcitationMinus, gates.MultiRZ} {
		wires := wiresFor(op.Wires(), []int{6, 2, 4, 0})
		params := []float64{0.4}
		want := testutil.RandomState[complex128](n, 9)
		got := testutil.Clone(want)
		k.ApplyGate(op, want, n, wires, false, params...)

		total := GateGroups(op, n, wires)
		for lo := 0; lo < total; lo += 5 {
			k.ApplyGateRange(op, got, n, wires, false, params, lo, min(lo+5, total))
		}
		testutil.RequireStatesNear(t, want, got, op.String())
	}
}

func TestGeneratorRangeScale(t *testing.T) {
	k := New[complex128]()
	for _, op := range gates.AllGenerators() {
		wires := wiresFor(op.Wires(), []int{0, 1, 2, 3})
		state := testutil.RandomState[complex128](4, 1)
		whole := k.ApplyGenerator(op, testutil.Clone(state), 4, wires, false)
		part := k.ApplyGeneratorRange(op, state, 4, wires, 0, 0)
		assert.Equal(t, whole, part, op.String())
	}
}

func TestPreconditions(t *testing.T) {
	k := New[complex128]()
	state := make([]complex128, 8)
	assert.Panics(t, func() { k.ApplyGate(gates.CNOT, state, 3, []int{0}, false) })
	assert.Panics(t, func() { k.ApplyGate(gates.RX, state, 3, []int{0}, false) })
	assert.Panics(t, func() { k.ApplyGate(gates.PauliX, state, 2, []int{0}, false) })
	assert.Panics(t, func() { k.ApplyGate(gates.MultiRZ, state, 3, nil, false, 1) })
	assert.Panics(t, func() { k.ApplyGenerator(gates.GeneratorIsingXX, state, 3, []int{1, 1}, false) })
	assert.Panics(t, func() { k.ApplyMatrix(gates.TwoQubitOp, state, 3, make([]complex128, 16), []int{0, 1, 2}, false) })
	assert.NotPanics(t, func() { k.ApplyGate(gates.Identity, state, 3, []int{2}, false) })
}

func BenchmarkApplyGate(b *testing.B) {
	k := New[complex128]()
	for _, n := range []int{10, 16, 20} {
		state := testutil.Basis[complex128](n, 0)
		for _, op := range []gates.GateOperation{gates.Hadamard, gates.RX, gates.CNOT, gates.IsingZZ} {
			wires := []int{0, n - 1}[:op.Wires()]
			b.Run(fmt.Sprintf("%s/n=%d", op, n), func(b *testing.B) {
				for b.Loop() {
					k.ApplyGate(op, state, n, wires, false, 0.3)
				}
			})
		}
	}
}

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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/lm"
	"github.com/ajroetker/qhwy/internal/kerneltest"
	"github.com/ajroetker/qhwy/internal/testutil"
)

func TestConformance(t *testing.T) {
	t.Run("complex64", func(t *testing.T) { kerneltest.Run(t, New[complex64]()) })
	t.Run("complex128", func(t *testing.T) { kerneltest.Run(t, New[complex128]()) })
}

func TestScenarios(t *testing.T) {
	k := New[complex64]()

	state := testutil.Basis[complex64](1, 0)
	k.ApplyGate(gates.PauliX, state, 1, []int{0}, false)
	assert.Equal(t, []complex64{0, 1}, state)

	state = testutil.Basis[complex64](1, 0)
	k.ApplyGate(gates.RZ, state, 1, []int{0}, false, math.Pi)
	testutil.RequireStatesNear(t, []complex64{-1i, 0}, state)

	state = testutil.Basis[complex64](2, 0)
	k.ApplyGate(gates.MultiRZ, state, 2, []int{0, 1}, false, math.Pi)
	testutil.RequireStatesNear(t, []complex64{-1i, 0, 0, 0}, state)

	state = []complex64{0, 1, 0, 0}
	k.ApplyMatrix(gates.TwoQubitOp, state, 2, gates.Matrix[complex64](gates.SWAP, 2, false), []int{0, 1}, false)
	assert.Equal(t, []complex64{0, 0, 1, 0}, state)
}

func testMatchesLM[C hwy.Complexes](t *testing.T) {
	const n = 8
	ref := lm.New[C]()
	k := New[C]()
	wires := []int{7, 0, 3, 5}
	for _, op := range gates.AllGates() {
		arity := op.Wires()
		if arity == 0 {
			arity = 4
		}
		for _, inverse := range []bool{false, true} {
			want := testutil.RandomState[C](n, uint64(op))
			got := testutil.Clone(want)
			ref.ApplyGate(op, want, n, wires[:arity], inverse, 0.3, 1.9, -0.8)
			k.ApplyGate(op, got, n, wires[:arity], inverse, 0.3, 1.9, -0.8)
			testutil.RequireStatesNear(t, want, got, fmt.Sprintf("%s inverse=%v", op, inverse))
		}
	}
	for _, op := range gates.AllGenerators() {
		arity := op.Wires()
		if arity == 0 {
			arity = 4
		}
		want := testutil.RandomState[C](n, uint64(op)+50)
		got := testutil.Clone(want)
		wantScale := ref.ApplyGenerator(op, want, n, wires[:arity], false)
		gotScale := k.ApplyGenerator(op, got, n, wires[:arity], false)
		assert.Equal(t, wantScale, gotScale, op.String())
		testutil.RequireStatesNear(t, want, got, op.String())
	}
}

func TestMatchesLM(t *testing.T) {
	t.Run("complex64", testMatchesLM[complex64])
	t.Run("complex128", testMatchesLM[complex128])
}

func TestPreconditions(t *testing.T) {
	k := New[complex128]()
	state := make([]complex128, 16)
	assert.Panics(t, func() { k.ApplyGate(gates.Toffoli, state, 4, []int{0, 1}, false) })
	assert.Panics(t, func() { k.ApplyGate(gates.CRot, state, 4, []int{0, 1}, false, 1, 2) })
	assert.Panics(t, func() { k.ApplyMatrix(gates.MultiQubitOp, state, 4, make([]complex128, 15), []int{0, 1}, false) })
	assert.Panics(t, func() { k.ApplyGenerator(gates.GeneratorDoubleExcitation, state, 4, []int{0, 1, 2}, false) })
}

func BenchmarkApplyGate(b *testing.B) {
	k := New[complex128]()
	for _, n := range []int{10, 16} {
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

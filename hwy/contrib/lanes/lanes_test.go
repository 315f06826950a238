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

package lanes

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
	"github.com/ajroetker/qhwy/hwy/contrib/lm"
	"github.com/ajroetker/qhwy/internal/kerneltest"
	"github.com/ajroetker/qhwy/internal/testutil"
)

func TestConformance(t *testing.T) {
	for _, w := range []Width{Width256, Width512} {
		t.Run(fmt.Sprintf("%d/complex64", w.Bits()), func(t *testing.T) { kerneltest.Run(t, New[complex64](w)) })
		t.Run(fmt.Sprintf("%d/complex128", w.Bits()), func(t *testing.T) { kerneltest.Run(t, New[complex128](w)) })
	}
}

func TestLaneCounts(t *testing.T) {
	tests := []struct {
		lanes, minQubits int
		k                interface {
			Lanes() int
			MinQubits() int
		}
	}{
		{4, 2, New[complex64](Width256)},
		{2, 1, New[complex128](Width256)},
		{8, 3, New[complex64](Width512)},
		{4, 2, New[complex128](Width512)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.lanes, tt.k.Lanes())
		assert.Equal(t, tt.minQubits, tt.k.MinQubits())
	}
}

func TestDescriptor(t *testing.T) {
	d := New[complex64](Width256).Descriptor()
	assert.Equal(t, kernel.Lanes256, d.ID)
	assert.Equal(t, 32, d.Alignment)
	assert.True(t, d.ImplementsGate(gates.MultiRZ))
	assert.False(t, d.ImplementsGate(gates.CNOT))
	assert.Empty(t, d.Generators)

	d = New[complex128](Width512).Descriptor()
	assert.Equal(t, kernel.Lanes512, d.ID)
	assert.Equal(t, "Lanes512", d.Name)
	assert.Equal(t, 64, d.Alignment)

	assert.Panics(t, func() { New[complex64](Width(16)) })
}

// Every wire of every qubit count hits either the internal or external
// path; compare both against LM on a wider range than the conformance run.
func TestMatchesLM(t *testing.T) {
	k := New[complex64](Width512)
	ref := lm.New[complex64]()
	for n := 1; n <= 9; n++ {
		for _, op := range Gates() {
			arity := op.Wires()
			if arity == 0 {
				arity = min(n, 3)
			}
			if arity > n {
				continue
			}
			for first := 0; first+arity <= n; first++ {
				wires := make([]int, arity)
				for i := range wires {
					wires[i] = (first + i*2) % n
				}
				if !distinct(wires) {
					continue
				}
				want := testutil.RandomState[complex64](n, uint64(n*100+first))
				got := testutil.Clone(want)
				ref.ApplyGate(op, want, n, wires, false, 1.1)
				k.ApplyGate(op, got, n, wires, false, 1.1)
				testutil.RequireStatesNear(t, want, got, fmt.Sprintf("%s n=%d wires=%v", op, n, wires))
			}
		}
	}
}

func distinct(wires []int) bool {
	seen := map[int]bool{}
	for _, w := range wires {
		if seen[w] {
			return false
		}
		seen[w] = true
	}
	return true
}

func TestFallbackToLM(t *testing.T) {
	k := New[complex64](Width512)

	// One qubit is below a 512-bit register of complex64.
	state := testutil.Basis[complex64](1, 0)
	k.ApplyGate(gates.PauliX, state, 1, []int{0}, false)
	assert.Equal(t, []complex64{0, 1}, state)

	// CNOT is not vectorized.
	state = testutil.Basis[complex64](4, 8)
	k.ApplyGate(gates.CNOT, state, 4, []int{0, 3}, false)
	assert.Equal(t, testutil.Basis[complex64](4, 9), state)

	state = testutil.Basis[complex64](4, 1)
	assert.Equal(t, -0.5, k.ApplyGenerator(gates.GeneratorRZ, state, 4, []int{3}, false))
	assert.Equal(t, complex64(-1), state[1])
}

func TestPreconditions(t *testing.T) {
	k := New[complex128](Width256)
	state := make([]complex128, 16)
	assert.Panics(t, func() { k.ApplyGate(gates.CZ, state, 4, []int{2}, false) })
	assert.Panics(t, func() { k.ApplyGate(gates.RY, state, 4, []int{0}, false) })
	assert.Panics(t, func() { k.ApplyGate(gates.Hadamard, state, 5, []int{0}, false) })
}

func TestApplyGateDoesNotAllocate(t *testing.T) {
	t.Run("complex64", testApplyGateDoesNotAllocate[complex64])
	t.Run("complex128", testApplyGateDoesNotAllocate[complex128])
}

func testApplyGateDoesNotAllocate[C hwy.Complexes](t *testing.T) {
	const n = 8
	tests := []struct {
		op    gates.GateOperation
		wires []int
	}{
		{gates.RX, []int{n - 1}}, // internal pair
		{gates.RX, []int{0}},     // external pair
		{gates.Hadamard, []int{n - 1}},
		{gates.Hadamard, []int{0}},
		{gates.PauliX, []int{1}},
		{gates.PauliZ, []int{0}},
		{gates.RZ, []int{n - 1}},
		{gates.CZ, []int{0, n - 1}},
		{gates.CZ, []int{0, 1}},
		{gates.MultiRZ, []int{0, 3, n - 1}},
	}
	params := []float64{0.7}
	for _, w := range []Width{Width256, Width512} {
		k := New[C](w)
		state := testutil.RandomState[C](n, 5)
		for _, tt := range tests {
			p := params[:tt.op.Params()]
			allocs := testing.AllocsPerRun(20, func() {
				k.ApplyGate(tt.op, state, n, tt.wires, false, p...)
			})
			assert.Zero(t, allocs, "%d/%s wires=%v", w.Bits(), tt.op, tt.wires)
		}
	}
}

// External Hadamard and PauliX take dedicated paths; check them on a
// precision and width the conformance run sees less of.
func TestExternalShortcuts(t *testing.T) {
	const n = 7
	k := New[complex128](Width256)
	ref := lm.New[complex128]()
	for _, op := range []gates.GateOperation{gates.Hadamard, gates.PauliX, gates.PauliZ, gates.CZ} {
		for wire := 0; wire < n-1; wire++ {
			wires := []int{wire}
			if op.Wires() == 2 {
				wires = []int{wire, (wire + 3) % (n - 1)}
				if wires[0] == wires[1] {
					continue
				}
			}
			want := testutil.RandomState[complex128](n, uint64(wire))
			got := testutil.Clone(want)
			ref.ApplyGate(op, want, n, wires, false)
			k.ApplyGate(op, got, n, wires, false)
			testutil.RequireStatesNear(t, want, got, fmt.Sprintf("%s wires=%v", op, wires))
		}
	}
}

func BenchmarkApplyGate(b *testing.B) {
	const n = 16
	kernels := []struct {
		name string
		k    kernel.Kernel[complex128]
	}{
		{"LM", lm.New[complex128]()},
		{"Lanes256", New[complex128](Width256)},
		{"Lanes512", New[complex128](Width512)},
	}
	cases := []struct {
		op     gates.GateOperation
		wires  []int
		params []float64
	}{
		{gates.Hadamard, []int{0}, nil},
		{gates.Hadamard, []int{n - 1}, nil},
		{gates.RY, []int{n / 2}, []float64{0.3}},
		{gates.RZ, []int{n - 1}, []float64{0.3}},
		{gates.CZ, []int{1, n - 1}, nil},
	}
	for _, kk := range kernels {
		state := testutil.Basis[complex128](n, 0)
		for _, c := range cases {
			b.Run(fmt.Sprintf("%s/%s/wires=%v", kk.name, c.op, c.wires), func(b *testing.B) {
				b.ReportAllocs()
				for b.Loop() {
					kk.k.ApplyGate(c.op, state, n, c.wires, false, c.params...)
				}
			})
		}
	}
}

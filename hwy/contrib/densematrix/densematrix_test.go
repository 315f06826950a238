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

package densematrix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/internal/testutil"
)

func TestSwapScenario(t *testing.T) {
	state := []complex128{0, 1, 0, 0}
	swap := gates.Matrix[complex128](gates.SWAP, 2, false)
	ApplyTwoQubitOp(state, 2, swap, []int{0, 1}, false)
	assert.Equal(t, []complex128{0, 0, 1, 0}, state)

	state = []complex128{0, 1, 0, 0}
	ApplyMultiQubitOp(state, 2, swap, []int{0, 1}, false)
	assert.Equal(t, []complex128{0, 0, 1, 0}, state)
}

func TestHadamardScenario(t *testing.T) {
	state := []complex64{1, 0}
	ApplySingleQubitOp(state, 1, gates.Matrix[complex64](gates.Hadamard, 1, false), []int{0}, false)
	testutil.RequireStatesNear(t, []complex64{1 / math.Sqrt2, 1 / math.Sqrt2}, state)
}

func testArityAgreement[C hwy.Complexes](t *testing.T) {
	const n = 4
	single := gates.Matrix[C](gates.Rot, 1, false, 0.2, 0.9, -1.4)
	two := gates.Matrix[C](gates.CRY, 2, false, 0.77)
	for wire := 0; wire < n; wire++ {
		want := testutil.RandomState[C](n, uint64(wire))
		got := testutil.Clone(want)
		ApplySingleQubitOp(want, n, single, []int{wire}, false)
		ApplyMultiQubitOp(got, n, single, []int{wire}, false)
		testutil.RequireStatesNear(t, want, got, "wire", wire)
	}
	for _, wires := range [][]int{{0, 1}, {1, 0}, {3, 1}, {0, 3}, {2, 3}} {
		want := testutil.RandomState[C](n, 7)
		got := testutil.Clone(want)
		ApplyTwoQubitOp(want, n, two, wires, false)
		ApplyMultiQubitOp(got, n, two, wires, false)
		testutil.RequireStatesNear(t, want, got, "wires", wires)
	}
}

func TestArityAgreement(t *testing.T) {
	t.Run("complex64", testArityAgreement[complex64])
	t.Run("complex128", testArityAgreement[complex128])
}

func testInverseRoundTrip[C hwy.Complexes](t *testing.T) {
	const n = 5
	m := gates.Matrix[C](gates.DoubleExcitationPlus, 4, false, 1.3)
	wires := []int{4, 0, 2, 1}
	orig := testutil.RandomState[C](n, 11)
	state := testutil.Clone(orig)
	ApplyMultiQubitOp(state, n, m, wires, false)
	assert.InDelta(t, 1.0, testutil.SquaredNorm(state), 100*testutil.Tolerance[C]())
	ApplyMultiQubitOp(state, n, m, wires, true)
	testutil.RequireStatesNear(t, orig, state)
}

func TestInverseRoundTrip(t *testing.T) {
	t.Run("complex64", testInverseRoundTrip[complex64])
	t.Run("complex128", testInverseRoundTrip[complex128])
}

func TestRangeSplitMatchesWhole(t *testing.T) {
	const n = 6
	m := gates.Matrix[complex128](gates.Toffoli, 3, false)
	wires := []int{5, 2, 0}
	want := testutil.RandomState[complex128](n, 3)
	got := testutil.Clone(want)
	ApplyMultiQubitOp(want, n, m, wires, false)
	total := Groups(n, 3)
	ApplyMultiQubitOpRange(got, n, m, wires, false, 0, total/2)
	ApplyMultiQubitOpRange(got, n, m, wires, false, total/2, total)
	testutil.RequireStatesNear(t, want, got)
}

func TestPreconditions(t *testing.T) {
	state := make([]complex128, 4)
	assert.Panics(t, func() { ApplySingleQubitOp(state, 2, make([]complex128, 3), []int{0}, false) })
	assert.Panics(t, func() { ApplyTwoQubitOp(state, 2, make([]complex128, 16), []int{0}, false) })
	assert.Panics(t, func() { ApplyMultiQubitOp(state, 3, make([]complex128, 4), []int{0}, false) })
	assert.Panics(t, func() { ApplyMultiQubitOp(state, 2, nil, nil, false) })
}

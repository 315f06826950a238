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

// Package kerneltest checks a kernel implementation against the dense
// reference matrices of the gate catalog.
//
// A kernel package calls Run from its tests; every operation the kernel's
// descriptor lists is compared with a dense application of the matching
// matrix, for every ordering of wires on small states and both directions.
package kerneltest

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/densematrix"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
	"github.com/ajroetker/qhwy/internal/testutil"
)

// Params used for every parametric gate.
var Params = []float64{0.731, -1.234, 2.118}

// MaxQubits is the largest state the suite builds.
const MaxQubits = 6

// OrderedWires returns every ordered selection of k distinct wires out of n.
func OrderedWires(n, k int) [][]int {
	var out [][]int
	var rec func(prefix []int, used int)
	rec = func(prefix []int, used int) {
		if len(prefix) == k {
			out = append(out, append([]int(nil), prefix...))
			return
		}
		for w := 0; w < n; w++ {
			if used&(1<<w) == 0 {
				rec(append(prefix, w), used|1<<w)
			}
		}
	}
	rec(nil, 0)
	return out
}

// Subsets returns every ascending selection of k wires out of n.
func Subsets(n, k int) [][]int {
	var out [][]int
	for _, w := range OrderedWires(n, k) {
		ascending := true
		for i := 1; i < len(w); i++ {
			ascending = ascending && w[i-1] < w[i]
		}
		if ascending {
			out = append(out, w)
		}
	}
	return out
}

// Cases calls fn for every (n, wires) combination the suite uses for an
// operation of the given arity (0 meaning any).
func Cases(arity int, fn func(n int, wires []int)) {
	maxN := MaxQubits
	if arity > 2 || arity == 0 {
		maxN = 5
	}
	for n := max(arity, 1); n <= maxN; n++ {
		if arity == 0 {
			for k := 1; k <= n; k++ {
				for _, wires := range Subsets(n, k) {
					fn(n, wires)
				}
			}
			continue
		}
		for _, wires := range OrderedWires(n, arity) {
			fn(n, wires)
		}
	}
}

func expectGate[C hwy.Complexes](op gates.GateOperation, state []C, n int, wires []int, inverse bool) []C {
	want := testutil.Clone(state)
	densematrix.ApplyMultiQubitOp(want, n, gates.Matrix[C](op, len(wires), inverse, Params...), wires, false)
	return want
}

// Run checks every operation k implements.
func Run[C hwy.Complexes](t *testing.T, k kernel.Kernel[C]) {
	d := k.Descriptor()
	t.Run("Gates", func(t *testing.T) {
		for _, op := range d.Gates {
			t.Run(op.String(), func(t *testing.T) { checkGate(t, k, op) })
		}
	})
	t.Run("Generators", func(t *testing.T) {
		for _, op := range d.Generators {
			t.Run(op.String(), func(t *testing.T) { checkGenerator(t, k, op) })
		}
	})
	t.Run("Matrices", func(t *testing.T) {
		for _, op := range d.Matrices {
			t.Run(op.String(), func(t *testing.T) { checkMatrix(t, k, op) })
		}
	})
}

func checkGate[C hwy.Complexes](t *testing.T, k kernel.Kernel[C], op gates.GateOperation) {
	seed := uint64(op) + 1
	Cases(op.Wires(), func(n int, wires []int) {
		for _, inverse := range []bool{false, true} {
			name := fmt.Sprintf("n=%d wires=%v inverse=%v", n, wires, inverse)
			orig := testutil.RandomState[C](n, seed)
			seed++
			want := expectGate(op, orig, n, wires, inverse)
			got := testutil.Clone(orig)
			k.ApplyGate(op, got, n, wires, inverse, Params...)
			testutil.RequireStatesNear(t, want, got, name)
			assert.InDelta(t, 1.0, testutil.SquaredNorm(got), 100*testutil.Tolerance[C](), name)

			// Undo with the opposite direction.
			k.ApplyGate(op, got, n, wires, !inverse, Params...)
			testutil.RequireStatesNear(t, orig, got, name+" round trip")
		}
	})
}

// generatorMatrix is the dense G with dU/dtheta = i*scale*G*U at theta=0,
// estimated with a central difference in double precision.
func generatorMatrix(op gates.GateOperation, wires int, scale float64) []complex128 {
	const h = 1e-6
	plus := gates.Matrix[complex128](op, wires, false, h)
	minus := gates.Matrix[complex128](op, wires, false, -h)
	out := make([]complex128, len(plus))
	denom := complex(0, scale) * complex(2*h, 0)
	for i := range out {
		out[i] = (plus[i] - minus[i]) / denom
	}
	return out
}

func checkGenerator[C hwy.Complexes](t *testing.T, k kernel.Kernel[C], op gates.GeneratorOperation) {
	seed := uint64(op) + 100
	Cases(op.Wires(), func(n int, wires []int) {
		for _, adjoint := range []bool{false, true} {
			name := fmt.Sprintf("n=%d wires=%v adjoint=%v", n, wires, adjoint)
			orig := testutil.RandomState[C](n, seed)
			seed++
			got := testutil.Clone(orig)
			scale := k.ApplyGenerator(op, got, n, wires, adjoint)
			require.NotZero(t, scale, name)

			g := generatorMatrix(op.Gate(), len(wires), scale)
			gc := make([]C, len(g))
			for i, v := range g {
				// Central differences leave ~1e-10 noise; snap it so the
				// complex64 comparison is not dominated by it.
				gc[i] = C(complex(snap(real(v)), snap(imag(v))))
			}
			want := testutil.Clone(orig)
			densematrix.ApplyMultiQubitOp(want, n, gc, wires, false)
			testutil.RequireStatesNear(t, want, got, name)
		}
	})
}

func snap(x float64) float64 {
	r := math.Round(x)
	if math.Abs(x-r) < 1e-6 {
		return r
	}
	return x
}

func checkMatrix[C hwy.Complexes](t *testing.T, k kernel.Kernel[C], op gates.MatrixOperation) {
	seed := uint64(op) + 200
	Cases(op.Wires(), func(n int, wires []int) {
		if op == gates.MultiQubitOp && len(wires) > 3 {
			return
		}
		for _, inverse := range []bool{false, true} {
			name := fmt.Sprintf("n=%d wires=%v inverse=%v", n, wires, inverse)
			// The reference is the dense kernel itself, so the matrix need
			// not be unitary; a dense random one exposes index mistakes.
			dim := 1 << len(wires)
			m := testutil.RandomState[C](2*len(wires), seed)
			orig := testutil.RandomState[C](n, seed+1)
			seed += 2
			require.Len(t, m, dim*dim)
			want := testutil.Clone(orig)
			densematrix.ApplyMultiQubitOp(want, n, m, wires, inverse)
			got := testutil.Clone(orig)
			k.ApplyMatrix(op, got, n, m, wires, inverse)
			testutil.RequireStatesNear(t, want, got, name)
		}
	})
}

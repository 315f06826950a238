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

// Package testutil holds state-vector helpers shared by kernel tests.
package testutil

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/ajroetker/qhwy/hwy"
)

// Tolerance returns the comparison tolerance for the precision of C.
func Tolerance[C hwy.Complexes]() float64 {
	var zero C
	if _, ok := any(zero).(complex64); ok {
		return 1e-5
	}
	return 1e-12
}

// RandomState returns a normalized random n-qubit state.
func RandomState[C hwy.Complexes](n int, seed uint64) []C {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]C, 1<<n)
	var norm float64
	raw := make([]complex128, len(out))
	for i := range raw {
		raw[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		norm += real(raw[i])*real(raw[i]) + imag(raw[i])*imag(raw[i])
	}
	scale := complex(1/math.Sqrt(norm), 0)
	for i := range out {
		out[i] = C(raw[i] * scale)
	}
	return out
}

// Basis returns the n-qubit basis state |index>.
func Basis[C hwy.Complexes](n, index int) []C {
	out := make([]C, 1<<n)
	out[index] = 1
	return out
}

// SquaredNorm returns sum |a|^2 computed in double precision.
func SquaredNorm[C hwy.Complexes](arr []C) float64 {
	var sum float64
	for _, v := range arr {
		a := cmplx.Abs(complex128(v))
		sum += a * a
	}
	return sum
}

// MaxDiff returns the largest amplitude-wise distance between a and b.
func MaxDiff[C hwy.Complexes](a, b []C) float64 {
	var worst float64
	for i := range a {
		worst = max(worst, cmplx.Abs(complex128(a[i])-complex128(b[i])))
	}
	return worst
}

// RequireStatesNear fails the test if any amplitude differs by more than
// the precision's tolerance.
func RequireStatesNear[C hwy.Complexes](t testing.TB, want, got []C, msgAndArgs ...any) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("state length %d, want %d %v", len(got), len(want), msgAndArgs)
	}
	tol := Tolerance[C]()
	for i := range want {
		if d := cmplx.Abs(complex128(want[i]) - complex128(got[i])); d > tol {
			t.Fatalf("amplitude %d = %v, want %v (diff %g) %v", i, got[i], want[i], d, msgAndArgs)
		}
	}
}

// Clone returns a copy of arr.
func Clone[C hwy.Complexes](arr []C) []C {
	return append([]C(nil), arr...)
}

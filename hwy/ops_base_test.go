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

package hwy

import "testing"

func TestLanesFor(t *testing.T) {
	tests := []struct {
		name  string
		width int
		got   int
		want  int
	}{
		{"complex128/256", 32, LanesFor[complex128](32), 2},
		{"complex128/512", 64, LanesFor[complex128](64), 4},
		{"complex64/256", 32, LanesFor[complex64](32), 4},
		{"complex64/512", 64, LanesFor[complex64](64), 8},
		{"float32/512", 64, LanesFor[float32](64), 16},
		{"complex128/8", 8, LanesFor[complex128](8), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: LanesFor = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

// lanesOf stores v into a buffer pre-filled with a sentinel so the test can
// see how many lanes were written.
func lanesOf[T Lanes](v Vec[T], sentinel T) []T {
	buf := make([]T, MaxVecLanes)
	for i := range buf {
		buf[i] = sentinel
	}
	Store(v, buf)
	for i, x := range buf {
		if x == sentinel {
			return buf[:i]
		}
	}
	return buf
}

func TestLoadStoreN(t *testing.T) {
	src := []complex128{1, 2i, 3, 4i, 5}
	v := LoadN(src, 4)
	dst := make([]complex128, 4)
	Store(v, dst)
	for i := range dst {
		if dst[i] != src[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], src[i])
		}
	}

	// Loading past the end truncates.
	short := lanesOf(LoadN(src[3:], 4), -1)
	if len(short) != 2 {
		t.Errorf("loaded %d lanes, want 2", len(short))
	}

	// Storing into a shorter slice writes what fits.
	narrow := make([]complex128, 2)
	Store(v, narrow)
	if narrow[0] != 1 || narrow[1] != 2i {
		t.Errorf("narrow store = %v", narrow)
	}
}

func TestLoadNPanicsPastCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for more than MaxVecLanes lanes")
		}
	}()
	LoadN(make([]float32, 16), 16)
}

func TestArithmetic(t *testing.T) {
	a := LoadN([]complex64{1, 2, 1i, -1}, 4)
	b := LoadN([]complex64{2, 1i, 1i, 3}, 4)
	c := SetN[complex64](1, 4)

	tests := []struct {
		name string
		got  Vec[complex64]
		want []complex64
	}{
		{"Add", Add(a, b), []complex64{3, 2 + 1i, 2i, 2}},
		{"Sub", Sub(a, b), []complex64{-1, 2 - 1i, 0, -4}},
		{"Mul", Mul(a, b), []complex64{2, 2i, -1, -3}},
		{"MulAdd", MulAdd(a, b, c), []complex64{3, 1 + 2i, 0, -2}},
		{"Neg", Neg(a), []complex64{-1, -2, -1i, 1}},
	}
	for _, tt := range tests {
		got := lanesOf(tt.got, 99)
		if len(got) != len(tt.want) {
			t.Errorf("%s: %d lanes, want %d", tt.name, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s lane %d = %v, want %v", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestTableLookupLanes(t *testing.T) {
	v := LoadN([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 8)
	for _, mask := range []int{1, 2, 4} {
		got := lanesOf(TableLookupLanes(v, Xor1Indices(8, mask)), -1)
		for i := 0; i < 8; i++ {
			if want := float64(i ^ mask); got[i] != want {
				t.Errorf("mask %d lane %d = %v, want %v", mask, i, got[i], want)
			}
		}
	}
}

func TestTableLookupLanesPanicsOnShortTable(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for short lookup table")
		}
	}()
	TableLookupLanes(SetN[float32](1, 4), Xor1Indices(2, 1))
}

func TestVecOpsDoNotAllocate(t *testing.T) {
	block := []complex128{1, 2, 3, 4}
	perm := Xor1Indices(4, 1)
	allocs := testing.AllocsPerRun(100, func() {
		v := LoadN(block, 4)
		c := SetN[complex128](0.5, 4)
		v = MulAdd(c, TableLookupLanes(v, perm), Mul(c, v))
		v = Neg(Sub(Add(v, c), c))
		Store(v, block)
	})
	if allocs != 0 {
		t.Errorf("vector ops allocated %.1f times per run, want 0", allocs)
	}
}

func TestDispatchLevel(t *testing.T) {
	if CurrentName() != CurrentLevel().String() {
		t.Errorf("CurrentName = %q, level = %q", CurrentName(), CurrentLevel())
	}
	if CurrentWidth() < 16 {
		t.Errorf("CurrentWidth = %d, want >= 16", CurrentWidth())
	}
	if HasAVX512() && !HasAVX2() {
		t.Error("AVX512 level implies AVX2")
	}
	if LanesFor[complex64](CurrentWidth()) > MaxVecLanes {
		t.Errorf("complex64 at %d bytes does not fit a Vec", CurrentWidth())
	}
}

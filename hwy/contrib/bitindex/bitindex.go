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

// Package bitindex computes which amplitude indices a gate on a set of
// wires touches, without materializing the full 2^n x 2^n operator.
//
// Amplitude index bit b corresponds to wire n-1-b (the reversed wire).
// For k target wires the 2^n indices split into 2^(n-k) disjoint groups
// of 2^k indices that differ only in the targeted bits. Every function
// here enumerates a group in binary order of the target bit pattern, with
// the first listed wire as the most significant bit of the pattern.
package bitindex

import (
	"fmt"
	"math/bits"
	"slices"
)

// Exp2 returns 2^k.
func Exp2(k int) int { return 1 << k }

// Log2 returns log2(v) for a power of two v.
func Log2(v int) int { return bits.TrailingZeros(uint(v)) }

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool { return v > 0 && v&(v-1) == 0 }

// RevWire returns the bit position of wire in an n-qubit index.
func RevWire(n, wire int) int { return n - wire - 1 }

// FillTrailingOnes returns a mask with the k lowest bits set.
func FillTrailingOnes(k int) int {
	if k == 0 {
		return 0
	}
	return int(^uint(0) >> (bits.UintSize - k))
}

// FillLeadingOnes returns a mask with every bit at or above k set.
func FillLeadingOnes(k int) int {
	return int(^uint(0) << k)
}

// Bitswap exchanges bits i and j of x.
func Bitswap(x, i, j int) int {
	b := ((x >> i) ^ (x >> j)) & 1
	return x ^ (b<<i | b<<j)
}

// GroupCount returns the number of disjoint groups a k-wire operation
// visits on n qubits.
func GroupCount(n, k int) int { return 1 << (n - k) }

// RevWireParity returns the masks selecting the bits above and below rev.
func RevWireParity(rev int) (high, low int) {
	return FillLeadingOnes(rev + 1), FillTrailingOnes(rev)
}

// RevWireParity2 returns the masks selecting the bits above, between and
// below two distinct reversed wires.
func RevWireParity2(rev0, rev1 int) (high, middle, low int) {
	lo, hi := min(rev0, rev1), max(rev0, rev1)
	high = FillLeadingOnes(hi + 1)
	middle = FillLeadingOnes(lo+1) & FillTrailingOnes(hi)
	low = FillTrailingOnes(lo)
	return high, middle, low
}

// Masks1 locates the amplitude pairs of a single-wire operation.
type Masks1 struct {
	Rev   int
	Shift int
	High  int
	Low   int
}

// Parity1 computes the pair masks for wire on n qubits.
func Parity1(n, wire int) Masks1 {
	rev := RevWire(n, wire)
	high, low := RevWireParity(rev)
	return Masks1{Rev: rev, Shift: 1 << rev, High: high, Low: low}
}

// Pair returns the k-th index pair. i1 differs from i0 only in the
// targeted bit, which is clear in i0 and set in i1.
func (m Masks1) Pair(k int) (i0, i1 int) {
	i0 = ((k << 1) & m.High) | (k & m.Low)
	return i0, i0 | m.Shift
}

// Masks2 locates the amplitude quadruples of a two-wire operation.
// Shift0 is the target (second) wire and Shift1 the control (first) wire.
type Masks2 struct {
	Shift0 int
	Shift1 int
	High   int
	Middle int
	Low    int
}

// Parity2 computes the quadruple masks for wires on n qubits.
func Parity2(n int, wires []int) Masks2 {
	rev0 := RevWire(n, wires[1])
	rev1 := RevWire(n, wires[0])
	high, middle, low := RevWireParity2(rev0, rev1)
	return Masks2{
		Shift0: 1 << rev0,
		Shift1: 1 << rev1,
		High:   high,
		Middle: middle,
		Low:    low,
	}
}

// Quad returns the k-th index quadruple. The suffix names the bit pattern
// of (wires[0], wires[1]).
func (m Masks2) Quad(k int) (i00, i01, i10, i11 int) {
	i00 = ((k << 2) & m.High) | ((k << 1) & m.Middle) | (k & m.Low)
	i01 = i00 | m.Shift0
	i10 = i00 | m.Shift1
	i11 = i00 | m.Shift0 | m.Shift1
	return
}

// MasksN generalizes Masks2 to any number of wires: one parity mask per
// gap between the sorted reversed wires, plus the offset of every target
// bit pattern.
type MasksN struct {
	Parity  []int
	Offsets []int
}

// ParityN computes the gap masks and pattern offsets for wires on n qubits.
func ParityN(n int, wires []int) MasksN {
	revs := make([]int, len(wires))
	for i, w := range wires {
		revs[i] = RevWire(n, w)
	}
	slices.Sort(revs)
	last := len(revs) - 1
	parity := make([]int, len(revs)+1)
	parity[0] = FillTrailingOnes(revs[0])
	for i := 1; i <= last; i++ {
		parity[i] = FillLeadingOnes(revs[i-1]+1) & FillTrailingOnes(revs[i])
	}
	parity[last+1] = FillLeadingOnes(revs[last] + 1)
	return MasksN{Parity: parity, Offsets: InternalIndices(n, wires)}
}

// Base returns the index of group k with every targeted bit clear.
func (m MasksN) Base(k int) int {
	idx := 0
	for i, p := range m.Parity {
		idx |= (k << i) & p
	}
	return idx
}

// MultiMasks locates the groups of an operation on any number of wires by
// iterated bit swaps. Group g starts as g<<len(wires) with the pattern in
// the low bits; the swap plan then moves pattern bit len(wires)-1-p to
// the reversed position of wires[p].
type MultiMasks struct {
	Wires int
	swaps [][2]int
}

// NewMultiMasks builds the swap plan for wires on n qubits.
func NewMultiMasks(n int, wires []int) MultiMasks {
	nw := len(wires)
	// slot[p] is the logical bit currently held in physical position p.
	slot := make([]int, n)
	at := make([]int, n)
	for p := range slot {
		slot[p] = p
		at[p] = p
	}
	var swaps [][2]int
	for pos, w := range wires {
		logical := nw - pos - 1
		src, dst := at[logical], RevWire(n, w)
		if src == dst {
			continue
		}
		swaps = append(swaps, [2]int{src, dst})
		a, b := slot[src], slot[dst]
		slot[src], slot[dst] = b, a
		at[a], at[b] = dst, src
	}
	return MultiMasks{Wires: nw, swaps: swaps}
}

// Index returns the buffer index of pattern inner within group g.
func (m MultiMasks) Index(g, inner int) int {
	idx := g<<m.Wires | inner
	for _, s := range m.swaps {
		idx = Bitswap(idx, s[0], s[1])
	}
	return idx
}

// WiresParity returns the mask of the reversed positions of wires.
func WiresParity(n int, wires []int) int {
	mask := 0
	for _, w := range wires {
		mask |= 1 << RevWire(n, w)
	}
	return mask
}

// InternalIndices returns the offsets of every target bit pattern, in
// binary order of the pattern with wires[0] most significant.
func InternalIndices(n int, wires []int) []int {
	nw := len(wires)
	out := make([]int, 1<<nw)
	for pattern := range out {
		idx := 0
		for pos, w := range wires {
			if pattern>>(nw-pos-1)&1 == 1 {
				idx |= 1 << RevWire(n, w)
			}
		}
		out[pattern] = idx
	}
	return out
}

// ExternalIndices returns, in ascending order, every index whose
// targeted bits are all clear.
func ExternalIndices(n int, wires []int) []int {
	revs := make([]int, len(wires))
	for i, w := range wires {
		revs[i] = RevWire(n, w)
	}
	slices.Sort(revs)
	out := make([]int, GroupCount(n, len(wires)))
	for g := range out {
		out[g] = insertZeroBits(g, revs)
	}
	return out
}

func insertZeroBits(v int, sortedPositions []int) int {
	for _, p := range sortedPositions {
		low := v & FillTrailingOnes(p)
		v = low | (v^low)<<1
	}
	return v
}

// GateIndices holds the internal and external indices of a gate. Every
// touched index is External[g] + Internal[pattern].
type GateIndices struct {
	Internal []int
	External []int
}

// NewGateIndices computes the internal and external indices for wires.
func NewGateIndices(n int, wires []int) GateIndices {
	return GateIndices{
		Internal: InternalIndices(n, wires),
		External: ExternalIndices(n, wires),
	}
}

// Validate panics unless wires are distinct, lie in [0, n), and number
// exactly arity. An arity of 0 accepts any non-empty list of at most n.
func Validate(n int, wires []int, arity int) {
	if n < 1 {
		panic(fmt.Sprintf("bitindex: qubit count %d must be positive", n))
	}
	if arity != 0 && len(wires) != arity {
		panic(fmt.Sprintf("bitindex: got %d wires, want %d", len(wires), arity))
	}
	if len(wires) == 0 || len(wires) > n {
		panic(fmt.Sprintf("bitindex: %d wires on %d qubits", len(wires), n))
	}
	seen := 0
	for _, w := range wires {
		if w < 0 || w >= n {
			panic(fmt.Sprintf("bitindex: wire %d out of range for %d qubits", w, n))
		}
		if seen&(1<<w) != 0 {
			panic(fmt.Sprintf("bitindex: duplicate wire %d", w))
		}
		seen |= 1 << w
	}
}

// ValidateState panics unless a buffer of length holds 2^n amplitudes.
func ValidateState(length, n int) {
	if n < 1 || n >= bits.UintSize-1 || length != 1<<n {
		panic(fmt.Sprintf("bitindex: buffer of %d amplitudes is not a %d-qubit state", length, n))
	}
}

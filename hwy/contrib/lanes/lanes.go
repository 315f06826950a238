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

// Package lanes implements gate kernels over whole vector registers.
//
// The state vector is processed in blocks of one register each. A wire
// whose reversed position falls inside a block is internal: both amplitudes
// of a pair live in the same register, and the partner lane is brought in
// with a TableLookupLanes permutation before a multiply-add with per-lane
// coefficient vectors. Any other wire is external: the pair members sit in
// two registers whose block indices come from the bit-index algebra at
// register granularity, and the update uses broadcast coefficients.
//
// Diagonal gates never pair amplitudes. Their factor depends only on the
// parity, or the all-ones test, of the targeted bits, so one coefficient
// vector per block class covers every block.
//
// The register width is a parameter of the kernel rather than a separate
// copy per width. States smaller than one register, and operations the
// kernel does not vectorize, run on the LM kernels.
package lanes

import (
	"fmt"
	"math/bits"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/bitindex"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
	"github.com/ajroetker/qhwy/hwy/contrib/lm"
)

// Width is a vector register width in bytes.
type Width int

const (
	Width256 Width = 32
	Width512 Width = 64
)

// Bits returns the register width in bits.
func (w Width) Bits() int { return int(w) * 8 }

// Kernel is the vectorized kernel family for one register width.
type Kernel[C hwy.Complexes] struct {
	width Width
	lanes int
	lm    lm.Kernel[C]
}

var _ kernel.Kernel[complex64] = Kernel[complex64]{}

// New returns the kernel for width. It panics on an unsupported width.
func New[C hwy.Complexes](width Width) Kernel[C] {
	if width != Width256 && width != Width512 {
		panic(fmt.Sprintf("lanes: unsupported register width %d bytes", int(width)))
	}
	return Kernel[C]{width: width, lanes: hwy.LanesFor[C](int(width)), lm: lm.New[C]()}
}

// Gates lists the vectorized gates.
func Gates() []gates.GateOperation {
	return []gates.GateOperation{
		gates.PauliX, gates.PauliY, gates.PauliZ, gates.Hadamard,
		gates.S, gates.T, gates.PhaseShift,
		gates.RX, gates.RY, gates.RZ,
		gates.CZ, gates.IsingZZ, gates.MultiRZ,
	}
}

// Descriptor lists only the vectorized gates. Generators and dense
// matrices are accepted and run on LM.
func (k Kernel[C]) Descriptor() kernel.Descriptor {
	d := kernel.Descriptor{
		ID:        kernel.Lanes256,
		Name:      "Lanes256",
		Alignment: int(k.width),
		Gates:     Gates(),
	}
	if k.width == Width512 {
		d.ID, d.Name = kernel.Lanes512, "Lanes512"
	}
	return d
}

// Lanes returns the number of amplitudes per register.
func (k Kernel[C]) Lanes() int { return k.lanes }

// MinQubits returns the smallest qubit count the vector paths handle; a
// state of fewer qubits does not fill one register.
func (k Kernel[C]) MinQubits() int { return bitindex.Log2(k.lanes) }

// ApplyGate applies op to arr in place. The vector paths do not allocate.
func (k Kernel[C]) ApplyGate(op gates.GateOperation, arr []C, n int, wires []int, inverse bool, params ...float64) {
	lm.CheckGate(op, len(arr), n, wires, params)
	if n < k.MinQubits() {
		k.lm.ApplyGate(op, arr, n, wires, inverse, params...)
		return
	}

	switch op {
	case gates.PauliX, gates.PauliY, gates.Hadamard, gates.RX, gates.RY:
		k.single(op, arr, n, wires[0], gates.Matrix2[C](op, inverse, params...))
	case gates.PauliZ, gates.S, gates.T, gates.PhaseShift, gates.RZ:
		u := gates.Matrix2[C](op, inverse, params...)
		k.parityDiagonal(arr, n, wires, u[0], u[3])
	case gates.IsingZZ, gates.MultiRZ:
		// Both share the RZ eigenvalues, split by the parity of the wires.
		u := gates.Matrix2[C](gates.RZ, inverse, params[0])
		k.parityDiagonal(arr, n, wires, u[0], u[3])
	case gates.CZ:
		k.allOnesDiagonal(arr, n, wires, -1)
	default:
		k.lm.ApplyGate(op, arr, n, wires, inverse, params...)
	}
}

// ApplyGenerator runs on LM.
func (k Kernel[C]) ApplyGenerator(op gates.GeneratorOperation, arr []C, n int, wires []int, adjoint bool) float64 {
	return k.lm.ApplyGenerator(op, arr, n, wires, adjoint)
}

// ApplyMatrix runs on LM.
func (k Kernel[C]) ApplyMatrix(op gates.MatrixOperation, arr []C, n int, matrix []C, wires []int, inverse bool) {
	k.lm.ApplyMatrix(op, arr, n, matrix, wires, inverse)
}

// single applies the row-major 2x2 matrix u of op to wire.
func (k Kernel[C]) single(op gates.GateOperation, arr []C, n, wire int, u [4]C) {
	rev := bitindex.RevWire(n, wire)
	if rev < k.MinQubits() {
		k.singleInternal(arr, rev, u)
		return
	}
	switch op {
	case gates.PauliX:
		k.swapExternal(arr, n, wire)
	case gates.Hadamard:
		k.hadamardExternal(arr, n, wire, u[0])
	default:
		k.singleExternal(arr, n, wire, u)
	}
}

// singleInternal handles a pair inside one register. Lane j is combined
// with lane j^(1<<rev): a lane with the bit clear takes u00 and u01, a lane
// with the bit set takes u11 and u10.
func (k Kernel[C]) singleInternal(arr []C, rev int, u [4]C) {
	bit := 1 << rev
	var diag, off [hwy.MaxVecLanes]C
	for j := 0; j < k.lanes; j++ {
		if j&bit == 0 {
			diag[j], off[j] = u[0], u[1]
		} else {
			diag[j], off[j] = u[3], u[2]
		}
	}
	vDiag := hwy.LoadN(diag[:], k.lanes)
	vOff := hwy.LoadN(off[:], k.lanes)
	perm := hwy.Xor1Indices(k.lanes, bit)

	for base := 0; base < len(arr); base += k.lanes {
		block := arr[base : base+k.lanes]
		v := hwy.LoadN(block, k.lanes)
		partner := hwy.TableLookupLanes(v, perm)
		hwy.Store(hwy.MulAdd(vOff, partner, hwy.Mul(vDiag, v)), block)
	}
}

// blockPairs returns the pair masks of wire over whole registers. Treating
// each register as one amplitude of an (n - log2(lanes))-qubit state leaves
// the wire number unchanged, so the masks come straight from Parity1.
func (k Kernel[C]) blockPairs(n, wire int) (bitindex.Masks1, int) {
	blocks := n - k.MinQubits()
	return bitindex.Parity1(blocks, wire), bitindex.GroupCount(blocks, 1)
}

// singleExternal handles a pair split across two registers.
func (k Kernel[C]) singleExternal(arr []C, n, wire int, u [4]C) {
	masks, groups := k.blockPairs(n, wire)
	u00 := hwy.SetN(u[0], k.lanes)
	u01 := hwy.SetN(u[1], k.lanes)
	u10 := hwy.SetN(u[2], k.lanes)
	u11 := hwy.SetN(u[3], k.lanes)

	for g := range groups {
		b0, b1 := masks.Pair(g)
		lo := arr[b0*k.lanes : (b0+1)*k.lanes]
		hi := arr[b1*k.lanes : (b1+1)*k.lanes]
		v0 := hwy.LoadN(lo, k.lanes)
		v1 := hwy.LoadN(hi, k.lanes)
		hwy.Store(hwy.MulAdd(u01, v1, hwy.Mul(u00, v0)), lo)
		hwy.Store(hwy.MulAdd(u11, v1, hwy.Mul(u10, v0)), hi)
	}
}

// swapExternal exchanges the two registers of every pair.
func (k Kernel[C]) swapExternal(arr []C, n, wire int) {
	masks, groups := k.blockPairs(n, wire)
	for g := range groups {
		b0, b1 := masks.Pair(g)
		lo := arr[b0*k.lanes : (b0+1)*k.lanes]
		hi := arr[b1*k.lanes : (b1+1)*k.lanes]
		v0 := hwy.LoadN(lo, k.lanes)
		hwy.Store(hwy.LoadN(hi, k.lanes), lo)
		hwy.Store(v0, hi)
	}
}

// hadamardExternal writes h(v0+v1) and h(v0-v1) for every pair.
func (k Kernel[C]) hadamardExternal(arr []C, n, wire int, h C) {
	masks, groups := k.blockPairs(n, wire)
	vh := hwy.SetN(h, k.lanes)
	for g := range groups {
		b0, b1 := masks.Pair(g)
		lo := arr[b0*k.lanes : (b0+1)*k.lanes]
		hi := arr[b1*k.lanes : (b1+1)*k.lanes]
		v0 := hwy.LoadN(lo, k.lanes)
		v1 := hwy.LoadN(hi, k.lanes)
		hwy.Store(hwy.Mul(vh, hwy.Add(v0, v1)), lo)
		hwy.Store(hwy.Mul(vh, hwy.Sub(v0, v1)), hi)
	}
}

// scaleBlock multiplies one register by f. A factor of 1 is skipped and -1
// is a negation.
func (k Kernel[C]) scaleBlock(block []C, f C) {
	switch f {
	case 1:
	case -1:
		hwy.Store(hwy.Neg(hwy.LoadN(block, k.lanes)), block)
	default:
		hwy.Store(hwy.Mul(hwy.SetN(f, k.lanes), hwy.LoadN(block, k.lanes)), block)
	}
}

// parityDiagonal multiplies every amplitude by even or odd according to
// the parity of its targeted bits. The lane part of the parity is folded
// into two coefficient vectors; the block part picks one of them. With no
// targeted lane bits the whole register shares one factor.
func (k Kernel[C]) parityDiagonal(arr []C, n int, wires []int, even, odd C) {
	mask := bitindex.WiresParity(n, wires)
	laneMask := mask & (k.lanes - 1)
	blockMask := mask &^ (k.lanes - 1)

	if laneMask == 0 {
		for base := 0; base < len(arr); base += k.lanes {
			f := even
			if bits.OnesCount(uint(base&blockMask))&1 == 1 {
				f = odd
			}
			k.scaleBlock(arr[base:base+k.lanes], f)
		}
		return
	}

	var evenLanes, oddLanes [hwy.MaxVecLanes]C
	for j := 0; j < k.lanes; j++ {
		if bits.OnesCount(uint(j&laneMask))&1 == 0 {
			evenLanes[j], oddLanes[j] = even, odd
		} else {
			evenLanes[j], oddLanes[j] = odd, even
		}
	}
	vEven := hwy.LoadN(evenLanes[:], k.lanes)
	vOdd := hwy.LoadN(oddLanes[:], k.lanes)

	for base := 0; base < len(arr); base += k.lanes {
		coeff := vEven
		if bits.OnesCount(uint(base&blockMask))&1 == 1 {
			coeff = vOdd
		}
		block := arr[base : base+k.lanes]
		hwy.Store(hwy.Mul(coeff, hwy.LoadN(block, k.lanes)), block)
	}
}

// allOnesDiagonal multiplies by phase every amplitude whose targeted bits
// are all set. Blocks missing one of the external bits are left alone.
func (k Kernel[C]) allOnesDiagonal(arr []C, n int, wires []int, phase C) {
	mask := bitindex.WiresParity(n, wires)
	laneMask := mask & (k.lanes - 1)
	blockMask := mask &^ (k.lanes - 1)

	var factors [hwy.MaxVecLanes]C
	for j := 0; j < k.lanes; j++ {
		factors[j] = 1
		if j&laneMask == laneMask {
			factors[j] = phase
		}
	}
	coeff := hwy.LoadN(factors[:], k.lanes)

	for base := 0; base < len(arr); base += k.lanes {
		if base&blockMask != blockMask {
			continue
		}
		block := arr[base : base+k.lanes]
		if laneMask == 0 {
			k.scaleBlock(block, phase)
			continue
		}
		hwy.Store(hwy.Mul(coeff, hwy.LoadN(block, k.lanes)), block)
	}
}

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

// Package parallel runs the LM kernels across a worker pool.
//
// The groups a gate visits are disjoint, so the group domain is split into
// contiguous ranges and each range is handed to lm's Range functions. The
// pool's barrier is the only synchronization.
package parallel

import (
	"fmt"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/bitindex"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
	"github.com/ajroetker/qhwy/hwy/contrib/lm"
	"github.com/ajroetker/qhwy/hwy/contrib/workerpool"
)

// MinParallelQubits is the default qubit count below which calls run on
// the caller's goroutine.
const MinParallelQubits = 14

// Kernel is the multi-threaded LM kernel.
type Kernel[C hwy.Complexes] struct {
	pool      workerpool.Executor
	minQubits int
	lm        lm.Kernel[C]
}

var _ kernel.Kernel[complex64] = (*Kernel[complex64])(nil)

// Option configures a Kernel.
type Option func(*options)

type options struct {
	minQubits int
}

// WithMinQubits sets the qubit count from which work is split across the
// pool.
func WithMinQubits(n int) Option {
	return func(o *options) { o.minQubits = n }
}

// New returns a parallel kernel running on pool. A nil pool runs every call
// inline.
func New[C hwy.Complexes](pool workerpool.Executor, opts ...Option) *Kernel[C] {
	o := options{minQubits: MinParallelQubits}
	for _, opt := range opts {
		opt(&o)
	}
	return &Kernel[C]{pool: pool, minQubits: o.minQubits, lm: lm.New[C]()}
}

// Descriptor describes the kernel. It implements the same catalog as LM.
func (k *Kernel[C]) Descriptor() kernel.Descriptor {
	d := k.lm.Descriptor()
	d.ID = kernel.ParallelLM
	d.Name = "ParallelLM"
	return d
}

// split runs fn over [0, groups), across the pool when n is large enough.
func (k *Kernel[C]) split(n, groups int, fn func(lo, hi int)) {
	if k.pool == nil || n < k.minQubits || k.pool.NumWorkers() < 2 {
		fn(0, groups)
		return
	}
	k.pool.ParallelFor(groups, fn)
}

// ApplyGate applies op to arr in place.
func (k *Kernel[C]) ApplyGate(op gates.GateOperation, arr []C, n int, wires []int, inverse bool, params ...float64) {
	lm.CheckGate(op, len(arr), n, wires, params)
	k.split(n, lm.GateGroups(op, n, wires), func(lo, hi int) {
		k.lm.ApplyGateRange(op, arr, n, wires, inverse, params, lo, hi)
	})
}

// ApplyGenerator replaces arr with G|arr> and returns the scale factor.
func (k *Kernel[C]) ApplyGenerator(op gates.GeneratorOperation, arr []C, n int, wires []int, adjoint bool) float64 {
	bitindex.ValidateState(len(arr), n)
	bitindex.Validate(n, wires, op.Wires())
	scale := k.lm.ApplyGeneratorRange(op, arr, n, wires, 0, 0)
	k.split(n, lm.GeneratorGroups(op, n, wires), func(lo, hi int) {
		k.lm.ApplyGeneratorRange(op, arr, n, wires, lo, hi)
	})
	return scale
}

// ApplyMatrix applies a dense matrix to wires. The conjugate transpose of
// an inverse is formed once before the split.
func (k *Kernel[C]) ApplyMatrix(op gates.MatrixOperation, arr []C, n int, matrix []C, wires []int, inverse bool) {
	bitindex.ValidateState(len(arr), n)
	bitindex.Validate(n, wires, op.Wires())
	dim := 1 << len(wires)
	if len(matrix) != dim*dim {
		panic(fmt.Sprintf("parallel: matrix has %d entries, want %d", len(matrix), dim*dim))
	}
	if inverse {
		matrix = gates.ConjugateTranspose(matrix, dim)
	}
	k.split(n, lm.MatrixGroups(n, wires), func(lo, hi int) {
		k.lm.ApplyMatrixRange(op, arr, n, matrix, wires, false, lo, hi)
	})
}

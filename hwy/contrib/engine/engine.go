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

// Package engine applies operations to state vectors through the kernel
// registry.
//
// Each call classifies the buffer's alignment, resolves the kernel for the
// operation at the buffer's qubit count and the engine's threading mode,
// and runs it:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//	e := engine.NewDefault[complex128](pool, engine.WithThreading(kernelmap.MultiThread))
//	state := e.NewState(20)
//	if err := e.ApplyGate(gates.Hadamard, state, []int{0}, false); err != nil {
//		// ...
//	}
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/viterin/vek"
	"github.com/viterin/vek/vek32"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/bitindex"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
	"github.com/ajroetker/qhwy/hwy/contrib/kernelmap"
	"github.com/ajroetker/qhwy/hwy/contrib/lanes"
	"github.com/ajroetker/qhwy/hwy/contrib/lm"
	"github.com/ajroetker/qhwy/hwy/contrib/parallel"
	"github.com/ajroetker/qhwy/hwy/contrib/pi"
	"github.com/ajroetker/qhwy/hwy/contrib/workerpool"
	"github.com/ajroetker/qhwy/internal/mem"
)

// ErrInvalidState is returned for a buffer whose length is not a power of
// two.
var ErrInvalidState = errors.New("engine: state length is not a power of two")

// Engine dispatches operations for one amplitude precision.
type Engine[C hwy.Complexes] struct {
	registry  *kernelmap.Registry
	kernels   *kernel.Set[C]
	threading kernelmap.Threading
	alloc     mem.Allocator[C]
	logger    *slog.Logger
}

type options[C hwy.Complexes] struct {
	threading kernelmap.Threading
	alloc     mem.Allocator[C]
	logger    *slog.Logger
}

// Option configures an Engine.
type Option[C hwy.Complexes] func(*options[C])

// WithThreading sets the threading mode used to resolve kernels.
func WithThreading[C hwy.Complexes](t kernelmap.Threading) Option[C] {
	return func(o *options[C]) { o.threading = t }
}

// WithAllocator sets the allocator NewState uses.
func WithAllocator[C hwy.Complexes](a mem.Allocator[C]) Option[C] {
	return func(o *options[C]) { o.alloc = a }
}

// WithLogger sets the logger. Kernel choices are logged at debug level.
func WithLogger[C hwy.Complexes](l *slog.Logger) Option[C] {
	return func(o *options[C]) {
		if l != nil {
			o.logger = l
		}
	}
}

// New returns an engine resolving through registry and running kernels
// from set.
func New[C hwy.Complexes](registry *kernelmap.Registry, set *kernel.Set[C], opts ...Option[C]) *Engine[C] {
	o := options[C]{
		threading: kernelmap.SingleThread,
		alloc:     mem.GoAllocator[C]{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine[C]{
		registry:  registry,
		kernels:   set,
		threading: o.threading,
		alloc:     o.alloc,
		logger:    o.logger,
	}
}

// DefaultKernels returns the kernels this CPU can run: LM, PI and the
// parallel LM on pool always, the vector kernels when the dispatch level
// reaches their width.
func DefaultKernels[C hwy.Complexes](pool workerpool.Executor) *kernel.Set[C] {
	set := kernel.NewSet[C](lm.New[C](), pi.New[C](), parallel.New[C](pool))
	if hwy.HasAVX2() {
		set.Register(lanes.New[C](lanes.Width256))
	}
	if hwy.HasAVX512() {
		set.Register(lanes.New[C](lanes.Width512))
	}
	return set
}

// NewDefault returns an engine over DefaultKernels and the default
// assignments for them.
func NewDefault[C hwy.Complexes](pool workerpool.Executor, opts ...Option[C]) *Engine[C] {
	set := DefaultKernels[C](pool)
	return New(kernelmap.NewDefault(set.Descriptors()), set, opts...)
}

// Registry returns the registry the engine resolves through.
func (e *Engine[C]) Registry() *kernelmap.Registry { return e.registry }

// Kernels returns the engine's kernel set.
func (e *Engine[C]) Kernels() *kernel.Set[C] { return e.kernels }

// Threading returns the engine's threading mode.
func (e *Engine[C]) Threading() kernelmap.Threading { return e.threading }

// NewState allocates |0...0> on n qubits, aligned for every kernel in the
// set.
func (e *Engine[C]) NewState(n int) []C {
	if n < 1 {
		panic(fmt.Sprintf("engine: need at least one qubit, got %d", n))
	}
	state := e.alloc.Allocate(e.kernels.CommonAlignment(), 1<<n)
	state[0] = 1
	return state
}

// MemoryModel classifies the alignment of arr.
func MemoryModel[C hwy.Complexes](arr []C) kernelmap.MemoryModel {
	return kernelmap.MemoryModelFor(mem.Alignment(arr))
}

func qubits(length int) (int, error) {
	if !bitindex.IsPowerOfTwo(length) || length < 2 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidState, length)
	}
	return bitindex.Log2(length), nil
}

func (e *Engine[C]) kernel(id kernel.ID, op fmt.Stringer, n int, mm kernelmap.MemoryModel) (kernel.Kernel[C], error) {
	k, err := e.kernels.Get(id)
	if err != nil {
		return nil, fmt.Errorf("engine: %s resolved to %s: %w", op, id, err)
	}
	e.logger.Debug("kernel selected", "op", op.String(), "qubits", n, "memory", mm.String(), "kernel", id.String())
	return k, nil
}

// GateKernel returns the kernel that runs op on arr.
func (e *Engine[C]) GateKernel(op gates.GateOperation, arr []C) (kernel.Kernel[C], error) {
	n, err := qubits(len(arr))
	if err != nil {
		return nil, err
	}
	mm := MemoryModel(arr)
	id, err := e.registry.Gates.Lookup(op, n, e.threading, mm)
	if err != nil {
		return nil, err
	}
	return e.kernel(id, op, n, mm)
}

// ApplyGate applies op to arr in place.
func (e *Engine[C]) ApplyGate(op gates.GateOperation, arr []C, wires []int, inverse bool, params ...float64) error {
	k, err := e.GateKernel(op, arr)
	if err != nil {
		return err
	}
	k.ApplyGate(op, arr, bitindex.Log2(len(arr)), wires, inverse, params...)
	return nil
}

// ApplyGenerator replaces arr with G|arr> and returns the scale factor.
func (e *Engine[C]) ApplyGenerator(op gates.GeneratorOperation, arr []C, wires []int, adjoint bool) (float64, error) {
	n, err := qubits(len(arr))
	if err != nil {
		return 0, err
	}
	mm := MemoryModel(arr)
	id, err := e.registry.Generators.Lookup(op, n, e.threading, mm)
	if err != nil {
		return 0, err
	}
	k, err := e.kernel(id, op, n, mm)
	if err != nil {
		return 0, err
	}
	return k.ApplyGenerator(op, arr, n, wires, adjoint), nil
}

// ApplyMatrix applies a dense row-major matrix to wires. The matrix
// operation is chosen from the wire count.
func (e *Engine[C]) ApplyMatrix(arr []C, matrix []C, wires []int, inverse bool) error {
	n, err := qubits(len(arr))
	if err != nil {
		return err
	}
	op := gates.MultiQubitOp
	switch len(wires) {
	case 1:
		op = gates.SingleQubitOp
	case 2:
		op = gates.TwoQubitOp
	}
	mm := MemoryModel(arr)
	id, err := e.registry.Matrices.Lookup(op, n, e.threading, mm)
	if err != nil {
		return err
	}
	k, err := e.kernel(id, op, n, mm)
	if err != nil {
		return err
	}
	k.ApplyMatrix(op, arr, n, matrix, wires, inverse)
	return nil
}

// Norm returns the squared norm of arr.
func Norm[C hwy.Complexes](arr []C) float64 {
	switch a := any(arr).(type) {
	case []complex128:
		f := mem.Floats64(a)
		if len(f) == 0 {
			return 0
		}
		return vek.Dot(f, f)
	case []complex64:
		f := mem.Floats32(a)
		if len(f) == 0 {
			return 0
		}
		return float64(vek32.Dot(f, f))
	default:
		// Named complex types fall back to a plain loop.
		var sum float64
		for _, v := range arr {
			c := complex128(v)
			sum += real(c)*real(c) + imag(c)*imag(c)
		}
		return sum
	}
}

// Normalize scales arr to unit norm in place. A zero state is left alone.
func Normalize[C hwy.Complexes](arr []C) {
	switch a := any(arr).(type) {
	case []complex128:
		f := mem.Floats64(a)
		if nrm := vek.Norm(f); nrm != 0 {
			vek.DivNumber_Inplace(f, nrm)
		}
	case []complex64:
		f := mem.Floats32(a)
		if nrm := vek32.Norm(f); nrm != 0 {
			vek32.DivNumber_Inplace(f, nrm)
		}
	default:
		nrm := Norm(arr)
		if nrm == 0 {
			return
		}
		scale := C(complex(1/math.Sqrt(nrm), 0))
		for i := range arr {
			arr[i] *= scale
		}
	}
}

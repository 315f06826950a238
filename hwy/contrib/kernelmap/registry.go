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

// Package kernelmap decides which kernel runs each operation.
//
// A decision depends on the qubit count and on a dispatch context: the
// threading mode and the memory model (alignment class) of the buffer. For
// every operation and context the registry keeps a PrioritySet of qubit
// count intervals; resolving scans it from the highest priority down and
// takes the first interval that contains the qubit count. Intervals of
// equal priority must not overlap.
//
// Three broad assignment forms expand over contexts with fixed priorities,
// so narrower assignments win:
//
//	AssignAll           every context              priority 0
//	AssignForMemory     one memory model           priority 1
//	AssignForThreading  one threading mode         priority 2
//	Assign              one context                caller's priority
//
// Resolved maps are cached per (qubit count, context) and the whole cache
// is dropped on every Assign or Remove.
//
// A Registry is an ordinary value: build one with New or NewDefault and
// pass it to whatever dispatches kernels.
package kernelmap

import (
	"io"
	"log/slog"

	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
)

// Registry holds the kernel maps of gates, generators and dense matrices.
type Registry struct {
	Gates      *OperationKernelMap[gates.GateOperation]
	Generators *OperationKernelMap[gates.GeneratorOperation]
	Matrices   *OperationKernelMap[gates.MatrixOperation]

	logger *slog.Logger
}

type options struct {
	logger    *slog.Logger
	cacheSize int
	allowed   map[MemoryModel][]kernel.ID
}

// Option configures a Registry.
type Option func(*options)

// WithLogger sets the logger. Assignments, removals, cache purges and
// resolves are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCacheSize sets how many resolved maps each operation kind keeps.
// Values below 1 keep the default.
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithAllowedKernels replaces the kernels allowed for a memory model.
func WithAllowedKernels(memory MemoryModel, ids ...kernel.ID) Option {
	return func(o *options) {
		o.allowed[memory] = append([]kernel.ID(nil), ids...)
	}
}

// DefaultAllowedKernels returns the kernels each memory model admits: the
// unaligned kernels everywhere, the vector kernels only where the buffer
// meets their alignment.
func DefaultAllowedKernels() map[MemoryModel][]kernel.ID {
	unaligned := []kernel.ID{kernel.LM, kernel.PI, kernel.ParallelLM}
	return map[MemoryModel][]kernel.ID{
		Unaligned:  unaligned,
		Aligned256: append(append([]kernel.ID(nil), unaligned...), kernel.Lanes256),
		Aligned512: append(append([]kernel.ID(nil), unaligned...), kernel.Lanes256, kernel.Lanes512),
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	o := options{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		cacheSize: DefaultCacheSize,
		allowed:   DefaultAllowedKernels(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{
		Gates:      newOperationKernelMap(gates.AllGates(), &o),
		Generators: newOperationKernelMap(gates.AllGenerators(), &o),
		Matrices:   newOperationKernelMap(gates.AllMatrices(), &o),
		logger:     o.logger,
	}
}

// NewDefault returns a registry holding the default assignments for the
// available kernels. It panics if the defaults are inconsistent, which is
// a programming error rather than a runtime condition.
func NewDefault(available []kernel.Descriptor, opts ...Option) *Registry {
	r := New(opts...)
	if err := r.RegisterDefaults(available); err != nil {
		panic(err)
	}
	return r
}

// Resolved is the kernel choice for every operation at one qubit count and
// context.
type Resolved struct {
	Gates      map[gates.GateOperation]kernel.ID
	Generators map[gates.GeneratorOperation]kernel.ID
	Matrices   map[gates.MatrixOperation]kernel.ID
}

// Resolve resolves all three operation kinds.
func (r *Registry) Resolve(n int, threading Threading, memory MemoryModel) (Resolved, error) {
	var (
		res Resolved
		err error
	)
	if res.Gates, err = r.Gates.Resolve(n, threading, memory); err != nil {
		return Resolved{}, err
	}
	if res.Generators, err = r.Generators.Resolve(n, threading, memory); err != nil {
		return Resolved{}, err
	}
	if res.Matrices, err = r.Matrices.Resolve(n, threading, memory); err != nil {
		return Resolved{}, err
	}
	return res, nil
}

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

package kernelmap

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
	"github.com/ajroetker/qhwy/hwy/contrib/parallel"
)

func TestInterval(t *testing.T) {
	assert.True(t, FullDomain().Contains(0))
	assert.True(t, FullDomain().Contains(1<<30))
	assert.False(t, LargerThan(4).Contains(4))
	assert.True(t, LargerThan(4).Contains(5))
	assert.True(t, LessThan(4).Contains(3))
	assert.False(t, LessThan(4).Contains(4))
	assert.True(t, Exactly(7).Contains(7))
	assert.False(t, Exactly(7).Contains(8))

	assert.True(t, Between(0, 5).Disjoint(Between(5, 9)))
	assert.False(t, Between(0, 6).Disjoint(Between(5, 9)))
	assert.False(t, FullDomain().Disjoint(Exactly(3)))
	assert.Equal(t, "[2, inf)", LargerThan(1).String())
	assert.Equal(t, "[0, 4)", LessThan(4).String())

	assert.Panics(t, func() { Between(3, 3) })
	assert.Panics(t, func() { NewInterval(-1, 2) })
}

func TestPrioritySetOrder(t *testing.T) {
	var s PrioritySet
	s.Insert(DispatchElement{Priority: 0, Interval: FullDomain(), Kernel: kernel.LM})
	s.Insert(DispatchElement{Priority: 2, Interval: LargerThan(10), Kernel: kernel.ParallelLM})
	s.Insert(DispatchElement{Priority: 1, Interval: Between(3, 8), Kernel: kernel.PI})
	s.Insert(DispatchElement{Priority: 2, Interval: Exactly(5), Kernel: kernel.Lanes256})

	var prios []uint32
	for _, e := range s.Elements() {
		prios = append(prios, e.Priority)
	}
	assert.Equal(t, []uint32{2, 2, 1, 0}, prios)
	// Equal priorities keep insertion order.
	assert.Equal(t, kernel.ParallelLM, s.Elements()[0].Kernel)

	lookup := func(n int) kernel.ID {
		id, ok := s.Lookup(n)
		require.True(t, ok)
		return id
	}
	assert.Equal(t, kernel.LM, lookup(1))
	assert.Equal(t, kernel.PI, lookup(4))
	assert.Equal(t, kernel.Lanes256, lookup(5))
	assert.Equal(t, kernel.ParallelLM, lookup(11))

	s.RemovePriority(2)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, kernel.PI, lookup(5))
}

// baseRegistry assigns LM to every operation in every context.
func baseRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r := New(opts...)
	for _, op := range gates.AllGates() {
		require.NoError(t, r.Gates.AssignAll(op, FullDomain(), kernel.LM))
	}
	for _, op := range gates.AllGenerators() {
		require.NoError(t, r.Generators.AssignAll(op, FullDomain(), kernel.LM))
	}
	for _, op := range gates.AllMatrices() {
		require.NoError(t, r.Matrices.AssignAll(op, FullDomain(), kernel.LM))
	}
	return r
}

func TestConflictAtEqualPriority(t *testing.T) {
	r := baseRegistry(t)
	err := r.Gates.Assign(gates.RX, SingleThread, Unaligned, 5, Between(2, 10), kernel.PI)
	require.NoError(t, err)

	err = r.Gates.Assign(gates.RX, SingleThread, Unaligned, 5, Between(9, 12), kernel.LM)
	require.ErrorIs(t, err, ErrIntervalConflict)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "RX", conflict.Operation)
	assert.Equal(t, Between(2, 10), conflict.Existing)

	// Adjacent intervals do not overlap.
	require.NoError(t, r.Gates.Assign(gates.RX, SingleThread, Unaligned, 5, Between(10, 12), kernel.LM))
	// Another context is independent.
	require.NoError(t, r.Gates.Assign(gates.RX, MultiThread, Unaligned, 5, Between(9, 12), kernel.LM))

	// A broad form conflicting in any context fails.
	err = r.Gates.AssignAll(gates.RX, Exactly(3), kernel.PI)
	assert.ErrorIs(t, err, ErrIntervalConflict)
}

func TestBroadAssignIsAllOrNothing(t *testing.T) {
	r := baseRegistry(t)
	require.NoError(t, r.Gates.Assign(gates.RX, MultiThread, Unaligned, PriorityAllThreading, Between(0, 10), kernel.LM))
	before := r.Gates.Elements(gates.RX, SingleThread, Unaligned)

	// SingleThread is free, MultiThread conflicts: neither may change.
	err := r.Gates.AssignForMemory(gates.RX, Unaligned, FullDomain(), kernel.PI)
	require.ErrorIs(t, err, ErrIntervalConflict)
	assert.Equal(t, before, r.Gates.Elements(gates.RX, SingleThread, Unaligned))
	id, err := r.Gates.Lookup(gates.RX, 12, SingleThread, Unaligned)
	require.NoError(t, err)
	assert.Equal(t, kernel.LM, id)

	// A kernel refused by one memory model blocks the whole broad form.
	err = r.Gates.AssignForThreading(gates.PauliX, SingleThread, FullDomain(), kernel.Lanes512)
	require.ErrorIs(t, err, ErrKernelNotAllowed)
	assert.Len(t, r.Gates.Elements(gates.PauliX, SingleThread, Aligned512), 1)
}

func TestHigherPriorityWinsInOverlap(t *testing.T) {
	r := baseRegistry(t)
	require.NoError(t, r.Gates.Assign(gates.CNOT, SingleThread, Aligned256, 4, Between(4, 8), kernel.PI))

	for n, want := range map[int]kernel.ID{3: kernel.LM, 4: kernel.PI, 7: kernel.PI, 8: kernel.LM} {
		id, err := r.Gates.Lookup(gates.CNOT, n, SingleThread, Aligned256)
		require.NoError(t, err)
		assert.Equal(t, want, id, "n=%d", n)
	}
	id, err := r.Gates.Lookup(gates.CNOT, 5, MultiThread, Aligned256)
	require.NoError(t, err)
	assert.Equal(t, kernel.LM, id)
}

func TestBroadFormPriorities(t *testing.T) {
	r := baseRegistry(t)
	require.NoError(t, r.Gates.AssignForMemory(gates.Hadamard, Aligned512, FullDomain(), kernel.Lanes512))
	require.NoError(t, r.Gates.AssignForThreading(gates.Hadamard, MultiThread, LargerThan(9), kernel.ParallelLM))

	elems := r.Gates.Elements(gates.Hadamard, MultiThread, Aligned512)
	require.Len(t, elems, 3)
	assert.Equal(t, PriorityAllMemory, elems[0].Priority)
	assert.Equal(t, PriorityAllThreading, elems[1].Priority)
	assert.Equal(t, PriorityAll, elems[2].Priority)

	check := func(n int, th Threading, mm MemoryModel, want kernel.ID) {
		t.Helper()
		id, err := r.Gates.Lookup(gates.Hadamard, n, th, mm)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	check(12, MultiThread, Aligned512, kernel.ParallelLM)
	check(5, MultiThread, Aligned512, kernel.Lanes512)
	check(12, SingleThread, Aligned512, kernel.Lanes512)
	check(12, SingleThread, Aligned256, kernel.LM)
	check(12, MultiThread, Unaligned, kernel.ParallelLM)
}

func TestKernelNotAllowed(t *testing.T) {
	r := New()
	err := r.Gates.Assign(gates.PauliX, SingleThread, Unaligned, 0, FullDomain(), kernel.Lanes256)
	assert.ErrorIs(t, err, ErrKernelNotAllowed)
	err = r.Gates.AssignForMemory(gates.PauliX, Aligned256, FullDomain(), kernel.Lanes512)
	assert.ErrorIs(t, err, ErrKernelNotAllowed)
	assert.True(t, r.Gates.Allowed(Aligned512, kernel.Lanes512))

	r = New(WithAllowedKernels(Unaligned, kernel.Lanes256))
	assert.NoError(t, r.Gates.Assign(gates.PauliX, SingleThread, Unaligned, 0, FullDomain(), kernel.Lanes256))
}

func TestRemove(t *testing.T) {
	r := baseRegistry(t)
	err := r.Gates.Remove(gates.RX, SingleThread, Unaligned, 3)
	require.NoError(t, err, "removing an absent priority of a known key is a no-op")

	require.NoError(t, r.Gates.Remove(gates.RX, SingleThread, Unaligned, PriorityAll))
	_, err = r.Gates.Resolve(4, SingleThread, Unaligned)
	assert.ErrorIs(t, err, ErrNoKernel)

	fresh := New()
	err = fresh.Generators.Remove(gates.GeneratorRX, MultiThread, Aligned256, 0)
	assert.ErrorIs(t, err, ErrUnknownDispatchKey)
}

func TestResolveMissingOperation(t *testing.T) {
	r := New()
	require.NoError(t, r.Matrices.AssignAll(gates.SingleQubitOp, FullDomain(), kernel.LM))
	_, err := r.Matrices.Resolve(3, SingleThread, Unaligned)
	assert.ErrorIs(t, err, ErrNoKernel)

	require.NoError(t, r.Matrices.AssignAll(gates.TwoQubitOp, FullDomain(), kernel.LM))
	require.NoError(t, r.Matrices.AssignAll(gates.MultiQubitOp, LessThan(10), kernel.PI))
	_, err = r.Matrices.Resolve(12, SingleThread, Unaligned)
	assert.ErrorIs(t, err, ErrNoKernel)
	m, err := r.Matrices.Resolve(9, SingleThread, Unaligned)
	require.NoError(t, err)
	assert.Equal(t, kernel.PI, m[gates.MultiQubitOp])
}

func TestResolveCache(t *testing.T) {
	r := baseRegistry(t, WithCacheSize(4))
	for n := 1; n <= 6; n++ {
		_, err := r.Gates.Resolve(n, SingleThread, Unaligned)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, r.Gates.CacheLen())

	// Resolve hands out a copy; the cache is unaffected.
	m, err := r.Gates.Resolve(6, SingleThread, Unaligned)
	require.NoError(t, err)
	m[gates.RX] = kernel.PI
	id, err := r.Gates.Lookup(gates.RX, 6, SingleThread, Unaligned)
	require.NoError(t, err)
	assert.Equal(t, kernel.LM, id)

	// Any mutation purges the cache and later resolves see it.
	require.NoError(t, r.Gates.Assign(gates.RX, SingleThread, Unaligned, 9, Exactly(6), kernel.PI))
	assert.Zero(t, r.Gates.CacheLen())
	id, err = r.Gates.Lookup(gates.RX, 6, SingleThread, Unaligned)
	require.NoError(t, err)
	assert.Equal(t, kernel.PI, id)

	require.NoError(t, r.Gates.Remove(gates.RX, SingleThread, Unaligned, 9))
	assert.Zero(t, r.Gates.CacheLen())
	id, err = r.Gates.Lookup(gates.RX, 6, SingleThread, Unaligned)
	require.NoError(t, err)
	assert.Equal(t, kernel.LM, id)
}

func TestCacheEvictsOldestFirst(t *testing.T) {
	r := baseRegistry(t, WithCacheSize(2))
	_, _ = r.Gates.Resolve(1, SingleThread, Unaligned)
	_, _ = r.Gates.Resolve(2, SingleThread, Unaligned)
	// A hit on the oldest entry does not refresh it.
	_, _ = r.Gates.Resolve(1, SingleThread, Unaligned)
	_, _ = r.Gates.Resolve(3, SingleThread, Unaligned)

	_, ok := r.Gates.cache.Peek(cacheKey{1, Context{SingleThread, Unaligned}})
	assert.False(t, ok)
	_, ok = r.Gates.cache.Peek(cacheKey{2, Context{SingleThread, Unaligned}})
	assert.True(t, ok)
}

func TestConcurrentResolve(t *testing.T) {
	r := baseRegistry(t)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			for n := 1; n < 40; n++ {
				if _, err := r.Resolve(n, Threading(i%2), MemoryModel(i%3)); err != nil {
					t.Error(err)
					return
				}
			}
		})
	}
	wg.Go(func() {
		for n := 20; n < 30; n++ {
			_ = r.Gates.Assign(gates.T, SingleThread, Unaligned, 7, Exactly(n), kernel.PI)
		}
	})
	wg.Wait()
}

func TestContextParsing(t *testing.T) {
	th, err := ParseThreading("multi")
	require.NoError(t, err)
	assert.Equal(t, MultiThread, th)
	th, err = ParseThreading("SingleThread")
	require.NoError(t, err)
	assert.Equal(t, SingleThread, th)
	_, err = ParseThreading("many")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	mm, err := ParseMemoryModel("aligned512")
	require.NoError(t, err)
	assert.Equal(t, Aligned512, mm)
	assert.Equal(t, 64, mm.Alignment())

	assert.Equal(t, Aligned512, MemoryModelFor(128))
	assert.Equal(t, Aligned256, MemoryModelFor(32))
	assert.Equal(t, Unaligned, MemoryModelFor(16))
}

func descriptors(ids ...kernel.ID) []kernel.Descriptor {
	lanes := []gates.GateOperation{gates.PauliX, gates.Hadamard, gates.RZ}
	var out []kernel.Descriptor
	for _, id := range ids {
		d := kernel.Descriptor{ID: id, Name: id.String()}
		if id == kernel.Lanes256 || id == kernel.Lanes512 {
			d.Gates = lanes
		}
		out = append(out, d)
	}
	return out
}

func TestDefaults(t *testing.T) {
	r := NewDefault(descriptors(kernel.LM, kernel.PI, kernel.ParallelLM, kernel.Lanes256, kernel.Lanes512))

	res, err := r.Resolve(4, SingleThread, Unaligned)
	require.NoError(t, err)
	assert.Equal(t, kernel.LM, res.Gates[gates.RX])
	assert.Equal(t, kernel.PI, res.Gates[gates.Toffoli])
	assert.Equal(t, kernel.PI, res.Generators[gates.GeneratorDoubleExcitation])
	assert.Equal(t, kernel.PI, res.Matrices[gates.MultiQubitOp])
	assert.Equal(t, kernel.LM, res.Matrices[gates.TwoQubitOp])

	res, err = r.Resolve(parallel.MinParallelQubits, MultiThread, Unaligned)
	require.NoError(t, err)
	assert.Equal(t, kernel.ParallelLM, res.Gates[gates.RX])
	assert.Equal(t, kernel.ParallelLM, res.Generators[gates.GeneratorRX])
	assert.Equal(t, kernel.ParallelLM, res.Matrices[gates.SingleQubitOp])

	// Vector kernels are allowed on aligned buffers but never assigned.
	for _, mm := range []MemoryModel{Aligned256, Aligned512} {
		res, err = r.Resolve(6, SingleThread, mm)
		require.NoError(t, err)
		assert.Equal(t, kernel.LM, res.Gates[gates.Hadamard], mm.String())
		assert.Equal(t, kernel.LM, res.Gates[gates.RZ], mm.String())
	}
	assert.True(t, r.Gates.Allowed(Aligned512, kernel.Lanes512))
	require.NoError(t, r.Gates.AssignForMemory(gates.RZ, Aligned512, FullDomain(), kernel.Lanes512))
	res, err = r.Resolve(6, SingleThread, Aligned512)
	require.NoError(t, err)
	assert.Equal(t, kernel.Lanes512, res.Gates[gates.RZ])
}

func TestDefaultsWithoutOptionalKernels(t *testing.T) {
	r := NewDefault(descriptors(kernel.LM, kernel.Lanes256))
	res, err := r.Resolve(20, MultiThread, Aligned512)
	require.NoError(t, err)
	assert.Equal(t, kernel.LM, res.Gates[gates.Toffoli])
	assert.Equal(t, kernel.LM, res.Gates[gates.PauliX])
	assert.Equal(t, kernel.LM, res.Generators[gates.GeneratorRX])

	assert.Panics(t, func() { NewDefault(descriptors(kernel.PI)) })
	err = New().RegisterDefaults(nil)
	assert.ErrorIs(t, err, kernel.ErrUnknownKernel)
}

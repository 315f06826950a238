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
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
)

// Priorities of the broad assignment forms. An explicit Assign should use a
// higher value so it wins over all of them.
const (
	PriorityAll          uint32 = 0
	PriorityAllThreading uint32 = 1
	PriorityAllMemory    uint32 = 2
	PriorityExplicit     uint32 = 3
)

// DefaultCacheSize is the number of resolved maps kept per operation kind.
const DefaultCacheSize = 16

// Context is the dispatch context of a resolve.
type Context struct {
	Threading Threading
	Memory    MemoryModel
}

type dispatchKey[O gates.Operation] struct {
	op  O
	ctx Context
}

type cacheKey struct {
	qubits int
	ctx    Context
}

// OperationKernelMap assigns kernels to the operations of one kind for
// every dispatch context and qubit count. It is safe for concurrent use.
type OperationKernelMap[O gates.Operation] struct {
	mu      sync.Mutex
	ops     []O
	sets    map[dispatchKey[O]]*PrioritySet
	allowed map[MemoryModel][]kernel.ID
	// Resolved maps, evicted oldest first: lookups use Peek, which leaves
	// the eviction order untouched.
	cache  *simplelru.LRU[cacheKey, map[O]kernel.ID]
	logger *slog.Logger
}

func newOperationKernelMap[O gates.Operation](ops []O, o *options) *OperationKernelMap[O] {
	cache, err := simplelru.NewLRU[cacheKey, map[O]kernel.ID](o.cacheSize, nil)
	if err != nil {
		panic(fmt.Sprintf("kernelmap: %v", err))
	}
	return &OperationKernelMap[O]{
		ops:     ops,
		sets:    make(map[dispatchKey[O]]*PrioritySet),
		allowed: o.allowed,
		cache:   cache,
		logger:  o.logger,
	}
}

// Operations returns the operations every resolved map covers.
func (m *OperationKernelMap[O]) Operations() []O { return slices.Clone(m.ops) }

// Allowed reports whether id may serve buffers of the memory model.
func (m *OperationKernelMap[O]) Allowed(memory MemoryModel, id kernel.ID) bool {
	return slices.Contains(m.allowed[memory], id)
}

// Assign registers kernel for op on qubit counts in iv, in a single
// context and at the given priority.
func (m *OperationKernelMap[O]) Assign(op O, threading Threading, memory MemoryModel, priority uint32, iv Interval, id kernel.ID) error {
	return m.assignEach(op, []Context{{threading, memory}}, priority, iv, id)
}

// checkLocked reports why id cannot take iv at priority in ctx, if it
// cannot.
func (m *OperationKernelMap[O]) checkLocked(op O, ctx Context, priority uint32, iv Interval, id kernel.ID) error {
	if !slices.Contains(m.allowed[ctx.Memory], id) {
		return fmt.Errorf("%w: %s for %s on %s", ErrKernelNotAllowed, id, op, ctx.Memory)
	}
	set := m.sets[dispatchKey[O]{op, ctx}]
	if set == nil {
		return nil
	}
	if existing, ok := set.Conflict(priority, iv); ok {
		return &ConflictError{
			Operation: op.String(),
			Threading: ctx.Threading,
			Memory:    ctx.Memory,
			Priority:  priority,
			Interval:  iv,
			Existing:  existing.Interval,
		}
	}
	return nil
}

func (m *OperationKernelMap[O]) insertLocked(op O, ctx Context, priority uint32, iv Interval, id kernel.ID) {
	key := dispatchKey[O]{op, ctx}
	set := m.sets[key]
	if set == nil {
		set = &PrioritySet{}
		m.sets[key] = set
	}
	set.Insert(DispatchElement{Priority: priority, Interval: iv, Kernel: id})
	m.logger.Debug("kernel assigned",
		"op", op.String(), "threading", ctx.Threading.String(), "memory", ctx.Memory.String(),
		"priority", priority, "interval", iv.String(), "kernel", id.String())
}

// assignEach assigns in every context or in none: all contexts are checked
// before the first insert.
func (m *OperationKernelMap[O]) assignEach(op O, ctxs []Context, priority uint32, iv Interval, id kernel.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ctx := range ctxs {
		if err := m.checkLocked(op, ctx, priority, iv, id); err != nil {
			return err
		}
	}
	m.purgeLocked()
	for _, ctx := range ctxs {
		m.insertLocked(op, ctx, priority, iv, id)
	}
	return nil
}

// AssignForMemory registers kernel for op under every threading mode of one
// memory model, at PriorityAllThreading.
func (m *OperationKernelMap[O]) AssignForMemory(op O, memory MemoryModel, iv Interval, id kernel.ID) error {
	var ctxs []Context
	for _, t := range AllThreading() {
		ctxs = append(ctxs, Context{t, memory})
	}
	return m.assignEach(op, ctxs, PriorityAllThreading, iv, id)
}

// AssignForThreading registers kernel for op under every memory model of
// one threading mode, at PriorityAllMemory.
func (m *OperationKernelMap[O]) AssignForThreading(op O, threading Threading, iv Interval, id kernel.ID) error {
	var ctxs []Context
	for _, mm := range AllMemoryModels() {
		ctxs = append(ctxs, Context{threading, mm})
	}
	return m.assignEach(op, ctxs, PriorityAllMemory, iv, id)
}

// AssignAll registers kernel for op in every context, at PriorityAll.
func (m *OperationKernelMap[O]) AssignAll(op O, iv Interval, id kernel.ID) error {
	var ctxs []Context
	for _, t := range AllThreading() {
		for _, mm := range AllMemoryModels() {
			ctxs = append(ctxs, Context{t, mm})
		}
	}
	return m.assignEach(op, ctxs, PriorityAll, iv, id)
}

// Remove clears every interval of the given priority for op in one
// context.
func (m *OperationKernelMap[O]) Remove(op O, threading Threading, memory MemoryModel, priority uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[dispatchKey[O]{op, Context{threading, memory}}]
	if !ok {
		return fmt.Errorf("%w: %s (%s, %s)", ErrUnknownDispatchKey, op, threading, memory)
	}
	set.RemovePriority(priority)
	m.purgeLocked()
	m.logger.Debug("kernel removed",
		"op", op.String(), "threading", threading.String(), "memory", memory.String(), "priority", priority)
	return nil
}

// stageLocked returns a private copy of the assignments to apply a batch
// of changes to. Nothing else sees the copy until commitLocked.
func (m *OperationKernelMap[O]) stageLocked() *OperationKernelMap[O] {
	sets := make(map[dispatchKey[O]]*PrioritySet, len(m.sets))
	for key, set := range m.sets {
		sets[key] = set.Clone()
	}
	cache, err := simplelru.NewLRU[cacheKey, map[O]kernel.ID](1, nil)
	if err != nil {
		panic(fmt.Sprintf("kernelmap: %v", err))
	}
	return &OperationKernelMap[O]{
		ops:     m.ops,
		sets:    sets,
		allowed: m.allowed,
		cache:   cache,
		logger:  m.logger,
	}
}

// commitLocked adopts the assignments of a staged copy.
func (m *OperationKernelMap[O]) commitLocked(staged *OperationKernelMap[O]) {
	m.sets = staged.sets
	m.purgeLocked()
}

func (m *OperationKernelMap[O]) purgeLocked() {
	if n := m.cache.Len(); n > 0 {
		m.cache.Purge()
		m.logger.Debug("resolve cache purged", "entries", n)
	}
}

// Elements returns the dispatch elements of op in one context, in lookup
// order.
func (m *OperationKernelMap[O]) Elements(op O, threading Threading, memory MemoryModel) []DispatchElement {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[dispatchKey[O]{op, Context{threading, memory}}]
	if !ok {
		return nil
	}
	return set.Elements()
}

// resolveLocked returns the cached map for the key, building it on a miss.
// The returned map is shared with the cache and must not be modified.
func (m *OperationKernelMap[O]) resolveLocked(n int, ctx Context) (map[O]kernel.ID, error) {
	key := cacheKey{n, ctx}
	if resolved, ok := m.cache.Peek(key); ok {
		return resolved, nil
	}
	resolved := make(map[O]kernel.ID, len(m.ops))
	for _, op := range m.ops {
		set, ok := m.sets[dispatchKey[O]{op, ctx}]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no assignment for (%s, %s)", ErrNoKernel, op, ctx.Threading, ctx.Memory)
		}
		id, ok := set.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("%w: %s on %d qubits (%s, %s)", ErrNoKernel, op, n, ctx.Threading, ctx.Memory)
		}
		resolved[op] = id
	}
	m.cache.Add(key, resolved)
	m.logger.Debug("kernel map resolved",
		"qubits", n, "threading", ctx.Threading.String(), "memory", ctx.Memory.String())
	return resolved, nil
}

// Resolve returns the kernel of every operation for n qubits in the given
// context. The result is the caller's to modify.
func (m *OperationKernelMap[O]) Resolve(n int, threading Threading, memory MemoryModel) (map[O]kernel.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resolved, err := m.resolveLocked(n, Context{threading, memory})
	if err != nil {
		return nil, err
	}
	return maps.Clone(resolved), nil
}

// Lookup returns the kernel of a single operation. It shares the resolve
// cache and copies nothing.
func (m *OperationKernelMap[O]) Lookup(op O, n int, threading Threading, memory MemoryModel) (kernel.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resolved, err := m.resolveLocked(n, Context{threading, memory})
	if err != nil {
		return kernel.None, err
	}
	return resolved[op], nil
}

// CacheLen returns the number of resolved maps currently cached.
func (m *OperationKernelMap[O]) CacheLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.Len()
}

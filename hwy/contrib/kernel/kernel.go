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

// Package kernel defines the capability interface every kernel family
// implements and a runtime set of registered kernels.
//
// Kernels are stateless with respect to the state vector: everything a call
// needs is passed as arguments and the only effect is the in-place update of
// the caller's buffer.
package kernel

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
)

// ErrUnknownKernel is returned when a kernel ID or name is not known.
var ErrUnknownKernel = errors.New("kernel: unknown kernel")

// ID identifies a kernel family.
type ID uint8

const (
	None ID = iota
	LM
	PI
	ParallelLM
	Lanes256
	Lanes512
)

var idNames = [...]string{
	None:       "None",
	LM:         "LM",
	PI:         "PI",
	ParallelLM: "ParallelLM",
	Lanes256:   "Lanes256",
	Lanes512:   "Lanes512",
}

func (id ID) String() string {
	if int(id) < len(idNames) {
		return idNames[id]
	}
	return fmt.Sprintf("ID(%d)", uint8(id))
}

// ParseID returns the kernel ID with the given name.
func ParseID(name string) (ID, error) {
	for i, s := range idNames {
		if i != int(None) && s == name {
			return ID(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownKernel, name)
}

// Descriptor describes what a kernel implements and the buffer alignment
// it needs.
type Descriptor struct {
	ID         ID
	Name       string
	Alignment  int
	Gates      []gates.GateOperation
	Generators []gates.GeneratorOperation
	Matrices   []gates.MatrixOperation
}

// ImplementsGate reports whether the kernel implements op.
func (d Descriptor) ImplementsGate(op gates.GateOperation) bool {
	return slices.Contains(d.Gates, op)
}

// ImplementsGenerator reports whether the kernel implements op.
func (d Descriptor) ImplementsGenerator(op gates.GeneratorOperation) bool {
	return slices.Contains(d.Generators, op)
}

// ImplementsMatrix reports whether the kernel implements op.
func (d Descriptor) ImplementsMatrix(op gates.MatrixOperation) bool {
	return slices.Contains(d.Matrices, op)
}

// Kernel is the capability interface of a kernel family.
//
// ApplyGate and ApplyMatrix update arr in place. ApplyGenerator replaces
// arr with G|arr> and returns the real factor that completes the
// derivative of the gate. All three panic on violated preconditions such
// as a wrong wire count or a buffer that is not 2^n amplitudes.
type Kernel[C hwy.Complexes] interface {
	Descriptor() Descriptor
	ApplyGate(op gates.GateOperation, arr []C, n int, wires []int, inverse bool, params ...float64)
	ApplyGenerator(op gates.GeneratorOperation, arr []C, n int, wires []int, adjoint bool) float64
	ApplyMatrix(op gates.MatrixOperation, arr []C, n int, matrix []C, wires []int, inverse bool)
}

// Set is a runtime registry of kernel implementations for one precision.
// It is safe for concurrent use.
type Set[C hwy.Complexes] struct {
	mu      sync.RWMutex
	kernels map[ID]Kernel[C]
}

// NewSet returns a set holding kernels.
func NewSet[C hwy.Complexes](kernels ...Kernel[C]) *Set[C] {
	s := &Set[C]{kernels: make(map[ID]Kernel[C], len(kernels))}
	for _, k := range kernels {
		s.Register(k)
	}
	return s
}

// Register adds k, replacing any kernel with the same ID.
func (s *Set[C]) Register(k Kernel[C]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kernels[k.Descriptor().ID] = k
}

// Get returns the kernel with the given ID.
func (s *Set[C]) Get(id ID) (Kernel[C], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.kernels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not registered", ErrUnknownKernel, id)
	}
	return k, nil
}

// MustGet is like Get but panics if the kernel is missing.
func (s *Set[C]) MustGet(id ID) Kernel[C] {
	k, err := s.Get(id)
	if err != nil {
		panic(err)
	}
	return k
}

// IDs returns the registered kernel IDs in ascending order.
func (s *Set[C]) IDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]ID, 0, len(s.kernels))
	for id := range s.kernels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Descriptors returns the descriptors of the registered kernels in ID
// order.
func (s *Set[C]) Descriptors() []Descriptor {
	ids := s.IDs()
	out := make([]Descriptor, len(ids))
	for i, id := range ids {
		out[i] = s.MustGet(id).Descriptor()
	}
	return out
}

// CommonAlignment returns the largest alignment any registered kernel
// requires, so one buffer can serve all of them.
func (s *Set[C]) CommonAlignment() int {
	align := 1
	for _, d := range s.Descriptors() {
		align = max(align, d.Alignment)
	}
	return align
}

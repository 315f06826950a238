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
	"slices"

	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
)

// DispatchElement assigns a kernel to an interval of qubit counts.
type DispatchElement struct {
	Priority uint32
	Interval Interval
	Kernel   kernel.ID
}

// PrioritySet holds the dispatch elements of one operation and context,
// ordered by descending priority. Elements of equal priority keep their
// insertion order and never overlap.
type PrioritySet struct {
	elems []DispatchElement
}

// Conflict returns an element of the given priority overlapping iv.
func (s *PrioritySet) Conflict(priority uint32, iv Interval) (DispatchElement, bool) {
	for _, e := range s.elems {
		if e.Priority == priority && !e.Interval.Disjoint(iv) {
			return e, true
		}
	}
	return DispatchElement{}, false
}

// Insert adds e after every element of higher or equal priority. It does
// not check for conflicts.
func (s *PrioritySet) Insert(e DispatchElement) {
	i, _ := slices.BinarySearchFunc(s.elems, e.Priority, func(x DispatchElement, p uint32) int {
		// Descending order; equal priorities sort before the new element.
		if x.Priority >= p {
			return -1
		}
		return 1
	})
	s.elems = slices.Insert(s.elems, i, e)
}

// RemovePriority drops every element of the given priority.
func (s *PrioritySet) RemovePriority(priority uint32) {
	s.elems = slices.DeleteFunc(s.elems, func(e DispatchElement) bool {
		return e.Priority == priority
	})
}

// Lookup returns the kernel of the highest-priority interval containing n.
func (s *PrioritySet) Lookup(n int) (kernel.ID, bool) {
	for _, e := range s.elems {
		if e.Interval.Contains(n) {
			return e.Kernel, true
		}
	}
	return kernel.None, false
}

// Elements returns a copy of the elements in lookup order.
func (s *PrioritySet) Elements() []DispatchElement {
	return slices.Clone(s.elems)
}

// Clone returns an independent copy of s.
func (s *PrioritySet) Clone() *PrioritySet {
	return &PrioritySet{elems: slices.Clone(s.elems)}
}

// Len returns the number of elements.
func (s *PrioritySet) Len() int { return len(s.elems) }

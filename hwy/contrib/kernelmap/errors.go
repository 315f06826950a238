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
	"fmt"
)

var (
	// ErrIntervalConflict is returned when an assignment overlaps an
	// existing interval of the same priority.
	ErrIntervalConflict = errors.New("kernelmap: interval conflicts with an existing assignment")

	// ErrKernelNotAllowed is returned when a kernel may not serve buffers
	// of the requested memory model.
	ErrKernelNotAllowed = errors.New("kernelmap: kernel not allowed for memory model")

	// ErrNoKernel is returned when no interval covers a qubit count.
	ErrNoKernel = errors.New("kernelmap: no kernel for qubit count")

	// ErrUnknownDispatchKey is returned when removing from an operation and
	// context that were never assigned.
	ErrUnknownDispatchKey = errors.New("kernelmap: unknown dispatch key")

	// ErrInvalidConfig is returned for malformed assignment configuration.
	ErrInvalidConfig = errors.New("kernelmap: invalid configuration")
)

// ConflictError describes a rejected assignment. It unwraps to
// ErrIntervalConflict.
type ConflictError struct {
	Operation string
	Threading Threading
	Memory    MemoryModel
	Priority  uint32
	Interval  Interval
	Existing  Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("kernelmap: %s (%s, %s) priority %d: interval %s overlaps %s",
		e.Operation, e.Threading, e.Memory, e.Priority, e.Interval, e.Existing)
}

func (e *ConflictError) Unwrap() error { return ErrIntervalConflict }

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
	"slices"

	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
	"github.com/ajroetker/qhwy/hwy/contrib/parallel"
)

// Operations on three or four wires run on PI by default: their LM form
// walks a ParityN base per group, while PI reuses one index list.
var (
	piGates = []gates.GateOperation{
		gates.Toffoli, gates.CSWAP,
		gates.DoubleExcitation, gates.DoubleExcitationMinus, gates.DoubleExcitationPlus,
	}
	piGenerators = []gates.GeneratorOperation{
		gates.GeneratorDoubleExcitation, gates.GeneratorDoubleExcitationMinus, gates.GeneratorDoubleExcitationPlus,
	}
	piMatrices = []gates.MatrixOperation{gates.MultiQubitOp}
)

// RegisterDefaults assigns the default kernels among the available ones:
//
//   - every operation runs on LM, or on PI for the wide operations when PI
//     is available, in every context;
//   - with ParallelLM available, multi-threaded contexts switch to it from
//     parallel.MinParallelQubits qubits on.
//
// The vector kernels get no default slots: their portable lane loop does
// not beat LM, so they run only where a config or an explicit assignment
// places them. LM must be available.
func (r *Registry) RegisterDefaults(available []kernel.Descriptor) error {
	have := func(id kernel.ID) (kernel.Descriptor, bool) {
		i := slices.IndexFunc(available, func(d kernel.Descriptor) bool { return d.ID == id })
		if i < 0 {
			return kernel.Descriptor{}, false
		}
		return available[i], true
	}
	if _, ok := have(kernel.LM); !ok {
		return fmt.Errorf("%w: default assignments need LM", kernel.ErrUnknownKernel)
	}
	_, hasPI := have(kernel.PI)
	_, hasParallel := have(kernel.ParallelLM)

	if err := assignBase(r.Gates, piGates, hasPI, hasParallel); err != nil {
		return err
	}
	if err := assignBase(r.Generators, piGenerators, hasPI, hasParallel); err != nil {
		return err
	}
	if err := assignBase(r.Matrices, piMatrices, hasPI, hasParallel); err != nil {
		return err
	}

	r.logger.Info("default kernels registered",
		"kernels", len(available), "pi", hasPI, "parallel", hasParallel)
	return nil
}

func assignBase[O gates.Operation](m *OperationKernelMap[O], wide []O, hasPI, hasParallel bool) error {
	for _, op := range m.Operations() {
		id := kernel.LM
		if hasPI && slices.Contains(wide, op) {
			id = kernel.PI
		}
		if err := m.AssignAll(op, FullDomain(), id); err != nil {
			return err
		}
		if hasParallel {
			iv := NewInterval(parallel.MinParallelQubits, Unbounded)
			if err := m.AssignForThreading(op, MultiThread, iv, kernel.ParallelLM); err != nil {
				return err
			}
		}
	}
	return nil
}

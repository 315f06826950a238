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

package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/qhwy/hwy/contrib/gates"
)

type stub struct{ d Descriptor }

func (s stub) Descriptor() Descriptor { return s.d }

func (stub) ApplyGate(gates.GateOperation, []complex64, int, []int, bool, ...float64) {}

func (stub) ApplyGenerator(gates.GeneratorOperation, []complex64, int, []int, bool) float64 {
	return 0
}

func (stub) ApplyMatrix(gates.MatrixOperation, []complex64, int, []complex64, []int, bool) {}

func TestParseID(t *testing.T) {
	for _, id := range []ID{LM, PI, ParallelLM, Lanes256, Lanes512} {
		got, err := ParseID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
	_, err := ParseID("None")
	assert.ErrorIs(t, err, ErrUnknownKernel)
	_, err = ParseID("LMX")
	assert.ErrorIs(t, err, ErrUnknownKernel)
	assert.Equal(t, "ID(42)", ID(42).String())
}

func TestDescriptorImplements(t *testing.T) {
	d := Descriptor{
		Gates:      []gates.GateOperation{gates.PauliX, gates.RZ},
		Generators: []gates.GeneratorOperation{gates.GeneratorRZ},
	}
	assert.True(t, d.ImplementsGate(gates.RZ))
	assert.False(t, d.ImplementsGate(gates.CNOT))
	assert.True(t, d.ImplementsGenerator(gates.GeneratorRZ))
	assert.False(t, d.ImplementsGenerator(gates.GeneratorRX))
	assert.False(t, d.ImplementsMatrix(gates.SingleQubitOp))
}

func TestSet(t *testing.T) {
	s := NewSet[complex64](
		stub{Descriptor{ID: PI, Alignment: 1}},
		stub{Descriptor{ID: LM, Alignment: 1}},
	)
	assert.Equal(t, []ID{LM, PI}, s.IDs())
	assert.Equal(t, 1, s.CommonAlignment())

	_, err := s.Get(Lanes256)
	assert.ErrorIs(t, err, ErrUnknownKernel)
	assert.Panics(t, func() { s.MustGet(Lanes256) })

	s.Register(stub{Descriptor{ID: Lanes256, Alignment: 32}})
	k, err := s.Get(Lanes256)
	require.NoError(t, err)
	assert.Equal(t, 32, k.Descriptor().Alignment)
	assert.Equal(t, 32, s.CommonAlignment())

	ds := s.Descriptors()
	require.Len(t, ds, 3)
	assert.Equal(t, Lanes256, ds[2].ID)

	s.Register(stub{Descriptor{ID: Lanes256, Alignment: 64}})
	assert.Len(t, s.IDs(), 3)
	assert.Equal(t, 64, s.CommonAlignment())
}

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

// Package gates is the closed catalog of operations the kernels implement:
// named gates, their generators, and dense-matrix operations by arity.
//
// Kernels and the kernel map iterate these catalogs exhaustively, so adding
// an operation means adding it here and implementing it in at least one
// kernel family.
package gates

import (
	"errors"
	"fmt"
)

// ErrUnknownOperation is returned when an operation name is not in the
// catalog.
var ErrUnknownOperation = errors.New("gates: unknown operation")

// Operation is satisfied by the three catalog enums.
type Operation interface {
	GateOperation | GeneratorOperation | MatrixOperation
	String() string
	Wires() int
}

// GateOperation names a gate.
type GateOperation uint8

const (
	Identity GateOperation = iota
	PauliX
	PauliY
	PauliZ
	Hadamard
	S
	T
	PhaseShift
	RX
	RY
	RZ
	Rot
	CNOT
	CY
	CZ
	SWAP
	IsingXX
	IsingXY
	IsingYY
	IsingZZ
	ControlledPhaseShift
	CRX
	CRY
	CRZ
	CRot
	SingleExcitation
	SingleExcitationMinus
	SingleExcitationPlus
	Toffoli
	CSWAP
	DoubleExcitation
	DoubleExcitationMinus
	DoubleExcitationPlus
	MultiRZ
	numGates
)

type opInfo struct {
	name   string
	wires  int
	params int
}

var gateInfo = [numGates]opInfo{
	Identity:              {"Identity", 1, 0},
	PauliX:                {"PauliX", 1, 0},
	PauliY:                {"PauliY", 1, 0},
	PauliZ:                {"PauliZ", 1, 0},
	Hadamard:              {"Hadamard", 1, 0},
	S:                     {"S", 1, 0},
	T:                     {"T", 1, 0},
	PhaseShift:            {"PhaseShift", 1, 1},
	RX:                    {"RX", 1, 1},
	RY:                    {"RY", 1, 1},
	RZ:                    {"RZ", 1, 1},
	Rot:                   {"Rot", 1, 3},
	CNOT:                  {"CNOT", 2, 0},
	CY:                    {"CY", 2, 0},
	CZ:                    {"CZ", 2, 0},
	SWAP:                  {"SWAP", 2, 0},
	IsingXX:               {"IsingXX", 2, 1},
	IsingXY:               {"IsingXY", 2, 1},
	IsingYY:               {"IsingYY", 2, 1},
	IsingZZ:               {"IsingZZ", 2, 1},
	ControlledPhaseShift:  {"ControlledPhaseShift", 2, 1},
	CRX:                   {"CRX", 2, 1},
	CRY:                   {"CRY", 2, 1},
	CRZ:                   {"CRZ", 2, 1},
	CRot:                  {"CRot", 2, 3},
	SingleExcitation:      {"SingleExcitation", 2, 1},
	SingleExcitationMinus: {"SingleExcitationMinus", 2, 1},
	SingleExcitationPlus:  {"SingleExcitationPlus", 2, 1},
	Toffoli:               {"Toffoli", 3, 0},
	CSWAP:                 {"CSWAP", 3, 0},
	DoubleExcitation:      {"DoubleExcitation", 4, 1},
	DoubleExcitationMinus: {"DoubleExcitationMinus", 4, 1},
	DoubleExcitationPlus:  {"DoubleExcitationPlus", 4, 1},
	MultiRZ:               {"MultiRZ", 0, 1},
}

func (op GateOperation) String() string {
	if op >= numGates {
		return fmt.Sprintf("GateOperation(%d)", uint8(op))
	}
	return gateInfo[op].name
}

// Wires returns the number of wires the gate acts on, or 0 if it accepts
// any number.
func (op GateOperation) Wires() int { return gateInfo[op].wires }

// Params returns the number of angle parameters the gate takes.
func (op GateOperation) Params() int { return gateInfo[op].params }

// AllGates returns every gate in catalog order.
func AllGates() []GateOperation {
	out := make([]GateOperation, numGates)
	for i := range out {
		out[i] = GateOperation(i)
	}
	return out
}

// ParseGate returns the gate with the given name.
func ParseGate(name string) (GateOperation, error) {
	for i := range numGates {
		if gateInfo[i].name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: gate %q", ErrUnknownOperation, name)
}

// GeneratorOperation names the generator of a parametric gate.
type GeneratorOperation uint8

const (
	GeneratorPhaseShift GeneratorOperation = iota
	GeneratorRX
	GeneratorRY
	GeneratorRZ
	GeneratorIsingXX
	GeneratorIsingXY
	GeneratorIsingYY
	GeneratorIsingZZ
	GeneratorCRX
	GeneratorCRY
	GeneratorCRZ
	GeneratorControlledPhaseShift
	GeneratorSingleExcitation
	GeneratorSingleExcitationMinus
	GeneratorSingleExcitationPlus
	GeneratorDoubleExcitation
	GeneratorDoubleExcitationMinus
	GeneratorDoubleExcitationPlus
	GeneratorMultiRZ
	numGenerators
)

var generatorGate = [numGenerators]GateOperation{
	GeneratorPhaseShift:            PhaseShift,
	GeneratorRX:                    RX,
	GeneratorRY:                    RY,
	GeneratorRZ:                    RZ,
	GeneratorIsingXX:               IsingXX,
	GeneratorIsingXY:               IsingXY,
	GeneratorIsingYY:               IsingYY,
	GeneratorIsingZZ:               IsingZZ,
	GeneratorCRX:                   CRX,
	GeneratorCRY:                   CRY,
	GeneratorCRZ:                   CRZ,
	GeneratorControlledPhaseShift:  ControlledPhaseShift,
	GeneratorSingleExcitation:      SingleExcitation,
	GeneratorSingleExcitationMinus: SingleExcitationMinus,
	GeneratorSingleExcitationPlus:  SingleExcitationPlus,
	GeneratorDoubleExcitation:      DoubleExcitation,
	GeneratorDoubleExcitationMinus: DoubleExcitationMinus,
	GeneratorDoubleExcitationPlus:  DoubleExcitationPlus,
	GeneratorMultiRZ:               MultiRZ,
}

// Gate returns the parametric gate this generator differentiates.
func (op GeneratorOperation) Gate() GateOperation { return generatorGate[op] }

func (op GeneratorOperation) String() string {
	if op >= numGenerators {
		return fmt.Sprintf("GeneratorOperation(%d)", uint8(op))
	}
	return "Generator" + generatorGate[op].String()
}

// Wires returns the number of wires of the generator's gate.
func (op GeneratorOperation) Wires() int { return generatorGate[op].Wires() }

// AllGenerators returns every generator in catalog order.
func AllGenerators() []GeneratorOperation {
	out := make([]GeneratorOperation, numGenerators)
	for i := range out {
		out[i] = GeneratorOperation(i)
	}
	return out
}

// ParseGenerator accepts either the generator name or its gate's name.
func ParseGenerator(name string) (GeneratorOperation, error) {
	for i := range numGenerators {
		if i.String() == name || generatorGate[i].String() == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: generator %q", ErrUnknownOperation, name)
}

// MatrixOperation names a dense-matrix operation by arity.
type MatrixOperation uint8

const (
	SingleQubitOp MatrixOperation = iota
	TwoQubitOp
	MultiQubitOp
	numMatrices
)

var matrixInfo = [numMatrices]opInfo{
	SingleQubitOp: {"SingleQubitOp", 1, 0},
	TwoQubitOp:    {"TwoQubitOp", 2, 0},
	MultiQubitOp:  {"MultiQubitOp", 0, 0},
}

func (op MatrixOperation) String() string {
	if op >= numMatrices {
		return fmt.Sprintf("MatrixOperation(%d)", uint8(op))
	}
	return matrixInfo[op].name
}

// Wires returns the matrix arity, or 0 for any arity.
func (op MatrixOperation) Wires() int { return matrixInfo[op].wires }

// AllMatrices returns every matrix operation in catalog order.
func AllMatrices() []MatrixOperation {
	return []MatrixOperation{SingleQubitOp, TwoQubitOp, MultiQubitOp}
}

// ParseMatrix returns the matrix operation with the given name.
func ParseMatrix(name string) (MatrixOperation, error) {
	for i := range numMatrices {
		if matrixInfo[i].name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: matrix operation %q", ErrUnknownOperation, name)
}

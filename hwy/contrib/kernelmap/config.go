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
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
)

// ConfigEnvVar names the environment variable holding the default path of
// an assignment file.
const ConfigEnvVar = "QHWY_KERNEL_CONFIG"

// Config is a set of removals and assignments applied over a registry,
// usually on top of the defaults.
//
//	remove:
//	  - kind: gate
//	    operation: RX
//	    threading: single
//	    memory: unaligned
//	    priority: 0
//	assign:
//	  - kind: gate
//	    operation: RX
//	    memory: aligned256       # threading omitted: all threading modes
//	    interval: {min: 4, max: 20}
//	    kernel: PI
//
// An assignment naming both threading and memory is explicit and uses its
// priority, PriorityExplicit when omitted. Leaving either out selects the
// matching broad form with its fixed priority. An interval without max is
// unbounded; no interval at all is the full domain.
type Config struct {
	Remove []RemovalConfig    `yaml:"remove"`
	Assign []AssignmentConfig `yaml:"assign"`
}

// IntervalConfig is a half-open qubit count interval.
type IntervalConfig struct {
	Min int  `yaml:"min"`
	Max *int `yaml:"max"`
}

// AssignmentConfig is one assignment.
type AssignmentConfig struct {
	Kind      string          `yaml:"kind"`
	Operation string          `yaml:"operation"`
	Threading string          `yaml:"threading"`
	Memory    string          `yaml:"memory"`
	Priority  *uint32         `yaml:"priority"`
	Interval  *IntervalConfig `yaml:"interval"`
	Kernel    string          `yaml:"kernel"`
}

// RemovalConfig clears one priority of one operation and context.
type RemovalConfig struct {
	Kind      string `yaml:"kind"`
	Operation string `yaml:"operation"`
	Threading string `yaml:"threading"`
	Memory    string `yaml:"memory"`
	Priority  uint32 `yaml:"priority"`
}

// ParseConfig decodes and validates a YAML assignment file.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads and parses the file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kernelmap: reading config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks every name and interval without touching a registry.
func (c *Config) Validate() error {
	for i, rm := range c.Remove {
		if err := checkOperation(rm.Kind, rm.Operation); err != nil {
			return fmt.Errorf("remove[%d]: %w", i, err)
		}
		if _, err := ParseThreading(rm.Threading); err != nil {
			return fmt.Errorf("remove[%d]: %w", i, err)
		}
		if _, err := ParseMemoryModel(rm.Memory); err != nil {
			return fmt.Errorf("remove[%d]: %w", i, err)
		}
	}
	for i, a := range c.Assign {
		if err := a.validate(); err != nil {
			return fmt.Errorf("assign[%d]: %w", i, err)
		}
	}
	return nil
}

func (a AssignmentConfig) validate() error {
	if err := checkOperation(a.Kind, a.Operation); err != nil {
		return err
	}
	if _, err := kernel.ParseID(a.Kernel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if a.Threading != "" {
		if _, err := ParseThreading(a.Threading); err != nil {
			return err
		}
	}
	if a.Memory != "" {
		if _, err := ParseMemoryModel(a.Memory); err != nil {
			return err
		}
	}
	if a.Priority != nil && (a.Threading == "" || a.Memory == "") {
		return fmt.Errorf("%w: priority needs both threading and memory", ErrInvalidConfig)
	}
	_, err := a.interval()
	return err
}

func (a AssignmentConfig) interval() (Interval, error) {
	if a.Interval == nil {
		return FullDomain(), nil
	}
	hi := Unbounded
	if a.Interval.Max != nil {
		hi = *a.Interval.Max
	}
	if a.Interval.Min < 0 || a.Interval.Min >= hi {
		return Interval{}, fmt.Errorf("%w: empty interval [%d, %d)", ErrInvalidConfig, a.Interval.Min, hi)
	}
	return Interval{Min: a.Interval.Min, Max: hi}, nil
}

func checkOperation(kind, name string) error {
	var err error
	switch strings.ToLower(kind) {
	case "gate":
		_, err = gates.ParseGate(name)
	case "generator":
		_, err = gates.ParseGenerator(name)
	case "matrix":
		_, err = gates.ParseMatrix(name)
	default:
		return fmt.Errorf("%w: kind %q (want gate, generator or matrix)", ErrInvalidConfig, kind)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyConfig performs the removals, then the assignments, in file order.
// The entries run against a staged copy of the registry that replaces the
// live assignments only once all of them succeed, so a failing config
// leaves the registry untouched.
func (r *Registry) ApplyConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.Gates.mu.Lock()
	defer r.Gates.mu.Unlock()
	r.Generators.mu.Lock()
	defer r.Generators.mu.Unlock()
	r.Matrices.mu.Lock()
	defer r.Matrices.mu.Unlock()

	staged := &Registry{
		Gates:      r.Gates.stageLocked(),
		Generators: r.Generators.stageLocked(),
		Matrices:   r.Matrices.stageLocked(),
		logger:     r.logger,
	}
	for i, rm := range cfg.Remove {
		if err := staged.applyRemoval(rm); err != nil {
			return fmt.Errorf("remove[%d]: %w", i, err)
		}
	}
	for i, a := range cfg.Assign {
		if err := staged.applyAssignment(a); err != nil {
			return fmt.Errorf("assign[%d]: %w", i, err)
		}
	}
	r.Gates.commitLocked(staged.Gates)
	r.Generators.commitLocked(staged.Generators)
	r.Matrices.commitLocked(staged.Matrices)
	r.logger.Info("kernel config applied", "removals", len(cfg.Remove), "assignments", len(cfg.Assign))
	return nil
}

func (r *Registry) applyRemoval(rm RemovalConfig) error {
	t, _ := ParseThreading(rm.Threading)
	mm, _ := ParseMemoryModel(rm.Memory)
	switch strings.ToLower(rm.Kind) {
	case "gate":
		op, _ := gates.ParseGate(rm.Operation)
		return r.Gates.Remove(op, t, mm, rm.Priority)
	case "generator":
		op, _ := gates.ParseGenerator(rm.Operation)
		return r.Generators.Remove(op, t, mm, rm.Priority)
	default:
		op, _ := gates.ParseMatrix(rm.Operation)
		return r.Matrices.Remove(op, t, mm, rm.Priority)
	}
}

func (r *Registry) applyAssignment(a AssignmentConfig) error {
	switch strings.ToLower(a.Kind) {
	case "gate":
		op, _ := gates.ParseGate(a.Operation)
		return assignFromConfig(r.Gates, op, a)
	case "generator":
		op, _ := gates.ParseGenerator(a.Operation)
		return assignFromConfig(r.Generators, op, a)
	default:
		op, _ := gates.ParseMatrix(a.Operation)
		return assignFromConfig(r.Matrices, op, a)
	}
}

// assignFromConfig picks the assignment form from the fields present. The
// entry has been validated.
func assignFromConfig[O gates.Operation](m *OperationKernelMap[O], op O, a AssignmentConfig) error {
	id, _ := kernel.ParseID(a.Kernel)
	iv, _ := a.interval()
	switch {
	case a.Threading == "" && a.Memory == "":
		return m.AssignAll(op, iv, id)
	case a.Threading == "":
		mm, _ := ParseMemoryModel(a.Memory)
		return m.AssignForMemory(op, mm, iv, id)
	case a.Memory == "":
		t, _ := ParseThreading(a.Threading)
		return m.AssignForThreading(op, t, iv, id)
	default:
		t, _ := ParseThreading(a.Threading)
		mm, _ := ParseMemoryModel(a.Memory)
		priority := PriorityExplicit
		if a.Priority != nil {
			priority = *a.Priority
		}
		return m.Assign(op, t, mm, priority, iv, id)
	}
}

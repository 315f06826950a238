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

// Package cpuinfo reports the CPU features that decide which kernels run.
package cpuinfo

import (
	"fmt"
	"io"
	"runtime"

	"github.com/viterin/vek/vek32"
	"golang.org/x/sys/cpu"

	"github.com/ajroetker/qhwy/hwy"
)

// Features is a snapshot of the detected CPU capabilities.
type Features struct {
	GOOS, GOARCH string
	NumCPU       int

	Level hwy.DispatchLevel
	Width int
	Name  string

	// Lanes256 and Lanes512 report whether the vector kernels of that
	// width are registered by default.
	Lanes256 bool
	Lanes512 bool

	// VekFeatures lists what the vek norm routines detected.
	VekFeatures    []string
	VekAccelerated bool

	X86Flags   []Flag
	ARM64Flags []Flag
}

// Flag is one named x/sys/cpu feature bit.
type Flag struct {
	Name    string
	Enabled bool
	Note    string
}

// Detect returns the current CPU features.
func Detect() Features {
	info := vek32.Info()
	f := Features{
		GOOS:           runtime.GOOS,
		GOARCH:         runtime.GOARCH,
		NumCPU:         runtime.NumCPU(),
		Level:          hwy.CurrentLevel(),
		Width:          hwy.CurrentWidth(),
		Name:           hwy.CurrentName(),
		Lanes256:       hwy.HasAVX2(),
		Lanes512:       hwy.HasAVX512(),
		VekFeatures:    info.CPUFeatures,
		VekAccelerated: info.Acceleration,
	}
	switch runtime.GOARCH {
	case "amd64":
		f.X86Flags = []Flag{
			{"HasAVX", cpu.X86.HasAVX, ""},
			{"HasAVX2", cpu.X86.HasAVX2, ""},
			{"HasFMA", cpu.X86.HasFMA, ""},
			{"HasAVX512F", cpu.X86.HasAVX512F, ""},
			{"HasAVX512DQ", cpu.X86.HasAVX512DQ, ""},
			{"HasAVX512BW", cpu.X86.HasAVX512BW, ""},
			{"HasAVX512VL", cpu.X86.HasAVX512VL, ""},
			{"HasSSE2", cpu.X86.HasSSE2, ""},
			{"HasSSE41", cpu.X86.HasSSE41, ""},
			{"HasSSE42", cpu.X86.HasSSE42, ""},
		}
	case "arm64":
		f.ARM64Flags = []Flag{
			{"HasASIMD", cpu.ARM64.HasASIMD, "NEON baseline"},
			{"HasFP", cpu.ARM64.HasFP, "Floating point"},
			{"HasASIMDHP", cpu.ARM64.HasASIMDHP, "FP16 NEON, ARMv8.2-A"},
			{"HasASIMDFHM", cpu.ARM64.HasASIMDFHM, "FP16 FMA, ARMv8.4-A"},
			{"HasSVE", cpu.ARM64.HasSVE, "Scalable Vector Extension"},
			{"HasSVE2", cpu.ARM64.HasSVE2, "SVE2"},
			{"HasATOMICS", cpu.ARM64.HasATOMICS, "Large System Extensions"},
		}
	}
	return f
}

// Report writes the detected features to w in a human readable form.
func Report(w io.Writer) error {
	f := Detect()
	p := &printer{w: w}
	p.printf("GOOS: %s\n", f.GOOS)
	p.printf("GOARCH: %s\n", f.GOARCH)
	p.printf("NumCPU: %d\n\n", f.NumCPU)

	p.printf("Dispatch level: %s\n", f.Level)
	p.printf("Dispatch width: %d bytes\n", f.Width)
	p.printf("Dispatch name: %s\n", f.Name)
	p.printf("Lanes256 kernel: %v\n", f.Lanes256)
	p.printf("Lanes512 kernel: %v\n\n", f.Lanes512)

	p.printf("vek accelerated: %v %v\n", f.VekAccelerated, f.VekFeatures)

	if len(f.X86Flags) > 0 {
		p.printf("\n=== golang.org/x/sys/cpu.X86 ===\n")
		p.flags(f.X86Flags)
	}
	if len(f.ARM64Flags) > 0 {
		p.printf("\n=== golang.org/x/sys/cpu.ARM64 ===\n")
		p.flags(f.ARM64Flags)
	}
	return p.err
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) flags(flags []Flag) {
	for _, fl := range flags {
		if fl.Note != "" {
			p.printf("  %-12s %v (%s)\n", fl.Name+":", fl.Enabled, fl.Note)
			continue
		}
		p.printf("  %-12s %v\n", fl.Name+":", fl.Enabled)
	}
}

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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/densematrix"
	"github.com/ajroetker/qhwy/hwy/contrib/engine"
	"github.com/ajroetker/qhwy/hwy/contrib/gates"
	"github.com/ajroetker/qhwy/hwy/contrib/kernel"
	"github.com/ajroetker/qhwy/hwy/contrib/kernelmap"
	"github.com/ajroetker/qhwy/internal/cpuinfo"
)

var title = cases.Title(language.English)

// benchParams feeds every parametric gate.
var benchParams = []float64{0.31, -0.72, 1.13}

func newKernelsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "kernels",
		Short: "List the kernels available on this CPU",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withPrecision(
				func() error { return runKernels[complex64](cmd.OutOrStdout(), g) },
				func() error { return runKernels[complex128](cmd.OutOrStdout(), g) },
			)
		},
	}
}

func runKernels[C hwy.Complexes](w io.Writer, g *globals) error {
	set := engine.DefaultKernels[C](nil)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KERNEL\tALIGNMENT\tGATES\tGENERATORS\tMATRICES")
	for _, d := range set.Descriptors() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n",
			d.Name, d.Alignment, len(d.Gates), len(d.Generators), len(d.Matrices))
	}
	fmt.Fprintf(tw, "\ncommon alignment: %d bytes, precision %s\n", set.CommonAlignment(), g.precision)
	return tw.Flush()
}

func newResolveCmd(g *globals) *cobra.Command {
	var (
		qubits    int
		threading string
		memory    string
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the kernel chosen for every operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := kernelmap.ParseThreading(threading)
			if err != nil {
				return err
			}
			mm, err := kernelmap.ParseMemoryModel(memory)
			if err != nil {
				return err
			}
			return g.withPrecision(
				func() error { return runResolve[complex64](cmd, g, qubits, t, mm) },
				func() error { return runResolve[complex128](cmd, g, qubits, t, mm) },
			)
		},
	}
	cmd.Flags().IntVar(&qubits, "qubits", 10, "Number of qubits")
	cmd.Flags().StringVar(&threading, "threading", "single", "Threading mode: single or multi")
	cmd.Flags().StringVar(&memory, "memory", "unaligned", "Memory model: unaligned, aligned256 or aligned512")
	return cmd
}

func runResolve[C hwy.Complexes](cmd *cobra.Command, g *globals, n int, t kernelmap.Threading, mm kernelmap.MemoryModel) error {
	s, err := newSession[C](cmd, g, t)
	if err != nil {
		return err
	}
	defer s.Close()
	res, err := s.engine.Registry().Resolve(n, t, mm)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d qubits, %s, %s\n", n, t, mm)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeResolved(tw, "gates", gates.AllGates(), res.Gates)
	writeResolved(tw, "generators", gates.AllGenerators(), res.Generators)
	writeResolved(tw, "matrices", gates.AllMatrices(), res.Matrices)
	return tw.Flush()
}

func writeResolved[O gates.Operation](w io.Writer, kind string, ops []O, resolved map[O]kernel.ID) {
	fmt.Fprintf(w, "\n%s\t\n", title.String(kind))
	for _, op := range ops {
		fmt.Fprintf(w, "  %s\t%s\n", op, resolved[op])
	}
}

func newVerifyCmd(g *globals) *cobra.Command {
	var qubits int
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every kernel against dense reference operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if qubits < 4 {
				return fmt.Errorf("verify needs at least 4 qubits, got %d", qubits)
			}
			return g.withPrecision(
				func() error { return runVerify[complex64](cmd, g, qubits, 1e-4) },
				func() error { return runVerify[complex128](cmd, g, qubits, 1e-10) },
			)
		},
	}
	cmd.Flags().IntVar(&qubits, "qubits", 6, "Number of qubits (at least 4)")
	return cmd
}

// spreadWires picks k distinct wires out of n, alternating between the
// high and low ends so the order is neither ascending nor descending.
func spreadWires(n, k int) []int {
	wires := make([]int, k)
	for i := range wires {
		if i%2 == 0 {
			wires[i] = n - 1 - i/2
		} else {
			wires[i] = i / 2
		}
	}
	return wires
}

// randomState returns a normalized random state from a fixed seed.
func randomState[C hwy.Complexes](n int, seed uint64) []C {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	state := make([]C, 1<<n)
	for i := range state {
		state[i] = C(complex(rng.NormFloat64(), rng.NormFloat64()))
	}
	engine.Normalize(state)
	return state
}

// mismatch records a kernel whose output strayed from the reference. For
// generators inverse is the adjoint flag.
type mismatch struct {
	op      string
	inverse bool
	diff    float64
}

func runVerify[C hwy.Complexes](cmd *cobra.Command, g *globals, n int, tol float64) error {
	s, err := newSession[C](cmd, g, kernelmap.SingleThread)
	if err != nil {
		return err
	}
	defer s.Close()
	set := s.engine.Kernels()
	ids := set.IDs()
	results := make([][]mismatch, len(ids))

	eg, ctx := errgroup.WithContext(cmd.Context())
	for i, id := range ids {
		k := set.MustGet(id)
		eg.Go(func() error {
			var err error
			results[i], err = verifyKernel(ctx, k, n, tol)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	failed := 0
	for i, id := range ids {
		if len(results[i]) == 0 {
			fmt.Fprintf(w, "%-12s ok\n", id)
			continue
		}
		failed++
		fmt.Fprintf(w, "%-12s FAIL\n", id)
		for _, m := range results[i] {
			fmt.Fprintf(w, "  %s inverse=%t: max diff %.3g\n", m.op, m.inverse, m.diff)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d kernels disagree with the reference", failed, len(ids))
	}
	return nil
}

func verifyKernel[C hwy.Complexes](ctx context.Context, k kernel.Kernel[C], n int, tol float64) ([]mismatch, error) {
	var out []mismatch
	src := randomState[C](n, uint64(k.Descriptor().ID))
	for _, op := range k.Descriptor().Gates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		numWires := op.Wires()
		if numWires == 0 {
			numWires = 3
		}
		wires := spreadWires(n, numWires)
		params := benchParams[:op.Params()]
		for _, inverse := range []bool{false, true} {
			want := slices.Clone(src)
			densematrix.ApplyMultiQubitOp(want, n, gates.Matrix[C](op, numWires, inverse, params...), wires, false)
			got := slices.Clone(src)
			k.ApplyGate(op, got, n, wires, inverse, params...)
			if d := maxDiff(want, got); d > tol {
				out = append(out, mismatch{op.String(), inverse, d})
			}
		}
	}
	for _, op := range k.Descriptor().Generators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		numWires := op.Wires()
		if numWires == 0 {
			numWires = 3
		}
		wires := spreadWires(n, numWires)
		for _, adjoint := range []bool{false, true} {
			got := slices.Clone(src)
			scale := k.ApplyGenerator(op, got, n, wires, adjoint)
			if scale == 0 {
				out = append(out, mismatch{op.String(), adjoint, 1})
				continue
			}
			want := slices.Clone(src)
			densematrix.ApplyMultiQubitOp(want, n, generatorMatrix[C](op.Gate(), numWires, scale), wires, false)
			if d := maxDiff(want, got); d > tol {
				out = append(out, mismatch{op.String(), adjoint, d})
			}
		}
	}
	for _, op := range k.Descriptor().Matrices {
		numWires := op.Wires()
		if numWires == 0 {
			numWires = 3
		}
		wires := spreadWires(n, numWires)
		matrix := gates.Matrix[C](gates.MultiRZ, numWires, false, benchParams[0])
		for _, inverse := range []bool{false, true} {
			want := slices.Clone(src)
			densematrix.ApplyMultiQubitOp(want, n, matrix, wires, inverse)
			got := slices.Clone(src)
			k.ApplyMatrix(op, got, n, matrix, wires, inverse)
			if d := maxDiff(want, got); d > tol {
				out = append(out, mismatch{op.String(), inverse, d})
			}
		}
	}
	return out, nil
}

// generatorMatrix returns the dense G with dU/dtheta = i*scale*G*U at
// theta=0. The central difference is accurate to about 1e-10, so entries
// within 1e-6 of a multiple of one half are snapped to it.
func generatorMatrix[C hwy.Complexes](op gates.GateOperation, numWires int, scale float64) []C {
	const h = 1e-6
	plus := gates.Matrix[complex128](op, numWires, false, h)
	minus := gates.Matrix[complex128](op, numWires, false, -h)
	denom := complex(0, scale) * complex(2*h, 0)
	out := make([]C, len(plus))
	for i := range out {
		v := (plus[i] - minus[i]) / denom
		out[i] = C(complex(snapHalf(real(v)), snapHalf(imag(v))))
	}
	return out
}

func snapHalf(x float64) float64 {
	r := math.Round(2*x) / 2
	if math.Abs(x-r) < 1e-6 {
		return r
	}
	return x
}

func maxDiff[C hwy.Complexes](a, b []C) float64 {
	var worst float64
	for i := range a {
		worst = max(worst, cmplx.Abs(complex128(a[i])-complex128(b[i])))
	}
	return worst
}

func newBenchCmd(g *globals) *cobra.Command {
	var (
		qubits     int
		gate       string
		kernelName string
		threading  string
		iterations int
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time repeated applications of one gate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := gates.ParseGate(gate)
			if err != nil {
				return err
			}
			t, err := kernelmap.ParseThreading(threading)
			if err != nil {
				return err
			}
			id := kernel.None
			if kernelName != "" {
				if id, err = kernel.ParseID(kernelName); err != nil {
					return err
				}
			}
			if iterations < 1 {
				return errors.New("--iterations must be positive")
			}
			b := benchSpec{qubits: qubits, op: op, kernel: id, threading: t, iterations: iterations}
			return g.withPrecision(
				func() error { return runBench[complex64](cmd, g, b) },
				func() error { return runBench[complex128](cmd, g, b) },
			)
		},
	}
	cmd.Flags().IntVar(&qubits, "qubits", 20, "Number of qubits")
	cmd.Flags().StringVar(&gate, "gate", "RY", "Gate to apply")
	cmd.Flags().StringVar(&kernelName, "kernel", "", "Kernel to force (empty: registry choice)")
	cmd.Flags().StringVar(&threading, "threading", "single", "Threading mode: single or multi")
	cmd.Flags().IntVar(&iterations, "iterations", 10, "Number of applications")
	return cmd
}

type benchSpec struct {
	qubits     int
	op         gates.GateOperation
	kernel     kernel.ID
	threading  kernelmap.Threading
	iterations int
}

func runBench[C hwy.Complexes](cmd *cobra.Command, g *globals, b benchSpec) error {
	s, err := newSession[C](cmd, g, b.threading)
	if err != nil {
		return err
	}
	defer s.Close()

	numWires := b.op.Wires()
	if numWires == 0 {
		numWires = min(b.qubits, 4)
	}
	if numWires > b.qubits {
		return fmt.Errorf("%s needs %d qubits, have %d", b.op, numWires, b.qubits)
	}
	wires := spreadWires(b.qubits, numWires)
	params := benchParams[:b.op.Params()]
	state := s.engine.NewState(b.qubits)

	apply := func() error { return s.engine.ApplyGate(b.op, state, wires, false, params...) }
	chosen := "registry"
	if b.kernel != kernel.None {
		k, err := s.engine.Kernels().Get(b.kernel)
		if err != nil {
			return err
		}
		if !k.Descriptor().ImplementsGate(b.op) {
			return fmt.Errorf("%s does not implement %s", b.kernel, b.op)
		}
		chosen = b.kernel.String()
		apply = func() error {
			k.ApplyGate(b.op, state, b.qubits, wires, false, params...)
			return nil
		}
	} else if k, err := s.engine.GateKernel(b.op, state); err == nil {
		chosen = "registry: " + k.Descriptor().ID.String()
	}

	start := time.Now()
	for range b.iterations {
		if err := apply(); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)
	per := elapsed / time.Duration(b.iterations)
	amps := float64(len(state)) / per.Seconds()
	fmt.Fprintf(cmd.OutOrStdout(), "%s on %d qubits wires=%v kernel=%s %s: %v/op, %.3g amplitudes/s (norm %.6f)\n",
		b.op, b.qubits, wires, chosen, strings.ToLower(b.threading.String()), per, amps, engine.Norm(state))
	return nil
}

func newCPUInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cpuinfo",
		Short: "Print detected CPU features and the dispatch level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cpuinfo.Report(cmd.OutOrStdout())
		},
	}
}

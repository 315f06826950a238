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

// Command qkernel inspects, verifies and benchmarks the state-vector gate
// kernels available on this machine.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajroetker/qhwy/hwy"
	"github.com/ajroetker/qhwy/hwy/contrib/engine"
	"github.com/ajroetker/qhwy/hwy/contrib/kernelmap"
	"github.com/ajroetker/qhwy/hwy/contrib/workerpool"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
	precision  string
	workers    int
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:   "qkernel",
		Short: "Inspect and exercise state-vector gate kernels",
		Long: `qkernel lists the gate kernels compiled for this CPU, shows which kernel
the registry picks for a qubit count and context, checks every kernel
against dense reference matrices and times single gates.

Kernel assignments can be overridden with a YAML file passed via --config
or the ` + kernelmap.ConfigEnvVar + ` environment variable.`,
		SilenceUsage: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", os.Getenv(kernelmap.ConfigEnvVar), "Kernel assignment override file (YAML)")
	pf.StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&g.precision, "precision", "complex128", "Amplitude precision: complex64 or complex128")
	pf.IntVar(&g.workers, "workers", runtime.GOMAXPROCS(0), "Worker goroutines for multi-threaded kernels")

	rootCmd.AddCommand(
		newKernelsCmd(g),
		newResolveCmd(g),
		newVerifyCmd(g),
		newBenchCmd(g),
		newCPUInfoCmd(),
	)
	return rootCmd
}

func (g *globals) logger(cmd *cobra.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", g.logLevel, err)
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}

// withPrecision runs the instantiation of a generic command body that
// matches --precision.
func (g *globals) withPrecision(single, double func() error) error {
	switch strings.ToLower(g.precision) {
	case "complex64", "c64", "single":
		return single()
	case "complex128", "c128", "double":
		return double()
	default:
		return fmt.Errorf("invalid --precision %q (want complex64 or complex128)", g.precision)
	}
}

// session is an engine plus the pool it runs on.
type session[C hwy.Complexes] struct {
	engine *engine.Engine[C]
	pool   *workerpool.Pool
}

func (s *session[C]) Close() { s.pool.Close() }

func newSession[C hwy.Complexes](cmd *cobra.Command, g *globals, threading kernelmap.Threading) (*session[C], error) {
	logger, err := g.logger(cmd)
	if err != nil {
		return nil, err
	}
	pool := workerpool.New(g.workers)
	set := engine.DefaultKernels[C](pool)
	registry := kernelmap.New(kernelmap.WithLogger(logger))
	if err := registry.RegisterDefaults(set.Descriptors()); err != nil {
		pool.Close()
		return nil, err
	}
	if g.configPath != "" {
		cfg, err := kernelmap.LoadConfig(g.configPath)
		if err == nil {
			err = registry.ApplyConfig(cfg)
		}
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("config %s: %w", g.configPath, err)
		}
	}
	e := engine.New(registry, set,
		engine.WithThreading[C](threading),
		engine.WithLogger[C](logger))
	return &session[C]{engine: e, pool: pool}, nil
}

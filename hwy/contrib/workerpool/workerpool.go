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

// Package workerpool provides a persistent pool of goroutines for splitting
// data-parallel loops.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//	pool.ParallelFor(groups, func(start, end int) {
//		for g := start; g < end; g++ {
//			// ...
//		}
//	})
//
// A nil *Pool is valid and runs every loop inline on the caller.
package workerpool

import (
	"sync"
	"sync/atomic"
)

// Executor runs data-parallel loops.
type Executor interface {
	// ParallelFor splits [0, n) into contiguous chunks and calls fn once
	// per chunk. It returns after every chunk has finished.
	ParallelFor(n int, fn func(start, end int))

	// ParallelForAtomic calls fn for every i in [0, n), handing out indices
	// one at a time through an atomic counter. Use it when iterations have
	// uneven cost.
	ParallelForAtomic(n int, fn func(i int))

	// NumWorkers reports the degree of parallelism.
	NumWorkers() int
}

// Pool is a fixed set of worker goroutines.
type Pool struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup
	closed  atomic.Bool
	once    sync.Once
}

var _ Executor = (*Pool)(nil)

// New starts a pool of n workers. n < 1 is treated as 1.
func New(n int) *Pool {
	n = max(n, 1)
	p := &Pool{
		workers: n,
		tasks:   make(chan func(), n),
	}
	for range n {
		p.wg.Go(func() {
			for task := range p.tasks {
				task()
			}
		})
	}
	return p
}

// Close stops the workers. It must not race with a running loop; loops
// issued after Close run inline.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		p.closed.Store(true)
		close(p.tasks)
		p.wg.Wait()
	})
}

// NumWorkers returns the number of workers, or 1 for a nil pool.
func (p *Pool) NumWorkers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

func (p *Pool) inline() bool {
	return p == nil || p.workers == 1 || p.closed.Load()
}

// run executes the chunks, the first one on the calling goroutine. While it
// waits the caller drains queued tasks too, so nested loops issued from
// inside a worker cannot starve.
func (p *Pool) run(chunks []func()) {
	var pending atomic.Int64
	pending.Store(int64(len(chunks)))
	done := make(chan struct{})
	wrap := func(f func()) func() {
		return func() {
			f()
			if pending.Add(-1) == 0 {
				close(done)
			}
		}
	}
	for _, c := range chunks[1:] {
		task := wrap(c)
		select {
		case p.tasks <- task:
		default:
			task()
		}
	}
	wrap(chunks[0])()
	tasks := p.tasks
	for {
		select {
		case <-done:
			return
		case task, ok := <-tasks:
			if !ok {
				tasks = nil
				continue
			}
			task()
		}
	}
}

// ParallelFor splits [0, n) into at most NumWorkers contiguous chunks.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if p.inline() || n == 1 {
		fn(0, n)
		return
	}
	parts := min(p.workers, n)
	size := (n + parts - 1) / parts
	chunks := make([]func(), 0, parts)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		chunks = append(chunks, func() { fn(start, end) })
	}
	p.run(chunks)
}

// ParallelForAtomic hands out indices of [0, n) one at a time.
func (p *Pool) ParallelForAtomic(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if p.inline() || n == 1 {
		for i := range n {
			fn(i)
		}
		return
	}
	var next atomic.Int64
	worker := func() {
		for {
			i := int(next.Add(1) - 1)
			if i >= n {
				return
			}
			fn(i)
		}
	}
	chunks := make([]func(), min(p.workers, n))
	for i := range chunks {
		chunks[i] = worker
	}
	p.run(chunks)
}

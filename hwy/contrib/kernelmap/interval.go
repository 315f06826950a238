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
	"math"
)

// Unbounded is the exclusive upper end of an interval with no maximum.
const Unbounded = math.MaxInt

// Interval is the half-open range of qubit counts [Min, Max).
type Interval struct {
	Min int
	Max int
}

// NewInterval returns [lo, hi). It panics unless 0 <= lo < hi.
func NewInterval(lo, hi int) Interval {
	if lo < 0 || lo >= hi {
		panic(fmt.Sprintf("kernelmap: empty or negative interval [%d, %d)", lo, hi))
	}
	return Interval{Min: lo, Max: hi}
}

// FullDomain covers every qubit count.
func FullDomain() Interval { return Interval{Min: 0, Max: Unbounded} }

// LargerThan covers qubit counts greater than n.
func LargerThan(n int) Interval { return NewInterval(n+1, Unbounded) }

// LessThan covers qubit counts below n.
func LessThan(n int) Interval { return NewInterval(0, n) }

// Between covers [lo, hi).
func Between(lo, hi int) Interval { return NewInterval(lo, hi) }

// Exactly covers the single qubit count n.
func Exactly(n int) Interval { return NewInterval(n, n+1) }

// Contains reports whether n lies in the interval.
func (iv Interval) Contains(n int) bool { return iv.Min <= n && n < iv.Max }

// Disjoint reports whether the two intervals share no qubit count.
func (iv Interval) Disjoint(other Interval) bool {
	return iv.Max <= other.Min || other.Max <= iv.Min
}

func (iv Interval) String() string {
	if iv.Max == Unbounded {
		return fmt.Sprintf("[%d, inf)", iv.Min)
	}
	return fmt.Sprintf("[%d, %d)", iv.Min, iv.Max)
}

// Copyright 2021 Matrix Origin
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

package hashtable

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/matrixorigin/oamap/pkg/common/moerr"
)

const (
	kDefaultInitialCapacity = 1 << 4
	kDefaultLoadFactor      = 0.75
	// odd, so it is relatively prime with every power of two capacity
	kDefaultProbeCoefficient = 31

	// MaximumCapacity is the largest slot count a table may grow to.
	MaximumCapacity = 1 << 30
)

// Options holds the tuning constants of an IntLongHashMap.
type Options struct {
	// DefaultCapacity is used when the table is allocated with zero capacity.
	DefaultCapacity int
	// ProbeCoefficient is the step of the linear probe sequence. Must be odd.
	ProbeCoefficient int
	// EagerAllocation allocates the slots at construction instead of on the
	// first Put.
	EagerAllocation bool
}

type Option func(*Options)

func WithDefaultCapacity(n int) Option {
	return func(o *Options) {
		o.DefaultCapacity = n
	}
}

func WithProbeCoefficient(c int) Option {
	return func(o *Options) {
		o.ProbeCoefficient = c
	}
}

func WithEagerAllocation(eager bool) Option {
	return func(o *Options) {
		o.EagerAllocation = eager
	}
}

func defaultOptions() Options {
	return Options{
		DefaultCapacity:  kDefaultInitialCapacity,
		ProbeCoefficient: kDefaultProbeCoefficient,
	}
}

func (o *Options) validate() error {
	if o.DefaultCapacity < 1 || o.DefaultCapacity > MaximumCapacity {
		return moerr.NewInvalidArgNoCtx("default capacity", o.DefaultCapacity)
	}
	if o.ProbeCoefficient <= 0 || o.ProbeCoefficient%2 == 0 {
		return moerr.NewInvalidArgNoCtx("probe coefficient", o.ProbeCoefficient)
	}
	return nil
}

func validLoadFactor(f float64) bool {
	return f > 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// RoundUpToPowerOfTwo returns n if it is a power of two, otherwise the
// smallest power of two greater than n. n must be positive; 0 is returned
// when the result does not fit in T.
//
// Example: 8 -> 8, 9 -> 16
func RoundUpToPowerOfTwo[T constraints.Integer](n T) T {
	if n&(n-1) == 0 {
		return n
	}
	p := T(1)
	for p < n {
		p <<= 1
		if p <= 0 {
			return 0
		}
	}
	return p
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

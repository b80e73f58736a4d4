// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bench

import (
	"fmt"
	"strings"
	"time"

	"github.com/matrixorigin/oamap/pkg/container/hashtable"
)

// Result is one store driven through one trial.
type Result struct {
	Store   string
	Trial   int
	PutTime time.Duration
	GetTime time.Duration
	Size    int
	// Hits counts gets that found a mapping.
	Hits              int
	Distinct          uint64
	EstimatedDistinct uint64
	// Stats is set for the open addressing store only.
	Stats *hashtable.IntLongHashMapStats

	order int
}

type Report struct {
	RunID    string
	Attempts int
	Results  []Result
}

// String prints two lines per result, put then get time in seconds.
func (r *Report) String() string {
	var sb strings.Builder
	for _, res := range r.Results {
		fmt.Fprintf(&sb, "put (%s): %.6f\n", res.Store, res.PutTime.Seconds())
		fmt.Fprintf(&sb, "get (%s): %.6f\n", res.Store, res.GetTime.Seconds())
	}
	return sb.String()
}

// Detail prints the per result summary including throughput and table stats.
func (r *Report) Detail() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s, %d attempts\n", r.RunID, r.Attempts)
	for _, res := range r.Results {
		fmt.Fprintf(&sb, "trial %d %s: size=%d distinct=%d estimated=%d hits=%d put=%.0f ops/s get=%.0f ops/s\n",
			res.Trial, res.Store, res.Size, res.Distinct, res.EstimatedDistinct, res.Hits,
			opsPerSecond(r.Attempts, res.PutTime), opsPerSecond(r.Attempts, res.GetTime))
		if res.Stats != nil {
			fmt.Fprintf(&sb, "  %s\n", res.Stats.String())
		}
	}
	return sb.String()
}

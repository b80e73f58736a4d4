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
	"golang.org/x/exp/rand"

	"github.com/matrixorigin/oamap/pkg/container/hashtable"
)

type Entry struct {
	Key   int32
	Value hashtable.Value
}

// Workload is Attempts random puts followed by Attempts gets of fresh
// random keys. The same seed always yields the same workload.
type Workload struct {
	Puts []Entry
	Gets []int32
}

func NewWorkload(attempts int, seed uint64) *Workload {
	r := rand.New(rand.NewSource(seed))
	w := &Workload{
		Puts: make([]Entry, attempts),
		Gets: make([]int32, attempts),
	}
	for i := range w.Puts {
		w.Puts[i] = Entry{
			Key:   int32(r.Uint32()),
			Value: hashtable.SomeValue(int64(r.Uint64())),
		}
	}
	for i := range w.Gets {
		w.Gets[i] = int32(r.Uint32())
	}
	return w
}

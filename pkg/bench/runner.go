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
	"context"
	"encoding/binary"
	"sort"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring"
	hll "github.com/axiomhq/hyperloglog"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/oamap/pkg/common/moerr"
	"github.com/matrixorigin/oamap/pkg/config"
	"github.com/matrixorigin/oamap/pkg/logutil"
	v2 "github.com/matrixorigin/oamap/pkg/util/metric/v2"
)

// now is the clock the phases are timed with.
var now = time.Now

type Runner struct {
	cfg   *config.Config
	runID string
}

func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		cfg:   cfg,
		runID: uuid.New().String(),
	}
}

func (r *Runner) RunID() string {
	return r.runID
}

// Run executes every (trial, store) pair on a pool of bench.parallelism
// goroutines. Each pair owns its store, so a single map is never shared.
// Trials of the same seed must agree on size and hits across stores.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	bc := r.cfg.Bench
	pool, err := ants.NewPool(bc.Parallelism)
	if err != nil {
		return nil, moerr.ConvertGoError(ctx, err)
	}
	defer pool.Release()

	logutil.InfoCtx(ctx, "bench run start",
		logutil.RunIDField(r.runID),
		zap.Int("attempts", bc.Attempts),
		zap.Int("trials", bc.Trials),
		zap.Strings("stores", bc.Stores))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		results  []Result
		firstErr error
	)
	for trial := 0; trial < bc.Trials; trial++ {
		w := NewWorkload(bc.Attempts, bc.Seed+uint64(trial))
		for order, kind := range bc.Stores {
			trial, order, kind := trial, order, kind
			wg.Add(1)
			err = pool.Submit(func() {
				defer wg.Done()
				res, err := r.runTrial(ctx, kind, trial, w)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return
				}
				res.order = order
				results = append(results, res)
			})
			if err != nil {
				wg.Done()
				wg.Wait()
				return nil, moerr.ConvertGoError(ctx, err)
			}
		}
	}
	wg.Wait()
	if firstErr != nil {
		logutil.ErrorCtx(ctx, "bench run failed", logutil.RunIDField(r.runID), zap.Error(firstErr))
		return nil, firstErr
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Trial != results[j].Trial {
			return results[i].Trial < results[j].Trial
		}
		return results[i].order < results[j].order
	})
	if err := crossCheck(results); err != nil {
		return nil, err
	}

	return &Report{
		RunID:    r.runID,
		Attempts: bc.Attempts,
		Results:  results,
	}, nil
}

func (r *Runner) runTrial(ctx context.Context, kind string, trial int, w *Workload) (Result, error) {
	store, err := newStore(kind, r.cfg)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := now()
	for _, e := range w.Puts {
		store.Put(e.Key, e.Value)
	}
	putTime := now().Sub(start)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	hits := 0
	start = now()
	for _, k := range w.Gets {
		if _, ok := store.Get(k); ok {
			hits++
		}
	}
	getTime := now().Sub(start)

	exact, estimate := distinctKeys(w.Puts)
	if uint64(store.Len()) != exact {
		return Result{}, moerr.NewInternalError(ctx, "store %s holds %d keys, workload has %d distinct keys",
			store.Name(), store.Len(), exact)
	}

	res := Result{
		Store:             store.Name(),
		Trial:             trial,
		PutTime:           putTime,
		GetTime:           getTime,
		Size:              store.Len(),
		Hits:              hits,
		Distinct:          exact,
		EstimatedDistinct: estimate,
	}
	if oa, ok := store.(*OpenAddressingStore); ok {
		stats := oa.Map().Stats()
		res.Stats = &stats
	}
	r.observe(len(w.Puts), res)

	logutil.Info("bench trial done",
		logutil.RunIDField(r.runID),
		logutil.StoreField(res.Store),
		zap.Int("trial", trial),
		zap.Duration("put", putTime),
		zap.Duration("get", getTime),
		zap.Int("size", res.Size),
		zap.Uint64("estimated-distinct", estimate))
	return res, nil
}

func (r *Runner) observe(ops int, res Result) {
	v2.GetBenchOpDurationHistogram(res.Store, "put").Observe(res.PutTime.Seconds())
	v2.GetBenchOpDurationHistogram(res.Store, "get").Observe(res.GetTime.Seconds())
	v2.GetBenchThroughputGauge(res.Store, "put").Set(opsPerSecond(ops, res.PutTime))
	v2.GetBenchThroughputGauge(res.Store, "get").Set(opsPerSecond(ops, res.GetTime))
}

// distinctKeys counts the distinct put keys exactly and by estimate.
func distinctKeys(puts []Entry) (exact uint64, estimate uint64) {
	bm := roaring.New()
	sk := hll.New16()
	var buf [4]byte
	for _, e := range puts {
		bm.Add(uint32(e.Key))
		binary.LittleEndian.PutUint32(buf[:], uint32(e.Key))
		sk.Insert(buf[:])
	}
	return bm.GetCardinality(), sk.Estimate()
}

func crossCheck(results []Result) error {
	for i := 1; i < len(results); i++ {
		prev, cur := &results[i-1], &results[i]
		if prev.Trial != cur.Trial {
			continue
		}
		if prev.Size != cur.Size || prev.Hits != cur.Hits {
			return moerr.NewInternalErrorNoCtx("trial %d: %s (size %d, hits %d) disagrees with %s (size %d, hits %d)",
				cur.Trial, prev.Store, prev.Size, prev.Hits, cur.Store, cur.Size, cur.Hits)
		}
	}
	return nil
}

func opsPerSecond(ops int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(ops) / d.Seconds()
}

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
	"time"

	"go.uber.org/zap"

	"github.com/matrixorigin/oamap/pkg/common/moerr"
	"github.com/matrixorigin/oamap/pkg/logutil"
	v2 "github.com/matrixorigin/oamap/pkg/util/metric/v2"
)

type intLongSlot struct {
	key      int32
	value    Value
	occupied bool
}

// IntLongHashMap maps int32 keys to nullable int64 values. Collisions are
// resolved by open addressing along the probe sequence
//
//	index(0) = hashIndex(key)
//	index(s) = hashIndex(index(0) + ProbeCoefficient*s)
//
// The slot count is always a power of two and ProbeCoefficient is odd, so
// the sequence visits every slot exactly once before it repeats.
//
// There is no delete, so an empty slot always ends a probe run.
//
// An IntLongHashMap is not safe for concurrent use.
type IntLongHashMap struct {
	// nil until the first Put unless EagerAllocation is set.
	// When allocated, len(slots) == capacity.
	slots      []intLongSlot
	capacity   int
	loadFactor float64
	size       int
	// modCount counts structural modifications, iterators fail fast on it.
	modCount int

	opts Options
}

// ReadOnlyIntLongMap is the lookup surface IntLongHashMap.Equal compares against.
type ReadOnlyIntLongMap interface {
	Len() int
	Get(key int32) (Value, bool)
}

var _ ReadOnlyIntLongMap = (*IntLongHashMap)(nil)

// NewIntLongHashMap returns an empty map whose capacity is initialCapacity
// rounded up to a power of two.
func NewIntLongHashMap(initialCapacity int, loadFactor float64, opts ...Option) (*IntLongHashMap, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if initialCapacity < 1 || initialCapacity > MaximumCapacity {
		return nil, moerr.NewInvalidArgNoCtx("initial capacity", initialCapacity)
	}
	if !validLoadFactor(loadFactor) {
		return nil, moerr.NewInvalidArgNoCtx("load factor", loadFactor)
	}

	ht := &IntLongHashMap{
		capacity:   RoundUpToPowerOfTwo(initialCapacity),
		loadFactor: loadFactor,
		opts:       o,
	}
	if o.EagerAllocation {
		ht.allocate()
	}
	return ht, nil
}

// NewDefaultIntLongHashMap returns a map with capacity 16 and load factor 0.75.
func NewDefaultIntLongHashMap() *IntLongHashMap {
	return &IntLongHashMap{
		capacity:   kDefaultInitialCapacity,
		loadFactor: kDefaultLoadFactor,
		opts:       defaultOptions(),
	}
}

func (ht *IntLongHashMap) Len() int {
	return ht.size
}

func (ht *IntLongHashMap) IsEmpty() bool {
	return ht.size == 0
}

func (ht *IntLongHashMap) Capacity() int {
	return ht.capacity
}

func (ht *IntLongHashMap) LoadFactor() float64 {
	return ht.loadFactor
}

// HashIndex drops the sign bit of h and reduces it into [0, capacity).
func HashIndex(h int32, capacity int) int {
	return int(h&math.MaxInt32) % capacity
}

func (ht *IntLongHashMap) hashIndex(h int32) int {
	return HashIndex(h, ht.capacity)
}

func (ht *IntLongHashMap) probe(step int) uint32 {
	return uint32(ht.opts.ProbeCoefficient) * uint32(step)
}

// threshold is the largest size that does not trigger a resize.
func (ht *IntLongHashMap) threshold() int {
	t := float64(ht.capacity) * ht.loadFactor
	if t >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(t)
}

// findSlot walks the probe sequence of key. It returns the slot holding key,
// or the first empty slot when key is absent, or -1 when all capacity slots
// were visited without finding either. probes is the number of slots visited.
func (ht *IntLongHashMap) findSlot(key int32) (idx int, found bool, probes int) {
	offset := ht.hashIndex(key)
	idx = offset
	for step := 1; step <= ht.capacity; step++ {
		slot := &ht.slots[idx]
		if !slot.occupied {
			return idx, false, step
		}
		if slot.key == key {
			return idx, true, step
		}
		idx = ht.hashIndex(int32(uint32(offset) + ht.probe(step)))
	}
	return -1, false, ht.capacity
}

// Get returns the value mapped to key. ok is false when key has no mapping,
// which is distinct from a mapping to NullValue().
func (ht *IntLongHashMap) Get(key int32) (value Value, ok bool) {
	if len(ht.slots) == 0 {
		return NullValue(), false
	}
	idx, found, _ := ht.findSlot(key)
	if !found {
		return NullValue(), false
	}
	return ht.slots[idx].value, true
}

// Put maps key to value and returns the previous value, existed reports
// whether key was already mapped.
func (ht *IntLongHashMap) Put(key int32, value Value) (old Value, existed bool) {
	if ht.slots == nil {
		ht.allocate()
	}
	ht.modCount++
	for {
		idx, found, _ := ht.findSlot(key)
		if found {
			old = ht.slots[idx].value
			ht.slots[idx].value = value
			return old, true
		}
		if idx >= 0 {
			ht.slots[idx] = intLongSlot{key: key, value: value, occupied: true}
			ht.size++
			if ht.size > ht.threshold() {
				ht.resize()
			}
			return NullValue(), false
		}
		// every slot is taken, only reachable with a load factor >= 1
		if !ht.resize() {
			panic(moerr.NewOOMNoCtx())
		}
	}
}

// GetRef is Get for a key that may be nil. A nil key is an invalid argument.
func (ht *IntLongHashMap) GetRef(key *int32) (Value, bool, error) {
	if key == nil {
		return NullValue(), false, moerr.NewInvalidArgNoCtx("key", "nil")
	}
	v, ok := ht.Get(*key)
	return v, ok, nil
}

// PutRef is Put for a key that may be nil. A nil key is an invalid argument
// and leaves the map untouched.
func (ht *IntLongHashMap) PutRef(key *int32, value Value) (Value, bool, error) {
	if key == nil {
		return NullValue(), false, moerr.NewInvalidArgNoCtx("key", "nil")
	}
	old, existed := ht.Put(*key, value)
	return old, existed, nil
}

func (ht *IntLongHashMap) allocate() {
	if ht.capacity == 0 {
		ht.capacity = ht.opts.DefaultCapacity
	}
	ht.slots = make([]intLongSlot, ht.capacity)
}

// resize doubles the capacity and reinserts every entry. The threshold of
// the doubled table always exceeds the current size, so reinsertion never
// triggers another resize. It returns false at MaximumCapacity.
func (ht *IntLongHashMap) resize() bool {
	if ht.capacity >= MaximumCapacity {
		return false
	}
	start := time.Now()

	oldSlots := ht.slots
	ht.capacity <<= 1
	ht.slots = make([]intLongSlot, ht.capacity)
	for i := range oldSlots {
		if oldSlots[i].occupied {
			idx, _, _ := ht.findSlot(oldSlots[i].key)
			ht.slots[idx] = oldSlots[i]
		}
	}
	ht.modCount++

	v2.HashTableResizeCounter.Inc()
	v2.HashTableRehashDurationHistogram.Observe(time.Since(start).Seconds())
	logutil.Debug("hash table resized",
		zap.Int("capacity", ht.capacity),
		zap.Int("size", ht.size),
		logutil.Elapsed(start))
	return true
}

// Clear removes all mappings but keeps the allocated slots.
func (ht *IntLongHashMap) Clear() {
	if len(ht.slots) == 0 || ht.size == 0 {
		return
	}
	for i := range ht.slots {
		ht.slots[i] = intLongSlot{}
	}
	ht.size = 0
	ht.modCount++
}

type IntLongHashMapIterator struct {
	table    *IntLongHashMap
	pos      int
	modCount int
}

func (ht *IntLongHashMap) NewIterator() *IntLongHashMapIterator {
	it := &IntLongHashMapIterator{}
	it.Init(ht)
	return it
}

func (it *IntLongHashMapIterator) Init(ht *IntLongHashMap) {
	it.table = ht
	it.pos = 0
	it.modCount = ht.modCount
}

// Next returns the entries in slot order. The error is GetOkExpectedEOB()
// once the table is exhausted, and ErrInvalidState if the map was modified
// after the iterator was created.
func (it *IntLongHashMapIterator) Next() (key int32, value Value, err error) {
	if it.table.modCount != it.modCount {
		err = moerr.NewInvalidStateNoCtx("concurrent modification of hash map")
		return
	}

	slots := it.table.slots
	for it.pos < len(slots) && !slots[it.pos].occupied {
		it.pos++
	}

	if it.pos >= len(slots) {
		err = moerr.GetOkExpectedEOB()
		return
	}

	slot := &slots[it.pos]
	it.pos++

	return slot.key, slot.value, nil
}

// IsEndOfIteration reports whether err marks an exhausted iterator.
func IsEndOfIteration(err error) bool {
	return moerr.IsMoErrCode(err, moerr.OkExpectedEOB)
}

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
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/matrixorigin/oamap/pkg/common/moerr"
	v2 "github.com/matrixorigin/oamap/pkg/util/metric/v2"
)

func newTestMap(t *testing.T, capacity int, loadFactor float64, opts ...Option) *IntLongHashMap {
	ht, err := NewIntLongHashMap(capacity, loadFactor, opts...)
	require.NoError(t, err)
	return ht
}

// mapView is a ReadOnlyIntLongMap over a builtin map.
type mapView map[int32]Value

func (m mapView) Len() int { return len(m) }

func (m mapView) Get(key int32) (Value, bool) {
	v, ok := m[key]
	return v, ok
}

func TestNewIntLongHashMapInvalidArgs(t *testing.T) {
	cases := []struct {
		name       string
		capacity   int
		loadFactor float64
		opts       []Option
	}{
		{"zero capacity", 0, 0.75, nil},
		{"negative capacity", -3, 0.75, nil},
		{"capacity too large", MaximumCapacity + 1, 0.75, nil},
		{"zero load factor", 16, 0, nil},
		{"negative load factor", 16, -0.5, nil},
		{"nan load factor", 16, math.NaN(), nil},
		{"inf load factor", 16, math.Inf(1), nil},
		{"even probe coefficient", 16, 0.75, []Option{WithProbeCoefficient(2)}},
		{"zero probe coefficient", 16, 0.75, []Option{WithProbeCoefficient(0)}},
		{"zero default capacity", 16, 0.75, []Option{WithDefaultCapacity(0)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ht, err := NewIntLongHashMap(c.capacity, c.loadFactor, c.opts...)
			require.Nil(t, ht)
			require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg), "got %v", err)
		})
	}
}

func TestNewIntLongHashMapRoundsCapacity(t *testing.T) {
	for _, c := range []struct{ in, want int }{
		{1, 1}, {2, 2}, {3, 4}, {8, 8}, {9, 16}, {1000, 1024},
	} {
		ht := newTestMap(t, c.in, 0.75)
		require.Equal(t, c.want, ht.Capacity())
		require.True(t, ht.IsEmpty())
		require.False(t, ht.Stats().Allocated)
	}

	ht := NewDefaultIntLongHashMap()
	require.Equal(t, kDefaultInitialCapacity, ht.Capacity())
	require.Equal(t, kDefaultLoadFactor, ht.LoadFactor())
}

func TestHashIndex(t *testing.T) {
	require.Equal(t, 5, HashIndex(5, 16))
	require.Equal(t, 1, HashIndex(17, 16))
	require.Equal(t, 15, HashIndex(-1, 16))
	require.Equal(t, 0, HashIndex(math.MinInt32, 16))
	require.Equal(t, 0, HashIndex(math.MaxInt32, 1))
}

func TestProbeCoverage(t *testing.T) {
	for capacity := 2; capacity <= 1<<16; capacity <<= 1 {
		ht := &IntLongHashMap{capacity: capacity, opts: defaultOptions()}
		for _, offset := range []int{0, 1, capacity / 2, capacity - 1} {
			seen := make([]bool, capacity)
			idx := offset
			for step := 1; step <= capacity; step++ {
				require.False(t, seen[idx], "capacity %d offset %d revisits %d", capacity, offset, idx)
				seen[idx] = true
				idx = ht.hashIndex(int32(uint32(offset) + ht.probe(step)))
			}
			require.Equal(t, offset, idx, "sequence of capacity %d is not a cycle", capacity)
		}
	}
}

func TestFreshMap(t *testing.T) {
	ht := NewDefaultIntLongHashMap()
	v, ok := ht.Get(42)
	require.False(t, ok)
	require.True(t, v.IsNull())
	require.False(t, ht.ContainsKey(42))
	require.False(t, ht.ContainsValue(NullValue()))
	require.Empty(t, ht.Keys())
	require.Equal(t, "{}", ht.String())
	require.Equal(t, int32(0), ht.HashCode())
	require.False(t, ht.Stats().Allocated)
}

func TestPutGet(t *testing.T) {
	convey.Convey("capacity 2 with load factor 0.5 grows on the second key", t, func() {
		ht, err := NewIntLongHashMap(2, 0.5)
		convey.So(err, convey.ShouldBeNil)

		old, existed := ht.Put(1, SomeValue(100))
		convey.So(existed, convey.ShouldBeFalse)
		convey.So(old.IsNull(), convey.ShouldBeTrue)
		convey.So(ht.Capacity(), convey.ShouldEqual, 2)

		// 3 collides with 1 at capacity 2
		_, existed = ht.Put(3, SomeValue(300))
		convey.So(existed, convey.ShouldBeFalse)
		convey.So(ht.Capacity(), convey.ShouldEqual, 4)
		convey.So(ht.Len(), convey.ShouldEqual, 2)

		v, ok := ht.Get(1)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(v.Int64(), convey.ShouldEqual, int64(100))
		v, ok = ht.Get(3)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(v.Int64(), convey.ShouldEqual, int64(300))
	})

	convey.Convey("overwrite returns the previous value", t, func() {
		ht := NewDefaultIntLongHashMap()
		ht.Put(7, SomeValue(1))
		old, existed := ht.Put(7, SomeValue(2))
		convey.So(existed, convey.ShouldBeTrue)
		convey.So(old.Equal(SomeValue(1)), convey.ShouldBeTrue)
		old, existed = ht.Put(7, NullValue())
		convey.So(existed, convey.ShouldBeTrue)
		convey.So(old.Equal(SomeValue(2)), convey.ShouldBeTrue)
		convey.So(ht.Len(), convey.ShouldEqual, 1)
	})

	convey.Convey("a null value is a mapping", t, func() {
		ht := NewDefaultIntLongHashMap()
		ht.Put(5, NullValue())

		v, ok := ht.Get(5)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(v.IsNull(), convey.ShouldBeTrue)
		convey.So(ht.ContainsKey(5), convey.ShouldBeTrue)
		convey.So(ht.ContainsValue(NullValue()), convey.ShouldBeTrue)
		convey.So(ht.ContainsValue(SomeValue(0)), convey.ShouldBeFalse)

		_, ok = ht.Get(6)
		convey.So(ok, convey.ShouldBeFalse)
		convey.So(ht.String(), convey.ShouldEqual, "{5=null}")
	})

	convey.Convey("negative and extreme keys", t, func() {
		ht := NewDefaultIntLongHashMap()
		for _, k := range []int32{-1, math.MinInt32, math.MaxInt32, 0} {
			ht.Put(k, SomeValue(int64(k)*2))
		}
		for _, k := range []int32{-1, math.MinInt32, math.MaxInt32, 0} {
			v, ok := ht.Get(k)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v.Int64(), convey.ShouldEqual, int64(k)*2)
		}
	})
}

func TestPopulateRandom(t *testing.T) {
	r := rand.New(rand.NewSource(20221014))
	ht := newTestMap(t, 2, 0.5)
	expected := make(map[int32]Value)
	for i := 0; i < 1000; i++ {
		k := int32(r.Uint32())
		v := SomeValue(r.Int63())
		if i%10 == 0 {
			v = NullValue()
		}
		_, existed := ht.Put(k, v)
		_, had := expected[k]
		require.Equal(t, had, existed)
		expected[k] = v
	}

	require.Equal(t, len(expected), ht.Len())
	require.True(t, isPowerOfTwo(ht.Capacity()))
	require.LessOrEqual(t, ht.Len(), ht.Stats().Threshold)
	for k, want := range expected {
		got, ok := ht.Get(k)
		require.True(t, ok)
		require.True(t, want.Equal(got), "key %d want %v got %v", k, want, got)
	}
	require.True(t, ht.Equal(mapView(expected)))

	keys, values := ht.Keys(), ht.Values()
	require.Len(t, keys, len(expected))
	for i := range keys {
		require.True(t, expected[keys[i]].Equal(values[i]))
	}
}

func TestLoadFactorAboveOne(t *testing.T) {
	ht := newTestMap(t, 4, 2.0)
	for k := int32(0); k < 4; k++ {
		ht.Put(k, SomeValue(int64(k)))
	}
	require.Equal(t, 4, ht.Capacity())

	// the table is full, the fifth key forces a grow
	ht.Put(4, SomeValue(4))
	require.Equal(t, 8, ht.Capacity())
	for k := int32(0); k <= 4; k++ {
		v, ok := ht.Get(k)
		require.True(t, ok)
		require.Equal(t, int64(k), v.Int64())
	}
}

func TestResizeMetrics(t *testing.T) {
	before := testutil.ToFloat64(v2.HashTableResizeCounter)
	ht := newTestMap(t, 1, 0.75)
	ht.Put(1, SomeValue(1))
	ht.Put(2, SomeValue(2))
	ht.Put(3, SomeValue(3))
	ht.Put(4, SomeValue(4))
	// 1 -> 2 -> 4 -> 8
	require.Equal(t, 8, ht.Capacity())
	require.Equal(t, before+3, testutil.ToFloat64(v2.HashTableResizeCounter))
}

func TestEagerAllocation(t *testing.T) {
	ht := newTestMap(t, 8, 0.75, WithEagerAllocation(true))
	stats := ht.Stats()
	require.True(t, stats.Allocated)
	require.Equal(t, 8, stats.Capacity)
	require.Equal(t, 6, stats.Threshold)
	require.Equal(t, 0, stats.ModCount)
}

func TestRefKeys(t *testing.T) {
	ht := NewDefaultIntLongHashMap()

	_, _, err := ht.PutRef(nil, SomeValue(1))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))
	require.Equal(t, 0, ht.Len())
	require.False(t, ht.Stats().Allocated)

	_, _, err = ht.GetRef(nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))

	k := int32(9)
	_, existed, err := ht.PutRef(&k, SomeValue(90))
	require.NoError(t, err)
	require.False(t, existed)
	v, ok, err := ht.GetRef(&k)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(90), v.Int64())
}

func TestClear(t *testing.T) {
	convey.Convey("clear on an unallocated map does nothing", t, func() {
		ht := NewDefaultIntLongHashMap()
		ht.Clear()
		convey.So(ht.Len(), convey.ShouldEqual, 0)
		convey.So(ht.Stats().ModCount, convey.ShouldEqual, 0)
		convey.So(ht.Stats().Allocated, convey.ShouldBeFalse)
	})

	convey.Convey("clear keeps capacity and is idempotent", t, func() {
		ht := NewDefaultIntLongHashMap()
		for k := int32(0); k < 100; k++ {
			ht.Put(k, SomeValue(int64(k)))
		}
		capacity := ht.Capacity()
		ht.Clear()
		convey.So(ht.Len(), convey.ShouldEqual, 0)
		convey.So(ht.Capacity(), convey.ShouldEqual, capacity)
		convey.So(ht.ContainsKey(1), convey.ShouldBeFalse)
		convey.So(ht.String(), convey.ShouldEqual, "{}")

		modCount := ht.Stats().ModCount
		ht.Clear()
		convey.So(ht.Stats().ModCount, convey.ShouldEqual, modCount)

		ht.Put(1, SomeValue(1))
		convey.So(ht.Len(), convey.ShouldEqual, 1)
	})
}

func TestEqualAndHashCode(t *testing.T) {
	keys := []int32{3, -7, 1 << 20, 42, 0, 17, 1}
	a := newTestMap(t, 2, 0.5)
	b := newTestMap(t, 64, 0.75)
	for i, k := range keys {
		a.Put(k, SomeValue(int64(k)*10))
		rk := keys[len(keys)-1-i]
		b.Put(rk, SomeValue(int64(rk)*10))
	}
	a.Put(99, NullValue())
	b.Put(99, NullValue())

	require.NotEqual(t, a.Capacity(), b.Capacity())
	require.True(t, a.Equal(b))
	require.True(t, b.Equal(a))
	require.True(t, a.Equal(a))
	require.Equal(t, a.HashCode(), b.HashCode())

	b.Put(99, SomeValue(0))
	require.False(t, a.Equal(b))

	var nilMap *IntLongHashMap
	require.False(t, a.Equal(nilMap))
	require.False(t, a.Equal(nil))

	c := NewDefaultIntLongHashMap()
	c.Put(3, SomeValue(30))
	require.False(t, a.Equal(c))

	// a nil builtin map still answers Len and Get
	var nilView mapView
	require.True(t, NewDefaultIntLongHashMap().Equal(nilView))
	require.False(t, a.Equal(nilView))
}

func TestHashCodeValues(t *testing.T) {
	ht := NewDefaultIntLongHashMap()
	ht.Put(1, SomeValue(2))
	ht.Put(3, NullValue())
	require.Equal(t, int32((1^2)+(3^0)), ht.HashCode())

	ht = NewDefaultIntLongHashMap()
	ht.Put(0, SomeValue(1<<32))
	require.Equal(t, int32(1), ht.HashCode())

	ht = NewDefaultIntLongHashMap()
	ht.Put(5, SomeValue(-1))
	require.Equal(t, int32(5), ht.HashCode())
}

func TestString(t *testing.T) {
	ht := NewDefaultIntLongHashMap()
	ht.Put(1, SomeValue(10))
	ht.Put(2, NullValue())
	require.Equal(t, "{1=10, 2=null}", ht.String())
}

func TestWalk(t *testing.T) {
	ht := NewDefaultIntLongHashMap()
	for k := int32(0); k < 5; k++ {
		ht.Put(k, SomeValue(int64(k)))
	}
	n := 0
	ht.Walk(func(key int32, value Value) bool {
		require.Equal(t, int64(key), value.Int64())
		n++
		return n < 3
	})
	require.Equal(t, 3, n)
}

func TestIterator(t *testing.T) {
	ht := NewDefaultIntLongHashMap()
	it := ht.NewIterator()
	_, _, err := it.Next()
	require.True(t, IsEndOfIteration(err))

	for k := int32(0); k < 20; k++ {
		ht.Put(k, SomeValue(int64(k)+1))
	}
	it = ht.NewIterator()
	seen := make(map[int32]bool)
	for {
		k, v, err := it.Next()
		if IsEndOfIteration(err) {
			break
		}
		require.NoError(t, err)
		require.Equal(t, int64(k)+1, v.Int64())
		seen[k] = true
	}
	require.Len(t, seen, 20)

	it = ht.NewIterator()
	_, _, err = it.Next()
	require.NoError(t, err)
	ht.Put(0, SomeValue(0))
	_, _, err = it.Next()
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
}

func TestStatsMaxProbe(t *testing.T) {
	ht := NewDefaultIntLongHashMap()
	ht.Put(1, SomeValue(1))
	require.Equal(t, 1, ht.Stats().MaxProbe)
	// 17 shares index 1 with 1 at capacity 16
	ht.Put(17, SomeValue(17))
	stats := ht.Stats()
	require.Equal(t, 2, stats.MaxProbe)
	require.Equal(t, 2, stats.Size)
	require.Equal(t, 12, stats.Threshold)
	require.Contains(t, stats.String(), "max-probe=2")
}

func TestRoundUpToPowerOfTwo(t *testing.T) {
	for _, c := range []struct{ in, want int }{
		{1, 1}, {2, 2}, {3, 4}, {5, 8}, {8, 8}, {9, 16}, {1 << 30, 1 << 30}, {(1 << 29) + 1, 1 << 30},
	} {
		require.Equal(t, c.want, RoundUpToPowerOfTwo(c.in))
	}
	require.Equal(t, int32(0), RoundUpToPowerOfTwo(int32(1<<30)+1))
	require.Equal(t, uint8(0), RoundUpToPowerOfTwo(uint8(200)))
	require.Equal(t, uint8(128), RoundUpToPowerOfTwo(uint8(100)))
	require.Equal(t, int64(1<<40), RoundUpToPowerOfTwo(int64(1<<40)-5))
}

func TestValue(t *testing.T) {
	require.True(t, NullValue().IsNull())
	require.False(t, SomeValue(0).IsNull())
	require.False(t, SomeValue(0).Equal(NullValue()))
	require.True(t, NullValue().Equal(NullValue()))
	require.True(t, SomeValue(-3).Equal(SomeValue(-3)))
	require.Equal(t, int64(0), NullValue().Int64())
	require.Equal(t, "null", NullValue().String())
	require.Equal(t, "-3", SomeValue(-3).String())
}

func BenchmarkPut(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	keys := make([]int32, b.N)
	for i := range keys {
		keys[i] = int32(r.Uint32())
	}
	ht := NewDefaultIntLongHashMap()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ht.Put(keys[i], SomeValue(int64(i)))
	}
}

func BenchmarkGet(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	ht := NewDefaultIntLongHashMap()
	for i := 0; i < 1<<16; i++ {
		ht.Put(int32(r.Uint32()), SomeValue(int64(i)))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ht.Get(int32(r.Uint32()))
	}
}

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
	"fmt"
	"strconv"
	"strings"
)

func (ht *IntLongHashMap) ContainsKey(key int32) bool {
	_, ok := ht.Get(key)
	return ok
}

// ContainsValue scans every slot. A null value matches entries mapped to null.
func (ht *IntLongHashMap) ContainsValue(value Value) bool {
	for i := range ht.slots {
		if ht.slots[i].occupied && ht.slots[i].value.Equal(value) {
			return true
		}
	}
	return false
}

// Keys returns a copy of the keys in slot order.
func (ht *IntLongHashMap) Keys() []int32 {
	keys := make([]int32, 0, ht.size)
	for i := range ht.slots {
		if ht.slots[i].occupied {
			keys = append(keys, ht.slots[i].key)
		}
	}
	return keys
}

// Values returns a copy of the values in slot order, aligned with Keys.
func (ht *IntLongHashMap) Values() []Value {
	values := make([]Value, 0, ht.size)
	for i := range ht.slots {
		if ht.slots[i].occupied {
			values = append(values, ht.slots[i].value)
		}
	}
	return values
}

// Walk calls fn for every entry in slot order until fn returns false.
// fn must not modify the map.
func (ht *IntLongHashMap) Walk(fn func(key int32, value Value) bool) {
	for i := range ht.slots {
		if ht.slots[i].occupied {
			if !fn(ht.slots[i].key, ht.slots[i].value) {
				return
			}
		}
	}
}

// Equal reports whether other holds exactly the same mappings, null values
// included. Capacity and insertion order do not matter.
// A nil other and a nil *IntLongHashMap are unequal to any map. Any other
// implementation must answer Len and Get even when it is a typed nil.
func (ht *IntLongHashMap) Equal(other ReadOnlyIntLongMap) bool {
	if other == nil {
		return false
	}
	if o, ok := other.(*IntLongHashMap); ok {
		if o == nil {
			return false
		}
		if o == ht {
			return true
		}
	}
	if ht.size != other.Len() {
		return false
	}
	for i := range ht.slots {
		slot := &ht.slots[i]
		if !slot.occupied {
			continue
		}
		v, ok := other.Get(slot.key)
		if !ok || !v.Equal(slot.value) {
			return false
		}
	}
	return true
}

// HashCode is the wrapping sum of key ^ hash(value) over all entries, so it
// is independent of slot order.
func (ht *IntLongHashMap) HashCode() int32 {
	var h int32
	for i := range ht.slots {
		if ht.slots[i].occupied {
			h += ht.slots[i].key ^ ht.slots[i].value.hash()
		}
	}
	return h
}

// String renders the map as {k=v, k=v} in slot order.
func (ht *IntLongHashMap) String() string {
	if ht.size == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for i := range ht.slots {
		slot := &ht.slots[i]
		if !slot.occupied {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(strconv.FormatInt(int64(slot.key), 10))
		sb.WriteByte('=')
		sb.WriteString(slot.value.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

type IntLongHashMapStats struct {
	Capacity   int
	Size       int
	LoadFactor float64
	Threshold  int
	ModCount   int
	Allocated  bool
	// MaxProbe is the longest probe run, in slots visited, of any stored key.
	MaxProbe int
}

func (s IntLongHashMapStats) String() string {
	return fmt.Sprintf("capacity=%d size=%d load-factor=%g threshold=%d mod-count=%d allocated=%t max-probe=%d",
		s.Capacity, s.Size, s.LoadFactor, s.Threshold, s.ModCount, s.Allocated, s.MaxProbe)
}

func (ht *IntLongHashMap) Stats() IntLongHashMapStats {
	stats := IntLongHashMapStats{
		Capacity:   ht.capacity,
		Size:       ht.size,
		LoadFactor: ht.loadFactor,
		Threshold:  ht.threshold(),
		ModCount:   ht.modCount,
		Allocated:  ht.slots != nil,
	}
	for i := range ht.slots {
		if !ht.slots[i].occupied {
			continue
		}
		if _, _, probes := ht.findSlot(ht.slots[i].key); probes > stats.MaxProbe {
			stats.MaxProbe = probes
		}
	}
	return stats
}

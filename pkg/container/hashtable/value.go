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

import "strconv"

// Value is an int64 that may be null. A null Value is still a mapping:
// callers learn whether a key is mapped at all from the bool returned
// next to it, never from the Value itself.
type Value struct {
	v     int64
	valid bool
}

func SomeValue(v int64) Value {
	return Value{v: v, valid: true}
}

func NullValue() Value {
	return Value{}
}

func (v Value) IsNull() bool {
	return !v.valid
}

// Int64 returns the stored integer, 0 for a null Value.
func (v Value) Int64() int64 {
	return v.v
}

func (v Value) Equal(o Value) bool {
	if v.valid != o.valid {
		return false
	}
	return !v.valid || v.v == o.v
}

func (v Value) hash() int32 {
	if !v.valid {
		return 0
	}
	u := uint64(v.v)
	return int32(u ^ (u >> 32))
}

func (v Value) String() string {
	if !v.valid {
		return "null"
	}
	return strconv.FormatInt(v.v, 10)
}

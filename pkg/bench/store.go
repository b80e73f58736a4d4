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
	"github.com/matrixorigin/oamap/pkg/common/moerr"
	"github.com/matrixorigin/oamap/pkg/config"
	"github.com/matrixorigin/oamap/pkg/container/hashtable"
)

// Store is the map surface a benchmark trial drives.
type Store interface {
	// Name is the label used in reports and metrics.
	Name() string
	Put(key int32, value hashtable.Value)
	Get(key int32) (hashtable.Value, bool)
	Len() int
}

type OpenAddressingStore struct {
	m *hashtable.IntLongHashMap
}

func NewOpenAddressingStore(cfg *config.Config) (*OpenAddressingStore, error) {
	m, err := cfg.NewHashMap()
	if err != nil {
		return nil, err
	}
	return &OpenAddressingStore{m: m}, nil
}

func (s *OpenAddressingStore) Name() string { return "open addressing" }

func (s *OpenAddressingStore) Put(key int32, value hashtable.Value) { s.m.Put(key, value) }

func (s *OpenAddressingStore) Get(key int32) (hashtable.Value, bool) { return s.m.Get(key) }

func (s *OpenAddressingStore) Len() int { return s.m.Len() }

// Map exposes the underlying table for stats.
func (s *OpenAddressingStore) Map() *hashtable.IntLongHashMap { return s.m }

// BuiltinStore is the reference store over the runtime map.
type BuiltinStore struct {
	m map[int32]hashtable.Value
}

func NewBuiltinStore() *BuiltinStore {
	return &BuiltinStore{m: make(map[int32]hashtable.Value)}
}

func (s *BuiltinStore) Name() string { return "builtin" }

func (s *BuiltinStore) Put(key int32, value hashtable.Value) { s.m[key] = value }

func (s *BuiltinStore) Get(key int32) (hashtable.Value, bool) {
	v, ok := s.m[key]
	return v, ok
}

func (s *BuiltinStore) Len() int { return len(s.m) }

// newStore builds the store a [bench] stores entry names.
func newStore(kind string, cfg *config.Config) (Store, error) {
	switch kind {
	case config.StoreOpenAddressing:
		s, err := NewOpenAddressingStore(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreBuiltin:
		return NewBuiltinStore(), nil
	default:
		return nil, moerr.NewInvalidArgNoCtx("store", kind)
	}
}

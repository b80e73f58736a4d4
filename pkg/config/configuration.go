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

package config

import (
	"context"
	"math"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/oamap/pkg/common/moerr"
	"github.com/matrixorigin/oamap/pkg/container/hashtable"
	"github.com/matrixorigin/oamap/pkg/logutil"
)

const (
	StoreOpenAddressing = "open-addressing"
	StoreBuiltin        = "builtin"
)

// HashMapParameters of the open addressing map
type HashMapParameters struct {
	//default is 16. rounded up to a power of two
	InitialCapacity int `toml:"initial-capacity"`

	//default is 0.75. the map doubles when size exceeds capacity * load-factor
	LoadFactor float64 `toml:"load-factor"`

	//default is 16. used when the table is allocated with zero capacity
	DefaultCapacity int `toml:"default-capacity"`

	//default is 31. must be odd
	ProbeCoefficient int `toml:"probe-coefficient"`

	//default is false. allocate slots at construction
	EagerAllocation bool `toml:"eager-allocation"`
}

// BenchParameters of the put/get benchmark
type BenchParameters struct {
	//default is 1000000. puts per trial, followed by as many gets
	Attempts int `toml:"attempts"`

	//default is 1. seed of the key/value generator
	Seed uint64 `toml:"seed"`

	//default is 1. independent trials per store
	Trials int `toml:"trials"`

	//default is 1. goroutines running trials
	Parallelism int `toml:"parallelism"`

	//default is [open-addressing, builtin]
	Stores []string `toml:"stores"`
}

type Config struct {
	HashMap HashMapParameters `toml:"hashmap"`
	Bench   BenchParameters   `toml:"bench"`
	Log     logutil.LogConfig `toml:"log"`
}

func NewDefault() *Config {
	return &Config{
		HashMap: HashMapParameters{
			InitialCapacity:  16,
			LoadFactor:       0.75,
			DefaultCapacity:  16,
			ProbeCoefficient: 31,
		},
		Bench: BenchParameters{
			Attempts:    1000000,
			Seed:        1,
			Trials:      1,
			Parallelism: 1,
			Stores:      []string{StoreOpenAddressing, StoreBuiltin},
		},
		Log: logutil.LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Decode overlays the toml document data on the defaults.
func Decode(data string) (*Config, error) {
	cfg := NewDefault()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, moerr.NewBadConfig(context.Background(), "%v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile overlays the toml file at path on the defaults.
func LoadFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, moerr.NewFileNotFound(context.Background(), path)
		}
		return nil, moerr.ConvertGoError(context.Background(), err)
	}
	cfg := NewDefault()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, moerr.NewBadConfig(context.Background(), "%s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	ctx := context.Background()
	h := &c.HashMap
	if h.InitialCapacity < 1 || h.InitialCapacity > hashtable.MaximumCapacity {
		return moerr.NewBadConfig(ctx, "hashmap.initial-capacity %d out of range [1, %d]", h.InitialCapacity, hashtable.MaximumCapacity)
	}
	if !(h.LoadFactor > 0) || math.IsInf(h.LoadFactor, 0) {
		return moerr.NewBadConfig(ctx, "hashmap.load-factor %v must be a positive number", h.LoadFactor)
	}
	if h.DefaultCapacity < 1 || h.DefaultCapacity > hashtable.MaximumCapacity {
		return moerr.NewBadConfig(ctx, "hashmap.default-capacity %d out of range [1, %d]", h.DefaultCapacity, hashtable.MaximumCapacity)
	}
	if h.ProbeCoefficient <= 0 || h.ProbeCoefficient%2 == 0 {
		return moerr.NewBadConfig(ctx, "hashmap.probe-coefficient %d must be odd and positive", h.ProbeCoefficient)
	}

	b := &c.Bench
	if b.Attempts < 0 {
		return moerr.NewBadConfig(ctx, "bench.attempts %d is negative", b.Attempts)
	}
	if b.Trials < 1 {
		return moerr.NewBadConfig(ctx, "bench.trials %d must be at least 1", b.Trials)
	}
	if b.Parallelism < 1 {
		return moerr.NewBadConfig(ctx, "bench.parallelism %d must be at least 1", b.Parallelism)
	}
	if len(b.Stores) == 0 {
		return moerr.NewBadConfig(ctx, "bench.stores is empty")
	}
	for _, s := range b.Stores {
		if s != StoreOpenAddressing && s != StoreBuiltin {
			return moerr.NewBadConfig(ctx, "bench.stores has unknown store %q", s)
		}
	}

	switch c.Log.Format {
	case "", "json", "console":
	default:
		return moerr.NewBadConfig(ctx, "log.format %q is not json or console", c.Log.Format)
	}
	return nil
}

// HashMapOptions turns the [hashmap] section into map options.
func (c *Config) HashMapOptions() []hashtable.Option {
	return []hashtable.Option{
		hashtable.WithDefaultCapacity(c.HashMap.DefaultCapacity),
		hashtable.WithProbeCoefficient(c.HashMap.ProbeCoefficient),
		hashtable.WithEagerAllocation(c.HashMap.EagerAllocation),
	}
}

// NewHashMap builds an empty map from the [hashmap] section.
func (c *Config) NewHashMap() (*hashtable.IntLongHashMap, error) {
	return hashtable.NewIntLongHashMap(c.HashMap.InitialCapacity, c.HashMap.LoadFactor, c.HashMapOptions()...)
}

//
//
// Tencent is pleased to support the open source community by making tRPC available.
//
// Copyright (C) 2023 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

package counter

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash"

	"trpc.group/trpc-go/trpc-counter/log"
)

const shardCount = 32

// Registry maps names to lazily created counters. Lookups of existing counters only take a
// read lock on one shard.
type Registry struct {
	shards [shardCount]shard
}

type shard struct {
	mu       sync.RWMutex
	counters map[string]*Counter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].counters = make(map[string]*Counter)
	}
	return r
}

// DefaultRegistry is the process-wide registry used by the package functions.
var DefaultRegistry = NewRegistry()

func (r *Registry) shard(name string) *shard {
	return &r.shards[xxhash.Sum64String(name)%shardCount]
}

// Get returns the counter with the given name.
func (r *Registry) Get(name string) (*Counter, bool) {
	s := r.shard(name)
	s.mu.RLock()
	c, ok := s.counters[name]
	s.mu.RUnlock()
	return c, ok
}

// GetOrCreate returns the counter with the given name, creating and initializing it for
// metrics on first use. opt only applies when the counter is created.
func (r *Registry) GetOrCreate(name string, opt ...Option) *Counter {
	if c, ok := r.Get(name); ok {
		return c
	}
	s := r.shard(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.counters[name]; ok {
		return c
	}
	c := New(name, opt...)
	c.Init()
	s.counters[name] = c
	return c
}

// Range calls f for every counter until f returns false. Counters created during Range may
// or may not be visited.
func (r *Registry) Range(f func(*Counter) bool) {
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		cs := make([]*Counter, 0, len(s.counters))
		for _, c := range s.counters {
			cs = append(cs, c)
		}
		s.mu.RUnlock()
		for _, c := range cs {
			if !f(c) {
				return
			}
		}
	}
}

// Len returns the number of counters.
func (r *Registry) Len() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		n += len(s.counters)
		s.mu.RUnlock()
	}
	return n
}

// Snapshot returns the stats of all counters ordered by name.
func (r *Registry) Snapshot() []Stat {
	var stats []Stat
	r.Range(func(c *Counter) bool {
		stats = append(stats, c.Snapshot())
		return true
	})
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// GetOrCreate returns the named counter of the DefaultRegistry.
func GetOrCreate(name string, opt ...Option) *Counter {
	return DefaultRegistry.GetOrCreate(name, opt...)
}

// IncrNewCounter records amount on the named counter of the DefaultRegistry, creating it with
// logRate on first use. A zero logRate resolves the default.
func IncrNewCounter(name string, amount uint64, level log.Level, logRate uint64) {
	DefaultRegistry.GetOrCreate(name, WithLogRate(logRate)).Record(level, amount)
}

// IncrNewCounterInfo records amount at info level with the default log rate.
func IncrNewCounterInfo(name string, amount uint64) {
	IncrNewCounter(name, amount, log.LevelInfo, 0)
}

// IncrNewCounterInfoWithRate records amount at info level, logging every logRate calls.
func IncrNewCounterInfoWithRate(name string, amount, logRate uint64) {
	IncrNewCounter(name, amount, log.LevelInfo, logRate)
}

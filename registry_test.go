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

package counter_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	counter "trpc.group/trpc-go/trpc-counter"
	"trpc.group/trpc-go/trpc-counter/internal/env"
	"trpc.group/trpc-go/trpc-counter/log"
	"trpc.group/trpc-go/trpc-counter/metrics"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	r := counter.NewRegistry()
	_, ok := r.Get("a")
	assert.False(t, ok)

	a := r.GetOrCreate("a", counter.WithLogRate(5))
	require.NotNil(t, a)
	require.NotNil(t, a.Point(), "registry counters are initialized")
	assert.Equal(t, "counter-a", a.Point().Name)

	// Options only apply on creation.
	again := r.GetOrCreate("a", counter.WithLogRate(9))
	assert.Same(t, a, again)
	assert.Equal(t, uint64(5), again.LogRate())

	got, ok := r.Get("a")
	assert.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ConcurrentGetOrCreate(t *testing.T) {
	r := counter.NewRegistry()
	const workers = 16
	got := make([]*counter.Counter, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			got[i] = r.GetOrCreate("shared", counter.WithLogRate(1000))
			got[i].Record(log.LevelDebug, 1)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, c := range got {
		assert.Same(t, got[0], c)
	}
	assert.Equal(t, uint64(workers), got[0].Total())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SnapshotAndRange(t *testing.T) {
	r := counter.NewRegistry()
	for i, name := range []string{"c", "a", "b"} {
		r.GetOrCreate(name, counter.WithLogRate(1000)).Record(log.LevelDebug, uint64(i+1))
	}
	want := []counter.Stat{
		{Name: "a", Total: 2, Calls: 1, LastSubmitted: 2, LogRate: 1000},
		{Name: "b", Total: 3, Calls: 1, LastSubmitted: 3, LogRate: 1000},
		{Name: "c", Total: 1, Calls: 1, LastSubmitted: 1, LogRate: 1000},
	}
	if diff := cmp.Diff(want, r.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}

	var visited int
	r.Range(func(*counter.Counter) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)

	assert.Empty(t, counter.NewRegistry().Snapshot())
}

func TestIncrNewCounter(t *testing.T) {
	t.Setenv(env.DefaultLogRate, "")
	sink := metrics.NewConsoleSinkWithWriter(nil)
	metrics.RegisterSink(sink)
	defer metrics.UnregisterSink(sink.Name())

	name := fmt.Sprintf("incr-%s", t.Name())
	for i := 0; i < 3; i++ {
		counter.IncrNewCounterInfo(name, 2)
	}
	c, ok := counter.DefaultRegistry.Get(name)
	require.True(t, ok)
	assert.Same(t, c, counter.GetOrCreate(name))
	assert.Equal(t, uint64(6), c.Total())
	assert.Equal(t, uint64(3), c.Calls())
	assert.Equal(t, counter.DefaultLogRate, c.LogRate())
	assert.Equal(t, int64(6), sink.Value("counter-"+name, "count"))

	rated := name + "-rated"
	counter.IncrNewCounterInfoWithRate(rated, 1, 2)
	counter.IncrNewCounter(rated, 4, log.LevelWarn, 7)
	c, ok = counter.DefaultRegistry.Get(rated)
	require.True(t, ok)
	assert.Equal(t, uint64(2), c.LogRate())
	assert.Equal(t, uint64(5), c.Total())
	assert.Equal(t, int64(5), sink.Value("counter-"+rated, "count"))
}

func ExampleIncrNewCounterInfo() {
	counter.IncrNewCounterInfo("example.requests", 1)
	c, _ := counter.DefaultRegistry.Get("example.requests")
	fmt.Println(c.Total(), c.Calls())
	// Output: 1 1
}

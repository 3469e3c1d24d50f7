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
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"trpc.group/trpc-go/trpc-counter/log"
	"trpc.group/trpc-go/trpc-counter/metrics"
	"trpc.group/trpc-go/trpc-counter/metrics/mockmetrics"
)

func observedLogger(level zapcore.Level) (log.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return log.NewZapLogWithCore(core, zap.NewAtomicLevelAt(level)), logs
}

// deltaRecorder collects every reported count delta.
type deltaRecorder struct {
	mu     sync.Mutex
	deltas []int64
	names  []string
}

func (d *deltaRecorder) Report(p *metrics.Point) error {
	f, _ := p.Field("count")
	d.mu.Lock()
	d.deltas = append(d.deltas, f.Value)
	d.names = append(d.names, p.Name)
	d.mu.Unlock()
	return nil
}

func (d *deltaRecorder) sum() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var s int64
	for _, v := range d.deltas {
		s += v
	}
	return s
}

func TestCounter(t *testing.T) {
	logger, _ := observedLogger(zapcore.InfoLevel)
	c := New("test", WithLogRate(1000), WithLogger(logger))

	c.Record(log.LevelInfo, 1)
	assert.Equal(t, uint64(1), c.Total())
	assert.Equal(t, uint64(1), c.Calls())
	assert.Equal(t, uint64(1000), c.LogRate())
	assert.Equal(t, uint64(1), c.LastSubmitted())
	assert.Equal(t, "test", c.Name())

	for i := 0; i < 199; i++ {
		c.Record(log.LevelInfo, 2)
	}
	assert.Equal(t, uint64(399), c.Total())
	assert.Equal(t, uint64(200), c.Calls())
	assert.Equal(t, uint64(399), c.LastSubmitted())

	c.Record(log.LevelInfo, 2)
	assert.Equal(t, uint64(401), c.LastSubmitted())
	assert.Equal(t, Stat{Name: "test", Total: 401, Calls: 201, LastSubmitted: 401, LogRate: 1000}, c.Snapshot())
}

func TestCounter_SubmitsDeltas(t *testing.T) {
	rec := &deltaRecorder{}
	logger, _ := observedLogger(zapcore.InfoLevel)
	c := New("deltas", WithLogRate(1000), WithLogger(logger), WithReporter(rec))
	c.Init()

	c.Record(log.LevelInfo, 1)
	for i := 0; i < 199; i++ {
		c.Record(log.LevelInfo, 2)
	}
	require.Len(t, rec.deltas, 200)
	assert.Equal(t, int64(1), rec.deltas[0])
	assert.Equal(t, int64(2), rec.deltas[199])
	assert.Equal(t, int64(399), rec.sum())
	assert.Equal(t, "counter-deltas", rec.names[0])

	// A zero amount leaves nothing to submit.
	c.Record(log.LevelInfo, 0)
	assert.Len(t, rec.deltas, 200)
	assert.Equal(t, uint64(201), c.Calls())

	// The template point is never touched by submissions.
	f, ok := c.Point().Field("count")
	require.True(t, ok)
	assert.Equal(t, int64(0), f.Value)
}

func TestCounter_DeltaSaturates(t *testing.T) {
	rec := &deltaRecorder{}
	logger, _ := observedLogger(zapcore.InfoLevel)
	c := New("huge", WithLogRate(1000), WithLogger(logger), WithReporter(rec))
	c.Init()

	c.Record(log.LevelInfo, math.MaxUint64)
	require.Len(t, rec.deltas, 1)
	assert.Equal(t, int64(math.MaxInt64), rec.deltas[0])
	assert.Equal(t, uint64(math.MaxUint64), c.LastSubmitted())

	assert.Equal(t, int64(5), deltaValue(5))
	assert.Equal(t, int64(math.MaxInt64), deltaValue(math.MaxInt64))
	assert.Equal(t, int64(math.MaxInt64), deltaValue(math.MaxInt64+1))
}

func TestCounter_NoPointNoSubmission(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := mockmetrics.NewMockReporter(ctrl)
	r.EXPECT().Report(gomock.Any()).Times(0)
	logger, _ := observedLogger(zapcore.InfoLevel)
	c := New("uninit", WithLogRate(10), WithReporter(r), WithLogger(logger))
	c.Record(log.LevelInfo, 5)
	assert.Nil(t, c.Point())
	assert.Equal(t, uint64(5), c.LastSubmitted())
}

func TestCounter_ReportErrorIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := mockmetrics.NewMockReporter(ctrl)
	r.EXPECT().Report(gomock.Any()).DoAndReturn(func(p *metrics.Point) error {
		f, _ := p.Field("count")
		assert.Equal(t, int64(3), f.Value)
		assert.Equal(t, time.Unix(100, 0), p.Timestamp)
		return errors.New("backend down")
	})
	logger, logs := observedLogger(zapcore.DebugLevel)
	c := New("failing",
		WithLogRate(10),
		WithReporter(r),
		WithLogger(logger),
		WithClock(func() time.Time { return time.Unix(100, 0) }))
	c.Init()
	c.Record(log.LevelInfo, 3)

	assert.Equal(t, uint64(3), c.LastSubmitted())
	require.Equal(t, 1, logs.FilterMessageSnippet("backend down").Len())
}

func TestCounter_LogSampling(t *testing.T) {
	logger, logs := observedLogger(zapcore.InfoLevel)
	c := New("sampled",
		WithLogRate(3),
		WithLogger(logger),
		WithReporter(&deltaRecorder{}),
		WithClock(func() time.Time { return time.UnixMilli(1700000000123) }))

	for i := 1; i <= 7; i++ {
		c.Record(log.LevelInfo, uint64(i))
	}
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t,
		`COUNTER:{"name":"sampled","counts":6,"samples":3,"now":1700000000123,"events":3}`,
		entries[0].Message)
	assert.Equal(t,
		`COUNTER:{"name":"sampled","counts":21,"samples":6,"now":1700000000123,"events":6}`,
		entries[1].Message)

	// Disabled levels are skipped entirely.
	for i := 0; i < 3; i++ {
		c.Record(log.LevelDebug, 1)
	}
	assert.Equal(t, 2, logs.Len())

	for i := 0; i < 3; i++ {
		c.Record(log.LevelWarn, 1)
	}
	require.Equal(t, 3, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[2].Level)
}

func TestCounter_InitIdempotent(t *testing.T) {
	c := New("init")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Init()
		}()
	}
	wg.Wait()
	c.Init()

	p := c.Point()
	require.NotNil(t, p)
	assert.Equal(t, "counter-init", p.Name)
	require.Len(t, p.Fields, 1)
	assert.Equal(t, metrics.Field{Name: "count", Value: 0, Policy: metrics.PolicySUM}, p.Fields[0])
}

func TestCounter_Concurrent(t *testing.T) {
	const (
		goroutines = 8
		times      = 2000
	)
	var reported atomic.Int64
	logger, _ := observedLogger(zapcore.ErrorLevel)
	c := New("concurrent",
		WithLogRate(100),
		WithLogger(logger),
		WithReporter(metrics.ReporterFunc(func(p *metrics.Point) error {
			f, _ := p.Field("count")
			reported.Add(f.Value)
			return nil
		})))
	c.Init()

	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			for j := 0; j < times; j++ {
				c.Record(log.LevelInfo, 1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	want := uint64(goroutines * times)
	assert.Equal(t, want, c.Total())
	assert.Equal(t, want, c.Calls())
	assert.Equal(t, want, c.LastSubmitted())
	assert.Equal(t, int64(want), reported.Load())
}

func BenchmarkCounter_Record(b *testing.B) {
	logger, _ := observedLogger(zapcore.ErrorLevel)
	c := New("bench", WithLogger(logger), WithReporter(metrics.ReporterFunc(func(*metrics.Point) error {
		return nil
	})))
	c.Init()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.Record(log.LevelInfo, 1)
		}
	})
}

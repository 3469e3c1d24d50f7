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

// Package counter provides named in-process event counters. A Counter accumulates event
// counts, emits a sampled log line every log-rate calls and submits the delta since its last
// submission to the metrics sinks.
//
// The usual entry point is the process-wide registry:
//
//	counter.IncrNewCounterInfo("req.total", 1)
//
// which creates "req.total" on first use and records on every call.
package counter

import (
	"math"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/atomic"

	"trpc.group/trpc-go/trpc-counter/log"
	"trpc.group/trpc-go/trpc-counter/metrics"
)

const (
	pointPrefix = "counter-"
	countField  = "count"
)

// Counter is a named accumulator. All methods are safe for concurrent use without external
// locking. Fields are updated independently, so a reader may observe calls updated while
// total is not yet, or the other way around.
type Counter struct {
	name string

	total         atomic.Uint64
	calls         atomic.Uint64
	lastSubmitted atomic.Uint64
	logRate       atomic.Uint64

	initOnce sync.Once
	point    atomic.Value // *metrics.Point, set by Init

	logger   log.Logger
	reporter metrics.Reporter
	now      func() time.Time
}

// New creates a counter used for counting and logging only. Call Init to also submit
// deltas to the metrics sinks.
func New(name string, opt ...Option) *Counter {
	opts := &Options{
		Reporter: metrics.DefaultReporter,
		Now:      time.Now,
	}
	for _, o := range opt {
		o(opts)
	}
	c := &Counter{
		name:     name,
		logger:   opts.Logger,
		reporter: opts.Reporter,
		now:      opts.Now,
	}
	c.logRate.Store(opts.LogRate)
	return c
}

// Init creates the metrics point "counter-<name>" with a zero count field. Only the first
// call has an effect.
func (c *Counter) Init() {
	c.initOnce.Do(func() {
		p := metrics.NewPoint(pointPrefix+c.name).AddField(countField, 0, metrics.PolicySUM)
		c.point.Store(p)
	})
}

// Incr records amount events at info level.
func (c *Counter) Incr(amount uint64) {
	c.Record(log.LevelInfo, amount)
}

// Record adds amount events. Every log-rate calls a line is logged at level if the logger
// accepts it, then the delta since the last submission is reported once Init has been called.
func (c *Counter) Record(level log.Level, amount uint64) {
	total := c.total.Add(amount)
	calls := c.calls.Inc()

	rate := c.logRate.Load()
	if rate == 0 {
		rate = defaultLogRate()
		c.logRate.Store(rate)
	}
	if calls%rate == 0 {
		if l := c.getLogger(); l.Enabled(level) {
			c.logLine(l, level, total, calls, amount)
		}
	}
	c.submit()
}

type logLine struct {
	Name    string `json:"name"`
	Counts  uint64 `json:"counts"`
	Samples uint64 `json:"samples"`
	Now     int64  `json:"now"`
	Events  uint64 `json:"events"`
}

func (c *Counter) logLine(l log.Logger, level log.Level, total, calls, amount uint64) {
	buf, err := jsoniter.ConfigFastest.Marshal(logLine{
		Name:    c.name,
		Counts:  total,
		Samples: calls,
		Now:     c.now().UnixMilli(),
		Events:  amount,
	})
	if err != nil {
		return
	}
	log.Logf(l, level, "COUNTER:%s", buf)
}

// submit moves lastSubmitted up to the current total. The goroutine whose CAS succeeds owns
// the window (last, cur] and is the only one reporting it, so every event is reported in
// exactly one delta. A failed CAS retries with fresh values until nothing is left.
func (c *Counter) submit() {
	for {
		last := c.lastSubmitted.Load()
		cur := c.total.Load()
		if cur <= last {
			return
		}
		if !c.lastSubmitted.CAS(last, cur) {
			continue
		}
		p := c.Point()
		if p == nil {
			return
		}
		p.SetField(countField, deltaValue(cur-last))
		p.Timestamp = c.now()
		if err := c.reporter.Report(p); err != nil {
			c.getLogger().Debugf("counter %s: report delta %d: %v", c.name, cur-last, err)
		}
		return
	}
}

// deltaValue converts a window size to a field value, saturating at math.MaxInt64.
func deltaValue(d uint64) int64 {
	if d > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(d)
}

func (c *Counter) getLogger() log.Logger {
	if c.logger != nil {
		return c.logger
	}
	return log.GetDefaultLogger()
}

// Name returns the counter name.
func (c *Counter) Name() string {
	return c.name
}

// Total returns the sum of all recorded amounts.
func (c *Counter) Total() uint64 {
	return c.total.Load()
}

// Calls returns the number of Record calls.
func (c *Counter) Calls() uint64 {
	return c.calls.Load()
}

// LastSubmitted returns the total as of the last delta submission.
func (c *Counter) LastSubmitted() uint64 {
	return c.lastSubmitted.Load()
}

// LogRate returns the number of calls between two log lines, 0 while unresolved.
func (c *Counter) LogRate() uint64 {
	return c.logRate.Load()
}

// Point returns a copy of the metrics point, nil before Init.
func (c *Counter) Point() *metrics.Point {
	p, _ := c.point.Load().(*metrics.Point)
	return p.Clone()
}

// Stat is a point-in-time view of a counter.
type Stat struct {
	Name          string `json:"name"`
	Total         uint64 `json:"total"`
	Calls         uint64 `json:"calls"`
	LastSubmitted uint64 `json:"last_submitted"`
	LogRate       uint64 `json:"log_rate"`
}

// Snapshot returns the current values. Fields are loaded one by one, not as a transaction.
func (c *Counter) Snapshot() Stat {
	return Stat{
		Name:          c.name,
		Total:         c.total.Load(),
		Calls:         c.calls.Load(),
		LastSubmitted: c.lastSubmitted.Load(),
		LogRate:       c.logRate.Load(),
	}
}

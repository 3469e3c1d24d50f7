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

package metrics

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
)

//go:generate mockgen -destination=mockmetrics/metrics_mock.go -package=mockmetrics trpc.group/trpc-go/trpc-counter/metrics Sink,Reporter

// Sink defines the interface an external monitor system should provide.
type Sink interface {
	// Name returns the name of the monitor system.
	Name() string
	// Report reports a point to the monitor system.
	Report(p *Point) error
}

// Reporter submits points. Counters depend on a Reporter rather than on the sink registry.
type Reporter interface {
	Report(p *Point) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(p *Point) error

// Report calls f(p).
func (f ReporterFunc) Report(p *Point) error {
	return f(p)
}

// DefaultReporter reports to every registered sink.
var DefaultReporter Reporter = ReporterFunc(Report)

// ErrNilPoint is returned when reporting a nil point.
var ErrNilPoint = errors.New("metrics: nil point")

var (
	// sinks emits the same point to multiple external systems at the same time.
	sinksMu sync.RWMutex
	sinks   = map[string]Sink{}
)

// RegisterSink registers a Sink by its name, replacing any sink with the same name.
func RegisterSink(sink Sink) {
	sinksMu.Lock()
	sinks[sink.Name()] = sink
	sinksMu.Unlock()
}

// UnregisterSink removes the Sink with the given name.
func UnregisterSink(name string) {
	sinksMu.Lock()
	delete(sinks, name)
	sinksMu.Unlock()
}

// GetSink returns the registered Sink by name, nil if not exist.
func GetSink(name string) Sink {
	sinksMu.RLock()
	defer sinksMu.RUnlock()
	return sinks[name]
}

// Sinks returns the registered sinks ordered by name.
func Sinks() []Sink {
	sinksMu.RLock()
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		out = append(out, s)
	}
	sinksMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Report reports p to all registered sinks. Every sink is tried, failures are merged.
func Report(p *Point) error {
	if p == nil {
		return ErrNilPoint
	}
	sinksMu.RLock()
	defer sinksMu.RUnlock()
	var result error
	for name, s := range sinks {
		if err := s.Report(p); err != nil {
			result = multierror.Append(result, fmt.Errorf("sink %s: %w", name, err))
		}
	}
	return result
}

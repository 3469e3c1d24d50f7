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

	"github.com/panjf2000/ants/v2"
)

const defaultAsyncPoolSize = 8

// ErrDropped is returned when an AsyncSink has no idle worker for a point.
var ErrDropped = errors.New("metrics: async sink overloaded, point dropped")

// AsyncSink reports to the wrapped sink on a worker pool, so Report never blocks.
type AsyncSink struct {
	sink    Sink
	pool    *ants.PoolWithFunc
	onError func(p *Point, err error)
}

// AsyncOption modifies an AsyncSink.
type AsyncOption func(*AsyncSink)

// WithErrorHandler returns an AsyncOption which observes failures of the wrapped sink.
func WithErrorHandler(f func(p *Point, err error)) AsyncOption {
	return func(s *AsyncSink) {
		s.onError = f
	}
}

// NewAsyncSink wraps sink with a pool of size workers, size <= 0 uses 8.
func NewAsyncSink(sink Sink, size int, opts ...AsyncOption) (*AsyncSink, error) {
	if size <= 0 {
		size = defaultAsyncPoolSize
	}
	s := &AsyncSink{sink: sink}
	for _, o := range opts {
		o(s)
	}
	pool, err := ants.NewPoolWithFunc(size, func(arg interface{}) {
		p := arg.(*Point)
		if err := s.sink.Report(p); err != nil && s.onError != nil {
			s.onError(p, err)
		}
	}, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	s.pool = pool
	return s, nil
}

// Name returns the wrapped sink name.
func (s *AsyncSink) Name() string {
	return s.sink.Name()
}

// Report hands a copy of p to a worker.
func (s *AsyncSink) Report(p *Point) error {
	if p == nil {
		return ErrNilPoint
	}
	if err := s.pool.Invoke(p.Clone()); err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			return ErrDropped
		}
		return err
	}
	return nil
}

// Running returns the number of busy workers.
func (s *AsyncSink) Running() int {
	return s.pool.Running()
}

// Close releases the worker pool. Points already handed to workers still finish.
func (s *AsyncSink) Close() error {
	s.pool.Release()
	return nil
}

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
	"time"

	"trpc.group/trpc-go/trpc-counter/log"
	"trpc.group/trpc-go/trpc-counter/metrics"
)

// Options are the counter options.
type Options struct {
	// LogRate is the number of calls between two log lines, 0 resolves the default lazily.
	LogRate uint64
	// Logger receives the log lines, nil uses the default logger at each call.
	Logger log.Logger
	// Reporter receives the deltas, default reports to all registered sinks.
	Reporter metrics.Reporter
	// Now stamps log lines and points.
	Now func() time.Time
}

// Option modifies the Options.
type Option func(*Options)

// WithLogRate returns an Option which fixes the log rate.
func WithLogRate(n uint64) Option {
	return func(o *Options) {
		o.LogRate = n
	}
}

// WithLogger returns an Option which sets the logger.
func WithLogger(l log.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithReporter returns an Option which sets the delta reporter.
func WithReporter(r metrics.Reporter) Option {
	return func(o *Options) {
		if r != nil {
			o.Reporter = r
		}
	}
}

// WithClock returns an Option which sets the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Now = now
		}
	}
}

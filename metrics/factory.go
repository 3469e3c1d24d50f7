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
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// SinkFactory builds a Sink from its config options.
type SinkFactory func(options map[string]interface{}) (Sink, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]SinkFactory{
		"console": newConsoleSinkFromOptions,
		"noop":    func(map[string]interface{}) (Sink, error) { return NoopSink{}, nil },
	}
)

// RegisterSinkFactory registers a SinkFactory by name.
func RegisterSinkFactory(name string, f SinkFactory) {
	factoriesMu.Lock()
	factories[name] = f
	factoriesMu.Unlock()
}

// NewSink builds the sink named name.
func NewSink(name string, options map[string]interface{}) (Sink, error) {
	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("metrics: sink factory %s not registered", name)
	}
	return f(options)
}

// ConsoleOptions are the options of the console sink.
type ConsoleOptions struct {
	// Output is one of stdout, stderr or discard, default stdout.
	Output string `mapstructure:"output"`
}

func newConsoleSinkFromOptions(options map[string]interface{}) (Sink, error) {
	var opts ConsoleOptions
	if err := mapstructure.Decode(options, &opts); err != nil {
		return nil, fmt.Errorf("metrics: decode console options: %w", err)
	}
	var w io.Writer
	switch opts.Output {
	case "", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	case "discard":
		w = nil
	default:
		return nil, fmt.Errorf("metrics: console output %q not supported", opts.Output)
	}
	return NewConsoleSinkWithWriter(w), nil
}

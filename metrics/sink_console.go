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

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewConsoleSink creates a console sink writing to stdout.
func NewConsoleSink() *ConsoleSink {
	return NewConsoleSinkWithWriter(os.Stdout)
}

// NewConsoleSinkWithWriter creates a console sink writing to w, a nil w only aggregates.
func NewConsoleSinkWithWriter(w io.Writer) *ConsoleSink {
	return &ConsoleSink{
		out:    w,
		values: make(map[string]int64),
	}
}

// ConsoleSink aggregates fields in memory and prints each point as one json line.
type ConsoleSink struct {
	outMu sync.Mutex
	out   io.Writer

	mu     sync.RWMutex
	values map[string]int64
}

// Name returns console sink name.
func (c *ConsoleSink) Name() string {
	return "console"
}

// Report reports a point.
func (c *ConsoleSink) Report(p *Point) error {
	if p == nil {
		return ErrNilPoint
	}
	c.mu.Lock()
	for _, f := range p.Fields {
		key := valueKey(p.Name, f.Name)
		switch f.Policy {
		case PolicySUM:
			c.values[key] += f.Value
		case PolicySET:
			c.values[key] = f.Value
		case PolicyMAX:
			if v, ok := c.values[key]; !ok || f.Value > v {
				c.values[key] = f.Value
			}
		case PolicyMIN:
			if v, ok := c.values[key]; !ok || f.Value < v {
				c.values[key] = f.Value
			}
		default:
			// not supported policies
		}
	}
	c.mu.Unlock()

	if c.out == nil {
		return nil
	}
	buf, err := json.Marshal(p)
	if err != nil {
		return err
	}
	c.outMu.Lock()
	defer c.outMu.Unlock()
	_, err = fmt.Fprintf(c.out, "metrics point = %s\n", buf)
	return err
}

// Value returns the aggregated value of field in the named point.
func (c *ConsoleSink) Value(point, field string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[valueKey(point, field)]
}

func valueKey(point, field string) string {
	return point + "." + field
}

// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License that can be found in the LICENSE file.

// Package metrics carries counter points to external monitor systems.
//
// A Point is a named bundle of numeric fields, e.g. the point "counter-req.total" with the
// single field "count". Points are handed to every registered Sink:
//
//	metrics.RegisterSink(metrics.NewConsoleSink())
//	p := metrics.NewPoint("counter-req.total").AddField("count", 10, metrics.PolicySUM)
//	_ = metrics.Report(p)
//
// Sinks may be declared in config and built by name through NewSink, and wrapped by an
// AsyncSink so reporting never blocks the caller.
package metrics

import (
	"time"
)

// Policy is the metrics aggregation policy.
type Policy int

// All available Policy(s).
const (
	PolicyNONE = 0 // Undefined
	PolicySET  = 1 // instantaneous value
	PolicySUM  = 2 // summary
	PolicyAVG  = 3 // average
	PolicyMAX  = 4 // maximum
	PolicyMIN  = 5 // minimum
)

// Tag is a dimension of a point, such as host=10.0.0.1.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Field is one numeric value of a point.
type Field struct {
	Name   string `json:"name"`
	Value  int64  `json:"value"`
	Policy Policy `json:"policy"`
}

// Point is a named bundle of fields submitted to the monitor systems.
type Point struct {
	Name      string    `json:"name"`
	Tags      []Tag     `json:"tags,omitempty"`
	Fields    []Field   `json:"fields"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPoint creates an empty point.
func NewPoint(name string) *Point {
	return &Point{Name: name}
}

// AddTag appends a tag and returns p for chaining.
func (p *Point) AddTag(key, value string) *Point {
	p.Tags = append(p.Tags, Tag{Key: key, Value: value})
	return p
}

// AddField sets the named field, appending it if absent, and returns p for chaining.
func (p *Point) AddField(name string, value int64, policy Policy) *Point {
	for i := range p.Fields {
		if p.Fields[i].Name == name {
			p.Fields[i].Value, p.Fields[i].Policy = value, policy
			return p
		}
	}
	p.Fields = append(p.Fields, Field{Name: name, Value: value, Policy: policy})
	return p
}

// SetField updates the value of an existing field. It returns false if the field is absent.
func (p *Point) SetField(name string, value int64) bool {
	for i := range p.Fields {
		if p.Fields[i].Name == name {
			p.Fields[i].Value = value
			return true
		}
	}
	return false
}

// Field returns the named field.
func (p *Point) Field(name string) (Field, bool) {
	if p == nil {
		return Field{}, false
	}
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Clone returns a deep copy of p.
func (p *Point) Clone() *Point {
	if p == nil {
		return nil
	}
	c := &Point{Name: p.Name, Timestamp: p.Timestamp}
	if len(p.Tags) > 0 {
		c.Tags = append([]Tag(nil), p.Tags...)
	}
	c.Fields = append([]Field(nil), p.Fields...)
	return c
}

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

package rollwriter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/atomic"
)

const (
	defaultLogQueueSize     = 10000
	defaultWriteLogSize     = 4 * 1024 // 4KB
	defaultWriteLogInterval = 100 * time.Millisecond
)

// ErrQueueFull is returned by Write when the queue is full and logs may be dropped.
var ErrQueueFull = errors.New("async roll writer: log queue is full")

// AsyncOptions is the AsyncRollWriter options.
type AsyncOptions struct {
	// LogQueueSize is the capacity of the log queue.
	LogQueueSize int
	// WriteLogSize is the buffered size that triggers a write.
	WriteLogSize int
	// WriteLogInterval is the interval between two timed writes.
	WriteLogInterval time.Duration
	// DropLog drops logs instead of blocking when the queue is full.
	DropLog bool
}

// AsyncOption modifies the AsyncOptions.
type AsyncOption func(*AsyncOptions)

// WithLogQueueSize returns an AsyncOption which sets the queue capacity.
func WithLogQueueSize(n int) AsyncOption {
	return func(o *AsyncOptions) {
		o.LogQueueSize = n
	}
}

// WithWriteLogSize returns an AsyncOption which sets the batch size.
func WithWriteLogSize(n int) AsyncOption {
	return func(o *AsyncOptions) {
		o.WriteLogSize = n
	}
}

// WithWriteLogInterval returns an AsyncOption which sets the flush interval.
func WithWriteLogInterval(d time.Duration) AsyncOption {
	return func(o *AsyncOptions) {
		o.WriteLogInterval = d
	}
}

// WithDropLog returns an AsyncOption which sets whether logs are dropped on full queue.
func WithDropLog(b bool) AsyncOption {
	return func(o *AsyncOptions) {
		o.DropLog = b
	}
}

// AsyncRollWriter batches writes to an underlying writer in a background goroutine.
// It implements zapcore.WriteSyncer.
type AsyncRollWriter struct {
	w    io.WriteCloser
	opts AsyncOptions

	queue   chan []byte
	syncReq chan chan error
	closed  chan chan error
	dropped atomic.Uint64
}

// NewAsyncRollWriter creates a new AsyncRollWriter.
func NewAsyncRollWriter(w io.WriteCloser, opt ...AsyncOption) *AsyncRollWriter {
	opts := AsyncOptions{
		LogQueueSize:     defaultLogQueueSize,
		WriteLogSize:     defaultWriteLogSize,
		WriteLogInterval: defaultWriteLogInterval,
	}
	for _, o := range opt {
		o(&opts)
	}
	aw := &AsyncRollWriter{
		w:       w,
		opts:    opts,
		queue:   make(chan []byte, opts.LogQueueSize),
		syncReq: make(chan chan error),
		closed:  make(chan chan error),
	}
	go aw.run()
	return aw
}

// Write enqueues a copy of data. It implements io.Writer.
func (aw *AsyncRollWriter) Write(data []byte) (int, error) {
	b := make([]byte, len(data))
	copy(b, data)
	if !aw.opts.DropLog {
		aw.queue <- b
		return len(data), nil
	}
	select {
	case aw.queue <- b:
		return len(data), nil
	default:
		aw.dropped.Inc()
		return 0, ErrQueueFull
	}
}

// Dropped returns the number of writes dropped on a full queue.
func (aw *AsyncRollWriter) Dropped() uint64 {
	return aw.dropped.Load()
}

// Sync flushes everything queued so far. It implements zapcore.WriteSyncer.
func (aw *AsyncRollWriter) Sync() error {
	ch := make(chan error)
	aw.syncReq <- ch
	return <-ch
}

// Close flushes and closes the underlying writer.
func (aw *AsyncRollWriter) Close() error {
	err := aw.Sync()
	ch := make(chan error)
	aw.closed <- ch
	return multierror.Append(err, <-ch).ErrorOrNil()
}

func (aw *AsyncRollWriter) run() {
	buf := bytes.NewBuffer(make([]byte, 0, aw.opts.WriteLogSize*2))
	ticker := time.NewTicker(aw.opts.WriteLogInterval)
	defer ticker.Stop()

	flush := func() error {
		if buf.Len() == 0 {
			return nil
		}
		_, err := aw.w.Write(buf.Bytes())
		buf.Reset()
		return err
	}
	for {
		select {
		case <-ticker.C:
			report(flush(), "flush on tick")
		case b := <-aw.queue:
			buf.Write(b)
			if buf.Len() >= aw.opts.WriteLogSize {
				report(flush(), "flush on full buffer")
			}
		case ch := <-aw.syncReq:
			var err error
			for n := len(aw.queue); n > 0; n-- {
				buf.Write(<-aw.queue)
			}
			if e := flush(); e != nil {
				err = multierror.Append(err, e)
			}
			ch <- err
		case ch := <-aw.closed:
			ch <- aw.w.Close()
			return
		}
	}
}

func report(err error, msg string) {
	if err == nil {
		return
	}
	// The log writer itself is failing, so print to stdout directly.
	fmt.Printf("async roll writer err: %+v, msg: %s\n", err, msg)
}

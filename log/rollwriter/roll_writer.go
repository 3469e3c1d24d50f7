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

// Package rollwriter provides a file writer which rolls by size or by time.
package rollwriter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/strftime"
)

const backupTimeFormat = ".bk-20060102-150405.000000"

var _ io.WriteCloser = (*RollWriter)(nil)

// Options is the RollWriter options.
type Options struct {
	// MaxSize is the max size of a log file in MB, 0 disables rolling by size.
	MaxSize int64
	// MaxBackups is the max number of rolled files kept, 0 keeps all.
	MaxBackups int
	// MaxAge is the max age of rolled files in days, 0 keeps all.
	MaxAge int
	// TimeFormat is the strftime suffix appended to the file name, like ".%Y%m%d".
	TimeFormat string
}

// Option modifies the Options.
type Option func(*Options)

// WithMaxSize returns an Option which sets the max size in MB.
func WithMaxSize(n int) Option {
	return func(o *Options) {
		o.MaxSize = int64(n) * 1024 * 1024
	}
}

// WithMaxBackups returns an Option which sets the max number of backups.
func WithMaxBackups(n int) Option {
	return func(o *Options) {
		o.MaxBackups = n
	}
}

// WithMaxAge returns an Option which sets the max age in days.
func WithMaxAge(n int) Option {
	return func(o *Options) {
		o.MaxAge = n
	}
}

// WithRotationTime returns an Option which rolls files by the strftime suffix s.
func WithRotationTime(s string) Option {
	return func(o *Options) {
		o.TimeFormat = s
	}
}

// RollWriter is a file log writer which supports rolling by size or datetime.
type RollWriter struct {
	filePath string
	opts     Options
	pattern  *strftime.Strftime
	now      func() time.Time

	mu       sync.Mutex
	currPath string
	currSize int64
	file     *os.File
}

// NewRollWriter creates a new RollWriter.
func NewRollWriter(filePath string, opt ...Option) (*RollWriter, error) {
	if filePath == "" {
		return nil, errors.New("invalid file path")
	}
	var opts Options
	for _, o := range opt {
		o(&opts)
	}
	pattern, err := strftime.New(filePath + opts.TimeFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid time pattern %q: %w", opts.TimeFormat, err)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}
	return &RollWriter{
		filePath: filePath,
		opts:     opts,
		pattern:  pattern,
		now:      time.Now,
	}, nil
}

// Write writes logs. It implements io.Writer.
func (w *RollWriter) Write(v []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if path := w.pattern.FormatString(w.now()); path != w.currPath || w.file == nil {
		if err := w.open(path); err != nil {
			return 0, err
		}
	}
	if w.opts.MaxSize > 0 && w.currSize > 0 && w.currSize+int64(len(v)) > w.opts.MaxSize {
		if err := w.roll(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(v)
	w.currSize += int64(n)
	return n, err
}

// Close closes the current log file. It implements io.Closer.
func (w *RollWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// CurrentPath returns the path currently written to.
func (w *RollWriter) CurrentPath() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currPath
}

func (w *RollWriter) open(path string) error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			fmt.Printf("rollwriter: close %s err: %+v\n", w.currPath, err)
		}
		w.file = nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	w.file, w.currPath, w.currSize = f, path, st.Size()
	return nil
}

// roll renames the current file to a backup and reopens an empty one.
func (w *RollWriter) roll() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	w.file = nil
	if err := os.Rename(w.currPath, w.currPath+w.now().Format(backupTimeFormat)); err != nil {
		return err
	}
	if err := w.open(w.currPath); err != nil {
		return err
	}
	w.clean()
	return nil
}

type backup struct {
	name    string
	modTime time.Time
}

// clean removes backups beyond MaxBackups or older than MaxAge.
func (w *RollWriter) clean() {
	if w.opts.MaxBackups == 0 && w.opts.MaxAge == 0 {
		return
	}
	dir := filepath.Dir(w.filePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Printf("rollwriter: read dir %s err: %+v\n", dir, err)
		return
	}
	prefix, current := filepath.Base(w.filePath), filepath.Base(w.currPath)
	var backups []backup
	for _, e := range entries {
		if e.IsDir() || e.Name() == current || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{name: e.Name(), modTime: info.ModTime()})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].modTime.After(backups[j].modTime) })

	cutoff := w.now().Add(-time.Duration(w.opts.MaxAge) * 24 * time.Hour)
	for i, b := range backups {
		expired := w.opts.MaxAge > 0 && b.modTime.Before(cutoff)
		redundant := w.opts.MaxBackups > 0 && i >= w.opts.MaxBackups
		if !expired && !redundant {
			continue
		}
		if err := os.Remove(filepath.Join(dir, b.name)); err != nil {
			fmt.Printf("rollwriter: remove %s err: %+v\n", b.name, err)
		}
	}
}

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

// Package config loads counter settings from yaml, json or toml files.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"trpc.group/trpc-go/trpc-counter/internal/expandenv"
)

var (
	// ErrProviderNotExist is provider not exist error
	ErrProviderNotExist = errors.New("counter/config: provider not exist")

	// ErrCodecNotExist is codec not exist error
	ErrCodecNotExist = errors.New("counter/config: codec not exist")
)

// LoadOption defines the option function for loading configuration.
type LoadOption func(*loadOptions)

type loadOptions struct {
	provider  DataProvider
	codec     Codec
	expandEnv bool
}

// WithCodec returns an option which sets the codec's name.
func WithCodec(name string) LoadOption {
	return func(o *loadOptions) {
		o.codec = GetCodec(name)
	}
}

// WithProvider returns an option which sets the provider's name.
func WithProvider(name string) LoadOption {
	return func(o *loadOptions) {
		o.provider = GetProvider(name)
	}
}

// WithExpandEnv returns an option which replaces ${var} in the raw data with environment values
// before decoding.
func WithExpandEnv() LoadOption {
	return func(o *loadOptions) {
		o.expandEnv = true
	}
}

func newLoadOptions(path string, opts []LoadOption) (*loadOptions, error) {
	o := &loadOptions{
		provider: GetProvider("file"),
		codec:    CodecForPath(path),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.provider == nil {
		return nil, ErrProviderNotExist
	}
	if o.codec == nil {
		return nil, ErrCodecNotExist
	}
	return o, nil
}

// Load reads path and decodes it into out.
func Load(path string, out interface{}, opts ...LoadOption) error {
	o, err := newLoadOptions(path, opts)
	if err != nil {
		return err
	}
	data, err := o.provider.Read(path)
	if err != nil {
		return fmt.Errorf("counter/config: read %s: %w", path, err)
	}
	return o.decode(path, data, out)
}

// Watch reads path once to register it with the provider, then calls cb with every newly
// decoded value produced by newOut. Decode failures are passed to onErr.
func Watch(path string, newOut func() interface{}, cb func(interface{}), onErr func(error),
	opts ...LoadOption) error {
	o, err := newLoadOptions(path, opts)
	if err != nil {
		return err
	}
	if _, err := o.provider.Read(path); err != nil {
		return fmt.Errorf("counter/config: read %s: %w", path, err)
	}
	want := filepath.Clean(path)
	o.provider.Watch(func(p string, data []byte) {
		if filepath.Clean(p) != want {
			return
		}
		out := newOut()
		if err := o.decode(path, data, out); err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		cb(out)
	})
	return nil
}

func (o *loadOptions) decode(path string, data []byte, out interface{}) error {
	if o.expandEnv {
		data = expandenv.ExpandEnv(data)
	}
	if err := o.codec.Unmarshal(data, out); err != nil {
		return fmt.Errorf("counter/config: decode %s with %s: %w", path, o.codec.Name(), err)
	}
	return nil
}

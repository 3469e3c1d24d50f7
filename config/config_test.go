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

package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-counter/config"
)

type rateConfig struct {
	Counter struct {
		DefaultLogRate uint64 `yaml:"default_log_rate" json:"default_log_rate" toml:"default_log_rate"`
	} `yaml:"counter" json:"counter" toml:"counter"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Codecs(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "counter.yaml", "counter:\n  default_log_rate: 50\n"},
		{"json", "counter.json", `{"counter": {"default_log_rate": 50}}`},
		{"toml", "counter.toml", "[counter]\ndefault_log_rate = 50\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg rateConfig
			require.NoError(t, config.Load(writeFile(t, tt.file, tt.content), &cfg))
			assert.Equal(t, uint64(50), cfg.Counter.DefaultLogRate)
		})
	}
}

func TestLoad_ExpandEnv(t *testing.T) {
	t.Setenv("COUNTER_TEST_RATE", "70")
	path := writeFile(t, "counter.yaml", "counter:\n  default_log_rate: ${COUNTER_TEST_RATE}\n")

	var cfg rateConfig
	require.NoError(t, config.Load(path, &cfg, config.WithExpandEnv()))
	assert.Equal(t, uint64(70), cfg.Counter.DefaultLogRate)

	require.Error(t, config.Load(path, &rateConfig{}))
}

func TestLoad_Errors(t *testing.T) {
	var cfg rateConfig
	err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeFile(t, "counter.yaml", "counter: [")
	require.Error(t, config.Load(path, &cfg))

	assert.ErrorIs(t, config.Load(path, &cfg, config.WithCodec("ini")), config.ErrCodecNotExist)
	assert.ErrorIs(t, config.Load(path, &cfg, config.WithProvider("etcd")), config.ErrProviderNotExist)
}

func TestCodecForPath(t *testing.T) {
	assert.Equal(t, "yaml", config.CodecForPath("a.yml").Name())
	assert.Equal(t, "yaml", config.CodecForPath("a").Name())
	assert.Equal(t, "json", config.CodecForPath("a.JSON").Name())
	assert.Equal(t, "toml", config.CodecForPath("a.toml").Name())
}

func TestWatch(t *testing.T) {
	path := writeFile(t, "watch.yaml", "counter:\n  default_log_rate: 10\n")

	var (
		mu   sync.Mutex
		last uint64
	)
	err := config.Watch(path,
		func() interface{} { return &rateConfig{} },
		func(v interface{}) {
			mu.Lock()
			last = v.(*rateConfig).Counter.DefaultLogRate
			mu.Unlock()
		}, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("counter:\n  default_log_rate: 20\n"), 0644))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return last == 20
	}, 3*time.Second, 10*time.Millisecond)

	require.Error(t, config.Watch(filepath.Join(t.TempDir(), "missing.yaml"),
		func() interface{} { return &rateConfig{} }, func(interface{}) {}, nil))
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"trpc.group/trpc-go/trpc-counter/internal/env"
	"trpc.group/trpc-go/trpc-counter/log"
)

func TestDefaultLogRate(t *testing.T) {
	defer SetDefaultLogRate(0)
	tests := []struct {
		name       string
		env        string
		configured uint64
		want       uint64
	}{
		{"unset", "", 0, DefaultLogRate},
		{"env", "50", 0, 50},
		{"env zero", "0", 0, DefaultLogRate},
		{"env invalid", "fifty", 0, DefaultLogRate},
		{"env negative", "-5", 0, DefaultLogRate},
		{"env leading zero is decimal", "010", 0, 10},
		{"env hex", "0x32", 0, DefaultLogRate},
		{"env plus sign", "+50", 0, 50},
		{"env double sign", "++50", 0, DefaultLogRate},
		{"env spaces", " 50", 0, DefaultLogRate},
		{"configured", "", 300, 300},
		{"env wins over configured", "50", 300, 50},
		{"env zero falls back to configured", "0", 300, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(env.DefaultLogRate, tt.env)
			SetDefaultLogRate(tt.configured)
			assert.Equal(t, tt.want, defaultLogRate())
		})
	}
}

func TestCounter_LogRateResolvedLazily(t *testing.T) {
	t.Setenv(env.DefaultLogRate, "")
	logger, _ := observedLogger(zapcore.InfoLevel)
	c := New("test_lograte", WithLogger(logger))
	assert.Equal(t, uint64(0), c.LogRate())

	c.Record(log.LevelInfo, 2)
	assert.Equal(t, DefaultLogRate, c.LogRate())

	// Once resolved the rate is cached.
	t.Setenv(env.DefaultLogRate, "7")
	c.Record(log.LevelInfo, 2)
	assert.Equal(t, DefaultLogRate, c.LogRate())
}

func TestCounter_LogRateFromEnv(t *testing.T) {
	logger, _ := observedLogger(zapcore.InfoLevel)

	t.Setenv(env.DefaultLogRate, "50")
	c := New("test_lograte_env", WithLogger(logger))
	c.Record(log.LevelInfo, 2)
	assert.Equal(t, uint64(50), c.LogRate())

	t.Setenv(env.DefaultLogRate, "0")
	c2 := New("test_lograte_env", WithLogger(logger))
	c2.Record(log.LevelInfo, 2)
	assert.Equal(t, DefaultLogRate, c2.LogRate())
}

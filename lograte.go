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
	"os"
	"strconv"
	"strings"

	"go.uber.org/atomic"

	"trpc.group/trpc-go/trpc-counter/internal/env"
)

// DefaultLogRate is the log rate used when neither the environment nor the config sets one.
const DefaultLogRate uint64 = 1000

var configuredLogRate atomic.Uint64

// SetDefaultLogRate sets the configured default log rate, 0 clears it. Counters which have
// already resolved their rate keep it.
func SetDefaultLogRate(n uint64) {
	configuredLogRate.Store(n)
}

// defaultLogRate resolves the log rate of a counter created without one. A positive
// TRPC_DEFAULT_LOG_RATE wins, then the configured default, then DefaultLogRate.
func defaultLogRate() uint64 {
	if v, ok := envLogRate(); ok {
		return v
	}
	if v := configuredLogRate.Load(); v > 0 {
		return v
	}
	return DefaultLogRate
}

// envLogRate parses TRPC_DEFAULT_LOG_RATE as a decimal integer with an optional leading '+'.
// "010" is ten, not eight.
func envLogRate() (uint64, bool) {
	v, err := strconv.ParseUint(strings.TrimPrefix(os.Getenv(env.DefaultLogRate), "+"), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}

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

package log_test

import (
	"testing"
	"time"

	"trpc.group/trpc-go/trpc-counter/log"
)

var defaultConfig = []log.OutputConfig{
	{
		Writer:    "console",
		Level:     "debug",
		Formatter: "console",
		FormatConfig: log.FormatConfig{
			TimeFmt: "2006.01.02 15:04:05",
		},
	},
}

func TestTimeUnit_Format(t *testing.T) {
	tests := []struct {
		name string
		tr   log.TimeUnit
		want string
	}{
		{"Minute", log.Minute, ".%Y%m%d%H%M"},
		{"Hour", log.Hour, ".%Y%m%d%H"},
		{"Day", log.Day, ".%Y%m%d"},
		{"Month", log.Month, ".%Y%m"},
		{"Year", log.Year, ".%Y"},
		{"default", log.TimeUnit("xxx"), ".%Y%m%d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Format(); got != tt.want {
				t.Errorf("TimeUnit.Format() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeUnit_RotationGap(t *testing.T) {
	tests := []struct {
		name string
		tr   log.TimeUnit
		want time.Duration
	}{
		{"Minute", log.Minute, time.Minute},
		{"Day", log.Day, time.Hour * 24},
		{"default", log.TimeUnit("xxx"), time.Hour * 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.RotationGap(); got != tt.want {
				t.Errorf("TimeUnit.RotationGap() = %v, want %v", got, tt.want)
			}
		})
	}
}

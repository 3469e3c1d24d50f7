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

package log

import (
	"time"
)

// output name, default support console and file.
const (
	OutputConsole = "console"
	OutputFile    = "file"
)

// Config is the log config. Each log may have multiple outputs.
type Config []OutputConfig

// OutputConfig is the output config, includes console, file and remote.
type OutputConfig struct {
	// Writer is the output of log, such as console or file.
	Writer      string      `yaml:"writer" toml:"writer" json:"writer"`
	WriteConfig WriteConfig `yaml:"writer_config" toml:"writer_config" json:"writer_config"`

	// Formatter is the format of log, such as console or json.
	Formatter    string       `yaml:"formatter" toml:"formatter" json:"formatter"`
	FormatConfig FormatConfig `yaml:"formatter_config" toml:"formatter_config" json:"formatter_config"`

	// Level controls the log level, like debug, info or error.
	Level string `yaml:"level" toml:"level" json:"level"`

	// EnableColor determines if the output is colored. The default value is false.
	EnableColor bool `yaml:"enable_color" toml:"enable_color" json:"enable_color"`
}

// WriteConfig is the local file config.
type WriteConfig struct {
	// LogPath is the log path like /usr/local/counter/log/.
	LogPath string `yaml:"log_path" toml:"log_path" json:"log_path"`
	// Filename is the file name like counter.log.
	Filename string `yaml:"filename" toml:"filename" json:"filename"`
	// WriteMode is the log write mod. 1: sync, 2: async, 3: fast(maybe dropped), default as 3.
	WriteMode int `yaml:"write_mode" toml:"write_mode" json:"write_mode"`
	// RollType is the log rolling type. Split files by size/time, default by size.
	RollType string `yaml:"roll_type" toml:"roll_type" json:"roll_type"`
	// MaxAge is the max expire times(day).
	MaxAge int `yaml:"max_age" toml:"max_age" json:"max_age"`
	// MaxBackups is the max backup files.
	MaxBackups int `yaml:"max_backups" toml:"max_backups" json:"max_backups"`
	// MaxSize is the max size of log file(MB).
	MaxSize int `yaml:"max_size" toml:"max_size" json:"max_size"`
	// TimeUnit splits files by time unit, like year/month/hour/minute, default day.
	// It takes effect only when split by time.
	TimeUnit TimeUnit `yaml:"time_unit" toml:"time_unit" json:"time_unit"`
}

// FormatConfig is the log format config.
type FormatConfig struct {
	// TimeFmt is the time format of log output, default as "2006-01-02 15:04:05.000" on empty.
	TimeFmt string `yaml:"time_fmt" toml:"time_fmt" json:"time_fmt"`

	// TimeKey is the time key of log output, default as "T".
	TimeKey string `yaml:"time_key" toml:"time_key" json:"time_key"`
	// LevelKey is the level key of log output, default as "L".
	LevelKey string `yaml:"level_key" toml:"level_key" json:"level_key"`
	// NameKey is the name key of log output, default as "N".
	NameKey string `yaml:"name_key" toml:"name_key" json:"name_key"`
	// CallerKey is the caller key of log output, default as "C".
	CallerKey string `yaml:"caller_key" toml:"caller_key" json:"caller_key"`
	// MessageKey is the message key of log output, default as "M".
	MessageKey string `yaml:"message_key" toml:"message_key" json:"message_key"`
	// StacktraceKey is the stack trace key of log output, default as "S".
	StacktraceKey string `yaml:"stacktrace_key" toml:"stacktrace_key" json:"stacktrace_key"`
}

// WriteMode is the log write mode, one of 1, 2, 3.
const (
	WriteSync  = 1
	WriteAsync = 2
	WriteFast  = 3
)

// By which log rolls.
const (
	RollBySize = "size"
	RollByTime = "time"
)

// Some common used time formats.
const (
	// TimeFormatMinute is accurate to the minute.
	TimeFormatMinute = "%Y%m%d%H%M"
	// TimeFormatHour is accurate to the hour.
	TimeFormatHour = "%Y%m%d%H"
	// TimeFormatDay is accurate to the day.
	TimeFormatDay = "%Y%m%d"
	// TimeFormatMonth is accurate to the month.
	TimeFormatMonth = "%Y%m"
	// TimeFormatYear is accurate to the year.
	TimeFormatYear = "%Y"
)

// TimeUnit is the time unit by which files are split, one of minute/hour/day/month/year.
type TimeUnit string

const (
	// Minute splits by the minute.
	Minute = "minute"
	// Hour splits by the hour.
	Hour = "hour"
	// Day splits by the day.
	Day = "day"
	// Month splits by the month.
	Month = "month"
	// Year splits by the year.
	Year = "year"
)

// Format returns a string preceding with `.`. Use TimeFormatDay as default.
func (t TimeUnit) Format() string {
	var timeFmt string
	switch t {
	case Minute:
		timeFmt = TimeFormatMinute
	case Hour:
		timeFmt = TimeFormatHour
	case Day:
		timeFmt = TimeFormatDay
	case Month:
		timeFmt = TimeFormatMonth
	case Year:
		timeFmt = TimeFormatYear
	default:
		timeFmt = TimeFormatDay
	}
	return "." + timeFmt
}

// RotationGap returns the time.Duration for time unit. Use one day as the default.
func (t TimeUnit) RotationGap() time.Duration {
	switch t {
	case Minute:
		return time.Minute
	case Hour:
		return time.Hour
	case Day:
		return time.Hour * 24
	case Month:
		return time.Hour * 24 * 30
	case Year:
		return time.Hour * 24 * 365
	default:
		return time.Hour * 24
	}
}

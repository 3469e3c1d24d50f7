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
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/atomic"

	"trpc.group/trpc-go/trpc-counter/config"
	"trpc.group/trpc-go/trpc-counter/log"
	"trpc.group/trpc-go/trpc-counter/metrics"
)

// Config is the counter configuration, usually loaded from a yaml file such as:
//
//	counter:
//	  default_log_rate: 500
//	  metrics:
//	    sinks:
//	      - name: console
//	        options:
//	          output: stderr
//	    async:
//	      enable: true
//	      pool_size: 16
//	log:
//	  - writer: console
//	    level: info
type Config struct {
	Counter struct {
		// DefaultLogRate is used by counters created without a log rate, 0 means DefaultLogRate.
		DefaultLogRate uint64        `yaml:"default_log_rate" json:"default_log_rate" toml:"default_log_rate"`
		Metrics        MetricsConfig `yaml:"metrics" json:"metrics" toml:"metrics"`
	} `yaml:"counter" json:"counter" toml:"counter"`
	Log log.Config `yaml:"log" json:"log" toml:"log"`
}

// MetricsConfig declares the sinks counter deltas are reported to.
type MetricsConfig struct {
	Sinks []SinkConfig `yaml:"sinks" json:"sinks" toml:"sinks"`
	Async AsyncConfig  `yaml:"async" json:"async" toml:"async"`
}

// SinkConfig is one sink built through metrics.NewSink.
type SinkConfig struct {
	Name    string                 `yaml:"name" json:"name" toml:"name"`
	Options map[string]interface{} `yaml:"options" json:"options" toml:"options"`
}

// AsyncConfig wraps every sink in a metrics.AsyncSink when enabled.
type AsyncConfig struct {
	Enable   bool `yaml:"enable" json:"enable" toml:"enable"`
	PoolSize int  `yaml:"pool_size" json:"pool_size" toml:"pool_size"`
}

var globalConfig atomic.Value

func init() {
	globalConfig.Store(&Config{})
}

// GlobalConfig returns the global Config.
func GlobalConfig() *Config {
	return globalConfig.Load().(*Config)
}

// SetGlobalConfig sets the global Config.
func SetGlobalConfig(cfg *Config) {
	globalConfig.Store(cfg)
}

// LoadConfig loads a Config from path, the codec is chosen by the file extension and
// ${var} references are replaced by environment values.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := config.Load(path, cfg, config.WithExpandEnv()); err != nil {
		return nil, err
	}
	if err := RepairConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RepairConfig validates cfg and fills defaults.
func RepairConfig(cfg *Config) error {
	for i, s := range cfg.Counter.Metrics.Sinks {
		if s.Name == "" {
			return fmt.Errorf("counter: metrics sink #%d has no name", i)
		}
	}
	if cfg.Counter.Metrics.Async.Enable && cfg.Counter.Metrics.Async.PoolSize < 0 {
		return errors.New("counter: metrics async pool_size must not be negative")
	}
	return nil
}

// LoadGlobalConfig loads a Config from path and sets it as the global Config.
func LoadGlobalConfig(path string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	SetGlobalConfig(cfg)
	return nil
}

// Setup applies cfg: it installs the default logger, the default log rate and the metrics
// sinks. Nothing is installed when any of them fails to build. The returned function
// unregisters the sinks, releases async pools and syncs the logger.
func Setup(cfg *Config) (func() error, error) {
	var logger log.Logger
	if len(cfg.Log) > 0 {
		l, err := log.Build(cfg.Log)
		if err != nil {
			return nil, err
		}
		logger = l
	}
	sinks, asyncs, err := buildSinks(cfg.Counter.Metrics)
	if err != nil {
		return nil, multierror.Append(err, closeAsyncSinks(asyncs)).ErrorOrNil()
	}

	if logger != nil {
		log.SetLogger(logger)
	}
	SetDefaultLogRate(cfg.Counter.DefaultLogRate)
	for _, sink := range sinks {
		metrics.RegisterSink(sink)
	}
	return func() error {
		for _, sink := range sinks {
			metrics.UnregisterSink(sink.Name())
		}
		err := closeAsyncSinks(asyncs)
		if logger != nil {
			// Syncing stdout is not supported on every platform, only report file errors.
			_ = logger.Sync()
		}
		return err
	}, nil
}

func buildSinks(cfg MetricsConfig) ([]metrics.Sink, []*metrics.AsyncSink, error) {
	var (
		sinks  []metrics.Sink
		asyncs []*metrics.AsyncSink
	)
	for _, sc := range cfg.Sinks {
		sink, err := metrics.NewSink(sc.Name, sc.Options)
		if err != nil {
			return nil, asyncs, err
		}
		if cfg.Async.Enable {
			a, err := metrics.NewAsyncSink(sink, cfg.Async.PoolSize,
				metrics.WithErrorHandler(func(p *metrics.Point, err error) {
					log.Debugf("counter: async report %s: %v", p.Name, err)
				}))
			if err != nil {
				return nil, asyncs, err
			}
			asyncs = append(asyncs, a)
			sink = a
		}
		sinks = append(sinks, sink)
	}
	return sinks, asyncs, nil
}

func closeAsyncSinks(asyncs []*metrics.AsyncSink) error {
	var result error
	for _, a := range asyncs {
		if err := a.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// Watch reloads the default log rate whenever the config file at path changes. Counters that
// already resolved their log rate keep it.
func Watch(path string) error {
	return config.Watch(path,
		func() interface{} { return &Config{} },
		func(v interface{}) {
			cfg := v.(*Config)
			if err := RepairConfig(cfg); err != nil {
				log.Errorf("counter: reload %s: %v", path, err)
				return
			}
			SetDefaultLogRate(cfg.Counter.DefaultLogRate)
			SetGlobalConfig(cfg)
		},
		func(err error) { log.Errorf("counter: reload %s: %v", path, err) },
		config.WithExpandEnv())
}

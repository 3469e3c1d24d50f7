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

package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/fsnotify/fsnotify"

	"trpc.group/trpc-go/trpc-counter/log"
)

// ProviderCallback is callback function for provider to handle
// config change.
type ProviderCallback func(string, []byte)

// DataProvider defines common data provider interface.
type DataProvider interface {
	// Name returns the data provider's name.
	Name() string

	// Read reads the specific path file, returns
	// it content as bytes.
	Read(string) ([]byte, error)

	// Watch watches config changing. The change will
	// be handled by callback function.
	Watch(ProviderCallback)
}

var (
	providerMu  sync.RWMutex
	providerMap = make(map[string]DataProvider)
)

func init() {
	RegisterProvider(newFileProvider())
}

// RegisterProvider registers a data provider by its name.
func RegisterProvider(p DataProvider) {
	providerMu.Lock()
	providerMap[p.Name()] = p
	providerMu.Unlock()
}

// GetProvider returns the provider by name.
func GetProvider(name string) DataProvider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return providerMap[name]
}

func newFileProvider() *FileProvider {
	fp := &FileProvider{
		cb:              make(chan ProviderCallback),
		disabledWatcher: true,
		paths:           make(map[string]string),
		digests:         make(map[string]uint64),
	}
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		fp.disabledWatcher = false
		fp.watcher = watcher
		go fp.run()
		return fp
	}
	log.Debugf("fsnotify.NewWatcher err: %+v", err)
	return fp
}

// FileProvider is a config provider which gets config from file system.
type FileProvider struct {
	disabledWatcher bool
	watcher         *fsnotify.Watcher
	cb              chan ProviderCallback

	mu      sync.RWMutex
	paths   map[string]string // cleaned path -> path as given to Read
	digests map[string]uint64 // cleaned path -> xxhash of the last content seen
}

// Name returns file provider's name.
func (*FileProvider) Name() string {
	return "file"
}

// Read reads the specific path file, returns
// it content as bytes.
func (fp *FileProvider) Read(path string) ([]byte, error) {
	if !fp.disabledWatcher {
		if err := fp.watcher.Add(filepath.Dir(path)); err != nil {
			return nil, err
		}
		fp.mu.Lock()
		fp.paths[filepath.Clean(path)] = path
		fp.mu.Unlock()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Tracef("failed to read config file %v", err)
		return nil, err
	}
	fp.mu.Lock()
	fp.digests[filepath.Clean(path)] = xxhash.Sum64(data)
	fp.mu.Unlock()
	return data, nil
}

// Watch registers cb to be called with the new content of any file read before.
// Callbacks must not block.
func (fp *FileProvider) Watch(cb ProviderCallback) {
	if !fp.disabledWatcher {
		fp.cb <- cb
	}
}

func (fp *FileProvider) run() {
	var fn []ProviderCallback
	for {
		select {
		case i := <-fp.cb:
			fn = append(fn, i)
		case e, ok := <-fp.watcher.Events:
			if !ok {
				return
			}
			if fp.isModified(e) {
				fp.trigger(e, fn)
			}
		case err, ok := <-fp.watcher.Errors:
			if !ok {
				return
			}
			log.Debugf("config file watcher err: %+v", err)
		}
	}
}

func (fp *FileProvider) isModified(e fsnotify.Event) bool {
	if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	_, ok := fp.paths[filepath.Clean(e.Name)]
	return ok
}

// trigger calls every callback when the content really changed. Editors and truncating
// writers emit several events per save, the digest drops the duplicates.
func (fp *FileProvider) trigger(e fsnotify.Event, fn []ProviderCallback) {
	data, err := os.ReadFile(e.Name)
	if err != nil {
		return
	}
	key, digest := filepath.Clean(e.Name), xxhash.Sum64(data)
	fp.mu.Lock()
	path := fp.paths[key]
	changed := fp.digests[key] != digest
	fp.digests[key] = digest
	fp.mu.Unlock()
	if !changed {
		return
	}
	// Callbacks run in order on the watcher goroutine so the last one always sees the newest content.
	for _, f := range fn {
		f(path, data)
	}
}

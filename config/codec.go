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
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	jsoniter "github.com/json-iterator/go"
	yaml "gopkg.in/yaml.v3"
)

func init() {
	RegisterCodec(&YamlCodec{})
	RegisterCodec(&JSONCodec{})
	RegisterCodec(&TomlCodec{})
}

// Codec defines codec interface.
type Codec interface {
	// Name returns codec's name.
	Name() string

	// Unmarshal deserializes the config data bytes into
	// the second input parameter.
	Unmarshal([]byte, interface{}) error
}

var (
	codecMu  sync.RWMutex
	codecMap = make(map[string]Codec)
)

// RegisterCodec registers codec by its name.
func RegisterCodec(c Codec) {
	codecMu.Lock()
	codecMap[c.Name()] = c
	codecMu.Unlock()
}

// GetCodec returns the codec by name.
func GetCodec(name string) Codec {
	codecMu.RLock()
	c := codecMap[name]
	codecMu.RUnlock()
	return c
}

// CodecForPath picks a codec by file extension, yaml is used for unknown extensions.
func CodecForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return GetCodec("json")
	case ".toml":
		return GetCodec("toml")
	default:
		return GetCodec("yaml")
	}
}

// YamlCodec is yaml codec.
type YamlCodec struct{}

// Name returns yaml codec's name.
func (*YamlCodec) Name() string {
	return "yaml"
}

// Unmarshal deserializes the in bytes into out parameter by yaml.
func (c *YamlCodec) Unmarshal(in []byte, out interface{}) error {
	return yaml.Unmarshal(in, out)
}

// JSONCodec is json codec.
type JSONCodec struct{}

// Name returns json codec's name.
func (*JSONCodec) Name() string {
	return "json"
}

// Unmarshal deserializes the in bytes into out parameter by json.
func (c *JSONCodec) Unmarshal(in []byte, out interface{}) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(in, out)
}

// TomlCodec is toml codec.
type TomlCodec struct{}

// Name returns toml codec's name.
func (*TomlCodec) Name() string {
	return "toml"
}

// Unmarshal deserializes the in bytes into out parameter by toml.
func (c *TomlCodec) Unmarshal(in []byte, out interface{}) error {
	return toml.Unmarshal(in, out)
}

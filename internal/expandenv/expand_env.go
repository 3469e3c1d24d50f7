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

// Package expandenv replaces ${key} in byte slices with the env value of key.
package expandenv

import (
	"bytes"
	"os"
)

// defaultSep separates the variable name from its fallback, as in ${name:-fallback}.
var defaultSep = []byte(":-")

// ExpandEnv looks for ${var} and ${var:-default} in s and replaces them with the value of the
// corresponding environment variable. The default is used when var is unset or empty.
// $var is considered invalid and kept as is, since values such as passwords may contain $.
func ExpandEnv(s []byte) []byte {
	var buf []byte
	i := 0
	for j := 0; j < len(s); j++ {
		if s[j] != '$' || j+2 >= len(s) || s[j+1] != '{' {
			continue
		}
		if buf == nil {
			buf = make([]byte, 0, 2*len(s))
		}
		buf = append(buf, s[i:j]...)
		body, w := scanBraces(s[j+1:])
		switch {
		case body == nil && w > 0:
			// ${} expands to nothing.
		case body == nil:
			buf = append(buf, s[j]) // keep the $
		default:
			buf = append(buf, lookup(body)...)
		}
		j += w
		i = j + 1
	}
	if buf == nil {
		return s
	}
	return append(buf, s[i:]...)
}

// lookup resolves the content between braces, honoring the :- fallback.
func lookup(body []byte) []byte {
	name, def := body, []byte(nil)
	if idx := bytes.Index(body, defaultSep); idx >= 0 {
		name, def = body[:idx], body[idx+len(defaultSep):]
	}
	if v := os.Getenv(string(name)); v != "" {
		return []byte(v)
	}
	return def
}

// scanBraces returns the content of {content} at the head of s and the width consumed
// after the $. A nil content with zero width means the braces are invalid and the $ is kept.
func scanBraces(s []byte) ([]byte, int) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case ' ', '\n', '"':
			return nil, 0
		case '}':
			if i == 1 {
				return nil, 2
			}
			return s[1:i], i + 1
		}
	}
	return nil, 0
}

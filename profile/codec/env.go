// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codec

import (
	"bytes"
	"fmt"
	"strings"
)

// TypeEnvVar is the environment variable codec type. It decodes
// "KEY=value" lines, one per line, into a nested map.
const TypeEnvVar Type = "env_var"

// NestingSeparator splits an environment variable name into nested keys.
// A single underscore stays part of the key, so MEDIA_TYPES is media_types
// and COMPRESSION__MIN_SIZE is compression.min_size.
const NestingSeparator = "__"

func init() {
	RegisterDecoder(TypeEnvVar, EnvVarCodec{})
}

// EnvVarCodec decodes environment variables. It has no encoder.
type EnvVarCodec struct{}

// Decode decodes "KEY=value" lines into the *map[string]any pointed to by v.
// Keys are lowercased; lines without "=" or with an empty key are skipped.
func (EnvVarCodec) Decode(data []byte, v any) error {
	ptr, ok := v.(*map[string]any)
	if !ok {
		return fmt.Errorf("EnvVarCodec.Decode: expected *map[string]any, got %T", v)
	}

	conf := make(map[string]any)

	for line := range bytes.SplitSeq(data, []byte("\n")) {
		key, value, found := strings.Cut(string(line), "=")
		if !found {
			continue
		}

		parts := splitKey(strings.ToLower(strings.TrimSpace(key)))
		if len(parts) == 0 {
			continue
		}

		current := conf
		for _, part := range parts[:len(parts)-1] {
			next, ok := current[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				current[part] = next
			}
			current = next
		}

		current[parts[len(parts)-1]] = strings.TrimSpace(value)
	}

	*ptr = conf

	return nil
}

func splitKey(key string) []string {
	raw := strings.Split(key, NestingSeparator)
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		part = strings.Trim(part, "_")
		if part != "" {
			parts = append(parts, part)
		}
	}

	return parts
}

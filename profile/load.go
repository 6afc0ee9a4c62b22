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

package profile

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"

	"rivaas.dev/negotiate/profile/codec"
)

// source is one input of [Load].
type source struct {
	name   string
	format codec.Type
	read   func() ([]byte, error)
}

// Option adds a source to [Load].
type Option func(*loader)

type loader struct {
	sources []source
	environ func() []string
}

// WithFile reads a profile file, detecting the format from its extension.
func WithFile(path string) Option {
	return func(l *loader) {
		format, err := codec.DetectFormat(path)
		l.sources = append(l.sources, source{
			name:   "file[" + path + "]",
			format: format,
			read: func() ([]byte, error) {
				if err != nil {
					return nil, err
				}
				return os.ReadFile(path)
			},
		})
	}
}

// WithFileAs reads a profile file in an explicit format.
//
// Example:
//
//	profile.Load(profile.WithFileAs("negotiate.conf", codec.TypeTOML))
func WithFileAs(path string, format codec.Type) Option {
	return func(l *loader) {
		l.sources = append(l.sources, source{
			name:   "file[" + path + "]",
			format: format,
			read:   func() ([]byte, error) { return os.ReadFile(path) },
		})
	}
}

// WithContent decodes inline profile content.
func WithContent(data []byte, format codec.Type) Option {
	return func(l *loader) {
		l.sources = append(l.sources, source{
			name:   "content[" + string(format) + "]",
			format: format,
			read:   func() ([]byte, error) { return data, nil },
		})
	}
}

// WithEnv reads environment variables starting with prefix. The prefix is
// stripped and "__" separates nested keys, so with prefix "NEGOTIATE_"
// the variable NEGOTIATE_COMPRESSION__MIN_SIZE sets compression.min_size.
// List values are comma separated.
func WithEnv(prefix string) Option {
	return func(l *loader) {
		l.sources = append(l.sources, source{
			name:   "env[" + prefix + "]",
			format: codec.TypeEnvVar,
			read: func() ([]byte, error) {
				var b strings.Builder
				for _, kv := range l.environ() {
					rest, ok := strings.CutPrefix(kv, prefix)
					if !ok {
						continue
					}
					b.WriteString(rest)
					b.WriteByte('\n')
				}
				return []byte(b.String()), nil
			},
		})
	}
}

// Load reads every source in order, merges them with later sources taking
// precedence, decodes the result over [Default] and validates it.
// Without sources Load returns the validated default profile. Zero values
// such as false or 0 in a later source do not override an earlier source.
func Load(opts ...Option) (*Profile, error) {
	l := &loader{environ: os.Environ}
	for _, opt := range opts {
		opt(l)
	}

	merged := make(map[string]any)
	for _, src := range l.sources {
		values, err := src.load()
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			continue
		}
		if err = mergo.Map(&merged, values, mergo.WithOverride); err != nil {
			return nil, newError(src.name, "merge", err)
		}
	}

	p := Default()
	if err := decode(merged, p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// MustLoad is like [Load] but panics on error.
func MustLoad(opts ...Option) *Profile {
	p, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("profile.MustLoad: %v", err))
	}
	return p
}

func (s source) load() (map[string]any, error) {
	data, err := s.read()
	if err != nil {
		return nil, newError(s.name, "read", err)
	}

	dec, err := codec.GetDecoder(s.format)
	if err != nil {
		return nil, newError(s.name, "decode", err)
	}

	var values map[string]any
	if err = dec.Decode(data, &values); err != nil {
		return nil, newError(s.name, "decode", err)
	}

	return normalizeMapKeys(values), nil
}

// decode writes values over p. Unknown keys are an error.
func decode(values map[string]any, p *Profile) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		ZeroFields:       true,
		ErrorUnused:      true,
		DecodeHook:       stringToListHook,
		Result:           p,
	})
	if err != nil {
		return newError("profile", "decode", fmt.Errorf("failed to create decoder: %w", err))
	}

	if err = decoder.Decode(values); err != nil {
		return newError("profile", "decode", err)
	}

	return nil
}

// stringToListHook splits comma separated strings into trimmed lists, as
// environment variables carry them.
func stringToListHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}

	s, ok := data.(string)
	if !ok || s == "" {
		return []string{}, nil
	}

	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts, nil
}

// normalizeMapKeys lowercases keys recursively and maps "-" to "_", so
// "Media-Types" and "media_types" name the same key.
func normalizeMapKeys(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	normalized := make(map[string]any, len(m))
	for k, v := range m {
		key := strings.ReplaceAll(strings.ToLower(k), "-", "_")
		if nested, ok := v.(map[string]any); ok {
			normalized[key] = normalizeMapKeys(nested)
		} else {
			normalized[key] = v
		}
	}

	return normalized
}

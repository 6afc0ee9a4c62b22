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

package negotiate

import (
	"slices"
	"strings"
)

// MediaType is a parsed media type such as "text/html;charset=utf-8".
// Type and Subtype may be "*".
type MediaType struct {
	Type    string
	Subtype string

	// Params holds the media type parameters keyed by lowercased name.
	// Nil when there are none.
	Params map[string]string
}

// ParseMediaType parses "type/subtype;key=value". It never fails: type and
// subtype are lowercased, a value without a slash is treated as "value/*",
// and malformed parameters are skipped. A q parameter is kept like any other
// parameter; strip it beforehand when parsing header entries.
func ParseMediaType(s string) MediaType {
	var mt MediaType

	base := s
	if semicolon := strings.IndexByte(s, ';'); semicolon != -1 {
		base = s[:semicolon]
		mt.Params = parseMediaParams(s[semicolon+1:])
	}

	start, end := trimWhitespace(base)
	base = base[start:end]

	slash := strings.IndexByte(base, '/')
	if slash == -1 {
		mt.Type = strings.ToLower(base)
		mt.Subtype = "*"
		return mt
	}

	mt.Type = strings.ToLower(strings.TrimSpace(base[:slash]))
	mt.Subtype = strings.ToLower(strings.TrimSpace(base[slash+1:]))
	if mt.Subtype == "" {
		mt.Subtype = "*"
	}

	return mt
}

// parseMediaParams parses the ";"-separated parameter list that follows a
// media type.
func parseMediaParams(s string) map[string]string {
	var params map[string]string

	for _, param := range strings.Split(s, ";") {
		key, value, ok := splitParam(param)
		if !ok {
			continue
		}
		if params == nil {
			params = make(map[string]string, 2)
		}
		params[key] = value
	}

	return params
}

// String renders the media type with its parameters in lexical key order.
func (mt MediaType) String() string {
	var b strings.Builder
	b.WriteString(mt.Type)
	b.WriteByte('/')
	b.WriteString(mt.Subtype)

	keys := make([]string, 0, len(mt.Params))
	for k := range mt.Params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		b.WriteByte(';')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(mt.Params[k])
	}

	return b.String()
}

// IsWildcard reports whether the type or the subtype is "*".
func (mt MediaType) IsWildcard() bool {
	return mt.Type == "*" || mt.Subtype == "*"
}

// shortNames maps short format names to full media types.
var shortNames = map[string]string{
	"html":       "text/html",
	"htm":        "text/html",
	"json":       "application/json",
	"xml":        "application/xml",
	"text":       "text/plain",
	"txt":        "text/plain",
	"csv":        "text/csv",
	"yaml":       "application/yaml",
	"toml":       "application/toml",
	"msgpack":    "application/msgpack",
	"protobuf":   "application/x-protobuf",
	"png":        "image/png",
	"jpg":        "image/jpeg",
	"jpeg":       "image/jpeg",
	"gif":        "image/gif",
	"webp":       "image/webp",
	"avif":       "image/avif",
	"svg":        "image/svg+xml",
	"css":        "text/css",
	"js":         "application/javascript",
	"javascript": "application/javascript",
	"mjs":        "application/javascript",
	"wasm":       "application/wasm",
	"pdf":        "application/pdf",
	"zip":        "application/zip",
	"mp4":        "video/mp4",
	"webm":       "video/webm",
	"mp3":        "audio/mpeg",
	"wav":        "audio/wav",
}

// ExpandMediaType converts a short format name such as "json" into a full
// media type using a fixed built-in table, so expansion does not depend on
// the host's mime.types files. Anything that already contains a slash, or
// that is not in the table, is returned unchanged.
func ExpandMediaType(name string) string {
	trimmed := strings.TrimSpace(name)
	if strings.Contains(trimmed, "/") {
		return trimmed
	}

	if full, ok := shortNames[strings.ToLower(trimmed)]; ok {
		return full
	}

	return trimmed
}

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

import "strings"

// Header names of the four negotiated header families.
const (
	HeaderAccept         = "Accept"
	HeaderAcceptLanguage = "Accept-Language"
	HeaderAcceptCharset  = "Accept-Charset"
	HeaderAcceptEncoding = "Accept-Encoding"
)

// Header is a raw Accept-style header value as received from the client.
// The zero value represents a header that was not sent.
type Header struct {
	// Value is the comma-separated header value. Multiple header lines are
	// folded into one value before negotiation.
	Value string

	// Present reports whether the client sent the header at all.
	Present bool
}

// HeaderOf returns a present header with the given value.
func HeaderOf(value string) Header {
	return Header{Value: value, Present: true}
}

// NoHeader is a header that was not sent.
var NoHeader = Header{}

// HeaderSource supplies raw header lines by name. It is implemented by
// [net/http.Header] and by the framework adapters under contrib/.
type HeaderSource interface {
	Values(name string) []string
}

// Lookup reads the named header from src. Multiple lines are joined with
// ", " as allowed for list-based headers. A nil source yields [NoHeader].
func Lookup(src HeaderSource, name string) Header {
	if src == nil {
		return NoHeader
	}

	values := src.Values(name)
	switch len(values) {
	case 0:
		return NoHeader
	case 1:
		return HeaderOf(values[0])
	default:
		return HeaderOf(strings.Join(values, ", "))
	}
}

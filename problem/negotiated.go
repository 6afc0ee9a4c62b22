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

package problem

import (
	"net/http"

	"rivaas.dev/negotiate"
)

// Negotiated selects a formatter from the request's Accept header.
// Build it with [NewNegotiated] and [Negotiated.Offer]; after that it is
// read-only and safe for concurrent use.
type Negotiated struct {
	negotiator *negotiate.Negotiator
	table      *negotiate.Table[Formatter]
}

// NewNegotiated creates a negotiated formatter that uses fallback when the
// client accepts none of the offered media types. A nil fallback defaults
// to an [RFC9457] formatter without base URL.
func NewNegotiated(fallback Formatter) *Negotiated {
	if fallback == nil {
		fallback = NewRFC9457("")
	}

	return &Negotiated{
		negotiator: negotiate.MediaTypes,
		table:      negotiate.MustNewTable(func() Formatter { return fallback }),
	}
}

// NewDefaultNegotiated offers RFC 9457, JSON:API and simple JSON bodies,
// in that order of preference, and falls back to RFC 9457.
func NewDefaultNegotiated(baseURL string) *Negotiated {
	rfc := NewRFC9457(baseURL)

	return NewNegotiated(rfc).
		Offer(ContentTypeProblemJSON, rfc).
		Offer(ContentTypeJSONAPI, NewJSONAPI()).
		Offer("application/json", NewSimple())
}

// Offer registers f for mediaType. Media types offered first win ties.
func (n *Negotiated) Offer(mediaType string, f Formatter) *Negotiated {
	if f != nil {
		n.table.On(mediaType, func() Formatter { return f })
	}
	return n
}

// Offers returns the offered media types in preference order.
func (n *Negotiated) Offers() []string {
	return n.table.Keys()
}

// Format negotiates a formatter for req and formats err with it.
// The response carries "Vary: Accept".
func (n *Negotiated) Format(req *http.Request, err error) Response {
	var h negotiate.Header
	if req != nil {
		h = negotiate.Lookup(req.Header, negotiate.HeaderAccept)
	}

	resp := negotiate.Dispatch(n.negotiator, h, n.table).Format(req, err)
	if resp.Headers == nil {
		resp.Headers = make(http.Header)
	}
	resp.Headers.Add("Vary", negotiate.HeaderAccept)

	return resp
}

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
	"net/http"
	"strings"
)

// Service bundles one negotiator per domain. It is immutable and safe for
// concurrent use; build it once and share it between requests.
type Service struct {
	negotiators [domainCount]*Negotiator
}

const domainCount = int(EncodingDomain) + 1

// ServiceOption configures a [Service].
type ServiceOption func(*Service)

// WithNegotiator installs n for its own domain, replacing the default.
// A nil negotiator is ignored.
func WithNegotiator(n *Negotiator) ServiceOption {
	return func(s *Service) {
		if n != nil {
			s.negotiators[n.domain] = n
		}
	}
}

// NewService creates a service using the default negotiators for every
// domain not configured through [WithNegotiator].
//
// Example:
//
//	svc := negotiate.NewService(
//	    negotiate.WithNegotiator(negotiate.MustNew(negotiate.LanguageDomain,
//	        negotiate.WithAbsentPolicy(negotiate.AcceptAll))),
//	)
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		negotiators: [domainCount]*Negotiator{MediaTypes, Languages, Charsets, Encodings},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultService uses the default negotiators.
var DefaultService = NewService()

// Negotiator returns the negotiator for d, or nil for an unknown domain.
func (s *Service) Negotiator(d Domain) *Negotiator {
	if !d.valid() {
		return nil
	}
	return s.negotiators[d]
}

// Request returns a request-scoped view reading headers from src.
func (s *Service) Request(src HeaderSource) *Request {
	return &Request{service: s, source: src}
}

// FromRequest returns a view of r using [DefaultService].
// A nil request behaves as a request without headers.
func FromRequest(r *http.Request) *Request {
	if r == nil {
		return DefaultService.Request(nil)
	}
	return DefaultService.Request(r.Header)
}

// Request reads negotiation headers from a single request. It does not
// cache anything; every call re-reads the header source.
type Request struct {
	service *Service
	source  HeaderSource
}

// Header returns the raw header of domain d.
func (r *Request) Header(d Domain) Header {
	return Lookup(r.source, d.HeaderName())
}

// Domain returns a view bound to the header of domain d. For a domain
// outside the four header families the view accepts nothing.
func (r *Request) Domain(d Domain) Bound {
	return Bound{negotiator: r.service.Negotiator(d), header: r.Header(d)}
}

// MediaType returns a view bound to the Accept header.
func (r *Request) MediaType() Bound { return r.Domain(MediaTypeDomain) }

// Language returns a view bound to the Accept-Language header.
func (r *Request) Language() Bound { return r.Domain(LanguageDomain) }

// Charset returns a view bound to the Accept-Charset header.
func (r *Request) Charset() Bound { return r.Domain(CharsetDomain) }

// Encoding returns a view bound to the Accept-Encoding header.
func (r *Request) Encoding() Bound { return r.Domain(EncodingDomain) }

// Accepts returns the best of the offered media types, or "" if none is
// acceptable. Offers may be short names such as "json" or "html"; the
// offer is returned as given.
//
// Examples:
//
//	// Accept: application/json, text/html
//	req.Accepts("json", "html")  // "json"
//
//	// Accept: text/html, application/json;q=0.8
//	req.Accepts("json", "html")  // "html" (higher quality)
func (r *Request) Accepts(offers ...string) string {
	best, _ := r.MediaType().Best(offers...)
	return best
}

// AcceptsCharsets returns the best offered charset, or "".
//
//	// Accept-Charset: utf-8, iso-8859-1;q=0.5
//	req.AcceptsCharsets("iso-8859-1", "utf-8")  // "utf-8"
func (r *Request) AcceptsCharsets(offers ...string) string {
	best, _ := r.Charset().Best(offers...)
	return best
}

// AcceptsEncodings returns the best offered content coding, or "".
//
//	// Accept-Encoding: gzip, deflate;q=0.8, br;q=1.0
//	req.AcceptsEncodings("gzip", "br", "deflate")  // "gzip" (offered first at q=1)
func (r *Request) AcceptsEncodings(offers ...string) string {
	best, _ := r.Encoding().Best(offers...)
	return best
}

// AcceptsLanguages returns the best offered language, or "".
//
//	// Accept-Language: en-US, en;q=0.9, fr;q=0.8
//	req.AcceptsLanguages("fr", "en-GB")  // "en-GB" (prefix of en at q=0.9)
func (r *Request) AcceptsLanguages(offers ...string) string {
	best, _ := r.Language().Best(offers...)
	return best
}

// Bound is a negotiator paired with a header value. A Bound without
// negotiator reports no match.
type Bound struct {
	negotiator *Negotiator
	header     Header
}

// Header returns the bound header.
func (b Bound) Header() Header { return b.header }

// Best is [Negotiator.Best] on the bound header.
func (b Bound) Best(candidates ...string) (string, bool) {
	if b.negotiator == nil {
		return "", false
	}
	return b.negotiator.Best(b.header, candidates...)
}

// Accepts is [Negotiator.Accepts] on the bound header.
func (b Bound) Accepts(candidate string) bool {
	if b.negotiator == nil {
		return false
	}
	return b.negotiator.Accepts(b.header, candidate)
}

// Acceptable is [Negotiator.Acceptable] on the bound header.
func (b Bound) Acceptable(candidates ...string) []string {
	if b.negotiator == nil {
		return nil
	}
	return b.negotiator.Acceptable(b.header, candidates...)
}

// Rank is [Negotiator.Rank] on the bound header.
func (b Bound) Rank(candidates ...string) []Match {
	if b.negotiator == nil {
		return nil
	}
	return b.negotiator.Rank(b.header, candidates...)
}

// AddVary appends field to the Vary header of h unless it, or "*", is
// already listed.
func AddVary(h http.Header, field string) {
	for _, line := range h.Values("Vary") {
		for name := range strings.SplitSeq(line, ",") {
			name = strings.TrimSpace(name)
			if name == "*" || strings.EqualFold(name, field) {
				return
			}
		}
	}
	h.Add("Vary", field)
}

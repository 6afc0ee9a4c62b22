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
	"fmt"
	"strings"
)

// Domain identifies one of the four negotiated header families.
type Domain int

// Negotiation domains.
const (
	MediaTypeDomain Domain = iota // Accept
	LanguageDomain                // Accept-Language
	CharsetDomain                 // Accept-Charset
	EncodingDomain                // Accept-Encoding
)

// Domains lists every domain in declaration order.
var Domains = []Domain{MediaTypeDomain, LanguageDomain, CharsetDomain, EncodingDomain}

// String returns the domain name as used in configuration and metrics.
func (d Domain) String() string {
	switch d {
	case MediaTypeDomain:
		return "media_type"
	case LanguageDomain:
		return "language"
	case CharsetDomain:
		return "charset"
	case EncodingDomain:
		return "encoding"
	default:
		return fmt.Sprintf("domain(%d)", int(d))
	}
}

// HeaderName returns the request header that carries the client's
// preferences for the domain.
func (d Domain) HeaderName() string {
	switch d {
	case MediaTypeDomain:
		return HeaderAccept
	case LanguageDomain:
		return HeaderAcceptLanguage
	case CharsetDomain:
		return HeaderAcceptCharset
	case EncodingDomain:
		return HeaderAcceptEncoding
	default:
		return ""
	}
}

func (d Domain) valid() bool {
	return d >= MediaTypeDomain && d <= EncodingDomain
}

// ParseDomain parses a domain name. It accepts the names returned by
// [Domain.String], short forms ("media", "lang") and header names
// ("Accept-Language"), case-insensitively.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "media_type", "media-type", "mediatype", "media", "accept", "type":
		return MediaTypeDomain, nil
	case "language", "lang", "accept-language":
		return LanguageDomain, nil
	case "charset", "accept-charset":
		return CharsetDomain, nil
	case "encoding", "accept-encoding":
		return EncodingDomain, nil
	}

	return 0, configError("parse domain", s, ErrUnknownDomain)
}

// Policy decides what a header without usable preferences means.
type Policy int

// Policies.
const (
	// AcceptAll treats every candidate as acceptable; the first one wins.
	AcceptAll Policy = iota

	// AcceptNone treats no candidate as acceptable.
	AcceptNone
)

// String returns "accept_all" or "accept_none".
func (p Policy) String() string {
	switch p {
	case AcceptAll:
		return "accept_all"
	case AcceptNone:
		return "accept_none"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy parses "accept_all" / "all" or "accept_none" / "none",
// case-insensitively, with "-" and "_" interchangeable.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "accept_all", "all":
		return AcceptAll, nil
	case "accept_none", "none":
		return AcceptNone, nil
	}

	return 0, configError("parse policy", s, ErrInvalidPolicy)
}

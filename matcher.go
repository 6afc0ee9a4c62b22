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

// Specificity levels reported by the built-in matchers. Higher is more
// specific. Only the relative order within one domain is meaningful.
const (
	SpecificityWildcard    = 1 // "*" or "*/*"
	SpecificityPrefix      = 2 // "text/*", or language "en" for "en-US"
	SpecificityExact       = 3 // "text/html", "gzip", "en-US"
	SpecificityExactParams = 4 // "text/html;level=1" matching its parameters
)

const wildcard = "*"

// Matcher decides whether a preference entry matches a server candidate.
// Implementations must be safe for concurrent use.
type Matcher interface {
	// Match reports whether pref matches candidate and, if so, how
	// specific the match is.
	Match(pref Preference, candidate string) (specificity int, ok bool)
}

// Validator is implemented by matchers that can tell a usable preference
// from one they cannot parse. The [Negotiator] drops unusable preferences
// before choosing between matching and the empty-header policy, so a header
// made only of unusable entries counts as empty. Matchers without Valid
// keep every entry.
type Validator interface {
	Valid(pref Preference) bool
}

// MatcherFunc adapts an ordinary function to the [Matcher] interface.
type MatcherFunc func(pref Preference, candidate string) (int, bool)

// Match calls f(pref, candidate).
func (f MatcherFunc) Match(pref Preference, candidate string) (int, bool) {
	return f(pref, candidate)
}

// MediaTypeMatcher matches media types with wildcards and parameters.
//
// A preference matches when the types are equal or either is "*", the
// subtypes are equal or either is "*", and every parameter of the preference
// is present on the candidate with an equal value (values compare
// case-insensitively). Parameters on the candidate alone are ignored.
//
// Specificity: exact type and subtype with matched parameters
// ([SpecificityExactParams]) > exact type and subtype ([SpecificityExact]) >
// exact type with wildcard subtype ([SpecificityPrefix]) > wildcard type
// ([SpecificityWildcard]).
type MediaTypeMatcher struct{}

// Match implements [Matcher].
func (MediaTypeMatcher) Match(pref Preference, candidate string) (int, bool) {
	return matchMediaType(ParseMediaType(pref.Value), pref.Params, ParseMediaType(candidate))
}

// Valid reports whether pref.Value is "type/subtype" or a bare "type", with
// both parts tokens or "*".
func (MediaTypeMatcher) Valid(pref Preference) bool {
	typ, subtype, hasSlash := strings.Cut(pref.Value, "/")
	if !isToken(strings.TrimSpace(typ)) {
		return false
	}
	return !hasSlash || isToken(strings.TrimSpace(subtype))
}

// matchMediaType matches an already parsed preference against an already
// parsed candidate. prefParams are the preference parameters without q.
func matchMediaType(pref MediaType, prefParams map[string]string, cand MediaType) (int, bool) {
	typeWild := pref.Type == wildcard || cand.Type == wildcard
	if !typeWild && pref.Type != cand.Type {
		return 0, false
	}

	subtypeWild := pref.Subtype == wildcard || cand.Subtype == wildcard
	if !subtypeWild && pref.Subtype != cand.Subtype {
		return 0, false
	}

	for k, v := range prefParams {
		cv, ok := cand.Params[k]
		if !ok || !strings.EqualFold(cv, v) {
			return 0, false
		}
	}

	switch {
	case typeWild:
		return SpecificityWildcard, true
	case subtypeWild:
		return SpecificityPrefix, true
	case len(prefParams) > 0:
		return SpecificityExactParams, true
	default:
		return SpecificityExact, true
	}
}

// LanguageMatcher matches language tags. "en" matches "en", "en-US" and
// "en-GB"; "*" matches everything. Comparison is case-insensitive and "_" is
// read as "-".
//
// Specificity: exact ([SpecificityExact]) > primary-tag prefix
// ([SpecificityPrefix]) > "*" ([SpecificityWildcard]).
type LanguageMatcher struct{}

// Match implements [Matcher].
func (LanguageMatcher) Match(pref Preference, candidate string) (int, bool) {
	p := normalizeLanguage(pref.Value)
	c := normalizeLanguage(candidate)

	switch {
	case p == c:
		return SpecificityExact, true
	case p == wildcard:
		return SpecificityWildcard, true
	case len(c) > len(p) && strings.HasPrefix(c, p) && c[len(p)] == '-':
		return SpecificityPrefix, true
	}

	return 0, false
}

// Valid reports whether pref.Value is a token such as "en-US" or "*".
func (LanguageMatcher) Valid(pref Preference) bool {
	return isToken(strings.TrimSpace(pref.Value))
}

func normalizeLanguage(tag string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), "_", "-")
}

// TokenMatcher matches opaque tokens such as charsets and content codings:
// a case-insensitive exact match ([SpecificityExact]) or "*"
// ([SpecificityWildcard]).
type TokenMatcher struct{}

// Match implements [Matcher].
func (TokenMatcher) Match(pref Preference, candidate string) (int, bool) {
	p := strings.TrimSpace(pref.Value)
	c := strings.TrimSpace(candidate)

	switch {
	case strings.EqualFold(p, c):
		return SpecificityExact, true
	case p == wildcard:
		return SpecificityWildcard, true
	}

	return 0, false
}

// Valid reports whether pref.Value is a token.
func (TokenMatcher) Valid(pref Preference) bool {
	return isToken(strings.TrimSpace(pref.Value))
}

// isToken reports whether s is a non-empty HTTP token (RFC 9110 tchar*).
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$%&'*+-.^_`|~", c) != -1
}

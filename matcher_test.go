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
	"testing"

	"github.com/stretchr/testify/assert"
)

func pref(header string) Preference {
	prefs := ParsePreferences(header)
	if len(prefs) != 1 {
		panic("pref: expected exactly one entry in " + header)
	}
	return prefs[0]
}

func TestMediaTypeMatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		preference  string
		candidate   string
		matches     bool
		specificity int
	}{
		{"exact", "application/json", "application/json", true, SpecificityExact},
		{"case-insensitive", "Application/JSON", "application/json", true, SpecificityExact},
		{"subtype wildcard", "text/*", "text/html", true, SpecificityPrefix},
		{"global wildcard", "*/*", "image/png", true, SpecificityWildcard},
		{"type mismatch", "text/html", "application/json", false, 0},
		{"subtype mismatch", "text/html", "text/plain", false, 0},
		{"subtype wildcard other type", "text/*", "image/png", false, 0},
		{"candidate wildcard subtype", "text/html", "text/*", true, SpecificityPrefix},
		{"candidate global wildcard", "text/html", "*/*", true, SpecificityWildcard},
		{"params matched", "text/html;level=1", "text/html;level=1", true, SpecificityExactParams},
		{"param value case-insensitive", "text/html;charset=UTF-8", "text/html;charset=utf-8", true, SpecificityExactParams},
		{"param missing on candidate", "text/html;level=1", "text/html", false, 0},
		{"param differs", "text/html;level=1", "text/html;level=2", false, 0},
		{"candidate params ignored", "text/html", "text/html;level=2", true, SpecificityExact},
		{"q is not a param", "text/html;q=0.4", "text/html", true, SpecificityExact},
		{"wildcard with params", "text/*;charset=utf-8", "text/plain;charset=utf-8", true, SpecificityPrefix},
	}

	m := MediaTypeMatcher{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			specificity, ok := m.Match(pref(tt.preference), tt.candidate)
			assert.Equal(t, tt.matches, ok)
			assert.Equal(t, tt.specificity, specificity)
		})
	}
}

func TestMediaTypeMatcher_SpecificityOrder(t *testing.T) {
	t.Parallel()

	m := MediaTypeMatcher{}
	candidate := "text/html;level=1"

	withParams, _ := m.Match(pref("text/html;level=1"), candidate)
	exact, _ := m.Match(pref("text/html"), candidate)
	typeOnly, _ := m.Match(pref("text/*"), candidate)
	global, _ := m.Match(pref("*/*"), candidate)

	assert.Greater(t, withParams, exact)
	assert.Greater(t, exact, typeOnly)
	assert.Greater(t, typeOnly, global)
}

func TestLanguageMatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		preference  string
		candidate   string
		matches     bool
		specificity int
	}{
		{"exact", "en-US", "en-US", true, SpecificityExact},
		{"case-insensitive", "EN-us", "en-US", true, SpecificityExact},
		{"underscore", "en_US", "en-us", true, SpecificityExact},
		{"prefix", "en", "en-US", true, SpecificityPrefix},
		{"prefix of longer tag", "zh", "zh-Hant-TW", true, SpecificityPrefix},
		{"wildcard", "*", "de", true, SpecificityWildcard},
		{"not a tag boundary", "en", "eng", false, 0},
		{"candidate is prefix of preference", "en-US", "en", false, 0},
		{"different language", "fr", "en", false, 0},
	}

	m := LanguageMatcher{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			specificity, ok := m.Match(pref(tt.preference), tt.candidate)
			assert.Equal(t, tt.matches, ok)
			assert.Equal(t, tt.specificity, specificity)
		})
	}
}

func TestTokenMatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		preference  string
		candidate   string
		matches     bool
		specificity int
	}{
		{"exact", "gzip", "gzip", true, SpecificityExact},
		{"case-insensitive", "UTF-8", "utf-8", true, SpecificityExact},
		{"wildcard", "*", "br", true, SpecificityWildcard},
		{"mismatch", "gzip", "br", false, 0},
		{"no prefix matching", "iso", "iso-8859-1", false, 0},
	}

	m := TokenMatcher{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			specificity, ok := m.Match(pref(tt.preference), tt.candidate)
			assert.Equal(t, tt.matches, ok)
			assert.Equal(t, tt.specificity, specificity)
		})
	}
}

func TestMatcherFunc(t *testing.T) {
	t.Parallel()

	var called bool
	m := MatcherFunc(func(p Preference, c string) (int, bool) {
		called = true
		return 7, p.Value == c
	})

	specificity, ok := m.Match(pref("x"), "x")
	assert.True(t, called)
	assert.True(t, ok)
	assert.Equal(t, 7, specificity)
}

func TestMatchers_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		matcher Validator
		value   string
		valid   bool
	}{
		{"media type", MediaTypeMatcher{}, "text/html", true},
		{"media wildcard", MediaTypeMatcher{}, "*/*", true},
		{"bare media type", MediaTypeMatcher{}, "text", true},
		{"structured suffix", MediaTypeMatcher{}, "application/problem+json", true},
		{"bare slash", MediaTypeMatcher{}, "/", false},
		{"missing subtype", MediaTypeMatcher{}, "text/", false},
		{"missing type", MediaTypeMatcher{}, "/html", false},
		{"equals sign", MediaTypeMatcher{}, "=", false},
		{"two slashes", MediaTypeMatcher{}, "a/b/c", false},
		{"language tag", LanguageMatcher{}, "en-US", true},
		{"language wildcard", LanguageMatcher{}, "*", true},
		{"language with slash", LanguageMatcher{}, "en/US", false},
		{"token", TokenMatcher{}, "iso-8859-1", true},
		{"token with equals", TokenMatcher{}, "gzip=1", false},
		{"token with slash", TokenMatcher{}, "x/y", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.valid, tt.matcher.Valid(pref(tt.value)))
		})
	}
}

func TestNegotiator_CustomMatcherKeepsEntries(t *testing.T) {
	t.Parallel()

	n := MustNew(CharsetDomain, WithMatcher(MatcherFunc(func(p Preference, c string) (int, bool) {
		return 1, p.Value == c
	})))

	best, ok := n.Best(HeaderOf("="), "a", "=")
	assert.True(t, ok)
	assert.Equal(t, "=", best)
}

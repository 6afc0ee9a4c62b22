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
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiator_MediaTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   Header
		offers   []string
		expected string
	}{
		{
			name:     "simple json preference",
			header:   HeaderOf("application/json"),
			offers:   []string{"json", "xml", "html"},
			expected: "json",
		},
		{
			name:     "prefer higher quality",
			header:   HeaderOf("text/html, application/json;q=0.8"),
			offers:   []string{"json", "html"},
			expected: "html",
		},
		{
			name:     "prefer explicit higher quality",
			header:   HeaderOf("application/json;q=0.9, text/html;q=0.7"),
			offers:   []string{"html", "json"},
			expected: "json",
		},
		{
			name:     "global wildcard returns first offer",
			header:   HeaderOf("*/*"),
			offers:   []string{"json", "xml"},
			expected: "json",
		},
		{
			name:     "type wildcard",
			header:   HeaderOf("text/*"),
			offers:   []string{"json", "html", "txt"},
			expected: "html",
		},
		{
			name:     "no match",
			header:   HeaderOf("application/xml"),
			offers:   []string{"json", "html"},
			expected: "",
		},
		{
			name:     "full media type offers",
			header:   HeaderOf("application/json, text/html"),
			offers:   []string{"application/json", "text/html"},
			expected: "application/json",
		},
		{
			name:     "equal weight, exact beats wildcard",
			header:   HeaderOf("text/*, text/html"),
			offers:   []string{"txt", "html"},
			expected: "html",
		},
		{
			name:     "specificity decides the weight of a candidate",
			header:   HeaderOf("text/*;q=0.5, text/html;q=0.9"),
			offers:   []string{"text/plain", "text/html"},
			expected: "text/html",
		},
		{
			name:     "weight beats specificity",
			header:   HeaderOf("text/html;q=0.4, */*;q=0.8"),
			offers:   []string{"text/html", "application/json"},
			expected: "application/json",
		},
		{
			name:     "preference parameters must match",
			header:   HeaderOf("application/json;version=2, application/xml;q=0.5"),
			offers:   []string{"application/json;version=1", "application/json;version=2", "application/xml"},
			expected: "application/json;version=2",
		},
		{
			name:     "browser header",
			header:   HeaderOf("text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"),
			offers:   []string{"json", "xml", "html"},
			expected: "html",
		},
		{
			name:     "empty offers",
			header:   HeaderOf("application/json"),
			offers:   []string{},
			expected: "",
		},
		{
			name:     "absent header returns first offer",
			header:   NoHeader,
			offers:   []string{"json", "xml"},
			expected: "json",
		},
		{
			name:     "whitespace header returns first offer",
			header:   HeaderOf("   "),
			offers:   []string{"json", "xml"},
			expected: "json",
		},
		{
			name:     "commas only returns first offer",
			header:   HeaderOf(",,,"),
			offers:   []string{"xml", "json"},
			expected: "xml",
		},
		{
			name:     "all entries rejected",
			header:   HeaderOf("*/*;q=0"),
			offers:   []string{"json", "html"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := MediaTypes.Best(tt.header, tt.offers...)
			assert.Equal(t, tt.expected, got, "Best(%+v, %v)", tt.header, tt.offers)
			assert.Equal(t, tt.expected != "", ok)
		})
	}
}

func TestNegotiator_Languages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   Header
		offers   []string
		expected string
	}{
		{"exact match", HeaderOf("en-US, en;q=0.9, fr;q=0.8"), []string{"fr", "en-US"}, "en-US"},
		{"prefix match", HeaderOf("en;q=0.9, fr;q=0.8"), []string{"fr", "en-GB"}, "en-GB"},
		{"exact beats prefix at equal weight", HeaderOf("en"), []string{"en-US", "en"}, "en"},
		{"wildcard", HeaderOf("*;q=0.1"), []string{"de", "es"}, "de"},
		{"no match", HeaderOf("ja"), []string{"en", "fr"}, ""},
		{"rejection beats wildcard", HeaderOf("fr;q=0, *"), []string{"fr", "de"}, "de"},
		{"absent header is no match by default", NoHeader, []string{"en"}, ""},
		{"empty header accepts all by default", HeaderOf(""), []string{"en", "fr"}, "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _ := Languages.Best(tt.header, tt.offers...)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNegotiator_Charsets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   Header
		offers   []string
		expected string
	}{
		{"highest quality", HeaderOf("utf-8, iso-8859-1;q=0.5"), []string{"iso-8859-1", "utf-8"}, "utf-8"},
		{"case-insensitive", HeaderOf("UTF-8"), []string{"utf-8"}, "utf-8"},
		{"wildcard", HeaderOf("*"), []string{"utf-16", "utf-8"}, "utf-16"},
		{"exact beats wildcard", HeaderOf("*;q=0.5, utf-8;q=0.5"), []string{"latin1", "utf-8"}, "utf-8"},
		{"no match", HeaderOf("utf-16"), []string{"utf-8"}, ""},
		{"absent header", NoHeader, []string{"utf-8", "latin1"}, "utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _ := Charsets.Best(tt.header, tt.offers...)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNegotiator_Encodings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   Header
		offers   []string
		expected string
	}{
		{"highest quality", HeaderOf("gzip;q=0.8, br"), []string{"gzip", "br"}, "br"},
		{"tie goes to first offer", HeaderOf("gzip, deflate;q=0.8, br;q=1.0"), []string{"gzip", "br", "deflate"}, "gzip"},
		{"explicit rejection", HeaderOf("br;q=0, gzip;q=0.1"), []string{"br", "gzip"}, "gzip"},
		{"identity rejected through wildcard", HeaderOf("*;q=0"), []string{"identity"}, ""},
		{"absent header", NoHeader, []string{"br", "gzip"}, "br"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _ := Encodings.Best(tt.header, tt.offers...)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNegotiator_ImplicitIdentity(t *testing.T) {
	t.Parallel()

	strict := MustNew(EncodingDomain, WithAbsentPolicy(AcceptNone))

	best, ok := strict.Best(NoHeader, "gzip", "identity")
	assert.True(t, ok)
	assert.Equal(t, "identity", best)

	matches := strict.Rank(NoHeader, "gzip", "Identity")
	require.Len(t, matches, 1)
	assert.Equal(t, Match{Candidate: "Identity", Index: 1, Weight: implicitIdentityWeight}, matches[0])

	_, ok = strict.Best(NoHeader, "gzip", "br")
	assert.False(t, ok, "only identity is implicitly acceptable")

	_, ok = strict.Best(HeaderOf("gzip;q=0"), "identity")
	assert.False(t, ok, "a present header gets no implicit identity")

	noImplicit := MustNew(EncodingDomain, WithAbsentPolicy(AcceptNone), WithImplicitIdentity(false))
	_, ok = noImplicit.Best(NoHeader, "identity")
	assert.False(t, ok)
}

func TestNegotiator_Policies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     []Option
		header   Header
		expected string
	}{
		{"absent accept all", []Option{WithAbsentPolicy(AcceptAll)}, NoHeader, "a/b"},
		{"absent accept none", []Option{WithAbsentPolicy(AcceptNone)}, NoHeader, ""},
		{"empty accept all", []Option{WithEmptyPolicy(AcceptAll)}, HeaderOf(""), "a/b"},
		{"empty accept none", []Option{WithEmptyPolicy(AcceptNone)}, HeaderOf(" , "), ""},
		{"empty policy does not affect absent", []Option{WithEmptyPolicy(AcceptNone)}, NoHeader, "a/b"},
		{"absent policy does not affect empty", []Option{WithAbsentPolicy(AcceptNone)}, HeaderOf(""), "a/b"},
		{"all-zero header is not empty", []Option{WithEmptyPolicy(AcceptAll)}, HeaderOf("a/b;q=0, c/d;q=0"), ""},
		{"only bare slash is empty", []Option{WithEmptyPolicy(AcceptAll)}, HeaderOf("/"), "a/b"},
		{"only equals sign is empty", []Option{WithEmptyPolicy(AcceptAll)}, HeaderOf("="), "a/b"},
		{"unparseable entry with q is empty", []Option{WithEmptyPolicy(AcceptAll)}, HeaderOf("/;q=1"), "a/b"},
		{"missing type or subtype is empty", []Option{WithEmptyPolicy(AcceptAll)}, HeaderOf("text/, /html"), "a/b"},
		{"unparseable entries are skipped", []Option{WithEmptyPolicy(AcceptAll)}, HeaderOf("/, c/d;q=0.5"), "c/d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := MustNew(MediaTypeDomain, tt.opts...)
			got, _ := n.Best(tt.header, "a/b", "c/d")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNegotiator_ExplicitRejection(t *testing.T) {
	t.Parallel()

	h := HeaderOf("application/json;q=0, text/html")

	best, ok := MediaTypes.Best(h, "application/json", "text/html")
	assert.True(t, ok)
	assert.Equal(t, "text/html", best)
	assert.False(t, MediaTypes.Accepts(h, "application/json"))
	assert.True(t, MediaTypes.Accepts(h, "text/html"))

	withWildcard := HeaderOf("application/json;q=0, */*")
	assert.False(t, MediaTypes.Accepts(withWildcard, "application/json"), "rejection is more specific than */*")
	assert.True(t, MediaTypes.Accepts(withWildcard, "image/png"))
}

func TestNegotiator_WeightOrdering(t *testing.T) {
	t.Parallel()

	n := MustNew(CharsetDomain)
	best, ok := n.Best(HeaderOf("a;q=0.2, b;q=0.8"), "a", "b")
	assert.True(t, ok)
	assert.Equal(t, "b", best)
}

func TestNegotiator_Acceptable(t *testing.T) {
	t.Parallel()

	got := MediaTypes.Acceptable(HeaderOf("application/json"), "text/html", "application/json")
	assert.Equal(t, []string{"application/json"}, got)

	got = MediaTypes.Acceptable(HeaderOf("text/*;q=0.5, application/json;q=0.9, text/csv;q=0"),
		"text/plain", "text/csv", "application/json", "image/png", "text/html")
	assert.Equal(t, []string{"application/json", "text/plain", "text/html"}, got)

	assert.Nil(t, MediaTypes.Acceptable(HeaderOf("image/*"), "text/html"))
	assert.Nil(t, MediaTypes.Acceptable(HeaderOf("*/*")))
	assert.Equal(t, []string{"b", "a"}, Encodings.Acceptable(HeaderOf("a;q=0.1, b"), "a", "b"))
}

func TestNegotiator_Rank(t *testing.T) {
	t.Parallel()

	matches := MediaTypes.Rank(HeaderOf("text/*;q=0.5, text/html;level=1, */*;q=0.1"),
		"image/png", "text/html;level=1", "text/plain")

	expected := []Match{
		{Candidate: "text/html;level=1", Index: 1, Weight: 1, Specificity: SpecificityExactParams},
		{Candidate: "text/plain", Index: 2, Weight: 0.5, Specificity: SpecificityPrefix},
		{Candidate: "image/png", Index: 0, Weight: 0.1, Specificity: SpecificityWildcard},
	}
	assert.Equal(t, expected, matches)

	all := MediaTypes.Rank(NoHeader, "a/b", "c/d")
	assert.Equal(t, []Match{
		{Candidate: "a/b", Index: 0, Weight: 1},
		{Candidate: "c/d", Index: 1, Weight: 1},
	}, all)
}

func TestNegotiator_DuplicatePreferences(t *testing.T) {
	t.Parallel()

	matches := Languages.Rank(HeaderOf("en;q=0.3, fr;q=0.5, en;q=0.9"), "fr", "en")
	require.Len(t, matches, 2)
	assert.Equal(t, "en", matches[0].Candidate)
	assert.InDelta(t, 0.9, matches[0].Weight, 1e-9)
}

func TestNegotiator_ShortNamesDisabled(t *testing.T) {
	t.Parallel()

	n := MustNew(MediaTypeDomain, WithShortNames(false))
	_, ok := n.Best(HeaderOf("application/json"), "json")
	assert.False(t, ok)

	best, ok := MediaTypes.Best(HeaderOf("application/json"), "json")
	assert.True(t, ok)
	assert.Equal(t, "json", best, "the offer is returned as given")
}

func TestNegotiator_CustomMatcher(t *testing.T) {
	t.Parallel()

	suffix := MatcherFunc(func(p Preference, c string) (int, bool) {
		if len(c) >= len(p.Value) && c[len(c)-len(p.Value):] == p.Value {
			return len(p.Value), true
		}
		return 0, false
	})

	n := MustNew(CharsetDomain, WithMatcher(suffix))
	best, ok := n.Best(HeaderOf("8, -8"), "latin1", "utf-8")
	assert.True(t, ok)
	assert.Equal(t, "utf-8", best)
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		domain Domain
		opts   []Option
		target error
	}{
		{"unknown domain", Domain(42), nil, ErrUnknownDomain},
		{"negative domain", Domain(-1), nil, ErrUnknownDomain},
		{"nil matcher", CharsetDomain, []Option{WithMatcher(nil)}, ErrNilMatcher},
		{"bad absent policy", LanguageDomain, []Option{WithAbsentPolicy(Policy(9))}, ErrInvalidPolicy},
		{"bad empty policy", LanguageDomain, []Option{WithEmptyPolicy(Policy(-3))}, ErrInvalidPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n, err := New(tt.domain, tt.opts...)
			require.Error(t, err)
			assert.Nil(t, n)
			require.ErrorIs(t, err, tt.target)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, "new", cfgErr.Op)
		})
	}

	assert.Panics(t, func() { MustNew(Domain(42)) })
}

func TestNegotiator_Accessors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MediaTypeDomain, MediaTypes.Domain())
	assert.Equal(t, "Accept", MediaTypes.HeaderName())
	assert.Equal(t, "Accept-Language", Languages.HeaderName())
	assert.Equal(t, "Accept-Charset", Charsets.HeaderName())
	assert.Equal(t, "Accept-Encoding", Encodings.HeaderName())
}

// TestNegotiator_Properties checks invariants over generated inputs.
func TestNegotiator_Properties(t *testing.T) {
	t.Parallel()

	values := []string{"text/html", "text/plain", "application/json", "image/png", "text/*", "*/*", "application/*"}
	qs := []string{"", ";q=0", ";q=0.1", ";q=0.5", ";q=1", ";q=x", ";q=7"}

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		var header string
		for j := rng.IntN(5); j > 0; j-- {
			if header != "" {
				header += ", "
			}
			header += values[rng.IntN(len(values))] + qs[rng.IntN(len(qs))]
		}

		candidates := make([]string, rng.IntN(4))
		for j := range candidates {
			candidates[j] = values[rng.IntN(3)+1]
		}
		original := slices.Clone(candidates)

		h := HeaderOf(header)
		best, ok := MediaTypes.Best(h, candidates...)
		if ok {
			assert.Contains(t, candidates, best, "header %q", header)
		} else {
			assert.Empty(t, best)
		}
		assert.Equal(t, original, candidates, "candidates must not be mutated")

		ranked := MediaTypes.Rank(h, candidates...)
		for k := 1; k < len(ranked); k++ {
			prev, cur := ranked[k-1], ranked[k]
			assert.True(t, prev.Weight > cur.Weight ||
				(prev.Weight == cur.Weight && prev.Specificity > cur.Specificity) ||
				(prev.Weight == cur.Weight && prev.Specificity == cur.Specificity && prev.Index < cur.Index),
				"ranking order for header %q", header)
		}
		for _, m := range ranked {
			assert.Greater(t, m.Weight, 0.0)
			assert.LessOrEqual(t, m.Weight, 1.0)
		}

		_, ok = MediaTypes.Best(h)
		assert.False(t, ok, "no candidates never matches")

		if len(candidates) > 0 {
			first, _ := MediaTypes.Best(NoHeader, candidates...)
			assert.Equal(t, candidates[0], first)
		}
	}
}

func TestNegotiator_Concurrent(t *testing.T) {
	t.Parallel()

	h := HeaderOf("text/html;q=0.8, application/json, */*;q=0.1")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				best, ok := MediaTypes.Best(h, "text/html", "application/json", "image/png")
				assert.True(t, ok)
				assert.Equal(t, "application/json", best)
			}
		}()
	}
	wg.Wait()
}

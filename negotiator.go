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
	"cmp"
	"slices"
	"strings"
)

const (
	identityEncoding = "identity"

	// implicitIdentityWeight is the weight given to "identity" when it is
	// only acceptable because Accept-Encoding was not sent.
	implicitIdentityWeight = 0.001
)

// Match is the score of one acceptable candidate.
type Match struct {
	// Candidate is the caller's candidate string, unchanged.
	Candidate string

	// Index is the position of the candidate in the caller's list.
	Index int

	// Weight is the q-value of the preference that decided the match.
	Weight float64

	// Specificity is how precisely that preference matched. It is 0 when
	// the candidate is acceptable only because of an [AcceptAll] policy.
	Specificity int
}

// Negotiator selects among server candidates for one [Domain]. A Negotiator
// is immutable and safe for concurrent use.
type Negotiator struct {
	domain           Domain
	matcher          Matcher
	absent           Policy
	empty            Policy
	implicitIdentity bool
	shortNames       bool
}

// Default negotiators, one per domain, with default options.
var (
	MediaTypes = MustNew(MediaTypeDomain)
	Languages  = MustNew(LanguageDomain)
	Charsets   = MustNew(CharsetDomain)
	Encodings  = MustNew(EncodingDomain)
)

// New creates a negotiator for the domain. It returns a [ConfigurationError]
// for an unknown domain, a nil matcher or an invalid policy.
//
// Example:
//
//	n, err := negotiate.New(negotiate.LanguageDomain,
//	    negotiate.WithAbsentPolicy(negotiate.AcceptAll),
//	)
func New(domain Domain, opts ...Option) (*Negotiator, error) {
	if !domain.valid() {
		return nil, configError("new", domain.String(), ErrUnknownDomain)
	}

	cfg := defaultConfig(domain)
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.matcher == nil {
		return nil, configError("new", "matcher", ErrNilMatcher)
	}
	if cfg.absent != AcceptAll && cfg.absent != AcceptNone {
		return nil, configError("new", "absent policy", ErrInvalidPolicy)
	}
	if cfg.empty != AcceptAll && cfg.empty != AcceptNone {
		return nil, configError("new", "empty policy", ErrInvalidPolicy)
	}

	return &Negotiator{
		domain:           domain,
		matcher:          cfg.matcher,
		absent:           cfg.absent,
		empty:            cfg.empty,
		implicitIdentity: cfg.implicitIdentity,
		shortNames:       cfg.shortNames,
	}, nil
}

// MustNew is like [New] but panics on error.
func MustNew(domain Domain, opts ...Option) *Negotiator {
	n, err := New(domain, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

// Domain returns the negotiator's domain.
func (n *Negotiator) Domain() Domain {
	return n.domain
}

// HeaderName returns the request header the negotiator reads.
func (n *Negotiator) HeaderName() string {
	return n.domain.HeaderName()
}

// Best returns the best acceptable candidate, or "" and false when none is
// acceptable. Candidates are ranked by weight, then specificity; remaining
// ties go to the candidate offered first.
//
// Example:
//
//	// Accept: text/*;q=0.5, text/html;q=0.9
//	n.Best(h, "text/plain", "text/html") // "text/html", true
func (n *Negotiator) Best(h Header, candidates ...string) (string, bool) {
	matches := n.Rank(h, candidates...)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Candidate, true
}

// Accepts reports whether candidate is acceptable under h.
func (n *Negotiator) Accepts(h Header, candidate string) bool {
	return len(n.Rank(h, candidate)) > 0
}

// Acceptable returns every acceptable candidate, best first. Candidates the
// client did not ask for or rejected with q=0 are left out.
func (n *Negotiator) Acceptable(h Header, candidates ...string) []string {
	matches := n.Rank(h, candidates...)
	if len(matches) == 0 {
		return nil
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Candidate
	}
	return out
}

// Rank scores every candidate against h and returns the acceptable ones,
// ordered by weight descending, specificity descending, then candidate
// order. The candidates slice is not modified.
//
// For each candidate the most specific matching preference decides its
// weight; among equally specific preferences the highest weight counts.
// A candidate whose deciding preference has q=0 is rejected, even when a
// less specific preference such as "*/*" would accept it.
func (n *Negotiator) Rank(h Header, candidates ...string) []Match {
	if len(candidates) == 0 {
		return nil
	}

	if !h.Present {
		return n.applyPolicy(n.absent, true, candidates)
	}

	prefs := n.usable(ParsePreferences(h.Value))
	if len(prefs) == 0 {
		return n.applyPolicy(n.empty, false, candidates)
	}

	matches := make([]Match, 0, len(candidates))
	for i, candidate := range candidates {
		target := candidate
		if n.domain == MediaTypeDomain && n.shortNames {
			target = ExpandMediaType(candidate)
		}

		best := Match{Candidate: candidate, Index: i}
		found := false
		for _, pref := range prefs {
			specificity, ok := n.matcher.Match(pref, target)
			if !ok {
				continue
			}
			if !found || specificity > best.Specificity ||
				(specificity == best.Specificity && pref.Weight > best.Weight) {
				best.Weight = pref.Weight
				best.Specificity = specificity
				found = true
			}
		}

		if found && best.Weight > 0 {
			matches = append(matches, best)
		}
	}

	sortMatches(matches)
	return matches
}

// usable drops the preferences the matcher cannot parse, see [Validator].
func (n *Negotiator) usable(prefs []Preference) []Preference {
	v, ok := n.matcher.(Validator)
	if !ok {
		return prefs
	}
	return slices.DeleteFunc(prefs, func(p Preference) bool { return !v.Valid(p) })
}

// applyPolicy ranks candidates for a header without usable preferences.
func (n *Negotiator) applyPolicy(p Policy, absent bool, candidates []string) []Match {
	if p == AcceptAll {
		matches := make([]Match, len(candidates))
		for i, candidate := range candidates {
			matches[i] = Match{Candidate: candidate, Index: i, Weight: 1}
		}
		return matches
	}

	if absent && n.domain == EncodingDomain && n.implicitIdentity {
		for i, candidate := range candidates {
			if strings.EqualFold(strings.TrimSpace(candidate), identityEncoding) {
				return []Match{{Candidate: candidate, Index: i, Weight: implicitIdentityWeight}}
			}
		}
	}

	return nil
}

// sortMatches orders matches by weight desc, specificity desc, index asc.
func sortMatches(matches []Match) {
	slices.SortStableFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Specificity, a.Specificity); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
}

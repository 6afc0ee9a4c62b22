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

// Option configures a [Negotiator].
type Option func(*config)

// config holds the settings of a negotiator under construction.
type config struct {
	matcher          Matcher
	absent           Policy
	empty            Policy
	implicitIdentity bool
	shortNames       bool
}

// defaultConfig returns the defaults for a domain.
func defaultConfig(domain Domain) *config {
	cfg := &config{
		absent:           AcceptAll,
		empty:            AcceptAll,
		implicitIdentity: true,
		shortNames:       true,
	}

	switch domain {
	case MediaTypeDomain:
		cfg.matcher = MediaTypeMatcher{}
	case LanguageDomain:
		cfg.matcher = LanguageMatcher{}
		cfg.absent = AcceptNone
	default:
		cfg.matcher = TokenMatcher{}
	}

	return cfg
}

// WithAbsentPolicy sets what happens when the client did not send the
// header at all. Default: [AcceptAll], except [AcceptNone] for languages.
//
// Example:
//
//	negotiate.New(negotiate.MediaTypeDomain, negotiate.WithAbsentPolicy(negotiate.AcceptNone))
func WithAbsentPolicy(p Policy) Option {
	return func(cfg *config) {
		cfg.absent = p
	}
}

// WithEmptyPolicy sets what happens when the header was sent but holds no
// parseable entry, e.g. "", " , " or "/" for media types. Entries are
// parseable when the domain's matcher finds them valid, see [Validator].
// Default: [AcceptAll].
// A header whose entries all have q=0 is not empty; it accepts nothing.
func WithEmptyPolicy(p Policy) Option {
	return func(cfg *config) {
		cfg.empty = p
	}
}

// WithMatcher replaces the domain's built-in matcher.
func WithMatcher(m Matcher) Option {
	return func(cfg *config) {
		cfg.matcher = m
	}
}

// WithImplicitIdentity controls whether the "identity" content coding stays
// acceptable, at minimal weight, when Accept-Encoding is absent and the
// absent policy is [AcceptNone]. Only used by the encoding domain.
// Default: true.
func WithImplicitIdentity(enabled bool) Option {
	return func(cfg *config) {
		cfg.implicitIdentity = enabled
	}
}

// WithShortNames controls expansion of short media type candidates such as
// "json" or "html" before matching. Only used by the media type domain.
// Default: true.
func WithShortNames(enabled bool) Option {
	return func(cfg *config) {
		cfg.shortNames = enabled
	}
}

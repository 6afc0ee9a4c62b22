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

// Package negotiate implements HTTP content negotiation for the Accept,
// Accept-Language, Accept-Charset and Accept-Encoding header families.
//
// A [Negotiator] parses a weighted preference list from a header value,
// scores every server candidate against every preference with a [Matcher],
// and selects the best candidate by quality weight, then by specificity,
// then by the order in which the caller offered the candidates.
//
// # Key Features
//
//   - Lenient parsing: malformed q-values default to 1.0, out-of-range values are clamped
//   - Media type matching with wildcards (*/*, type/*) and parameter matching
//   - Language prefix matching (en matches en-US)
//   - Explicit rejection with q=0, even when a wildcard would accept the candidate
//   - Separate, configurable policies for an absent header and an empty header
//   - Callback dispatch keyed by the negotiated value, with a mandatory fallback
//
// # Quick Start
//
//	h := negotiate.HeaderOf("text/*;q=0.5, text/html;q=0.9")
//	best, ok := negotiate.MediaTypes.Best(h, "text/plain", "text/html")
//	// best == "text/html", ok == true
//
// Header values usually come from a request through a [HeaderSource]:
//
//	req := negotiate.FromRequest(r)
//	switch req.Accepts("json", "html") {
//	case "json":
//		// ...
//	case "html":
//		// ...
//	default:
//		w.WriteHeader(http.StatusNotAcceptable)
//	}
//
// # Absent and Empty Headers
//
// A header that was not sent at all and a header that was sent but holds no
// usable entry are governed by two independent policies, see
// [WithAbsentPolicy] and [WithEmptyPolicy]. A header whose entries all carry
// q=0 is neither: it is a present header that accepts nothing.
//
// # Dispatch
//
// [Dispatch] runs the producer registered for the negotiated value. The
// fallback producer is required when the [Table] is built, so a table can
// never miss it at request time:
//
//	table := negotiate.MustNewTable(func() string { return "406" }).
//		On("application/json", renderJSON).
//		On("text/html", renderHTML)
//	body := negotiate.Dispatch(negotiate.MediaTypes, h, table)
//
// # Concurrency
//
// Negotiators, services and tables hold no mutable state after
// construction. All operations are safe for concurrent use.
package negotiate

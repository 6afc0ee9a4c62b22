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

// Package negotiation provides net/http middleware that negotiates the
// response representation once per request.
//
// For every domain with configured offers (media type, language, charset,
// encoding) the middleware picks the best offer with the request's Accept*
// header, stores the outcome in the request context and adds the header
// name to Vary. Handlers read it back with [FromContext].
//
// # Basic Usage
//
//	mw := negotiation.New(
//	    negotiation.WithMediaTypes("application/json", "text/html"),
//	    negotiation.WithLanguages("en", "de"),
//	)
//	http.ListenAndServe(":8080", mw(mux))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    res, _ := negotiation.FromContext(r.Context())
//	    switch res.MediaType {
//	    case "text/html":
//	        ...
//	    }
//	}
//
// # Strict Mode
//
// With [WithStrict] a request for which some domain has no acceptable offer
// is answered with 406 Not Acceptable. The body is a problem document
// rendered by [problem.Negotiated], so the client receives
// application/problem+json, application/vnd.api+json or application/json
// depending on its own Accept header. Without strict mode the handler runs
// and the domain is left unset in the [Result].
//
// # Metrics
//
// Every decision increments negotiation_decisions_total with the domain and
// outcome attributes through an OpenTelemetry meter provider (see
// [WithMeterProvider]).
package negotiation

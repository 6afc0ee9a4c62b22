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

// Package problem formats HTTP error responses, including the 406 Not
// Acceptable response produced when content negotiation finds no match.
//
// Three formatters are provided:
//
//   - [RFC9457]: RFC 9457 problem details, "application/problem+json"
//   - [JSONAPI]: JSON:API error objects, "application/vnd.api+json"
//   - [Simple]: {"error": "..."} objects, "application/json"
//
// [Negotiated] picks one of them from the request's Accept header, so error
// responses are themselves content-negotiated:
//
//	formatter := problem.NewDefaultNegotiated("https://api.example.com/problems")
//	resp := formatter.Format(req, problem.NotAcceptable(negotiate.MediaTypeDomain, h, offers))
//	problem.Write(w, resp)
//
// Errors control the output through optional interfaces: [ErrorType] sets
// the status code, [ErrorCode] a machine-readable code, [ErrorDetails]
// structured details, [ErrorExtensions] extra members and [ErrorHeader] the
// request header that caused the error.
package problem

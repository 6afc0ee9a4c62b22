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

// Package middleware groups the net/http middleware built on negotiate.
//
// Each subpackage is a func(http.Handler) http.Handler constructor configured
// with functional options:
//
//   - negotiation: runs the Accept* negotiation and stores the result in the
//     request context, optionally answering 406 with a problem document
//   - compression: negotiates Accept-Encoding and compresses the response
//     with br, zstd or gzip
//
// Stack compression outside negotiation so 406 bodies are compressed too:
//
//	h := compression.New()(negotiation.New(
//	    negotiation.WithMediaTypes("json", "html"),
//	    negotiation.WithLanguages("en", "fr"),
//	)(mux))
package middleware

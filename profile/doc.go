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

// Package profile loads negotiation profiles: the offers a service makes per
// domain, the header policies and the compression settings.
//
// Profiles are read from JSON, YAML or TOML files (format detected from the
// extension), inline content or environment variables. Later sources
// override earlier ones key by key; the result is decoded over [Default]
// and validated.
//
//	p, err := profile.Load(
//	    profile.WithFile("negotiate.yaml"),
//	    profile.WithEnv("NEGOTIATE_"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts, err := p.MiddlewareOptions()
//
// A YAML profile:
//
//	media_types: [application/json, text/html]
//	languages: [en, de]
//	policy:
//	  absent: accept_all
//	strict: true
//	compression:
//	  min_size: 512
//	  encodings: [zstd, gzip]
package profile

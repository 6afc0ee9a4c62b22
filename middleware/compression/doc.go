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

// Package compression provides net/http middleware for response compression.
//
// The content coding is chosen by negotiating the request's Accept-Encoding
// header against the enabled codings with [negotiate.Negotiator], so
// q-values, wildcards and explicit rejections ("br;q=0") are honoured.
//
// # Basic Usage
//
//	import "rivaas.dev/negotiate/middleware/compression"
//
//	handler := compression.New()(mux)
//
// # Supported Algorithms
//
//   - br: Brotli (github.com/andybalholm/brotli)
//   - zstd: Zstandard (github.com/klauspost/compress/zstd)
//   - gzip: gzip (github.com/klauspost/compress/gzip)
//
// By default the server prefers them in that order; the client's q-values
// decide first, the server order only breaks ties. A request without
// Accept-Encoding, or with an empty one, is answered uncompressed.
//
// # Configuration Options
//
//   - WithEncodings: enabled codings in server preference order
//   - WithGzipLevel, WithBrotliLevel, WithZstdLevel: compression levels
//   - WithMinSize: responses smaller than this are sent uncompressed
//   - WithExcludePaths, WithExcludeExtensions, WithExcludeContentTypes
//   - WithLogger: optional slog logger
//
// Responses always carry "Vary: Accept-Encoding" unless excluded.
package compression

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

package compression

import (
	"log/slog"
	"slices"
	"strings"

	"rivaas.dev/negotiate"
)

// Option defines functional options for compression middleware configuration.
type Option func(*config)

// WithEncodings sets the enabled content codings in server preference order.
// Unknown codings are ignored. Passing no known coding disables compression.
//
// Example:
//
//	compression.New(compression.WithEncodings(compression.Gzip, compression.Brotli))
func WithEncodings(encodings ...string) Option {
	return func(cfg *config) {
		cfg.encodings = cfg.encodings[:0]
		for _, enc := range encodings {
			enc = strings.ToLower(strings.TrimSpace(enc))
			if _, ok := codecs[enc]; ok && !slices.Contains(cfg.encodings, enc) {
				cfg.encodings = append(cfg.encodings, enc)
			}
		}
	}
}

// WithGzipLevel sets the gzip compression level.
// Valid values: -2 (Huffman only) to 9 (best compression).
// Default: gzip.DefaultCompression
//
// Example:
//
//	compression.New(compression.WithGzipLevel(gzip.BestCompression))
func WithGzipLevel(level int) Option {
	return func(cfg *config) {
		cfg.gzipLevel = max(-2, min(level, 9))
	}
}

// WithBrotliLevel sets the Brotli compression level.
// Valid values: 0 (no compression) to 11 (best compression).
// For dynamic content (JSON/text), use 4-5. Higher levels are CPU-expensive.
// Default: 4
func WithBrotliLevel(level int) Option {
	return func(cfg *config) {
		cfg.brotliLevel = max(0, min(level, 11))
	}
}

// WithZstdLevel sets the zstd encoder level.
// Valid values: 1 (fastest) to 4 (best compression), see zstd.EncoderLevel.
// Default: 2 (zstd.SpeedDefault)
func WithZstdLevel(level int) Option {
	return func(cfg *config) {
		cfg.zstdLevel = max(1, min(level, 4))
	}
}

// WithBrotliDisabled removes br from the enabled codings.
func WithBrotliDisabled() Option {
	return func(cfg *config) {
		cfg.encodings = slices.DeleteFunc(cfg.encodings, func(v string) bool { return v == Brotli })
	}
}

// WithGzipDisabled removes gzip from the enabled codings.
func WithGzipDisabled() Option {
	return func(cfg *config) {
		cfg.encodings = slices.DeleteFunc(cfg.encodings, func(v string) bool { return v == Gzip })
	}
}

// WithZstdDisabled removes zstd from the enabled codings.
func WithZstdDisabled() Option {
	return func(cfg *config) {
		cfg.encodings = slices.DeleteFunc(cfg.encodings, func(v string) bool { return v == Zstd })
	}
}

// WithMinSize sets the minimum response size to compress (in bytes).
// Responses are buffered up to this size before the decision is made;
// smaller bodies are written uncompressed. Zero compresses everything.
//
// Example:
//
//	compression.New(compression.WithMinSize(1024))
func WithMinSize(size int) Option {
	return func(cfg *config) {
		cfg.minSize = max(0, size)
	}
}

// WithExcludePaths sets paths that should not be compressed.
// Useful for endpoints that already serve compressed content or streaming responses.
//
// Example:
//
//	compression.New(compression.WithExcludePaths("/metrics", "/stream"))
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, path := range paths {
			cfg.excludePaths[path] = true
		}
	}
}

// WithExcludeExtensions sets file extensions that should not be compressed.
//
// Example:
//
//	compression.New(compression.WithExcludeExtensions(".jpg", ".png", ".zip"))
func WithExcludeExtensions(extensions ...string) Option {
	return func(cfg *config) {
		for _, ext := range extensions {
			cfg.excludeExtensions[ext] = true
		}
	}
}

// WithExcludeContentTypes sets content types that should not be compressed.
// Matching is by case-insensitive substring of the response Content-Type.
func WithExcludeContentTypes(contentTypes ...string) Option {
	return func(cfg *config) {
		for _, ct := range contentTypes {
			cfg.excludeContentTypes[strings.ToLower(ct)] = true
		}
	}
}

// WithNegotiator replaces the Accept-Encoding negotiator. It must serve
// [negotiate.EncodingDomain]; other negotiators are ignored.
func WithNegotiator(n *negotiate.Negotiator) Option {
	return func(cfg *config) {
		if n != nil && n.Domain() == negotiate.EncodingDomain {
			cfg.negotiator = n
		}
	}
}

// WithLogger sets the slog.Logger for error logging.
// If not provided, errors are silently ignored.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	compression.New(compression.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

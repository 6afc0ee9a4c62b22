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
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"rivaas.dev/negotiate"
)

// Content codings supported by the middleware.
const (
	Brotli   = "br"
	Zstd     = "zstd"
	Gzip     = "gzip"
	Identity = "identity"
)

// encoder is the common surface of the pooled gzip, brotli and zstd writers.
type encoder interface {
	io.WriteCloser
	Reset(w io.Writer)
	Flush() error
}

// codec builds a fresh encoder for a compression level.
type codec func(level int) encoder

var codecs = map[string]codec{
	Brotli: func(level int) encoder {
		return brotli.NewWriterLevel(io.Discard, level)
	},
	Gzip: func(level int) encoder {
		w, err := gzip.NewWriterLevel(io.Discard, level)
		if err != nil {
			w = gzip.NewWriter(io.Discard)
		}
		return w
	},
	Zstd: func(level int) encoder {
		w, err := zstd.NewWriter(io.Discard,
			zstd.WithEncoderLevel(zstd.EncoderLevel(level)),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			w, _ = zstd.NewWriter(io.Discard, zstd.WithEncoderConcurrency(1))
		}
		return w
	},
}

// config holds the configuration for the compression middleware.
type config struct {
	logger *slog.Logger

	// encodings are the enabled codings in server preference order.
	encodings []string

	gzipLevel   int
	brotliLevel int
	zstdLevel   int

	// minSize is the minimum response size to compress (in bytes).
	minSize int

	negotiator *negotiate.Negotiator

	excludePaths        map[string]bool
	excludeExtensions   map[string]bool
	excludeContentTypes map[string]bool
}

// defaultNegotiator answers uncompressed unless the client asked for a
// coding. An absent Accept-Encoding admits only identity and an empty one
// admits nothing.
var defaultNegotiator = negotiate.MustNew(negotiate.EncodingDomain,
	negotiate.WithAbsentPolicy(negotiate.AcceptNone),
	negotiate.WithEmptyPolicy(negotiate.AcceptNone),
)

// defaultConfig returns the default configuration for compression middleware.
func defaultConfig() *config {
	return &config{
		encodings:           []string{Brotli, Zstd, Gzip},
		gzipLevel:           gzip.DefaultCompression,
		brotliLevel:         4,
		zstdLevel:           int(zstd.SpeedDefault),
		negotiator:          defaultNegotiator,
		excludePaths:        make(map[string]bool),
		excludeExtensions:   make(map[string]bool),
		excludeContentTypes: make(map[string]bool),
	}
}

func (cfg *config) level(encoding string) int {
	switch encoding {
	case Brotli:
		return cfg.brotliLevel
	case Zstd:
		return cfg.zstdLevel
	default:
		return cfg.gzipLevel
	}
}

// offers returns the enabled codings followed by identity, the least
// preferred server choice.
func (cfg *config) offers() []string {
	return append(append(make([]string, 0, len(cfg.encodings)+1), cfg.encodings...), Identity)
}

// excluded reports whether the request path opts out of compression.
func (cfg *config) excluded(path string) bool {
	if cfg.excludePaths[path] {
		return true
	}
	for ext := range cfg.excludeExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}

// New returns a middleware that compresses HTTP responses with br, zstd or
// gzip. The coding is negotiated from Accept-Encoding with q-values;
// server order only breaks ties. identity is always offered last, so a
// client sending "gzip;q=0.5, identity" receives an uncompressed body.
//
// Features:
//   - Writer pooling per coding and level
//   - Minimum size threshold with buffering
//   - Path, extension and content-type exclusions
//   - Skips 204, 304, 206, HEAD, SSE, gRPC and octet-stream
//   - Respects an existing Content-Encoding set by the handler
//   - Sets Vary: Accept-Encoding
//
// Basic usage:
//
//	http.ListenAndServe(":8080", compression.New()(mux))
//
// With custom levels:
//
//	compression.New(
//	    compression.WithGzipLevel(gzip.BestCompression),
//	    compression.WithBrotliLevel(5),
//	    compression.WithMinSize(512),
//	)
func New(opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	offers := cfg.offers()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.excluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			negotiate.AddVary(w.Header(), negotiate.HeaderAcceptEncoding)

			if r.Method == http.MethodHead || w.Header().Get("Content-Encoding") != "" {
				next.ServeHTTP(w, r)
				return
			}

			h := negotiate.Lookup(r.Header, negotiate.HeaderAcceptEncoding)
			encoding, ok := cfg.negotiator.Best(h, offers...)
			if !ok || encoding == Identity {
				if cfg.logger != nil {
					cfg.logger.Debug("compression skipped",
						"path", r.URL.Path,
						"accept_encoding", h.Value,
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			var buf []byte
			if cfg.minSize > 0 {
				buf = make([]byte, 0, cfg.minSize)
			}
			cw := &compressWriter{
				ResponseWriter:      w,
				encoding:            encoding,
				pool:                writerPool(encoding, cfg.level(encoding)),
				excludeContentTypes: cfg.excludeContentTypes,
				threshold:           cfg.minSize,
				buffer:              buf,
				statusCode:          http.StatusOK,
			}

			next.ServeHTTP(cw, r)

			if err := cw.Close(); err != nil && cfg.logger != nil {
				cfg.logger.Error("compression finalization failed",
					"encoding", encoding,
					"error", err,
				)
			}
		})
	}
}

type poolKey struct {
	encoding string
	level    int
}

var (
	writerPools = make(map[poolKey]*sync.Pool)
	poolsMutex  sync.RWMutex
)

// writerPool returns the pool for the given coding and level.
func writerPool(encoding string, level int) *sync.Pool {
	key := poolKey{encoding: encoding, level: level}

	poolsMutex.RLock()
	pool, exists := writerPools[key]
	poolsMutex.RUnlock()

	if exists {
		return pool
	}

	poolsMutex.Lock()
	defer poolsMutex.Unlock()

	// Double-check after acquiring write lock
	if pool, exists := writerPools[key]; exists {
		return pool
	}

	newEncoder := codecs[encoding]
	pool = &sync.Pool{
		New: func() any {
			return newEncoder(level)
		},
	}
	writerPools[key] = pool

	return pool
}

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
	"net/http"
	"strings"
	"sync"
)

// compressWriter wraps the response writer to compress the response body.
// It buffers data up to the threshold before deciding whether to compress.
type compressWriter struct {
	http.ResponseWriter
	writer              encoder
	pool                *sync.Pool
	encoding            string
	excludeContentTypes map[string]bool
	threshold           int

	buffer      []byte // Buffer for threshold check
	statusCode  int
	statusSet   bool
	headersSent bool
	decided     bool
	compress    bool
}

// Unwrap returns the underlying writer for http.ResponseController.
func (cw *compressWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// WriteHeader captures the status code and checks if compression should be skipped.
func (cw *compressWriter) WriteHeader(code int) {
	if code >= 100 && code < 200 {
		cw.ResponseWriter.WriteHeader(code)
		return
	}
	if cw.headersSent || cw.statusSet {
		return
	}

	cw.statusCode = code
	cw.statusSet = true

	if cw.skip() {
		cw.passthrough()
	}
}

// Write buffers data and decides on compression based on threshold.
func (cw *compressWriter) Write(data []byte) (int, error) {
	if !cw.decided && cw.skip() {
		cw.passthrough()
	}

	if cw.decided {
		if cw.compress {
			return cw.writer.Write(data)
		}

		return cw.ResponseWriter.Write(data)
	}

	// If threshold is 0, compress immediately without buffering
	if cw.threshold == 0 {
		cw.decided = true
		cw.compress = true
		cw.initCompression(data)

		return cw.writer.Write(data)
	}

	// Buffer until we hit threshold
	if len(cw.buffer)+len(data) < cw.threshold {
		cw.buffer = append(cw.buffer, data...)
		return len(data), nil
	}

	cw.decided = true
	cw.compress = true
	cw.initCompression(append(cw.buffer, data...))

	if err := cw.drainBuffer(); err != nil {
		return 0, err
	}

	return cw.writer.Write(data)
}

// Flush commits the response to compression and flushes both the encoder
// and the underlying writer. Streaming handlers rely on it.
func (cw *compressWriter) Flush() {
	if !cw.decided && cw.skip() {
		cw.passthrough()
	}
	if !cw.decided {
		cw.decided = true
		cw.compress = true
		cw.initCompression(cw.buffer)
		if err := cw.drainBuffer(); err != nil {
			return
		}
	}

	if cw.compress && cw.writer != nil {
		if err := cw.writer.Flush(); err != nil {
			return
		}
	}

	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Close finalizes compression and returns writers to pools.
func (cw *compressWriter) Close() error {
	if !cw.decided {
		// Small response that never reached the threshold
		cw.decided = true
		cw.compress = false
		cw.sendHeader()
		if len(cw.buffer) > 0 {
			_, err := cw.ResponseWriter.Write(cw.buffer)
			return err
		}

		return nil
	}

	if cw.compress && cw.writer != nil {
		err := cw.writer.Close()
		// Reset before returning to pool to drop the response reference
		cw.writer.Reset(io.Discard)
		cw.pool.Put(cw.writer)
		cw.writer = nil

		return err
	}

	return nil
}

// skip reports whether the response as described so far must be sent as is.
func (cw *compressWriter) skip() bool {
	h := cw.ResponseWriter.Header()

	return shouldSkipStatus(cw.statusCode) ||
		h.Get("Content-Encoding") != "" ||
		shouldSkipContentType(h.Get("Content-Type"), cw.excludeContentTypes)
}

// passthrough commits to an uncompressed response.
func (cw *compressWriter) passthrough() {
	cw.decided = true
	cw.compress = false
	cw.sendHeader()
	if len(cw.buffer) > 0 {
		_, _ = cw.ResponseWriter.Write(cw.buffer)
		cw.buffer = cw.buffer[:0]
	}
}

func (cw *compressWriter) sendHeader() {
	if cw.headersSent {
		return
	}
	cw.headersSent = true
	cw.ResponseWriter.WriteHeader(cw.statusCode)
}

// initCompression sets the encoding headers, sends the status and takes a
// writer from the pool. sniff is the start of the body, used to fill in a
// missing Content-Type before the body becomes opaque.
func (cw *compressWriter) initCompression(sniff []byte) {
	h := cw.ResponseWriter.Header()
	if h.Get("Content-Type") == "" && len(sniff) > 0 {
		h.Set("Content-Type", http.DetectContentType(sniff))
	}
	h.Del("Content-Length")
	h.Set("Content-Encoding", cw.encoding)

	cw.sendHeader()

	w := cw.pool.Get().(encoder)
	w.Reset(cw.ResponseWriter)
	cw.writer = w
}

// drainBuffer writes buffered bytes through the encoder.
func (cw *compressWriter) drainBuffer() error {
	if len(cw.buffer) == 0 {
		return nil
	}
	_, err := cw.writer.Write(cw.buffer)
	cw.buffer = cw.buffer[:0]

	return err
}

// shouldSkipStatus returns true if the status code should not be compressed.
func shouldSkipStatus(code int) bool {
	return code == http.StatusNoContent ||
		code == http.StatusNotModified ||
		code == http.StatusPartialContent
}

// shouldSkipContentType returns true if the content type should not be compressed.
func shouldSkipContentType(ct string, excludes map[string]bool) bool {
	if ct == "" {
		return false
	}

	// Always skip these
	ctLower := strings.ToLower(ct)
	if strings.Contains(ctLower, "text/event-stream") ||
		strings.Contains(ctLower, "application/grpc") ||
		strings.Contains(ctLower, "application/octet-stream") {
		return true
	}

	for excluded := range excludes {
		if strings.Contains(ctLower, excluded) {
			return true
		}
	}

	return false
}

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

//go:build integration

package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"rivaas.dev/negotiate/middleware/compression"
	"rivaas.dev/negotiate/middleware/negotiation"
	"rivaas.dev/negotiate/problem"
)

// testLogHandler captures log records for assertions.
type testLogHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *testLogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *testLogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *testLogHandler) WithGroup(string) slog.Handler { return h }

func (h *testLogHandler) messages(level slog.Level) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []string
	for _, r := range h.records {
		if r.Level == level {
			out = append(out, r.Message)
		}
	}
	return out
}

var greetings = map[string]string{
	"en":    "hello",
	"fr":    "bonjour",
	"fr-CA": "allo",
}

// greet answers in the negotiated language, falling back to English.
func greet(w http.ResponseWriter, r *http.Request) {
	res, _ := negotiation.FromContext(r.Context())
	text, ok := greetings[res.Language]
	if !ok {
		text = greetings["en"]
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"greeting": text, "language": res.Language})
}

// decodeBody reverses the response's Content-Encoding.
func decodeBody(encoding string, body []byte) []byte {
	var r io.Reader = bytes.NewReader(body)
	switch encoding {
	case compression.Gzip:
		gr, err := gzip.NewReader(r)
		Expect(err).NotTo(HaveOccurred())
		defer gr.Close()
		r = gr
	case compression.Zstd:
		zr, err := zstd.NewReader(r)
		Expect(err).NotTo(HaveOccurred())
		defer zr.Close()
		r = zr
	case compression.Brotli:
		r = brotli.NewReader(r)
	}

	out, err := io.ReadAll(r)
	Expect(err).NotTo(HaveOccurred())
	return out
}

func serve(h http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/greeting", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

var _ = Describe("Middleware Integration", Label("integration"), func() {
	var (
		logs   *testLogHandler
		reader *sdkmetric.ManualReader
		stack  func(strict bool) http.Handler
	)

	BeforeEach(func() {
		logs = &testLogHandler{}
		reader = sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		logger := slog.New(logs)

		stack = func(strict bool) http.Handler {
			return compression.New(compression.WithLogger(logger))(
				negotiation.New(
					negotiation.WithMediaTypes("application/json"),
					negotiation.WithLanguages("en", "fr", "fr-CA"),
					negotiation.WithStrict(strict),
					negotiation.WithMeterProvider(mp),
					negotiation.WithLogger(logger),
				)(http.HandlerFunc(greet)),
			)
		}
	})

	Describe("Negotiated and compressed responses", func() {
		DescribeTable("selects coding and language together",
			func(acceptEncoding, acceptLanguage, wantEncoding, wantGreeting string) {
				w := serve(stack(false), map[string]string{
					"Accept-Encoding": acceptEncoding,
					"Accept-Language": acceptLanguage,
				})

				Expect(w.Code).To(Equal(http.StatusOK))
				Expect(w.Header().Get("Content-Encoding")).To(Equal(wantEncoding))
				Expect(w.Header().Values("Vary")).To(Equal([]string{
					"Accept-Encoding", "Accept", "Accept-Language",
				}))

				var body map[string]string
				Expect(json.Unmarshal(decodeBody(wantEncoding, w.Body.Bytes()), &body)).To(Succeed())
				Expect(body["greeting"]).To(Equal(wantGreeting))
			},
			Entry("gzip and french", "gzip", "fr", compression.Gzip, "bonjour"),
			Entry("server order breaks ties", "gzip, br, zstd", "en", compression.Brotli, "hello"),
			Entry("q-values beat server order", "br;q=0.5, gzip", "en", compression.Gzip, "hello"),
			Entry("br refused with q=0", "br;q=0, zstd", "fr-CA", compression.Zstd, "allo"),
			Entry("identity preferred", "gzip;q=0.5, identity", "fr", "", "bonjour"),
			Entry("prefix matches regional offer", "gzip", "fr-CA;q=0.2, fr", compression.Gzip, "bonjour"),
		)

		It("leaves the body uncompressed without Accept-Encoding", func() {
			w := serve(stack(false), map[string]string{"Accept-Language": "en"})

			Expect(w.Header().Get("Content-Encoding")).To(BeEmpty())
			Expect(w.Body.String()).To(ContainSubstring(`"greeting":"hello"`))
			Expect(logs.messages(slog.LevelDebug)).To(ContainElement("compression skipped"))
		})

		It("passes unmatched requests through in lenient mode", func() {
			w := serve(stack(false), map[string]string{
				"Accept-Encoding": "gzip",
				"Accept-Language": "de",
			})

			Expect(w.Code).To(Equal(http.StatusOK))

			var body map[string]string
			Expect(json.Unmarshal(decodeBody(compression.Gzip, w.Body.Bytes()), &body)).To(Succeed())
			Expect(body["greeting"]).To(Equal("hello"))
			Expect(body["language"]).To(BeEmpty())
			Expect(logs.messages(slog.LevelDebug)).To(ContainElement("no acceptable offer"))
		})
	})

	Describe("Strict negotiation", func() {
		It("answers 406 with a compressed problem document", func() {
			w := serve(stack(true), map[string]string{
				"Accept-Encoding": "gzip",
				"Accept-Language": "de",
			})

			Expect(w.Code).To(Equal(http.StatusNotAcceptable))
			Expect(w.Header().Get("Content-Encoding")).To(Equal(compression.Gzip))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix(problem.ContentTypeProblemJSON))
			Expect(w.Header().Values("Vary")).To(Equal([]string{
				"Accept-Encoding", "Accept", "Accept-Language",
			}))

			var body map[string]any
			Expect(json.Unmarshal(decodeBody(compression.Gzip, w.Body.Bytes()), &body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("code", problem.CodeNotAcceptable))
			Expect(body).To(HaveKeyWithValue("available", ConsistOf("en", "fr", "fr-CA")))
		})

		It("rejects a missing Accept-Language header", func() {
			w := serve(stack(true), map[string]string{"Accept": "application/json"})

			Expect(w.Code).To(Equal(http.StatusNotAcceptable))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/json; charset=utf-8"))
		})

		It("rejects an unacceptable media type before the language", func() {
			w := serve(stack(true), map[string]string{
				"Accept":          "text/html",
				"Accept-Language": "en",
			})

			Expect(w.Code).To(Equal(http.StatusNotAcceptable))
			Expect(w.Header().Values("Vary")).To(Equal([]string{"Accept-Encoding", "Accept"}))
		})
	})

	Describe("Decision metrics", func() {
		It("counts matched and unacceptable decisions per domain", func() {
			h := stack(true)
			serve(h, map[string]string{"Accept-Language": "fr"})
			serve(h, map[string]string{"Accept-Language": "de"})
			serve(h, map[string]string{"Accept": "image/png", "Accept-Language": "en"})

			var rm metricdata.ResourceMetrics
			Expect(reader.Collect(context.Background(), &rm)).To(Succeed())

			got := map[string]int64{}
			for _, sm := range rm.ScopeMetrics {
				for _, m := range sm.Metrics {
					if m.Name != negotiation.MetricDecisions {
						continue
					}
					sum, ok := m.Data.(metricdata.Sum[int64])
					Expect(ok).To(BeTrue())
					for _, dp := range sum.DataPoints {
						domain, _ := dp.Attributes.Value("domain")
						outcome, _ := dp.Attributes.Value("outcome")
						got[domain.AsString()+"/"+outcome.AsString()] = dp.Value
					}
				}
			}

			Expect(got).To(Equal(map[string]int64{
				"media_type/matched":        2,
				"media_type/not_acceptable": 1,
				"language/matched":          1,
				"language/not_acceptable":   1,
			}))
		})
	})
})

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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"rivaas.dev/negotiate/middleware/compression"
	"rivaas.dev/negotiate/middleware/negotiation"
	"rivaas.dev/negotiate/profile"
)

// greetings per language; the profile's languages should be a subset.
var greetings = map[string]string{
	"en": "Hello",
	"de": "Hallo",
	"fr": "Bonjour",
	"es": "Hola",
	"it": "Ciao",
}

// bodyCharset is the only charset the greeting is encoded in.
const bodyCharset = "utf-8"

func isUTF8(charset string) bool {
	return strings.EqualFold(charset, bodyCharset) || strings.EqualFold(charset, "utf8")
}

type server struct {
	handler       http.Handler
	meterProvider *sdkmetric.MeterProvider
}

// newServer wires the greeting handler, the middlewares and the metrics
// endpoint for profile p.
func newServer(p *profile.Profile, logger *slog.Logger, metricsPath string) (*server, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	nopts, err := p.MiddlewareOptions()
	if err != nil {
		return nil, err
	}
	if len(p.Charsets) > 0 {
		// Bodies are always written in UTF-8.
		if !slices.ContainsFunc(p.Charsets, isUTF8) {
			logger.Warn("profile charsets do not include utf-8; offering utf-8 only",
				"charsets", p.Charsets)
		}
		nopts = append(nopts, negotiation.WithCharsets(bodyCharset))
	}
	nopts = append(nopts,
		negotiation.WithLogger(logger),
		negotiation.WithMeterProvider(mp),
		negotiation.WithSkipPaths(metricsPath),
	)

	copts := append(p.CompressionOptions(), compression.WithLogger(logger))

	r := chi.NewRouter()
	r.Use(
		compression.New(copts...),
		negotiation.New(nopts...),
	)
	r.Method(http.MethodGet, metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/", greet(logger))

	return &server{handler: r, meterProvider: mp}, nil
}

func (s *server) shutdownMetrics(ctx context.Context) error {
	return s.meterProvider.Shutdown(ctx)
}

// primaryLanguage returns the primary subtag of a language tag.
func primaryLanguage(tag string) string {
	for i := range len(tag) {
		if tag[i] == '-' || tag[i] == '_' {
			return tag[:i]
		}
	}
	return tag
}

// greet renders the greeting in the negotiated media type and language.
func greet(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, _ := negotiation.FromContext(r.Context())

		lang := res.Language
		message, ok := greetings[primaryLanguage(lang)]
		if !ok {
			lang, message = "en", greetings["en"]
		}
		w.Header().Set("Content-Language", lang)

		var err error
		switch res.MediaType {
		case "text/html", "html":
			w.Header().Set("Content-Type", "text/html; charset="+charset)
			_, err = fmt.Fprintf(w, "<!doctype html><html lang=%q><body><p>%s</p></body></html>\n",
				html.EscapeString(lang), html.EscapeString(message))
		case "text/plain", "text":
			w.Header().Set("Content-Type", "text/plain; charset="+charset)
			_, err = fmt.Fprintln(w, message)
		default:
			w.Header().Set("Content-Type", "application/json; charset="+charset)
			err = json.NewEncoder(w).Encode(map[string]string{
				"message":  message,
				"language": lang,
			})
		}

		if err != nil {
			logger.ErrorContext(r.Context(), "failed to write greeting", "error", err)
		}
	}
}

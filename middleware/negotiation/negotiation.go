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

package negotiation

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"

	"rivaas.dev/negotiate"
	"rivaas.dev/negotiate/problem"
)

// Result holds the negotiated value per domain. A domain without
// configured offers, or without an acceptable one, is left empty.
type Result struct {
	MediaType string
	Language  string
	Charset   string
	Encoding  string
}

// Get returns the negotiated value for d.
func (r Result) Get(d negotiate.Domain) string {
	switch d {
	case negotiate.MediaTypeDomain:
		return r.MediaType
	case negotiate.LanguageDomain:
		return r.Language
	case negotiate.CharsetDomain:
		return r.Charset
	case negotiate.EncodingDomain:
		return r.Encoding
	default:
		return ""
	}
}

func (r *Result) set(d negotiate.Domain, value string) {
	switch d {
	case negotiate.MediaTypeDomain:
		r.MediaType = value
	case negotiate.LanguageDomain:
		r.Language = value
	case negotiate.CharsetDomain:
		r.Charset = value
	case negotiate.EncodingDomain:
		r.Encoding = value
	}
}

type contextKey struct{}

// FromContext returns the result stored by the middleware. The boolean is
// false when the middleware did not run for the request.
func FromContext(ctx context.Context) (Result, bool) {
	res, ok := ctx.Value(contextKey{}).(Result)
	return res, ok
}

// NewContext returns a copy of ctx carrying res.
func NewContext(ctx context.Context, res Result) context.Context {
	return context.WithValue(ctx, contextKey{}, res)
}

// New returns a middleware that negotiates every configured domain.
//
// Example:
//
//	mw := negotiation.New(
//	    negotiation.WithMediaTypes("json", "html"),
//	    negotiation.WithStrict(true),
//	    negotiation.WithLogger(slog.Default()),
//	)
func New(opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.formatter == nil {
		cfg.formatter = problem.NewDefaultNegotiated("")
	}
	if cfg.meterProvider == nil {
		cfg.meterProvider = otel.GetMeterProvider()
	}

	rec := newRecorder(cfg.meterProvider, cfg.logger)

	var domains []negotiate.Domain
	for _, d := range negotiate.Domains {
		if len(cfg.offers[d]) > 0 {
			domains = append(domains, d)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.skipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			req := cfg.service.Request(r.Header)

			var res Result
			for _, d := range domains {
				offers := cfg.offers[d]
				negotiate.AddVary(w.Header(), d.HeaderName())

				bound := req.Domain(d)
				best, ok := bound.Best(offers...)
				if ok {
					rec.record(ctx, d, outcomeMatched)
					res.set(d, best)
					continue
				}

				rec.record(ctx, d, outcomeNotAcceptable)
				if cfg.logger != nil {
					cfg.logger.DebugContext(ctx, "no acceptable offer",
						"domain", d.String(),
						"header", bound.Header().Value,
						"present", bound.Header().Present,
						"path", r.URL.Path,
					)
				}

				if cfg.strict {
					notAcceptable(w, r, cfg, problem.NotAcceptable(d, bound.Header(), offers))
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(NewContext(ctx, res)))
		})
	}
}

// notAcceptable writes the 406 problem response.
func notAcceptable(w http.ResponseWriter, r *http.Request, cfg *config, err *problem.NotAcceptableError) {
	resp := cfg.formatter.Format(r, err)
	if werr := problem.Write(w, resp); werr != nil && cfg.logger != nil {
		cfg.logger.ErrorContext(r.Context(), "failed to write not acceptable response",
			"domain", err.Domain.String(),
			"error", werr,
		)
	}
}

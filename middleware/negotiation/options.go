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
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/negotiate"
	"rivaas.dev/negotiate/problem"
)

// Option defines functional options for negotiation middleware configuration.
type Option func(*config)

// config holds the configuration for the negotiation middleware.
type config struct {
	logger        *slog.Logger
	service       *negotiate.Service
	offers        map[negotiate.Domain][]string
	strict        bool
	formatter     problem.Formatter
	meterProvider metric.MeterProvider
	skipPaths     map[string]bool
}

func defaultConfig() *config {
	return &config{
		service:   negotiate.DefaultService,
		offers:    make(map[negotiate.Domain][]string),
		skipPaths: make(map[string]bool),
	}
}

// WithOffers sets the server's offers for domain d, in preference order.
// Later calls for the same domain replace earlier ones; no offers disables
// negotiation of the domain.
//
// Example:
//
//	negotiation.New(negotiation.WithOffers(negotiate.CharsetDomain, "utf-8", "iso-8859-1"))
func WithOffers(d negotiate.Domain, offers ...string) Option {
	return func(cfg *config) {
		if !slices.Contains(negotiate.Domains, d) {
			return
		}
		if len(offers) == 0 {
			delete(cfg.offers, d)
			return
		}
		cfg.offers[d] = slices.Clone(offers)
	}
}

// WithMediaTypes sets the media type offers. Short names such as "json"
// are expanded by the default media type negotiator.
func WithMediaTypes(offers ...string) Option {
	return WithOffers(negotiate.MediaTypeDomain, offers...)
}

// WithLanguages sets the language offers.
func WithLanguages(offers ...string) Option {
	return WithOffers(negotiate.LanguageDomain, offers...)
}

// WithCharsets sets the charset offers.
func WithCharsets(offers ...string) Option {
	return WithOffers(negotiate.CharsetDomain, offers...)
}

// WithEncodings sets the content coding offers.
func WithEncodings(offers ...string) Option {
	return WithOffers(negotiate.EncodingDomain, offers...)
}

// WithService sets the negotiators used per domain.
// Default: negotiate.DefaultService
func WithService(s *negotiate.Service) Option {
	return func(cfg *config) {
		if s != nil {
			cfg.service = s
		}
	}
}

// WithStrict answers 406 Not Acceptable when a configured domain has no
// acceptable offer.
func WithStrict(strict bool) Option {
	return func(cfg *config) {
		cfg.strict = strict
	}
}

// WithProblemFormatter sets the formatter for 406 responses in strict mode.
// Default: problem.NewDefaultNegotiated("")
func WithProblemFormatter(f problem.Formatter) Option {
	return func(cfg *config) {
		cfg.formatter = f
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for the decision
// counter. Default: otel.GetMeterProvider()
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *config) {
		cfg.meterProvider = mp
	}
}

// WithSkipPaths sets paths that bypass negotiation entirely.
//
// Example:
//
//	negotiation.New(negotiation.WithSkipPaths("/metrics", "/healthz"))
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, path := range paths {
			cfg.skipPaths[path] = true
		}
	}
}

// WithLogger sets the slog.Logger for decision and error logging.
// If not provided, nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

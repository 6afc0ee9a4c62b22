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

package profile

import (
	"rivaas.dev/negotiate"
	"rivaas.dev/negotiate/middleware/compression"
	"rivaas.dev/negotiate/middleware/negotiation"
	"rivaas.dev/negotiate/problem"
)

// negotiatorOptions translates the policy overrides.
func (p *Profile) negotiatorOptions() ([]negotiate.Option, error) {
	var opts []negotiate.Option

	if p.Policy.Absent != "" {
		policy, err := negotiate.ParsePolicy(p.Policy.Absent)
		if err != nil {
			return nil, newFieldError("profile", "policy.absent", "validate", err)
		}
		opts = append(opts, negotiate.WithAbsentPolicy(policy))
	}

	if p.Policy.Empty != "" {
		policy, err := negotiate.ParsePolicy(p.Policy.Empty)
		if err != nil {
			return nil, newFieldError("profile", "policy.empty", "validate", err)
		}
		opts = append(opts, negotiate.WithEmptyPolicy(policy))
	}

	return opts, nil
}

// ServiceOptions returns one negotiator per domain carrying the policy
// overrides. Without overrides it returns no options, leaving the defaults.
func (p *Profile) ServiceOptions() ([]negotiate.ServiceOption, error) {
	nopts, err := p.negotiatorOptions()
	if err != nil || len(nopts) == 0 {
		return nil, err
	}

	opts := make([]negotiate.ServiceOption, 0, len(negotiate.Domains))
	for _, d := range negotiate.Domains {
		n, err := negotiate.New(d, nopts...)
		if err != nil {
			return nil, newFieldError("profile", "policy", "validate", err)
		}
		opts = append(opts, negotiate.WithNegotiator(n))
	}

	return opts, nil
}

// Service builds the negotiation service of the profile.
func (p *Profile) Service() (*negotiate.Service, error) {
	opts, err := p.ServiceOptions()
	if err != nil {
		return nil, err
	}
	return negotiate.NewService(opts...), nil
}

// MiddlewareOptions returns the negotiation middleware options: the
// service, the offers per domain, strict mode, skipped paths and the 406
// problem formatter.
func (p *Profile) MiddlewareOptions() ([]negotiation.Option, error) {
	svc, err := p.Service()
	if err != nil {
		return nil, err
	}

	opts := []negotiation.Option{
		negotiation.WithService(svc),
		negotiation.WithStrict(p.Strict),
		negotiation.WithProblemFormatter(problem.NewDefaultNegotiated(p.ProblemBaseURL)),
	}
	for _, d := range negotiate.Domains {
		if offers := p.Offers(d); len(offers) > 0 {
			opts = append(opts, negotiation.WithOffers(d, offers...))
		}
	}
	if len(p.SkipPaths) > 0 {
		opts = append(opts, negotiation.WithSkipPaths(p.SkipPaths...))
	}

	return opts, nil
}

// CompressionOptions returns the compression middleware options. A
// disabled compression section yields a middleware without encodings,
// which never compresses.
func (p *Profile) CompressionOptions() []compression.Option {
	c := p.Compression

	encodings := c.Encodings
	if c.Disabled {
		encodings = nil
	}

	opts := []compression.Option{
		compression.WithEncodings(encodings...),
		compression.WithMinSize(c.MinSize),
		compression.WithGzipLevel(c.GzipLevel),
		compression.WithBrotliLevel(c.BrotliLevel),
		compression.WithZstdLevel(c.ZstdLevel),
	}
	if len(c.ExcludePaths) > 0 {
		opts = append(opts, compression.WithExcludePaths(c.ExcludePaths...))
	}
	if len(c.ExcludeExtensions) > 0 {
		opts = append(opts, compression.WithExcludeExtensions(c.ExcludeExtensions...))
	}
	if len(c.ExcludeContentTypes) > 0 {
		opts = append(opts, compression.WithExcludeContentTypes(c.ExcludeContentTypes...))
	}

	return opts
}

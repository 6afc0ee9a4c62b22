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

// negotiate picks the best candidates for an Accept* header value from the
// command line.
//
// Usage:
//
//	negotiate [flags] CANDIDATE...
//
// Examples:
//
//	negotiate -H 'text/html;q=0.9, application/json' json html
//	negotiate -d language -H 'de-CH, en;q=0.5' en de --rank
//	negotiate -d encoding --profile negotiate.yaml -H 'gzip'
//
// The exit code is 0 when a candidate is acceptable, 1 when none is, and 2
// on usage errors.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"rivaas.dev/negotiate"
	"rivaas.dev/negotiate/profile"
)

const (
	exitMatch   = 0
	exitNoMatch = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	domain       string
	header       string
	absentPolicy string
	emptyPolicy  string
	profilePath  string
	rank         bool
	format       string
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options

	flagSet := pflag.NewFlagSet("negotiate", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.domain, "domain", "d", "media_type", "negotiation domain: media_type, language, charset or encoding")
	flagSet.StringVarP(&opts.header, "header", "H", "", "header value; omit to negotiate as if the header was not sent")
	flagSet.StringVar(&opts.absentPolicy, "absent-policy", "", "policy when the header is absent: accept_all or accept_none")
	flagSet.StringVar(&opts.emptyPolicy, "empty-policy", "", "policy when the header is empty: accept_all or accept_none")
	flagSet.StringVarP(&opts.profilePath, "profile", "p", "", "profile file supplying default candidates and policies")
	flagSet.BoolVarP(&opts.rank, "rank", "r", false, "print every acceptable candidate with weight and specificity")
	flagSet.StringVarP(&opts.format, "format", "f", "text", "output format: text or json")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n  negotiate [flags] CANDIDATE...\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitMatch
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	header := negotiate.NoHeader
	if flagSet.Changed("header") {
		header = negotiate.HeaderOf(opts.header)
	}

	matches, err := negotiateArgs(opts, header, flagSet.Args())
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	if err := printMatches(stdout, opts, matches); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	if len(matches) == 0 {
		return exitNoMatch
	}

	return exitMatch
}

// negotiateArgs builds the negotiator from flags and profile and ranks the
// candidates.
func negotiateArgs(opts options, header negotiate.Header, candidates []string) ([]negotiate.Match, error) {
	domain, err := negotiate.ParseDomain(opts.domain)
	if err != nil {
		return nil, err
	}

	var nopts []negotiate.Option
	if opts.profilePath != "" {
		p, err := profile.Load(profile.WithFile(opts.profilePath))
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			candidates = p.Offers(domain)
		}
		nopts = append(nopts, policyFromProfile(p)...)
	}

	if opts.absentPolicy != "" {
		policy, err := negotiate.ParsePolicy(opts.absentPolicy)
		if err != nil {
			return nil, err
		}
		nopts = append(nopts, negotiate.WithAbsentPolicy(policy))
	}
	if opts.emptyPolicy != "" {
		policy, err := negotiate.ParsePolicy(opts.emptyPolicy)
		if err != nil {
			return nil, err
		}
		nopts = append(nopts, negotiate.WithEmptyPolicy(policy))
	}

	if err := checkCandidates(candidates); err != nil {
		return nil, err
	}

	n, err := negotiate.New(domain, nopts...)
	if err != nil {
		return nil, err
	}

	return n.Rank(header, candidates...), nil
}

// policyFromProfile returns the profile policies; flags given later
// override the ones they name.
func policyFromProfile(p *profile.Profile) []negotiate.Option {
	var opts []negotiate.Option
	if policy, err := negotiate.ParsePolicy(p.Policy.Absent); err == nil {
		opts = append(opts, negotiate.WithAbsentPolicy(policy))
	}
	if policy, err := negotiate.ParsePolicy(p.Policy.Empty); err == nil {
		opts = append(opts, negotiate.WithEmptyPolicy(policy))
	}
	return opts
}

func checkCandidates(candidates []string) error {
	if len(candidates) == 0 {
		return errors.New("no candidates given")
	}
	return nil
}

type jsonMatch struct {
	Candidate   string  `json:"candidate"`
	Weight      float64 `json:"weight"`
	Specificity int     `json:"specificity"`
	Index       int     `json:"index"`
}

func printMatches(w io.Writer, opts options, matches []negotiate.Match) error {
	if !opts.rank && len(matches) > 1 {
		matches = matches[:1]
	}

	switch opts.format {
	case "json":
		out := make([]jsonMatch, len(matches))
		for i, m := range matches {
			out[i] = jsonMatch{Candidate: m.Candidate, Weight: m.Weight, Specificity: m.Specificity, Index: m.Index}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "text":
		if !opts.rank {
			for _, m := range matches {
				fmt.Fprintln(w, m.Candidate)
			}
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CANDIDATE\tWEIGHT\tSPECIFICITY")
		for _, m := range matches {
			fmt.Fprintf(tw, "%s\t%g\t%d\n", m.Candidate, m.Weight, m.Specificity)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

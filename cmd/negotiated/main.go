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

// negotiated serves a negotiated greeting behind the negotiation and
// compression middlewares, configured from a profile, and exposes the
// negotiation metrics in Prometheus format.
//
// Usage:
//
//	negotiated [flags]
//
// Examples:
//
//	negotiated --profile negotiate.yaml --addr :8080
//	NEGOTIATE_LANGUAGES=en,de negotiated --log-format text --log-level debug
//	curl -H 'Accept: text/html' -H 'Accept-Language: de' localhost:8080/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"rivaas.dev/negotiate/profile"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	addr            string
	profilePath     string
	envPrefix       string
	logFormat       string
	logLevel        string
	metricsPath     string
	shutdownTimeout time.Duration
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags

	flagSet := pflag.NewFlagSet("negotiated", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&f.addr, "addr", "a", ":8080", "listen address")
	flagSet.StringVarP(&f.profilePath, "profile", "p", "", "profile file (json, yaml or toml)")
	flagSet.StringVar(&f.envPrefix, "env-prefix", "NEGOTIATE_", "prefix of environment variables overriding the profile; empty disables")
	flagSet.StringVar(&f.logFormat, "log-format", "json", "log format: json or text")
	flagSet.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flagSet.StringVar(&f.metricsPath, "metrics-path", "/metrics", "path of the Prometheus endpoint")
	flagSet.DurationVar(&f.shutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")

	if err := flagSet.Parse(args); err != nil {
		return f, err
	}
	if flagSet.NArg() > 0 {
		return f, fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	return f, nil
}

// newLogger builds the slog logger selected by the flags.
func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func loadProfile(f flags) (*profile.Profile, error) {
	var opts []profile.Option
	if f.profilePath != "" {
		opts = append(opts, profile.WithFile(f.profilePath))
	}
	if f.envPrefix != "" {
		opts = append(opts, profile.WithEnv(f.envPrefix))
	}
	return profile.Load(opts...)
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, f.logFormat, f.logLevel)
	if err != nil {
		return err
	}

	p, err := loadProfile(f)
	if err != nil {
		return err
	}

	srv, err := newServer(p, logger, f.metricsPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.shutdownMetrics(context.Background()); err != nil {
			logger.Error("metrics shutdown failed", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr:              f.addr,
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("server starting",
		"addr", f.addr,
		"media_types", p.MediaTypes,
		"languages", p.Languages,
		"strict", p.Strict,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), f.shutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}

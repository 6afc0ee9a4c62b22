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

package problem

import (
	"encoding/json"
	"errors"
	"net/http"

	"rivaas.dev/negotiate"
)

// Formatter defines how errors are formatted in HTTP responses.
// Implementations are framework-agnostic and safe for concurrent use.
type Formatter interface {
	// Format converts an error into HTTP response components.
	Format(req *http.Request, err error) Response
}

// FormatterFunc adapts an ordinary function to the [Formatter] interface.
type FormatterFunc func(req *http.Request, err error) Response

// Format calls f(req, err).
func (f FormatterFunc) Format(req *http.Request, err error) Response {
	return f(req, err)
}

// Response represents a formatted error response.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// ContentType is the Content-Type header value.
	ContentType string

	// Body is marshaled to JSON by [Write].
	Body any

	// Headers contains additional headers to set (optional).
	Headers http.Header
}

// Write sends resp on w: extra headers, Content-Type, status, JSON body.
func Write(w http.ResponseWriter, resp Response) error {
	for k, values := range resp.Headers {
		for _, v := range values {
			if http.CanonicalHeaderKey(k) == "Vary" {
				negotiate.AddVary(w.Header(), v)
				continue
			}
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(resp.Status)

	return json.NewEncoder(w).Encode(resp.Body)
}

// ErrorType allows errors to declare their own HTTP status code.
type ErrorType interface {
	error
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrorDetails allows errors to provide additional structured information.
type ErrorDetails interface {
	error
	// Details returns structured information about the error.
	Details() any
}

// ErrorCode allows errors to provide a machine-readable code.
type ErrorCode interface {
	error
	// Code returns a machine-readable error code.
	Code() string
}

// ErrorExtensions allows errors to add members to the response body.
type ErrorExtensions interface {
	error
	// Extensions returns the extra members keyed by name.
	Extensions() map[string]any
}

// ErrorHeader allows errors to name the request header that caused them.
type ErrorHeader interface {
	error
	// HeaderName returns the canonical header name.
	HeaderName() string
}

// statusOf determines the HTTP status for err: resolver first, then
// [ErrorType], then 500.
func statusOf(resolver func(error) int, err error) int {
	if resolver != nil {
		return resolver(err)
	}

	var typed ErrorType
	if errors.As(err, &typed) {
		return typed.HTTPStatus()
	}

	return http.StatusInternalServerError
}

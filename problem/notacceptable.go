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
	"fmt"
	"net/http"
	"slices"

	"rivaas.dev/negotiate"
)

// CodeNotAcceptable is the error code of [NotAcceptableError].
const CodeNotAcceptable = "not_acceptable"

// NotAcceptableError reports that none of the server's values is acceptable
// to the client for one negotiation domain.
type NotAcceptableError struct {
	// Domain is the negotiation domain that found no match.
	Domain negotiate.Domain

	// Header is the client's header for the domain.
	Header negotiate.Header

	// Available lists the values the server could have produced.
	Available []string
}

// NotAcceptable returns a [NotAcceptableError]. The available values are copied.
func NotAcceptable(domain negotiate.Domain, h negotiate.Header, available []string) *NotAcceptableError {
	return &NotAcceptableError{
		Domain:    domain,
		Header:    h,
		Available: slices.Clone(available),
	}
}

// Error implements error.
func (e *NotAcceptableError) Error() string {
	if !e.Header.Present {
		return fmt.Sprintf("no acceptable %s: %s header not sent", e.Domain, e.Domain.HeaderName())
	}
	return fmt.Sprintf("no acceptable %s for %s %q", e.Domain, e.Domain.HeaderName(), e.Header.Value)
}

// HTTPStatus returns 406 Not Acceptable.
func (e *NotAcceptableError) HTTPStatus() int {
	return http.StatusNotAcceptable
}

// Code returns [CodeNotAcceptable].
func (e *NotAcceptableError) Code() string {
	return CodeNotAcceptable
}

// HeaderName returns the request header of the domain.
func (e *NotAcceptableError) HeaderName() string {
	return e.Domain.HeaderName()
}

// Extensions lists the available values under "available".
func (e *NotAcceptableError) Extensions() map[string]any {
	available := e.Available
	if available == nil {
		available = []string{}
	}
	return map[string]any{"available": available}
}

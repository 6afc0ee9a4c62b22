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

	"github.com/google/uuid"
)

// ContentTypeProblemJSON is the media type of RFC 9457 problem details.
const ContentTypeProblemJSON = "application/problem+json"

// RFC9457 formats errors as RFC 9457 Problem Details.
type RFC9457 struct {
	// BaseURL is prepended to error codes to create problem type URIs.
	// Example: "https://api.example.com/problems" + "/not_acceptable"
	BaseURL string

	// TypeResolver maps errors to problem type URIs.
	// If nil, the [ErrorCode] is used, then "about:blank".
	TypeResolver func(err error) string

	// StatusResolver determines HTTP status from error.
	// If nil, uses [ErrorType], then 500.
	StatusResolver func(err error) int

	// ErrorIDGenerator generates unique IDs for error tracking.
	// If nil, a random UUID is used.
	ErrorIDGenerator func() string

	// DisableErrorID disables the error_id extension.
	DisableErrorID bool
}

// NewRFC9457 creates an RFC 9457 formatter with the given problem type base URL.
func NewRFC9457(baseURL string) *RFC9457 {
	return &RFC9457{BaseURL: baseURL}
}

// ProblemDetail represents an RFC 9457 problem detail.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"-"` // Marshaled inline
}

// MarshalJSON merges the extensions into the top-level object. Extensions
// cannot override the standard members.
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extensions)+5)
	for k, v := range p.Extensions {
		m[k] = v
	}

	m["type"] = p.Type
	m["title"] = p.Title
	m["status"] = p.Status
	if p.Detail != "" {
		m["detail"] = p.Detail
	} else {
		delete(m, "detail")
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	} else {
		delete(m, "instance")
	}

	return json.Marshal(m)
}

// Format converts an error into an RFC 9457 Problem Details response.
func (f *RFC9457) Format(req *http.Request, err error) Response {
	status := statusOf(f.StatusResolver, err)

	p := ProblemDetail{
		Type:       f.typeOf(err),
		Title:      http.StatusText(status),
		Status:     status,
		Detail:     err.Error(),
		Extensions: make(map[string]any),
	}
	if req != nil && req.URL != nil {
		p.Instance = req.URL.Path
	}

	if !f.DisableErrorID {
		if f.ErrorIDGenerator != nil {
			p.Extensions["error_id"] = f.ErrorIDGenerator()
		} else {
			p.Extensions["error_id"] = uuid.NewString()
		}
	}

	var extended ErrorExtensions
	if errors.As(err, &extended) {
		for k, v := range extended.Extensions() {
			p.Extensions[k] = v
		}
	}

	var detailed ErrorDetails
	if errors.As(err, &detailed) {
		p.Extensions["errors"] = detailed.Details()
	}

	var coded ErrorCode
	if errors.As(err, &coded) {
		p.Extensions["code"] = coded.Code()
	}

	return Response{
		Status:      status,
		ContentType: ContentTypeProblemJSON + "; charset=utf-8",
		Body:        p,
	}
}

// typeOf determines the problem type URI for err.
func (f *RFC9457) typeOf(err error) string {
	if f.TypeResolver != nil {
		return f.TypeResolver(err)
	}

	var coded ErrorCode
	if errors.As(err, &coded) {
		if f.BaseURL != "" {
			return f.BaseURL + "/" + coded.Code()
		}
		return coded.Code()
	}

	return "about:blank"
}

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
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// ContentTypeJSONAPI is the JSON:API media type.
const ContentTypeJSONAPI = "application/vnd.api+json"

// JSONAPI formats errors as a JSON:API error document.
type JSONAPI struct {
	// StatusResolver determines HTTP status from error.
	// If nil, uses [ErrorType], then 500.
	StatusResolver func(err error) int
}

// NewJSONAPI creates a JSON:API formatter.
func NewJSONAPI() *JSONAPI {
	return &JSONAPI{}
}

type jsonAPIError struct {
	ID     string         `json:"id,omitempty"`
	Status string         `json:"status,omitempty"`
	Code   string         `json:"code,omitempty"`
	Title  string         `json:"title,omitempty"`
	Detail string         `json:"detail,omitempty"`
	Source *jsonAPISource `json:"source,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

type jsonAPISource struct {
	Header string `json:"header,omitempty"`
}

type jsonAPIErrorResponse struct {
	Errors []jsonAPIError `json:"errors"`
}

// Format converts an error into a JSON:API error document with one error
// object. [ErrorHeader] becomes source.header; [ErrorExtensions] and
// [ErrorDetails] go to meta.
func (f *JSONAPI) Format(_ *http.Request, err error) Response {
	status := statusOf(f.StatusResolver, err)

	apiErr := jsonAPIError{
		ID:     uuid.NewString(),
		Status: strconv.Itoa(status),
		Title:  http.StatusText(status),
		Detail: err.Error(),
	}

	var coded ErrorCode
	if errors.As(err, &coded) {
		apiErr.Code = coded.Code()
	}

	var header ErrorHeader
	if errors.As(err, &header) {
		apiErr.Source = &jsonAPISource{Header: header.HeaderName()}
	}

	var extended ErrorExtensions
	if errors.As(err, &extended) {
		apiErr.Meta = make(map[string]any)
		for k, v := range extended.Extensions() {
			apiErr.Meta[k] = v
		}
	}

	var detailed ErrorDetails
	if errors.As(err, &detailed) {
		if apiErr.Meta == nil {
			apiErr.Meta = make(map[string]any)
		}
		apiErr.Meta["details"] = detailed.Details()
	}

	return Response{
		Status:      status,
		ContentType: ContentTypeJSONAPI,
		Body:        jsonAPIErrorResponse{Errors: []jsonAPIError{apiErr}},
	}
}

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
	"errors"
	"fmt"
)

// ErrNoOffers is returned by validation when no domain has offers.
var ErrNoOffers = errors.New("no offers configured")

// Error represents a profile error with the source, field and operation
// where it happened.
type Error struct {
	Source    string // e.g. "file[negotiate.yaml]", "env[NEGOTIATE_]", "profile"
	Field     string // optional, e.g. "compression.min_size"
	Operation string // "read", "decode", "merge" or "validate"
	Err       error
}

// Error returns a formatted error message with context information.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("profile error in %s.%s during %s: %v",
			e.Source, e.Field, e.Operation, e.Err)
	}
	return fmt.Sprintf("profile error in %s during %s: %v",
		e.Source, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(source, operation string, err error) *Error {
	return &Error{Source: source, Operation: operation, Err: err}
}

func newFieldError(source, field, operation string, err error) *Error {
	return &Error{Source: source, Field: field, Operation: operation, Err: err}
}

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

package negotiate

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by [ConfigurationError].
var (
	// ErrMissingFallback is reported when a dispatch table has no producer
	// for the "no match" case.
	ErrMissingFallback = errors.New("no fallback producer registered")

	// ErrUnknownDomain is reported for a domain outside the four header families.
	ErrUnknownDomain = errors.New("unknown negotiation domain")

	// ErrNilMatcher is reported when a nil [Matcher] is configured.
	ErrNilMatcher = errors.New("matcher is nil")

	// ErrInvalidPolicy is reported for a policy other than [AcceptAll] or [AcceptNone].
	ErrInvalidPolicy = errors.New("invalid policy")
)

// ConfigurationError reports a programming or configuration mistake by the
// caller, such as a dispatch table without fallback. Malformed header input
// never produces an error.
type ConfigurationError struct {
	Op  string // The operation being performed (e.g., "new", "dispatch")
	Key string // The offending option or key (optional)
	Err error  // The underlying error
}

// Error returns a formatted error message with context information.
func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("negotiate: configuration error in %s (%s): %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("negotiate: configuration error in %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is and errors.As.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configError(op, key string, err error) *ConfigurationError {
	return &ConfigurationError{Op: op, Key: key, Err: err}
}

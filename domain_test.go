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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Domain
	}{
		{"media_type", MediaTypeDomain},
		{"Media", MediaTypeDomain},
		{"accept", MediaTypeDomain},
		{"language", LanguageDomain},
		{"Accept-Language", LanguageDomain},
		{"lang", LanguageDomain},
		{"charset", CharsetDomain},
		{"ACCEPT-CHARSET", CharsetDomain},
		{" encoding ", EncodingDomain},
		{"accept-encoding", EncodingDomain},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			d, err := ParseDomain(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}

	_, err := ParseDomain("accept-ranges")
	assert.ErrorIs(t, err, ErrUnknownDomain)
}

func TestDomain_String(t *testing.T) {
	t.Parallel()

	for _, d := range Domains {
		parsed, err := ParseDomain(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)

		parsed, err = ParseDomain(d.HeaderName())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}

	assert.Equal(t, "domain(9)", Domain(9).String())
	assert.Empty(t, Domain(9).HeaderName())
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Policy
	}{
		{"accept_all", AcceptAll},
		{"accept-all", AcceptAll},
		{"ALL", AcceptAll},
		{"accept_none", AcceptNone},
		{" none ", AcceptNone},
	}

	for _, tt := range tests {
		p, err := ParsePolicy(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, p, tt.input)
	}

	_, err := ParsePolicy("sometimes")
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	assert.Equal(t, "accept_all", AcceptAll.String())
	assert.Equal(t, "accept_none", AcceptNone.String())
	assert.Equal(t, "policy(5)", Policy(5).String())
}

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
	"math"
	"strconv"
	"strings"
)

// Preference is one entry of a weighted preference list, such as
// "text/html;level=1;q=0.8".
type Preference struct {
	// Value is the entry without its parameters, e.g. "text/html".
	Value string

	// Weight is the quality value in [0, 1]. Entries without a q parameter
	// have weight 1. Weight 0 marks the value as not acceptable.
	Weight float64

	// Params holds the parameters other than q, keyed by lowercased name.
	// Nil when the entry has none.
	Params map[string]string

	// Index is the position of the entry in the header.
	Index int
}

// ParsePreferences parses an Accept-style header value into its entries,
// in header order. Parsing never fails: empty segments and segments with an
// empty value are skipped, a non-numeric q-value counts as 1 and a numeric
// q-value outside [0, 1] is clamped. Duplicate values are kept.
func ParsePreferences(header string) []Preference {
	if header == "" {
		return nil
	}

	var prefs []Preference

	start := 0
	for i := 0; i <= len(header); i++ {
		if i == len(header) || header[i] == ',' {
			if i > start {
				if pref, ok := parsePreference(header[start:i]); ok {
					pref.Index = len(prefs)
					prefs = append(prefs, pref)
				}
			}
			start = i + 1
		}
	}

	return prefs
}

// parsePreference parses a single header segment (between commas).
func parsePreference(part string) (Preference, bool) {
	pref := Preference{Weight: 1.0}

	start, end := trimWhitespace(part)
	if start >= end {
		return pref, false
	}

	semicolon := strings.IndexByte(part[start:end], ';')
	if semicolon == -1 {
		pref.Value = part[start:end]
		return pref, true
	}
	semicolon += start

	vs, ve := trimWhitespace(part[start:semicolon])
	pref.Value = part[start+vs : start+ve]
	if pref.Value == "" {
		return pref, false
	}

	paramStart := semicolon + 1
	for i := paramStart; i <= end; i++ {
		if i == end || part[i] == ';' {
			if i > paramStart {
				parseParam(part[paramStart:i], &pref)
			}
			paramStart = i + 1
		}
	}

	return pref, true
}

// parseParam parses one key=value parameter and stores it on pref.
// The q parameter sets the weight; anything else goes to Params.
func parseParam(param string, pref *Preference) {
	key, value, ok := splitParam(param)
	if !ok {
		return
	}

	if key == "q" {
		pref.Weight = parseWeight(value)
		return
	}

	if pref.Params == nil {
		pref.Params = make(map[string]string, 2)
	}
	pref.Params[key] = value
}

// splitParam splits "key=value" into a lowercased key and an unquoted value.
func splitParam(param string) (key, value string, ok bool) {
	start, end := trimWhitespace(param)
	if start >= end {
		return "", "", false
	}
	param = param[start:end]

	equals := strings.IndexByte(param, '=')
	if equals == -1 {
		return "", "", false
	}

	ks, ke := trimWhitespace(param[:equals])
	if ks >= ke {
		return "", "", false
	}
	key = strings.ToLower(param[ks:ke])

	vs, ve := trimWhitespace(param[equals+1:])
	value = param[equals+1+vs : equals+1+ve]
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}

	return key, value, true
}

// parseWeight turns a q-value into a weight in [0, 1].
func parseWeight(s string) float64 {
	if q := parseQuality(s); q >= 0 {
		return float64(q) / 1000.0
	}

	q, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(q) {
		return 1.0
	}

	return max(0, min(q, 1))
}

// parseQuality parses a q-value in the RFC grammar into integer thousandths:
// "1", "1.0", "0.9", "0.85" become 1000, 1000, 900, 850.
// Returns -1 when s does not follow the grammar.
//
//	qvalue = ( "0" [ "." 0*3DIGIT ] ) / ( "1" [ "." 0*3("0") ] )
func parseQuality(s string) int {
	if len(s) == 0 || len(s) > 5 {
		return -1
	}

	switch s[0] {
	case '1':
		if len(s) == 1 {
			return 1000
		}
		if len(s) < 3 || s[1] != '.' {
			return -1
		}
		for i := 2; i < len(s); i++ {
			if s[i] != '0' {
				return -1
			}
		}
		return 1000

	case '0':
		if len(s) == 1 {
			return 0
		}
		if len(s) < 3 || s[1] != '.' {
			return -1
		}
		result := 0
		multiplier := 100
		for i := 2; i < len(s); i++ {
			if s[i] < '0' || s[i] > '9' {
				return -1
			}
			result += int(s[i]-'0') * multiplier
			multiplier /= 10
		}
		return result
	}

	return -1
}

// trimWhitespace returns start and end indices of the content of s without
// leading and trailing spaces and tabs.
func trimWhitespace(s string) (start, end int) {
	for start < len(s) && (s[start] == ' ' || s[start] == '\t') {
		start++
	}

	end = len(s)
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}

	return start, end
}

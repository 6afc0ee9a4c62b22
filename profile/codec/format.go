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

package codec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// extensionFormats maps file extensions to codec types.
var extensionFormats = map[string]Type{
	".yaml": TypeYAML,
	".yml":  TypeYAML,
	".json": TypeJSON,
	".toml": TypeTOML,
}

// DetectFormat returns the codec type for path based on its extension.
func DetectFormat(path string) (Type, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if format, ok := extensionFormats[ext]; ok {
		return format, nil
	}

	return "", fmt.Errorf("cannot detect format from extension %q", ext)
}

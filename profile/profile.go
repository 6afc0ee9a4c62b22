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
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/klauspost/compress/gzip"

	"rivaas.dev/negotiate"
	"rivaas.dev/negotiate/profile/codec"
)

// Profile describes what a service offers and how it negotiates.
type Profile struct {
	MediaTypes []string `config:"media_types" validate:"dive,required"`
	Languages  []string `config:"languages" validate:"dive,required"`
	Charsets   []string `config:"charsets" validate:"dive,required"`
	Encodings  []string `config:"encodings" validate:"dive,required"`

	Policy Policy `config:"policy"`

	// Strict answers 406 when a domain has no acceptable offer.
	Strict bool `config:"strict"`

	// ProblemBaseURL prefixes problem type URIs of 406 responses.
	ProblemBaseURL string `config:"problem_base_url" validate:"omitempty,url"`

	// SkipPaths bypass negotiation.
	SkipPaths []string `config:"skip_paths"`

	Compression Compression `config:"compression"`
}

// Policy overrides the absent and empty header policies of every domain.
// Empty values keep the domain defaults.
type Policy struct {
	Absent string `config:"absent" validate:"omitempty,policy"`
	Empty  string `config:"empty" validate:"omitempty,policy"`
}

// Compression configures the compression middleware.
type Compression struct {
	Disabled            bool     `config:"disabled"`
	Encodings           []string `config:"encodings" validate:"dive,oneof=br zstd gzip"`
	MinSize             int      `config:"min_size" validate:"gte=0"`
	GzipLevel           int      `config:"gzip_level" validate:"gte=-2,lte=9"`
	BrotliLevel         int      `config:"brotli_level" validate:"gte=0,lte=11"`
	ZstdLevel           int      `config:"zstd_level" validate:"gte=1,lte=4"`
	ExcludePaths        []string `config:"exclude_paths"`
	ExcludeExtensions   []string `config:"exclude_extensions"`
	ExcludeContentTypes []string `config:"exclude_content_types"`
}

// Default returns the profile every loaded profile is decoded over:
// JSON only, domain default policies, lenient, compression with
// br, zstd and gzip.
func Default() *Profile {
	return &Profile{
		MediaTypes: []string{"application/json"},
		Compression: Compression{
			Encodings:   []string{"br", "zstd", "gzip"},
			GzipLevel:   gzip.DefaultCompression,
			BrotliLevel: 4,
			ZstdLevel:   2,
		},
	}
}

// Offers returns the offers of domain d.
func (p *Profile) Offers(d negotiate.Domain) []string {
	switch d {
	case negotiate.MediaTypeDomain:
		return p.MediaTypes
	case negotiate.LanguageDomain:
		return p.Languages
	case negotiate.CharsetDomain:
		return p.Charsets
	case negotiate.EncodingDomain:
		return p.Encodings
	default:
		return nil
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func tagValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report config keys instead of Go field names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("config")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		// Fails only for an empty tag or a nil func.
		_ = validate.RegisterValidation("policy", func(fl validator.FieldLevel) bool {
			_, err := negotiate.ParsePolicy(fl.Field().String())
			return err == nil
		})
	})

	return validate
}

// Validate checks the profile. The returned error is an [*Error] naming the
// first offending field.
func (p *Profile) Validate() error {
	if err := tagValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return newFieldError("profile", fieldPath(fe.Namespace()), "validate", err)
		}
		return newError("profile", "validate", err)
	}

	for _, d := range negotiate.Domains {
		if len(p.Offers(d)) > 0 {
			return nil
		}
	}

	return newError("profile", "validate", ErrNoOffers)
}

// fieldPath strips the struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// Map returns the profile as a nested map keyed like the profile files.
// Empty lists and strings are left out.
func (p *Profile) Map() map[string]any {
	m := map[string]any{"strict": p.Strict}
	putList(m, "media_types", p.MediaTypes)
	putList(m, "languages", p.Languages)
	putList(m, "charsets", p.Charsets)
	putList(m, "encodings", p.Encodings)
	putList(m, "skip_paths", p.SkipPaths)
	putString(m, "problem_base_url", p.ProblemBaseURL)

	policy := map[string]any{}
	putString(policy, "absent", p.Policy.Absent)
	putString(policy, "empty", p.Policy.Empty)
	if len(policy) > 0 {
		m["policy"] = policy
	}

	c := p.Compression
	comp := map[string]any{
		"disabled":     c.Disabled,
		"min_size":     c.MinSize,
		"gzip_level":   c.GzipLevel,
		"brotli_level": c.BrotliLevel,
		"zstd_level":   c.ZstdLevel,
	}
	putList(comp, "encodings", c.Encodings)
	putList(comp, "exclude_paths", c.ExcludePaths)
	putList(comp, "exclude_extensions", c.ExcludeExtensions)
	putList(comp, "exclude_content_types", c.ExcludeContentTypes)
	m["compression"] = comp

	return m
}

// Encode renders the profile in format, for example to dump the effective
// profile after loading.
func (p *Profile) Encode(format codec.Type) ([]byte, error) {
	enc, err := codec.GetEncoder(format)
	if err != nil {
		return nil, err
	}
	return enc.Encode(p.Map())
}

func putList(m map[string]any, key string, values []string) {
	if len(values) > 0 {
		m[key] = values
	}
}

func putString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package resolve implements the per-beat tiered asset resolution. This
// file builds the ordered query variants a beat is searched under: the
// beat's raw search terms first, then their conjunction, then a few keyword
// tokens pulled from the scene description as a last widening of the net.
package resolve

import (
	"strings"
	"unicode"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
)

// maxDescriptionTokens caps how many description keywords are appended
// after the explicit search terms.
const maxDescriptionTokens = 3

// minTokenLength filters short function words out of the description
// tokens; only tokens strictly longer than this survive.
const minTokenLength = 4

// descriptionStopWords removes common long function words that pass the
// length filter but carry no search value.
var descriptionStopWords = map[string]struct{}{
	"about":   {},
	"after":   {},
	"before":  {},
	"being":   {},
	"between": {},
	"could":   {},
	"during":  {},
	"their":   {},
	"there":   {},
	"these":   {},
	"those":   {},
	"through": {},
	"where":   {},
	"which":   {},
	"while":   {},
	"would":   {},
}

// QueryVariants returns the ordered, de-duplicated list of query strings a
// beat is searched under. Order matters: earlier variants are more
// authoritative, and the tiers try them in sequence. De-duplication is
// case-insensitive and keeps the first occurrence.
//
// Inputs:
//   - beat: The beat whose search terms and description feed the variants.
//
// Outputs:
//   - []string: The query variants, never nil.
func QueryVariants(beat *model.Beat) []string {
	variants := make([]string, 0, len(beat.SearchTerms)+1+maxDescriptionTokens)
	seen := make(map[string]struct{})

	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		variants = append(variants, v)
	}

	for _, term := range beat.SearchTerms {
		add(term)
	}
	if len(beat.SearchTerms) > 1 {
		add(strings.Join(beat.SearchTerms, " "))
	}

	count := 0
	for _, token := range descriptionTokens(beat.Description) {
		if count >= maxDescriptionTokens {
			break
		}
		before := len(variants)
		add(token)
		if len(variants) > before {
			count++
		}
	}

	return variants
}

// descriptionTokens splits a scene description into candidate keywords:
// alphanumeric runs longer than minTokenLength that are not stop words.
func descriptionTokens(description string) []string {
	fields := strings.FieldsFunc(description, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= minTokenLength {
			continue
		}
		if _, stop := descriptionStopWords[strings.ToLower(f)]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

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

// Package resolve_test contains unit tests for the tiered asset resolver.
// This file tests the query variant expansion derived from a beat's search
// intent.
package resolve_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/resolve"
	"github.com/stretchr/testify/assert"
)

// TestQueryVariantsOrdering verifies the variant order: raw search terms
// first, then the conjunction of all terms, then salient description
// tokens.
func TestQueryVariantsOrdering(t *testing.T) {
	beat := &model.Beat{
		Number:      1,
		Description: "A massive rocket climbing through scattered clouds",
		SearchTerms: []string{"saturn v launch", "apollo liftoff"},
	}

	variants := resolve.QueryVariants(beat)

	assert.Equal(t, "saturn v launch", variants[0])
	assert.Equal(t, "apollo liftoff", variants[1])
	assert.Equal(t, "saturn v launch apollo liftoff", variants[2])
	// Description tokens follow; short words and stop words are skipped.
	assert.Contains(t, variants, "massive")
	assert.Contains(t, variants, "rocket")
	assert.NotContains(t, variants, "through")
}

// TestQueryVariantsSingleTerm verifies that a single search term produces
// no redundant conjunction variant.
func TestQueryVariantsSingleTerm(t *testing.T) {
	beat := &model.Beat{Number: 1, SearchTerms: []string{"lunar module"}}

	variants := resolve.QueryVariants(beat)

	assert.Equal(t, "lunar module", variants[0])
	// With one term there is nothing to conjoin, so no duplicate appears.
	count := 0
	for _, v := range variants {
		if v == "lunar module" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

// TestQueryVariantsDeduplication verifies case-insensitive deduplication
// across terms and description tokens.
func TestQueryVariantsDeduplication(t *testing.T) {
	beat := &model.Beat{
		Number:      1,
		Description: "Rocket on the rocket pad",
		SearchTerms: []string{"Rocket", "rocket"},
	}

	variants := resolve.QueryVariants(beat)

	seen := make(map[string]int)
	for _, v := range variants {
		seen[v]++
	}
	for v, n := range seen {
		assert.Equal(t, 1, n, "variant %q appears more than once", v)
	}
}

// TestQueryVariantsDescriptionOnly verifies that a beat with no search
// terms still yields variants from its description.
func TestQueryVariantsDescriptionOnly(t *testing.T) {
	beat := &model.Beat{
		Number:      1,
		Description: "engineers celebrating inside mission control",
	}

	variants := resolve.QueryVariants(beat)

	assert.NotEmpty(t, variants)
	assert.Contains(t, variants, "engineers")
}

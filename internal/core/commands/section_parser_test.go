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

// Package commands_test contains unit tests for the pipeline commands.
// This file tests the markdown segmentation that turns a research document
// into ordered sections.
package commands_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/commands"
	test "github.com/jaycherian/gcp-go-video-beats/internal/testutil"
	"github.com/stretchr/testify/assert"
)

// TestParseResearchDocument verifies segmentation of a realistic document:
// the preamble survives with an empty heading, content sections come out in
// order, and the boilerplate sections are dropped.
func TestParseResearchDocument(t *testing.T) {
	doc := commands.ParseResearchDocument(test.GetTestResearchDocumentText())

	assert.Len(t, doc.Sections, 4)

	// Text before the first heading is kept as a heading-less section.
	assert.Equal(t, "", doc.Sections[0].Heading)
	assert.Contains(t, doc.Sections[0].Body, "Apollo: the program")

	assert.Equal(t, "The Launch", doc.Sections[1].Heading)
	assert.Equal(t, "The Landing", doc.Sections[2].Heading)
	assert.Equal(t, "The Return", doc.Sections[3].Heading)
	assert.Contains(t, doc.Sections[1].Body, "Saturn V")
}

// TestParseResearchDocumentDropsBoilerplate verifies that Introduction and
// References sections are filtered regardless of heading level or casing.
func TestParseResearchDocumentDropsBoilerplate(t *testing.T) {
	raw := "## INTRODUCTION\nsome framing text\n# Story\nthe actual content\n### references\n1. a citation\n"
	doc := commands.ParseResearchDocument(raw)

	assert.Len(t, doc.Sections, 1)
	assert.Equal(t, "Story", doc.Sections[0].Heading)
	assert.Equal(t, "the actual content", doc.Sections[0].Body)
}

// TestParseResearchDocumentSkipsEmptySections verifies that headings with no
// body text under them do not produce sections.
func TestParseResearchDocumentSkipsEmptySections(t *testing.T) {
	raw := "# First\n\n# Second\nreal body\n"
	doc := commands.ParseResearchDocument(raw)

	assert.Len(t, doc.Sections, 1)
	assert.Equal(t, "Second", doc.Sections[0].Heading)
}

// TestParseResearchDocumentEmptyInput verifies that an empty document yields
// zero sections rather than an error or a phantom section.
func TestParseResearchDocumentEmptyInput(t *testing.T) {
	doc := commands.ParseResearchDocument("")
	assert.Empty(t, doc.Sections)
}

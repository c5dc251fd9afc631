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

// Package commands provides the concrete implementations of the workflow
// Command interface. This file defines the content segmenter: it splits a
// markdown research document into an ordered list of (heading, body)
// sections and drops the boilerplate sections (introduction, references)
// that carry no visual content worth planning beats for.
package commands

import (
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-video-beats/internal/cloud"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
)

// boilerplateHeadings are skipped during segmentation, compared
// case-insensitively after trimming.
var boilerplateHeadings = map[string]struct{}{
	"introduction": {},
	"references":   {},
}

// SectionParser segments a markdown document into model.Section values.
type SectionParser struct {
	cor.BaseCommand
}

// NewSectionParser is the constructor for the SectionParser command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *SectionParser: A pointer to the newly instantiated command.
func NewSectionParser(name string) *SectionParser {
	return &SectionParser{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute segments the raw markdown from the input parameter and publishes
// the resulting document under both the document key and the output
// parameter.
//
// Inputs:
//   - context: The shared workflow context.
func (c *SectionParser) Execute(context cor.Context) {
	raw := context.Get(c.GetInputParam()).(string)

	doc := ParseResearchDocument(raw)
	if obj, ok := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject); ok && obj != nil {
		doc.SourceName = obj.Name
	}

	if len(doc.Sections) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("document %s contains no usable sections", doc.SourceName))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetDocumentKey(), doc)
	context.Add(c.GetOutputParam(), doc)
}

// ParseResearchDocument splits markdown into ordered (heading, body)
// sections. Any heading level starts a new section; text before the first
// heading becomes a section with an empty heading. Boilerplate sections
// are filtered out.
//
// Inputs:
//   - raw: The markdown source.
//
// Outputs:
//   - *model.ResearchDocument: The segmented document; Sections may be
//     empty if the input held nothing but boilerplate.
func ParseResearchDocument(raw string) *model.ResearchDocument {
	doc := &model.ResearchDocument{Sections: make([]*model.Section, 0)}

	var heading string
	var body strings.Builder

	flush := func() {
		text := strings.TrimSpace(body.String())
		body.Reset()
		if heading == "" && text == "" {
			return
		}
		if _, skip := boilerplateHeadings[strings.ToLower(strings.TrimSpace(heading))]; skip {
			return
		}
		if text == "" {
			return
		}
		doc.Sections = append(doc.Sections, &model.Section{Heading: heading, Body: text})
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			flush()
			heading = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()

	return doc
}

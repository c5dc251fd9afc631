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
// Command interface. This file defines the run initializer: it mints the
// run identifier and derives the project identifier every later stage
// scopes its work to. The project name comes from the run options when the
// caller supplied one, otherwise from the document's source name.
package commands

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
)

// RunInitializer mints run and project identifiers for the chain.
type RunInitializer struct {
	cor.BaseCommand
}

// NewRunInitializer is the constructor for the RunInitializer command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *RunInitializer: A pointer to the newly instantiated command.
func NewRunInitializer(name string) *RunInitializer {
	return &RunInitializer{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute publishes the run ID and project ID into the context. The
// incoming document passes through unchanged as the output parameter.
//
// Inputs:
//   - context: The shared workflow context holding the segmented document.
func (c *RunInitializer) Execute(context cor.Context) {
	doc := context.Get(c.GetInputParam()).(*model.ResearchDocument)

	runID := uuid.New().String()

	projectName := ""
	if opts, ok := context.Get(GetRunOptionsKey()).(*model.RunOptions); ok && opts != nil {
		projectName = opts.ProjectName
	}
	if projectName == "" {
		projectName = doc.SourceName
	}
	projectID := slug(projectName) + "-" + runID[:8]

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetRunIDKey(), runID)
	context.Add(GetProjectIDKey(), projectID)
	context.Add(c.GetOutputParam(), doc)
}

// slug reduces a name to a lowercase, hyphen-separated identifier safe for
// object prefixes.
func slug(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastHyphen := true
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "run"
	}
	return out
}

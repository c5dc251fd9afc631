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
// Command interface. This file defines the narration command: it asks the
// generation service for the run's voice-over and records the resulting
// asset and its exact duration. That duration is what the timeline
// synthesizer later tiles clips against, so like beat planning this is a
// fatal step — without a voice-over there is no timeline length to fill.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/services"
)

// NarrationCreator produces the run's voice-over asset.
type NarrationCreator struct {
	cor.BaseCommand
	generator services.GenerationService
}

// NewNarrationCreator is the constructor for the NarrationCreator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generator: The generation service producing the voice-over.
//
// Outputs:
//   - *NarrationCreator: A pointer to the newly instantiated command.
func NewNarrationCreator(name string, generator services.GenerationService) *NarrationCreator {
	return &NarrationCreator{BaseCommand: *cor.NewBaseCommand(name), generator: generator}
}

// Execute generates the narration and publishes the result under the
// narration key. The beat plan passes through as the output parameter so
// the resolver command downstream keeps its default input.
//
// Inputs:
//   - context: The shared workflow context holding the beat plan and the
//     segmented document.
func (c *NarrationCreator) Execute(context cor.Context) {
	plan := context.Get(c.GetInputParam()).(*model.BeatPlan)
	doc := context.Get(GetDocumentKey()).(*model.ResearchDocument)
	projectID := context.Get(GetProjectIDKey()).(string)

	narration, err := c.generator.GenerateNarration(context.GetContext(), doc, projectID)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("narration generation failed: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.InfoContext(context.GetContext(), "voice-over generated",
		"audio_id", narration.AudioID, "duration_seconds", narration.DurationSeconds)
	context.Add(GetNarrationKey(), narration)
	context.Add(c.GetOutputParam(), plan)
}

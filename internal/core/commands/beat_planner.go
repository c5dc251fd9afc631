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
// Command interface. This file defines the beat planning command: it hands
// the segmented document to the generation service and receives the
// ordered beat plan the rest of the run resolves against. Beat planning
// sits on the critical path — a failure here aborts the run, since with no
// beats there is nothing to resolve.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/services"
)

// BeatPlanner turns the segmented research document into a beat plan.
type BeatPlanner struct {
	cor.BaseCommand
	generator services.GenerationService
}

// NewBeatPlanner is the constructor for the BeatPlanner command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generator: The generation service producing the plan.
//
// Outputs:
//   - *BeatPlanner: A pointer to the newly instantiated command.
func NewBeatPlanner(name string, generator services.GenerationService) *BeatPlanner {
	return &BeatPlanner{BaseCommand: *cor.NewBaseCommand(name), generator: generator}
}

// Execute generates the beat plan and publishes it under the beat plan key
// and the output parameter.
//
// Inputs:
//   - context: The shared workflow context holding the segmented document.
func (c *BeatPlanner) Execute(context cor.Context) {
	doc := context.Get(c.GetInputParam()).(*model.ResearchDocument)

	plan, err := c.generator.GenerateBeats(context.GetContext(), doc)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("beat planning failed: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.InfoContext(context.GetContext(), "beat plan generated", "beats", len(plan.Beats))
	context.Add(GetBeatPlanKey(), plan)
	context.Add(c.GetOutputParam(), plan)
}

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
// Command interface. This file defines the beat resolution command: the
// fan-out point where every beat of the plan is resolved to an asset (or
// recorded as unresolved) through the tiered resolver, bounded by the
// configured worker pool. The command never fails the chain — unresolved
// beats are an accepted outcome that the manifest records.
package commands

import (
	"log/slog"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/resolve"
)

// BeatResolver resolves every beat of the plan concurrently.
type BeatResolver struct {
	cor.BaseCommand
	resolver *resolve.Resolver
	poolSize int
}

// NewBeatResolver is the constructor for the BeatResolver command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - resolver: The tiered per-beat resolver.
//   - poolSize: Bound on concurrent per-beat resolutions.
//
// Outputs:
//   - *BeatResolver: A pointer to the newly instantiated command.
func NewBeatResolver(name string, resolver *resolve.Resolver, poolSize int) *BeatResolver {
	return &BeatResolver{BaseCommand: *cor.NewBaseCommand(name), resolver: resolver, poolSize: poolSize}
}

// Execute fans the resolver out over the plan's beats and publishes the
// joined resolutions, one per beat in beat order.
//
// Inputs:
//   - context: The shared workflow context holding the beat plan.
func (c *BeatResolver) Execute(context cor.Context) {
	plan := context.Get(c.GetInputParam()).(*model.BeatPlan)
	projectID := context.Get(GetProjectIDKey()).(string)

	resolutions := resolve.ResolveAll(context.GetContext(), c.resolver, plan.Beats, projectID, c.poolSize)

	resolved := 0
	for _, r := range resolutions {
		if r.Resolved() {
			resolved++
		}
	}
	slog.InfoContext(context.GetContext(), "beat resolution complete",
		"total", len(resolutions), "resolved", resolved)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetResolutionsKey(), resolutions)
	context.Add(c.GetOutputParam(), resolutions)
}

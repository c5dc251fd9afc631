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
// file fans the resolver out across all beats of a run. Beats are
// data-independent, so they resolve concurrently under a bounded worker
// pool that respects the search and download backends' rate limits. The
// fan-out joins completely before returning: timeline synthesis never sees
// a partial resolution set.
package resolve

import (
	"context"
	"sync"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
)

// ResolveAll resolves every beat concurrently, at most poolSize at a time,
// and returns the resolutions in ascending beat order regardless of
// completion order. On cancellation, in-flight resolutions finish their
// current attempt; beats never started come back unresolved, so the result
// always has exactly one entry per beat.
//
// Inputs:
//   - ctx: The run context; cancellation degrades rather than discards.
//   - resolver: The tiered per-beat resolver.
//   - beats: The ordered beats of the plan.
//   - projectID: The project in scope for the whole run.
//   - poolSize: Concurrency bound; values below one mean sequential.
//
// Outputs:
//   - []*model.BeatResolution: One resolution per beat, in beat order.
func ResolveAll(ctx context.Context, resolver *Resolver, beats []*model.Beat, projectID string, poolSize int) []*model.BeatResolution {
	if poolSize < 1 {
		poolSize = 1
	}

	out := make([]*model.BeatResolution, len(beats))
	sem := make(chan struct{}, poolSize)
	var wg sync.WaitGroup

	for i, beat := range beats {
		wg.Add(1)
		go func(i int, beat *model.Beat) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// A canceled run still records an outcome for every beat;
			// Resolve short-circuits to unresolved without touching tiers.
			out[i] = resolver.Resolve(ctx, beat, projectID)
		}(i, beat)
	}

	// Hard barrier: all beats are settled before anything downstream runs.
	wg.Wait()
	return out
}

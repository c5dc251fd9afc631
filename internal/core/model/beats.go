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

// Package model defines the core data structures for the application.
// This file, `beats.go`, contains the narrative planning types that flow
// through the documentary pipeline: the Beat produced by the planner, the
// transient VideoCandidate produced during web-tier search, and the
// BeatResolution that records the outcome of the asset search for one beat.
//
// Structs:
//   - Beat: A single narrative scene unit with a description and search intent.
//   - BeatPlan: The ordered set of beats for one documentary run.
//   - VideoCandidate: A scored web search hit. Never persisted.
//   - BeatResolution: The one-per-beat outcome of the tiered asset search.
package model

// SourceTier identifies which source category satisfied (or failed to satisfy)
// a beat's asset search. The zero value is deliberately TierUnresolved so that
// a freshly allocated resolution reads as "nothing found yet".
type SourceTier string

// The tier values are ordered cheapest-first; the resolver tries them in the
// order they are declared here.
const (
	TierUnresolved   SourceTier = "unresolved" // No tier produced a usable asset.
	TierLibrary      SourceTier = "library"    // Found in the indexed media library.
	TierProjectAsset SourceTier = "project"    // Found among the project's uploaded assets.
	TierDownloaded   SourceTier = "downloaded" // Fetched from the web and uploaded to the project.
)

// Beat represents one short narrative scene in the documentary. Beats are
// created once by the planner and are immutable afterwards; every later stage
// treats them as read-only input.
type Beat struct {
	Number          int      `json:"beat_number"`       // 1-based, sequential, unique within a run.
	DurationSeconds int      `json:"duration_seconds"`  // The planner's rough duration hint. Advisory only; the synthesizer ignores it in favor of an exact fit to the narration length.
	Description     string   `json:"scene_description"` // A cinematic description of what the viewer sees.
	SearchTerms     []string `json:"search_terms"`      // Ordered search terms used to locate a clip.
}

// BeatPlan is the ordered collection of beats generated for a single research
// document. It is the planner's output format, so the JSON field names match
// the schema given to the generative model.
type BeatPlan struct {
	Beats []*Beat `json:"beats"`
}

// VideoCandidate is a single scored result from the web search tier. These
// are ephemeral objects: they exist only for the duration of one beat's
// web-tier search and are discarded afterwards, whether or not the download
// succeeded.
type VideoCandidate struct {
	URL             string  `json:"url"`              // The watch-page or direct media URL.
	Title           string  `json:"title"`            // The provider's title for the video.
	RelevanceScore  float64 `json:"relevance_score"`  // Provider relevance in [0, 1]. Candidates below the configured threshold never reach the download step.
	RelevanceReason string  `json:"relevance_reason"` // A short provider explanation for the score, kept for the audit log.
}

// BeatResolution records the outcome of the tiered asset search for exactly
// one beat. AssetID is empty if and only if Tier is TierUnresolved.
type BeatResolution struct {
	Beat    *Beat      // The beat this resolution belongs to.
	AssetID string     // The opaque identifier of the resolved asset, or "" when unresolved.
	Tier    SourceTier // The tier that produced the asset.
}

// Resolved reports whether the beat ended up with a usable asset.
func (r *BeatResolution) Resolved() bool {
	return r.AssetID != ""
}

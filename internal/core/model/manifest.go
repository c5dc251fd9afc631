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
// This file, `manifest.go`, contains the ResolutionManifest: the audit record
// of which beats were resolved, from which tier, and which were not. The
// manifest is written for every run regardless of outcome, including runs
// where no beat resolved and no edit document could be produced.
package model

// ManifestEntry summarizes the resolution outcome for one beat.
type ManifestEntry struct {
	BeatNumber  int        `json:"beat_number"`
	SourceTier  SourceTier `json:"source_tier"`
	AssetID     string     `json:"asset_id,omitempty"`
	Description string     `json:"description"`
	HasVideo    bool       `json:"has_video"`
}

// ResolutionManifest is the per-run audit record. Unresolved beats carry
// their full description and search terms so a follow-up pass (human or
// automated) can source the missing clips.
type ResolutionManifest struct {
	RunID             string          `json:"run_id"`
	ProjectID         string          `json:"project_id"`
	VoiceoverDuration float64         `json:"voiceover_duration"` // Seconds. Zero when narration generation was not reached.
	TotalBeats        int             `json:"total_beats"`
	ResolvedCount     int             `json:"resolved_count"`
	Beats             []ManifestEntry `json:"beats"`
	Unresolved        []MissingBeat   `json:"unresolved"`
}

// NewResolutionManifest builds the manifest from an ordered resolution set.
// The input must already be sorted by ascending beat number; the manifest
// preserves the given order.
func NewResolutionManifest(runID, projectID string, voiceoverDuration float64, resolutions []*BeatResolution) *ResolutionManifest {
	out := &ResolutionManifest{
		RunID:             runID,
		ProjectID:         projectID,
		VoiceoverDuration: voiceoverDuration,
		TotalBeats:        len(resolutions),
		Beats:             make([]ManifestEntry, 0, len(resolutions)),
		Unresolved:        make([]MissingBeat, 0),
	}
	for _, r := range resolutions {
		out.Beats = append(out.Beats, ManifestEntry{
			BeatNumber:  r.Beat.Number,
			SourceTier:  r.Tier,
			AssetID:     r.AssetID,
			Description: r.Beat.Description,
			HasVideo:    r.Resolved(),
		})
		if r.Resolved() {
			out.ResolvedCount++
		} else {
			out.Unresolved = append(out.Unresolved, MissingBeat{
				BeatNumber:  r.Beat.Number,
				Description: r.Beat.Description,
				SearchTerms: r.Beat.SearchTerms,
			})
		}
	}
	return out
}

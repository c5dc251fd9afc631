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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides factory functions for creating hardcoded, example
// instances of the data models.
//
// These example objects are crucial for "few-shot" prompting with the
// generative AI models. By providing a concrete example of the desired JSON
// output structure within the prompt itself, we guide the AI to return data
// that is consistent, correctly formatted, and easily parsable.
package model

// GetExampleBeatPlan creates a sample BeatPlan object. It is embedded in the
// beat-planning prompt so the generative model sees the exact JSON shape it
// is expected to return: sequential beat numbers, a short duration hint, a
// cinematic scene description, and a handful of concrete search terms.
//
// Outputs:
//   - *BeatPlan: A pointer to a hardcoded two-beat plan.
func GetExampleBeatPlan() *BeatPlan {
	out := &BeatPlan{Beats: make([]*Beat, 0)}
	out.Beats = append(out.Beats, &Beat{
		Number:          1,
		DurationSeconds: 7,
		Description:     "Aerial shot of a container ship crossing a narrow canal at dawn, tugboats alongside.",
		SearchTerms:     []string{"container ship canal aerial", "cargo ship tugboat"},
	})
	out.Beats = append(out.Beats, &Beat{
		Number:          2,
		DurationSeconds: 6,
		Description:     "Close-up of a crane operator's hands on the controls as containers swing overhead.",
		SearchTerms:     []string{"port crane operator", "shipping container crane close up"},
	})
	return out
}

// GetExampleVideoCandidates creates a small, scored candidate list in the
// shape the web search agent must return: absolute URLs, provider titles,
// and a relevance score with a one-line justification.
//
// Outputs:
//   - []*VideoCandidate: Two hardcoded candidates, best first.
func GetExampleVideoCandidates() []*VideoCandidate {
	return []*VideoCandidate{
		{
			URL:             "https://www.youtube.com/watch?v=3N841R5Wgck",
			Title:           "Panama Canal Transit - Full Timelapse",
			RelevanceScore:  0.85,
			RelevanceReason: "Direct footage of a ship transiting a canal, matches the scene setting.",
		},
		{
			URL:             "https://vimeo.com/76979871",
			Title:           "Harbor cranes at work",
			RelevanceScore:  0.6,
			RelevanceReason: "Related port machinery footage, weaker match for the described shot.",
		},
	}
}

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
// This file, `timeline.go`, contains the derived timeline types produced by
// the synthesizer: clips that tile the narration interval back to back, and
// the voice-over overlay that spans the full timeline.
package model

// Default audio levels used when composing the timeline. The clip audio is
// attenuated so the source clip sound stays audible under the narration; the
// voice-over overlay always plays at full gain.
const (
	DefaultClipAudioGain  = 0.5
	VoiceoverAudioGain    = 1.0
	TimelineEpsilonSecond = 0.001 // 1ms tolerance on the total-duration invariant.
)

// Clip is a single sequential entry in the timeline. Exactly one clip is
// derived from each resolved BeatResolution, and clips are ordered by the
// beat number of their source beat.
type Clip struct {
	AssetID   string     // The asset the clip plays.
	Tier      SourceTier // The tier the asset came from. Decides the downstream reference type (library hits use a different handle than uploaded assets).
	Start     float64    // Start offset in seconds from the beginning of the timeline.
	End       float64    // End offset in seconds.
	AudioGain float64    // Playback gain for the clip's own audio track.
}

// Duration returns the clip's length in seconds.
func (c *Clip) Duration() float64 {
	return c.End - c.Start
}

// VoiceoverTrack is the single full-length narration overlay. It always
// starts at zero and runs to the total timeline duration at full gain.
type VoiceoverTrack struct {
	AssetID   string  // The generated narration asset.
	Start     float64 // Always 0.
	End       float64 // Equal to Timeline.TotalDuration.
	AudioGain float64 // Always VoiceoverAudioGain.
}

// Timeline is the synthesizer's output: a gapless, non-overlapping sequence
// of clips tiling [0, TotalDuration] plus the narration overlay.
//
// Invariants (enforced by the synthesizer, checked by its tests):
//   - Clips[0].Start == 0
//   - Clips[i].End == Clips[i+1].Start for every i
//   - Clips[len-1].End == TotalDuration exactly
//   - len(Clips) equals the count of resolved beat resolutions
type Timeline struct {
	Clips         []*Clip         // Sequential clips in ascending beat order.
	Voiceover     *VoiceoverTrack // The narration overlay.
	TotalDuration float64         // The narration length in seconds; fixes the timeline length.
}

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
// Command interface. This file defines timeline synthesis: the resolved
// beats are tiled back-to-back across exactly the voice-over's duration.
//
// The slicing is uniform — total duration divided by the number of
// resolved beats — and positions accumulate through a single running
// offset rather than independent multiplications, so the final clip's end
// lands on the total duration exactly instead of drifting with float
// error. Beats that did not resolve simply do not appear; the survivors
// keep their beat order. A run where nothing resolved produces no
// timeline at all: the command records the empty-timeline condition and
// lets the chain continue, because the manifest downstream must still be
// written.
package commands

import (
	"errors"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
)

// ErrEmptyTimeline reports that zero beats resolved, so no timeline or
// edit document can be produced. The run still emits its manifest; callers
// treat this as a distinct outcome, not a crash.
var ErrEmptyTimeline = errors.New("no beats resolved, timeline is empty")

// TimelineBuilder synthesizes the timeline from the joined resolutions and
// the voice-over duration.
type TimelineBuilder struct {
	cor.BaseCommand
	clipAudioGain float64
}

// NewTimelineBuilder is the constructor for the TimelineBuilder command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - clipAudioGain: Gain applied to each clip's own audio; the voice-over
//     always overlays at full gain.
//
// Outputs:
//   - *TimelineBuilder: A pointer to the newly instantiated command.
func NewTimelineBuilder(name string, clipAudioGain float64) *TimelineBuilder {
	if clipAudioGain <= 0 {
		clipAudioGain = model.DefaultClipAudioGain
	}
	out := &TimelineBuilder{BaseCommand: *cor.NewBaseCommand(name), clipAudioGain: clipAudioGain}
	// A canceled run still gets a timeline from the beats that resolved
	// before the cancellation.
	out.RunOnCancel = true
	return out
}

// Execute synthesizes the timeline and publishes it under the timeline
// key. On the empty-timeline condition the chain continues without a
// timeline so the manifest writer still runs.
//
// Inputs:
//   - context: The shared workflow context holding the resolutions and
//     the narration result.
func (c *TimelineBuilder) Execute(context cor.Context) {
	resolutions := context.Get(c.GetInputParam()).([]*model.BeatResolution)
	narration := context.Get(GetNarrationKey()).(*model.NarrationResult)

	timeline, err := SynthesizeTimeline(resolutions, narration, c.clipAudioGain)
	if err != nil {
		// Not a chain failure: the manifest must still be written. The
		// condition is surfaced to the caller through the context.
		c.GetErrorCounter().Add(context.GetContext(), 1)
		slog.WarnContext(context.GetContext(), "timeline synthesis skipped", "error", err)
		context.Add(GetEmptyTimelineKey(), err)
		context.Add(c.GetOutputParam(), resolutions)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.InfoContext(context.GetContext(), "timeline synthesized",
		"clips", len(timeline.Clips), "total_duration", timeline.TotalDuration)
	context.Add(GetTimelineKey(), timeline)
	context.Add(c.GetOutputParam(), resolutions)
}

// SynthesizeTimeline tiles the resolved beats across [0, total] where
// total is the voice-over duration. Clips are uniform slices in beat
// order; the last clip's end equals the total exactly.
//
// Inputs:
//   - resolutions: One resolution per beat, in ascending beat order.
//   - narration: The voice-over asset and its exact duration.
//   - clipAudioGain: Gain for each clip's own audio track.
//
// Outputs:
//   - *model.Timeline: The synthesized timeline.
//   - error: ErrEmptyTimeline when no resolution carries an asset.
func SynthesizeTimeline(resolutions []*model.BeatResolution, narration *model.NarrationResult, clipAudioGain float64) (*model.Timeline, error) {
	resolved := make([]*model.BeatResolution, 0, len(resolutions))
	for _, r := range resolutions {
		if r.Resolved() {
			resolved = append(resolved, r)
		}
	}
	if len(resolved) == 0 {
		return nil, ErrEmptyTimeline
	}

	total := narration.DurationSeconds
	slice := total / float64(len(resolved))

	timeline := &model.Timeline{
		Clips:         make([]*model.Clip, 0, len(resolved)),
		TotalDuration: total,
		Voiceover: &model.VoiceoverTrack{
			AssetID:   narration.AudioID,
			Start:     0,
			End:       total,
			AudioGain: model.VoiceoverAudioGain,
		},
	}

	offset := 0.0
	for i, r := range resolved {
		end := offset + slice
		if i == len(resolved)-1 {
			// The accumulated end is within float error of the total;
			// pin it so the timeline closes exactly.
			end = total
		}
		timeline.Clips = append(timeline.Clips, &model.Clip{
			AssetID:   r.AssetID,
			Tier:      r.Tier,
			Start:     offset,
			End:       end,
			AudioGain: clipAudioGain,
		})
		offset = end
	}

	return timeline, nil
}

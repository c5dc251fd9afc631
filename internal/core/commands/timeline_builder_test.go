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

// Package commands_test contains unit tests for the pipeline commands.
// This file tests the timeline synthesis: uniform tiling of the resolved
// beats across the voice-over interval.
package commands_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// narration returns a voice-over stand-in with the given duration.
func narration(duration float64) *model.NarrationResult {
	return &model.NarrationResult{AudioID: "vo-audio", DurationSeconds: duration, Script: "..."}
}

// TestSynthesizeTimelineUniformSlices verifies the core tiling behavior:
// five beats of which three resolved, over a 30 second narration, produce
// three contiguous 10 second clips in beat order.
func TestSynthesizeTimelineUniformSlices(t *testing.T) {
	resolutions := []*model.BeatResolution{
		{Beat: &model.Beat{Number: 1}, AssetID: "lib-1", Tier: model.TierLibrary},
		{Beat: &model.Beat{Number: 2}, AssetID: "web-2", Tier: model.TierDownloaded},
		{Beat: &model.Beat{Number: 3}, AssetID: "lib-3", Tier: model.TierLibrary},
		{Beat: &model.Beat{Number: 4}, Tier: model.TierUnresolved},
		{Beat: &model.Beat{Number: 5}, Tier: model.TierUnresolved},
	}

	timeline, err := commands.SynthesizeTimeline(resolutions, narration(30.0), 0.5)
	require.NoError(t, err)

	require.Len(t, timeline.Clips, 3)
	assert.Equal(t, 30.0, timeline.TotalDuration)

	// Clips tile [0, 30] in beat order with uniform 10 second slices.
	assert.Equal(t, "lib-1", timeline.Clips[0].AssetID)
	assert.Equal(t, "web-2", timeline.Clips[1].AssetID)
	assert.Equal(t, "lib-3", timeline.Clips[2].AssetID)
	assert.Equal(t, 0.0, timeline.Clips[0].Start)
	assert.InDelta(t, 10.0, timeline.Clips[0].End, model.TimelineEpsilonSecond)
	assert.InDelta(t, 20.0, timeline.Clips[1].End, model.TimelineEpsilonSecond)

	// Contiguity: each clip starts where the previous one ended.
	for i := 1; i < len(timeline.Clips); i++ {
		assert.Equal(t, timeline.Clips[i-1].End, timeline.Clips[i].Start)
	}

	// The voice-over spans the whole timeline at full gain.
	assert.Equal(t, "vo-audio", timeline.Voiceover.AssetID)
	assert.Equal(t, 0.0, timeline.Voiceover.Start)
	assert.Equal(t, 30.0, timeline.Voiceover.End)
	assert.Equal(t, model.VoiceoverAudioGain, timeline.Voiceover.AudioGain)

	// Every clip carries the configured clip gain.
	for _, clip := range timeline.Clips {
		assert.Equal(t, 0.5, clip.AudioGain)
	}
}

// TestSynthesizeTimelineLastClipPinned verifies that the final clip's end
// equals the narration duration exactly, even when the uniform slice width
// is not representable and float error would otherwise accumulate.
func TestSynthesizeTimelineLastClipPinned(t *testing.T) {
	resolutions := []*model.BeatResolution{
		{Beat: &model.Beat{Number: 1}, AssetID: "a", Tier: model.TierLibrary},
		{Beat: &model.Beat{Number: 2}, AssetID: "b", Tier: model.TierLibrary},
		{Beat: &model.Beat{Number: 3}, AssetID: "c", Tier: model.TierLibrary},
	}

	// 10/3 is not exactly representable; the last end must still be exact.
	timeline, err := commands.SynthesizeTimeline(resolutions, narration(10.0), 0.5)
	require.NoError(t, err)
	assert.Equal(t, 10.0, timeline.Clips[len(timeline.Clips)-1].End)
}

// TestSynthesizeTimelineSingleClip verifies the degenerate case of one
// resolved beat covering the entire narration.
func TestSynthesizeTimelineSingleClip(t *testing.T) {
	resolutions := []*model.BeatResolution{
		{Beat: &model.Beat{Number: 1}, AssetID: "only", Tier: model.TierProjectAsset},
	}

	timeline, err := commands.SynthesizeTimeline(resolutions, narration(45.5), 0.5)
	require.NoError(t, err)
	require.Len(t, timeline.Clips, 1)
	assert.Equal(t, 0.0, timeline.Clips[0].Start)
	assert.Equal(t, 45.5, timeline.Clips[0].End)
}

// TestSynthesizeTimelineEmpty verifies that a run with no resolved beats
// reports ErrEmptyTimeline instead of producing a zero-clip timeline.
func TestSynthesizeTimelineEmpty(t *testing.T) {
	resolutions := []*model.BeatResolution{
		{Beat: &model.Beat{Number: 1}, Tier: model.TierUnresolved},
		{Beat: &model.Beat{Number: 2}, Tier: model.TierUnresolved},
	}

	timeline, err := commands.SynthesizeTimeline(resolutions, narration(30.0), 0.5)
	assert.Nil(t, timeline)
	assert.ErrorIs(t, err, commands.ErrEmptyTimeline)
}

// TestSynthesizeTimelineDeterministic verifies that synthesis is a pure
// function of its inputs: two runs over the same resolutions produce
// identical timelines.
func TestSynthesizeTimelineDeterministic(t *testing.T) {
	resolutions := []*model.BeatResolution{
		{Beat: &model.Beat{Number: 1}, AssetID: "a", Tier: model.TierLibrary},
		{Beat: &model.Beat{Number: 2}, AssetID: "b", Tier: model.TierDownloaded},
	}

	first, err := commands.SynthesizeTimeline(resolutions, narration(21.7), 0.5)
	require.NoError(t, err)
	second, err := commands.SynthesizeTimeline(resolutions, narration(21.7), 0.5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

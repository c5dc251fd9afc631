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
// This file tests the construction of the declarative edit document from a
// synthesized timeline, and the artifact guarantees of a canceled run.
package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestTimeline produces a two-clip timeline over a 20 second
// narration, one library clip and one downloaded clip.
func buildTestTimeline() (*model.Timeline, *model.ResolutionManifest) {
	resolutions := []*model.BeatResolution{
		{Beat: &model.Beat{Number: 1, Description: "launch"}, AssetID: "lib-1", Tier: model.TierLibrary},
		{Beat: &model.Beat{Number: 2, Description: "landing"}, AssetID: "dl-2", Tier: model.TierDownloaded},
		{Beat: &model.Beat{Number: 3, Description: "return", SearchTerms: []string{"apollo splashdown"}}, Tier: model.TierUnresolved},
	}
	timeline, err := commands.SynthesizeTimeline(resolutions, &model.NarrationResult{AudioID: "vo", DurationSeconds: 20.0}, 0.5)
	if err != nil {
		panic(err)
	}
	manifest := model.NewResolutionManifest("run-x", "proj-x", 20.0, resolutions)
	return timeline, manifest
}

// TestBuildEditSpecDefaults verifies the document shape with no run
// options: default output settings, a single full-length voice-over
// overlay, and one sequential video entry per clip.
func TestBuildEditSpecDefaults(t *testing.T) {
	timeline, manifest := buildTestTimeline()

	spec := commands.BuildEditSpec("proj-x", timeline, manifest, nil)

	assert.Equal(t, "proj-x", spec.Name)
	assert.Equal(t, model.DefaultEditVersion, spec.VideoEditVersion)
	assert.Equal(t, model.DefaultOutputFormat, spec.VideoOutputFormat)
	assert.Equal(t, model.DefaultOutputResolution, spec.VideoOutputResolution)
	assert.Equal(t, model.DefaultOutputFPS, spec.VideoOutputFPS)
	assert.Equal(t, "proj-x.mp4", spec.VideoOutputFilename)
	assert.False(t, spec.SkipRendering)

	// Exactly one audio overlay: the narration, spanning the whole edit.
	require.Len(t, spec.AudioOverlay, 1)
	overlay := spec.AudioOverlay[0]
	assert.Equal(t, "vo", overlay.AudioID)
	assert.Equal(t, model.AudioTypeVoice, overlay.Type)
	assert.Equal(t, "00:00:00.000", overlay.AudioStartTime)
	assert.Equal(t, "00:00:20.000", overlay.AudioEndTime)
	require.Len(t, overlay.AudioLevels, 1)
	assert.Equal(t, model.VoiceoverAudioGain, overlay.AudioLevels[0].AudioLevel)

	// Two contiguous sequential entries with millisecond timecodes.
	require.Len(t, spec.VideoSeriesSequential, 2)
	assert.Equal(t, "00:00:00.000", spec.VideoSeriesSequential[0].VideoStartTime)
	assert.Equal(t, "00:00:10.000", spec.VideoSeriesSequential[0].VideoEndTime)
	assert.Equal(t, "00:00:10.000", spec.VideoSeriesSequential[1].VideoStartTime)
	assert.Equal(t, "00:00:20.000", spec.VideoSeriesSequential[1].VideoEndTime)
}

// TestBuildEditSpecAssetTypes verifies the tier-to-reference-type mapping:
// library clips are shared video files, everything else is a project asset.
func TestBuildEditSpecAssetTypes(t *testing.T) {
	timeline, manifest := buildTestTimeline()

	spec := commands.BuildEditSpec("proj-x", timeline, manifest, nil)

	require.Len(t, spec.VideoSeriesSequential, 2)
	assert.Equal(t, model.VideoTypeFile, spec.VideoSeriesSequential[0].Type)
	assert.Equal(t, "lib-1", spec.VideoSeriesSequential[0].VideoID)
	assert.Equal(t, model.VideoTypeAsset, spec.VideoSeriesSequential[1].Type)
	assert.Equal(t, "dl-2", spec.VideoSeriesSequential[1].VideoID)
}

// TestBuildEditSpecMetadata verifies that the audit block carries the
// manifest's counts and the unresolved beats with their search intent.
func TestBuildEditSpecMetadata(t *testing.T) {
	timeline, manifest := buildTestTimeline()

	spec := commands.BuildEditSpec("proj-x", timeline, manifest, nil)

	assert.Equal(t, "proj-x", spec.Metadata.ProjectID)
	assert.Equal(t, 20.0, spec.Metadata.TotalDuration)
	assert.Equal(t, 2, spec.Metadata.BeatsWithVideo)
	assert.Equal(t, 3, spec.Metadata.TotalBeats)
	require.Len(t, spec.Metadata.MissingBeats, 1)
	assert.Equal(t, 3, spec.Metadata.MissingBeats[0].BeatNumber)
	assert.Equal(t, []string{"apollo splashdown"}, spec.Metadata.MissingBeats[0].SearchTerms)
}

// TestBuildEditSpecRunOptions verifies that run options override the output
// settings without touching the timeline content.
func TestBuildEditSpecRunOptions(t *testing.T) {
	timeline, manifest := buildTestTimeline()
	opts := &model.RunOptions{
		OutputFilename:   "final-cut.mov",
		OutputResolution: "3840x2160",
		OutputFPS:        24.0,
	}

	spec := commands.BuildEditSpec("proj-x", timeline, manifest, opts)

	assert.Equal(t, "final-cut.mov", spec.VideoOutputFilename)
	assert.Equal(t, "3840x2160", spec.VideoOutputResolution)
	assert.Equal(t, 24.0, spec.VideoOutputFPS)
	// Content untouched by rendering overrides.
	require.Len(t, spec.VideoSeriesSequential, 2)
}

// cancelingResolver stands in for the resolution fan-out: it cancels the
// run mid-flight and publishes the resolutions that had already completed
// before the cancellation.
type cancelingResolver struct {
	cor.BaseCommand
	cancel      context.CancelFunc
	resolutions []*model.BeatResolution
}

func (c *cancelingResolver) Execute(ctx cor.Context) {
	c.cancel()
	ctx.Add(commands.GetResolutionsKey(), c.resolutions)
	ctx.Add(c.GetOutputParam(), c.resolutions)
}

// TestCanceledRunStillWritesManifest verifies graceful degradation: a run
// canceled during resolution still synthesizes a timeline from the beats
// that completed and writes the manifest and edit document to disk.
func TestCanceledRunStillWritesManifest(t *testing.T) {
	outputDir := t.TempDir()
	goCtx, cancel := context.WithCancel(context.Background())

	resolutions := []*model.BeatResolution{
		{Beat: &model.Beat{Number: 1, Description: "launch"}, AssetID: "lib-1", Tier: model.TierLibrary},
		{Beat: &model.Beat{Number: 2, Description: "landing", SearchTerms: []string{"apollo landing"}}, Tier: model.TierUnresolved},
	}

	chain := cor.NewBaseChain("canceled-run-test")
	chain.AddCommand(&cancelingResolver{
		BaseCommand: *cor.NewBaseCommand("resolver"),
		cancel:      cancel,
		resolutions: resolutions,
	})
	chain.AddCommand(commands.NewTimelineBuilder("timeline-builder", 0.5))
	chain.AddCommand(commands.NewEditSpecWriter("edit-spec-writer", nil, "", outputDir))

	ctx := cor.NewBaseContext()
	ctx.SetContext(goCtx)
	ctx.Add(commands.GetRunIDKey(), "run-1")
	ctx.Add(commands.GetProjectIDKey(), "proj-1")
	ctx.Add(commands.GetNarrationKey(), &model.NarrationResult{AudioID: "vo", DurationSeconds: 12.0})
	ctx.Add(cor.CtxIn, "start")
	chain.Execute(ctx)

	require.False(t, ctx.HasErrors())

	// The manifest was published to the context and written to disk,
	// covering the one beat that resolved before the cancellation.
	manifest, ok := ctx.Get(commands.GetManifestKey()).(*model.ResolutionManifest)
	require.True(t, ok)
	assert.Equal(t, 2, manifest.TotalBeats)
	assert.Equal(t, 1, manifest.ResolvedCount)

	_, err := os.Stat(filepath.Join(outputDir, "run-1", "manifest.json"))
	require.NoError(t, err)

	// The partial timeline produced an edit document too: one clip
	// spanning the whole narration.
	spec, ok := ctx.Get(commands.GetEditSpecKey()).(*model.EditSpec)
	require.True(t, ok)
	require.Len(t, spec.VideoSeriesSequential, 1)
	assert.Equal(t, "00:00:12.000", spec.VideoSeriesSequential[0].VideoEndTime)

	_, err = os.Stat(filepath.Join(outputDir, "run-1", "edit_spec.json"))
	require.NoError(t, err)
}

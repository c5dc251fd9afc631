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

// Package model_test contains unit tests for the data models defined in the
// model package. This file tests the construction of the per-run resolution
// manifest.
package model_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestNewResolutionManifest verifies the manifest's bookkeeping: one entry
// per beat in input order, the resolved counter, and the unresolved list
// carrying the full search intent of the beats that found no footage.
func TestNewResolutionManifest(t *testing.T) {
	resolutions := []*model.BeatResolution{
		{
			Beat:    &model.Beat{Number: 1, Description: "a rocket on the launch pad", SearchTerms: []string{"saturn v launch"}},
			AssetID: "lib-001",
			Tier:    model.TierLibrary,
		},
		{
			Beat: &model.Beat{Number: 2, Description: "astronauts in quarantine", SearchTerms: []string{"apollo quarantine", "airstream trailer"}},
			Tier: model.TierUnresolved,
		},
		{
			Beat:    &model.Beat{Number: 3, Description: "splashdown in the pacific", SearchTerms: []string{"apollo splashdown"}},
			AssetID: "asset-042",
			Tier:    model.TierDownloaded,
		},
	}

	manifest := model.NewResolutionManifest("run-1", "proj-1", 72.5, resolutions)

	assert.Equal(t, "run-1", manifest.RunID)
	assert.Equal(t, "proj-1", manifest.ProjectID)
	assert.Equal(t, 72.5, manifest.VoiceoverDuration)
	assert.Equal(t, 3, manifest.TotalBeats)
	assert.Equal(t, 2, manifest.ResolvedCount)

	// One entry per beat, input order preserved.
	assert.Len(t, manifest.Beats, 3)
	assert.Equal(t, 1, manifest.Beats[0].BeatNumber)
	assert.Equal(t, model.TierLibrary, manifest.Beats[0].SourceTier)
	assert.True(t, manifest.Beats[0].HasVideo)
	assert.False(t, manifest.Beats[1].HasVideo)
	assert.Equal(t, "lib-001", manifest.Beats[0].AssetID)

	// The unresolved block keeps enough context to source the clip by hand.
	assert.Len(t, manifest.Unresolved, 1)
	assert.Equal(t, 2, manifest.Unresolved[0].BeatNumber)
	assert.Equal(t, "astronauts in quarantine", manifest.Unresolved[0].Description)
	assert.Equal(t, []string{"apollo quarantine", "airstream trailer"}, manifest.Unresolved[0].SearchTerms)
}

// TestNewResolutionManifestAllUnresolved verifies that a run where nothing
// resolved still yields a complete manifest with every beat listed.
func TestNewResolutionManifestAllUnresolved(t *testing.T) {
	resolutions := []*model.BeatResolution{
		{Beat: &model.Beat{Number: 1, Description: "first"}, Tier: model.TierUnresolved},
		{Beat: &model.Beat{Number: 2, Description: "second"}, Tier: model.TierUnresolved},
	}

	manifest := model.NewResolutionManifest("run-2", "proj-2", 30.0, resolutions)

	assert.Equal(t, 2, manifest.TotalBeats)
	assert.Equal(t, 0, manifest.ResolvedCount)
	assert.Len(t, manifest.Unresolved, 2)
}

// TestBeatResolutionResolved verifies the AssetID/Tier coupling: a
// resolution is resolved exactly when it carries an asset ID.
func TestBeatResolutionResolved(t *testing.T) {
	resolved := &model.BeatResolution{Beat: &model.Beat{Number: 1}, AssetID: "a", Tier: model.TierProjectAsset}
	unresolved := &model.BeatResolution{Beat: &model.Beat{Number: 2}, Tier: model.TierUnresolved}

	assert.True(t, resolved.Resolved())
	assert.False(t, unresolved.Resolved())
}

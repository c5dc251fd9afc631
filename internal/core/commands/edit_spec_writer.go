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
// Command interface. This file defines the final command of a run: it
// serializes the timeline into the declarative edit document and writes
// the resolution manifest. The manifest is unconditional — it is written
// even when the timeline step produced nothing — because it is the audit
// record a follow-up pass works from. Both artifacts land in the local
// output directory and, when a bucket is configured, in Cloud Storage.
package commands

import (
	gocontext "context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
)

// EditSpecWriter serializes the run's durable artifacts.
type EditSpecWriter struct {
	cor.BaseCommand
	client    *storage.Client
	bucket    string // Destination bucket; empty disables the upload.
	outputDir string // Local directory receiving the artifacts.
}

// NewEditSpecWriter is the constructor for the EditSpecWriter command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: An initialized *storage.Client, may be nil when bucket is "".
//   - bucket: The GCS bucket receiving copies of the artifacts.
//   - outputDir: The local output directory.
//
// Outputs:
//   - *EditSpecWriter: A pointer to the newly instantiated command.
func NewEditSpecWriter(name string, client *storage.Client, bucket string, outputDir string) *EditSpecWriter {
	out := &EditSpecWriter{BaseCommand: *cor.NewBaseCommand(name), client: client, bucket: bucket, outputDir: outputDir}
	// The manifest is the audit record of a run; a canceled run must still
	// write it, covering whatever resolutions completed.
	out.RunOnCancel = true
	return out
}

// Execute writes the manifest and, when a timeline exists, the edit
// document. The manifest is published under the manifest key either way.
//
// Inputs:
//   - context: The shared workflow context holding the resolutions, the
//     narration result, and possibly the timeline.
func (c *EditSpecWriter) Execute(context cor.Context) {
	resolutions := context.Get(c.GetInputParam()).([]*model.BeatResolution)
	narration := context.Get(GetNarrationKey()).(*model.NarrationResult)
	runID := context.Get(GetRunIDKey()).(string)
	projectID := context.Get(GetProjectIDKey()).(string)

	manifest := model.NewResolutionManifest(runID, projectID, narration.DurationSeconds, resolutions)
	context.Add(GetManifestKey(), manifest)

	runDir := filepath.Join(c.outputDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create output dir %s: %w", runDir, err))
		return
	}

	// The manifest goes first: it must exist even when writing the edit
	// document later fails.
	if err := c.writeArtifact(context, runID, filepath.Join(runDir, "manifest.json"), manifest); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	timeline, hasTimeline := context.Get(GetTimelineKey()).(*model.Timeline)
	if !hasTimeline || timeline == nil {
		c.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(c.GetOutputParam(), manifest)
		return
	}

	opts, _ := context.Get(GetRunOptionsKey()).(*model.RunOptions)
	spec := BuildEditSpec(projectID, timeline, manifest, opts)
	context.Add(GetEditSpecKey(), spec)

	if err := c.writeArtifact(context, runID, filepath.Join(runDir, "edit_spec.json"), spec); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), spec)
}

// writeArtifact marshals v to the local path and mirrors it to the output
// bucket under the run's prefix.
func (c *EditSpecWriter) writeArtifact(context cor.Context, runID string, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if c.bucket == "" || c.client == nil {
		return nil
	}
	// A canceled run still mirrors its artifacts: detach the upload from
	// the run's cancellation so the manifest lands in the bucket too.
	uploadCtx := context.GetContext()
	if uploadCtx.Err() != nil {
		uploadCtx = gocontext.WithoutCancel(uploadCtx)
	}
	objectName := fmt.Sprintf("runs/%s/%s", runID, filepath.Base(path))
	writer := c.client.Bucket(c.bucket).Object(objectName).NewWriter(uploadCtx)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to upload gs://%s/%s: %w", c.bucket, objectName, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", c.bucket, objectName, err)
	}
	return nil
}

// BuildEditSpec converts a synthesized timeline into the declarative edit
// document. Library clips keep the shared video-file handle type; project
// and downloaded clips use the project asset type, exactly as the resolver
// tagged them.
//
// Inputs:
//   - projectID: The run's project identifier.
//   - timeline: The synthesized timeline.
//   - manifest: The run's manifest, supplying the audit metadata.
//   - opts: Per-run overrides; nil means all defaults.
//
// Outputs:
//   - *model.EditSpec: The edit document.
func BuildEditSpec(projectID string, timeline *model.Timeline, manifest *model.ResolutionManifest, opts *model.RunOptions) *model.EditSpec {
	spec := &model.EditSpec{
		Name:                  projectID,
		Description:           fmt.Sprintf("Documentary edit for project %s", projectID),
		VideoEditVersion:      model.DefaultEditVersion,
		VideoOutputFormat:     model.DefaultOutputFormat,
		VideoOutputResolution: model.DefaultOutputResolution,
		VideoOutputFPS:        model.DefaultOutputFPS,
		VideoOutputFilename:   projectID + ".mp4",
		SkipRendering:         false,
		Subtitles:             false,
		AudioOverlay:          make([]model.AudioOverlayAsset, 0, 1),
		VideoSeriesSequential: make([]model.VideoSequenceAsset, 0, len(timeline.Clips)),
		Metadata: model.EditSpecMetadata{
			ProjectID:      projectID,
			TotalDuration:  timeline.TotalDuration,
			BeatsWithVideo: manifest.ResolvedCount,
			TotalBeats:     manifest.TotalBeats,
			MissingBeats:   manifest.Unresolved,
		},
	}
	if opts != nil {
		if opts.OutputFilename != "" {
			spec.VideoOutputFilename = opts.OutputFilename
		}
		if opts.OutputResolution != "" {
			spec.VideoOutputResolution = opts.OutputResolution
		}
		if opts.OutputFPS > 0 {
			spec.VideoOutputFPS = opts.OutputFPS
		}
	}

	start := model.FormatTimecode(timeline.Voiceover.Start)
	end := model.FormatTimecode(timeline.Voiceover.End)
	spec.AudioOverlay = append(spec.AudioOverlay, model.AudioOverlayAsset{
		AudioID:        timeline.Voiceover.AssetID,
		Type:           model.AudioTypeVoice,
		AudioStartTime: start,
		AudioEndTime:   end,
		AudioLevels: []model.AudioLevel{
			{AudioLevel: timeline.Voiceover.AudioGain, StartTime: start, EndTime: end},
		},
	})

	for _, clip := range timeline.Clips {
		clipType := model.VideoTypeAsset
		if clip.Tier == model.TierLibrary {
			clipType = model.VideoTypeFile
		}
		clipStart := model.FormatTimecode(clip.Start)
		clipEnd := model.FormatTimecode(clip.End)
		spec.VideoSeriesSequential = append(spec.VideoSeriesSequential, model.VideoSequenceAsset{
			VideoID:        clip.AssetID,
			Type:           clipType,
			VideoStartTime: clipStart,
			VideoEndTime:   clipEnd,
			AudioLevels: []model.AudioLevel{
				{AudioLevel: clip.AudioGain, StartTime: clipStart, EndTime: clipEnd},
			},
		})
	}

	return spec
}

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
// This file, `editspec.go`, describes the declarative edit document that the
// pipeline produces as its durable output artifact. The document is purely
// descriptive: it tells a downstream renderer what to do, it does not render
// anything itself. Timestamps inside the document use the `HH:MM:SS.mmm`
// textual form; durations in the metadata block are floating-point seconds.
//
// Structs:
//   - AudioLevel: A gain setting over a time range.
//   - AudioOverlayAsset: The narration overlay entry.
//   - VideoSequenceAsset: One sequential clip entry.
//   - EditSpecMetadata / MissingBeat: The run audit block embedded in the document.
//   - EditSpec: The top-level document.
package model

// Asset reference types used in the edit document. Library hits are
// addressed as shared video files; project and downloaded assets are
// addressed as project-scoped assets. The distinction is preserved verbatim
// from the resolution tier because the renderer resolves the two handle
// types against different stores.
const (
	VideoTypeFile  = "videofile"
	VideoTypeAsset = "asset"
	AudioTypeVoice = "voiceover"
)

// Default rendering passthrough configuration.
const (
	DefaultEditVersion      = "v1"
	DefaultOutputFormat     = "mp4"
	DefaultOutputResolution = "1920x1080"
	DefaultOutputFPS        = 30.0
)

// AudioLevel expresses a gain value over a closed time range.
type AudioLevel struct {
	AudioLevel float64 `json:"audio_level"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
}

// AudioOverlayAsset is a single audio overlay entry. The pipeline always
// emits exactly one: the generated voice-over spanning the full timeline.
type AudioOverlayAsset struct {
	AudioID        string       `json:"audio_id"`
	Type           string       `json:"type"` // Always AudioTypeVoice.
	AudioStartTime string       `json:"audio_start_time"`
	AudioEndTime   string       `json:"audio_end_time"`
	AudioLevels    []AudioLevel `json:"audio_levels"`
}

// VideoSequenceAsset is one clip in the sequential video series. Entries are
// ordered and contiguous; the renderer plays them back to back.
type VideoSequenceAsset struct {
	VideoID        string       `json:"video_id"`
	Type           string       `json:"type"` // VideoTypeFile for library clips, VideoTypeAsset otherwise.
	VideoStartTime string       `json:"video_start_time"`
	VideoEndTime   string       `json:"video_end_time"`
	AudioLevels    []AudioLevel `json:"audio_levels"`
}

// MissingBeat identifies a beat the resolver could not satisfy, carrying
// enough context (description and search terms) for a human to source a clip
// manually.
type MissingBeat struct {
	BeatNumber  int      `json:"beat_number"`
	Description string   `json:"description"`
	SearchTerms []string `json:"search_terms"`
}

// EditSpecMetadata is the audit block embedded in the edit document.
type EditSpecMetadata struct {
	ProjectID      string        `json:"project_id"`
	TotalDuration  float64       `json:"total_duration"` // Seconds.
	BeatsWithVideo int           `json:"beats_with_video"`
	TotalBeats     int           `json:"total_beats"`
	MissingBeats   []MissingBeat `json:"missing_beats"`
}

// EditSpec is the pipeline's durable output artifact: a declarative,
// renderer-agnostic description of the final edit.
type EditSpec struct {
	Name                  string               `json:"name"`
	Description           string               `json:"description"`
	VideoEditVersion      string               `json:"video_edit_version"`
	VideoOutputFormat     string               `json:"video_output_format"`
	VideoOutputResolution string               `json:"video_output_resolution"`
	VideoOutputFPS        float64              `json:"video_output_fps"`
	VideoOutputFilename   string               `json:"video_output_filename"`
	SkipRendering         bool                 `json:"skip_rendering"`
	Subtitles             bool                 `json:"subtitles"`
	AudioOverlay          []AudioOverlayAsset  `json:"audio_overlay"`
	VideoSeriesSequential []VideoSequenceAsset `json:"video_series_sequential"`
	Metadata              EditSpecMetadata     `json:"metadata"`
}

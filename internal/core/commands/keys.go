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
// Command interface. This file defines the well-known context keys the
// commands use to share run state beyond the default input/output piping:
// the run and project identifiers minted at the start of a run, and the
// intermediate artifacts (beat plan, narration, resolutions, timeline)
// that later commands consume out of order.
package commands

// GetRunIDKey returns the context key holding the run's unique identifier.
func GetRunIDKey() string { return "__RUN_ID__" }

// GetProjectIDKey returns the context key holding the run's project
// identifier.
func GetProjectIDKey() string { return "__PROJECT_ID__" }

// GetDocumentKey returns the context key holding the segmented research
// document.
func GetDocumentKey() string { return "__DOCUMENT__" }

// GetBeatPlanKey returns the context key holding the ordered beat plan.
func GetBeatPlanKey() string { return "__BEAT_PLAN__" }

// GetNarrationKey returns the context key holding the narration result.
func GetNarrationKey() string { return "__NARRATION__" }

// GetResolutionsKey returns the context key holding the per-beat
// resolutions.
func GetResolutionsKey() string { return "__RESOLUTIONS__" }

// GetTimelineKey returns the context key holding the synthesized timeline.
// Absent when synthesis was skipped because no beat resolved.
func GetTimelineKey() string { return "__TIMELINE__" }

// GetEmptyTimelineKey returns the context key that carries the empty
// timeline condition. Its presence means the run produced a manifest but
// no edit document; the condition is reported to the caller as distinct
// from success without failing the chain, so the manifest still gets
// written.
func GetEmptyTimelineKey() string { return "__EMPTY_TIMELINE__" }

// GetManifestKey returns the context key holding the resolution manifest.
func GetManifestKey() string { return "__MANIFEST__" }

// GetEditSpecKey returns the context key holding the serialized edit
// document. Absent when the run hit the empty timeline condition.
func GetEditSpecKey() string { return "__EDIT_SPEC__" }

// GetRunOptionsKey returns the context key holding per-run option
// overrides (project name, output filename, resolution).
func GetRunOptionsKey() string { return "__RUN_OPTIONS__" }

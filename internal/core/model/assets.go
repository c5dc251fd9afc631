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

// Package model defines the data structures that flow through the pipeline.
// This file holds the asset-side types: rows returned by the library index,
// objects in the per-project asset store, and the voice-over produced by the
// narration stage.
package model

// ProjectAssetTypeUser marks assets uploaded into a project by a user or by
// the web tier on the user's behalf. The project tier only matches assets of
// this type.
const ProjectAssetTypeUser = "user"

// AssetMatchResult is one row returned by the library index's vector search:
// the matched asset and its embedding distance to the query.
type AssetMatchResult struct {
	AssetID  string  `bigquery:"asset_id" json:"asset_id"`
	Distance float64 `bigquery:"distance" json:"distance"`
}

// LibraryAsset is a record from the library's media table. MediaURL points
// at the underlying object in Cloud Storage.
type LibraryAsset struct {
	ID              string  `bigquery:"id" json:"id"`
	Title           string  `bigquery:"title" json:"title"`
	Description     string  `bigquery:"description" json:"description"`
	MediaURL        string  `bigquery:"media_url" json:"media_url"`
	DurationSeconds float64 `bigquery:"length_in_seconds" json:"length_in_seconds"`
}

// ProjectAsset is one object in a project's asset bucket. Name and
// Description carry the searchable text the project tier substring-matches
// against; AssetType distinguishes user uploads from pipeline artifacts.
type ProjectAsset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AssetType   string `json:"asset_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// NarrationResult is the outcome of voice-over generation: the uploaded
// audio asset and its exact duration, which fixes the total timeline length.
type NarrationResult struct {
	AudioID         string  `json:"audio_id"`
	DurationSeconds float64 `json:"duration_seconds"`
	Script          string  `json:"script"`
}

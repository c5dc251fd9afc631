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

// Package services implements the pipeline's collaborator contracts against
// real backends. This file centralizes the BigQuery SQL used by the library
// tier. The queries use fmt.Sprintf format verbs as placeholders for values
// injected at runtime.
package services

const (
	// QryAssetKnn performs the k-nearest-neighbor vector search behind the
	// library tier. VECTOR_SEARCH compares the query embedding (injected as a
	// comma-separated float list) against the `embeddings` column of the
	// embedding table and returns the closest asset IDs, nearest first.
	//
	// Placeholders: fully qualified embedding table, query vector, top_k.
	QryAssetKnn = "SELECT base.asset_id, distance FROM VECTOR_SEARCH(TABLE `%s`, 'embeddings', (SELECT [ %s ] as embed), top_k => %d, distance_type => 'EUCLIDEAN') ORDER BY distance asc"

	// QryFindAssetById looks up a single library asset record by its ID.
	//
	// Placeholders: fully qualified media table, asset ID.
	QryFindAssetById = "SELECT id, title, description, media_url, length_in_seconds from `%s` WHERE id = '%s'"
)

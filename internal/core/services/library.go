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
// real backends. This file defines the library index: the resolver's first
// and most authoritative tier. A query string is embedded with a generative
// model and matched against pre-indexed clip embeddings in BigQuery using a
// k-nearest-neighbor vector search.
package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"google.golang.org/api/iterator"
	"google.golang.org/genai"
)

// LibrarySearch is the contract the library tier resolves against. A nil
// error with an empty result slice means the query simply matched nothing.
type LibrarySearch interface {
	Query(ctx context.Context, text string, maxResults int) ([]*model.AssetMatchResult, error)
}

// LibraryService implements LibrarySearch on BigQuery vector search. It
// holds the BigQuery client, the embedding model used to vectorize query
// text, and the dataset/table coordinates of the library index.
type LibraryService struct {
	BigqueryClient *bigquery.Client // Client for the library index dataset.
	EmbeddingModel *genai.Models    // Model handle used to embed query text.
	ModelName      string           // Name of the embedding model.
	DatasetName    string           // BigQuery dataset holding the index.
	MediaTable     string           // Table with library asset metadata.
	EmbeddingTable string           // Table with clip embedding vectors.
}

// mediaTableFQN returns the dot-separated fully qualified name of the media
// table, usable directly in standard SQL.
func (s *LibraryService) mediaTableFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.MediaTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// Query embeds the given text and runs a KNN vector search over the library
// index, returning the closest assets first.
//
// Inputs:
//   - ctx: The request context, used for cancellation and tracing.
//   - text: The query text (a search term variant built from a beat).
//   - maxResults: The 'k' in k-nearest-neighbor.
//
// Outputs:
//   - []*model.AssetMatchResult: Matched asset IDs with their distances,
//     never nil.
//   - error: An error if embedding, the query, or row scanning fails.
func (s *LibraryService) Query(ctx context.Context, text string, maxResults int) (out []*model.AssetMatchResult, err error) {
	out = make([]*model.AssetMatchResult, 0)

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}
	searchEmbeddings, err := s.EmbeddingModel.EmbedContent(ctx, s.ModelName, contents, nil)
	if err != nil {
		return out, fmt.Errorf("failed to embed query text: %w", err)
	}

	fqEmbeddingTable := strings.Replace(s.BigqueryClient.Dataset(s.DatasetName).Table(s.EmbeddingTable).FullyQualifiedName(), ":", ".", -1)

	// VECTOR_SEARCH takes the query vector as a comma-separated float list.
	var stringArray []string
	for _, f := range searchEmbeddings.Embeddings[0].Values {
		stringArray = append(stringArray, strconv.FormatFloat(float64(f), 'f', -1, 64))
	}

	queryText := fmt.Sprintf(QryAssetKnn, fqEmbeddingTable, strings.Join(stringArray, ","), maxResults)

	q := s.BigqueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return out, fmt.Errorf("failed to read from BigQuery: %w", err)
	}

	for {
		var r = &model.AssetMatchResult{}
		err := itr.Next(r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return out, fmt.Errorf("failed to iterate results: %w", err)
		}
		out = append(out, r)
	}

	return out, nil
}

// Get retrieves the full metadata record for a single library asset.
//
// Inputs:
//   - ctx: The request context.
//   - id: The asset's unique identifier.
//
// Outputs:
//   - *model.LibraryAsset: The asset record.
//   - error: An error if the query fails or the asset does not exist.
func (s *LibraryService) Get(ctx context.Context, id string) (asset *model.LibraryAsset, err error) {
	queryText := fmt.Sprintf(QryFindAssetById, s.mediaTableFQN(), id)
	q := s.BigqueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return asset, err
	}
	// IDs are unique, so a single row is expected.
	asset = &model.LibraryAsset{}
	err = itr.Next(asset)
	return asset, err
}

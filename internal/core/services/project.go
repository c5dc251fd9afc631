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
// real backends. This file defines the project asset store: the per-project
// collection of already-uploaded clips that backs the resolver's second tier
// and receives web-tier downloads. Assets live in a GCS bucket under a
// per-project prefix, with their searchable name, description, and type kept
// in object metadata.
package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"google.golang.org/api/iterator"
)

// Object metadata keys on project asset objects.
const (
	metaKeyName        = "asset_name"
	metaKeyDescription = "asset_description"
	metaKeyType        = "asset_type"
)

// ProjectStore is the contract for a project's asset collection. Uploads are
// independent appends; implementations never mutate or delete existing
// assets.
type ProjectStore interface {
	ListAssets(ctx context.Context, projectID string) ([]*model.ProjectAsset, error)
	Upload(ctx context.Context, projectID string, localPath string, meta *model.ProjectAsset) (string, error)
}

// GCSProjectStore implements ProjectStore on a Cloud Storage bucket, one
// prefix per project.
type GCSProjectStore struct {
	Client *storage.Client // GCS client.
	Bucket string          // Bucket holding all project assets.
}

// objectPrefix returns the per-project prefix under which assets are stored.
func (s *GCSProjectStore) objectPrefix(projectID string) string {
	return fmt.Sprintf("projects/%s/assets/", projectID)
}

// ListAssets returns every asset in the project, with its searchable name,
// description, and type read from object metadata. Objects written before
// metadata conventions existed fall back to their object name.
//
// Inputs:
//   - ctx: The request context.
//   - projectID: The project whose assets to list.
//
// Outputs:
//   - []*model.ProjectAsset: The project's assets, never nil.
//   - error: An error if the bucket listing fails.
func (s *GCSProjectStore) ListAssets(ctx context.Context, projectID string) (out []*model.ProjectAsset, err error) {
	out = make([]*model.ProjectAsset, 0)

	itr := s.Client.Bucket(s.Bucket).Objects(ctx, &storage.Query{Prefix: s.objectPrefix(projectID)})
	for {
		attrs, err := itr.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return out, fmt.Errorf("failed to list assets for project %s: %w", projectID, err)
		}

		asset := &model.ProjectAsset{
			ID:          attrs.Name,
			Name:        filepath.Base(attrs.Name),
			AssetType:   attrs.Metadata[metaKeyType],
			Description: attrs.Metadata[metaKeyDescription],
			SizeBytes:   attrs.Size,
		}
		if n, ok := attrs.Metadata[metaKeyName]; ok && n != "" {
			asset.Name = n
		}
		out = append(out, asset)
	}

	return out, nil
}

// Upload streams a local file into the project's asset prefix and stamps the
// object with the asset's metadata. The object name is minted from a fresh
// UUID so concurrent uploads never collide.
//
// Inputs:
//   - ctx: The request context.
//   - projectID: The owning project.
//   - localPath: Path of the file to upload.
//   - meta: Name, description, and type recorded on the object. A missing
//     type defaults to the user asset type.
//
// Outputs:
//   - string: The new asset's identifier (its object name).
//   - error: An error if the file cannot be read or the upload fails.
func (s *GCSProjectStore) Upload(ctx context.Context, projectID string, localPath string, meta *model.ProjectAsset) (string, error) {
	dat, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer func() { _ = dat.Close() }()

	assetType := model.ProjectAssetTypeUser
	name := filepath.Base(localPath)
	description := ""
	if meta != nil {
		if meta.AssetType != "" {
			assetType = meta.AssetType
		}
		if meta.Name != "" {
			name = meta.Name
		}
		description = meta.Description
	}

	ext := strings.ToLower(filepath.Ext(localPath))
	objectName := s.objectPrefix(projectID) + uuid.New().String() + ext

	obj := s.Client.Bucket(s.Bucket).Object(objectName)
	writer := obj.NewWriter(ctx)
	writer.Metadata = map[string]string{
		metaKeyName:        name,
		metaKeyDescription: description,
		metaKeyType:        assetType,
	}

	if _, err := io.Copy(writer, dat); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to copy %s to gs://%s/%s: %w", localPath, s.Bucket, objectName, err)
	}
	// Close finalizes the upload; the object does not exist until it returns.
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize gs://%s/%s: %w", s.Bucket, objectName, err)
	}

	return objectName, nil
}

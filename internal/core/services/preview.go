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
// real backends. This file defines the preview service: time-limited signed
// URLs for the assets referenced by a run's manifest, so a reviewer can
// watch a resolved clip directly from storage without their own
// credentials.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
)

// PreviewService signs storage URLs on behalf of a dedicated service
// account via the IAM Credentials API, so no private key ever touches the
// server.
type PreviewService struct {
	StorageClient *storage.Client                   // Client for the asset buckets.
	IAMClient     *credentials.IamCredentialsClient // Client performing the signing.
	SignerEmail   string                            // Service account whose identity signs the URLs.
}

// splitURI breaks a storage reference into bucket and object. Both the
// gs:// form (library records) and the HTTPS endpoint form are accepted.
func splitURI(uri string) (bucket string, object string, err error) {
	path := uri
	for _, prefix := range []string{"gs://", "https://storage.mtls.cloud.google.com/", "https://storage.googleapis.com/"} {
		if strings.HasPrefix(uri, prefix) {
			path = strings.TrimPrefix(uri, prefix)
			break
		}
	}
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("unable to determine bucket and object from %s", uri)
	}
	return parts[0], parts[1], nil
}

// SignURL creates a V4 signed GET URL for the given storage reference.
//
// Inputs:
//   - ctx: The request context.
//   - uri: The asset's storage reference (gs:// or HTTPS form).
//   - expires: How long the URL stays valid.
//
// Outputs:
//   - string: The signed URL.
//   - error: An error if the URI is malformed or signing fails.
func (s *PreviewService) SignURL(ctx context.Context, uri string, expires time.Duration) (string, error) {
	bucketName, objectName, err := splitURI(uri)
	if err != nil {
		return "", err
	}

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(expires),
		GoogleAccessID: s.SignerEmail,
		// Sign through the IAM Credentials API rather than a local key file.
		SignBytes: func(b []byte) ([]byte, error) {
			req := &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			}
			resp, err := s.IAMClient.SignBlob(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		},
	}

	u, err := s.StorageClient.Bucket(bucketName).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", bucketName, objectName, err)
	}
	return u, nil
}

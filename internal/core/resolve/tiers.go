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

// Package resolve implements the per-beat tiered asset resolution. This
// file defines the three tier strategies the resolver tries in order:
//
//  1. Library tier — vector search over the indexed clip library, one
//     query variant at a time, cheapest and most authoritative.
//  2. Project tier — case-insensitive substring match over the project's
//     already-uploaded user assets.
//  3. Web tier — web search, relevance filtering, then download and upload
//     with a bounded retry budget per candidate and a per-beat URL dedup
//     set. Most expensive, tried last.
//
// A tier returns an empty asset ID when it simply found nothing; an error
// means the tier's backend failed. The resolver treats both the same way
// (fall through to the next tier), but errors are logged.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/services"
)

// libraryTierResultLimit is the k handed to the library's KNN search; the
// tier only ever consumes the nearest hit.
const libraryTierResultLimit = 5

// Request carries one beat's resolution inputs through the tiers. Variants
// are computed once per beat and shared by the library and project tiers.
type Request struct {
	Beat      *model.Beat
	ProjectID string
	Variants  []string
}

// Tier is one source strategy in the fallback order. TryResolve returns
// the resolved asset ID, or "" when the tier has nothing for this beat.
type Tier interface {
	Source() model.SourceTier
	TryResolve(ctx context.Context, req *Request) (string, error)
}

// LibraryTier resolves beats against the indexed clip library.
type LibraryTier struct {
	Search  services.LibrarySearch
	Timeout time.Duration // Per-query timeout.
}

func (t *LibraryTier) Source() model.SourceTier { return model.TierLibrary }

// TryResolve queries the library with each variant in order and returns
// the nearest hit of the first variant that matches anything. Individual
// variant failures are collected but do not stop the sweep.
func (t *LibraryTier) TryResolve(ctx context.Context, req *Request) (string, error) {
	var errs error
	for _, variant := range req.Variants {
		if ctx.Err() != nil {
			return "", errors.Join(errs, ctx.Err())
		}
		queryCtx, cancel := context.WithTimeout(ctx, t.Timeout)
		matches, err := t.Search.Query(queryCtx, variant, libraryTierResultLimit)
		cancel()
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("library query %q: %w", variant, err))
			continue
		}
		if len(matches) > 0 {
			return matches[0].AssetID, nil
		}
	}
	return "", errs
}

// ProjectTier resolves beats against the project's existing user assets.
type ProjectTier struct {
	Store   services.ProjectStore
	Timeout time.Duration // Timeout for the asset listing.
}

func (t *ProjectTier) Source() model.SourceTier { return model.TierProjectAsset }

// TryResolve lists the project's assets once and returns the first user
// asset whose name or description contains any query variant,
// case-insensitively. First match wins.
func (t *ProjectTier) TryResolve(ctx context.Context, req *Request) (string, error) {
	listCtx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	assets, err := t.Store.ListAssets(listCtx, req.ProjectID)
	if err != nil {
		return "", fmt.Errorf("project asset listing: %w", err)
	}

	for _, asset := range assets {
		if asset.AssetType != model.ProjectAssetTypeUser {
			continue
		}
		haystack := strings.ToLower(asset.Name + " " + asset.Description)
		for _, variant := range req.Variants {
			if strings.Contains(haystack, strings.ToLower(variant)) {
				return asset.ID, nil
			}
		}
	}
	return "", nil
}

// WebTier resolves beats by searching the web, downloading the most
// relevant candidate, and uploading it into the project.
type WebTier struct {
	Search  services.WebSearch
	Fetcher services.MediaFetcher
	Store   services.ProjectStore

	RelevanceThreshold   float64       // Candidates scoring below this are discarded.
	MaxCandidates        int           // How many candidates to walk, best first.
	AttemptsPerCandidate int           // Download/upload attempts per candidate.
	RetryBackoff         time.Duration // Fixed pause between attempts on one candidate.
	SearchTimeout        time.Duration // Timeout for the search call.
	DownloadTimeout      time.Duration // Per-attempt timeout for download plus upload.
}

func (t *WebTier) Source() model.SourceTier { return model.TierDownloaded }

// TryResolve searches for the beat, filters candidates by relevance, sorts
// the survivors best first (provider order preserved on ties), and walks
// at most MaxCandidates of them. Each candidate gets AttemptsPerCandidate
// tries; a candidate that produced an unusable file is abandoned
// immediately without charging the next candidate's budget. URLs that
// failed once are never retried for this beat.
func (t *WebTier) TryResolve(ctx context.Context, req *Request) (string, error) {
	searchCtx, cancel := context.WithTimeout(ctx, t.SearchTimeout)
	candidates, err := t.Search.Query(searchCtx, req.Beat.SearchTerms, req.Beat.Description)
	cancel()
	if err != nil {
		return "", fmt.Errorf("web search: %w", err)
	}

	usable := make([]*model.VideoCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.RelevanceScore >= t.RelevanceThreshold {
			usable = append(usable, c)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].RelevanceScore > usable[j].RelevanceScore
	})
	if len(usable) > t.MaxCandidates {
		usable = usable[:t.MaxCandidates]
	}

	// URLs attempted for this beat, successful or not. Scoped to the beat,
	// so no synchronization is needed.
	attempted := make(map[string]struct{})

	for _, candidate := range usable {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if _, done := attempted[candidate.URL]; done {
			continue
		}
		attempted[candidate.URL] = struct{}{}

		if assetID := t.tryCandidate(ctx, req, candidate); assetID != "" {
			return assetID, nil
		}
	}
	return "", nil
}

// tryCandidate spends this candidate's retry budget. An invalid file ends
// the candidate immediately; transport or upload failures retry after a
// fixed backoff until the budget runs out.
func (t *WebTier) tryCandidate(ctx context.Context, req *Request, candidate *model.VideoCandidate) string {
	for attempt := 0; attempt < t.AttemptsPerCandidate; attempt++ {
		if ctx.Err() != nil {
			return ""
		}

		attemptCtx, cancel := context.WithTimeout(ctx, t.DownloadTimeout)
		localPath, err := t.Fetcher.Download(attemptCtx, candidate.URL)
		if err == nil {
			assetID, upErr := t.Store.Upload(attemptCtx, req.ProjectID, localPath, &model.ProjectAsset{
				Name:        truncate(fmt.Sprintf("Beat %d: %s", req.Beat.Number, candidate.Title), 100),
				Description: fmt.Sprintf("Beat %d - %s", req.Beat.Number, truncate(req.Beat.Description, 200)),
				AssetType:   model.ProjectAssetTypeUser,
			})
			_ = os.Remove(localPath)
			cancel()
			if upErr == nil {
				return assetID
			}
			err = upErr
		} else {
			cancel()
		}

		if errors.Is(err, services.ErrInvalidMedia) {
			slog.Warn("web candidate produced unusable media",
				"beat", req.Beat.Number, "url", candidate.URL, "error", err)
			return ""
		}

		slog.Warn("web candidate attempt failed",
			"beat", req.Beat.Number, "url", candidate.URL, "attempt", attempt+1, "error", err)

		if attempt+1 < t.AttemptsPerCandidate {
			select {
			case <-ctx.Done():
				return ""
			case <-time.After(t.RetryBackoff):
			}
		}
	}
	return ""
}

// truncate clips s to at most n runes, never splitting a multi-byte
// character; the inputs here are model-generated titles and descriptions
// that can run long and are frequently non-ASCII.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

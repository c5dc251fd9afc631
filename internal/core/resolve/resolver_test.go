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

// Package resolve_test contains unit tests for the tiered asset resolver.
// This file tests the tier cascade, the web tier's candidate walk and retry
// budget, and the bounded parallel fan-out over a beat plan.
package resolve_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/resolve"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLibrary implements services.LibrarySearch over a fixed result map
// keyed by query text.
type fakeLibrary struct {
	results map[string][]*model.AssetMatchResult
	err     error
	queries []string
}

func (f *fakeLibrary) Query(_ context.Context, text string, _ int) ([]*model.AssetMatchResult, error) {
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[text], nil
}

// fakeStore implements services.ProjectStore with canned assets and a log
// of uploads.
type fakeStore struct {
	assets    []*model.ProjectAsset
	listErr   error
	uploadErr error
	uploads   []*model.ProjectAsset
	nextID    int
}

func (f *fakeStore) ListAssets(_ context.Context, _ string) ([]*model.ProjectAsset, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.assets, nil
}

func (f *fakeStore) Upload(_ context.Context, _ string, _ string, meta *model.ProjectAsset) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, meta)
	f.nextID++
	return fmt.Sprintf("uploaded-%d", f.nextID), nil
}

// fakeWebSearch implements services.WebSearch with a fixed candidate list.
type fakeWebSearch struct {
	candidates []*model.VideoCandidate
	err        error
}

func (f *fakeWebSearch) Query(_ context.Context, _ []string, _ string) ([]*model.VideoCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

// fakeFetcher implements services.MediaFetcher with scripted per-URL
// outcomes and a log of download attempts.
type fakeFetcher struct {
	// errs maps a URL to the error each download returns; absent means success.
	errs     map[string]error
	attempts []string
}

func (f *fakeFetcher) Download(_ context.Context, url string) (string, error) {
	f.attempts = append(f.attempts, url)
	if err, ok := f.errs[url]; ok && err != nil {
		return "", err
	}
	return "/tmp/does-not-exist-clip.mp4", nil
}

// newWebTier builds a WebTier over the given fakes with the standard
// tuning used across these tests.
func newWebTier(search *fakeWebSearch, fetcher *fakeFetcher, store *fakeStore) *resolve.WebTier {
	return &resolve.WebTier{
		Search:               search,
		Fetcher:              fetcher,
		Store:                store,
		RelevanceThreshold:   0.5,
		MaxCandidates:        5,
		AttemptsPerCandidate: 2,
		RetryBackoff:         time.Millisecond,
		SearchTimeout:        time.Second,
		DownloadTimeout:      time.Second,
	}
}

// TestLibraryTierFirstVariantWins verifies that the library tier stops at
// the first variant with a hit and returns its nearest match.
func TestLibraryTierFirstVariantWins(t *testing.T) {
	library := &fakeLibrary{results: map[string][]*model.AssetMatchResult{
		"second query": {{AssetID: "lib-hit", Distance: 0.1}, {AssetID: "lib-far", Distance: 0.9}},
	}}
	tier := &resolve.LibraryTier{Search: library, Timeout: time.Second}

	assetID, err := tier.TryResolve(context.Background(), &resolve.Request{
		Beat:     &model.Beat{Number: 1},
		Variants: []string{"first query", "second query", "third query"},
	})

	require.NoError(t, err)
	assert.Equal(t, "lib-hit", assetID)
	// The sweep stops at the matching variant.
	assert.Equal(t, []string{"first query", "second query"}, library.queries)
}

// TestProjectTierSubstringMatch verifies the case-insensitive substring
// match over user asset names and descriptions, and the exclusion of
// non-user assets such as generated voice-overs.
func TestProjectTierSubstringMatch(t *testing.T) {
	store := &fakeStore{assets: []*model.ProjectAsset{
		{ID: "vo-1", Name: "Rocket narration", AssetType: "voiceover"},
		{ID: "user-1", Name: "Beat 4: Saturn V ROCKET liftoff", AssetType: model.ProjectAssetTypeUser},
	}}
	tier := &resolve.ProjectTier{Store: store, Timeout: time.Second}

	assetID, err := tier.TryResolve(context.Background(), &resolve.Request{
		Beat:      &model.Beat{Number: 1},
		ProjectID: "proj",
		Variants:  []string{"rocket"},
	})

	require.NoError(t, err)
	// The voiceover asset matches the substring but is not a user asset.
	assert.Equal(t, "user-1", assetID)
}

// TestWebTierThresholdAndOrder verifies that candidates below the
// relevance threshold never reach the download step and that the
// best-scored candidate is tried first.
func TestWebTierThresholdAndOrder(t *testing.T) {
	search := &fakeWebSearch{candidates: []*model.VideoCandidate{
		{URL: "http://low", RelevanceScore: 0.2},
		{URL: "http://best", RelevanceScore: 0.9},
		{URL: "http://good", RelevanceScore: 0.7},
	}}
	fetcher := &fakeFetcher{}
	store := &fakeStore{}
	tier := newWebTier(search, fetcher, store)

	assetID, err := tier.TryResolve(context.Background(), &resolve.Request{
		Beat: &model.Beat{Number: 2, Description: "d", SearchTerms: []string{"t"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "uploaded-1", assetID)
	// Only the best candidate was needed; the sub-threshold one never appears.
	assert.Equal(t, []string{"http://best"}, fetcher.attempts)
}

// TestWebTierInvalidMediaAbandonsCandidate verifies the invalid-file rule:
// a download that completes but yields unusable media ends that candidate
// immediately, without a retry, and the next candidate keeps its own full
// attempt budget.
func TestWebTierInvalidMediaAbandonsCandidate(t *testing.T) {
	search := &fakeWebSearch{candidates: []*model.VideoCandidate{
		{URL: "http://broken", RelevanceScore: 0.9},
		{URL: "http://works", RelevanceScore: 0.8},
	}}
	fetcher := &fakeFetcher{errs: map[string]error{
		"http://broken": fmt.Errorf("%w: file too small", services.ErrInvalidMedia),
	}}
	store := &fakeStore{}
	tier := newWebTier(search, fetcher, store)

	assetID, err := tier.TryResolve(context.Background(), &resolve.Request{
		Beat: &model.Beat{Number: 3, Description: "d", SearchTerms: []string{"t"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "uploaded-1", assetID)
	// The broken candidate was tried exactly once, then the walk moved on.
	assert.Equal(t, []string{"http://broken", "http://works"}, fetcher.attempts)
}

// TestWebTierRetriesTransportFailures verifies that a transport failure is
// retried up to the per-candidate budget before the next candidate is
// tried.
func TestWebTierRetriesTransportFailures(t *testing.T) {
	search := &fakeWebSearch{candidates: []*model.VideoCandidate{
		{URL: "http://flaky", RelevanceScore: 0.9},
		{URL: "http://works", RelevanceScore: 0.8},
	}}
	fetcher := &fakeFetcher{errs: map[string]error{
		"http://flaky": errors.New("connection reset"),
	}}
	store := &fakeStore{}
	tier := newWebTier(search, fetcher, store)

	assetID, err := tier.TryResolve(context.Background(), &resolve.Request{
		Beat: &model.Beat{Number: 4, Description: "d", SearchTerms: []string{"t"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "uploaded-1", assetID)
	// Two attempts on the flaky URL, then one on the working URL.
	assert.Equal(t, []string{"http://flaky", "http://flaky", "http://works"}, fetcher.attempts)
}

// TestWebTierNeverRetriesSameURL verifies per-beat URL deduplication: a
// URL that appears twice in the candidate list is only walked once.
func TestWebTierNeverRetriesSameURL(t *testing.T) {
	search := &fakeWebSearch{candidates: []*model.VideoCandidate{
		{URL: "http://dup", RelevanceScore: 0.9},
		{URL: "http://dup", RelevanceScore: 0.8},
	}}
	fetcher := &fakeFetcher{errs: map[string]error{
		"http://dup": fmt.Errorf("%w: not a video", services.ErrInvalidMedia),
	}}
	store := &fakeStore{}
	tier := newWebTier(search, fetcher, store)

	assetID, err := tier.TryResolve(context.Background(), &resolve.Request{
		Beat: &model.Beat{Number: 5, Description: "d", SearchTerms: []string{"t"}},
	})

	require.NoError(t, err)
	assert.Empty(t, assetID)
	assert.Equal(t, []string{"http://dup"}, fetcher.attempts)
}

// TestWebTierUploadMetadata verifies the project asset metadata attached to
// a downloaded clip: the beat-numbered name and the truncated description.
func TestWebTierUploadMetadata(t *testing.T) {
	search := &fakeWebSearch{candidates: []*model.VideoCandidate{
		{URL: "http://clip", Title: "Apollo 11 launch footage", RelevanceScore: 0.9},
	}}
	fetcher := &fakeFetcher{}
	store := &fakeStore{}
	tier := newWebTier(search, fetcher, store)

	_, err := tier.TryResolve(context.Background(), &resolve.Request{
		Beat: &model.Beat{Number: 7, Description: "the rocket climbs", SearchTerms: []string{"t"}},
	})

	require.NoError(t, err)
	require.Len(t, store.uploads, 1)
	assert.Equal(t, "Beat 7: Apollo 11 launch footage", store.uploads[0].Name)
	assert.Equal(t, "Beat 7 - the rocket climbs", store.uploads[0].Description)
	assert.Equal(t, model.ProjectAssetTypeUser, store.uploads[0].AssetType)
}

// TestWebTierTruncationKeepsRunesWhole verifies that the name and
// description limits count characters, not bytes: a multi-byte title is
// clipped on a rune boundary and stays valid UTF-8.
func TestWebTierTruncationKeepsRunesWhole(t *testing.T) {
	search := &fakeWebSearch{candidates: []*model.VideoCandidate{
		{URL: "http://clip", Title: strings.Repeat("é", 200), RelevanceScore: 0.9},
	}}
	fetcher := &fakeFetcher{}
	store := &fakeStore{}
	tier := newWebTier(search, fetcher, store)

	_, err := tier.TryResolve(context.Background(), &resolve.Request{
		Beat: &model.Beat{Number: 7, Description: strings.Repeat("ü", 300), SearchTerms: []string{"t"}},
	})

	require.NoError(t, err)
	require.Len(t, store.uploads, 1)
	name := store.uploads[0].Name
	assert.True(t, utf8.ValidString(name))
	assert.Equal(t, 100, utf8.RuneCountInString(name))
	assert.Equal(t, "Beat 7: "+strings.Repeat("é", 92), name)

	description := store.uploads[0].Description
	assert.True(t, utf8.ValidString(description))
	assert.Equal(t, "Beat 7 - "+strings.Repeat("ü", 200), description)
}

// staticTier is a scripted Tier for resolver cascade tests.
type staticTier struct {
	tier    model.SourceTier
	assetID string
	err     error
	calls   int
}

func (s *staticTier) Source() model.SourceTier { return s.tier }

func (s *staticTier) TryResolve(_ context.Context, _ *resolve.Request) (string, error) {
	s.calls++
	return s.assetID, s.err
}

// TestResolverCascade verifies the fallback order: a tier failure is
// absorbed and the walk continues until a tier produces an asset.
func TestResolverCascade(t *testing.T) {
	library := &staticTier{tier: model.TierLibrary, err: errors.New("bigquery unavailable")}
	project := &staticTier{tier: model.TierProjectAsset}
	web := &staticTier{tier: model.TierDownloaded, assetID: "web-asset"}
	resolver := resolve.NewResolver(library, project, web)

	res := resolver.Resolve(context.Background(), &model.Beat{Number: 1, SearchTerms: []string{"q"}}, "proj")

	assert.Equal(t, "web-asset", res.AssetID)
	assert.Equal(t, model.TierDownloaded, res.Tier)
	assert.Equal(t, 1, library.calls)
	assert.Equal(t, 1, project.calls)
}

// TestResolverEarlyTierWins verifies that later tiers are never consulted
// once an earlier one resolves the beat.
func TestResolverEarlyTierWins(t *testing.T) {
	library := &staticTier{tier: model.TierLibrary, assetID: "lib-asset"}
	web := &staticTier{tier: model.TierDownloaded, assetID: "web-asset"}
	resolver := resolve.NewResolver(library, web)

	res := resolver.Resolve(context.Background(), &model.Beat{Number: 1, SearchTerms: []string{"q"}}, "proj")

	assert.Equal(t, "lib-asset", res.AssetID)
	assert.Equal(t, model.TierLibrary, res.Tier)
	assert.Equal(t, 0, web.calls)
}

// TestResolverUnresolved verifies that a beat no tier can satisfy yields an
// unresolved resolution rather than an error.
func TestResolverUnresolved(t *testing.T) {
	resolver := resolve.NewResolver(
		&staticTier{tier: model.TierLibrary},
		&staticTier{tier: model.TierProjectAsset},
		&staticTier{tier: model.TierDownloaded},
	)

	res := resolver.Resolve(context.Background(), &model.Beat{Number: 9, SearchTerms: []string{"q"}}, "proj")

	assert.False(t, res.Resolved())
	assert.Equal(t, model.TierUnresolved, res.Tier)
}

// TestResolverCancelledContext verifies graceful cancellation: a cancelled
// context stops the tier walk and the beat comes back unresolved.
func TestResolverCancelledContext(t *testing.T) {
	library := &staticTier{tier: model.TierLibrary, assetID: "lib-asset"}
	resolver := resolve.NewResolver(library)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := resolver.Resolve(ctx, &model.Beat{Number: 1, SearchTerms: []string{"q"}}, "proj")

	assert.False(t, res.Resolved())
	assert.Equal(t, 0, library.calls)
}

// TestResolveAllPreservesOrder verifies the fan-out contract: results come
// back indexed by beat position regardless of completion order, and every
// beat gets exactly one resolution.
func TestResolveAllPreservesOrder(t *testing.T) {
	resolver := resolve.NewResolver(&staticTier{tier: model.TierLibrary, assetID: "hit"})

	beats := []*model.Beat{
		{Number: 1, SearchTerms: []string{"a"}},
		{Number: 2, SearchTerms: []string{"b"}},
		{Number: 3, SearchTerms: []string{"c"}},
		{Number: 4, SearchTerms: []string{"d"}},
	}

	resolutions := resolve.ResolveAll(context.Background(), resolver, beats, "proj", 2)

	require.Len(t, resolutions, 4)
	for i, res := range resolutions {
		assert.Equal(t, beats[i].Number, res.Beat.Number)
		assert.True(t, res.Resolved())
	}
}

// TestResolveAllSmallPool verifies that a pool size below one still
// processes the whole plan.
func TestResolveAllSmallPool(t *testing.T) {
	resolver := resolve.NewResolver(&staticTier{tier: model.TierLibrary, assetID: "hit"})
	beats := []*model.Beat{{Number: 1}, {Number: 2}}

	resolutions := resolve.ResolveAll(context.Background(), resolver, beats, "proj", 0)

	require.Len(t, resolutions, 2)
}

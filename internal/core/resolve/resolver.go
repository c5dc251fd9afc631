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
// file holds the resolver itself: it walks the tier strategies in order
// until one produces an asset, and degrades to an unresolved outcome when
// every tier comes up empty. Tier backend failures are absorbed and
// logged, never surfaced — an unresolved beat is an accepted outcome, not
// an error.
package resolve

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
)

// Resolver resolves one beat at a time against an ordered list of tiers.
type Resolver struct {
	Tiers []Tier
}

// NewResolver builds a resolver over the given tiers, tried in the order
// supplied.
func NewResolver(tiers ...Tier) *Resolver {
	return &Resolver{Tiers: tiers}
}

// Resolve produces exactly one BeatResolution for the beat. The asset ID
// is empty if and only if every tier failed or found nothing. A canceled
// context stops escalation to further tiers but still returns a
// resolution, so the run's manifest stays complete.
//
// Inputs:
//   - ctx: The request context; cancellation aborts remaining tiers.
//   - beat: The beat to resolve.
//   - projectID: The project whose assets and uploads are in scope.
//
// Outputs:
//   - *model.BeatResolution: The outcome, never nil.
func (r *Resolver) Resolve(ctx context.Context, beat *model.Beat, projectID string) *model.BeatResolution {
	req := &Request{
		Beat:      beat,
		ProjectID: projectID,
		Variants:  QueryVariants(beat),
	}

	for _, tier := range r.Tiers {
		if ctx.Err() != nil {
			slog.InfoContext(ctx, "resolution canceled, skipping remaining tiers",
				"beat", beat.Number, "tier", string(tier.Source()))
			break
		}

		assetID, err := tier.TryResolve(ctx, req)
		if err != nil {
			// Backend failure is a tier failure: log and fall through.
			slog.WarnContext(ctx, "tier failed",
				"beat", beat.Number, "tier", string(tier.Source()), "error", err)
		}
		if assetID != "" {
			slog.InfoContext(ctx, "beat resolved",
				"beat", beat.Number, "tier", string(tier.Source()), "asset_id", assetID)
			return &model.BeatResolution{Beat: beat, AssetID: assetID, Tier: tier.Source()}
		}
	}

	slog.InfoContext(ctx, "beat unresolved", "beat", beat.Number)
	return &model.BeatResolution{Beat: beat, Tier: model.TierUnresolved}
}

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

// Package cloud provides components for interacting with Google Cloud
// services. This file implements a rate-limiting decorator around the
// Generative AI client. The planner, narration, and relevance-scoring
// commands all funnel their model calls through this wrapper so the
// pipeline respects Vertex AI request quotas even when many beats resolve
// concurrently.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: Wraps a model configuration with a
//     token-bucket rate limiter.
//
// Functions:
//   - NewQuotaAwareModel: Constructor for the wrapper.
//   - GenerateContent: Rate-limited, retrying content generation.
package cloud

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// generationRetryLimit bounds the internal retry loop on a failed call.
const generationRetryLimit = 3

// QuotaAwareGenerativeAIModel decorates a generative model configuration
// with a rate limiter. All pipeline model calls go through GenerateContent
// so the limiter sees every request.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // The generation settings (temperature, system instructions, output format).
	ModelName               string                       // The model to invoke.
	ModelHandle             *genai.Models                // The underlying models API handle.
	RateLimit               *rate.Limiter                // Token-bucket limiter controlling request frequency.
}

// NewQuotaAwareModel creates a rate-limited model wrapper.
//
// Inputs:
//   - config: The generation settings to send with every request.
//   - name: The model name to invoke.
//   - handle: The models API handle from the GenAI client.
//   - requestsPerSecond: Maximum API calls per second (also the burst size).
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(config *genai.GenerateContentConfig, name string, handle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: config,
		ModelName:               name,
		ModelHandle:             handle,
		RateLimit:               rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// GenerateContent sends a generation request, blocking on the rate limiter
// first so concurrent beat resolutions queue rather than trip the quota. A
// failed request is retried with a linear backoff up to the retry limit;
// context cancellation aborts both the wait and the retries.
//
// Inputs:
//   - ctx: The request context; canceling it abandons queued and retrying calls.
//   - content: The prompt contents.
//
// Outputs:
//   - *genai.GenerateContentResponse: The model response on success.
//   - error: The last error after the retry budget is exhausted, or the
//     context error on cancellation.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (resp *genai.GenerateContentResponse, err error) {
	for attempt := 0; attempt <= generationRetryLimit; attempt++ {
		// Wait blocks until the limiter grants a slot or the context ends.
		if err = q.RateLimit.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err = q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
		if err == nil {
			return resp, nil
		}

		// Back off before the next attempt, but give up immediately if the
		// run was canceled while waiting.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}
	return nil, errors.Join(errors.New("failed generation on max retries"), err)
}

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
// real backends. This file defines the web search used by the resolver's
// last tier. Results come from the Custom Search JSON API and are then
// scored for relevance against the beat's scene description by a generative
// model, so the tier can filter and rank before spending download attempts.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/jaycherian/gcp-go-video-beats/internal/cloud"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/api/customsearch/v1"
)

// webSearchResultCount is the page size requested from the Custom Search
// API; the API caps a single page at ten results.
const webSearchResultCount = 10

// WebSearch is the contract for the web tier's candidate discovery. The
// returned candidates carry relevance scores in [0, 1]; the caller decides
// the cutoff.
type WebSearch interface {
	Query(ctx context.Context, terms []string, description string) ([]*model.VideoCandidate, error)
}

// CustomSearchService implements WebSearch on the Custom Search JSON API
// with generative relevance scoring.
type CustomSearchService struct {
	Service        *customsearch.Service              // Custom Search API client.
	EngineID       string                             // Programmable search engine scoped to video platforms.
	RelevanceModel *cloud.QuotaAwareGenerativeAIModel // Rate-limited model scoring hits against the scene.

	relevanceTemplate *template.Template

	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

// NewCustomSearchService builds the web search service and parses the
// relevance prompt template once.
//
// Inputs:
//   - config: The application configuration (engine ID, relevance prompt).
//   - service: The initialized Custom Search API client.
//   - relevanceModel: Rate-limited model for relevance scoring.
//
// Outputs:
//   - *CustomSearchService: The initialized service.
//   - error: An error if the relevance prompt fails to parse.
func NewCustomSearchService(
	config *cloud.Config,
	service *customsearch.Service,
	relevanceModel *cloud.QuotaAwareGenerativeAIModel) (*CustomSearchService, error) {

	relevanceTemplate, err := template.New("relevance").Parse(config.PromptTemplates.RelevancePrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse relevance prompt: %w", err)
	}

	out := &CustomSearchService{
		Service:           service,
		EngineID:          config.WebSearch.EngineID,
		RelevanceModel:    relevanceModel,
		relevanceTemplate: relevanceTemplate,
	}

	meter := otel.Meter(cor.MeterNamespace)
	out.inputTokenCounter, _ = meter.Int64Counter("websearch.gemini.token.input")
	out.outputTokenCounter, _ = meter.Int64Counter("websearch.gemini.token.output")
	out.retryCounter, _ = meter.Int64Counter("websearch.gemini.token.retry")

	return out, nil
}

// searchHit is the slice of a raw search result handed to the relevance
// prompt.
type searchHit struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Query runs a web search for the beat's terms and scores every hit against
// the scene description. The returned candidates preserve the provider's
// result order; sorting by score is the caller's concern.
//
// Inputs:
//   - ctx: The request context.
//   - terms: The beat's search terms.
//   - description: The beat's scene description, used for scoring.
//
// Outputs:
//   - []*model.VideoCandidate: Scored candidates, never nil.
//   - error: An error if the search request or scoring fails.
func (s *CustomSearchService) Query(ctx context.Context, terms []string, description string) (out []*model.VideoCandidate, err error) {
	out = make([]*model.VideoCandidate, 0)

	queryText := strings.TrimSpace(strings.Join(terms, " "))
	if queryText == "" {
		queryText = description
	}

	result, err := s.Service.Cse.List().
		Cx(s.EngineID).
		Q(queryText).
		Num(webSearchResultCount).
		Context(ctx).
		Do()
	if err != nil {
		return out, fmt.Errorf("web search request failed: %w", err)
	}
	if len(result.Items) == 0 {
		return out, nil
	}

	hits := make([]*searchHit, 0, len(result.Items))
	for _, item := range result.Items {
		hits = append(hits, &searchHit{URL: item.Link, Title: item.Title, Snippet: item.Snippet})
	}

	scored, err := s.scoreRelevance(ctx, description, hits)
	if err != nil {
		return out, fmt.Errorf("relevance scoring failed: %w", err)
	}

	// The model answers keyed by URL; stitch scores back onto the hits in
	// provider order so ties keep their original ranking downstream.
	scoreByURL := make(map[string]*model.VideoCandidate, len(scored))
	for _, c := range scored {
		scoreByURL[c.URL] = c
	}
	for _, hit := range hits {
		candidate := &model.VideoCandidate{URL: hit.URL, Title: hit.Title}
		if c, ok := scoreByURL[hit.URL]; ok {
			candidate.RelevanceScore = c.RelevanceScore
			candidate.RelevanceReason = c.RelevanceReason
		}
		out = append(out, candidate)
	}

	return out, nil
}

// scoreRelevance asks the model to score all hits against the scene
// description in a single call.
func (s *CustomSearchService) scoreRelevance(ctx context.Context, description string, hits []*searchHit) ([]*model.VideoCandidate, error) {
	params := make(map[string]interface{})
	params["DESCRIPTION"] = description
	hitsJson, _ := json.Marshal(hits)
	params["CANDIDATES"] = string(hitsJson)
	exampleJson, _ := json.Marshal(model.GetExampleVideoCandidates())
	params["EXAMPLE_JSON"] = string(exampleJson)

	var buffer bytes.Buffer
	if err := s.relevanceTemplate.Execute(&buffer, params); err != nil {
		return nil, fmt.Errorf("failed to execute relevance prompt: %w", err)
	}

	raw, err := cloud.GenerateStructuredResponse(ctx, s.inputTokenCounter, s.outputTokenCounter, s.retryCounter, 0, s.RelevanceModel, cloud.NewTextContent(buffer.String()))
	if err != nil {
		return nil, err
	}

	scored := make([]*model.VideoCandidate, 0, len(hits))
	if err := json.Unmarshal([]byte(raw), &scored); err != nil {
		return nil, fmt.Errorf("failed to parse relevance scores: %w", err)
	}
	return scored, nil
}

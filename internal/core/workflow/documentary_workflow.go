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

// Package workflow assembles the pipeline's command chains. This file
// builds the documentary workflow: research document in, edit document and
// resolution manifest out. The workflow wires the concrete services
// (library vector search, project asset store, web search, media fetcher,
// generation) into the tiered resolver and strings the commands together
// as a chain of responsibility.
//
// Two entry modes share the same chain body:
//   - Triggered: a GCS Pub/Sub notification arrives, and the chain begins
//     by parsing the notification and loading the document from storage.
//   - Direct: the caller (HTTP API or the drop-folder watcher) already
//     holds the markdown, and the chain begins at segmentation.
package workflow

import (
	"time"

	"github.com/jaycherian/gcp-go-video-beats/internal/cloud"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/resolve"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/services"
)

// Model config keys the workflow expects in the agent and embedding model
// maps.
const (
	BeatsModelKey     = "beat-planner"
	NarrationModelKey = "narration-writer"
	RelevanceModelKey = "relevance-scorer"
	EmbeddingModelKey = "library-embedding"
)

// DocumentaryWorkflow is the assembled end-to-end pipeline.
type DocumentaryWorkflow struct {
	cor.BaseCommand
	config      *cloud.Config
	clients     *cloud.ServiceClients
	fromTrigger bool
	chain       cor.Chain
}

// Execute runs the workflow by invoking the underlying chain.
//
// Inputs:
//   - context: The chain context carrying the trigger message or raw
//     markdown in the input parameter.
func (w *DocumentaryWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// initializeChain builds the command sequence. The resolution and
// synthesis stages are identical for both entry modes; only the document
// acquisition prefix differs.
func (w *DocumentaryWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())

	if w.fromTrigger {
		// Parse the Pub/Sub notification, then load the markdown from GCS.
		out.AddCommand(commands.NewDocumentTriggerReader("document-trigger-reader"))
		out.AddCommand(commands.NewGCSDocumentReader("document-reader", w.clients.StorageClient))
	}

	// Segment the markdown and mint the run/project identifiers.
	out.AddCommand(commands.NewSectionParser("section-parser"))
	out.AddCommand(commands.NewRunInitializer("run-initializer"))

	generator := w.newGenerationService()

	// Plan beats, then fix the timeline length with the voice-over. Both
	// are fatal on failure: the chain stops before any resolution work.
	out.AddCommand(commands.NewBeatPlanner("beat-planner", generator))
	out.AddCommand(commands.NewNarrationCreator("narration-creator", generator))

	// Resolve every beat through the tier cascade under the bounded pool,
	// then tile the survivors across the voice-over and write the
	// artifacts. These commands absorb their own failures into the
	// manifest rather than stopping the chain.
	out.AddCommand(commands.NewBeatResolver("beat-resolver", w.newResolver(), w.config.Application.ThreadPoolSize))
	out.AddCommand(commands.NewTimelineBuilder("timeline-builder", w.config.Resolver.ClipAudioGain))
	out.AddCommand(commands.NewEditSpecWriter("edit-spec-writer",
		w.clients.StorageClient, w.config.Storage.EditOutputBucket, w.config.Application.OutputDir))

	w.chain = out
}

// newGenerationService wires the beat, narration, and speech models into
// the generation service.
func (w *DocumentaryWorkflow) newGenerationService() services.GenerationService {
	store := &services.GCSProjectStore{
		Client: w.clients.StorageClient,
		Bucket: w.config.Storage.ProjectAssetBucket,
	}
	generator, err := services.NewGenAIGenerationService(
		w.config,
		w.clients.AgentModels[BeatsModelKey],
		w.clients.AgentModels[NarrationModelKey],
		w.clients.GenAIClient.Models,
		store,
	)
	if err != nil {
		panic(err)
	}
	return generator
}

// newResolver wires the three tier strategies in fallback order.
func (w *DocumentaryWorkflow) newResolver() *resolve.Resolver {
	searchTimeout := time.Duration(w.config.Resolver.SearchTimeoutSeconds) * time.Second
	downloadTimeout := time.Duration(w.config.Resolver.DownloadTimeoutSeconds) * time.Second

	library := &resolve.LibraryTier{
		Search: &services.LibraryService{
			BigqueryClient: w.clients.BigQueryClient,
			EmbeddingModel: w.clients.EmbeddingModels[EmbeddingModelKey],
			ModelName:      w.config.EmbeddingModels[EmbeddingModelKey].Model,
			DatasetName:    w.config.BigQueryDataSource.DatasetName,
			MediaTable:     w.config.BigQueryDataSource.MediaTable,
			EmbeddingTable: w.config.BigQueryDataSource.EmbeddingTable,
		},
		Timeout: searchTimeout,
	}

	store := &services.GCSProjectStore{
		Client: w.clients.StorageClient,
		Bucket: w.config.Storage.ProjectAssetBucket,
	}
	project := &resolve.ProjectTier{Store: store, Timeout: searchTimeout}

	webSearch, err := services.NewCustomSearchService(w.config, w.clients.SearchClient, w.clients.AgentModels[RelevanceModelKey])
	if err != nil {
		panic(err)
	}
	web := &resolve.WebTier{
		Search:               webSearch,
		Fetcher:              services.NewYtDlpFetcher("", w.config.Resolver.MinDownloadBytes),
		Store:                store,
		RelevanceThreshold:   w.config.Resolver.RelevanceThreshold,
		MaxCandidates:        w.config.Resolver.MaxCandidates,
		AttemptsPerCandidate: w.config.Resolver.AttemptsPerCandidate,
		RetryBackoff:         time.Duration(w.config.Resolver.RetryBackoffSeconds) * time.Second,
		SearchTimeout:        searchTimeout,
		DownloadTimeout:      downloadTimeout,
	}

	return resolve.NewResolver(library, project, web)
}

// NewTriggeredDocumentaryWorkflow builds the workflow variant started by a
// GCS Pub/Sub notification on the documents bucket.
//
// Inputs:
//   - config: The application configuration.
//   - serviceClients: Initialized GCP service clients.
//
// Outputs:
//   - *DocumentaryWorkflow: The assembled workflow.
func NewTriggeredDocumentaryWorkflow(config *cloud.Config, serviceClients *cloud.ServiceClients) *DocumentaryWorkflow {
	pipeline := &DocumentaryWorkflow{
		BaseCommand: *cor.NewBaseCommand("documentary-pipeline"),
		config:      config,
		clients:     serviceClients,
		fromTrigger: true,
	}
	pipeline.initializeChain()
	return pipeline
}

// NewDirectDocumentaryWorkflow builds the workflow variant that takes raw
// markdown as its chain input, used by the HTTP API and the drop-folder
// watcher.
//
// Inputs:
//   - config: The application configuration.
//   - serviceClients: Initialized GCP service clients.
//
// Outputs:
//   - *DocumentaryWorkflow: The assembled workflow.
func NewDirectDocumentaryWorkflow(config *cloud.Config, serviceClients *cloud.ServiceClients) *DocumentaryWorkflow {
	pipeline := &DocumentaryWorkflow{
		BaseCommand: *cor.NewBaseCommand("documentary-pipeline-direct"),
		config:      config,
		clients:     serviceClients,
		fromTrigger: false,
	}
	pipeline.initializeChain()
	return pipeline
}

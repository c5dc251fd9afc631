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
// services. This file initializes and holds every external client the
// pipeline needs, acting as a dependency injection container: one shared
// `ServiceClients` struct is created at startup and passed to the services
// and workflows that need it.
//
// Logic Flow:
//  1. NewCloudServiceClients is called at application startup with the
//     loaded configuration.
//  2. It initializes clients for Storage, Pub/Sub, GenAI, BigQuery, and the
//     Custom Search API (the web search tier).
//  3. It builds the configured Pub/Sub listeners, embedding model handles,
//     and rate-limited agent models.
//  4. Everything is bundled into a single ServiceClients struct.
//
// Structs:
//   - ServiceClients: Container for all initialized external clients.
//
// Functions:
//   - Close: Gracefully shuts down the client connections.
//   - NewCloudServiceClients: Factory building the container from config.
package cloud

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
	"google.golang.org/genai"
)

// ServiceClients is the central container for all clients that talk to
// external services. It is created once at startup and shared across the
// application.
type ServiceClients struct {
	StorageClient   *storage.Client                         // Google Cloud Storage (documents, project assets, output).
	PubsubClient    *pubsub.Client                          // Pub/Sub (document drop notifications).
	GenAIClient     *genai.Client                           // Generative AI (beat planning, narration, embeddings).
	BigQueryClient  *bigquery.Client                        // BigQuery (library index vector search).
	IAMClient       *credentials.IamCredentialsClient       // IAM credentials (signed preview URLs).
	SearchClient    *customsearch.Service                   // Custom Search JSON API (web tier).
	PubSubListeners map[string]*PubSubListener              // Active listeners, keyed by logical config name.
	EmbeddingModels map[string]*genai.Models                // Embedding model handles, keyed by logical config name.
	AgentModels     map[string]*QuotaAwareGenerativeAIModel // Rate-limited LLMs, keyed by logical config name.
}

// Close releases the client connections. Connections are normally managed
// by the application's root context; this gives tests and controlled
// shutdowns an explicit release point.
func (c *ServiceClients) Close() {
	_ = c.StorageClient.Close()
	_ = c.PubsubClient.Close()
	_ = c.BigQueryClient.Close()
}

// NewCloudServiceClients initializes all required external service clients
// from the provided configuration.
//
// Inputs:
//   - ctx: The root context managing the lifecycle of the clients.
//   - config: The loaded application configuration.
//
// Outputs:
//   - *ServiceClients: The fully initialized container.
//   - error: An error if any client fails to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %w", err)
	}

	bc, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	// The Custom Search API authenticates with an API key rather than ADC;
	// the key lives in the environment, never in the config files.
	searchKey := os.Getenv(config.WebSearch.KeyEnvVar)
	csc, err := customsearch.NewService(ctx, option.WithAPIKey(searchKey))
	if err != nil {
		return nil, fmt.Errorf("error creating custom search client: %w", err)
	}

	// Listeners are created with a nil command; the workflows attach
	// themselves once the chains are assembled.
	subscriptions := make(map[string]*PubSubListener)
	for subKey := range config.TopicSubscriptions {
		values := config.TopicSubscriptions[subKey]
		actual, err := NewPubSubListener(pc, values.Name, nil)
		if err != nil {
			return nil, err
		}
		subscriptions[subKey] = actual
	}

	embeddingModels := make(map[string]*genai.Models)
	for embKey := range config.EmbeddingModels {
		embeddingModels[embKey] = gc.Models
	}

	// Wrap each configured agent model with its generation settings and the
	// quota-aware rate limiter.
	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey := range config.AgentModels {
		values := config.AgentModels[amKey]

		genConfig := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
		}
		agentModels[amKey] = NewQuotaAwareModel(genConfig, values.Model, gc.Models, values.RateLimit)
	}

	cloud = &ServiceClients{
		StorageClient:   sc,
		PubsubClient:    pc,
		GenAIClient:     gc,
		BigQueryClient:  bc,
		SearchClient:    csc,
		PubSubListeners: subscriptions,
		EmbeddingModels: embeddingModels,
		AgentModels:     agentModels,
	}

	return cloud, err
}

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

// Package main contains the setup and initialization logic for the application's state.
// This file is responsible for creating and managing a centralized state manager
// that holds all shared dependencies, such as configuration, Google Cloud service clients,
// and the application services for library lookups and preview URL signing.
//
// It ensures that the application is configured correctly based on the environment,
// initializes all necessary clients (Storage, BigQuery, IAM, etc.), and constructs
// the documentary workflow used by the HTTP API.
//
// Functions:
//   - SetupOS: Configures necessary environment variables for the application,
//     pointing to the correct configuration files.
//   - GetConfig: A singleton function that loads the application's configuration
//     from TOML files. It ensures the configuration is loaded only once.
//   - InitState: The core initialization function that creates all service clients,
//     configures application services, and builds the direct documentary workflow.
package main

import (
	"context"
	"log"
	"os"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"github.com/jaycherian/gcp-go-video-beats/internal/cloud"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/services"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/workflow"
)

// StateManager holds all the shared dependencies for the application, acting as a
// centralized container for service clients and configurations. This avoids the
// need for global variables and makes dependency management cleaner.
type StateManager struct {
	config         *cloud.Config
	cloud          *cloud.ServiceClients
	libraryService *services.LibraryService
	previewService *services.PreviewService
	directPipeline *workflow.DocumentaryWorkflow
}

// state is a package-level variable that holds the single instance of StateManager.
var state = &StateManager{}

// SetupOS sets the necessary environment variables that the configuration loader
// uses to find the correct TOML files.
//
// This function sets the prefix for the configuration directory and specifies
// the runtime environment (e.g., "local", "test", "prod"), allowing for
// environment-specific overrides of the base configuration.
//
// Outputs:
//   - error: An error if setting any of the environment variables fails.
func SetupOS() (err error) {
	// Set the directory where configuration files are located.
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// Set the current runtime environment to "local". The config loader will
	// look for a ".env.local.toml" file to override base settings.
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application configuration.
// It ensures that the configuration is loaded from the file system only once.
// On the first call, it sets up the OS environment and loads the configuration
// from the TOML files. Subsequent calls return the cached configuration.
//
// Outputs:
//   - *cloud.Config: A pointer to the loaded application configuration struct.
func GetConfig() *cloud.Config {
	// If the config has not been loaded yet...
	if state.config == nil {
		// Set up the environment variables required for config loading.
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		// Create a new, empty config struct.
		config := cloud.NewConfig()
		// Load the configuration from the .toml files into the struct.
		cloud.LoadConfig(&config)
		// Store the loaded config in the state manager.
		state.config = config
	}
	// Return the cached config.
	return state.config
}

// InitState initializes the entire application state.
// It orchestrates the creation of all necessary services and clients based on the
// application configuration and wires them together.
//
// Inputs:
//   - ctx: The root context.Context for the application, used for managing
//     the lifecycle of client connections and background processes.
//
// This function performs the following steps:
//  1. Loads the application configuration.
//  2. Initializes all Google Cloud service clients (Storage, Pub/Sub, GenAI, BigQuery, IAM).
//  3. Instantiates the application services (LibraryService, PreviewService)
//     with the required client dependencies.
//  4. Builds the direct documentary workflow used by the HTTP API.
//  5. Sets up and starts the Pub/Sub listener and the drop-folder watcher.
func InitState(ctx context.Context) {
	// Get the application configuration.
	config := GetConfig()

	// Initialize all the base Google Cloud service clients.
	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}

	// Specifically initialize the IAM credentials client, required for signing URLs.
	iamClient, err := credentials.NewIamCredentialsClient(ctx)
	if err != nil {
		panic(err)
	}
	// Add the IAM client to our set of cloud clients.
	cloudClients.IAMClient = iamClient

	// Store the initialized clients in the global state.
	state.cloud = cloudClients

	// Initialize the LibraryService with its dependencies. The HTTP API uses
	// it to look up stock footage records for previewing.
	state.libraryService = &services.LibraryService{
		BigqueryClient: cloudClients.BigQueryClient,
		EmbeddingModel: cloudClients.EmbeddingModels[workflow.EmbeddingModelKey],
		ModelName:      config.EmbeddingModels[workflow.EmbeddingModelKey].Model,
		DatasetName:    config.BigQueryDataSource.DatasetName,
		MediaTable:     config.BigQueryDataSource.MediaTable,
		EmbeddingTable: config.BigQueryDataSource.EmbeddingTable,
	}

	// Initialize the PreviewService used to mint signed streaming URLs.
	state.previewService = &services.PreviewService{
		StorageClient: cloudClients.StorageClient,
		IAMClient:     cloudClients.IAMClient,
		SignerEmail:   config.Application.SignerServiceAccountEmail,
	}

	// Build the direct-entry pipeline once; the API reuses it for every run.
	state.directPipeline = workflow.NewDirectDocumentaryWorkflow(config, cloudClients)

	// Configure and start the Pub/Sub listener and the drop-folder watcher.
	SetupListeners(config, cloudClients, ctx)
}

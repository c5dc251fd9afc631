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

// Package main contains the logic for setting up and starting the background
// document intake paths. These listeners are responsible for initiating the
// documentary pipeline in response to events, such as new research documents
// uploaded to Google Cloud Storage or dropped into a local watch folder.
//
// Functions:
//   - SetupListeners: Initializes and starts the Pub/Sub listener for the
//     document bucket and, when enabled, the local drop-folder watcher.
package main

import (
	"context"

	"github.com/jaycherian/gcp-go-video-beats/internal/cloud"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/workflow"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// logger emits the listener lifecycle messages through the OTel log bridge
// so they correlate with the server's traces.
var logger = otelslog.NewLogger("github.com/jaycherian/gcp-go-video-beats/server")

// SetupListeners configures and starts the background document listeners.
// It creates the triggered documentary workflow and attaches it to the
// document topic listener, and starts the drop-folder watcher when one is
// configured.
//
// Inputs:
//   - config: The application's configuration, containing settings for storage, topics, etc.
//   - cloudClients: A struct containing all the initialized Google Cloud service clients.
//   - ctx: The application's root context, used to manage the lifecycle of the listeners.
//
// Outputs:
//   - This function does not return any value. It starts the listeners as background goroutines.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, ctx context.Context) {
	// Create the workflow for processing research documents uploaded to the
	// document bucket. It is triggered by GCS notification messages on the
	// documents topic and runs the full plan-resolve-synthesize pipeline.
	documentPipeline := workflow.NewTriggeredDocumentaryWorkflow(config, cloudClients)
	// Assign the pipeline as the command to be executed by the listener for the documents topic.
	cloudClients.PubSubListeners["documents"].SetCommand(documentPipeline)
	// Start the listener in a background goroutine. It will now begin receiving and processing messages from its subscription.
	cloudClients.PubSubListeners["documents"].Listen(ctx)
	logger.Info("document topic listener started")

	// Start the local drop-folder watcher when one is configured. Documents
	// written into the watch directory run through the direct pipeline, with
	// an optional YAML sidecar supplying run options.
	if config.Watcher.Enabled {
		watcher, err := workflow.NewDocumentWatcher(config.Watcher.DropDir, state.directPipeline)
		if err != nil {
			logger.Error("failed to start document watcher", "dir", config.Watcher.DropDir, "error", err)
			return
		}
		watcher.Start(ctx)
		logger.Info("document drop folder watcher started", "dir", config.Watcher.DropDir)
	}
}

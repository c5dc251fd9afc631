// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// *****************************************************************************************************//
// Package main is the entry point for the video beats backend server.
//
// This application sets up and runs a web server using the Gin framework. It provides a REST API
// for submitting research documents and retrieving the resulting edit documents and resolution
// manifests. The server is instrumented with OpenTelemetry for logging, tracing, and metrics,
// providing observability into the application's performance.
//
// The main function initializes the application's configuration, sets up logging and telemetry,
// and initializes the application state, including clients for Google Cloud services. It defines
// API routes for running the documentary pipeline, fetching run artifacts, and generating
// signed preview URLs for library footage.
//
// The server also sets up and manages background listeners: a Pub/Sub listener that triggers
// the pipeline when research documents land in the document bucket, and an optional
// drop-folder watcher for local development.
//
// Functions:
//   - main: The main entry point of the application. It sets up the server, configures routes,
//     initializes services, and handles graceful shutdown.
//   - RunRouter: Sets up the API routes for running the pipeline and retrieving the
//     manifest and edit document artifacts of previous runs.
//   - LibraryRouter: Configures the API endpoints for looking up library footage and
//     generating signed URLs for previewing it.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"github.com/jaycherian/gcp-go-video-beats/internal/telemetry"
)

// main is the primary entry point for the application.
// It orchestrates the setup of logging, telemetry, configuration, cloud services,
// the web server, API routes, and background listeners. It also handles graceful
// shutdown of the server upon receiving an interrupt signal.
func main() {
	// Initialize structured logging for the application.
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	// Create a new context that can be cancelled. This is the root context for the application.
	ctx, cancel := context.WithCancel(context.Background())
	// Defer the cancel function to be called when main exits, ensuring all child contexts are cancelled.
	defer cancel()

	// Load process environment overrides from a local .env file when one
	// exists. The web search API key is provided this way rather than
	// through the TOML configuration.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}

	// Load application configuration from TOML files.
	config := GetConfig()

	// Initialize OpenTelemetry for distributed tracing and metrics.
	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	// Initialize the application's state, including all necessary service clients.
	InitState(ctx)
	slog.Info("Initialized State")

	// Set up the Gin web server with default middleware.
	r := gin.Default()

	// Add OpenTelemetry middleware to the Gin router to trace incoming requests.
	// This will automatically create spans for each request.
	r.Use(otelgin.Middleware("video-beats-server"))

	// Configure Cross-Origin Resource Sharing (CORS) middleware.
	// Using cors.Default() provides a permissive configuration suitable for development,
	// allowing requests from any origin.
	r.Use(cors.Default())

	// Group routes under the "/api/v1" prefix.
	apiV1 := r.Group("/api/v1")
	{
		// Register the routes for pipeline runs and library previews within the API group.
		RunRouter(apiV1)
		LibraryRouter(apiV1)
	}

	// Configure the HTTP server with the address and handler. Pipeline runs
	// are synchronous and can take several minutes, so the write timeout is
	// generous.
	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 15 * time.Minute,
	}

	// Start the HTTP server in a separate goroutine so it doesn't block the main thread.
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	// Set up a channel to listen for OS interrupt signals (e.g., Ctrl+C).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	// Block until a signal is received on the quit channel.
	<-quit
	slog.Info("Shutdown Server ...")

	// Create a context with a timeout for the graceful shutdown.
	// This gives active requests 5 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// Attempt to gracefully shut down the server.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// runRequest is the payload for starting a pipeline run over HTTP. The
// document field carries the raw markdown; the options are optional
// overrides for the project name and output settings.
type runRequest struct {
	Document string            `json:"document" binding:"required"`
	Options  *model.RunOptions `json:"options"`
}

// RunRouter sets up the API routes for pipeline runs.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the run routes will be added. This allows
//     nesting routes under a common path prefix (e.g., "/api/v1").
//
// Outputs:
//   - This function does not return any values. It modifies the provided *gin.RouterGroup
//     by adding new route handlers.
//
// This function defines the following endpoints:
//   - POST /runs: Executes the documentary pipeline on a submitted research document
//     and returns the resolution manifest and, when at least one beat resolved,
//     the edit document.
//   - GET /runs/:id/manifest: Retrieves the resolution manifest written by a previous run.
//   - GET /runs/:id/edit-spec: Retrieves the edit document written by a previous run.
func RunRouter(r *gin.RouterGroup) {
	// Group all run-related routes under the "/runs" path.
	runs := r.Group("/runs")
	{
		// Handler for POST /runs
		// This endpoint runs the full pipeline synchronously and returns the
		// artifacts in the response body.
		runs.POST("", func(c *gin.Context) {
			var req runRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			// Build a chain context for this run. The raw markdown is the
			// chain input; run options ride alongside when provided.
			chainCtx := cor.NewBaseContext()
			chainCtx.SetContext(c.Request.Context())
			defer chainCtx.Close()
			if req.Options != nil {
				chainCtx.Add(commands.GetRunOptionsKey(), req.Options)
			}
			chainCtx.Add(cor.CtxIn, req.Document)

			// Execute the pipeline. This blocks until the run completes.
			state.directPipeline.Execute(chainCtx)

			// A failed run reports the per-command errors.
			if chainCtx.HasErrors() {
				errs := make(map[string]string)
				for name, err := range chainCtx.GetErrors() {
					errs[name] = err.Error()
				}
				c.JSON(http.StatusInternalServerError, gin.H{"errors": errs})
				return
			}

			out := gin.H{}
			if runID, ok := chainCtx.Get(commands.GetRunIDKey()).(string); ok {
				out["run_id"] = runID
			}
			if manifest, ok := chainCtx.Get(commands.GetManifestKey()).(*model.ResolutionManifest); ok {
				out["manifest"] = manifest
			}
			// The edit document is absent when no beat resolved; the manifest
			// still records every unresolved beat in that case.
			if spec, ok := chainCtx.Get(commands.GetEditSpecKey()).(*model.EditSpec); ok {
				out["edit_spec"] = spec
			} else if reason, ok := chainCtx.Get(commands.GetEmptyTimelineKey()).(error); ok {
				out["empty_timeline"] = reason.Error()
			}
			c.JSON(http.StatusOK, out)
		})

		// Handler for GET /runs/:id/manifest
		runs.GET("/:id/manifest", func(c *gin.Context) {
			serveRunArtifact(c, "manifest.json")
		})

		// Handler for GET /runs/:id/edit-spec
		runs.GET("/:id/edit-spec", func(c *gin.Context) {
			serveRunArtifact(c, "edit_spec.json")
		})
	}
}

// serveRunArtifact streams a JSON artifact written by a previous run from
// the local output directory.
//
// Inputs:
//   - c: The request context, carrying the run ID in the "id" path parameter.
//   - name: The artifact file name within the run's output directory.
func serveRunArtifact(c *gin.Context, name string) {
	runID := c.Param("id")
	// Reject path traversal attempts in the run ID.
	if runID != filepath.Base(runID) {
		c.Status(http.StatusBadRequest)
		return
	}
	path := filepath.Join(state.config.Application.OutputDir, runID, name)
	content, err := os.ReadFile(path)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "application/json", content)
}

// LibraryRouter sets up the routes for inspecting and previewing library footage.
//
// Inputs:
//   - r: A *gin.RouterGroup to which the library routes will be added.
//
// Outputs:
//   - This function does not return any values. It registers GET routes on the
//     provided router group.
//
// This function defines the following endpoints:
//   - GET /library/:id: Retrieves the metadata record for a library asset by its ID.
//   - GET /library/:id/preview: Generates a time-limited, signed URL for securely
//     streaming a library asset's media file.
func LibraryRouter(r *gin.RouterGroup) {
	// Group all library-related routes under the "/library" path.
	library := r.Group("/library")
	{
		// Handler for GET /library/:id
		library.GET("/:id", func(c *gin.Context) {
			// Get the asset ID from the URL path.
			id := c.Param("id")
			// Fetch the library asset by its ID.
			out, err := state.libraryService.Get(c, id)
			if err != nil {
				// If not found, return a 404 status.
				c.Status(http.StatusNotFound)
				return
			}
			// Return the asset record as JSON.
			c.JSON(http.StatusOK, out)
		})

		// Handler for GET /library/:id/preview
		// This endpoint provides a secure, time-limited URL for clients to preview footage.
		library.GET("/:id/preview", func(c *gin.Context) {
			id := c.Param("id")
			// Fetch the asset metadata to get the GCS URL.
			asset, err := state.libraryService.Get(c, id)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Asset not found"})
				return
			}

			// Generate a signed URL valid for 15 minutes for the media file.
			signedURL, err := state.previewService.SignURL(c, asset.MediaURL, 15*time.Minute)
			if err != nil {
				log.Printf("Error generating signed URL: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate preview URL"})
				return
			}
			// Return the signed URL in the JSON response.
			c.JSON(http.StatusOK, gin.H{"url": signedURL})
		})
	}
}

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
// services. This file contains general-purpose helpers for the package:
// hierarchical TOML configuration loading, file existence checks, and a
// resilient text-generation helper used by the planner and narration
// commands.
//
// Functions:
//   - fileExists: Checks whether a file exists.
//   - LoadConfig: Hierarchical config loader (base file + runtime override).
//   - GenerateStructuredResponse: A retrying wrapper for GenAI calls that
//     records token and retry metrics and strips JSON code fences.
//   - NewTextContent: Factory for a text-only prompt payload.
package cloud

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/BurntSushi/toml"
	"google.golang.org/genai"
)

// Cloud constants define key strings and values used throughout the package,
// primarily for configuration loading and API interaction policies.
const (
	ConfigFileBaseName  = ".env"              // The base name for configuration files (e.g. ".env.toml").
	ConfigFileExtension = ".toml"             // The file extension for configuration files.
	ConfigSeparator     = "."                 // The separator in config file names (e.g. ".env.local.toml").
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // Environment variable for the config directory.
	EnvConfigRuntime    = "GCP_RUNTIME"       // Environment variable for the runtime name (e.g. "local", "test").
	MaxRetries          = 3                   // Maximum retries for a failed GenAI call.
)

// fileExists checks if a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig provides a hierarchical configuration loading mechanism. It
// first loads a base configuration file and then overwrites its values with
// an environment-specific file. The config directory comes from the
// GCP_CONFIG_PREFIX environment variable and the runtime name from
// GCP_RUNTIME (defaulting to "test").
//
// Inputs:
//   - baseConfig: A pointer to the target configuration struct that will be
//     populated from the TOML files.
func LoadConfig(baseConfig interface{}) {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	// e.g. "configs/.env.toml" overridden by "configs/.env.local.toml".
	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	if fileExists(baseConfigFileName) {
		_, err := toml.DecodeFile(baseConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	if fileExists(envConfigFileName) {
		_, err := toml.DecodeFile(envConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode environment configuration file: %s with error: %s", envConfigFileName, err)
		}
	}
}

// GenerateStructuredResponse executes a text request against a generative
// model, retrying transient failures and recording token usage metrics. The
// models are asked for JSON output, so a trailing/leading markdown code
// fence is stripped from the response before it is returned.
//
// Inputs:
//   - ctx: The request context (cancellation, deadline, tracing).
//   - inputTokenCounter: OTel counter for prompt tokens used.
//   - outputTokenCounter: OTel counter for response tokens generated.
//   - retryCounter: OTel counter for retries performed.
//   - tryCount: The current attempt number (callers pass 0).
//   - model: The rate-limited, quota-aware generative model to use.
//   - content: The prompt contents.
//
// Outputs:
//   - string: The concatenated text of the model's response.
//   - error: An error if the request fails after all retries.
func GenerateStructuredResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	retryCounter metric.Int64Counter,
	tryCount int,
	model *QuotaAwareGenerativeAIModel,
	content []*genai.Content) (value string, err error) {
	resp, err := model.GenerateContent(ctx, content)

	if err != nil {
		if tryCount < MaxRetries {
			retryCounter.Add(ctx, 1)
			return GenerateStructuredResponse(ctx, inputTokenCounter, outputTokenCounter, retryCounter, tryCount+1, model, content)
		}
		return "", err
	}
	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	value = ""
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				value += part.Text
			}
		}
	}
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimSuffix(value, "```")
	return value, nil
}

// NewTextContent is a simple factory for a text-only prompt payload.
//
// Inputs:
//   - in: The string content of the prompt.
//
// Outputs:
//   - []*genai.Content: The prompt wrapped as user content.
func NewTextContent(in string) []*genai.Content {
	return genai.Text(in)
}

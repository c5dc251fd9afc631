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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the documentary pipeline: Google Cloud services, AI models, the
// tiered asset resolver's tuning knobs, Pub/Sub triggers, the local drop
// folder watcher, and prompt templates.
//
// Structs:
//   - BigQueryDataSource: The library index (media metadata + scene embeddings).
//   - Storage: GCS bucket names for documents, project assets, and output.
//   - ResolverConfig: Tuning for the tiered beat-to-asset resolution.
//   - WebSearchConfig: Custom Search engine settings for the web tier.
//   - PromptTemplates: Prompt text for beat planning and narration.
//   - VertexAiEmbeddingModel / VertexAiLLMModel: Model configuration.
//   - TopicSubscription: A single Pub/Sub subscription.
//   - WatcherConfig: Local markdown drop-folder settings.
//   - Config: The top-level aggregate.
//
// Functions:
//   - NewConfig: Constructor initializing the map fields.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for
// GenAI models. The input documents are trusted research text, so all
// categories pass through without blocking.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// BigQueryDataSource represents the configuration for the library index: the
// dataset holding media metadata and the scene embedding vectors the library
// tier searches against.
type BigQueryDataSource struct {
	DatasetName    string `toml:"dataset"`         // The name of the BigQuery dataset.
	MediaTable     string `toml:"media_table"`     // The table containing media metadata.
	EmbeddingTable string `toml:"embedding_table"` // The table containing scene embedding vectors.
}

// Storage represents the configuration for the GCS buckets the pipeline uses.
type Storage struct {
	DocumentBucket     string `toml:"document_bucket"`      // Research documents dropped here trigger runs.
	ProjectAssetBucket string `toml:"project_asset_bucket"` // Per-project uploaded clips (the project tier's store).
	EditOutputBucket   string `toml:"edit_output_bucket"`   // Final edit documents and manifests.
}

// ResolverConfig holds the tuning knobs for the tiered asset resolver. The
// defaults (set in the base TOML file) mirror the values the pipeline has
// always used: a 0.5 relevance floor, five web candidates, two attempts per
// candidate with a two second backoff, and a 1000 byte minimum download.
type ResolverConfig struct {
	RelevanceThreshold     float64 `toml:"relevance_threshold"`      // Web candidates scoring below this never reach the download step.
	MaxCandidates          int     `toml:"max_candidates"`           // Maximum web candidates tried per beat.
	AttemptsPerCandidate   int     `toml:"attempts_per_candidate"`   // Download/upload attempts per candidate.
	RetryBackoffSeconds    int     `toml:"retry_backoff_seconds"`    // Fixed pause between attempts on the same candidate.
	MinDownloadBytes       int64   `toml:"min_download_bytes"`       // A fetched file at or below this size is discarded as invalid.
	ClipAudioGain          float64 `toml:"clip_audio_gain"`          // Gain applied to each clip's own audio in the final edit.
	SearchTimeoutSeconds   int     `toml:"search_timeout_seconds"`   // Per-call timeout for library/project/web searches.
	DownloadTimeoutSeconds int     `toml:"download_timeout_seconds"` // Per-attempt timeout for media downloads.
}

// WebSearchConfig holds the Custom Search JSON API settings for the web tier.
// The API key itself comes from the process environment (see KeyEnvVar), not
// from the config file.
type WebSearchConfig struct {
	EngineID  string `toml:"engine_id"`   // The programmable search engine ID scoped to video platforms.
	KeyEnvVar string `toml:"key_env_var"` // Name of the environment variable holding the API key.
}

// PromptTemplates holds the Go templates for the prompts sent to the
// generative models.
type PromptTemplates struct {
	BeatsPrompt     string `toml:"beats"`     // Template for turning sections into a beat plan.
	NarrationPrompt string `toml:"narration"` // Template for the documentary narration script.
	RelevancePrompt string `toml:"relevance"` // Template for scoring web search hits against a scene.
}

// VertexAiEmbeddingModel represents the configuration for a Vertex AI
// embedding model used by the library tier's vector search.
type VertexAiEmbeddingModel struct {
	Model                string `toml:"model"`                   // The name of the embedding model.
	MaxRequestsPerMinute int    `toml:"max_requests_per_minute"` // The maximum number of requests allowed per minute.
}

// VertexAiLLMModel represents the configuration for a Vertex AI large
// language model (LLM).
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the Vertex AI LLM.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`       // The desired output MIME type (e.g. "application/json").
	RateLimit          int     `toml:"rate_limit"`          // The rate limit for the LLM in requests per second.
}

// NarrationConfig configures voice-over synthesis. The speech model returns
// raw PCM audio; the sample rate here must match what the model emits so the
// voice-over duration is computed correctly.
type NarrationConfig struct {
	SpeechModel  string `toml:"speech_model"`   // Speech-capable GenAI model used for synthesis.
	Voice        string `toml:"voice"`          // Prebuilt voice name.
	SampleRateHz int    `toml:"sample_rate_hz"` // PCM sample rate of the synthesized audio.
}

// TopicSubscription represents the configuration for a Pub/Sub topic
// subscription used to trigger pipeline runs from GCS notifications.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for message processing, in seconds.
}

// WatcherConfig configures the local markdown drop folder. When enabled, the
// server watches DropDir and starts a run for every markdown file that
// appears, without needing GCS or Pub/Sub.
type WatcherConfig struct {
	Enabled bool   `toml:"enabled"`
	DropDir string `toml:"drop_dir"`
}

// Config represents the overall configuration for the application, loaded
// from TOML files. It is the root container for all other configuration
// structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name                      string `toml:"name"`                         // The name of the application.
		GoogleProjectId           string `toml:"google_project_id"`            // The Google Cloud project ID.
		GoogleLocation            string `toml:"location"`                     // The Google Cloud location.
		ThreadPoolSize            int    `toml:"thread_pool_size"`             // Bound on concurrent per-beat resolutions.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // Service account used for signing GCS preview URLs.
		OutputDir                 string `toml:"output_dir"`                   // Local directory receiving edit documents and manifests.
	} `toml:"application"`
	Storage            Storage                           `toml:"storage"`               // GCS bucket configuration.
	BigQueryDataSource BigQueryDataSource                `toml:"big_query_data_source"` // Library index configuration.
	Resolver           ResolverConfig                    `toml:"resolver"`              // Asset resolver tuning.
	WebSearch          WebSearchConfig                   `toml:"web_search"`            // Web tier search engine settings.
	PromptTemplates    PromptTemplates                   `toml:"prompt_templates"`      // Prompt templates.
	Narration          NarrationConfig                   `toml:"narration"`             // Voice-over synthesis settings.
	Watcher            WatcherConfig                     `toml:"watcher"`               // Local drop folder settings.
	TopicSubscriptions map[string]TopicSubscription      `toml:"topic_subscriptions"`   // Pub/Sub subscriptions, keyed by logical name (e.g. "Documents").
	EmbeddingModels    map[string]VertexAiEmbeddingModel `toml:"embedding_models"`      // Embedding models, keyed by logical name (e.g. "multi-lingual").
	AgentModels        map[string]VertexAiLLMModel       `toml:"agent_models"`          // LLM models, keyed by logical name (e.g. "beat-planner").
}

// NewConfig creates a new, initialized Config instance. The maps must be
// initialized before the configuration loader populates them.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		EmbeddingModels:    make(map[string]VertexAiEmbeddingModel),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
}

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
// for various components, including Google Cloud services, AI models,
// Pub/Sub topics, the video generation backend, and aggression presets.
//
// This file centralizes all configuration-related structs, making it easy
// to understand and manage the application's configurable parameters.
//
// Structs:
//   - BigQueryDataSource: Configuration for the BigQuery dataset and run table.
//   - PromptTemplates: Holds the text templates for prompts sent to GenAI models.
//   - VertexAiLLMModel: Configuration for a Vertex AI Large Language Model (LLM).
//   - TopicSubscription: Configuration for a single Pub/Sub topic subscription.
//   - Storage: Configuration for Google Cloud Storage buckets.
//   - GenerationBackend: Configuration for the remote text-to-video service.
//   - Vertical: A named ad vertical with its detection keywords.
//   - Config: The top-level struct that aggregates all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config object with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for GenAI models.
// These settings are configured to be non-restrictive, allowing all content categories
// (Dangerous Content, Harassment, Hate Speech, Sexually Explicit) to pass through without
// being blocked. This is a common setup for internal or controlled environments where
// the input data is trusted.
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

// BigQueryDataSource represents the configuration for a BigQuery data source.
type BigQueryDataSource struct {
	DatasetName string `toml:"dataset"`   // The name of the BigQuery dataset.
	RunTable    string `toml:"run_table"` // The name of the BigQuery table holding run history rows.
}

// PromptTemplates holds the templates for different types of prompts.
type PromptTemplates struct {
	AnalysisPrompt   string `toml:"analysis"`   // The template for analyzing a source advertisement video.
	ScenarioPrompt   string `toml:"scenario"`   // The template for generating custom hook scenarios.
	EvaluationPrompt string `toml:"evaluation"` // The template for rating an assembled variant.
}

// VertexAiLLMModel represents the configuration for a Vertex AI large language model (LLM).
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the Vertex AI LLM.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`       // The desired output format for the LLM.
	EnableGoogle       bool    `toml:"enable_google"`       // Whether to enable Google Search for the LLM.
	RateLimit          int     `toml:"rate_limit"`          // The rate limit for the LLM in requests per second.
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Storage represents the configuration for storage buckets.
type Storage struct {
	SourceAdBucket    string `toml:"source_ad_bucket"`     // The bucket source advertisements are uploaded to.
	RenderBucket      string `toml:"render_bucket"`        // The bucket rendered scene clips and assembled variants land in.
	GCSFuseMountPoint string `toml:"gcs_fuse_mount_point"` // The mount point for GCS FUSE.
}

// GenerationBackend represents the configuration for the remote text-to-video
// service all scene jobs are submitted to.
type GenerationBackend struct {
	BaseURL             string `toml:"base_url"`              // The API base URL.
	APIKey              string `toml:"api_key"`               // The bearer token for the API.
	Model               string `toml:"model"`                 // The generation model name (e.g., "sora-2-pro").
	Size                string `toml:"size"`                  // The output resolution (e.g., "1792x1024").
	DurationSeconds     int    `toml:"duration_seconds"`      // Seconds of video per scene job.
	PollIntervalSeconds int    `toml:"poll_interval_seconds"` // Seconds between status sweeps of pending jobs.
	MaxPollSeconds      int    `toml:"max_poll_seconds"`      // Upper bound on how long one job may stay pending before it is failed with a timeout.
	RateLimit           int    `toml:"rate_limit"`            // Submission rate limit in requests per second.
}

// Vertical defines a named advertisement vertical and the keywords used to
// detect it from an analysis. Detection checks verticals by priority order,
// lowest value first.
type Vertical struct {
	Name     string   `toml:"name"`     // The user-friendly vertical name (e.g., "Solar").
	Priority int      `toml:"priority"` // Detection order, lower is checked first.
	Keywords []string `toml:"keywords"` // Keywords matched against product and transcript text.
}

// AggressionPresetConfig mirrors the preset fields the TOML file may set for
// one aggression level. Empty entries fall back to built-in defaults.
type AggressionPresetConfig struct {
	Name            string   `toml:"name"`
	Description     string   `toml:"description"`
	Intensity       float64  `toml:"intensity"`
	Lighting        string   `toml:"lighting"`
	Tone            string   `toml:"tone"`
	Pacing          string   `toml:"pacing"`
	CameraMovement  string   `toml:"camera_movement"`
	Music           string   `toml:"music"`
	EnergyLevel     string   `toml:"energy_level"`
	ColorPalette    string   `toml:"color_palette"`
	Transitions     string   `toml:"transitions"`
	CallToAction    string   `toml:"call_to_action"`
	EmotionKeywords []string `toml:"emotion_keywords"`
}

// Config represents the overall configuration for the application, loaded from TOML files.
// It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name                      string `toml:"name"`                         // The name of the application.
		GoogleProjectId           string `toml:"google_project_id"`            // The Google Cloud project ID.
		GoogleLocation            string `toml:"location"`                     // The Google Cloud location.
		ThreadPoolSize            int    `toml:"thread_pool_size"`             // The size of the worker pool for parallel processing tasks.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // The service account email used for signing GCS URLs.
		StrictValidation          bool   `toml:"strict_validation"`            // When true, validator errors block submission instead of logging.
		OutputDir                 string `toml:"output_dir"`                   // Local directory for downloaded clips and prompt-set artifacts.
	} `toml:"application"`
	Storage            Storage                           `toml:"storage"`               // Storage configuration.
	BigQueryDataSource BigQueryDataSource                `toml:"big_query_data_source"` // BigQuery data source configuration.
	PromptTemplates    PromptTemplates                   `toml:"prompt_templates"`      // Prompt templates configuration.
	GenerationBackend  GenerationBackend                 `toml:"generation_backend"`    // Text-to-video backend configuration.
	TopicSubscriptions map[string]TopicSubscription      `toml:"topic_subscriptions"`   // A map of Pub/Sub topic subscriptions, keyed by a logical name (e.g., "SourceAdTopic").
	AgentModels        map[string]VertexAiLLMModel       `toml:"agent_models"`          // A map of Vertex AI LLM models, keyed by a logical name (e.g., "analyzer").
	AggressionPresets  map[string]AggressionPresetConfig `toml:"aggression_presets"`    // Preset overrides keyed by level name (soft/medium/aggressive/ultra).
	Verticals          map[string]Vertical               `toml:"verticals"`             // A map of ad verticals, keyed by a logical name (e.g., "solar").
}

// NewConfig is a constructor function that creates a new, initialized Config instance.
// It's important to initialize the maps within the struct to avoid nil pointer panics
// when the configuration loader tries to populate them.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels:        make(map[string]VertexAiLLMModel),
		AggressionPresets:  make(map[string]AggressionPresetConfig),
		Verticals:          make(map[string]Vertical),
	}
}

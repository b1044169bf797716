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

// Package cloud provides components for interacting with Google Cloud services.
// This file carries the package's shared helpers: the layered TOML
// configuration loader the server boots from, and the metered entry point the
// analysis and evaluation commands use for their model calls.
//
// Functions:
//   - fileExists: Reports whether a path exists.
//   - LoadConfig: Loads `.env.toml` and then lets a runtime-specific overlay
//     (e.g. ".env.local.toml") overwrite it, so one base file serves local,
//     test, and production deployments of the cloner.
//   - GenerateMultiModalResponse: Makes one model call, retries it on
//     failure, counts tokens and retries into the run's OpenTelemetry
//     counters, and strips the model's JSON code fencing from the reply.
//   - NewTextPart, NewFileData: Factories for prompt parts; the analysis
//     command pairs a text part with a gs:// video part built here.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/BurntSushi/toml"
	"google.golang.org/genai"
)

// Configuration file naming and the retry budget for metered model calls.
const (
	ConfigFileBaseName  = ".env"              // Base name of every configuration file.
	ConfigFileExtension = ".toml"             // Configuration files are TOML.
	ConfigSeparator     = "."                 // Joins the base name to the runtime name (".env.local.toml").
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // Environment variable naming the config directory.
	EnvConfigRuntime    = "GCP_RUNTIME"       // Environment variable naming the runtime overlay ("local", "test", "prod").
	MaxRetries          = 3                   // Attempts per metered model call before the error surfaces.
)

// fileExists reports whether a file or directory exists at the given path.
//
// Inputs:
//   - in: The path to check.
//
// Outputs:
//   - bool: True when the path exists.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig populates the service configuration in two layers: the base
// `.env.toml` first, then the runtime overlay named by GCP_RUNTIME, whose
// values win. The overlay is where deployments diverge: bucket names, model
// rate limits, and the video backend's endpoint differ between local runs
// and production while the base file stays shared.
//
// Inputs:
//   - baseConfig: A pointer to the configuration struct to populate.
func LoadConfig(baseConfig interface{}) {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	// Unset runtime defaults to "test" so a bare invocation never loads a
	// production overlay by accident.
	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	fmt.Printf("Base Configuration File: %s\n", baseConfigFileName)

	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension
	fmt.Printf("Environment Configuration File: %s\n", envConfigFileName)

	if fileExists(baseConfigFileName) {
		_, err := toml.DecodeFile(baseConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	// The overlay decodes into the already-populated struct, overwriting any
	// value it names and leaving the rest from the base file.
	if fileExists(envConfigFileName) {
		_, err := toml.DecodeFile(envConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode environment configuration file: %s with error: %s", envConfigFileName, err)
		}
	}
}

// GenerateMultiModalResponse is the metered entry point for the pipeline's
// model calls. The analysis command sends the source ad's video part through
// it, and the evaluator sends each assembled variant. On top of the wrapper's
// own quota handling it adds a bounded retry and records token usage and
// retry counts on the run's meters.
//
// Inputs:
//   - ctx: The run's context, carrying trace and cancellation.
//   - inputTokenCounter: Counter for prompt tokens spent.
//   - outputTokenCounter: Counter for response tokens produced.
//   - retryCounter: Counter incremented once per retry attempt.
//   - tryCount: The current attempt number, 0 on the first call.
//   - model: The quota-aware model to call.
//   - content: The multi-modal request parts.
//
// Outputs:
//   - string: The model's text reply with JSON code fencing stripped.
//   - error: The final error once the retry budget is exhausted.
func GenerateMultiModalResponse(
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
			return GenerateMultiModalResponse(ctx, inputTokenCounter, outputTokenCounter, retryCounter, tryCount+1, model, content)
		} else {
			return "", err
		}
	}
	// Token spend per run is the pipeline's main cost driver; both sides of
	// every successful call land on the meters.
	inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
	outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))

	value = ""
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				value += fmt.Sprint(part.Text)
			}
		}
	}
	// The analysis and evaluation prompts ask for raw JSON, but the model
	// tends to fence it anyway.
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimSuffix(value, "```")
	return value, nil
}

// NewTextPart wraps prompt text as model content.
//
// Inputs:
//   - in: The prompt text.
//
// Outputs:
//   - []*genai.Content: Content containing the text.
func NewTextPart(in string) []*genai.Content {
	return genai.Text(in)
}

// NewFileData builds the file part referencing a stored video, which is how
// source ads and assembled variants reach the model without leaving GCS.
//
// Inputs:
//   - in: The gs:// URI of the video.
//   - mimeType: The MIME type, normally "video/mp4".
//
// Outputs:
//   - genai.FileData: A part referencing the file.
func NewFileData(in string, mimeType string) genai.FileData {
	return genai.FileData{FileURI: in, MIMEType: mimeType}
}

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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command responsible for analyzing a source advertisement video.
//
// Logic Flow:
// This command is the first AI step of the cloning pipeline. It sends the
// uploaded advertisement to a generative model and asks for a structured
// breakdown: the full transcript, the spokesperson's appearance, the product,
// and the scene-by-scene narrative structure with purposes and emotions.
//
//  1. It receives a `genai.FileData` reference to the ad video from the context.
//  2. It constructs a detailed prompt for the generative model using a Go template,
//     instructing the model on the JSON document shape to return.
//  3. The prompt embeds a complete example analysis document (few-shot prompting)
//     to anchor the output schema.
//  4. It sends the video reference and prompt in one multi-modal request.
//  5. The raw JSON string response is placed into the context for the next
//     command (`AnalysisJSONToStruct`) to parse and normalize.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"google.golang.org/genai"
)

// AdAnalysisCreator is a command that uses a generative model to produce the
// structured analysis document for a source advertisement video.
type AdAnalysisCreator struct {
	cor.BaseCommand
	config                   *cloud.Config                      // Application configuration, used for prompt templating.
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel // The rate-limited generative model client.
	template                 *template.Template                 // The Go template for building the prompt.
	geminiInputTokenCounter  metric.Int64Counter                // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter                // OTel counter for output tokens.
	geminiRetryCounter       metric.Int64Counter                // OTel counter for retries.
}

// NewAdAnalysisCreator is the constructor for the AdAnalysisCreator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - config: The application's configuration object.
//   - generativeAIModel: The rate-limited wrapper for the generative model client.
//   - template: A parsed Go template for the analysis prompt.
//
// Outputs:
//   - *AdAnalysisCreator: A pointer to the newly instantiated command, including initialized telemetry counters.
func NewAdAnalysisCreator(
	name string,
	config *cloud.Config,
	generativeAIModel *cloud.QuotaAwareGenerativeAIModel,
	template *template.Template) *AdAnalysisCreator {

	out := &AdAnalysisCreator{
		BaseCommand:       *cor.NewBaseCommand(name),
		config:            config,
		generativeAIModel: generativeAIModel,
		template:          template}

	// Initialize OpenTelemetry counters for monitoring Gemini API usage for this specific command.
	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.retry", out.GetName()))

	return out
}

// GenerateParams creates the map of dynamic data to be injected into the prompt template.
//
// Outputs:
//   - map[string]interface{}: A map of keys and values for template substitution.
func (t *AdAnalysisCreator) GenerateParams(_ cor.Context) map[string]interface{} {
	params := make(map[string]interface{})

	// List the known verticals so the model tags the ad with a valid one.
	vertStr := ""
	for key, vert := range t.config.Verticals {
		vertStr += fmt.Sprintf("%s - %s; ", key, vert.Name)
	}
	params["VERTICALS"] = vertStr

	// Provide a complete, well-formed JSON example in the prompt. This technique
	// (few-shot prompting) significantly improves the reliability and structure
	// of the model's output.
	exampleAnalysis, _ := json.Marshal(model.GetExampleAnalysis())
	params["EXAMPLE_JSON"] = string(exampleAnalysis)
	return params
}

// Execute sends the analysis request to the generative model.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *AdAnalysisCreator) Execute(context cor.Context) {
	adFile := context.Get(t.GetInputParam()).(*genai.FileData)

	// Use a buffer to execute the Go template, substituting the dynamic params.
	var buffer bytes.Buffer
	err := t.template.Execute(&buffer, t.GenerateParams(context))
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	// Prepare the parts for the multi-modal request to Gemini.
	contents := []*genai.Content{
		{Parts: []*genai.Part{
			{Text: buffer.String()},
			{FileData: &genai.FileData{
				FileURI:  adFile.FileURI,
				MIMEType: adFile.MIMEType,
			}},
		},
			Role: "user"},
	}

	// Call the helper function to send the request to the model. This helper
	// encapsulates retry logic and telemetry updates.
	out, err := cloud.GenerateMultiModalResponse(context.GetContext(), t.geminiInputTokenCounter, t.geminiOutputTokenCounter, t.geminiRetryCounter, 0, t.generativeAIModel, contents)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("gemini request failed: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), out)
}

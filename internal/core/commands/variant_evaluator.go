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
// command that scores each assembled variant with a generative model.
//
// Logic Flow:
// Evaluation is the last creative step of the pipeline. Each uploaded variant
// video is sent to the model together with the source script and the style
// the variant was built to express, and the model returns the 1 to 10 ratings
// defined by the evaluation document shape.
//
//  1. It iterates the variant results in level order and skips any variant
//     without an uploaded video.
//  2. For each variant it renders the evaluation prompt template and sends
//     the prompt plus the gs:// video reference in one multi-modal request.
//  3. The JSON response parses into a `model.Evaluation`; the performance
//     tier is always re-derived from the overall score rather than trusted
//     from the model.
//  4. An evaluation failure is logged and leaves that variant unscored. It
//     never fails the chain and never blocks sibling evaluations.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"google.golang.org/genai"
)

// VariantEvaluator is a command that asks a generative model to rate each
// assembled variant video.
type VariantEvaluator struct {
	cor.BaseCommand
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel // The rate-limited generative model client.
	template                 *template.Template                 // The Go template for the evaluation prompt.
	geminiInputTokenCounter  metric.Int64Counter                // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter                // OTel counter for output tokens.
	geminiRetryCounter       metric.Int64Counter                // OTel counter for retries.
}

// NewVariantEvaluator is the constructor for the VariantEvaluator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generativeAIModel: The rate-limited wrapper for the generative model client.
//   - template: A parsed Go template for the evaluation prompt.
//
// Outputs:
//   - *VariantEvaluator: A pointer to the newly instantiated command.
func NewVariantEvaluator(
	name string,
	generativeAIModel *cloud.QuotaAwareGenerativeAIModel,
	template *template.Template) *VariantEvaluator {

	out := &VariantEvaluator{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: generativeAIModel,
		template:          template}

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.retry", out.GetName()))

	return out
}

// IsExecutable checks that the variant results and the analysis are present
// in the context.
func (s *VariantEvaluator) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(s.GetInputParam()) != nil &&
		context.Get(GetAnalysisName()) != nil
}

// Execute scores every uploaded variant.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *VariantEvaluator) Execute(context cor.Context) {
	results := context.Get(s.GetInputParam()).(map[model.AggressionLevel]*model.VariantResult)
	analysis := context.Get(GetAnalysisName()).(*model.NormalizedAnalysis)
	variantList, _ := context.Get(GetVariantsName()).([]*model.AggressionVariant)

	styles := make(map[model.AggressionLevel]string, len(variantList))
	for _, v := range variantList {
		styles[v.VariantLevel] = fmt.Sprintf("%s: %s", v.VariantName, v.VariantDescription)
	}

	scored := 0
	for _, level := range model.AggressionLevels() {
		result, ok := results[level]
		if !ok || !result.Success || result.AssembledURI == "" {
			continue
		}

		evaluation, err := s.evaluateVariant(context, result, analysis, styles[level])
		if err != nil {
			log.Printf("evaluation failed for variant '%s': %v", level, err)
			continue
		}
		result.Evaluation = evaluation
		scored++
	}
	log.Printf("evaluated %d variant(s)", scored)

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(s.GetOutputParam(), results)
}

// evaluateVariant runs one multi-modal rating request and parses the scores.
func (s *VariantEvaluator) evaluateVariant(
	context cor.Context,
	result *model.VariantResult,
	analysis *model.NormalizedAnalysis,
	style string) (*model.Evaluation, error) {

	example, _ := json.Marshal(&model.Evaluation{
		HookStrength:      8.0,
		PacingScore:       7.5,
		MessageClarity:    8.5,
		CallToActionScore: 7.0,
		OverallScore:      7.8,
		Notes:             "Strong open, the close could land harder.",
	})

	params := map[string]interface{}{
		"LEVEL":        string(result.Level),
		"STYLE":        style,
		"SCRIPT":       analysis.Script.FullTranscript,
		"PRODUCT":      analysis.Product,
		"EXAMPLE_JSON": string(example),
	}

	var buffer bytes.Buffer
	if err := s.template.Execute(&buffer, params); err != nil {
		return nil, fmt.Errorf("failed to execute prompt template: %w", err)
	}

	contents := []*genai.Content{
		{Parts: []*genai.Part{
			{Text: buffer.String()},
			{FileData: &genai.FileData{
				FileURI:  result.AssembledURI,
				MIMEType: "video/mp4",
			}},
		},
			Role: "user"},
	}

	out, err := cloud.GenerateMultiModalResponse(context.GetContext(), s.geminiInputTokenCounter, s.geminiOutputTokenCounter, s.geminiRetryCounter, 0, s.generativeAIModel, contents)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	evaluation := &model.Evaluation{}
	if err := json.Unmarshal([]byte(out), evaluation); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation response: %w", err)
	}

	// The tier is derived, never taken from the model's response.
	evaluation.PredictedPerformance = model.PredictPerformance(evaluation.OverallScore)
	return evaluation, nil
}

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

package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// GenAIScenarioProvider asks a generative model to compose extreme-hook
// scenarios for verticals without a built-in table. The prompt embeds two
// proven scenarios as few-shot patterns; the model returns a JSON array of
// ScenarioSpec objects.
type GenAIScenarioProvider struct {
	model    *cloud.QuotaAwareGenerativeAIModel
	template *template.Template
}

// NewGenAIScenarioProvider creates a provider around a configured agent
// model and a parsed scenario prompt template.
func NewGenAIScenarioProvider(model *cloud.QuotaAwareGenerativeAIModel, tmpl *template.Template) *GenAIScenarioProvider {
	return &GenAIScenarioProvider{model: model, template: tmpl}
}

// GenerateCustomScenarios renders the scenario prompt for the vertical and
// parses the model's JSON response. Any failure surfaces as an error so the
// transformer moves on to the next provider in its chain.
func (p *GenAIScenarioProvider) GenerateCustomScenarios(ctx context.Context, vertical string, analysis *model.NormalizedAnalysis) ([]ScenarioSpec, error) {
	reference, _ := json.Marshal(builtinScenarios["auto_insurance"][:2])

	params := map[string]interface{}{
		"VERTICAL":   vertical,
		"TRANSCRIPT": analysis.Script.FullTranscript,
		"PRODUCT":    analysis.Product,
		"REFERENCE":  string(reference),
	}
	var buffer bytes.Buffer
	if err := p.template.Execute(&buffer, params); err != nil {
		return nil, fmt.Errorf("failed to execute scenario prompt template: %w", err)
	}

	resp, err := p.model.GenerateContent(ctx, cloud.NewTextPart(buffer.String()))
	if err != nil {
		return nil, fmt.Errorf("scenario generation request failed: %w", err)
	}

	raw := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			raw += partText(part)
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimSuffix(raw, "```")

	var scenarios []ScenarioSpec
	if err := json.Unmarshal([]byte(raw), &scenarios); err != nil {
		return nil, fmt.Errorf("failed to parse scenario response: %w", err)
	}
	return scenarios, nil
}

func partText(part *genai.Part) string {
	if part == nil {
		return ""
	}
	return part.Text
}

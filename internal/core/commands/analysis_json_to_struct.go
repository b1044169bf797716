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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// data transformation step between the raw analysis response and the typed
// document the rest of the pipeline consumes.
//
// Logic Flow:
// This command follows the `AdAnalysisCreator` in the chain. It parses the
// model's raw JSON into an `model.AnalysisDocument`, tolerating the
// spokesperson field arriving as either a single object or a list, and then
// normalizes the document so every downstream stage sees exactly one
// spokesperson record and non-nil script and scene fields.
//
//  1. It receives the raw JSON string from the context.
//  2. It unmarshals the string into an `model.AnalysisDocument`; the
//     spokesperson union resolves the object-or-array ambiguity at this edge.
//  3. It calls `model.Normalize` to produce the canonical analysis.
//  4. The `NormalizedAnalysis` is placed into the context under a well-known
//     key and into the chain's output slot.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// GetAnalysisName returns the well-known context key under which the
// normalized analysis is stored for the rest of the chain.
func GetAnalysisName() string {
	return "__ANALYSIS__"
}

// AnalysisJSONToStruct is a command that parses the analysis JSON into a
// normalized, strongly-typed document.
type AnalysisJSONToStruct struct {
	cor.BaseCommand
}

// NewAnalysisJSONToStruct is the constructor for the AnalysisJSONToStruct command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - outputParamName: The context key where the resulting struct will be stored.
//
// Outputs:
//   - *AnalysisJSONToStruct: A pointer to the newly instantiated command.
func NewAnalysisJSONToStruct(name string, outputParamName string) *AnalysisJSONToStruct {
	out := AnalysisJSONToStruct{BaseCommand: *cor.NewBaseCommand(name)}
	out.OutputParamName = outputParamName
	return &out
}

// Execute parses and normalizes the analysis JSON.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *AnalysisJSONToStruct) Execute(context cor.Context) {
	in := context.Get(s.GetInputParam()).(string)

	doc := &model.AnalysisDocument{}
	err := json.Unmarshal([]byte(in), &doc)
	if err != nil {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), fmt.Errorf("failed to unmarshal analysis JSON: %w", err))
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)

	// Collapse the spokesperson union and default any missing optional fields.
	normalized := model.Normalize(doc)

	context.Add(GetAnalysisName(), normalized)
	context.Add(s.GetOutputParam(), normalized)
	context.Add(cor.CtxOut, normalized)
}

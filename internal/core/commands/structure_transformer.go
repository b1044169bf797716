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
// command that restructures a normalized analysis for generation.
//
// Logic Flow:
// This command sits between analysis and variant generation. It decides which
// market vertical the source ad belongs to and then rebuilds the opening of
// the ad around a scripted extreme-hook scenario for that vertical.
//
//  1. It retrieves the `model.NormalizedAnalysis` from the context.
//  2. It detects the vertical from the transcript and product text, checking
//     configured verticals first and falling back to the built-in rules.
//  3. It hands the analysis to the structure transformer, which swaps the
//     first scene for a precomposed hook scenario and deep-copies the rest.
//  4. A transform failure is recoverable. The untransformed analysis is kept
//     and the pipeline continues, so a bad scenario source never kills a run.
package commands

import (
	"log"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/transform"
)

// GetVerticalName returns the well-known context key under which the detected
// market vertical is stored.
func GetVerticalName() string {
	return "__VERTICAL__"
}

// StructureTransformer is a command that detects the ad's vertical and
// replaces its opening scene with a scripted extreme-hook scenario.
type StructureTransformer struct {
	cor.BaseCommand
	config      *cloud.Config          // Application configuration, provides the configured verticals.
	transformer *transform.Transformer // The scenario-selection and scene-rewrite engine.
}

// NewStructureTransformer is the constructor for the StructureTransformer command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - config: The application's configuration object.
//   - transformer: The structure transformer holding the scenario provider chain.
//
// Outputs:
//   - *StructureTransformer: A pointer to the newly instantiated command.
func NewStructureTransformer(name string, config *cloud.Config, transformer *transform.Transformer) *StructureTransformer {
	return &StructureTransformer{
		BaseCommand: *cor.NewBaseCommand(name),
		config:      config,
		transformer: transformer}
}

// IsExecutable checks that a normalized analysis is present in the context.
func (s *StructureTransformer) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(s.GetInputParam()) != nil
}

// Execute detects the vertical and applies the structure transform.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *StructureTransformer) Execute(context cor.Context) {
	analysis := context.Get(s.GetInputParam()).(*model.NormalizedAnalysis)

	vertical := transform.DetectVertical(analysis, s.config.Verticals)
	context.Add(GetVerticalName(), vertical)
	log.Printf("detected vertical '%s' for product '%s'", vertical, analysis.Product)

	transformed, err := s.transformer.Transform(context.GetContext(), analysis, vertical)
	if err != nil {
		// Recoverable: downstream stages work on the untransformed analysis.
		log.Printf("structure transform failed, continuing with original scenes: %v", err)
		transformed = analysis
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)

	// Overwrite the well-known analysis key so every later stage sees the
	// transformed breakdown.
	context.Add(GetAnalysisName(), transformed)
	context.Add(s.GetOutputParam(), transformed)
}

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
// command that turns aggression variants into text-to-video prompts.
//
// Logic Flow:
// For every variant this command walks the modified scenes, distributes the
// source script across them, and assembles one prompt per scene using the
// archetype that matches the scene (character, object-only, or scripted
// hook). The full prompt set is then validated and written to disk so a run
// can be inspected or replayed without regenerating prompts.
//
// Validation is advisory by default. Findings are logged and attached to the
// context, but only the strict validation config flag turns an invalid
// prompt into a pipeline error.
package commands

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/prompts"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/transform"
)

// GetPromptSetName returns the well-known context key under which the
// per-level prompt set is stored.
func GetPromptSetName() string {
	return "__PROMPT_SET__"
}

// GetValidationName returns the well-known context key under which the
// per-level validation reports are stored.
func GetValidationName() string {
	return "__VALIDATION__"
}

// PromptBuilder is a command that builds and validates the per-scene video
// prompts for every aggression variant.
type PromptBuilder struct {
	cor.BaseCommand
	config    *cloud.Config      // Application configuration, used for output paths and the strict flag.
	validator *prompts.Validator // The prompt validator applied to every built prompt.
}

// NewPromptBuilder is the constructor for the PromptBuilder command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - config: The application's configuration object.
//
// Outputs:
//   - *PromptBuilder: A pointer to the newly instantiated command.
func NewPromptBuilder(name string, config *cloud.Config) *PromptBuilder {
	return &PromptBuilder{
		BaseCommand: *cor.NewBaseCommand(name),
		config:      config,
		validator:   prompts.NewValidator()}
}

// IsExecutable checks that the variants and the analysis are present in the context.
func (s *PromptBuilder) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(s.GetInputParam()) != nil &&
		context.Get(GetAnalysisName()) != nil
}

// Execute builds, validates, and persists the prompt set.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *PromptBuilder) Execute(context cor.Context) {
	variantList := context.Get(s.GetInputParam()).([]*model.AggressionVariant)
	analysis := context.Get(GetAnalysisName()).(*model.NormalizedAnalysis)

	vertical := transformVerticalOrDefault(context)
	builder := prompts.NewBuilder(vertical)

	set := make(model.PromptSet, len(variantList))
	reports := make(map[model.AggressionLevel]*model.ValidationReport, len(variantList))
	invalid := 0

	for _, variant := range variantList {
		records := builder.BuildAllScenePrompts(
			variant,
			analysis.Spokesperson.PhysicalDescription,
			analysis.Script.FullTranscript)
		set[variant.VariantLevel] = records

		report := s.validator.ValidateAll(records)
		reports[variant.VariantLevel] = report
		invalid += report.InvalidCount

		for _, scene := range report.SceneReports {
			for _, w := range scene.Warnings {
				log.Printf("prompt warning [%s scene %d]: %s", variant.VariantLevel, scene.SceneNumber, w)
			}
			for _, e := range scene.Errors {
				log.Printf("prompt error [%s scene %d]: %s", variant.VariantLevel, scene.SceneNumber, e)
			}
		}
	}

	// Keep a copy of the full prompt set on disk. A save failure is logged
	// but never blocks generation.
	if s.config.Application.OutputDir != "" {
		runID, _ := context.Get(GetRunIDName()).(string)
		path := filepath.Join(s.config.Application.OutputDir, fmt.Sprintf("%s_prompts.json", runID))
		if err := set.Save(path); err != nil {
			log.Printf("failed to save prompt set to %s: %v", path, err)
		}
	}

	if invalid > 0 && s.config.Application.StrictValidation {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), fmt.Errorf("strict validation rejected %d prompt(s)", invalid))
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetPromptSetName(), set)
	context.Add(GetValidationName(), reports)
	context.Add(s.GetOutputParam(), set)
}

// transformVerticalOrDefault reads the detected vertical from the context,
// falling back to the default when the transform stage did not run.
func transformVerticalOrDefault(context cor.Context) string {
	if v, ok := context.Get(GetVerticalName()).(string); ok && v != "" {
		return v
	}
	return transform.DefaultVertical
}

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
// command that fans a transformed analysis out into the four aggression
// variants.
//
// Logic Flow:
// Variant generation is a pure, deterministic step: given the transformed
// analysis, it produces exactly one styled interpretation per aggression
// level by merging each level's preset into deep copies of every scene and
// rewriting scene emotions through the coherent-emotion remap. No model
// calls are made here, so the command cannot fail once its input is present.
package commands

import (
	"log"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/variants"
)

// GetVariantsName returns the well-known context key under which the slice of
// aggression variants is stored.
func GetVariantsName() string {
	return "__VARIANTS__"
}

// VariantGenerator is a command that produces the four aggression variants of
// a transformed analysis.
type VariantGenerator struct {
	cor.BaseCommand
	generator *variants.Generator // The preset-merging variant engine.
}

// NewVariantGenerator is the constructor for the VariantGenerator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generator: The variant generator, already merged with configured presets.
//
// Outputs:
//   - *VariantGenerator: A pointer to the newly instantiated command.
func NewVariantGenerator(name string, generator *variants.Generator) *VariantGenerator {
	return &VariantGenerator{BaseCommand: *cor.NewBaseCommand(name), generator: generator}
}

// IsExecutable checks that the transformed analysis is present in the context.
func (s *VariantGenerator) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(s.GetInputParam()) != nil
}

// Execute generates one variant per aggression level.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *VariantGenerator) Execute(context cor.Context) {
	analysis := context.Get(s.GetInputParam()).(*model.NormalizedAnalysis)

	out := s.generator.Generate(analysis)
	log.Printf("generated %d aggression variants from %d scenes", len(out), len(analysis.SceneBreakdown))

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetVariantsName(), out)
	context.Add(s.GetOutputParam(), out)
}

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

// Package model defines the core data structures for the ad-cloning pipeline.
// This file holds the prompt types: the PromptRecord handed to the generation
// backend, the validator's report shapes, and the persisted prompt set.
package model

import (
	"encoding/json"
	"os"
)

// PromptRecord is the unit handed to the text-to-video backend for one scene
// of one variant. The validator annotates records with a report; it never
// mutates them.
type PromptRecord struct {
	SceneNumber   int    `json:"scene_number"`
	Timestamp     string `json:"timestamp,omitempty"`
	Purpose       string `json:"purpose,omitempty"`
	Prompt        string `json:"prompt"`
	ScriptSegment string `json:"script_segment,omitempty"`
	HasCharacter  bool   `json:"has_character"`
}

// SceneValidationReport is the validator's verdict for one prompt. Errors
// flip Valid to false; warnings never do.
type SceneValidationReport struct {
	SceneNumber  int      `json:"scene_number"`
	Valid        bool     `json:"valid"`
	Warnings     []string `json:"warnings,omitempty"`
	Errors       []string `json:"errors,omitempty"`
	PromptLength int      `json:"prompt_length"`
}

// ValidationReport aggregates per-scene verdicts for a variant's prompt list.
// The report is advisory by default: the pipeline logs it and proceeds unless
// strict validation is enabled.
type ValidationReport struct {
	TotalPrompts  int                      `json:"total_prompts"`
	ValidCount    int                      `json:"valid"`
	InvalidCount  int                      `json:"invalid"`
	WarningsCount int                      `json:"warnings_count"`
	ErrorsCount   int                      `json:"errors_count"`
	SceneReports  []*SceneValidationReport `json:"scene_reports"`
}

// PromptSet is the full prompt inventory of one run, keyed by variant level
// with each list in scene order. It is persisted as JSON for audit and must
// load back into the same shape.
type PromptSet map[AggressionLevel][]*PromptRecord

// Save writes the prompt set to path as indented JSON.
func (p PromptSet) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadPromptSet reads a prompt set previously written by Save.
func LoadPromptSet(path string) (PromptSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := make(PromptSet)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

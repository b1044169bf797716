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

// Package prompts_test contains unit tests for the prompt building package.
// This file covers the validator: the errors-versus-warnings split, the
// people scan on object-only scenes, overlay limits, and report aggregation.
package prompts_test

import (
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidatePromptObjectOnlyPeopleScan verifies that a people-referencing
// word in an object-only scene is an error, and that matching is on word
// boundaries: "characteristic" must not trip the "character" check.
func TestValidatePromptObjectOnlyPeopleScan(t *testing.T) {
	validator := prompts.NewValidator()

	valid, _, errors := validator.ValidatePrompt(
		"A character walks past the camera. 4K cinematic style footage. 12 seconds.",
		prompts.SceneInfo{HasCharacter: false})
	assert.False(t, valid)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "people references")

	// Substrings of forbidden words are fine.
	valid, _, errors = validator.ValidatePrompt(
		"Footage showing the characteristic glow of neon signage. 4K cinematic style. 12 seconds.",
		prompts.SceneInfo{HasCharacter: false})
	assert.True(t, valid)
	assert.Empty(t, errors)
}

// TestValidatePromptCharacterWarningsOnly verifies that a thin character
// prompt accumulates warnings but remains valid: warnings never flip the
// verdict.
func TestValidatePromptCharacterWarningsOnly(t *testing.T) {
	validator := prompts.NewValidator()

	valid, warnings, errors := validator.ValidatePrompt(
		"Something happens.",
		prompts.SceneInfo{HasCharacter: true})
	assert.True(t, valid)
	assert.Empty(t, errors)
	// Missing character description, camera direction, quoted script,
	// duration, style, and quality all warn.
	assert.GreaterOrEqual(t, len(warnings), 4)
}

// TestValidatePromptContradictoryEmotions verifies that pairing both halves
// of a contradictory emotion pair in one prompt is an error.
func TestValidatePromptContradictoryEmotions(t *testing.T) {
	validator := prompts.NewValidator()

	valid, _, errors := validator.ValidatePrompt(
		`A person, calm at first, then explosive. Camera push-in. "Line." 4K quality, style notes, 12 seconds.`,
		prompts.SceneInfo{HasCharacter: true})
	assert.False(t, valid)
	require.NotEmpty(t, errors)
	assert.Contains(t, errors[0], "contradictory emotions")
}

// TestValidatePromptLength verifies the length checks: past 80 percent of the
// limit warns, past the limit errors.
func TestValidatePromptLength(t *testing.T) {
	validator := prompts.NewValidator()
	base := `A person on camera. Push-in. "Line." 4K quality, style notes, 12 seconds. `

	near := base + strings.Repeat("x", int(float64(prompts.MaxPromptLength)*0.9)-len(base))
	valid, warnings, errors := validator.ValidatePrompt(near, prompts.SceneInfo{HasCharacter: true})
	assert.True(t, valid)
	assert.Empty(t, errors)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "near limit")

	over := base + strings.Repeat("x", prompts.MaxPromptLength)
	valid, _, errors = validator.ValidatePrompt(over, prompts.SceneInfo{HasCharacter: true})
	assert.False(t, valid)
	require.NotEmpty(t, errors)
	assert.Contains(t, errors[0], "too long")
}

// TestValidatePromptLengthCountsCharacters verifies the cap is measured in
// characters rather than bytes: accented text that crosses the limit in bytes
// stays valid while its character count fits.
func TestValidatePromptLengthCountsCharacters(t *testing.T) {
	validator := prompts.NewValidator()

	accented := strings.Repeat("é", prompts.MaxPromptLength/2+1)
	require.Greater(t, len(accented), prompts.MaxPromptLength)

	valid, _, errors := validator.ValidatePrompt(accented, prompts.SceneInfo{HasCharacter: true})
	assert.True(t, valid)
	assert.Empty(t, errors)

	tooMany := strings.Repeat("é", prompts.MaxPromptLength+1)
	valid, _, errors = validator.ValidatePrompt(tooMany, prompts.SceneInfo{HasCharacter: true})
	assert.False(t, valid)
	require.NotEmpty(t, errors)
	assert.Contains(t, errors[0], "too long")
}

// TestValidatePromptOverlayLimits verifies the overlay checks: more than the
// allowed number of overlay mentions errors, as does a timed overlay placed
// outside the scene's twelve seconds.
func TestValidatePromptOverlayLimits(t *testing.T) {
	validator := prompts.NewValidator()

	crowded := `Camera push-in. "Line." 4K quality, style, 12 seconds. ` +
		strings.Repeat("overlay ", prompts.MaxTextOverlays+1)
	valid, _, errors := validator.ValidatePrompt(crowded, prompts.SceneInfo{HasCharacter: true})
	assert.False(t, valid)
	require.NotEmpty(t, errors)
	assert.Contains(t, errors[0], "too many text overlays")

	late := `Camera push-in. "Line." 4K quality, style, 12 seconds. Title card at 0:45.`
	valid, _, errors = validator.ValidatePrompt(late, prompts.SceneInfo{HasCharacter: true})
	assert.False(t, valid)
	require.NotEmpty(t, errors)
	assert.Contains(t, errors[0], "invalid text timing")
}

// TestValidateAllAggregation verifies the report roll-up: per-scene verdicts
// and the valid and invalid counts across a mixed batch.
func TestValidateAllAggregation(t *testing.T) {
	validator := prompts.NewValidator()
	records := []*model.PromptRecord{
		{SceneNumber: 1, HasCharacter: true,
			Prompt: `A female presenter, 30. Camera push-in. "Line." 4K quality, style notes, 12 seconds.`},
		{SceneNumber: 2, HasCharacter: false,
			Prompt: "A woman opens the package. Visual style footage, 4K quality, 12 seconds."},
	}

	report := validator.ValidateAll(records)
	assert.Equal(t, 2, report.TotalPrompts)
	assert.Equal(t, 1, report.ValidCount)
	assert.Equal(t, 1, report.InvalidCount)
	require.Len(t, report.SceneReports, 2)
	assert.True(t, report.SceneReports[0].Valid)
	assert.False(t, report.SceneReports[1].Valid)
	assert.Equal(t, 2, report.SceneReports[1].SceneNumber)
}

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
// This file covers archetype dispatch, the character condensation table, and
// the structural guarantees of each built prompt.
package prompts_test

import (
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spokesperson = "Woman in her early 30s with shoulder-length brown hair, wearing a teal blouse"

// TestCondenseCharacter verifies the keyword decision table: gender, age,
// hair, and clothing are extracted when present, and unmatched fields are
// dropped rather than replaced with placeholders.
func TestCondenseCharacter(t *testing.T) {
	assert.Equal(t, "female, 30, brown hair, blouse", prompts.CondenseCharacter(spokesperson))
	assert.Equal(t, "male, 25-30, blonde hair", prompts.CondenseCharacter("Man aged 25-30 with blonde hair"))
	// Nothing recognizable still yields a usable stub.
	assert.Equal(t, "person, 30", prompts.CondenseCharacter("someone"))
	// "female" must win over its substring "male".
	assert.True(t, strings.HasPrefix(prompts.CondenseCharacter("a female presenter, 40"), "female"))
}

// TestCharacterPromptHookRotation verifies that consecutive character scenes
// rotate through the vertical's opening visuals and wrap back around once the
// list is exhausted.
func TestCharacterPromptHookRotation(t *testing.T) {
	builder := prompts.NewBuilder("auto_insurance")

	prompt := func(n int) string {
		scene := &model.ModifiedScene{Scene: model.Scene{
			SceneNumber:  n,
			HasCharacter: true,
			Setting:      "kitchen",
			Emotion:      "confident",
		}}
		return builder.BuildScenePrompt(scene, model.LevelMedium, spokesperson, "Save money today")
	}

	assert.Contains(t, prompt(1), "monthly bill notification")
	assert.Contains(t, prompt(2), "renewal letter")
	assert.Contains(t, prompt(3), "yearly cost total")
	assert.Contains(t, prompt(4), "monthly bill notification")
}

// TestBuildScenePromptDispatch verifies the three-way archetype dispatch: a
// scripted hook scene wins over everything, then object-only scenes, then
// spoken character scenes.
func TestBuildScenePromptDispatch(t *testing.T) {
	builder := prompts.NewBuilder("solar")

	hook := &model.ModifiedScene{Scene: model.Scene{
		Type:    model.SceneTypeExtremeHook,
		Visual:  "A bill burns away to nothing",
		Emotion: "tension, decisive relief",
	}}
	broll := &model.ModifiedScene{Scene: model.Scene{
		HasCharacter:   false,
		VisualElements: []string{"solar panels", "blue sky"},
		Emotion:        "calm",
	}}
	character := &model.ModifiedScene{Scene: model.Scene{
		HasCharacter: true,
		Setting:      "suburban kitchen, morning light",
		Emotion:      "confident",
	}}

	assert.Contains(t,
		builder.BuildScenePrompt(hook, model.LevelUltra, spokesperson, "ignored"),
		"EXTREME VISUAL HOOK")
	assert.Contains(t,
		builder.BuildScenePrompt(broll, model.LevelSoft, spokesperson, "Voiceover line."),
		"Voiceover")
	assert.Contains(t,
		builder.BuildScenePrompt(character, model.LevelSoft, spokesperson, "Spoken line."),
		`"Spoken line."`)
}

// TestCharacterPromptStructure verifies the spoken-scene assembly: the
// vertical's pattern interrupt opens the prompt, the condensed character and
// first setting clause follow, the script is quoted, and the technical
// suffix closes it.
func TestCharacterPromptStructure(t *testing.T) {
	builder := prompts.NewBuilder("solar")
	scene := &model.ModifiedScene{Scene: model.Scene{
		HasCharacter: true,
		Setting:      "suburban kitchen, morning light",
		Emotion:      "confident",
	}}

	prompt := builder.BuildScenePrompt(scene, model.LevelMedium, spokesperson, "My bill hit four hundred dollars.")

	// The solar pattern interrupt leads.
	assert.True(t, strings.HasPrefix(prompt, "Electric bill"))
	// The condensed character appears, not the full description.
	assert.Contains(t, prompt, "female, 30, brown hair, blouse")
	assert.NotContains(t, prompt, "shoulder-length")
	// Only the first clause of the setting survives.
	assert.Contains(t, prompt, "suburban kitchen")
	assert.NotContains(t, prompt, "morning light")
	// Dialogue is quoted and the suffix closes the prompt.
	assert.Contains(t, prompt, `"My bill hit four hundred dollars."`)
	assert.True(t, strings.HasSuffix(prompt, "4K. 12 seconds."))
}

// TestBrollPromptPassesOwnValidator verifies that the fixed wording of an
// object-only prompt never trips the validator's people scan. The builder and
// validator share no word list, so this is the regression net between them.
func TestBrollPromptPassesOwnValidator(t *testing.T) {
	builder := prompts.NewBuilder("auto_insurance")
	scene := &model.ModifiedScene{Scene: model.Scene{
		SceneNumber:    2,
		HasCharacter:   false,
		VisualElements: []string{"dented bumper", "repair shop"},
		Emotion:        "worried",
	}}

	prompt := builder.BuildScenePrompt(scene, model.LevelAggressive, spokesperson, "Accidents happen fast.")

	validator := prompts.NewValidator()
	valid, _, errors := validator.ValidatePrompt(prompt, prompts.SceneInfo{HasCharacter: false})
	assert.True(t, valid, "object-only prompt failed validation: %v", errors)
	assert.Empty(t, errors)
}

// TestBuildAllScenePrompts verifies the full per-variant pass: one record per
// scene in order, each carrying its own script segment from the distribution.
func TestBuildAllScenePrompts(t *testing.T) {
	variant := &model.AggressionVariant{
		VariantLevel: model.LevelMedium,
		ModifiedScenes: []*model.ModifiedScene{
			{Scene: model.Scene{SceneNumber: 1, Purpose: "hook", HasCharacter: true, Setting: "kitchen", Emotion: "frustrated"}},
			{Scene: model.Scene{SceneNumber: 2, Purpose: "problem", VisualElements: []string{"rooftop panels"}, Emotion: "worried"}},
			{Scene: model.Scene{SceneNumber: 3, Purpose: "cta", HasCharacter: true, Setting: "porch", Emotion: "confident"}},
		},
	}

	builder := prompts.NewBuilder("solar")
	records := builder.BuildAllScenePrompts(variant, spokesperson,
		"One sentence here. Another one follows. A third lands now. The last one closes.")

	require.Len(t, records, 3)
	for i, record := range records {
		assert.Equal(t, i+1, record.SceneNumber)
		assert.NotEmpty(t, record.Prompt)
	}
	assert.True(t, records[0].HasCharacter)
	assert.False(t, records[1].HasCharacter)
	// Character scenes speak their own segment, not the whole transcript.
	assert.Contains(t, records[0].Prompt, records[0].ScriptSegment)
	assert.NotContains(t, records[0].Prompt, "The last one closes.")
}

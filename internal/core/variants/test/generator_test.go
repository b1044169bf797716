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

// Package variants_test contains unit tests for the aggression variant
// generator. The generator is pure and deterministic, so these tests assert
// its structural laws directly: four variants in fixed order, one modified
// scene per input scene, coherent emotions, and no mutation of the input.
package variants_test

import (
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/variants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contradictoryPairs mirrors the word pairs the prompt validator rejects. A
// remapped emotion phrase must never contain both halves of any pair.
var contradictoryPairs = [][2]string{
	{"frustrated", "excited"},
	{"calm", "explosive"},
	{"gentle", "confrontational"},
	{"relaxed", "urgent"},
	{"thoughtful", "impulsive"},
}

// sampleAnalysis builds a small normalized analysis with a spread of source
// emotions, including one outside the recognized base set.
func sampleAnalysis() *model.NormalizedAnalysis {
	return &model.NormalizedAnalysis{
		DurationSeconds: 30,
		Product:         "solar panels",
		Script:          &model.Script{FullTranscript: "My bill was huge. Now it is zero."},
		Spokesperson:    &model.Spokesperson{PhysicalDescription: "woman in a teal blouse"},
		SceneBreakdown: []*model.Scene{
			{SceneNumber: 1, Purpose: "hook", HasCharacter: true, Emotion: "frustrated", VisualElements: []string{"bill"}},
			{SceneNumber: 2, Purpose: "solution", Emotion: "excited"},
			{SceneNumber: 3, Purpose: "cta", HasCharacter: true, Emotion: "bewildered"},
		},
	}
}

// TestGenerateProducesAllLevelsInOrder verifies that generation always yields
// exactly one variant per aggression level, in the fixed soft, medium,
// aggressive, ultra order, each carrying one modified scene per input scene.
func TestGenerateProducesAllLevelsInOrder(t *testing.T) {
	generator := variants.NewGenerator(nil)
	out := generator.Generate(sampleAnalysis())

	require.Len(t, out, 4)
	for i, level := range model.AggressionLevels() {
		assert.Equal(t, level, out[i].VariantLevel)
		assert.Len(t, out[i].ModifiedScenes, 3)
		// Scene order within a variant follows the input order.
		for j, scene := range out[i].ModifiedScenes {
			assert.Equal(t, j+1, scene.SceneNumber)
		}
	}
}

// TestGenerateDoesNotMutateInput verifies the deep-copy law: the source
// analysis, including scene emotions and visual element slices, must be
// byte-for-byte unchanged after generation.
func TestGenerateDoesNotMutateInput(t *testing.T) {
	analysis := sampleAnalysis()
	generator := variants.NewGenerator(nil)
	out := generator.Generate(analysis)

	// The generated scenes carry remapped emotions.
	assert.NotEqual(t, "frustrated", out[3].ModifiedScenes[0].Emotion)
	// But the input analysis still has its original values.
	assert.Equal(t, "frustrated", analysis.SceneBreakdown[0].Emotion)
	assert.Equal(t, "excited", analysis.SceneBreakdown[1].Emotion)
	assert.Equal(t, []string{"bill"}, analysis.SceneBreakdown[0].VisualElements)

	// Mutating a generated scene must not reach back into the input.
	out[0].ModifiedScenes[0].VisualElements[0] = "changed"
	assert.Equal(t, "bill", analysis.SceneBreakdown[0].VisualElements[0])
}

// TestGenerateEmotionsAreCoherent verifies that no remapped emotion phrase
// pairs contradictory adjectives, at any level, for any source emotion. This
// is the property that keeps built prompts clean through the validator.
func TestGenerateEmotionsAreCoherent(t *testing.T) {
	generator := variants.NewGenerator(nil)
	for _, variant := range generator.Generate(sampleAnalysis()) {
		for _, scene := range variant.ModifiedScenes {
			lowered := strings.ToLower(scene.Emotion)
			for _, pair := range contradictoryPairs {
				both := strings.Contains(lowered, pair[0]) && strings.Contains(lowered, pair[1])
				assert.False(t, both,
					"variant %s scene %d emotion %q pairs %q with %q",
					variant.VariantLevel, scene.SceneNumber, scene.Emotion, pair[0], pair[1])
			}
		}
	}
}

// TestGenerateUnknownEmotionFallsBack verifies that a source emotion outside
// the recognized base set is replaced with the level's first preset keyword
// instead of passing through as raw text.
func TestGenerateUnknownEmotionFallsBack(t *testing.T) {
	generator := variants.NewGenerator(nil)
	out := generator.Generate(sampleAnalysis())

	defaults := variants.DefaultPresets()
	for i, level := range model.AggressionLevels() {
		// Scene 3 carries the unrecognized "bewildered" emotion.
		got := out[i].ModifiedScenes[2].Emotion
		assert.Equal(t, defaults[level].EmotionKeywords[0], got)
		assert.NotEqual(t, "bewildered", got)
	}
}

// TestNewGeneratorMergesPartialPresets verifies that a preset table missing
// some levels falls back to the built-in defaults for the gaps, so a partial
// configuration never blocks generation.
func TestNewGeneratorMergesPartialPresets(t *testing.T) {
	custom := &model.AggressionPreset{
		Name:            "Custom Soft",
		Description:     "override",
		Lighting:        "candlelight",
		EmotionKeywords: []string{"serene"},
	}
	generator := variants.NewGenerator(map[model.AggressionLevel]*model.AggressionPreset{
		model.LevelSoft: custom,
	})
	out := generator.Generate(sampleAnalysis())

	// The configured level uses the override.
	assert.Equal(t, "Custom Soft", out[0].VariantName)
	assert.Equal(t, "candlelight", out[0].GlobalStyle.Lighting)
	// Unconfigured levels keep their defaults.
	assert.Equal(t, variants.DefaultPresets()[model.LevelUltra].Name, out[3].VariantName)
}

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

package variants

import (
	"strings"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// Generator produces the four aggression variants of a normalized analysis.
type Generator struct {
	presets map[model.AggressionLevel]*model.AggressionPreset
}

// NewGenerator builds a Generator from the given preset table. A nil table
// or one missing any of the four required levels falls back to the built-in
// defaults for the missing entries, so configuration gaps never block a run.
func NewGenerator(presets map[model.AggressionLevel]*model.AggressionPreset) *Generator {
	defaults := DefaultPresets()
	merged := make(map[model.AggressionLevel]*model.AggressionPreset, len(defaults))
	for _, level := range model.AggressionLevels() {
		if p, ok := presets[level]; ok && p != nil {
			merged[level] = p
		} else {
			merged[level] = defaults[level]
		}
	}
	return &Generator{presets: merged}
}

// Generate returns exactly one variant per aggression level, in the fixed
// soft, medium, aggressive, ultra order. Scenes are deep-copied before
// modification; the input analysis is never mutated.
func (g *Generator) Generate(analysis *model.NormalizedAnalysis) []*model.AggressionVariant {
	out := make([]*model.AggressionVariant, 0, len(model.AggressionLevels()))
	for _, level := range model.AggressionLevels() {
		preset := g.presets[level]
		variant := &model.AggressionVariant{
			VariantLevel:       level,
			VariantName:        preset.Name,
			VariantDescription: preset.Description,
			GlobalStyle: model.GlobalStyle{
				Lighting:     preset.Lighting,
				Music:        preset.Music,
				ColorPalette: preset.ColorPalette,
				Transitions:  preset.Transitions,
				EnergyLevel:  preset.EnergyLevel,
			},
			ModifiedScenes: make([]*model.ModifiedScene, 0, len(analysis.SceneBreakdown)),
		}
		for _, scene := range analysis.SceneBreakdown {
			clone := scene.Clone()
			clone.Emotion = remapEmotion(level, preset, scene.Emotion)
			variant.ModifiedScenes = append(variant.ModifiedScenes, &model.ModifiedScene{
				Scene: *clone,
				AggressionModifiers: model.AggressionModifiers{
					Lighting:        preset.Lighting,
					Tone:            preset.Tone,
					Pacing:          preset.Pacing,
					CameraMovement:  preset.CameraMovement,
					EnergyLevel:     preset.EnergyLevel,
					EmotionKeywords: preset.EmotionKeywords,
				},
			})
		}
		out = append(out, variant)
	}
	return out
}

// remapEmotion translates a scene's emotion into the level's coherent phrase.
// When no base emotion word is present, the preset's first emotion keyword is
// used so the output never falls back to the raw original text.
func remapEmotion(level model.AggressionLevel, preset *model.AggressionPreset, emotion string) string {
	lowered := strings.ToLower(emotion)
	table := emotionRemap[level]
	for _, base := range baseEmotions {
		if strings.Contains(lowered, base) {
			return table[base]
		}
	}
	if len(preset.EmotionKeywords) > 0 {
		return preset.EmotionKeywords[0]
	}
	return DefaultPresets()[level].EmotionKeywords[0]
}

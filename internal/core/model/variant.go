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
// This file holds the aggression-variant types: the closed set of levels, the
// style preset applied per level, and the modified-scene output of the
// variant generator.
package model

// AggressionLevel is one of the four fixed style presets controlling the
// tone, pacing, and visual intensity of generated content.
type AggressionLevel string

const (
	LevelSoft       AggressionLevel = "soft"
	LevelMedium     AggressionLevel = "medium"
	LevelAggressive AggressionLevel = "aggressive"
	LevelUltra      AggressionLevel = "ultra"
)

// AggressionLevels returns the closed level set in its fixed generation
// order. Variant output always carries exactly one variant per entry, in this
// order.
func AggressionLevels() []AggressionLevel {
	return []AggressionLevel{LevelSoft, LevelMedium, LevelAggressive, LevelUltra}
}

// Valid reports whether the level belongs to the closed set.
func (l AggressionLevel) Valid() bool {
	switch l {
	case LevelSoft, LevelMedium, LevelAggressive, LevelUltra:
		return true
	}
	return false
}

// AggressionPreset is the style table entry for one level. Presets load from
// configuration with a built-in default table as fallback, so a partial
// config never blocks generation.
type AggressionPreset struct {
	Name            string   `json:"name" toml:"name"`
	Description     string   `json:"description" toml:"description"`
	Intensity       float64  `json:"intensity" toml:"intensity"`
	Lighting        string   `json:"lighting" toml:"lighting"`
	Tone            string   `json:"tone" toml:"tone"`
	Pacing          string   `json:"pacing" toml:"pacing"`
	CameraMovement  string   `json:"camera_movement" toml:"camera_movement"`
	Music           string   `json:"music" toml:"music"`
	EnergyLevel     string   `json:"energy_level" toml:"energy_level"`
	ColorPalette    string   `json:"color_palette" toml:"color_palette"`
	Transitions     string   `json:"transitions" toml:"transitions"`
	CallToAction    string   `json:"call_to_action" toml:"call_to_action"`
	EmotionKeywords []string `json:"emotion_keywords" toml:"emotion_keywords"`
}

// GlobalStyle is the variant-wide style block attached alongside the
// per-scene modifiers.
type GlobalStyle struct {
	Lighting     string `json:"lighting"`
	Music        string `json:"music"`
	ColorPalette string `json:"color_palette"`
	Transitions  string `json:"transitions"`
	EnergyLevel  string `json:"energy_level"`
}

// AggressionModifiers is the per-scene merge of preset fields.
type AggressionModifiers struct {
	Lighting        string   `json:"lighting"`
	Tone            string   `json:"tone"`
	Pacing          string   `json:"pacing"`
	CameraMovement  string   `json:"camera_movement"`
	EnergyLevel     string   `json:"energy_level"`
	EmotionKeywords []string `json:"emotion_keywords"`
}

// ModifiedScene is a deep copy of a source Scene with the level's modifiers
// merged in and its emotion rewritten through the coherent-emotion remap. The
// original Scene is never mutated.
type ModifiedScene struct {
	Scene
	AggressionModifiers AggressionModifiers `json:"aggression_modifiers"`
}

// AggressionVariant is one style interpretation of the full scene breakdown.
// For a given analysis exactly one variant exists per level, each carrying
// one modified scene per input scene, in input order. Variants are immutable
// once created.
type AggressionVariant struct {
	VariantLevel       AggressionLevel  `json:"variant_level"`
	VariantName        string           `json:"variant_name"`
	VariantDescription string           `json:"variant_description"`
	GlobalStyle        GlobalStyle      `json:"global_style"`
	ModifiedScenes     []*ModifiedScene `json:"modified_scenes"`
}

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

// Package variants turns a normalized ad analysis into the four aggression
// styled variants of its scene breakdown. Presets normally come from the
// TOML configuration; a built-in table covers every level so a missing or
// partial configuration never blocks a run.
package variants

import "github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"

// DefaultPresets returns the built-in aggression preset table. Config values
// override these per level; any level the config omits keeps its default.
func DefaultPresets() map[model.AggressionLevel]*model.AggressionPreset {
	return map[model.AggressionLevel]*model.AggressionPreset{
		model.LevelSoft: {
			Name:            "Soft Sell",
			Description:     "Warm, trust-first delivery with unhurried pacing",
			Intensity:       0.3,
			Lighting:        "soft natural light, warm golden tones",
			Tone:            "warm and reassuring",
			Pacing:          "relaxed, lingering shots",
			CameraMovement:  "slow, smooth movements",
			Music:           "light acoustic, uplifting",
			EnergyLevel:     "low-key and inviting",
			ColorPalette:    "warm neutrals, soft pastels",
			Transitions:     "gentle cross-dissolves",
			CallToAction:    "a friendly invitation to learn more",
			EmotionKeywords: []string{"warm", "sincere", "reassuring", "approachable"},
		},
		model.LevelMedium: {
			Name:            "Balanced",
			Description:     "Direct, energetic delivery without hard pressure",
			Intensity:       0.6,
			Lighting:        "bright even lighting, natural contrast",
			Tone:            "confident and direct",
			Pacing:          "steady, purposeful cuts",
			CameraMovement:  "steady handheld, occasional push-ins",
			Music:           "mid-tempo pop, driving beat",
			EnergyLevel:     "engaged and upbeat",
			ColorPalette:    "saturated naturals",
			Transitions:     "clean hard cuts",
			CallToAction:    "a clear, direct ask to act today",
			EmotionKeywords: []string{"engaging", "energetic", "direct", "upbeat"},
		},
		model.LevelAggressive: {
			Name:            "High Pressure",
			Description:     "High-urgency delivery built around scarcity",
			Intensity:       0.85,
			Lighting:        "high contrast, punchy highlights",
			Tone:            "bold and insistent",
			Pacing:          "fast cuts, no dead air",
			CameraMovement:  "dynamic push-ins, whip pans",
			Music:           "heavy percussion, rising tension",
			EnergyLevel:     "high intensity",
			ColorPalette:    "bold reds and deep shadows",
			Transitions:     "snap cuts, speed ramps",
			CallToAction:    "an urgent demand to act before it is too late",
			EmotionKeywords: []string{"bold", "intense", "urgent", "commanding"},
		},
		model.LevelUltra: {
			Name:            "Maximum Impact",
			Description:     "Pattern-interrupt extremes at every beat",
			Intensity:       1.0,
			Lighting:        "strobing highlights, extreme contrast",
			Tone:            "explosive and confrontational",
			Pacing:          "rapid-fire cuts under one second",
			CameraMovement:  "crash zooms, shake, fast dolly-ins",
			Music:           "bass drops, distorted hits",
			EnergyLevel:     "maximum, relentless",
			ColorPalette:    "neon accents on black",
			Transitions:     "glitch cuts, flash frames",
			CallToAction:    "an unmissable final-warning call to act right now",
			EmotionKeywords: []string{"explosive", "electrifying", "unstoppable", "relentless"},
		},
	}
}

// baseEmotions is the closed set of source emotion words the remap
// recognizes, checked in this order.
var baseEmotions = []string{
	"frustrated",
	"excited",
	"urgent",
	"confident",
	"worried",
	"determined",
}

// emotionRemap translates a scene's base emotion into a single coherent
// phrase for each level. Values never mix vocabulary from two levels, so a
// remapped emotion can never pair contradictory adjectives.
var emotionRemap = map[model.AggressionLevel]map[string]string{
	model.LevelSoft: {
		"frustrated": "thoughtfully concerned",
		"excited":    "quietly enthusiastic",
		"urgent":     "gently encouraging",
		"confident":  "calmly assured",
		"worried":    "mildly uneasy",
		"determined": "patiently resolved",
	},
	model.LevelMedium: {
		"frustrated": "openly dissatisfied",
		"excited":    "genuinely enthusiastic",
		"urgent":     "clearly time-sensitive",
		"confident":  "confidently direct",
		"worried":    "visibly troubled",
		"determined": "firmly committed",
	},
	model.LevelAggressive: {
		"frustrated": "intensely fed up",
		"excited":    "highly energized",
		"urgent":     "pressingly immediate",
		"confident":  "boldly assertive",
		"worried":    "deeply alarmed",
		"determined": "fiercely driven",
	},
	model.LevelUltra: {
		"frustrated": "explosively candid",
		"excited":    "electrically charged",
		"urgent":     "critically immediate",
		"confident":  "unshakably commanding",
		"worried":    "dramatically shaken",
		"determined": "relentlessly unstoppable",
	},
}

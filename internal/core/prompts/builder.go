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

// Package prompts builds and validates the text-to-video prompts for a
// variant's scenes. Each scene dispatches into one of three prompt
// archetypes: a character scene spoken to camera, an object-only B-roll
// scene, or a scripted extreme-hook scenario. The builder is deterministic
// text assembly; no model call happens here.
package prompts

import (
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// patternInterrupts are vertical-specific opening visuals for character
// scenes. The scene number rotates through a vertical's list so consecutive
// character scenes open on different visuals.
var patternInterrupts = map[string][]string{
	"auto_insurance": {
		"Phone screen showing a monthly bill notification",
		"Insurance renewal letter landing on a desk",
		"Calculator showing a yearly cost total",
	},
	"health_insurance": {
		"Medical bill stack on a counter",
		"Prescription cost receipt close-up",
	},
	"finance": {
		"Bank app showing a savings balance",
		"Credit score notification on a phone",
	},
	"solar": {
		"Electric bill with a highlighted total on a kitchen table",
		"Rooftop solar panels catching morning sun",
	},
	"ecommerce": {
		"Package being opened in close-up",
		"Product rotating under studio light",
	},
	"default": {
		"Phone notification appearing",
		"Document being revealed",
	},
}

// cameraMoves keys a character scene's camera phrase by aggression level.
var cameraMoves = map[model.AggressionLevel]string{
	model.LevelSoft:       "Slow push-in",
	model.LevelMedium:     "Steady dolly",
	model.LevelAggressive: "Dynamic push-in",
	model.LevelUltra:      "Fast dolly-in",
}

// intensityModifiers shape the camera language of scripted hook scenarios.
var intensityModifiers = map[model.AggressionLevel]string{
	model.LevelSoft:       "Smooth and controlled",
	model.LevelMedium:     "Dynamic and impactful",
	model.LevelAggressive: "Intense and visceral",
	model.LevelUltra:      "Extreme high-impact",
}

// brollCameraStyles keys the B-roll camera phrase by aggression level.
var brollCameraStyles = map[model.AggressionLevel]string{
	model.LevelSoft:       "Smooth glides",
	model.LevelMedium:     "Steady tracking",
	model.LevelAggressive: "Dynamic shots",
	model.LevelUltra:      "Intense rushes",
}

// Builder assembles scene prompts for one run. The vertical selects the
// pattern-interrupt table used for character scene hooks.
type Builder struct {
	vertical string
}

// NewBuilder returns a Builder for the given ad vertical. Unknown verticals
// use the default interrupt set.
func NewBuilder(vertical string) *Builder {
	return &Builder{vertical: vertical}
}

// BuildAllScenePrompts produces one PromptRecord per modified scene, in scene
// order, with the full transcript distributed into per-scene segments first.
func (b *Builder) BuildAllScenePrompts(variant *model.AggressionVariant, spokespersonDesc string, fullScript string) []*model.PromptRecord {
	scenes := variant.ModifiedScenes
	segments := DistributeScript(fullScript, scenes)

	out := make([]*model.PromptRecord, 0, len(scenes))
	for i, scene := range scenes {
		segment := fullScript
		if i < len(segments) {
			segment = segments[i]
		}
		out = append(out, &model.PromptRecord{
			SceneNumber:   scene.SceneNumber,
			Timestamp:     scene.TimestampRange,
			Purpose:       scene.Purpose,
			Prompt:        b.BuildScenePrompt(scene, variant.VariantLevel, spokespersonDesc, segment),
			ScriptSegment: segment,
			HasCharacter:  scene.HasCharacter,
		})
	}
	return out
}

// BuildScenePrompt dispatches a single scene into its prompt archetype.
func (b *Builder) BuildScenePrompt(scene *model.ModifiedScene, level model.AggressionLevel, spokespersonDesc string, script string) string {
	switch {
	case scene.Type == model.SceneTypeExtremeHook:
		return b.buildHookScenarioPrompt(scene, level)
	case !scene.HasCharacter:
		return b.buildBrollPrompt(scene, level, script)
	default:
		return b.buildCharacterPrompt(scene, level, spokespersonDesc, script)
	}
}

// buildCharacterPrompt assembles a spoken-to-camera scene: pattern-interrupt
// hook, condensed character, setting, quoted dialogue, camera phrase, and the
// technical suffix.
func (b *Builder) buildCharacterPrompt(scene *model.ModifiedScene, level model.AggressionLevel, spokespersonDesc string, script string) string {
	charShort := CondenseCharacter(spokespersonDesc)

	setting := scene.Setting
	if setting == "" {
		setting = "modern home office, soft lighting"
	}
	// Keep setting concise, first clause only.
	if idx := strings.Index(setting, ","); idx >= 0 {
		setting = setting[:idx]
	}

	interrupts, ok := patternInterrupts[b.vertical]
	if !ok {
		interrupts = patternInterrupts["default"]
	}
	hook := interrupts[0]
	if scene.SceneNumber > 0 {
		hook = interrupts[(scene.SceneNumber-1)%len(interrupts)]
	}

	emotion := scene.Emotion
	if emotion == "" {
		emotion = "confident"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s. %s, %s.", hook, charShort, setting)
	fmt.Fprintf(&sb, "\n%s: %q", capitalize(emotion), script)
	fmt.Fprintf(&sb, "\n%s. Eye contact. Natural gestures. UGC testimonial style.", cameraMoves[level])
	sb.WriteString("\n4K. 12 seconds.")
	return sb.String()
}

// buildHookScenarioPrompt renders a precomposed extreme-hook scenario with
// its timed beat breakdown, audio design, lighting, and text overlay. The
// rendered text states the no-presence constraint without using any of the
// words the object-only validator scans for.
func (b *Builder) buildHookScenarioPrompt(scene *model.ModifiedScene, level model.AggressionLevel) string {
	camera := scene.Camera
	if camera == "" {
		camera = "Smooth cinematic movement"
	}
	lighting := scene.Lighting
	if lighting == "" {
		lighting = "Cinematic lighting"
	}
	audio := scene.Audio
	if audio == "" {
		audio = "Dramatic sound design"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "EXTREME VISUAL HOOK: %s\n\n", scene.Visual)
	sb.WriteString("Unpopulated frame. Environment and object focused cinematography only.\n\n")
	fmt.Fprintf(&sb, "CAMERA: %s. %s movement.\n\n", camera, intensityModifiers[level])
	if scene.BeatBreakdown != "" {
		fmt.Fprintf(&sb, "TIMING: %s\n\n", scene.BeatBreakdown)
	}
	fmt.Fprintf(&sb, "LIGHTING: %s. Cinematic color grading.\n\n", lighting)
	fmt.Fprintf(&sb, "AUDIO DESIGN: %s. Build tension to impact.\n\n", audio)
	if scene.TextOverlay != "" {
		fmt.Fprintf(&sb, "TEXT OVERLAY (appears mid-scene): %q\n\n", scene.TextOverlay)
	}
	fmt.Fprintf(&sb, "EMOTION: %s. Maximum visual impact.\n\n", scene.Emotion)
	sb.WriteString("SHOT STYLE: Cinematic commercial. High production value. Dramatic reveals.\n\n")
	sb.WriteString("4K cinematic. 12 seconds.")
	return sb.String()
}

// buildBrollPrompt assembles an object-only scene. The fixed wording here is
// scanned by the validator exactly like model-sourced text, so it must never
// use any word from the object-only forbidden list.
func (b *Builder) buildBrollPrompt(scene *model.ModifiedScene, level model.AggressionLevel, script string) string {
	visualDesc := scene.Visual
	if visualDesc == "" && len(scene.VisualElements) > 0 {
		visualDesc = strings.Join(scene.VisualElements, ", ")
	}
	if visualDesc == "" {
		visualDesc = "cinematic footage"
	}

	mood := scene.Emotion
	if mood == "" {
		mood = "professional"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", visualDesc)
	sb.WriteString("Environment-only shots. Visuals of vehicles, objects, documents, settings.\n\n")
	fmt.Fprintf(&sb, "%s. Mood: %s. Cinematic grade.\n\n", brollCameraStyles[level], mood)
	fmt.Fprintf(&sb, "Voiceover: %q\n\n", script)
	sb.WriteString("Symbolic storytelling through objects and environment only.\n\n")
	sb.WriteString("4K cinematic. 12 seconds.")
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

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

package prompts

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// Generation backend prompt limits.
const (
	MaxPromptLength = 2000
	MaxTextOverlays = 5
	MaxAudioCues    = 10
	maxSceneSeconds = 12
)

// contradictoryEmotions lists word pairs that must never co-occur in one
// prompt. The coherent emotion remap upstream keeps built prompts clean; the
// check catches model-sourced text that slips both words in.
var contradictoryEmotions = [][2]string{
	{"frustrated", "excited"},
	{"calm", "explosive"},
	{"gentle", "confrontational"},
	{"relaxed", "urgent"},
	{"thoughtful", "impulsive"},
}

// brollForbidden matches any person-referencing word. Object-only scenes
// must describe objects, vehicles, documents, and settings, never people.
var brollForbidden = regexp.MustCompile(`\b(person|people|man|woman|face|character|spokesperson|actor|he|she|human|individual)\b`)

var (
	overlayTimedPattern = regexp.MustCompile(`(?i)at \d+:\d+.*?:.*?".*?"`)
	overlayTimingRe     = regexp.MustCompile(`(?i)at (\d+):(\d+)`)
	audioTimingRe       = regexp.MustCompile(`(?i)(?:at|from|start) (\d+):(\d+)`)
)

var jarringPatterns = []struct {
	re      *regexp.Regexp
	message string
}{
	{regexp.MustCompile(`(?s)extreme close-up.*extreme close-up`), "two extreme close-ups in sequence"},
	{regexp.MustCompile(`(?s)whip pan.*whip pan`), "multiple whip pans in sequence"},
	{regexp.MustCompile(`(?s)crash zoom.*crash zoom`), "multiple crash zooms in sequence"},
}

// SceneInfo is the per-scene metadata the validator dispatches on.
type SceneInfo struct {
	HasCharacter bool
	Purpose      string
}

// Validator checks prompts against the generation backend's known limits.
// Every check runs unconditionally and independently; errors flip validity,
// warnings never do. The report is a quality signal, not a hard gate, unless
// the caller enables strict validation.
type Validator struct{}

// NewValidator returns a prompt validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePrompt runs every check against one prompt and returns its
// validity along with all accumulated warnings and errors.
func (v *Validator) ValidatePrompt(prompt string, info SceneInfo) (bool, []string, []string) {
	var warnings, errors []string

	warnings, errors = v.checkLength(prompt, warnings, errors)
	errors = v.checkEmotions(prompt, errors)
	if info.HasCharacter {
		warnings = v.checkCharacterStructure(prompt, warnings)
	} else {
		warnings, errors = v.checkObjectOnlyStructure(prompt, warnings, errors)
	}
	warnings = v.checkRequiredElements(prompt, warnings)
	errors = v.checkTextOverlays(prompt, errors)
	warnings = v.checkAudioTiming(prompt, warnings)
	warnings = v.checkShotTransitions(prompt, warnings)

	return len(errors) == 0, warnings, errors
}

// ValidateAll aggregates per-scene verdicts for a variant's prompt list.
func (v *Validator) ValidateAll(records []*model.PromptRecord) *model.ValidationReport {
	report := &model.ValidationReport{
		TotalPrompts: len(records),
		SceneReports: make([]*model.SceneValidationReport, 0, len(records)),
	}
	for i, record := range records {
		valid, warnings, errors := v.ValidatePrompt(record.Prompt, SceneInfo{
			HasCharacter: record.HasCharacter,
			Purpose:      record.Purpose,
		})
		sceneNumber := record.SceneNumber
		if sceneNumber == 0 {
			sceneNumber = i + 1
		}
		report.SceneReports = append(report.SceneReports, &model.SceneValidationReport{
			SceneNumber:  sceneNumber,
			Valid:        valid,
			Warnings:     warnings,
			Errors:       errors,
			PromptLength: utf8.RuneCountInString(record.Prompt),
		})
		if valid {
			report.ValidCount++
		} else {
			report.InvalidCount++
		}
		report.WarningsCount += len(warnings)
		report.ErrorsCount += len(errors)
	}
	return report
}

// checkLength enforces the prompt cap in characters, not bytes, so prompts
// with multi-byte text are not penalized for their encoding.
func (v *Validator) checkLength(prompt string, warnings, errors []string) ([]string, []string) {
	length := utf8.RuneCountInString(prompt)
	switch {
	case length > MaxPromptLength:
		errors = append(errors, fmt.Sprintf(
			"prompt too long: %d chars (max %d), condense descriptions", length, MaxPromptLength))
	case float64(length) > float64(MaxPromptLength)*0.8:
		warnings = append(warnings, fmt.Sprintf(
			"prompt near limit: %d chars (max %d), consider condensing", length, MaxPromptLength))
	}
	return warnings, errors
}

func (v *Validator) checkEmotions(prompt string, errors []string) []string {
	lowered := strings.ToLower(prompt)
	for _, pair := range contradictoryEmotions {
		if strings.Contains(lowered, pair[0]) && strings.Contains(lowered, pair[1]) {
			errors = append(errors, fmt.Sprintf(
				"contradictory emotions detected: %q and %q, use a single coherent emotion", pair[0], pair[1]))
		}
	}
	return errors
}

func (v *Validator) checkCharacterStructure(prompt string, warnings []string) []string {
	lowered := strings.ToLower(prompt)
	if !containsAny(lowered, "female", "male", "person", "age") {
		warnings = append(warnings, "no clear character description found, add age, gender, key traits")
	}
	if !containsAny(lowered, "camera", "shot", "dolly", "push", "pan") {
		warnings = append(warnings, "no camera direction specified, add camera movement for visual interest")
	}
	if !strings.Contains(prompt, `"`) {
		warnings = append(warnings, "no quoted script found, include dialogue for clarity")
	}
	return warnings
}

func (v *Validator) checkObjectOnlyStructure(prompt string, warnings, errors []string) ([]string, []string) {
	lowered := strings.ToLower(prompt)
	if found := uniqueMatches(brollForbidden, lowered); len(found) > 0 {
		errors = append(errors, fmt.Sprintf(
			"object-only scene contains people references: %s", strings.Join(found, ", ")))
	}
	if !containsAny(lowered, "visual", "show", "reveal", "camera", "footage") {
		warnings = append(warnings, "limited visual storytelling, add more cinematic description")
	}
	return warnings, errors
}

func (v *Validator) checkRequiredElements(prompt string, warnings []string) []string {
	lowered := strings.ToLower(prompt)
	if !containsAny(lowered, "duration", "12 second") {
		warnings = append(warnings, "no duration specified")
	}
	if !strings.Contains(lowered, "style") {
		warnings = append(warnings, "no style specified")
	}
	if !containsAny(lowered, "quality", "4k") {
		warnings = append(warnings, "no quality specified")
	}
	return warnings
}

func (v *Validator) checkTextOverlays(prompt string, errors []string) []string {
	lowered := strings.ToLower(prompt)
	count := strings.Count(lowered, "text ") +
		strings.Count(lowered, "overlay") +
		len(overlayTimedPattern.FindAllString(prompt, -1))
	if count > MaxTextOverlays {
		errors = append(errors, fmt.Sprintf(
			"too many text overlays: %d (max %d), reduce text for readability", count, MaxTextOverlays))
	}

	for _, m := range overlayTimingRe.FindAllStringSubmatch(prompt, -1) {
		mins, _ := strconv.Atoi(m[1])
		secs, _ := strconv.Atoi(m[2])
		if mins > 0 || secs > maxSceneSeconds {
			errors = append(errors, fmt.Sprintf(
				"invalid text timing %s:%s, must fall within 0:00-0:%02d", m[1], m[2], maxSceneSeconds))
		}
	}
	return errors
}

func (v *Validator) checkAudioTiming(prompt string, warnings []string) []string {
	matches := audioTimingRe.FindAllStringSubmatch(prompt, -1)
	if len(matches) > MaxAudioCues {
		warnings = append(warnings, fmt.Sprintf("many audio cues: %d, may sound cluttered", len(matches)))
	}

	times := make([]int, 0, len(matches))
	for _, m := range matches {
		mins, _ := strconv.Atoi(m[1])
		secs, _ := strconv.Atoi(m[2])
		times = append(times, mins*60+secs)
	}
	sort.Ints(times)
	for i := 0; i+1 < len(times); i++ {
		if times[i+1]-times[i] < 1 {
			warnings = append(warnings, fmt.Sprintf(
				"audio cues very close together (%ds and %ds), may sound rushed", times[i], times[i+1]))
		}
	}
	return warnings
}

func (v *Validator) checkShotTransitions(prompt string, warnings []string) []string {
	lowered := strings.ToLower(prompt)
	for _, p := range jarringPatterns {
		if p.re.MatchString(lowered) {
			warnings = append(warnings, fmt.Sprintf(
				"potentially jarring transition: %s, vary shot types", p.message))
		}
	}
	return warnings
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func uniqueMatches(re *regexp.Regexp, s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range re.FindAllString(s, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

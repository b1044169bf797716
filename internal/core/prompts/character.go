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
	"regexp"
	"strings"
)

// Character condensation is a flat keyword decision table, first match wins.
// The generation backend limits how much character description survives into
// the render, so a long free-text spokesperson description is boiled down to
// "gender, age, hair, clothing" with unmatched fields simply omitted.

var ageRangePattern = regexp.MustCompile(`(\d+)\s*(?:-|to)\s*(\d+)`)
var agePattern = regexp.MustCompile(`\d+`)

var hairKeywords = []struct{ keyword, label string }{
	{"brown hair", "brown hair"},
	{"blonde", "blonde hair"},
	{"blond", "blonde hair"},
	{"black hair", "black hair"},
	{"wavy", "wavy hair"},
	{"curly", "curly hair"},
}

var clothingKeywords = []struct{ keyword, label string }{
	{"white t-shirt", "white tee"},
	{"white tee", "white tee"},
	{"blouse", "blouse"},
	{"casual", "casual outfit"},
}

// CondenseCharacter reduces a free-text spokesperson description to a short
// comma-joined essentials string. Every extraction is a heuristic keyword or
// regex scan; nothing here calls a model, and fields that do not match are
// dropped rather than replaced with placeholders.
func CondenseCharacter(description string) string {
	lowered := strings.ToLower(description)

	parts := []string{extractGender(lowered), extractAge(description, lowered)}
	if hair := firstMatch(lowered, hairKeywords); hair != "" {
		parts = append(parts, hair)
	}
	if clothing := firstMatch(lowered, clothingKeywords); clothing != "" {
		parts = append(parts, clothing)
	}
	return strings.Join(parts, ", ")
}

func extractAge(description, lowered string) string {
	if m := ageRangePattern.FindStringSubmatch(description); m != nil {
		return m[1] + "-" + m[2]
	}
	if m := agePattern.FindString(description); m != "" {
		return m
	}
	// Bucketed guess from decade phrases, defaulting to 30.
	if strings.Contains(lowered, "20s") {
		return "25"
	}
	if strings.Contains(lowered, "30s") {
		return "30"
	}
	return "30"
}

func extractGender(lowered string) string {
	// "female" and "woman" must be checked before their substrings
	// "male" and "man".
	if strings.Contains(lowered, "female") || strings.Contains(lowered, "woman") {
		return "female"
	}
	if strings.Contains(lowered, "male") || strings.Contains(lowered, "man") {
		return "male"
	}
	return "person"
}

func firstMatch(lowered string, table []struct{ keyword, label string }) string {
	for _, entry := range table {
		if strings.Contains(lowered, entry.keyword) {
			return entry.label
		}
	}
	return ""
}

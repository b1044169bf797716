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
	"strings"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// SplitSentences breaks a transcript into sentences on terminal punctuation.
// Runs of punctuation stay attached to their sentence, and trailing text with
// no terminator becomes a final sentence so no words are dropped.
func SplitSentences(script string) []string {
	trimmed := strings.TrimSpace(script)
	if trimmed == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(trimmed); i++ {
		if !isTerminator(trimmed[i]) {
			continue
		}
		end := i + 1
		for end < len(trimmed) && isTerminator(trimmed[end]) {
			end++
		}
		if s := strings.TrimSpace(trimmed[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		for end < len(trimmed) && isSpace(trimmed[end]) {
			end++
		}
		start = end
		i = end - 1
	}
	if start < len(trimmed) {
		if s := strings.TrimSpace(trimmed[start:]); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func isTerminator(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// DistributeScript allocates the transcript's sentences across scenes in
// narrative order. Every scene gets the integer-division base count, scenes
// whose purpose mentions hook or cta get one extra sentence, and any
// remainder is appended to the final scene's segment. A single-scene list
// gets only the first one or two sentences, a concise hook rather than the
// whole transcript.
func DistributeScript(script string, scenes []*model.ModifiedScene) []string {
	sentences := SplitSentences(script)

	if len(scenes) == 0 {
		return nil
	}
	if len(scenes) == 1 {
		n := len(sentences)
		if n > 2 {
			n = 2
		}
		return []string{strings.Join(sentences[:n], " ")}
	}

	base := len(sentences) / len(scenes)
	parts := make([]string, 0, len(scenes))
	idx := 0
	for _, scene := range scenes {
		count := base
		purpose := strings.ToLower(scene.Purpose)
		if strings.Contains(purpose, "hook") || strings.Contains(purpose, "cta") {
			count++
		}
		end := idx + count
		if end > len(sentences) {
			end = len(sentences)
		}
		parts = append(parts, strings.Join(sentences[idx:end], " "))
		idx = end
	}
	if idx < len(sentences) {
		tail := strings.Join(sentences[idx:], " ")
		if parts[len(parts)-1] == "" {
			parts[len(parts)-1] = tail
		} else {
			parts[len(parts)-1] += " " + tail
		}
	}
	return parts
}

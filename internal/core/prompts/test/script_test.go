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
// This file covers sentence splitting and the script distribution rules that
// decide how much of the transcript each scene speaks.
package prompts_test

import (
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenesWithPurposes builds a minimal modified-scene list with the given
// narrative purposes, numbered in order.
func scenesWithPurposes(purposes ...string) []*model.ModifiedScene {
	out := make([]*model.ModifiedScene, 0, len(purposes))
	for i, purpose := range purposes {
		out = append(out, &model.ModifiedScene{
			Scene: model.Scene{SceneNumber: i + 1, Purpose: purpose},
		})
	}
	return out
}

// TestSplitSentences verifies the splitting rules: terminal punctuation ends
// a sentence, punctuation runs stay attached, and a trailing fragment with no
// terminator still becomes a sentence so no words are lost.
func TestSplitSentences(t *testing.T) {
	assert.Equal(t,
		[]string{"One.", "Two!", "Three?"},
		prompts.SplitSentences("One. Two! Three?"))

	// Runs of punctuation stay with their sentence.
	assert.Equal(t,
		[]string{"Wait...", "Really?!", "Yes."},
		prompts.SplitSentences("Wait... Really?! Yes."))

	// A trailing fragment without a terminator is kept.
	assert.Equal(t,
		[]string{"Done.", "and one more thing"},
		prompts.SplitSentences("Done. and one more thing"))

	// Empty and whitespace-only inputs yield nothing.
	assert.Nil(t, prompts.SplitSentences(""))
	assert.Nil(t, prompts.SplitSentences("   "))
}

// TestDistributeScriptFavorsHookAndCta verifies the allocation rule for a
// multi-scene list: every scene gets the integer-division base count, while
// hook and cta scenes get one extra sentence each.
func TestDistributeScriptFavorsHookAndCta(t *testing.T) {
	scenes := scenesWithPurposes("hook", "problem", "cta")
	parts := prompts.DistributeScript("One. Two. Three scenes total here.", scenes)

	require.Len(t, parts, 3)
	// Three sentences over three scenes: base is 1, and the hook's extra
	// sentence drains the pool early, so the cta ends up empty.
	assert.Equal(t, "One. Two.", parts[0])
	assert.Equal(t, "Three scenes total here.", parts[1])
	assert.Equal(t, "", parts[2])

	// Every input sentence landed in exactly one segment.
	assert.Equal(t, "One. Two. Three scenes total here.",
		strings.TrimSpace(strings.Join(parts, " ")))
}

// TestDistributeScriptSingleSceneIsConcise verifies that a single-scene list
// gets at most the first two sentences, not the whole transcript.
func TestDistributeScriptSingleSceneIsConcise(t *testing.T) {
	scenes := scenesWithPurposes("hook")
	parts := prompts.DistributeScript("First. Second. Third. Fourth.", scenes)

	require.Len(t, parts, 1)
	assert.Equal(t, "First. Second.", parts[0])
}

// TestDistributeScriptRemainderGoesToLastScene verifies that sentences left
// over after the base allocation are appended to the final scene's segment.
func TestDistributeScriptRemainderGoesToLastScene(t *testing.T) {
	scenes := scenesWithPurposes("problem", "solution")
	parts := prompts.DistributeScript("A. B. C. D. E.", scenes)

	require.Len(t, parts, 2)
	assert.Equal(t, "A. B.", parts[0])
	assert.Equal(t, "C. D. E.", parts[1])
}

// TestDistributeScriptNoScenes verifies the degenerate inputs: no scenes
// yields no segments.
func TestDistributeScriptNoScenes(t *testing.T) {
	assert.Nil(t, prompts.DistributeScript("Anything.", nil))
}

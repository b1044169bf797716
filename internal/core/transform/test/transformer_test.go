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

// Package transform_test contains unit tests for the structure transform:
// vertical detection order, the first-scene hook replacement, and the
// scenario provider fallback chain.
package transform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// analysisWithTranscript builds the minimal analysis vertical detection
// operates on.
func analysisWithTranscript(product, transcript string) *model.NormalizedAnalysis {
	return &model.NormalizedAnalysis{
		Product:      product,
		Script:       &model.Script{FullTranscript: transcript},
		Spokesperson: &model.Spokesperson{},
		SceneBreakdown: []*model.Scene{
			{SceneNumber: 1, Purpose: "hook", HasCharacter: true, Emotion: "frustrated", VisualElements: []string{"bill"}},
			{SceneNumber: 2, Purpose: "cta", Emotion: "confident"},
		},
	}
}

// TestDetectVerticalOrder verifies the built-in rule order: solar terms are
// the most specific and must win over the broader insurance and finance
// vocabularies even when both match.
func TestDetectVerticalOrder(t *testing.T) {
	// "electric bill" and "coverage" both appear; solar is checked first.
	got := transform.DetectVertical(
		analysisWithTranscript("solar panels", "My electric bill doubled even with full coverage."), nil)
	assert.Equal(t, "solar", got)

	got = transform.DetectVertical(
		analysisWithTranscript("car insurance", "My premium doubled after one claim."), nil)
	assert.Equal(t, "auto_insurance", got)

	// Nothing matches: the default wins.
	got = transform.DetectVertical(
		analysisWithTranscript("mystery", "nothing recognizable in here"), nil)
	assert.Equal(t, transform.DefaultVertical, got)
}

// TestDetectVerticalConfiguredFirst verifies that config-supplied verticals
// take precedence over the built-in rules and are checked in priority order.
func TestDetectVerticalConfiguredFirst(t *testing.T) {
	configured := map[string]cloud.Vertical{
		"pets":    {Name: "Pets", Priority: 2, Keywords: []string{"dog"}},
		"premium": {Name: "Premium Goods", Priority: 1, Keywords: []string{"electric bill"}},
	}

	// "electric bill" matches both the configured vertical and the built-in
	// solar rule; the configured one wins.
	got := transform.DetectVertical(
		analysisWithTranscript("", "my electric bill and my dog"), configured)
	assert.Equal(t, "premium", got)
}

// TestTransformReplacesFirstScene verifies the hook replacement: the first
// scene becomes a scripted extreme-hook scenario with no character, while the
// remaining scenes keep their beats and the input analysis is untouched.
func TestTransformReplacesFirstScene(t *testing.T) {
	analysis := analysisWithTranscript("solar panels", "My electric bill doubled.")
	transformer := transform.NewTransformer(42)

	out, err := transformer.Transform(context.Background(), analysis, "solar")
	require.NoError(t, err)

	require.Len(t, out.SceneBreakdown, 2)
	hook := out.SceneBreakdown[0]
	assert.Equal(t, model.SceneTypeExtremeHook, hook.Type)
	assert.Equal(t, "hook", hook.Purpose)
	assert.False(t, hook.HasCharacter)
	assert.Equal(t, 12.0, hook.DurationSeconds)
	assert.NotEmpty(t, hook.Visual)
	// Scene numbering is preserved so downstream ordering holds.
	assert.Equal(t, 1, hook.SceneNumber)
	assert.Equal(t, 2, out.SceneBreakdown[1].SceneNumber)

	// The input analysis was deep-copied, not mutated.
	assert.Empty(t, analysis.SceneBreakdown[0].Type)
	assert.True(t, analysis.SceneBreakdown[0].HasCharacter)
	out.SceneBreakdown[1].Emotion = "changed"
	assert.Equal(t, "confident", analysis.SceneBreakdown[1].Emotion)
}

// TestTransformNoScenes verifies that an empty scene breakdown is an error
// the caller can recover from.
func TestTransformNoScenes(t *testing.T) {
	transformer := transform.NewTransformer(1)
	_, err := transformer.Transform(context.Background(),
		&model.NormalizedAnalysis{Script: &model.Script{}}, "solar")
	assert.Error(t, err)
}

// failingProvider always errors, standing in for a creative-provider outage.
type failingProvider struct{}

func (failingProvider) GenerateCustomScenarios(context.Context, string, *model.NormalizedAnalysis) ([]transform.ScenarioSpec, error) {
	return nil, errors.New("provider unavailable")
}

// cannedProvider returns a single recognizable scenario.
type cannedProvider struct{}

func (cannedProvider) GenerateCustomScenarios(context.Context, string, *model.NormalizedAnalysis) ([]transform.ScenarioSpec, error) {
	return []transform.ScenarioSpec{{
		Name:    "Canned",
		Visual:  "a custom scenario visual",
		Emotion: "anticipation",
	}}, nil
}

// TestTransformProviderFallback verifies the provider chain for a vertical
// with no built-in scenario table: a failing provider is skipped, the next
// one serves, and with no working providers the built-in default set still
// yields a scenario.
func TestTransformProviderFallback(t *testing.T) {
	analysis := analysisWithTranscript("gardening kit", "Grow your own herbs.")

	// The failing provider is skipped in favor of the canned one.
	transformer := transform.NewTransformer(7, failingProvider{}, cannedProvider{})
	out, err := transformer.Transform(context.Background(), analysis, "gardening")
	require.NoError(t, err)
	assert.Equal(t, "a custom scenario visual", out.SceneBreakdown[0].Visual)

	// With only failing providers, the terminal built-in set still serves.
	transformer = transform.NewTransformer(7, failingProvider{})
	out, err = transformer.Transform(context.Background(), analysis, "gardening")
	require.NoError(t, err)
	assert.Equal(t, model.SceneTypeExtremeHook, out.SceneBreakdown[0].Type)
	assert.NotEmpty(t, out.SceneBreakdown[0].Visual)
}

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

package transform

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// ScenarioProvider generates custom hook scenarios for a vertical that has
// no built-in table entry. Providers are tried in order; a provider error
// moves on to the next one rather than failing the transform.
type ScenarioProvider interface {
	GenerateCustomScenarios(ctx context.Context, vertical string, analysis *model.NormalizedAnalysis) ([]ScenarioSpec, error)
}

// BuiltinScenarioProvider serves the generic default scenario set. It sits
// last in every provider chain and never fails.
type BuiltinScenarioProvider struct{}

func (BuiltinScenarioProvider) GenerateCustomScenarios(_ context.Context, _ string, _ *model.NormalizedAnalysis) ([]ScenarioSpec, error) {
	return DefaultScenarios(), nil
}

// Transformer replaces an analysis' opening scene with an extreme-hook
// scenario. The provider chain makes the fallback path explicit: built-in
// vertical table first, then each provider in order.
type Transformer struct {
	providers []ScenarioProvider
	rng       *rand.Rand
}

// NewTransformer builds a Transformer with the given custom scenario
// providers. The built-in default set is always appended as the terminal
// fallback, so a constructed Transformer can never run out of scenarios.
func NewTransformer(seed int64, providers ...ScenarioProvider) *Transformer {
	chain := make([]ScenarioProvider, 0, len(providers)+1)
	chain = append(chain, providers...)
	chain = append(chain, BuiltinScenarioProvider{})
	return &Transformer{
		providers: chain,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Transform returns a copy of the analysis whose first scene is replaced
// with a scripted extreme-hook scenario for the vertical. The input analysis
// is never mutated. An error here is recoverable: callers continue with the
// untransformed analysis.
func (t *Transformer) Transform(ctx context.Context, analysis *model.NormalizedAnalysis, vertical string) (*model.NormalizedAnalysis, error) {
	if len(analysis.SceneBreakdown) == 0 {
		return nil, fmt.Errorf("analysis has no scenes to transform")
	}

	scenario, err := t.selectScenario(ctx, vertical, analysis)
	if err != nil {
		return nil, err
	}

	scenes := make([]*model.Scene, 0, len(analysis.SceneBreakdown))
	first := analysis.SceneBreakdown[0]
	hook := &model.Scene{
		SceneNumber:     first.SceneNumber,
		TimestampRange:  "0:00-0:12",
		DurationSeconds: 12,
		Purpose:         "hook",
		HasCharacter:    false,
		Setting:         scenario.Visual,
		Emotion:         scenario.Emotion,
		Type:            model.SceneTypeExtremeHook,
		Visual:          scenario.Visual,
		Camera:          scenario.Camera,
		TextOverlay:     scenario.TextOverlay,
		BeatBreakdown:   scenario.BeatBreakdown,
		Audio:           scenario.Audio,
		Lighting:        scenario.Lighting,
	}
	scenes = append(scenes, hook)
	for _, scene := range analysis.SceneBreakdown[1:] {
		scenes = append(scenes, scene.Clone())
	}

	out := &model.NormalizedAnalysis{
		DurationSeconds: analysis.DurationSeconds,
		Product:         analysis.Product,
		Script:          analysis.Script,
		Spokesperson:    analysis.Spokesperson,
		SceneBreakdown:  scenes,
	}
	return out, nil
}

// selectScenario picks one scenario: the vertical's built-in table when
// present, otherwise the first provider in the chain that yields a non-empty
// list.
func (t *Transformer) selectScenario(ctx context.Context, vertical string, analysis *model.NormalizedAnalysis) (ScenarioSpec, error) {
	if scenarios, ok := BuiltinScenarios(vertical); ok && len(scenarios) > 0 {
		return scenarios[t.rng.Intn(len(scenarios))], nil
	}

	var lastErr error
	for _, provider := range t.providers {
		scenarios, err := provider.GenerateCustomScenarios(ctx, vertical, analysis)
		if err != nil {
			lastErr = err
			continue
		}
		if len(scenarios) > 0 {
			return scenarios[t.rng.Intn(len(scenarios))], nil
		}
	}
	return ScenarioSpec{}, fmt.Errorf("no scenario source available for vertical %q: %w", vertical, lastErr)
}

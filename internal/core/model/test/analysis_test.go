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

// Package model_test contains unit tests for the data models defined in the
// model package. This file covers the analysis types: the spokesperson union
// decoding, scene deep copies, and the normalization round trip.
package model_test

import (
	"encoding/json"
	"testing"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSpokespersonFieldUnmarshal verifies that the spokesperson union type
// accepts all three shapes the analyzer is known to emit: a single object,
// a list of objects, and null.
func TestSpokespersonFieldUnmarshal(t *testing.T) {
	// A single object decodes into the Single slot.
	var single model.SpokespersonField
	err := json.Unmarshal([]byte(`{"physical_description": "tall man", "gender": "male"}`), &single)
	require.NoError(t, err)
	require.NotNil(t, single.Single)
	assert.Equal(t, "tall man", single.Single.PhysicalDescription)
	assert.Nil(t, single.Many)

	// A list decodes into the Many slot.
	var many model.SpokespersonField
	err = json.Unmarshal([]byte(`[{"gender": "female"}, {"gender": "male"}]`), &many)
	require.NoError(t, err)
	assert.Nil(t, many.Single)
	assert.Len(t, many.Many, 2)

	// Null decodes into neither slot without error.
	var empty model.SpokespersonField
	err = json.Unmarshal([]byte(`null`), &empty)
	require.NoError(t, err)
	assert.Nil(t, empty.Single)
	assert.Nil(t, empty.Many)
}

// TestSpokespersonFieldResolve verifies the collapse rule applied at
// normalization: a single record passes through, a list yields its first
// element, and an empty field yields an empty record rather than nil.
func TestSpokespersonFieldResolve(t *testing.T) {
	first := &model.Spokesperson{PhysicalDescription: "first"}
	second := &model.Spokesperson{PhysicalDescription: "second"}

	assert.Equal(t, first, model.SpokespersonField{Single: first}.Resolve())
	assert.Equal(t, first, model.SpokespersonField{Many: []*model.Spokesperson{first, second}}.Resolve())

	// An empty union must still resolve to a usable record.
	resolved := model.SpokespersonField{}.Resolve()
	require.NotNil(t, resolved)
	assert.Empty(t, resolved.PhysicalDescription)
}

// TestSceneClone verifies that cloning a scene produces an independent copy,
// including the visual elements slice. Variant generation relies on this to
// keep the source analysis immutable.
func TestSceneClone(t *testing.T) {
	original := &model.Scene{
		SceneNumber:    1,
		Emotion:        "frustrated",
		VisualElements: []string{"bill", "table"},
	}
	clone := original.Clone()

	// Mutating the clone must leave the original untouched.
	clone.Emotion = "excited"
	clone.VisualElements[0] = "phone"

	assert.Equal(t, "frustrated", original.Emotion)
	assert.Equal(t, "bill", original.VisualElements[0])
}

// TestNormalizeDefaults verifies that normalizing a sparse document fills in
// the optional fields so downstream stages never branch on nil: the script
// block, the spokesperson record, and the scene slice must all be non-nil.
func TestNormalizeDefaults(t *testing.T) {
	normalized := model.Normalize(&model.AnalysisDocument{DurationSeconds: 30})

	require.NotNil(t, normalized.Script)
	require.NotNil(t, normalized.Spokesperson)
	require.NotNil(t, normalized.SceneBreakdown)
	assert.Empty(t, normalized.SceneBreakdown)
	assert.Equal(t, 30.0, normalized.DurationSeconds)
}

// TestNormalizeIdempotent verifies the round-trip law: converting a
// normalized analysis back to document form and normalizing again yields an
// identical analysis. This is what makes it safe to re-run normalization on
// already-clean data.
func TestNormalizeIdempotent(t *testing.T) {
	doc := &model.AnalysisDocument{
		DurationSeconds: 30,
		Product:         "solar panels",
		Script:          &model.Script{FullTranscript: "My bill was huge. Then it was not."},
		Spokesperson: model.SpokespersonField{Many: []*model.Spokesperson{
			{PhysicalDescription: "woman in a teal blouse", Gender: "female"},
			{PhysicalDescription: "discarded candidate"},
		}},
		SceneBreakdown: []*model.Scene{
			{SceneNumber: 1, Purpose: "hook", HasCharacter: true, Emotion: "frustrated"},
			{SceneNumber: 2, Purpose: "cta", Emotion: "confident"},
		},
	}

	once := model.Normalize(doc)
	twice := model.Normalize(once.Document())

	assert.Equal(t, once, twice)
	// The list-shaped spokesperson collapsed to its first entry.
	assert.Equal(t, "woman in a teal blouse", once.Spokesperson.PhysicalDescription)
}

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
// model package. This file covers the generation-side types: job status
// transitions, the performance tier mapping, the prompt-set persistence
// round trip, and the BigQuery row encoding of a run record.
package model_test

import (
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestJobStatusTerminal verifies that only completed and failed end the
// polling loop; queued and in_progress (and anything unrecognized) keep a
// job in the pending set.
func TestJobStatusTerminal(t *testing.T) {
	assert.True(t, model.JobStatusCompleted.Terminal())
	assert.True(t, model.JobStatusFailed.Terminal())
	assert.False(t, model.JobStatusQueued.Terminal())
	assert.False(t, model.JobStatusInProgress.Terminal())
	assert.False(t, model.JobStatus("verifying").Terminal())
}

// TestAggressionLevelValid verifies the closed level set and its fixed
// generation order.
func TestAggressionLevelValid(t *testing.T) {
	for _, level := range model.AggressionLevels() {
		assert.True(t, level.Valid())
	}
	assert.False(t, model.AggressionLevel("extreme").Valid())

	// The order is part of the contract: variant output follows it.
	assert.Equal(t, []model.AggressionLevel{
		model.LevelSoft, model.LevelMedium, model.LevelAggressive, model.LevelUltra,
	}, model.AggressionLevels())
}

// TestPredictPerformance verifies the tier boundaries of the overall-score
// mapping, including the exact threshold values.
func TestPredictPerformance(t *testing.T) {
	assert.Equal(t, model.PerformanceHigh, model.PredictPerformance(9.2))
	assert.Equal(t, model.PerformanceHigh, model.PredictPerformance(8.5))
	assert.Equal(t, model.PerformanceMedium, model.PredictPerformance(8.4))
	assert.Equal(t, model.PerformanceMedium, model.PredictPerformance(7.0))
	assert.Equal(t, model.PerformanceModerate, model.PredictPerformance(6.9))
	assert.Equal(t, model.PerformanceModerate, model.PredictPerformance(5.5))
	assert.Equal(t, model.PerformanceLow, model.PredictPerformance(5.4))
	assert.Equal(t, model.PerformanceLow, model.PredictPerformance(0))
}

// TestPromptSetSaveLoad verifies that a prompt set written to disk loads back
// into the same shape, preserving the per-level ordering of records.
func TestPromptSetSaveLoad(t *testing.T) {
	set := model.PromptSet{
		model.LevelSoft: {
			{SceneNumber: 1, Prompt: "opening scene", HasCharacter: true},
			{SceneNumber: 2, Prompt: "closing scene"},
		},
		model.LevelUltra: {
			{SceneNumber: 1, Prompt: "explosive opening"},
		},
	}

	path := filepath.Join(t.TempDir(), "prompts.json")
	require.NoError(t, set.Save(path))

	loaded, err := model.LoadPromptSet(path)
	require.NoError(t, err)
	assert.Equal(t, set, loaded)
}

// TestRunRecordSave verifies the ValueSaver encoding of a run row: the insert
// id must be the run id so streaming retries stay idempotent, and the variant
// slice must flatten into repeated records.
func TestRunRecordSave(t *testing.T) {
	record := &model.RunRecord{
		RunID:      "run-123",
		SourceURI:  "gs://source_ad_resources/ad.mp4",
		Vertical:   "solar",
		SceneCount: 4,
		StartTime:  time.Now().Add(-time.Minute),
		EndTime:    time.Now(),
		Status:     "partial",
		VariantRecords: []*model.RunVariantRecord{
			{Level: "soft", Success: true, SceneCount: 4, OverallScore: 7.8},
			{Level: "ultra", Success: false, SceneCount: 4, FailedScenes: 2},
		},
	}

	row, insertID, err := record.Save()
	require.NoError(t, err)
	assert.Equal(t, "run-123", insertID)
	assert.Equal(t, bigquery.Value("run-123"), row["run_id"])
	assert.Equal(t, bigquery.Value("partial"), row["status"])

	variants, ok := row["variants"].([]bigquery.Value)
	require.True(t, ok)
	require.Len(t, variants, 2)
	first, ok := variants[0].(map[string]bigquery.Value)
	require.True(t, ok)
	assert.Equal(t, bigquery.Value("soft"), first["level"])
	assert.Equal(t, bigquery.Value(true), first["success"])
}

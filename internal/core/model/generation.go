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

package model

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// JobStatus is the lifecycle state of one text-to-video job as reported by
// the generation backend. Any status string the backend returns outside this
// set is treated as still pending.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status ends the polling loop for a job.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobHandle is the backend's acknowledgement of a submitted job.
type JobHandle struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
}

// JobState is a point-in-time snapshot of a running job, returned by the
// backend's status endpoint.
type JobState struct {
	ID       string    `json:"id"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress,omitempty"`
	Error    *JobError `json:"error,omitempty"`
}

// JobError carries the backend's failure detail for a failed job.
type JobError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// GenerationJob tracks one scene's job from submission to terminal state.
// SceneNumber ties the job back to its prompt so results can be ordered
// regardless of completion order.
type GenerationJob struct {
	SceneNumber int
	Prompt      *PromptRecord
	Handle      *JobHandle
	Status      JobStatus
	Progress    int // last rendering percent reported by the backend
	OutputFile  string
	Err         error
}

// SceneResult is the per-scene outcome reported to callers. Failed denotes a
// scene whose job submission or polling ended in error; the rest of the batch
// is unaffected.
type SceneResult struct {
	SceneNumber int    `json:"scene_number"`
	Status      string `json:"status"`
	JobID       string `json:"job_id,omitempty"`
	OutputFile  string `json:"output_file,omitempty"`
	Error       string `json:"error,omitempty"`
}

// VariantResult is the outcome of generating, assembling, and evaluating one
// aggression variant. Success is true only when every scene completed.
type VariantResult struct {
	Level        AggressionLevel `json:"level"`
	Success      bool            `json:"success"`
	SceneResults []*SceneResult  `json:"scene_results"`
	AssembledURI string          `json:"assembled_uri,omitempty"`
	Evaluation   *Evaluation     `json:"evaluation,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// Evaluation holds the creative review of an assembled variant. Ratings are
// on a 1 to 10 scale; PredictedPerformance is derived from OverallScore.
type Evaluation struct {
	HookStrength         float64 `json:"hook_strength"`
	PacingScore          float64 `json:"pacing_score"`
	MessageClarity       float64 `json:"message_clarity"`
	CallToActionScore    float64 `json:"call_to_action_score"`
	OverallScore         float64 `json:"overall_score"`
	PredictedPerformance string  `json:"predicted_performance"`
	Notes                string  `json:"notes,omitempty"`
}

// Performance tiers derived from an evaluation's overall score.
const (
	PerformanceHigh     = "High"
	PerformanceMedium   = "Medium"
	PerformanceModerate = "Moderate"
	PerformanceLow      = "Low"
)

// PredictPerformance maps an overall score to its performance tier.
func PredictPerformance(overall float64) string {
	switch {
	case overall >= 8.5:
		return PerformanceHigh
	case overall >= 7.0:
		return PerformanceMedium
	case overall >= 5.5:
		return PerformanceModerate
	default:
		return PerformanceLow
	}
}

// RunRecord is the BigQuery row persisted for each pipeline run. One row per
// run; per-variant outcomes are flattened into repeated records.
type RunRecord struct {
	RunID          string              `bigquery:"run_id" json:"run_id"`
	SourceURI      string              `bigquery:"source_uri" json:"source_uri"`
	Vertical       string              `bigquery:"vertical" json:"vertical"`
	SceneCount     int                 `bigquery:"scene_count" json:"scene_count"`
	StartTime      time.Time           `bigquery:"start_time" json:"start_time"`
	EndTime        time.Time           `bigquery:"end_time" json:"end_time"`
	Status         string              `bigquery:"status" json:"status"`
	VariantRecords []*RunVariantRecord `bigquery:"variants" json:"variants"`
}

// RunVariantRecord is the flattened per-variant slice of a RunRecord.
type RunVariantRecord struct {
	Level        string  `bigquery:"level" json:"level"`
	Success      bool    `bigquery:"success" json:"success"`
	SceneCount   int     `bigquery:"scene_count" json:"scene_count"`
	FailedScenes int     `bigquery:"failed_scenes" json:"failed_scenes"`
	AssembledURI string  `bigquery:"assembled_uri" json:"assembled_uri"`
	OverallScore float64 `bigquery:"overall_score" json:"overall_score"`
}

// Save implements the bigquery.ValueSaver interface so run rows stream with
// the insert id set to the run id, making retries idempotent.
func (r *RunRecord) Save() (map[string]bigquery.Value, string, error) {
	variants := make([]bigquery.Value, 0, len(r.VariantRecords))
	for _, v := range r.VariantRecords {
		variants = append(variants, map[string]bigquery.Value{
			"level":         v.Level,
			"success":       v.Success,
			"scene_count":   v.SceneCount,
			"failed_scenes": v.FailedScenes,
			"assembled_uri": v.AssembledURI,
			"overall_score": v.OverallScore,
		})
	}
	row := map[string]bigquery.Value{
		"run_id":      r.RunID,
		"source_uri":  r.SourceURI,
		"vertical":    r.Vertical,
		"scene_count": r.SceneCount,
		"start_time":  r.StartTime,
		"end_time":    r.EndTime,
		"status":      r.Status,
		"variants":    variants,
	}
	return row, r.RunID, nil
}

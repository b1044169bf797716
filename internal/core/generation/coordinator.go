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

// Package generation coordinates remote text-to-video jobs for one variant.
// The coordinator fans out one job per scene prompt, then runs a cooperative
// poll loop over the pending set until every job reaches a terminal state.
// The remote service does the actual parallel rendering; locally there is
// nothing to gain from a goroutine per job, so the loop sweeps all pending
// jobs on a fixed interval instead.
//
// Failure isolation is per scene. A submission or poll failure marks that
// scene failed and leaves its siblings untouched; the variant's success flag
// aggregates, it never aborts.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/progress"
)

// Backend is the remote text-to-video service contract. SoraClient is the
// production implementation; tests substitute a scripted fake.
type Backend interface {
	CreateVideo(ctx context.Context, prompt string) (*model.JobHandle, error)
	GetVideoStatus(ctx context.Context, jobID string) (*model.JobState, error)
	DownloadVideo(ctx context.Context, jobID string, destPath string) error
	PollInterval() time.Duration
	MaxPollDuration() time.Duration
}

// Coordinator drives one variant's scene jobs from submission to downloaded
// artifacts. It is safe to run coordinators for different variants
// concurrently; they share nothing but the progress reporter, which is
// append-only.
type Coordinator struct {
	backend   Backend
	reporter  progress.Reporter
	logger    *slog.Logger
	outputDir string
}

// NewCoordinator creates a Coordinator writing downloaded clips to outputDir.
func NewCoordinator(backend Backend, reporter progress.Reporter, logger *slog.Logger, outputDir string) *Coordinator {
	return &Coordinator{
		backend:   backend,
		reporter:  reporter,
		logger:    logger,
		outputDir: outputDir,
	}
}

// GenerateVariantParallel submits every prompt immediately, polls the pending
// set to completion, and returns per-scene results sorted by scene number.
// Completion order never influences output order.
func (c *Coordinator) GenerateVariantParallel(ctx context.Context, level model.AggressionLevel, records []*model.PromptRecord) *model.VariantResult {
	jobs := c.submitAll(ctx, level, records)
	c.pollToCompletion(ctx, level, jobs)

	result := &model.VariantResult{
		Level:        level,
		Success:      true,
		SceneResults: make([]*model.SceneResult, 0, len(jobs)),
	}
	for _, job := range jobs {
		scene := &model.SceneResult{
			SceneNumber: job.SceneNumber,
			Status:      string(job.Status),
			OutputFile:  job.OutputFile,
		}
		if job.Handle != nil {
			scene.JobID = job.Handle.ID
		}
		if job.Err != nil {
			scene.Error = job.Err.Error()
		}
		if job.Status == model.JobStatusFailed {
			result.Success = false
		}
		result.SceneResults = append(result.SceneResults, scene)
	}
	sort.Slice(result.SceneResults, func(i, j int) bool {
		return result.SceneResults[i].SceneNumber < result.SceneResults[j].SceneNumber
	})
	return result
}

// submitAll fires every scene job without waiting on any completion. A
// submission failure marks only that scene's job failed; remaining prompts
// are still submitted.
func (c *Coordinator) submitAll(ctx context.Context, level model.AggressionLevel, records []*model.PromptRecord) []*model.GenerationJob {
	jobs := make([]*model.GenerationJob, 0, len(records))
	for _, record := range records {
		job := &model.GenerationJob{
			SceneNumber: record.SceneNumber,
			Prompt:      record,
		}
		handle, err := c.backend.CreateVideo(ctx, record.Prompt)
		if err != nil {
			job.Status = model.JobStatusFailed
			job.Err = fmt.Errorf("job submission failed: %w", err)
			c.logger.WarnContext(ctx, "scene job submission failed",
				"variant", string(level), "scene", record.SceneNumber, "error", err)
		} else {
			job.Handle = handle
			job.Status = handle.Status
			if job.Status == "" {
				job.Status = model.JobStatusQueued
			}
			c.reporter.VariantUpdate(ctx, "generation", string(level),
				fmt.Sprintf("scene %d submitted as job %s", record.SceneNumber, handle.ID))
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// pollToCompletion sweeps the pending jobs on the backend's poll interval
// until the pending set drains. Jobs pending longer than the backend's
// maximum poll duration are forced into a failed state with a timeout error
// rather than polling forever.
func (c *Coordinator) pollToCompletion(ctx context.Context, level model.AggressionLevel, jobs []*model.GenerationJob) {
	pending := make(map[string]*model.GenerationJob)
	for _, job := range jobs {
		if job.Handle != nil && !job.Status.Terminal() {
			pending[job.Handle.ID] = job
		}
	}

	interval := c.backend.PollInterval()
	deadline := time.Now().Add(c.backend.MaxPollDuration())

	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			for _, job := range pending {
				job.Status = model.JobStatusFailed
				job.Err = ctx.Err()
			}
			return
		default:
		}

		for id, job := range pending {
			state, err := c.backend.GetVideoStatus(ctx, id)
			if err != nil {
				job.Status = model.JobStatusFailed
				job.Err = fmt.Errorf("status check failed: %w", err)
				delete(pending, id)
				continue
			}
			switch state.Status {
			case model.JobStatusCompleted:
				job.Status = model.JobStatusCompleted
				job.OutputFile = filepath.Join(c.outputDir,
					fmt.Sprintf("%s_scene_%02d.mp4", level, job.SceneNumber))
				if err := c.backend.DownloadVideo(ctx, id, job.OutputFile); err != nil {
					job.Status = model.JobStatusFailed
					job.OutputFile = ""
					job.Err = fmt.Errorf("artifact download failed: %w", err)
				} else {
					c.reporter.VariantUpdate(ctx, "generation", string(level),
						fmt.Sprintf("scene %d completed", job.SceneNumber))
				}
				delete(pending, id)
			case model.JobStatusFailed:
				job.Status = model.JobStatusFailed
				if state.Error != nil {
					job.Err = fmt.Errorf("generation failed: %s", state.Error.Message)
				} else {
					job.Err = fmt.Errorf("generation failed with no reported reason")
				}
				c.reporter.VariantUpdate(ctx, "generation", string(level),
					fmt.Sprintf("scene %d failed", job.SceneNumber))
				delete(pending, id)
			default:
				// queued, in_progress, or an unrecognized status: still pending.
				// Relay rendering percent as it advances; repeats stay silent.
				if state.Progress > job.Progress {
					job.Progress = state.Progress
					c.reporter.StageProgress(ctx, "generation", state.Progress,
						fmt.Sprintf("%s scene %d rendering", level, job.SceneNumber))
				}
			}
		}

		if len(pending) == 0 {
			break
		}
		if time.Now().After(deadline) {
			for id, job := range pending {
				job.Status = model.JobStatusFailed
				job.Err = fmt.Errorf("job %s timed out after %s", id, c.backend.MaxPollDuration())
				delete(pending, id)
			}
			break
		}
		time.Sleep(interval)
	}
}

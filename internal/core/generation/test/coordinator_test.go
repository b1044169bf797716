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

// Package generation_test contains unit tests for the scene job coordinator.
// A scripted fake backend stands in for the remote text-to-video service so
// the submission fan-out, the poll loop, and the per-scene failure isolation
// can be exercised without network access.
package generation_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/generation"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJob scripts the lifecycle of one submitted job.
type fakeJob struct {
	prompt         string
	pollsRemaining int   // status sweeps before reaching the final state
	fail           bool  // final state is failed rather than completed
	failDownload   bool  // completed, but the artifact download errors
	progressSteps  []int // rendering percent reported on each pending sweep
	polled         int
}

// fakeBackend is a scripted Backend. Submission order assigns job ids; the
// per-prompt script controls how many sweeps a job stays pending and how it
// ends.
type fakeBackend struct {
	mu        sync.Mutex
	jobs      map[string]*fakeJob
	submitted int
	script    func(prompt string) fakeJob
}

func newFakeBackend(script func(prompt string) fakeJob) *fakeBackend {
	return &fakeBackend{jobs: make(map[string]*fakeJob), script: script}
}

func (b *fakeBackend) CreateVideo(_ context.Context, prompt string) (*model.JobHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitted++
	id := fmt.Sprintf("job-%d", b.submitted)
	job := b.script(prompt)
	job.prompt = prompt
	b.jobs[id] = &job
	return &model.JobHandle{ID: id, Status: model.JobStatusQueued}, nil
}

func (b *fakeBackend) GetVideoStatus(_ context.Context, jobID string) (*model.JobState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	job, ok := b.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("unknown job %s", jobID)
	}
	if job.pollsRemaining > 0 {
		state := &model.JobState{ID: jobID, Status: model.JobStatusInProgress}
		if job.polled < len(job.progressSteps) {
			state.Progress = job.progressSteps[job.polled]
		}
		job.polled++
		job.pollsRemaining--
		return state, nil
	}
	if job.fail {
		return &model.JobState{
			ID:     jobID,
			Status: model.JobStatusFailed,
			Error:  &model.JobError{Code: "moderation", Message: "prompt rejected"},
		}, nil
	}
	return &model.JobState{ID: jobID, Status: model.JobStatusCompleted}, nil
}

func (b *fakeBackend) DownloadVideo(_ context.Context, jobID string, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if job, ok := b.jobs[jobID]; ok && job.failDownload {
		return errors.New("stream reset")
	}
	return nil
}

func (b *fakeBackend) PollInterval() time.Duration    { return time.Millisecond }
func (b *fakeBackend) MaxPollDuration() time.Duration { return time.Second }

func testCoordinator(t *testing.T, backend generation.Backend) *generation.Coordinator {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return generation.NewCoordinator(backend, progress.NewMemoryReporter(), logger, t.TempDir())
}

func records(prompts ...string) []*model.PromptRecord {
	out := make([]*model.PromptRecord, 0, len(prompts))
	for i, prompt := range prompts {
		out = append(out, &model.PromptRecord{SceneNumber: i + 1, Prompt: prompt})
	}
	return out
}

// TestGenerateVariantResultsOrderedBySceneNumber verifies the ordering law:
// scene one takes the most sweeps to finish and scene three the fewest, yet
// the results still come back sorted by scene number.
func TestGenerateVariantResultsOrderedBySceneNumber(t *testing.T) {
	polls := map[string]int{"slow": 3, "medium": 1, "fast": 0}
	backend := newFakeBackend(func(prompt string) fakeJob {
		return fakeJob{pollsRemaining: polls[prompt]}
	})
	coordinator := testCoordinator(t, backend)

	result := coordinator.GenerateVariantParallel(context.Background(),
		model.LevelMedium, records("slow", "medium", "fast"))

	assert.True(t, result.Success)
	require.Len(t, result.SceneResults, 3)
	for i, scene := range result.SceneResults {
		assert.Equal(t, i+1, scene.SceneNumber)
		assert.Equal(t, string(model.JobStatusCompleted), scene.Status)
		assert.NotEmpty(t, scene.OutputFile)
	}
	// Output files are named by variant and scene, zero-padded.
	assert.Contains(t, result.SceneResults[0].OutputFile, "medium_scene_01.mp4")
}

// TestGenerateVariantSubmissionFailureIsIsolated verifies that a submission
// rejection marks only that scene failed: siblings submitted before and after
// it still complete, and the variant's success flag aggregates to false.
func TestGenerateVariantSubmissionFailureIsIsolated(t *testing.T) {
	// Reject exactly the second submission.
	flaky := &flakySubmitBackend{
		fakeBackend: newFakeBackend(func(string) fakeJob { return fakeJob{} }),
		rejectAt:    2,
	}
	coordinator := testCoordinator(t, flaky)

	result := coordinator.GenerateVariantParallel(context.Background(),
		model.LevelSoft, records("a", "b", "c"))

	assert.False(t, result.Success)
	require.Len(t, result.SceneResults, 3)
	assert.Equal(t, string(model.JobStatusCompleted), result.SceneResults[0].Status)
	assert.Equal(t, string(model.JobStatusFailed), result.SceneResults[1].Status)
	assert.Contains(t, result.SceneResults[1].Error, "job submission failed")
	assert.Equal(t, string(model.JobStatusCompleted), result.SceneResults[2].Status)
}

// flakySubmitBackend rejects the nth submission and delegates the rest.
type flakySubmitBackend struct {
	*fakeBackend
	calls    int
	rejectAt int
}

func (b *flakySubmitBackend) CreateVideo(ctx context.Context, prompt string) (*model.JobHandle, error) {
	b.calls++
	if b.calls == b.rejectAt {
		return nil, errors.New("quota exceeded")
	}
	return b.fakeBackend.CreateVideo(ctx, prompt)
}

// TestGenerateVariantBackendFailure verifies that a job the backend reports
// as failed carries the backend's message and fails only its own scene.
func TestGenerateVariantBackendFailure(t *testing.T) {
	backend := newFakeBackend(func(prompt string) fakeJob {
		return fakeJob{fail: prompt == "rejected"}
	})
	coordinator := testCoordinator(t, backend)

	result := coordinator.GenerateVariantParallel(context.Background(),
		model.LevelUltra, records("fine", "rejected"))

	assert.False(t, result.Success)
	assert.Equal(t, string(model.JobStatusCompleted), result.SceneResults[0].Status)
	assert.Equal(t, string(model.JobStatusFailed), result.SceneResults[1].Status)
	assert.Contains(t, result.SceneResults[1].Error, "prompt rejected")
}

// TestGenerateVariantDownloadFailure verifies that a completed job whose
// artifact download errors is reported failed with no output file.
func TestGenerateVariantDownloadFailure(t *testing.T) {
	backend := newFakeBackend(func(prompt string) fakeJob {
		return fakeJob{failDownload: prompt == "torn"}
	})
	coordinator := testCoordinator(t, backend)

	result := coordinator.GenerateVariantParallel(context.Background(),
		model.LevelSoft, records("ok", "torn"))

	assert.False(t, result.Success)
	assert.Equal(t, string(model.JobStatusFailed), result.SceneResults[1].Status)
	assert.Empty(t, result.SceneResults[1].OutputFile)
	assert.Contains(t, result.SceneResults[1].Error, "artifact download failed")
}

// TestGenerateVariantRelaysRenderingProgress verifies that a pending job's
// advancing percent is forwarded to the reporter and that a repeated percent
// is not re-emitted.
func TestGenerateVariantRelaysRenderingProgress(t *testing.T) {
	backend := newFakeBackend(func(string) fakeJob {
		return fakeJob{pollsRemaining: 3, progressSteps: []int{25, 25, 60}}
	})
	sink := progress.NewMemoryReporter()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	coordinator := generation.NewCoordinator(backend, sink, logger, t.TempDir())

	result := coordinator.GenerateVariantParallel(context.Background(),
		model.LevelAggressive, records("a"))
	require.True(t, result.Success)

	var percents []int
	for _, event := range sink.Events() {
		if event.Kind != progress.KindStageProgress {
			continue
		}
		assert.Equal(t, "generation", event.Stage)
		assert.Contains(t, event.Detail, "scene 1")
		percents = append(percents, event.Percent)
	}
	assert.Equal(t, []int{25, 60}, percents)
}

// TestGenerateVariantTimesOutStuckJobs verifies that a job the backend never
// finishes is forced into a failed state once the maximum poll duration
// elapses, and that the poll loop returns instead of sweeping forever.
func TestGenerateVariantTimesOutStuckJobs(t *testing.T) {
	backend := &stuckBackend{fakeBackend: newFakeBackend(func(string) fakeJob {
		return fakeJob{pollsRemaining: 1 << 30}
	})}
	coordinator := testCoordinator(t, backend)

	result := coordinator.GenerateVariantParallel(context.Background(),
		model.LevelMedium, records("a"))

	assert.False(t, result.Success)
	assert.Equal(t, string(model.JobStatusFailed), result.SceneResults[0].Status)
	assert.Contains(t, result.SceneResults[0].Error, "timed out after")
}

// stuckBackend shortens the poll deadline so a never-finishing job trips it
// quickly.
type stuckBackend struct {
	*fakeBackend
}

func (b *stuckBackend) MaxPollDuration() time.Duration { return 20 * time.Millisecond }

// TestGenerateVariantContextCancellation verifies that cancelling the context
// fails all still-pending jobs instead of blocking the poll loop.
func TestGenerateVariantContextCancellation(t *testing.T) {
	backend := newFakeBackend(func(string) fakeJob {
		return fakeJob{pollsRemaining: 1 << 30} // never completes
	})
	coordinator := testCoordinator(t, backend)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := coordinator.GenerateVariantParallel(ctx, model.LevelSoft, records("a"))
	assert.False(t, result.Success)
	assert.Equal(t, string(model.JobStatusFailed), result.SceneResults[0].Status)
}

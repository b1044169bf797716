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

// Package progress_test contains unit tests for the progress reporting
// sinks: event ordering and snapshot isolation in the memory sink, thread
// safety under concurrent variant updates, and fan-out in the multi sink.
package progress_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryReporterOrdering verifies that events replay in emission order
// with their kinds, stages, and details intact.
func TestMemoryReporterOrdering(t *testing.T) {
	ctx := context.Background()
	reporter := progress.NewMemoryReporter()

	reporter.StageStart(ctx, "analysis", "watching source ad")
	reporter.StageProgress(ctx, "analysis", 50, "halfway")
	reporter.StageComplete(ctx, "analysis", "4 scenes")
	reporter.VariantUpdate(ctx, "generation", "ultra", "scene 1 submitted as job vid_1")
	reporter.StageFail(ctx, "assembly", errors.New("missing clip"))

	events := reporter.Events()
	require.Len(t, events, 5)
	assert.Equal(t, progress.KindStageStart, events[0].Kind)
	assert.Equal(t, progress.KindStageProgress, events[1].Kind)
	assert.Equal(t, 50, events[1].Percent)
	assert.Equal(t, progress.KindStageComplete, events[2].Kind)
	assert.Equal(t, progress.KindVariantUpdate, events[3].Kind)
	assert.Equal(t, "ultra", events[3].Variant)
	assert.Equal(t, progress.KindStageFail, events[4].Kind)
	assert.Equal(t, "missing clip", events[4].Detail)

	// Every event carries a timestamp.
	for _, event := range events {
		assert.False(t, event.Timestamp.IsZero())
	}
}

// TestMemoryReporterSnapshotIsolation verifies that Events returns a copy:
// appending after the snapshot must not change it.
func TestMemoryReporterSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	reporter := progress.NewMemoryReporter()
	reporter.StageStart(ctx, "analysis", "")

	snapshot := reporter.Events()
	reporter.StageComplete(ctx, "analysis", "")

	assert.Len(t, snapshot, 1)
	assert.Len(t, reporter.Events(), 2)
}

// TestMemoryReporterConcurrentUpdates exercises the reporter the way the
// variant worker pool does: several goroutines appending at once. Run with
// the race detector, this also proves the locking.
func TestMemoryReporterConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	reporter := progress.NewMemoryReporter()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				reporter.VariantUpdate(ctx, "generation",
					fmt.Sprintf("variant-%d", worker), "update")
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, reporter.Events(), 200)
}

// TestMemoryReporterRunScoping verifies that events inherit the run id from
// their context and that RunEvents filters on it.
func TestMemoryReporterRunScoping(t *testing.T) {
	reporter := progress.NewMemoryReporter()

	firstRun := progress.WithRunID(context.Background(), "run-a")
	secondRun := progress.WithRunID(context.Background(), "run-b")

	reporter.StageStart(firstRun, "analysis", "")
	reporter.StageComplete(firstRun, "analysis", "")
	reporter.StageStart(secondRun, "analysis", "")
	// Emitted outside any run, so it belongs to neither.
	reporter.StageStart(context.Background(), "analysis", "")

	assert.Len(t, reporter.Events(), 4)

	runA := reporter.RunEvents("run-a")
	require.Len(t, runA, 2)
	assert.Equal(t, "run-a", runA[0].RunID)
	assert.Equal(t, progress.KindStageComplete, runA[1].Kind)

	require.Len(t, reporter.RunEvents("run-b"), 1)
	assert.Empty(t, reporter.RunEvents("run-c"))
}

// TestRunIDFromDefaultsEmpty covers the unattributed case.
func TestRunIDFromDefaultsEmpty(t *testing.T) {
	assert.Equal(t, "", progress.RunIDFrom(context.Background()))
	assert.Equal(t, "run-x", progress.RunIDFrom(progress.WithRunID(context.Background(), "run-x")))
}

// TestMultiReporterFansOut verifies that every wrapped reporter sees every
// event.
func TestMultiReporterFansOut(t *testing.T) {
	ctx := context.Background()
	first := progress.NewMemoryReporter()
	second := progress.NewMemoryReporter()
	multi := progress.NewMultiReporter(first, second)

	multi.StageStart(ctx, "analysis", "begin")
	multi.VariantUpdate(ctx, "generation", "soft", "rendering started")

	require.Len(t, first.Events(), 2)
	require.Len(t, second.Events(), 2)
	assert.Equal(t, first.Events()[1].Variant, second.Events()[1].Variant)
}

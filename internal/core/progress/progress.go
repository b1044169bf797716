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

// Package progress defines the pipeline's progress reporting contract. The
// workflow emits an event at every stage transition and on per-variant
// updates; sinks decide what to do with them. The log sink writes structured
// records, the memory sink backs the progress API endpoint, and the multi
// sink fans out to several at once.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// EventKind discriminates the event types a Reporter receives.
type EventKind string

const (
	KindStageStart    EventKind = "stage_start"
	KindStageProgress EventKind = "stage_progress"
	KindStageComplete EventKind = "stage_complete"
	KindStageFail     EventKind = "stage_fail"
	KindVariantUpdate EventKind = "variant_update"
)

// Event is one progress record. Stage is always set; RunID, Variant, and
// Detail are optional depending on the kind and the emitting context.
type Event struct {
	Kind      EventKind `json:"kind"`
	RunID     string    `json:"run_id,omitempty"`
	Stage     string    `json:"stage"`
	Variant   string    `json:"variant,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Percent   int       `json:"percent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type runIDKey struct{}

// WithRunID returns a context whose progress events are attributed to the
// given run. The workflow stamps this once per stage so sinks can scope their
// records without every command threading the id explicitly.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFrom extracts the run attribution from the context, or "" when the
// event was emitted outside a run.
func RunIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey{}).(string); ok {
		return v
	}
	return ""
}

// Reporter receives pipeline progress events. Implementations must be safe
// for concurrent use: variant stages run in parallel goroutines.
type Reporter interface {
	StageStart(ctx context.Context, stage string, detail string)
	StageProgress(ctx context.Context, stage string, percent int, detail string)
	StageComplete(ctx context.Context, stage string, detail string)
	StageFail(ctx context.Context, stage string, err error)
	VariantUpdate(ctx context.Context, stage string, variant string, detail string)
}

// LogReporter emits every event through a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter returns a Reporter that writes events with the given logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) StageStart(ctx context.Context, stage string, detail string) {
	r.logger.InfoContext(ctx, "stage started", "run_id", RunIDFrom(ctx), "stage", stage, "detail", detail)
}

func (r *LogReporter) StageProgress(ctx context.Context, stage string, percent int, detail string) {
	r.logger.InfoContext(ctx, "stage progress", "run_id", RunIDFrom(ctx), "stage", stage, "percent", percent, "detail", detail)
}

func (r *LogReporter) StageComplete(ctx context.Context, stage string, detail string) {
	r.logger.InfoContext(ctx, "stage complete", "run_id", RunIDFrom(ctx), "stage", stage, "detail", detail)
}

func (r *LogReporter) StageFail(ctx context.Context, stage string, err error) {
	r.logger.ErrorContext(ctx, "stage failed", "run_id", RunIDFrom(ctx), "stage", stage, "error", err)
}

func (r *LogReporter) VariantUpdate(ctx context.Context, stage string, variant string, detail string) {
	r.logger.InfoContext(ctx, "variant update", "run_id", RunIDFrom(ctx), "stage", stage, "variant", variant, "detail", detail)
}

// MemoryReporter retains every event in order. It backs the run progress API
// so clients can replay a run's history after the fact.
type MemoryReporter struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryReporter returns an empty in-memory event log.
func NewMemoryReporter() *MemoryReporter {
	return &MemoryReporter{}
}

func (r *MemoryReporter) append(ctx context.Context, e Event) {
	e.RunID = RunIDFrom(ctx)
	e.Timestamp = time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *MemoryReporter) StageStart(ctx context.Context, stage string, detail string) {
	r.append(ctx, Event{Kind: KindStageStart, Stage: stage, Detail: detail})
}

func (r *MemoryReporter) StageProgress(ctx context.Context, stage string, percent int, detail string) {
	r.append(ctx, Event{Kind: KindStageProgress, Stage: stage, Percent: percent, Detail: detail})
}

func (r *MemoryReporter) StageComplete(ctx context.Context, stage string, detail string) {
	r.append(ctx, Event{Kind: KindStageComplete, Stage: stage, Detail: detail})
}

func (r *MemoryReporter) StageFail(ctx context.Context, stage string, err error) {
	r.append(ctx, Event{Kind: KindStageFail, Stage: stage, Detail: fmt.Sprintf("%v", err)})
}

func (r *MemoryReporter) VariantUpdate(ctx context.Context, stage string, variant string, detail string) {
	r.append(ctx, Event{Kind: KindVariantUpdate, Stage: stage, Variant: variant, Detail: detail})
}

// Events returns a copy of the recorded events in emission order.
func (r *MemoryReporter) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// RunEvents returns the recorded events attributed to one run, in emission
// order.
func (r *MemoryReporter) RunEvents(runID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0)
	for _, e := range r.events {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out
}

// MultiReporter fans each event out to every wrapped reporter.
type MultiReporter struct {
	reporters []Reporter
}

// NewMultiReporter composes reporters into one.
func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	return &MultiReporter{reporters: reporters}
}

func (r *MultiReporter) StageStart(ctx context.Context, stage string, detail string) {
	for _, rep := range r.reporters {
		rep.StageStart(ctx, stage, detail)
	}
}

func (r *MultiReporter) StageProgress(ctx context.Context, stage string, percent int, detail string) {
	for _, rep := range r.reporters {
		rep.StageProgress(ctx, stage, percent, detail)
	}
}

func (r *MultiReporter) StageComplete(ctx context.Context, stage string, detail string) {
	for _, rep := range r.reporters {
		rep.StageComplete(ctx, stage, detail)
	}
}

func (r *MultiReporter) StageFail(ctx context.Context, stage string, err error) {
	for _, rep := range r.reporters {
		rep.StageFail(ctx, stage, err)
	}
}

func (r *MultiReporter) VariantUpdate(ctx context.Context, stage string, variant string, detail string) {
	for _, rep := range r.reporters {
		rep.VariantUpdate(ctx, stage, variant, detail)
	}
}

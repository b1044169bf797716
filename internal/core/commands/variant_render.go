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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command that renders every aggression variant through the text-to-video
// backend.
//
// Logic Flow:
// This is the long-running heart of the pipeline. Each variant's prompts are
// handed to the generation coordinator, which submits every scene job up
// front and then polls the backend until all jobs reach a terminal state.
//
//  1. It receives the per-level prompt set from the context.
//  2. **Worker Pool Pattern**: variants render independently, so the command
//     spawns a pool of `variantWorker` goroutines fed by a `jobs` channel and
//     collects `model.VariantResult` values from a `results` channel.
//  3. Each worker calls the coordinator, which owns submission fan-out,
//     cooperative polling, and per-scene download.
//  4. A failed variant is recorded in its result and never fails the chain.
//     Sibling variants always run to completion.
//  5. The results map, keyed by aggression level, is placed back into the
//     context for assembly and evaluation.
package commands

import (
	"log"
	"sync"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/generation"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/progress"
)

// GetResultsName returns the well-known context key under which the per-level
// variant results are stored.
func GetResultsName() string {
	return "__RESULTS__"
}

// VariantRenderer is a command that renders all aggression variants through
// the generation coordinator, in parallel.
type VariantRenderer struct {
	cor.BaseCommand
	coordinator     *generation.Coordinator // Owns job submission and the polling loop per variant.
	reporter        progress.Reporter       // Receives per-variant progress updates.
	numberOfWorkers int                     // The number of variants rendered concurrently.
}

// NewVariantRenderer is the constructor for the VariantRenderer command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - coordinator: The generation coordinator wrapping the video backend.
//   - reporter: The progress sink for variant updates.
//   - numberOfWorkers: The size of the worker pool for concurrent variants.
//
// Outputs:
//   - *VariantRenderer: A pointer to the newly instantiated command.
func NewVariantRenderer(
	name string,
	coordinator *generation.Coordinator,
	reporter progress.Reporter,
	numberOfWorkers int) *VariantRenderer {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	return &VariantRenderer{
		BaseCommand:     *cor.NewBaseCommand(name),
		coordinator:     coordinator,
		reporter:        reporter,
		numberOfWorkers: numberOfWorkers}
}

// IsExecutable checks that the prompt set is present in the context.
func (s *VariantRenderer) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(s.GetInputParam()) != nil
}

// variantJob carries one variant's prompts to a worker.
type variantJob struct {
	level   model.AggressionLevel
	records []*model.PromptRecord
}

// Execute renders every variant and aggregates the results.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *VariantRenderer) Execute(context cor.Context) {
	set := context.Get(s.GetInputParam()).(model.PromptSet)

	var wg sync.WaitGroup
	jobs := make(chan *variantJob, len(set))
	results := make(chan *model.VariantResult, len(set))

	for w := 1; w <= s.numberOfWorkers; w++ {
		wg.Add(1)
		go s.variantWorker(context, jobs, results, &wg)
	}

	// Feed the pool in the fixed level order so logs stay readable even
	// though completion order is up to the backend.
	for _, level := range model.AggressionLevels() {
		records, ok := set[level]
		if !ok || len(records) == 0 {
			continue
		}
		jobs <- &variantJob{level: level, records: records}
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make(map[model.AggressionLevel]*model.VariantResult, len(set))
	completed := 0
	for r := range results {
		out[r.Level] = r
		if r.Success {
			completed++
		} else {
			// Per-variant isolation: the failure lives in the result, not
			// in the chain's error map.
			log.Printf("variant '%s' rendering incomplete: %s", r.Level, r.Error)
		}
	}
	log.Printf("rendering finished: %d of %d variants fully completed", completed, len(out))

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetResultsName(), out)
	context.Add(s.GetOutputParam(), out)
}

// variantWorker renders variants from the jobs channel until it closes.
func (s *VariantRenderer) variantWorker(context cor.Context, jobs <-chan *variantJob, results chan<- *model.VariantResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		s.reporter.VariantUpdate(context.GetContext(), "generation", string(j.level), "rendering started")
		result := s.coordinator.GenerateVariantParallel(context.GetContext(), j.level, j.records)
		if result.Success {
			s.reporter.VariantUpdate(context.GetContext(), "generation", string(j.level), "rendering complete")
		} else {
			s.reporter.VariantUpdate(context.GetContext(), "generation", string(j.level), "rendering incomplete")
		}
		results <- result
	}
}

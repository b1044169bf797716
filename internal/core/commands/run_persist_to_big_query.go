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
// command responsible for persisting the outcome of a cloning run to
// BigQuery.
//
// Logic Flow:
// This command is the persistence step at the tail of the workflow. It
// flattens the run's context (identifier, source ad, vertical, per-variant
// outcomes) into a single `model.RunRecord` row and streams it into the runs
// table. The row is what the run-history API serves later.
//
//  1. It assembles the `model.RunRecord` from the well-known context keys.
//  2. It gets a BigQuery `Inserter`. The inserter is an optimized client for
//     streaming data into a table, which is more efficient than running
//     individual `INSERT` statements.
//  3. It uses the `Put` method of the inserter to send the record. The record
//     implements `bigquery.ValueSaver` with the run id as the insert id, so a
//     retried insert never duplicates a row.
//  4. It performs error handling and updates telemetry counters.
package commands

import (
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// GetRunRecordName returns the well-known context key under which the
// persisted run record is stored.
func GetRunRecordName() string {
	return "__RUN_RECORD__"
}

// Run status values persisted with each run row.
const (
	RunStatusCompleted = "completed"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
)

// RunPersistToBigQuery is a command that saves a run's outcome to a BigQuery table.
type RunPersistToBigQuery struct {
	cor.BaseCommand
	client  *bigquery.Client // The client for interacting with the BigQuery service.
	dataset string           // The name of the BigQuery dataset.
	table   string           // The name of the target table within the dataset.
}

// NewRunPersistToBigQuery is the constructor for the RunPersistToBigQuery command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: An initialized *bigquery.Client.
//   - dataset: The name of the BigQuery dataset.
//   - table: The name of the runs table.
//
// Outputs:
//   - *RunPersistToBigQuery: A pointer to the newly instantiated command.
func NewRunPersistToBigQuery(name string, client *bigquery.Client, dataset string, table string) *RunPersistToBigQuery {
	return &RunPersistToBigQuery{BaseCommand: *cor.NewBaseCommand(name), client: client, dataset: dataset, table: table}
}

// IsExecutable checks that the variant results exist in the context before execution.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
//
// Outputs:
//   - bool: True if the variant results exist in the context, otherwise false.
func (s *RunPersistToBigQuery) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(s.GetInputParam()) != nil
}

// Execute assembles the run row and writes it to BigQuery.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *RunPersistToBigQuery) Execute(context cor.Context) {
	log.Println("Persisting run outcome to BigQuery...")

	results := context.Get(s.GetInputParam()).(map[model.AggressionLevel]*model.VariantResult)
	record := s.buildRecord(context, results)

	// Get an Inserter for the target table. This provides a streaming interface
	// for inserting rows into BigQuery, which is highly efficient.
	i := s.client.Dataset(s.dataset).Table(s.table).Inserter()

	if err := i.Put(context.GetContext(), record); err != nil {
		log.Printf("failed to write run to database. run %s error %s\n", record.RunID, err)
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), fmt.Errorf("bigquery insert failed for run '%s': %w", record.RunID, err))
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetRunRecordName(), record)
	context.Add(cor.CtxOut, record)
	log.Printf("Successfully persisted run '%s' with status '%s'", record.RunID, record.Status)
}

// buildRecord flattens the run context into the BigQuery row shape.
func (s *RunPersistToBigQuery) buildRecord(context cor.Context, results map[model.AggressionLevel]*model.VariantResult) *model.RunRecord {
	record := &model.RunRecord{EndTime: time.Now()}

	record.RunID, _ = context.Get(GetRunIDName()).(string)
	record.Vertical, _ = context.Get(GetVerticalName()).(string)
	if start, ok := context.Get(GetRunStartName()).(time.Time); ok {
		record.StartTime = start
	} else {
		record.StartTime = record.EndTime
	}
	if source, ok := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject); ok && source != nil {
		record.SourceURI = source.URI()
	}
	if analysis, ok := context.Get(GetAnalysisName()).(*model.NormalizedAnalysis); ok && analysis != nil {
		record.SceneCount = len(analysis.SceneBreakdown)
	}

	succeeded := 0
	for _, level := range model.AggressionLevels() {
		result, ok := results[level]
		if !ok {
			continue
		}
		variant := &model.RunVariantRecord{
			Level:        string(result.Level),
			Success:      result.Success,
			SceneCount:   len(result.SceneResults),
			AssembledURI: result.AssembledURI,
		}
		for _, scene := range result.SceneResults {
			if scene.Status == string(model.JobStatusFailed) {
				variant.FailedScenes++
			}
		}
		if result.Evaluation != nil {
			variant.OverallScore = result.Evaluation.OverallScore
		}
		if result.Success {
			succeeded++
		}
		record.VariantRecords = append(record.VariantRecords, variant)
	}

	switch {
	case len(record.VariantRecords) > 0 && succeeded == len(record.VariantRecords):
		record.Status = RunStatusCompleted
	case succeeded > 0:
		record.Status = RunStatusPartial
	default:
		record.Status = RunStatusFailed
	}
	return record
}

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

// Package services contains the business logic for interacting with data sources.
// This file, `queries.go`, centralizes all the BigQuery SQL query strings used
// by the application's services. Storing queries as constants in a dedicated
// file improves maintainability, readability, and reusability. The queries use
// `fmt.Sprintf` format verbs (e.g., %s, %d) as placeholders for dynamic values
// that will be injected at runtime.
package services

const (
	// QryListRuns defines the query backing the run-history listing. Runs are
	// returned newest first so the dashboard's default view is the most
	// recent activity.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the `runs` table.
	// - `%d`: The maximum number of run rows to return.
	QryListRuns = "SELECT * FROM `%s` ORDER BY start_time DESC LIMIT %d"

	// QryFindRunById defines a simple lookup query to retrieve a complete run
	// record from the runs table using its unique run id.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the `runs` table.
	// - `%s`: The unique id of the run to find.
	QryFindRunById = "SELECT * from `%s` WHERE run_id = '%s'"

	// QryGetRunVariant defines a query to extract a single variant outcome
	// from the nested `variants` array within a run record.
	//
	// How it works:
	// - `UNNEST(variants) as v`: This is a powerful BigQuery function that
	//   "flattens" the repeated `variants` field (which is an array of structs)
	//   into a relational, table-like structure aliased as `v`. This allows us
	//   to query individual variant outcomes as if they were rows in a table.
	// - `WHERE run_id = '%s' and v.level = '%s'`: This filters the unnested
	//   variants, first by finding the correct run row by its `run_id`, and
	//   then by finding the specific variant by its aggression level.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the `runs` table.
	// - `%s`: The unique id of the parent run.
	// - `%s`: The aggression level of the desired variant.
	QryGetRunVariant = "SELECT v.level, v.success, v.scene_count, v.failed_scenes, v.assembled_uri, v.overall_score FROM `%s`, UNNEST(variants) as v WHERE run_id = '%s' and v.level = '%s'"
)

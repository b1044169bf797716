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
// This file, `runs.go`, defines the RunService, which is responsible for
// retrieving run history from BigQuery and generating secure, time-limited
// URLs for streaming assembled variant videos stored in Google Cloud Storage
// (GCS).
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// DefaultRunListLimit caps the run listing when the caller does not ask for a
// specific page size.
const DefaultRunListLimit = 50

// RunService is a struct that encapsulates the clients and configuration
// needed to serve run history. It acts as a data access layer, abstracting
// the details of interacting with BigQuery and GCS.
type RunService struct {
	BigqueryClient *bigquery.Client                  // Client for interacting with Google BigQuery.
	StorageClient  *storage.Client                   // Client for interacting with Google Cloud Storage.
	IAMClient      *credentials.IamCredentialsClient // Client for interacting with IAM, used for signing URLs.
	SignerEmail    string                            // The service account email used to sign URLs.
	DatasetName    string                            // The name of the BigQuery dataset (e.g., "ad_cloner_ds").
	RunTable       string                            // The name of the BigQuery table containing run rows.
}

// GetFQN (Get Fully Qualified Name) returns the complete, queryable name for
// the runs table in BigQuery, formatted with dots instead of colons.
// Example: `gcp-project-id.ad_cloner_ds.runs`
//
// Outputs:
//   - string: The fully qualified table name.
func (s *RunService) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.RunTable).FullyQualifiedName()
	// Replace the colon with a period for compatibility with standard SQL queries.
	return strings.Replace(fqn, ":", ".", -1)
}

// List retrieves the most recent runs, newest first.
//
// Inputs:
//   - ctx: The context for the request, used for cancellation and tracing.
//   - limit: The maximum number of runs to return; non-positive values use the default.
//
// Outputs:
//   - []*model.RunRecord: The retrieved run rows.
//   - error: An error if the query fails.
func (s *RunService) List(ctx context.Context, limit int) ([]*model.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultRunListLimit
	}
	queryText := fmt.Sprintf(QryListRuns, s.GetFQN(), limit)
	q := s.BigqueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}

	runs := make([]*model.RunRecord, 0, limit)
	for {
		run := &model.RunRecord{}
		err := itr.Next(run)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Get retrieves a single run from BigQuery based on its unique id.
//
// Inputs:
//   - ctx: The context for the request.
//   - runID: The unique identifier of the run to retrieve.
//
// Outputs:
//   - *model.RunRecord: A pointer to the retrieved run row.
//   - error: An error if the query fails or no run is found.
func (s *RunService) Get(ctx context.Context, runID string) (run *model.RunRecord, err error) {
	queryText := fmt.Sprintf(QryFindRunById, s.GetFQN(), runID)
	q := s.BigqueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return run, err
	}
	// The run id is unique, so we expect only one result.
	run = &model.RunRecord{}
	err = itr.Next(run)
	return run, err
}

// GetVariant retrieves a specific variant outcome from a run by its
// aggression level.
//
// Inputs:
//   - ctx: The context for the request.
//   - runID: The unique id of the parent run.
//   - level: The aggression level of the variant to retrieve.
//
// Outputs:
//   - *model.RunVariantRecord: A pointer to the retrieved variant outcome.
//   - error: An error if the query fails or the variant is not found.
func (s *RunService) GetVariant(ctx context.Context, runID string, level string) (variant *model.RunVariantRecord, err error) {
	// This query unnests the `variants` array in BigQuery to allow filtering
	// by the variant's level.
	queryText := fmt.Sprintf(QryGetRunVariant, s.GetFQN(), runID, level)
	q := s.BigqueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return variant, err
	}
	variant = &model.RunVariantRecord{}
	err = itr.Next(variant)
	return variant, err
}

// GenerateSignedURL creates a time-limited, secure URL to access a private
// GCS object. This allows clients (like a web browser) to stream an assembled
// variant directly from GCS without needing their own credentials. The URL is
// signed via the IAM Credentials API using the service account specified in
// `s.SignerEmail`, so no local key file is ever required.
//
// Inputs:
//   - ctx: The context for the request.
//   - gcsURI: The URI of the GCS object (e.g., "gs://bucket/run-id/soft.mp4").
//   - expires: The duration for which the URL will be valid.
//
// Outputs:
//   - string: The generated signed URL.
//   - error: An error if parsing the URI or signing the URL fails.
func (s *RunService) GenerateSignedURL(ctx context.Context, gcsURI string, expires time.Duration) (string, error) {
	// ---- 1. Parse the GCS URI ----
	// The URI needs to be broken down into its bucket and object components.
	const prefix = "gs://"
	if !strings.HasPrefix(gcsURI, prefix) {
		return "", fmt.Errorf("invalid GCS URI format: %s", gcsURI)
	}
	path := strings.TrimPrefix(gcsURI, prefix)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid GCS URI: unable to determine bucket and object from %s", gcsURI)
	}
	bucketName := parts[0]
	objectName := parts[1]

	// ---- 2. Define Signing Options ----
	// Configure the parameters for the V4 signing process. The SignBytes
	// function delegates signing to the IAM Credentials API, the recommended
	// approach on GCP infrastructure.
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4, // Use the modern and more secure V4 signing scheme.
		Method:         "GET",                   // The URL will only be valid for GET requests.
		Expires:        time.Now().Add(expires), // Set the expiration time.
		GoogleAccessID: s.SignerEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			req := &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			}
			resp, err := s.IAMClient.SignBlob(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		},
	}

	// ---- 3. Generate and Return the URL ----
	u, err := s.StorageClient.Bucket(bucketName).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", bucketName, objectName, err)
	}
	return u, nil
}

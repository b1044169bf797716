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

// Package services_test contains unit tests for the run history service.
// Only the pure parts run here; the query paths need live BigQuery and are
// covered by deployment smoke checks instead.
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/services"
	"github.com/stretchr/testify/assert"
)

// TestGenerateSignedURLRejectsBadURIs verifies the URI parsing guard: a URI
// without the gs:// scheme or without both a bucket and an object name is
// rejected before any signing work happens.
func TestGenerateSignedURLRejectsBadURIs(t *testing.T) {
	service := &services.RunService{SignerEmail: "signer@test.iam.gserviceaccount.com"}
	ctx := context.Background()

	_, err := service.GenerateSignedURL(ctx, "https://storage.googleapis.com/bucket/object.mp4", time.Minute)
	assert.ErrorContains(t, err, "invalid GCS URI")

	_, err = service.GenerateSignedURL(ctx, "gs://bucket-only", time.Minute)
	assert.ErrorContains(t, err, "unable to determine bucket and object")
}

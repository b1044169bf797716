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
// Responsibility (COR) pattern's Command interface. This file defines a
// command for uploading assembled variant videos to a Google Cloud Storage
// (GCS) bucket.
//
// Logic Flow:
// This command follows variant assembly. Each assembled variant exists as a
// local MP4 file; its durable home is the render bucket, keyed by run id so
// every run's deliverables live under one prefix.
//
//  1. For each assembled variant, open the local file for reading.
//  2. Create a GCS writer for `<run-id>/<level>.mp4` in the render bucket.
//  3. Use `io.Copy` to stream the file's contents from the local disk
//     directly to the GCS bucket without buffering it all in memory.
//  4. On success, rewrite the variant's assembled URI to the gs:// location
//     so the evaluator and the API hand out the durable address.
//  5. An upload failure is recorded on that variant's result only; sibling
//     uploads proceed.
package commands

import (
	"fmt"
	"io"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/model"
)

// RenderUpload is a command implementation responsible for uploading the
// assembled variant videos from the local filesystem to the render bucket.
type RenderUpload struct {
	cor.BaseCommand                 // Embeds the BaseCommand for common functionality like naming and metrics.
	client          *storage.Client // The GCS client for interacting with the storage service.
	bucket          string          // The name of the destination GCS bucket.
}

// NewRenderUpload is the constructor for creating a new RenderUpload command.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - client: An initialized *storage.Client for communicating with GCS.
//   - bucket: The name of the target GCS bucket for the uploads.
//
// Outputs:
//   - *RenderUpload: A pointer to the newly instantiated command.
func NewRenderUpload(name string, client *storage.Client, bucket string) *RenderUpload {
	return &RenderUpload{BaseCommand: *cor.NewBaseCommand(name), client: client, bucket: bucket}
}

// IsExecutable checks that the variant results are present in the context.
func (c *RenderUpload) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(c.GetInputParam()) != nil
}

// Execute streams each assembled variant to the render bucket.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *RenderUpload) Execute(context cor.Context) {
	results := context.Get(c.GetInputParam()).(map[model.AggressionLevel]*model.VariantResult)
	runID, _ := context.Get(GetRunIDName()).(string)

	for _, level := range model.AggressionLevels() {
		result, ok := results[level]
		if !ok || !result.Success || result.AssembledURI == "" {
			continue
		}

		objectName := fmt.Sprintf("%s/%s.mp4", runID, level)
		if err := c.uploadFile(context, result.AssembledURI, objectName); err != nil {
			result.Success = false
			result.Error = fmt.Sprintf("upload failed: %v", err)
			log.Printf("failed to upload variant '%s': %v", level, err)
			continue
		}

		result.AssembledURI = fmt.Sprintf("gs://%s/%s", c.bucket, objectName)
		log.Printf("uploaded variant '%s' to %s", level, result.AssembledURI)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), results)
}

// uploadFile streams one local file to the named object in the render bucket.
func (c *RenderUpload) uploadFile(context cor.Context, path string, objectName string) error {
	dat, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			log.Printf("failed to close local file: %v\n", err)
		}
	}(dat)

	writer := c.client.Bucket(c.bucket).Object(objectName).NewWriter(context.GetContext())

	// Closing the writer finalizes the upload. Without it the object may not
	// be created or may be incomplete.
	if written, err := io.Copy(writer, dat); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to copy to GCS or partial write: %d total bytes: %w", written, err)
	}
	return writer.Close()
}

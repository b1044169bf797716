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
// command that turns the uploaded ad's GCS location into the file reference
// the generative model consumes.
//
// Logic Flow:
// The Gemini models accept GCS URIs directly for video input, so no copy of
// the source ad ever needs to leave the bucket. This command builds the
// `genai.FileData` reference (URI plus MIME type) from the trigger's
// `cloud.GCSObject` and publishes it under a well-known key for the analysis
// command.
package commands

import (
	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"google.golang.org/genai"
)

// GetSourceAdFileParameterName returns the canonical key used to store the
// source ad's `genai.FileData` reference in the context. Using a function for
// this ensures consistency across commands that need to access this value.
func GetSourceAdFileParameterName() string {
	return "__SOURCE_AD_FILE__"
}

// SourceAdReference is a command that builds the generative model's file
// reference for the uploaded source advertisement.
type SourceAdReference struct {
	cor.BaseCommand
}

// NewSourceAdReference is the constructor for the SourceAdReference command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *SourceAdReference: A pointer to the newly instantiated command.
func NewSourceAdReference(name string) *SourceAdReference {
	return &SourceAdReference{BaseCommand: *cor.NewBaseCommand(name)}
}

// IsExecutable checks that the source GCS object is present in the context.
func (v *SourceAdReference) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(cloud.GetGCSObjectName()) != nil
}

// Execute builds the file reference from the GCS object metadata.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (v *SourceAdReference) Execute(context cor.Context) {
	gcsFile := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)

	ref := &genai.FileData{
		FileURI:  gcsFile.URI(),
		MIMEType: gcsFile.MIMEType,
	}

	v.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetSourceAdFileParameterName(), ref)
	context.Add(v.GetOutputParam(), ref)
}

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
// entry command for workflows triggered by a source advertisement landing in
// the upload bucket.
//
// Logic Flow:
// GCS publishes a detailed notification message to a Pub/Sub topic when a new
// object is created. This command parses that message down to the essentials.
//
//  1. The command receives the raw Pub/Sub message data as a JSON string from the context.
//  2. It unmarshals this JSON string into a `cloud.GCSPubSubNotification` struct.
//  3. It extracts the bucket name, object name, and content type into a
//     simplified `cloud.GCSObject`.
//  4. The `GCSObject` is placed back into the context so downstream commands
//     can locate the uploaded ad without understanding the notification format.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
)

// SourceAdTriggerToGCSObject is a command that parses a GCS Pub/Sub
// notification for an uploaded source ad and extracts key file information
// into a simplified GCSObject.
type SourceAdTriggerToGCSObject struct {
	cor.BaseCommand
}

// NewSourceAdTriggerToGCSObject is the constructor for the trigger command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *SourceAdTriggerToGCSObject: A pointer to the newly instantiated command.
func NewSourceAdTriggerToGCSObject(name string) *SourceAdTriggerToGCSObject {
	return &SourceAdTriggerToGCSObject{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the GCS notification message.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution, containing
//     the raw message data in the input parameter.
func (c *SourceAdTriggerToGCSObject) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)

	var out cloud.GCSPubSubNotification
	err := json.Unmarshal([]byte(in), &out)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to unmarshal GCS notification: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)

	msg := &cloud.GCSObject{Bucket: out.Bucket, Name: out.Name, MIMEType: out.ContentType}

	// Well-known key so any command in the chain can find the source object.
	context.Add(cloud.GetGCSObjectName(), msg)
	context.Add(c.GetOutputParam(), msg)
}

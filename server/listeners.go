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

// Package main contains the logic for setting up and starting the Pub/Sub message listener.
// The listener is responsible for initiating the cloning pipeline in response to events,
// namely new source advertisement uploads to Google Cloud Storage.
//
// Functions:
//   - SetupListeners: Initializes and starts the listener for the source-ad topic,
//     attaching the ad-cloner workflow.
package main

import (
	"context"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/workflow"
)

// Agent model config names used by the pipeline. Both must exist under
// [agent_models] in the TOML configuration.
const (
	AnalyzerModelName  = "creative-flash"
	EvaluatorModelName = "creative-pro"
)

// SetupListeners configures and starts the background Pub/Sub listener.
// It attaches the ad-cloner workflow to the source-ad topic listener.
//
// Inputs:
//   - cloudClients: A struct containing all the initialized Google Cloud service clients.
//   - adCloner: The cloning workflow to execute for each upload notification.
//   - ctx: The application's root context, used to manage the lifecycle of the listener.
//
// Outputs:
//   - This function does not return any value. It starts the listener as a background goroutine.
func SetupListeners(cloudClients *cloud.ServiceClients, adCloner *workflow.AdClonerWorkflow, ctx context.Context) {
	// Assign the workflow as the command to be executed by the listener for the source-ad topic.
	// It is triggered by messages on the SourceAdTopic whenever a new
	// advertisement lands in the upload bucket.
	cloudClients.PubSubListeners["SourceAdTopic"].SetCommand(adCloner)
	// Start the listener in a background goroutine. It will now begin receiving
	// and processing messages from its subscription.
	cloudClients.PubSubListeners["SourceAdTopic"].Listen(ctx)
}

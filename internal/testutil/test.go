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

// Package test provides utility functions and mock data to support the application's
// test suite. It helps in setting up a consistent test environment, loading
// test-specific configurations, and providing sample data for workflows and services.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
)

// StateManager acts as a simple in-memory cache for the application configuration
// during test runs. This prevents the need to reload configuration files for every
// test, speeding up the test suite.
type StateManager struct {
	config *cloud.Config
}

// state is a package-level variable that holds the singleton instance of StateManager,
// ensuring that the configuration is loaded only once per test run.
var state = &StateManager{}

// HandleErr is a simple test helper function that checks if an error is not nil.
// If an error exists, it fails the test immediately by calling t.Errorf.
// This is a convenience function to reduce boilerplate error-checking code in tests.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestSourceAdMessageText returns a hardcoded JSON string that simulates a
// Pub/Sub notification message from Google Cloud Storage for an advertisement
// finalized in the source-ad bucket. This mock data is used to test the
// cloning workflow trigger.
//
// Returns:
//   - A string containing the JSON payload of a GCS notification.
func GetTestSourceAdMessageText() string {
	return `{
  "kind": "storage#object",
  "id": "source_ad_resources/test-solar-ad-001.mp4/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/source_ad_resources/o/test-solar-ad-001.mp4",
  "name": "test-solar-ad-001.mp4",
  "bucket": "source_ad_resources",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "video/mp4",
  "timeCreated": "2024-10-11T03:04:08.672Z",
  "updated": "2024-10-11T03:04:08.672Z",
  "storageClass": "STANDARD",
  "timeStorageClassUpdated": "2024-10-11T03:04:08.672Z",
  "size": "25934803",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "mediaLink": "https://storage.googleapis.com/download/storage/v1/b/source_ad_resources/o/test-solar-ad-001.mp4?generation=1728615848664286&alt=media",
  "metadata": { "touch": "18" },
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
	}`
}

// GetTestAnalysisJSON returns a raw analysis document the way the
// video-understanding model emits it, including the list-shaped spokesperson
// field that normalization must collapse. It is used to test the analysis
// parsing command and the normalizer.
//
// Returns:
//   - A string containing a complete analysis document in JSON form.
func GetTestAnalysisJSON() string {
	return `{
  "duration_seconds": 30,
  "product": "SunSaver residential solar panels",
  "script": {
    "full_transcript": "My electric bill hit four hundred dollars last month. Then I found SunSaver. Now my power bill is basically zero. Check if your roof qualifies today."
  },
  "spokesperson": [
    {
      "physical_description": "Woman in her early 30s with shoulder-length brown hair, wearing a teal blouse",
      "age_range": "30-35",
      "gender": "female"
    }
  ],
  "scene_breakdown": [
    {
      "scene_number": 1,
      "timestamp_range": "0:00-0:08",
      "duration_seconds": 8,
      "purpose": "hook",
      "has_character": true,
      "setting": "suburban kitchen, morning light",
      "emotion": "frustrated",
      "visual_elements": ["electric bill close-up", "kitchen counter"]
    },
    {
      "scene_number": 2,
      "timestamp_range": "0:08-0:16",
      "duration_seconds": 8,
      "purpose": "problem",
      "has_character": false,
      "setting": "rooftop with solar panels at golden hour",
      "emotion": "worried",
      "visual_elements": ["solar panels", "blue sky"]
    },
    {
      "scene_number": 3,
      "timestamp_range": "0:16-0:24",
      "duration_seconds": 8,
      "purpose": "solution",
      "has_character": true,
      "setting": "living room, afternoon",
      "emotion": "excited",
      "visual_elements": ["smart meter display", "family room"]
    },
    {
      "scene_number": 4,
      "timestamp_range": "0:24-0:30",
      "duration_seconds": 6,
      "purpose": "cta",
      "has_character": true,
      "setting": "front porch",
      "emotion": "confident",
      "visual_elements": ["phone with qualification form"]
    }
  ]
}`
}

// SetupOS configures the necessary environment variables that the configuration
// loader (`cloud.LoadConfig`) depends on. By setting these variables, we can
// direct the loader to use the test-specific configuration files (e.g.,
// `configs/.env.test.toml`) instead of production or development ones.
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	// Set the directory where the configuration files are located.
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// Set the runtime environment identifier to "test". This causes the loader
	// to look for a file named ".env.test.toml" for overrides.
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration.
// It ensures that the configuration is loaded from TOML files only once and
// is cached in the package-level `state` variable for subsequent calls.
// This is the primary way tests should retrieve their configuration.
//
// Returns:
//   - A pointer to the loaded and cached cloud.Config struct.
func GetConfig() *cloud.Config {
	// Check if the config is already cached.
	if state.config == nil {
		// If not cached, set up the OS environment for the test configuration.
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		// Create a new, empty config struct.
		config := cloud.NewConfig()
		// Load the configuration from the TOML files into the struct.
		// `LoadConfig` handles the hierarchical loading (base file + test override).
		cloud.LoadConfig(&config)
		// Cache the loaded config in our state manager.
		state.config = config
	}
	// Return the cached configuration.
	return state.config
}

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

// Package cloud_test covers the storage-side models of a cloning run: the
// upload notification shape and the object reference built from it.
package cloud_test

import (
	"encoding/json"
	"testing"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/cloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGCSObjectURI verifies the gs:// address handed to the models and the
// run record.
func TestGCSObjectURI(t *testing.T) {
	object := &cloud.GCSObject{Bucket: "source-ads", Name: "uploads/summer_promo.mp4", MIMEType: "video/mp4"}
	assert.Equal(t, "gs://source-ads/uploads/summer_promo.mp4", object.URI())
}

// TestNotificationDecodeCarriesTriggerFields verifies that the fields the
// trigger parser depends on survive decoding a minimal notification, the
// same shape the REST endpoint synthesizes.
func TestNotificationDecodeCarriesTriggerFields(t *testing.T) {
	payload := `{"kind":"storage#object","name":"ads/spot.mp4","bucket":"source-ads","contentType":"video/mp4"}`

	var notification cloud.GCSPubSubNotification
	require.NoError(t, json.Unmarshal([]byte(payload), &notification))
	assert.Equal(t, "source-ads", notification.Bucket)
	assert.Equal(t, "ads/spot.mp4", notification.Name)
	assert.Equal(t, "video/mp4", notification.ContentType)
}

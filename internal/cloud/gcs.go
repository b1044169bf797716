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

// Package cloud contains data structures and utilities for interacting with
// Google Cloud services. This file models the storage side of a cloning run:
// the notification GCS publishes when a source ad lands in the upload bucket,
// and the trimmed object reference the pipeline passes between its commands.
// Every run starts from one of these notifications, whether it arrives over
// Pub/Sub or is synthesized by the REST trigger endpoint.
package cloud

import "fmt"

// GetGCSObjectName returns the chain context key under which the parsed
// source-ad object travels. The trigger parser writes it once; the analyzer,
// the persistence command, and the uploader all read it by this key.
//
// Outputs:
//   - string: A constant placeholder string "__GCS__OBJ__".
func GetGCSObjectName() string {
	return "__GCS__OBJ__"
}

// GCSPubSubNotification maps the JSON payload of a GCS object-finalize
// notification. Only Bucket, Name, and ContentType matter to the cloning
// pipeline; the rest of the fields are decoded so a full notification round
// trips without loss. The REST trigger endpoint fabricates a minimal instance
// of this same shape, so both entry points feed the chain identically.
type GCSPubSubNotification struct {
	Kind                    string                 `json:"kind"`
	ID                      string                 `json:"id"`
	SelfLink                string                 `json:"selfLink"`
	Name                    string                 `json:"name"`
	Bucket                  string                 `json:"bucket"`
	Generation              string                 `json:"generation"`
	MetaGeneration          string                 `json:"metageneration"`
	ContentType             string                 `json:"contentType"`
	TimeCreated             string                 `json:"timeCreated"`
	Updated                 string                 `json:"updated"`
	StorageClass            string                 `json:"storageClass"`
	TimeStorageClassUpdated string                 `json:"timeStorageClassUpdated"`
	Size                    string                 `json:"size"`
	MD5Hash                 string                 `json:"md5Hash"`
	MediaLink               string                 `json:"mediaLink"`
	MetaData                map[string]interface{} `json:"metadata"`
	Crc32c                  string                 `json:"crc32c"`
	ETag                    string                 `json:"etag"`
}

// GCSObject is the pipeline's reference to one stored video: the source ad a
// run analyzes. It carries just enough to build a gs:// URI and a multi-modal
// file part.
type GCSObject struct {
	Bucket   string // The bucket holding the video.
	Name     string // The object name within the bucket.
	MIMEType string // The MIME type, normally "video/mp4".
}

// URI returns the object's gs:// form, the address the analysis and
// evaluation models and the run record all use.
func (o *GCSObject) URI() string {
	return fmt.Sprintf("gs://%s/%s", o.Bucket, o.Name)
}

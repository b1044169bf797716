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

// Package model defines the core data structures for the ad-cloning pipeline.
// This file holds the source-ad analysis types: the raw AnalysisDocument as it
// arrives from the video-understanding model, and the NormalizedAnalysis every
// downstream stage consumes.
//
// The upstream analyzer is not consistent about the spokesperson field. Some
// responses carry a single object, others a list of candidate spokespersons,
// others nothing at all. That ambiguity is resolved once, at the ingestion
// boundary, by the SpokespersonField union type and the Normalize function;
// everything after normalization sees exactly one spokesperson record.
package model

import (
	"bytes"
	"encoding/json"
)

// Script is the transcript block of an analysis.
type Script struct {
	FullTranscript string `json:"full_transcript"`
}

// Spokesperson describes the on-camera presenter of the source ad.
type Spokesperson struct {
	PhysicalDescription string `json:"physical_description,omitempty"`
	AgeRange            string `json:"age_range,omitempty"`
	Gender              string `json:"gender,omitempty"`
}

// SpokespersonField is the tagged union the raw analysis JSON decodes into:
// either a single record or a collection of records. It exists only at the
// ingestion edge; Normalize collapses it to one Spokesperson.
type SpokespersonField struct {
	Single *Spokesperson
	Many   []*Spokesperson
}

// UnmarshalJSON accepts an object, an array of objects, or null.
func (f *SpokespersonField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &f.Many)
	}
	f.Single = &Spokesperson{}
	return json.Unmarshal(trimmed, f.Single)
}

// MarshalJSON writes the resolved single record so a round trip through JSON
// produces an already-normalized document.
func (f SpokespersonField) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Resolve())
}

// Resolve applies the normalization rule: a single record passes through, a
// non-empty collection yields its first element with the rest discarded, and
// anything else yields an empty record. Never nil, never an error.
func (f SpokespersonField) Resolve() *Spokesperson {
	if f.Single != nil {
		return f.Single
	}
	if len(f.Many) > 0 && f.Many[0] != nil {
		return f.Many[0]
	}
	return &Spokesperson{}
}

// Scene is one narrative beat of an ad, at most twelve seconds long. Scenes
// are created by normalization and read-only afterward; variant generation
// copies them rather than mutating in place.
type Scene struct {
	SceneNumber     int      `json:"scene_number"`
	TimestampRange  string   `json:"timestamp_range,omitempty"`
	DurationSeconds float64  `json:"duration_seconds,omitempty"`
	Purpose         string   `json:"purpose,omitempty"` // hook/problem/solution/proof/cta, free-form in practice.
	HasCharacter    bool     `json:"has_character"`
	Setting         string   `json:"setting,omitempty"`
	Emotion         string   `json:"emotion,omitempty"`
	VisualElements  []string `json:"visual_elements,omitempty"`

	// Scripted hook fields, set by the structure transformer when the scene
	// is replaced with a precomposed extreme-hook scenario.
	Type          string `json:"type,omitempty"`
	Visual        string `json:"visual,omitempty"`
	Camera        string `json:"camera,omitempty"`
	TextOverlay   string `json:"text_overlay,omitempty"`
	BeatBreakdown string `json:"beat_breakdown,omitempty"`
	Audio         string `json:"audio,omitempty"`
	Lighting      string `json:"lighting,omitempty"`
}

// SceneTypeExtremeHook marks a scene replaced by a scripted hook scenario.
const SceneTypeExtremeHook = "extreme_hook"

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	out := *s
	if s.VisualElements != nil {
		out.VisualElements = make([]string, len(s.VisualElements))
		copy(out.VisualElements, s.VisualElements)
	}
	return &out
}

// AnalysisDocument is the raw, pre-normalization shape of a source-ad
// analysis as returned by the video-understanding model.
type AnalysisDocument struct {
	DurationSeconds float64           `json:"duration_seconds"`
	Product         string            `json:"product,omitempty"`
	Script          *Script           `json:"script,omitempty"`
	Spokesperson    SpokespersonField `json:"spokesperson"`
	SceneBreakdown  []*Scene          `json:"scene_breakdown"`
}

// NormalizedAnalysis is the canonical description of a source ad. The
// spokesperson is always exactly one record and the script is always present,
// so downstream stages never branch on missing optional fields.
type NormalizedAnalysis struct {
	DurationSeconds float64       `json:"duration_seconds"`
	Product         string        `json:"product,omitempty"`
	Script          *Script       `json:"script"`
	Spokesperson    *Spokesperson `json:"spokesperson"`
	SceneBreakdown  []*Scene      `json:"scene_breakdown"`
}

// Normalize canonicalizes a raw analysis document. It is a pure transform:
// the spokesperson union collapses to a single record, missing optional
// fields become empty defaults, and no other field is altered. Missing fields
// never cause an error.
func Normalize(doc *AnalysisDocument) *NormalizedAnalysis {
	out := &NormalizedAnalysis{
		DurationSeconds: doc.DurationSeconds,
		Product:         doc.Product,
		Spokesperson:    doc.Spokesperson.Resolve(),
		SceneBreakdown:  doc.SceneBreakdown,
	}
	if doc.Script != nil {
		out.Script = doc.Script
	} else {
		out.Script = &Script{}
	}
	if out.SceneBreakdown == nil {
		out.SceneBreakdown = make([]*Scene, 0)
	}
	return out
}

// Document converts a normalized analysis back into document form. Running
// Normalize on the result returns an identical analysis, which is what makes
// normalization idempotent.
func (n *NormalizedAnalysis) Document() *AnalysisDocument {
	return &AnalysisDocument{
		DurationSeconds: n.DurationSeconds,
		Product:         n.Product,
		Script:          n.Script,
		Spokesperson:    SpokespersonField{Single: n.Spokesperson},
		SceneBreakdown:  n.SceneBreakdown,
	}
}

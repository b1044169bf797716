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

package model

// This file provides canned example objects used as few-shot samples when
// prompting the analysis model. Giving the model a fully populated document
// anchors the output schema far better than a prose description of it.

// GetExampleScene returns a representative scene used in few-shot prompts.
func GetExampleScene() *Scene {
	return &Scene{
		SceneNumber:     2,
		TimestampRange:  "0:03-0:11",
		DurationSeconds: 8,
		Purpose:         "problem",
		HasCharacter:    true,
		Setting:         "Bright kitchen, morning light through a window",
		Emotion:         "frustrated",
		VisualElements:  []string{"cluttered countertop", "stack of unpaid bills", "spokesperson gesturing at papers"},
	}
}

// GetExampleAnalysis returns a complete analysis document used as the
// few-shot sample for the video analysis prompt. Every field the pipeline
// consumes downstream is populated.
func GetExampleAnalysis() *AnalysisDocument {
	spokes := &Spokesperson{
		PhysicalDescription: "Woman in her early 30s with shoulder-length brown hair, wearing a teal blouse",
		AgeRange:            "30-35",
		Gender:              "female",
	}
	return &AnalysisDocument{
		DurationSeconds: 32,
		Product:         "HomeShield solar savings program",
		Script: &Script{
			FullTranscript: "Did you know your electric bill could be cut in half? Most homeowners are overpaying every single month. HomeShield connects you with local installers at no upfront cost. Tap the link below before enrollment closes.",
		},
		Spokesperson: SpokespersonField{Single: spokes},
		SceneBreakdown: []*Scene{
			{
				SceneNumber:     1,
				TimestampRange:  "0:00-0:03",
				DurationSeconds: 3,
				Purpose:         "hook",
				HasCharacter:    true,
				Setting:         "Front porch of a suburban home",
				Emotion:         "excited",
				VisualElements:  []string{"spokesperson holding an electric bill", "sunlit porch"},
			},
			GetExampleScene(),
			{
				SceneNumber:     3,
				TimestampRange:  "0:11-0:24",
				DurationSeconds: 13,
				Purpose:         "solution",
				HasCharacter:    false,
				Setting:         "Aerial view of rooftop solar panels",
				Emotion:         "confident",
				VisualElements:  []string{"solar panels glinting in sunlight", "rows of suburban roofs"},
			},
			{
				SceneNumber:     4,
				TimestampRange:  "0:24-0:32",
				DurationSeconds: 8,
				Purpose:         "cta",
				HasCharacter:    true,
				Setting:         "Front porch, closer framing",
				Emotion:         "urgent",
				VisualElements:  []string{"spokesperson pointing downward", "on-screen arrow graphic"},
			},
		},
	}
}

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
// command that opens a cloning run: it mints the run identifier and records
// the start time so the persistence step can write an accurate run row.
package commands

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
)

// GetRunIDName returns the well-known context key under which the run
// identifier is stored.
func GetRunIDName() string {
	return "__RUN_ID__"
}

// GetRunStartName returns the well-known context key under which the run's
// start time is stored.
func GetRunStartName() string {
	return "__RUN_START__"
}

// RunInit is a command that assigns a unique identifier and a start timestamp
// to a cloning run.
type RunInit struct {
	cor.BaseCommand
}

// NewRunInit is the constructor for the RunInit command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *RunInit: A pointer to the newly instantiated command.
func NewRunInit(name string) *RunInit {
	return &RunInit{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute mints the run id and timestamps the run. The incoming trigger
// message is echoed to the output parameter so the chain pipes it through to
// the trigger parser untouched.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *RunInit) Execute(context cor.Context) {
	runID := uuid.New().String()
	log.Printf("starting cloning run %s", runID)

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetRunIDName(), runID)
	context.Add(GetRunStartName(), time.Now())
	context.Add(s.GetOutputParam(), context.Get(s.GetInputParam()))
}

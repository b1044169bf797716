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
// command that removes the run's local scratch files.
//
// Logic Flow:
// Commands that create files on local disk (downloaded scene clips, concat
// manifests) register them on the context with `AddTempFile`. This command
// runs at the tail of the chain and deletes everything registered. A file
// that is already gone or cannot be removed is logged and skipped; cleanup
// never fails a run that otherwise succeeded.
package commands

import (
	"log"
	"os"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
)

// WorkspaceCleanup is a command that deletes the temp files registered during
// a run.
type WorkspaceCleanup struct {
	cor.BaseCommand
}

// NewWorkspaceCleanup is the constructor for the WorkspaceCleanup command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *WorkspaceCleanup: A pointer to the newly instantiated command.
func NewWorkspaceCleanup(name string) *WorkspaceCleanup {
	return &WorkspaceCleanup{BaseCommand: *cor.NewBaseCommand(name)}
}

// IsExecutable only requires a valid Go context. Cleanup runs even when the
// previous command piped nothing forward.
func (v *WorkspaceCleanup) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil
}

// Execute removes every registered temp file.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (v *WorkspaceCleanup) Execute(context cor.Context) {
	removed := 0
	for _, file := range context.GetTempFiles() {
		if err := os.Remove(file); err != nil {
			if !os.IsNotExist(err) {
				log.Printf("failed to remove temp file %s: %v", file, err)
			}
			continue
		}
		removed++
	}
	log.Printf("cleaned up %d temp file(s)", removed)
	v.GetSuccessCounter().Add(context.GetContext(), 1)
}

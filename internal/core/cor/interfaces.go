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

// Package cor (Chain of Responsibility) provides the building blocks for the
// ad-cloning pipelines. Every pipeline stage is a Command; stages are strung
// together into Chains; all state for one run travels in a shared Context.
// This file defines the interfaces that tie those pieces together.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the context keys used by a BaseChain to pipe the
// primary output of one command into the primary input of the next.
const (
	// CtxIn is the default key a command reads its primary input from.
	CtxIn = "__IN__"
	// CtxOut is the default key a command writes its primary output to. The
	// chain moves this value to CtxIn before the next command runs.
	CtxOut = "__OUT__"
)

// Context is the shared state carried through one pipeline run. It is a
// property bag for inter-command data, an error collector keyed by command
// name, and a registry of temporary files to clean up when the run ends.
type Context interface {
	// SetContext sets the standard Go context used for cancellation and for
	// propagating the active OpenTelemetry span.
	SetContext(context context.Context)

	// GetContext returns the standard Go context.
	GetContext() context.Context

	// Add stores a value under a key and returns the Context for chaining.
	Add(key string, value interface{}) Context

	// AddError records a failure, keyed by the name of the command that
	// produced it.
	AddError(key string, err error)

	// GetErrors returns every error recorded so far.
	GetErrors() map[string]error

	// Get returns the value stored under key, or nil.
	Get(key string) interface{}

	// Remove deletes the value stored under key.
	Remove(key string)

	// HasErrors reports whether any command has recorded an error.
	HasErrors() bool

	// AddTempFile registers a file for removal when the context closes.
	AddTempFile(file string)

	// GetTempFiles returns the registered temporary file paths.
	GetTempFiles() []string

	// Close removes the temporary files registered with AddTempFile. Defer it
	// at the start of a run.
	Close()
}

// Executable is anything with a single unit of business logic.
type Executable interface {
	// Execute reads inputs from the context, does its work, and writes its
	// outputs (or errors) back to the context.
	Execute(context Context)
}

// Command is an atomic, instrumented unit of pipeline work.
type Command interface {
	Executable

	// GetName returns the command's unique name, used in logs, traces, and
	// as the error key in the context.
	GetName() string

	// GetInputParam returns the context key the command reads its primary
	// input from.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes its primary
	// output to.
	GetOutputParam() string

	// IsExecutable reports whether the context holds everything the command
	// needs. Checked by the chain before Execute.
	IsExecutable(context Context) bool

	// GetTracer returns the command's OpenTelemetry tracer.
	GetTracer() trace.Tracer

	// GetMeter returns the command's OpenTelemetry meter.
	GetMeter() metric.Meter

	// GetSuccessCounter returns the counter incremented on success.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns the counter incremented on failure.
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands. A Chain is itself a Command, so
// chains nest (Composite pattern): a whole sub-pipeline can be one step of a
// larger pipeline.
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing
	// commands after one of them records an error. Default is to stop.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}

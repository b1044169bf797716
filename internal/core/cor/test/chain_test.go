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

// Package cor_test contains unit tests for the chain of responsibility
// primitives: the CtxOut to CtxIn piping between commands, the stop-on-error
// policy and its ContinueOnFailure override, and temp file tracking on the
// shared context.
package cor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-ad-cloner/internal/core/cor"
	"github.com/zeebo/assert"
)

// appendCommand records its execution and emits a value for the next command.
type appendCommand struct {
	cor.BaseCommand
	ran  *[]string
	name string
	fail bool
}

func newAppendCommand(name string, ran *[]string, fail bool) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), ran: ran, name: name, fail: fail}
}

// IsExecutable overrides the default input-key check; these commands need
// only a live Go context, like the pipeline's trigger commands.
func (c *appendCommand) IsExecutable(ctx cor.Context) bool {
	return ctx.GetContext() != nil
}

func (c *appendCommand) Execute(ctx cor.Context) {
	*c.ran = append(*c.ran, c.name)
	if c.fail {
		ctx.AddError(c.name, errors.New("boom"))
		return
	}
	ctx.Add(cor.CtxOut, c.name)
}

func newTestContext() cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	return ctx
}

// TestChainPipesOutputToInput verifies the piping step: whatever a command
// stores under CtxOut arrives at the next command under CtxIn, and CtxOut is
// cleared between steps.
func TestChainPipesOutputToInput(t *testing.T) {
	var ran []string
	var seenInput interface{}

	first := newAppendCommand("first", &ran, false)
	probe := &inputProbe{BaseCommand: *cor.NewBaseCommand("probe"), seen: &seenInput}

	ctx := newTestContext()
	cor.NewBaseChain("pipe-test").
		AddCommand(first).
		AddCommand(probe).
		Execute(ctx)

	assert.Equal(t, []string{"first"}, ran)
	assert.Equal(t, "first", seenInput)
	assert.Nil(t, ctx.Get(cor.CtxOut))
}

// inputProbe captures the CtxIn value it observes when executed.
type inputProbe struct {
	cor.BaseCommand
	seen *interface{}
}

func (c *inputProbe) Execute(ctx cor.Context) {
	*c.seen = ctx.Get(cor.CtxIn)
}

// TestChainStopsOnError verifies the default error policy: once a command
// adds an error, later commands never run.
func TestChainStopsOnError(t *testing.T) {
	var ran []string
	ctx := newTestContext()

	cor.NewBaseChain("stop-test").
		AddCommand(newAppendCommand("one", &ran, false)).
		AddCommand(newAppendCommand("two", &ran, true)).
		AddCommand(newAppendCommand("three", &ran, false)).
		Execute(ctx)

	assert.Equal(t, []string{"one", "two"}, ran)
	assert.True(t, ctx.HasErrors())
}

// TestChainContinueOnFailure verifies the override: with ContinueOnFailure
// set, commands after a failure still execute.
func TestChainContinueOnFailure(t *testing.T) {
	var ran []string
	ctx := newTestContext()

	cor.NewBaseChain("continue-test").
		ContinueOnFailure(true).
		AddCommand(newAppendCommand("one", &ran, true)).
		AddCommand(newAppendCommand("two", &ran, false)).
		Execute(ctx)

	assert.Equal(t, []string{"one", "two"}, ran)
	assert.True(t, ctx.HasErrors())
}

// TestContextTempFiles verifies that temp file registrations accumulate in
// order on the shared context for the cleanup step to consume.
func TestContextTempFiles(t *testing.T) {
	ctx := newTestContext()
	ctx.AddTempFile("/tmp/a.mp4")
	ctx.AddTempFile("/tmp/b.txt")

	assert.Equal(t, []string{"/tmp/a.mp4", "/tmp/b.txt"}, ctx.GetTempFiles())
}

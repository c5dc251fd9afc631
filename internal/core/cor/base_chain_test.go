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
// primitives: the piped data flip-flop, the stop-on-error behavior, and
// cancellation of a running chain.
package cor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/stretchr/testify/assert"
)

// appendCommand appends its suffix to the piped string value.
type appendCommand struct {
	cor.BaseCommand
	suffix string
}

func newAppendCommand(name, suffix string) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), suffix: suffix}
}

func (c *appendCommand) Execute(ctx cor.Context) {
	in, _ := ctx.Get(c.GetInputParam()).(string)
	ctx.Add(c.GetOutputParam(), in+c.suffix)
}

// failingCommand records an error on the context and produces no output.
type failingCommand struct {
	cor.BaseCommand
}

func (c *failingCommand) Execute(ctx cor.Context) {
	ctx.AddError(c.GetName(), errors.New("boom"))
}

// cancelingCommand cancels the run from inside its own execution, then
// publishes the partial result it had already produced, the way the
// resolution fan-out hands over whatever completed before a cancellation.
type cancelingCommand struct {
	cor.BaseCommand
	cancel context.CancelFunc
	ran    bool
}

func (c *cancelingCommand) Execute(ctx cor.Context) {
	c.ran = true
	c.cancel()
	ctx.Add(c.GetOutputParam(), "partial-")
}

// TestChainPipesOutputToInput verifies the flip-flop: each command's output
// becomes the next command's input, in order.
func TestChainPipesOutputToInput(t *testing.T) {
	chain := cor.NewBaseChain("pipe-test")
	chain.AddCommand(newAppendCommand("first", "a"))
	chain.AddCommand(newAppendCommand("second", "b"))
	chain.AddCommand(newAppendCommand("third", "c"))

	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, "x-")
	chain.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, "x-abc", ctx.Get(cor.CtxIn))
}

// TestChainStopsOnError verifies that an error recorded by one command
// prevents the following commands from running.
func TestChainStopsOnError(t *testing.T) {
	tail := newAppendCommand("tail", "never")
	chain := cor.NewBaseChain("stop-test")
	chain.AddCommand(newAppendCommand("head", "a"))
	chain.AddCommand(&failingCommand{BaseCommand: *cor.NewBaseCommand("failer")})
	chain.AddCommand(tail)

	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, "")
	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Contains(t, ctx.GetErrors(), "failer")
	// The tail command never ran, so its suffix is absent from the pipe.
	assert.NotEqual(t, "anever", ctx.Get(cor.CtxIn))
}

// TestChainContinueOnFailure verifies that a chain configured to continue
// past failures still runs the remaining commands.
func TestChainContinueOnFailure(t *testing.T) {
	chain := cor.NewBaseChain("continue-test")
	chain.ContinueOnFailure(true)
	chain.AddCommand(&failingCommand{BaseCommand: *cor.NewBaseCommand("failer")})
	chain.AddCommand(newAppendCommand("tail", "ran"))

	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, "")
	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Equal(t, "ran", ctx.Get(cor.CtxIn))
}

// TestChainCancellationSkipsToFinalizers verifies the cancellation
// behavior: the in-flight command finishes, ordinary commands after the
// cancellation point are skipped, and commands marked to run on cancel
// still execute over the partial result.
func TestChainCancellationSkipsToFinalizers(t *testing.T) {
	goCtx, cancel := context.WithCancel(context.Background())
	canceler := &cancelingCommand{BaseCommand: *cor.NewBaseCommand("canceler"), cancel: cancel}
	finalizer := newAppendCommand("finalizer", "done")
	finalizer.RunOnCancel = true

	chain := cor.NewBaseChain("cancel-test")
	chain.AddCommand(canceler)
	chain.AddCommand(newAppendCommand("tail", "never"))
	chain.AddCommand(finalizer)

	ctx := cor.NewBaseContext()
	ctx.SetContext(goCtx)
	ctx.Add(cor.CtxIn, "")
	chain.Execute(ctx)

	assert.True(t, canceler.ran)
	assert.False(t, ctx.HasErrors())
	// The ordinary tail was skipped; the finalizer ran over the partial
	// value the canceler handed off.
	out, _ := ctx.Get(cor.CtxIn).(string)
	assert.NotContains(t, out, "never")
	assert.Equal(t, "partial-done", out)
}

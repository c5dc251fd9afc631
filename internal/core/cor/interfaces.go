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

// Package cor (Chain of Responsibility) provides the fundamental building
// blocks for assembling the documentary pipeline as a sequence of commands.
// This file defines the core interfaces. Each pipeline stage (segmenting,
// beat planning, narration, resolution, timeline synthesis, serialization)
// is a Command; a run is a Chain of those commands sharing one Context.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used to pipe the primary data flow through a
// BaseChain: after each command runs, the chain moves the value stored under
// CtxOut to CtxIn so it becomes the next command's input.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the shared state object passed through a chain of commands for
// a single pipeline run. It carries data, collected errors, temporary files
// scheduled for cleanup, and the standard Go context used for cancellation
// and trace propagation.
type Context interface {
	// SetContext sets the standard Go `context.Context` carried by the run.
	SetContext(context context.Context)

	// GetContext retrieves the standard Go `context.Context`.
	GetContext() context.Context

	// Add stores a key-value pair. Returns the Context for fluent chaining.
	Add(key string, value interface{}) Context

	// AddError records an error produced by a command, keyed by command name.
	AddError(key string, err error)

	// GetErrors returns all errors collected during the run.
	GetErrors() map[string]error

	// Get retrieves a value by key, or nil when absent.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// HasErrors reports whether any command recorded an error.
	HasErrors() bool

	// AddTempFile tracks a temporary file created during the run so Close
	// can remove it.
	AddTempFile(file string)

	// GetTempFiles returns all tracked temporary file paths.
	GetTempFiles() []string

	// Close removes tracked temporary files. Defer it at the start of a run.
	Close()
}

// Executable is anything with a core execution step that reads its input from
// and writes its result to a shared Context.
type Executable interface {
	Execute(context Context)
}

// Command is an atomic, testable unit of pipeline work.
type Command interface {
	Executable

	// GetName returns the command's unique name, used in logs, telemetry,
	// and as the key for errors it records.
	GetName() string

	// GetInputParam returns the context key the command reads its primary
	// input from.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes its primary
	// output to.
	GetOutputParam() string

	// IsExecutable is the precondition check run before Execute.
	IsExecutable(context Context) bool

	// GetTracer returns the OpenTelemetry tracer for this command.
	GetTracer() trace.Tracer

	// GetMeter returns the OpenTelemetry meter for creating metrics.
	GetMeter() metric.Meter

	// GetSuccessCounter returns the counter incremented on success.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns the counter incremented on failure.
	GetErrorCounter() metric.Int64Counter

	// RunsOnCancel reports whether the chain should still run this command
	// after the run's Go context has been canceled. Commands that emit the
	// run's durable artifacts set this so a canceled run keeps the partial
	// output it already earned.
	RunsOnCancel() bool
}

// Chain is an ordered sequence of commands. A Chain is itself a Command, so
// chains nest (Composite pattern). The chain stops at the first command that
// records an error unless configured to continue. Once the run's Go context
// has been canceled the chain skips the remaining commands, except those
// whose RunsOnCancel reports true.
type Chain interface {
	Command

	// ContinueOnFailure configures whether later commands still run after an
	// earlier one records an error.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}

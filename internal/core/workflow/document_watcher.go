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

// Package workflow assembles the pipeline's command chains. This file
// implements the local drop-folder watcher: markdown files dropped into
// the watched directory start pipeline runs without GCS or Pub/Sub, which
// is how development and single-machine deployments feed the system. A
// YAML sidecar next to the document (same base name, .yaml extension)
// overrides per-run options.
package workflow

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"gopkg.in/yaml.v3"
)

// writeSettleDelay is how long the watcher waits after a create event
// before reading, so the writer has finished flushing the file.
const writeSettleDelay = 500 * time.Millisecond

// DocumentWatcher runs pipeline executions for markdown files appearing in
// a local directory.
type DocumentWatcher struct {
	dropDir  string
	pipeline cor.Command
	watcher  *fsnotify.Watcher
}

// NewDocumentWatcher creates a watcher over dropDir that feeds each
// dropped markdown file into the given pipeline.
//
// Inputs:
//   - dropDir: The directory to watch; it must exist.
//   - pipeline: The direct-mode documentary workflow.
//
// Outputs:
//   - *DocumentWatcher: The initialized watcher (not yet started).
//   - error: An error if the filesystem watch cannot be established.
func NewDocumentWatcher(dropDir string, pipeline cor.Command) (*DocumentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dropDir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return &DocumentWatcher{dropDir: dropDir, pipeline: pipeline, watcher: watcher}, nil
}

// Start consumes filesystem events until the context is canceled. Each
// qualifying file runs on its own goroutine so a slow pipeline run does
// not block event handling.
//
// Inputs:
//   - ctx: The lifecycle context; cancellation stops the watcher.
func (w *DocumentWatcher) Start(ctx context.Context) {
	go func() {
		defer func() { _ = w.watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				name := strings.ToLower(event.Name)
				if !strings.HasSuffix(name, ".md") && !strings.HasSuffix(name, ".markdown") {
					continue
				}
				go w.runDocument(ctx, event.Name)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				slog.Error("drop folder watch error", "error", err)
			}
		}
	}()
	slog.Info("watching drop folder", "dir", w.dropDir)
}

// runDocument reads a dropped file plus its optional sidecar and executes
// the pipeline.
func (w *DocumentWatcher) runDocument(ctx context.Context, path string) {
	time.Sleep(writeSettleDelay)

	content, err := os.ReadFile(path)
	if err != nil {
		slog.Error("failed to read dropped document", "path", path, "error", err)
		return
	}

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	defer chainCtx.Close()

	if opts := readSidecar(path); opts != nil {
		chainCtx.Add(commands.GetRunOptionsKey(), opts)
	}
	chainCtx.Add(cor.CtxIn, string(content))

	slog.Info("starting run for dropped document", "path", path)
	w.pipeline.Execute(chainCtx)

	if chainCtx.HasErrors() {
		for name, err := range chainCtx.GetErrors() {
			slog.Error("dropped document run failed", "path", path, "command", name, "error", err)
		}
	}
}

// readSidecar loads the YAML options file next to the document, if any.
func readSidecar(docPath string) *model.RunOptions {
	base := strings.TrimSuffix(docPath, filepath.Ext(docPath))
	for _, ext := range []string{".yaml", ".yml"} {
		data, err := os.ReadFile(base + ext)
		if err != nil {
			continue
		}
		opts := &model.RunOptions{}
		if err := yaml.Unmarshal(data, opts); err != nil {
			slog.Warn("ignoring malformed run options sidecar", "path", base+ext, "error", err)
			return nil
		}
		return opts
	}
	return nil
}

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

// Package commands provides the concrete implementations of the workflow
// Command interface. This file defines the entry command for runs
// triggered by a research document landing in Cloud Storage: GCS publishes
// a notification to Pub/Sub, and this command parses that message down to
// the bucket, object name, and content type the rest of the chain needs.
package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-video-beats/internal/cloud"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
)

// DocumentTriggerReader parses a GCS Pub/Sub notification into a
// simplified GCSObject and rejects objects that are not markdown
// documents.
type DocumentTriggerReader struct {
	cor.BaseCommand
}

// NewDocumentTriggerReader is the constructor for the DocumentTriggerReader
// command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *DocumentTriggerReader: A pointer to the newly instantiated command.
func NewDocumentTriggerReader(name string) *DocumentTriggerReader {
	return &DocumentTriggerReader{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the raw notification JSON from the input parameter and
// publishes the resulting GCSObject for the chain.
//
// Inputs:
//   - context: The shared workflow context holding the raw message data.
func (c *DocumentTriggerReader) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)

	var out cloud.GCSPubSubNotification
	err := json.Unmarshal([]byte(in), &out)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to unmarshal GCS notification: %w", err))
		return
	}

	// The documents bucket only triggers on research markdown; anything
	// else (sidecar files, stray uploads) ends the run here.
	name := strings.ToLower(out.Name)
	if !strings.HasSuffix(name, ".md") && !strings.HasSuffix(name, ".markdown") {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("object %s is not a markdown document", out.Name))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)

	msg := &cloud.GCSObject{Bucket: out.Bucket, Name: out.Name, MIMEType: out.ContentType}
	context.Add(cloud.GetGCSObjectName(), msg)
	context.Add(c.GetOutputParam(), msg)
}

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
// Command interface. This file defines the command that loads a research
// document's content out of Cloud Storage. Research documents are small
// markdown files, so the content is read into memory rather than staged
// through a temp file.
package commands

import (
	"fmt"
	"io"
	"log"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-video-beats/internal/cloud"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
)

// GCSDocumentReader reads the triggering document's full content from GCS
// and passes it down the chain as a string.
type GCSDocumentReader struct {
	cor.BaseCommand
	client *storage.Client
}

// NewGCSDocumentReader is the constructor for the GCSDocumentReader
// command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: An initialized *storage.Client.
//
// Outputs:
//   - *GCSDocumentReader: A pointer to the newly instantiated command.
func NewGCSDocumentReader(name string, client *storage.Client) *GCSDocumentReader {
	return &GCSDocumentReader{BaseCommand: *cor.NewBaseCommand(name), client: client}
}

// Execute streams the object identified by the input GCSObject into memory.
//
// Inputs:
//   - context: The shared workflow context.
func (c *GCSDocumentReader) Execute(context cor.Context) {
	msg := context.Get(c.GetInputParam()).(*cloud.GCSObject)

	obj := c.client.Bucket(msg.Bucket).Object(msg.Name)
	reader, err := obj.NewReader(context.GetContext())
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create GCS reader for gs://%s/%s: %w", msg.Bucket, msg.Name, err))
		return
	}
	defer func(reader *storage.Reader) {
		if err := reader.Close(); err != nil {
			log.Printf("failed to close GCS reader: %v\n", err)
		}
	}(reader)

	data, err := io.ReadAll(reader)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to read gs://%s/%s: %w", msg.Bucket, msg.Name, err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	log.Printf("Loaded research document gs://%s/%s (%d bytes)", msg.Bucket, msg.Name, len(data))
	context.Add(c.GetOutputParam(), string(data))
}

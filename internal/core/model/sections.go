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

// Package model defines the core data structures for the application.
// This file, `sections.go`, holds the segmented representation of a research
// document: an ordered list of heading/body pairs with boilerplate sections
// already filtered out.
package model

// Section is a single heading/body pair extracted from a research document.
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// ResearchDocument is the segmenter's output: the ordered, filtered sections
// of one source document plus enough provenance to name the run.
type ResearchDocument struct {
	SourceName string     `json:"source_name"` // The file or object name the document came from.
	Sections   []*Section `json:"sections"`
}

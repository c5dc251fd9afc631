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

package model

// RunOptions carries per-run overrides for the output document. A YAML
// sidecar dropped next to a watched markdown file, or the fields of an API
// request, populate it; zero values fall back to the configured defaults.
type RunOptions struct {
	ProjectName      string  `yaml:"project_name" json:"project_name"`
	OutputFilename   string  `yaml:"output_filename" json:"output_filename"`
	OutputResolution string  `yaml:"output_resolution" json:"output_resolution"`
	OutputFPS        float64 `yaml:"output_fps" json:"output_fps"`
}

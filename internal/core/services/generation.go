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

// Package services implements the pipeline's collaborator contracts against
// real backends. This file defines the generation service: beat planning and
// voice-over production. Both sit on the critical path of a run, so a
// failure here is fatal and wrapped in ErrGenerationFailure.
//
// Logic Flow (beats):
//  1. The research document's sections are rendered into a prompt via a Go
//     template, with a well-formed JSON example included to guide the model
//     (few-shot prompting).
//  2. The rate-limited model returns a JSON beat plan, which is parsed and
//     validated for ordering.
//
// Logic Flow (narration):
//  1. A second prompt asks the model for a narration script as JSON.
//  2. A speech-capable model synthesizes the script into raw PCM audio.
//  3. The audio is wrapped in a WAV container, uploaded to the project's
//     asset store, and its exact duration computed from the PCM length.
//     That duration fixes the total timeline length downstream.
package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/template"

	"github.com/jaycherian/gcp-go-video-beats/internal/cloud"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// ErrGenerationFailure marks beat planning or narration as unavailable.
// Unlike tier and candidate errors, this aborts the whole run: with no
// beats there is nothing to resolve, and with no voice-over there is no
// timeline length to fill.
var ErrGenerationFailure = errors.New("generation service unavailable")

// GenerationService is the contract for the two generative steps of a run.
type GenerationService interface {
	// GenerateBeats turns a segmented research document into an ordered
	// beat plan.
	GenerateBeats(ctx context.Context, doc *model.ResearchDocument) (*model.BeatPlan, error)
	// GenerateNarration produces the voice-over asset for a document and
	// returns its identifier and exact duration.
	GenerateNarration(ctx context.Context, doc *model.ResearchDocument, projectID string) (*model.NarrationResult, error)
}

// GenAIGenerationService implements GenerationService on Vertex AI
// generative models plus a speech-capable model for synthesis.
type GenAIGenerationService struct {
	BeatsModel     *cloud.QuotaAwareGenerativeAIModel // Rate-limited model for beat planning.
	NarrationModel *cloud.QuotaAwareGenerativeAIModel // Rate-limited model for the narration script.
	SpeechModels   *genai.Models                      // Model handle for audio synthesis.
	SpeechModel    string                             // Name of the speech model.
	Voice          string                             // Prebuilt voice for synthesis.
	SampleRateHz   int                                // PCM sample rate the speech model emits.
	Store          ProjectStore                       // Destination for the voice-over asset.

	beatsTemplate     *template.Template
	narrationTemplate *template.Template

	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

// NewGenAIGenerationService builds the generation service from the loaded
// configuration and initialized clients. The beat and narration prompt
// templates are parsed once here.
//
// Inputs:
//   - config: The application configuration (prompts, narration settings).
//   - beatsModel: Rate-limited model for beat planning.
//   - narrationModel: Rate-limited model for the narration script.
//   - speechModels: Model handle used for audio synthesis.
//   - store: Project asset store receiving the voice-over upload.
//
// Outputs:
//   - *GenAIGenerationService: The initialized service.
//   - error: An error if either prompt template fails to parse.
func NewGenAIGenerationService(
	config *cloud.Config,
	beatsModel *cloud.QuotaAwareGenerativeAIModel,
	narrationModel *cloud.QuotaAwareGenerativeAIModel,
	speechModels *genai.Models,
	store ProjectStore) (*GenAIGenerationService, error) {

	beatsTemplate, err := template.New("beats").Parse(config.PromptTemplates.BeatsPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse beats prompt: %w", err)
	}
	narrationTemplate, err := template.New("narration").Parse(config.PromptTemplates.NarrationPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse narration prompt: %w", err)
	}

	out := &GenAIGenerationService{
		BeatsModel:        beatsModel,
		NarrationModel:    narrationModel,
		SpeechModels:      speechModels,
		SpeechModel:       config.Narration.SpeechModel,
		Voice:             config.Narration.Voice,
		SampleRateHz:      config.Narration.SampleRateHz,
		Store:             store,
		beatsTemplate:     beatsTemplate,
		narrationTemplate: narrationTemplate,
	}

	meter := otel.Meter(cor.MeterNamespace)
	out.inputTokenCounter, _ = meter.Int64Counter("generation.gemini.token.input")
	out.outputTokenCounter, _ = meter.Int64Counter("generation.gemini.token.output")
	out.retryCounter, _ = meter.Int64Counter("generation.gemini.token.retry")

	return out, nil
}

// renderSections flattens the document into the plain-text form the prompts
// consume.
func renderSections(doc *model.ResearchDocument) string {
	var buffer bytes.Buffer
	for _, section := range doc.Sections {
		buffer.WriteString(section.Heading)
		buffer.WriteString("\n")
		buffer.WriteString(section.Body)
		buffer.WriteString("\n\n")
	}
	return buffer.String()
}

// GenerateBeats renders the beat planning prompt, queries the model, and
// parses the JSON beat plan. Beats come back sorted by number.
//
// Inputs:
//   - ctx: The request context.
//   - doc: The segmented research document.
//
// Outputs:
//   - *model.BeatPlan: The ordered beat plan.
//   - error: ErrGenerationFailure (wrapped) on any model or parse failure.
func (s *GenAIGenerationService) GenerateBeats(ctx context.Context, doc *model.ResearchDocument) (*model.BeatPlan, error) {
	params := make(map[string]interface{})
	params["SECTIONS"] = renderSections(doc)
	exampleJson, _ := json.Marshal(model.GetExampleBeatPlan())
	params["EXAMPLE_JSON"] = string(exampleJson)

	var buffer bytes.Buffer
	if err := s.beatsTemplate.Execute(&buffer, params); err != nil {
		return nil, fmt.Errorf("%w: failed to execute beats prompt: %v", ErrGenerationFailure, err)
	}

	out, err := cloud.GenerateStructuredResponse(ctx, s.inputTokenCounter, s.outputTokenCounter, s.retryCounter, 0, s.BeatsModel, cloud.NewTextContent(buffer.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: beat planning request failed: %v", ErrGenerationFailure, err)
	}

	plan := &model.BeatPlan{}
	if err := json.Unmarshal([]byte(out), plan); err != nil {
		return nil, fmt.Errorf("%w: failed to parse beat plan: %v", ErrGenerationFailure, err)
	}
	if len(plan.Beats) == 0 {
		return nil, fmt.Errorf("%w: beat plan is empty", ErrGenerationFailure)
	}
	sort.SliceStable(plan.Beats, func(i, j int) bool {
		return plan.Beats[i].Number < plan.Beats[j].Number
	})

	return plan, nil
}

// narrationScript is the JSON envelope the narration prompt asks for.
type narrationScript struct {
	Script string `json:"script"`
}

// GenerateNarration produces the voice-over: script generation, speech
// synthesis, and upload to the project store.
//
// Inputs:
//   - ctx: The request context.
//   - doc: The segmented research document.
//   - projectID: The project that owns the resulting audio asset.
//
// Outputs:
//   - *model.NarrationResult: Audio asset ID, exact duration, and script.
//   - error: ErrGenerationFailure (wrapped) on any failure in the chain.
func (s *GenAIGenerationService) GenerateNarration(ctx context.Context, doc *model.ResearchDocument, projectID string) (*model.NarrationResult, error) {
	params := make(map[string]interface{})
	params["SECTIONS"] = renderSections(doc)

	var buffer bytes.Buffer
	if err := s.narrationTemplate.Execute(&buffer, params); err != nil {
		return nil, fmt.Errorf("%w: failed to execute narration prompt: %v", ErrGenerationFailure, err)
	}

	out, err := cloud.GenerateStructuredResponse(ctx, s.inputTokenCounter, s.outputTokenCounter, s.retryCounter, 0, s.NarrationModel, cloud.NewTextContent(buffer.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: narration script request failed: %v", ErrGenerationFailure, err)
	}
	script := &narrationScript{}
	if err := json.Unmarshal([]byte(out), script); err != nil {
		return nil, fmt.Errorf("%w: failed to parse narration script: %v", ErrGenerationFailure, err)
	}

	pcm, err := s.synthesize(ctx, script.Script)
	if err != nil {
		return nil, fmt.Errorf("%w: speech synthesis failed: %v", ErrGenerationFailure, err)
	}

	// 16-bit mono PCM, so two bytes per sample.
	duration := float64(len(pcm)) / float64(s.SampleRateHz*2)

	tmp, err := os.CreateTemp("", "narration-*.wav")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create temp audio file: %v", ErrGenerationFailure, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := writeWav(tmp, pcm, s.SampleRateHz); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("%w: failed to write audio file: %v", ErrGenerationFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to close audio file: %v", ErrGenerationFailure, err)
	}

	audioID, err := s.Store.Upload(ctx, projectID, tmp.Name(), &model.ProjectAsset{
		Name:        "voiceover.wav",
		Description: "generated documentary voice-over",
		AssetType:   "voiceover",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to upload voice-over: %v", ErrGenerationFailure, err)
	}

	return &model.NarrationResult{
		AudioID:         audioID,
		DurationSeconds: duration,
		Script:          script.Script,
	}, nil
}

// synthesize runs the speech model and returns the raw PCM bytes of the
// first audio part in the response.
func (s *GenAIGenerationService) synthesize(ctx context.Context, script string) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.Voice},
			},
		},
	}
	resp, err := s.SpeechModels.GenerateContent(ctx, s.SpeechModel, cloud.NewTextContent(script), config)
	if err != nil {
		return nil, err
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, errors.New("speech model returned no audio data")
}

// writeWav wraps raw 16-bit mono PCM in a minimal RIFF/WAVE container.
func writeWav(w *os.File, pcm []byte, sampleRate int) error {
	var header bytes.Buffer
	dataLen := uint32(len(pcm))
	byteRate := uint32(sampleRate * 2)

	header.WriteString("RIFF")
	_ = binary.Write(&header, binary.LittleEndian, 36+dataLen)
	header.WriteString("WAVE")
	header.WriteString("fmt ")
	_ = binary.Write(&header, binary.LittleEndian, uint32(16))
	_ = binary.Write(&header, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&header, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&header, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&header, binary.LittleEndian, byteRate)
	_ = binary.Write(&header, binary.LittleEndian, uint16(2))  // block align
	_ = binary.Write(&header, binary.LittleEndian, uint16(16)) // bits per sample
	header.WriteString("data")
	_ = binary.Write(&header, binary.LittleEndian, dataLen)

	if _, err := w.Write(header.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(pcm)
	return err
}

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

// Package model_test contains unit tests for the data models defined in the
// model package. This file tests the timecode formatting used by the edit
// document.
package model_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-beats/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestFormatTimecode verifies the HH:MM:SS.mmm rendering across the
// interesting boundaries: zero, sub-second values, minute and hour
// rollovers, and millisecond rounding.
func TestFormatTimecode(t *testing.T) {
	assert.Equal(t, "00:00:00.000", model.FormatTimecode(0))
	assert.Equal(t, "00:00:00.500", model.FormatTimecode(0.5))
	assert.Equal(t, "00:00:10.000", model.FormatTimecode(10))
	assert.Equal(t, "00:01:30.250", model.FormatTimecode(90.25))
	// 75 minutes rolls into the hour field.
	assert.Equal(t, "01:15:00.000", model.FormatTimecode(4500))
	// Values are rounded to the nearest millisecond, not truncated.
	assert.Equal(t, "00:00:01.000", model.FormatTimecode(0.9996))
	// Two offsets within half a millisecond of each other serialize identically.
	assert.Equal(t, model.FormatTimecode(12.3454999), model.FormatTimecode(12.3451))
}

// TestFormatTimecodeClampsNegative verifies that negative inputs render as
// the start of the edit rather than producing a malformed timestamp.
func TestFormatTimecodeClampsNegative(t *testing.T) {
	assert.Equal(t, "00:00:00.000", model.FormatTimecode(-3.2))
}

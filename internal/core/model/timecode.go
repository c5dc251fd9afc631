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
// This file, `timecode.go`, holds the timestamp formatting used by the edit
// document. Internal computation is always floating-point seconds; only the
// serialized document uses the textual `HH:MM:SS.mmm` form.
package model

import (
	"fmt"
	"math"
)

// FormatTimecode converts a duration in seconds to the fixed `HH:MM:SS.mmm`
// textual form used by the edit document. The value is rounded to the nearest
// millisecond before splitting into fields, so two offsets that differ by
// less than half a millisecond serialize identically.
//
// Negative inputs are clamped to zero; the renderer has no notion of time
// before the start of the edit.
func FormatTimecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	// Work in integer milliseconds to avoid the float drift that shows up
	// when formatting minutes and seconds independently.
	totalMillis := int64(math.Round(seconds * 1000.0))

	hours := totalMillis / 3_600_000
	totalMillis -= hours * 3_600_000
	minutes := totalMillis / 60_000
	totalMillis -= minutes * 60_000
	secs := totalMillis / 1000
	millis := totalMillis - secs*1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

// FileFormatter defines how copy outcomes and progress are rendered
type FileFormatter interface {
	// FormatCopyResult formats the one-line outcome of a copy attempt
	FormatCopyResult(path string, ok, dryRun bool, duration time.Duration, bytesPerSec float64) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatCopyResult formats a copy outcome with emoji, timing and rate
func (f *DefaultFileFormatter) FormatCopyResult(path string, ok, dryRun bool, duration time.Duration, bytesPerSec float64) string {
	switch {
	case !ok:
		return fmt.Sprintf("❌ Failed %s (%s)", path, duration.Round(time.Millisecond))
	case dryRun:
		return fmt.Sprintf("🔍 Would copy %s", path)
	default:
		rate := color.New(color.FgCyan).Sprint(FormatRate(bytesPerSec))
		return fmt.Sprintf("✅ Copied %s (%s, %s)", path, duration.Round(time.Millisecond), rate)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

// FormatRate renders a bytes-per-second figure in human units
func FormatRate(bytesPerSec float64) string {
	const unit = 1024.0
	switch {
	case bytesPerSec <= 0:
		return "- B/s"
	case bytesPerSec < unit:
		return fmt.Sprintf("%.0f B/s", bytesPerSec)
	case bytesPerSec < unit*unit:
		return fmt.Sprintf("%.1f KiB/s", bytesPerSec/unit)
	case bytesPerSec < unit*unit*unit:
		return fmt.Sprintf("%.1f MiB/s", bytesPerSec/(unit*unit))
	default:
		return fmt.Sprintf("%.1f GiB/s", bytesPerSec/(unit*unit*unit))
	}
}

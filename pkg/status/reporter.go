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

// Package status gives the user live feedback about the run: one line per
// retired copy, progress counts, and a final summary.
package status

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/mpcopy/pkg/rsync"
)

// 📢 Reporter prints user-facing run feedback and mirrors it to the
// structured log. Safe for concurrent use.
type Reporter struct {
	formatter FileFormatter
	dryRun    bool

	mu        sync.Mutex
	total     int
	processed int
}

// 🏭 NewReporter creates a Reporter.
func NewReporter(dryRun bool) *Reporter {
	return &Reporter{
		formatter: NewDefaultFileFormatter(),
		dryRun:    dryRun,
	}
}

// 🚀 StartRun announces the amount of pending work.
func (r *Reporter) StartRun(ctx context.Context, total int, resumed bool) {
	r.mu.Lock()
	r.total = total
	r.processed = 0
	r.mu.Unlock()

	msg := fmt.Sprintf("%d files to copy", total)
	if resumed {
		msg += " (resumed from leftover queue)"
	}
	pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}).Println(msg)
	zerolog.Ctx(ctx).Info().Int("total", total).Bool("resumed", resumed).Msg("starting run")
}

// 📝 FileDone reports one retired copy attempt. Failed attempts print the
// captured subprocess output in full.
func (r *Reporter) FileDone(ctx context.Context, res rsync.Result) {
	r.mu.Lock()
	r.processed++
	processed, total := r.processed, r.total
	r.mu.Unlock()

	logger := zerolog.Ctx(ctx)
	msg := r.formatter.FormatCopyResult(res.Path, res.OK(), r.dryRun, res.Duration, res.BytesPerSec)

	if res.OK() {
		pterm.Success.Println(msg)
		logger.Info().
			Str("path", res.Path).
			Dur("duration", res.Duration).
			Float64("bytes_per_sec", res.BytesPerSec).
			Msg(msg)
		for _, line := range res.Output {
			logger.Debug().Str("path", res.Path).Msg(line)
		}
	} else {
		pterm.Error.Println(msg)
		logger.Error().
			Str("path", res.Path).
			Int("exit_code", res.ExitCode).
			Err(res.Err).
			Dur("duration", res.Duration).
			Msg(msg)
		for _, line := range res.Output {
			pterm.Error.Println(line)
			logger.Error().Str("path", res.Path).Msg(line)
		}
	}

	progress := r.formatter.FormatProgress(processed, total)
	logger.Info().Int("processed", processed).Int("total", total).Msg(progress)
}

// 🏁 FinishRun prints the final summary.
func (r *Reporter) FinishRun(ctx context.Context, succeeded, failed int, elapsed time.Duration) {
	msg := fmt.Sprintf("%d copied, %d failed in %s", succeeded, failed, elapsed.Round(time.Millisecond))
	if failed > 0 {
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(msg)
	} else {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(msg)
	}
	zerolog.Ctx(ctx).Info().
		Int("succeeded", succeeded).
		Int("failed", failed).
		Dur("elapsed", elapsed).
		Msg("run finished")
}

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

package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/mpcopy/pkg/queue"
	"github.com/walteh/mpcopy/pkg/rsync"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/semaphore"
)

// 📈 Reporter receives per-file and run-level feedback. Implemented by
// pkg/status; tests substitute their own.
type Reporter interface {
	FileDone(ctx context.Context, res rsync.Result)
}

// 📊 Summary aggregates a finished dispatcher run.
type Summary struct {
	Dispatched int           // items handed to a worker
	Succeeded  int           // items whose copy exited zero
	Failed     int           // items whose copy exited non-zero or failed to spawn
	Elapsed    time.Duration // wall-clock time of the whole run
}

// 🎛️ Dispatcher maps queued relative paths onto at most N concurrent copy
// executions. Worker slots are accounted by a weighted semaphore: acquire
// before dispatch, release on return. Workers hand their results to a single
// reaper goroutine, which is the only mutator of the queue, so remove+persist
// is serialized no matter how completions interleave.
type Dispatcher struct {
	queue    *queue.Queue
	copier   rsync.Copier
	reporter Reporter
	limit    int64
}

// 🏭 New creates a Dispatcher. The concurrency limit must be >= 1; reporter
// may be nil.
func New(q *queue.Queue, copier rsync.Copier, reporter Reporter, limit int) (*Dispatcher, error) {
	if q == nil {
		return nil, errors.New("queue is required")
	}
	if copier == nil {
		return nil, errors.New("copier is required")
	}
	if limit < 1 {
		return nil, errors.Errorf("concurrency limit must be >= 1, got %d", limit)
	}
	return &Dispatcher{
		queue:    q,
		copier:   copier,
		reporter: reporter,
		limit:    int64(limit),
	}, nil
}

// 🏃 Run dispatches every pending path in queue order and returns once all
// dispatched work has retired. Individual copy failures are reported and
// counted, never escalated; Run's own error means dispatching was cut short
// by context cancellation, in which case already-running copies were still
// allowed to finish before returning.
func (d *Dispatcher) Run(ctx context.Context) (Summary, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	pending := d.queue.Pending()
	sem := semaphore.NewWeighted(d.limit)
	results := make(chan rsync.Result)

	var summary Summary
	reaped := make(chan struct{})
	go func() {
		defer close(reaped)
		for res := range results {
			if err := d.queue.Remove(res.Path); err != nil {
				logger.Error().Err(err).Str("path", res.Path).Msg("persisting queue after retirement")
			}
			if res.OK() {
				summary.Succeeded++
			} else {
				summary.Failed++
			}
			if d.reporter != nil {
				d.reporter.FileDone(ctx, res)
			}
		}
	}()

	// Copies already in flight are allowed to finish naturally on
	// cancellation, so the destination never ends up with a file the
	// utility was killed halfway through.
	copyCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	var dispatchErr error
	for _, path := range pending {
		if err := sem.Acquire(ctx, 1); err != nil {
			dispatchErr = errors.Errorf("waiting for worker slot: %w", err)
			break
		}
		summary.Dispatched++
		logger.Debug().Str("path", path).Msg("dispatching")

		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			defer sem.Release(1)
			results <- d.copier.Copy(copyCtx, p)
		}(path)
	}

	// Drain: wait for every dispatched worker, then for the reaper to
	// retire the last result.
	wg.Wait()
	close(results)
	<-reaped

	summary.Elapsed = time.Since(start)
	logger.Info().
		Int("dispatched", summary.Dispatched).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Dur("elapsed", summary.Elapsed).
		Msg("dispatcher drained")
	return summary, dispatchErr
}

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

// Package orchestrate owns the top-level control flow of a run: validate the
// source/target pair, load or build the queue, drive the dispatcher, report.
package orchestrate

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/mpcopy/pkg/config"
	"github.com/walteh/mpcopy/pkg/discover"
	"github.com/walteh/mpcopy/pkg/dispatch"
	"github.com/walteh/mpcopy/pkg/queue"
	"github.com/walteh/mpcopy/pkg/rsync"
	"github.com/walteh/mpcopy/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options contains the collaborators for a run. Copier and Reporter are
// optional; when nil the rsync runner and the console reporter are used.
type Options struct {
	Config   *config.Config
	Copier   rsync.Copier
	Reporter *status.Reporter
}

// 🎮 Orchestrator runs one copy job end to end.
type Orchestrator struct {
	cfg      *config.Config
	copier   rsync.Copier
	reporter *status.Reporter
}

// 🏭 New creates an Orchestrator from validated options.
func New(opts Options) (*Orchestrator, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	o := &Orchestrator{
		cfg:      opts.Config,
		copier:   opts.Copier,
		reporter: opts.Reporter,
	}
	if o.copier == nil {
		o.copier = rsync.New(rsync.Options{
			SourceRoot: opts.Config.Source,
			TargetRoot: opts.Config.Target,
			Binary:     opts.Config.RsyncBinary,
			DryRun:     opts.Config.DryRun,
			Move:       opts.Config.Move,
			Fast:       opts.Config.Fast,
			Excludes:   opts.Config.ExcludeNames,
		})
	}
	if o.reporter == nil {
		o.reporter = status.NewReporter(opts.Config.DryRun)
	}
	return o, nil
}

// 🏃 Run executes the whole job: preconditions, queue load-or-discover,
// bounded-concurrency dispatch, final summary. The returned error is nil on
// clean completion; map it to a process exit code with ExitCode.
func (o *Orchestrator) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	if err := o.checkPreconditions(ctx); err != nil {
		return err
	}

	queuePath := filepath.Join(o.cfg.WorkDir, o.cfg.QueueFile)
	f := o.cfg.Filter()
	q, resumed, err := queue.LoadOrInit(ctx, queuePath, func() ([]string, error) {
		return discover.Discover(ctx, o.cfg.Source, f)
	})
	if err != nil {
		return errors.Errorf("initializing work queue: %w", err)
	}

	o.reporter.StartRun(ctx, q.Len(), resumed)

	d, err := dispatch.New(q, o.copier, o.reporter, o.cfg.Concurrency)
	if err != nil {
		return errors.Errorf("creating dispatcher: %w", err)
	}

	summary, runErr := d.Run(ctx)
	o.reporter.FinishRun(ctx, summary.Succeeded, summary.Failed, summary.Elapsed)

	if runErr != nil {
		return errors.Errorf("dispatching interrupted: %w", runErr)
	}
	if o.cfg.Strict && summary.Failed > 0 {
		return errors.Errorf("%w: %d of %d", ErrCopiesFailed, summary.Failed, summary.Dispatched)
	}

	logger.Info().Int("remaining", q.Len()).Msg("all queued work retired")
	return nil
}

// ✅ checkPreconditions runs the fail-fast checks, each with its own error
// kind. Order matters: the name-identity check comes first so a mistyped
// destination is caught before anything touches the filesystem tree.
func (o *Orchestrator) checkPreconditions(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	srcName := canonicalBase(o.cfg.Source)
	trgName := canonicalBase(o.cfg.Target)
	if srcName != trgName {
		logger.Error().
			Str("source", o.cfg.Source).
			Str("target", o.cfg.Target).
			Msg("source and target final path segments differ")
		return errors.Errorf("%w: %q vs %q", ErrNameMismatch, srcName, trgName)
	}

	if err := confirmDir(o.cfg.Source); err != nil {
		logger.Error().Str("source", o.cfg.Source).Err(err).Msg("source precondition failed")
		return errors.Errorf("%w: %s", ErrSourceMissing, o.cfg.Source)
	}

	if err := confirmDir(o.cfg.Target); err != nil {
		if !o.cfg.CreateTarget {
			logger.Error().Str("target", o.cfg.Target).Err(err).Msg("target precondition failed")
			return errors.Errorf("%w: %s", ErrTargetMissing, o.cfg.Target)
		}
		if mkErr := os.MkdirAll(o.cfg.Target, 0775); mkErr != nil {
			logger.Error().Str("target", o.cfg.Target).Err(mkErr).Msg("creating target failed")
			return errors.Errorf("%w: creating target %s: %v", ErrPermission, o.cfg.Target, mkErr)
		}
		logger.Info().Str("target", o.cfg.Target).Msg("created target directory")
	}

	if err := os.MkdirAll(o.cfg.WorkDir, 0775); err != nil {
		logger.Error().Str("work_dir", o.cfg.WorkDir).Err(err).Msg("creating working directory failed")
		return errors.Errorf("%w: creating working directory %s: %v", ErrPermission, o.cfg.WorkDir, err)
	}

	return nil
}

// canonicalBase reduces a path to its canonical final segment. Symlinks are
// resolved when the path exists; a not-yet-created target falls back to the
// lexical base.
func canonicalBase(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return filepath.Base(filepath.Clean(path))
}

// confirmDir returns nil if path exists and is a directory.
func confirmDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("stating %s: %w", path, err)
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", path)
	}
	return nil
}

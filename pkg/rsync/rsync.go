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

// Package rsync invokes the external copy utility, one subprocess per leaf
// file. Transfer semantics live entirely in the utility; this package only
// builds the invocation, waits for it, and captures what happened.
package rsync

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📦 Result describes one finished copy attempt.
type Result struct {
	Path        string        // relative path that was copied
	ExitCode    int           // subprocess exit code, 0 on success
	Err         error         // spawn/wait error, nil when the process ran
	Duration    time.Duration // wall-clock time of the attempt
	BytesPerSec float64       // source size / duration, observability only
	Output      []string      // captured stdout then stderr, line by line
}

// ✅ OK reports whether the attempt succeeded.
func (r Result) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// 🔌 Copier is the boundary the dispatcher drives. Implementations copy one
// relative path from source to destination and report the outcome; they never
// return an error because a failed attempt is still a completed attempt.
type Copier interface {
	Copy(ctx context.Context, relPath string) Result
}

// 🔧 Options configures a Runner.
type Options struct {
	SourceRoot string   // root the relative paths hang off
	TargetRoot string   // destination root, same final segment as SourceRoot
	Binary     string   // copy utility to invoke, default "rsync"
	DryRun     bool     // pass --dry-run, report without writing
	Move       bool     // pass --remove-source-files
	Fast       bool     // skip --checksum, rely on size+mtime comparison
	Excludes   []string // metadata names passed through as --exclude patterns
}

// 🏃 Runner executes rsync for single files.
type Runner struct {
	opts Options
}

// 🏭 New creates a Runner. An empty Binary defaults to "rsync".
func New(opts Options) *Runner {
	if opts.Binary == "" {
		opts.Binary = "rsync"
	}
	return &Runner{opts: opts}
}

// 🏗️ Args builds the full argument list for one relative path. The two
// dir-merge filters let users drop .rsync.include/.rsync.exclude files next
// to the data being copied.
func (r *Runner) Args(src, trgDir string) []string {
	args := []string{
		"-v", "-v",
		"--progress",
		"--perms",
		"--links",
		"--times",
		"--itemize-changes",
		"--stats",
		"--backup",
		"--suffix=.backup",
	}
	if r.opts.DryRun {
		args = append(args, "--dry-run")
	}
	if r.opts.Move {
		args = append(args, "--remove-source-files")
	}
	if !r.opts.Fast {
		args = append(args, "--checksum")
	}
	for _, name := range r.opts.Excludes {
		args = append(args, "--exclude="+name)
	}
	args = append(args,
		"--filter=dir-merge /.rsync.include",
		"--filter=dir-merge /.rsync.exclude",
	)
	return append(args, src, trgDir)
}

// 📤 Copy resolves the source file and destination parent for relPath,
// creates the parent if missing, runs the copy utility and captures its
// output, exit status and timing. A non-zero exit is recorded, not returned
// as an error; the caller decides what failure means.
func (r *Runner) Copy(ctx context.Context, relPath string) Result {
	logger := zerolog.Ctx(ctx)

	src := filepath.Join(r.opts.SourceRoot, relPath)
	trgDir := filepath.Dir(filepath.Join(r.opts.TargetRoot, relPath))

	res := Result{Path: relPath}

	if err := os.MkdirAll(trgDir, 0775); err != nil {
		res.Err = errors.Errorf("creating target directory %s: %w", trgDir, err)
		res.ExitCode = -1
		return res
	}

	var size int64
	if info, err := os.Stat(src); err == nil {
		size = info.Size()
	}

	args := r.Args(src, trgDir)
	logger.Debug().Str("path", relPath).Strs("args", args).Msg("invoking copy utility")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.opts.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res.Duration = time.Since(start)

	res.Output = append(splitLines(stdout.String()), splitLines(stderr.String())...)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.Err = errors.Errorf("running %s: %w", r.opts.Binary, err)
			res.ExitCode = -1
			return res
		}
	}

	if secs := res.Duration.Seconds(); secs > 0 {
		res.BytesPerSec = float64(size) / secs
	}
	return res
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

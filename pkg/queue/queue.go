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

// Package queue persists the set of relative paths still waiting to be
// copied, so an interrupted run can pick up where it left off.
package queue

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📋 Queue is an ordered set of pending relative paths backed by a single
// file, one path per line. After every Persist the file reflects exactly the
// in-memory remaining set; an empty or absent file means all work retired.
//
// Remove and Persist are serialized by an internal mutex so completions may
// arrive in any order from any goroutine.
type Queue struct {
	path string

	mu      sync.Mutex
	pending []string
}

// 🏭 LoadOrInit returns the queue at path. If the file exists, is regular and
// non-empty it is parsed as leftover work from a prior run (resumed=true).
// Otherwise discover is called for a fresh sequence, which is persisted
// immediately.
func LoadOrInit(ctx context.Context, path string, discover func() ([]string, error)) (*Queue, bool, error) {
	logger := zerolog.Ctx(ctx)

	q := &Queue{path: path}

	info, err := os.Stat(path)
	if err == nil && info.Mode().IsRegular() && info.Size() > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, false, errors.Errorf("reading queue file: %w", err)
		}
		q.pending = parseLines(string(data))
		logger.Info().Str("path", path).Int("pending", len(q.pending)).Msg("resuming leftover queue")
		return q, true, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, false, errors.Errorf("stating queue file: %w", err)
	}

	leaves, err := discover()
	if err != nil {
		return nil, false, errors.Errorf("discovering leaves: %w", err)
	}
	q.pending = leaves
	if err := q.Persist(); err != nil {
		return nil, false, err
	}
	logger.Info().Str("path", path).Int("pending", len(q.pending)).Msg("initialized fresh queue")
	return q, false, nil
}

// 💾 Persist atomically rewrites the queue file so it holds exactly the
// current remaining set, one path per line, newline-terminated.
func (q *Queue) Persist() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.persistLocked()
}

func (q *Queue) persistLocked() error {
	var sb strings.Builder
	for _, p := range q.pending {
		sb.WriteString(p)
		sb.WriteString("\n")
	}

	// Write to temp file, then rename (atomic on the same filesystem).
	tempPath := q.path + ".tmp"
	if err := os.WriteFile(tempPath, []byte(sb.String()), 0644); err != nil {
		return errors.Errorf("writing temp queue file: %w", err)
	}
	if err := os.Rename(tempPath, q.path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp queue file: %w", err)
	}
	return nil
}

// ✂️ Remove deletes one occurrence of path from the remaining set and
// persists the updated set. Removing a path that is not pending is a no-op.
func (q *Queue) Remove(path string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, p := range q.pending {
		if p == path {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return q.persistLocked()
		}
	}
	return nil
}

// 📄 Pending returns an ordered snapshot of the remaining set.
func (q *Queue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]string, len(q.pending))
	copy(out, q.pending)
	return out
}

// 🔢 Len returns the number of paths still pending.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// parseLines splits queue file content into paths, trimming line separators
// and dropping blank lines and duplicates.
func parseLines(data string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}

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

// Package discover walks a source tree and produces the ordered set of leaf
// files to copy, each expressed relative to the source root.
package discover

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/mpcopy/pkg/filter"
	"gitlab.com/tozd/go/errors"
)

// 🌳 Discover finds every non-directory entry under sourceRoot, depth-first,
// in directory listing order. Segments whose base name is excluded by the
// filter are skipped entirely, descendants included. Relative paths matching
// a user ignore pattern are dropped from the result.
//
// Symbolic links are treated as whatever the listing reports; a symlink that
// stats as a directory is descended into. Traversal cycles through circular
// links are not detected.
func Discover(ctx context.Context, sourceRoot string, f *filter.Filter) ([]string, error) {
	var leaves []string
	if err := walk(ctx, sourceRoot, "", f, &leaves); err != nil {
		return nil, err
	}
	return leaves, nil
}

// walk recurses from currentPath (relative to sourceRoot; "" is the root).
func walk(ctx context.Context, sourceRoot, currentPath string, f *filter.Filter, leaves *[]string) error {
	logger := zerolog.Ctx(ctx)

	if currentPath != "" && f.Excluded(filepath.Base(currentPath)) {
		logger.Debug().Str("path", currentPath).Msg("skipping excluded name")
		return nil
	}

	fullCurrent := filepath.Join(sourceRoot, currentPath)
	info, err := os.Stat(fullCurrent)
	if err != nil {
		return errors.Errorf("stating %s: %w", fullCurrent, err)
	}

	if info.IsDir() {
		children, err := os.ReadDir(fullCurrent)
		if err != nil {
			return errors.Errorf("listing %s: %w", fullCurrent, err)
		}
		for _, child := range children {
			if err := walk(ctx, sourceRoot, filepath.Join(currentPath, child.Name()), f, leaves); err != nil {
				return err
			}
		}
		return nil
	}

	if f.Ignored(ctx, currentPath) {
		logger.Debug().Str("path", currentPath).Msg("leaf ignored by pattern")
		return nil
	}

	logger.Debug().Str("path", currentPath).Msg("adding leaf")
	*leaves = append(*leaves, currentPath)
	return nil
}

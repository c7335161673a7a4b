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

// Package filter decides which path segments are excluded from traversal.
package filter

import (
	"context"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// 🗑️ DefaultExcludeNames are OS/filesystem metadata artifacts that are never
// worth copying. Matched exactly against a segment's base name, except for
// entries ending in '*', which match as prefixes (e.g. ".Spotlight*").
var DefaultExcludeNames = []string{
	".DS_Store",
	".Trashes",
	".Trash",
	"._.Trashes",
	".localized",
	".DocumentRevisions-*",
	".Spotlight*",
	".fseventsd",
	".apdisk",
	".com.apple.timemachine.donotpresent",
	".fcplock",
	".fcpuser",
	".cache",
	"._.TemporaryItems",
	"._.apdisk",
	".TemporaryItems",
}

// 🔍 Filter reports whether a path segment or relative path should be left
// out of discovery. It has no side effects and is safe for concurrent use.
type Filter struct {
	exact    map[string]struct{}
	prefixes []string
	ignores  []string // doublestar patterns matched against the full relative path
}

// 🏭 New creates a Filter from a set of metadata names and user ignore
// patterns. Names ending in '*' are treated as prefix matches.
func New(excludeNames []string, ignorePatterns []string) *Filter {
	f := &Filter{
		exact:   make(map[string]struct{}, len(excludeNames)),
		ignores: ignorePatterns,
	}
	for _, name := range excludeNames {
		if strings.HasSuffix(name, "*") {
			f.prefixes = append(f.prefixes, strings.TrimSuffix(name, "*"))
			continue
		}
		f.exact[name] = struct{}{}
	}
	return f
}

// 🏭 Default creates a Filter with the default metadata exclusions and no
// user ignore patterns.
func Default() *Filter {
	return New(DefaultExcludeNames, nil)
}

// 🚫 Excluded reports whether a path segment's base name is a known metadata
// artifact. Only the segment's own name is consulted, never its ancestors,
// and the answer is the same for directories and files.
func (f *Filter) Excluded(name string) bool {
	if _, ok := f.exact[name]; ok {
		return true
	}
	for _, p := range f.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// 🚫 Ignored reports whether a relative path matches one of the user-supplied
// ignore patterns. Invalid patterns are skipped.
func (f *Filter) Ignored(ctx context.Context, relPath string) bool {
	for _, pattern := range f.ignores {
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("pattern", pattern).Str("path", relPath).Err(err).Msg("error matching ignore pattern")
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

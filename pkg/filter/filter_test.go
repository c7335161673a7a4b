package filter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/mpcopy/pkg/filter"
)

// 🧪 TestExcluded tests metadata-name exclusion
func TestExcluded(t *testing.T) {
	tests := []struct {
		name        string
		segment     string
		want        bool
		description string
	}{
		{
			name:        "ds_store",
			segment:     ".DS_Store",
			want:        true,
			description: "should exclude exact metadata names",
		},
		{
			name:        "trashes",
			segment:     ".Trashes",
			want:        true,
			description: "should exclude trash directories",
		},
		{
			name:        "spotlight_prefix",
			segment:     ".Spotlight-V100",
			want:        true,
			description: "should exclude names matching a prefix family",
		},
		{
			name:        "document_revisions_prefix",
			segment:     ".DocumentRevisions-V100",
			want:        true,
			description: "should exclude DocumentRevisions variants",
		},
		{
			name:        "regular_file",
			segment:     "a.txt",
			want:        false,
			description: "should keep ordinary files",
		},
		{
			name:        "dotfile_not_in_set",
			segment:     ".gitignore",
			want:        false,
			description: "should keep dotfiles that are not in the set",
		},
		{
			name:        "substring_not_prefix",
			segment:     "my.DS_Store.txt",
			want:        false,
			description: "exclusion is by exact name, not substring",
		},
	}

	f := filter.Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Excluded(tt.segment), tt.description)
		})
	}
}

// 🧪 TestExcludedCustomSet tests a caller-supplied exclusion set
func TestExcludedCustomSet(t *testing.T) {
	f := filter.New([]string{"node_modules", "tmp*"}, nil)

	assert.True(t, f.Excluded("node_modules"))
	assert.True(t, f.Excluded("tmp123"))
	assert.False(t, f.Excluded(".DS_Store"), "defaults do not apply to a custom set")
}

// 🧪 TestIgnored tests user glob patterns against relative paths
func TestIgnored(t *testing.T) {
	ctx := context.Background()
	f := filter.New(nil, []string{"**/*.bak", "scratch/**"})

	tests := []struct {
		name        string
		relPath     string
		want        bool
		description string
	}{
		{
			name:        "bak_anywhere",
			relPath:     "sub/dir/old.bak",
			want:        true,
			description: "doublestar pattern should match at any depth",
		},
		{
			name:        "scratch_tree",
			relPath:     "scratch/notes.txt",
			want:        true,
			description: "directory subtree pattern should match",
		},
		{
			name:        "kept_leaf",
			relPath:     "sub/b.txt",
			want:        false,
			description: "unmatched leaves should be kept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Ignored(ctx, tt.relPath), tt.description)
		})
	}
}

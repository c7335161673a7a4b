package discover_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/mpcopy/pkg/discover"
	"github.com/walteh/mpcopy/pkg/filter"
)

// 🧪 writeTree lays out files under root, creating parents as needed.
func writeTree(t *testing.T, root string, paths []string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0775))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0644))
	}
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

// 🧪 TestDiscoverFindsAllLeaves tests that discovery returns exactly the
// non-directory entries of an unfiltered tree
func TestDiscoverFindsAllLeaves(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"a.txt",
		"sub/b.txt",
		"sub/deep/c.txt",
		"other/d.bin",
	})

	leaves, err := discover.Discover(testContext(t), root, filter.Default())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"a.txt",
		"sub/b.txt",
		"sub/deep/c.txt",
		"other/d.bin",
	}, leaves)
}

// 🧪 TestDiscoverDeterministicOrder tests that two walks of an unchanged
// tree produce the same sequence
func TestDiscoverDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"b.txt", "a.txt", "sub/z.txt", "sub/a.txt"})

	first, err := discover.Discover(testContext(t), root, filter.Default())
	require.NoError(t, err)
	second, err := discover.Discover(testContext(t), root, filter.Default())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// 🧪 TestDiscoverExcludesMetadataNames tests that excluded names and their
// descendants never appear
func TestDiscoverExcludesMetadataNames(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"a.txt",
		".DS_Store",
		".Trashes/inner/file.txt",
		".Spotlight-V100/index.db",
		"sub/b.txt",
		"sub/.DS_Store",
	})

	leaves, err := discover.Discover(testContext(t), root, filter.Default())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.txt", "sub/b.txt"}, leaves)
}

// 🧪 TestDiscoverIgnorePatterns tests that user patterns drop matching leaves
func TestDiscoverIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"a.txt", "sub/old.bak", "sub/b.txt"})

	f := filter.New(filter.DefaultExcludeNames, []string{"**/*.bak"})
	leaves, err := discover.Discover(testContext(t), root, f)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.txt", "sub/b.txt"}, leaves)
}

// 🧪 TestDiscoverEmptyTree tests that a tree with no files yields no leaves
func TestDiscoverEmptyTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty/nested"), 0775))

	leaves, err := discover.Discover(testContext(t), root, filter.Default())
	require.NoError(t, err)
	assert.Empty(t, leaves)
}

// 🧪 TestDiscoverMissingRoot tests that a missing source root errors
func TestDiscoverMissingRoot(t *testing.T) {
	_, err := discover.Discover(testContext(t), filepath.Join(t.TempDir(), "nope"), filter.Default())
	assert.Error(t, err)
}

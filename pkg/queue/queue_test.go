package queue_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/mpcopy/pkg/queue"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func staticDiscover(paths ...string) func() ([]string, error) {
	return func() ([]string, error) { return paths, nil }
}

// 🧪 TestLoadOrInitFresh tests that a missing queue file triggers discovery
// and immediate persistence
func TestLoadOrInitFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work.queue")

	q, resumed, err := queue.LoadOrInit(testContext(t), path, staticDiscover("a.txt", "sub/b.txt"))
	require.NoError(t, err)

	assert.False(t, resumed, "fresh queue should not report resume")
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, q.Pending())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a.txt\nsub/b.txt\n", string(data), "discovery output should be persisted immediately")
}

// 🧪 TestLoadOrInitResume tests that an existing non-empty file is treated
// as leftover work and discovery is not called
func TestLoadOrInitResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work.queue")
	require.NoError(t, os.WriteFile(path, []byte("left.txt\nover/b.txt\n"), 0644))

	q, resumed, err := queue.LoadOrInit(testContext(t), path, func() ([]string, error) {
		return nil, errors.New("discovery must not run on resume")
	})
	require.NoError(t, err)

	assert.True(t, resumed)
	assert.Equal(t, []string{"left.txt", "over/b.txt"}, q.Pending())
}

// 🧪 TestLoadOrInitEmptyFile tests that an empty leftover file counts as no
// leftover work
func TestLoadOrInitEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work.queue")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	q, resumed, err := queue.LoadOrInit(testContext(t), path, staticDiscover("a.txt"))
	require.NoError(t, err)

	assert.False(t, resumed)
	assert.Equal(t, []string{"a.txt"}, q.Pending())
}

// 🧪 TestLoadTrimsSeparatorsAndDuplicates tests line parsing edge cases
func TestLoadTrimsSeparatorsAndDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work.queue")
	require.NoError(t, os.WriteFile(path, []byte("a.txt\r\n\nsub/b.txt\na.txt\n"), 0644))

	q, resumed, err := queue.LoadOrInit(testContext(t), path, staticDiscover())
	require.NoError(t, err)

	assert.True(t, resumed)
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, q.Pending())
}

// 🧪 TestPersistRoundTrip tests that persist followed by load returns the
// same set
func TestPersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work.queue")

	q, _, err := queue.LoadOrInit(testContext(t), path, staticDiscover("x", "y/z", "deep/er/leaf"))
	require.NoError(t, err)
	require.NoError(t, q.Persist())

	reloaded, resumed, err := queue.LoadOrInit(testContext(t), path, staticDiscover())
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, q.Pending(), reloaded.Pending())
}

// 🧪 TestRemovePersistsRemaining tests that each removal rewrites the file to
// exactly the remaining set
func TestRemovePersistsRemaining(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work.queue")

	q, _, err := queue.LoadOrInit(testContext(t), path, staticDiscover("a", "b", "c"))
	require.NoError(t, err)

	require.NoError(t, q.Remove("b"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nc\n", string(data))

	require.NoError(t, q.Remove("a"))
	require.NoError(t, q.Remove("c"))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, string(data), "queue file should end empty once all entries retire")
	assert.Zero(t, q.Len())
}

// 🧪 TestRemoveUnknownPath tests that removing a path not in the queue is a
// no-op
func TestRemoveUnknownPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work.queue")

	q, _, err := queue.LoadOrInit(testContext(t), path, staticDiscover("a"))
	require.NoError(t, err)

	require.NoError(t, q.Remove("missing"))
	assert.Equal(t, []string{"a"}, q.Pending())
}

// 🧪 TestResumeIdempotence tests the interrupted-run scenario: retire a
// strict subset, reload, and get exactly the un-retired remainder
func TestResumeIdempotence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work.queue")

	q, _, err := queue.LoadOrInit(testContext(t), path, staticDiscover("a", "b", "c", "d"))
	require.NoError(t, err)

	// Simulate an interrupted run that completed b and d.
	require.NoError(t, q.Remove("b"))
	require.NoError(t, q.Remove("d"))

	reloaded, resumed, err := queue.LoadOrInit(testContext(t), path, func() ([]string, error) {
		return nil, errors.New("discovery must not run on resume")
	})
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, []string{"a", "c"}, reloaded.Pending())
}

package artifact_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/code-runner/internal/artifact"
)

func newTestStore(t *testing.T) *artifact.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := artifact.New(t.TempDir(), logger)
	require.NoError(t, err)
	return store
}

func TestMaterializeSource(t *testing.T) {
	store := newTestStore(t)

	a, err := store.MaterializeSource("print('hi')", "py")
	require.NoError(t, err)

	assert.Equal(t, store.Dir(), filepath.Dir(a.Path))
	assert.Equal(t, a.ID+".py", filepath.Base(a.Path))

	data, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", string(data))
}

func TestMaterializeSource_LeadingDotExtension(t *testing.T) {
	store := newTestStore(t)

	a, err := store.MaterializeSource("x", ".c")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(a.Path, ".c"))
	assert.False(t, strings.HasSuffix(a.Path, "..c"))
}

func TestMaterializeSource_NameIndependentOfContent(t *testing.T) {
	store := newTestStore(t)

	a, err := store.MaterializeSource("same code", "go")
	require.NoError(t, err)
	b, err := store.MaterializeSource("same code", "go")
	require.NoError(t, err)

	assert.NotEqual(t, a.Path, b.Path)
}

func TestMaterializeSource_ConcurrentPathsAreDistinct(t *testing.T) {
	store := newTestStore(t)

	const n = 64
	paths := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := store.MaterializeSource("print(1)", "py")
			if assert.NoError(t, err) {
				paths[i] = a.Path
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, p := range paths {
		assert.False(t, seen[p], "duplicate artifact path %s", p)
		seen[p] = true
	}
}

func TestMaterializeSource_WriteFailure(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.RemoveAll(store.Dir()))

	_, err := store.MaterializeSource("x", "py")
	assert.Error(t, err)
}

func TestReservePath(t *testing.T) {
	store := newTestStore(t)

	p1 := store.ReservePath("executable")
	p2 := store.ReservePath("executable")

	assert.NotEqual(t, p1, p2)
	assert.Equal(t, store.Dir(), filepath.Dir(p1))
	_, err := os.Stat(p1)
	assert.True(t, os.IsNotExist(err), "ReservePath must not create the file")
}

func TestCleanup(t *testing.T) {
	store := newTestStore(t)

	path := store.ReservePath("executable")
	require.NoError(t, os.WriteFile(path, []byte("bin"), 0o700))

	store.Cleanup(path)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanup_MissingFileIsNotAnError(t *testing.T) {
	store := newTestStore(t)

	assert.NotPanics(t, func() {
		store.Cleanup(store.ReservePath("executable"))
		store.Cleanup("")
	})
}

func TestNew_DefaultDir(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := artifact.New("", logger)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.TempDir(), "code-runner"), store.Dir())
}

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRunsOnStartAndAfterWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(path, []byte("1"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- File(ctx, path, 100*time.Millisecond, func() error {
			data, err := os.ReadFile(path)
			runs <- string(data)
			return err
		}, func(err error) { t.Errorf("unexpected error: %v", err) })
	}()

	next := func() string {
		select {
		case s := <-runs:
			return s
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a run")
			return ""
		}
	}
	assert.Equal(t, "1", next())

	// a burst of writes collapses into one run
	for _, v := range []string{"2", "3", "4"} {
		require.NoError(t, os.WriteFile(path, []byte(v), 0o644))
	}
	assert.Equal(t, "4", next())

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	select {
	case s := <-runs:
		t.Errorf("unrelated file triggered a run: %q", s)
	case <-time.After(500 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestFileReportsActionErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 1)
	go File(ctx, path, time.Millisecond, func() error {
		_, err := os.ReadFile(path)
		return err
	}, func(err error) { errs <- err })

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, os.ErrNotExist)
	case <-time.After(5 * time.Second):
		t.Fatal("no error reported")
	}
}

func TestFileMissingDirectory(t *testing.T) {
	err := File(context.Background(), filepath.Join(t.TempDir(), "no", "such.json"), time.Millisecond,
		func() error { return nil }, func(error) {})
	assert.Error(t, err)
}

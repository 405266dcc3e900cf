package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/harbor/pkg/adapters/file"
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCheckpointer_Contract(t *testing.T) {
	ports.RunCheckpointerContract(t, file.NewCheckpointer(t.TempDir()))
}

func TestFileCheckpointer_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.NewCheckpointer(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &ports.Checkpoint{Thread: "t1", Values: domain.State{"a": 1}}))

	_, err := os.Stat(filepath.Join(dir, "t1.json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestFileCheckpointer_RejectsPathThreads(t *testing.T) {
	store := file.NewCheckpointer(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, &ports.Checkpoint{Thread: "../escape"}))
	_, err := store.Load(ctx, "")
	assert.Error(t, err)
}

func TestFileCheckpointer_ListMissingDir(t *testing.T) {
	store := file.NewCheckpointer(filepath.Join(t.TempDir(), "never-created"))
	threads, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, threads)
}

// Package file provides a filesystem-backed ports.Checkpointer.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
)

// DefaultDir is used when no directory is configured.
var DefaultDir = filepath.Join(".harbor", "threads")

// Checkpointer stores one JSON file per thread in a directory.
type Checkpointer struct {
	BasePath string
}

// NewCheckpointer creates a Checkpointer rooted at basePath, or DefaultDir when empty.
func NewCheckpointer(basePath string) *Checkpointer {
	if basePath == "" {
		basePath = DefaultDir
	}
	return &Checkpointer{BasePath: basePath}
}

func (c *Checkpointer) path(thread string) (string, error) {
	if thread == "" {
		return "", fmt.Errorf("thread cannot be empty")
	}
	if strings.ContainsAny(thread, `/\`) || thread == "." || thread == ".." {
		return "", fmt.Errorf("invalid thread id %q", thread)
	}
	return filepath.Join(c.BasePath, thread+".json"), nil
}

// Save writes the checkpoint through a temporary file and a rename,
// so readers never observe a partial write.
func (c *Checkpointer) Save(ctx context.Context, cp *ports.Checkpoint) error {
	target, err := c.path(cp.Thread)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure thread directory: %w", err)
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(c.BasePath, cp.Thread+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}
	return nil
}

// Load reads the checkpoint of thread.
func (c *Checkpointer) Load(ctx context.Context, thread string) (*ports.Checkpoint, error) {
	p, err := c.path(thread)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var cp ports.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

// Delete removes the checkpoint file.
func (c *Checkpointer) Delete(ctx context.Context, thread string) error {
	p, err := c.path(thread)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// List returns the threads with a checkpoint file, sorted.
func (c *Checkpointer) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	threads := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && filepath.Ext(name) == ".json" {
			threads = append(threads, strings.TrimSuffix(name, ".json"))
		}
	}
	slices.Sort(threads)
	return threads, nil
}

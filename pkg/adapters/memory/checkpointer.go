// Package memory provides in-process adapters for the ports interfaces.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
)

// Checkpointer implements ports.Checkpointer in memory.
// Safe for concurrent use.
type Checkpointer struct {
	data map[string]*ports.Checkpoint
	mu   sync.RWMutex
}

// NewCheckpointer creates an empty in-memory checkpointer.
func NewCheckpointer() *Checkpointer {
	return &Checkpointer{
		data: make(map[string]*ports.Checkpoint),
	}
}

// Save stores a copy of cp.
func (c *Checkpointer) Save(ctx context.Context, cp *ports.Checkpoint) error {
	copied := clone(cp)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[cp.Thread] = copied
	return nil
}

// Load returns a copy so callers can't mutate the stored checkpoint.
func (c *Checkpointer) Load(ctx context.Context, thread string) (*ports.Checkpoint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cp, ok := c.data[thread]
	if !ok {
		return nil, domain.ErrCheckpointNotFound
	}
	return clone(cp), nil
}

// Delete removes the checkpoint of thread.
func (c *Checkpointer) Delete(ctx context.Context, thread string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, thread)
	return nil
}

// List returns the stored threads, sorted.
func (c *Checkpointer) List(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	threads := make([]string, 0, len(c.data))
	for id := range c.data {
		threads = append(threads, id)
	}
	slices.Sort(threads)
	return threads, nil
}

func clone(cp *ports.Checkpoint) *ports.Checkpoint {
	out := *cp
	out.Values = cp.Values.Clone()
	out.Next = slices.Clone(cp.Next)
	return &out
}

package ports

import (
	"context"
	"time"

	"github.com/aretw0/harbor/pkg/domain"
)

// Checkpoint is the persisted state of one thread after a superstep.
type Checkpoint struct {
	Thread    string       `json:"thread"`
	RunID     string       `json:"run_id"`
	Step      int          `json:"step"`
	Values    domain.State `json:"values"`
	Next      []string     `json:"next,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Pending reports whether the run stopped before reaching the end.
func (c *Checkpoint) Pending() bool {
	return len(c.Next) > 0
}

// Checkpointer defines the interface for persisting thread state.
type Checkpointer interface {
	// Save overwrites the checkpoint of cp.Thread.
	Save(ctx context.Context, cp *Checkpoint) error
	// Load returns the latest checkpoint of thread, or domain.ErrCheckpointNotFound.
	Load(ctx context.Context, thread string) (*Checkpoint, error)
	// Delete removes the checkpoint of thread. Deleting a missing thread is not an error.
	Delete(ctx context.Context, thread string) error
	// List returns the threads with a stored checkpoint.
	List(ctx context.Context) ([]string, error)
}

package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/harbor/pkg/ports"
	"github.com/stretchr/testify/assert"
)

type nopStore struct{}

func (nopStore) Save(context.Context, *ports.Checkpoint) error { return nil }
func (nopStore) Load(context.Context, string) (*ports.Checkpoint, error) {
	return &ports.Checkpoint{}, nil
}
func (nopStore) Delete(context.Context, string) error     { return nil }
func (nopStore) List(context.Context) ([]string, error) { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		thread := fmt.Sprintf("thread-%d", i)
		_, _ = mgr.Load(ctx, thread)
		_ = mgr.Delete(ctx, thread)
	}

	assert.Empty(t, mgr.locks, "locks must be released once no run holds them")
}

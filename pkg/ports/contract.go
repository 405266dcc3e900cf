package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCheckpointerContract runs a suite of tests to verify that a Checkpointer implementation
// adheres to the defined interface contract.
func RunCheckpointerContract(t *testing.T, store Checkpointer) {
	ctx := context.Background()
	thread := "contract-test-thread-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		cp := &Checkpoint{
			Thread: thread,
			RunID:  "run-1",
			Step:   2,
			Values: domain.State{"foo": "bar", "count": 42},
			Next:   []string{"review"},
		}
		require.NoError(t, store.Save(ctx, cp), "Save should not return error")

		loaded, err := store.Load(ctx, thread)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "run-1", loaded.RunID)
		assert.Equal(t, 2, loaded.Step)
		assert.Equal(t, []string{"review"}, loaded.Next)
		assert.Equal(t, "bar", loaded.Values["foo"])
		// JSON backed stores turn ints into float64.
		assert.NotNil(t, loaded.Values["count"])
		assert.True(t, loaded.Pending())
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &Checkpoint{Thread: thread, Step: 3, Values: domain.State{"foo": "baz"}}))

		loaded, err := store.Load(ctx, thread)
		require.NoError(t, err)
		assert.Equal(t, 3, loaded.Step)
		assert.Equal(t, "baz", loaded.Values["foo"])
		assert.False(t, loaded.Pending())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+thread)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &Checkpoint{Thread: thread, Values: domain.State{}}))
		require.NoError(t, store.Delete(ctx, thread), "Delete should not return error")

		_, err := store.Load(ctx, thread)
		assert.ErrorIs(t, err, domain.ErrCheckpointNotFound, "Load after Delete should return ErrCheckpointNotFound")

		assert.NoError(t, store.Delete(ctx, thread), "Deleting twice is not an error")
	})

	t.Run("Reserved Names", func(t *testing.T) {
		// Thread ids that look like store bookkeeping keys are ordinary threads.
		for _, id := range []string{"index", "lock:" + thread} {
			require.NoError(t, store.Save(ctx, &Checkpoint{Thread: id, Values: domain.State{"id": id}}), id)
			loaded, err := store.Load(ctx, id)
			require.NoError(t, err, id)
			assert.Equal(t, id, loaded.Values["id"])
		}

		threads, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, threads, "index")

		for _, id := range []string{"index", "lock:" + thread} {
			require.NoError(t, store.Delete(ctx, id), id)
		}
		threads, err = store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, threads, "index")
	})

	t.Run("List", func(t *testing.T) {
		id1 := thread + "-1"
		id2 := thread + "-2"
		_ = store.Save(ctx, &Checkpoint{Thread: id1, Values: domain.State{}})
		_ = store.Save(ctx, &Checkpoint{Thread: id2, Values: domain.State{}})
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		threads, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, threads, id1)
		assert.Contains(t, threads, id2)
	})
}

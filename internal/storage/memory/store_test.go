package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veloway/freightline/internal/domain"
)

func seedResource(t *testing.T, store *Store, id string, capacity int64) {
	t.Helper()
	err := store.CreateResource(context.Background(), domain.Resource{
		ID:       id,
		Kind:     domain.ResourceKindRail,
		Capacity: capacity,
	})
	require.NoError(t, err)
}

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	t.Parallel()

	store := NewStore()
	seedResource(t, store, "res-1", 100)
	boom := errors.New("boom")

	err := store.WithTx(context.Background(), func(ctx context.Context) error {
		ok, err := store.AddCapacityUsed(ctx, "res-1", 40)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, store.InsertReservation(ctx, domain.Reservation{
			ID: "tok-1", ResourceID: "res-1", Amount: 40,
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	res, err := store.GetResource(context.Background(), "res-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.CapacityUsed)

	deleted, err := store.DeleteReservation(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestStore_WithTx_NestedCallsJoin(t *testing.T) {
	t.Parallel()

	store := NewStore()
	seedResource(t, store, "res-1", 100)

	err := store.WithTx(context.Background(), func(ctx context.Context) error {
		return store.WithTx(ctx, func(ctx context.Context) error {
			ok, err := store.AddCapacityUsed(ctx, "res-1", 10)
			require.NoError(t, err)
			require.True(t, ok)
			return nil
		})
	})
	require.NoError(t, err)

	res, err := store.GetResource(context.Background(), "res-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.CapacityUsed)
}

func TestStore_AddCapacityUsed(t *testing.T) {
	t.Parallel()

	store := NewStore()
	seedResource(t, store, "res-1", 50)
	ctx := context.Background()

	ok, err := store.AddCapacityUsed(ctx, "res-1", 50)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.AddCapacityUsed(ctx, "res-1", 1)
	require.NoError(t, err)
	assert.False(t, ok, "over-capacity increment must be refused")

	ok, err = store.AddCapacityUsed(ctx, "missing", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SubtractCapacityUsed_BelowZero(t *testing.T) {
	t.Parallel()

	store := NewStore()
	seedResource(t, store, "res-1", 50)
	ctx := context.Background()

	err := store.SubtractCapacityUsed(ctx, "res-1", 1)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestStore_DeleteResource_RefusesHeldReservations(t *testing.T) {
	t.Parallel()

	store := NewStore()
	seedResource(t, store, "res-1", 50)
	ctx := context.Background()

	require.NoError(t, store.InsertReservation(ctx, domain.Reservation{
		ID: "tok-1", ResourceID: "res-1", Amount: 10,
	}))

	err := store.DeleteResource(ctx, "res-1")
	assert.Error(t, err)

	_, err = store.DeleteReservation(ctx, "tok-1")
	require.NoError(t, err)
	assert.NoError(t, store.DeleteResource(ctx, "res-1"))
}

func TestStore_SetResourceCapacity(t *testing.T) {
	t.Parallel()

	store := NewStore()
	seedResource(t, store, "res-1", 100)
	ctx := context.Background()

	ok, err := store.AddCapacityUsed(ctx, "res-1", 80)
	require.NoError(t, err)
	require.True(t, ok)

	assert.ErrorIs(t, store.SetResourceCapacity(ctx, "res-1", 79), domain.ErrInvariantViolation)
	assert.NoError(t, store.SetResourceCapacity(ctx, "res-1", 80))
}

func TestStore_ConcurrentTransactions_Serialize(t *testing.T) {
	t.Parallel()

	store := NewStore()
	seedResource(t, store, "res-1", 30)

	const workers = 60
	var wg sync.WaitGroup
	var wins int64
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithTx(context.Background(), func(ctx context.Context) error {
				ok, err := store.AddCapacityUsed(ctx, "res-1", 1)
				if err != nil || !ok {
					return errors.New("no capacity")
				}
				mu.Lock()
				wins++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	res, err := store.GetResource(context.Background(), "res-1")
	require.NoError(t, err)
	assert.Equal(t, int64(30), res.CapacityUsed)
	assert.Equal(t, int64(30), wins)
}

package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eventra/service-event-creation/internal/domain/draft"
	"github.com/eventra/service-event-creation/internal/domain/wizard"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl, zap.NewNop()), mr
}

func stores(t *testing.T) map[string]wizard.SessionStore {
	redisStore, _ := newRedisStore(t, time.Hour)
	return map[string]wizard.SessionStore{
		"memory": NewMemoryStore(time.Hour),
		"redis":  redisStore,
	}
}

func strPtr(s string) *string { return &s }

func TestStore_CreateGetRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess, err := wizard.NewSession(uuid.New())
			require.NoError(t, err)
			require.NoError(t, sess.ApplyPatch(draft.Patch{Title: strPtr("Jazz Night"), State: strPtr("Goa")}))
			sess.IncrementVersion()

			require.NoError(t, store.Create(ctx, sess))

			got, err := store.Get(ctx, sess.ID())
			require.NoError(t, err)
			assert.Equal(t, sess.OrganizerID(), got.OrganizerID())
			assert.Equal(t, wizard.StageBasicInfo, got.Stage())
			assert.Equal(t, "Jazz Night", got.Draft().Title)
			assert.Equal(t, "Goa", got.Draft().State)
			assert.Equal(t, sess.Version(), got.Version())
		})
	}
}

func TestStore_CreateTwiceConflicts(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess, _ := wizard.NewSession(uuid.New())
			require.NoError(t, store.Create(ctx, sess))
			assert.ErrorIs(t, store.Create(ctx, sess), domain.ErrConflict)
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), uuid.New())
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestStore_UpdateCompareAndSet(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess, _ := wizard.NewSession(uuid.New())
			require.NoError(t, store.Create(ctx, sess))

			first, err := store.Get(ctx, sess.ID())
			require.NoError(t, err)
			second, err := store.Get(ctx, sess.ID())
			require.NoError(t, err)

			require.NoError(t, first.ApplyPatch(draft.Patch{Title: strPtr("first")}))
			first.IncrementVersion()
			require.NoError(t, store.Update(ctx, first))

			require.NoError(t, second.ApplyPatch(draft.Patch{Title: strPtr("second")}))
			second.IncrementVersion()
			assert.ErrorIs(t, store.Update(ctx, second), domain.ErrConflict)

			got, err := store.Get(ctx, sess.ID())
			require.NoError(t, err)
			assert.Equal(t, "first", got.Draft().Title)
			assert.Equal(t, int64(2), got.Version())
		})
	}
}

func TestStore_UpdateMissing(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			sess, _ := wizard.NewSession(uuid.New())
			sess.IncrementVersion()
			assert.ErrorIs(t, store.Update(context.Background(), sess), domain.ErrNotFound)
		})
	}
}

func TestStore_AbandonedSessionStaysReadable(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess, _ := wizard.NewSession(uuid.New())
			require.NoError(t, store.Create(ctx, sess))

			require.NoError(t, sess.Abandon())
			sess.IncrementVersion()
			require.NoError(t, store.Update(ctx, sess))

			got, err := store.Get(ctx, sess.ID())
			require.NoError(t, err)
			assert.Equal(t, wizard.StageAbandoned, got.Stage())
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess, _ := wizard.NewSession(uuid.New())
	require.NoError(t, store.Create(context.Background(), sess))

	now = now.Add(59 * time.Second)
	_, err := store.Get(context.Background(), sess.ID())
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Get(context.Background(), sess.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_SlidingTTL(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()
	sess, _ := wizard.NewSession(uuid.New())
	require.NoError(t, store.Create(ctx, sess))

	k := keyPrefix + sess.ID().String()
	mr.FastForward(50 * time.Second)
	_, err := store.Get(ctx, sess.ID())
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(k))

	mr.FastForward(time.Minute)
	_, err = store.Get(ctx, sess.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_PreservesGateFlags(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()

	sess, _ := wizard.NewSession(uuid.New())
	require.NoError(t, sess.BeginOperation(wizard.OperationAvailability))
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, sess.ID())
	require.NoError(t, err)
	assert.Equal(t, wizard.OperationAvailability, got.InFlight())
	assert.True(t, got.Busy(time.Now().UTC()))
}

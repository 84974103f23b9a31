package leads

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisStore(t *testing.T, ttl time.Duration) (*RedisDraftStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisDraftStore(client, ttl), mr
}

func TestRedisDraftStore_SaveLoadClear(t *testing.T) {
	store, _ := newMiniredisStore(t, time.Hour)
	ctx := context.Background()

	draft := validRecord()
	draft.Description = "partially typed message, visitor closed the modal"
	require.NoError(t, store.Save(ctx, "sess-1", draft))

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, draft.FullName, loaded.FullName)
	assert.Equal(t, draft.Description, loaded.Description)

	require.NoError(t, store.Clear(ctx, "sess-1"))
	loaded, err = store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisDraftStore_MissingDraftIsNil(t *testing.T) {
	store, _ := newMiniredisStore(t, time.Hour)

	loaded, err := store.Load(context.Background(), "never-saved")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisDraftStore_TTLExpiry(t *testing.T) {
	store, mr := newMiniredisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", validRecord()))
	mr.FastForward(2 * time.Minute)

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisDraftStore_SaveErrorPropagates(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisDraftStore(db, time.Hour)

	draft := validRecord()
	data, err := json.Marshal(draft)
	require.NoError(t, err)

	mock.ExpectSet("lead:draft:sess-1", data, time.Hour).SetErr(errors.New("connection lost"))

	err = store.Save(context.Background(), "sess-1", draft)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save draft")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryDraftStore_CopiesOnSaveAndLoad(t *testing.T) {
	store := NewMemoryDraftStore()
	ctx := context.Background()

	draft := validRecord()
	require.NoError(t, store.Save(ctx, "sess-1", draft))
	draft.FullName = "mutated after save"

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "John Doe", loaded.FullName)

	loaded.FullName = "mutated after load"
	again, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", again.FullName)
}

func TestMemoryDraftStore_ClearRemoves(t *testing.T) {
	store := NewMemoryDraftStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", validRecord()))
	require.NoError(t, store.Clear(ctx, "sess-1"))

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

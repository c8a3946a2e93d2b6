package localstore

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursepath/core"
)

type doc struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// testStore runs the behaviour every Store must share.
func testStore(t *testing.T, store Store) {
	ctx := context.Background()

	var got doc
	found, err := store.Load(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := doc{Name: "lmsCourses", Items: []string{"1", "2"}}
	require.NoError(t, store.Save(ctx, "doc", want))

	found, err = store.Load(ctx, "doc", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	// saved values are snapshots
	want.Items[0] = "changed"
	var again doc
	_, err = store.Load(ctx, "doc", &again)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, again.Items)

	require.NoError(t, store.Save(ctx, "doc", doc{Name: "replaced"}))
	_, err = store.Load(ctx, "doc", &again)
	require.NoError(t, err)
	assert.Equal(t, "replaced", again.Name)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStore_undecodable(t *testing.T) {
	store := NewMemoryStore()
	store.values["bad"] = []byte("{")

	var got doc
	found, err := store.Load(context.Background(), "bad", &got)
	assert.True(t, found)
	assert.Error(t, err)
}

func TestMemoryStore_unencodable(t *testing.T) {
	store := NewMemoryStore()
	err := store.Save(context.Background(), "bad", make(chan int))
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	store := NewRedisStore(client, "coursepath-test:")
	defer func() {
		client.Del(context.Background(), "coursepath-test:doc")
		_ = store.Close()
	}()

	testStore(t, store)
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		store   string
		wantErr bool
	}{
		{name: "default", store: ""},
		{name: "memory", store: core.DemoStoreMemory},
		{name: "unknown", store: "sqlite", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &core.Config{Demo: core.DemoConfig{Store: tt.store}}
			store, err := Open(context.Background(), conf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &MemoryStore{}, store)
		})
	}
}

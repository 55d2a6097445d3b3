package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang/snappy"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/store"
	"github.com/matzehuels/stateflow/pkg/store/storetest"
)

func TestMemory_Contract(t *testing.T) {
	storetest.Run(t, store.NewMemory())
}

func TestFile_Contract(t *testing.T) {
	st, err := store.NewFile(t.TempDir())
	require.NoError(t, err)
	storetest.Run(t, st)
}

func TestFile_Layout(t *testing.T) {
	dir := t.TempDir()
	st, err := store.NewFile(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, storetest.Diagram("cart", 0)))
	info, err := os.Stat(filepath.Join(dir, "cart.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	list, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cart", list[0].ID)

	_, err = st.Get(ctx, "../etc/passwd")
	assert.True(t, errors.Is(err, errors.ErrCodeDiagramNotFound))
}

func TestFile_DefaultDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	dir, err := store.DefaultFileDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/stateflow/diagrams", dir)
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedis_Contract(t *testing.T) {
	_, client := newMiniredis(t)
	storetest.Run(t, store.NewRedisFromClient(client))
}

func TestRedis_Encoding(t *testing.T) {
	mr, client := newMiniredis(t)
	st := store.NewRedisFromClient(client, store.WithRedisPrefix("test:"))
	ctx := context.Background()

	d := storetest.Diagram("cart", time.Hour)
	require.NoError(t, st.Put(ctx, d))

	raw, err := mr.Get("test:diagram:cart")
	require.NoError(t, err)
	decoded, err := snappy.Decode(nil, []byte(raw))
	require.NoError(t, err)
	assert.Contains(t, string(decoded), `"name":"Diagram cart"`)

	score, err := mr.ZScore("test:diagrams", "cart")
	require.NoError(t, err)
	assert.Equal(t, float64(d.UpdatedAt.UnixMilli()), score)
}

func TestRedis_PrunesStaleIndex(t *testing.T) {
	mr, client := newMiniredis(t)
	st := store.NewRedisFromClient(client)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, storetest.Diagram("keep", 0)))
	require.NoError(t, st.Put(ctx, storetest.Diagram("gone", 0)))
	mr.Del(store.DefaultRedisPrefix + "diagram:gone")

	list, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "keep", list[0].ID)

	members, err := mr.ZMembers(store.DefaultRedisPrefix + "diagrams")
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, members)
}

func TestRedis_Unavailable(t *testing.T) {
	mr, client := newMiniredis(t)
	st := store.NewRedisFromClient(client)
	mr.Close()

	err := st.Put(context.Background(), storetest.Diagram("x", 0))
	assert.True(t, errors.Is(err, errors.ErrCodeStoreUnavailable), "got %v", err)
}

func TestMongo_Contract(t *testing.T) {
	uri := os.Getenv("STATEFLOW_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("STATEFLOW_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	st, err := store.NewMongo(ctx, uri, "stateflow_test", "diagrams_"+time.Now().Format("150405"))
	require.NoError(t, err)
	t.Cleanup(func() {
		st.Drop(ctx)
		st.Close()
	})
	storetest.Run(t, st)
}

func TestPostgres_Contract(t *testing.T) {
	url := os.Getenv("STATEFLOW_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("STATEFLOW_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	st, err := store.NewPostgres(ctx, url)
	require.NoError(t, err)
	require.NoError(t, st.Truncate(ctx))
	t.Cleanup(func() {
		st.Truncate(ctx)
		st.Close()
	})
	storetest.Run(t, st)
}

func TestSortSummaries(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := []store.Summary{
		{ID: "b", UpdatedAt: t0},
		{ID: "c", UpdatedAt: t0.Add(time.Second)},
		{ID: "a", UpdatedAt: t0},
	}
	store.SortSummaries(s)
	assert.Equal(t, "c", s[0].ID)
	assert.Equal(t, "a", s[1].ID)
	assert.Equal(t, "b", s[2].ID)
}

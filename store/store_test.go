package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// exerciseStore runs the contract every backend must meet.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "k1", []byte("v1")))
	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.Put(ctx, "k1", []byte("v2")))
	got, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, s.Delete(ctx, "k1"))
	_, err = s.Get(ctx, "k1")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete(ctx, "k1"), "deleting a missing key is fine")

	require.NoError(t, PutJSON(ctx, s, "squad:alpha", record{Name: "alpha", Count: 3}))
	var r record
	found, err := GetJSON(ctx, s, "squad:alpha", &r)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, record{Name: "alpha", Count: 3}, r)

	found, err = GetJSON(ctx, s, "squad:nobody", &r)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Put(ctx, "squad:broken", []byte("{not json")))
	found, err = GetJSON(ctx, s, "squad:broken", &r)
	require.ErrorIs(t, err, ErrCorrupt)
	assert.False(t, found)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	v := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", v))
	v[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "beehive.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	exerciseStore(t, db)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "beehive.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, "intel:W1N1", []byte(`{"zone":"W1N1"}`)))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Get(ctx, "intel:W1N1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"zone":"W1N1"}`, string(got))
}

// TestRedisStore needs a live server; set BEEHIVE_REDIS_ADDR to run it.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("BEEHIVE_REDIS_ADDR")
	if addr == "" {
		t.Skip("BEEHIVE_REDIS_ADDR not set")
	}
	r, err := OpenRedis(context.Background(), addr, 0, "beehive-test:")
	require.NoError(t, err)
	defer r.Close()

	exerciseStore(t, r)
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, Config{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Backend: "etcd"})
	require.Error(t, err)
}

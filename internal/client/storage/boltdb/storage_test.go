package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/budgetkeeper/internal/client/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	store, err := New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func TestNew_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "testdb.db")

	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, store.Close())
	}()

	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	err = store.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketAuth) == nil {
			return os.ErrNotExist
		}
		return nil
	})
	require.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "client.db"))
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNew_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx, filepath.Join(t.TempDir(), "client.db"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClose(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "testdb.db"))
	require.NoError(t, err)

	require.NoError(t, store.Close())
	assert.Nil(t, store.db)

	// Второй вызов Close ничего не делает
	require.NoError(t, store.Close())

	_, err = store.GetSession(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestSession_Lifecycle(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, err := store.GetSession(ctx)
	require.ErrorIs(t, err, storage.ErrSessionNotFound)

	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session := &storage.Session{
		Server:    "http://localhost:8080",
		Email:     "alice@example.com",
		Role:      "User",
		Token:     "header.payload.signature",
		UserID:    42,
		ExpiresAt: expires,
	}
	require.NoError(t, store.SaveSession(ctx, session))

	got, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Email, got.Email)
	assert.Equal(t, session.Token, got.Token)
	assert.Equal(t, session.UserID, got.UserID)
	assert.True(t, expires.Equal(got.ExpiresAt))

	// повторное сохранение заменяет сессию
	session.Email = "bob@example.com"
	require.NoError(t, store.SaveSession(ctx, session))
	got, err = store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", got.Email)

	require.NoError(t, store.DeleteSession(ctx))
	_, err = store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	// удаление отсутствующей сессии не ошибка
	assert.NoError(t, store.DeleteSession(ctx))
}

func TestSession_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "client.db")
	ctx := context.Background()

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(ctx, &storage.Session{Email: "carol@example.com", Token: "t"}))
	require.NoError(t, store.Close())

	store, err = New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	got, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", got.Email)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()

	assert.True(t, (&storage.Session{ExpiresAt: now.Add(-time.Second)}).Expired(now))
	assert.True(t, (&storage.Session{ExpiresAt: now}).Expired(now))
	assert.False(t, (&storage.Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
}

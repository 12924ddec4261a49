package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educhat-ai/educhat/internal/domain"
	"github.com/educhat-ai/educhat/internal/store"
)

func newFileStore(t *testing.T) *store.SessionStore {
	t.Helper()
	storage, err := store.NewFileStorage(filepath.Join(t.TempDir(), "sessions.json"))
	require.NoError(t, err)
	s := store.NewSessionStore(storage)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func sampleSession(id, title string) domain.ChatSession {
	now := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	return domain.ChatSession{
		ID:    id,
		Title: title,
		Messages: []domain.Message{
			{ID: id + "-m1", Role: domain.RoleUser, Content: "question", Timestamp: now},
			{ID: id + "-m2", Role: domain.RoleAssistant, Content: "answer", Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  domain.SessionMetadata{MessageCount: 2},
	}
}

func TestSessionStore_LoadEmpty(t *testing.T) {
	s := newFileStore(t)
	assert.Empty(t, s.Sessions())
}

func TestSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.json")

	storage, err := store.NewFileStorage(path)
	require.NoError(t, err)

	s := store.NewSessionStore(storage)
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.Save(ctx, sampleSession("a", "First chat")))

	// A second store over the same file sees the same data, with date
	// fields rehydrated to time.Time.
	reloaded := store.NewSessionStore(storage)
	require.NoError(t, reloaded.Load(ctx))

	sessions := reloaded.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "a", sessions[0].ID)
	assert.Equal(t, "First chat", sessions[0].Title)
	assert.Equal(t, time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC), sessions[0].CreatedAt)
	require.Len(t, sessions[0].Messages, 2)
	assert.Equal(t, domain.RoleAssistant, sessions[0].Messages[1].Role)
}

func TestSessionStore_SaveUpsert(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)

	require.NoError(t, s.Save(ctx, sampleSession("a", "First")))
	require.NoError(t, s.Save(ctx, sampleSession("b", "Second")))

	// New sessions prepend.
	sessions := s.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].ID)
	assert.Equal(t, "a", sessions[1].ID)

	// Re-saving replaces in place, keeping position.
	updated := sampleSession("a", "First, renamed")
	require.NoError(t, s.Save(ctx, updated))

	sessions = s.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].ID)
	assert.Equal(t, "First, renamed", sessions[1].Title)
}

func TestSessionStore_Get(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	require.NoError(t, s.Save(ctx, sampleSession("a", "First")))

	got, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "First", got.Title)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestSessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	require.NoError(t, s.Save(ctx, sampleSession("a", "First")))
	require.NoError(t, s.Save(ctx, sampleSession("b", "Second")))

	require.NoError(t, s.Delete(ctx, "a"))
	sessions := s.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "b", sessions[0].ID)

	// Unknown ids are a no-op.
	require.NoError(t, s.Delete(ctx, "missing"))
	assert.Len(t, s.Sessions(), 1)
}

func TestFileStorage_MissingRecord(t *testing.T) {
	storage, err := store.NewFileStorage(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)

	data, err := storage.Get(context.Background(), "never-written")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFileStorage_SetGet(t *testing.T) {
	storage, err := store.NewFileStorage(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, storage.Set(ctx, "k", []byte("v1")))
	require.NoError(t, storage.Set(ctx, "k", []byte("v2")))

	data, err := storage.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestSQLiteStorage(t *testing.T) {
	ctx := context.Background()
	storage, err := store.NewSQLiteStorage(ctx, filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	defer storage.Close()

	data, err := storage.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, storage.Set(ctx, "k", []byte("v1")))
	require.NoError(t, storage.Set(ctx, "k", []byte("v2")))

	data, err = storage.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestSQLiteStorage_BacksSessionStore(t *testing.T) {
	ctx := context.Background()
	storage, err := store.NewSQLiteStorage(ctx, filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer storage.Close()

	s := store.NewSessionStore(storage)
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.Save(ctx, sampleSession("a", "Stored in sqlite")))

	reloaded := store.NewSessionStore(storage)
	require.NoError(t, reloaded.Load(ctx))

	sessions := reloaded.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "Stored in sqlite", sessions[0].Title)
}

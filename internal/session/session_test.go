package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kanban", "session.json")
	store := NewFileStore(path)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Save(&Session{Token: "tok", Username: "alice", Server: "http://localhost:5000"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, "alice", sess.Username)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
	require.NoError(t, store.Clear())
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}

func TestEmptyTokenIsNoSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"username":"alice"}`), 0600))

	_, err := NewFileStore(path).Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

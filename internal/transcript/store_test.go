package transcript

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "transcript.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestMigrate_Idempotent(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestAppendAndRecent(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()
	sessionID := uuid.NewString()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	texts := []struct {
		role Role
		kind Kind
		text string
	}{
		{RoleUser, KindMessage, "bought 2kg rice for 100"},
		{RoleAssistant, KindClarification, "Please confirm 1 item"},
		{RoleSystem, KindClarification, TextProcessed},
	}
	for i, tt := range texts {
		id, err := store.Append(ctx, Entry{
			SessionID: sessionID,
			UserID:    "u-1",
			Role:      tt.role,
			Kind:      tt.kind,
			Text:      tt.text,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
		assert.Positive(t, id)
	}

	all, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "bought 2kg rice for 100", all[0].Text)
	assert.Equal(t, RoleUser, all[0].Role)
	assert.Equal(t, TextProcessed, all[2].Text)
	assert.Equal(t, KindClarification, all[2].Kind)
	assert.Equal(t, sessionID, all[1].SessionID)

	last, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "Please confirm 1 item", last[0].Text, "newest entries, oldest first")
}

func TestAppend_Defaults(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, Entry{SessionID: "s", UserID: "u", Role: RoleUser, Text: "hello"})
	require.NoError(t, err)

	entries, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, KindMessage, entries[0].Kind)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestAppend_Validation(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry Entry
	}{
		{name: "missing session", entry: Entry{UserID: "u", Role: RoleUser}},
		{name: "missing user", entry: Entry{SessionID: "s", Role: RoleUser}},
		{name: "bad role", entry: Entry{SessionID: "s", UserID: "u", Role: "robot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Append(ctx, tt.entry)
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}
}

func TestClear(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, Entry{SessionID: "s", UserID: "u", Role: RoleUser, Text: "one"})
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx))

	entries, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestOpen_Memory(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Migrate(context.Background()))
}

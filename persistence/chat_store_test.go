package persistence

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *ChatStore {
	t.Helper()
	store, err := OpenChatStore(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestChatStoreAppendAndHistory(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "proj1",
		ChatMessage{Role: "user", Content: "hello"},
		ChatMessage{Role: "assistant", Content: "hi there"},
	))
	require.NoError(t, store.Append(ctx, "proj2",
		ChatMessage{Role: "user", Content: "other project"},
	))

	history, err := store.History(ctx, "proj1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.False(t, history[0].CreatedAt.IsZero())
	assert.Equal(t, "hi there", history[1].Content)
}

func TestChatStoreHistoryWindow(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		require.NoError(t, store.Append(ctx, "proj",
			ChatMessage{Role: "user", Content: fmt.Sprintf("m%d", i)}))
	}

	history, err := store.History(ctx, "proj", 10)
	require.NoError(t, err)
	require.Len(t, history, 10)
	// Chronological tail: the five oldest are dropped.
	assert.Equal(t, "m5", history[0].Content)
	assert.Equal(t, "m14", history[9].Content)
}

func TestChatStoreClearIsPerProject(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "a", ChatMessage{Role: "user", Content: "x"}))
	require.NoError(t, store.Append(ctx, "b", ChatMessage{Role: "user", Content: "y"}))

	require.NoError(t, store.Clear(ctx, "a"))

	history, err := store.History(ctx, "a", 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	history, err = store.History(ctx, "b", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestChatStoreRequiresProjectID(t *testing.T) {
	store := openStore(t)
	err := store.Append(context.Background(), "", ChatMessage{Role: "user", Content: "x"})
	assert.Error(t, err)
}

func TestMemoryChatHistory(t *testing.T) {
	mem := NewMemoryChatHistory()
	ctx := context.Background()

	require.NoError(t, mem.Append(ctx, "p",
		ChatMessage{Role: "user", Content: "one"},
		ChatMessage{Role: "assistant", Content: "two"},
	))

	history, err := mem.History(ctx, "p", 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "two", history[0].Content)

	require.NoError(t, mem.Clear(ctx, "p"))
	history, err = mem.History(ctx, "p", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

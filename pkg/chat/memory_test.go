package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	for i, content := range []string{"hi", "Hi there.", "sum"} {
		msg := &Message{ConversationID: "c1", UserID: "u1", Role: RoleUser, Content: content, Timestamp: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, repo.SaveMessage(ctx, msg))
		assert.NotEmpty(t, msg.ID)
	}
	require.NoError(t, repo.SaveMessage(ctx, &Message{ConversationID: "c2", Content: "other"}))

	history, err := repo.GetConversationHistory(ctx, "c1", 2, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "sum", history[0].Content)
	assert.Equal(t, "Hi there.", history[1].Content)

	history, err = repo.GetConversationHistory(ctx, "c1", 10, 2)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].Content)

	count, err := repo.CountConversationMessages(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, repo.DeleteConversationHistory(ctx, "c1"))
	assert.ErrorIs(t, repo.DeleteConversationHistory(ctx, "c1"), ErrNoHistory)

	count, err = repo.CountConversationMessages(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

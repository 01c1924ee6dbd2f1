package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"assistant-bot/internal/domain/entity"
)

func TestMemoryConversationRepository_SaveGetDelete(t *testing.T) {
	repo := NewMemoryConversationRepository()
	ctx := context.Background()

	conv, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, conv)

	require.NoError(t, repo.Save(ctx, entity.NewConversation(1, 10, entity.AwaitingShoppingItem{})))
	require.NoError(t, repo.Save(ctx, entity.NewConversation(2, 20, entity.AwaitingReminderText{})))

	conv, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, entity.AwaitingShoppingItem{}, conv.Step)

	// Изменение полученной копии не затрагивает хранилище
	conv.Advance(entity.AwaitingShoppingCategory{Item: "Молоко"})
	stored, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, entity.AwaitingShoppingItem{}, stored.Step)

	require.NoError(t, repo.Delete(ctx, 1))
	conv, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, conv)

	conv, err = repo.Get(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, conv)
}

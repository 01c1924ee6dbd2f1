package port

import (
	"context"

	"assistant-bot/internal/domain/entity"
)

// ConversationRepository интерфейс хранилища состояний диалогов
type ConversationRepository interface {
	// Get возвращает текущий диалог пользователя, nil если диалога нет
	Get(ctx context.Context, userID int64) (*entity.Conversation, error)

	// Save сохраняет состояние диалога
	Save(ctx context.Context, conv *entity.Conversation) error

	// Delete удаляет состояние диалога
	Delete(ctx context.Context, userID int64) error
}

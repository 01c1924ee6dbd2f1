package storage

import (
	"context"
	"sync"

	"assistant-bot/internal/domain/entity"
	"assistant-bot/internal/domain/port"
)

// MemoryConversationRepository in-memory хранилище диалогов.
// Состояния теряются при перезапуске процесса.
type MemoryConversationRepository struct {
	mu    sync.RWMutex
	convs map[int64]entity.Conversation
}

// NewMemoryConversationRepository создаёт новое in-memory хранилище
func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{
		convs: make(map[int64]entity.Conversation),
	}
}

// Get возвращает копию диалога пользователя или nil
func (r *MemoryConversationRepository) Get(ctx context.Context, userID int64) (*entity.Conversation, error) {
	r.mu.RLock()
	conv, exists := r.convs[userID]
	r.mu.RUnlock()

	if !exists {
		return nil, nil
	}
	return &conv, nil
}

// Save сохраняет состояние диалога
func (r *MemoryConversationRepository) Save(ctx context.Context, conv *entity.Conversation) error {
	r.mu.Lock()
	r.convs[conv.UserID] = *conv
	r.mu.Unlock()

	return nil
}

// Delete удаляет состояние диалога
func (r *MemoryConversationRepository) Delete(ctx context.Context, userID int64) error {
	r.mu.Lock()
	delete(r.convs, userID)
	r.mu.Unlock()

	return nil
}

// Проверка реализации интерфейса
var _ port.ConversationRepository = (*MemoryConversationRepository)(nil)

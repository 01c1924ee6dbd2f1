package app

import (
	"context"

	"assistant-bot/internal/domain/port"
)

type UserService struct {
	store port.EventStore
	clock Clock
}

func NewUserService(store port.EventStore, clock Clock) *UserService {
	return &UserService{store: store, clock: clock}
}

// Register заносит пользователя в реестр при первом обращении
func (s *UserService) Register(ctx context.Context, userID int64) error {
	return s.store.EnsureUser(ctx, userID, s.clock.Now())
}

package container

import (
	"log/slog"
	"time"

	app "assistant-bot/internal/application"
	"assistant-bot/internal/domain/port"
)

type Container struct {
	Store         port.EventStore
	Clock         app.Clock
	UserService   *app.UserService
	DialogService *app.DialogService
	ListService   *app.ListService
}

func New(store port.EventStore, convs port.ConversationRepository, clock app.Clock, dateGrace time.Duration, logger *slog.Logger) *Container {
	return &Container{
		Store:         store,
		Clock:         clock,
		UserService:   app.NewUserService(store, clock),
		DialogService: app.NewDialogService(convs, store, clock, dateGrace, logger),
		ListService:   app.NewListService(store),
	}
}

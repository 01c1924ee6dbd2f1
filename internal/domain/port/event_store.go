package port

import (
	"context"
	"time"

	"assistant-bot/internal/domain/entity"
)

// EventStore постоянное хранилище напоминаний и списка покупок.
// Каждая запись атомарна и сразу сохраняется; реализации безопасны
// для одновременного использования из обработчика сообщений и планировщика.
type EventStore interface {
	// EnsureUser регистрирует пользователя при первом обращении
	EnsureUser(ctx context.Context, userID int64, createdAt time.Time) error

	// CreateReminder сохраняет активное напоминание и возвращает его ID
	CreateReminder(ctx context.Context, userID int64, text string, dueAt time.Time, repeat entity.Repeat) (int64, error)

	// ListActiveReminders возвращает активные напоминания пользователя по возрастанию due_at
	ListActiveReminders(ctx context.Context, userID int64) ([]entity.Reminder, error)

	// ListReminders возвращает все напоминания пользователя, включая неактивные
	ListReminders(ctx context.Context, userID int64) ([]entity.Reminder, error)

	// DeleteReminder удаляет напоминание пользователя, ErrNotFound если такого нет
	DeleteReminder(ctx context.Context, userID, id int64) error

	// DueReminders возвращает активные напоминания с due_at <= until
	DueReminders(ctx context.Context, until time.Time) ([]entity.Reminder, error)

	// AdvanceReminder переносит напоминание на next или деактивирует его (next == nil).
	// Обновление выполняется только если due_at всё ещё равен prevDueAt;
	// false означает, что это срабатывание уже обработано.
	AdvanceReminder(ctx context.Context, id int64, prevDueAt time.Time, next *time.Time) (bool, error)

	// AddShoppingItem сохраняет товар с моментом добавления createdAt и возвращает его ID
	AddShoppingItem(ctx context.Context, userID int64, item, category string, createdAt time.Time) (int64, error)

	// ListShoppingItems возвращает товары пользователя, упорядоченные по (category, item)
	ListShoppingItems(ctx context.Context, userID int64) ([]entity.ShoppingItem, error)

	// DeleteShoppingItem удаляет товар пользователя, ErrNotFound если такого нет
	DeleteShoppingItem(ctx context.Context, userID, id int64) error

	// ClearShoppingItems удаляет все товары пользователя и возвращает их количество
	ClearShoppingItems(ctx context.Context, userID int64) (int64, error)
}

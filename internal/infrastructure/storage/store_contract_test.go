package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"assistant-bot/internal/domain/entity"
	"assistant-bot/internal/domain/port"
)

// testEventStore проверяет поведение, общее для всех реализаций port.EventStore.
// open должен возвращать пустое хранилище.
func testEventStore(t *testing.T, open func(t *testing.T) port.EventStore) {
	t.Run("EnsureUserTwice", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.EnsureUser(ctx, 1, time.Now()))
		require.NoError(t, s.EnsureUser(ctx, 1, time.Now().Add(time.Hour)))
	})

	t.Run("ListActiveRemindersOrdered", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		base := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

		_, err := s.CreateReminder(ctx, 1, "позже", base.Add(2*time.Hour), entity.RepeatDaily)
		require.NoError(t, err)
		_, err = s.CreateReminder(ctx, 1, "раньше", base, entity.RepeatNone)
		require.NoError(t, err)
		_, err = s.CreateReminder(ctx, 2, "чужое", base, entity.RepeatNone)
		require.NoError(t, err)

		reminders, err := s.ListActiveReminders(ctx, 1)
		require.NoError(t, err)
		require.Len(t, reminders, 2)
		require.Equal(t, "раньше", reminders[0].Text)
		require.True(t, base.Equal(reminders[0].DueAt))
		require.Equal(t, "позже", reminders[1].Text)
		require.Equal(t, entity.RepeatDaily, reminders[1].Repeat)
		require.True(t, reminders[1].IsActive)
	})

	t.Run("DueRemindersAndAdvance", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		due := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

		onceID, err := s.CreateReminder(ctx, 1, "один раз", due, entity.RepeatNone)
		require.NoError(t, err)
		dailyID, err := s.CreateReminder(ctx, 1, "каждый день", due, entity.RepeatDaily)
		require.NoError(t, err)
		_, err = s.CreateReminder(ctx, 1, "будущее", due.Add(time.Hour), entity.RepeatNone)
		require.NoError(t, err)

		reminders, err := s.DueReminders(ctx, due)
		require.NoError(t, err)
		require.Len(t, reminders, 2)

		ok, err := s.AdvanceReminder(ctx, onceID, due, nil)
		require.NoError(t, err)
		require.True(t, ok)

		next := due.Add(24 * time.Hour)
		ok, err = s.AdvanceReminder(ctx, dailyID, due, &next)
		require.NoError(t, err)
		require.True(t, ok)

		// Повторное продвижение того же срабатывания ничего не меняет
		ok, err = s.AdvanceReminder(ctx, dailyID, due, &next)
		require.NoError(t, err)
		require.False(t, ok)

		reminders, err = s.DueReminders(ctx, due)
		require.NoError(t, err)
		require.Empty(t, reminders)

		active, err := s.ListActiveReminders(ctx, 1)
		require.NoError(t, err)
		require.Len(t, active, 2)

		all, err := s.ListReminders(ctx, 1)
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.False(t, all[0].IsActive)
		require.True(t, next.Equal(all[1].DueAt))
	})

	t.Run("DeleteReminderScopedToUser", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		id, err := s.CreateReminder(ctx, 1, "текст", time.Now(), entity.RepeatNone)
		require.NoError(t, err)

		require.ErrorIs(t, s.DeleteReminder(ctx, 2, id), port.ErrNotFound)
		require.NoError(t, s.DeleteReminder(ctx, 1, id))
		require.ErrorIs(t, s.DeleteReminder(ctx, 1, id), port.ErrNotFound)
	})

	t.Run("ShoppingItems", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		added := time.Date(2026, 10, 16, 9, 15, 0, 0, time.UTC)

		_, err := s.AddShoppingItem(ctx, 1, "Хлеб", "Выпечка", added)
		require.NoError(t, err)
		milkID, err := s.AddShoppingItem(ctx, 1, "Молоко", "Молочное", added)
		require.NoError(t, err)
		_, err = s.AddShoppingItem(ctx, 1, "Кефир", "Молочное", added)
		require.NoError(t, err)
		_, err = s.AddShoppingItem(ctx, 2, "Сыр", "Молочное", added)
		require.NoError(t, err)

		items, err := s.ListShoppingItems(ctx, 1)
		require.NoError(t, err)
		require.Len(t, items, 3)
		require.Equal(t, "Хлеб", items[0].Item)
		require.Equal(t, "Кефир", items[1].Item)
		require.Equal(t, "Молоко", items[2].Item)
		require.True(t, added.Equal(items[0].CreatedAt), "got created_at %s", items[0].CreatedAt)

		require.ErrorIs(t, s.DeleteShoppingItem(ctx, 2, milkID), port.ErrNotFound)
		require.NoError(t, s.DeleteShoppingItem(ctx, 1, milkID))

		n, err := s.ClearShoppingItems(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, int64(2), n)

		items, err = s.ListShoppingItems(ctx, 1)
		require.NoError(t, err)
		require.Empty(t, items)

		items, err = s.ListShoppingItems(ctx, 2)
		require.NoError(t, err)
		require.Len(t, items, 1)
	})
}

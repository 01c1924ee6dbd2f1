// Package export выгружает напоминания и список покупок пользователя в CSV.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"assistant-bot/internal/domain/entity"
)

// Source чтение данных пользователя
type Source interface {
	ListReminders(ctx context.Context, userID int64) ([]entity.Reminder, error)
	ListShoppingItems(ctx context.Context, userID int64) ([]entity.ShoppingItem, error)
}

var header = []string{"type", "id", "text_or_item", "due_at_or_category", "repeat", "is_active"}

// WriteCSV пишет все напоминания (включая неактивные) и товары пользователя.
// Время выводится в локации loc.
func WriteCSV(ctx context.Context, w io.Writer, src Source, userID int64, loc *time.Location) error {
	reminders, err := src.ListReminders(ctx, userID)
	if err != nil {
		return fmt.Errorf("export reminders: %w", err)
	}
	items, err := src.ListShoppingItems(ctx, userID)
	if err != nil {
		return fmt.Errorf("export shopping items: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range reminders {
		record := []string{
			"reminder",
			strconv.FormatInt(r.ID, 10),
			r.Text,
			r.DueAt.In(loc).Format(entity.DateTimeLayout),
			string(r.Repeat),
			strconv.FormatBool(r.IsActive),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	for _, it := range items {
		record := []string{"shopping_item", strconv.FormatInt(it.ID, 10), it.Item, it.Category, "", ""}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

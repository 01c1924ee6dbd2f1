package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"assistant-bot/internal/domain/entity"
	"assistant-bot/internal/infrastructure/storage"
)

func TestWriteCSV(t *testing.T) {
	store, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	due := time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC)
	id, err := store.CreateReminder(ctx, 1, "Оплатить, интернет", due, entity.RepeatMonthly)
	require.NoError(t, err)
	_, err = store.AdvanceReminder(ctx, id, due, nil)
	require.NoError(t, err)
	_, err = store.AddShoppingItem(ctx, 1, "Молоко", entity.Uncategorized, due)
	require.NoError(t, err)
	_, err = store.AddShoppingItem(ctx, 2, "Чужое", "Другое", due)
	require.NoError(t, err)

	msk := time.FixedZone("MSK", 3*60*60)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(ctx, &buf, store, 1, msk))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		header,
		{"reminder", "1", "Оплатить, интернет", "18:30 16.10.2026", "monthly", "false"},
		{"shopping_item", "1", "Молоко", entity.Uncategorized, "", ""},
	}, records)
}

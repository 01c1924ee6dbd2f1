package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"assistant-bot/internal/domain/port"
)

// Тесты Postgres запускаются только при заданном DATABASE_URL и очищают таблицы.
func openPostgresTestStore(t *testing.T, logger *slog.Logger) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	s, err := OpenPostgres(dsn, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.db.Exec("TRUNCATE users, reminders, shopping_items RESTART IDENTITY").Error)
	return s
}

func TestPostgres_EventStore(t *testing.T) {
	testEventStore(t, func(t *testing.T) port.EventStore { return openPostgresTestStore(t, nil) })
}

func TestPostgres_EnsureUserTwice(t *testing.T) {
	s := openPostgresTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, s.EnsureUser(ctx, 1, time.Now()))
	require.NoError(t, s.EnsureUser(ctx, 1, time.Now().Add(time.Hour)))

	var n int64
	require.NoError(t, s.db.Model(&userModel{}).Count(&n).Error)
	require.Equal(t, int64(1), n)
}

func TestPostgres_ClosedStoreIsUnavailable(t *testing.T) {
	s := openPostgresTestStore(t, nil)
	require.NoError(t, s.Close())

	_, err := s.ListActiveReminders(context.Background(), 1)
	require.ErrorIs(t, err, port.ErrStorageUnavailable)
}

func TestPostgres_LogsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	s := openPostgresTestStore(t, slog.New(slog.NewJSONHandler(&buf, nil)))

	require.Error(t, s.db.Exec("SELECT * FROM no_such_table").Error)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	require.Equal(t, "gorm", entry["component"])
	require.Equal(t, "ERROR", entry["level"])
	require.Contains(t, entry["trace"], "sql")
}

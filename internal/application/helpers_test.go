package app

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"assistant-bot/internal/infrastructure/storage"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *fixedClock { return &fixedClock{now: t} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type sentMessage struct {
	ChatID int64
	Text   string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[int64]bool
	block   bool
}

func (n *fakeNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	if n.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if n.failFor[chatID] {
		return errors.New("forbidden: bot was blocked by the user")
	}
	n.mu.Lock()
	n.sent = append(n.sent, sentMessage{ChatID: chatID, Text: text})
	n.mu.Unlock()
	return nil
}

func (n *fakeNotifier) Sent() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

func openStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	s, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// at возвращает 16.10.2026 hh:mm UTC
func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 16, hour, minute, 0, 0, time.UTC)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

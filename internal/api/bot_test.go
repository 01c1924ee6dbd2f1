package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"assistant-bot/internal/container"
	"assistant-bot/internal/domain/entity"
	"assistant-bot/internal/infrastructure/storage"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	block    chan struct{}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok, "last sent is %T", f.sent[len(f.sent)-1])
	return msg
}

type staticClock time.Time

func (c staticClock) Now() time.Time { return time.Time(c) }

func newTestBot(t *testing.T, now time.Time) (*Bot, *fakeAPI, *storage.SQLiteStore) {
	t.Helper()
	store, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	c := container.New(store, storage.NewMemoryConversationRepository(), staticClock(now), time.Minute, nil)
	api := &fakeAPI{}
	return newBot(api, c, time.UTC, nil), api, store
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}}
}

func commandUpdate(userID int64, command string) tgbotapi.Update {
	u := textUpdate(userID, "/"+command)
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command) + 1}}
	return u
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}}
}

func TestBot_StartShowsMainKeyboard(t *testing.T) {
	bot, api, _ := newTestBot(t, time.Date(2026, 10, 16, 17, 0, 0, 0, time.UTC))

	bot.handleUpdate(context.Background(), commandUpdate(1, "start"))

	msg := api.last(t)
	require.Equal(t, msgStart, msg.Text)
	require.IsType(t, tgbotapi.ReplyKeyboardMarkup{}, msg.ReplyMarkup)
}

func TestBot_ReminderDialogThroughUpdates(t *testing.T) {
	bot, api, store := newTestBot(t, time.Date(2026, 10, 16, 17, 0, 0, 0, time.UTC))
	ctx := context.Background()

	bot.handleUpdate(ctx, textUpdate(1, btnReminders))
	require.IsType(t, tgbotapi.InlineKeyboardMarkup{}, api.last(t).ReplyMarkup)

	bot.handleUpdate(ctx, callbackUpdate(1, cbCreateReminder))
	require.Len(t, api.requests, 1)

	bot.handleUpdate(ctx, textUpdate(1, "Buy milk"))
	bot.handleUpdate(ctx, textUpdate(1, "18:00"))

	kb, ok := api.last(t).ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.True(t, kb.OneTimeKeyboard)
	require.Len(t, kb.Keyboard[0], len(entity.RepeatOptions))

	bot.handleUpdate(ctx, textUpdate(1, "Один раз"))
	require.Contains(t, api.last(t).Text, "18:00 16.10.2026")

	reminders, err := store.ListActiveReminders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, reminders, 1)

	bot.handleUpdate(ctx, callbackUpdate(1, cbListReminders))
	require.Contains(t, api.last(t).Text, "Buy milk")
}

func TestBot_TextWithoutDialogIsUnknown(t *testing.T) {
	bot, api, _ := newTestBot(t, time.Now())

	bot.handleUpdate(context.Background(), textUpdate(1, "привет"))
	require.Equal(t, msgUnknownCommand, api.last(t).Text)
}

func TestBot_ShoppingListRendering(t *testing.T) {
	bot, api, store := newTestBot(t, time.Now())
	ctx := context.Background()

	_, err := store.AddShoppingItem(ctx, 1, "Сыр <Гауда>", "Молочное", time.Now())
	require.NoError(t, err)

	bot.handleUpdate(ctx, callbackUpdate(1, cbShowList))
	msg := api.last(t)
	require.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	require.Contains(t, msg.Text, "<b>Молочное:</b>")
	require.Contains(t, msg.Text, "Сыр &lt;Гауда&gt;")
}

func TestBot_NotifyRespectsContext(t *testing.T) {
	bot, api, _ := newTestBot(t, time.Now())
	api.block = make(chan struct{})
	defer close(api.block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := bot.Notify(ctx, 1, "⏰")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFormatReminders(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	text := formatReminders([]entity.Reminder{
		{ID: 3, Text: "Зарядка", DueAt: time.Date(2026, 10, 17, 5, 0, 0, 0, time.UTC), Repeat: entity.RepeatDaily},
		{ID: 4, Text: "Врач", DueAt: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)},
	}, msk)

	require.Contains(t, text, "3. Зарядка — 08:00 17.10.2026 (повтор: ежедневно)")
	require.Contains(t, text, "4. Врач — 12:30 18.10.2026\n")
	require.Equal(t, msgNoReminders, formatReminders(nil, msk))
}

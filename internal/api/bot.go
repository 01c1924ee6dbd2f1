package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "assistant-bot/internal/application"
	"assistant-bot/internal/container"
	"assistant-bot/internal/domain/entity"
	"assistant-bot/internal/domain/port"
	"assistant-bot/internal/export"
)

const (
	btnReminders = "📝 Напоминания"
	btnShopping  = "🛒 Список покупок"
	btnSuggest   = "💡 Предложить функционал"

	cbCreateReminder = "create_reminder"
	cbListReminders  = "list_reminders"
	cbDeleteReminder = "delete_reminder"
	cbAddItem        = "add_item"
	cbShowList       = "show_list"
	cbDeleteItem     = "delete_item"
	cbClearList      = "clear_list"
)

const (
	msgStart = `👋 Привет! Я твой ежедневный помощник.

📝 Напоминания — разовые и повторяющиеся
🛒 Список покупок — по категориям

Выбери действие:`

	msgHelp = `ℹ️ Как пользоваться ботом:

📝 Напоминания → Создать: текст, затем время («18:00», «завтра 09:00» или «14:30 31.12.2026»), затем периодичность.
🛒 Список покупок → Добавить: название, затем категория («-» — без категории).

📋 Команды:
/start — главное меню
/export — выгрузить данные в CSV
/cancel — отменить текущее действие`

	msgRemindersMenu  = "Управление напоминаниями:"
	msgShoppingMenu   = "Управление списком покупок:"
	msgNoReminders    = "У вас нет активных напоминаний."
	msgEmptyShopping  = "Ваш список покупок пуст."
	msgSuggest        = "Ваши предложения по улучшению бота отправляйте разработчику."
	msgUnknownCommand = "❓ Неизвестная команда. Используйте /help для справки."
	msgFailure        = "⚠️ Не удалось выполнить операцию. Попробуйте позже."
)

// botAPI методы Telegram API, которые использует бот
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	tg       *tgbotapi.BotAPI
	api      botAPI
	services *container.Container
	loc      *time.Location
	logger   *slog.Logger
}

// NewBot создаёт нового бота. requestTimeout ограничивает обычные запросы;
// long polling получает собственный запас сверху.
func NewBot(token string, services *container.Container, loc *time.Location, requestTimeout time.Duration, logger *slog.Logger) (*Bot, error) {
	client := &http.Client{Timeout: pollTimeout + requestTimeout}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, err
	}

	b := newBot(api, services, loc, logger)
	b.tg = api
	b.logger.Info("authorized", slog.String("account", api.Self.UserName))
	return b, nil
}

func newBot(api botAPI, services *container.Container, loc *time.Location, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:      api,
		services: services,
		loc:      loc,
		logger:   logger.With(slog.String("component", "telegram")),
	}
}

const pollTimeout = 60 * time.Second

// Run запускает основной цикл обработки сообщений до отмены ctx.
// Сообщения обрабатываются по одному, в порядке поступления.
func (b *Bot) Run(ctx context.Context) error {
	if b.tg == nil {
		return errors.New("telegram client is not configured")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(pollTimeout.Seconds())

	updates := b.tg.GetUpdatesChan(u)
	defer b.tg.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	if err := b.services.UserService.Register(ctx, userID); err != nil {
		b.logger.Error("register user", slog.Int64("user_id", userID), slog.Any("err", err))
		b.sendText(chatID, msgFailure)
		return
	}

	// Команды и кнопки меню обрабатываются раньше шагов диалога
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	switch msg.Text {
	case btnReminders:
		b.sendInline(chatID, msgRemindersMenu, remindersMenu())
		return
	case btnShopping:
		b.sendInline(chatID, msgShoppingMenu, shoppingMenu())
		return
	case btnSuggest:
		b.sendText(chatID, msgSuggest)
		return
	}

	reply, err := b.services.DialogService.Handle(ctx, userID, msg.Text)
	switch {
	case errors.Is(err, app.ErrNoDialog):
		b.sendReply(chatID, app.Reply{Text: msgUnknownCommand, Keyboard: app.KeyboardMain})
		return
	case errors.Is(err, app.ErrInputFormat), errors.Is(err, app.ErrDialogAborted):
		b.logger.Debug("dialog input rejected", slog.Int64("user_id", userID), slog.Any("err", err))
	case err != nil:
		b.logger.Error("dialog step failed", slog.Int64("user_id", userID), slog.Any("err", err))
	}
	b.sendReply(chatID, reply)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := b.services.DialogService.Cancel(ctx, userID); err != nil {
			b.logger.Error("reset dialog", slog.Int64("user_id", userID), slog.Any("err", err))
		}
		b.sendReply(chatID, app.Reply{Text: msgStart, Keyboard: app.KeyboardMain})

	case "help":
		b.sendText(chatID, msgHelp)

	case "cancel":
		reply, err := b.services.DialogService.Cancel(ctx, userID)
		if err != nil {
			b.logger.Error("cancel dialog", slog.Int64("user_id", userID), slog.Any("err", err))
		}
		b.sendReply(chatID, reply)

	case "export":
		b.sendExport(ctx, userID, chatID)

	default:
		b.sendText(chatID, msgUnknownCommand)
	}
}

// handleCallback обрабатывает нажатия inline-кнопок
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("answer callback", slog.Any("err", err))
	}

	userID, chatID := cb.From.ID, cb.Message.Chat.ID
	if err := b.services.UserService.Register(ctx, userID); err != nil {
		b.logger.Error("register user", slog.Int64("user_id", userID), slog.Any("err", err))
		b.sendText(chatID, msgFailure)
		return
	}

	var (
		reply app.Reply
		err   error
	)
	switch cb.Data {
	case cbCreateReminder:
		reply, err = b.services.DialogService.Begin(ctx, userID, chatID, app.DialogCreateReminder)
	case cbDeleteReminder:
		reply, err = b.services.DialogService.Begin(ctx, userID, chatID, app.DialogDeleteReminder)
	case cbAddItem:
		reply, err = b.services.DialogService.Begin(ctx, userID, chatID, app.DialogAddShoppingItem)
	case cbDeleteItem:
		reply, err = b.services.DialogService.Begin(ctx, userID, chatID, app.DialogDeleteShoppingItem)
	case cbClearList:
		reply, err = b.services.DialogService.ClearShoppingList(ctx, userID)
	case cbListReminders:
		reply, err = b.listReminders(ctx, userID)
	case cbShowList:
		b.showShoppingList(ctx, userID, chatID)
		return
	default:
		b.logger.Warn("unknown callback", slog.String("data", cb.Data))
		return
	}
	if err != nil {
		b.logger.Error("callback failed", slog.String("data", cb.Data), slog.Int64("user_id", userID), slog.Any("err", err))
	}
	b.sendReply(chatID, reply)
}

func (b *Bot) listReminders(ctx context.Context, userID int64) (app.Reply, error) {
	reminders, err := b.services.ListService.ActiveReminders(ctx, userID)
	if err != nil {
		return app.Reply{Text: msgFailure}, err
	}
	return app.Reply{Text: formatReminders(reminders, b.loc)}, nil
}

func (b *Bot) showShoppingList(ctx context.Context, userID, chatID int64) {
	groups, err := b.services.ListService.ShoppingList(ctx, userID)
	if err != nil {
		b.logger.Error("list shopping items", slog.Int64("user_id", userID), slog.Any("err", err))
		b.sendText(chatID, msgFailure)
		return
	}
	if len(groups) == 0 {
		b.sendText(chatID, msgEmptyShopping)
		return
	}

	msg := tgbotapi.NewMessage(chatID, formatShoppingList(groups))
	msg.ParseMode = tgbotapi.ModeHTML
	b.send(msg)
}

func (b *Bot) sendExport(ctx context.Context, userID, chatID int64) {
	var buf bytes.Buffer
	if err := export.WriteCSV(ctx, &buf, b.services.Store, userID, b.loc); err != nil {
		b.logger.Error("export", slog.Int64("user_id", userID), slog.Any("err", err))
		b.sendText(chatID, msgFailure)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("assistant-%d.csv", userID),
		Bytes: buf.Bytes(),
	})
	b.send(doc)
}

// Notify отправляет уведомление, не дожидаясь ответа дольше, чем позволяет ctx
func (b *Bot) Notify(ctx context.Context, chatID int64, text string) error {
	done := make(chan error, 1)
	go func() {
		_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sendReply отправляет ответ сервиса с нужной клавиатурой
func (b *Bot) sendReply(chatID int64, reply app.Reply) {
	if reply.Text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	switch reply.Keyboard {
	case app.KeyboardMain:
		msg.ReplyMarkup = mainKeyboard()
	case app.KeyboardRepeat:
		msg.ReplyMarkup = repeatKeyboard()
	}
	b.send(msg)
}

func (b *Bot) sendInline(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	b.send(msg)
}

// sendText отправляет текстовое сообщение
func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("send message", slog.Any("err", err))
	}
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnReminders),
			tgbotapi.NewKeyboardButton(btnShopping),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSuggest),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func repeatKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var row []tgbotapi.KeyboardButton
	for _, opt := range entity.RepeatOptions {
		row = append(row, tgbotapi.NewKeyboardButton(opt.Label))
	}
	kb := tgbotapi.NewReplyKeyboard(row)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func remindersMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Создать", cbCreateReminder),
			tgbotapi.NewInlineKeyboardButtonData("Мои напоминания", cbListReminders),
			tgbotapi.NewInlineKeyboardButtonData("Удалить", cbDeleteReminder),
		),
	)
}

func shoppingMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Добавить", cbAddItem),
			tgbotapi.NewInlineKeyboardButtonData("Список", cbShowList),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Удалить", cbDeleteItem),
			tgbotapi.NewInlineKeyboardButtonData("Очистить", cbClearList),
		),
	)
}

func formatReminders(reminders []entity.Reminder, loc *time.Location) string {
	if len(reminders) == 0 {
		return msgNoReminders
	}

	var sb strings.Builder
	sb.WriteString("Ваши напоминания:\n\n")
	for _, r := range reminders {
		fmt.Fprintf(&sb, "%d. %s — %s", r.ID, r.Text, r.DueAt.In(loc).Format(entity.DateTimeLayout))
		if r.Repeat != entity.RepeatNone {
			fmt.Fprintf(&sb, " (повтор: %s)", strings.ToLower(r.Repeat.Label()))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatShoppingList(groups []app.CategoryGroup) string {
	var sb strings.Builder
	sb.WriteString("Ваш список покупок:\n\n")
	for _, g := range groups {
		fmt.Fprintf(&sb, "<b>%s:</b>\n", html.EscapeString(g.Category))
		for _, it := range g.Items {
			fmt.Fprintf(&sb, "• %s <i>(ID %d)</i>\n", html.EscapeString(it.Item), it.ID)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Проверка реализации интерфейса
var _ port.Notifier = (*Bot)(nil)

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"assistant-bot/internal/domain/entity"
	"assistant-bot/internal/domain/port"
)

// DialogKind сценарий, который запускается из меню
type DialogKind int

const (
	DialogCreateReminder DialogKind = iota
	DialogAddShoppingItem
	DialogDeleteReminder
	DialogDeleteShoppingItem
)

// DialogService ведёт пошаговые диалоги пользователей и по их завершении
// сохраняет напоминания и товары.
type DialogService struct {
	convs  port.ConversationRepository
	store  port.EventStore
	clock  Clock
	grace  time.Duration
	logger *slog.Logger
}

// NewDialogService создаёт сервис диалогов. grace — окно, в пределах
// которого только что прошедшее время ещё принимается.
func NewDialogService(convs port.ConversationRepository, store port.EventStore, clock Clock, grace time.Duration, logger *slog.Logger) *DialogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DialogService{
		convs:  convs,
		store:  store,
		clock:  clock,
		grace:  grace,
		logger: logger,
	}
}

// Begin запускает диалог, заменяя незавершённый, и возвращает первый вопрос.
func (s *DialogService) Begin(ctx context.Context, userID, chatID int64, kind DialogKind) (Reply, error) {
	var (
		step   entity.Step
		prompt string
	)
	switch kind {
	case DialogCreateReminder:
		step, prompt = entity.AwaitingReminderText{}, msgAskReminderText
	case DialogAddShoppingItem:
		step, prompt = entity.AwaitingShoppingItem{}, msgAskItem
	case DialogDeleteReminder:
		step, prompt = entity.AwaitingReminderDeleteID{}, msgAskReminderID
	case DialogDeleteShoppingItem:
		step, prompt = entity.AwaitingShoppingDeleteID{}, msgAskItemID
	default:
		return Reply{}, fmt.Errorf("unknown dialog kind %d", kind)
	}

	if err := s.convs.Save(ctx, entity.NewConversation(userID, chatID, step)); err != nil {
		return Reply{Text: msgStorageFailure}, err
	}
	return Reply{Text: prompt}, nil
}

// Cancel сбрасывает диалог пользователя
func (s *DialogService) Cancel(ctx context.Context, userID int64) (Reply, error) {
	if err := s.convs.Delete(ctx, userID); err != nil {
		return Reply{Text: msgStorageFailure}, err
	}
	return Reply{Text: msgCancelled, Keyboard: KeyboardMain}, nil
}

// ClearShoppingList удаляет все товары пользователя сразу, без подтверждения.
func (s *DialogService) ClearShoppingList(ctx context.Context, userID int64) (Reply, error) {
	if err := s.convs.Delete(ctx, userID); err != nil {
		return Reply{Text: msgStorageFailure}, err
	}
	n, err := s.store.ClearShoppingItems(ctx, userID)
	if err != nil {
		return Reply{Text: msgStorageFailure}, err
	}
	return Reply{Text: fmt.Sprintf(msgShoppingCleared, n), Keyboard: KeyboardMain}, nil
}

// Handle передаёт текст обработчику текущего шага диалога.
//
// Возвращаемая ошибка описывает исход: ErrNoDialog — диалога нет,
// ErrInputFormat — шаг не изменился, ErrDialogAborted — диалог сброшен,
// port.ErrStorageUnavailable — операция не выполнена. Reply заполнен во всех
// случаях, кроме ErrNoDialog.
func (s *DialogService) Handle(ctx context.Context, userID int64, text string) (Reply, error) {
	conv, err := s.convs.Get(ctx, userID)
	if err != nil {
		return Reply{Text: msgStorageFailure}, err
	}
	if conv == nil {
		return Reply{}, ErrNoDialog
	}

	text = strings.TrimSpace(text)

	switch step := conv.Step.(type) {
	case entity.AwaitingReminderText:
		return s.handleReminderText(ctx, conv, text)
	case entity.AwaitingReminderDateTime:
		return s.handleReminderDateTime(ctx, conv, step, text)
	case entity.AwaitingReminderRepeat:
		return s.handleReminderRepeat(ctx, conv, step, text)
	case entity.AwaitingShoppingItem:
		return s.handleShoppingItem(ctx, conv, text)
	case entity.AwaitingShoppingCategory:
		return s.handleShoppingCategory(ctx, conv, step, text)
	case entity.AwaitingReminderDeleteID:
		return s.handleDelete(ctx, conv, text, s.store.DeleteReminder, msgReminderDeleted, msgReminderNotFound)
	case entity.AwaitingShoppingDeleteID:
		return s.handleDelete(ctx, conv, text, s.store.DeleteShoppingItem, msgItemDeleted, msgItemNotFound)
	default:
		s.logger.Error("unknown dialog step, resetting", slog.Int64("user_id", userID), slog.String("step", fmt.Sprintf("%T", step)))
		if err := s.convs.Delete(ctx, userID); err != nil {
			return Reply{Text: msgStorageFailure}, err
		}
		return Reply{Text: msgCancelled, Keyboard: KeyboardMain}, fmt.Errorf("%w: unknown step %T", ErrDialogAborted, step)
	}
}

func (s *DialogService) handleReminderText(ctx context.Context, conv *entity.Conversation, text string) (Reply, error) {
	if text == "" {
		return Reply{Text: msgEmptyText}, fmt.Errorf("%w: empty reminder text", ErrInputFormat)
	}

	conv.Advance(entity.AwaitingReminderDateTime{Text: text})
	return s.save(ctx, conv, Reply{Text: msgAskDateTime})
}

func (s *DialogService) handleReminderDateTime(ctx context.Context, conv *entity.Conversation, step entity.AwaitingReminderDateTime, text string) (Reply, error) {
	dueAt, err := entity.ParseDueTime(text, s.clock.Now(), s.grace)
	switch {
	case errors.Is(err, entity.ErrDateTimeInPast):
		return Reply{Text: msgDateTimeInPast}, fmt.Errorf("%w: %w", ErrInputFormat, err)
	case err != nil:
		return Reply{Text: msgBadDateTime}, fmt.Errorf("%w: %w", ErrInputFormat, err)
	}

	conv.Advance(entity.AwaitingReminderRepeat{Text: step.Text, DueAt: dueAt})
	return s.save(ctx, conv, Reply{Text: msgAskRepeat, Keyboard: KeyboardRepeat})
}

func (s *DialogService) handleReminderRepeat(ctx context.Context, conv *entity.Conversation, step entity.AwaitingReminderRepeat, text string) (Reply, error) {
	repeat, ok := entity.RepeatFromLabel(text)
	if !ok {
		return Reply{Text: msgBadRepeat, Keyboard: KeyboardRepeat}, fmt.Errorf("%w: unknown repeat label %q", ErrInputFormat, text)
	}

	// Пока пользователь выбирал периодичность, время могло пройти.
	now := s.clock.Now()
	if step.DueAt.Before(now.Add(-s.grace)) {
		conv.Advance(entity.AwaitingReminderDateTime{Text: step.Text})
		reply, err := s.save(ctx, conv, Reply{Text: msgDateTimeInPast, Keyboard: KeyboardMain})
		if err != nil {
			return reply, err
		}
		return reply, fmt.Errorf("%w: %w", ErrInputFormat, entity.ErrDateTimeInPast)
	}

	id, err := s.store.CreateReminder(ctx, conv.UserID, step.Text, step.DueAt, repeat)
	if err != nil {
		return Reply{Text: msgStorageFailure}, err
	}
	s.logger.Info("reminder created",
		slog.Int64("user_id", conv.UserID),
		slog.Int64("reminder_id", id),
		slog.Time("due_at", step.DueAt),
		slog.String("repeat", string(repeat)),
	)

	return s.finish(ctx, conv, Reply{
		Text:     fmt.Sprintf(msgReminderCreated, step.DueAt.Format(entity.DateTimeLayout), repeat.Label()),
		Keyboard: KeyboardMain,
	})
}

func (s *DialogService) handleShoppingItem(ctx context.Context, conv *entity.Conversation, text string) (Reply, error) {
	if text == "" {
		return Reply{Text: msgEmptyText}, fmt.Errorf("%w: empty item", ErrInputFormat)
	}

	conv.Advance(entity.AwaitingShoppingCategory{Item: text})
	return s.save(ctx, conv, Reply{Text: msgAskCategory})
}

func (s *DialogService) handleShoppingCategory(ctx context.Context, conv *entity.Conversation, step entity.AwaitingShoppingCategory, text string) (Reply, error) {
	category := entity.NormalizeCategory(text)

	if _, err := s.store.AddShoppingItem(ctx, conv.UserID, step.Item, category, s.clock.Now()); err != nil {
		return Reply{Text: msgStorageFailure}, err
	}

	return s.finish(ctx, conv, Reply{
		Text:     fmt.Sprintf(msgItemAdded, step.Item, category),
		Keyboard: KeyboardMain,
	})
}

// handleDelete обрабатывает одношаговое удаление: диалог сбрасывается при любом исходе.
func (s *DialogService) handleDelete(
	ctx context.Context,
	conv *entity.Conversation,
	text string,
	del func(ctx context.Context, userID, id int64) error,
	msgDone, msgNotFound string,
) (Reply, error) {
	if err := s.convs.Delete(ctx, conv.UserID); err != nil {
		return Reply{Text: msgStorageFailure}, err
	}

	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Reply{Text: msgBadID, Keyboard: KeyboardMain}, fmt.Errorf("%w: id %q is not a number", ErrDialogAborted, text)
	}

	err = del(ctx, conv.UserID, id)
	switch {
	case errors.Is(err, port.ErrNotFound):
		return Reply{Text: msgNotFound, Keyboard: KeyboardMain}, nil
	case err != nil:
		return Reply{Text: msgStorageFailure, Keyboard: KeyboardMain}, err
	}
	return Reply{Text: msgDone, Keyboard: KeyboardMain}, nil
}

func (s *DialogService) save(ctx context.Context, conv *entity.Conversation, reply Reply) (Reply, error) {
	if err := s.convs.Save(ctx, conv); err != nil {
		return Reply{Text: msgStorageFailure}, err
	}
	return reply, nil
}

func (s *DialogService) finish(ctx context.Context, conv *entity.Conversation, reply Reply) (Reply, error) {
	if err := s.convs.Delete(ctx, conv.UserID); err != nil {
		return Reply{Text: msgStorageFailure}, err
	}
	return reply, nil
}

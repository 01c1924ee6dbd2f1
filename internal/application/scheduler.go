package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"assistant-bot/internal/domain/entity"
	"assistant-bot/internal/domain/port"
)

// SchedulerConfig параметры планировщика
type SchedulerConfig struct {
	Interval        time.Duration // период опроса хранилища
	Skew            time.Duration // допуск: напоминания с due_at <= now+Skew считаются наступившими
	DeliveryTimeout time.Duration // ограничение на одну отправку
}

// TickStats итог одного прохода
type TickStats struct {
	Due       int // выбрано наступивших напоминаний
	Delivered int // доставлено
	Failed    int // не доставлено
	Skipped   int // уже обработаны или не удалось обновить
}

// Scheduler периодически находит наступившие напоминания, отправляет их
// и переносит на следующий срок либо деактивирует.
type Scheduler struct {
	store    port.EventStore
	notifier port.Notifier
	clock    Clock
	cfg      SchedulerConfig
	logger   *slog.Logger
}

// NewScheduler создаёт планировщик
func NewScheduler(store port.EventStore, notifier port.Notifier, clock Clock, cfg SchedulerConfig, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:    store,
		notifier: notifier,
		clock:    clock,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "scheduler")),
	}
}

// Run выполняет проходы с интервалом cfg.Interval до отмены ctx.
// Ошибки отдельных проходов только логируются.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", slog.Duration("interval", s.cfg.Interval), slog.Duration("skew", s.cfg.Skew))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			_, _ = s.Tick(ctx)
		}
	}
}

// Tick выполняет один проход. Ошибка возвращается только если не удалось
// получить список наступивших напоминаний; тогда ни одно напоминание не меняется.
func (s *Scheduler) Tick(ctx context.Context) (TickStats, error) {
	var stats TickStats
	logger := s.logger.With(slog.String("tick_id", uuid.NewString()))

	now := s.clock.Now()
	due, err := s.store.DueReminders(ctx, now.Add(s.cfg.Skew))
	if err != nil {
		logger.Error("query due reminders failed, tick skipped", slog.Any("err", err))
		return stats, err
	}
	stats.Due = len(due)

	for _, r := range due {
		switch s.fire(ctx, logger, r) {
		case fireDelivered:
			stats.Delivered++
		case fireFailed:
			stats.Failed++
		default:
			stats.Skipped++
		}
	}

	if stats.Due > 0 {
		logger.Debug("tick finished",
			slog.Int("due", stats.Due),
			slog.Int("delivered", stats.Delivered),
			slog.Int("failed", stats.Failed),
			slog.Int("skipped", stats.Skipped),
		)
	}
	return stats, nil
}

type fireResult int

const (
	fireSkipped fireResult = iota
	fireDelivered
	fireFailed
)

// fire сначала продвигает напоминание и только потом отправляет его:
// срабатывание, которое уже продвинуто, повторно не отправляется.
func (s *Scheduler) fire(ctx context.Context, logger *slog.Logger, r entity.Reminder) fireResult {
	logger = logger.With(slog.Int64("reminder_id", r.ID), slog.Int64("user_id", r.UserID))

	var next *time.Time
	if n, ok := r.Repeat.Next(r.DueAt); ok {
		next = &n
	}

	claimed, err := s.store.AdvanceReminder(ctx, r.ID, r.DueAt, next)
	if err != nil {
		logger.Error("advance reminder failed", slog.Any("err", err))
		return fireSkipped
	}
	if !claimed {
		return fireSkipped
	}

	if err := s.deliver(ctx, r); err != nil {
		logger.Warn("reminder not delivered", slog.Any("err", err))
		return fireFailed
	}

	if next != nil {
		logger.Info("reminder delivered", slog.Time("next_due_at", *next))
	} else {
		logger.Info("reminder delivered, deactivated")
	}
	return fireDelivered
}

func (s *Scheduler) deliver(ctx context.Context, r entity.Reminder) error {
	if s.cfg.DeliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DeliveryTimeout)
		defer cancel()
	}

	dueAt := r.DueAt.In(s.clock.Now().Location())
	text := fmt.Sprintf(msgReminderDelivered, r.Text, dueAt.Format(entity.DateTimeLayout))

	// В личных чатах Telegram ID чата совпадает с ID пользователя.
	if err := s.notifier.Notify(ctx, r.UserID, text); err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}

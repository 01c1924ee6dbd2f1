package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"assistant-bot/internal/domain/entity"
	"assistant-bot/internal/domain/port"
)

// GORM-модели для Postgres.
type userModel struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (userModel) TableName() string { return "users" }

type reminderModel struct {
	ID       int64     `gorm:"primaryKey"`
	UserID   int64     `gorm:"index:idx_reminders_user;not null"`
	Text     string    `gorm:"type:text;not null"`
	DueAt    time.Time `gorm:"type:timestamptz;index:idx_reminders_active_due,priority:2;not null"`
	Repeat   string    `gorm:"type:text;not null;default:''"`
	IsActive bool      `gorm:"index:idx_reminders_active_due,priority:1;not null;default:true"`
}

func (reminderModel) TableName() string { return "reminders" }

type shoppingItemModel struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"index:idx_shopping_items_user;not null"`
	Item      string    `gorm:"type:text;not null"`
	Category  string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (shoppingItemModel) TableName() string { return "shopping_items" }

// PostgresStore хранилище на Postgres через GORM.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres подключается к базе и выполняет AutoMigrate.
// Сообщения GORM (медленные запросы, ошибки) пишутся в logger.
func OpenPostgres(dsn string, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	gormLog := gormlogger.NewSlogLogger(
		logger.With(slog.String("component", "gorm")),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&userModel{}, &reminderModel{}, &shoppingItemModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close закрывает пул соединений.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping проверяет доступность базы.
func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) EnsureUser(ctx context.Context, userID int64, createdAt time.Time) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&userModel{UserID: userID, CreatedAt: createdAt.UTC()}).Error
	if err != nil {
		return storageErr("ensure user", err)
	}
	return nil
}

func (s *PostgresStore) CreateReminder(ctx context.Context, userID int64, text string, dueAt time.Time, repeat entity.Repeat) (int64, error) {
	m := reminderModel{
		UserID:   userID,
		Text:     text,
		DueAt:    dueAt.UTC(),
		Repeat:   string(repeat),
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return 0, storageErr("create reminder", err)
	}
	return m.ID, nil
}

func (s *PostgresStore) ListActiveReminders(ctx context.Context, userID int64) ([]entity.Reminder, error) {
	var rows []reminderModel
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active", userID).
		Order("due_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storageErr("list active reminders", err)
	}
	return toReminders(rows), nil
}

func (s *PostgresStore) ListReminders(ctx context.Context, userID int64) ([]entity.Reminder, error) {
	var rows []reminderModel
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, storageErr("list reminders", err)
	}
	return toReminders(rows), nil
}

func (s *PostgresStore) DueReminders(ctx context.Context, until time.Time) ([]entity.Reminder, error) {
	var rows []reminderModel
	err := s.db.WithContext(ctx).
		Where("is_active AND due_at <= ?", until.UTC()).
		Order("due_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storageErr("due reminders", err)
	}
	return toReminders(rows), nil
}

func (s *PostgresStore) DeleteReminder(ctx context.Context, userID, id int64) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&reminderModel{})
	if res.Error != nil {
		return storageErr("delete reminder", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete reminder: %w", port.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) AdvanceReminder(ctx context.Context, id int64, prevDueAt time.Time, next *time.Time) (bool, error) {
	q := s.db.WithContext(ctx).
		Model(&reminderModel{}).
		Where("id = ? AND due_at = ? AND is_active", id, prevDueAt.UTC())

	var res *gorm.DB
	if next != nil {
		res = q.Update("due_at", next.UTC())
	} else {
		res = q.Update("is_active", false)
	}
	if res.Error != nil {
		return false, storageErr("advance reminder", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *PostgresStore) AddShoppingItem(ctx context.Context, userID int64, item, category string, createdAt time.Time) (int64, error) {
	m := shoppingItemModel{UserID: userID, Item: item, Category: category, CreatedAt: createdAt.UTC()}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return 0, storageErr("add shopping item", err)
	}
	return m.ID, nil
}

func (s *PostgresStore) ListShoppingItems(ctx context.Context, userID int64) ([]entity.ShoppingItem, error) {
	var rows []shoppingItemModel
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("category ASC, item ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storageErr("list shopping items", err)
	}
	items := make([]entity.ShoppingItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, entity.ShoppingItem{
			ID:        r.ID,
			UserID:    r.UserID,
			Item:      r.Item,
			Category:  r.Category,
			CreatedAt: r.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (s *PostgresStore) DeleteShoppingItem(ctx context.Context, userID, id int64) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&shoppingItemModel{})
	if res.Error != nil {
		return storageErr("delete shopping item", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete shopping item: %w", port.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ClearShoppingItems(ctx context.Context, userID int64) (int64, error) {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&shoppingItemModel{})
	if res.Error != nil {
		return 0, storageErr("clear shopping items", res.Error)
	}
	return res.RowsAffected, nil
}

func toReminders(rows []reminderModel) []entity.Reminder {
	out := make([]entity.Reminder, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.Reminder{
			ID:       r.ID,
			UserID:   r.UserID,
			Text:     r.Text,
			DueAt:    r.DueAt.UTC(),
			Repeat:   entity.ParseRepeat(r.Repeat),
			IsActive: r.IsActive,
		})
	}
	return out
}

// Проверка реализации интерфейса
var _ port.EventStore = (*PostgresStore)(nil)

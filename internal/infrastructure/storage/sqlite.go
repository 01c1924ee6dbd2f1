package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"assistant-bot/internal/domain/entity"
	"assistant-bot/internal/domain/port"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Формат хранения времени: UTC с фиксированной шириной, сортируется как строка.
const timeFormat = "2006-01-02 15:04:05"

// SQLiteStore хранилище напоминаний и списка покупок на SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Каждое соединение настраивается одинаково; при ошибке база не открывается.
var sqlitePragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA journal_mode = WAL",
}

// OpenSQLite открывает (или создаёт) assistant.db в dataDir и применяет миграции.
// ":memory:" открывает базу в памяти.
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	dsn, err := sqliteDSN(dataDir)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// Обработчик и планировщик пишут через одно соединение, без SQLITE_BUSY между ними.
	// Для ":memory:" это ещё и единственная копия базы.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func sqliteDSN(dataDir string) (string, error) {
	if dataDir == ":memory:" {
		return dataDir, nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir %s: %w", dataDir, err)
	}
	return filepath.Join(dataDir, "assistant.db"), nil
}

func (s *SQLiteStore) init() error {
	for _, pragma := range sqlitePragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := s.migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping проверяет доступность базы.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate применяет по порядку встроенные migrations/NNN_*.sql, которых ещё
// нет в schema_version. Каждая миграция выполняется в своей транзакции.
func (s *SQLiteStore) migrate() error {
	const ddl = `CREATE TABLE IF NOT EXISTS schema_version (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}

	applied, err := s.appliedVersions()
	if err != nil {
		return err
	}

	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(path.Base(name), "%d_", &version); err != nil {
			return fmt.Errorf("%s: bad version prefix: %w", name, err)
		}
		if applied[version] {
			continue
		}
		if err := s.applyMigration(name, version); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) appliedVersions() (map[int]bool, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (s *SQLiteStore) applyMigration(name string, version int) error {
	body, err := migrationsFS.ReadFile(name)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(body)); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("%s: record version: %w", name, err)
	}
	return tx.Commit()
}

// --- Users ---

func (s *SQLiteStore) EnsureUser(ctx context.Context, userID int64, createdAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id, created_at) VALUES (?, ?)`,
		userID, formatTime(createdAt))
	if err != nil {
		return storageErr("ensure user", err)
	}
	return nil
}

// --- Reminders ---

func (s *SQLiteStore) CreateReminder(ctx context.Context, userID int64, text string, dueAt time.Time, repeat entity.Repeat) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (user_id, text, due_at, repeat, is_active) VALUES (?, ?, ?, ?, 1)`,
		userID, text, formatTime(dueAt), string(repeat))
	if err != nil {
		return 0, storageErr("create reminder", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("create reminder", err)
	}
	return id, nil
}

func (s *SQLiteStore) ListActiveReminders(ctx context.Context, userID int64) ([]entity.Reminder, error) {
	return s.queryReminders(ctx, "list active reminders", `
		SELECT id, user_id, text, due_at, repeat, is_active FROM reminders
		WHERE user_id = ? AND is_active = 1
		ORDER BY due_at ASC, id ASC`, userID)
}

func (s *SQLiteStore) ListReminders(ctx context.Context, userID int64) ([]entity.Reminder, error) {
	return s.queryReminders(ctx, "list reminders", `
		SELECT id, user_id, text, due_at, repeat, is_active FROM reminders
		WHERE user_id = ?
		ORDER BY id ASC`, userID)
}

func (s *SQLiteStore) DueReminders(ctx context.Context, until time.Time) ([]entity.Reminder, error) {
	return s.queryReminders(ctx, "due reminders", `
		SELECT id, user_id, text, due_at, repeat, is_active FROM reminders
		WHERE is_active = 1 AND due_at <= ?
		ORDER BY due_at ASC`, formatTime(until))
}

func (s *SQLiteStore) DeleteReminder(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return storageErr("delete reminder", err)
	}
	return expectAffected(res, "delete reminder")
}

func (s *SQLiteStore) AdvanceReminder(ctx context.Context, id int64, prevDueAt time.Time, next *time.Time) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if next != nil {
		res, err = s.db.ExecContext(ctx,
			`UPDATE reminders SET due_at = ? WHERE id = ? AND due_at = ? AND is_active = 1`,
			formatTime(*next), id, formatTime(prevDueAt))
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE reminders SET is_active = 0 WHERE id = ? AND due_at = ? AND is_active = 1`,
			id, formatTime(prevDueAt))
	}
	if err != nil {
		return false, storageErr("advance reminder", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("advance reminder", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) queryReminders(ctx context.Context, op, query string, args ...any) ([]entity.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var reminders []entity.Reminder
	for rows.Next() {
		var (
			r      entity.Reminder
			dueAt  string
			repeat string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Text, &dueAt, &repeat, &r.IsActive); err != nil {
			return nil, storageErr(op, err)
		}
		if r.DueAt, err = parseTime(dueAt); err != nil {
			return nil, storageErr(op, err)
		}
		r.Repeat = entity.ParseRepeat(repeat)
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return reminders, nil
}

// --- Shopping list ---

func (s *SQLiteStore) AddShoppingItem(ctx context.Context, userID int64, item, category string, createdAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO shopping_items (user_id, item, category, created_at) VALUES (?, ?, ?, ?)`,
		userID, item, category, formatTime(createdAt))
	if err != nil {
		return 0, storageErr("add shopping item", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("add shopping item", err)
	}
	return id, nil
}

func (s *SQLiteStore) ListShoppingItems(ctx context.Context, userID int64) ([]entity.ShoppingItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, item, category, created_at FROM shopping_items
		WHERE user_id = ?
		ORDER BY category ASC, item ASC, id ASC`, userID)
	if err != nil {
		return nil, storageErr("list shopping items", err)
	}
	defer rows.Close()

	var items []entity.ShoppingItem
	for rows.Next() {
		var (
			it        entity.ShoppingItem
			createdAt string
		)
		if err := rows.Scan(&it.ID, &it.UserID, &it.Item, &it.Category, &createdAt); err != nil {
			return nil, storageErr("list shopping items", err)
		}
		if it.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, storageErr("list shopping items", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list shopping items", err)
	}
	return items, nil
}

func (s *SQLiteStore) DeleteShoppingItem(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shopping_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return storageErr("delete shopping item", err)
	}
	return expectAffected(res, "delete shopping item")
}

func (s *SQLiteStore) ClearShoppingItems(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shopping_items WHERE user_id = ?`, userID)
	if err != nil {
		return 0, storageErr("clear shopping items", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("clear shopping items", err)
	}
	return n, nil
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, port.ErrNotFound)
	}
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, port.ErrStorageUnavailable, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeFormat, s, time.UTC)
}

// Проверка реализации интерфейса
var _ port.EventStore = (*SQLiteStore)(nil)

package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedMigrations embed.FS

// Dialect поддерживаемый SQL диалект
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func init() {
	// modernc регистрирует драйвер под именем "sqlite", которого нет в таблице sqlx
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Storage реализует все интерфейсы storage поверх sqlx.
// Запросы пишутся с плейсхолдерами "?" и переписываются через Rebind.
type Storage struct {
	db      *sqlx.DB
	dialect Dialect
}

// New открывает хранилище для драйвера sqlite или postgres и применяет миграции
func New(ctx context.Context, driver, dsn string) (*Storage, error) {
	switch Dialect(driver) {
	case DialectSQLite:
		return NewSQLite(ctx, dsn)
	case DialectPostgres:
		return NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}

// NewSQLite открывает SQLite базу (файл или ":memory:")
func NewSQLite(ctx context.Context, path string) (*Storage, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite допускает одного писателя; для ":memory:" одно соединение - одна база
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Storage{db: db, dialect: DialectSQLite}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// NewPostgres открывает Postgres через pgx stdlib адаптер
func NewPostgres(ctx context.Context, dsn string) (*Storage, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	db := sqlx.NewDb(stdlib.OpenDB(*cfg), "pgx")

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db, dialect: DialectPostgres}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// NewWithDB оборачивает уже открытое соединение без миграций.
// driverName определяет стиль плейсхолдеров ("pgx" или "sqlite").
func NewWithDB(db *sql.DB, driverName string, dialect Dialect) *Storage {
	return &Storage{db: sqlx.NewDb(db, driverName), dialect: dialect}
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping проверяет доступность базы
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Dialect возвращает диалект хранилища
func (s *Storage) Dialect() Dialect {
	return s.dialect
}

// migrate применяет embedded миграции для текущего диалекта
func (s *Storage) migrate(ctx context.Context) error {
	var (
		dir     string
		dialect goose.Dialect
	)

	switch s.dialect {
	case DialectSQLite:
		dir, dialect = "migrations/sqlite", goose.DialectSQLite3
	case DialectPostgres:
		dir, dialect = "migrations/postgres", goose.DialectPostgres
	default:
		return fmt.Errorf("unsupported dialect %q", s.dialect)
	}

	fsys, err := fs.Sub(embedMigrations, dir)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, s.db.DB, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// monthExpr выражение YYYY-MM для колонки с датой
func (s *Storage) monthExpr(column string) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("to_char(%s AT TIME ZONE 'UTC', 'YYYY-MM')", column)
	}
	// modernc пишет time.Time как "2006-01-02 15:04:05...", все значения в UTC
	return fmt.Sprintf("substr(%s, 1, 7)", column)
}

// execAffected выполняет запрос и возвращает количество затронутых строк
func (s *Storage) execAffected(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n, nil
}

// insertReturningID выполняет INSERT ... RETURNING id
func (s *Storage) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.db.QueryRowxContext(ctx, s.db.Rebind(query), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// utcOrNil приводит необязательную дату к UTC
func utcOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// isUniqueViolation распознает нарушение уникальности в обоих диалектах
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}

	return false
}

// isForeignKeyViolation распознает нарушение внешнего ключа в обоих диалектах
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
			strings.Contains(liteErr.Error(), "FOREIGN KEY constraint failed")
	}

	return false
}

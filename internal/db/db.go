package db

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/vytor/wordflash/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose keeps its dialect, filesystem and logger in package state.
var gooseMu sync.Mutex

// Immediate transactions take the write lock up front, so concurrent writers
// wait on busy_timeout instead of failing on a lock upgrade.
const dsnOptions = "_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL&_txlock=immediate"

type DB struct {
	*sqlx.DB
	log *logger.Logger
}

// Open opens the SQLite database at path and applies pending migrations.
func Open(path string) (*DB, error) {
	return OpenContext(context.Background(), path)
}

func OpenContext(ctx context.Context, path string) (*DB, error) {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Info("opening database: %s", path)

	sqlDB, err := sqlx.Open("sqlite3", dsn(path))
	if err != nil {
		log.Error("failed to open database: %v", err)
		return nil, err
	}
	// Single writer; an in-memory database also lives and dies with its only connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.PingContext(ctx); err != nil {
		log.Error("failed to ping database: %v", err)
		_ = sqlDB.Close()
		return nil, err
	}

	db := &DB{DB: sqlDB, log: log}
	if err := db.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database ready")
	return db, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + dsnOptions
}

// Migrate applies every embedded migration not yet recorded by goose.
func (db *DB) Migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{log: db.log.WithPrefix("migrations")})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	db.log.Debug("applying migrations")
	if err := goose.UpContext(ctx, db.DB.DB, "migrations"); err != nil {
		db.log.Error("failed to apply migrations: %v", err)
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Version returns the current schema version recorded by goose.
func (db *DB) Version(ctx context.Context) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db.DB.DB)
}

// Tx runs fn inside a transaction, committing on success and rolling back on error.
func (db *DB) Tx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return Tx(ctx, db.DB, fn)
}

// Tx runs fn inside a transaction on conn.
func Tx(ctx context.Context, conn *sqlx.DB, fn func(*sqlx.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("db")
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	return nil
}

type gooseLogger struct {
	log *logger.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSuffix(format, "\n"), v...)
}

// Fatalf does not exit; goose also returns the error to the caller.
func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(strings.TrimSuffix(format, "\n"), v...)
}

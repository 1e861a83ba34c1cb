package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/abhisek/coursetrail/internal/spacedrep"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store owns the database handle and hands out repositories.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the SQLite database at dsn, applies pragmas and creates
// missing tables. A nil logger discards output.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	// Pragmas such as foreign_keys are per connection.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply pragmas")
	}
	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	if err := createSequence(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("store opened", zap.String("dsn", dsn))
	return &Store{db: db, logger: logger}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Statements returns the statement log.
func (s *Store) Statements() *StatementRepo {
	return &StatementRepo{db: s.db}
}

// Items returns the scheduler item repository.
func (s *Store) Items() *ItemRepo {
	return &ItemRepo{db: s.db}
}

// Progress returns the progress snapshot repository.
func (s *Store) Progress() *ProgressRepo {
	return &ProgressRepo{db: s.db}
}

// Tx hands out repositories bound to one transaction.
type Tx struct {
	tx *sql.Tx
}

// Statements returns the statement log inside the transaction.
func (t *Tx) Statements() *StatementRepo { return &StatementRepo{db: t.tx} }

// Items returns the item repository inside the transaction.
func (t *Tx) Items() *ItemRepo { return &ItemRepo{db: t.tx} }

// Progress returns the progress snapshot repository inside the transaction.
func (t *Tx) Progress() *ProgressRepo { return &ProgressRepo{db: t.tx} }

// WithTx runs fn in a transaction. It commits when fn returns nil and
// rolls back otherwise, so state and the statements describing it are
// written together or not at all. The store has a single connection:
// fn must only use the repositories of tx.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	if err := fn(&Tx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "commit transaction")
}

// ReviewTx adapts WithTx to spacedrep.Atomic.
func (s *Store) ReviewTx(ctx context.Context, fn func(items spacedrep.ItemRepo, log spacedrep.StatementLog) error) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		return fn(tx.Items(), tx.Statements())
	})
}

// builder returns an SQL builder for the store's dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// applyPragmas configures SQLite for single-user use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return errors.Wrap(err, p)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. COURSETRAIL_DB environment variable
// 2. $XDG_DATA_HOME/coursetrail/coursetrail.db
// 3. ~/.local/share/coursetrail/coursetrail.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("COURSETRAIL_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "coursetrail", "coursetrail.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

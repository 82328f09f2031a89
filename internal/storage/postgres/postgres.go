// Package postgres implements the ledger store on PostgreSQL through the pgx
// database/sql driver. Methods run on the pool, or on a transaction when
// called from inside WithinTx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// registers the "pgx" driver for database/sql
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/storage"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Storage wraps the connection pool. q is the pool or the running transaction.
type Storage struct {
	DB *sql.DB
	q  querier
}

var _ storage.Store = (*Storage)(nil)

// New opens the pool and checks the connection.
func New(dsn string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an already opened pool.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{DB: db, q: db}
}

// WithinTx runs fn in a read-committed transaction. Row locks taken with
// LockExpense are held until fn returns. Nested calls reuse the outer transaction.
func (s *Storage) WithinTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	const op = "storage.postgres.WithinTx"

	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(&Storage{DB: s.DB, q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

// classify turns driver errors into domain errors where one applies.
func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		switch pgErr.ConstraintName {
		case "users_email_key":
			return models.ErrEmailTaken
		case "categories_name_key":
			return models.ErrCategoryExists
		case "expense_participants_expense_user_key":
			return models.ErrDuplicateParticipant
		}
	case pgerrcode.ForeignKeyViolation:
		return models.ErrNotFound
	}
	return err
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, classify(err))
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Package storage defines the ledger store contract. Implementations live in
// the postgres and memory subpackages.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/finsave/internal/models"
)

// Tx is the set of ledger operations available inside and outside a transaction.
// Lookups of missing rows return models.ErrNotFound.
type Tx interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context, ids []int64) (map[int64]models.User, error)
	ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error)
	UpdateUser(ctx context.Context, id int64, p models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	GetCategories(ctx context.Context, ids []int64) (map[int64]models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateExpense(ctx context.Context, e *models.Expense) error
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)
	// LockExpense reads an expense and holds a row lock until the transaction ends.
	LockExpense(ctx context.Context, id int64) (*models.Expense, error)
	// ListExpensesVisibleTo returns expenses paid by userID or shared with userID.
	ListExpensesVisibleTo(ctx context.Context, userID int64) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, e *models.Expense) error
	DeleteExpense(ctx context.Context, id int64) error

	CreateShare(ctx context.Context, s *models.Share) error
	GetShare(ctx context.Context, id int64) (*models.Share, error)
	ShareExists(ctx context.Context, expenseID, userID int64) (bool, error)
	SumShares(ctx context.Context, expenseID int64) (decimal.Decimal, error)
	ListShares(ctx context.Context, f models.ShareFilter) ([]models.Share, error)
	ListSharesByExpenses(ctx context.Context, expenseIDs []int64) (map[int64][]models.Share, error)
	DeleteShare(ctx context.Context, id int64) error

	CreateSettlement(ctx context.Context, s *models.Settlement) error
	GetSettlement(ctx context.Context, id int64) (*models.Settlement, error)
	ListSettlementsFor(ctx context.Context, userID int64) ([]models.Settlement, error)
	UpdateSettlement(ctx context.Context, s *models.Settlement) error

	SumPaidBy(ctx context.Context, userID int64) (decimal.Decimal, error)
	SumOwedBy(ctx context.Context, userID int64) (decimal.Decimal, error)
}

// Store is a Tx that can open transactions.
type Store interface {
	Tx
	// WithinTx runs fn in a transaction. fn's error rolls everything back.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

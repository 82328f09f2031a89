package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/finsave/internal/migrations"
	"github.com/magabrotheeeer/finsave/internal/models"
)

// setupTestDatabase starts a PostgreSQL container and applies the schema.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("finsave"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, migrations.Run(s.DB))
	return s
}

// testDataFactory inserts fixtures through the store itself.
type testDataFactory struct {
	t *testing.T
	s *Storage
}

func newTestDataFactory(t *testing.T, s *Storage) *testDataFactory {
	return &testDataFactory{t: t, s: s}
}

func (f *testDataFactory) user(name string, role models.Role) models.User {
	f.t.Helper()
	u := models.User{Name: name, Email: name + "@example.com", PasswordHash: "hash", Role: role}
	require.NoError(f.t, f.s.CreateUser(context.Background(), &u))
	return u
}

func (f *testDataFactory) category(name string) models.Category {
	f.t.Helper()
	c, err := f.s.CreateCategory(context.Background(), name)
	require.NoError(f.t, err)
	return *c
}

func (f *testDataFactory) expense(payer int64, category *int64, amount string) models.Expense {
	f.t.Helper()
	e := models.Expense{
		PayerID:     payer,
		CategoryID:  category,
		Description: "dinner",
		Amount:      decimal.RequireFromString(amount),
		PaidAt:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(f.t, f.s.CreateExpense(context.Background(), &e))
	return e
}

func (f *testDataFactory) share(expenseID, userID int64, amount string) models.Share {
	f.t.Helper()
	sh := models.Share{ExpenseID: expenseID, UserID: userID, AmountOwed: decimal.RequireFromString(amount)}
	require.NoError(f.t, f.s.CreateShare(context.Background(), &sh))
	return sh
}

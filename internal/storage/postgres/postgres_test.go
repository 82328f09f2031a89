package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/storage"
)

func TestStorage_Postgres(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	f := newTestDataFactory(t, s)

	alice := f.user("alice", models.RoleRegular)
	bob := f.user("bob", models.RoleRegular)
	admin := f.user("root", models.RoleAdmin)

	t.Run("unique email", func(t *testing.T) {
		dup := models.User{Name: "x", Email: alice.Email, PasswordHash: "h", Role: models.RoleRegular}
		assert.ErrorIs(t, s.CreateUser(ctx, &dup), models.ErrEmailTaken)
	})

	t.Run("missing rows", func(t *testing.T) {
		_, err := s.GetUser(ctx, 999999)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.ErrorIs(t, s.DeleteShare(ctx, 999999), models.ErrNotFound)
	})

	t.Run("amounts keep cents", func(t *testing.T) {
		e := f.expense(alice.ID, nil, "100.10")
		got, err := s.GetExpense(ctx, e.ID)
		require.NoError(t, err)
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("100.10")))
		assert.Nil(t, got.CategoryID)
	})

	t.Run("duplicate participant", func(t *testing.T) {
		e := f.expense(alice.ID, nil, "10")
		f.share(e.ID, bob.ID, "5")
		dup := models.Share{ExpenseID: e.ID, UserID: bob.ID, AmountOwed: decimal.NewFromInt(1)}
		assert.ErrorIs(t, s.CreateShare(ctx, &dup), models.ErrDuplicateParticipant)

		exists, err := s.ShareExists(ctx, e.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		sum, err := s.SumShares(ctx, e.ID)
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromInt(5)))
	})

	t.Run("category delete nulls expenses", func(t *testing.T) {
		c := f.category("Groceries")
		e := f.expense(alice.ID, &c.ID, "20")
		require.NoError(t, s.DeleteCategory(ctx, c.ID))

		got, err := s.GetExpense(ctx, e.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)
	})

	t.Run("visible expenses", func(t *testing.T) {
		e := f.expense(bob.ID, nil, "40")
		f.share(e.ID, admin.ID, "10")

		list, err := s.ListExpensesVisibleTo(ctx, admin.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, e.ID, list[0].ID)
	})

	t.Run("list users excludes admins", func(t *testing.T) {
		users, total, err := s.ListUsers(ctx, models.UserFilter{ExcludeAdmins: true, ExcludeID: alice.ID, Search: "BO"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, users, 1)
		assert.Equal(t, bob.ID, users[0].ID)
	})

	t.Run("settlement update keeps counterparties", func(t *testing.T) {
		st := models.Settlement{FromUserID: alice.ID, ToUserID: bob.ID, Amount: decimal.RequireFromString("25.50"), SettledAt: time.Now()}
		require.NoError(t, s.CreateSettlement(ctx, &st))

		st.Amount = decimal.RequireFromString("30")
		st.Note = "corrected"
		require.NoError(t, s.UpdateSettlement(ctx, &st))
		assert.Equal(t, alice.ID, st.FromUserID)
		assert.Equal(t, bob.ID, st.ToUserID)
		assert.Equal(t, "corrected", st.Note)

		received, err := s.ListSettlementsFor(ctx, bob.ID)
		require.NoError(t, err)
		require.NotEmpty(t, received)
		assert.Equal(t, st.ID, received[0].ID)
	})

	t.Run("transaction rollback", func(t *testing.T) {
		boom := errors.New("boom")
		before, err := s.SumPaidBy(ctx, admin.ID)
		require.NoError(t, err)

		err = s.WithinTx(ctx, func(tx storage.Tx) error {
			e := models.Expense{PayerID: admin.ID, Amount: decimal.NewFromInt(7), PaidAt: time.Now()}
			require.NoError(t, tx.CreateExpense(ctx, &e))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		after, err := s.SumPaidBy(ctx, admin.ID)
		require.NoError(t, err)
		assert.True(t, before.Equal(after))
	})

	t.Run("user delete cascades", func(t *testing.T) {
		carol := f.user("carol", models.RoleRegular)
		e := f.expense(carol.ID, nil, "60")
		f.share(e.ID, bob.ID, "20")
		other := f.expense(bob.ID, nil, "60")
		f.share(other.ID, carol.ID, "20")
		st := models.Settlement{FromUserID: bob.ID, ToUserID: carol.ID, Amount: decimal.NewFromInt(1), SettledAt: time.Now()}
		require.NoError(t, s.CreateSettlement(ctx, &st))

		require.NoError(t, s.DeleteUser(ctx, carol.ID))

		_, err := s.GetExpense(ctx, e.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
		sum, err := s.SumShares(ctx, other.ID)
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
		_, err = s.GetSettlement(ctx, st.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

// Concurrent allocations against one expense must never exceed its amount
// when each runs under the expense row lock.
func TestStorage_LockExpenseSerializesAllocations(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	f := newTestDataFactory(t, s)

	payer := f.user("payer", models.RoleRegular)
	e := f.expense(payer.ID, nil, "100.00")

	const workers = 8
	users := make([]models.User, workers)
	for i := range users {
		users[i] = f.user("member"+string(rune('a'+i)), models.RoleRegular)
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_ = s.WithinTx(ctx, func(tx storage.Tx) error {
				locked, err := tx.LockExpense(ctx, e.ID)
				if err != nil {
					return err
				}
				sum, err := tx.SumShares(ctx, e.ID)
				if err != nil {
					return err
				}
				add := decimal.NewFromInt(30)
				if sum.Add(add).GreaterThan(locked.Amount) {
					return models.ErrOverAllocation
				}
				return tx.CreateShare(ctx, &models.Share{ExpenseID: e.ID, UserID: userID, AmountOwed: add})
			})
		}(u.ID)
	}
	wg.Wait()

	sum, err := s.SumShares(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(90)), "got %s", sum)
}

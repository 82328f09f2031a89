package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/finsave/internal/events"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
	"github.com/magabrotheeeer/finsave/internal/storage/memory"
)

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return p.err
}

func (p *recordingPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type fixture struct {
	svc   *Service
	store *memory.Store
	pub   *recordingPublisher
}

func newFixture(t *testing.T, mode policy.ShareMode) *fixture {
	t.Helper()
	store := memory.New()
	pub := &recordingPublisher{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		svc:   NewLedgerService(store, policy.New(mode), pub, nil, log),
		store: store,
		pub:   pub,
	}
}

func (f *fixture) user(t *testing.T, name string, role models.Role) policy.Actor {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return policy.Actor{ID: u.ID, Role: u.Role}
}

func (f *fixture) expense(t *testing.T, payer policy.Actor, amount string) *models.ExpenseDetails {
	t.Helper()
	e, err := f.svc.CreateExpense(context.Background(), payer, models.CreateExpenseRequest{
		Description: "dinner",
		Amount:      amt(amount),
		PaidAt:      "2025-03-14",
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) remaining(t *testing.T, payer policy.Actor, expenseID int64) decimal.Decimal {
	t.Helper()
	list, err := f.svc.ListExpenses(context.Background(), payer)
	require.NoError(t, err)
	for _, e := range list {
		if e.ID == expenseID {
			return e.Remaining
		}
	}
	t.Fatalf("expense %d not visible", expenseID)
	return decimal.Zero
}

func amt(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ptr[T any](v T) *T { return &v }

func share(expenseID, userID int64, amount string) models.CreateShareRequest {
	return models.CreateShareRequest{ExpenseID: expenseID, UserID: userID, AmountOwed: amt(amount)}
}

func TestAddParticipantShare_Allocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	payer := f.user(t, "payer", models.RoleRegular)
	a := f.user(t, "a", models.RoleRegular)
	b := f.user(t, "b", models.RoleRegular)
	c := f.user(t, "c", models.RoleRegular)
	e := f.expense(t, payer, "100.00")

	got, err := f.svc.AddParticipantShare(ctx, payer, share(e.ID, a.ID, "60.00"))
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.User.ID)
	assert.Equal(t, "a", got.User.Name)
	assert.False(t, got.IsSettled)
	assert.True(t, f.remaining(t, payer, e.ID).Equal(decimal.RequireFromString("40.00")))

	_, err = f.svc.AddParticipantShare(ctx, payer, share(e.ID, b.ID, "50.00"))
	require.ErrorIs(t, err, models.ErrOverAllocation)
	assert.True(t, f.remaining(t, payer, e.ID).Equal(decimal.RequireFromString("40.00")))

	_, err = f.svc.AddParticipantShare(ctx, payer, share(e.ID, b.ID, "40.00"))
	require.NoError(t, err)
	assert.True(t, f.remaining(t, payer, e.ID).IsZero())

	_, err = f.svc.AddParticipantShare(ctx, payer, share(e.ID, c.ID, "0.01"))
	require.ErrorIs(t, err, models.ErrOverAllocation)

	sum, err := f.store.SumShares(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("100.00")))
}

func TestAddParticipantShare_Duplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	payer := f.user(t, "payer", models.RoleRegular)
	a := f.user(t, "a", models.RoleRegular)
	e := f.expense(t, payer, "100.00")

	_, err := f.svc.AddParticipantShare(ctx, payer, share(e.ID, a.ID, "10.00"))
	require.NoError(t, err)
	_, err = f.svc.AddParticipantShare(ctx, payer, share(e.ID, a.ID, "10.00"))
	require.ErrorIs(t, err, models.ErrDuplicateParticipant)
	assert.True(t, models.IsConflict(err))

	shares, err := f.svc.ListShares(ctx, payer, e.ID)
	require.NoError(t, err)
	assert.Len(t, shares, 1)
}

func TestAddParticipantShare_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	payer := f.user(t, "payer", models.RoleRegular)
	a := f.user(t, "a", models.RoleRegular)
	e := f.expense(t, payer, "100.00")

	tests := []struct {
		name string
		req  models.CreateShareRequest
		want error
	}{
		{name: "unknown expense", req: share(999, a.ID, "1.00"), want: models.ErrNotFound},
		{name: "unknown user", req: share(e.ID, 999, "1.00"), want: models.ErrNotFound},
		{name: "negative amount", req: share(e.ID, a.ID, "-1.00"), want: models.ErrValidation},
		{name: "three decimals", req: share(e.ID, a.ID, "1.005"), want: models.ErrValidation},
		{name: "missing amount", req: models.CreateShareRequest{ExpenseID: e.ID, UserID: a.ID}, want: models.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddParticipantShare(ctx, payer, tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}

	zero, err := f.svc.AddParticipantShare(ctx, payer, share(e.ID, a.ID, "0"))
	require.NoError(t, err, "a zero share is allowed")
	assert.True(t, zero.AmountOwed.IsZero())
}

func TestAddParticipantShare_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	payer := f.user(t, "payer", models.RoleRegular)
	e := f.expense(t, payer, "100.00")

	const workers = 10
	users := make([]policy.Actor, workers)
	for i := range users {
		users[i] = f.user(t, "user"+string(rune('a'+i)), models.RoleRegular)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for _, u := range users {
		wg.Add(1)
		go func(u policy.Actor) {
			defer wg.Done()
			_, err := f.svc.AddParticipantShare(ctx, payer, share(e.ID, u.ID, "30.00"))
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, models.ErrOverAllocation)
		}(u)
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	sum, err := f.store.SumShares(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("90.00")))
}

func TestShareModes(t *testing.T) {
	ctx := context.Background()

	t.Run("payer mode", func(t *testing.T) {
		f := newFixture(t, policy.SharePayer)
		payer := f.user(t, "payer", models.RoleRegular)
		a := f.user(t, "a", models.RoleRegular)
		stranger := f.user(t, "stranger", models.RoleRegular)
		e := f.expense(t, payer, "50.00")

		_, err := f.svc.AddParticipantShare(ctx, a, share(e.ID, a.ID, "10.00"))
		require.ErrorIs(t, err, models.ErrForbidden)

		sh, err := f.svc.AddParticipantShare(ctx, payer, share(e.ID, a.ID, "10.00"))
		require.NoError(t, err)

		require.ErrorIs(t, f.svc.RemoveParticipantShare(ctx, a, sh.ID), models.ErrForbidden)

		visible, err := f.svc.ListShares(ctx, a, 0)
		require.NoError(t, err)
		assert.Len(t, visible, 1)
		hidden, err := f.svc.ListShares(ctx, stranger, 0)
		require.NoError(t, err)
		assert.Empty(t, hidden)
		hidden, err = f.svc.ListShares(ctx, stranger, e.ID)
		require.NoError(t, err)
		assert.Empty(t, hidden)
		own, err := f.svc.ListShares(ctx, payer, e.ID)
		require.NoError(t, err)
		assert.Len(t, own, 1)

		require.NoError(t, f.svc.RemoveParticipantShare(ctx, payer, sh.ID))
	})

	t.Run("payer or self mode", func(t *testing.T) {
		f := newFixture(t, policy.SharePayerOrSelf)
		payer := f.user(t, "payer", models.RoleRegular)
		a := f.user(t, "a", models.RoleRegular)
		e := f.expense(t, payer, "50.00")

		sh, err := f.svc.AddParticipantShare(ctx, payer, share(e.ID, a.ID, "10.00"))
		require.NoError(t, err)
		require.NoError(t, f.svc.RemoveParticipantShare(ctx, a, sh.ID))
		require.ErrorIs(t, f.svc.RemoveParticipantShare(ctx, a, sh.ID), models.ErrNotFound)
	})

	t.Run("open mode", func(t *testing.T) {
		f := newFixture(t, policy.ShareOpen)
		payer := f.user(t, "payer", models.RoleRegular)
		a := f.user(t, "a", models.RoleRegular)
		stranger := f.user(t, "stranger", models.RoleRegular)
		e := f.expense(t, payer, "50.00")

		sh, err := f.svc.AddParticipantShare(ctx, stranger, share(e.ID, a.ID, "10.00"))
		require.NoError(t, err)
		all, err := f.svc.ListShares(ctx, stranger, 0)
		require.NoError(t, err)
		assert.Len(t, all, 1)
		require.NoError(t, f.svc.RemoveParticipantShare(ctx, stranger, sh.ID))
	})
}

func TestCreateExpense_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	payer := f.user(t, "payer", models.RoleRegular)

	tests := []struct {
		name  string
		req   models.CreateExpenseRequest
		field string
	}{
		{name: "zero amount", req: models.CreateExpenseRequest{Amount: amt("0"), PaidAt: "2025-01-01"}, field: "amount"},
		{name: "negative amount", req: models.CreateExpenseRequest{Amount: amt("-5"), PaidAt: "2025-01-01"}, field: "amount"},
		{name: "three decimals", req: models.CreateExpenseRequest{Amount: amt("1.234"), PaidAt: "2025-01-01"}, field: "amount"},
		{name: "too large", req: models.CreateExpenseRequest{Amount: amt("10000000000.00"), PaidAt: "2025-01-01"}, field: "amount"},
		{name: "missing amount", req: models.CreateExpenseRequest{PaidAt: "2025-01-01"}, field: "amount"},
		{name: "bad date", req: models.CreateExpenseRequest{Amount: amt("5"), PaidAt: "yesterday"}, field: "paid_at"},
		{name: "unknown category", req: models.CreateExpenseRequest{Amount: amt("5"), PaidAt: "2025-01-01", CategoryID: ptr(int64(42))}, field: "category_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateExpense(ctx, payer, tt.req)
			require.ErrorIs(t, err, models.ErrValidation)
			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	list, err := f.svc.ListExpenses(ctx, payer)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.pub.Keys())
}

func TestCreateExpense(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	payer := f.user(t, "payer", models.RoleRegular)
	cat, err := f.store.CreateCategory(ctx, "Food")
	require.NoError(t, err)

	got, err := f.svc.CreateExpense(ctx, payer, models.CreateExpenseRequest{
		CategoryID:  &cat.ID,
		Description: "  groceries ",
		Amount:      amt("12.50"),
		PaidAt:      "2025-03-14T18:30:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "groceries", got.Description)
	assert.Equal(t, "2025-03-14", got.PaidAt)
	assert.Equal(t, payer.ID, got.Payer.ID)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Food", got.Category.Name)
	assert.Empty(t, got.Participants)
	assert.True(t, got.Remaining.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, []string{events.ExpenseCreated}, f.pub.Keys())
}

func TestCreateExpense_PublishFailureIgnored(t *testing.T) {
	f := newFixture(t, policy.ShareOpen)
	f.pub.err = errors.New("broker down")
	payer := f.user(t, "payer", models.RoleRegular)

	e := f.expense(t, payer, "10.00")
	assert.NotZero(t, e.ID)
}

func TestUpdateExpense(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	payer := f.user(t, "payer", models.RoleRegular)
	a := f.user(t, "a", models.RoleRegular)
	e := f.expense(t, payer, "100.00")
	_, err := f.svc.AddParticipantShare(ctx, payer, share(e.ID, a.ID, "60.00"))
	require.NoError(t, err)

	t.Run("not the payer", func(t *testing.T) {
		_, err := f.svc.UpdateExpense(ctx, a, e.ID, models.UpdateExpenseRequest{Description: ptr("mine now")})
		require.ErrorIs(t, err, models.ErrForbidden)
		stored, err := f.store.GetExpense(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "dinner", stored.Description)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := f.svc.UpdateExpense(ctx, payer, 999, models.UpdateExpenseRequest{})
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("below allocated", func(t *testing.T) {
		_, err := f.svc.UpdateExpense(ctx, payer, e.ID, models.UpdateExpenseRequest{Amount: amt("59.99")})
		require.ErrorIs(t, err, models.ErrOverAllocation)
		stored, err := f.store.GetExpense(ctx, e.ID)
		require.NoError(t, err)
		assert.True(t, stored.Amount.Equal(decimal.RequireFromString("100.00")))
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := f.svc.UpdateExpense(ctx, payer, e.ID, models.UpdateExpenseRequest{PaidAt: ptr("31/02/2025")})
		require.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("partial update", func(t *testing.T) {
		got, err := f.svc.UpdateExpense(ctx, payer, e.ID, models.UpdateExpenseRequest{
			Amount:      amt("60.00"),
			Description: ptr("lunch"),
		})
		require.NoError(t, err)
		assert.Equal(t, "lunch", got.Description)
		assert.Equal(t, "2025-03-14", got.PaidAt)
		assert.True(t, got.Remaining.IsZero())
		require.Len(t, got.Participants, 1)
	})

	t.Run("category set kept and detached", func(t *testing.T) {
		cat, err := f.store.CreateCategory(ctx, "Dining")
		require.NoError(t, err)

		got, err := f.svc.UpdateExpense(ctx, payer, e.ID, models.UpdateExpenseRequest{
			CategoryID: models.NullableID{Set: true, Value: &cat.ID},
		})
		require.NoError(t, err)
		require.NotNil(t, got.Category)
		assert.Equal(t, cat.ID, got.Category.ID)

		got, err = f.svc.UpdateExpense(ctx, payer, e.ID, models.UpdateExpenseRequest{Description: ptr("brunch")})
		require.NoError(t, err)
		require.NotNil(t, got.Category)

		got, err = f.svc.UpdateExpense(ctx, payer, e.ID, models.UpdateExpenseRequest{
			CategoryID: models.NullableID{Set: true},
		})
		require.NoError(t, err)
		assert.Nil(t, got.Category)
		stored, err := f.store.GetExpense(ctx, e.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.CategoryID)
	})

	t.Run("unknown category", func(t *testing.T) {
		missing := int64(404)
		_, err := f.svc.UpdateExpense(ctx, payer, e.ID, models.UpdateExpenseRequest{
			CategoryID: models.NullableID{Set: true, Value: &missing},
		})
		require.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestDeleteExpense(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	payer := f.user(t, "payer", models.RoleRegular)
	a := f.user(t, "a", models.RoleRegular)
	e := f.expense(t, payer, "100.00")
	sh, err := f.svc.AddParticipantShare(ctx, payer, share(e.ID, a.ID, "25.00"))
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.DeleteExpense(ctx, a, e.ID), models.ErrForbidden)
	_, err = f.store.GetShare(ctx, sh.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteExpense(ctx, payer, e.ID))
	_, err = f.store.GetExpense(ctx, e.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.store.GetShare(ctx, sh.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, f.pub.Keys(), events.ExpenseDeleted)

	require.ErrorIs(t, f.svc.DeleteExpense(ctx, payer, e.ID), models.ErrNotFound)
}

func TestListExpenses_Visibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	payer := f.user(t, "payer", models.RoleRegular)
	member := f.user(t, "member", models.RoleRegular)
	stranger := f.user(t, "stranger", models.RoleRegular)

	shared := f.expense(t, payer, "30.00")
	private := f.expense(t, payer, "20.00")
	own := f.expense(t, member, "5.00")
	_, err := f.svc.AddParticipantShare(ctx, payer, share(shared.ID, member.ID, "10.00"))
	require.NoError(t, err)

	ids := func(a policy.Actor) []int64 {
		list, err := f.svc.ListExpenses(ctx, a)
		require.NoError(t, err)
		out := make([]int64, 0, len(list))
		for _, e := range list {
			out = append(out, e.ID)
		}
		return out
	}

	assert.ElementsMatch(t, []int64{shared.ID, private.ID}, ids(payer))
	assert.ElementsMatch(t, []int64{shared.ID, own.ID}, ids(member))
	assert.Empty(t, ids(stranger))
}

func TestSettlements(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	sender := f.user(t, "sender", models.RoleRegular)
	receiver := f.user(t, "receiver", models.RoleRegular)
	other := f.user(t, "other", models.RoleRegular)

	st, err := f.svc.CreateSettlement(ctx, sender, models.CreateSettlementRequest{
		ToUserID: receiver.ID,
		Amount:   amt("25.50"),
		Note:     "taxi",
	})
	require.NoError(t, err)
	assert.Equal(t, "receiver", st.ToUser.Name)
	assert.Equal(t, "sender", st.FromUser.Name)
	assert.False(t, st.SettledAt.IsZero())

	sent, err := f.svc.ListSettlements(ctx, sender)
	require.NoError(t, err)
	received, err := f.svc.ListSettlements(ctx, receiver)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	require.Len(t, received, 1)
	assert.Equal(t, sent[0].ID, received[0].ID)
	assert.True(t, sent[0].Amount.Equal(received[0].Amount))
	assert.True(t, sent[0].Amount.Equal(decimal.RequireFromString("25.50")))

	none, err := f.svc.ListSettlements(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, none)

	t.Run("receiver cannot update", func(t *testing.T) {
		_, err := f.svc.UpdateSettlement(ctx, receiver, st.ID, models.UpdateSettlementRequest{Amount: amt("1.00")})
		require.ErrorIs(t, err, models.ErrForbidden)
		stored, err := f.store.GetSettlement(ctx, st.ID)
		require.NoError(t, err)
		assert.True(t, stored.Amount.Equal(decimal.RequireFromString("25.50")))
	})

	t.Run("sender updates", func(t *testing.T) {
		got, err := f.svc.UpdateSettlement(ctx, sender, st.ID, models.UpdateSettlementRequest{
			Amount: amt("30.00"),
			Note:   ptr("taxi and tip"),
		})
		require.NoError(t, err)
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("30.00")))
		assert.Equal(t, "taxi and tip", got.Note)
		assert.Equal(t, receiver.ID, got.ToUserID)
	})

	t.Run("update below minimum", func(t *testing.T) {
		_, err := f.svc.UpdateSettlement(ctx, sender, st.ID, models.UpdateSettlementRequest{Amount: amt("0.00")})
		require.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := f.svc.UpdateSettlement(ctx, sender, 999, models.UpdateSettlementRequest{})
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	assert.Equal(t, []string{events.SettlementCreated, events.SettlementUpdated}, f.pub.Keys())
}

func TestCreateSettlement_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	sender := f.user(t, "sender", models.RoleRegular)
	receiver := f.user(t, "receiver", models.RoleRegular)

	tests := []struct {
		name  string
		req   models.CreateSettlementRequest
		field string
	}{
		{name: "below minimum", req: models.CreateSettlementRequest{ToUserID: receiver.ID, Amount: amt("0.009")}, field: "amount"},
		{name: "zero", req: models.CreateSettlementRequest{ToUserID: receiver.ID, Amount: amt("0")}, field: "amount"},
		{name: "to self", req: models.CreateSettlementRequest{ToUserID: sender.ID, Amount: amt("5")}, field: "to_user_id"},
		{name: "unknown recipient", req: models.CreateSettlementRequest{ToUserID: 999, Amount: amt("5")}, field: "to_user_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSettlement(ctx, sender, tt.req)
			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	minimum, err := f.svc.CreateSettlement(ctx, sender, models.CreateSettlementRequest{ToUserID: receiver.ID, Amount: amt("0.01")})
	require.NoError(t, err)
	assert.True(t, minimum.Amount.Equal(decimal.RequireFromString("0.01")))
}

func TestDeleteUserCascade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	gone := f.user(t, "gone", models.RoleRegular)
	stays := f.user(t, "stays", models.RoleRegular)

	paidByGone := f.expense(t, gone, "40.00")
	paidByStays := f.expense(t, stays, "40.00")
	_, err := f.svc.AddParticipantShare(ctx, gone, share(paidByGone.ID, stays.ID, "10.00"))
	require.NoError(t, err)
	goneShare, err := f.svc.AddParticipantShare(ctx, stays, share(paidByStays.ID, gone.ID, "15.00"))
	require.NoError(t, err)
	_, err = f.svc.CreateSettlement(ctx, stays, models.CreateSettlementRequest{ToUserID: gone.ID, Amount: amt("5")})
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteUser(ctx, gone.ID))

	_, err = f.store.GetExpense(ctx, paidByGone.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.store.GetShare(ctx, goneShare.ID)
	require.ErrorIs(t, err, models.ErrNotFound)

	list, err := f.svc.ListExpenses(ctx, stays)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, paidByStays.ID, list[0].ID)
	assert.Empty(t, list[0].Participants)

	settlements, err := f.svc.ListSettlements(ctx, stays)
	require.NoError(t, err)
	assert.Empty(t, settlements)
}

func TestDeleteCategoryKeepsExpense(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.ShareOpen)
	payer := f.user(t, "payer", models.RoleRegular)
	cat, err := f.store.CreateCategory(ctx, "Travel")
	require.NoError(t, err)

	e, err := f.svc.CreateExpense(ctx, payer, models.CreateExpenseRequest{
		CategoryID: &cat.ID,
		Amount:     amt("80"),
		PaidAt:     "2025-05-01",
	})
	require.NoError(t, err)
	require.NotNil(t, e.Category)

	require.NoError(t, f.store.DeleteCategory(ctx, cat.ID))

	list, err := f.svc.ListExpenses(ctx, payer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Category)
	stored, err := f.store.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CategoryID)
}

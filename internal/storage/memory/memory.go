// Package memory is an in-process ledger store for tests and local runs.
// Transactions are serialized and rolled back by restoring a snapshot, so
// every write must go through WithinTx when callers run concurrently.
package memory

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/storage"
)

type state struct {
	users       map[int64]models.User
	categories  map[int64]models.Category
	expenses    map[int64]models.Expense
	shares      map[int64]models.Share
	settlements map[int64]models.Settlement

	nextUser, nextCategory, nextExpense, nextShare, nextSettlement int64
}

func newState() *state {
	return &state{
		users:       make(map[int64]models.User),
		categories:  make(map[int64]models.Category),
		expenses:    make(map[int64]models.Expense),
		shares:      make(map[int64]models.Share),
		settlements: make(map[int64]models.Settlement),
	}
}

func (st *state) clone() *state {
	c := *st
	c.users = maps.Clone(st.users)
	c.categories = maps.Clone(st.categories)
	c.expenses = maps.Clone(st.expenses)
	c.shares = maps.Clone(st.shares)
	c.settlements = maps.Clone(st.settlements)
	return &c
}

// Store keeps the ledger in maps guarded by a mutex.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   *state
	now  func() time.Time
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		st:  newState(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithinTx serializes fn against other transactions and restores the
// previous state if fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func copyID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ===== users =====

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.st.users {
		if existing.Email == u.Email {
			return models.ErrEmailTaken
		}
	}
	s.st.nextUser++
	u.ID = s.st.nextUser
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.st.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.st.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Store) GetUsers(_ context.Context, ids []int64) (map[int64]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.st.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *Store) ListUsers(_ context.Context, f models.UserFilter) ([]models.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	var out []models.User
	for _, u := range s.st.users {
		if f.ExcludeID != 0 && u.ID == f.ExcludeID {
			continue
		}
		if f.ExcludeAdmins && u.Role == models.RoleAdmin {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool {
		switch f.Sort {
		case models.SortNameAsc:
			if out[i].Name != out[j].Name {
				return out[i].Name < out[j].Name
			}
		case models.SortNameDesc:
			if out[i].Name != out[j].Name {
				return out[i].Name > out[j].Name
			}
		default:
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})

	total := len(out)
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, total, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (s *Store) UpdateUser(_ context.Context, id int64, p models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.st.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.Email != nil {
		for _, other := range s.st.users {
			if other.ID != id && other.Email == *p.Email {
				return nil, models.ErrEmailTaken
			}
		}
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	u.UpdatedAt = s.now()
	s.st.users[id] = u
	return &u, nil
}

// DeleteUser removes the user and everything that references them.
func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.users[id]; !ok {
		return models.ErrNotFound
	}
	for eid, e := range s.st.expenses {
		if e.PayerID == id {
			s.deleteExpenseLocked(eid)
		}
	}
	for sid, sh := range s.st.shares {
		if sh.UserID == id {
			delete(s.st.shares, sid)
		}
	}
	for sid, st := range s.st.settlements {
		if st.FromUserID == id || st.ToUserID == id {
			delete(s.st.settlements, sid)
		}
	}
	delete(s.st.users, id)
	return nil
}

// ===== categories =====

func (s *Store) CreateCategory(_ context.Context, name string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.st.categories {
		if c.Name == name {
			return nil, models.ErrCategoryExists
		}
	}
	s.st.nextCategory++
	c := models.Category{ID: s.st.nextCategory, Name: name, CreatedAt: s.now()}
	c.UpdatedAt = c.CreatedAt
	s.st.categories[c.ID] = c
	return &c, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.st.categories[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (s *Store) GetCategories(_ context.Context, ids []int64) (map[int64]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]models.Category, len(ids))
	for _, id := range ids {
		if c, ok := s.st.categories[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.st.categories))
	for _, c := range s.st.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, id int64, name string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.st.categories[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	for _, other := range s.st.categories {
		if other.ID != id && other.Name == name {
			return nil, models.ErrCategoryExists
		}
	}
	c.Name = name
	c.UpdatedAt = s.now()
	s.st.categories[id] = c
	return &c, nil
}

// DeleteCategory removes the category and clears it on referencing expenses.
func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.categories[id]; !ok {
		return models.ErrNotFound
	}
	for eid, e := range s.st.expenses {
		if e.CategoryID != nil && *e.CategoryID == id {
			e.CategoryID = nil
			s.st.expenses[eid] = e
		}
	}
	delete(s.st.categories, id)
	return nil
}

// ===== expenses =====

func (s *Store) CreateExpense(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.users[e.PayerID]; !ok {
		return models.ErrNotFound
	}
	if e.CategoryID != nil {
		if _, ok := s.st.categories[*e.CategoryID]; !ok {
			return models.ErrNotFound
		}
	}
	s.st.nextExpense++
	e.ID = s.st.nextExpense
	e.CreatedAt = s.now()
	e.UpdatedAt = e.CreatedAt
	stored := *e
	stored.CategoryID = copyID(e.CategoryID)
	s.st.expenses[e.ID] = stored
	return nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.st.expenses[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	e.CategoryID = copyID(e.CategoryID)
	return &e, nil
}

// LockExpense is GetExpense; WithinTx already serializes writers.
func (s *Store) LockExpense(ctx context.Context, id int64) (*models.Expense, error) {
	return s.GetExpense(ctx, id)
}

func (s *Store) ListExpensesVisibleTo(_ context.Context, userID int64) ([]models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shared := make(map[int64]bool)
	for _, sh := range s.st.shares {
		if sh.UserID == userID {
			shared[sh.ExpenseID] = true
		}
	}
	var out []models.Expense
	for _, e := range s.st.expenses {
		if e.PayerID == userID || shared[e.ID] {
			e.CategoryID = copyID(e.CategoryID)
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaidAt.Equal(out[j].PaidAt) {
			return out[i].PaidAt.After(out[j].PaidAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateExpense(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.expenses[e.ID]; !ok {
		return models.ErrNotFound
	}
	if e.CategoryID != nil {
		if _, ok := s.st.categories[*e.CategoryID]; !ok {
			return models.ErrNotFound
		}
	}
	e.UpdatedAt = s.now()
	stored := *e
	stored.CategoryID = copyID(e.CategoryID)
	s.st.expenses[e.ID] = stored
	return nil
}

// DeleteExpense removes the expense and its shares.
func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.expenses[id]; !ok {
		return models.ErrNotFound
	}
	s.deleteExpenseLocked(id)
	return nil
}

func (s *Store) deleteExpenseLocked(id int64) {
	for sid, sh := range s.st.shares {
		if sh.ExpenseID == id {
			delete(s.st.shares, sid)
		}
	}
	delete(s.st.expenses, id)
}

// ===== shares =====

func (s *Store) CreateShare(_ context.Context, sh *models.Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.expenses[sh.ExpenseID]; !ok {
		return models.ErrNotFound
	}
	if _, ok := s.st.users[sh.UserID]; !ok {
		return models.ErrNotFound
	}
	for _, existing := range s.st.shares {
		if existing.ExpenseID == sh.ExpenseID && existing.UserID == sh.UserID {
			return models.ErrDuplicateParticipant
		}
	}
	s.st.nextShare++
	sh.ID = s.st.nextShare
	sh.CreatedAt = s.now()
	sh.UpdatedAt = sh.CreatedAt
	s.st.shares[sh.ID] = *sh
	return nil
}

func (s *Store) GetShare(_ context.Context, id int64) (*models.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, ok := s.st.shares[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &sh, nil
}

func (s *Store) ShareExists(_ context.Context, expenseID, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sh := range s.st.shares {
		if sh.ExpenseID == expenseID && sh.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SumShares(_ context.Context, expenseID int64) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, sh := range s.st.shares {
		if sh.ExpenseID == expenseID {
			total = total.Add(sh.AmountOwed)
		}
	}
	return total, nil
}

func (s *Store) ListShares(_ context.Context, f models.ShareFilter) ([]models.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var visible map[int64]bool
	if f.VisibleTo != 0 {
		visible = make(map[int64]bool)
		for _, e := range s.st.expenses {
			if e.PayerID == f.VisibleTo {
				visible[e.ID] = true
			}
		}
		for _, sh := range s.st.shares {
			if sh.UserID == f.VisibleTo {
				visible[sh.ExpenseID] = true
			}
		}
	}

	var out []models.Share
	for _, sh := range s.st.shares {
		if f.ExpenseID != 0 && sh.ExpenseID != f.ExpenseID {
			continue
		}
		if visible != nil && !visible[sh.ExpenseID] {
			continue
		}
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListSharesByExpenses(_ context.Context, expenseIDs []int64) (map[int64][]models.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[int64]bool, len(expenseIDs))
	for _, id := range expenseIDs {
		wanted[id] = true
	}
	out := make(map[int64][]models.Share)
	for _, sh := range s.st.shares {
		if wanted[sh.ExpenseID] {
			out[sh.ExpenseID] = append(out[sh.ExpenseID], sh)
		}
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return out, nil
}

func (s *Store) DeleteShare(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.shares[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.st.shares, id)
	return nil
}

// ===== settlements =====

func (s *Store) CreateSettlement(_ context.Context, st *models.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.users[st.FromUserID]; !ok {
		return models.ErrNotFound
	}
	if _, ok := s.st.users[st.ToUserID]; !ok {
		return models.ErrNotFound
	}
	s.st.nextSettlement++
	st.ID = s.st.nextSettlement
	st.CreatedAt = s.now()
	st.UpdatedAt = st.CreatedAt
	if st.SettledAt.IsZero() {
		st.SettledAt = st.CreatedAt
	}
	s.st.settlements[st.ID] = *st
	return nil
}

func (s *Store) GetSettlement(_ context.Context, id int64) (*models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.st.settlements[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &st, nil
}

func (s *Store) ListSettlementsFor(_ context.Context, userID int64) ([]models.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Settlement
	for _, st := range s.st.settlements {
		if st.FromUserID == userID || st.ToUserID == userID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SettledAt.Equal(out[j].SettledAt) {
			return out[i].SettledAt.After(out[j].SettledAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// UpdateSettlement writes amount and note. Counterparties are never changed.
func (s *Store) UpdateSettlement(_ context.Context, st *models.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.st.settlements[st.ID]
	if !ok {
		return models.ErrNotFound
	}
	stored.Amount = st.Amount
	stored.Note = st.Note
	stored.UpdatedAt = s.now()
	s.st.settlements[st.ID] = stored
	*st = stored
	return nil
}

// ===== aggregates =====

func (s *Store) SumPaidBy(_ context.Context, userID int64) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, e := range s.st.expenses {
		if e.PayerID == userID {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (s *Store) SumOwedBy(_ context.Context, userID int64) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, sh := range s.st.shares {
		if sh.UserID == userID {
			total = total.Add(sh.AmountOwed)
		}
	}
	return total, nil
}

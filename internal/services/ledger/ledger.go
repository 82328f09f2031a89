// Package ledger is the consistency engine of the expense ledger. Every
// mutation runs in one store transaction, checks the access policy for the
// target row and keeps participant shares within the expense amount.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/finsave/internal/calculator"
	"github.com/magabrotheeeer/finsave/internal/events"
	"github.com/magabrotheeeer/finsave/internal/lib/metrics"
	"github.com/magabrotheeeer/finsave/internal/lib/sl"
	"github.com/magabrotheeeer/finsave/internal/models"
	"github.com/magabrotheeeer/finsave/internal/policy"
	"github.com/magabrotheeeer/finsave/internal/storage"
)

// Rejection reasons reported to metrics.
const (
	reasonOverAllocation = "over_allocation"
	reasonDuplicate      = "duplicate_participant"
)

// Service implements expense, participant share and settlement operations.
type Service struct {
	store   storage.Store
	policy  *policy.Policy
	events  events.Publisher
	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

// NewLedgerService creates a Service. A nil publisher drops events and nil
// metrics record nothing.
func NewLedgerService(store storage.Store, pol *policy.Policy, pub events.Publisher, m *metrics.Metrics, log *slog.Logger) *Service {
	if pub == nil {
		pub = events.Noop{}
	}
	return &Service{
		store:   store,
		policy:  pol,
		events:  pub,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) publish(ctx context.Context, key string, data any) {
	if err := s.events.Publish(ctx, key, data); err != nil {
		s.log.Warn("failed to publish ledger event", slog.String("key", key), sl.Err(err))
	}
}

func (s *Service) reject(reason string, err error) error {
	s.metrics.Rejected(reason)
	return err
}

func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// checkAmount records a message when d is not a storable money value of at
// least floor (strictly greater when exclusive is set).
func checkAmount(v *models.ValidationError, field string, d, floor decimal.Decimal, exclusive bool) {
	switch {
	case exclusive && !d.GreaterThan(floor):
		v.Add(field, fmt.Sprintf("The %s field must be greater than %s.", label(field), floor.String()))
	case !exclusive && d.LessThan(floor):
		v.Add(field, fmt.Sprintf("The %s field must be at least %s.", label(field), floor.String()))
	case !calculator.Cents(d):
		v.Add(field, fmt.Sprintf("The %s field must have at most 2 decimal places.", label(field)))
	case !calculator.InRange(d):
		v.Add(field, fmt.Sprintf("The %s field is too large.", label(field)))
	}
}

// parseDate accepts a calendar date or an RFC 3339 timestamp and keeps the date.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

func checkCategory(ctx context.Context, tx storage.Tx, id int64) error {
	if _, err := tx.GetCategory(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NewValidationError("category_id", "The selected category id is invalid.")
		}
		return err
	}
	return nil
}

func publicUser(users map[int64]models.User, id int64) models.PublicUser {
	if u, ok := users[id]; ok {
		return u.Public()
	}
	return models.PublicUser{ID: id}
}

// Package policy decides which actor may perform which operation on which
// ledger entity. Rules are kept in one table so handlers and services never
// compare roles inline.
package policy

import (
	"fmt"
	"slices"

	"github.com/magabrotheeeer/finsave/internal/models"
)

// Action names an operation subject to authorization.
type Action string

const (
	CategoryWrite    Action = "category.write"
	UserWrite        Action = "user.write"
	UserExport       Action = "user.export"
	StatsView        Action = "stats.view"
	ExpenseRead      Action = "expense.read"
	ExpenseMutate    Action = "expense.mutate"
	SettlementRead   Action = "settlement.read"
	SettlementMutate Action = "settlement.mutate"
	ShareCreate      Action = "share.create"
	ShareDelete      Action = "share.delete"
	ShareList        Action = "share.list"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   int64
	Role models.Role
}

// Target describes the entity an action is applied to.
// Owner is the payer of an expense, the sender of a settlement, or the
// payer of the expense a share belongs to. Members are participants or
// the settlement receiver. Subject is the user a share is for.
type Target struct {
	Owner   int64
	Members []int64
	Subject int64
}

// ShareMode selects how participant shares are guarded.
type ShareMode string

const (
	// ShareOpen lets any authenticated user manage shares.
	ShareOpen ShareMode = "open"
	// SharePayer restricts share management to the expense payer.
	SharePayer ShareMode = "payer"
	// SharePayerOrSelf also lets the share's user remove or see it.
	SharePayerOrSelf ShareMode = "payer_or_self"
)

// ParseShareMode converts a configured value, defaulting to ShareOpen.
func ParseShareMode(s string) (ShareMode, error) {
	switch m := ShareMode(s); m {
	case "":
		return ShareOpen, nil
	case ShareOpen, SharePayer, SharePayerOrSelf:
		return m, nil
	default:
		return "", fmt.Errorf("policy: unknown participant policy %q", s)
	}
}

type rule func(a Actor, t Target) bool

func hasRole(r models.Role) rule {
	return func(a Actor, _ Target) bool { return a.Role == r }
}

func owner(a Actor, t Target) bool { return t.Owner == a.ID }

func ownerOrMember(a Actor, t Target) bool {
	return t.Owner == a.ID || slices.Contains(t.Members, a.ID)
}

func ownerOrSubject(a Actor, t Target) bool {
	return t.Owner == a.ID || t.Subject == a.ID
}

func anyone(Actor, Target) bool { return true }

// Policy evaluates actions against the rule table.
type Policy struct {
	rules map[Action]rule
	mode  ShareMode
}

// New builds the rule table for the given participant share mode.
func New(mode ShareMode) *Policy {
	rules := map[Action]rule{
		CategoryWrite:    hasRole(models.RoleAdmin),
		UserWrite:        hasRole(models.RoleAdmin),
		UserExport:       hasRole(models.RoleAdmin),
		StatsView:        hasRole(models.RoleRegular),
		ExpenseRead:      ownerOrMember,
		ExpenseMutate:    owner,
		SettlementRead:   ownerOrMember,
		SettlementMutate: owner,
	}
	switch mode {
	case SharePayer:
		rules[ShareCreate] = owner
		rules[ShareDelete] = owner
		rules[ShareList] = ownerOrMember
	case SharePayerOrSelf:
		rules[ShareCreate] = owner
		rules[ShareDelete] = ownerOrSubject
		rules[ShareList] = ownerOrMember
	default:
		mode = ShareOpen
		rules[ShareCreate] = anyone
		rules[ShareDelete] = anyone
		rules[ShareList] = anyone
	}
	return &Policy{rules: rules, mode: mode}
}

// Mode returns the participant share mode in effect.
func (p *Policy) Mode() ShareMode {
	return p.mode
}

// Allowed reports whether a may perform action on t. Unknown actions are denied.
func (p *Policy) Allowed(a Actor, action Action, t Target) bool {
	r, ok := p.rules[action]
	if !ok || a.ID == 0 {
		return false
	}
	return r(a, t)
}

// Authorize returns models.ErrForbidden when a may not perform action on t.
func (p *Policy) Authorize(a Actor, action Action, t Target) error {
	if !p.Allowed(a, action, t) {
		return fmt.Errorf("%s: %w", action, models.ErrForbidden)
	}
	return nil
}

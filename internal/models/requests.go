package models

import "github.com/shopspring/decimal"

// Request payloads decoded by the HTTP handlers. Tag validation covers shape;
// amounts, dates and references are checked by the services.

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	Role                 Role   `json:"role" validate:"required,oneof=regular admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type CreateExpenseRequest struct {
	CategoryID  *int64           `json:"category_id" validate:"omitempty,gt=0"`
	Description string           `json:"description" validate:"max=500"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	PaidAt      string           `json:"paid_at" validate:"required"`
}

// UpdateExpenseRequest is a partial update. "category_id": null detaches the
// category; an omitted key leaves it unchanged.
type UpdateExpenseRequest struct {
	CategoryID  NullableID       `json:"category_id" swaggertype:"integer"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Amount      *decimal.Decimal `json:"amount"`
	PaidAt      *string          `json:"paid_at"`
}

type CreateShareRequest struct {
	ExpenseID  int64            `json:"expense_id" validate:"required,gt=0"`
	UserID     int64            `json:"user_id" validate:"required,gt=0"`
	AmountOwed *decimal.Decimal `json:"amount_owed" validate:"required"`
	IsSettled  bool             `json:"is_settled"`
}

type CreateSettlementRequest struct {
	ToUserID int64            `json:"to_user_id" validate:"required,gt=0"`
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
	Note     string           `json:"note" validate:"max=500"`
}

type UpdateSettlementRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Note   *string          `json:"note" validate:"omitempty,max=500"`
}

type UpdateUserRequest struct {
	Name                 *string `json:"name" validate:"omitempty,max=255"`
	Email                *string `json:"email" validate:"omitempty,email,max=255"`
	Role                 *Role   `json:"role" validate:"omitempty,oneof=regular admin"`
	Password             *string `json:"password" validate:"omitempty,min=8"`
	PasswordConfirmation *string `json:"password_confirmation"`
}
